package domain

import (
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/money"
)

type (
	ClientID uint16
	TxID     uint32
)

// Kind identifica a variante de uma transação (mesmo texto da coluna "type" do feed).
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
	KindDispute    Kind = "dispute"
	KindResolve    Kind = "resolve"
	KindChargeback Kind = "chargeback"
)

// Ref é a parte comum a todas as transações: cliente e id da transação referenciada.
type Ref struct {
	Client ClientID
	Tx     TxID
}

// Target retorna o par (cliente, transação) ao qual a transação se aplica.
func (r Ref) Target() Ref { return r }

// Transaction é um conjunto fechado de variantes: Deposit, Withdrawal, Dispute, Resolve e Chargeback.
// Apenas Deposit e Withdrawal carregam valor.
type Transaction interface {
	Target() Ref
	Kind() Kind
	sealed()
}

type Deposit struct {
	Ref
	Amount money.Funds
}

type Withdrawal struct {
	Ref
	Amount money.Funds
}

type Dispute struct{ Ref }

type Resolve struct{ Ref }

type Chargeback struct{ Ref }

func (Deposit) Kind() Kind    { return KindDeposit }
func (Withdrawal) Kind() Kind { return KindWithdrawal }
func (Dispute) Kind() Kind    { return KindDispute }
func (Resolve) Kind() Kind    { return KindResolve }
func (Chargeback) Kind() Kind { return KindChargeback }

func (Deposit) sealed()    {}
func (Withdrawal) sealed() {}
func (Dispute) sealed()    {}
func (Resolve) sealed()    {}
func (Chargeback) sealed() {}
