package ledger

import (
	"errors"
	"fmt"
	"sort"

	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/domain"
)

var ErrUnknownTransaction = errors.New("unknown transaction variant")

// Ledger mapeia cliente -> conta para uma partição.
// Não usa locks: cada Ledger é acessado por um único worker.
type Ledger struct {
	accounts map[domain.ClientID]*domain.Account
	reporter Reporter
}

// New cria um Ledger vazio; reporter nil equivale a NopReporter.
func New(reporter Reporter) *Ledger {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Ledger{
		accounts: make(map[domain.ClientID]*domain.Account),
		reporter: reporter,
	}
}

// Apply aplica uma transação à conta do cliente, criando a conta na primeira referência.
// Falhas nunca são propagadas: vão para o Reporter e a transação é ignorada.
func (l *Ledger) Apply(tx domain.Transaction) {
	if tx == nil {
		l.reporter.Failed(tx, fmt.Errorf("%w: nil", ErrUnknownTransaction))
		return
	}

	acc := l.account(tx.Target().Client)

	var err error
	switch t := tx.(type) {
	case domain.Deposit:
		err = acc.Deposit(t.Tx, t.Amount)
	case domain.Withdrawal:
		err = acc.Withdraw(t.Amount)
	case domain.Dispute:
		err = acc.Dispute(t.Tx)
	case domain.Resolve:
		err = acc.Resolve(t.Tx)
	case domain.Chargeback:
		err = acc.Chargeback(t.Tx)
	default:
		l.reporter.Failed(tx, fmt.Errorf("%w: %T", ErrUnknownTransaction, tx))
		return
	}

	if err != nil {
		l.reporter.Rejected(tx, err)
		return
	}
	l.reporter.Applied(tx)
}

func (l *Ledger) account(id domain.ClientID) *domain.Account {
	acc, ok := l.accounts[id]
	if !ok {
		acc = domain.NewAccount(id)
		l.accounts[id] = acc
	}
	return acc
}

// Account retorna a conta do cliente, se já foi referenciada.
func (l *Ledger) Account(id domain.ClientID) (*domain.Account, bool) {
	acc, ok := l.accounts[id]
	return acc, ok
}

func (l *Ledger) Len() int { return len(l.accounts) }

// Snapshots retorna a foto de todas as contas, ordenada por cliente.
func (l *Ledger) Snapshots() []domain.Snapshot {
	out := make([]domain.Snapshot, 0, len(l.accounts))
	for _, acc := range l.accounts {
		out = append(out, acc.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Client < out[j].Client })
	return out
}
