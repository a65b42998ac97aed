package domain

import (
	"fmt"

	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/money"
)

// Account é a conta de um cliente: saldo, flag de congelamento e depósitos disputáveis.
// Não é segura para uso concorrente; cada conta pertence a um único worker.
type Account struct {
	client  ClientID
	balance money.Balance
	frozen  bool
	records map[TxID]Record
}

func NewAccount(client ClientID) *Account {
	return &Account{
		client:  client,
		balance: money.NewBalance(),
		records: make(map[TxID]Record),
	}
}

func (a *Account) Client() ClientID { return a.client }

func (a *Account) Balance() money.Balance { return a.balance }

func (a *Account) Frozen() bool { return a.frozen }

// Record retorna o registro do depósito tx, se existir.
func (a *Account) Record(tx TxID) (Record, bool) {
	r, ok := a.records[tx]
	return r, ok
}

// Deposit credita amount e registra o depósito (estado Normal).
// Ids de depósito repetidos são rejeitados sem alterar nada.
// Contas congeladas continuam aceitando depósitos.
func (a *Account) Deposit(tx TxID, amount money.Funds) error {
	if _, ok := a.records[tx]; ok {
		return ErrDuplicateDeposit
	}
	next, err := a.balance.Apply(money.Delta{Available: amount.Decimal()})
	if err != nil {
		return fmt.Errorf("credit available: %w", err)
	}
	a.balance = next
	a.records[tx] = Record{Tx: tx, Amount: amount, State: StateNormal}
	return nil
}

// Withdraw debita amount se a conta não estiver congelada e houver saldo disponível.
func (a *Account) Withdraw(amount money.Funds) error {
	if a.frozen {
		return ErrAccountFrozen
	}
	if a.balance.Available().LessThan(amount.Decimal()) {
		return ErrInsufficientFunds
	}
	next, err := a.balance.Apply(money.Delta{Available: amount.Decimal().Neg()})
	if err != nil {
		return fmt.Errorf("debit available: %w", err)
	}
	a.balance = next
	return nil
}

// Dispute move o valor do depósito de available para held.
func (a *Account) Dispute(tx TxID) error {
	rec, ok := a.records[tx]
	if !ok || rec.State != StateNormal {
		return ErrNotDisputable
	}
	amt := rec.Amount.Decimal()
	next, err := a.balance.Apply(money.Delta{Available: amt.Neg(), Held: amt})
	if err != nil {
		return fmt.Errorf("hold funds: %w", err)
	}
	a.balance = next
	rec.State = StateDisputed
	a.records[tx] = rec
	return nil
}

// Resolve devolve o valor retido para available.
func (a *Account) Resolve(tx TxID) error {
	rec, ok := a.records[tx]
	if !ok || rec.State != StateDisputed {
		return ErrNotInDispute
	}
	amt := rec.Amount.Decimal()
	next, err := a.balance.Apply(money.Delta{Available: amt, Held: amt.Neg()})
	if err != nil {
		return fmt.Errorf("release funds: %w", err)
	}
	a.balance = next
	rec.State = StateResolved
	a.records[tx] = rec
	return nil
}

// Chargeback remove o valor retido e congela a conta.
func (a *Account) Chargeback(tx TxID) error {
	rec, ok := a.records[tx]
	if !ok || rec.State != StateDisputed {
		return ErrNotInDispute
	}
	next, err := a.balance.Apply(money.Delta{Held: rec.Amount.Decimal().Neg()})
	if err != nil {
		return fmt.Errorf("charge back held funds: %w", err)
	}
	a.balance = next
	rec.State = StateChargedBack
	a.records[tx] = rec
	a.frozen = true
	return nil
}

// Snapshot copia o estado visível da conta para a saída.
func (a *Account) Snapshot() Snapshot {
	return Snapshot{
		Client:    a.client,
		Available: a.balance.Available(),
		Held:      a.balance.Held().Decimal(),
		Locked:    a.frozen,
	}
}
