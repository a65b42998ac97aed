package ledger

import (
	"errors"

	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/domain"
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/money"
)

// Reporter recebe o resultado de cada transação aplicada pelo Ledger.
// Rejected cobre violações de regra de negócio e de aritmética (transação ignorada);
// Failed cobre violações de invariante interno. Nenhum dos dois interrompe o processamento.
type Reporter interface {
	Applied(tx domain.Transaction)
	Rejected(tx domain.Transaction, err error)
	Failed(tx domain.Transaction, err error)
}

// NopReporter descarta todos os eventos.
type NopReporter struct{}

func (NopReporter) Applied(domain.Transaction)         {}
func (NopReporter) Rejected(domain.Transaction, error) {}
func (NopReporter) Failed(domain.Transaction, error)   {}

// Reason traduz um erro em um rótulo estável, usado em logs e métricas.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrAccountFrozen):
		return "account_frozen"
	case errors.Is(err, domain.ErrDuplicateDeposit):
		return "duplicate_deposit"
	case errors.Is(err, domain.ErrNotDisputable):
		return "not_disputable"
	case errors.Is(err, domain.ErrNotInDispute):
		return "not_in_dispute"
	case errors.Is(err, money.ErrOverflow):
		return "overflow"
	case errors.Is(err, money.ErrUnderflow):
		return "underflow"
	case errors.Is(err, ErrUnknownTransaction):
		return "unknown_transaction"
	default:
		return "other"
	}
}
