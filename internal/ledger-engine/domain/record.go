package domain

import (
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/money"
)

// DisputeState é o ciclo de vida de um depósito:
// Normal -> Disputed -> Resolved | ChargedBack (ambos terminais).
type DisputeState uint8

const (
	StateNormal DisputeState = iota
	StateDisputed
	StateResolved
	StateChargedBack
)

func (s DisputeState) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateDisputed:
		return "disputed"
	case StateResolved:
		return "resolved"
	case StateChargedBack:
		return "charged_back"
	default:
		return "unknown"
	}
}

// Terminal indica que nenhuma disputa futura pode alterar o registro.
func (s DisputeState) Terminal() bool {
	return s == StateResolved || s == StateChargedBack
}

// Record guarda um depósito elegível a disputa. Saques não geram Record.
type Record struct {
	Tx     TxID
	Amount money.Funds
	State  DisputeState
}
