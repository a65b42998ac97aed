package events

// Evento consumido do tópico "ledger_transactions".
// Amount é texto decimal (até 4 casas) e só existe em deposit/withdrawal.
type TransactionEvent struct {
	Type   string  `json:"type"` // deposit | withdrawal | dispute | resolve | chargeback
	Client uint16  `json:"client"`
	Tx     uint32  `json:"tx"`
	Amount *string `json:"amount,omitempty"`
}
