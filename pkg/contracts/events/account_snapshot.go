package events

import "time"

// Evento publicado no tópico "ledger_account_snapshots" ao final de uma execução.
// Valores monetários sempre com 4 casas decimais.
type AccountSnapshot struct {
	RunID     string    `json:"run_id"`
	Client    uint16    `json:"client"`
	Available string    `json:"available"`
	Held      string    `json:"held"`
	Total     string    `json:"total"`
	Locked    bool      `json:"locked"`
	Ts        time.Time `json:"ts"`
}
