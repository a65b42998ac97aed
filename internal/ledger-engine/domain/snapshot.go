package domain

import (
	"github.com/shopspring/decimal"

	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/money"
)

// Snapshot é a foto final de uma conta entregue aos consumidores de saída.
type Snapshot struct {
	Client    ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Locked    bool
}

func (s Snapshot) Total() decimal.Decimal { return s.Available.Add(s.Held) }

// Fixed renderiza os três valores com exatamente 4 casas decimais.
func (s Snapshot) Fixed() (available, held, total string) {
	return s.Available.StringFixed(money.Places),
		s.Held.StringFixed(money.Places),
		s.Total().StringFixed(money.Places)
}
