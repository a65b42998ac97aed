package money

import (
	"github.com/shopspring/decimal"
)

// Delta descreve uma variação (com sinal) nos dois componentes de um Balance.
type Delta struct {
	Available decimal.Decimal
	Held      decimal.Decimal
}

// Balance é o par imutável (available, held) de uma conta.
// available pode ficar negativo (ex.: depósito, saque e depois disputa do depósito);
// held nunca fica negativo.
type Balance struct {
	available decimal.Decimal
	held      Funds
}

// NewBalance retorna um saldo zerado.
func NewBalance() Balance {
	return Balance{available: decimal.Zero, held: Zero()}
}

func (b Balance) Available() decimal.Decimal { return b.available }

func (b Balance) Held() Funds { return b.held }

// Total é derivado (available + held), nunca armazenado.
func (b Balance) Total() decimal.Decimal { return b.available.Add(b.held.d) }

// Apply calcula um novo Balance a partir do delta.
// Se qualquer componente violar seu invariante, retorna o Balance original junto com o erro:
// não existe atualização parcial.
func (b Balance) Apply(d Delta) (Balance, error) {
	available := b.available.Add(d.Available)
	if available.Abs().GreaterThan(MaxFunds) {
		return b, ErrOverflow
	}

	held := b.held
	switch d.Held.Sign() {
	case 1:
		inc, err := NewFunds(d.Held)
		if err != nil {
			return b, err
		}
		if held, err = held.Add(inc); err != nil {
			return b, err
		}
	case -1:
		dec, err := NewFunds(d.Held.Neg())
		if err != nil {
			return b, err
		}
		if held, err = held.Sub(dec); err != nil {
			return b, err
		}
	}

	return Balance{available: available, held: held}, nil
}
