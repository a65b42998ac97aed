package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Places é a escala usada na fronteira (entrada e saída): 4 casas decimais.
const Places int32 = 4

var (
	ErrOverflow  = errors.New("funds overflow")
	ErrUnderflow = errors.New("funds underflow")
	ErrNegative  = errors.New("negative amount")
	ErrMalformed = errors.New("malformed amount")
)

// MaxFunds é o teto absoluto de qualquer valor monetário (mantissa de 96 bits).
// Acima disso a operação falha com ErrOverflow em vez de crescer sem limite.
var MaxFunds = decimal.RequireFromString("79228162514264337593543950335")

// Funds é uma quantia monetária não negativa.
// O valor interno não é exportado: toda aritmética passa por Add/Sub, que podem falhar.
type Funds struct {
	d decimal.Decimal
}

// Zero retorna uma quantia nula.
func Zero() Funds { return Funds{d: decimal.Zero} }

// MaxScale limita as casas decimais aceitas (mesma escala máxima da mantissa de 96 bits).
const MaxScale int32 = 28

// NewFunds valida um decimal já tipado.
// O expoente é checado antes de qualquer comparação: GreaterThan reescala os operandos.
func NewFunds(d decimal.Decimal) (Funds, error) {
	if d.IsNegative() {
		return Funds{}, ErrNegative
	}
	if exp := d.Exponent(); exp < -MaxScale {
		return Funds{}, fmt.Errorf("%w: more than %d decimal places", ErrMalformed, MaxScale)
	} else if exp > MaxScale {
		return Funds{}, ErrOverflow
	}
	if d.GreaterThan(MaxFunds) {
		return Funds{}, ErrOverflow
	}
	return Funds{d: d}, nil
}

// ParseFunds converte a representação textual (ex.: "10.5000") em Funds.
// Notação científica não é aceita.
func ParseFunds(s string) (Funds, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Funds{}, fmt.Errorf("%w: empty", ErrMalformed)
	}
	if strings.ContainsAny(s, "eE") {
		return Funds{}, fmt.Errorf("%w: exponent notation", ErrMalformed)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Funds{}, fmt.Errorf("%w: %q", ErrMalformed, clip(s))
	}
	return NewFunds(d)
}

// clip corta a entrada ecoada em erros, que acabam em logs e headers da DLQ.
func clip(s string) string {
	const limit = 32
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

// Add soma duas quantias; falha com ErrOverflow acima de MaxFunds.
func (f Funds) Add(o Funds) (Funds, error) {
	sum := f.d.Add(o.d)
	if sum.GreaterThan(MaxFunds) {
		return f, ErrOverflow
	}
	return Funds{d: sum}, nil
}

// Sub subtrai o; falha com ErrUnderflow se o resultado ficaria negativo.
func (f Funds) Sub(o Funds) (Funds, error) {
	diff := f.d.Sub(o.d)
	if diff.IsNegative() {
		return f, ErrUnderflow
	}
	return Funds{d: diff}, nil
}

// Decimal expõe uma cópia do valor, usada para compor deltas e para renderização.
func (f Funds) Decimal() decimal.Decimal { return f.d }

func (f Funds) Cmp(o Funds) int { return f.d.Cmp(o.d) }

func (f Funds) Equal(o Funds) bool { return f.d.Equal(o.d) }

func (f Funds) IsZero() bool { return f.d.IsZero() }

// String renderiza com exatamente 4 casas decimais.
func (f Funds) String() string { return f.d.StringFixed(Places) }
