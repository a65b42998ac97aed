package generator

import (
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/domain"
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/money"
)

// Options controla o formato do fluxo simulado.
type Options struct {
	Clients     int     // clientes distintos (ids 1..Clients)
	Seed        int64   // mesma semente, mesmo fluxo
	InvalidRate float64 // fração de eventos que referenciam transações inexistentes ou repetidas
	MaxAmount   int64   // valor máximo de depósito/saque, em unidades inteiras
}

func DefaultOptions() Options {
	return Options{Clients: 100, Seed: 1, InvalidRate: 0.05, MaxAmount: 1000}
}

// Generator produz transações com ciclo de disputa plausível por cliente.
// Não é seguro para uso concorrente.
type Generator struct {
	opts   Options
	rnd    *rand.Rand
	nextTx domain.TxID

	deposits map[domain.ClientID][]domain.TxID // depósitos ainda sem disputa
	disputed map[domain.ClientID][]domain.TxID
}

func New(opts Options) *Generator {
	if opts.Clients <= 0 {
		opts.Clients = 1
	}
	if opts.Clients > 1<<16-1 {
		opts.Clients = 1<<16 - 1
	}
	if opts.MaxAmount <= 0 {
		opts.MaxAmount = 1
	}
	return &Generator{
		opts:     opts,
		rnd:      rand.New(rand.NewSource(opts.Seed)),
		deposits: make(map[domain.ClientID][]domain.TxID),
		disputed: make(map[domain.ClientID][]domain.TxID),
	}
}

// Generate devolve n transações a partir de opts.
func Generate(opts Options, n int) []domain.Transaction {
	g := New(opts)
	out := make([]domain.Transaction, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.Next())
	}
	return out
}

func (g *Generator) Next() domain.Transaction {
	client := domain.ClientID(g.rnd.Intn(g.opts.Clients) + 1)

	if g.rnd.Float64() < g.opts.InvalidRate {
		return g.invalid(client)
	}

	roll := g.rnd.Intn(100)
	switch {
	case roll < 15 && len(g.deposits[client]) > 0:
		tx := g.take(g.deposits, client)
		g.disputed[client] = append(g.disputed[client], tx)
		return domain.Dispute{Ref: domain.Ref{Client: client, Tx: tx}}
	case roll < 22 && len(g.disputed[client]) > 0:
		return domain.Resolve{Ref: domain.Ref{Client: client, Tx: g.take(g.disputed, client)}}
	case roll < 25 && len(g.disputed[client]) > 0:
		return domain.Chargeback{Ref: domain.Ref{Client: client, Tx: g.take(g.disputed, client)}}
	case roll < 55:
		return domain.Withdrawal{Ref: domain.Ref{Client: client, Tx: g.tx()}, Amount: g.amount()}
	default:
		tx := g.tx()
		g.deposits[client] = append(g.deposits[client], tx)
		return domain.Deposit{Ref: domain.Ref{Client: client, Tx: tx}, Amount: g.amount()}
	}
}

// invalid gera eventos que o ledger deve rejeitar sem interromper o processamento.
func (g *Generator) invalid(client domain.ClientID) domain.Transaction {
	unknown := domain.Ref{Client: client, Tx: g.tx()}
	switch g.rnd.Intn(3) {
	case 0:
		return domain.Dispute{Ref: unknown}
	case 1:
		return domain.Resolve{Ref: unknown}
	default:
		if deps := g.deposits[client]; len(deps) > 0 {
			dup := deps[g.rnd.Intn(len(deps))]
			return domain.Deposit{Ref: domain.Ref{Client: client, Tx: dup}, Amount: g.amount()}
		}
		return domain.Chargeback{Ref: unknown}
	}
}

func (g *Generator) take(from map[domain.ClientID][]domain.TxID, client domain.ClientID) domain.TxID {
	list := from[client]
	i := g.rnd.Intn(len(list))
	tx := list[i]
	list[i] = list[len(list)-1]
	from[client] = list[:len(list)-1]
	return tx
}

func (g *Generator) tx() domain.TxID {
	g.nextTx++
	return g.nextTx
}

// amount sorteia um valor em (0, MaxAmount] com 4 casas decimais.
func (g *Generator) amount() money.Funds {
	units := g.rnd.Int63n(g.opts.MaxAmount*10_000) + 1
	f, err := money.NewFunds(decimal.New(units, -money.Places))
	if err != nil {
		// units é sempre positivo e muito abaixo de MaxFunds
		panic(err)
	}
	return f
}
