package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/domain"
)

// Source é o coletor de entrada: entrega transações já tipadas e io.EOF ao final.
type Source interface {
	Next(ctx context.Context) (domain.Transaction, error)
}

// Report é o resultado de uma execução completa.
type Report struct {
	Accounts map[domain.ClientID]domain.Snapshot
	Routed   int
}

// Snapshots retorna as contas ordenadas por cliente.
func (r Report) Snapshots() []domain.Snapshot {
	out := make([]domain.Snapshot, 0, len(r.Accounts))
	for _, s := range r.Accounts {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Client < out[j].Client })
	return out
}

// Engine liga uma Source ao Dispatcher.
type Engine struct {
	Config    Config
	Reporters ReporterFactory

	OnStart func(d *Dispatcher) // ex.: registrar gauges de profundidade das filas
}

func New(cfg Config, reporters ReporterFactory) *Engine {
	return &Engine{Config: cfg, Reporters: reporters}
}

// Run lê a fonte até io.EOF ou cancelamento de ctx, roteia tudo e então drena os workers.
// O cancelamento interrompe apenas a leitura: o que já foi lido é aplicado, e o Report
// final é consistente. Um erro de leitura diferente de io.EOF é retornado junto com o
// Report parcial.
func (e *Engine) Run(ctx context.Context, src Source) (Report, error) {
	d, err := NewDispatcher(e.Config, e.Reporters)
	if err != nil {
		return Report{}, err
	}
	if e.OnStart != nil {
		e.OnStart(d)
	}

	// workers nunca param antes do Shutdown, então um Route bloqueado sempre termina
	routeCtx := context.WithoutCancel(ctx)

	var (
		routed  int
		readErr error
	)
	for {
		tx, err := src.Next(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				readErr = fmt.Errorf("read source: %w", err)
			}
			break
		}
		if err := d.Route(routeCtx, tx); err != nil {
			readErr = fmt.Errorf("route transaction: %w", err)
			break
		}
		routed++
	}

	return Report{Accounts: d.Shutdown(), Routed: routed}, readErr
}
