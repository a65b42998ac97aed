package export

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/domain"
	"github.com/radieske/tx-ledger-engine/pkg/contracts/events"
)

// Estágios usados em logs e em ledger_export_errors_total{stage}.
const (
	StageCache    = "cache"
	StageDB       = "db"
	StageKafka    = "kafka"
	StageAnnounce = "announce"
)

type Cache interface {
	SetSnapshot(ctx context.Context, s events.AccountSnapshot) error
	Announce(ctx context.Context, channel, runID string, accounts int) error
}

type Repository interface {
	Save(ctx context.Context, s events.AccountSnapshot) error
}

type Publisher interface {
	Publish(ctx context.Context, s events.AccountSnapshot) error
}

// Exporter grava o resultado de uma execução em cada destino configurado.
// Destinos nil são ignorados. Falha em um destino não impede os demais.
type Exporter struct {
	Log       *zap.Logger
	Cache     Cache
	Repo      Repository
	Publisher Publisher
	Channel   string // canal Pub/Sub do anúncio de fim de execução

	OnError    func(stage string) // métricas
	OnExported func()

	Now func() time.Time
}

// ToEvent converte a foto da conta no contrato publicado.
func ToEvent(runID string, s domain.Snapshot, ts time.Time) events.AccountSnapshot {
	available, held, total := s.Fixed()
	return events.AccountSnapshot{
		RunID:     runID,
		Client:    uint16(s.Client),
		Available: available,
		Held:      held,
		Total:     total,
		Locked:    s.Locked,
		Ts:        ts,
	}
}

// Export envia as fotos em ordem de cliente: cache -> db -> kafka.
// Retorna todos os erros agregados; o anúncio só acontece se houver cache.
func (e *Exporter) Export(ctx context.Context, runID string, snaps []domain.Snapshot) error {
	sorted := make([]domain.Snapshot, len(snaps))
	copy(sorted, snaps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Client < sorted[j].Client })

	ts := e.now()
	var errs []error

	for _, s := range sorted {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		ev := ToEvent(runID, s, ts)
		ok := true

		if e.Cache != nil {
			if err := e.Cache.SetSnapshot(ctx, ev); err != nil {
				errs = append(errs, e.fail(StageCache, ev.Client, err))
				ok = false
			}
		}
		if e.Repo != nil {
			if err := e.Repo.Save(ctx, ev); err != nil {
				errs = append(errs, e.fail(StageDB, ev.Client, err))
				ok = false
			}
		}
		if e.Publisher != nil {
			if err := e.Publisher.Publish(ctx, ev); err != nil {
				errs = append(errs, e.fail(StageKafka, ev.Client, err))
				ok = false
			}
		}

		if ok && e.OnExported != nil {
			e.OnExported()
		}
	}

	if e.Cache != nil && e.Channel != "" {
		if err := e.Cache.Announce(ctx, e.Channel, runID, len(sorted)); err != nil {
			e.count(StageAnnounce)
			e.Log.Error("run announce failed", zap.String("run_id", runID), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", StageAnnounce, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("export run %s: %d failures: %w", runID, len(errs), errors.Join(errs...))
	}

	e.Log.Info("run exported", zap.String("run_id", runID), zap.Int("accounts", len(sorted)))
	return nil
}

func (e *Exporter) fail(stage string, client uint16, err error) error {
	e.count(stage)
	e.Log.Error("snapshot export failed",
		zap.String("stage", stage),
		zap.Uint16("client", client),
		zap.Error(err),
	)
	return fmt.Errorf("%s client %d: %w", stage, client, err)
}

func (e *Exporter) count(stage string) {
	if e.OnError != nil {
		e.OnError(stage)
	}
}

func (e *Exporter) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC()
}
