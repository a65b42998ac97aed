package report

import (
	"go.uber.org/zap"

	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/domain"
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/ledger"
)

// LogReporter transforma os eventos do Ledger em logs estruturados e callbacks de métricas.
// Uma instância por worker: o campo shard já vem fixado no logger.
type LogReporter struct {
	log *zap.Logger

	OnApplied  func(kind string)
	OnRejected func(kind, reason string)
	OnFailed   func()
}

func NewLogReporter(log *zap.Logger, shard int) *LogReporter {
	return &LogReporter{log: log.With(zap.Int("shard", shard))}
}

func (r *LogReporter) Applied(tx domain.Transaction) {
	r.log.Debug("transaction applied", txFields(tx)...)
	if r.OnApplied != nil {
		r.OnApplied(string(tx.Kind()))
	}
}

func (r *LogReporter) Rejected(tx domain.Transaction, err error) {
	reason := ledger.Reason(err)
	r.log.Warn("transaction rejected", append(txFields(tx), zap.String("reason", reason), zap.Error(err))...)
	if r.OnRejected != nil {
		r.OnRejected(string(tx.Kind()), reason)
	}
}

func (r *LogReporter) Failed(tx domain.Transaction, err error) {
	r.log.Error("transaction failed", append(txFields(tx), zap.Error(err))...)
	if r.OnFailed != nil {
		r.OnFailed()
	}
}

func txFields(tx domain.Transaction) []zap.Field {
	if tx == nil {
		return []zap.Field{zap.String("type", "unknown")}
	}
	t := tx.Target()
	return []zap.Field{
		zap.Uint16("client", uint16(t.Client)),
		zap.Uint32("tx", uint32(t.Tx)),
		zap.String("type", string(tx.Kind())),
	}
}
