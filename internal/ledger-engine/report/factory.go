package report

import (
	"go.uber.org/zap"

	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/engine"
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/ledger"
	"github.com/radieske/tx-ledger-engine/internal/shared/metrics"
)

// Factory cria um LogReporter por partição, com os contadores ligados quando m != nil.
func Factory(log *zap.Logger, m *metrics.LedgerMetrics) engine.ReporterFactory {
	return func(shard int) ledger.Reporter {
		r := NewLogReporter(log, shard)
		if m == nil {
			return r
		}
		r.OnApplied = func(kind string) { m.Applied.WithLabelValues(kind).Inc() }
		r.OnRejected = func(kind, reason string) { m.Rejected.WithLabelValues(kind, reason).Inc() }
		r.OnFailed = func() { m.Failed.Inc() }
		return r
	}
}
