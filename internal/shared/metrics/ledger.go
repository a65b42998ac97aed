package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics agrupa os contadores do motor de transações.
type LedgerMetrics struct {
	Applied      *prometheus.CounterVec // por tipo de transação
	Rejected     *prometheus.CounterVec // por tipo e motivo
	Failed       prometheus.Counter
	Consumed     prometheus.Counter     // mensagens lidas do Kafka
	Malformed    *prometheus.CounterVec // por fonte (csv, kafka)
	SourceErrors *prometheus.CounterVec // por estágio (read, dlq)
	Exported     prometheus.Counter
	ExportErrors *prometheus.CounterVec // por estágio (cache, db, kafka, announce)
	Accounts     prometheus.Gauge

	reg prometheus.Registerer
}

// NewLedgerMetrics cria e registra as métricas em reg.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	m := &LedgerMetrics{
		Applied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_transactions_applied_total", Help: "transações aplicadas",
		}, []string{"type"}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_transactions_rejected_total", Help: "transações ignoradas por regra de negócio ou aritmética",
		}, []string{"type", "reason"}),
		Failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_transactions_failed_total", Help: "violações de invariante interno",
		}),
		Consumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_messages_consumed_total", Help: "mensagens consumidas",
		}),
		Malformed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_input_malformed_total", Help: "registros de entrada descartados",
		}, []string{"source"}),
		SourceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_source_errors_total", Help: "erros de leitura da fonte por estágio",
		}, []string{"stage"}),
		Exported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_snapshots_exported_total", Help: "contas exportadas",
		}),
		ExportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_export_errors_total", Help: "erros de exportação por estágio",
		}, []string{"stage"}),
		Accounts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_accounts", Help: "contas na última execução",
		}),
		reg: reg,
	}
	reg.MustRegister(m.Applied, m.Rejected, m.Failed, m.Consumed, m.Malformed, m.SourceErrors, m.Exported, m.ExportErrors, m.Accounts)
	return m
}

// WatchQueues registra um gauge de profundidade por fila de worker.
func (m *LedgerMetrics) WatchQueues(workers int, depth func(shard int) int) {
	for i := 0; i < workers; i++ {
		shard := i
		m.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "ledger_worker_queue_depth",
			Help:        "transações aguardando na fila do worker",
			ConstLabels: prometheus.Labels{"shard": strconv.Itoa(shard)},
		}, func() float64 { return float64(depth(shard)) }))
	}
}
