package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/engine"
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/export"
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/ingest"
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/report"
	"github.com/radieske/tx-ledger-engine/internal/shared/config"
	"github.com/radieske/tx-ledger-engine/internal/shared/kafka"
	"github.com/radieske/tx-ledger-engine/internal/shared/logger"
	"github.com/radieske/tx-ledger-engine/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Conecta os destinos de exportação antes de consumir: falha cedo se Postgres/Redis estiverem fora
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 15*time.Second)
	sinks, err := export.Open(bootCtx, cfg, log)
	bootCancel()
	if err != nil {
		log.Fatal("export sinks", zap.Error(err))
	}
	defer sinks.Close()

	// Métricas Prometheus + health check (Postgres e Redis)
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewLedgerMetrics(reg)
	if cfg.MetricsPort != "" {
		srv := metrics.StartMetricsServer(cfg.MetricsPort, reg, sinks.Health, log)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	// Consumer Kafka (consumer group ledger-stream-worker) + DLQ para mensagens inválidas
	brokers := cfg.Brokers()
	reader := kafka.NewReader(brokers, cfg.TopicTransactions, cfg.ServiceName)
	defer reader.Close()
	dlq := kafka.NewWriter(brokers, cfg.TopicTransactionsDLQ)
	defer dlq.Close()

	src := &ingest.KafkaSource{
		Log:         log,
		Reader:      reader,
		DLQ:         dlq,
		OnConsumed:  m.Consumed.Inc,
		OnMalformed: func(error) { m.Malformed.WithLabelValues("kafka").Inc() },
		OnError:     func(stage string) { m.SourceErrors.WithLabelValues(stage).Inc() },
	}

	eng := engine.New(engine.Config{Workers: cfg.WorkerCount, QueueCapacity: cfg.QueueCapacity}, report.Factory(log, m))
	eng.OnStart = func(d *engine.Dispatcher) { m.WatchQueues(d.Workers(), d.QueueDepth) }

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := uuid.NewString()
	log.Info("ledger-stream-worker started",
		zap.String("run_id", runID),
		zap.String("topic", cfg.TopicTransactions),
		zap.Int("workers", cfg.WorkerCount),
	)

	res, err := eng.Run(ctx, src)
	if err != nil {
		// o Report parcial continua consistente e ainda é exportado
		log.Error("consumer stopped with error", zap.Error(err))
	}
	snaps := res.Snapshots()
	m.Accounts.Set(float64(len(snaps)))
	log.Info("ledger drained", zap.String("run_id", runID), zap.Int("routed", res.Routed), zap.Int("accounts", len(snaps)))

	sinks.Exporter.OnError = func(stage string) { m.ExportErrors.WithLabelValues(stage).Inc() }
	sinks.Exporter.OnExported = m.Exported.Inc

	ectx, ecancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer ecancel()
	if err := sinks.Exporter.Export(ectx, runID, snaps); err != nil {
		log.Error("export failed", zap.String("run_id", runID), zap.Error(err))
	}
	log.Info("ledger-stream-worker stopped")
}
