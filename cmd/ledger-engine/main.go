package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/engine"
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/export"
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/ingest"
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/report"
	"github.com/radieske/tx-ledger-engine/internal/shared/config"
	"github.com/radieske/tx-ledger-engine/internal/shared/logger"
	"github.com/radieske/tx-ledger-engine/internal/shared/metrics"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()

	fs := flag.NewFlagSet(cfg.ServiceName, flag.ContinueOnError)
	workers := fs.Int("workers", cfg.WorkerCount, "number of ledger workers")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: %s [-workers N] <transactions.csv>\n", os.Args[0])
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		return 1
	}
	defer log.Sync()

	path := fs.Arg(0)
	f, err := os.Open(path)
	if err != nil {
		log.Error("open input", zap.String("path", path), zap.Error(err))
		return 1
	}
	defer f.Close()

	// Sinalização para encerrar a leitura (SIGINT/SIGTERM); o que já foi lido é aplicado
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	m := metrics.NewLedgerMetrics(reg)
	if cfg.MetricsPort != "" {
		srv := metrics.StartMetricsServer(cfg.MetricsPort, reg, nil, log)
		defer func() {
			sctx, scancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer scancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	src := ingest.NewCSVSource(bufio.NewReader(f))
	src.OnMalformed = func(line int, err error) {
		log.Warn("malformed record skipped", zap.Int("line", line), zap.Error(err))
		m.Malformed.WithLabelValues("csv").Inc()
	}

	eng := engine.New(engine.Config{Workers: *workers, QueueCapacity: cfg.QueueCapacity}, report.Factory(log, m))
	eng.OnStart = func(d *engine.Dispatcher) { m.WatchQueues(d.Workers(), d.QueueDepth) }

	runID := uuid.NewString()
	log.Info("run started", zap.String("run_id", runID), zap.String("input", path), zap.Int("workers", *workers))

	res, err := eng.Run(ctx, src)
	if err != nil {
		log.Error("run failed", zap.String("run_id", runID), zap.Error(err))
		return 1
	}
	snaps := res.Snapshots()
	m.Accounts.Set(float64(len(snaps)))

	out := bufio.NewWriter(os.Stdout)
	if err := report.WriteCSV(out, snaps); err != nil {
		log.Error("write output", zap.Error(err))
		return 1
	}
	if err := out.Flush(); err != nil {
		log.Error("write output", zap.Error(err))
		return 1
	}
	log.Info("run finished", zap.String("run_id", runID), zap.Int("routed", res.Routed), zap.Int("accounts", len(snaps)))

	if len(cfg.ExportSinks) == 0 {
		return 0
	}

	// exportação opcional: falhas são logadas mas não invalidam a saída já escrita
	ectx, ecancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer ecancel()

	sinks, err := export.Open(ectx, cfg, log)
	if err != nil {
		log.Error("export sinks", zap.Error(err))
		return 1
	}
	defer sinks.Close()

	sinks.Exporter.OnError = func(stage string) { m.ExportErrors.WithLabelValues(stage).Inc() }
	sinks.Exporter.OnExported = m.Exported.Inc
	if err := sinks.Exporter.Export(ectx, runID, snaps); err != nil {
		log.Error("export failed", zap.String("run_id", runID), zap.Error(err))
		return 1
	}
	return 0
}
