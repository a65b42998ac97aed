package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/domain"
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/engine"
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/ingest"
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/publisher"
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/report"
	"github.com/radieske/tx-ledger-engine/internal/shared/config"
	"github.com/radieske/tx-ledger-engine/internal/shared/kafka"
	"github.com/radieske/tx-ledger-engine/internal/shared/logger"
	"github.com/radieske/tx-ledger-engine/internal/tx-simulator/generator"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	def := generator.DefaultOptions()
	n := flag.Int("n", 10000, "number of transactions")
	clients := flag.Int("clients", def.Clients, "distinct client ids")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	invalid := flag.Float64("invalid", def.InvalidRate, "fraction of transactions the ledger must reject")
	maxAmount := flag.Int64("max-amount", def.MaxAmount, "largest deposit/withdrawal amount")
	out := flag.String("out", "csv", "csv (stdout) or kafka")
	expected := flag.String("expected", "", "also write the expected balances CSV to this path")
	flag.Parse()

	opts := generator.Options{Clients: *clients, Seed: *seed, InvalidRate: *invalid, MaxAmount: *maxAmount}
	txs := generator.Generate(opts, *n)
	log.Info("stream generated", zap.Int("transactions", len(txs)), zap.Int64("seed", *seed))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch *out {
	case "csv":
		w := bufio.NewWriter(os.Stdout)
		if err := writeCSV(w, txs); err != nil {
			log.Fatal("write csv", zap.Error(err))
		}
		if err := w.Flush(); err != nil {
			log.Fatal("write csv", zap.Error(err))
		}
	case "kafka":
		if err := publish(ctx, cfg, log, txs); err != nil {
			log.Fatal("publish", zap.Error(err))
		}
	default:
		log.Fatal("unknown output", zap.String("out", *out))
	}

	if *expected != "" {
		if err := writeExpected(ctx, *expected, txs); err != nil {
			log.Fatal("expected balances", zap.Error(err))
		}
		log.Info("expected balances written", zap.String("path", *expected))
	}
}

func writeCSV(w io.Writer, txs []domain.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ingest.Header); err != nil {
		return err
	}
	for _, tx := range txs {
		if err := cw.Write(ingest.FormatRecord(tx)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// publish envia o fluxo em lotes com a chave do cliente: a ordem por cliente é mantida na partição.
func publish(ctx context.Context, cfg config.Config, log *zap.Logger, txs []domain.Transaction) error {
	brokers := cfg.Brokers()
	if cfg.Env == "local" || cfg.Env == "dev" {
		if len(brokers) == 0 {
			return fmt.Errorf("kafka brokers not provided")
		}
		if err := publisher.EnsureTopic(ctx, brokers[0], cfg.TopicTransactions, log); err != nil {
			return err
		}
	}

	w := kafka.NewWriter(brokers, cfg.TopicTransactions)
	defer w.Close()

	const batch = 500
	msgs := make([]kafka.Message, 0, batch)
	flush := func() error {
		if len(msgs) == 0 {
			return nil
		}
		if err := w.WriteMessages(ctx, msgs...); err != nil {
			return err
		}
		msgs = msgs[:0]
		return nil
	}

	for i, tx := range txs {
		b, err := json.Marshal(ingest.ToEvent(tx))
		if err != nil {
			return err
		}
		key := strconv.FormatUint(uint64(tx.Target().Client), 10)
		msgs = append(msgs, kafka.Message{Key: []byte(key), Value: b, Time: time.Now()})
		if len(msgs) == batch {
			if err := flush(); err != nil {
				return fmt.Errorf("transactions up to %d of %d: %w", i+1, len(txs), err)
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	log.Info("stream published", zap.String("topic", cfg.TopicTransactions), zap.Int("transactions", len(txs)))
	return nil
}

// writeExpected aplica o fluxo com um único worker e grava o resultado esperado.
func writeExpected(ctx context.Context, path string, txs []domain.Transaction) error {
	res, err := engine.New(engine.Config{Workers: 1}, nil).Run(ctx, ingest.NewSliceSource(txs))
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteCSV(f, res.Snapshots()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
