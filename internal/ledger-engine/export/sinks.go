package export

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/cache"
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/publisher"
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/repository"
	sharedcache "github.com/radieske/tx-ledger-engine/internal/shared/cache"
	"github.com/radieske/tx-ledger-engine/internal/shared/config"
	"github.com/radieske/tx-ledger-engine/internal/shared/db"
)

// Sinks mantém as conexões abertas para os destinos habilitados em EXPORT_SINKS.
type Sinks struct {
	Exporter *Exporter

	pings   []func(ctx context.Context) error
	closers []func() error
}

// Open conecta apenas os destinos habilitados; sem nenhum, o Exporter vira no-op.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (*Sinks, error) {
	s := &Sinks{Exporter: &Exporter{Log: log, Channel: cfg.RedisPubSubChannel}}

	if cfg.Sink(config.SinkRedis) {
		rdb, err := sharedcache.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("redis connect: %w", err), s.Close())
		}
		s.Exporter.Cache = cache.NewRedisCache(rdb, cfg.SnapshotTTL)
		s.pings = append(s.pings, func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		s.closers = append(s.closers, rdb.Close)
	}

	if cfg.Sink(config.SinkPostgres) {
		pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("postgres connect: %w", err), s.Close())
		}
		s.closers = append(s.closers, pg.Close)
		repo := repository.NewPostgresRepo(pg)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, errors.Join(fmt.Errorf("postgres schema: %w", err), s.Close())
		}
		s.Exporter.Repo = repo
		s.pings = append(s.pings, pg.PingContext)
	}

	if cfg.Sink(config.SinkKafka) {
		pub, err := publisher.NewKafkaPublisher(cfg.Brokers(), cfg.TopicAccountSnapshots, cfg.Env, log)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("kafka publisher: %w", err), s.Close())
		}
		s.Exporter.Publisher = pub
		s.closers = append(s.closers, pub.Close)
	}

	log.Info("export sinks ready", zap.Strings("sinks", cfg.ExportSinks))
	return s, nil
}

// Health verifica as conexões de Redis e Postgres (usado em /healthz).
func (s *Sinks) Health(ctx context.Context) error {
	for _, ping := range s.pings {
		if err := ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sinks) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	return errors.Join(errs...)
}
