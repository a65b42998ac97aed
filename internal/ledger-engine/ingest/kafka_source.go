package ingest

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/domain"
	"github.com/radieske/tx-ledger-engine/internal/shared/kafka"
)

// KafkaSource consome o tópico de transações e entrega as variantes tipadas.
// Mensagens inválidas são logadas, enviadas para a DLQ (quando configurada) e puladas.
// A fonte nunca termina sozinha: o fim da entrada é o cancelamento de ctx.
type KafkaSource struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	DLQ    *kafka.Writer // opcional

	OnConsumed  func()      // métricas (counter++)
	OnMalformed func(error) // métricas
	OnError     func(string)

	RetryDelay time.Duration
}

// Next bloqueia até a próxima transação válida.
func (s *KafkaSource) Next(ctx context.Context) (domain.Transaction, error) {
	for {
		key, value, err := kafka.ReadNext(ctx, s.Reader)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err() // encerra se o contexto for cancelado
			}
			if errors.Is(err, io.EOF) {
				return nil, io.EOF // reader fechado
			}
			s.Log.Warn("kafka read failed", zap.Error(err))
			if s.OnError != nil {
				s.OnError("read")
			}
			if err := sleep(ctx, s.retryDelay()); err != nil {
				return nil, err
			}
			continue
		}

		if s.OnConsumed != nil {
			s.OnConsumed()
		}

		tx, err := DecodeEvent(value)
		if err != nil {
			s.Log.Warn("invalid transaction message", zap.ByteString("key", key), zap.Error(err))
			if s.OnMalformed != nil {
				s.OnMalformed(err)
			}
			s.deadLetter(ctx, key, value, err)
			continue
		}
		return tx, nil
	}
}

func (s *KafkaSource) deadLetter(ctx context.Context, key, value []byte, cause error) {
	if s.DLQ == nil {
		return
	}
	hdr := kafka.Header{Key: "error", Value: []byte(cause.Error())}
	if err := kafka.WriteJSON(ctx, s.DLQ, string(key), value, hdr); err != nil {
		s.Log.Error("dlq publish failed", zap.Error(err))
		if s.OnError != nil {
			s.OnError("dlq")
		}
	}
}

func (s *KafkaSource) retryDelay() time.Duration {
	if s.RetryDelay > 0 {
		return s.RetryDelay
	}
	return 500 * time.Millisecond
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
