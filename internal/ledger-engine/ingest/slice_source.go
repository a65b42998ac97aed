package ingest

import (
	"context"
	"io"

	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/domain"
)

// SliceSource entrega transações já montadas em memória (simulador e testes).
type SliceSource struct {
	txs []domain.Transaction
	pos int
}

func NewSliceSource(txs []domain.Transaction) *SliceSource {
	return &SliceSource{txs: txs}
}

func (s *SliceSource) Next(ctx context.Context) (domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.txs) {
		return nil, io.EOF
	}
	tx := s.txs[s.pos]
	s.pos++
	return tx, nil
}
