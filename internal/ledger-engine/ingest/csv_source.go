package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/domain"
)

// Header é o cabeçalho esperado do feed CSV.
var Header = []string{"type", "client", "tx", "amount"}

// CSVSource lê transações de um feed CSV (type, client, tx, amount).
// Espaços em volta dos campos são ignorados e a coluna amount pode faltar em disputas.
// Linhas inválidas são reportadas em OnMalformed e puladas.
type CSVSource struct {
	r    *csv.Reader
	read int

	OnMalformed func(line int, err error)
}

func NewCSVSource(r io.Reader) *CSVSource {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return &CSVSource{r: cr}
}

// Next retorna a próxima transação válida ou io.EOF ao final do arquivo.
func (s *CSVSource) Next(ctx context.Context) (domain.Transaction, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := s.r.Read()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			s.malformed(perr.Line, err)
			continue
		}
		if err != nil {
			return nil, err
		}

		s.read++
		line, _ := s.r.FieldPos(0)
		if s.read == 1 && isHeader(rec) {
			continue
		}
		if isBlank(rec) {
			continue
		}

		tx, err := ParseRecord(rec)
		if err != nil {
			s.malformed(line, err)
			continue
		}
		return tx, nil
	}
}

func (s *CSVSource) malformed(line int, err error) {
	if s.OnMalformed != nil {
		s.OnMalformed(line, err)
	}
}

func isHeader(rec []string) bool {
	return len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), Header[0])
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
