package report

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/domain"
)

// Header da saída por cliente.
var Header = []string{"client", "available", "held", "total", "locked"}

// WriteCSV escreve uma linha por cliente, ordenada por id, com 4 casas decimais.
func WriteCSV(w io.Writer, snaps []domain.Snapshot) error {
	sorted := make([]domain.Snapshot, len(snaps))
	copy(sorted, snaps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Client < sorted[j].Client })

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, s := range sorted {
		available, held, total := s.Fixed()
		row := []string{
			strconv.FormatUint(uint64(s.Client), 10),
			available,
			held,
			total,
			strconv.FormatBool(s.Locked),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
