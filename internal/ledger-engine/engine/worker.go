package engine

import (
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/domain"
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/ledger"
)

// Worker consome, em ordem, a fila privada de uma partição e aplica cada transação ao seu Ledger.
type Worker struct {
	shard  int
	queue  <-chan domain.Transaction
	ledger *ledger.Ledger
}

func NewWorker(shard int, queue <-chan domain.Transaction, reporter ledger.Reporter) *Worker {
	return &Worker{
		shard:  shard,
		queue:  queue,
		ledger: ledger.New(reporter),
	}
}

func (w *Worker) Shard() int { return w.shard }

// Run processa até a fila ser fechada e esvaziada, e então publica as contas da partição.
func (w *Worker) Run() []domain.Snapshot {
	for tx := range w.queue {
		w.ledger.Apply(tx)
	}
	return w.ledger.Snapshots()
}
