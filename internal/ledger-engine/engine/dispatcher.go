package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/domain"
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/ledger"
)

const (
	DefaultWorkers       = 8
	DefaultQueueCapacity = 1024
)

var (
	ErrInvalidConfig    = errors.New("invalid engine config")
	ErrDispatcherClosed = errors.New("dispatcher is closed")
)

// Config é o único ajuste que o núcleo precisa: tamanho do pool e capacidade de cada fila.
type Config struct {
	Workers       int
	QueueCapacity int
}

func DefaultConfig() Config {
	return Config{Workers: DefaultWorkers, QueueCapacity: DefaultQueueCapacity}
}

func (c Config) validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.QueueCapacity < 0 {
		return fmt.Errorf("%w: queue capacity must not be negative, got %d", ErrInvalidConfig, c.QueueCapacity)
	}
	return nil
}

// ReporterFactory cria o Reporter de cada partição.
type ReporterFactory func(shard int) ledger.Reporter

// Shard retorna a partição dona do cliente.
func Shard(client domain.ClientID, workers int) int {
	return int(client) % workers
}

// Dispatcher roteia transações para os workers por client_id mod N e junta o resultado final.
// Route e Shutdown devem ser chamados pela mesma goroutine (produtor único).
type Dispatcher struct {
	queues  []chan domain.Transaction
	parts   [][]domain.Snapshot
	group   errgroup.Group
	once    sync.Once
	closed  bool
	merged  map[domain.ClientID]domain.Snapshot
	workers int
}

// NewDispatcher cria as filas e inicia os N workers.
func NewDispatcher(cfg Config, reporters ReporterFactory) (*Dispatcher, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	d := &Dispatcher{
		queues:  make([]chan domain.Transaction, cfg.Workers),
		parts:   make([][]domain.Snapshot, cfg.Workers),
		workers: cfg.Workers,
	}

	for i := 0; i < cfg.Workers; i++ {
		q := make(chan domain.Transaction, cfg.QueueCapacity)
		d.queues[i] = q

		var rep ledger.Reporter
		if reporters != nil {
			rep = reporters(i)
		}
		w := NewWorker(i, q, rep)

		// cada worker escreve apenas no seu índice; a leitura acontece após group.Wait
		d.group.Go(func() error {
			d.parts[w.Shard()] = w.Run()
			return nil
		})
	}

	return d, nil
}

func (d *Dispatcher) Workers() int { return d.workers }

// QueueDepth retorna quantas transações aguardam na fila da partição.
func (d *Dispatcher) QueueDepth(shard int) int {
	return len(d.queues[shard])
}

// Route enfileira tx na fila do worker dono do cliente.
// Bloqueia apenas enquanto essa fila estiver cheia.
func (d *Dispatcher) Route(ctx context.Context, tx domain.Transaction) error {
	if d.closed {
		return ErrDispatcherClosed
	}
	if tx == nil {
		return fmt.Errorf("route: nil transaction")
	}

	q := d.queues[Shard(tx.Target().Client, d.workers)]
	select {
	case q <- tx:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown fecha todas as filas, espera todos os workers drenarem e junta as partições.
// Chamadas repetidas retornam o mesmo resultado.
func (d *Dispatcher) Shutdown() map[domain.ClientID]domain.Snapshot {
	d.once.Do(func() {
		d.closed = true
		for _, q := range d.queues {
			close(q)
		}
		_ = d.group.Wait()

		total := 0
		for _, p := range d.parts {
			total += len(p)
		}
		d.merged = make(map[domain.ClientID]domain.Snapshot, total)
		for _, p := range d.parts {
			for _, s := range p {
				d.merged[s.Client] = s
			}
		}
	})
	return d.merged
}
