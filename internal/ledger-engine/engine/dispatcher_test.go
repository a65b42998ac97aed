package engine

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/domain"
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/ledger"
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/money"
)

func amount(s string) money.Funds {
	f, err := money.ParseFunds(s)
	if err != nil {
		panic(err)
	}
	return f
}

func ref(c domain.ClientID, tx domain.TxID) domain.Ref { return domain.Ref{Client: c, Tx: tx} }

func deposit(c domain.ClientID, tx domain.TxID, a string) domain.Transaction {
	return domain.Deposit{Ref: ref(c, tx), Amount: amount(a)}
}

func withdrawal(c domain.ClientID, tx domain.TxID, a string) domain.Transaction {
	return domain.Withdrawal{Ref: ref(c, tx), Amount: amount(a)}
}

// randomTransactions mistura clientes e eventos válidos/inválidos de forma reprodutível.
func randomTransactions(seed int64, n, clients int) []domain.Transaction {
	rng := rand.New(rand.NewSource(seed))
	out := make([]domain.Transaction, 0, n)
	var next domain.TxID = 1
	for i := 0; i < n; i++ {
		c := domain.ClientID(rng.Intn(clients))
		target := ref(c, domain.TxID(rng.Intn(int(next))+1))
		amt := decimal.NewFromInt(rng.Int63n(1_000_000)).Shift(-4).String()
		switch rng.Intn(7) {
		case 0, 1, 2:
			out = append(out, deposit(c, next, amt))
			next++
		case 3:
			out = append(out, withdrawal(c, next, amt))
			next++
		case 4:
			out = append(out, domain.Dispute{Ref: target})
		case 5:
			out = append(out, domain.Resolve{Ref: target})
		default:
			out = append(out, domain.Chargeback{Ref: target})
		}
	}
	return out
}

// orderReporter registra a ordem de aplicação; cada instância é usada por um único worker.
type orderReporter struct {
	seen map[domain.ClientID][]domain.TxID
}

func (r *orderReporter) record(tx domain.Transaction) {
	t := tx.Target()
	r.seen[t.Client] = append(r.seen[t.Client], t.Tx)
}

func (r *orderReporter) Applied(tx domain.Transaction)          { r.record(tx) }
func (r *orderReporter) Rejected(tx domain.Transaction, _ error) { r.record(tx) }
func (r *orderReporter) Failed(domain.Transaction, error)        {}

func TestShard(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Shard(0, 8))
	assert.Equal(t, 3, Shard(11, 8))
	assert.Equal(t, 0, Shard(65535, 1))
}

func TestNewDispatcherRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	for _, cfg := range []Config{{Workers: 0}, {Workers: -1}, {Workers: 2, QueueCapacity: -1}} {
		_, err := NewDispatcher(cfg, nil)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	}
}

func TestDispatcherPreservesPerClientOrder(t *testing.T) {
	t.Parallel()

	reporters := make([]*orderReporter, 4)
	d, err := NewDispatcher(Config{Workers: 4, QueueCapacity: 2}, func(shard int) ledger.Reporter {
		reporters[shard] = &orderReporter{seen: make(map[domain.ClientID][]domain.TxID)}
		return reporters[shard]
	})
	require.NoError(t, err)

	want := make(map[domain.ClientID][]domain.TxID)
	for i, tx := range randomTransactions(7, 3000, 13) {
		// ids únicos por posição para verificar a ordem exata
		ordered := domain.Dispute{Ref: ref(tx.Target().Client, domain.TxID(i))}
		want[ordered.Client] = append(want[ordered.Client], ordered.Tx)
		require.NoError(t, d.Route(context.Background(), ordered))
	}

	accounts := d.Shutdown()
	assert.Len(t, accounts, len(want))

	got := make(map[domain.ClientID][]domain.TxID)
	for shard, rep := range reporters {
		for c, ids := range rep.seen {
			assert.Equal(t, shard, Shard(c, 4), "client %d applied on wrong shard", c)
			got[c] = ids
		}
	}
	assert.Equal(t, want, got)
}

func TestPartitioningDoesNotChangeResults(t *testing.T) {
	t.Parallel()

	for _, seed := range []int64{1, 2, 3, 42} {
		txs := randomTransactions(seed, 5000, 50)

		run := func(workers int) map[domain.ClientID]domain.Snapshot {
			d, err := NewDispatcher(Config{Workers: workers, QueueCapacity: 16}, nil)
			require.NoError(t, err)
			for _, tx := range txs {
				require.NoError(t, d.Route(context.Background(), tx))
			}
			return d.Shutdown()
		}

		single := run(1)
		pooled := run(8)
		require.Len(t, pooled, len(single))
		for c, want := range single {
			got, ok := pooled[c]
			require.True(t, ok, "seed %d: client %d missing", seed, c)
			assert.True(t, want.Available.Equal(got.Available), "seed %d client %d available", seed, c)
			assert.True(t, want.Held.Equal(got.Held), "seed %d client %d held", seed, c)
			assert.Equal(t, want.Locked, got.Locked, "seed %d client %d locked", seed, c)
		}
	}
}

func TestDispatcherShutdownIsIdempotent(t *testing.T) {
	t.Parallel()

	d, err := NewDispatcher(DefaultConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, d.Route(context.Background(), deposit(1, 1, "2.5")))

	first := d.Shutdown()
	second := d.Shutdown()
	assert.Equal(t, first, second)
	require.Contains(t, first, domain.ClientID(1))
	assert.Equal(t, "2.5000", first[1].Available.StringFixed(4))

	assert.ErrorIs(t, d.Route(context.Background(), deposit(1, 2, "1")), ErrDispatcherClosed)
}

// blockingReporter segura o worker no primeiro Applied até release ser fechado.
type blockingReporter struct {
	ledger.NopReporter
	once    sync.Once
	release chan struct{}
}

func (r *blockingReporter) Applied(domain.Transaction) {
	r.once.Do(func() { <-r.release })
}

func TestRouteHonorsContextWhenQueueIsFull(t *testing.T) {
	t.Parallel()

	rep := &blockingReporter{release: make(chan struct{})}
	d, err := NewDispatcher(Config{Workers: 1, QueueCapacity: 1}, func(int) ledger.Reporter { return rep })
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, d.Route(ctx, deposit(1, 1, "1")))
	require.NoError(t, d.Route(ctx, deposit(1, 2, "1")))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, d.Route(cancelled, deposit(1, 3, "1")), context.Canceled)

	close(rep.release)
	accounts := d.Shutdown()
	assert.Equal(t, "2.0000", accounts[1].Available.StringFixed(4))
}

func TestDispatcherEmptyRun(t *testing.T) {
	t.Parallel()

	d, err := NewDispatcher(Config{Workers: 3}, nil)
	require.NoError(t, err)
	assert.Empty(t, d.Shutdown())
	assert.Equal(t, 3, d.Workers())
	assert.Zero(t, d.QueueDepth(2))
}
