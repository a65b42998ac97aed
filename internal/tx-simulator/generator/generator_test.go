package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/domain"
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/engine"
	"github.com/radieske/tx-ledger-engine/internal/ledger-engine/ingest"
)

func TestGenerateIsDeterministic(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Seed = 42

	a := Generate(opts, 500)
	b := Generate(opts, 500)
	require.Len(t, a, 500)
	assert.Equal(t, a, b)

	opts.Seed = 43
	assert.NotEqual(t, a, Generate(opts, 500))
}

func TestGenerateShape(t *testing.T) {
	t.Parallel()

	opts := Options{Clients: 5, Seed: 7, MaxAmount: 10}
	txs := Generate(opts, 2000)

	kinds := map[domain.Kind]int{}
	deposits := map[domain.Ref]bool{}
	for _, tx := range txs {
		ref := tx.Target()
		assert.GreaterOrEqual(t, int(ref.Client), 1)
		assert.LessOrEqual(t, int(ref.Client), 5)
		kinds[tx.Kind()]++

		switch tx := tx.(type) {
		case domain.Deposit:
			assert.False(t, deposits[tx.Ref], "no duplicate deposits without InvalidRate")
			deposits[tx.Ref] = true
			assert.True(t, tx.Amount.Decimal().IsPositive())
		case domain.Dispute:
			assert.True(t, deposits[tx.Ref], "disputes reference a deposit of the same client")
		}
	}

	for _, k := range []domain.Kind{domain.KindDeposit, domain.KindWithdrawal, domain.KindDispute, domain.KindResolve, domain.KindChargeback} {
		assert.Positive(t, kinds[k], k)
	}
}

func TestGeneratedStreamIsIndependentOfWorkerCount(t *testing.T) {
	t.Parallel()

	txs := Generate(Options{Clients: 50, Seed: 3, InvalidRate: 0.1, MaxAmount: 100}, 5000)

	run := func(workers int) map[domain.ClientID]domain.Snapshot {
		res, err := engine.New(engine.Config{Workers: workers, QueueCapacity: 16}, nil).
			Run(context.Background(), ingest.NewSliceSource(txs))
		require.NoError(t, err)
		return res.Accounts
	}

	single := run(1)
	pooled := run(8)
	require.Equal(t, len(single), len(pooled))
	for id, s := range single {
		p := pooled[id]
		assert.True(t, s.Available.Equal(p.Available), "client %d available", id)
		assert.True(t, s.Held.Equal(p.Held), "client %d held", id)
		assert.Equal(t, s.Locked, p.Locked, "client %d locked", id)
		assert.False(t, s.Held.IsNegative(), "client %d held", id)
	}
}
