package artidx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/artidx/keys"
	"github.com/hupe1980/artidx/testutil"
)

func TestBulkLoad(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	idx := newTestIndex(t, WithLoadWorkers(4), WithMetricsCollector(metrics))

	rng := testutil.NewRNG(42)
	ks := rng.Uint64Keys(5000)
	entries := make([]Entry, 0, len(ks))
	for i, k := range ks {
		entries = append(entries, Entry{Key: k, TID: TID(i)})
	}

	res, err := idx.BulkLoad(context.Background(), entries)
	require.NoError(t, err)
	assert.Equal(t, 5000, res.Inserted)
	assert.Zero(t, res.Failed())
	assert.Equal(t, int64(5000), idx.Len())

	// An exact duplicate and a prefix conflict fail per entry.
	res, err = idx.BulkLoad(context.Background(), []Entry{
		{Key: ks[0], TID: 0},
		{Key: ks[1][:4], TID: 99},
		{Key: keys.String("fresh"), TID: 7},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 2, res.Failed())
	assert.ErrorIs(t, res.Errors[0], ErrDuplicateEntry)
	assert.ErrorIs(t, res.Errors[1], ErrPrefixConflict)
	assert.NoError(t, res.Errors[2])

	for i := 0; i < len(ks); i += 97 {
		tids, err := idx.Lookup(ks[i])
		require.NoError(t, err)
		assert.Equal(t, []TID{TID(i)}, tids)
	}
	require.NoError(t, idx.Check())

	st := metrics.GetStats()
	assert.Equal(t, int64(2), st.BulkLoadCount)
	assert.Equal(t, int64(5003), st.BulkLoadItems)
	assert.Equal(t, int64(2), st.BulkLoadFailed)
}

func TestBulkLoad_Empty(t *testing.T) {
	idx := newTestIndex(t)

	res, err := idx.BulkLoad(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, res.Inserted)
	assert.Zero(t, res.Failed())
}

func TestBulkLoad_Canceled(t *testing.T) {
	idx := newTestIndex(t, WithLoadRate(10))

	entries := make([]Entry, 1000)
	for i := range entries {
		entries[i] = Entry{Key: keys.Uint64(uint64(i)), TID: TID(i)}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := idx.BulkLoad(ctx, entries)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, res.Inserted, len(entries))
}

func TestBulkLoad_Closed(t *testing.T) {
	idx, err := New()
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	_, err = idx.BulkLoad(context.Background(), []Entry{{Key: keys.Uint64(1), TID: 1}})
	assert.ErrorIs(t, err, ErrClosed)
}
