package art

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSequential(t *testing.T, n uint64) (*Tree, *ThreadInfo) {
	t.Helper()
	tree, ti := newTestTree(t)
	for i := uint64(1); i <= n; i++ {
		mustInsert(t, tree, ti, u64(i), i)
	}
	return tree, ti
}

func tidsOf(entries []Entry) []uint64 {
	out := make([]uint64, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.TID)
	}
	return out
}

func seq(from, to uint64) []uint64 {
	out := make([]uint64, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

func TestScan_RangeOnStaticTree(t *testing.T) {
	tree, ti := buildSequential(t, 1000)

	got, more := tree.ScanBatch(ti, Bounds{Start: u64(200), End: u64(300)}, 0, nil)
	assert.False(t, more)
	require.Len(t, got, 101)
	assert.Equal(t, seq(200, 300), tidsOf(got))
	for i, e := range got {
		assert.Equal(t, uint64(200+i), binary.BigEndian.Uint64(e.Key))
	}
}

func TestScan_Exclusivity(t *testing.T) {
	tree, ti := buildSequential(t, 1000)

	got, _ := tree.ScanBatch(ti, Bounds{Start: u64(200), End: u64(300), StartExclusive: true}, 0, nil)
	assert.Equal(t, seq(201, 300), tidsOf(got))

	got, _ = tree.ScanBatch(ti, Bounds{Start: u64(200), End: u64(300), EndExclusive: true}, 0, nil)
	assert.Equal(t, seq(200, 299), tidsOf(got))

	got, _ = tree.ScanBatch(ti, Bounds{Start: u64(500), End: u64(500)}, 0, nil)
	assert.Equal(t, []uint64{500}, tidsOf(got))

	got, _ = tree.ScanBatch(ti, Bounds{Start: u64(500), End: u64(500), EndExclusive: true}, 0, nil)
	assert.Empty(t, got)

	got, _ = tree.ScanBatch(ti, Bounds{Start: u64(600), End: u64(500)}, 0, nil)
	assert.Empty(t, got)
}

func TestScan_Unbounded(t *testing.T) {
	tree, ti := buildSequential(t, 300)

	got, _ := tree.ScanBatch(ti, Bounds{}, 0, nil)
	assert.Equal(t, seq(1, 300), tidsOf(got))

	got, _ = tree.ScanBatch(ti, Bounds{Start: u64(290)}, 0, nil)
	assert.Equal(t, seq(290, 300), tidsOf(got))

	got, _ = tree.ScanBatch(ti, Bounds{End: u64(3)}, 0, nil)
	assert.Equal(t, seq(1, 3), tidsOf(got))

	// Bounds that are not stored keys and have other lengths.
	got, _ = tree.ScanBatch(ti, Bounds{Start: []byte{0, 0, 0, 0, 0, 0, 1}, End: []byte{0, 0, 0, 0, 0, 0, 1, 5, 0}}, 0, nil)
	assert.Equal(t, seq(256, 261), tidsOf(got))
}

func TestScan_LimitAndContinue(t *testing.T) {
	tree, ti := buildSequential(t, 1000)

	var all []uint64
	b := Bounds{Start: u64(100), End: u64(899)}
	batches := 0
	for {
		got, more := tree.ScanBatch(ti, b, 64, nil)
		batches++
		all = append(all, tidsOf(got)...)
		if !more {
			break
		}
		b.Start, b.StartExclusive = got[len(got)-1].Key, true
	}
	assert.Equal(t, seq(100, 899), all)
	assert.Equal(t, 13, batches)
}

func TestScan_MultiValuesStayTogether(t *testing.T) {
	tree, ti := newTestTree(t)
	for i := uint64(1); i <= 10; i++ {
		for v := uint64(0); v < 3; v++ {
			mustInsert(t, tree, ti, u64(i), i*100+v)
		}
	}

	got, more := tree.ScanBatch(ti, Bounds{}, 4, nil)
	assert.True(t, more)
	require.Len(t, got, 12)
	assert.Equal(t, []uint64{100, 101, 102, 200, 201, 202, 300, 301, 302, 400, 401, 402}, tidsOf(got))
}

func TestScan_StringKeysInOrder(t *testing.T) {
	tree, ti := newTestTree(t)
	words := []string{"delta", "alpha", "charlie", "bravo", "alphabet", "al", "echo", "a"}
	for i, w := range words {
		mustInsert(t, tree, ti, []byte(w+"\x00"), uint64(i))
	}

	got, _ := tree.ScanBatch(ti, Bounds{}, 0, nil)
	require.Len(t, got, len(words))
	for i := 1; i < len(got); i++ {
		assert.Negative(t, bytes.Compare(got[i-1].Key, got[i].Key))
	}

	got, _ = tree.ScanBatch(ti, Bounds{Start: []byte("al"), End: []byte("alz")}, 0, nil)
	var names []string
	for _, e := range got {
		names = append(names, string(bytes.TrimSuffix(e.Key, []byte{0})))
	}
	assert.Equal(t, []string{"al", "alpha", "alphabet"}, names)
}

func TestScan_LongPrefixBounds(t *testing.T) {
	tree, ti := newTestTree(t)
	base := bytes.Repeat([]byte{0xAB}, 16)
	for i := 0; i < 40; i++ {
		k := append(append([]byte(nil), base...), byte(i), 0)
		mustInsert(t, tree, ti, k, uint64(i))
	}

	lo := append(append([]byte(nil), base...), 10)
	hi := append(append([]byte(nil), base...), 20)
	got, _ := tree.ScanBatch(ti, Bounds{Start: lo, End: hi}, 0, nil)
	assert.Equal(t, seq(10, 19), tidsOf(got))

	got, _ = tree.ScanBatch(ti, Bounds{Start: bytes.Repeat([]byte{0xAB}, 20)}, 0, nil)
	assert.Empty(t, got)
}
