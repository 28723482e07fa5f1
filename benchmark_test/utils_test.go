package benchmark_test

import (
	"sync/atomic"
	"testing"

	"github.com/hupe1980/artidx"
	"github.com/hupe1980/artidx/testutil"
)

const (
	benchSeed = 42

	sizeSmall  = 10_000
	sizeMedium = 100_000
	sizeLarge  = 1_000_000
)

// OpenBenchIndex creates an index for benchmarks and fails b on error.
func OpenBenchIndex(b *testing.B, optFns ...artidx.Option) *artidx.Index {
	b.Helper()
	idx, err := artidx.New(optFns...)
	if err != nil {
		b.Fatal(err)
	}
	return idx
}

// LoadBenchIndex creates an index holding n random uint64 keys and returns
// the keys.
func LoadBenchIndex(b *testing.B, n int, optFns ...artidx.Option) (*artidx.Index, [][]byte) {
	b.Helper()
	idx := OpenBenchIndex(b, optFns...)
	ks := testutil.NewRNG(benchSeed).Uint64Keys(n)

	s, err := idx.NewSession()
	if err != nil {
		b.Fatal(err)
	}
	defer s.Close()
	for i, k := range ks {
		if err := s.Insert(k, artidx.TID(i)); err != nil {
			b.Fatal(err)
		}
	}
	s.Quiesce()
	return idx, ks
}

func atomicInc(p *atomic.Uint32) uint32 { return p.Add(1) }
