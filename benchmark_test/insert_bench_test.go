package benchmark_test

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/hupe1980/artidx"
	"github.com/hupe1980/artidx/keys"
	"github.com/hupe1980/artidx/testutil"
)

// ============================================================================
// Insert Benchmarks
// ============================================================================

// BenchmarkInsert measures single-insert throughput on one session.
// Reports: ns/op, allocs, and keys/sec.
func BenchmarkInsert(b *testing.B) {
	gens := map[string]func(rng *testutil.RNG, n int) [][]byte{
		"uint64": func(rng *testutil.RNG, n int) [][]byte { return rng.Uint64Keys(n) },
		"dense":  func(_ *testutil.RNG, n int) [][]byte { return testutil.SequentialKeys(0, n) },
		"string": func(rng *testutil.RNG, n int) [][]byte {
			return rng.StringKeys(n, 8, 24, "abcdefghijklmnopqrstuvwxyz")
		},
	}

	for name, gen := range gens {
		b.Run("keys="+name, func(b *testing.B) {
			idx := OpenBenchIndex(b)
			defer idx.Close()

			ks := gen(testutil.NewRNG(benchSeed), b.N)
			s, err := idx.NewSession()
			if err != nil {
				b.Fatal(err)
			}
			defer s.Close()

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if err := s.Insert(ks[i], artidx.TID(i)); err != nil {
					b.Fatal(err)
				}
			}

			b.StopTimer()
			b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "keys/sec")
		})
	}
}

// BenchmarkParallelInsert measures insert throughput with one session per
// goroutine writing disjoint keys.
func BenchmarkParallelInsert(b *testing.B) {
	idx := OpenBenchIndex(b)
	defer idx.Close()

	var worker atomic.Uint32
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		s, err := idx.NewSession()
		if err != nil {
			b.Error(err)
			return
		}
		defer s.Close()

		w := atomicInc(&worker)
		kb := keys.NewBuilder()
		for i := uint32(0); pb.Next(); i++ {
			kb.Reset()
			if err := s.Insert(kb.Uint32(i).Uint32(w).Key(), artidx.TID(i)); err != nil {
				b.Error(err)
				return
			}
		}
	})

	b.StopTimer()
	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "keys/sec")
}

// BenchmarkBulkLoad measures BulkLoad throughput with various worker counts.
func BenchmarkBulkLoad(b *testing.B) {
	for _, workers := range []int{1, 4, 8} {
		b.Run("workers="+strconv.Itoa(workers), func(b *testing.B) {
			ks := testutil.NewRNG(benchSeed).Uint64Keys(sizeMedium)
			entries := make([]artidx.Entry, len(ks))
			for i, k := range ks {
				entries[i] = artidx.Entry{Key: k, TID: artidx.TID(i)}
			}

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				idx := OpenBenchIndex(b, artidx.WithLoadWorkers(workers))
				res, err := idx.BulkLoad(context.Background(), entries)
				if err != nil {
					b.Fatal(err)
				}
				if res.Failed() > 0 {
					b.Fatalf("%d entries failed", res.Failed())
				}
				_ = idx.Close()
			}

			b.StopTimer()
			b.ReportMetric(float64(b.N*len(entries))/b.Elapsed().Seconds(), "keys/sec")
		})
	}
}
