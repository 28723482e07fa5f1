package artidx

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// BulkLoadResult reports the outcome of BulkLoad.
type BulkLoadResult struct {
	// Inserted is the number of entries stored.
	Inserted int
	// Errors holds the insert error of each input entry (nil on success or
	// if the entry was not attempted).
	Errors []error
}

// Failed returns the number of entries that failed to insert.
func (r BulkLoadResult) Failed() int {
	n := 0
	for _, err := range r.Errors {
		if err != nil {
			n++
		}
	}
	return n
}

// BulkLoad inserts entries with the index's insert policy, typically to
// rebuild an index from its table. Entries are sorted by key and split into
// contiguous runs, one per worker (WithLoadWorkers), so workers mostly touch
// disjoint subtrees. The load is throttled by WithLoadRate.
//
// Per-entry failures (duplicates, prefix conflicts, memory limit) are
// reported in the result and do not stop the load. A canceled ctx or a
// closed index aborts it and is returned as the error.
func (idx *Index) BulkLoad(ctx context.Context, entries []Entry) (BulkLoadResult, error) {
	start := time.Now()
	res := BulkLoadResult{Errors: make([]error, len(entries))}
	if !idx.enter() {
		return res, ErrClosed
	}
	idx.exit()

	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return bytes.Compare(entries[a].Key, entries[b].Key)
	})

	workers := max(1, min(idx.workers, (len(entries)+DefaultLoadBatch-1)/DefaultLoadBatch))
	per := (len(order) + workers - 1) / workers
	mode := idx.mode()

	var inserted atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < len(order); lo += per {
		part := order[lo:min(lo+per, len(order))]
		g.Go(func() error {
			if err := idx.rc.AcquireBackground(gctx); err != nil {
				return err
			}
			defer idx.rc.ReleaseBackground()

			s, err := idx.NewSession()
			if err != nil {
				return err
			}
			defer s.Close()

			for len(part) > 0 {
				n := min(len(part), DefaultLoadBatch)
				if err := idx.rc.AcquireRows(gctx, n); err != nil {
					return err
				}
				for _, i := range part[:n] {
					_, err := s.put(entries[i].Key, entries[i].TID, mode, nil)
					if errors.Is(err, ErrClosed) {
						return err
					}
					if err != nil {
						res.Errors[i] = err
						continue
					}
					inserted.Add(1)
				}
				part = part[n:]
				s.Quiesce()
			}
			return nil
		})
	}
	err := g.Wait()
	res.Inserted = int(inserted.Load())

	failed := res.Failed()
	idx.metrics.RecordBulkLoad(len(entries), failed, time.Since(start))
	idx.logger.LogBulkLoad(ctx, len(entries), failed, time.Since(start), err)
	return res, err
}
