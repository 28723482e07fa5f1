// Package artidx provides a concurrent in-memory secondary index for Go.
//
// An Index maps byte keys to one or more 64-bit TIDs (tuple identifiers).
// It is an adaptive radix tree whose inner nodes grow and shrink between
// four fan-outs (N4, N16, N48, N256) and whose paths are compressed.
// Readers never lock: they validate per-node version stamps and retry on
// conflict. Writers lock only the nodes they change. Unlinked nodes are
// reclaimed once no session can still observe them.
//
// # Quick Start
//
//	idx, _ := artidx.New()
//	defer idx.Close()
//
//	_ = idx.Insert(keys.Uint64(42), 1001)
//	_ = idx.Insert(keys.Uint64(42), 1002)  // second TID for the same key
//	tids, _ := idx.Lookup(keys.Uint64(42)) // [1001 1002]
//
// # Keys
//
// Keys are compared as unsigned byte strings and must be prefix-free: no
// key may be a strict prefix of another (ErrPrefixConflict). The keys
// package encodes integers, strings and composite tuples accordingly:
//
//	k := keys.NewBuilder().Int64(tenant).String(email).Key()
//
// # Duplicate Keys
//
// By default a key holds any number of distinct TIDs. WithUnique(true)
// rejects a second TID with ErrKeyExists. Upsert replaces a key's TIDs and
// ConditionalInsert inserts only if no stored TID satisfies a predicate.
//
// # Range Scans
//
//	for e, err := range idx.Range(artidx.Between(lo, hi)) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(e.Key, e.TID)
//	}
//
// Scans return keys in ascending order and never return a key twice.
// RangeLimit pages through a range with a continuation key, and
// RangeBitmap collects the TIDs of a range into a roaring bitmap.
//
// # Sessions
//
// Every goroutine touching the tree is registered with the epoch
// reclaimer. Methods on Index borrow a registered Session from a free list;
// goroutines issuing many operations can hold their own:
//
//	s, _ := idx.NewSession()
//	defer s.Close()
//	for _, k := range batch {
//	    _ = s.Insert(k.key, k.tid)
//	}
//	s.Quiesce() // idle sessions must not hold back reclamation
//
// # Bulk Loading
//
// BulkLoad sorts entries and inserts them with parallel workers, optionally
// rate limited (WithLoadWorkers, WithLoadRate).
//
// # Observability
//
// WithLogger and WithMetricsCollector hook into every operation; Stats
// reports node counts per variant, memory and reclamation state, and
// Check verifies the tree's structural invariants.
package artidx
