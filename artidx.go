package artidx

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/artidx/internal/art"
	"github.com/hupe1980/artidx/internal/resource"
	"github.com/hupe1980/artidx/model"
)

// TID is the opaque 64-bit tuple identifier stored under a key.
type TID = model.TID

// Entry is one key/TID pair produced by range operations.
type Entry = model.Entry

// Index is a concurrent in-memory secondary index mapping byte keys to
// TIDs. All methods are safe for concurrent use.
//
// Lookups never take a lock. Writers lock at most the two or three tree
// nodes they modify, so operations on unrelated keys proceed in parallel.
//
// Every goroutine touching the tree needs a registered Session. The
// methods on Index borrow one from an internal free list for the duration
// of the call; goroutines issuing many operations should hold their own
// Session instead (see NewSession).
type Index struct {
	tree      *art.Tree
	rc        *resource.Controller
	unique    bool
	batchSize int
	workers   int

	idle     chan *Session
	sessions atomic.Uint64

	// mu orders Close after in-flight operations. Operations hold it
	// shared, never across user callbacks.
	mu     sync.RWMutex
	closed bool

	metrics MetricsCollector
	logger  *Logger
}

// New creates an empty Index.
func New(optFns ...Option) (*Index, error) {
	opts := applyOptions(optFns)
	if err := opts.validate(); err != nil {
		return nil, err
	}
	gcThreshold, advanceInterval, err := opts.epochParams()
	if err != nil {
		return nil, err
	}

	idx := &Index{
		rc: resource.NewController(resource.Config{
			MemoryLimitBytes:     opts.memoryLimit,
			MaxBackgroundWorkers: int64(opts.loadWorkers),
			LoadRowsPerSec:       opts.loadRate,
		}),
		unique:    opts.unique,
		batchSize: opts.scanBatch,
		workers:   opts.loadWorkers,
		idle:      make(chan *Session, opts.maxSessions),
		metrics:   opts.metricsCollector,
		logger:    opts.logger,
	}
	idx.tree = art.New(func(o *art.Options) {
		o.GCThreshold = gcThreshold
		o.AdvanceInterval = advanceInterval
		o.Budget = idx.rc
		o.OnReclaim = idx.onReclaim
	})
	return idx, nil
}

func (idx *Index) onReclaim(nodes int, retiredAt, oldest uint64) {
	idx.metrics.RecordReclaim(nodes)
	idx.logger.LogReclaim(context.Background(), nodes, retiredAt, oldest)
}

// Unique reports whether the index rejects a second TID for a key.
func (idx *Index) Unique() bool { return idx.unique }

// Len returns the number of distinct keys.
func (idx *Index) Len() int64 { return idx.tree.Len() }

// enter admits an operation. Every successful enter must be paired with
// exit.
func (idx *Index) enter() bool {
	idx.mu.RLock()
	if idx.closed {
		idx.mu.RUnlock()
		return false
	}
	return true
}

func (idx *Index) exit() { idx.mu.RUnlock() }

func (idx *Index) mode() art.InsertMode {
	if idx.unique {
		return art.InsertUnique
	}
	return art.InsertMulti
}

// acquire borrows an idle session or registers a new one.
func (idx *Index) acquire() (*Session, error) {
	select {
	case s := <-idx.idle:
		return s, nil
	default:
	}
	return idx.NewSession()
}

// release parks s on the free list, or deregisters it when the list is
// full or the index is closed.
func (idx *Index) release(s *Session) {
	if !idx.enter() {
		s.Close()
		return
	}
	defer idx.exit()

	idx.tree.Quiesce(s.ti)
	select {
	case idx.idle <- s:
	default:
		s.Close()
	}
}

// Close frees all nodes of the index. It waits for in-flight operations;
// later operations return ErrClosed. Sessions obtained from NewSession
// should still be closed by their owners.
func (idx *Index) Close() error {
	if idx == nil {
		return nil
	}
	idx.mu.Lock()
	if idx.closed {
		idx.mu.Unlock()
		return nil
	}
	idx.closed = true

	keys, values := idx.tree.Len(), idx.tree.Values()
	for drained := false; !drained; {
		select {
		case s := <-idx.idle:
			s.Close()
		default:
			drained = true
		}
	}
	idx.tree.Close()
	idx.mu.Unlock()

	idx.logger.LogClose(context.Background(), keys, values)
	return nil
}

// Insert stores tid under key. In a unique index an existing key fails
// with ErrKeyExists; otherwise tid is added to the key's TIDs and an
// identical key/TID pair fails with ErrDuplicateEntry.
func (idx *Index) Insert(key []byte, tid TID) error {
	s, err := idx.acquire()
	if err != nil {
		return err
	}
	defer idx.release(s)
	return s.Insert(key, tid)
}

// Upsert replaces all TIDs of key with tid, inserting the key if needed.
func (idx *Index) Upsert(key []byte, tid TID) error {
	s, err := idx.acquire()
	if err != nil {
		return err
	}
	defer idx.release(s)
	return s.Upsert(key, tid)
}

// ConditionalInsert inserts tid under key unless pred returns true for a
// TID already stored under key. It reports whether tid was inserted.
//
// pred runs on an optimistic snapshot of the key's TIDs and may be called
// more than once per insert.
func (idx *Index) ConditionalInsert(key []byte, tid TID, pred func(TID) bool) (bool, error) {
	s, err := idx.acquire()
	if err != nil {
		return false, err
	}
	defer idx.release(s)
	return s.ConditionalInsert(key, tid, pred)
}

// Lookup returns the TIDs stored under key in insertion order, or nil if
// the key is absent.
func (idx *Index) Lookup(key []byte) ([]TID, error) {
	s, err := idx.acquire()
	if err != nil {
		return nil, err
	}
	defer idx.release(s)
	return s.Lookup(key)
}

// Contains reports whether key is present.
func (idx *Index) Contains(key []byte) (bool, error) {
	s, err := idx.acquire()
	if err != nil {
		return false, err
	}
	defer idx.release(s)
	return s.Contains(key)
}

// Remove deletes key with all its TIDs and returns how many were removed.
// Removing an absent key is not an error.
func (idx *Index) Remove(key []byte) (int, error) {
	s, err := idx.acquire()
	if err != nil {
		return 0, err
	}
	defer idx.release(s)
	return s.Remove(key)
}

// RemoveValue deletes one TID of key; the key goes away with its last TID.
// It returns ErrNotFound if the pair is absent.
func (idx *Index) RemoveValue(key []byte, tid TID) error {
	s, err := idx.acquire()
	if err != nil {
		return err
	}
	defer idx.release(s)
	return s.RemoveValue(key, tid)
}

// NodeKindAt reports the variant (N4, N16, N48, N256) and depth (root = 1)
// of the deepest inner node on key's search path.
func (idx *Index) NodeKindAt(key []byte) (string, int, error) {
	s, err := idx.acquire()
	if err != nil {
		return "", 0, err
	}
	defer idx.release(s)
	return s.NodeKindAt(key)
}

// Check verifies the structural invariants of the tree and returns an
// *ErrInvariant on the first violation. It must not run concurrently with
// writers.
func (idx *Index) Check() error {
	if !idx.enter() {
		return ErrClosed
	}
	defer idx.exit()
	return translateError(idx.tree.Verify())
}
