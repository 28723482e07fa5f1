package art

import (
	"bytes"
	"errors"
	"sync/atomic"

	"github.com/hupe1980/artidx/internal/epoch"
	"github.com/hupe1980/artidx/internal/olc"
)

var (
	// ErrEmptyKey is returned when inserting a zero-length key.
	ErrEmptyKey = errors.New("art: empty key")

	// ErrKeyExists is returned by unique inserts of a key already present.
	ErrKeyExists = errors.New("art: key already exists")

	// ErrDuplicateEntry is returned when the exact key/TID pair is present.
	ErrDuplicateEntry = errors.New("art: duplicate key/tid pair")

	// ErrPrefixConflict is returned when a key is a strict prefix of a stored
	// key or the other way round. Keys must be prefix-free.
	ErrPrefixConflict = errors.New("art: key is a prefix of another key")
)

// ThreadInfo is the per-goroutine handle required by every tree operation.
type ThreadInfo = epoch.ThreadInfo[*inner]

// Budget admits leaf and value memory. resource.Controller implements it.
type Budget interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// Options configures a Tree.
type Options struct {
	// GCThreshold is the retirement count that triggers reclamation.
	GCThreshold uint64

	// AdvanceInterval is the retirement count per global epoch increment.
	AdvanceInterval uint64

	// Budget, if set, bounds leaf and value memory.
	Budget Budget

	// OnReclaim is called with the number of nodes freed per batch.
	OnReclaim func(nodes int, retiredAt, oldest uint64)
}

// Tree is a concurrent adaptive radix tree mapping byte keys to chains of
// 64-bit TIDs. Readers never lock; writers lock at most three nodes.
//
// The root is an N256 without prefix that is never replaced, so every
// other node always has a parent slot to be swapped in.
type Tree struct {
	root   *inner
	alloc  *allocator
	epochs *epoch.Manager[*inner]
	budget Budget

	keys     atomic.Int64
	values   atomic.Int64
	memory   atomic.Int64
	restarts atomic.Int64
}

// New creates an empty tree.
func New(optFns ...func(o *Options)) *Tree {
	opts := Options{
		GCThreshold:     epoch.DefaultGCThreshold,
		AdvanceInterval: epoch.DefaultAdvanceInterval,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	t := &Tree{
		alloc:  newAllocator(),
		budget: opts.Budget,
	}
	t.epochs = epoch.New(t.alloc.release, func(o *epoch.Options[*inner]) {
		o.GCThreshold = opts.GCThreshold
		o.AdvanceInterval = opts.AdvanceInterval
		if opts.OnReclaim != nil {
			o.OnFree = func(items []*inner, retiredAt, oldest uint64) {
				opts.OnReclaim(len(items), retiredAt, oldest)
			}
		}
	})
	t.root = t.alloc.newInner(KindN256, nil, 0)
	return t
}

// Register returns a ThreadInfo for the calling goroutine.
func (t *Tree) Register() *ThreadInfo { return t.epochs.Register() }

// Deregister releases ti. Its pending retirements are picked up by the next
// goroutine that registers.
func (t *Tree) Deregister(ti *ThreadInfo) { t.epochs.Deregister(ti) }

// Quiesce marks ti idle so it does not hold back reclamation.
func (t *Tree) Quiesce(ti *ThreadInfo) { t.epochs.Quiesce(ti) }

// Collect runs a reclamation pass for ti and returns the number of freed
// nodes.
func (t *Tree) Collect(ti *ThreadInfo) int { return t.epochs.Collect(ti) }

// Len returns the number of keys.
func (t *Tree) Len() int64 { return t.keys.Load() }

// Values returns the number of stored TIDs.
func (t *Tree) Values() int64 { return t.values.Load() }

func (t *Tree) restart(n int) {
	t.restarts.Add(1)
	olc.Backoff(n)
}

// Lookup appends the TIDs stored under key to dst and reports whether the
// key is present.
func (t *Tree) Lookup(ti *ThreadInfo, key []byte, dst []uint64) ([]uint64, bool) {
	g := ti.ReadGuard()
	defer g.Release()

	base := len(dst)
	for restarts := 0; ; restarts++ {
		if restarts > 0 {
			t.restart(restarts)
		}
		out, found, restart := t.lookup(key, dst[:base])
		if !restart {
			return out, found
		}
	}
}

func (t *Tree) lookup(key []byte, dst []uint64) ([]uint64, bool, bool) {
	node := t.root
	v, restart := node.lock.ReadLockOrRestart()
	if restart {
		return dst, false, true
	}

	level := 0
	for {
		if node.checkPrefix(key, &level) == prefixNoMatch || level >= len(key) {
			return dst, false, node.lock.ReadUnlockOrRestart(v)
		}

		child := node.findChild(key[level])
		if node.lock.CheckOrRestart(v) {
			return dst, false, true
		}
		if child == nil {
			return dst, false, false
		}

		if child.isLeaf {
			l := child.leaf()
			if !bytes.Equal(l.key, key) {
				return dst, false, node.lock.ReadUnlockOrRestart(v)
			}
			out := l.appendTIDs(dst)
			if node.lock.ReadUnlockOrRestart(v) {
				return dst, false, true
			}
			return out, true, false
		}

		level++
		next := child.inner()
		nv, restart := next.lock.ReadLockOrRestart()
		if restart || node.lock.ReadUnlockOrRestart(v) {
			return dst, false, true
		}
		node, v = next, nv
	}
}

func (t *Tree) charge(bytes int64) error {
	if t.budget != nil {
		if err := t.budget.AcquireMemory(bytes); err != nil {
			return err
		}
	}
	t.memory.Add(bytes)
	return nil
}

func (t *Tree) refund(bytes int64) {
	if bytes <= 0 {
		return
	}
	if t.budget != nil {
		t.budget.ReleaseMemory(bytes)
	}
	t.memory.Add(-bytes)
}

// Close frees every retired node and returns all nodes to their pools. No
// operation may run concurrently with or after Close.
func (t *Tree) Close() {
	t.epochs.Drain()
	t.releaseSubtree(t.root)
	t.root = nil
	t.refund(t.memory.Load())
	t.keys.Store(0)
	t.values.Store(0)
}

func (t *Tree) releaseSubtree(in *inner) {
	var buf [256]childRef
	for _, c := range in.appendChildren(0, 255, buf[:0]) {
		if !c.child.isLeaf {
			t.releaseSubtree(c.child.inner())
		}
	}
	t.alloc.release(in)
}
