package epoch

import (
	"math"
	"sync"
	"sync/atomic"
)

const (
	// Infinity is the local epoch of a thread that is not inside an operation.
	Infinity = uint64(math.MaxUint64)

	// DefaultGCThreshold is the number of retirements after which Exit scans
	// thread epochs and frees what it can.
	DefaultGCThreshold = 256

	// DefaultAdvanceInterval is the number of retirements per global epoch
	// increment. Must be a power of two.
	DefaultAdvanceInterval = 64
)

// Options configures a Manager.
type Options[T any] struct {
	// GCThreshold is the per-thread retirement count that triggers a cleanup
	// scan on Exit.
	GCThreshold uint64

	// AdvanceInterval is the per-thread retirement count between global epoch
	// increments. It is rounded up to a power of two.
	AdvanceInterval uint64

	// OnFree, if set, is called before each batch is freed with the batch's
	// retirement epoch and the minimum local epoch that allowed the free.
	// Force frees performed by Drain report oldest == Infinity.
	OnFree func(items []T, retiredAt, oldest uint64)
}

// Manager owns the global epoch and the registry of threads.
type Manager[T any] struct {
	current atomic.Uint64

	// threads is a copy-on-write snapshot; mu serializes registration only.
	threads atomic.Pointer[[]*ThreadInfo[T]]
	mu      sync.Mutex

	free        func(T)
	onFree      func(items []T, retiredAt, oldest uint64)
	gcThreshold uint64
	advanceMask uint64

	retired atomic.Int64
	freed   atomic.Int64
}

// New creates a Manager that calls free for every reclaimed item.
func New[T any](free func(T), optFns ...func(o *Options[T])) *Manager[T] {
	opts := Options[T]{
		GCThreshold:     DefaultGCThreshold,
		AdvanceInterval: DefaultAdvanceInterval,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.AdvanceInterval == 0 {
		opts.AdvanceInterval = DefaultAdvanceInterval
	}

	m := &Manager[T]{
		free:        free,
		onFree:      opts.OnFree,
		gcThreshold: opts.GCThreshold,
		advanceMask: nextPow2(opts.AdvanceInterval) - 1,
	}
	m.current.Store(1)
	empty := make([]*ThreadInfo[T], 0)
	m.threads.Store(&empty)
	return m
}

// Register returns a ThreadInfo for the calling goroutine. Slots released by
// Deregister are reused, together with any batches they still hold.
func (m *Manager[T]) Register() *ThreadInfo[T] {
	for _, ti := range *m.threads.Load() {
		if ti.inUse.CompareAndSwap(false, true) {
			return ti
		}
	}

	ti := &ThreadInfo[T]{mgr: m}
	ti.localEpoch.Store(Infinity)
	ti.inUse.Store(true)

	m.mu.Lock()
	old := *m.threads.Load()
	next := make([]*ThreadInfo[T], len(old), len(old)+1)
	copy(next, old)
	next = append(next, ti)
	m.threads.Store(&next)
	m.mu.Unlock()

	return ti
}

// Deregister publishes an infinite local epoch for ti and makes its slot
// available to Register. ti must not be used afterwards.
func (m *Manager[T]) Deregister(ti *ThreadInfo[T]) {
	ti.localEpoch.Store(Infinity)
	ti.inUse.Store(false)
}

// Enter publishes the current global epoch as ti's local epoch.
func (m *Manager[T]) Enter(ti *ThreadInfo[T]) {
	ti.localEpoch.Store(m.current.Load())
}

// Retire hands item to the reclaimer. The caller must have unlinked it so
// that no thread entering later can reach it.
func (m *Manager[T]) Retire(ti *ThreadInfo[T], item T) {
	ti.list.add(item, m.current.Load())
	ti.thresholdCounter++
	m.retired.Add(1)
}

// Exit ends an operation that may have retired items.
func (m *Manager[T]) Exit(ti *ThreadInfo[T]) {
	// With an interval of one every exit advances.
	if ti.thresholdCounter&m.advanceMask == 1&m.advanceMask {
		m.current.Add(1)
	}
	if ti.thresholdCounter <= m.gcThreshold {
		return
	}
	if ti.list.size == 0 {
		ti.thresholdCounter = 0
		return
	}

	ti.localEpoch.Store(Infinity)
	m.reclaim(ti, m.oldest())
	ti.thresholdCounter = 0
}

// Quiesce publishes an infinite local epoch without releasing the slot.
// Used for threads that stay registered while idle.
func (m *Manager[T]) Quiesce(ti *ThreadInfo[T]) {
	ti.localEpoch.Store(Infinity)
}

// Collect runs a cleanup scan for ti regardless of its retirement count.
// ti must not be inside an operation.
func (m *Manager[T]) Collect(ti *ThreadInfo[T]) int {
	ti.localEpoch.Store(Infinity)
	n := m.reclaim(ti, m.oldest())
	ti.thresholdCounter = 0
	return n
}

// Drain frees every retired item of every thread. It must only be called
// when no operation is in flight, typically when the owning structure is
// destroyed.
func (m *Manager[T]) Drain() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, ti := range *m.threads.Load() {
		n += m.reclaim(ti, Infinity)
		ti.thresholdCounter = 0
	}
	return n
}

// Epoch returns the current global epoch.
func (m *Manager[T]) Epoch() uint64 {
	return m.current.Load()
}

// Pending returns the number of retired items not yet freed.
func (m *Manager[T]) Pending() int64 {
	return m.retired.Load() - m.freed.Load()
}

// Freed returns the number of items freed so far.
func (m *Manager[T]) Freed() int64 {
	return m.freed.Load()
}

// Threads returns the number of registered slots, including idle ones.
func (m *Manager[T]) Threads() int {
	return len(*m.threads.Load())
}

func (m *Manager[T]) oldest() uint64 {
	oldest := Infinity
	for _, ti := range *m.threads.Load() {
		if e := ti.localEpoch.Load(); e < oldest {
			oldest = e
		}
	}
	return oldest
}

func (m *Manager[T]) reclaim(ti *ThreadInfo[T], oldest uint64) int {
	n := 0
	var prev *labelDelete[T]
	cur := ti.list.head
	for cur != nil {
		next := cur.next
		if cur.epoch < oldest {
			items := cur.nodes[:cur.count]
			if m.onFree != nil {
				m.onFree(items, cur.epoch, oldest)
			}
			for _, item := range items {
				m.free(item)
			}
			n += len(items)
			ti.list.remove(cur, prev)
		} else {
			prev = cur
		}
		cur = next
	}
	m.freed.Add(int64(n))
	return n
}

func nextPow2(v uint64) uint64 {
	p := uint64(1)
	for p < v {
		p <<= 1
	}
	return p
}
