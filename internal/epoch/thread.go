package epoch

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// ThreadInfo is the per-goroutine reclamation state. The published local
// epoch sits on its own cache line.
type ThreadInfo[T any] struct {
	_          cpu.CacheLinePad
	localEpoch atomic.Uint64
	_          cpu.CacheLinePad

	thresholdCounter uint64
	list             deletionList[T]
	inUse            atomic.Bool
	mgr              *Manager[T]
}

// Manager returns the manager ti is registered with.
func (ti *ThreadInfo[T]) Manager() *Manager[T] { return ti.mgr }

// LocalEpoch returns the epoch ti last published.
func (ti *ThreadInfo[T]) LocalEpoch() uint64 { return ti.localEpoch.Load() }

// Retire is shorthand for ti.Manager().Retire(ti, item).
func (ti *ThreadInfo[T]) Retire(item T) { ti.mgr.Retire(ti, item) }

// PendingLocal returns the number of items in ti's deletion list.
func (ti *ThreadInfo[T]) PendingLocal() int { return ti.list.size }

// Guard is an entered epoch that cleans up on Release.
type Guard[T any] struct {
	ti *ThreadInfo[T]
}

// Guard enters the epoch for a mutating operation.
//
//	g := ti.Guard()
//	defer g.Release()
func (ti *ThreadInfo[T]) Guard() Guard[T] {
	ti.mgr.Enter(ti)
	return Guard[T]{ti: ti}
}

// Release exits the epoch and runs cleanup if due.
func (g Guard[T]) Release() {
	g.ti.mgr.Exit(g.ti)
}

// ReadGuard is an entered epoch for an operation that retires nothing.
type ReadGuard[T any] struct {
	ti *ThreadInfo[T]
}

// ReadGuard enters the epoch for a read-only operation.
func (ti *ThreadInfo[T]) ReadGuard() ReadGuard[T] {
	ti.mgr.Enter(ti)
	return ReadGuard[T]{ti: ti}
}

// Release is a no-op kept for symmetry with Guard.
func (g ReadGuard[T]) Release() {}
