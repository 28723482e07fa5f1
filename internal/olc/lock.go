package olc

import (
	"runtime"
	"sync/atomic"
)

const (
	obsoleteBit = uint64(0b01)
	lockBit     = uint64(0b10)
	initVersion = uint64(0b100)

	typeShift = 62
	typeMask  = uint64(0b11) << typeShift
)

// Lock is a 64-bit optimistic version lock carrying a 2-bit type tag.
// The zero value is not usable; call Init first.
type Lock struct {
	word atomic.Uint64
}

// Init resets the lock to an unlocked, non-obsolete state tagged with typ.
// It must only be called while no other goroutine can observe the lock.
func (l *Lock) Init(typ uint8) {
	l.word.Store(uint64(typ&0b11)<<typeShift | initVersion)
}

// Type returns the tag stored by Init.
func (l *Lock) Type() uint8 {
	return uint8(l.word.Load() >> typeShift)
}

// ReadLockOrRestart samples the version for an optimistic read.
func (l *Lock) ReadLockOrRestart() (version uint64, needRestart bool) {
	v := l.word.Load()
	if IsLocked(v) || IsObsolete(v) {
		return 0, true
	}
	return v, false
}

// UpgradeToWriteLockOrRestart turns an optimistic read of version into an
// exclusive lock. It fails if any write happened since version was sampled.
func (l *Lock) UpgradeToWriteLockOrRestart(version uint64) (needRestart bool) {
	return !l.word.CompareAndSwap(version, version+lockBit)
}

// WriteLockOrRestart acquires the write lock without a prior read.
func (l *Lock) WriteLockOrRestart() (needRestart bool) {
	v, restart := l.ReadLockOrRestart()
	if restart {
		return true
	}
	return l.UpgradeToWriteLockOrRestart(v)
}

// WriteUnlock releases the write lock and publishes a new version.
func (l *Lock) WriteUnlock() {
	l.word.Add(lockBit)
}

// WriteUnlockObsolete releases the write lock and marks the owner as
// permanently unlinked.
func (l *Lock) WriteUnlockObsolete() {
	l.word.Add(lockBit | obsoleteBit)
}

// CheckOrRestart validates an optimistic read started at version.
func (l *Lock) CheckOrRestart(version uint64) (needRestart bool) {
	return l.word.Load() != version
}

// ReadUnlockOrRestart ends an optimistic read. It is CheckOrRestart under the
// name used at the end of a read section.
func (l *Lock) ReadUnlockOrRestart(version uint64) (needRestart bool) {
	return l.word.Load() != version
}

// Obsolete reports whether the lock was released with WriteUnlockObsolete.
func (l *Lock) Obsolete() bool {
	return IsObsolete(l.word.Load())
}

// Locked reports whether a writer currently holds the lock.
func (l *Lock) Locked() bool {
	return IsLocked(l.word.Load())
}

// Version returns the raw lock word.
func (l *Lock) Version() uint64 {
	return l.word.Load()
}

// IsLocked reports whether the lock bit is set in a sampled word.
func IsLocked(v uint64) bool { return v&lockBit == lockBit }

// IsObsolete reports whether the obsolete bit is set in a sampled word.
func IsObsolete(v uint64) bool { return v&obsoleteBit == obsoleteBit }

// Counter strips the type tag and state bits from a sampled word.
func Counter(v uint64) uint64 { return (v &^ typeMask) >> 2 }

// Backoff is called between restarts of one operation. The first few
// restarts retry immediately; after that the goroutine yields.
func Backoff(restarts int) {
	if restarts > 3 {
		runtime.Gosched()
	}
}
