package art

import (
	"sync/atomic"
	"unsafe"
)

// leaf holds a full key and the chain of TIDs stored under it. The chain is
// mutated only while the write lock of the inner node pointing at the leaf
// is held; readers walk it optimistically and validate that node afterwards.
type leaf struct {
	node
	key    []byte
	values atomic.Pointer[value]
}

type value struct {
	tid  uint64
	next atomic.Pointer[value]
}

const (
	leafOverhead  = int64(unsafe.Sizeof(leaf{}))
	valueOverhead = int64(unsafe.Sizeof(value{}))
)

func newLeaf(key []byte, tid uint64) *leaf {
	l := &leaf{node: node{isLeaf: true}, key: append([]byte(nil), key...)}
	l.values.Store(&value{tid: tid})
	return l
}

func (l *leaf) self() *node { return &l.node }

func leafBytes(key []byte) int64 { return leafOverhead + int64(len(key)) + valueOverhead }

// appendTIDs appends every TID of the chain to dst.
func (l *leaf) appendTIDs(dst []uint64) []uint64 {
	for v := l.values.Load(); v != nil; v = v.next.Load() {
		dst = append(dst, v.tid)
	}
	return dst
}

// scanValues reports the chain length and whether tid is on it.
func (l *leaf) scanValues(tid uint64) (n int, found bool) {
	for v := l.values.Load(); v != nil; v = v.next.Load() {
		n++
		if v.tid == tid {
			found = true
		}
	}
	return n, found
}

func (l *leaf) anyValue(pred func(uint64) bool) bool {
	for v := l.values.Load(); v != nil; v = v.next.Load() {
		if pred(v.tid) {
			return true
		}
	}
	return false
}

// addValue appends tid to the chain tail.
func (l *leaf) addValue(tid uint64) {
	nv := &value{tid: tid}
	v := l.values.Load()
	if v == nil {
		l.values.Store(nv)
		return
	}
	for {
		next := v.next.Load()
		if next == nil {
			v.next.Store(nv)
			return
		}
		v = next
	}
}

// removeValue unlinks the first occurrence of tid.
func (l *leaf) removeValue(tid uint64) bool {
	var prev *value
	for v := l.values.Load(); v != nil; v = v.next.Load() {
		if v.tid != tid {
			prev = v
			continue
		}
		if prev == nil {
			l.values.Store(v.next.Load())
		} else {
			prev.next.Store(v.next.Load())
		}
		return true
	}
	return false
}

// replaceValues swaps the chain for a single tid and returns the old length.
func (l *leaf) replaceValues(tid uint64) int {
	n, _ := l.scanValues(tid)
	l.values.Store(&value{tid: tid})
	return n
}
