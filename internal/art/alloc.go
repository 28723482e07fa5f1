package art

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

var nodeSize = [4]int64{
	KindN4:   int64(unsafe.Sizeof(node4{})),
	KindN16:  int64(unsafe.Sizeof(node16{})),
	KindN48:  int64(unsafe.Sizeof(node48{})),
	KindN256: int64(unsafe.Sizeof(node256{})),
}

// allocator hands out inner nodes from one pool per size class. Nodes come
// back through release, which the epoch manager calls once no reader can
// still hold a reference.
type allocator struct {
	pools [4]sync.Pool

	allocs [4]atomic.Int64
	frees  [4]atomic.Int64
	fresh  atomic.Int64
}

func newAllocator() *allocator {
	a := &allocator{}
	a.pools[KindN4].New = func() any { a.fresh.Add(1); return &(&node4{}).inner }
	a.pools[KindN16].New = func() any { a.fresh.Add(1); return &(&node16{}).inner }
	a.pools[KindN48].New = func() any { a.fresh.Add(1); return &(&node48{}).inner }
	a.pools[KindN256].New = func() any { a.fresh.Add(1); return &(&node256{}).inner }
	return a
}

// newInner returns an unlocked node of kind k with the given prefix. The
// node is private to the caller until it is linked into the tree.
func (a *allocator) newInner(k Kind, prefix []byte, prefixLen int) *inner {
	in := a.pools[k].Get().(*inner)
	in.lock.Init(uint8(k))
	in.setPrefix(prefix, prefixLen)
	in.count.Store(0)
	if k == KindN48 {
		in.n48().reset()
	}
	a.allocs[k].Add(1)
	return in
}

// release clears a node and returns it to its pool.
func (a *allocator) release(in *inner) {
	k := in.kind()
	switch k {
	case KindN4:
		n := in.n4()
		n.keys.Store(0)
		for i := range n.children {
			n.children[i].Store(nil)
		}
	case KindN16:
		n := in.n16()
		n.storeKeys([2]uint64{})
		for i := range n.children {
			n.children[i].Store(nil)
		}
	case KindN48:
		n := in.n48()
		for i := range n.children {
			n.children[i].Store(nil)
		}
	case KindN256:
		n := in.n256()
		for i := range n.children {
			n.children[i].Store(nil)
		}
	}
	a.frees[k].Add(1)
	a.pools[k].Put(in)
}

// live returns the number of allocated, not yet released nodes of kind k.
// Retired nodes waiting for their epoch count as live.
func (a *allocator) live(k Kind) int64 {
	return a.allocs[k].Load() - a.frees[k].Load()
}

func (a *allocator) liveBytes() int64 {
	var total int64
	for k := KindN4; k <= KindN256; k++ {
		total += a.live(k) * nodeSize[k]
	}
	return total
}
