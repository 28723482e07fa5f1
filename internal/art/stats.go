package art

import "bytes"

// Stats is a point-in-time summary of a tree. Structural counts come from an
// unvalidated walk and are exact only when no writer is active.
type Stats struct {
	Keys   int64
	Values int64

	// Nodes counts reachable inner nodes per Kind.
	Nodes    [4]int64
	Leaves   int64
	MaxDepth int

	// LiveNodes counts allocated nodes per Kind, including retired nodes
	// whose epoch has not passed yet.
	LiveNodes    [4]int64
	FreshNodes   int64
	NodeBytes    int64
	PayloadBytes int64

	Epoch    uint64
	Retired  int64
	Freed    int64
	Threads  int
	Restarts int64
}

// Stats walks the tree and collects counters.
func (t *Tree) Stats(ti *ThreadInfo) Stats {
	g := ti.ReadGuard()
	defer g.Release()

	st := Stats{
		Keys:         t.keys.Load(),
		Values:       t.values.Load(),
		FreshNodes:   t.alloc.fresh.Load(),
		NodeBytes:    t.alloc.liveBytes(),
		PayloadBytes: t.memory.Load(),
		Epoch:        t.epochs.Epoch(),
		Retired:      t.epochs.Pending(),
		Freed:        t.epochs.Freed(),
		Threads:      t.epochs.Threads(),
		Restarts:     t.restarts.Load(),
	}
	for k := KindN4; k <= KindN256; k++ {
		st.LiveNodes[k] = t.alloc.live(k)
	}
	t.walk(t.root, 1, &st)
	return st
}

func (t *Tree) walk(in *inner, depth int, st *Stats) {
	st.Nodes[in.kind()]++
	st.MaxDepth = max(st.MaxDepth, depth)
	var buf [256]childRef
	for _, c := range in.appendChildren(0, 255, buf[:0]) {
		if c.child.isLeaf {
			st.Leaves++
			continue
		}
		t.walk(c.child.inner(), depth+1, st)
	}
}

// NodeFor returns the kind of the deepest inner node on key's search path
// and its depth (root = 1). found reports whether key itself is stored.
func (t *Tree) NodeFor(ti *ThreadInfo, key []byte) (kind Kind, depth int, found bool) {
	g := ti.ReadGuard()
	defer g.Release()

	for restarts := 0; ; restarts++ {
		if restarts > 0 {
			t.restart(restarts)
		}
		kind, depth, found, restart := t.nodeFor(key)
		if !restart {
			return kind, depth, found
		}
	}
}

func (t *Tree) nodeFor(key []byte) (Kind, int, bool, bool) {
	node := t.root
	v, restart := node.lock.ReadLockOrRestart()
	if restart {
		return 0, 0, false, true
	}
	level, depth := 0, 1
	for {
		kind := node.kind()
		if node.checkPrefix(key, &level) == prefixNoMatch || level >= len(key) {
			return kind, depth, false, node.lock.ReadUnlockOrRestart(v)
		}
		child := node.findChild(key[level])
		if node.lock.CheckOrRestart(v) {
			return 0, 0, false, true
		}
		if child == nil {
			return kind, depth, false, false
		}
		if child.isLeaf {
			return kind, depth, bytes.Equal(child.leaf().key, key), false
		}
		level++
		depth++
		next := child.inner()
		nv, restart := next.lock.ReadLockOrRestart()
		if restart || node.lock.ReadUnlockOrRestart(v) {
			return 0, 0, false, true
		}
		node, v = next, nv
	}
}
