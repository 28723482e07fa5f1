package art

import "bytes"

// Remove deletes key with all its TIDs and returns the number of TIDs
// removed.
func (t *Tree) Remove(ti *ThreadInfo, key []byte) int {
	return t.removeLoop(ti, key, 0, true)
}

// RemoveValue deletes a single TID from key's chain. The key disappears with
// its last TID.
func (t *Tree) RemoveValue(ti *ThreadInfo, key []byte, tid uint64) bool {
	return t.removeLoop(ti, key, tid, false) > 0
}

func (t *Tree) removeLoop(ti *ThreadInfo, key []byte, tid uint64, whole bool) int {
	g := ti.Guard()
	defer g.Release()

	for restarts := 0; ; restarts++ {
		if restarts > 0 {
			t.restart(restarts)
		}
		removed, keyGone, restart := t.remove(ti, key, tid, whole)
		if restart {
			continue
		}
		if removed > 0 {
			t.values.Add(int64(-removed))
			freed := int64(removed) * valueOverhead
			if keyGone {
				t.keys.Add(-1)
				freed += leafOverhead + int64(len(key))
			}
			t.refund(freed)
		}
		return removed
	}
}

func (t *Tree) remove(ti *ThreadInfo, key []byte, tid uint64, whole bool) (int, bool, bool) {
	var (
		parent        *inner
		parentVersion uint64
		parentKey     byte
		nodeKey       byte
		node          *inner
		next          = t.root
		level         int
	)
	for {
		parent, parentKey = node, nodeKey
		node = next

		v, restart := node.lock.ReadLockOrRestart()
		if restart {
			return 0, false, true
		}
		if node.checkPrefix(key, &level) == prefixNoMatch || level >= len(key) {
			return 0, false, node.lock.ReadUnlockOrRestart(v)
		}

		nodeKey = key[level]
		child := node.findChild(nodeKey)
		if node.lock.CheckOrRestart(v) {
			return 0, false, true
		}
		if child == nil {
			return 0, false, false
		}

		if !child.isLeaf {
			level++
			parentVersion = v
			next = child.inner()
			continue
		}

		l := child.leaf()
		if !bytes.Equal(l.key, key) {
			return 0, false, node.lock.ReadUnlockOrRestart(v)
		}

		n, found := l.scanValues(tid)
		if !whole {
			if !found {
				return 0, false, node.lock.ReadUnlockOrRestart(v)
			}
			if n > 1 {
				if parent != nil && parent.lock.ReadUnlockOrRestart(parentVersion) {
					return 0, false, true
				}
				if node.lock.UpgradeToWriteLockOrRestart(v) {
					return 0, false, true
				}
				l.removeValue(tid)
				node.lock.WriteUnlock()
				return 1, false, false
			}
			n = 1
		}

		if node.count.Load() == 2 && parent != nil {
			restart = t.compressPath(ti, node, v, parent, parentVersion, parentKey, nodeKey)
		} else {
			restart = t.removeAndShrink(ti, node, v, parent, parentVersion, parentKey, nodeKey)
		}
		if restart {
			return 0, false, true
		}
		return n, true, false
	}
}

// compressPath removes the leaf under b from a two-child node by splicing
// the remaining child into the parent. An inner child absorbs the node's
// prefix and the byte that led to it.
func (t *Tree) compressPath(ti *ThreadInfo, node *inner, v uint64, parent *inner, parentVersion uint64, parentKey, b byte) bool {
	if parent.lock.UpgradeToWriteLockOrRestart(parentVersion) {
		return true
	}
	if node.lock.UpgradeToWriteLockOrRestart(v) {
		parent.lock.WriteUnlock()
		return true
	}

	second, secondKey := node.secondChild(b)
	if second == nil {
		panic("art: two-child node without a second child")
	}

	if second.isLeaf {
		parent.changeChild(parentKey, second)
		parent.lock.WriteUnlock()
	} else {
		sc := second.inner()
		if sc.lock.WriteLockOrRestart() {
			node.lock.WriteUnlock()
			parent.lock.WriteUnlock()
			return true
		}
		parent.changeChild(parentKey, second)
		parent.lock.WriteUnlock()

		sc.addPrefixBefore(node, secondKey)
		sc.lock.WriteUnlock()
	}

	node.lock.WriteUnlockObsolete()
	ti.Retire(node)
	return false
}

// removeAndShrink removes the child under b. An underfull node is replaced
// by the next smaller variant; the root is always modified in place.
func (t *Tree) removeAndShrink(ti *ThreadInfo, node *inner, v uint64, parent *inner, parentVersion uint64, parentKey, b byte) bool {
	if !node.isUnderfull() || parent == nil {
		if parent != nil && parent.lock.ReadUnlockOrRestart(parentVersion) {
			return true
		}
		if node.lock.UpgradeToWriteLockOrRestart(v) {
			return true
		}
		node.removeChild(b)
		node.lock.WriteUnlock()
		return false
	}

	if parent.lock.UpgradeToWriteLockOrRestart(parentVersion) {
		return true
	}
	if node.lock.UpgradeToWriteLockOrRestart(v) {
		parent.lock.WriteUnlock()
		return true
	}

	p, pl := node.loadPrefix()
	small := t.alloc.newInner(node.kind()-1, p[:min(pl, maxPrefixLen)], pl)
	node.copyTo(small)
	small.removeChild(b)
	parent.changeChild(parentKey, small.self())

	node.lock.WriteUnlockObsolete()
	ti.Retire(node)
	parent.lock.WriteUnlock()
	return false
}
