package art

import "sync/atomic"

// node4 keeps up to 4 sorted key bytes packed into one word.
type node4 struct {
	inner
	keys     atomic.Uint32
	children [4]atomic.Pointer[node]
}

func keyAt4(keys uint32, i int) byte { return byte(keys >> (8 * i)) }

func setKey4(keys uint32, i int, b byte) uint32 {
	shift := 8 * i
	return keys&^(0xff<<shift) | uint32(b)<<shift
}

func (n *node4) len() int { return min(int(n.count.Load()), 4) }

func (n *node4) findChild(b byte) *node {
	keys := n.keys.Load()
	for i := 0; i < n.len(); i++ {
		if keyAt4(keys, i) == b {
			return n.children[i].Load()
		}
	}
	return nil
}

func (n *node4) insert(b byte, child *node) {
	cnt := n.len()
	keys := n.keys.Load()
	pos := 0
	for pos < cnt && keyAt4(keys, pos) < b {
		pos++
	}
	for i := cnt; i > pos; i-- {
		keys = setKey4(keys, i, keyAt4(keys, i-1))
		n.children[i].Store(n.children[i-1].Load())
	}
	n.keys.Store(setKey4(keys, pos, b))
	n.children[pos].Store(child)
	n.count.Add(1)
}

func (n *node4) change(b byte, child *node) {
	keys := n.keys.Load()
	for i := 0; i < n.len(); i++ {
		if keyAt4(keys, i) == b {
			n.children[i].Store(child)
			return
		}
	}
	panic("art: change on missing key in N4")
}

func (n *node4) remove(b byte) {
	cnt := n.len()
	keys := n.keys.Load()
	for i := 0; i < cnt; i++ {
		if keyAt4(keys, i) != b {
			continue
		}
		for j := i; j < cnt-1; j++ {
			keys = setKey4(keys, j, keyAt4(keys, j+1))
			n.children[j].Store(n.children[j+1].Load())
		}
		n.children[cnt-1].Store(nil)
		n.keys.Store(keys)
		n.count.Add(^uint32(0))
		return
	}
}

func (n *node4) appendChildren(start, end byte, dst []childRef) []childRef {
	keys := n.keys.Load()
	for i := 0; i < n.len(); i++ {
		k := keyAt4(keys, i)
		if k < start || k > end {
			continue
		}
		if c := n.children[i].Load(); c != nil {
			dst = append(dst, childRef{key: k, child: c})
		}
	}
	return dst
}
