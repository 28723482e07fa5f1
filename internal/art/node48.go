package art

import "sync/atomic"

const emptyMarker = 48

// node48 maps each key byte to one of 48 child slots. The 256-byte index is
// packed into 32 words; slots may have holes after removals.
type node48 struct {
	inner
	index    [32]atomic.Uint64
	children [48]atomic.Pointer[node]
}

const emptyIndexWord = ones * emptyMarker

func (n *node48) slot(b byte) int {
	return int(byte(n.index[b>>3].Load() >> (8 * (b & 7))))
}

func (n *node48) setSlot(b byte, s int) {
	shift := 8 * (b & 7)
	w := n.index[b>>3].Load()
	n.index[b>>3].Store(w&^(0xff<<shift) | uint64(s)<<shift)
}

func (n *node48) reset() {
	for i := range n.index {
		n.index[i].Store(emptyIndexWord)
	}
}

func (n *node48) findChild(b byte) *node {
	s := n.slot(b)
	if s >= emptyMarker {
		return nil
	}
	return n.children[s].Load()
}

func (n *node48) insert(b byte, child *node) {
	pos := min(int(n.count.Load()), 47)
	if n.children[pos].Load() != nil {
		pos = 0
		for n.children[pos].Load() != nil {
			pos++
		}
	}
	n.children[pos].Store(child)
	n.setSlot(b, pos)
	n.count.Add(1)
}

func (n *node48) change(b byte, child *node) {
	s := n.slot(b)
	if s >= emptyMarker {
		panic("art: change on missing key in N48")
	}
	n.children[s].Store(child)
}

func (n *node48) remove(b byte) {
	s := n.slot(b)
	if s >= emptyMarker {
		return
	}
	n.setSlot(b, emptyMarker)
	n.children[s].Store(nil)
	n.count.Add(^uint32(0))
}

func (n *node48) appendChildren(start, end byte, dst []childRef) []childRef {
	for k := int(start); k <= int(end); k++ {
		s := n.slot(byte(k))
		if s >= emptyMarker {
			continue
		}
		if c := n.children[s].Load(); c != nil {
			dst = append(dst, childRef{key: byte(k), child: c})
		}
	}
	return dst
}
