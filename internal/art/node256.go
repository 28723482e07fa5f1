package art

import "sync/atomic"

type node256 struct {
	inner
	children [256]atomic.Pointer[node]
}

func (n *node256) findChild(b byte) *node {
	return n.children[b].Load()
}

func (n *node256) insert(b byte, child *node) {
	n.children[b].Store(child)
	n.count.Add(1)
}

func (n *node256) change(b byte, child *node) {
	n.children[b].Store(child)
}

func (n *node256) remove(b byte) {
	if n.children[b].Swap(nil) != nil {
		n.count.Add(^uint32(0))
	}
}

func (n *node256) appendChildren(start, end byte, dst []childRef) []childRef {
	for k := int(start); k <= int(end); k++ {
		if c := n.children[k].Load(); c != nil {
			dst = append(dst, childRef{key: byte(k), child: c})
		}
	}
	return dst
}
