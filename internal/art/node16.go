package art

import (
	"math/bits"
	"sync/atomic"
)

// node16 keeps up to 16 sorted key bytes in two words, searched with
// byte-parallel arithmetic on each word.
type node16 struct {
	inner
	keys     [2]atomic.Uint64
	children [16]atomic.Pointer[node]
}

const (
	lo7  = 0x7f7f7f7f7f7f7f7f
	ones = 0x0101010101010101
)

// zeroBytes sets the high bit of every byte of x that is zero and clears
// all other bits.
func zeroBytes(x uint64) uint64 {
	y := (x & lo7) + lo7
	return ^(y | x | lo7)
}

func keyAt16(w *[2]uint64, i int) byte { return byte(w[i>>3] >> (8 * (i & 7))) }

func setKey16(w *[2]uint64, i int, b byte) {
	shift := 8 * (i & 7)
	w[i>>3] = w[i>>3]&^(0xff<<shift) | uint64(b)<<shift
}

func (n *node16) len() int { return min(int(n.count.Load()), 16) }

func (n *node16) loadKeys() [2]uint64 {
	return [2]uint64{n.keys[0].Load(), n.keys[1].Load()}
}

func (n *node16) storeKeys(w [2]uint64) {
	n.keys[0].Store(w[0])
	n.keys[1].Store(w[1])
}

func (n *node16) findPos(b byte) int {
	cnt := n.len()
	pattern := ones * uint64(b)
	for w := 0; w < 2; w++ {
		if m := zeroBytes(n.keys[w].Load() ^ pattern); m != 0 {
			if i := w*8 + bits.TrailingZeros64(m)/8; i < cnt {
				return i
			}
			return -1
		}
	}
	return -1
}

func (n *node16) findChild(b byte) *node {
	if i := n.findPos(b); i >= 0 {
		return n.children[i].Load()
	}
	return nil
}

func (n *node16) insert(b byte, child *node) {
	cnt := n.len()
	keys := n.loadKeys()
	pos := 0
	for pos < cnt && keyAt16(&keys, pos) < b {
		pos++
	}
	for i := cnt; i > pos; i-- {
		setKey16(&keys, i, keyAt16(&keys, i-1))
		n.children[i].Store(n.children[i-1].Load())
	}
	setKey16(&keys, pos, b)
	n.storeKeys(keys)
	n.children[pos].Store(child)
	n.count.Add(1)
}

func (n *node16) change(b byte, child *node) {
	i := n.findPos(b)
	if i < 0 {
		panic("art: change on missing key in N16")
	}
	n.children[i].Store(child)
}

func (n *node16) remove(b byte) {
	i := n.findPos(b)
	if i < 0 {
		return
	}
	cnt := n.len()
	keys := n.loadKeys()
	for j := i; j < cnt-1; j++ {
		setKey16(&keys, j, keyAt16(&keys, j+1))
		n.children[j].Store(n.children[j+1].Load())
	}
	n.children[cnt-1].Store(nil)
	n.storeKeys(keys)
	n.count.Add(^uint32(0))
}

func (n *node16) appendChildren(start, end byte, dst []childRef) []childRef {
	keys := n.loadKeys()
	for i := 0; i < n.len(); i++ {
		k := keyAt16(&keys, i)
		if k < start || k > end {
			continue
		}
		if c := n.children[i].Load(); c != nil {
			dst = append(dst, childRef{key: k, child: c})
		}
	}
	return dst
}
