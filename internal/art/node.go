package art

import (
	"encoding/binary"
	"sync/atomic"
	"unsafe"

	"github.com/hupe1980/artidx/internal/olc"
)

// Kind identifies an inner node variant. It is stored in the top two bits of
// the node's version lock.
type Kind uint8

const (
	KindN4 Kind = iota
	KindN16
	KindN48
	KindN256
)

func (k Kind) String() string {
	switch k {
	case KindN4:
		return "N4"
	case KindN16:
		return "N16"
	case KindN48:
		return "N48"
	case KindN256:
		return "N256"
	default:
		return "unknown"
	}
}

// Capacity returns the number of child slots of the variant.
func (k Kind) Capacity() int {
	switch k {
	case KindN4:
		return 4
	case KindN16:
		return 16
	case KindN48:
		return 48
	default:
		return 256
	}
}

const maxPrefixLen = 11

// node is the header shared by leaves and inner nodes. It sits at offset 0 of
// every concrete type so a *node can be reinterpreted once its kind is known.
type node struct {
	isLeaf bool // immutable after allocation
}

func (n *node) leaf() *leaf   { return (*leaf)(unsafe.Pointer(n)) }
func (n *node) inner() *inner { return (*inner)(unsafe.Pointer(n)) }

// inner is the common part of N4, N16, N48 and N256.
type inner struct {
	node
	lock olc.Lock

	// prefix holds up to maxPrefixLen bytes packed little-endian into two
	// words; prefixLen is the true compressed length and may exceed it.
	prefixLen atomic.Uint32
	prefix    [2]atomic.Uint64

	count atomic.Uint32
}

func (in *inner) self() *node  { return &in.node }
func (in *inner) kind() Kind   { return Kind(in.lock.Type()) }
func (in *inner) n4() *node4   { return (*node4)(unsafe.Pointer(in)) }
func (in *inner) n16() *node16 { return (*node16)(unsafe.Pointer(in)) }
func (in *inner) n48() *node48 { return (*node48)(unsafe.Pointer(in)) }
func (in *inner) n256() *node256 {
	return (*node256)(unsafe.Pointer(in))
}

type prefixBuf [16]byte

func (in *inner) loadPrefix() (prefixBuf, int) {
	var p prefixBuf
	binary.LittleEndian.PutUint64(p[0:8], in.prefix[0].Load())
	binary.LittleEndian.PutUint64(p[8:16], in.prefix[1].Load())
	return p, int(in.prefixLen.Load())
}

// setPrefix stores the first maxPrefixLen bytes of p and records length as
// the true prefix length. Caller holds the write lock or owns the node.
func (in *inner) setPrefix(p []byte, length int) {
	var buf prefixBuf
	copy(buf[:maxPrefixLen], p)
	in.prefix[0].Store(binary.LittleEndian.Uint64(buf[0:8]))
	in.prefix[1].Store(binary.LittleEndian.Uint64(buf[8:16]))
	in.prefixLen.Store(uint32(length))
}

// addPrefixBefore prepends parent's prefix and the byte b that led from
// parent to in. Used when parent is merged away during removal.
func (in *inner) addPrefixBefore(parent *inner, b byte) {
	pp, pl := parent.loadPrefix()
	op, ol := in.loadPrefix()

	var buf [maxPrefixLen]byte
	n := copy(buf[:], pp[:min(pl, maxPrefixLen)])
	if n < maxPrefixLen {
		buf[n] = b
		n++
	}
	if n < maxPrefixLen {
		copy(buf[n:], op[:min(ol, maxPrefixLen)])
	}
	in.setPrefix(buf[:], pl+1+ol)
}

type prefixResult uint8

const (
	prefixMatch prefixResult = iota
	prefixNoMatch
	// prefixOptimistic means only the stored bytes were compared; the rest
	// is verified against the full key at the leaf.
	prefixOptimistic
)

// checkPrefix compares the stored prefix against key at *level and advances
// *level past the prefix. The result must be validated by the caller.
func (in *inner) checkPrefix(key []byte, level *int) prefixResult {
	pl := int(in.prefixLen.Load())
	if pl == 0 {
		return prefixMatch
	}
	if len(key) <= *level+pl {
		return prefixNoMatch
	}
	p, _ := in.loadPrefix()
	for i := 0; i < min(pl, maxPrefixLen); i++ {
		if p[i] != key[*level] {
			return prefixNoMatch
		}
		*level++
	}
	if pl > maxPrefixLen {
		*level += pl - maxPrefixLen
		return prefixOptimistic
	}
	return prefixMatch
}

type childRef struct {
	key   byte
	child *node
}

func (in *inner) findChild(b byte) *node {
	switch in.kind() {
	case KindN4:
		return in.n4().findChild(b)
	case KindN16:
		return in.n16().findChild(b)
	case KindN48:
		return in.n48().findChild(b)
	default:
		return in.n256().findChild(b)
	}
}

func (in *inner) insertChild(b byte, child *node) {
	switch in.kind() {
	case KindN4:
		in.n4().insert(b, child)
	case KindN16:
		in.n16().insert(b, child)
	case KindN48:
		in.n48().insert(b, child)
	default:
		in.n256().insert(b, child)
	}
}

func (in *inner) changeChild(b byte, child *node) {
	switch in.kind() {
	case KindN4:
		in.n4().change(b, child)
	case KindN16:
		in.n16().change(b, child)
	case KindN48:
		in.n48().change(b, child)
	default:
		in.n256().change(b, child)
	}
}

func (in *inner) removeChild(b byte) {
	switch in.kind() {
	case KindN4:
		in.n4().remove(b)
	case KindN16:
		in.n16().remove(b)
	case KindN48:
		in.n48().remove(b)
	default:
		in.n256().remove(b)
	}
}

func (in *inner) isFull() bool {
	c := int(in.count.Load())
	switch in.kind() {
	case KindN4:
		return c == 4
	case KindN16:
		return c == 16
	case KindN48:
		return c == 48
	default:
		return false
	}
}

func (in *inner) isUnderfull() bool {
	c := int(in.count.Load())
	switch in.kind() {
	case KindN16:
		return c <= 3
	case KindN48:
		return c <= 12
	case KindN256:
		return c <= 37
	default:
		return false
	}
}

// appendChildren appends the (byte, child) pairs with start <= byte <= end in
// ascending byte order. The result is an unvalidated snapshot.
func (in *inner) appendChildren(start, end byte, dst []childRef) []childRef {
	switch in.kind() {
	case KindN4:
		return in.n4().appendChildren(start, end, dst)
	case KindN16:
		return in.n16().appendChildren(start, end, dst)
	case KindN48:
		return in.n48().appendChildren(start, end, dst)
	default:
		return in.n256().appendChildren(start, end, dst)
	}
}

func (in *inner) copyTo(dst *inner) {
	var buf [256]childRef
	for _, c := range in.appendChildren(0, 255, buf[:0]) {
		dst.insertChild(c.key, c.child)
	}
}

// anyChild returns some child, preferring a leaf.
func (in *inner) anyChild() *node {
	var buf [256]childRef
	var fallback *node
	for _, c := range in.appendChildren(0, 255, buf[:0]) {
		if c.child.isLeaf {
			return c.child
		}
		if fallback == nil {
			fallback = c.child
		}
	}
	return fallback
}

// secondChild returns the child that is not under key b. Only meaningful for
// a node with exactly two children.
func (in *inner) secondChild(b byte) (*node, byte) {
	var buf [4]childRef
	for _, c := range in.appendChildren(0, 255, buf[:0]) {
		if c.key != b {
			return c.child, c.key
		}
	}
	return nil, 0
}

// anyLeaf descends through anyChild until it reaches a leaf. It is used to
// recover prefix bytes beyond maxPrefixLen; every leaf below in shares them.
func anyLeaf(in *inner) *leaf {
	for depth := 0; depth < 1<<16; depth++ {
		c := in.anyChild()
		if c == nil {
			return nil
		}
		if c.isLeaf {
			return c.leaf()
		}
		in = c.inner()
	}
	return nil
}
