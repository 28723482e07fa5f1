package art

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// InvariantError describes a structural violation found by Verify.
type InvariantError struct {
	Path   []byte
	Kind   Kind
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("art: %s node at %x: %s", e.Kind, e.Path, e.Reason)
}

// Verify checks the structural invariants of a quiescent tree: node counts
// within capacity and matching occupied slots, sorted N4/N16 keys, a
// consistent N48 index, at least two children below the root, no locked or
// obsolete reachable node, and leaf keys agreeing with the compressed path.
// It must not run concurrently with writers.
func (t *Tree) Verify() error {
	v := verifier{known: bitset.New(64)}
	if err := v.node(t.root, true); err != nil {
		return err
	}
	if v.keys != t.keys.Load() {
		return &InvariantError{Kind: KindN256, Reason: fmt.Sprintf("key counter %d, found %d", t.keys.Load(), v.keys)}
	}
	if v.values != t.values.Load() {
		return &InvariantError{Kind: KindN256, Reason: fmt.Sprintf("value counter %d, found %d", t.values.Load(), v.values)}
	}
	return nil
}

type verifier struct {
	path   []byte
	known  *bitset.BitSet
	keys   int64
	values int64
}

func (v *verifier) fail(in *inner, format string, args ...any) error {
	return &InvariantError{
		Path:   append([]byte(nil), v.path...),
		Kind:   in.kind(),
		Reason: fmt.Sprintf(format, args...),
	}
}

func (v *verifier) node(in *inner, root bool) error {
	if in.lock.Locked() || in.lock.Obsolete() {
		return v.fail(in, "reachable node is locked or obsolete")
	}

	level := len(v.path)
	p, pl := in.loadPrefix()
	for i := 0; i < pl; i++ {
		if i < maxPrefixLen {
			v.path = append(v.path, p[i])
			v.known.Set(uint(level + i))
		} else {
			v.path = append(v.path, 0)
			v.known.Clear(uint(level + i))
		}
	}
	d := len(v.path)

	kids, err := v.slots(in)
	if err != nil {
		return err
	}
	if !root && len(kids) < 2 {
		return v.fail(in, "%d children below a non-root node", len(kids))
	}

	for _, c := range kids {
		v.path = append(v.path[:d], c.key)
		v.known.Set(uint(d))
		if c.child.isLeaf {
			if err := v.leaf(in, c.child.leaf()); err != nil {
				return err
			}
			continue
		}
		if err := v.node(c.child.inner(), false); err != nil {
			return err
		}
	}
	v.path = v.path[:level]
	return nil
}

// slots validates the variant's storage and returns its children.
func (v *verifier) slots(in *inner) ([]childRef, error) {
	cnt := int(in.count.Load())
	if cnt > in.kind().Capacity() {
		return nil, v.fail(in, "count %d exceeds capacity", cnt)
	}

	switch in.kind() {
	case KindN4:
		n := in.n4()
		keys := n.keys.Load()
		for i := 0; i < cnt; i++ {
			if n.children[i].Load() == nil {
				return nil, v.fail(in, "empty slot %d below count", i)
			}
			if i > 0 && keyAt4(keys, i-1) >= keyAt4(keys, i) {
				return nil, v.fail(in, "keys not sorted at %d", i)
			}
		}
	case KindN16:
		n := in.n16()
		keys := n.loadKeys()
		for i := 0; i < cnt; i++ {
			if n.children[i].Load() == nil {
				return nil, v.fail(in, "empty slot %d below count", i)
			}
			if i > 0 && keyAt16(&keys, i-1) >= keyAt16(&keys, i) {
				return nil, v.fail(in, "keys not sorted at %d", i)
			}
		}
	case KindN48:
		n := in.n48()
		used := bitset.New(emptyMarker)
		for k := 0; k < 256; k++ {
			s := n.slot(byte(k))
			if s == emptyMarker {
				continue
			}
			if s > emptyMarker {
				return nil, v.fail(in, "index %d out of range for byte %d", s, k)
			}
			if used.Test(uint(s)) {
				return nil, v.fail(in, "slot %d shared by two bytes", s)
			}
			used.Set(uint(s))
			if n.children[s].Load() == nil {
				return nil, v.fail(in, "byte %d maps to empty slot %d", k, s)
			}
		}
		occupied := 0
		for i := range n.children {
			if n.children[i].Load() != nil {
				occupied++
				if !used.Test(uint(i)) {
					return nil, v.fail(in, "orphaned slot %d", i)
				}
			}
		}
		if occupied != cnt {
			return nil, v.fail(in, "count %d, occupied slots %d", cnt, occupied)
		}
	}

	kids := in.appendChildren(0, 255, nil)
	if len(kids) != cnt {
		return nil, v.fail(in, "count %d, children %d", cnt, len(kids))
	}
	return kids, nil
}

func (v *verifier) leaf(parent *inner, l *leaf) error {
	if len(l.key) < len(v.path) {
		return v.fail(parent, "leaf key %x shorter than path", l.key)
	}
	for i, b := range v.path {
		if v.known.Test(uint(i)) && l.key[i] != b {
			return v.fail(parent, "leaf key %x diverges from path at %d", l.key, i)
		}
	}
	n, _ := l.scanValues(0)
	if n == 0 {
		return v.fail(parent, "leaf %x without values", l.key)
	}
	if len(l.key) == 0 {
		return v.fail(parent, "leaf with empty key")
	}
	v.keys++
	v.values += int64(n)
	return nil
}
