package art

import "bytes"

// Bounds selects the keys of a range scan. A nil Start or End is unbounded.
type Bounds struct {
	Start          []byte
	End            []byte
	StartExclusive bool
	EndExclusive   bool
}

// Entry is one key/TID pair produced by a scan. Key aliases the tree's copy
// of the key and must not be modified.
type Entry struct {
	Key []byte
	TID uint64
}

// ScanBatch appends the entries within b to dst in ascending key order,
// stopping after limit keys (limit <= 0 means no limit). All TIDs of a key
// are emitted together. more reports that the limit was reached; resume by
// scanning again with StartExclusive set on the last returned key.
//
// On a concurrent modification the scan restarts from the root strictly
// after the last key it emitted, so no key is emitted twice. Every emitted
// entry was present when its parent node was last validated.
func (t *Tree) ScanBatch(ti *ThreadInfo, b Bounds, limit int, dst []Entry) ([]Entry, bool) {
	g := ti.ReadGuard()
	defer g.Release()

	s := scanner{
		lo:     b.Start,
		hi:     b.End,
		loExcl: b.StartExclusive,
		hiExcl: b.EndExclusive,
		limit:  limit,
		out:    dst,
	}
	if s.lo != nil && s.hi != nil {
		c := bytes.Compare(s.lo, s.hi)
		if c > 0 || (c == 0 && (s.loExcl || s.hiExcl)) {
			return dst, false
		}
	}

	for restarts := 0; ; restarts++ {
		if restarts > 0 {
			t.restart(restarts)
			if s.last != nil {
				s.lo, s.loExcl = s.last, true
			}
		}
		s.path = s.path[:0]
		v, restart := t.root.lock.ReadLockOrRestart()
		if restart {
			continue
		}
		stop, restart := s.visit(t.root, v, 0, 0)
		if !restart {
			return s.out, stop
		}
	}
}

type scanner struct {
	lo, hi         []byte
	loExcl, hiExcl bool
	limit          int

	keys int
	out  []Entry
	last []byte
	path []byte
	bufs [][]childRef
}

func (s *scanner) buf(depth int) []childRef {
	for len(s.bufs) <= depth {
		s.bufs = append(s.bufs, make([]childRef, 0, 16))
	}
	return s.bufs[depth][:0]
}

// visit emits the entries below in, whose read version is v. s.path holds
// the level key bytes leading to in.
func (s *scanner) visit(in *inner, v uint64, level, depth int) (stop, restart bool) {
	p, pl := in.loadPrefix()
	prefix := p[:min(pl, maxPrefixLen)]
	if pl > maxPrefixLen {
		l := anyLeaf(in)
		if l == nil || len(l.key) < level+pl {
			return false, true
		}
		prefix = l.key[level : level+pl]
	}
	if in.lock.CheckOrRestart(v) {
		return false, true
	}

	s.path = append(s.path[:level], prefix...)
	d := len(s.path)

	start, end := byte(0), byte(255)
	if s.lo != nil {
		c := boundCmp(s.path, s.lo)
		if c < 0 {
			return false, false
		}
		if c == 0 {
			start = s.lo[d]
		}
	}
	if s.hi != nil {
		c := boundCmp(s.path, s.hi)
		if c > 0 {
			return false, false
		}
		if c == 0 {
			end = s.hi[d]
		}
	}
	if start > end {
		return false, false
	}

	kids := in.appendChildren(start, end, s.buf(depth))
	s.bufs[depth] = kids
	if in.lock.CheckOrRestart(v) {
		return false, true
	}

	for _, c := range kids {
		if c.child.isLeaf {
			l := c.child.leaf()
			if !s.inBounds(l.key) {
				continue
			}
			before := len(s.out)
			for val := l.values.Load(); val != nil; val = val.next.Load() {
				s.out = append(s.out, Entry{Key: l.key, TID: val.tid})
			}
			if in.lock.CheckOrRestart(v) {
				s.out = s.out[:before]
				return false, true
			}
			s.last = l.key
			s.keys++
			if s.limit > 0 && s.keys >= s.limit {
				return true, false
			}
			continue
		}

		child := c.child.inner()
		cv, restart := child.lock.ReadLockOrRestart()
		if restart || in.lock.CheckOrRestart(v) {
			return false, true
		}
		s.path = append(s.path[:d], c.key)
		if stop, restart := s.visit(child, cv, d+1, depth+1); stop || restart {
			return stop, restart
		}
	}
	return false, false
}

func (s *scanner) inBounds(key []byte) bool {
	if s.lo != nil {
		c := bytes.Compare(key, s.lo)
		if c < 0 || (c == 0 && s.loExcl) {
			return false
		}
	}
	if s.hi != nil {
		c := bytes.Compare(key, s.hi)
		if c > 0 || (c == 0 && s.hiExcl) {
			return false
		}
	}
	return true
}

// boundCmp orders the subtree below path against bound: -1 if every key in
// it sorts before bound, 1 if every key sorts after, 0 if bound[len(path)]
// splits it.
func boundCmp(path, bound []byte) int {
	n := min(len(path), len(bound))
	if c := bytes.Compare(path[:n], bound[:n]); c != 0 {
		return c
	}
	if len(bound) <= len(path) {
		return 1
	}
	return 0
}
