package art

import "bytes"

// InsertMode selects what happens when the key is already present.
type InsertMode uint8

const (
	// InsertMulti appends the TID to the key's chain.
	InsertMulti InsertMode = iota
	// InsertUnique leaves the key untouched and reports ErrKeyExists.
	InsertUnique
	// InsertUpsert replaces the key's chain with the single TID.
	InsertUpsert
)

// Outcome describes the effect of an insert.
type Outcome uint8

const (
	// OutcomeNone means nothing was stored.
	OutcomeNone Outcome = iota
	// OutcomeNewKey means a leaf was created for the key.
	OutcomeNewKey
	// OutcomeAppended means the TID was added to an existing key's chain.
	OutcomeAppended
	// OutcomeReplaced means an upsert swapped the key's chain for the TID.
	OutcomeReplaced
)

type insertResult struct {
	outcome  Outcome
	replaced int
	err      error
}

// Insert stores tid under key according to mode. If skip is non-nil and
// returns true for any TID already stored under key, nothing is inserted
// and the outcome is OutcomeNone.
func (t *Tree) Insert(ti *ThreadInfo, key []byte, tid uint64, mode InsertMode, skip func(uint64) bool) (Outcome, error) {
	if len(key) == 0 {
		return OutcomeNone, ErrEmptyKey
	}
	need := leafBytes(key)
	if err := t.charge(need); err != nil {
		return OutcomeNone, err
	}

	g := ti.Guard()
	defer g.Release()

	var nl *leaf
	var res insertResult
	for restarts := 0; ; restarts++ {
		if restarts > 0 {
			t.restart(restarts)
		}
		var restart bool
		res, restart = t.insert(ti, key, tid, mode, skip, &nl)
		if !restart {
			break
		}
	}

	switch res.outcome {
	case OutcomeNewKey:
		t.keys.Add(1)
		t.values.Add(1)
	case OutcomeAppended:
		t.values.Add(1)
		t.refund(need - valueOverhead)
	case OutcomeReplaced:
		t.values.Add(int64(1 - res.replaced))
		t.refund(need + int64(res.replaced-1)*valueOverhead)
	default:
		t.refund(need)
	}
	return res.outcome, res.err
}

func (t *Tree) insert(ti *ThreadInfo, key []byte, tid uint64, mode InsertMode, skip func(uint64) bool, nl **leaf) (insertResult, bool) {
	newLeafNode := func() *node {
		if *nl == nil {
			*nl = newLeaf(key, tid)
		}
		return (*nl).self()
	}

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
			return insertResult{}, true
		}

		nextLevel := level
		pr, restart := t.checkPrefixPessimistic(node, key, &nextLevel)
		if restart {
			return insertResult{}, true
		}
		switch pr.result {
		case prefixConflict:
			if node.lock.ReadUnlockOrRestart(v) {
				return insertResult{}, true
			}
			return insertResult{err: ErrPrefixConflict}, false
		case prefixNoMatch:
			if parent == nil {
				panic("art: prefix mismatch at root")
			}
			if parent.lock.UpgradeToWriteLockOrRestart(parentVersion) {
				return insertResult{}, true
			}
			if node.lock.UpgradeToWriteLockOrRestart(v) {
				parent.lock.WriteUnlock()
				return insertResult{}, true
			}

			// Split: a new N4 takes the matched part of the prefix and
			// branches between the new leaf and the old node.
			matched := nextLevel - level
			n4 := t.alloc.newInner(KindN4, key[level:nextLevel], matched)
			n4.insertChild(key[nextLevel], newLeafNode())
			n4.insertChild(pr.nonMatching, node.self())
			parent.changeChild(parentKey, n4.self())
			parent.lock.WriteUnlock()

			node.setPrefix(pr.remaining, pr.length-matched-1)
			node.lock.WriteUnlock()
			return insertResult{outcome: OutcomeNewKey}, false
		}

		level = nextLevel
		if level >= len(key) {
			if node.lock.ReadUnlockOrRestart(v) {
				return insertResult{}, true
			}
			return insertResult{err: ErrPrefixConflict}, false
		}

		nodeKey = key[level]
		child := node.findChild(nodeKey)
		if node.lock.CheckOrRestart(v) {
			return insertResult{}, true
		}

		if child == nil {
			if t.insertAndGrow(ti, node, v, parent, parentVersion, parentKey, nodeKey, newLeafNode) {
				return insertResult{}, true
			}
			return insertResult{outcome: OutcomeNewKey}, false
		}

		if parent != nil && parent.lock.ReadUnlockOrRestart(parentVersion) {
			return insertResult{}, true
		}

		if child.isLeaf {
			l := child.leaf()
			if bytes.Equal(l.key, key) {
				return t.updateLeaf(node, v, l, tid, mode, skip)
			}

			i := level + 1
			for i < len(key) && i < len(l.key) && key[i] == l.key[i] {
				i++
			}
			if i == len(key) || i == len(l.key) {
				if node.lock.ReadUnlockOrRestart(v) {
					return insertResult{}, true
				}
				return insertResult{err: ErrPrefixConflict}, false
			}

			if node.lock.UpgradeToWriteLockOrRestart(v) {
				return insertResult{}, true
			}
			n4 := t.alloc.newInner(KindN4, key[level+1:i], i-level-1)
			n4.insertChild(key[i], newLeafNode())
			n4.insertChild(l.key[i], child)
			node.changeChild(nodeKey, n4.self())
			node.lock.WriteUnlock()
			return insertResult{outcome: OutcomeNewKey}, false
		}

		level++
		parentVersion = v
		next = child.inner()
	}
}

// updateLeaf applies mode to an existing leaf. The decision is taken on an
// optimistic read; the upgrade to a write lock validates it.
func (t *Tree) updateLeaf(node *inner, v uint64, l *leaf, tid uint64, mode InsertMode, skip func(uint64) bool) (insertResult, bool) {
	reject := func(res insertResult) (insertResult, bool) {
		if node.lock.ReadUnlockOrRestart(v) {
			return insertResult{}, true
		}
		return res, false
	}

	if skip != nil && l.anyValue(skip) {
		return reject(insertResult{})
	}

	switch mode {
	case InsertUnique:
		return reject(insertResult{err: ErrKeyExists})
	case InsertUpsert:
		if node.lock.UpgradeToWriteLockOrRestart(v) {
			return insertResult{}, true
		}
		n := l.replaceValues(tid)
		node.lock.WriteUnlock()
		return insertResult{outcome: OutcomeReplaced, replaced: n}, false
	default:
		if _, found := l.scanValues(tid); found {
			return reject(insertResult{err: ErrDuplicateEntry})
		}
		if node.lock.UpgradeToWriteLockOrRestart(v) {
			return insertResult{}, true
		}
		l.addValue(tid)
		node.lock.WriteUnlock()
		return insertResult{outcome: OutcomeAppended}, false
	}
}

// insertAndGrow adds a leaf under b. A full node is replaced by the next
// larger variant, which requires the parent's lock to swap the slot.
func (t *Tree) insertAndGrow(ti *ThreadInfo, node *inner, v uint64, parent *inner, parentVersion uint64, parentKey, b byte, newLeafNode func() *node) bool {
	if !node.isFull() {
		if parent != nil && parent.lock.ReadUnlockOrRestart(parentVersion) {
			return true
		}
		if node.lock.UpgradeToWriteLockOrRestart(v) {
			return true
		}
		node.insertChild(b, newLeafNode())
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
	big := t.alloc.newInner(node.kind()+1, p[:min(pl, maxPrefixLen)], pl)
	node.copyTo(big)
	big.insertChild(b, newLeafNode())
	parent.changeChild(parentKey, big.self())

	node.lock.WriteUnlockObsolete()
	ti.Retire(node)
	parent.lock.WriteUnlock()
	return false
}

const prefixConflict prefixResult = 0xff

type pessimisticPrefix struct {
	result      prefixResult
	nonMatching byte
	remaining   []byte
	length      int
}

// checkPrefixPessimistic compares the full prefix of node against key. Bytes
// beyond maxPrefixLen are read from any leaf below node.
func (t *Tree) checkPrefixPessimistic(node *inner, key []byte, level *int) (pessimisticPrefix, bool) {
	pl := int(node.prefixLen.Load())
	if pl == 0 {
		return pessimisticPrefix{result: prefixMatch}, false
	}

	p, _ := node.loadPrefix()
	full := p[:min(pl, maxPrefixLen)]
	if pl > maxPrefixLen {
		l := anyLeaf(node)
		if l == nil || len(l.key) < *level+pl {
			return pessimisticPrefix{}, true
		}
		full = l.key[*level : *level+pl]
	}

	for i := 0; i < pl; i++ {
		if *level >= len(key) {
			return pessimisticPrefix{result: prefixConflict}, false
		}
		if full[i] != key[*level] {
			return pessimisticPrefix{
				result:      prefixNoMatch,
				nonMatching: full[i],
				remaining:   full[i+1:],
				length:      pl,
			}, false
		}
		*level++
	}
	return pessimisticPrefix{result: prefixMatch, length: pl}, false
}
