package artidx

import (
	"context"
	"time"

	"github.com/hupe1980/artidx/internal/art"
)

// Session is a goroutine's registration with the index's epoch reclaimer.
// A Session must be used by one goroutine at a time; it may be handed to
// another goroutine between operations.
//
// While a Session is between operations it still pins the epoch of its
// last operation, which delays reclamation of nodes retired since. Call
// Quiesce before a Session goes idle for long.
type Session struct {
	idx  *Index
	ti   *art.ThreadInfo
	id   uint64
	tids []uint64
	done bool
}

// NewSession registers a new Session. Close it when the goroutine is done.
func (idx *Index) NewSession() (*Session, error) {
	if !idx.enter() {
		return nil, ErrClosed
	}
	defer idx.exit()

	return &Session{
		idx: idx,
		ti:  idx.tree.Register(),
		id:  idx.sessions.Add(1),
	}, nil
}

// ID returns the session's number, unique within its index.
func (s *Session) ID() uint64 { return s.id }

// Close deregisters the session. Retired nodes it still holds are freed
// by the session that next reuses its slot.
func (s *Session) Close() {
	if s.done {
		return
	}
	s.done = true
	s.idx.tree.Deregister(s.ti)
}

// Quiesce marks the session idle so it no longer delays reclamation.
func (s *Session) Quiesce() {
	if s.done {
		return
	}
	s.idx.tree.Quiesce(s.ti)
}

// enter admits an operation on s.
func (s *Session) enter() bool {
	if s.done {
		return false
	}
	return s.idx.enter()
}

// put inserts without metrics or logging.
func (s *Session) put(key []byte, tid TID, mode art.InsertMode, skip func(uint64) bool) (art.Outcome, error) {
	if !s.enter() {
		return art.OutcomeNone, ErrClosed
	}
	defer s.idx.exit()

	out, err := s.idx.tree.Insert(s.ti, key, uint64(tid), mode, skip)
	return out, translateError(err)
}

func (s *Session) insert(key []byte, tid TID, mode art.InsertMode, skip func(uint64) bool) (art.Outcome, error) {
	start := time.Now()
	out, err := s.put(key, tid, mode, skip)
	s.idx.metrics.RecordInsert(time.Since(start), err)
	s.idx.logger.LogInsert(context.Background(), key, tid, err)
	return out, err
}

// Insert stores tid under key. See Index.Insert.
func (s *Session) Insert(key []byte, tid TID) error {
	_, err := s.insert(key, tid, s.idx.mode(), nil)
	return err
}

// Upsert replaces all TIDs of key with tid. See Index.Upsert.
func (s *Session) Upsert(key []byte, tid TID) error {
	_, err := s.insert(key, tid, art.InsertUpsert, nil)
	return err
}

// ConditionalInsert inserts tid unless pred holds for a stored TID. See
// Index.ConditionalInsert.
func (s *Session) ConditionalInsert(key []byte, tid TID, pred func(TID) bool) (bool, error) {
	var skip func(uint64) bool
	if pred != nil {
		skip = func(v uint64) bool { return pred(TID(v)) }
	}
	out, err := s.insert(key, tid, s.idx.mode(), skip)
	return out != art.OutcomeNone, err
}

func (s *Session) lookup(key []byte) ([]uint64, bool, error) {
	if !s.enter() {
		return nil, false, ErrClosed
	}
	defer s.idx.exit()

	start := time.Now()
	var found bool
	s.tids, found = s.idx.tree.Lookup(s.ti, key, s.tids[:0])
	s.idx.metrics.RecordLookup(time.Since(start), found)
	return s.tids, found, nil
}

// Lookup returns the TIDs stored under key, or nil if it is absent.
func (s *Session) Lookup(key []byte) ([]TID, error) {
	return s.LookupAppend(nil, key)
}

// LookupAppend appends the TIDs stored under key to dst.
func (s *Session) LookupAppend(dst []TID, key []byte) ([]TID, error) {
	tids, _, err := s.lookup(key)
	if err != nil {
		return dst, err
	}
	for _, v := range tids {
		dst = append(dst, TID(v))
	}
	return dst, nil
}

// Contains reports whether key is present.
func (s *Session) Contains(key []byte) (bool, error) {
	_, found, err := s.lookup(key)
	return found, err
}

func (s *Session) remove(key []byte, tid TID, whole bool) (int, error) {
	if !s.enter() {
		return 0, ErrClosed
	}
	defer s.idx.exit()

	start := time.Now()
	var removed int
	if whole {
		removed = s.idx.tree.Remove(s.ti, key)
	} else if s.idx.tree.RemoveValue(s.ti, key, uint64(tid)) {
		removed = 1
	}
	s.idx.metrics.RecordRemove(time.Since(start), removed)
	s.idx.logger.LogRemove(context.Background(), key, removed, nil)
	return removed, nil
}

// Remove deletes key with all its TIDs. See Index.Remove.
func (s *Session) Remove(key []byte) (int, error) {
	return s.remove(key, 0, true)
}

// RemoveValue deletes one TID of key. See Index.RemoveValue.
func (s *Session) RemoveValue(key []byte, tid TID) error {
	n, err := s.remove(key, tid, false)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// NodeKindAt reports the deepest inner node on key's search path. See
// Index.NodeKindAt.
func (s *Session) NodeKindAt(key []byte) (string, int, error) {
	if !s.enter() {
		return "", 0, ErrClosed
	}
	defer s.idx.exit()

	kind, depth, _ := s.idx.tree.NodeFor(s.ti, key)
	return kind.String(), depth, nil
}
