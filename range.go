package artidx

import (
	"context"
	"iter"
	"time"

	"github.com/hupe1980/artidx/internal/art"
	"github.com/hupe1980/artidx/keys"
)

// Span selects a key range. A nil Start or End leaves that side unbounded.
// Bounds need not be stored keys.
type Span struct {
	Start          []byte
	End            []byte
	StartExclusive bool
	EndExclusive   bool
}

// Between returns the closed span [start, end].
func Between(start, end []byte) Span {
	return Span{Start: start, End: end}
}

// PrefixSpan returns the span of all keys starting with p.
func PrefixSpan(p []byte) Span {
	return Span{Start: p, End: keys.PrefixEnd(p), EndExclusive: true}
}

// After returns s restricted to keys strictly greater than key. It resumes
// a RangeLimit from its continuation key.
func (s Span) After(key []byte) Span {
	s.Start, s.StartExclusive = key, true
	return s
}

func (s Span) bounds() art.Bounds {
	return art.Bounds{
		Start:          s.Start,
		End:            s.End,
		StartExclusive: s.StartExclusive,
		EndExclusive:   s.EndExclusive,
	}
}

// batchFunc appends up to limit keys of b to dst.
type batchFunc func(b art.Bounds, limit int, dst []art.Entry) ([]art.Entry, bool, error)

// scanBatch collects one batch under a single epoch guard and quiesces
// the session before the caller sees it.
func (s *Session) scanBatch(b art.Bounds, limit int, dst []art.Entry) ([]art.Entry, bool, error) {
	if !s.enter() {
		return dst, false, ErrClosed
	}
	defer s.idx.exit()

	out, more := s.idx.tree.ScanBatch(s.ti, b, limit, dst)
	s.idx.tree.Quiesce(s.ti)
	return out, more, nil
}

func (idx *Index) scanBatch(b art.Bounds, limit int, dst []art.Entry) ([]art.Entry, bool, error) {
	s, err := idx.acquire()
	if err != nil {
		return dst, false, err
	}
	defer idx.release(s)
	return s.scanBatch(b, limit, dst)
}

// rangeSeq yields span batch by batch. Each batch resumes strictly after
// the last key of the previous one, so keys are produced in ascending
// order and never twice. Keys present for the whole iteration are always
// produced; keys inserted or removed meanwhile may or may not be.
func (idx *Index) rangeSeq(span Span, batch batchFunc) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		start := time.Now()
		n := 0
		var err error
		defer func() {
			idx.metrics.RecordRange(n, time.Since(start))
			idx.logger.LogRange(context.Background(), span, n, err)
		}()

		b := span.bounds()
		var buf []art.Entry
		for {
			var more bool
			buf, more, err = batch(b, idx.batchSize, buf[:0])
			if err != nil {
				yield(Entry{}, err)
				return
			}
			for _, e := range buf {
				n++
				if !yield(Entry{Key: e.Key, TID: TID(e.TID)}, nil) {
					return
				}
			}
			if !more || len(buf) == 0 {
				return
			}
			b.Start, b.StartExclusive = buf[len(buf)-1].Key, true
		}
	}
}

func (idx *Index) rangeLimit(span Span, limit int, batch batchFunc) ([]Entry, []byte, error) {
	start := time.Now()
	got, more, err := batch(span.bounds(), limit, nil)
	if err != nil {
		return nil, nil, err
	}
	out := make([]Entry, len(got))
	for i, e := range got {
		out[i] = Entry{Key: e.Key, TID: TID(e.TID)}
	}
	idx.metrics.RecordRange(len(out), time.Since(start))
	idx.logger.LogRange(context.Background(), span, len(out), nil)

	if !more || len(got) == 0 {
		return out, nil, nil
	}
	return out, got[len(got)-1].Key, nil
}

// Range iterates the entries in span in ascending key order. All TIDs of a
// key are produced together, in insertion order. The only error produced
// is ErrClosed. Entry keys share memory with the index and must not be
// modified.
//
// Entries are collected in batches (see WithScanBatch); no epoch is held
// while the loop body runs, so the body may call back into the index.
//
//	for e, err := range idx.Range(artidx.Between(lo, hi)) {
//	    if err != nil {
//	        return err
//	    }
//	    process(e.Key, e.TID)
//	}
func (idx *Index) Range(span Span) iter.Seq2[Entry, error] {
	return idx.rangeSeq(span, idx.scanBatch)
}

// RangeLimit returns the entries of at most limit keys of span (limit <= 0
// means all). If more keys remain, next is the last returned key; resume
// with span.After(next).
func (idx *Index) RangeLimit(span Span, limit int) (entries []Entry, next []byte, err error) {
	return idx.rangeLimit(span, limit, idx.scanBatch)
}

// Scan iterates all entries in key order.
func (idx *Index) Scan() iter.Seq2[Entry, error] {
	return idx.Range(Span{})
}

// Prefix iterates the entries whose key starts with p.
func (idx *Index) Prefix(p []byte) iter.Seq2[Entry, error] {
	return idx.Range(PrefixSpan(p))
}

// Range iterates span using this session. See Index.Range. The session is
// quiesced while the loop body runs.
func (s *Session) Range(span Span) iter.Seq2[Entry, error] {
	return s.idx.rangeSeq(span, s.scanBatch)
}

// RangeLimit is Index.RangeLimit on this session.
func (s *Session) RangeLimit(span Span, limit int) (entries []Entry, next []byte, err error) {
	return s.idx.rangeLimit(span, limit, s.scanBatch)
}

// Scan iterates all entries in key order.
func (s *Session) Scan() iter.Seq2[Entry, error] {
	return s.Range(Span{})
}

// Prefix iterates the entries whose key starts with p.
func (s *Session) Prefix(p []byte) iter.Seq2[Entry, error] {
	return s.Range(PrefixSpan(p))
}
