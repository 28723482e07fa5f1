package artidx

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// LookupBitmap returns the TIDs of key as a bitmap. The bitmap is empty if
// the key is absent.
func (idx *Index) LookupBitmap(key []byte) (*roaring64.Bitmap, error) {
	s, err := idx.acquire()
	if err != nil {
		return nil, err
	}
	defer idx.release(s)
	return s.LookupBitmap(key)
}

// RangeBitmap returns the union of the TIDs of all keys in span.
func (idx *Index) RangeBitmap(span Span) (*roaring64.Bitmap, error) {
	return rangeBitmap(idx.Range(span))
}

// LookupBitmap is Index.LookupBitmap on this session.
func (s *Session) LookupBitmap(key []byte) (*roaring64.Bitmap, error) {
	tids, _, err := s.lookup(key)
	if err != nil {
		return nil, err
	}
	bm := roaring64.New()
	bm.AddMany(tids)
	return bm, nil
}

// RangeBitmap is Index.RangeBitmap on this session.
func (s *Session) RangeBitmap(span Span) (*roaring64.Bitmap, error) {
	return rangeBitmap(s.Range(span))
}

func rangeBitmap(seq iter.Seq2[Entry, error]) (*roaring64.Bitmap, error) {
	bm := roaring64.New()
	for e, err := range seq {
		if err != nil {
			return nil, err
		}
		bm.Add(uint64(e.TID))
	}
	return bm, nil
}
