package model

import (
	"encoding/hex"
	"fmt"
)

// TID is the opaque 64-bit tuple identifier stored under a key. The index
// never interprets it.
type TID uint64

// Entry is one key/TID pair returned by range operations.
//
// Key aliases the index's immutable copy of the key; callers must not
// modify it.
type Entry struct {
	Key []byte
	TID TID
}

// String returns a string representation of the Entry.
func (e Entry) String() string {
	return fmt.Sprintf("Entry(%s:%d)", hex.EncodeToString(e.Key), e.TID)
}
