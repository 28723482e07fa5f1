// Package model defines the value types exchanged with an index.
//
//   - TID: opaque 64-bit tuple identifier (row locator, primary key, ...)
//   - Entry: a key together with one of its TIDs
package model
