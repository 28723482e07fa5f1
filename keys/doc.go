// Package keys encodes values into byte-comparable index keys.
//
// The tree orders keys by unsigned lexicographic byte comparison and
// requires them to be prefix-free: no stored key may be a strict prefix of
// another. The encoders here produce keys with both properties:
//
//   - Unsigned integers are written big-endian.
//   - Signed integers are written big-endian with the sign bit flipped, so
//     negative values sort before positive ones.
//   - Strings are escaped (0x00 becomes 0x00 0xFF) and terminated with
//     0x00 0x00, so a string never encodes to a prefix of a longer one.
//
// Composite keys concatenate components with a Builder:
//
//	k := keys.NewBuilder().Int64(tenant).String(name).Uint32(seq).Key()
//
// Keys built from the same component schema are prefix-free and compare
// like the tuple of their components.
package keys
