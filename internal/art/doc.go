// Package art implements a concurrent Adaptive Radix Tree synchronized with
// optimistic lock coupling and reclaimed through epochs.
//
// # Nodes
//
// Inner nodes come in four sizes, chosen by fan-out:
//
//   - N4: up to 4 sorted key bytes, linear search
//   - N16: up to 16 sorted key bytes, byte-parallel search on two words
//   - N48: a 256-entry byte index into 48 child slots
//   - N256: direct 256-slot array
//
// A node grows to the next size when an insert finds it full and shrinks
// when a removal leaves it underfull (N16 at 3, N48 at 12, N256 at 37
// children). Each node compresses up to 11 bytes of the path common to all
// its descendants; longer shared paths are recorded by length and checked
// against a leaf's full key.
//
// # Concurrency
//
// Readers take no locks. They sample a node's version, read, and validate;
// a failed validation restarts the operation from the root. Writers upgrade
// the versions they sampled to write locks. Nodes replaced by grow, shrink,
// or path compression are marked obsolete and retired to the epoch manager,
// which returns them to their size-class pool once no reader can hold them.
//
// Every operation takes a ThreadInfo from Register. A ThreadInfo must not be
// used by two goroutines at once.
package art
