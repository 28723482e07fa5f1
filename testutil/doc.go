// Package testutil provides testing utilities for artidx.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe RNG and generators for key sets with
// controllable shape.
//
// # Key Generation
//
//	rng := testutil.NewRNG(seed)
//	dense := testutil.SequentialKeys(1, 1000)       // big-endian 1..1000
//	sparse := rng.Uint64Keys(1000)                  // random, distinct
//	words := rng.StringKeys(1000, 4, 24, "abc")     // long shared prefixes
package testutil
