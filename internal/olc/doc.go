// Package olc implements the version lock used for optimistic lock coupling.
//
// Every inner tree node embeds a Lock. Readers never write to shared memory:
// they sample the version with ReadLockOrRestart, read the node, and then
// validate the sample with CheckOrRestart. Writers upgrade a sampled version
// to an exclusive lock with a single compare-and-swap.
//
// # Word Layout
//
//	63   62 61                              2    1      0
//	┌───────┬─────────────────────────────────┬──────┬──────────┐
//	│ type  │ version                         │ lock │ obsolete │
//	└───────┴─────────────────────────────────┴──────┴──────────┘
//
// A fresh lock holds version 1 (word 0b100). Locking adds 2, unlocking adds
// 2 again, so the version advances on every completed write. Unlocking as
// obsolete adds 3, which clears the lock bit and sets the obsolete bit in the
// same step. No transition leaves the obsolete state.
//
// # Restart Discipline
//
// Every method that can fail reports needRestart instead of blocking. The
// caller abandons the whole top-level operation and starts again from the
// root, calling Backoff with the number of restarts so far.
package olc
