// Package epoch implements epoch-based memory reclamation for lock-free
// readers.
//
// A node unlinked from a concurrent structure may still be observed by
// readers that loaded a pointer to it before the unlink. Instead of freeing
// it, the writer retires it into its ThreadInfo's deletion list, stamped with
// the current global epoch. A retired batch is physically freed only once
// every registered thread has published a local epoch newer than the batch's
// stamp.
//
// # Protocol
//
//   - Enter publishes the global epoch as the thread's local epoch.
//   - Retire appends a node to the thread's newest batch (32 nodes per batch).
//   - Exit advances the global epoch every 64th retirement and, once enough
//     nodes were retired, computes the minimum local epoch over all threads
//     and frees every batch stamped below it.
//   - Deregister publishes an infinite local epoch so an idle thread never
//     holds back reclamation.
//
// Writers wrap operations in a Guard (enter, exit with cleanup). Readers use
// a ReadGuard, which only enters: they never retire anything.
//
// # Ownership
//
// A ThreadInfo belongs to one goroutine at a time. Its deletion list is
// touched only by that goroutine; other threads read only its published
// local epoch.
package epoch
