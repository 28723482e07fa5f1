// Package resource governs the shared resources of an index.
//
// The Controller covers three concerns:
//
//   - Memory: admit leaf and value bytes against a hard limit (non-blocking, fail-fast)
//   - Concurrency: bound the number of concurrent bulk loaders
//   - Load rate: throttle bulk loads so they do not starve foreground lookups
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                        Controller                           │
//	├─────────────────┬─────────────────┬─────────────────────────┤
//	│  Memory Limit   │  Loader slots   │  Row Rate Limiter       │
//	│  (fail-fast)    │  (semaphore)    │  (token bucket)         │
//	├─────────────────┼─────────────────┼─────────────────────────┤
//	│  AcquireMemory  │  AcquireBack-   │  AcquireRows            │
//	│  ReleaseMemory  │  ground         │                         │
//	│  MemoryUsage    │  Release-       │                         │
//	│  Denied         │  Background     │                         │
//	└─────────────────┴─────────────────┴─────────────────────────┘
//
// # Memory Management
//
// The tree charges a leaf and its first value when a key is created and a
// value record for every appended TID. AcquireMemory never blocks:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20,
//	})
//
//	if err := rc.AcquireMemory(n); err != nil {
//	    // ErrMemoryLimitExceeded - the insert is rejected
//	}
//	defer rc.ReleaseMemory(n)
//
// Inner nodes are pooled and reclaimed by epochs; they are not charged.
//
// # Loader Limits
//
//	if err := rc.AcquireBackground(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseBackground()
//
//	if err := rc.AcquireRows(ctx, len(batch)); err != nil {
//	    return err
//	}
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
