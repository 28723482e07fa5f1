package artidx

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    insertCounter   prometheus.Counter
//	    lookupHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordInsert(duration time.Duration, err error) {
//	    p.insertCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
//
// Methods are called on the operation's goroutine and must be safe for
// concurrent use.
type MetricsCollector interface {
	// RecordInsert is called after each insert, upsert or conditional insert.
	// duration is the total time taken, err is nil if successful.
	RecordInsert(duration time.Duration, err error)

	// RecordLookup is called after each point lookup.
	RecordLookup(duration time.Duration, found bool)

	// RecordRemove is called after each remove. removed is the number of
	// TIDs removed.
	RecordRemove(duration time.Duration, removed int)

	// RecordRange is called when a range iteration ends. entries is the
	// number of entries produced.
	RecordRange(entries int, duration time.Duration)

	// RecordBulkLoad is called after each bulk load.
	// count is the number of entries attempted, failed is the number that failed.
	RecordBulkLoad(count, failed int, duration time.Duration)

	// RecordReclaim is called for every batch of nodes the epoch reclaimer
	// frees.
	RecordReclaim(nodes int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(time.Duration, error)      {}
func (NoopMetricsCollector) RecordLookup(time.Duration, bool)       {}
func (NoopMetricsCollector) RecordRemove(time.Duration, int)        {}
func (NoopMetricsCollector) RecordRange(int, time.Duration)         {}
func (NoopMetricsCollector) RecordBulkLoad(int, int, time.Duration) {}
func (NoopMetricsCollector) RecordReclaim(int)                      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount      atomic.Int64
	InsertErrors     atomic.Int64
	InsertTotalNanos atomic.Int64
	LookupCount      atomic.Int64
	LookupHits       atomic.Int64
	LookupTotalNanos atomic.Int64
	RemoveCount      atomic.Int64
	RemovedValues    atomic.Int64
	RangeCount       atomic.Int64
	RangeEntries     atomic.Int64
	BulkLoadCount    atomic.Int64
	BulkLoadItems    atomic.Int64
	BulkLoadFailed   atomic.Int64
	ReclaimedNodes   atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(duration time.Duration, err error) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InsertErrors.Add(1)
	}
}

// RecordLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLookup(duration time.Duration, found bool) {
	b.LookupCount.Add(1)
	b.LookupTotalNanos.Add(duration.Nanoseconds())
	if found {
		b.LookupHits.Add(1)
	}
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(duration time.Duration, removed int) {
	b.RemoveCount.Add(1)
	b.RemovedValues.Add(int64(removed))
}

// RecordRange implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRange(entries int, duration time.Duration) {
	b.RangeCount.Add(1)
	b.RangeEntries.Add(int64(entries))
}

// RecordBulkLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBulkLoad(count, failed int, duration time.Duration) {
	b.BulkLoadCount.Add(1)
	b.BulkLoadItems.Add(int64(count))
	b.BulkLoadFailed.Add(int64(failed))
}

// RecordReclaim implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReclaim(nodes int) {
	b.ReclaimedNodes.Add(int64(nodes))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:    b.InsertCount.Load(),
		InsertErrors:   b.InsertErrors.Load(),
		InsertAvgNanos: avgNanos(b.InsertTotalNanos.Load(), b.InsertCount.Load()),
		LookupCount:    b.LookupCount.Load(),
		LookupHits:     b.LookupHits.Load(),
		LookupAvgNanos: avgNanos(b.LookupTotalNanos.Load(), b.LookupCount.Load()),
		RemoveCount:    b.RemoveCount.Load(),
		RemovedValues:  b.RemovedValues.Load(),
		RangeCount:     b.RangeCount.Load(),
		RangeEntries:   b.RangeEntries.Load(),
		BulkLoadCount:  b.BulkLoadCount.Load(),
		BulkLoadItems:  b.BulkLoadItems.Load(),
		BulkLoadFailed: b.BulkLoadFailed.Load(),
		ReclaimedNodes: b.ReclaimedNodes.Load(),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InsertCount    int64
	InsertErrors   int64
	InsertAvgNanos int64
	LookupCount    int64
	LookupHits     int64
	LookupAvgNanos int64
	RemoveCount    int64
	RemovedValues  int64
	RangeCount     int64
	RangeEntries   int64
	BulkLoadCount  int64
	BulkLoadItems  int64
	BulkLoadFailed int64
	ReclaimedNodes int64
}
