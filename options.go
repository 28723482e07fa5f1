package artidx

import (
	"fmt"
	"log/slog"
	"math/bits"
	"runtime"

	"github.com/hupe1980/artidx/internal/conv"
	"github.com/hupe1980/artidx/internal/epoch"
)

const (
	// DefaultScanBatch is the number of keys a range iterator collects per
	// epoch guard.
	DefaultScanBatch = 128

	// DefaultLoadBatch is the number of entries a bulk-load worker inserts
	// per rate-limiter reservation.
	DefaultLoadBatch = 256
)

type options struct {
	unique           bool
	gcThreshold      int
	advanceInterval  int
	maxSessions      int
	memoryLimit      int64
	loadRate         int64
	loadWorkers      int
	scanBatch        int
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures an Index.
type Option func(*options)

// WithUnique makes the index unique: inserting an existing key fails with
// ErrKeyExists instead of adding another TID to the key.
func WithUnique(unique bool) Option {
	return func(o *options) {
		o.unique = unique
	}
}

// WithGCThreshold sets how many retired nodes a session accumulates before
// it tries to free the ones no reader can still see. Default 256.
func WithGCThreshold(n int) Option {
	return func(o *options) {
		o.gcThreshold = n
	}
}

// WithEpochAdvanceInterval sets how many retirements advance the global
// epoch by one. Must be a power of two. Default 64.
func WithEpochAdvanceInterval(n int) Option {
	return func(o *options) {
		o.advanceInterval = n
	}
}

// WithMaxSessions bounds the number of idle sessions kept for one-shot
// calls on the Index. Default 4×GOMAXPROCS.
func WithMaxSessions(n int) Option {
	return func(o *options) {
		o.maxSessions = n
	}
}

// WithMemoryLimit caps the bytes held by leaves and their TIDs. Inserts
// beyond the limit fail with ErrMemoryLimitExceeded. 0 means unlimited.
//
// Inner nodes are pooled and reclaimed by epochs; they are not counted.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithLoadRate throttles BulkLoad to rowsPerSec entries per second so a
// rebuild does not starve foreground lookups. 0 means unlimited.
func WithLoadRate(rowsPerSec int64) Option {
	return func(o *options) {
		o.loadRate = rowsPerSec
	}
}

// WithLoadWorkers sets the number of concurrent BulkLoad workers.
// Default GOMAXPROCS.
func WithLoadWorkers(n int) Option {
	return func(o *options) {
		o.loadWorkers = n
	}
}

// WithScanBatch sets how many keys a range iterator collects per batch.
// Default DefaultScanBatch.
func WithScanBatch(n int) Option {
	return func(o *options) {
		o.scanBatch = n
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &artidx.BasicMetricsCollector{}
//	idx, _ := artidx.New(artidx.WithMetricsCollector(metrics))
//	// ... use idx ...
//	stats := metrics.GetStats()
//	fmt.Printf("Inserts: %d, Avg latency: %dns\n", stats.InsertCount, stats.InsertAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := artidx.NewJSONLogger(slog.LevelInfo)
//	idx, _ := artidx.New(artidx.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	procs := runtime.GOMAXPROCS(0)
	o := options{
		gcThreshold:      epoch.DefaultGCThreshold,
		advanceInterval:  epoch.DefaultAdvanceInterval,
		maxSessions:      4 * procs,
		loadWorkers:      procs,
		scanBatch:        DefaultScanBatch,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}

// epochParams converts the reclamation options to the tree's widths.
func (o *options) epochParams() (gcThreshold, advanceInterval uint64, err error) {
	gcThreshold, err = conv.IntToUint64(o.gcThreshold)
	if err != nil || gcThreshold == 0 {
		return 0, 0, fmt.Errorf("%w: gc threshold %d must be positive", ErrInvalidOption, o.gcThreshold)
	}
	advanceInterval, err = conv.IntToUint64(o.advanceInterval)
	if err != nil || bits.OnesCount64(advanceInterval) != 1 {
		return 0, 0, fmt.Errorf("%w: epoch advance interval %d must be a power of two", ErrInvalidOption, o.advanceInterval)
	}
	return gcThreshold, advanceInterval, nil
}

func (o *options) validate() error {
	if o.maxSessions < 0 {
		return fmt.Errorf("%w: max sessions %d is negative", ErrInvalidOption, o.maxSessions)
	}
	if o.memoryLimit < 0 {
		return fmt.Errorf("%w: memory limit %d is negative", ErrInvalidOption, o.memoryLimit)
	}
	if o.loadRate < 0 {
		return fmt.Errorf("%w: load rate %d is negative", ErrInvalidOption, o.loadRate)
	}
	if o.loadWorkers <= 0 {
		return fmt.Errorf("%w: load workers %d must be positive", ErrInvalidOption, o.loadWorkers)
	}
	if o.scanBatch <= 0 {
		return fmt.Errorf("%w: scan batch %d must be positive", ErrInvalidOption, o.scanBatch)
	}
	return nil
}
