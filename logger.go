package artidx

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with index-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithSession adds a session field to the logger.
func (l *Logger) WithSession(id uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("session", id),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogInsert logs an insert operation.
func (l *Logger) LogInsert(ctx context.Context, key []byte, tid TID, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert failed",
			"key", key,
			"tid", tid,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "insert completed",
			"key", key,
			"tid", tid,
		)
	}
}

// LogRemove logs a remove operation.
func (l *Logger) LogRemove(ctx context.Context, key []byte, removed int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "remove failed",
			"key", key,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "remove completed",
			"key", key,
			"removed", removed,
		)
	}
}

// LogRange logs a finished range iteration.
func (l *Logger) LogRange(ctx context.Context, span Span, entries int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "range failed",
			"start", span.Start,
			"end", span.End,
			"entries", entries,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "range completed",
			"start", span.Start,
			"end", span.End,
			"entries", entries,
		)
	}
}

// LogBulkLoad logs a bulk load.
func (l *Logger) LogBulkLoad(ctx context.Context, count, failed int, duration time.Duration, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "bulk load aborted",
			"total", count,
			"failed", failed,
			"duration", duration,
			"error", err,
		)
	case failed > 0:
		l.WarnContext(ctx, "bulk load completed with failures",
			"total", count,
			"failed", failed,
			"success", count-failed,
			"duration", duration,
		)
	default:
		l.InfoContext(ctx, "bulk load completed",
			"count", count,
			"duration", duration,
		)
	}
}

// LogReclaim logs a reclamation batch.
func (l *Logger) LogReclaim(ctx context.Context, nodes int, retiredAt, oldest uint64) {
	l.DebugContext(ctx, "nodes reclaimed",
		"nodes", nodes,
		"retired_at", retiredAt,
		"oldest_epoch", oldest,
	)
}

// LogClose logs the teardown of an index.
func (l *Logger) LogClose(ctx context.Context, keys, values int64) {
	l.InfoContext(ctx, "index closed",
		"keys", keys,
		"values", values,
	)
}
