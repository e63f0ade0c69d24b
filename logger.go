package nnsearch

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with search-specific context.
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

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithK adds a k (neighbor count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithMetric adds a metric name field to the logger.
func (l *Logger) WithMetric(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("metric", name),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogSearch logs a single query. knn queries carry their k.
func (l *Logger) LogSearch(ctx context.Context, kind QueryKind, k, results int, err error) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	if !l.Enabled(ctx, level) {
		return
	}

	lg := l
	if kind == QueryKNN {
		lg = l.WithK(k)
	}

	if err != nil {
		lg.ErrorContext(ctx, "search failed",
			"kind", kind,
			"error", err,
		)
		return
	}
	lg.DebugContext(ctx, "search completed",
		"kind", kind,
		"results", results,
	)
}

// LogBatch logs a batch of queries.
func (l *Logger) LogBatch(ctx context.Context, kind QueryKind, count, failed int, err error) {
	lg := l.WithCount(count)

	switch {
	case failed > 0:
		lg.WarnContext(ctx, "batch search completed with failures",
			"kind", kind,
			"failed", failed,
			"success", count-failed,
			"error", err,
		)
	case err != nil:
		lg.ErrorContext(ctx, "batch search failed",
			"kind", kind,
			"error", err,
		)
	default:
		lg.InfoContext(ctx, "batch search completed",
			"kind", kind,
		)
	}
}
