package nnsearch

import (
	"sync/atomic"
	"time"
)

// QueryKind names a query type in logs and metrics.
type QueryKind string

const (
	QueryNearest QueryKind = "nearest"
	QueryKNN     QueryKind = "knn"
	QueryRange   QueryKind = "range"
)

func (k QueryKind) String() string { return string(k) }

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; package
// metrics provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordSearch is called after each query.
	// k is the number of neighbors requested (1 for nearest, 0 for range),
	// results is the number of real (non-sentinel) neighbors returned,
	// err is nil if successful.
	RecordSearch(kind QueryKind, k, results int, duration time.Duration, err error)

	// RecordBatch is called after each batch.
	// count is the number of queries attempted, failed is the number that failed,
	// duration is the total time taken.
	RecordBatch(kind QueryKind, count, failed int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSearch(QueryKind, int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordBatch(QueryKind, int, int, time.Duration)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	NearestCount     atomic.Int64
	KNNCount         atomic.Int64
	RangeCount       atomic.Int64
	SearchErrors     atomic.Int64
	SearchTotalNanos atomic.Int64
	ResultsTotal     atomic.Int64
	BatchCount       atomic.Int64
	BatchItems       atomic.Int64
	BatchFailed      atomic.Int64
	BatchTotalNanos  atomic.Int64
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(kind QueryKind, k, results int, duration time.Duration, err error) {
	switch kind {
	case QueryNearest:
		b.NearestCount.Add(1)
	case QueryKNN:
		b.KNNCount.Add(1)
	case QueryRange:
		b.RangeCount.Add(1)
	}
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	b.ResultsTotal.Add(int64(results))
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(kind QueryKind, count, failed int, duration time.Duration) {
	b.BatchCount.Add(1)
	b.BatchItems.Add(int64(count))
	b.BatchFailed.Add(int64(failed))
	b.BatchTotalNanos.Add(duration.Nanoseconds())
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		NearestCount:   b.NearestCount.Load(),
		KNNCount:       b.KNNCount.Load(),
		RangeCount:     b.RangeCount.Load(),
		SearchErrors:   b.SearchErrors.Load(),
		SearchAvgNanos: b.getAvgSearchNanos(),
		ResultsTotal:   b.ResultsTotal.Load(),
		BatchCount:     b.BatchCount.Load(),
		BatchItems:     b.BatchItems.Load(),
		BatchFailed:    b.BatchFailed.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.NearestCount.Load() + b.KNNCount.Load() + b.RangeCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	NearestCount   int64
	KNNCount       int64
	RangeCount     int64
	SearchErrors   int64
	SearchAvgNanos int64
	ResultsTotal   int64
	BatchCount     int64
	BatchItems     int64
	BatchFailed    int64
}

// SearchCount returns the number of queries of every kind.
func (s BasicMetricsStats) SearchCount() int64 {
	return s.NearestCount + s.KNNCount + s.RangeCount
}
