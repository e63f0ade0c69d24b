package nnsearch

import (
	"log/slog"
	"runtime"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/nnsearch/neighbor"
	"github.com/hupe1980/nnsearch/resource"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	controller       *resource.Controller
	parallelism      int
	engineOpts       []neighbor.Option
}

// Option configures Searcher constructor behavior.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring queries.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &nnsearch.BasicMetricsCollector{}
//	s, _ := nnsearch.New(data, dist, nnsearch.WithMetricsCollector(metrics))
//	// ... use s ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.SearchCount(), stats.SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for queries.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
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

// WithResourceConfig admits queries through a new controller built from cfg.
func WithResourceConfig(cfg resource.Config) Option {
	return func(o *options) {
		o.controller = resource.NewController(cfg)
	}
}

// WithResourceController admits queries through rc, which may be shared
// between searchers.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithBatchParallelism sets how many queries of a batch run at once.
// Values below 1 select runtime.GOMAXPROCS(0).
func WithBatchParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithIdenticalExcluded sets the initial self-exclusion policy (default true).
func WithIdenticalExcluded(excluded bool) Option {
	return func(o *options) {
		o.engineOpts = append(o.engineOpts, neighbor.WithIdenticalExcluded(excluded))
	}
}

// WithMetricName names the distance function in String and logs.
func WithMetricName(name string) Option {
	return func(o *options) {
		o.engineOpts = append(o.engineOpts, neighbor.WithMetricName(name))
	}
}

// WithIdentityFunc configures reference identity for queries that do not
// declare their slot. The element type must match the searcher's.
func WithIdentityFunc[T any](fn neighbor.IdentityFunc[T]) Option {
	return func(o *options) {
		o.engineOpts = append(o.engineOpts, neighbor.WithIdentity(fn))
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.parallelism < 1 {
		o.parallelism = runtime.GOMAXPROCS(0)
	}
	return o
}

type searchOptions struct {
	self  int
	allow *roaring.Bitmap
}

// SearchOption configures a single query.
type SearchOption func(*searchOptions)

// Self declares that the query is the dataset element at slot i, so that
// exactly that slot is skipped while self exclusion is enabled.
func Self(i int) SearchOption {
	return func(o *searchOptions) {
		o.self = i
	}
}

// AllowList restricts the query to the slots set in bm.
// A nil bitmap admits every slot.
func AllowList(bm *roaring.Bitmap) SearchOption {
	return func(o *searchOptions) {
		o.allow = bm
	}
}

// applySearchOptions returns the engine query options and the declared self
// slot (neighbor.NoSelf if none).
func applySearchOptions(optFns []SearchOption) ([]neighbor.QueryOption, int) {
	o := searchOptions{self: neighbor.NoSelf}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	var qopts []neighbor.QueryOption
	if o.self != neighbor.NoSelf {
		qopts = append(qopts, neighbor.WithSelf(o.self))
	}
	if o.allow != nil {
		qopts = append(qopts, neighbor.WithFilter(o.allow))
	}
	return qopts, o.self
}
