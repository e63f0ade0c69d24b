package neighbor

// IdentityFunc reports whether a and b are the same object, not merely equal
// values. It is only consulted when a query does not declare its slot.
type IdentityFunc[T any] func(a, b T) bool

// SamePointer is an IdentityFunc for pointer datasets.
func SamePointer[E any](a, b *E) bool {
	return a == b
}

// Options contains configuration options for LinearSearch.
type Options struct {
	// IdenticalExcluded skips the query itself during scans. Defaults to true.
	IdenticalExcluded bool

	// MetricName is reported by String.
	MetricName string

	// identity holds an IdentityFunc[T]; checked against T in New.
	identity any
}

// DefaultOptions contains the default configuration options.
var DefaultOptions = Options{
	IdenticalExcluded: true,
	MetricName:        "custom",
}

// Option configures a LinearSearch.
type Option func(o *Options)

// WithIdenticalExcluded sets the initial self-exclusion policy.
func WithIdenticalExcluded(excluded bool) Option {
	return func(o *Options) {
		o.IdenticalExcluded = excluded
	}
}

// WithMetricName sets the metric name reported by String.
func WithMetricName(name string) Option {
	return func(o *Options) {
		o.MetricName = name
	}
}

// WithIdentity configures reference identity for queries that do not
// declare their slot. The element type must match the searcher's,
// otherwise New fails.
//
//	neighbor.New(items, dist, neighbor.WithIdentity(neighbor.SamePointer[Item]))
func WithIdentity[T any](fn IdentityFunc[T]) Option {
	return func(o *Options) {
		if fn == nil {
			o.identity = nil
			return
		}
		o.identity = fn
	}
}

// Filter restricts which dataset slots are eligible for a query.
// *roaring.Bitmap satisfies it.
type Filter interface {
	Contains(x uint32) bool
}

// FilterFunc adapts a predicate to Filter.
type FilterFunc func(x uint32) bool

// Contains implements Filter.
func (f FilterFunc) Contains(x uint32) bool { return f(x) }

// NoSelf marks a query that is not a declared member of the dataset.
const NoSelf = -1

type queryOptions struct {
	self   int
	filter Filter
}

// QueryOption configures a single query.
type QueryOption func(o *queryOptions)

// WithSelf declares that the query is the dataset element at slot i.
// With self exclusion enabled exactly that slot is skipped; other slots
// holding equal values stay eligible.
func WithSelf(i int) QueryOption {
	return func(o *queryOptions) {
		o.self = i
	}
}

// WithFilter restricts the scan to slots contained in f.
// A nil filter admits every slot.
func WithFilter(f Filter) QueryOption {
	return func(o *queryOptions) {
		o.filter = f
	}
}

func applyQueryOptions(optFns []QueryOption) queryOptions {
	o := queryOptions{self: NoSelf}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}
