package neighbor

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/internal/searcher"
)

// Neighbor is a search result.
type Neighbor[T any] struct {
	// Key is the matched dataset element.
	Key T

	// Value is the matched dataset element; identical to Key.
	Value T

	// Index is the position of the element in the dataset, -1 for sentinels.
	Index int

	// Distance between the query and the element, +Inf for sentinels.
	Distance float64
}

// IsSentinel reports whether n is a placeholder rather than a real match.
// Nearest returns a sentinel when every element was excluded; KNN pads its
// result with sentinels when fewer than k elements were eligible.
func (n Neighbor[T]) IsSentinel() bool {
	return n.Index < 0
}

// Sentinel returns the placeholder neighbor: zero Key and Value, Index -1 and
// Distance +Inf.
func Sentinel[T any]() Neighbor[T] {
	return Neighbor[T]{Index: -1, Distance: math.Inf(1)}
}

// LinearSearch is a brute force nearest neighbor searcher.
type LinearSearch[T any] struct {
	data       []T
	dist       distance.Func[T]
	identity   IdentityFunc[T]
	metricName string

	identicalExcluded atomic.Bool
}

// New creates a searcher over data using dist. It keeps a reference to data,
// which must not be modified while the searcher is in use.
func New[T any](data []T, dist distance.Func[T], optFns ...Option) (*LinearSearch[T], error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if dist == nil {
		return nil, ErrNilDistance
	}
	if len(data) == 0 {
		return nil, ErrEmptyDataset
	}

	s := &LinearSearch[T]{
		data:       data,
		dist:       dist,
		metricName: opts.MetricName,
	}
	if opts.identity != nil {
		fn, ok := opts.identity.(IdentityFunc[T])
		if !ok {
			return nil, fmt.Errorf("%w: identity function type %T does not match element type", ErrInvalidArgument, opts.identity)
		}
		s.identity = fn
	}
	s.identicalExcluded.Store(opts.IdenticalExcluded)

	return s, nil
}

func (s *LinearSearch[T]) String() string {
	return fmt.Sprintf("Linear Search (%s)", s.metricName)
}

// MetricName returns the configured metric name.
func (s *LinearSearch[T]) MetricName() string { return s.metricName }

// Len returns the dataset size.
func (s *LinearSearch[T]) Len() int { return len(s.data) }

// At returns the dataset element at slot i.
func (s *LinearSearch[T]) At(i int) T { return s.data[i] }

// SetIdenticalExcluded sets whether the query itself is skipped.
// It affects subsequent queries only.
func (s *LinearSearch[T]) SetIdenticalExcluded(excluded bool) {
	s.identicalExcluded.Store(excluded)
}

// IsIdenticalExcluded reports whether the query itself is skipped.
func (s *LinearSearch[T]) IsIdenticalExcluded() bool {
	return s.identicalExcluded.Load()
}

// probe holds the per-query eligibility state.
type probe[T any] struct {
	query    T
	self     int
	exclude  bool
	identity IdentityFunc[T]
	filter   Filter
}

func (s *LinearSearch[T]) newProbe(q T, optFns []QueryOption) probe[T] {
	o := applyQueryOptions(optFns)
	return probe[T]{
		query:    q,
		self:     o.self,
		exclude:  s.identicalExcluded.Load(),
		identity: s.identity,
		filter:   o.filter,
	}
}

// skip reports whether slot i holding x must not be scored.
func (p *probe[T]) skip(i int, x T) bool {
	if p.filter != nil && (uint64(i) > math.MaxUint32 || !p.filter.Contains(uint32(i))) {
		return true
	}
	if !p.exclude {
		return false
	}
	if p.self != NoSelf {
		return i == p.self
	}
	return p.identity != nil && p.identity(p.query, x)
}

// Nearest returns the closest eligible element to q. The first element in
// dataset order wins ties. If no element is eligible the result is a
// sentinel (see Neighbor.IsSentinel).
func (s *LinearSearch[T]) Nearest(q T, optFns ...QueryOption) Neighbor[T] {
	p := s.newProbe(q, optFns)

	best := Sentinel[T]()
	for i, x := range s.data {
		if p.skip(i, x) {
			continue
		}
		if d := s.dist(q, x); d < best.Distance {
			best.Key = x
			best.Value = x
			best.Index = i
			best.Distance = d
		}
	}
	return best
}

// KNN returns the k closest eligible elements to q in ascending distance
// order. k must be in [1, Len()]. If fewer than k elements are eligible the
// tail of the result holds sentinels.
func (s *LinearSearch[T]) KNN(q T, k int, optFns ...QueryOption) ([]Neighbor[T], error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if k > len(s.data) {
		return nil, &KExceedsDatasetError{K: k, Size: len(s.data)}
	}

	p := s.newProbe(q, optFns)

	heap := searcher.NewSelector[T](k)
	for i, x := range s.data {
		if p.skip(i, x) {
			continue
		}
		heap.ReplaceWorstIfBetter(i, s.dist(q, x), x)
	}

	slots := heap.Sorted()
	neighbors := make([]Neighbor[T], len(slots))
	for j, slot := range slots {
		neighbors[j] = Neighbor[T]{
			Key:      slot.Value,
			Value:    slot.Value,
			Index:    slot.Index,
			Distance: slot.Distance,
		}
	}
	return neighbors, nil
}

// Range appends every eligible element within radius (inclusive) of q to
// out and returns the extended slice. Matches are appended in dataset order,
// not distance order. radius must be positive.
func (s *LinearSearch[T]) Range(q T, radius float64, out []Neighbor[T], optFns ...QueryOption) ([]Neighbor[T], error) {
	if !(radius > 0) {
		return out, ErrInvalidRadius
	}

	p := s.newProbe(q, optFns)

	for i, x := range s.data {
		if p.skip(i, x) {
			continue
		}
		if d := s.dist(q, x); d <= radius {
			out = append(out, Neighbor[T]{Key: x, Value: x, Index: i, Distance: d})
		}
	}
	return out, nil
}

// NearestTo runs Nearest for the dataset element at slot i, declaring it as
// the query's own slot.
func (s *LinearSearch[T]) NearestTo(i int, optFns ...QueryOption) (Neighbor[T], error) {
	if err := s.checkIndex(i); err != nil {
		return Sentinel[T](), err
	}
	return s.Nearest(s.data[i], withSelf(i, optFns)...), nil
}

// KNNTo runs KNN for the dataset element at slot i.
func (s *LinearSearch[T]) KNNTo(i, k int, optFns ...QueryOption) ([]Neighbor[T], error) {
	if err := s.checkIndex(i); err != nil {
		return nil, err
	}
	return s.KNN(s.data[i], k, withSelf(i, optFns)...)
}

// RangeTo runs Range for the dataset element at slot i.
func (s *LinearSearch[T]) RangeTo(i int, radius float64, out []Neighbor[T], optFns ...QueryOption) ([]Neighbor[T], error) {
	if err := s.checkIndex(i); err != nil {
		return out, err
	}
	return s.Range(s.data[i], radius, out, withSelf(i, optFns)...)
}

func (s *LinearSearch[T]) checkIndex(i int) error {
	if i < 0 || i >= len(s.data) {
		return &IndexOutOfRangeError{Index: i, Size: len(s.data)}
	}
	return nil
}

// withSelf appends WithSelf(i) last so that it overrides any slot the
// caller declared.
func withSelf(i int, optFns []QueryOption) []QueryOption {
	opts := make([]QueryOption, 0, len(optFns)+1)
	opts = append(opts, optFns...)
	return append(opts, WithSelf(i))
}
