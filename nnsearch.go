package nnsearch

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/neighbor"
	"github.com/hupe1980/nnsearch/resource"
)

// Searcher runs exact nearest neighbor queries over a fixed dataset.
// It is safe for concurrent use.
type Searcher[T any] struct {
	engine      *neighbor.LinearSearch[T]
	logger      *Logger
	metrics     MetricsCollector
	rc          *resource.Controller
	parallelism int
}

// New creates a Searcher over data using dist. data is referenced, not
// copied, and must not be modified while the Searcher is in use.
func New[T any](data []T, dist distance.Func[T], optFns ...Option) (*Searcher[T], error) {
	o := applyOptions(optFns)

	engine, err := neighbor.New(data, dist, o.engineOpts...)
	if err != nil {
		return nil, translateError(err)
	}

	return &Searcher[T]{
		engine:      engine,
		logger:      o.logger.WithMetric(engine.MetricName()),
		metrics:     o.metricsCollector,
		rc:          o.controller,
		parallelism: o.parallelism,
	}, nil
}

func (s *Searcher[T]) String() string { return s.engine.String() }

// Len returns the dataset size.
func (s *Searcher[T]) Len() int { return s.engine.Len() }

// Engine returns the underlying search engine.
func (s *Searcher[T]) Engine() *neighbor.LinearSearch[T] { return s.engine }

// SetIdenticalExcluded sets whether a query skips itself.
func (s *Searcher[T]) SetIdenticalExcluded(excluded bool) {
	s.engine.SetIdenticalExcluded(excluded)
}

// IsIdenticalExcluded reports whether a query skips itself.
func (s *Searcher[T]) IsIdenticalExcluded() bool {
	return s.engine.IsIdenticalExcluded()
}

// Nearest returns the closest eligible element to q, or a sentinel if every
// element was excluded.
func (s *Searcher[T]) Nearest(ctx context.Context, q T, optFns ...SearchOption) (neighbor.Neighbor[T], error) {
	return s.nearest(ctx, optFns, func(qopts []neighbor.QueryOption) (neighbor.Neighbor[T], error) {
		return s.engine.Nearest(q, qopts...), nil
	})
}

// NearestTo returns the closest element to the dataset element at slot i.
func (s *Searcher[T]) NearestTo(ctx context.Context, i int, optFns ...SearchOption) (neighbor.Neighbor[T], error) {
	return s.nearest(ctx, optFns, func(qopts []neighbor.QueryOption) (neighbor.Neighbor[T], error) {
		return s.engine.NearestTo(i, qopts...)
	})
}

// KNN returns the k closest eligible elements to q in ascending distance order.
func (s *Searcher[T]) KNN(ctx context.Context, q T, k int, optFns ...SearchOption) ([]neighbor.Neighbor[T], error) {
	return s.knn(ctx, k, optFns, func(qopts []neighbor.QueryOption) ([]neighbor.Neighbor[T], error) {
		return s.engine.KNN(q, k, qopts...)
	})
}

// KNNTo returns the k closest elements to the dataset element at slot i.
func (s *Searcher[T]) KNNTo(ctx context.Context, i, k int, optFns ...SearchOption) ([]neighbor.Neighbor[T], error) {
	return s.knn(ctx, k, optFns, func(qopts []neighbor.QueryOption) ([]neighbor.Neighbor[T], error) {
		return s.engine.KNNTo(i, k, qopts...)
	})
}

// Range returns every eligible element within radius of q, in dataset order.
func (s *Searcher[T]) Range(ctx context.Context, q T, radius float64, optFns ...SearchOption) ([]neighbor.Neighbor[T], error) {
	return s.rangeQuery(ctx, optFns, func(qopts []neighbor.QueryOption) ([]neighbor.Neighbor[T], error) {
		return s.engine.Range(q, radius, nil, qopts...)
	})
}

// RangeTo returns every element within radius of the dataset element at slot i.
func (s *Searcher[T]) RangeTo(ctx context.Context, i int, radius float64, optFns ...SearchOption) ([]neighbor.Neighbor[T], error) {
	return s.rangeQuery(ctx, optFns, func(qopts []neighbor.QueryOption) ([]neighbor.Neighbor[T], error) {
		return s.engine.RangeTo(i, radius, nil, qopts...)
	})
}

// RangeBitmap returns the slots of every eligible element within radius of q.
func (s *Searcher[T]) RangeBitmap(ctx context.Context, q T, radius float64, optFns ...SearchOption) (*roaring.Bitmap, error) {
	if uint64(s.engine.Len()) > math.MaxUint32 {
		return nil, ErrDatasetTooLarge
	}

	hits, err := s.Range(ctx, q, radius, optFns...)
	if err != nil {
		return nil, err
	}

	bm := roaring.New()
	for _, h := range hits {
		bm.Add(uint32(h.Index))
	}
	return bm, nil
}

func (s *Searcher[T]) nearest(ctx context.Context, optFns []SearchOption, run func([]neighbor.QueryOption) (neighbor.Neighbor[T], error)) (nn neighbor.Neighbor[T], err error) {
	start := time.Now()
	defer func() {
		found := 0
		if !nn.IsSentinel() {
			found = 1
		}
		s.observe(ctx, QueryNearest, 1, found, start, err)
	}()

	qopts, err := s.admit(ctx, optFns)
	if err != nil {
		return neighbor.Sentinel[T](), err
	}
	defer s.rc.ReleaseQuery()

	nn, err = run(qopts)
	return nn, translateError(err)
}

func (s *Searcher[T]) knn(ctx context.Context, k int, optFns []SearchOption, run func([]neighbor.QueryOption) ([]neighbor.Neighbor[T], error)) (res []neighbor.Neighbor[T], err error) {
	start := time.Now()
	defer func() {
		s.observe(ctx, QueryKNN, k, countFound(res), start, err)
	}()

	qopts, err := s.admit(ctx, optFns)
	if err != nil {
		return nil, err
	}
	defer s.rc.ReleaseQuery()

	res, err = run(qopts)
	return res, translateError(err)
}

func (s *Searcher[T]) rangeQuery(ctx context.Context, optFns []SearchOption, run func([]neighbor.QueryOption) ([]neighbor.Neighbor[T], error)) (res []neighbor.Neighbor[T], err error) {
	start := time.Now()
	defer func() {
		s.observe(ctx, QueryRange, 0, len(res), start, err)
	}()

	qopts, err := s.admit(ctx, optFns)
	if err != nil {
		return nil, err
	}
	defer s.rc.ReleaseQuery()

	res, err = run(qopts)
	return res, translateError(err)
}

// admit validates the query options and takes an admission slot. On success
// the caller must release the slot.
func (s *Searcher[T]) admit(ctx context.Context, optFns []SearchOption) ([]neighbor.QueryOption, error) {
	qopts, self := applySearchOptions(optFns)
	if self != neighbor.NoSelf && (self < 0 || self >= s.engine.Len()) {
		return nil, translateError(&neighbor.IndexOutOfRangeError{Index: self, Size: s.engine.Len()})
	}

	if err := s.rc.AcquireQuery(ctx); err != nil {
		return nil, err
	}
	return qopts, nil
}

func (s *Searcher[T]) observe(ctx context.Context, kind QueryKind, k, results int, start time.Time, err error) {
	s.logger.LogSearch(ctx, kind, k, results, err)
	s.metrics.RecordSearch(kind, k, results, time.Since(start), err)
}

func countFound[T any](ns []neighbor.Neighbor[T]) int {
	found := 0
	for _, n := range ns {
		if !n.IsSentinel() {
			found++
		}
	}
	return found
}

// BatchNearest runs Nearest for every query. Results are in input order.
// The first failure cancels the remaining queries and is returned.
func (s *Searcher[T]) BatchNearest(ctx context.Context, qs []T, optFns ...SearchOption) ([]neighbor.Neighbor[T], error) {
	return runBatch(ctx, s, QueryNearest, len(qs), func(ctx context.Context, i int) (neighbor.Neighbor[T], error) {
		return s.Nearest(ctx, qs[i], optFns...)
	})
}

// BatchNearestTo runs NearestTo for every slot in indices.
func (s *Searcher[T]) BatchNearestTo(ctx context.Context, indices []int, optFns ...SearchOption) ([]neighbor.Neighbor[T], error) {
	return runBatch(ctx, s, QueryNearest, len(indices), func(ctx context.Context, i int) (neighbor.Neighbor[T], error) {
		return s.NearestTo(ctx, indices[i], optFns...)
	})
}

// BatchKNN runs KNN for every query. Results are in input order.
// The first failure cancels the remaining queries and is returned.
func (s *Searcher[T]) BatchKNN(ctx context.Context, qs []T, k int, optFns ...SearchOption) ([][]neighbor.Neighbor[T], error) {
	return runBatch(ctx, s, QueryKNN, len(qs), func(ctx context.Context, i int) ([]neighbor.Neighbor[T], error) {
		return s.KNN(ctx, qs[i], k, optFns...)
	})
}

// BatchKNNTo runs KNNTo for every slot in indices.
func (s *Searcher[T]) BatchKNNTo(ctx context.Context, indices []int, k int, optFns ...SearchOption) ([][]neighbor.Neighbor[T], error) {
	return runBatch(ctx, s, QueryKNN, len(indices), func(ctx context.Context, i int) ([]neighbor.Neighbor[T], error) {
		return s.KNNTo(ctx, indices[i], k, optFns...)
	})
}

// BatchRange runs Range for every query. Results are in input order.
func (s *Searcher[T]) BatchRange(ctx context.Context, qs []T, radius float64, optFns ...SearchOption) ([][]neighbor.Neighbor[T], error) {
	return runBatch(ctx, s, QueryRange, len(qs), func(ctx context.Context, i int) ([]neighbor.Neighbor[T], error) {
		return s.Range(ctx, qs[i], radius, optFns...)
	})
}

// BatchRangeTo runs RangeTo for every slot in indices.
func (s *Searcher[T]) BatchRangeTo(ctx context.Context, indices []int, radius float64, optFns ...SearchOption) ([][]neighbor.Neighbor[T], error) {
	return runBatch(ctx, s, QueryRange, len(indices), func(ctx context.Context, i int) ([]neighbor.Neighbor[T], error) {
		return s.RangeTo(ctx, indices[i], radius, optFns...)
	})
}

func runBatch[T, R any](ctx context.Context, s *Searcher[T], kind QueryKind, n int, query func(ctx context.Context, i int) (R, error)) ([]R, error) {
	start := time.Now()
	results := make([]R, n)

	var succeeded atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	launched := 0
	for i := range n {
		if gctx.Err() != nil {
			break
		}
		launched++
		g.Go(func() error {
			r, err := query(gctx, i)
			if err != nil {
				return fmt.Errorf("query %d: %w", i, err)
			}
			results[i] = r
			succeeded.Add(1)
			return nil
		})
	}

	err := g.Wait()
	if err == nil && launched < n {
		// Canceled before every query was started.
		err = ctx.Err()
	}

	failed := n - int(succeeded.Load())
	s.logger.LogBatch(ctx, kind, n, failed, err)
	s.metrics.RecordBatch(kind, n, failed, time.Since(start))

	if err != nil {
		return nil, err
	}
	return results, nil
}
