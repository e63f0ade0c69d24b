// Package nnsearch provides exact brute-force nearest neighbor search for Go.
//
// A Searcher scans the whole dataset for every query under a caller-supplied
// distance function. There is no index to build or maintain, so any element
// type and any metric can be searched, and results are always exact.
//
// # Quick Start
//
//	ctx := context.Background()
//	vectors := [][]float32{{0, 0}, {1, 1}, {5, 5}}
//
//	s, _ := nnsearch.New(vectors, distance.Euclidean32,
//	    nnsearch.WithMetricName("l2"),
//	    nnsearch.WithLogLevel(slog.LevelInfo),
//	)
//
//	nn, _ := s.Nearest(ctx, []float32{0.9, 0.9})
//	top, _ := s.KNN(ctx, []float32{0, 0}, 2)
//	hits, _ := s.Range(ctx, []float32{0, 0}, 1.5)
//
// # Query Types
//
//   - Nearest: the single closest element, or a sentinel if nothing is eligible.
//   - KNN: the k closest elements in ascending distance order, padded with
//     sentinels when fewer than k elements are eligible.
//   - Range: every element within an inclusive radius, in dataset order.
//
// # Self Exclusion
//
// When a query is itself a dataset member it is skipped by default. Declare
// the query's slot with Self(i) (or use KNNTo, NearestTo, RangeTo). For pointer
// datasets, WithIdentityFunc(neighbor.SamePointer[E]) excludes by reference.
// Elements that merely compare equal are never excluded.
//
// # Operations
//
// Queries are admitted through an optional resource.Controller (concurrency
// and rate limits), logged through Logger and recorded by a MetricsCollector.
// Batch methods fan queries out over a bounded worker group.
//
// The search core lives in package neighbor and can be used directly when none
// of this is needed.
package nnsearch
