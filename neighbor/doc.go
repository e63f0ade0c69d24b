// Package neighbor implements exhaustive nearest neighbor search over an
// arbitrary dataset under a pluggable distance.
//
// LinearSearch computes the distance from the query to every element of the
// dataset. There is no index to build or maintain, so construction is O(1)
// and the only extra memory is per query: O(k) for KNN, O(result) for Range.
// Although simple, an exhaustive scan is exact and often beats space
// partitioning structures on high-dimensional data.
//
// # Queries
//
//	s, _ := neighbor.New(points, distance.Euclidean)
//	nn := s.Nearest(q)                // single best, sentinel if nothing eligible
//	top, _ := s.KNN(q, 10)            // ascending by distance
//	hits, _ := s.Range(q, 0.5, nil)   // dataset order, inclusive radius
//
// # Self Exclusion
//
// By default an element that is the query itself is skipped, so querying
// with a member of the dataset does not return that member. Identity is never
// value equality: declare the slot with WithSelf (or use NearestTo, KNNTo,
// RangeTo), or configure a reference identity with WithIdentity.
//
// # Concurrency
//
// Queries never mutate the searcher and may run concurrently. The
// identical-excluded flag is atomic and read once per query.
package neighbor
