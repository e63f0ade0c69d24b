// Package distance defines the distance capability consumed by the search
// engine and a set of ready-made metrics.
//
// A distance is any function
//
//	func(a, b T) float64
//
// that is deterministic, side-effect free, symmetric, non-negative and zero
// only for identical logical values. The triangle inequality is not required.
//
// # Supported Metrics
//
//   - Absolute: |a - b| for scalars
//   - Euclidean, SquaredEuclidean, Manhattan, Chebyshev, Minkowski: []float64
//   - Euclidean32, SquaredEuclidean32, Cosine32, Manhattan32: []float32
//   - Hamming: differing bits between byte slices
//   - Levenshtein: edit distance between strings
//
// # Usage
//
//	d := distance.Euclidean([]float64{0, 0}, []float64{3, 4}) // 5
//	fn, _ := distance.Provider(distance.MetricCosine)
//	sim := 1 - fn(a, b)
package distance
