// Package testutil provides testing utilities for nnsearch.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random datasets, computing exact
// nearest neighbors by sorting every distance, and comparing results.
//
// # Random Data Generation
//
//	rng := testutil.NewRNG(seed)
//	vecs := rng.UniformVectors(1000, 16)   // [][]float32 in [0, 1)
//	pts := rng.Float64Vectors(1000, 3)     // [][]float64 in [0, 1)
//	xs := rng.Grid(1000, 10)               // []float64 with many ties
//
// # Exact Search (Ground Truth)
//
//	want := testutil.ExactKNN(data, query, k, distance.Euclidean, testutil.NoExclude)
//
// # Recall Verification
//
//	recall := testutil.ComputeRecall(want, gotIndices)
package testutil
