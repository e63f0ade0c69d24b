package testutil

import (
	"math"
	"math/rand"
	"sort"
	"sync"
)

// NoExclude disables slot exclusion in ExactKNN and ExactRange.
const NoExclude = -1

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float64 in a loop).
func (r *RNG) FillUniform(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float32()
	}
}

// UniformVectors generates random float32 vectors with values in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float32()
		}
		vectors[i] = vec
	}

	return vectors
}

// Float64Vectors generates random float64 vectors with values in range [0, 1).
func (r *RNG) Float64Vectors(num int, dimensions int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dimensions)
	vectors := make([][]float64, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float64()
		}
		vectors[i] = vec
	}

	return vectors
}

// Grid generates num scalars drawn from {0, 1, ..., levels-1}.
// The coarse grid produces many equal distances, which exercises tie handling.
func (r *RNG) Grid(num, levels int) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	xs := make([]float64, num)
	for i := range xs {
		xs[i] = float64(r.rand.Intn(levels))
	}
	return xs
}

// ExactKNN returns the indices of the k smallest distances from query to
// data, computed by sorting every distance. Equal distances keep dataset
// order. Slot exclude is skipped unless it is NoExclude.
func ExactKNN[T any](data []T, query T, k int, dist func(a, b T) float64, exclude int) []int {
	idx := make([]int, 0, len(data))
	dists := make([]float64, len(data))
	for i := range data {
		if i == exclude {
			continue
		}
		dists[i] = dist(query, data[i])
		idx = append(idx, i)
	}

	sort.SliceStable(idx, func(a, b int) bool { return dists[idx[a]] < dists[idx[b]] })

	if k > len(idx) {
		k = len(idx)
	}
	return idx[:k]
}

// ExactRange returns, in dataset order, the indices within radius of query.
func ExactRange[T any](data []T, query T, radius float64, dist func(a, b T) float64, exclude int) []int {
	var idx []int
	for i := range data {
		if i == exclude {
			continue
		}
		if dist(query, data[i]) <= radius {
			idx = append(idx, i)
		}
	}
	return idx
}

// ComputeRecall computes recall@k by comparing result indices against ground truth.
func ComputeRecall(groundTruth, results []int) float64 {
	if len(groundTruth) == 0 || len(results) == 0 {
		if len(groundTruth) == 0 && len(results) == 0 {
			return 1.0
		}
		return 0.0
	}

	k := min(len(results), len(groundTruth))

	truthSet := make(map[int]struct{}, k)
	for i := range k {
		truthSet[groundTruth[i]] = struct{}{}
	}

	hits := 0
	for _, r := range results {
		if _, ok := truthSet[r]; ok {
			hits++
		}
	}

	return float64(hits) / float64(k)
}

// IsSortedAscending reports whether dists never decreases. +Inf is allowed.
func IsSortedAscending(dists []float64) bool {
	for i := 1; i < len(dists); i++ {
		if dists[i] < dists[i-1] || math.IsNaN(dists[i]) {
			return false
		}
	}
	return true
}
