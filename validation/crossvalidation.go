// Package validation partitions sample indices for k-fold cross-validation.
package validation

import (
	"errors"
	"fmt"
	"iter"
	"math/rand"
	"time"
)

var (
	// ErrInvalidSampleSize is returned for a negative sample count.
	ErrInvalidSampleSize = errors.New("validation: invalid sample size")

	// ErrInvalidRounds is returned when the fold count is outside [1, n].
	ErrInvalidRounds = errors.New("validation: invalid number of cv rounds")
)

// Options configures NewCrossValidation.
type Options struct {
	// Rand shuffles the sample indices. Defaults to a time-seeded source.
	Rand *rand.Rand
}

// WithSeed shuffles with a deterministic source seeded by seed.
func WithSeed(seed int64) func(o *Options) {
	return func(o *Options) {
		o.Rand = rand.New(rand.NewSource(seed)) // nolint gosec
	}
}

// WithRand shuffles with r. r is not safe for concurrent use and must not be
// shared with other goroutines during construction.
func WithRand(r *rand.Rand) func(o *Options) {
	return func(o *Options) {
		o.Rand = r
	}
}

// CrossValidation holds k train/test partitions of the indices 0..n-1.
// Test sets are disjoint and together cover every index exactly once; each
// train set is the complement of its test set.
type CrossValidation struct {
	// K is the number of folds.
	K int

	// Train holds the training indices of each fold.
	Train [][]int

	// Test holds the testing indices of each fold.
	Test [][]int
}

// NewCrossValidation shuffles 0..n-1 and cuts the permutation into k
// consecutive chunks of n/k indices. The last fold also takes the remainder.
func NewCrossValidation(n, k int, optFns ...func(o *Options)) (*CrossValidation, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleSize, n)
	}
	if k < 1 || k > n {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRounds, k)
	}

	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano())) // nolint gosec
	}

	perm := opts.Rand.Perm(n)

	cv := &CrossValidation{
		K:     k,
		Train: make([][]int, k),
		Test:  make([][]int, k),
	}

	chunk := n / k
	for i := range k {
		start := chunk * i
		end := chunk * (i + 1)
		if i == k-1 {
			end = n
		}

		test := make([]int, end-start)
		copy(test, perm[start:end])

		train := make([]int, 0, n-(end-start))
		train = append(train, perm[:start]...)
		train = append(train, perm[end:]...)

		cv.Test[i] = test
		cv.Train[i] = train
	}

	return cv, nil
}

// Folds yields the train and test indices of every fold in order.
func (cv *CrossValidation) Folds() iter.Seq2[[]int, []int] {
	return func(yield func([]int, []int) bool) {
		for i := range cv.K {
			if !yield(cv.Train[i], cv.Test[i]) {
				return
			}
		}
	}
}

// Select returns the elements of data at idx, in idx order.
func Select[T any](data []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = data[j]
	}
	return out
}
