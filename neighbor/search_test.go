package neighbor

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/testutil"
)

func indices[T any](ns []Neighbor[T]) []int {
	out := make([]int, len(ns))
	for i, n := range ns {
		out[i] = n.Index
	}
	return out
}

func distances[T any](ns []Neighbor[T]) []float64 {
	out := make([]float64, len(ns))
	for i, n := range ns {
		out[i] = n.Distance
	}
	return out
}

func newScalar(t *testing.T, data []float64, optFns ...Option) *LinearSearch[float64] {
	t.Helper()
	s, err := New(data, distance.Absolute, optFns...)
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		s := newScalar(t, []float64{1, 2})
		assert.True(t, s.IsIdenticalExcluded())
		assert.Equal(t, 2, s.Len())
		assert.Equal(t, 2.0, s.At(1))
		assert.Equal(t, "Linear Search (custom)", s.String())
	})

	t.Run("Options", func(t *testing.T) {
		s := newScalar(t, []float64{1}, WithIdenticalExcluded(false), WithMetricName("abs"))
		assert.False(t, s.IsIdenticalExcluded())
		assert.Equal(t, "Linear Search (abs)", s.String())
	})

	t.Run("NilDistance", func(t *testing.T) {
		_, err := New[float64]([]float64{1}, nil)
		assert.ErrorIs(t, err, ErrNilDistance)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("EmptyDataset", func(t *testing.T) {
		_, err := New(nil, distance.Absolute)
		assert.ErrorIs(t, err, ErrEmptyDataset)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("IdentityTypeMismatch", func(t *testing.T) {
		_, err := New([]float64{1}, distance.Absolute, WithIdentity(func(a, b string) bool { return a == b }))
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestScenarios(t *testing.T) {
	data := []float64{1.0, 5.0, 9.0, 2.0}

	t.Run("KNN", func(t *testing.T) {
		s := newScalar(t, data)

		got, err := s.KNN(0.0, 2)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 3}, indices(got))
		assert.Equal(t, []float64{1.0, 2.0}, distances(got))
		assert.Equal(t, 1.0, got[0].Key)
		assert.Equal(t, got[0].Key, got[0].Value)
	})

	t.Run("NearestExcludesSelf", func(t *testing.T) {
		s := newScalar(t, data)

		got := s.Nearest(data[3], WithSelf(3))
		assert.Equal(t, 0, got.Index)
		assert.Equal(t, 1.0, got.Distance)

		got, err := s.NearestTo(3)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Index)
	})

	t.Run("KExceedsDataset", func(t *testing.T) {
		s := newScalar(t, []float64{1, 2, 3})

		_, err := s.KNN(0, 4)
		require.ErrorIs(t, err, ErrInvalidArgument)

		var kerr *KExceedsDatasetError
		require.True(t, errors.As(err, &kerr))
		assert.Equal(t, 4, kerr.K)
		assert.Equal(t, 3, kerr.Size)
	})
}

func TestNearest(t *testing.T) {
	t.Run("FirstMinimumWins", func(t *testing.T) {
		s := newScalar(t, []float64{3, 1, -1, 1})

		got := s.Nearest(0)
		assert.Equal(t, 1, got.Index)
		assert.Equal(t, 1.0, got.Distance)
	})

	t.Run("AllExcludedReturnsSentinel", func(t *testing.T) {
		s := newScalar(t, []float64{4})

		got, err := s.NearestTo(0)
		require.NoError(t, err)
		assert.True(t, got.IsSentinel())
		assert.Equal(t, -1, got.Index)
		assert.Equal(t, 0.0, got.Key)
		assert.True(t, math.IsInf(got.Distance, 1))
	})

	t.Run("IncludedWhenNotExcluded", func(t *testing.T) {
		s := newScalar(t, []float64{4}, WithIdenticalExcluded(false))

		got, err := s.NearestTo(0)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Index)
		assert.Equal(t, 0.0, got.Distance)
	})

	t.Run("IndexOutOfRange", func(t *testing.T) {
		s := newScalar(t, []float64{4})

		_, err := s.NearestTo(1)
		var ierr *IndexOutOfRangeError
		require.True(t, errors.As(err, &ierr))
		assert.ErrorIs(t, err, ErrInvalidArgument)

		_, err = s.NearestTo(-1)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestKNN(t *testing.T) {
	t.Run("Validation", func(t *testing.T) {
		s := newScalar(t, []float64{1, 2, 3})

		for _, k := range []int{0, -1} {
			got, err := s.KNN(0, k)
			assert.ErrorIs(t, err, ErrInvalidK, "k=%d", k)
			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.Nil(t, got)
		}

		_, err := s.KNN(0, 4)
		assert.ErrorIs(t, err, ErrInvalidArgument)

		_, err = s.KNNTo(5, 1)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("SentinelPadding", func(t *testing.T) {
		s := newScalar(t, []float64{1, 2, 3})

		got, err := s.KNNTo(0, 3)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []int{1, 2, -1}, indices(got))
		assert.False(t, got[1].IsSentinel())
		assert.True(t, got[2].IsSentinel())
		assert.True(t, math.IsInf(got[2].Distance, 1))
	})

	t.Run("TiesKeepScanOrder", func(t *testing.T) {
		s := newScalar(t, []float64{2, -2, 2, -2, 1})

		got, err := s.KNN(0, 3)
		require.NoError(t, err)
		assert.Equal(t, []int{4, 0, 1}, indices(got))
	})

	t.Run("MatchesExhaustiveSort", func(t *testing.T) {
		rng := testutil.NewRNG(42)

		data := rng.Grid(300, 20)
		s := newScalar(t, data)

		for trial := 0; trial < 25; trial++ {
			q := float64(rng.Intn(25))
			k := 1 + rng.Intn(len(data))

			got, err := s.KNN(q, k)
			require.NoError(t, err)

			want := testutil.ExactKNN(data, q, k, distance.Absolute, testutil.NoExclude)
			assert.ElementsMatch(t, want, indices(got), "q=%v k=%d", q, k)
			assert.True(t, testutil.IsSortedAscending(distances(got)))
		}
	})

	t.Run("MatchesExhaustiveSortVectors", func(t *testing.T) {
		rng := testutil.NewRNG(7)

		data := rng.Float64Vectors(200, 8)
		s, err := New(data, distance.Euclidean)
		require.NoError(t, err)

		for i := 0; i < 20; i++ {
			got, err := s.KNNTo(i, 10)
			require.NoError(t, err)

			want := testutil.ExactKNN(data, data[i], 10, distance.Euclidean, i)
			assert.Equal(t, want, indices(got))
			assert.NotContains(t, indices(got), i)
		}
	})
}

func TestNearestMatchesKNN1(t *testing.T) {
	rng := testutil.NewRNG(11)

	data := rng.Float64Vectors(100, 4)
	s, err := New(data, distance.Manhattan)
	require.NoError(t, err)

	for i := range data {
		nn, err := s.NearestTo(i)
		require.NoError(t, err)

		top, err := s.KNNTo(i, 1)
		require.NoError(t, err)

		assert.Equal(t, top[0].Index, nn.Index)
		assert.Equal(t, top[0].Distance, nn.Distance)
	}
}

func TestRange(t *testing.T) {
	data := []float64{1.0, 5.0, 9.0, 2.0}

	t.Run("Validation", func(t *testing.T) {
		s := newScalar(t, data)

		for _, r := range []float64{0, -1, math.NaN()} {
			out, err := s.Range(0, r, nil)
			assert.ErrorIs(t, err, ErrInvalidRadius)
			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.Empty(t, out)
		}
	})

	t.Run("InclusiveDatasetOrder", func(t *testing.T) {
		s := newScalar(t, data)

		got, err := s.Range(0, 5, nil)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 3}, indices(got))
		assert.Equal(t, []float64{1, 5, 2}, distances(got))
	})

	t.Run("AppendsToOutput", func(t *testing.T) {
		s := newScalar(t, data)

		out := []Neighbor[float64]{{Index: 99}}
		out, err := s.Range(9, 0.5, out)
		require.NoError(t, err)
		assert.Equal(t, []int{99, 2}, indices(out))
	})

	t.Run("Empty", func(t *testing.T) {
		s := newScalar(t, data)

		got, err := s.Range(100, 1, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("MatchesExhaustiveScan", func(t *testing.T) {
		rng := testutil.NewRNG(3)

		pts := rng.Float64Vectors(250, 3)
		s, err := New(pts, distance.Euclidean)
		require.NoError(t, err)

		for i := 0; i < 20; i++ {
			got, err := s.RangeTo(i, 0.3, nil)
			require.NoError(t, err)
			assert.Equal(t, testutil.ExactRange(pts, pts[i], 0.3, distance.Euclidean, i), nilIfEmpty(indices(got)))
		}
	})
}

func nilIfEmpty(xs []int) []int {
	if len(xs) == 0 {
		return nil
	}
	return xs
}

func TestSelfExclusion(t *testing.T) {
	// Slots 1 and 2 hold equal values; only the declared slot is skipped.
	data := []float64{10, 3, 3, 7}

	t.Run("SlotIdentityNotEquality", func(t *testing.T) {
		s := newScalar(t, data)

		got, err := s.KNNTo(1, 2)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 3}, indices(got))
		assert.Equal(t, 0.0, got[0].Distance)

		hits, err := s.RangeTo(2, 1, nil)
		require.NoError(t, err)
		assert.Equal(t, []int{1}, indices(hits))
	})

	t.Run("ToHelperSlotOverridesOption", func(t *testing.T) {
		s := newScalar(t, data)

		got, err := s.NearestTo(1, WithSelf(2))
		require.NoError(t, err)
		assert.Equal(t, 2, got.Index)

		knn, err := s.KNNTo(2, 1, WithSelf(1))
		require.NoError(t, err)
		assert.Equal(t, []int{1}, indices(knn))

		hits, err := s.RangeTo(1, 1, nil, WithSelf(2))
		require.NoError(t, err)
		assert.Equal(t, []int{2}, indices(hits))
	})

	t.Run("UndeclaredQueryExcludesNothing", func(t *testing.T) {
		s := newScalar(t, data)

		got := s.Nearest(3)
		assert.Equal(t, 1, got.Index)
	})

	t.Run("Toggle", func(t *testing.T) {
		s := newScalar(t, data)

		s.SetIdenticalExcluded(false)
		assert.False(t, s.IsIdenticalExcluded())

		got, err := s.NearestTo(2)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Index) // slot 1 scans first at distance 0

		got, err = s.NearestTo(1)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Index)

		s.SetIdenticalExcluded(true)
		got, err = s.NearestTo(1)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Index)
	})

	t.Run("PointerIdentity", func(t *testing.T) {
		type item struct{ x float64 }
		items := []*item{{1}, {2}, {2}, {5}}
		dist := func(a, b *item) float64 { return math.Abs(a.x - b.x) }

		s, err := New(items, dist, WithIdentity(SamePointer[item]))
		require.NoError(t, err)

		got := s.Nearest(items[1])
		assert.Equal(t, 2, got.Index)

		top, err := s.KNN(items[2], 4)
		require.NoError(t, err)
		assert.NotContains(t, indices(top), 2)
		assert.Equal(t, []int{1, 0, 3, -1}, indices(top))

		// An equal value that is a different object is not excluded.
		got = s.Nearest(&item{2})
		assert.Equal(t, 1, got.Index)
		assert.Equal(t, 0.0, got.Distance)

		s.SetIdenticalExcluded(false)
		got = s.Nearest(items[2])
		assert.Equal(t, 1, got.Index)
	})
}

func TestFilter(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	even := FilterFunc(func(x uint32) bool { return x%2 == 0 })

	s := newScalar(t, data)

	got := s.Nearest(2, WithFilter(even))
	assert.Equal(t, 0, got.Index)

	top, err := s.KNN(0, 4, WithFilter(even))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4, -1}, indices(top))

	hits, err := s.Range(3, 10, nil, WithFilter(even))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4}, indices(hits))

	hits, err = s.RangeTo(2, 10, nil, WithFilter(even))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 4}, indices(hits))

	none := FilterFunc(func(uint32) bool { return false })
	assert.True(t, s.Nearest(0, WithFilter(none)).IsSentinel())
}

func TestConcurrentQueries(t *testing.T) {
	rng := testutil.NewRNG(99)

	data := rng.Float64Vectors(500, 6)
	s, err := New(data, distance.SquaredEuclidean)
	require.NoError(t, err)

	want := make([][]int, 32)
	for i := range want {
		want[i] = testutil.ExactKNN(data, data[i], 5, distance.SquaredEuclidean, i)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(want))
	got := make([][]int, len(want))
	for i := range want {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := s.KNNTo(i, 5)
			if err != nil {
				errs <- err
				return
			}
			got[i] = indices(res)
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, want, got)
}
