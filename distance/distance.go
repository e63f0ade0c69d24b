package distance

import (
	"fmt"
	"math"
	"math/bits"
	"strings"
	"unicode/utf8"

	"github.com/viant/vec/search"
)

// Func computes the distance between two elements of type T.
type Func[T any] func(a, b T) float64

// Absolute returns |a - b|.
func Absolute(a, b float64) float64 {
	return math.Abs(a - b)
}

// SquaredEuclidean calculates the squared L2 distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredEuclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Euclidean calculates the L2 distance between two vectors.
func Euclidean(a, b []float64) float64 {
	return math.Sqrt(SquaredEuclidean(a, b))
}

// Manhattan calculates the L1 distance between two vectors.
func Manhattan(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}

// Chebyshev calculates the L-infinity distance between two vectors.
func Chebyshev(a, b []float64) float64 {
	var maxDiff float64
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff
}

// Minkowski returns the Lp distance for the given order p.
// p must be >= 1, otherwise the result is not a distance.
func Minkowski(p float64) (Func[[]float64], error) {
	if p < 1 || math.IsNaN(p) {
		return nil, fmt.Errorf("invalid minkowski order: %v", p)
	}
	switch p {
	case 1:
		return Manhattan, nil
	case 2:
		return Euclidean, nil
	}
	if math.IsInf(p, 1) {
		return Chebyshev, nil
	}
	return func(a, b []float64) float64 {
		var sum float64
		for i := range a {
			sum += math.Pow(math.Abs(a[i]-b[i]), p)
		}
		return math.Pow(sum, 1/p)
	}, nil
}

// Euclidean32 calculates the L2 distance between two float32 vectors.
func Euclidean32(a, b []float32) float64 {
	return float64(search.Float32s(a).EuclideanDistance(b))
}

// SquaredEuclidean32 calculates the squared L2 distance between two float32 vectors.
// Accumulates in float64 to keep ordering stable for large dimensions.
func SquaredEuclidean32(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// Manhattan32 calculates the L1 distance between two float32 vectors.
func Manhattan32(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(float64(a[i]) - float64(b[i]))
	}
	return sum
}

// Cosine32 returns the cosine distance (1 - cosine similarity) clamped to [0, 2].
// Two zero vectors are at distance 0; a zero vector is at distance 1 from
// any non-zero vector.
func Cosine32(a, b []float32) float64 {
	va := search.Float32s(a)
	ma := va.Magnitude()
	mb := search.Float32s(b).Magnitude()
	if ma == 0 || mb == 0 {
		if ma == mb {
			return 0
		}
		return 1
	}
	d := float64(va.CosineDistance(b))
	switch {
	case d < 0 || math.IsNaN(d):
		return 0
	case d > 2:
		return 2
	}
	return d
}

// Hamming calculates the number of differing bits between two byte slices.
// Assumes slices are the same length.
func Hamming(a, b []byte) float64 {
	var n int
	for i := range a {
		n += bits.OnesCount8(a[i] ^ b[i])
	}
	return float64(n)
}

// Levenshtein returns the edit distance between two strings, counted in runes.
func Levenshtein(a, b string) float64 {
	if a == b {
		return 0
	}
	if utf8.RuneCountInString(a) < utf8.RuneCountInString(b) {
		a, b = b, a
	}
	rb := []rune(b)
	if len(rb) == 0 {
		return float64(utf8.RuneCountInString(a))
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	i := 0
	for _, ra := range a {
		i++
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return float64(prev[len(rb)])
}

// Metric names a built-in distance over float32 vectors.
type Metric int

const (
	MetricL2 Metric = iota
	MetricSquaredL2
	MetricCosine
	MetricManhattan
)

func (m Metric) String() string {
	switch m {
	case MetricL2:
		return "L2"
	case MetricSquaredL2:
		return "SquaredL2"
	case MetricCosine:
		return "Cosine"
	case MetricManhattan:
		return "Manhattan"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// ParseMetric resolves a metric from its name (case-insensitive).
// Accepted aliases: l2/euclidean, sql2/squaredl2, cosine, l1/manhattan.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "l2", "euclidean":
		return MetricL2, nil
	case "sql2", "squaredl2", "squared_l2":
		return MetricSquaredL2, nil
	case "cosine":
		return MetricCosine, nil
	case "l1", "manhattan":
		return MetricManhattan, nil
	default:
		return 0, fmt.Errorf("unknown metric: %q", name)
	}
}

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func[[]float32], error) {
	switch m {
	case MetricL2:
		return Euclidean32, nil
	case MetricSquaredL2:
		return SquaredEuclidean32, nil
	case MetricCosine:
		return Cosine32, nil
	case MetricManhattan:
		return Manhattan32, nil
	default:
		return nil, fmt.Errorf("unsupported metric for float32: %v", m)
	}
}
