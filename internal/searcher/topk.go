package searcher

import "math"

// Slot is a retained candidate of a Selector.
type Slot[V any] struct {
	Index    int     // Position of the candidate in the scanned dataset, -1 for sentinels.
	Distance float64 // Distance to the query, +Inf for sentinels.
	Value    V       // Payload carried alongside the candidate.
}

// IsSentinel reports whether the slot has never been filled by a candidate.
func (s Slot[V]) IsSentinel() bool {
	return s.Index < 0
}

// worse reports whether a should sit above b in the max-heap.
// Ties on distance are broken by index so extraction order is deterministic.
func worse[V any](a, b *Slot[V]) bool {
	if a.Distance != b.Distance {
		return a.Distance > b.Distance
	}
	return a.Index > b.Index
}

// Selector retains the k smallest-distance candidates seen so far.
// It does NOT implement container/heap to avoid interface overhead.
type Selector[V any] struct {
	slots []Slot[V]
}

// NewSelector creates a selector with capacity k, pre-filled with sentinels.
// It panics if k < 1.
func NewSelector[V any](k int) *Selector[V] {
	if k < 1 {
		panic("searcher: selector capacity must be positive")
	}
	s := &Selector[V]{slots: make([]Slot[V], k)}
	s.Reset()
	return s
}

// Reset refills every slot with a sentinel so the selector can be reused.
func (s *Selector[V]) Reset() {
	var zero V
	for i := range s.slots {
		s.slots[i] = Slot[V]{Index: -1, Distance: math.Inf(1), Value: zero}
	}
}

// Len returns the capacity k. Every slot is always occupied.
func (s *Selector[V]) Len() int {
	return len(s.slots)
}

// Worst returns the root, the largest-distance retained entry.
// It is the only entry eligible for replacement.
func (s *Selector[V]) Worst() Slot[V] {
	return s.slots[0]
}

// ReplaceWorstIfBetter overwrites the root with the candidate when dist is
// strictly smaller than the root distance and restores the heap invariant.
// Equal or NaN distances never replace, so earlier candidates win ties.
func (s *Selector[V]) ReplaceWorstIfBetter(index int, dist float64, value V) bool {
	root := &s.slots[0]
	if !(dist < root.Distance) {
		return false
	}
	root.Index = index
	root.Distance = dist
	root.Value = value
	s.siftDown(0, len(s.slots))
	return true
}

// Sorted sorts the slots in place in ascending distance order and returns
// them. The returned slice aliases the selector storage; the heap invariant
// no longer holds afterwards, so call Reset before feeding new candidates.
func (s *Selector[V]) Sorted() []Slot[V] {
	for end := len(s.slots) - 1; end > 0; end-- {
		s.slots[0], s.slots[end] = s.slots[end], s.slots[0]
		s.siftDown(0, end)
	}
	return s.slots
}

// siftDown moves the element at index i down the first n slots until the
// heap invariant is restored.
func (s *Selector[V]) siftDown(i, n int) {
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		if right := left + 1; right < n && worse(&s.slots[right], &s.slots[left]) {
			child = right
		}
		if !worse(&s.slots[child], &s.slots[i]) {
			break
		}
		s.slots[i], s.slots[child] = s.slots[child], s.slots[i]
		i = child
	}
}
