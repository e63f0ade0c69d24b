package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned when a source holds no vectors.
	ErrEmpty = errors.New("dataset: no vectors")

	// ErrZeroDimension is returned for a vector without components.
	ErrZeroDimension = errors.New("dataset: zero-dimensional vector")

	// ErrIDCount is returned when IDs and vectors differ in length.
	ErrIDCount = errors.New("dataset: id count does not match vector count")
)

// DimensionMismatchError reports a row whose dimension differs from the first row.
type DimensionMismatchError struct {
	Row      int
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dataset: row %d: dimension mismatch: expected %d, got %d", e.Row, e.Expected, e.Actual)
}

// Dataset is an in-memory collection of equally sized vectors.
type Dataset struct {
	// IDs holds an external identifier per vector. It is nil when the source
	// carries no identifiers.
	IDs []string

	// Vectors holds the rows in source order.
	Vectors [][]float32
}

// Len returns the number of vectors.
func (d *Dataset) Len() int { return len(d.Vectors) }

// Dim returns the vector dimension, or 0 for an empty dataset.
func (d *Dataset) Dim() int {
	if len(d.Vectors) == 0 {
		return 0
	}
	return len(d.Vectors[0])
}

// ID returns the identifier of row i, or "" if the dataset has none.
func (d *Dataset) ID(i int) string {
	if d.IDs == nil {
		return ""
	}
	return d.IDs[i]
}

// Validate checks that the dataset is non-empty, that every vector has the
// same non-zero dimension and that IDs, if present, match the vectors.
func (d *Dataset) Validate() error {
	if len(d.Vectors) == 0 {
		return ErrEmpty
	}
	if d.IDs != nil && len(d.IDs) != len(d.Vectors) {
		return fmt.Errorf("%w: %d ids, %d vectors", ErrIDCount, len(d.IDs), len(d.Vectors))
	}

	dim := len(d.Vectors[0])
	if dim == 0 {
		return ErrZeroDimension
	}
	for i, v := range d.Vectors {
		if len(v) != dim {
			return &DimensionMismatchError{Row: i, Expected: dim, Actual: len(v)}
		}
	}
	return nil
}

// builder accumulates rows and drops the ID column when no row had one.
type builder struct {
	ds     Dataset
	hasIDs bool
}

func (b *builder) add(id string, vec []float32) {
	if id != "" {
		b.hasIDs = true
	}
	b.ds.IDs = append(b.ds.IDs, id)
	b.ds.Vectors = append(b.ds.Vectors, vec)
}

func (b *builder) build() (*Dataset, error) {
	ds := b.ds
	if !b.hasIDs {
		ds.IDs = nil
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}
