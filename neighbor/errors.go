package neighbor

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is the root of all validation failures.
	// Every error returned by this package matches it with errors.Is.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = fmt.Errorf("%w: k must be positive", ErrInvalidArgument)

	// ErrInvalidRadius is returned when the range radius is not positive.
	ErrInvalidRadius = fmt.Errorf("%w: radius must be positive", ErrInvalidArgument)

	// ErrNilDistance is returned by New when no distance function is given.
	ErrNilDistance = fmt.Errorf("%w: distance function is nil", ErrInvalidArgument)

	// ErrEmptyDataset is returned by New when the dataset has no elements.
	ErrEmptyDataset = fmt.Errorf("%w: dataset is empty", ErrInvalidArgument)
)

// KExceedsDatasetError indicates a KNN request for more neighbors than the
// dataset holds.
type KExceedsDatasetError struct {
	K    int
	Size int
}

func (e *KExceedsDatasetError) Error() string {
	return fmt.Sprintf("invalid argument: k %d is larger than the dataset size %d", e.K, e.Size)
}

func (e *KExceedsDatasetError) Unwrap() error { return ErrInvalidArgument }

// IndexOutOfRangeError indicates a dataset slot outside [0, Size).
type IndexOutOfRangeError struct {
	Index int
	Size  int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("invalid argument: index %d out of range [0, %d)", e.Index, e.Size)
}

func (e *IndexOutOfRangeError) Unwrap() error { return ErrInvalidArgument }
