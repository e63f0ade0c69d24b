package nnsearch

import (
	"errors"
	"fmt"

	"github.com/hupe1980/nnsearch/neighbor"
)

var (
	// ErrInvalidArgument is the root of every argument error.
	ErrInvalidArgument = neighbor.ErrInvalidArgument

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = neighbor.ErrInvalidK

	// ErrInvalidRadius is returned when the radius is not positive.
	ErrInvalidRadius = neighbor.ErrInvalidRadius

	// ErrNilDistance is returned by New when no distance function is given.
	ErrNilDistance = neighbor.ErrNilDistance

	// ErrEmptyDataset is returned by New for an empty dataset.
	ErrEmptyDataset = neighbor.ErrEmptyDataset

	// ErrDatasetTooLarge is returned by RangeBitmap when slots do not fit a uint32.
	ErrDatasetTooLarge = fmt.Errorf("%w: dataset exceeds bitmap range", ErrInvalidArgument)
)

// ErrKExceedsDataset indicates that more neighbors were requested than the
// dataset holds.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrKExceedsDataset struct {
	K     int
	Size  int
	cause error
}

func (e *ErrKExceedsDataset) Error() string {
	return fmt.Sprintf("k %d exceeds dataset size %d", e.K, e.Size)
}

func (e *ErrKExceedsDataset) Unwrap() error { return e.cause }

// ErrIndexOutOfRange indicates a slot outside the dataset.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrIndexOutOfRange struct {
	Index int
	Size  int
	cause error
}

func (e *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Size)
}

func (e *ErrIndexOutOfRange) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ke *neighbor.KExceedsDatasetError
	if errors.As(err, &ke) {
		return &ErrKExceedsDataset{K: ke.K, Size: ke.Size, cause: err}
	}
	var ie *neighbor.IndexOutOfRangeError
	if errors.As(err, &ie) {
		return &ErrIndexOutOfRange{Index: ie.Index, Size: ie.Size, cause: err}
	}

	return err
}
