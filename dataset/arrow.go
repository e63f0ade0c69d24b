package dataset

import (
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ErrArrowSchema is returned when an Arrow stream lacks a usable vector column.
var ErrArrowSchema = errors.New("dataset: arrow: unsupported schema")

// ReadArrow reads an Arrow IPC stream. Every record batch must carry a
// "vector" column of fixed-size or variable lists of float32 and may carry
// a string "id" column. Vectors are copied out of the Arrow buffers.
func ReadArrow(r io.Reader) (*Dataset, error) {
	rd, err := ipc.NewReader(r, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("dataset: arrow: %w", err)
	}
	defer rd.Release()

	var b builder
	for rd.Next() {
		if err := appendRecord(&b, rd.Record()); err != nil {
			return nil, err
		}
	}
	if err := rd.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("dataset: arrow: %w", err)
	}
	return b.build()
}

func appendRecord(b *builder, rec arrow.Record) error {
	schema := rec.Schema()

	vecIdx := schema.FieldIndices("vector")
	if len(vecIdx) == 0 {
		return fmt.Errorf("%w: no vector column", ErrArrowSchema)
	}

	var ids *array.String
	if idx := schema.FieldIndices("id"); len(idx) > 0 {
		col, ok := rec.Column(idx[0]).(*array.String)
		if !ok {
			return fmt.Errorf("%w: id column is %s", ErrArrowSchema, rec.Column(idx[0]).DataType())
		}
		ids = col
	}

	rows := int(rec.NumRows())
	id := func(i int) string {
		if ids == nil || ids.IsNull(i) {
			return ""
		}
		return ids.Value(i)
	}

	switch col := rec.Column(vecIdx[0]).(type) {
	case *array.FixedSizeList:
		values, ok := col.ListValues().(*array.Float32)
		if !ok {
			return fmt.Errorf("%w: vector values are %s", ErrArrowSchema, col.ListValues().DataType())
		}
		dim := int(col.DataType().(*arrow.FixedSizeListType).Len())
		raw := values.Float32Values()
		for i := 0; i < rows; i++ {
			start := (col.Data().Offset() + i) * dim
			b.add(id(i), append([]float32(nil), raw[start:start+dim]...))
		}
	case *array.List:
		values, ok := col.ListValues().(*array.Float32)
		if !ok {
			return fmt.Errorf("%w: vector values are %s", ErrArrowSchema, col.ListValues().DataType())
		}
		raw := values.Float32Values()
		for i := 0; i < rows; i++ {
			start, end := col.ValueOffsets(i)
			b.add(id(i), append([]float32(nil), raw[start:end]...))
		}
	default:
		return fmt.Errorf("%w: vector column is %s", ErrArrowSchema, col.DataType())
	}
	return nil
}
