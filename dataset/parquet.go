package dataset

import (
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
)

// ParquetRecord is the row layout of Parquet datasets. An empty ID means the
// row has none.
type ParquetRecord struct {
	ID     string    `parquet:"id"`
	Vector []float32 `parquet:"vector"`
}

// ReadParquet reads a Parquet file of ParquetRecord rows.
func ReadParquet(r io.ReaderAt, size int64) (*Dataset, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("dataset: parquet: %w", err)
	}

	pr := parquet.NewGenericReader[ParquetRecord](pf)
	defer pr.Close()

	rows := make([]ParquetRecord, pr.NumRows())
	n, err := pr.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("dataset: parquet: %w", err)
	}

	var b builder
	for _, row := range rows[:n] {
		b.add(row.ID, row.Vector)
	}
	return b.build()
}

// WriteParquet writes ds as zstd-compressed ParquetRecord rows.
func WriteParquet(w io.Writer, ds *Dataset) error {
	pw := parquet.NewGenericWriter[ParquetRecord](w, parquet.Compression(&parquet.Zstd))

	rows := make([]ParquetRecord, ds.Len())
	for i, vec := range ds.Vectors {
		rows[i] = ParquetRecord{ID: ds.ID(i), Vector: vec}
	}
	if _, err := pw.Write(rows); err != nil {
		_ = pw.Close()
		return fmt.Errorf("dataset: parquet: %w", err)
	}
	return pw.Close()
}
