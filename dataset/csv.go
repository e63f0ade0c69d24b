package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// NoIDColumn marks a CSV source without an ID column.
const NoIDColumn = -1

// CSVOptions configures ReadCSV.
type CSVOptions struct {
	// Comma is the field delimiter. Defaults to ','.
	Comma rune

	// Header skips the first row.
	Header bool

	// IDColumn is the zero-based column holding row IDs, or NoIDColumn.
	IDColumn int
}

// DefaultCSVOptions contains the default CSV options.
var DefaultCSVOptions = CSVOptions{
	Comma:    ',',
	IDColumn: NoIDColumn,
}

// ReadCSV reads one vector per row. Every column except IDColumn must hold
// a number. Lines starting with '#' are ignored.
func ReadCSV(r io.Reader, opts CSVOptions) (*Dataset, error) {
	if opts.Comma == 0 {
		opts.Comma = ','
	}

	cr := csv.NewReader(r)
	cr.Comma = opts.Comma
	cr.Comment = '#'
	cr.ReuseRecord = true

	var b builder
	first := true
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: csv: %w", err)
		}

		if first {
			first = false
			if opts.Header {
				continue
			}
		}

		line, _ := cr.FieldPos(0)

		if opts.IDColumn >= len(record) {
			return nil, fmt.Errorf("dataset: csv line %d: id column %d out of range", line, opts.IDColumn)
		}

		id := ""
		vec := make([]float32, 0, len(record))
		for col, field := range record {
			field = strings.TrimSpace(field)
			if col == opts.IDColumn {
				id = field
				continue
			}
			x, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, fmt.Errorf("dataset: csv line %d column %d: %w", line, col, err)
			}
			vec = append(vec, float32(x))
		}

		b.add(id, vec)
	}

	return b.build()
}
