package dataset

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/hupe1980/nnsearch/codec"
)

// maxLineBytes bounds a single JSON Lines record.
const maxLineBytes = 64 << 20

type jsonRecord struct {
	ID     any       `json:"id"`
	Vector []float32 `json:"vector"`
}

// ReadJSONL reads one vector per line. A line is either a JSON array of
// numbers or an object with "vector" and optional "id" (string or number).
// Blank lines are skipped. A nil codec selects codec.Default.
func ReadJSONL(r io.Reader, c codec.Codec) (*Dataset, error) {
	if c == nil {
		c = codec.Default
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var b builder
	line := 0
	for sc.Scan() {
		line++

		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}

		if raw[0] == '[' {
			var vec []float32
			if err := c.Unmarshal(raw, &vec); err != nil {
				return nil, fmt.Errorf("dataset: jsonl line %d: %w", line, err)
			}
			b.add("", vec)
			continue
		}

		var rec jsonRecord
		if err := c.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("dataset: jsonl line %d: %w", line, err)
		}
		id, err := formatID(rec.ID)
		if err != nil {
			return nil, fmt.Errorf("dataset: jsonl line %d: %w", line, err)
		}
		b.add(id, rec.Vector)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("dataset: jsonl: %w", err)
	}

	return b.build()
}

func formatID(v any) (string, error) {
	switch id := v.(type) {
	case nil:
		return "", nil
	case string:
		return id, nil
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported id type %T", v)
	}
}
