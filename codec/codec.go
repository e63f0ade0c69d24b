// Package codec centralizes JSON encoding of dataset records and query results.
package codec

import (
	"bufio"
	"fmt"
	"io"
)

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for internal tests/benchmarks.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}

// LineWriter writes one encoded value per line (JSON Lines).
// It is not safe for concurrent use.
type LineWriter struct {
	w     *bufio.Writer
	codec Codec
}

// NewLineWriter creates a LineWriter on w. A nil codec selects Default.
func NewLineWriter(w io.Writer, c Codec) *LineWriter {
	if c == nil {
		c = Default
	}
	return &LineWriter{w: bufio.NewWriter(w), codec: c}
}

// Write encodes v followed by a newline.
func (lw *LineWriter) Write(v any) error {
	b, err := lw.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("codec %s: %w", lw.codec.Name(), err)
	}
	if _, err := lw.w.Write(b); err != nil {
		return err
	}
	return lw.w.WriteByte('\n')
}

// Flush writes buffered lines to the underlying writer.
func (lw *LineWriter) Flush() error {
	return lw.w.Flush()
}
