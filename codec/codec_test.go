package codec

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"json", true},
		{"go-json", true},
		{"msgpack", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := ByName(tt.name)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.name, c.Name())
			}
		})
	}
}

func TestCodecsAgree(t *testing.T) {
	type record struct {
		ID     string    `json:"id"`
		Vector []float32 `json:"vector"`
	}

	in := []byte(`{"id":"a","vector":[0.5,1,-2.25]}`)

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			var r record
			require.NoError(t, c.Unmarshal(in, &r))
			assert.Equal(t, record{ID: "a", Vector: []float32{0.5, 1, -2.25}}, r)
		})
	}
}

func TestMustMarshal(t *testing.T) {
	assert.Equal(t, `[1,2]`, string(MustMarshal(nil, []int{1, 2})))
	assert.Panics(t, func() { MustMarshal(JSON{}, math.Inf(1)) })
}

func TestLineWriter(t *testing.T) {
	var buf bytes.Buffer

	lw := NewLineWriter(&buf, JSON{})
	require.NoError(t, lw.Write(map[string]int{"query": 0}))
	require.NoError(t, lw.Write(map[string]int{"query": 1}))
	assert.Empty(t, buf.String())

	require.NoError(t, lw.Flush())
	assert.Equal(t, "{\"query\":0}\n{\"query\":1}\n", buf.String())

	err := lw.Write(math.NaN())
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "codec json:"))
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestLineWriterFlushError(t *testing.T) {
	lw := NewLineWriter(failWriter{}, nil)
	require.NoError(t, lw.Write(1))
	assert.EqualError(t, lw.Flush(), "disk full")
}
