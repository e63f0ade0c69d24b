package codec

import (
	"testing"
)

type benchNeighbor struct {
	Index    int     `json:"index"`
	ID       string  `json:"id,omitempty"`
	Distance float64 `json:"distance"`
}

type benchResult struct {
	Query     int             `json:"query"`
	Neighbors []benchNeighbor `json:"neighbors"`
}

type benchRecord struct {
	ID     string    `json:"id"`
	Vector []float32 `json:"vector"`
}

func benchmarkCodecMarshal(b *testing.B, c Codec, v any) {
	b.Helper()
	b.ReportAllocs()

	warm, err := c.Marshal(v)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(warm)))

	var sink []byte
	b.ResetTimer()
	for b.Loop() {
		out, err := c.Marshal(v)
		if err != nil {
			b.Fatal(err)
		}
		sink = out
	}
	_ = sink
}

func benchmarkCodecUnmarshal[T any](b *testing.B, c Codec, data []byte) {
	b.Helper()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	var v T
	b.ResetTimer()
	for b.Loop() {
		if err := c.Unmarshal(data, &v); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCodec_Marshal_Result(b *testing.B) {
	res := benchResult{Query: 7}
	for i := range 100 {
		res.Neighbors = append(res.Neighbors, benchNeighbor{Index: i, ID: "doc", Distance: float64(i) * 0.5})
	}

	b.Run("stdlib", func(b *testing.B) { benchmarkCodecMarshal(b, JSON{}, res) })
	b.Run("go-json", func(b *testing.B) { benchmarkCodecMarshal(b, GoJSON{}, res) })
}

func BenchmarkCodec_Unmarshal_Record(b *testing.B) {
	rec := benchRecord{ID: "doc-1", Vector: make([]float32, 768)}
	for i := range rec.Vector {
		rec.Vector[i] = float32(i) / 768
	}

	data := MustMarshal(JSON{}, rec)

	b.Run("stdlib", func(b *testing.B) { benchmarkCodecUnmarshal[benchRecord](b, JSON{}, data) })
	b.Run("go-json", func(b *testing.B) { benchmarkCodecUnmarshal[benchRecord](b, GoJSON{}, data) })
}
