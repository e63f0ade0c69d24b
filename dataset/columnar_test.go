package dataset

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParquet(t *testing.T) {
	want := &Dataset{
		IDs:     []string{"a", "b", "c"},
		Vectors: [][]float32{{1, 2}, {3, 4}, {5, 6}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteParquet(&buf, want))

	got, err := ReadParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	t.Run("WithoutIDs", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteParquet(&buf, &Dataset{Vectors: [][]float32{{1}, {2}}}))

		got, err := ReadParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
		require.NoError(t, err)
		assert.Nil(t, got.IDs)
		assert.Equal(t, 2, got.Len())
	})

	t.Run("Load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vectors.parquet")
		require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

		got, err := Load(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		_, err = Load(context.Background(), path+".gz")
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})

	t.Run("Corrupt", func(t *testing.T) {
		_, err := ReadParquet(bytes.NewReader([]byte("not parquet")), 11)
		assert.Error(t, err)
	})
}

func arrowStream(t *testing.T, schema *arrow.Schema, build func(b *array.RecordBuilder)) []byte {
	t.Helper()

	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()
	build(b)
	rec := b.NewRecord()
	defer rec.Release()

	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(schema))
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestReadArrow(t *testing.T) {
	t.Run("FixedSizeList", func(t *testing.T) {
		schema := arrow.NewSchema([]arrow.Field{
			{Name: "id", Type: arrow.BinaryTypes.String, Nullable: true},
			{Name: "vector", Type: arrow.FixedSizeListOf(2, arrow.PrimitiveTypes.Float32)},
		}, nil)

		data := arrowStream(t, schema, func(b *array.RecordBuilder) {
			ids := b.Field(0).(*array.StringBuilder)
			vecs := b.Field(1).(*array.FixedSizeListBuilder)
			vals := vecs.ValueBuilder().(*array.Float32Builder)

			ids.Append("a")
			vecs.Append(true)
			vals.AppendValues([]float32{1, 2}, nil)

			ids.AppendNull()
			vecs.Append(true)
			vals.AppendValues([]float32{3, 4}, nil)
		})

		ds, err := ReadArrow(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", ""}, ds.IDs)
		assert.Equal(t, [][]float32{{1, 2}, {3, 4}}, ds.Vectors)
	})

	t.Run("List", func(t *testing.T) {
		schema := arrow.NewSchema([]arrow.Field{
			{Name: "vector", Type: arrow.ListOf(arrow.PrimitiveTypes.Float32)},
		}, nil)

		data := arrowStream(t, schema, func(b *array.RecordBuilder) {
			vecs := b.Field(0).(*array.ListBuilder)
			vals := vecs.ValueBuilder().(*array.Float32Builder)
			for _, v := range [][]float32{{1, 0, 0}, {0, 1, 0}} {
				vecs.Append(true)
				vals.AppendValues(v, nil)
			}
		})

		ds, err := ReadArrow(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Nil(t, ds.IDs)
		assert.Equal(t, [][]float32{{1, 0, 0}, {0, 1, 0}}, ds.Vectors)

		t.Run("LoadCompressed", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "vectors.arrows.zst")
			f, err := os.Create(path)
			require.NoError(t, err)
			zw, err := zstd.NewWriter(f)
			require.NoError(t, err)
			_, err = zw.Write(data)
			require.NoError(t, err)
			require.NoError(t, zw.Close())
			require.NoError(t, f.Close())

			got, err := Load(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, ds, got)
		})
	})

	t.Run("MissingVector", func(t *testing.T) {
		schema := arrow.NewSchema([]arrow.Field{
			{Name: "embedding", Type: arrow.ListOf(arrow.PrimitiveTypes.Float32)},
		}, nil)
		data := arrowStream(t, schema, func(b *array.RecordBuilder) {
			b.Field(0).(*array.ListBuilder).Append(true)
		})

		_, err := ReadArrow(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrArrowSchema)
	})

	t.Run("WrongValueType", func(t *testing.T) {
		schema := arrow.NewSchema([]arrow.Field{
			{Name: "vector", Type: arrow.FixedSizeListOf(1, arrow.PrimitiveTypes.Int8)},
		}, nil)
		data := arrowStream(t, schema, func(b *array.RecordBuilder) {
			vecs := b.Field(0).(*array.FixedSizeListBuilder)
			vecs.Append(true)
			vecs.ValueBuilder().(*array.Int8Builder).Append(1)
		})

		_, err := ReadArrow(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrArrowSchema)
	})
}
