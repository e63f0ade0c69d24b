// Package dataset loads float32 vector datasets for searching.
//
// Supported sources:
//
//   - CSV/TSV: one vector per row, optional header and ID column.
//   - JSON Lines: one vector per line, either a bare array or an object
//     {"id": ..., "vector": [...]}.
//   - Arrow IPC streams (.arrows): a "vector" list column and an optional
//     string "id" column.
//   - Parquet: rows shaped like ParquetRecord.
//   - SQLite: an ID column and a BLOB column holding little-endian float32
//     values (see EncodeEmbedding).
//
// Streamed formats ending in .gz, .zst or .lz4 are decompressed
// transparently, so "vectors.jsonl.zst" is read as zstd-compressed JSON Lines.
//
// Load only reads. WriteParquet exists to export a dataset to a columnar file.
package dataset
