package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// OpenSQLite opens a SQLite database using the modernc.org/sqlite driver.
// The DSN follows the driver's conventions (e.g. "file:vectors.db?mode=ro"
// or ":memory:").
func OpenSQLite(dsn string) (*sql.DB, error) { return sql.Open("sqlite", dsn) }

// ReadSQLite reads every row of table in rowid order. vecColumn must hold
// BLOBs encoded with EncodeEmbedding. idColumn may be empty, in which case
// the dataset has no IDs.
func ReadSQLite(ctx context.Context, db *sql.DB, table, idColumn, vecColumn string) (*Dataset, error) {
	for _, ident := range []string{table, vecColumn} {
		if !identRe.MatchString(ident) {
			return nil, fmt.Errorf("dataset: sqlite: invalid identifier %q", ident)
		}
	}
	if idColumn != "" && !identRe.MatchString(idColumn) {
		return nil, fmt.Errorf("dataset: sqlite: invalid identifier %q", idColumn)
	}

	idExpr := "NULL"
	if idColumn != "" {
		idExpr = `"` + idColumn + `"`
	}
	query := fmt.Sprintf(`SELECT %s, "%s" FROM "%s" ORDER BY rowid`, idExpr, vecColumn, table)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("dataset: sqlite: %w", err)
	}
	defer rows.Close()

	var b builder
	row := 0
	for rows.Next() {
		var (
			id   sql.NullString
			blob []byte
		)
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("dataset: sqlite row %d: %w", row, err)
		}
		vec, err := DecodeEmbedding(blob)
		if err != nil {
			return nil, fmt.Errorf("dataset: sqlite row %d: %w", row, err)
		}
		b.add(id.String, vec)
		row++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dataset: sqlite: %w", err)
	}

	return b.build()
}
