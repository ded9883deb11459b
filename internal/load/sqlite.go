package load

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/icebreakerlabs/ghgraph/internal/edge"
	"github.com/icebreakerlabs/ghgraph/internal/errors"
)

// SQLiteLoader streams edge rows out of a local database file written by the
// sqlite sink.
type SQLiteLoader struct {
	path string
}

// NewSQLiteLoader creates a loader for the database at path.
func NewSQLiteLoader(path string) *SQLiteLoader {
	return &SQLiteLoader{path: path}
}

// Load implements multigraph.RecordSource.
func (l *SQLiteLoader) Load(ctx context.Context, fn func(rec map[string]string) error) error {
	db, err := sqlx.Open("sqlite3", l.path)
	if err != nil {
		return errors.PersistenceError(err, "open sqlite database").WithContext("path", l.path)
	}
	defer db.Close()

	rows, err := db.QueryxContext(ctx, "SELECT source, target, type, title, created_at, url FROM edges")
	if err != nil {
		return errors.PersistenceError(err, "query edges").WithContext("path", l.path)
	}
	defer rows.Close()

	for rows.Next() {
		var row edge.Row
		if err := rows.StructScan(&row); err != nil {
			return errors.PersistenceError(err, "scan edge row")
		}
		if err := fn(row.Record()); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return errors.PersistenceError(err, "iterate edge rows")
	}
	return nil
}
