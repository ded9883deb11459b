package sink

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/icebreakerlabs/ghgraph/internal/edge"
	"github.com/icebreakerlabs/ghgraph/internal/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS edges (
	source     TEXT NOT NULL,
	target     TEXT NOT NULL,
	type       TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT '',
	url        TEXT NOT NULL DEFAULT '',
	UNIQUE (source, target, type, url)
);
`

// SQLite persists edges to a local database file. The unique constraint over
// the identifying columns makes repeated collection runs idempotent, matching
// the merge semantics of the graph sink.
type SQLite struct {
	db *sqlx.DB
}

// NewSQLite opens (or creates) the database at path and ensures the schema.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, errors.PersistenceError(err, "open sqlite database").WithContext("path", path)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.PersistenceError(err, "create edges table").WithContext("path", path)
	}
	return &SQLite{db: db}, nil
}

// Save implements Sink.
func (s *SQLite) Save(ctx context.Context, e edge.Edge) error {
	query := `
		INSERT INTO edges (source, target, type, title, created_at, url)
		VALUES (:source, :target, :type, :title, :created_at, :url)
		ON CONFLICT (source, target, type, url) DO NOTHING
	`
	if _, err := s.db.NamedExecContext(ctx, query, e.Row()); err != nil {
		return errors.PersistenceError(err, "insert edge")
	}
	return nil
}

// Finalize implements Sink.
func (s *SQLite) Finalize(_ context.Context) error {
	if err := s.db.Close(); err != nil {
		return errors.PersistenceError(err, "close sqlite database")
	}
	return nil
}
