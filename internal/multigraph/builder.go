package multigraph

import (
	"context"
)

// RecordSource streams relationship records one at a time. Implementations
// live in the load package (CSV, Neo4j, SQLite); anything that can hand over
// flat source/target maps can feed a graph.
type RecordSource interface {
	Load(ctx context.Context, fn func(rec map[string]string) error) error
}

// Build assembles a multigraph from a record stream in a single pass. Records
// missing source or target are skipped; everything else becomes a parallel
// edge carrying the record's remaining fields as attributes.
func Build(ctx context.Context, src RecordSource) (*Graph, error) {
	g := New()
	err := src.Load(ctx, func(rec map[string]string) error {
		g.AddRecord(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// RecordSlice adapts an in-memory record list to the RecordSource interface.
// Used by tests and by callers that already hold their records.
type RecordSlice []map[string]string

// Load implements RecordSource.
func (s RecordSlice) Load(ctx context.Context, fn func(rec map[string]string) error) error {
	for _, rec := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}
