// Package load streams persisted relationship records back out of storage so
// the graph builder can consume them. Each loader implements
// multigraph.RecordSource over one backend.
package load

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/icebreakerlabs/ghgraph/internal/errors"
)

// CSVOptions configures which header columns carry the edge endpoints. The
// defaults match the collection output; overriding them lets arbitrary edge
// lists be loaded as graphs.
type CSVOptions struct {
	SourceColumn string
	TargetColumn string
}

func (o *CSVOptions) applyDefaults() {
	if o.SourceColumn == "" {
		o.SourceColumn = "source"
	}
	if o.TargetColumn == "" {
		o.TargetColumn = "target"
	}
}

// CSVLoader reads edge records from a headered CSV file.
type CSVLoader struct {
	path string
	opts CSVOptions
}

// NewCSVLoader creates a loader for the file at path.
func NewCSVLoader(path string, opts CSVOptions) *CSVLoader {
	opts.applyDefaults()
	return &CSVLoader{path: path, opts: opts}
}

// Load implements multigraph.RecordSource. The configured endpoint columns
// must be present in the header; every other column becomes a record
// attribute. Rows whose fields are all empty are skipped.
func (l *CSVLoader) Load(ctx context.Context, fn func(rec map[string]string) error) error {
	f, err := os.Open(l.path)
	if err != nil {
		return errors.PersistenceError(err, "open csv file").WithContext("path", l.path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return errors.ValidationErrorf("csv file %s is empty", l.path)
	}
	if err != nil {
		return errors.PersistenceError(err, "read csv header").WithContext("path", l.path)
	}

	if !contains(header, l.opts.SourceColumn) {
		return errors.ValidationErrorf("source column %q not found in header of %s", l.opts.SourceColumn, l.path)
	}
	if !contains(header, l.opts.TargetColumn) {
		return errors.ValidationErrorf("target column %q not found in header of %s", l.opts.TargetColumn, l.path)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.PersistenceError(err, "read csv row").WithContext("path", l.path)
		}
		if allEmpty(row) {
			continue
		}

		rec := make(map[string]string, len(header))
		for i, col := range header {
			if i >= len(row) {
				break
			}
			switch col {
			case l.opts.SourceColumn:
				rec["source"] = row[i]
			case l.opts.TargetColumn:
				rec["target"] = row[i]
			default:
				rec[col] = row[i]
			}
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

func contains(header []string, col string) bool {
	for _, h := range header {
		if h == col {
			return true
		}
	}
	return false
}

func allEmpty(row []string) bool {
	for _, field := range row {
		if field != "" {
			return false
		}
	}
	return true
}
