package sink

import (
	"context"
	"encoding/csv"
	"os"

	"github.com/icebreakerlabs/ghgraph/internal/edge"
	"github.com/icebreakerlabs/ghgraph/internal/errors"
)

// CSV appends edges to a file with the canonical six-column layout. The
// header row is written only when the file does not already exist, so
// repeated runs against the same path accumulate rows instead of corrupting
// the file with mid-stream headers.
type CSV struct {
	path   string
	file   *os.File
	writer *csv.Writer
}

// NewCSV opens (or creates) the file at path for appending.
func NewCSV(path string) (*CSV, error) {
	_, statErr := os.Stat(path)
	needHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.PersistenceError(err, "open csv file").WithContext("path", path)
	}

	w := csv.NewWriter(f)
	if needHeader {
		if err := w.Write(edge.Columns); err != nil {
			f.Close()
			return nil, errors.PersistenceError(err, "write csv header").WithContext("path", path)
		}
	}
	return &CSV{path: path, file: f, writer: w}, nil
}

// Save implements Sink.
func (c *CSV) Save(_ context.Context, e edge.Edge) error {
	row := e.Row()
	record := []string{row.Source, row.Target, row.Type, row.Title, row.CreatedAt, row.URL}
	if err := c.writer.Write(record); err != nil {
		return errors.PersistenceError(err, "write csv row").WithContext("path", c.path)
	}
	return nil
}

// Finalize implements Sink. Flushes buffered rows and closes the file.
func (c *CSV) Finalize(_ context.Context) error {
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		c.file.Close()
		return errors.PersistenceError(err, "flush csv").WithContext("path", c.path)
	}
	if err := c.file.Close(); err != nil {
		return errors.PersistenceError(err, "close csv file").WithContext("path", c.path)
	}
	return nil
}
