// Package sink persists extracted relationship edges. Every implementation
// is append-oriented: Save is called once per edge during collection and
// Finalize exactly once when the batch ends, successfully or not.
package sink

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/icebreakerlabs/ghgraph/internal/edge"
)

// Sink receives edges one at a time.
type Sink interface {
	// Save persists a single edge.
	Save(ctx context.Context, e edge.Edge) error
	// Finalize releases resources. Called exactly once, even after a failed
	// batch, so partial output is still flushed.
	Finalize(ctx context.Context) error
}

// Print writes one line per edge to a writer. The zero-infrastructure sink
// for eyeballing a collection run.
type Print struct {
	w      io.Writer
	logger *logrus.Entry
	count  int
}

// NewPrint creates a print sink targeting w.
func NewPrint(w io.Writer, logger *logrus.Entry) *Print {
	return &Print{w: w, logger: logger}
}

// Save implements Sink.
func (p *Print) Save(_ context.Context, e edge.Edge) error {
	row := e.Row()
	_, err := fmt.Fprintf(p.w, "%s -[%s]-> %s (%s)\n", row.Source, row.Type, row.Target, row.CreatedAt)
	if err != nil {
		return err
	}
	p.count++
	return nil
}

// Finalize implements Sink.
func (p *Print) Finalize(_ context.Context) error {
	if p.logger != nil {
		p.logger.WithField("edges", p.count).Info("print sink finished")
	}
	return nil
}
