// Package collect drives the pipeline: fetch one user's activity, extract
// edges, hand them to a sink. Failures are isolated per repository target so
// one broken tuple never sinks a batch.
package collect

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/icebreakerlabs/ghgraph/internal/edge"
	"github.com/icebreakerlabs/ghgraph/internal/errors"
	"github.com/icebreakerlabs/ghgraph/internal/sink"
)

// Target names one collection unit: a user's activity in a repository.
type Target struct {
	Username string `json:"username"`
	Owner    string `json:"owner"`
	Repo     string `json:"repo"`
}

// Key is the target's repository identifier used in result maps.
func (t Target) Key() string {
	return fmt.Sprintf("%s/%s", t.Owner, t.Repo)
}

// Fetcher retrieves the raw category payload for one target. A zero until
// leaves the activity window open-ended.
type Fetcher interface {
	FetchUserWork(ctx context.Context, username, owner, repo string, since, until time.Time) (map[string]any, error)
}

// Summary reports what a collection run did.
type Summary struct {
	Processed int
	Skipped   int
	Edges     int
	// Errors maps repository identifiers to the failure that hit them.
	Errors map[string]error
}

// Collector runs the fetch-extract-save loop over a batch of targets.
type Collector struct {
	fetcher    Fetcher
	extractor  *edge.Extractor
	sink       sink.Sink
	since      time.Time
	until      time.Time
	checkpoint *Checkpoint
	logger     *logrus.Entry
}

// Option customizes a collector.
type Option func(*Collector)

// WithCheckpoint enables resumable runs: already-processed targets are
// skipped, successes are recorded.
func WithCheckpoint(cp *Checkpoint) Option {
	return func(c *Collector) { c.checkpoint = cp }
}

// WithLogger attaches a logger.
func WithLogger(logger *logrus.Entry) Option {
	return func(c *Collector) { c.logger = logger }
}

// WithUntil caps the activity window instead of running it up to now.
func WithUntil(until time.Time) Option {
	return func(c *Collector) { c.until = until }
}

// New creates a collector writing to the given sink. since bounds how far
// back activity is fetched.
func New(fetcher Fetcher, extractor *edge.Extractor, s sink.Sink, since time.Time, opts ...Option) *Collector {
	c := &Collector{fetcher: fetcher, extractor: extractor, sink: s, since: since}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run processes every target. Malformed input aborts the whole batch with a
// validation error before any fetching happens; per-target transport,
// extraction and persistence failures are recorded in the summary and the
// run continues. The sink is finalized exactly once, whatever happens.
func (c *Collector) Run(ctx context.Context, targets []Target) (summary *Summary, err error) {
	if len(targets) == 0 {
		return nil, errors.ValidationErrorf("no repositories provided")
	}
	for _, t := range targets {
		if t.Username == "" || t.Owner == "" || t.Repo == "" {
			return nil, errors.ValidationErrorf(
				"target %q is missing required fields (username, owner, repo)", t.Key())
		}
	}

	summary = &Summary{Errors: make(map[string]error)}
	defer func() {
		if ferr := c.sink.Finalize(ctx); ferr != nil && err == nil {
			err = ferr
		}
	}()

	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return summary, errors.TransportError(err, "collection canceled")
		}
		if c.checkpoint != nil {
			done, cerr := c.checkpoint.Done(t)
			if cerr != nil {
				return summary, cerr
			}
			if done {
				summary.Skipped++
				continue
			}
		}

		saved, terr := c.processTarget(ctx, t)
		summary.Edges += saved
		if terr != nil {
			summary.Errors[t.Key()] = terr
			if c.logger != nil {
				c.logger.WithField("repo", t.Key()).WithError(terr).Warn("target failed")
			}
			continue
		}

		summary.Processed++
		if c.checkpoint != nil {
			if cerr := c.checkpoint.Mark(t); cerr != nil {
				return summary, cerr
			}
		}
		if c.logger != nil {
			c.logger.WithFields(logrus.Fields{
				"repo": t.Key(),
				"user": t.Username,
			}).Info("target collected")
		}
	}
	return summary, nil
}

// processTarget runs one tuple end to end and returns how many edges reached
// the sink. A partial extraction still saves the surviving edges before the
// category error is reported.
func (c *Collector) processTarget(ctx context.Context, t Target) (int, error) {
	payload, err := c.fetcher.FetchUserWork(ctx, t.Username, t.Owner, t.Repo, c.since, c.until)
	if err != nil {
		return 0, err
	}

	edges, extractErr := c.extractor.Extract(payload, t.Username)
	saved := 0
	for _, e := range edges {
		if err := c.sink.Save(ctx, e); err != nil {
			return saved, err
		}
		saved++
	}
	return saved, extractErr
}
