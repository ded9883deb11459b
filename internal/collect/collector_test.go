package collect

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icebreakerlabs/ghgraph/internal/edge"
	"github.com/icebreakerlabs/ghgraph/internal/errors"
)

// fakeFetcher returns canned payloads per username.
type fakeFetcher struct {
	payloads map[string]map[string]any
	errs     map[string]error
	calls    int
}

func (f *fakeFetcher) FetchUserWork(_ context.Context, username, _, _ string, _, _ time.Time) (map[string]any, error) {
	f.calls++
	if err, ok := f.errs[username]; ok {
		return nil, err
	}
	return f.payloads[username], nil
}

// recordingSink captures saved edges and tracks finalization.
type recordingSink struct {
	edges     []edge.Edge
	saveErr   error
	finalized int
}

func (s *recordingSink) Save(_ context.Context, e edge.Edge) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.edges = append(s.edges, e)
	return nil
}

func (s *recordingSink) Finalize(_ context.Context) error {
	s.finalized++
	return nil
}

func issuePayload(title, url string) map[string]any {
	return map[string]any{
		"issuesCreated": map[string]any{
			"nodes": []any{map[string]any{
				"title":     title,
				"createdAt": "2024-01-01T00:00:00Z",
				"url":       url,
			}},
		},
	}
}

func newCollector(f Fetcher, s *recordingSink, opts ...Option) *Collector {
	return New(f, edge.NewExtractor(nil), s, time.Now().AddDate(0, 0, -7), opts...)
}

func TestRunEmptyBatchIsValidationError(t *testing.T) {
	s := &recordingSink{}
	c := newCollector(&fakeFetcher{}, s)

	_, err := c.Run(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindValidation))
	assert.Equal(t, 0, s.finalized)
}

func TestRunMalformedTargetAbortsBatch(t *testing.T) {
	f := &fakeFetcher{}
	s := &recordingSink{}
	c := newCollector(f, s)

	targets := []Target{
		{Username: "alice", Owner: "o", Repo: "r"},
		{Username: "", Owner: "o", Repo: "r2"},
	}
	_, err := c.Run(context.Background(), targets)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindValidation))
	// Validation happens before any fetching.
	assert.Equal(t, 0, f.calls)
}

func TestRunCollectsAndSummarizes(t *testing.T) {
	f := &fakeFetcher{payloads: map[string]map[string]any{
		"alice": issuePayload("Fix bug", "https://x/1"),
		"bob":   issuePayload("Add docs", "https://x/2"),
	}}
	s := &recordingSink{}
	c := newCollector(f, s)

	summary, err := c.Run(context.Background(), []Target{
		{Username: "alice", Owner: "o", Repo: "r"},
		{Username: "bob", Owner: "o", Repo: "r2"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 2, summary.Edges)
	assert.Empty(t, summary.Errors)
	assert.Len(t, s.edges, 2)
	assert.Equal(t, 1, s.finalized)
}

func TestRunTransportFailureIsIsolated(t *testing.T) {
	f := &fakeFetcher{
		payloads: map[string]map[string]any{"bob": issuePayload("Add docs", "https://x/2")},
		errs:     map[string]error{"alice": errors.TransportError(assert.AnError, "boom")},
	}
	s := &recordingSink{}
	c := newCollector(f, s)

	summary, err := c.Run(context.Background(), []Target{
		{Username: "alice", Owner: "o", Repo: "broken"},
		{Username: "bob", Owner: "o", Repo: "healthy"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	require.Contains(t, summary.Errors, "o/broken")
	assert.True(t, errors.IsKind(summary.Errors["o/broken"], errors.KindTransport))
	assert.Len(t, s.edges, 1)
	assert.Equal(t, 1, s.finalized)
}

func TestRunPartialExtractionStillSaves(t *testing.T) {
	payload := issuePayload("Fix bug", "https://x/1")
	payload["prsCreated"] = "garbage"
	f := &fakeFetcher{payloads: map[string]map[string]any{"alice": payload}}
	s := &recordingSink{}
	c := newCollector(f, s)

	summary, err := c.Run(context.Background(), []Target{{Username: "alice", Owner: "o", Repo: "r"}})
	require.NoError(t, err)

	// The malformed category is an error for the tuple, but the healthy
	// category's edge was saved first.
	require.Contains(t, summary.Errors, "o/r")
	assert.True(t, errors.IsKind(summary.Errors["o/r"], errors.KindExtraction))
	assert.Equal(t, 1, summary.Edges)
	assert.Len(t, s.edges, 1)
}

func TestRunFinalizesOnceOnPersistenceFailure(t *testing.T) {
	f := &fakeFetcher{payloads: map[string]map[string]any{
		"alice": issuePayload("Fix bug", "https://x/1"),
		"bob":   issuePayload("Add docs", "https://x/2"),
	}}
	s := &recordingSink{saveErr: errors.PersistenceError(assert.AnError, "disk full")}
	c := newCollector(f, s)

	summary, err := c.Run(context.Background(), []Target{
		{Username: "alice", Owner: "o", Repo: "r"},
		{Username: "bob", Owner: "o", Repo: "r2"},
	})
	require.NoError(t, err)

	assert.Len(t, summary.Errors, 2)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 1, s.finalized)
}

func TestCheckpointSkipsProcessedTargets(t *testing.T) {
	cp, err := OpenCheckpoint(filepath.Join(t.TempDir(), "checkpoint.db"))
	require.NoError(t, err)
	defer cp.Close()

	f := &fakeFetcher{payloads: map[string]map[string]any{
		"alice": issuePayload("Fix bug", "https://x/1"),
	}}
	s := &recordingSink{}
	targets := []Target{{Username: "alice", Owner: "o", Repo: "r"}}

	c := newCollector(f, s, WithCheckpoint(cp))
	summary, err := c.Run(context.Background(), targets)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)

	// Second run over the same targets fetches nothing.
	s2 := &recordingSink{}
	c2 := newCollector(f, s2, WithCheckpoint(cp))
	summary2, err := c2.Run(context.Background(), targets)
	require.NoError(t, err)
	assert.Equal(t, 0, summary2.Processed)
	assert.Equal(t, 1, summary2.Skipped)
	assert.Equal(t, 1, f.calls)
}

func TestCheckpointDoneAndMark(t *testing.T) {
	cp, err := OpenCheckpoint(filepath.Join(t.TempDir(), "checkpoint.db"))
	require.NoError(t, err)
	defer cp.Close()

	target := Target{Username: "alice", Owner: "o", Repo: "r"}
	done, err := cp.Done(target)
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, cp.Mark(target))
	done, err = cp.Done(target)
	require.NoError(t, err)
	assert.True(t, done)

	// A different user against the same repo is a distinct unit of work.
	other, err := cp.Done(Target{Username: "bob", Owner: "o", Repo: "r"})
	require.NoError(t, err)
	assert.False(t, other)
}
