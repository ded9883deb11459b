package load

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icebreakerlabs/ghgraph/internal/edge"
	"github.com/icebreakerlabs/ghgraph/internal/errors"
	"github.com/icebreakerlabs/ghgraph/internal/multigraph"
	"github.com/icebreakerlabs/ghgraph/internal/sink"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edges.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func collect(t *testing.T, l *CSVLoader) []map[string]string {
	t.Helper()
	var recs []map[string]string
	require.NoError(t, l.Load(context.Background(), func(rec map[string]string) error {
		recs = append(recs, rec)
		return nil
	}))
	return recs
}

func TestCSVLoaderDefaults(t *testing.T) {
	path := writeFile(t, "source,target,type,title,created_at,url\n"+
		"alice,https://x/1,issue_created,Fix bug,2024-01-01T00:00:00Z,https://x/1\n")

	recs := collect(t, NewCSVLoader(path, CSVOptions{}))
	require.Len(t, recs, 1)
	assert.Equal(t, "alice", recs[0]["source"])
	assert.Equal(t, "https://x/1", recs[0]["target"])
	assert.Equal(t, "issue_created", recs[0]["type"])
	assert.Equal(t, "Fix bug", recs[0]["title"])
}

func TestCSVLoaderCustomColumns(t *testing.T) {
	path := writeFile(t, "actor,repo,weight\nalice,https://x/1,3\n")

	recs := collect(t, NewCSVLoader(path, CSVOptions{SourceColumn: "actor", TargetColumn: "repo"}))
	require.Len(t, recs, 1)
	assert.Equal(t, "alice", recs[0]["source"])
	assert.Equal(t, "https://x/1", recs[0]["target"])
	assert.Equal(t, "3", recs[0]["weight"])
}

func TestCSVLoaderMissingColumn(t *testing.T) {
	path := writeFile(t, "a,b\n1,2\n")

	err := NewCSVLoader(path, CSVOptions{}).Load(context.Background(), func(map[string]string) error { return nil })
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindValidation))
	assert.Contains(t, err.Error(), `"source"`)
}

func TestCSVLoaderSkipsEmptyRows(t *testing.T) {
	path := writeFile(t, "source,target\nalice,https://x/1\n,\nbob,https://x/2\n")

	recs := collect(t, NewCSVLoader(path, CSVOptions{}))
	assert.Len(t, recs, 2)
}

func TestCSVLoaderFeedsGraphBuilder(t *testing.T) {
	path := writeFile(t, "source,target,type\n"+
		"alice,https://x/1,issue_created\n"+
		"bob,https://x/1,issue_comment\n"+
		"alice,https://x/1,issue_comment\n")

	g, err := multigraph.Build(context.Background(), NewCSVLoader(path, CSVOptions{}))
	require.NoError(t, err)
	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 3, g.EdgeCount())
	assert.Equal(t, multigraph.BipartiteResource, g.Bipartite("https://x/1"))
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edges.db")
	ctx := context.Background()

	s, err := sink.NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, edge.Edge{
		Type: "issue_created", Login: "alice", URL: "https://x/1",
		Title: "Fix bug", CreatedAt: "2024-01-01T00:00:00Z",
	}))
	require.NoError(t, s.Save(ctx, edge.Edge{
		Type: "issue_comment", Login: "bob",
		URL: "https://x/1#c1", ParentURL: "https://x/1",
		CreatedAt: "2024-01-02T00:00:00Z",
	}))
	require.NoError(t, s.Finalize(ctx))

	g, err := multigraph.Build(ctx, NewSQLiteLoader(path))
	require.NoError(t, err)
	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, multigraph.BipartiteActor, g.Bipartite("bob"))
}
