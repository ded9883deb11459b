package multigraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRecordDropsIncomplete(t *testing.T) {
	tests := []struct {
		name string
		rec  map[string]string
	}{
		{"no endpoints", map[string]string{"type": "x"}},
		{"missing target", map[string]string{"source": "alice", "type": "x"}},
		{"missing source", map[string]string{"target": "https://x/1", "type": "x"}},
		{"empty source", map[string]string{"source": "", "target": "https://x/1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			assert.False(t, g.AddRecord(tt.rec))
			assert.Equal(t, 0, g.NodeCount())
			assert.Equal(t, 0, g.EdgeCount())
		})
	}
}

func TestBipartiteClassification(t *testing.T) {
	g := New()
	g.AddRecord(map[string]string{"source": "alice", "target": "https://x/1"})
	g.AddRecord(map[string]string{"source": "https://x/1", "target": "alice"})

	// Classification happens once at insertion and does not depend on which
	// side of a record introduced the node.
	assert.Equal(t, BipartiteActor, g.Bipartite("alice"))
	assert.Equal(t, BipartiteResource, g.Bipartite("https://x/1"))
	assert.Equal(t, -1, g.Bipartite("nobody"))
}

func TestParallelEdgesPreserved(t *testing.T) {
	g := New()
	require.True(t, g.AddRecord(map[string]string{"source": "alice", "target": "https://x/1", "type": "issue_created"}))
	require.True(t, g.AddRecord(map[string]string{"source": "alice", "target": "https://x/1", "type": "issue_comment"}))

	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())

	types := []string{g.Edges()[0].Attrs["type"], g.Edges()[1].Attrs["type"]}
	assert.ElementsMatch(t, []string{"issue_created", "issue_comment"}, types)

	// Parallel edges contribute to degree individually, neighbors are distinct.
	assert.Equal(t, 2, g.Degree("alice"))
	assert.Equal(t, []string{"https://x/1"}, g.Neighbors("alice"))
}

func TestEdgeAttrsExcludeEndpoints(t *testing.T) {
	g := New()
	g.AddRecord(map[string]string{
		"source":     "alice",
		"target":     "https://x/1",
		"type":       "issue_created",
		"created_at": "2024-01-01T00:00:00Z",
		"title":      "Fix bug",
	})

	e := g.Edges()[0]
	assert.Equal(t, "alice", e.Source)
	assert.Equal(t, "https://x/1", e.Target)
	assert.NotContains(t, e.Attrs, "source")
	assert.NotContains(t, e.Attrs, "target")
	assert.Equal(t, "issue_created", e.Attrs["type"])
	assert.Equal(t, "Fix bug", e.Attrs["title"])
}

func TestDegreesAndNeighbors(t *testing.T) {
	g := New()
	g.AddRecord(map[string]string{"source": "alice", "target": "https://x/1", "type": "a"})
	g.AddRecord(map[string]string{"source": "bob", "target": "https://x/1", "type": "b"})
	g.AddRecord(map[string]string{"source": "alice", "target": "https://x/2", "type": "c"})

	assert.Equal(t, 2, g.OutDegree("alice"))
	assert.Equal(t, 0, g.InDegree("alice"))
	assert.Equal(t, 2, g.InDegree("https://x/1"))
	assert.Equal(t, 2, g.Degree("https://x/1"))

	assert.ElementsMatch(t, []string{"https://x/1", "https://x/2"}, g.OutNeighbors("alice"))
	assert.ElementsMatch(t, []string{"alice", "bob"}, g.InNeighbors("https://x/1"))
}

func TestBuildFromSource(t *testing.T) {
	records := RecordSlice{
		{"source": "alice", "target": "https://x/1", "type": "issue_created"},
		{"type": "orphan"},
		{"source": "bob", "target": "https://x/1", "type": "issue_comment"},
	}

	g, err := Build(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())
}

func TestBuildEndToEndScenario(t *testing.T) {
	// Two edges as extracted for: alice creates https://x/1 mentioning bob.
	records := RecordSlice{
		{"source": "alice", "target": "https://x/1", "type": "issue_created", "created_at": "2024-01-01T00:00:00Z"},
		{"source": "bob", "target": "https://x/1", "type": "issue_mentioned", "created_at": "2024-01-01T00:00:00Z"},
	}

	g, err := Build(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, BipartiteActor, g.Bipartite("alice"))
	assert.Equal(t, BipartiteActor, g.Bipartite("bob"))
	assert.Equal(t, BipartiteResource, g.Bipartite("https://x/1"))
}
