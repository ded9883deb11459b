package edge

import (
	"testing"

	"github.com/icebreakerlabs/ghgraph/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func edgesWrapper(nodes ...map[string]any) map[string]any {
	items := make([]any, 0, len(nodes))
	for _, n := range nodes {
		items = append(items, map[string]any{"node": n})
	}
	return map[string]any{"edges": items}
}

func nodesWrapper(nodes ...map[string]any) map[string]any {
	items := make([]any, 0, len(nodes))
	for _, n := range nodes {
		items = append(items, n)
	}
	return map[string]any{"nodes": items}
}

func TestExtractEmptyPayload(t *testing.T) {
	x := NewExtractor(nil)

	tests := []struct {
		name    string
		payload map[string]any
	}{
		{"nil payload", nil},
		{"empty payload", map[string]any{}},
		{"nil category", map[string]any{"issuesCreated": nil}},
		{"category without lists", map[string]any{"issuesCreated": map[string]any{}}},
		{"empty edges list", map[string]any{"prsCreated": map[string]any{"edges": []any{}}}},
		{"empty nodes list", map[string]any{"discussionsCreated": map[string]any{"nodes": []any{}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges, err := x.Extract(tt.payload, "alice")
			require.NoError(t, err)
			assert.Empty(t, edges)
		})
	}
}

func TestExtractIssueCreatedWithMention(t *testing.T) {
	x := NewExtractor(nil)

	payload := map[string]any{
		"issuesCreated": edgesWrapper(map[string]any{
			"title":     "Fix bug",
			"createdAt": "2024-05-01T10:00:00Z",
			"url":       "https://x/1",
			"bodyText":  "cc @bob",
		}),
	}

	edges, err := x.Extract(payload, "alice")
	require.NoError(t, err)
	require.Len(t, edges, 2)

	created := edges[0]
	assert.Equal(t, "issue_created", created.Type)
	assert.Equal(t, "alice", created.Source())
	assert.Equal(t, "https://x/1", created.Target())
	assert.Equal(t, "Fix bug", created.Title)
	assert.Equal(t, "2024-05-01T10:00:00Z", created.CreatedAt)

	mentioned := edges[1]
	assert.Equal(t, "issue_mentioned", mentioned.Type)
	assert.Equal(t, "bob", mentioned.Source())
	assert.Equal(t, "https://x/1", mentioned.Target())
	assert.Equal(t, created.CreatedAt, mentioned.CreatedAt)
}

func TestExtractBothNestingShapes(t *testing.T) {
	// The API nests equivalent data under edges[].node for some categories
	// and nodes[] for others; both must work everywhere.
	x := NewExtractor(nil)
	issue := map[string]any{"title": "t", "createdAt": "2024-01-01T00:00:00Z", "url": "https://x/9"}

	for name, wrapper := range map[string]map[string]any{
		"edges shape": edgesWrapper(issue),
		"nodes shape": nodesWrapper(issue),
	} {
		t.Run(name, func(t *testing.T) {
			edges, err := x.Extract(map[string]any{"issuesCreated": wrapper}, "alice")
			require.NoError(t, err)
			require.Len(t, edges, 1)
			assert.Equal(t, "issue_created", edges[0].Type)
			assert.Equal(t, "https://x/9", edges[0].Target())
		})
	}
}

func TestExtractMentionCountMatchesTokens(t *testing.T) {
	x := NewExtractor(nil)

	payload := map[string]any{
		"prsCreated": edgesWrapper(map[string]any{
			"title":     "Refactor",
			"createdAt": "2024-02-02T00:00:00Z",
			"url":       "https://x/pr/2",
			"bodyText":  "@a @b @a",
		}),
	}

	edges, err := x.Extract(payload, "carol")
	require.NoError(t, err)
	require.Len(t, edges, 4)

	assert.Equal(t, "pr_created", edges[0].Type)
	for i, wantLogin := range []string{"a", "b", "a"} {
		m := edges[i+1]
		assert.Equal(t, "pr_mentioned", m.Type)
		assert.Equal(t, wantLogin, m.Source())
		assert.Equal(t, edges[0].Target(), m.Target())
		assert.Equal(t, edges[0].CreatedAt, m.CreatedAt)
	}
}

func TestExtractIssueComments(t *testing.T) {
	x := NewExtractor(nil)

	payload := map[string]any{
		"issueComments": nodesWrapper(map[string]any{
			"title": "Broken build",
			"url":   "https://x/issue/7",
			"comments": nodesWrapper(
				map[string]any{
					"createdAt": "2024-03-03T00:00:00Z",
					"url":       "https://x/issue/7#comment-1",
					"bodyText":  "agreed, @dave should know",
					"author":    map[string]any{"login": "erin"},
				},
			),
		}),
	}

	edges, err := x.Extract(payload, "alice")
	require.NoError(t, err)
	require.Len(t, edges, 2)

	comment := edges[0]
	assert.Equal(t, "issue_comment", comment.Type)
	assert.Equal(t, "erin", comment.Source())
	assert.Equal(t, "https://x/issue/7", comment.Target())
	assert.Equal(t, "https://x/issue/7#comment-1", comment.URL)

	mentioned := edges[1]
	assert.Equal(t, "issue_comment_mentioned", mentioned.Type)
	assert.Equal(t, "dave", mentioned.Source())
	assert.Equal(t, "https://x/issue/7", mentioned.Target())
}

func TestExtractReviewStates(t *testing.T) {
	x := NewExtractor(nil)

	payload := map[string]any{
		"prReviewsAndCommits": edgesWrapper(map[string]any{
			"url": "https://x/pr/5",
			"reviews": nodesWrapper(
				map[string]any{"state": "APPROVED", "createdAt": "2024-04-04T00:00:00Z", "url": "https://x/pr/5#r1"},
				map[string]any{"state": "CHANGES_REQUESTED", "createdAt": "2024-04-05T00:00:00Z", "url": "https://x/pr/5#r2"},
				map[string]any{"createdAt": "2024-04-06T00:00:00Z", "url": "https://x/pr/5#r3"},
			),
		}),
	}

	edges, err := x.Extract(payload, "frank")
	require.NoError(t, err)
	require.Len(t, edges, 3)

	assert.Equal(t, "pr_review_approved", edges[0].Type)
	assert.Equal(t, "pr_review_changes_requested", edges[1].Type)
	assert.Equal(t, "pr_review", edges[2].Type)
	for _, e := range edges {
		assert.Equal(t, "frank", e.Source())
		assert.Equal(t, "https://x/pr/5", e.Target())
	}
}

func TestExtractDiscussionComments(t *testing.T) {
	x := NewExtractor(nil)

	payload := map[string]any{
		"discussionComments": nodesWrapper(map[string]any{
			"url": "https://x/d/3",
			"comments": nodesWrapper(map[string]any{
				"createdAt": "2024-06-06T00:00:00Z",
				"url":       "https://x/d/3#c9",
				"author":    map[string]any{"login": "gail"},
			}),
		}),
	}

	edges, err := x.Extract(payload, "alice")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "discussion_comment", edges[0].Type)
	assert.Equal(t, "gail", edges[0].Source())
	assert.Equal(t, "https://x/d/3", edges[0].Target())
}

func TestExtractMalformedCategoryIsIsolated(t *testing.T) {
	x := NewExtractor(nil)

	payload := map[string]any{
		"issuesCreated": "definitely not an object",
		"discussionsCreated": nodesWrapper(map[string]any{
			"title":     "RFC",
			"createdAt": "2024-07-07T00:00:00Z",
			"url":       "https://x/d/1",
		}),
	}

	edges, err := x.Extract(payload, "alice")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindExtraction))
	assert.Contains(t, err.Error(), "issuesCreated")

	// The healthy category still produced its edges.
	require.Len(t, edges, 1)
	assert.Equal(t, "discussion_created", edges[0].Type)
}

func TestExtractBotMetadata(t *testing.T) {
	x := NewExtractor([]string{"ninesappbot"})

	payload := map[string]any{
		"issuesCreated": edgesWrapper(map[string]any{
			"title":     "nightly report",
			"createdAt": "2024-08-08T00:00:00Z",
			"url":       "https://x/1",
			"bodyText":  "cc @dependabot[bot] and @alice",
		}),
	}

	edges, err := x.Extract(payload, "ninesappbot")
	require.NoError(t, err)
	require.Len(t, edges, 3)

	assert.True(t, edges[0].FromBot, "allowlisted login is a bot")
	// "[bot]" is not matchable by the mention pattern, so the mention is the
	// plain login; classification still applies to what was captured.
	assert.Equal(t, "dependabot", edges[1].Source())
	assert.False(t, edges[1].FromBot)
	assert.Equal(t, "alice", edges[2].Source())
	assert.False(t, edges[2].FromBot)
}

func TestEdgeRowRoundTrip(t *testing.T) {
	e := Edge{
		Type:      "issue_comment",
		CreatedAt: "2024-09-09T00:00:00Z",
		Login:     "alice",
		URL:       "https://x/issue/4#c1",
		ParentURL: "https://x/issue/4",
	}

	row := e.Row()
	assert.Equal(t, "alice", row.Source)
	assert.Equal(t, "https://x/issue/4", row.Target)
	assert.Equal(t, "https://x/issue/4#c1", row.URL)

	rec := row.Record()
	assert.Equal(t, "alice", rec["source"])
	assert.Equal(t, "https://x/issue/4", rec["target"])
	assert.Equal(t, "issue_comment", rec["type"])
}
