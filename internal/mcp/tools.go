package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/icebreakerlabs/ghgraph/internal/analyze"
	"github.com/icebreakerlabs/ghgraph/internal/collect"
	"github.com/icebreakerlabs/ghgraph/internal/errors"
	"github.com/icebreakerlabs/ghgraph/internal/multigraph"
)

// ValidRelationshipTypes enumerates every relationship type the analyze and
// get_network tools accept as a filter: the upper-cased edge kinds the
// collection pipeline produces.
var ValidRelationshipTypes = []string{
	"DISCUSSION_COMMENT",
	"DISCUSSION_COMMENT_MENTIONED",
	"DISCUSSION_CREATED",
	"DISCUSSION_MENTIONED",
	"ISSUE_COMMENT",
	"ISSUE_COMMENT_MENTIONED",
	"ISSUE_CREATED",
	"ISSUE_MENTIONED",
	"PR_COMMENT_MENTIONED",
	"PR_CREATED",
	"PR_MENTIONED",
	"PR_REVIEW",
	"PR_REVIEW_APPROVED",
	"PR_REVIEW_CHANGES_REQUESTED",
	"PR_REVIEW_COMMENTED",
	"PR_REVIEW_DISMISSED",
}

// validateRelationshipTypes checks a filter list against the known set. An
// empty list is valid and means no filtering.
func validateRelationshipTypes(types []string) error {
	var invalid []string
	for _, t := range types {
		if !isValidRelationshipType(t) {
			invalid = append(invalid, t)
		}
	}
	if len(invalid) > 0 {
		return errors.ValidationErrorf("invalid relationship types: %s", strings.Join(invalid, ", "))
	}
	return nil
}

func isValidRelationshipType(t string) bool {
	for _, v := range ValidRelationshipTypes {
		if t == v {
			return true
		}
	}
	return false
}

// buildFilterCypher builds the relationship query for the given filters. Both
// filter dimensions are validated before interpolation: types against the
// fixed enumeration, dates by taking only the date part of parseable ISO
// timestamps.
func buildFilterCypher(dates, relationshipTypes []string) string {
	var sb strings.Builder
	sb.WriteString("MATCH (source)-[rel]->(target)\n")

	var conditions []string
	if len(dates) > 0 {
		var dateConds []string
		for _, d := range dates {
			day := d
			if t, err := time.Parse(time.RFC3339, strings.Replace(d, "Z", "+00:00", 1)); err == nil {
				day = t.Format("2006-01-02")
			} else if idx := strings.Index(d, "T"); idx > 0 {
				day = d[:idx]
			}
			dateConds = append(dateConds, fmt.Sprintf("rel.created_at STARTS WITH %q", day))
		}
		conditions = append(conditions, "("+strings.Join(dateConds, " OR ")+")")
	}
	if len(relationshipTypes) > 0 {
		var typeConds []string
		for _, t := range relationshipTypes {
			typeConds = append(typeConds, fmt.Sprintf("TYPE(rel) = %q", t))
		}
		conditions = append(conditions, "("+strings.Join(typeConds, " OR ")+")")
	}
	if len(conditions) > 0 {
		sb.WriteString("WHERE " + strings.Join(conditions, " AND ") + "\n")
	}

	sb.WriteString("RETURN source.name AS source, target.url AS target, ")
	sb.WriteString("type(rel) AS type, properties(rel) AS props")
	return sb.String()
}

// CollectFunc runs a collection batch into the configured sink. A zero until
// leaves the activity window open-ended.
type CollectFunc func(ctx context.Context, targets []collect.Target, since, until time.Time) (*collect.Summary, error)

// LoadGraphFunc builds a graph from storage using the given filter query.
// An empty query selects everything.
type LoadGraphFunc func(ctx context.Context, cypher string) (*multigraph.Graph, error)

// CollectTool triggers a collection run for one user/repository pair.
type CollectTool struct {
	run         CollectFunc
	defaultDays int
}

// NewCollectTool wires the collect tool to a runner.
func NewCollectTool(run CollectFunc, defaultDays int) *CollectTool {
	if defaultDays <= 0 {
		defaultDays = 7
	}
	return &CollectTool{run: run, defaultDays: defaultDays}
}

// Schema implements Tool.
func (t *CollectTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"user":      map[string]any{"type": "string", "description": "GitHub username"},
			"owner":     map[string]any{"type": "string", "description": "Repository owner"},
			"repo":      map[string]any{"type": "string", "description": "Repository name"},
			"since_iso": map[string]any{"type": "string", "description": "Start date in ISO format"},
			"until_iso": map[string]any{"type": "string", "description": "End date in ISO format, defaults to now"},
		},
		"required": []string{"user", "owner", "repo"},
	}
}

// Execute implements Tool.
func (t *CollectTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	user := stringParam(args, "user")
	owner := stringParam(args, "owner")
	repo := stringParam(args, "repo")
	if user == "" || owner == "" || repo == "" {
		return nil, errors.ValidationErrorf("user, owner and repo are all required")
	}

	since := time.Now().AddDate(0, 0, -t.defaultDays)
	if sinceISO := stringParam(args, "since_iso"); sinceISO != "" {
		parsed, err := time.Parse(time.RFC3339, sinceISO)
		if err != nil {
			return nil, errors.ValidationErrorf("since_iso is not a valid ISO timestamp: %s", sinceISO)
		}
		since = parsed
	}
	var until time.Time
	if untilISO := stringParam(args, "until_iso"); untilISO != "" {
		parsed, err := time.Parse(time.RFC3339, untilISO)
		if err != nil {
			return nil, errors.ValidationErrorf("until_iso is not a valid ISO timestamp: %s", untilISO)
		}
		until = parsed
	}

	summary, err := t.run(ctx, []collect.Target{{Username: user, Owner: owner, Repo: repo}}, since, until)
	if err != nil {
		return nil, err
	}

	results := make(map[string]any)
	for key, terr := range summary.Errors {
		results[key] = map[string]any{"error": terr.Error()}
	}
	if len(summary.Errors) == 0 {
		results[owner+"/"+repo] = map[string]any{"success": true}
	}
	return map[string]any{
		"message": fmt.Sprintf("Processed repository %s/%s for user %s", owner, repo, user),
		"edges":   summary.Edges,
		"results": results,
	}, nil
}

// AnalyzeTool loads the stored graph with optional filters and returns the
// statistics report.
type AnalyzeTool struct {
	load LoadGraphFunc
}

// NewAnalyzeTool wires the analyze tool to a graph loader.
func NewAnalyzeTool(load LoadGraphFunc) *AnalyzeTool {
	return &AnalyzeTool{load: load}
}

// Schema implements Tool.
func (t *AnalyzeTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"dates": map[string]any{
				"type": "array", "items": map[string]any{"type": "string"},
				"description": "Days to include, ISO dates",
			},
			"relationship_types": map[string]any{
				"type": "array", "items": map[string]any{"type": "string"},
				"description": "Relationship types to include",
			},
		},
	}
}

// Execute implements Tool.
func (t *AnalyzeTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	dates := stringListParam(args, "dates")
	relTypes := stringListParam(args, "relationship_types")
	if err := validateRelationshipTypes(relTypes); err != nil {
		return map[string]any{
			"error":       err.Error(),
			"valid_types": ValidRelationshipTypes,
		}, nil
	}

	g, err := t.load(ctx, buildFilterCypher(dates, relTypes))
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"message":          "Analysis completed successfully",
		"analysis_results": analyze.Analyze(g),
		"filters":          map[string]any{"dates": dates, "relationship_types": relTypes},
	}, nil
}

// NetworkTool returns the filtered edge list in a form meant for LLM
// consumption: the list itself is a JSON string payload.
type NetworkTool struct {
	load LoadGraphFunc
}

// NewNetworkTool wires the get_network tool to a graph loader.
func NewNetworkTool(load LoadGraphFunc) *NetworkTool {
	return &NetworkTool{load: load}
}

// Schema implements Tool.
func (t *NetworkTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"dates": map[string]any{
				"type": "array", "items": map[string]any{"type": "string"},
				"description": "Days to include, ISO dates",
			},
			"relationship_types": map[string]any{
				"type": "array", "items": map[string]any{"type": "string"},
				"description": "Relationship types to include",
			},
		},
	}
}

// Execute implements Tool.
func (t *NetworkTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	dates := stringListParam(args, "dates")
	relTypes := stringListParam(args, "relationship_types")
	if err := validateRelationshipTypes(relTypes); err != nil {
		return map[string]any{
			"error":       err.Error(),
			"valid_types": ValidRelationshipTypes,
		}, nil
	}

	g, err := t.load(ctx, buildFilterCypher(dates, relTypes))
	if err != nil {
		return nil, err
	}

	edges := analyze.ExportEdges(g)
	return map[string]any{
		"message":    "Network edge list generated successfully",
		"edge_count": len(edges),
		"edge_list":  mustJSON(edges),
		"filters":    map[string]any{"dates": dates, "relationship_types": relTypes},
	}, nil
}
