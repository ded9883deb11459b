package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/icebreakerlabs/ghgraph/internal/collect"
	"github.com/icebreakerlabs/ghgraph/internal/edge"
	"github.com/icebreakerlabs/ghgraph/internal/gh"
	"github.com/icebreakerlabs/ghgraph/internal/load"
	"github.com/icebreakerlabs/ghgraph/internal/mcp"
	"github.com/icebreakerlabs/ghgraph/internal/multigraph"
	"github.com/icebreakerlabs/ghgraph/internal/sink"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline as an MCP server over stdio",
	Long: `Runs a Model Context Protocol server exposing three tools: collect
(fetch activity into Neo4j), analyze (graph statistics with optional
filters) and get_network (the filtered edge list). Requests arrive as
JSON-RPC on stdin; responses go to stdout.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := logger.WithField("cmd", "serve")

	runCollect := func(ctx context.Context, targets []collect.Target, since, until time.Time) (*collect.Summary, error) {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		client, err := gh.NewGraphQLClient(cfg.GitHub.Token, log, gh.WithRateLimit(cfg.GitHub.RateLimit))
		if err != nil {
			return nil, err
		}
		dest, err := sink.NewNeo4j(ctx, neo4jConfig(), log)
		if err != nil {
			return nil, err
		}
		collector := collect.New(client, edge.NewExtractor(cfg.Collect.BotAllowlist), dest, since,
			collect.WithLogger(log), collect.WithUntil(until))
		return collector.Run(ctx, targets)
	}

	loadGraph := func(ctx context.Context, cypher string) (*multigraph.Graph, error) {
		return multigraph.Build(ctx, load.NewNeo4jLoader(neo4jConfig(), cypher))
	}

	handler := mcp.NewHandler("ghgraph", Version)
	handler.RegisterTool("collect", mcp.NewCollectTool(runCollect, cfg.Collect.Days))
	handler.RegisterTool("analyze", mcp.NewAnalyzeTool(loadGraph))
	handler.RegisterTool("get_network", mcp.NewNetworkTool(loadGraph))

	log.Info("mcp server listening on stdio")
	return mcp.NewStdioTransport(handler).Serve(ctx)
}
