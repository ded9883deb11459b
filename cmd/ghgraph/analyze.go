package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/icebreakerlabs/ghgraph/internal/analyze"
	"github.com/icebreakerlabs/ghgraph/internal/multigraph"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Build the multigraph from stored edges and report network statistics",
	Long: `Loads edges from a CSV file, a SQLite database or Neo4j, assembles the
directed multigraph, and reports degree statistics, centrality rankings,
component structure and edge type distribution.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("from", "csv", "edge source: csv, sqlite, neo4j")
	analyzeCmd.Flags().String("path", "", "input path for file-backed sources")
	analyzeCmd.Flags().String("source-col", "", "CSV column holding edge sources (default: source)")
	analyzeCmd.Flags().String("target-col", "", "CSV column holding edge targets (default: target)")
	analyzeCmd.Flags().String("format", "text", "output format: text, json, yaml")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	from, _ := cmd.Flags().GetString("from")
	path, _ := cmd.Flags().GetString("path")
	sourceCol, _ := cmd.Flags().GetString("source-col")
	targetCol, _ := cmd.Flags().GetString("target-col")

	src, err := buildSource(from, path, sourceCol, targetCol)
	if err != nil {
		return err
	}

	g, err := multigraph.Build(ctx, src)
	if err != nil {
		return err
	}
	logger.WithFields(map[string]any{
		"nodes": g.NodeCount(),
		"edges": g.EdgeCount(),
	}).Debug("graph built")

	format, _ := cmd.Flags().GetString("format")
	return analyze.WriteReport(os.Stdout, analyze.Analyze(g), format)
}
