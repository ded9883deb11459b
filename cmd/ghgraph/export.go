package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/icebreakerlabs/ghgraph/internal/analyze"
	"github.com/icebreakerlabs/ghgraph/internal/errors"
	"github.com/icebreakerlabs/ghgraph/internal/multigraph"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the stored edge list",
	Long: `Loads edges from storage and writes them out as a flat edge list.
Useful for moving data between backends or feeding other graph tools.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("from", "csv", "edge source: csv, sqlite, neo4j")
	exportCmd.Flags().String("path", "", "input path for file-backed sources")
	exportCmd.Flags().String("format", "json", "output format: json, yaml, csv")
	exportCmd.Flags().String("out", "", "output path (default: stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	from, _ := cmd.Flags().GetString("from")
	path, _ := cmd.Flags().GetString("path")
	src, err := buildSource(from, path, "", "")
	if err != nil {
		return err
	}

	g, err := multigraph.Build(ctx, src)
	if err != nil {
		return err
	}
	edges := analyze.ExportEdges(g)

	out := os.Stdout
	if outPath, _ := cmd.Flags().GetString("out"); outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return errors.PersistenceError(err, "create output file").WithContext("path", outPath)
		}
		defer f.Close()
		out = f
	}

	format, _ := cmd.Flags().GetString("format")
	if err := analyze.WriteEdges(out, edges, format); err != nil {
		return err
	}
	logger.WithField("edges", len(edges)).Info("export finished")
	return nil
}
