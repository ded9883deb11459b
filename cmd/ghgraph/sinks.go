package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/icebreakerlabs/ghgraph/internal/errors"
	"github.com/icebreakerlabs/ghgraph/internal/load"
	"github.com/icebreakerlabs/ghgraph/internal/multigraph"
	"github.com/icebreakerlabs/ghgraph/internal/sink"
)

// neo4jConfig maps the loaded config onto the sink package's settings.
func neo4jConfig() sink.Neo4jConfig {
	return sink.Neo4jConfig{
		URI:      cfg.Neo4j.URI,
		User:     cfg.Neo4j.User,
		Password: cfg.Neo4j.Password,
		Database: cfg.Neo4j.Database,
	}
}

// buildSink creates the edge destination selected by --sink.
func buildSink(ctx context.Context, kind, path string, logger *logrus.Entry) (sink.Sink, error) {
	switch kind {
	case "print":
		return sink.NewPrint(os.Stdout, logger), nil
	case "csv":
		if path == "" {
			return nil, errors.ValidationErrorf("--out is required for the csv sink")
		}
		return sink.NewCSV(path)
	case "sqlite":
		if path == "" {
			return nil, errors.ValidationErrorf("--out is required for the sqlite sink")
		}
		return sink.NewSQLite(path)
	case "neo4j":
		return sink.NewNeo4j(ctx, neo4jConfig(), logger)
	default:
		return nil, errors.ValidationErrorf("unknown sink %q (print, csv, sqlite, neo4j)", kind)
	}
}

// buildSource creates the record source selected by --from.
func buildSource(kind, path, sourceCol, targetCol string) (multigraph.RecordSource, error) {
	switch kind {
	case "csv":
		if path == "" {
			return nil, errors.ValidationErrorf("--path is required for the csv source")
		}
		return load.NewCSVLoader(path, load.CSVOptions{SourceColumn: sourceCol, TargetColumn: targetCol}), nil
	case "sqlite":
		if path == "" {
			return nil, errors.ValidationErrorf("--path is required for the sqlite source")
		}
		return load.NewSQLiteLoader(path), nil
	case "neo4j":
		return load.NewNeo4jLoader(neo4jConfig(), ""), nil
	default:
		return nil, errors.ValidationErrorf("unknown source %q (csv, sqlite, neo4j)", kind)
	}
}
