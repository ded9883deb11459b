package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/icebreakerlabs/ghgraph/internal/collect"
	"github.com/icebreakerlabs/ghgraph/internal/edge"
	"github.com/icebreakerlabs/ghgraph/internal/errors"
	"github.com/icebreakerlabs/ghgraph/internal/gh"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Fetch GitHub activity and persist it as typed edges",
	Long: `Fetches recent activity for one user or a batch of targets and writes
the extracted edges to the selected sink. A targets file is a JSON array of
{"username": ..., "owner": ..., "repo": ...} objects.`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().String("user", "", "GitHub username to collect")
	collectCmd.Flags().String("owner", "", "repository owner")
	collectCmd.Flags().String("repo", "", "repository name")
	collectCmd.Flags().String("targets", "", "JSON file with a batch of collection targets")
	collectCmd.Flags().Int("days", 0, "days of history to fetch (default from config)")
	collectCmd.Flags().String("since", "", "start date (ISO), overrides --days")
	collectCmd.Flags().String("until", "", "end date (ISO), defaults to now")
	collectCmd.Flags().String("sink", "print", "edge destination: print, csv, sqlite, neo4j")
	collectCmd.Flags().String("out", "", "output path for file-backed sinks")
	collectCmd.Flags().Bool("resume", false, "skip targets recorded in the checkpoint database")

	collectCmd.MarkFlagsMutuallyExclusive("targets", "user")
}

func runCollect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := logger.WithField("cmd", "collect")

	if err := cfg.Validate(); err != nil {
		return err
	}

	targets, err := collectTargets(cmd)
	if err != nil {
		return err
	}

	since, err := sinceFromFlags(cmd)
	if err != nil {
		return err
	}
	until, err := untilFromFlags(cmd)
	if err != nil {
		return err
	}

	sinkKind, _ := cmd.Flags().GetString("sink")
	outPath, _ := cmd.Flags().GetString("out")
	dest, err := buildSink(ctx, sinkKind, outPath, log)
	if err != nil {
		return err
	}

	client, err := gh.NewGraphQLClient(cfg.GitHub.Token, log, gh.WithRateLimit(cfg.GitHub.RateLimit))
	if err != nil {
		return err
	}

	opts := []collect.Option{collect.WithLogger(log), collect.WithUntil(until)}
	if resume, _ := cmd.Flags().GetBool("resume"); resume {
		path := cfg.Collect.CheckpointPath
		if path == "" {
			path = ".ghgraph/checkpoint.db"
		}
		if err := os.MkdirAll(".ghgraph", 0o755); err != nil {
			return errors.PersistenceError(err, "create checkpoint directory")
		}
		cp, err := collect.OpenCheckpoint(path)
		if err != nil {
			return err
		}
		defer cp.Close()
		opts = append(opts, collect.WithCheckpoint(cp))
	}

	extractor := edge.NewExtractor(cfg.Collect.BotAllowlist)
	collector := collect.New(client, extractor, dest, since, opts...)

	summary, err := collector.Run(ctx, targets)
	if err != nil {
		return err
	}

	log.WithFields(map[string]any{
		"processed": summary.Processed,
		"skipped":   summary.Skipped,
		"edges":     summary.Edges,
		"failed":    len(summary.Errors),
	}).Info("collection finished")
	for key, terr := range summary.Errors {
		log.WithField("repo", key).WithError(terr).Warn("target failed")
	}
	if len(summary.Errors) > 0 {
		return fmt.Errorf("%d of %d targets failed", len(summary.Errors), len(targets))
	}
	return nil
}

// collectTargets assembles the batch from --targets or the single-target
// flags.
func collectTargets(cmd *cobra.Command) ([]collect.Target, error) {
	if path, _ := cmd.Flags().GetString("targets"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, errors.KindValidation, "read targets file").WithContext("path", path)
		}
		var targets []collect.Target
		if err := json.Unmarshal(data, &targets); err != nil {
			return nil, errors.Wrap(err, errors.KindValidation, "parse targets file").WithContext("path", path)
		}
		return targets, nil
	}

	user, _ := cmd.Flags().GetString("user")
	owner, _ := cmd.Flags().GetString("owner")
	repo, _ := cmd.Flags().GetString("repo")
	if user == "" || owner == "" || repo == "" {
		return nil, errors.ValidationErrorf("either --targets or all of --user, --owner and --repo are required")
	}
	return []collect.Target{{Username: user, Owner: owner, Repo: repo}}, nil
}

func sinceFromFlags(cmd *cobra.Command) (time.Time, error) {
	if sinceISO, _ := cmd.Flags().GetString("since"); sinceISO != "" {
		parsed, err := time.Parse(time.RFC3339, sinceISO)
		if err != nil {
			return time.Time{}, errors.ValidationErrorf("--since is not a valid ISO timestamp: %s", sinceISO)
		}
		return parsed, nil
	}
	days, _ := cmd.Flags().GetInt("days")
	if days <= 0 {
		days = cfg.Collect.Days
	}
	return time.Now().AddDate(0, 0, -days), nil
}

// untilFromFlags returns the window end, or the zero time when the window
// should stay open-ended.
func untilFromFlags(cmd *cobra.Command) (time.Time, error) {
	untilISO, _ := cmd.Flags().GetString("until")
	if untilISO == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339, untilISO)
	if err != nil {
		return time.Time{}, errors.ValidationErrorf("--until is not a valid ISO timestamp: %s", untilISO)
	}
	return parsed, nil
}
