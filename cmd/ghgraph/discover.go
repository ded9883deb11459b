package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/icebreakerlabs/ghgraph/internal/collect"
	"github.com/icebreakerlabs/ghgraph/internal/errors"
	"github.com/icebreakerlabs/ghgraph/internal/gh"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover the users active in a repository",
	Long: `Lists the union of a repository's contributors, collaborators and
recently active users. With --targets-out the result is written as a
collection targets file ready for ghgraph collect.`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().String("owner", "", "repository owner")
	discoverCmd.Flags().String("repo", "", "repository name")
	discoverCmd.Flags().Int("days", 30, "recent-activity window in days")
	discoverCmd.Flags().String("targets-out", "", "write a collect targets file instead of listing logins")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	owner, _ := cmd.Flags().GetString("owner")
	repo, _ := cmd.Flags().GetString("repo")
	if owner == "" || repo == "" {
		return errors.ValidationErrorf("--owner and --repo are required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	discovery, err := gh.NewDiscovery(cfg.GitHub.Token, logger.WithField("cmd", "discover"))
	if err != nil {
		return err
	}

	days, _ := cmd.Flags().GetInt("days")
	users, err := discovery.Users(ctx, owner, repo, time.Now().AddDate(0, 0, -days))
	if err != nil {
		return err
	}

	if outPath, _ := cmd.Flags().GetString("targets-out"); outPath != "" {
		targets := make([]collect.Target, 0, len(users))
		for _, u := range users {
			targets = append(targets, collect.Target{Username: u, Owner: owner, Repo: repo})
		}
		data, err := json.MarshalIndent(targets, "", "  ")
		if err != nil {
			return errors.Wrap(err, errors.KindInternal, "marshal targets")
		}
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return errors.PersistenceError(err, "write targets file").WithContext("path", outPath)
		}
		logger.WithFields(map[string]any{"users": len(users), "path": outPath}).Info("targets written")
		return nil
	}

	for _, u := range users {
		fmt.Println(u)
	}
	return nil
}
