package gh

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/icebreakerlabs/ghgraph/internal/errors"
)

// Discovery finds the users worth collecting for a repository: contributors,
// collaborators and anyone active recently. Uses the REST API because the
// contributor and collaborator listings have no GraphQL equivalent worth the
// pagination complexity.
type Discovery struct {
	client  *github.Client
	limiter *rate.Limiter
	logger  *logrus.Entry
}

// NewDiscovery creates a discovery client authenticated with the given token.
func NewDiscovery(token string, logger *logrus.Entry) (*Discovery, error) {
	if token == "" {
		return nil, errors.ConfigError("github token not provided")
	}
	return &Discovery{
		client:  github.NewClient(nil).WithAuthToken(token),
		limiter: rate.NewLimiter(rate.Limit(5), 1),
		logger:  logger,
	}, nil
}

// WithRESTClient swaps the underlying REST client. Used by tests.
func (d *Discovery) WithRESTClient(c *github.Client) *Discovery {
	d.client = c
	return d
}

// Users returns the deduplicated union of contributors, collaborators and
// recently active users, sorted for stable output. The three listings are
// fetched concurrently; a failure in any one fails the discovery.
func (d *Discovery) Users(ctx context.Context, owner, repo string, since time.Time) ([]string, error) {
	if owner == "" || repo == "" {
		return nil, errors.ValidationErrorf("owner and repo are required")
	}

	var mu sync.Mutex
	seen := make(map[string]struct{})
	merge := func(logins []string) {
		mu.Lock()
		defer mu.Unlock()
		for _, l := range logins {
			if l != "" {
				seen[l] = struct{}{}
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logins, err := d.contributors(gctx, owner, repo)
		if err != nil {
			return err
		}
		merge(logins)
		return nil
	})
	g.Go(func() error {
		logins, err := d.collaborators(gctx, owner, repo)
		if err != nil {
			return err
		}
		merge(logins)
		return nil
	})
	g.Go(func() error {
		logins, err := d.recentUsers(gctx, owner, repo, since)
		if err != nil {
			return err
		}
		merge(logins)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	users := make([]string, 0, len(seen))
	for l := range seen {
		users = append(users, l)
	}
	sort.Strings(users)

	if d.logger != nil {
		d.logger.WithFields(logrus.Fields{
			"repo":  owner + "/" + repo,
			"users": len(users),
		}).Info("discovered users")
	}
	return users, nil
}

func (d *Discovery) contributors(ctx context.Context, owner, repo string) ([]string, error) {
	opts := &github.ListContributorsOptions{ListOptions: github.ListOptions{PerPage: 100}}
	var logins []string
	for {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, errors.TransportError(err, "rate limiter")
		}
		contributors, resp, err := d.client.Repositories.ListContributors(ctx, owner, repo, opts)
		if err != nil {
			return nil, errors.TransportError(err, "list contributors")
		}
		for _, c := range contributors {
			logins = append(logins, c.GetLogin())
		}
		if resp.NextPage == 0 {
			return logins, nil
		}
		opts.Page = resp.NextPage
	}
}

func (d *Discovery) collaborators(ctx context.Context, owner, repo string) ([]string, error) {
	opts := &github.ListCollaboratorsOptions{ListOptions: github.ListOptions{PerPage: 100}}
	var logins []string
	for {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, errors.TransportError(err, "rate limiter")
		}
		collaborators, resp, err := d.client.Repositories.ListCollaborators(ctx, owner, repo, opts)
		if err != nil {
			return nil, errors.TransportError(err, "list collaborators")
		}
		for _, c := range collaborators {
			logins = append(logins, c.GetLogin())
		}
		if resp.NextPage == 0 {
			return logins, nil
		}
		opts.Page = resp.NextPage
	}
}

// recentUsers searches issues and PRs updated since the cutoff and collects
// authors and assignees.
func (d *Discovery) recentUsers(ctx context.Context, owner, repo string, since time.Time) ([]string, error) {
	queries := []string{
		fmt.Sprintf("repo:%s/%s is:pr updated:>=%s", owner, repo, since.Format("2006-01-02")),
		fmt.Sprintf("repo:%s/%s is:issue updated:>=%s", owner, repo, since.Format("2006-01-02")),
	}

	var logins []string
	for _, q := range queries {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, errors.TransportError(err, "rate limiter")
		}
		result, _, err := d.client.Search.Issues(ctx, q, &github.SearchOptions{
			ListOptions: github.ListOptions{PerPage: 100},
		})
		if err != nil {
			return nil, errors.TransportError(err, "search recent activity")
		}
		for _, item := range result.Issues {
			logins = append(logins, item.GetUser().GetLogin())
			if item.Assignee != nil {
				logins = append(logins, item.GetAssignee().GetLogin())
			}
		}
	}
	return logins, nil
}
