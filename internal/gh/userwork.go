package gh

import (
	"context"
	"fmt"
	"time"

	"github.com/icebreakerlabs/ghgraph/internal/errors"
)

// userWorkQuery gathers one user's recent activity in a single round trip:
// six aliased search queries, one per activity category. Some categories
// nest results under edges[].node, others under nodes[]; the extractor
// handles both shapes.
const userWorkQuery = `
query getUserWork($username:String!, $issuesCreatedQuery:String!, $prsCreatedQuery:String!, $prContributionsQuery:String!, $issueCommentsQuery:String!, $discussionsCreatedQuery:String!, $discussionsInvolvedQuery:String!) {
  issuesCreated:search(type: ISSUE, query: $issuesCreatedQuery, first: 10) {
    edges {
      node {
        ... on Issue {
          createdAt
          bodyText
          title
          url
        }
      }
    }
  }
  prsCreated:search(type: ISSUE, query: $prsCreatedQuery, first: 10) {
    edges {
      node {
        ... on PullRequest {
          title
          createdAt
          url
          bodyText
        }
      }
    }
  }
  prReviewsAndCommits:search(type: ISSUE, query: $prContributionsQuery, first: 10) {
    edges {
      node {
        ... on PullRequest {
          createdAt
          title
          url
          author {
            login
          }
          bodyText
          reviews(first: 100, author:$username) {
            nodes {
              state
              createdAt
              url
              bodyText
            }
          }
        }
      }
    }
  }
  issueComments:search(type: ISSUE, query: $issueCommentsQuery, first: 10) {
    nodes {
      ... on Issue {
        title
        url
        comments(first: 10) {
          nodes {
            createdAt
            bodyText
            author {
              login
            }
            url
          }
        }
      }
    }
  }
  discussionsCreated:search(type: DISCUSSION, query: $discussionsCreatedQuery, first: 10) {
    nodes {
      ... on Discussion {
        author {
          login
        }
        title
        createdAt
        url
        bodyText
      }
    }
  }
  discussionComments:search(type: DISCUSSION, query: $discussionsInvolvedQuery, first: 10) {
    nodes {
      ... on Discussion {
        title
        url
        comments(first: 10) {
          nodes {
            author {
              login
            }
            bodyText
            createdAt
            url
          }
        }
      }
    }
  }
}
`

// searchQueries builds the six repo-scoped search strings for one user. The
// date filter applies to updated time, so long-running threads with recent
// activity are still picked up. A zero until leaves the window open-ended.
func searchQueries(username, owner, repo string, since, until time.Time) map[string]string {
	scope := fmt.Sprintf("repo:%s/%s ", owner, repo)
	window := "updated:>=" + since.Format("2006-01-02")
	if !until.IsZero() {
		window = fmt.Sprintf("updated:%s..%s", since.Format("2006-01-02"), until.Format("2006-01-02"))
	}
	return map[string]string{
		"issuesCreatedQuery":       scope + fmt.Sprintf("author:%s is:issue %s", username, window),
		"prsCreatedQuery":          scope + fmt.Sprintf("author:%s is:pr %s", username, window),
		"prContributionsQuery":     scope + fmt.Sprintf("involves:%s is:pr %s", username, window),
		"issueCommentsQuery":       scope + fmt.Sprintf("commenter:%s is:issue %s", username, window),
		"discussionsCreatedQuery":  scope + fmt.Sprintf("author:%s is:discussion %s", username, window),
		"discussionsInvolvedQuery": scope + fmt.Sprintf("involves:%s is:discussion %s", username, window),
	}
}

// FetchUserWork runs the activity query for one user against one repository
// and returns the raw category payload keyed by category name.
func (c *GraphQLClient) FetchUserWork(ctx context.Context, username, owner, repo string, since, until time.Time) (map[string]any, error) {
	if username == "" || owner == "" || repo == "" {
		return nil, errors.ValidationErrorf("username, owner and repo are all required")
	}

	variables := map[string]any{"username": username}
	for k, v := range searchQueries(username, owner, repo, since, until) {
		variables[k] = v
	}

	data, err := c.Do(ctx, userWorkQuery, variables)
	if err != nil {
		return nil, err
	}
	return data, nil
}
