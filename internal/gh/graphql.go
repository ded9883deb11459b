// Package gh talks to GitHub: the GraphQL API for activity collection and
// the REST API for user discovery.
package gh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/icebreakerlabs/ghgraph/internal/errors"
)

const defaultGraphQLEndpoint = "https://api.github.com/graphql"

// RetryPolicy bounds transient-failure retries on GraphQL calls.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// Backoff is the base delay, doubled after each failed attempt.
	Backoff time.Duration
}

// DefaultRetryPolicy retries twice more with a short growing delay.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, Backoff: 2 * time.Second}

// GraphQLClient executes queries against the GitHub GraphQL endpoint with
// rate limiting and bounded retries on transient failures.
type GraphQLClient struct {
	httpClient *http.Client
	endpoint   string
	token      string
	limiter    *rate.Limiter
	retry      RetryPolicy
	logger     *logrus.Entry
}

// GraphQLOption customizes a client.
type GraphQLOption func(*GraphQLClient)

// WithEndpoint overrides the API endpoint. Used for GitHub Enterprise and
// tests.
func WithEndpoint(url string) GraphQLOption {
	return func(c *GraphQLClient) { c.endpoint = url }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) GraphQLOption {
	return func(c *GraphQLClient) { c.httpClient = hc }
}

// WithRetryPolicy overrides the retry policy.
func WithRetryPolicy(p RetryPolicy) GraphQLOption {
	return func(c *GraphQLClient) { c.retry = p }
}

// WithRateLimit caps requests per second.
func WithRateLimit(rps int) GraphQLOption {
	return func(c *GraphQLClient) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// NewGraphQLClient creates a client authenticated with the given token.
func NewGraphQLClient(token string, logger *logrus.Entry, opts ...GraphQLOption) (*GraphQLClient, error) {
	if token == "" {
		return nil, errors.ConfigError("github token not provided")
	}
	c := &GraphQLClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   defaultGraphQLEndpoint,
		token:      token,
		limiter:    rate.NewLimiter(rate.Limit(5), 1),
		retry:      DefaultRetryPolicy,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   map[string]any `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Do executes one query and returns the response's data object. GraphQL-level
// errors and non-2xx responses surface as transport errors.
func (c *GraphQLClient) Do(ctx context.Context, query string, variables map[string]any) (map[string]any, error) {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, "marshal graphql request")
	}

	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.TransportError(err, "rate limiter")
		}

		data, retryable, err := c.doOnce(ctx, body)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable || attempt == c.retry.MaxAttempts {
			break
		}

		delay := c.retry.Backoff << (attempt - 1)
		if c.logger != nil {
			c.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"delay":   delay.String(),
			}).WithError(err).Warn("graphql request failed, retrying")
		}
		select {
		case <-ctx.Done():
			return nil, errors.TransportError(ctx.Err(), "graphql request canceled")
		case <-time.After(delay):
		}
	}
	return nil, lastErr
}

// doOnce performs a single HTTP round trip. The second return value reports
// whether the failure is worth retrying.
func (c *GraphQLClient) doOnce(ctx context.Context, body []byte) (map[string]any, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, false, errors.TransportError(err, "build graphql request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, errors.TransportError(err, "execute graphql request")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, errors.TransportError(err, "read graphql response")
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return nil, retryable, errors.TransportError(
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload))),
			"graphql request rejected")
	}

	var parsed graphQLResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, false, errors.TransportError(err, "decode graphql response")
	}
	if len(parsed.Errors) > 0 {
		msgs := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, false, errors.TransportError(
			fmt.Errorf("%s", strings.Join(msgs, "; ")), "graphql query errors")
	}
	return parsed.Data, false, nil
}
