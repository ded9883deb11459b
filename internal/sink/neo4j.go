package sink

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"

	"github.com/icebreakerlabs/ghgraph/internal/edge"
	"github.com/icebreakerlabs/ghgraph/internal/errors"
)

// relTypePattern guards the relationship type interpolated into Cypher.
// Relationship types cannot be parameterized, so anything outside this shape
// is rejected before it reaches the query string.
var relTypePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// Neo4jConfig holds connection settings for the graph database.
type Neo4jConfig struct {
	URI      string
	User     string
	Password string
	Database string
}

// Neo4j merges edges into a property graph. Users are keyed by login,
// GitHub objects by URL, and relationships by their own URL so re-running a
// collection never duplicates data.
type Neo4j struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *logrus.Entry
	count    int
}

// NewNeo4j connects to the database and verifies connectivity up front.
func NewNeo4j(ctx context.Context, cfg Neo4jConfig, logger *logrus.Entry) (*Neo4j, error) {
	if cfg.URI == "" || cfg.User == "" || cfg.Password == "" {
		return nil, errors.ConfigError("neo4j credentials missing")
	}
	if cfg.Database == "" {
		cfg.Database = "neo4j"
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI,
		neo4j.BasicAuth(cfg.User, cfg.Password, ""),
		func(config *neo4j.Config) {
			config.SocketConnectTimeout = 5 * time.Second
			config.SocketKeepalive = true
		})
	if err != nil {
		return nil, errors.PersistenceError(err, "create neo4j driver")
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, errors.PersistenceError(err, "connect to neo4j").WithContext("uri", cfg.URI)
	}

	return &Neo4j{driver: driver, database: cfg.Database, logger: logger}, nil
}

// RelationshipType maps an edge type to its graph relationship name.
func RelationshipType(edgeType string) (string, error) {
	rel := strings.ToUpper(edgeType)
	if !relTypePattern.MatchString(rel) {
		return "", errors.ValidationErrorf("edge type %q does not map to a valid relationship type", edgeType)
	}
	return rel, nil
}

// Save implements Sink. MERGE keeps the write idempotent: nodes by their
// natural keys, the relationship by its URL, properties set only on create.
func (n *Neo4j) Save(ctx context.Context, e edge.Edge) error {
	row := e.Row()
	rel, err := RelationshipType(row.Type)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		MERGE (u:User {name: $source})
		MERGE (o:GitHubObject {url: $target})
		MERGE (u)-[r:%s {url: $url}]->(o)
		ON CREATE SET r.title = $title, r.created_at = $created_at
	`, rel)

	_, err = neo4j.ExecuteQuery(ctx, n.driver, query,
		map[string]any{
			"source":     row.Source,
			"target":     row.Target,
			"url":        row.URL,
			"title":      row.Title,
			"created_at": row.CreatedAt,
		},
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(n.database))
	if err != nil {
		return errors.PersistenceError(err, "merge edge").WithContext("type", row.Type)
	}
	n.count++
	return nil
}

// Finalize implements Sink.
func (n *Neo4j) Finalize(ctx context.Context) error {
	if n.logger != nil {
		n.logger.WithField("edges", n.count).Info("neo4j sink finished")
	}
	if err := n.driver.Close(ctx); err != nil {
		return errors.PersistenceError(err, "close neo4j driver")
	}
	return nil
}
