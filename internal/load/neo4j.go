package load

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/icebreakerlabs/ghgraph/internal/errors"
	"github.com/icebreakerlabs/ghgraph/internal/sink"
)

// defaultCypher streams every user-to-object relationship with its
// properties. Overridable for filtered loads, as long as the query returns
// the same four columns.
const defaultCypher = `
	MATCH (source:User)-[rel]->(target:GitHubObject)
	RETURN source.name AS source, target.url AS target, type(rel) AS type, properties(rel) AS props
`

// Neo4jLoader streams relationship records out of the graph database.
type Neo4jLoader struct {
	cfg    sink.Neo4jConfig
	cypher string
}

// NewNeo4jLoader creates a loader. An empty cypher selects the default
// full-graph query.
func NewNeo4jLoader(cfg sink.Neo4jConfig, cypher string) *Neo4jLoader {
	if cypher == "" {
		cypher = defaultCypher
	}
	return &Neo4jLoader{cfg: cfg, cypher: cypher}
}

// Load implements multigraph.RecordSource.
func (l *Neo4jLoader) Load(ctx context.Context, fn func(rec map[string]string) error) error {
	if l.cfg.URI == "" || l.cfg.User == "" || l.cfg.Password == "" {
		return errors.ConfigError("neo4j credentials missing")
	}
	database := l.cfg.Database
	if database == "" {
		database = "neo4j"
	}

	driver, err := neo4j.NewDriverWithContext(l.cfg.URI,
		neo4j.BasicAuth(l.cfg.User, l.cfg.Password, ""),
		func(config *neo4j.Config) {
			config.SocketConnectTimeout = 5 * time.Second
		})
	if err != nil {
		return errors.PersistenceError(err, "create neo4j driver")
	}
	defer driver.Close(ctx)

	result, err := neo4j.ExecuteQuery(ctx, driver, l.cypher, nil,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(database),
		neo4j.ExecuteQueryWithReadersRouting())
	if err != nil {
		return errors.PersistenceError(err, "query relationships")
	}

	for _, record := range result.Records {
		rec := recordFromNeo4j(record)
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

func recordFromNeo4j(record *neo4j.Record) map[string]string {
	rec := make(map[string]string)
	if v, ok := record.Get("source"); ok {
		if s, ok := v.(string); ok {
			rec["source"] = s
		}
	}
	if v, ok := record.Get("target"); ok {
		if s, ok := v.(string); ok {
			rec["target"] = s
		}
	}
	if v, ok := record.Get("type"); ok {
		if s, ok := v.(string); ok {
			rec["type"] = s
		}
	}
	if v, ok := record.Get("props"); ok {
		if props, ok := v.(map[string]any); ok {
			for k, pv := range props {
				if s, ok := pv.(string); ok {
					rec[k] = s
				}
			}
		}
	}
	return rec
}
