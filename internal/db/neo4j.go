package db

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"

	neoerrors "github.com/vaibhav938bit/neoquery/internal/errors"
	"github.com/vaibhav938bit/neoquery/internal/schema"
)

// defaultFetchSize keeps result streaming bounded instead of pulling
// every record in one batch.
const defaultFetchSize = 1000

// Config holds the connection settings for a Neo4j database.
type Config struct {
	URI      string
	Username string
	Password string
	Database string

	// TargetVersion selects the identity function generation. Servers
	// before 5.x only expose the numeric id() function.
	TargetVersion string

	FetchSize int
}

// Neo4jDatabase executes compiled statements against a Neo4j server
// and resolves returned graph entities against a schema registry.
type Neo4jDatabase struct {
	driver   neo4j.DriverWithContext
	database string
	registry *schema.Registry
	logger   *logrus.Logger

	fetchSize int
	legacyIDs bool
}

// NewNeo4jDatabase connects to a Neo4j server and verifies connectivity
// before returning.
func NewNeo4jDatabase(ctx context.Context, cfg Config, registry *schema.Registry, logger *logrus.Logger) (*Neo4jDatabase, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, neoerrors.DatabaseError(err, "failed to create Neo4j driver")
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, neoerrors.DatabaseError(err, "failed to connect to Neo4j")
	}

	fetchSize := cfg.FetchSize
	if fetchSize <= 0 {
		fetchSize = defaultFetchSize
	}

	return &Neo4jDatabase{
		driver:    driver,
		database:  cfg.Database,
		registry:  registry,
		logger:    logger,
		fetchSize: fetchSize,
		legacyIDs: isLegacyVersion(cfg.TargetVersion),
	}, nil
}

// Close releases the underlying driver.
func (d *Neo4jDatabase) Close(ctx context.Context) error {
	return d.driver.Close(ctx)
}

// CypherQuery runs a statement with its parameter table and returns the
// raw rows plus column names. When resolveObjects is set, graph
// entities in the result are materialized into schema nodes and
// relationships via the registry.
func (d *Neo4jDatabase) CypherQuery(ctx context.Context, cypher string, params map[string]interface{}, resolveObjects bool) ([][]interface{}, []string, error) {
	session := d.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: d.database,
		AccessMode:   neo4j.AccessModeRead,
		FetchSize:    d.fetchSize,
	})
	defer session.Close(ctx)

	start := time.Now()
	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, nil, neoerrors.DatabaseErrorf(err, "query failed: %s", cypher)
	}

	columns, err := result.Keys()
	if err != nil {
		return nil, nil, neoerrors.DatabaseError(err, "failed to read result columns")
	}

	var rows [][]interface{}
	for result.Next(ctx) {
		record := result.Record()
		row := make([]interface{}, len(record.Values))
		for i, value := range record.Values {
			if resolveObjects {
				row[i] = d.resolveValue(value)
			} else {
				row[i] = value
			}
		}
		rows = append(rows, row)
	}
	if err := result.Err(); err != nil {
		return nil, nil, neoerrors.DatabaseError(err, "result streaming failed")
	}

	if d.logger != nil {
		d.logger.WithFields(logrus.Fields{
			"rows":     len(rows),
			"duration": time.Since(start),
		}).Debug(cypher)
	}

	return rows, columns, nil
}

// IDFunctionName returns the identity function of the connected server
// generation.
func (d *Neo4jDatabase) IDFunctionName() string {
	if d.legacyIDs {
		return "id"
	}
	return "elementId"
}

// ParseExternalID converts a stored external identifier into the value
// the identity function compares against. Legacy servers use numeric
// ids; modern ones use opaque element id strings.
func (d *Neo4jDatabase) ParseExternalID(raw string) (interface{}, error) {
	if !d.legacyIDs {
		return raw, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, neoerrors.DatabaseErrorf(err, "invalid numeric node id %q", raw)
	}
	return id, nil
}

// resolveValue recursively converts driver entities into schema
// objects. Values with no registered class pass through untouched.
func (d *Neo4jDatabase) resolveValue(value interface{}) interface{} {
	switch v := value.(type) {
	case neo4j.Node:
		if cls := d.classForLabels(v.Labels); cls != nil {
			return schema.NewNode(cls, v.GetElementId(), v.Props)
		}
		return v
	case neo4j.Relationship:
		return schema.NewRelationship(nil, v.Type, v.GetElementId(), v.Props)
	case []interface{}:
		resolved := make([]interface{}, len(v))
		for i, item := range v {
			resolved[i] = d.resolveValue(item)
		}
		return resolved
	}
	return value
}

func (d *Neo4jDatabase) classForLabels(labels []string) *schema.NodeClass {
	if d.registry == nil {
		return nil
	}
	for _, label := range labels {
		if cls, ok := d.registry.Class(label); ok {
			return cls
		}
	}
	return nil
}

func isLegacyVersion(version string) bool {
	if version == "" {
		return false
	}
	major := strings.SplitN(version, ".", 2)[0]
	n, err := strconv.Atoi(major)
	if err != nil {
		return false
	}
	return n < 5
}
