package query

import "context"

// Database is the execution collaborator: it runs one parameterized
// Cypher statement and hands back ordered rows plus column names. When
// resolveObjects is set, graph entities in the result are materialized
// into schema.Node / schema.Relationship values (lists recursively).
//
// The compiler treats the implementation as a black box; driver errors
// propagate unchanged and no retries happen at this layer.
type Database interface {
	CypherQuery(ctx context.Context, cypher string, params map[string]interface{}, resolveObjects bool) (rows [][]interface{}, columns []string, err error)

	// IDFunctionName returns the identity-lookup function of the target
	// database generation ("elementId" on Neo4j 5+, "id" before).
	IDFunctionName() string

	// ParseExternalID normalizes a caller-supplied object identity into
	// the form usable inside a parameter value.
	ParseExternalID(raw string) (interface{}, error)
}
