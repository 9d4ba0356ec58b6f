package query

import (
	"fmt"
	"strings"

	"github.com/vaibhav938bit/neoquery/internal/schema"
)

// renderRelation generates a relationship matching pattern.
//
//	Outgoing: (lhs)-[ident:`TYPE`]->(rhs)
//	Incoming: (lhs)<-[ident:`TYPE`]-(rhs)
//	Either:   (lhs)-[ident:`TYPE`]-(rhs)
//
// An empty relationType matches any direct relationship; the wildcard
// matches relationships of any type and length. Relationship type
// names are embedded as literal identifiers (the query language does
// not support parameterizing them), backtick-quoted.
func renderRelation(lhs, rhs, ident string, direction schema.Direction, relationType string) string {
	var relDef string
	switch relationType {
	case "":
		relDef = ""
	case schema.WildcardRelation:
		relDef = "[*]"
	default:
		relDef = fmt.Sprintf("[%s:`%s`]", ident, relationType)
	}

	var stmt string
	switch direction {
	case schema.Outgoing:
		stmt = "-" + relDef + "->"
	case schema.Incoming:
		stmt = "<-" + relDef + "-"
	default:
		stmt = "-" + relDef + "-"
	}

	// Avoid double parenthesis when a side is already a rendered pattern.
	if !strings.HasSuffix(lhs, ")") {
		lhs = "(" + lhs + ")"
	}
	if !strings.HasSuffix(rhs, ")") {
		rhs = "(" + rhs + ")"
	}

	return lhs + stmt + rhs
}
