package query

import (
	"context"
	"strings"

	neoerrors "github.com/vaibhav938bit/neoquery/internal/errors"
	"github.com/vaibhav938bit/neoquery/internal/schema"
)

// relationshipColumnSuffix marks attachment keys whose column held the
// relationship edge object itself rather than its endpoint node.
const relationshipColumnSuffix = "_relationship"

// ResolveSubgraph compiles and executes the spec with shape recording
// enabled, then rebuilds each row's flat columns into the root node's
// nested relation graph.
//
// Every registered path must have been materialized into the row, so
// the spec must use FetchRelations rather than TraverseRelations.
func (ns *NodeSet) ResolveSubgraph(ctx context.Context) ([]*schema.Node, error) {
	if len(ns.relations) == 0 {
		return nil, neoerrors.NothingToResolvef(
			"nothing to resolve, register relationship paths with FetchRelations first")
	}
	for _, relation := range ns.relations {
		if !relation.includeInReturn {
			return nil, neoerrors.UnsupportedSubgraphShapef(
				"subgraph resolution requires FetchRelations, not TraverseRelations")
		}
	}

	qb := newQueryBuilderWithOptions(ns, true, false)
	if err := qb.buildAST(); err != nil {
		return nil, err
	}
	rows, columns, err := qb.execute(ctx, false)
	if err != nil {
		return nil, err
	}

	results := make([]*schema.Node, 0, len(rows))
	for _, row := range rows {
		root, others, err := splitSubgraphRow(row, columns, ns.sourceClass)
		if err != nil {
			return nil, err
		}
		attachSubgraph(root, others, qb.ast.subgraph)
		results = append(results, root)
	}
	return results, nil
}

// splitSubgraphRow separates the root column from the hop columns. The
// root is the column whose value's class matches the query's root class
// and whose name carries no hop suffix. Nested collect() results come
// back as a one-element list of lists; those flatten to the inner list.
func splitSubgraphRow(row []interface{}, columns []string, rootClass *schema.NodeClass) (*schema.Node, map[string]interface{}, error) {
	others := make(map[string]interface{}, len(columns))
	var root *schema.Node

	for i, column := range columns {
		if i >= len(row) {
			break
		}
		value := row[i]

		if node, ok := value.(*schema.Node); ok && node.Class() == rootClass && !strings.Contains(column, "_") {
			root = node
			continue
		}
		if list, ok := value.([]interface{}); ok && len(list) > 0 {
			if inner, ok := list[0].([]interface{}); ok {
				value = inner
			}
		}
		others[column] = value
	}

	if root == nil {
		return nil, nil, neoerrors.UnsupportedSubgraphShapef(
			"no column identifies a root %s in the result row", rootClass.Label())
	}
	return root, others, nil
}

// attachSubgraph wires hop columns onto the parent under the declared
// relation names, descending one shape level per hop. Columns matching
// a hop's relationship variable attach under the suffixed key so the
// edge object never shadows its endpoint node.
func attachSubgraph(parent schema.Entity, others map[string]interface{}, shape *shapeNode) {
	for _, name := range shape.childOrder {
		child := shape.children[name]

		for _, varName := range []string{child.variableName, child.relVariableName} {
			value, ok := others[varName]
			if !ok || value == nil {
				continue
			}

			key := name
			if varName == child.relVariableName {
				key = name + relationshipColumnSuffix
			}

			if list, ok := value.([]interface{}); ok {
				attached := make([]interface{}, 0, len(list))
				for _, item := range list {
					attached = append(attached, resolveShapeValue(item, others, child))
				}
				parent.SetRelation(key, attached)
				continue
			}
			parent.SetRelation(key, resolveShapeValue(value, others, child))
		}
	}
}

func resolveShapeValue(value interface{}, others map[string]interface{}, shape *shapeNode) interface{} {
	if node, ok := value.(*schema.Node); ok && node.Class() == shape.target {
		attachSubgraph(node, others, shape)
	}
	return value
}
