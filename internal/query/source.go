package query

import (
	neoerrors "github.com/vaibhav938bit/neoquery/internal/errors"
	"github.com/vaibhav938bit/neoquery/internal/schema"
)

// sourceKind enumerates the closed set of query-source variants.
type sourceKind int

const (
	sourceKindClass sourceKind = iota
	sourceKindNode
	sourceKindNodeSet
	sourceKindTraversal
)

// querySource is a tagged union over the four things a query spec can
// start from: a node class, a concrete node instance, another NodeSet,
// or a Traversal. Exactly one field matching the kind is set.
type querySource struct {
	kind      sourceKind
	class     *schema.NodeClass
	node      *schema.Node
	nodeSet   *NodeSet
	traversal *Traversal
}

func classSource(cls *schema.NodeClass) querySource {
	return querySource{kind: sourceKindClass, class: cls}
}

func nodeSource(n *schema.Node) querySource {
	return querySource{kind: sourceKindNode, node: n}
}

func nodeSetSource(ns *NodeSet) querySource {
	return querySource{kind: sourceKindNodeSet, nodeSet: ns}
}

func traversalSource(t *Traversal) querySource {
	return querySource{kind: sourceKindTraversal, traversal: t}
}

// resolveSource classifies an arbitrary source value and determines
// the class its results belong to.
func resolveSource(value interface{}) (querySource, *schema.NodeClass, error) {
	switch src := value.(type) {
	case *schema.NodeClass:
		return classSource(src), src, nil
	case *schema.Node:
		if src.Class() == nil {
			return querySource{}, nil, neoerrors.InvalidQuerySourcef("node %q has no registered class", src.ElementID)
		}
		return nodeSource(src), src.Class(), nil
	case *NodeSet:
		return nodeSetSource(src), src.sourceClass, nil
	case *Traversal:
		if src.targetClass == nil {
			return querySource{}, nil, neoerrors.InvalidQuerySourcef("traversal %q has no resolved target class", src.name)
		}
		return traversalSource(src), src.targetClass, nil
	}
	return querySource{}, nil, neoerrors.InvalidQuerySourcef("bad source for query spec: %T", value)
}
