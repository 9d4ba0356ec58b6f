package query

import "sort"

// Connectors for boolean filter trees.
const (
	andConnector = "AND"
	orConnector  = "OR"
)

// Cond is anything that can appear in a Filter/Exclude call: a plain
// Kw argument set or a composed Q tree.
type Cond interface {
	asQ() *Q
}

func (k Kw) asQ() *Q { return Where(k) }

// Q is a composable boolean predicate tree. Leaves are single
// field__operator conditions; internal nodes join their children with
// AND or OR and may be negated. Trees combine with logical AND across
// successive Filter/Exclude calls.
type Q struct {
	connector string
	negated   bool
	children  []qNode
}

// qNode is either a leaf condition or a nested subtree.
type qNode struct {
	leaf *qLeaf
	sub  *Q
}

type qLeaf struct {
	key   string
	value interface{}
}

func (q *Q) asQ() *Q { return q }

func (q *Q) isEmpty() bool { return q == nil || len(q.children) == 0 }

// Where builds a leaf-level predicate from filter arguments. Keys are
// ordered deterministically.
func Where(kwargs Kw) *Q {
	q := &Q{connector: andConnector}
	keys := make([]string, 0, len(kwargs))
	for key := range kwargs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		q.children = append(q.children, qNode{leaf: &qLeaf{key: key, value: kwargs[key]}})
	}
	return q
}

// And joins predicates with logical AND.
func And(conds ...Cond) *Q {
	return combine(andConnector, conds)
}

// Or joins predicates with logical OR.
func Or(conds ...Cond) *Q {
	return combine(orConnector, conds)
}

// Not negates a predicate.
func Not(cond Cond) *Q {
	return &Q{
		connector: andConnector,
		negated:   true,
		children:  []qNode{{sub: cond.asQ()}},
	}
}

// And combines the receiver with another predicate under AND.
func (q *Q) And(other Cond) *Q {
	return combine(andConnector, []Cond{q, other})
}

// Or combines the receiver with another predicate under OR.
func (q *Q) Or(other Cond) *Q {
	return combine(orConnector, []Cond{q, other})
}

func combine(connector string, conds []Cond) *Q {
	parts := make([]*Q, 0, len(conds))
	for _, cond := range conds {
		if cond == nil {
			continue
		}
		sub := cond.asQ()
		if sub.isEmpty() {
			continue
		}
		parts = append(parts, sub)
	}

	switch len(parts) {
	case 0:
		return &Q{connector: connector}
	case 1:
		return parts[0]
	}

	out := &Q{connector: connector}
	for _, part := range parts {
		out.children = append(out.children, qNode{sub: part})
	}
	return out
}
