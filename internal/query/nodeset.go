package query

import (
	"context"
	"sort"
	"strings"

	neoerrors "github.com/vaibhav938bit/neoquery/internal/errors"
	"github.com/vaibhav938bit/neoquery/internal/schema"
)

const randomOrderToken = "?"

// Unordered is the sentinel that clears previously accumulated
// ordering when passed as the sole OrderBy argument.
const Unordered = "\x00unordered"

// Optional marks a relationship path for OPTIONAL MATCH rendering, so
// a missing relationship does not eliminate the primary row.
type Optional struct {
	Relation string
}

// Aliased names the last hop of a traversed relationship path.
type Aliased struct {
	Alias string
	Path  string
}

// NodeSet is a mutable query spec over the nodes of one class. Fluent
// calls accumulate filters, traversals, ordering, and pagination
// without touching the database; terminal operations compile the
// current state into a statement and execute it. A NodeSet is not safe
// for concurrent mutation.
type NodeSet struct {
	db          Database
	src         querySource
	sourceClass *schema.NodeClass

	q         *Q
	mustMatch []hasConstraint
	dontMatch []hasConstraint

	orderBySet      bool
	orderByElements []string

	relations    []relationSpec
	extraResults []annotation
	subs         []registeredSubquery

	skipCount  int
	limitCount int

	traversalFactories map[string]traversalFactory

	err error
}

type traversalFactory func() *Traversal

// NewNodeSet creates a query spec from a source: a node class, a
// concrete node instance, a Traversal, or another NodeSet.
func NewNodeSet(db Database, source interface{}) (*NodeSet, error) {
	src, cls, err := resolveSource(source)
	if err != nil {
		return nil, err
	}

	ns := &NodeSet{
		db:          db,
		src:         src,
		sourceClass: cls,
		q:           &Q{connector: andConnector},
	}
	ns.registerTraversals()
	return ns, nil
}

// registerTraversals populates the explicit relationship-name to
// traversal-factory mapping from the source class's declared
// relationships. Lookups go through Traverse.
func (ns *NodeSet) registerTraversals() {
	ns.traversalFactories = make(map[string]traversalFactory)
	for _, name := range ns.sourceClass.RelationshipNames() {
		def, _ := ns.sourceClass.Relationship(name)
		relName, relDef := name, def
		ns.traversalFactories[relName] = func() *Traversal {
			t, err := NewTraversal(ns.db, ns, relName, relDef)
			if err != nil {
				return &Traversal{db: ns.db, name: relName, def: relDef, err: err}
			}
			return t
		}
	}
}

// Traverse returns a Traversal spec for one of the source class's
// declared relationships.
func (ns *NodeSet) Traverse(name string) (*Traversal, error) {
	factory, ok := ns.traversalFactories[name]
	if !ok {
		return nil, neoerrors.UnknownRelationshipf(
			"no such relation %q defined on a %s", name, ns.sourceClass.Label())
	}
	return factory(), nil
}

// SourceClass returns the class this spec's results belong to.
func (ns *NodeSet) SourceClass() *schema.NodeClass { return ns.sourceClass }

func (ns *NodeSet) setErr(err error) {
	if ns.err == nil {
		ns.err = err
	}
}

// Filter AND-combines predicates into the spec's boolean filter tree.
//
// Kw filters use the double-underscore syntax to separate field and
// operator, e.g. Kw{"salary__gt": 20000} renders salary > $param.
func (ns *NodeSet) Filter(conds ...Cond) *NodeSet {
	for _, cond := range conds {
		if cond == nil {
			continue
		}
		q := cond.asQ()
		if q.isEmpty() {
			continue
		}
		ns.q = And(ns.q, q)
	}
	return ns
}

// Exclude AND-combines the negation of the given predicates.
func (ns *NodeSet) Exclude(conds ...Cond) *NodeSet {
	for _, cond := range conds {
		if cond == nil {
			continue
		}
		q := cond.asQ()
		if q.isEmpty() {
			continue
		}
		ns.q = And(ns.q, Not(q))
	}
	return ns
}

// Has records relationship-existence constraints keyed by declared
// relation name: true demands the relationship exists, false demands
// it does not. Anything other than a boolean fails the compilation;
// nested query specs are explicitly unsupported.
func (ns *NodeSet) Has(kwargs map[string]interface{}) *NodeSet {
	keys := make([]string, 0, len(kwargs))
	for key := range kwargs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		def, ok := ns.sourceClass.Relationship(key)
		if !ok {
			ns.setErr(neoerrors.UnknownRelationshipf(
				"no such relation %q defined on a %s", key, ns.sourceClass.Label()))
			continue
		}

		switch value := kwargs[key].(type) {
		case bool:
			if value {
				ns.mustMatch = append(ns.mustMatch, hasConstraint{name: key, def: def})
			} else {
				ns.dontMatch = append(ns.dontMatch, hasConstraint{name: key, def: def})
			}
		case *NodeSet:
			ns.setErr(neoerrors.InvalidFilterSourcef(
				"nested query specs are not supported for relation %q", key))
		default:
			ns.setErr(neoerrors.InvalidFilterSourcef(
				"expecting true / false for relation %q, got %T", key, kwargs[key]))
		}
	}
	return ns
}

// OrderBy orders results by properties. Prefix a field with "-" for
// descending; pass "?" for random order; pass Unordered alone to clear
// prior ordering. Field validation happens at compile time.
func (ns *NodeSet) OrderBy(props ...string) *NodeSet {
	shouldRemove := len(props) == 1 && props[0] == Unordered
	if !ns.orderBySet || shouldRemove {
		ns.orderByElements = nil
		ns.orderBySet = true
		if shouldRemove {
			return ns
		}
	}

	if containsString(props, randomOrderToken) {
		ns.orderByElements = append(ns.orderByElements, randomOrderToken)
		return ns
	}

	for _, prop := range props {
		ns.orderByElements = append(ns.orderByElements, strings.TrimSpace(prop))
	}
	return ns
}

// Skip sets the number of rows to skip.
func (ns *NodeSet) Skip(n int) *NodeSet {
	ns.skipCount = n
	return ns
}

// Limit caps the number of rows returned.
func (ns *NodeSet) Limit(n int) *NodeSet {
	ns.limitCount = n
	return ns
}

// Slice mutates the spec's pagination window and returns the still-lazy
// spec itself.
func (ns *NodeSet) Slice(start, stop int) *NodeSet {
	switch {
	case stop > 0 && start > 0:
		ns.limitCount = stop - start
		ns.skipCount = start
	case stop > 0:
		ns.limitCount = stop
	case start > 0:
		ns.skipCount = start
	}
	return ns
}

// FetchRelations registers relationship paths to traverse and return.
// Paths are strings or Optional values; each call replaces the
// previously registered set.
func (ns *NodeSet) FetchRelations(relationNames ...interface{}) *NodeSet {
	relations := make([]relationSpec, 0, len(relationNames))
	for _, name := range relationNames {
		spec, err := ns.relationSpecOf(name, true)
		if err != nil {
			ns.setErr(err)
			continue
		}
		relations = append(relations, spec)
	}
	ns.relations = relations
	return ns
}

// TraverseRelations registers relationship paths to traverse without
// materializing the intermediate nodes into the return set. Paths are
// strings, Optional values, or Aliased values naming the last hop.
func (ns *NodeSet) TraverseRelations(relationNames ...interface{}) *NodeSet {
	relations := make([]relationSpec, 0, len(relationNames))
	for _, name := range relationNames {
		spec, err := ns.relationSpecOf(name, false)
		if err != nil {
			ns.setErr(err)
			continue
		}
		relations = append(relations, spec)
	}
	ns.relations = relations
	return ns
}

func (ns *NodeSet) relationSpecOf(value interface{}, includeInReturn bool) (relationSpec, error) {
	switch v := value.(type) {
	case string:
		return relationSpec{path: v, includeInReturn: includeInReturn}, nil
	case Optional:
		return relationSpec{path: v.Relation, optional: true, includeInReturn: includeInReturn}, nil
	case Aliased:
		if includeInReturn {
			return relationSpec{}, neoerrors.InvalidQuerySourcef(
				"aliased paths are only supported by TraverseRelations")
		}
		return relationSpec{path: v.Path, alias: v.Alias, includeInReturn: false}, nil
	}
	return relationSpec{}, neoerrors.InvalidQuerySourcef(
		"relation path must be a string, Optional or Aliased, got %T", value)
}

// Annotate attaches aggregate projections under their input names.
func (ns *NodeSet) Annotate(aggregates ...Aggregate) *NodeSet {
	for _, aggregate := range aggregates {
		ns.upsertAnnotation(aggregate.InputName(), aggregate)
	}
	return ns
}

// AnnotateAs attaches an aggregate projection under an explicit alias,
// replacing any prior binding under the same alias.
func (ns *NodeSet) AnnotateAs(alias string, aggregate Aggregate) *NodeSet {
	ns.upsertAnnotation(alias, aggregate)
	return ns
}

func (ns *NodeSet) upsertAnnotation(name string, expr Aggregate) {
	for i, existing := range ns.extraResults {
		if existing.name == name {
			ns.extraResults[i] = annotation{name: name, expr: expr}
			return
		}
	}
	ns.extraResults = append(ns.extraResults, annotation{name: name, expr: expr})
}

// Subquery registers another spec as a CALL subquery executed in the
// context of this spec's primary identifier. Every declared return
// variable must actually be produced by the subquery's own compiled
// return set. The subquery's primary identifier is not in that set;
// it comes in through the opening WITH and a CALL body may not return
// a variable it imported.
func (ns *NodeSet) Subquery(other *NodeSet, returnSet []string) (*NodeSet, error) {
	qb := newQueryBuilderWithOptions(other, false, true)
	if err := qb.buildAST(); err != nil {
		return nil, err
	}

	for _, variable := range returnSet {
		if containsString(qb.ast.additionalReturn, variable) || other.hasAnnotation(variable) {
			continue
		}
		return nil, neoerrors.InvalidSubStatementBindingf(
			"variable %q is not returned by subquery", variable)
	}

	ns.subs = append(ns.subs, registeredSubquery{query: qb.buildQuery(), returnSet: returnSet})
	return ns, nil
}

func (ns *NodeSet) hasAnnotation(name string) bool {
	for _, ann := range ns.extraResults {
		if ann.name == name {
			return true
		}
	}
	return false
}

// CompileQuery compiles the current spec state and returns the
// statement text plus its parameter table without executing anything.
func (ns *NodeSet) CompileQuery() (string, map[string]interface{}, error) {
	qb := newQueryBuilder(ns)
	if err := qb.buildAST(); err != nil {
		return "", nil, err
	}
	return qb.buildQuery(), qb.params, nil
}

// All compiles and executes the spec, returning materialized results.
// Single-column rows collapse to their sole value; multi-column rows
// come back as []interface{}.
func (ns *NodeSet) All(ctx context.Context) ([]interface{}, error) {
	return executeAll(ctx, ns, false)
}

// AllLazy fetches only external identities instead of full objects.
func (ns *NodeSet) AllLazy(ctx context.Context) ([]interface{}, error) {
	return executeAll(ctx, ns, true)
}

// AllAsDict yields each row as a mapping from column name to value.
func (ns *NodeSet) AllAsDict(ctx context.Context) ([]map[string]interface{}, error) {
	rows, columns, _, err := executeWithColumns(ctx, ns, false)
	if err != nil {
		return nil, err
	}
	return zipRows(rows, columns), nil
}

// Count compiles and executes the spec in count mode.
func (ns *NodeSet) Count(ctx context.Context) (int64, error) {
	return countOf(ctx, ns)
}

// Exists reports whether the set matches any node.
func (ns *NodeSet) Exists(ctx context.Context) (bool, error) {
	count, err := countOf(ctx, ns)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Contains reports whether a saved node belongs to the set.
func (ns *NodeSet) Contains(ctx context.Context, node *schema.Node) (bool, error) {
	return containsOf(ctx, ns, node)
}

// Get retrieves exactly one result matching the supplied filters. It
// compiles with a limit of two rows to distinguish "exactly one" from
// "more than one" without fetching unbounded data.
func (ns *NodeSet) Get(ctx context.Context, conds ...Cond) (interface{}, error) {
	results, err := ns.fetch(ctx, 2, conds)
	if err != nil {
		return nil, err
	}
	if len(results) > 1 {
		return nil, neoerrors.MultipleResultsFoundf(
			"expected one %s, found more", ns.sourceClass.Label())
	}
	if len(results) == 0 {
		return nil, neoerrors.NotFoundf("no %s matches the given query", ns.sourceClass.Label())
	}
	return results[0], nil
}

// GetOrNone is Get, except a missing result returns nil instead of an
// error.
func (ns *NodeSet) GetOrNone(ctx context.Context, conds ...Cond) (interface{}, error) {
	result, err := ns.Get(ctx, conds...)
	if neoerrors.IsType(err, neoerrors.ErrorTypeNotFound) {
		return nil, nil
	}
	return result, err
}

// First retrieves the first result matching the supplied filters.
func (ns *NodeSet) First(ctx context.Context, conds ...Cond) (interface{}, error) {
	results, err := ns.fetch(ctx, 1, conds)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, neoerrors.NotFoundf("no %s matches the given query", ns.sourceClass.Label())
	}
	return results[0], nil
}

// FirstOrNone is First, except a missing result returns nil instead of
// an error.
func (ns *NodeSet) FirstOrNone(ctx context.Context, conds ...Cond) (interface{}, error) {
	result, err := ns.First(ctx, conds...)
	if neoerrors.IsType(err, neoerrors.ErrorTypeNotFound) {
		return nil, nil
	}
	return result, err
}

// Item fetches the single result at the given offset.
func (ns *NodeSet) Item(ctx context.Context, index int) (interface{}, error) {
	ns.skipCount = index
	ns.limitCount = 1

	results, err := executeAll(ctx, ns, false)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, neoerrors.NotFoundf("no %s at offset %d", ns.sourceClass.Label(), index)
	}
	return results[0], nil
}

func (ns *NodeSet) fetch(ctx context.Context, limit int, conds []Cond) ([]interface{}, error) {
	ns.Filter(conds...)
	if limit > 0 {
		ns.limitCount = limit
	}
	return executeAll(ctx, ns, false)
}

// querySpec implementation

func (ns *NodeSet) database() Database                  { return ns.db }
func (ns *NodeSet) selfSource() querySource             { return nodeSetSource(ns) }
func (ns *NodeSet) rootClass() *schema.NodeClass        { return ns.sourceClass }
func (ns *NodeSet) relationSpecs() []relationSpec       { return ns.relations }
func (ns *NodeSet) subquerySpecs() []registeredSubquery { return ns.subs }
func (ns *NodeSet) annotationSpecs() []annotation       { return ns.extraResults }
func (ns *NodeSet) pagination() (int, int)              { return ns.skipCount, ns.limitCount }
func (ns *NodeSet) compileError() error                 { return ns.err }

// shared terminal-operation helpers

func executeAll(ctx context.Context, spec querySpec, lazy bool) ([]interface{}, error) {
	rows, _, _, err := executeWithColumns(ctx, spec, lazy)
	if err != nil {
		return nil, err
	}
	return collapseRows(rows), nil
}

func executeWithColumns(ctx context.Context, spec querySpec, lazy bool) ([][]interface{}, []string, *QueryBuilder, error) {
	qb := newQueryBuilder(spec)
	if err := qb.buildAST(); err != nil {
		return nil, nil, nil, err
	}
	rows, columns, err := qb.execute(ctx, lazy)
	if err != nil {
		return nil, nil, nil, err
	}
	return rows, columns, qb, nil
}

// collapseRows unwraps one-column rows so common single-entity queries
// do not force callers to unpack a one-element row.
func collapseRows(rows [][]interface{}) []interface{} {
	out := make([]interface{}, 0, len(rows))
	if len(rows) > 0 && len(rows[0]) == 1 {
		for _, row := range rows {
			out = append(out, row[0])
		}
		return out
	}
	for _, row := range rows {
		out = append(out, row)
	}
	return out
}

func countOf(ctx context.Context, spec querySpec) (int64, error) {
	qb := newQueryBuilder(spec)
	if err := qb.buildAST(); err != nil {
		return 0, err
	}
	return qb.count(ctx)
}

func containsOf(ctx context.Context, spec querySpec, node *schema.Node) (bool, error) {
	if node == nil || node.ElementID == "" {
		return false, neoerrors.InvalidFilterValuef("containment check requires a saved node")
	}

	qb := newQueryBuilder(spec)
	if err := qb.buildAST(); err != nil {
		return false, err
	}
	return qb.contains(ctx, node.ElementID)
}

func zipRows(rows [][]interface{}, columns []string) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		item := make(map[string]interface{}, len(columns))
		for i, column := range columns {
			if i < len(row) {
				item[column] = row[i]
			}
		}
		out = append(out, item)
	}
	return out
}
