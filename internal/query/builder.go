package query

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	neoerrors "github.com/vaibhav938bit/neoquery/internal/errors"
	"github.com/vaibhav938bit/neoquery/internal/schema"
)

// querySpec is the read-only view a builder borrows from a NodeSet or
// Traversal for the duration of one compilation. The builder never
// outlives the compilation and is never stored back on the spec.
type querySpec interface {
	database() Database
	selfSource() querySource
	rootClass() *schema.NodeClass
	relationSpecs() []relationSpec
	subquerySpecs() []registeredSubquery
	annotationSpecs() []annotation
	pagination() (skip, limit int)
	compileError() error
}

// relationSpec is one registered relationship path: dotted hops from
// the root class, optionally rendered as OPTIONAL MATCH, optionally
// aliased on the last hop, with or without inclusion in the return set.
type relationSpec struct {
	path            string
	optional        bool
	includeInReturn bool
	alias           string
}

// registeredSubquery is a compiled sub-statement plus the variables it
// contributes to the outer return clause.
type registeredSubquery struct {
	query     string
	returnSet []string
}

// annotation is one aggregate projection appended to the return list.
type annotation struct {
	name string
	expr Aggregate
}

// hasConstraint is one relationship-existence condition from Has.
type hasConstraint struct {
	name string
	def  *schema.RelationshipDef
}

const pathDelimiter = "__"

// QueryBuilder compiles one query spec into a statement. Each instance
// owns its AST and parameter table exclusively; terminal operations on
// the same spec each perform a fresh compilation.
type QueryBuilder struct {
	spec            querySpec
	db              Database
	ast             *queryAST
	params          map[string]interface{}
	placeholders    map[string]int
	identCount      int
	nodeCounters    map[string]int
	withSubgraph    bool
	subqueryContext bool
}

func newQueryBuilder(spec querySpec) *QueryBuilder {
	return newQueryBuilderWithOptions(spec, false, false)
}

func newQueryBuilderWithOptions(spec querySpec, withSubgraph, subqueryContext bool) *QueryBuilder {
	return &QueryBuilder{
		spec:            spec,
		db:              spec.database(),
		ast:             newQueryAST(),
		params:          make(map[string]interface{}),
		placeholders:    make(map[string]int),
		nodeCounters:    make(map[string]int),
		withSubgraph:    withSubgraph,
		subqueryContext: subqueryContext,
	}
}

// buildAST compiles the spec's current state into the statement model.
// Traversal paths resolve first so their return/shape state exists
// before filters and pagination are applied.
func (qb *QueryBuilder) buildAST() error {
	if err := qb.spec.compileError(); err != nil {
		return err
	}

	for _, relation := range qb.spec.relationSpecs() {
		if _, err := qb.buildTraversalFromPath(relation, qb.spec.rootClass()); err != nil {
			return err
		}
	}

	if _, err := qb.buildSource(qb.spec.selfSource()); err != nil {
		return err
	}

	skip, limit := qb.spec.pagination()
	qb.ast.skip = skip
	qb.ast.limit = limit

	return nil
}

// buildSource dispatches on the closed set of source variants.
func (qb *QueryBuilder) buildSource(src querySource) (string, error) {
	switch src.kind {
	case sourceKindTraversal:
		return qb.buildTraversal(src.traversal)
	case sourceKindNodeSet:
		return qb.buildNodeSetSource(src.nodeSet)
	case sourceKindNode:
		return qb.buildNode(src.node)
	case sourceKindClass:
		return qb.buildLabel(strings.ToLower(src.class.Label()), src.class), nil
	}
	return "", neoerrors.InvalidQuerySourcef("unknown source kind %d", src.kind)
}

func (qb *QueryBuilder) buildNodeSetSource(ns *NodeSet) (string, error) {
	if err := ns.compileError(); err != nil {
		return "", err
	}

	var ident string
	var err error
	if ns.src.kind == sourceKindClass {
		ident = qb.buildLabel(strings.ToLower(ns.src.class.Label()), ns.src.class)
	} else {
		ident, err = qb.buildSource(ns.src)
		if err != nil {
			return "", err
		}
	}

	if err := qb.buildAdditionalMatch(ident, ns); err != nil {
		return "", err
	}

	if ns.orderBySet {
		if err := qb.buildOrderBy(ident, ns); err != nil {
			return "", err
		}
	}

	if !ns.q.isEmpty() {
		stmt, err := qb.parseQFilters(ident, ns.q, ns.sourceClass)
		if err != nil {
			return "", err
		}
		if stmt != "" {
			qb.ast.where = append(qb.ast.where, stmt)
		}
	}

	return ident, nil
}

// buildTraversal matches a relationship from a source to a set of nodes.
func (qb *QueryBuilder) buildTraversal(t *Traversal) (string, error) {
	if err := t.compileError(); err != nil {
		return "", err
	}

	rhsLabel := ":" + t.targetClass.Label()

	relIdent := qb.createIdent()
	lhsIdent, err := qb.buildSource(t.src)
	if err != nil {
		return "", err
	}
	traversalIdent := t.name + "_" + relIdent
	rhsIdent := traversalIdent + rhsLabel
	qb.ast.returnClause = traversalIdent
	qb.ast.resultClass = t.targetClass

	stmt := renderRelation(lhsIdent, rhsIdent, relIdent, t.def.Direction(), t.def.Type())
	qb.ast.match = append(qb.ast.match, stmt)

	if len(t.rawFilters) > 0 {
		model := t.def.Model()
		if model == nil {
			return "", neoerrors.InvalidFilterSourcef(
				"relationship filtering on %q requires a declared relationship model", t.name)
		}
		var stmts []string
		for _, kwargs := range t.rawFilters {
			entries, err := processFilters(model, kwargs)
			if err != nil {
				return "", err
			}
			for _, entry := range entries {
				stmts = append(stmts, qb.renderFilterEntry(relIdent, entry))
			}
		}
		qb.ast.where = append(qb.ast.where, strings.Join(stmts, " AND "))
	}

	return traversalIdent, nil
}

// buildNode emulates a START lookup for a concrete node instance.
func (qb *QueryBuilder) buildNode(node *schema.Node) (string, error) {
	if node.ElementID == "" {
		return "", neoerrors.InvalidQuerySourcef("unsaved node used as query source")
	}

	ident := strings.ToLower(node.Class().Label())
	placeholder := qb.registerPlaceholder(ident)

	qb.ast.lookup = fmt.Sprintf("MATCH (%s) WHERE %s(%s)=$%s WITH %s",
		ident, qb.db.IDFunctionName(), ident, placeholder, ident)

	id, err := qb.db.ParseExternalID(node.ElementID)
	if err != nil {
		return "", err
	}
	qb.params[placeholder] = id

	qb.ast.returnClause = ident
	qb.ast.resultClass = node.Class()
	return ident, nil
}

// buildLabel matches nodes by label.
func (qb *QueryBuilder) buildLabel(ident string, cls *schema.NodeClass) string {
	identWithLabel := ident + ":" + cls.Label()

	if qb.ast.returnClause == "" && !containsString(qb.ast.additionalReturn, ident) {
		qb.ast.match = append(qb.ast.match, "("+identWithLabel+")")
		qb.ast.returnClause = ident
		qb.ast.resultClass = cls
	}
	return ident
}

// buildAdditionalMatch renders relationship-existence constraints from
// Has calls as pattern predicates in the where clause.
func (qb *QueryBuilder) buildAdditionalMatch(ident string, ns *NodeSet) error {
	for _, constraint := range ns.mustMatch {
		stmt, err := qb.renderHasConstraint(ident, constraint)
		if err != nil {
			return err
		}
		qb.ast.where = append(qb.ast.where, stmt)
	}

	for _, constraint := range ns.dontMatch {
		stmt, err := qb.renderHasConstraint(ident, constraint)
		if err != nil {
			return err
		}
		qb.ast.where = append(qb.ast.where, "NOT "+stmt)
	}

	return nil
}

func (qb *QueryBuilder) renderHasConstraint(ident string, constraint hasConstraint) (string, error) {
	target, err := constraint.def.TargetClass()
	if err != nil {
		return "", err
	}
	label := ":" + target.Label()
	return renderRelation(ident, label, "", constraint.def.Direction(), constraint.def.Type()), nil
}

func (qb *QueryBuilder) buildOrderBy(ident string, ns *NodeSet) error {
	if containsString(ns.orderByElements, randomOrderToken) {
		qb.ast.withClause = ident + ", rand() as r"
		qb.ast.orderBy = []string{"r"}
		return nil
	}

	for _, raw := range ns.orderByElements {
		term := strings.TrimSpace(raw)
		descending := false
		if strings.HasPrefix(term, "-") {
			term = term[1:]
			descending = true
		}

		prop, ok := ns.sourceClass.Property(term)
		if !ok {
			return neoerrors.UnknownPropertyf(
				"no such property %q on %s; graph internals like id or elementId are not allowed here",
				term, ns.sourceClass.Label())
		}
		if prop.IsAlias() {
			term = prop.AliasTarget()
		}

		rendered := ident + "." + term
		if descending {
			rendered += " DESC"
		}
		qb.ast.orderBy = append(qb.ast.orderBy, rendered)
	}

	return nil
}

// buildTraversalFromPath expands a dotted relationship path into chained
// match fragments, one per hop, reusing the previous hop's identifier as
// the next left-hand side.
func (qb *QueryBuilder) buildTraversalFromPath(relation relationSpec, cls *schema.NodeClass) (string, error) {
	parts := strings.Split(relation.path, pathDelimiter)
	sourceIter := cls
	shapeLevel := qb.ast.subgraph
	var prevIdent, rhsName string

	for index, part := range parts {
		relDef, ok := sourceIter.Relationship(part)
		if !ok {
			return "", neoerrors.UnknownRelationshipf(
				"no such relation %q defined on a %s", part, sourceIter.Label())
		}
		target, err := relDef.TargetClass()
		if err != nil {
			return "", err
		}

		rhsLabel := target.Label()
		relReference := rhsLabel + "_" + part
		qb.nodeCounters[relReference]++
		if index+1 == len(parts) && relation.alias != "" {
			// An alias names the last hop in the path.
			rhsName = relation.alias
		} else {
			rhsName = strings.ToLower(rhsLabel) + "_" + part + "_" + strconv.Itoa(qb.nodeCounters[relReference])
		}
		rhsIdent := rhsName + ":" + rhsLabel
		if relation.includeInReturn {
			qb.addAdditionalReturn(rhsName)
		}

		// Each hop renders as its own fragment anchored on the previous
		// hop's bare identifier, never as one long chained pattern.
		var lhsIdent string
		if index == 0 {
			lhsName := strings.ToLower(sourceIter.Label())
			lhsIdent = lhsName + ":" + sourceIter.Label()
			// The first hop wires the root into the primary return slot
			// so containment and count always have one.
			qb.ast.returnClause = lhsName
			if qb.subqueryContext {
				// Inside a CALL subquery the root is bound by the outer
				// WITH; no label on the identifier.
				lhsIdent = lhsName
			}
		} else {
			lhsIdent = prevIdent
		}

		relIdent := qb.createIdent()
		if qb.withSubgraph {
			if _, exists := shapeLevel.child(part); !exists {
				shapeLevel.addChild(part, newShapeNode(target, rhsName, relIdent))
			}
		}
		if relation.includeInReturn {
			qb.addAdditionalReturn(relIdent)
		}

		fragment := renderRelation(lhsIdent, rhsIdent, relIdent, relDef.Direction(), relDef.Type())
		if relation.optional {
			qb.ast.optionalMatch = append(qb.ast.optionalMatch, fragment)
		} else {
			qb.ast.match = append(qb.ast.match, fragment)
		}

		prevIdent = rhsName
		sourceIter = target
		if qb.withSubgraph {
			shapeLevel, _ = shapeLevel.child(part)
		}
	}

	return rhsName, nil
}

func (qb *QueryBuilder) createIdent() string {
	qb.identCount++
	return "r" + strconv.Itoa(qb.identCount)
}

func (qb *QueryBuilder) addAdditionalReturn(name string) {
	if name == qb.ast.returnClause || containsString(qb.ast.additionalReturn, name) {
		return
	}
	qb.ast.additionalReturn = append(qb.ast.additionalReturn, name)
}

// registerPlaceholder hands out a globally unique parameter name
// derived from the base name plus an occurrence counter. No two values
// in one compiled statement ever share a placeholder.
func (qb *QueryBuilder) registerPlaceholder(key string) string {
	qb.placeholders[key]++
	return key + "_" + strconv.Itoa(qb.placeholders[key])
}

// parseQFilters renders a boolean filter tree depth-first. OR subtrees
// are parenthesized to hold precedence against the AND join of sibling
// terms; negated nodes wrap their rendered body in NOT (...).
func (qb *QueryBuilder) parseQFilters(ident string, q *Q, source schema.PropertySource) (string, error) {
	var target []string

	for _, child := range q.children {
		if child.sub != nil {
			rendered, err := qb.parseQFilters(ident, child.sub, source)
			if err != nil {
				return "", err
			}
			if child.sub.connector == orConnector {
				rendered = "(" + rendered + ")"
			}
			target = append(target, rendered)
			continue
		}

		entries, err := processFilters(source, Kw{child.leaf.key: child.leaf.value})
		if err != nil {
			return "", err
		}
		for _, entry := range entries {
			target = append(target, qb.renderFilterEntry(ident, entry))
		}
	}

	rendered := strings.Join(target, " "+q.connector+" ")
	if q.negated {
		rendered = "NOT (" + rendered + ")"
	}
	return rendered, nil
}

// renderFilterEntry produces one comparison term, binding the value
// through a freshly registered placeholder. Unary operators bind none.
func (qb *QueryBuilder) renderFilterEntry(ident string, entry filterEntry) string {
	if unaryOperators[entry.operator] {
		return fmt.Sprintf("%s.%s %s", ident, entry.property, entry.operator)
	}

	placeholder := qb.registerPlaceholder(ident + "_" + entry.property)
	qb.params[placeholder] = entry.value

	if entry.operator == operatorArrayIn {
		return fmt.Sprintf("any(x IN %s.%s WHERE x IN $%s)", ident, entry.property, placeholder)
	}
	return fmt.Sprintf("%s.%s %s $%s", ident, entry.property, entry.operator, placeholder)
}

// buildQuery assembles the statement text in fixed clause order. Match
// fragments stay one clause each instead of merging into one pattern,
// trading statement length for avoiding cartesian-product row blowups.
func (qb *QueryBuilder) buildQuery() string {
	var query strings.Builder

	if qb.ast.lookup != "" {
		query.WriteString(qb.ast.lookup)
	}

	if len(qb.ast.match) > 0 {
		query.WriteString(" MATCH ")
		query.WriteString(strings.Join(qb.ast.match, " MATCH "))
	}

	if len(qb.ast.optionalMatch) > 0 {
		query.WriteString(" OPTIONAL MATCH ")
		query.WriteString(strings.Join(qb.ast.optionalMatch, " OPTIONAL MATCH "))
	}

	if len(qb.ast.where) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(strings.Join(qb.ast.where, " AND "))
	}

	if qb.ast.withClause != "" {
		query.WriteString(" WITH ")
		query.WriteString(qb.ast.withClause)
	}

	var returnedItems []string
	for _, sub := range qb.spec.subquerySpecs() {
		query.WriteString(fmt.Sprintf(" CALL { WITH %s %s }", qb.ast.returnClause, sub.query))
		returnedItems = append(returnedItems, sub.returnSet...)
	}

	query.WriteString(" RETURN ")
	if qb.ast.returnClause != "" && !qb.subqueryContext {
		returnedItems = append(returnedItems, qb.ast.returnClause)
	}
	returnedItems = append(returnedItems, qb.ast.additionalReturn...)
	for _, ann := range qb.spec.annotationSpecs() {
		// An annotation under an existing variable name replaces it to
		// avoid a duplicate-column error.
		returnedItems = removeString(returnedItems, ann.name)
		returnedItems = append(returnedItems, ann.expr.String()+" AS "+ann.name)
	}
	query.WriteString(strings.Join(returnedItems, ", "))

	if len(qb.ast.orderBy) > 0 {
		query.WriteString(" ORDER BY ")
		query.WriteString(strings.Join(qb.ast.orderBy, ", "))
	}

	// With a paginated count, pagination already happened in the WITH
	// clause before the row collapsed to a count.
	if qb.ast.skip > 0 && !qb.ast.isCount {
		query.WriteString(fmt.Sprintf(" SKIP %d", qb.ast.skip))
	}
	if qb.ast.limit > 0 && !qb.ast.isCount {
		query.WriteString(fmt.Sprintf(" LIMIT %d", qb.ast.limit))
	}

	return strings.TrimSpace(query.String())
}

// count collapses the statement to a single count of the primary
// identifier. Pagination folds into the WITH clause; order-by and
// additional returns are invalid once rows collapse and are dropped.
func (qb *QueryBuilder) count(ctx context.Context) (int64, error) {
	qb.ast.isCount = true
	qb.ast.withClause = qb.ast.returnClause
	if qb.ast.skip > 0 {
		qb.ast.withClause += fmt.Sprintf(" SKIP %d", qb.ast.skip)
	}
	if qb.ast.limit > 0 {
		qb.ast.withClause += fmt.Sprintf(" LIMIT %d", qb.ast.limit)
	}

	qb.ast.returnClause = fmt.Sprintf("count(%s)", qb.ast.returnClause)
	qb.ast.orderBy = nil
	qb.ast.additionalReturn = nil

	rows, _, err := qb.db.CypherQuery(ctx, qb.buildQuery(), qb.params, false)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, neoerrors.DatabaseErrorf(nil, "count query returned no rows")
	}
	return toInt64(rows[0][0])
}

// contains adds an identity equality on the primary return identifier
// and reduces to count >= 1.
func (qb *QueryBuilder) contains(ctx context.Context, externalID string) (bool, error) {
	if qb.ast.returnClause == "" {
		if len(qb.ast.additionalReturn) == 0 {
			return false, neoerrors.InvalidQuerySourcef("containment check on a query with no return identifier")
		}
		qb.ast.returnClause = qb.ast.additionalReturn[0]
	}

	ident := qb.ast.returnClause
	placeholder := qb.registerPlaceholder(ident + "_contains")
	qb.ast.where = append(qb.ast.where, fmt.Sprintf("%s(%s) = $%s", qb.db.IDFunctionName(), ident, placeholder))

	id, err := qb.db.ParseExternalID(externalID)
	if err != nil {
		return false, err
	}
	qb.params[placeholder] = id

	count, err := qb.count(ctx)
	if err != nil {
		return false, err
	}
	return count >= 1, nil
}

// execute renders and runs the statement. In lazy mode the return
// identifiers are rewritten to project only external identities.
func (qb *QueryBuilder) execute(ctx context.Context, lazy bool) ([][]interface{}, []string, error) {
	if lazy {
		idFn := qb.db.IDFunctionName()
		if qb.ast.returnClause != "" {
			qb.ast.returnClause = fmt.Sprintf("%s(%s)", idFn, qb.ast.returnClause)
		} else {
			projected := make([]string, len(qb.ast.additionalReturn))
			for i, item := range qb.ast.additionalReturn {
				projected[i] = fmt.Sprintf("%s(%s)", idFn, item)
			}
			qb.ast.additionalReturn = projected
		}
	}

	return qb.db.CypherQuery(ctx, qb.buildQuery(), qb.params, true)
}

func toInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	}
	return 0, neoerrors.DatabaseErrorf(nil, "count query returned non-numeric value %T", value)
}

func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

func removeString(items []string, target string) []string {
	out := items[:0]
	for _, item := range items {
		if item != target {
			out = append(out, item)
		}
	}
	return out
}
