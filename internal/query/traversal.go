package query

import (
	"context"

	neoerrors "github.com/vaibhav938bit/neoquery/internal/errors"
	"github.com/vaibhav938bit/neoquery/internal/schema"
)

// Traversal is a query spec over the nodes reached by following one
// declared relationship from a source. Like NodeSet it stays lazy until
// a terminal operation compiles and executes it.
type Traversal struct {
	db          Database
	src         querySource
	sourceClass *schema.NodeClass
	targetClass *schema.NodeClass

	name string
	def  *schema.RelationshipDef

	rawFilters []Kw

	skipCount  int
	limitCount int

	err error
}

// NewTraversal creates a traversal spec from a source over the named
// relationship definition.
func NewTraversal(db Database, source interface{}, name string, def *schema.RelationshipDef) (*Traversal, error) {
	src, cls, err := resolveSource(source)
	if err != nil {
		return nil, err
	}

	target, err := def.TargetClass()
	if err != nil {
		return nil, err
	}

	return &Traversal{
		db:          db,
		src:         src,
		sourceClass: cls,
		targetClass: target,
		name:        name,
		def:         def,
	}, nil
}

// TargetClass returns the class the traversed nodes belong to.
func (t *Traversal) TargetClass() *schema.NodeClass { return t.targetClass }

func (t *Traversal) setErr(err error) {
	if t.err == nil {
		t.err = err
	}
}

// Match records property filters against the traversed relationship
// itself. Filtering requires the relationship to declare a model so the
// property names and operators can be validated at compile time.
func (t *Traversal) Match(kwargs Kw) *Traversal {
	if len(kwargs) == 0 {
		return t
	}
	if t.def.Model() == nil {
		t.setErr(neoerrors.InvalidFilterSourcef(
			"relationship filtering on %q requires a declared relationship model", t.name))
		return t
	}
	t.rawFilters = append(t.rawFilters, kwargs)
	return t
}

// Skip sets the number of rows to skip.
func (t *Traversal) Skip(n int) *Traversal {
	t.skipCount = n
	return t
}

// Limit caps the number of rows returned.
func (t *Traversal) Limit(n int) *Traversal {
	t.limitCount = n
	return t
}

// Slice mutates the spec's pagination window and returns the still-lazy
// spec itself.
func (t *Traversal) Slice(start, stop int) *Traversal {
	switch {
	case stop > 0 && start > 0:
		t.limitCount = stop - start
		t.skipCount = start
	case stop > 0:
		t.limitCount = stop
	case start > 0:
		t.skipCount = start
	}
	return t
}

// CompileQuery compiles the current spec state and returns the
// statement text plus its parameter table without executing anything.
func (t *Traversal) CompileQuery() (string, map[string]interface{}, error) {
	qb := newQueryBuilder(t)
	if err := qb.buildAST(); err != nil {
		return "", nil, err
	}
	return qb.buildQuery(), qb.params, nil
}

// All compiles and executes the traversal, returning the reached nodes.
func (t *Traversal) All(ctx context.Context) ([]interface{}, error) {
	return executeAll(ctx, t, false)
}

// AllLazy fetches only external identities instead of full objects.
func (t *Traversal) AllLazy(ctx context.Context) ([]interface{}, error) {
	return executeAll(ctx, t, true)
}

// Count compiles and executes the traversal in count mode.
func (t *Traversal) Count(ctx context.Context) (int64, error) {
	return countOf(ctx, t)
}

// Exists reports whether the traversal reaches any node.
func (t *Traversal) Exists(ctx context.Context) (bool, error) {
	count, err := countOf(ctx, t)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Contains reports whether a saved node is reachable by the traversal.
func (t *Traversal) Contains(ctx context.Context, node *schema.Node) (bool, error) {
	return containsOf(ctx, t, node)
}

// Item fetches the single result at the given offset.
func (t *Traversal) Item(ctx context.Context, index int) (interface{}, error) {
	t.skipCount = index
	t.limitCount = 1

	results, err := executeAll(ctx, t, false)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, neoerrors.NotFoundf("no %s at offset %d", t.targetClass.Label(), index)
	}
	return results[0], nil
}

// querySpec implementation

func (t *Traversal) database() Database                  { return t.db }
func (t *Traversal) selfSource() querySource             { return traversalSource(t) }
func (t *Traversal) rootClass() *schema.NodeClass        { return t.targetClass }
func (t *Traversal) relationSpecs() []relationSpec       { return nil }
func (t *Traversal) subquerySpecs() []registeredSubquery { return nil }
func (t *Traversal) annotationSpecs() []annotation       { return nil }
func (t *Traversal) pagination() (int, int)              { return t.skipCount, t.limitCount }
func (t *Traversal) compileError() error                 { return t.err }
