package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereOrdersKeysDeterministically(t *testing.T) {
	q := Where(Kw{"b": 2, "a": 1, "c": 3})
	require.Len(t, q.children, 3)
	assert.Equal(t, "a", q.children[0].leaf.key)
	assert.Equal(t, "b", q.children[1].leaf.key)
	assert.Equal(t, "c", q.children[2].leaf.key)
}

func TestCombineSkipsEmptyTrees(t *testing.T) {
	a := Where(Kw{"x": 1})

	combined := And(a, Where(Kw{}), nil)
	assert.Same(t, a, combined)

	assert.True(t, And().isEmpty())
	assert.True(t, Where(Kw{}).isEmpty())
	assert.False(t, a.isEmpty())
}

func TestAndOrBuildSubtrees(t *testing.T) {
	a := Where(Kw{"x": 1})
	b := Where(Kw{"y": 2})

	and := And(a, b)
	require.Len(t, and.children, 2)
	assert.Equal(t, andConnector, and.connector)
	assert.Same(t, a, and.children[0].sub)
	assert.Same(t, b, and.children[1].sub)

	or := a.Or(b)
	assert.Equal(t, orConnector, or.connector)
	require.Len(t, or.children, 2)
}

func TestNotNegates(t *testing.T) {
	inner := Where(Kw{"x": 1})
	negated := Not(inner)

	assert.True(t, negated.negated)
	require.Len(t, negated.children, 1)
	assert.Same(t, inner, negated.children[0].sub)
}
