package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	neoerrors "github.com/vaibhav938bit/neoquery/internal/errors"
	"github.com/vaibhav938bit/neoquery/internal/schema"
)

func TestResolveSubgraphSingleHop(t *testing.T) {
	registry := shopRegistry()
	cls := customerClass(registry)
	orderCls, _ := registry.Class("Order")

	customer := schema.NewNode(cls, "4:c:1", map[string]interface{}{"name": "Ann"})
	order := schema.NewNode(orderCls, "4:o:1", map[string]interface{}{"total": int64(12)})
	edge := schema.NewRelationship(nil, "HAS_ORDER", "5:r:1", nil)

	fake := &fakeDatabase{
		rows: [][]interface{}{{
			customer,
			[]interface{}{order},
			[]interface{}{edge},
		}},
		columns: []string{"customer", "order_orders_1", "r1"},
	}

	ns, err := NewNodeSet(fake, cls)
	require.NoError(t, err)
	ns.FetchRelations("orders")

	results, err := ns.ResolveSubgraph(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Same(t, customer, results[0])

	orders, ok := results[0].Relations()["orders"].([]interface{})
	require.True(t, ok)
	require.Len(t, orders, 1)
	assert.Same(t, order, orders[0])

	edges, ok := results[0].Relations()["orders_relationship"].([]interface{})
	require.True(t, ok)
	require.Len(t, edges, 1)
	assert.Same(t, edge, edges[0])
}

func TestResolveSubgraphTwoHops(t *testing.T) {
	registry := shopRegistry()
	cls := customerClass(registry)
	orderCls, _ := registry.Class("Order")
	itemCls, _ := registry.Class("Item")

	customer := schema.NewNode(cls, "4:c:1", nil)
	order := schema.NewNode(orderCls, "4:o:1", nil)
	item := schema.NewNode(itemCls, "4:i:1", nil)

	// Nested collect() yields a one-element list of lists; the inner
	// list is what attaches.
	fake := &fakeDatabase{
		rows: [][]interface{}{{
			customer,
			[]interface{}{order},
			nil,
			[]interface{}{[]interface{}{item}},
			nil,
		}},
		columns: []string{"customer", "order_orders_1", "r1", "item_items_1", "r2"},
	}

	ns, err := NewNodeSet(fake, cls)
	require.NoError(t, err)
	ns.FetchRelations("orders__items")

	results, err := ns.ResolveSubgraph(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	orders, ok := results[0].Relations()["orders"].([]interface{})
	require.True(t, ok)
	require.Len(t, orders, 1)

	attachedOrder, ok := orders[0].(*schema.Node)
	require.True(t, ok)
	items, ok := attachedOrder.Relations()["items"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Same(t, item, items[0])
}

func TestResolveSubgraphShapeTree(t *testing.T) {
	ns := customerSet(&fakeDatabase{})
	ns.FetchRelations("orders__items")

	qb := newQueryBuilderWithOptions(ns, true, false)
	require.NoError(t, qb.buildAST())

	orders, ok := qb.ast.subgraph.child("orders")
	require.True(t, ok)
	assert.Equal(t, "order_orders_1", orders.variableName)
	assert.Equal(t, "r1", orders.relVariableName)

	items, ok := orders.child("items")
	require.True(t, ok)
	assert.Equal(t, "item_items_1", items.variableName)
	assert.Equal(t, "r2", items.relVariableName)
	assert.Empty(t, items.childOrder)
}

func TestResolveSubgraphRequiresRegisteredPaths(t *testing.T) {
	ns := customerSet(&fakeDatabase{})

	_, err := ns.ResolveSubgraph(context.Background())
	require.Error(t, err)
	assert.True(t, neoerrors.IsType(err, neoerrors.ErrorTypeNothingToResolve))
}

func TestResolveSubgraphRejectsTraverseOnlyPaths(t *testing.T) {
	ns := customerSet(&fakeDatabase{})
	ns.TraverseRelations("orders")

	_, err := ns.ResolveSubgraph(context.Background())
	require.Error(t, err)
	assert.True(t, neoerrors.IsType(err, neoerrors.ErrorTypeUnsupportedSubgraphShape))
}

func TestResolveSubgraphRequiresRootColumn(t *testing.T) {
	registry := shopRegistry()
	cls := customerClass(registry)
	orderCls, _ := registry.Class("Order")

	fake := &fakeDatabase{
		rows:    [][]interface{}{{schema.NewNode(orderCls, "4:o:1", nil)}},
		columns: []string{"order_orders_1"},
	}

	ns, err := NewNodeSet(fake, cls)
	require.NoError(t, err)
	ns.FetchRelations("orders")

	_, err = ns.ResolveSubgraph(context.Background())
	require.Error(t, err)
	assert.True(t, neoerrors.IsType(err, neoerrors.ErrorTypeUnsupportedSubgraphShape))
}
