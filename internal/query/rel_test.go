package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vaibhav938bit/neoquery/internal/schema"
)

func TestRenderRelation(t *testing.T) {
	tests := []struct {
		name         string
		direction    schema.Direction
		relationType string
		want         string
	}{
		{"outgoing", schema.Outgoing, "HAS_ORDER", "(customer)-[r1:`HAS_ORDER`]->(order_orders_1:Order)"},
		{"incoming", schema.Incoming, "HAS_ORDER", "(customer)<-[r1:`HAS_ORDER`]-(order_orders_1:Order)"},
		{"either", schema.Either, "HAS_ORDER", "(customer)-[r1:`HAS_ORDER`]-(order_orders_1:Order)"},
		{"untyped", schema.Outgoing, "", "(customer)-->(order_orders_1:Order)"},
		{"wildcard", schema.Outgoing, schema.WildcardRelation, "(customer)-[*]->(order_orders_1:Order)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderRelation("customer", "order_orders_1:Order", "r1", tt.direction, tt.relationType)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderRelationKeepsRenderedSides(t *testing.T) {
	got := renderRelation("(customer:Customer)", "(:Order)", "r1", schema.Outgoing, "HAS_ORDER")
	assert.Equal(t, "(customer:Customer)-[r1:`HAS_ORDER`]->(:Order)", got)
}
