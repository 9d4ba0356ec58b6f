package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	neoerrors "github.com/vaibhav938bit/neoquery/internal/errors"
)

func TestDeflateScalarKinds(t *testing.T) {
	tests := []struct {
		name  string
		prop  *Property
		value interface{}
		want  interface{}
	}{
		{"string", NewStringProperty("name"), "Ann", "Ann"},
		{"integer from int", NewIntegerProperty("age"), 21, int64(21)},
		{"integer from int64", NewIntegerProperty("age"), int64(21), int64(21)},
		{"integer from whole float", NewIntegerProperty("age"), float64(21), int64(21)},
		{"float from int", NewFloatProperty("score"), 3, float64(3)},
		{"float", NewFloatProperty("score"), 3.5, 3.5},
		{"boolean", NewBooleanProperty("active"), true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.prop.Deflate(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeflateRejectsWrongKinds(t *testing.T) {
	tests := []struct {
		name  string
		prop  *Property
		value interface{}
	}{
		{"string gets int", NewStringProperty("name"), 42},
		{"integer gets text", NewIntegerProperty("age"), "old"},
		{"integer gets fractional float", NewIntegerProperty("age"), 21.5},
		{"boolean gets text", NewBooleanProperty("active"), "yes"},
		{"datetime gets text", NewDateTimeProperty("created"), "2026-01-01"},
		{"array gets scalar", NewArrayProperty("tags", NewStringProperty("tag")), "vip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.prop.Deflate(tt.value)
			require.Error(t, err)
			assert.True(t, neoerrors.IsType(err, neoerrors.ErrorTypeInvalidFilterValue))
		})
	}
}

func TestDeflateDateTime(t *testing.T) {
	now := time.Now()
	got, err := NewDateTimeProperty("created").Deflate(now)
	require.NoError(t, err)
	assert.Equal(t, now, got)
}

func TestDeflateArrayUsesElementDescriptor(t *testing.T) {
	prop := NewArrayProperty("scores", NewIntegerProperty("score"))

	got, err := prop.Deflate([]int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(1), int64(2)}, got)

	_, err = prop.Deflate([]string{"a"})
	require.Error(t, err)
}

func TestDeflateNilPassesThrough(t *testing.T) {
	got, err := NewStringProperty("name").Deflate(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAliasPropertyHasNoStorage(t *testing.T) {
	alias := NewAliasProperty("fullname", "name")

	assert.True(t, alias.IsAlias())
	assert.Equal(t, "name", alias.AliasTarget())

	_, err := alias.Deflate("Ann")
	require.Error(t, err)
}

func TestUniqueIDDefault(t *testing.T) {
	uidA, ok := NewUniqueIDProperty("uid").DefaultValue()
	require.True(t, ok)
	uidB, _ := NewUniqueIDProperty("uid").DefaultValue()
	assert.NotEqual(t, uidA, uidB)

	_, ok = NewStringProperty("name").DefaultValue()
	assert.False(t, ok)
}

func TestDBNameOverride(t *testing.T) {
	prop := NewStringProperty("name").WithDBName("full_name")
	assert.Equal(t, "name", prop.Name())
	assert.Equal(t, "full_name", prop.DBName())

	assert.Equal(t, "name", NewStringProperty("name").DBName())
}

func TestRegistryResolvesRelationshipTargets(t *testing.T) {
	registry := NewRegistry()
	registry.NewNodeClass("Order")

	customer := registry.NewNodeClass("Customer")
	customer.AddRelationship("orders", NewRelationshipDef("HAS_ORDER", Outgoing, "Order"))

	def, ok := customer.Relationship("orders")
	require.True(t, ok)

	target, err := def.TargetClass()
	require.NoError(t, err)
	assert.Equal(t, "Order", target.Label())
}

func TestRelationshipTargetUnregisteredLabel(t *testing.T) {
	registry := NewRegistry()
	customer := registry.NewNodeClass("Customer")
	customer.AddRelationship("orders", NewRelationshipDef("HAS_ORDER", Outgoing, "Order"))

	def, _ := customer.Relationship("orders")
	_, err := def.TargetClass()
	require.Error(t, err)
	assert.True(t, neoerrors.IsType(err, neoerrors.ErrorTypeUnknownRelationship))
}

func TestDeclarationOrderIsStable(t *testing.T) {
	registry := NewRegistry()
	cls := registry.NewNodeClass("Customer")
	cls.AddProperty(NewStringProperty("b"))
	cls.AddProperty(NewStringProperty("a"))
	cls.AddProperty(NewStringProperty("b")) // redeclaration keeps position

	assert.Equal(t, []string{"b", "a"}, cls.PropertyNames())
}

func TestNodeRelations(t *testing.T) {
	registry := NewRegistry()
	cls := registry.NewNodeClass("Customer")

	node := NewNode(cls, "4:c:1", map[string]interface{}{"name": "Ann"})
	assert.Equal(t, "Ann", node.Property("name"))
	assert.Same(t, cls, node.Class())

	node.SetRelation("orders", []interface{}{"x"})
	assert.Len(t, node.Relations(), 1)

	node.ResetRelations()
	assert.Empty(t, node.Relations())
}
