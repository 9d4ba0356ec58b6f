package query

import (
	"context"

	"github.com/vaibhav938bit/neoquery/internal/schema"
)

// fakeDatabase captures compiled statements and replays canned rows.
type fakeDatabase struct {
	rows    [][]interface{}
	columns []string
	err     error

	queries []string
	params  []map[string]interface{}
}

func (f *fakeDatabase) CypherQuery(ctx context.Context, cypher string, params map[string]interface{}, resolveObjects bool) ([][]interface{}, []string, error) {
	f.queries = append(f.queries, cypher)
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.rows, f.columns, nil
}

func (f *fakeDatabase) IDFunctionName() string { return "elementId" }

func (f *fakeDatabase) ParseExternalID(raw string) (interface{}, error) { return raw, nil }

func (f *fakeDatabase) lastQuery() string {
	if len(f.queries) == 0 {
		return ""
	}
	return f.queries[len(f.queries)-1]
}

func (f *fakeDatabase) lastParams() map[string]interface{} {
	if len(f.params) == 0 {
		return nil
	}
	return f.params[len(f.params)-1]
}

// shopRegistry declares the Customer / Order / Item classes the query
// tests compile against.
func shopRegistry() *schema.Registry {
	registry := schema.NewRegistry()

	item := registry.NewNodeClass("Item")
	item.AddProperty(schema.NewStringProperty("sku"))

	order := registry.NewNodeClass("Order")
	order.AddProperty(schema.NewIntegerProperty("total"))
	order.AddRelationship("items", schema.NewRelationshipDef("CONTAINS", schema.Outgoing, "Item"))

	referral := schema.NewRelationshipClass("Referral")
	referral.AddProperty(schema.NewIntegerProperty("since"))

	customer := registry.NewNodeClass("Customer")
	customer.AddProperty(schema.NewStringProperty("name"))
	customer.AddProperty(schema.NewStringProperty("email"))
	customer.AddProperty(schema.NewStringProperty("status"))
	customer.AddProperty(schema.NewIntegerProperty("age"))
	customer.AddProperty(schema.NewArrayProperty("tags", schema.NewStringProperty("tag")))
	customer.AddProperty(schema.NewAliasProperty("fullname", "name"))
	customer.AddRelationship("orders", schema.NewRelationshipDef("HAS_ORDER", schema.Outgoing, "Order"))
	customer.AddRelationship("referrals", schema.NewRelationshipDef("REFERRED", schema.Outgoing, "Customer").WithModel(referral))

	return registry
}

func customerClass(registry *schema.Registry) *schema.NodeClass {
	cls, _ := registry.Class("Customer")
	return cls
}

func customerSet(db Database) *NodeSet {
	ns, err := NewNodeSet(db, customerClass(shopRegistry()))
	if err != nil {
		panic(err)
	}
	return ns
}
