package schema

// Entity is a materialized graph object that can carry reattached
// relations after subgraph reconstruction.
type Entity interface {
	Relations() map[string]interface{}
	SetRelation(name string, value interface{})
	ResetRelations()
}

// Node is a materialized node returned by the execution collaborator.
type Node struct {
	ElementID  string
	Properties map[string]interface{}

	class     *NodeClass
	relations map[string]interface{}
}

// NewNode materializes a node instance of the given class. The class
// may be nil when the row's labels match no registered class.
func NewNode(class *NodeClass, elementID string, properties map[string]interface{}) *Node {
	return &Node{
		ElementID:  elementID,
		Properties: properties,
		class:      class,
	}
}

// Class returns the node's class, or nil for unregistered labels.
func (n *Node) Class() *NodeClass { return n.class }

// Property returns a raw property value.
func (n *Node) Property(name string) interface{} {
	if n.Properties == nil {
		return nil
	}
	return n.Properties[name]
}

// Relations returns the reattached relation graph, keyed by the
// class-declared relationship name (suffixed with "_relationship" when
// the value is the edge object itself).
func (n *Node) Relations() map[string]interface{} {
	if n.relations == nil {
		n.relations = make(map[string]interface{})
	}
	return n.relations
}

// SetRelation attaches one reconstructed relation.
func (n *Node) SetRelation(name string, value interface{}) {
	n.Relations()[name] = value
}

// ResetRelations discards any previously attached relations.
func (n *Node) ResetRelations() {
	n.relations = make(map[string]interface{})
}

// Relationship is a materialized relationship edge.
type Relationship struct {
	ElementID  string
	Type       string
	Properties map[string]interface{}

	class     *RelationshipClass
	relations map[string]interface{}
}

// NewRelationship materializes a relationship instance. The class may
// be nil when the relationship type has no declared model.
func NewRelationship(class *RelationshipClass, relationType, elementID string, properties map[string]interface{}) *Relationship {
	return &Relationship{
		ElementID:  elementID,
		Type:       relationType,
		Properties: properties,
		class:      class,
	}
}

// Class returns the relationship model, or nil when undeclared.
func (r *Relationship) Class() *RelationshipClass { return r.class }

// Property returns a raw property value.
func (r *Relationship) Property(name string) interface{} {
	if r.Properties == nil {
		return nil
	}
	return r.Properties[name]
}

// Relations returns relations attached below this edge.
func (r *Relationship) Relations() map[string]interface{} {
	if r.relations == nil {
		r.relations = make(map[string]interface{})
	}
	return r.relations
}

// SetRelation attaches one reconstructed relation.
func (r *Relationship) SetRelation(name string, value interface{}) {
	r.Relations()[name] = value
}

// ResetRelations discards any previously attached relations.
func (r *Relationship) ResetRelations() {
	r.relations = make(map[string]interface{})
}
