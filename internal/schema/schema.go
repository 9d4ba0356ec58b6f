// Package schema declares the object-model side of the query layer:
// node and relationship classes with their property descriptors and
// relationship definitions, plus the registry used to resolve
// relationship targets lazily.
package schema

import (
	neoerrors "github.com/vaibhav938bit/neoquery/internal/errors"
)

// Direction of a relationship relative to its source node.
type Direction int

const (
	Either   Direction = 0
	Outgoing Direction = 1
	Incoming Direction = -1
)

// WildcardRelation matches relationships of any type and length.
const WildcardRelation = "*"

// PropertySource is anything with declared, filterable properties:
// node classes and relationship classes both qualify.
type PropertySource interface {
	Property(name string) (*Property, bool)
	TypeName() string
}

// Registry holds all declared node classes and resolves relationship
// targets by label. Declarations happen once at startup; lookups are
// read-only afterwards.
type Registry struct {
	classes map[string]*NodeClass
	order   []string
}

// NewRegistry creates an empty class registry.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]*NodeClass)}
}

// NewNodeClass declares and registers a node class under its label.
func (r *Registry) NewNodeClass(label string) *NodeClass {
	cls := &NodeClass{
		label:         label,
		registry:      r,
		properties:    make(map[string]*Property),
		relationships: make(map[string]*RelationshipDef),
	}
	if _, exists := r.classes[label]; !exists {
		r.order = append(r.order, label)
	}
	r.classes[label] = cls
	return cls
}

// Class looks up a node class by label.
func (r *Registry) Class(label string) (*NodeClass, bool) {
	cls, ok := r.classes[label]
	return cls, ok
}

// Labels returns the registered labels in declaration order.
func (r *Registry) Labels() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// NodeClass is the compile-time description of one node type: its
// storage label, declared properties, and declared relationships.
type NodeClass struct {
	label         string
	registry      *Registry
	properties    map[string]*Property
	propOrder     []string
	relationships map[string]*RelationshipDef
	relOrder      []string
}

// Label returns the storage label.
func (c *NodeClass) Label() string { return c.label }

// TypeName implements PropertySource.
func (c *NodeClass) TypeName() string { return c.label }

// AddProperty declares a property on the class.
func (c *NodeClass) AddProperty(p *Property) *NodeClass {
	if _, exists := c.properties[p.Name()]; !exists {
		c.propOrder = append(c.propOrder, p.Name())
	}
	c.properties[p.Name()] = p
	return c
}

// AddRelationship declares a named relationship on the class.
func (c *NodeClass) AddRelationship(name string, def *RelationshipDef) *NodeClass {
	def.name = name
	def.owner = c
	if _, exists := c.relationships[name]; !exists {
		c.relOrder = append(c.relOrder, name)
	}
	c.relationships[name] = def
	return c
}

// Property looks up a declared property by name.
func (c *NodeClass) Property(name string) (*Property, bool) {
	p, ok := c.properties[name]
	return p, ok
}

// PropertyNames returns declared property names in declaration order.
func (c *NodeClass) PropertyNames() []string {
	out := make([]string, len(c.propOrder))
	copy(out, c.propOrder)
	return out
}

// Relationship looks up a declared relationship by name.
func (c *NodeClass) Relationship(name string) (*RelationshipDef, bool) {
	def, ok := c.relationships[name]
	return def, ok
}

// RelationshipNames returns declared relationship names in declaration order.
func (c *NodeClass) RelationshipNames() []string {
	out := make([]string, len(c.relOrder))
	copy(out, c.relOrder)
	return out
}

// RelationshipDef describes one declared relationship: its type name
// (or wildcard), direction, target label, and optional relationship
// model carrying edge properties. The target class resolves lazily
// through the owning class's registry so classes can reference each
// other regardless of declaration order.
type RelationshipDef struct {
	name         string
	relationType string
	direction    Direction
	targetLabel  string
	model        *RelationshipClass
	owner        *NodeClass
}

// NewRelationshipDef declares a relationship of the given type and
// direction to the node class registered under targetLabel.
func NewRelationshipDef(relationType string, direction Direction, targetLabel string) *RelationshipDef {
	return &RelationshipDef{
		relationType: relationType,
		direction:    direction,
		targetLabel:  targetLabel,
	}
}

// WithModel attaches a relationship model so edge properties can be
// filtered through Traversal.Match.
func (d *RelationshipDef) WithModel(m *RelationshipClass) *RelationshipDef {
	d.model = m
	return d
}

// Name returns the attribute-style relationship name.
func (d *RelationshipDef) Name() string { return d.name }

// Type returns the relationship type name, or WildcardRelation.
func (d *RelationshipDef) Type() string { return d.relationType }

// Direction returns the declared direction.
func (d *RelationshipDef) Direction() Direction { return d.direction }

// Model returns the attached relationship model, if any.
func (d *RelationshipDef) Model() *RelationshipClass { return d.model }

// TargetClass resolves the target node class through the registry.
func (d *RelationshipDef) TargetClass() (*NodeClass, error) {
	if d.owner == nil || d.owner.registry == nil {
		return nil, neoerrors.UnknownRelationshipf("relationship %q is not attached to a registered class", d.name)
	}
	cls, ok := d.owner.registry.Class(d.targetLabel)
	if !ok {
		return nil, neoerrors.UnknownRelationshipf("relationship %q targets unregistered label %q", d.name, d.targetLabel)
	}
	return cls, nil
}

// RelationshipClass is the compile-time description of a relationship
// model: the declared properties carried on the edge itself.
type RelationshipClass struct {
	name       string
	properties map[string]*Property
	propOrder  []string
}

// NewRelationshipClass declares a relationship model.
func NewRelationshipClass(name string) *RelationshipClass {
	return &RelationshipClass{name: name, properties: make(map[string]*Property)}
}

// TypeName implements PropertySource.
func (c *RelationshipClass) TypeName() string { return c.name }

// AddProperty declares a property on the relationship model.
func (c *RelationshipClass) AddProperty(p *Property) *RelationshipClass {
	if _, exists := c.properties[p.Name()]; !exists {
		c.propOrder = append(c.propOrder, p.Name())
	}
	c.properties[p.Name()] = p
	return c
}

// Property looks up a declared property by name.
func (c *RelationshipClass) Property(name string) (*Property, bool) {
	p, ok := c.properties[name]
	return p, ok
}

// PropertyNames returns declared property names in declaration order.
func (c *RelationshipClass) PropertyNames() []string {
	out := make([]string, len(c.propOrder))
	copy(out, c.propOrder)
	return out
}
