package schema

import (
	"reflect"
	"time"

	"github.com/google/uuid"

	neoerrors "github.com/vaibhav938bit/neoquery/internal/errors"
)

// PropertyKind identifies the storage shape of a declared property.
type PropertyKind int

const (
	KindString PropertyKind = iota
	KindInteger
	KindFloat
	KindBoolean
	KindDateTime
	KindUniqueID
	KindArray
	KindAlias
)

// Property describes one declared property of a node or relationship
// class: its declared name, its storage name (which may differ), its
// kind, and how values deflate into wire-safe representations.
type Property struct {
	name    string
	dbName  string
	kind    PropertyKind
	element *Property // element descriptor for array properties
	aliasTo string
}

func newProperty(name string, kind PropertyKind) *Property {
	return &Property{name: name, kind: kind}
}

// NewStringProperty declares a string property.
func NewStringProperty(name string) *Property { return newProperty(name, KindString) }

// NewIntegerProperty declares an integer property.
func NewIntegerProperty(name string) *Property { return newProperty(name, KindInteger) }

// NewFloatProperty declares a float property.
func NewFloatProperty(name string) *Property { return newProperty(name, KindFloat) }

// NewBooleanProperty declares a boolean property.
func NewBooleanProperty(name string) *Property { return newProperty(name, KindBoolean) }

// NewDateTimeProperty declares a datetime property.
func NewDateTimeProperty(name string) *Property { return newProperty(name, KindDateTime) }

// NewUniqueIDProperty declares a string property whose default value is
// a freshly generated UUID.
func NewUniqueIDProperty(name string) *Property { return newProperty(name, KindUniqueID) }

// NewArrayProperty declares a multi-valued property whose elements
// deflate through the given element descriptor.
func NewArrayProperty(name string, element *Property) *Property {
	p := newProperty(name, KindArray)
	p.element = element
	return p
}

// NewAliasProperty declares an alias to another declared property.
// Alias properties have no storage of their own; filters against them
// redirect to the target and support equality only.
func NewAliasProperty(name, target string) *Property {
	p := newProperty(name, KindAlias)
	p.aliasTo = target
	return p
}

// WithDBName overrides the storage name used in generated statements.
func (p *Property) WithDBName(dbName string) *Property {
	p.dbName = dbName
	return p
}

// Name returns the declared property name.
func (p *Property) Name() string { return p.name }

// DBName returns the storage name of the property, falling back to the
// declared name when no override is set.
func (p *Property) DBName() string {
	if p.dbName != "" {
		return p.dbName
	}
	return p.name
}

// Kind returns the property kind.
func (p *Property) Kind() PropertyKind { return p.kind }

// IsArray reports whether the property is multi-valued.
func (p *Property) IsArray() bool { return p.kind == KindArray }

// IsAlias reports whether the property aliases another property.
func (p *Property) IsAlias() bool { return p.kind == KindAlias }

// AliasTarget returns the declared name of the aliased property.
func (p *Property) AliasTarget() string { return p.aliasTo }

// DefaultValue produces the default for properties that have one.
func (p *Property) DefaultValue() (interface{}, bool) {
	if p.kind == KindUniqueID {
		return uuid.NewString(), true
	}
	return nil, false
}

// Deflate converts a domain-level value into its wire-safe stored
// representation, failing when the value does not fit the declared kind.
func (p *Property) Deflate(value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}

	switch p.kind {
	case KindString, KindUniqueID:
		s, ok := value.(string)
		if !ok {
			return nil, neoerrors.InvalidFilterValuef("property %q expects a string, got %T", p.name, value)
		}
		return s, nil

	case KindInteger:
		return deflateInteger(p.name, value)

	case KindFloat:
		return deflateFloat(p.name, value)

	case KindBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, neoerrors.InvalidFilterValuef("property %q expects a bool, got %T", p.name, value)
		}
		return b, nil

	case KindDateTime:
		t, ok := value.(time.Time)
		if !ok {
			return nil, neoerrors.InvalidFilterValuef("property %q expects a time.Time, got %T", p.name, value)
		}
		return t, nil

	case KindArray:
		return p.deflateArray(value)

	case KindAlias:
		return nil, neoerrors.InvalidFilterValuef("alias property %q has no storage of its own", p.name)
	}

	return nil, neoerrors.InvalidFilterValuef("property %q has unsupported kind %d", p.name, p.kind)
}

func (p *Property) deflateArray(value interface{}) (interface{}, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, neoerrors.InvalidFilterValuef("array property %q expects a slice, got %T", p.name, value)
	}

	out := make([]interface{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if p.element == nil {
			out[i] = elem
			continue
		}
		deflated, err := p.element.Deflate(elem)
		if err != nil {
			return nil, err
		}
		out[i] = deflated
	}
	return out, nil
}

func deflateInteger(name string, value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case float64:
		if v == float64(int64(v)) {
			return int64(v), nil
		}
	}
	return nil, neoerrors.InvalidFilterValuef("property %q expects an integer, got %T (%v)", name, value, value)
}

func deflateFloat(name string, value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return nil, neoerrors.InvalidFilterValuef("property %q expects a float, got %T", name, value)
}
