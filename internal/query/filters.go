package query

import (
	"sort"
	"strings"

	neoerrors "github.com/vaibhav938bit/neoquery/internal/errors"
	"github.com/vaibhav938bit/neoquery/internal/schema"
)

// Kw is a set of field__operator filter arguments. An absent operator
// suffix means equality.
type Kw map[string]interface{}

const operatorDelimiter = "__"

// filterEntry is one normalized filter term: the storage property name,
// the translated operator, and the transformed parameter value (nil for
// unary operators).
type filterEntry struct {
	property string
	operator string
	value    interface{}
}

// processFilters checks filter arguments against the class definition,
// deflates their values, and normalizes them into something easy to
// generate Cypher from. Keys are processed in sorted order so repeated
// compilations of the same spec are byte-identical; later entries for
// the same storage property replace earlier ones in place.
func processFilters(source schema.PropertySource, kwargs Kw) ([]filterEntry, error) {
	keys := make([]string, 0, len(kwargs))
	for key := range kwargs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var out []filterEntry
	index := make(map[string]int)

	for _, key := range keys {
		value := kwargs[key]
		propName, suffix := splitFilterKey(key)

		prop, ok := source.Property(propName)
		if !ok {
			return nil, neoerrors.UnknownPropertyf(
				"no such property %q on %s; graph internals like id or elementId are not allowed here",
				propName, source.TypeName())
		}

		var entry filterEntry
		if prop.IsAlias() {
			target, ok := source.Property(prop.AliasTarget())
			if !ok {
				return nil, neoerrors.UnknownPropertyf(
					"alias %q targets undeclared property %q on %s",
					propName, prop.AliasTarget(), source.TypeName())
			}
			// Aliases redirect to the canonical property and bypass
			// operator transformation: equality only.
			if suffix != "" && suffix != "exact" {
				return nil, neoerrors.InvalidFilterValuef(
					"alias property %q supports equality filtering only", propName)
			}
			deflated, err := target.Deflate(value)
			if err != nil {
				return nil, err
			}
			entry = filterEntry{property: target.DBName(), operator: "=", value: deflated}
		} else {
			translated, transformed, err := translateOperator(suffix, key, value, prop)
			if err != nil {
				return nil, err
			}
			entry = filterEntry{property: prop.DBName(), operator: translated, value: transformed}
		}

		if i, exists := index[entry.property]; exists {
			out[i] = entry
			continue
		}
		index[entry.property] = len(out)
		out = append(out, entry)
	}

	return out, nil
}

// splitFilterKey separates the property name from the operator suffix.
// The suffix after the last delimiter is only treated as an operator
// when it is a known one, so property names containing the delimiter
// still resolve. A bare key returns an empty suffix, meaning equality.
func splitFilterKey(key string) (string, string) {
	if i := strings.LastIndex(key, operatorDelimiter); i >= 0 {
		if suffix := key[i+len(operatorDelimiter):]; knownOperatorSuffix(suffix) {
			return key[:i], suffix
		}
	}
	return key, ""
}
