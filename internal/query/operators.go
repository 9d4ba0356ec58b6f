package query

import (
	"fmt"
	"reflect"
	"regexp"

	neoerrors "github.com/vaibhav938bit/neoquery/internal/errors"
	"github.com/vaibhav938bit/neoquery/internal/schema"
)

// Special operators that render as something other than
// "ident.prop OP $param".
const (
	operatorIn        = "IN"
	operatorIsNull    = "IS NULL"
	operatorIsNotNull = "IS NOT NULL"
	operatorRegex     = "=~"

	// operatorArrayIn marks membership against an array-typed property,
	// rendered as an existential sub-expression over the stored array.
	operatorArrayIn = "__array_in__"

	insensitivePrefix = "(?i)"
)

var unaryOperators = map[string]bool{
	operatorIsNull:    true,
	operatorIsNotNull: true,
}

// regexTemplate describes one regex-rendered filter suffix: the
// pattern the deflated text is substituted into, and whether that text
// is a literal whose metacharacters must be escaped first. iexact and
// iregex share a pattern but differ in escaping, so classification is
// by suffix, never by pattern text.
type regexTemplate struct {
	pattern string
	escape  bool
}

var regexTemplates = map[string]regexTemplate{
	"iexact":      {insensitivePrefix + "%s", true},
	"contains":    {".*%s.*", true},
	"icontains":   {insensitivePrefix + ".*%s.*", true},
	"startswith":  {"%s.*", true},
	"istartswith": {insensitivePrefix + "%s.*", true},
	"endswith":    {".*%s", true},
	"iendswith":   {insensitivePrefix + ".*%s", true},
	"iregex":      {insensitivePrefix + "%s", false},
}

// operatorTable maps the non-regex filter suffixes to their Cypher
// operators.
var operatorTable = map[string]string{
	"lt":     "<",
	"gt":     ">",
	"lte":    "<=",
	"gte":    ">=",
	"ne":     "<>",
	"in":     operatorIn,
	"isnull": operatorIsNull,
	"regex":  operatorRegex,
	"exact":  "=",
}

// knownOperatorSuffix reports whether a filter-key suffix names an
// operator.
func knownOperatorSuffix(suffix string) bool {
	if _, ok := operatorTable[suffix]; ok {
		return true
	}
	_, ok := regexTemplates[suffix]
	return ok
}

// translateOperator turns a filter suffix and a raw comparison value
// into the final Cypher operator and the transformed, deflated
// parameter value. An empty suffix means equality.
func translateOperator(suffix, filterKey string, filterValue interface{}, prop *schema.Property) (string, interface{}, error) {
	if tmpl, ok := regexTemplates[suffix]; ok {
		return translateRegexOperator(tmpl, filterKey, filterValue, prop)
	}

	switch suffix {
	case "in":
		return translateInOperator(filterKey, filterValue, prop)
	case "isnull":
		return translateNullOperator(filterKey, filterValue)
	}

	operator := "="
	if suffix != "" {
		operator = operatorTable[suffix]
	}

	deflated, err := prop.Deflate(filterValue)
	if err != nil {
		return "", nil, err
	}
	return operator, deflated, nil
}

// translateInOperator handles membership. Against an array-typed
// property the stored value is itself a set, so direct membership is
// wrong; the test becomes "any stored element is in the supplied set",
// rendered later as an existential sub-expression.
func translateInOperator(filterKey string, filterValue interface{}, prop *schema.Property) (string, interface{}, error) {
	rv := reflect.ValueOf(filterValue)
	if filterValue == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return "", nil, neoerrors.InvalidFilterValuef(
			"value must be a slice for IN operation %s=%v", filterKey, filterValue)
	}

	if prop.IsArray() {
		deflated, err := prop.Deflate(filterValue)
		if err != nil {
			return "", nil, err
		}
		return operatorArrayIn, deflated, nil
	}

	deflated := make([]interface{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		v, err := prop.Deflate(rv.Index(i).Interface())
		if err != nil {
			return "", nil, err
		}
		deflated[i] = v
	}
	return operatorIn, deflated, nil
}

func translateNullOperator(filterKey string, filterValue interface{}) (string, interface{}, error) {
	isNull, ok := filterValue.(bool)
	if !ok {
		return "", nil, neoerrors.InvalidFilterValuef(
			"value must be a bool for isnull operation on %s", filterKey)
	}
	if isNull {
		return operatorIsNull, nil, nil
	}
	return operatorIsNotNull, nil, nil
}

func translateRegexOperator(tmpl regexTemplate, filterKey string, filterValue interface{}, prop *schema.Property) (string, interface{}, error) {
	deflated, err := prop.Deflate(filterValue)
	if err != nil {
		return "", nil, err
	}
	text, ok := deflated.(string)
	if !ok {
		return "", nil, neoerrors.InvalidFilterValuef("must be a string value for %s", filterKey)
	}
	if tmpl.escape {
		text = regexp.QuoteMeta(text)
	}
	return operatorRegex, fmt.Sprintf(tmpl.pattern, text), nil
}
