package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	neoerrors "github.com/vaibhav938bit/neoquery/internal/errors"
	"github.com/vaibhav938bit/neoquery/internal/schema"
)

func TestTranslateComparisonOperators(t *testing.T) {
	age := schema.NewIntegerProperty("age")

	tests := []struct {
		name    string
		suffix  string
		value   interface{}
		wantOp  string
		wantVal interface{}
	}{
		{"greater than", "gt", 21, ">", int64(21)},
		{"less than", "lt", 21, "<", int64(21)},
		{"greater or equal", "gte", 21, ">=", int64(21)},
		{"less or equal", "lte", 21, "<=", int64(21)},
		{"not equal", "ne", 21, "<>", int64(21)},
		{"exact", "exact", 21, "=", int64(21)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, value, err := translateOperator(tt.suffix, "age__"+tt.suffix, tt.value, age)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOp, op)
			assert.Equal(t, tt.wantVal, value)
		})
	}
}

func TestTranslateInOperator(t *testing.T) {
	age := schema.NewIntegerProperty("age")

	op, value, err := translateOperator("in", "age__in", []int{1, 2, 3}, age)
	require.NoError(t, err)
	assert.Equal(t, operatorIn, op)
	assert.Equal(t, []interface{}{int64(1), int64(2), int64(3)}, value)

	_, _, err = translateOperator("in", "age__in", 42, age)
	require.Error(t, err)
	assert.True(t, neoerrors.IsType(err, neoerrors.ErrorTypeInvalidFilterValue))
}

func TestTranslateInOperatorAgainstArrayProperty(t *testing.T) {
	tags := schema.NewArrayProperty("tags", schema.NewStringProperty("tag"))

	op, value, err := translateOperator("in", "tags__in", []string{"a", "b"}, tags)
	require.NoError(t, err)
	assert.Equal(t, operatorArrayIn, op)
	assert.Equal(t, []interface{}{"a", "b"}, value)
}

func TestTranslateNullOperator(t *testing.T) {
	op, value, err := translateNullOperator("name__isnull", true)
	require.NoError(t, err)
	assert.Equal(t, operatorIsNull, op)
	assert.Nil(t, value)

	op, _, err = translateNullOperator("name__isnull", false)
	require.NoError(t, err)
	assert.Equal(t, operatorIsNotNull, op)

	_, _, err = translateNullOperator("name__isnull", "yes")
	require.Error(t, err)
	assert.True(t, neoerrors.IsType(err, neoerrors.ErrorTypeInvalidFilterValue))
}

func TestTranslateRegexOperators(t *testing.T) {
	name := schema.NewStringProperty("name")

	tests := []struct {
		suffix string
		value  string
		want   string
	}{
		{"iexact", "an", "(?i)an"},
		{"contains", "an", ".*an.*"},
		{"icontains", "an", "(?i).*an.*"},
		{"startswith", "an", "an.*"},
		{"istartswith", "an", "(?i)an.*"},
		{"endswith", "an", ".*an"},
		{"iendswith", "an", "(?i).*an"},
		{"iregex", "a+n", "(?i)a+n"},
	}

	for _, tt := range tests {
		t.Run(tt.suffix, func(t *testing.T) {
			op, value, err := translateOperator(tt.suffix, "name__"+tt.suffix, tt.value, name)
			require.NoError(t, err)
			assert.Equal(t, operatorRegex, op)
			assert.Equal(t, tt.want, value)
		})
	}
}

func TestTranslateRegexEscapesLiterals(t *testing.T) {
	name := schema.NewStringProperty("name")

	// String-pattern variants escape regex metacharacters; iregex does not.
	_, value, err := translateOperator("contains", "name__contains", "a.b", name)
	require.NoError(t, err)
	assert.Equal(t, `.*a\.b.*`, value)

	_, value, err = translateOperator("iregex", "name__iregex", "a.b", name)
	require.NoError(t, err)
	assert.Equal(t, "(?i)a.b", value)

	// iexact and iregex render through the same pattern; only iexact
	// treats its input as a literal.
	_, value, err = translateOperator("iexact", "name__iexact", "a.b", name)
	require.NoError(t, err)
	assert.Equal(t, `(?i)a\.b`, value)
}

func TestTranslateRegexRequiresText(t *testing.T) {
	age := schema.NewIntegerProperty("age")

	_, _, err := translateOperator("icontains", "age__icontains", 42, age)
	require.Error(t, err)
	assert.True(t, neoerrors.IsType(err, neoerrors.ErrorTypeInvalidFilterValue))
}
