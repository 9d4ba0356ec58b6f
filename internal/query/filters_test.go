package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	neoerrors "github.com/vaibhav938bit/neoquery/internal/errors"
)

func TestProcessFiltersTranslatesOperators(t *testing.T) {
	customer := customerClass(shopRegistry())

	entries, err := processFilters(customer, Kw{"age__gte": 21, "status": "active"})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Keys process in sorted order.
	assert.Equal(t, filterEntry{property: "age", operator: ">=", value: int64(21)}, entries[0])
	assert.Equal(t, filterEntry{property: "status", operator: "=", value: "active"}, entries[1])
}

func TestProcessFiltersUnknownProperty(t *testing.T) {
	customer := customerClass(shopRegistry())

	_, err := processFilters(customer, Kw{"nickname": "Bob"})
	require.Error(t, err)
	assert.True(t, neoerrors.IsType(err, neoerrors.ErrorTypeUnknownProperty))
}

func TestProcessFiltersUnknownSuffixIsPartOfName(t *testing.T) {
	customer := customerClass(shopRegistry())

	// "age__between" has no known operator suffix, so the whole key is
	// treated as a property name and fails the declaration check.
	_, err := processFilters(customer, Kw{"age__between": 21})
	require.Error(t, err)
	assert.True(t, neoerrors.IsType(err, neoerrors.ErrorTypeUnknownProperty))
}

func TestProcessFiltersAliasRedirectsToTarget(t *testing.T) {
	customer := customerClass(shopRegistry())

	entries, err := processFilters(customer, Kw{"fullname": "Bob"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filterEntry{property: "name", operator: "=", value: "Bob"}, entries[0])
}

func TestProcessFiltersAliasSupportsEqualityOnly(t *testing.T) {
	customer := customerClass(shopRegistry())

	_, err := processFilters(customer, Kw{"fullname__gt": "Bob"})
	require.Error(t, err)
	assert.True(t, neoerrors.IsType(err, neoerrors.ErrorTypeInvalidFilterValue))
}

func TestProcessFiltersLaterEntryReplacesInPlace(t *testing.T) {
	customer := customerClass(shopRegistry())

	// Both keys resolve to the same storage property; the later one (in
	// sorted key order) wins without changing position.
	entries, err := processFilters(customer, Kw{"age__gt": 10, "age__lt": 90})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filterEntry{property: "age", operator: "<", value: int64(90)}, entries[0])
}

func TestProcessFiltersIsNull(t *testing.T) {
	customer := customerClass(shopRegistry())

	entries, err := processFilters(customer, Kw{"name__isnull": true})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filterEntry{property: "name", operator: operatorIsNull, value: nil}, entries[0])
}

func TestSplitFilterKey(t *testing.T) {
	prop, suffix := splitFilterKey("age__gte")
	assert.Equal(t, "age", prop)
	assert.Equal(t, "gte", suffix)

	prop, suffix = splitFilterKey("name__iregex")
	assert.Equal(t, "name", prop)
	assert.Equal(t, "iregex", suffix)

	prop, suffix = splitFilterKey("age")
	assert.Equal(t, "age", prop)
	assert.Equal(t, "", suffix)

	prop, suffix = splitFilterKey("some__field")
	assert.Equal(t, "some__field", prop)
	assert.Equal(t, "", suffix)
}
