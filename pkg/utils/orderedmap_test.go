package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"its-hmny.dev/agerun/pkg/utils"
)

func TestOrderedMapInsertionOrder(t *testing.T) {
	om := utils.NewOrderedMap[string, int]()
	om.Set("c", 3)
	om.Set("a", 1)
	om.Set("b", 2)

	require.Equal(t, 3, om.Count())
	require.Equal(t, []string{"c", "a", "b"}, om.Keys())
	require.Equal(t, []int{3, 1, 2}, om.Entries())

	// Re-setting an existing key keeps its original position
	om.Set("a", 10)
	require.Equal(t, []string{"c", "a", "b"}, om.Keys())
	require.Equal(t, []int{3, 10, 2}, om.Entries())
}

func TestOrderedMapDelete(t *testing.T) {
	om := utils.NewOrderedMap[string, int]()
	om.Set("a", 1)
	om.Set("b", 2)
	om.Set("c", 3)

	require.True(t, om.Delete("b"))
	require.False(t, om.Delete("b"))
	require.False(t, om.Has("b"))
	require.Equal(t, []string{"a", "c"}, om.Keys())

	// Re-adding a deleted key appends it at the end
	om.Set("b", 20)
	require.Equal(t, []string{"a", "c", "b"}, om.Keys())
}

func TestOrderedMapLookup(t *testing.T) {
	om := utils.NewOrderedMap[string, string]()
	om.Set("key", "value")

	value, found := om.Get("key")
	require.True(t, found)
	require.Equal(t, "value", value)

	_, found = om.Get("missing")
	require.False(t, found)

	require.Empty(t, utils.NewOrderedMap[string, int]().Keys())
}

func TestOrderedMapIterator(t *testing.T) {
	om := utils.NewOrderedMap[int, string]()
	om.Set(3, "three")
	om.Set(1, "one")

	keys, values := []int{}, []string{}
	for key, value := range om.Iterator() {
		keys, values = append(keys, key), append(values, value)
	}

	require.Equal(t, []int{3, 1}, keys)
	require.Equal(t, []string{"three", "one"}, values)
}
