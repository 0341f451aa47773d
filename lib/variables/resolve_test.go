package variables

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rustconn/rustconn/api/types"
)

type mapStore map[string]types.Variable

func (m mapStore) Lookup(name, connectionID, documentID string) (types.Variable, bool) {
	v, ok := m[name]
	return v, ok
}

func TestResolveSimple(t *testing.T) {
	store := mapStore{
		"HOST": {Name: "HOST", Value: "example.com"},
	}
	v, err := Resolve(store, "HOST", "", "")
	require.NoError(t, err)
	require.Equal(t, "example.com", v)
}

func TestResolveNestedReference(t *testing.T) {
	store := mapStore{
		"BASE": {Name: "BASE", Value: "example.com"},
		"HOST": {Name: "HOST", Value: "prefix.${BASE}"},
	}
	v, err := Resolve(store, "HOST", "", "")
	require.NoError(t, err)
	require.Equal(t, "prefix.example.com", v)
}

func TestResolveCircularReference(t *testing.T) {
	store := mapStore{
		"A": {Name: "A", Value: "${B}"},
		"B": {Name: "B", Value: "${A}"},
	}
	_, err := Resolve(store, "A", "", "")
	require.Error(t, err)
	var cycleErr *CircularReferenceError
	require.ErrorAs(t, err, &cycleErr)
	require.Equal(t, "A", cycleErr.Name)
}

func TestResolveMaxDepthExceeded(t *testing.T) {
	store := mapStore{}
	// build a chain v0 -> v1 -> ... -> v12 deeper than MaxDepth
	for i := 0; i < 12; i++ {
		name := varName(i)
		next := varName(i + 1)
		store[name] = types.Variable{Name: name, Value: "${" + next + "}"}
	}
	store[varName(12)] = types.Variable{Name: varName(12), Value: "leaf"}

	_, err := Resolve(store, varName(0), "", "")
	require.Error(t, err)
	var depthErr *MaxDepthExceededError
	require.ErrorAs(t, err, &depthErr)
}

func varName(i int) string {
	return string(rune('A' + i))
}
