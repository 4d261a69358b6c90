package lib

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testModel struct {
	id string
}

func (m *testModel) GetID() string {
	return m.id
}

func TestCollection(t *testing.T) {
	collection := NewCollection[*testModel]()
	require.NotNil(t, collection)

	collection.Store(&testModel{id: "testid"})

	item, ok := collection.Load("testid")
	require.Equal(t, ok, true)
	require.NotNil(t, item)

	collection.Delete("testid")

	item, ok = collection.Load("testid")
	require.Equal(t, ok, false)
	require.Nil(t, item)
}

func TestCollectionLoadOrStore(t *testing.T) {
	collection := NewCollection[*testModel]()

	first := &testModel{id: "a"}
	actual, loaded := collection.LoadOrStore(first)
	require.False(t, loaded)
	require.Same(t, first, actual)

	second := &testModel{id: "a"}
	actual, loaded = collection.LoadOrStore(second)
	require.True(t, loaded)
	require.Same(t, first, actual)

	require.Equal(t, 1, collection.Len())
}
