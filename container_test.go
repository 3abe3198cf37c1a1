package pickle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderedSetCrossTypeEquality(t *testing.T) {
	s := newOrderedSet()
	s.Add(I64Value(1))
	s.Add(BoolValue(true)) // equal to I64Value(1) per Python semantics
	s.Add(F64Value(1.0))   // also equal

	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Contains(I64Value(1)))
	assert.True(t, s.Contains(BoolValue(true)))
}

func TestOrderedSetFirstInsertionWins(t *testing.T) {
	s := newOrderedSet()
	s.Add(I64Value(1))
	s.Add(BoolValue(true))

	items := s.SortedItems()
	require.Len(t, items, 1)
	assert.Equal(t, I64Value(1), items[0]) // the original insertion, not the bool
}

func TestOrderedSetSortedItemsOrder(t *testing.T) {
	s := newOrderedSet()
	s.Add(I64Value(3))
	s.Add(I64Value(1))
	s.Add(I64Value(2))

	items := s.SortedItems()
	require.Len(t, items, 3)
	assert.Equal(t, []HashableValue{I64Value(1), I64Value(2), I64Value(3)}, items)
}

func TestOrderedMapMostRecentValueWins(t *testing.T) {
	m := newOrderedMap()
	m.Set(NewStringValue("k"), I64Value(1))
	m.Set(NewStringValue("k"), I64Value(2))

	v, ok := m.Get(NewStringValue("k"))
	require.True(t, ok)
	assert.Equal(t, I64Value(2), v)
	assert.Equal(t, 1, m.Len())
}

func TestOrderedMapSortedEntries(t *testing.T) {
	m := newOrderedMap()
	m.Set(I64Value(2), NoneValue{})
	m.Set(I64Value(1), NoneValue{})

	entries := m.SortedEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, I64Value(1), entries[0].Key)
	assert.Equal(t, I64Value(2), entries[1].Key)
}

func TestOrderedSetNestedTupleKeys(t *testing.T) {
	s := newOrderedSet()
	a := NewHashableTuple([]HashableValue{I64Value(1), NewStringValue("a")})
	b := NewHashableTuple([]HashableValue{I64Value(1), NewStringValue("a")})
	s.Add(a)
	s.Add(b)
	assert.Equal(t, 1, s.Len(), "structurally equal tuples should collide")
}
