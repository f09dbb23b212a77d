package page

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bptreeidx/internal/diskio"
)

func TestLeafPage(t *testing.T) {
	t.Run("insert keeps entries sorted", func(t *testing.T) {
		leaf := NewLeafPage(1)

		assert.NoError(t, leaf.Insert("banana", RID{PageID: 2, Slot: 0}))
		assert.NoError(t, leaf.Insert("apple", RID{PageID: 1, Slot: 0}))
		assert.NoError(t, leaf.Insert("cherry", RID{PageID: 3, Slot: 0}))

		assert.Equal(t, []Key{"apple", "banana", "cherry"}, leaf.Keys)
	})

	t.Run("ties are appended in arrival order", func(t *testing.T) {
		leaf := NewLeafPage(1)

		assert.NoError(t, leaf.Insert("k", RID{PageID: 1, Slot: 0}))
		assert.NoError(t, leaf.Insert("k", RID{PageID: 2, Slot: 0}))
		assert.NoError(t, leaf.Insert("k", RID{PageID: 3, Slot: 0}))

		assert.Equal(t, []RID{
			{PageID: 1, Slot: 0},
			{PageID: 2, Slot: 0},
			{PageID: 3, Slot: 0},
		}, leaf.Values)
	})

	t.Run("search finds first entry with key >= target", func(t *testing.T) {
		leaf := NewLeafPage(1)
		for _, k := range []Key{"a", "c", "e"} {
			assert.NoError(t, leaf.Insert(k, RID{}))
		}

		slot, matched := leaf.Search("c")
		assert.Equal(t, 1, slot)
		assert.True(t, matched)

		slot, matched = leaf.Search("b")
		assert.Equal(t, 1, slot)
		assert.False(t, matched)

		slot, matched = leaf.Search("z")
		assert.Equal(t, 3, slot)
		assert.False(t, matched)
	})

	t.Run("delete removes the matching key,rid pair only", func(t *testing.T) {
		leaf := NewLeafPage(1)
		assert.NoError(t, leaf.Insert("k", RID{PageID: 1}))
		assert.NoError(t, leaf.Insert("k", RID{PageID: 2}))

		assert.NoError(t, leaf.DeleteKeyRID("k", RID{PageID: 1}))
		assert.Equal(t, []RID{{PageID: 2}}, leaf.Values)

		err := leaf.DeleteKeyRID("k", RID{PageID: 99})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("insert fails once the page is full", func(t *testing.T) {
		leaf := NewLeafPage(1)
		var err error
		for i := 0; err == nil; i++ {
			err = leaf.Insert(Key(repeatChar(byte('a'+i%26), 20)), RID{PageID: diskio.PageID(i)})
		}
		assert.ErrorIs(t, err, ErrNoSpace)
	})

	t.Run("iterates first/next across all slots", func(t *testing.T) {
		leaf := NewLeafPage(1)
		for _, k := range []Key{"a", "b", "c"} {
			assert.NoError(t, leaf.Insert(k, RID{}))
		}

		var got []Key
		slot, ok := leaf.GetFirst()
		for ok {
			got = append(got, leaf.KeyAt(slot))
			slot, ok = leaf.GetNext(slot)
		}
		assert.Equal(t, []Key{"a", "b", "c"}, got)
	})

	t.Run("sibling links default to invalid", func(t *testing.T) {
		leaf := NewLeafPage(1)
		assert.Equal(t, diskio.InvalidPageID, leaf.GetNextPage())
		assert.Equal(t, diskio.InvalidPageID, leaf.GetPrevPage())

		leaf.SetNextPage(2)
		leaf.SetPrevPage(3)
		assert.Equal(t, diskio.PageID(2), leaf.GetNextPage())
		assert.Equal(t, diskio.PageID(3), leaf.GetPrevPage())
	})
}

func repeatChar(c byte, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = c
	}
	return string(b)
}
