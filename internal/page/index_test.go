package page

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bptreeidx/internal/diskio"
)

func TestIndexPage(t *testing.T) {
	t.Run("child lookup honors left link and separators", func(t *testing.T) {
		idx := NewIndexPage(1, 10)
		assert.NoError(t, idx.Insert("m", 20))
		assert.NoError(t, idx.Insert("t", 30))

		assert.Equal(t, diskio.PageID(10), idx.ChildFor("a"))
		assert.Equal(t, diskio.PageID(10), idx.ChildFor("l"))
		assert.Equal(t, diskio.PageID(20), idx.ChildFor("m"))
		assert.Equal(t, diskio.PageID(20), idx.ChildFor("q"))
		assert.Equal(t, diskio.PageID(30), idx.ChildFor("t"))
		assert.Equal(t, diskio.PageID(30), idx.ChildFor("z"))
	})

	t.Run("insert keeps separators sorted", func(t *testing.T) {
		idx := NewIndexPage(1, 10)
		assert.NoError(t, idx.Insert("t", 30))
		assert.NoError(t, idx.Insert("m", 20))

		assert.Equal(t, []Key{"m", "t"}, idx.Keys)
		assert.Equal(t, []diskio.PageID{20, 30}, idx.Children)
	})

	t.Run("pop first anchors a new right sibling", func(t *testing.T) {
		idx := NewIndexPage(1, 10)
		assert.NoError(t, idx.Insert("m", 20))
		assert.NoError(t, idx.Insert("t", 30))

		key, child := idx.PopFirst()
		assert.Equal(t, Key("m"), key)
		assert.Equal(t, diskio.PageID(20), child)
		assert.Equal(t, []Key{"t"}, idx.Keys)
	})

	t.Run("delete removes a matching separator", func(t *testing.T) {
		idx := NewIndexPage(1, 10)
		assert.NoError(t, idx.Insert("m", 20))

		assert.NoError(t, idx.Delete("m"))
		assert.Equal(t, 0, idx.Size())

		assert.ErrorIs(t, idx.Delete("m"), ErrNotFound)
	})
}
