package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecode(t *testing.T) {
	t.Run("round trips a leaf page", func(t *testing.T) {
		leaf := NewLeafPage(5)
		assert.NoError(t, leaf.Insert("a", RID{PageID: 1, Slot: 2}))

		buf, err := Encode(NodeLeaf, leaf)
		assert.NoError(t, err)

		nodeType, err := Classify(buf)
		assert.NoError(t, err)
		assert.Equal(t, NodeLeaf, nodeType)

		var got LeafPage
		assert.NoError(t, Decode(buf, &got))
		assert.Equal(t, leaf.Keys, got.Keys)
		assert.Equal(t, leaf.Values, got.Values)
	})

	t.Run("classify rejects an unrecognized discriminator", func(t *testing.T) {
		buf := make([]byte, 16)
		buf[0] = 77

		_, err := Classify(buf)
		assert.Error(t, err)
	})
}
