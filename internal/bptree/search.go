package bptree

import (
	"bptreeidx/internal/diskio"
	"bptreeidx/internal/page"
)

// Search descends from the root to the leaf page that would hold key, or
// the leftmost leaf whose smallest key is >= key (§4.4). It unpins each
// parent before pinning its child ("crabbing"): at no point are two
// levels held at once.
func (t *Tree) Search(key page.Key) (diskio.PageID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	root := t.rootID()
	if root == diskio.InvalidPageID {
		return diskio.InvalidPageID, ErrEmptyTree
	}
	return t.searchDescend(root, key)
}

func (t *Tree) searchDescend(id diskio.PageID, key page.Key) (diskio.PageID, error) {
	guard, nt, err := t.classifyRead(id)
	if err != nil {
		return diskio.InvalidPageID, err
	}

	switch nt {
	case page.NodeLeaf:
		guard.Drop()
		return id, nil

	case page.NodeIndex:
		var idx page.IndexPage
		if err := page.Decode(guard.GetData(), &idx); err != nil {
			guard.Drop()
			return diskio.InvalidPageID, err
		}
		child := idx.ChildFor(key)
		guard.Drop()
		return t.searchDescend(child, key)

	default:
		guard.Drop()
		return diskio.InvalidPageID, ErrInvalidState
	}
}
