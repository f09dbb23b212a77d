package bptree

import (
	"errors"

	"bptreeidx/internal/diskio"
	"bptreeidx/internal/page"
)

// Delete removes the first entry matching both key and rid (§4.6). It
// performs no rebalance or merge: an emptied leaf or index node is left
// in place, a documented simplification reclaimed only by Destroy.
func (t *Tree) Delete(key page.Key, rid page.RID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	root := t.rootID()
	if root == diskio.InvalidPageID {
		return ErrEmptyTree
	}

	return t.deleteDescend(root, key, rid)
}

func (t *Tree) deleteDescend(id diskio.PageID, key page.Key, rid page.RID) error {
	guard, nt, err := t.classifyWrite(id)
	if err != nil {
		return err
	}
	defer guard.Drop()

	switch nt {
	case page.NodeLeaf:
		var leaf page.LeafPage
		if err := page.Decode(guard.GetData(), &leaf); err != nil {
			return err
		}
		if err := leaf.DeleteKeyRID(key, rid); err != nil {
			if errors.Is(err, page.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		return saveLeaf(guard, &leaf)

	case page.NodeIndex:
		var idx page.IndexPage
		if err := page.Decode(guard.GetData(), &idx); err != nil {
			return err
		}
		child := idx.ChildFor(key)
		return t.deleteDescend(child, key, rid)

	default:
		return ErrInvalidState
	}
}
