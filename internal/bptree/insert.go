package bptree

import (
	"errors"

	"bptreeidx/internal/buffer"
	"bptreeidx/internal/diskio"
	"bptreeidx/internal/page"
)

// Insert adds (key, rid) to the tree (§4.5). Duplicate keys are
// preserved; the tree grows only at the root, by exactly one level per
// propagated split.
func (t *Tree) Insert(key page.Key, rid page.RID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(key)+1 > t.maxKeySize {
		return ErrKeyTooLong
	}

	root := t.rootID()

	// Case A: empty tree.
	if root == diskio.InvalidPageID {
		return t.insertEmptyTree(key, rid)
	}

	rootGuard, rootType, err := t.classifyWrite(root)
	if err != nil {
		return err
	}
	defer rootGuard.Drop()

	var promoted *promotedEntry
	switch rootType {
	case page.NodeLeaf:
		var leaf page.LeafPage
		if err := page.Decode(rootGuard.GetData(), &leaf); err != nil {
			return err
		}
		// Case B/C: root is a leaf.
		promoted, err = t.insertIntoLeaf(rootGuard, &leaf, key, rid)

	case page.NodeIndex:
		var idx page.IndexPage
		if err := page.Decode(rootGuard.GetData(), &idx); err != nil {
			return err
		}
		// Case D: root is an index; recursive descent.
		promoted, err = t.insertIntoIndex(rootGuard, &idx, key, rid)

	default:
		return ErrInvalidState
	}
	if err != nil {
		return err
	}
	if promoted == nil {
		return nil
	}

	return t.growRoot(root, promoted)
}

func (t *Tree) insertEmptyTree(key page.Key, rid page.RID) error {
	id, guard, err := t.bpm.NewPage()
	if err != nil {
		return wrapPageAlloc("allocate root leaf", err)
	}
	defer guard.Drop()

	leaf := page.NewLeafPage(id)
	leaf.Capacity = t.pageCapacity
	if err := leaf.Insert(key, rid); err != nil {
		// A key under MaxKeySize that still doesn't fit on a fresh,
		// empty leaf means MaxKeySize was configured too large for
		// the page size; that is a misconfiguration, not a caller
		// error, so it does not surface as page.ErrNoSpace (§7).
		return wrapInvalidState("MaxKeySize too large for page size")
	}
	if err := saveLeaf(guard, leaf); err != nil {
		return err
	}

	t.setRootID(id)
	return nil
}

// growRoot installs a promoted separator above the current root by
// allocating a fresh index root whose left link is the old root. This is
// the only way tree height increases.
func (t *Tree) growRoot(oldRoot diskio.PageID, promoted *promotedEntry) error {
	newRootID, newRootGuard, err := t.bpm.NewPage()
	if err != nil {
		return wrapPageAlloc("allocate new root", err)
	}
	defer newRootGuard.Drop()

	newRoot := page.NewIndexPage(newRootID, oldRoot)
	newRoot.Capacity = t.pageCapacity
	if err := newRoot.Insert(promoted.key, promoted.child); err != nil {
		return err
	}
	if err := saveIndex(newRootGuard, newRoot); err != nil {
		return err
	}

	t.setRootID(newRootID)
	return nil
}

// insertIntoLeaf places (key, rid) on leaf, splitting it via
// rebalanceLeaf when it is full. guard is owned by the caller, which
// pinned it before recursing; insertIntoLeaf never drops it.
func (t *Tree) insertIntoLeaf(guard *buffer.WritePageGuard, leaf *page.LeafPage, key page.Key, rid page.RID) (*promotedEntry, error) {
	if err := leaf.Insert(key, rid); err == nil {
		return nil, saveLeaf(guard, leaf)
	} else if !errors.Is(err, page.ErrNoSpace) {
		return nil, err
	}

	rightID, rightGuard, err := t.bpm.NewPage()
	if err != nil {
		return nil, wrapPageAlloc("allocate right leaf", err)
	}
	defer rightGuard.Drop()

	right := page.NewLeafPage(rightID)
	right.Capacity = t.pageCapacity
	pivot, err := t.rebalanceLeaf(leaf, right)
	if err != nil {
		return nil, err
	}

	if page.Compare(key, pivot) < 0 {
		err = leaf.Insert(key, rid)
	} else {
		err = right.Insert(key, rid)
	}
	if err != nil {
		return nil, err
	}

	if err := saveLeaf(guard, leaf); err != nil {
		return nil, err
	}
	if err := saveLeaf(rightGuard, right); err != nil {
		return nil, err
	}

	return &promotedEntry{key: pivot, child: rightID}, nil
}

// insertIntoIndex locates the child subtree responsible for key, recurses
// into it, and installs any promoted entry the child hands back — or
// splits this index node via rebalanceIndex when it has no room. guard is
// owned by the caller, which pinned it before recursing; insertIntoIndex
// never drops it.
func (t *Tree) insertIntoIndex(guard *buffer.WritePageGuard, idx *page.IndexPage, key page.Key, rid page.RID) (*promotedEntry, error) {
	childID := idx.ChildFor(key)

	childGuard, childType, err := t.classifyWrite(childID)
	if err != nil {
		return nil, err
	}
	defer childGuard.Drop()

	var promoted *promotedEntry
	switch childType {
	case page.NodeLeaf:
		var childLeaf page.LeafPage
		if err := page.Decode(childGuard.GetData(), &childLeaf); err != nil {
			return nil, err
		}
		promoted, err = t.insertIntoLeaf(childGuard, &childLeaf, key, rid)

	case page.NodeIndex:
		var childIdx page.IndexPage
		if err := page.Decode(childGuard.GetData(), &childIdx); err != nil {
			return nil, err
		}
		promoted, err = t.insertIntoIndex(childGuard, &childIdx, key, rid)

	default:
		return nil, ErrInvalidState
	}
	if err != nil {
		return nil, err
	}
	if promoted == nil {
		return nil, nil
	}

	if err := idx.Insert(promoted.key, promoted.child); err == nil {
		return nil, saveIndex(guard, idx)
	} else if !errors.Is(err, page.ErrNoSpace) {
		return nil, err
	}

	rightID, rightGuard, err := t.bpm.NewPage()
	if err != nil {
		return nil, wrapPageAlloc("allocate right index", err)
	}
	defer rightGuard.Drop()

	right := page.NewIndexPage(rightID, diskio.InvalidPageID)
	right.Capacity = t.pageCapacity
	up := rebalanceIndex(idx, right)

	if page.Compare(promoted.key, up.key) < 0 {
		err = idx.Insert(promoted.key, promoted.child)
	} else {
		err = right.Insert(promoted.key, promoted.child)
	}
	if err != nil {
		return nil, err
	}

	if err := saveIndex(guard, idx); err != nil {
		return nil, err
	}
	if err := saveIndex(rightGuard, right); err != nil {
		return nil, err
	}

	return &promotedEntry{key: up.key, child: rightID}, nil
}
