package bptree

import (
	"bptreeidx/internal/buffer"
	"bptreeidx/internal/diskio"
	"bptreeidx/internal/page"
)

// Cursor is a range iterator over the leaf chain (§4.10). It holds at
// most one leaf pinned at a time: ownership transfers from OpenScan to
// the cursor, and from the cursor to whichever call observes exhaustion
// (the upper bound, the end of the chain, or an explicit Close).
type Cursor struct {
	tree *Tree
	high *page.Key

	guard    *buffer.ReadPageGuard
	leaf     *page.LeafPage
	slot     int
	done     bool
	viaBound bool
}

// OpenScan returns a cursor over [low, high]; either bound may be nil,
// meaning unbounded on that side. An absent low is treated as the empty
// string, the lowest possible key.
func (t *Tree) OpenScan(low, high *page.Key) (*Cursor, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	searchKey := page.Key("")
	if low != nil {
		searchKey = *low
	}

	root := t.rootID()
	if root == diskio.InvalidPageID {
		return &Cursor{tree: t, high: high, done: true}, nil
	}

	leafID, err := t.searchDescend(root, searchKey)
	if err != nil {
		return nil, err
	}

	guard, leaf, err := t.readLeafGuard(leafID)
	if err != nil {
		return nil, err
	}

	c := &Cursor{tree: t, guard: guard, leaf: leaf, high: high}
	c.slot, _ = leaf.Search(searchKey)

	if err := c.crossToQualifying(); err != nil {
		return nil, err
	}
	c.checkUpperBound()

	return c, nil
}

// crossToQualifying advances across sibling boundaries while the current
// leaf has been exhausted, stopping as soon as a leaf with an entry at
// c.slot exists or the chain ends.
func (c *Cursor) crossToQualifying() error {
	for c.slot >= c.leaf.Size() {
		next := c.leaf.GetNextPage()
		c.guard.Drop()
		c.guard = nil
		c.leaf = nil

		if next == diskio.InvalidPageID {
			c.done = true
			return nil
		}

		guard, leaf, err := c.tree.readLeafGuard(next)
		if err != nil {
			return err
		}
		c.guard = guard
		c.leaf = leaf
		c.slot = 0
	}
	return nil
}

// checkUpperBound transitions the cursor to exhausted if the entry it is
// about to deliver exceeds high.
func (c *Cursor) checkUpperBound() {
	if c.done || c.high == nil {
		return
	}
	if page.Compare(c.leaf.KeyAt(c.slot), *c.high) > 0 {
		c.exhaust()
		c.viaBound = true
	}
}

func (c *Cursor) exhaust() {
	if c.guard != nil {
		c.guard.Drop()
		c.guard = nil
	}
	c.leaf = nil
	c.done = true
}

// Next returns the next (rid, key) pair in range. ok is false once the
// cursor is exhausted; DONE is returned only when no tuple is delivered,
// never one call ahead of the last real entry. When exhaustion was caused
// by the scan's upper bound rather than the leaf chain simply running out,
// err is ErrBoundExhausted instead of nil, so a caller that cares why the
// scan ended can distinguish the two (§7).
func (c *Cursor) Next() (page.RID, page.Key, bool, error) {
	if c.done {
		if c.viaBound {
			return page.RID{}, "", false, ErrBoundExhausted
		}
		return page.RID{}, "", false, nil
	}

	rid := c.leaf.RIDAt(c.slot)
	key := c.leaf.KeyAt(c.slot)

	c.slot++
	if err := c.crossToQualifying(); err != nil {
		return page.RID{}, "", false, err
	}
	c.checkUpperBound()

	return rid, key, true, nil
}

// Close releases the cursor's pinned leaf, if any. A cursor that never
// held a leaf (an empty tree, or bounds that matched nothing) releases
// nothing.
func (c *Cursor) Close() {
	c.exhaust()
}
