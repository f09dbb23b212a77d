package bptree

import (
	"bptreeidx/internal/diskio"
	"bptreeidx/internal/page"
)

// promotedEntry is the separator a split child hands up to its parent for
// installation: the by-value replacement for the source's heap-allocated
// IndexEntry out-parameter (§9).
type promotedEntry struct {
	key   page.Key
	child diskio.PageID
}

// rebalanceLeaf implements §4.7: move every entry of left into right,
// then move entries back from the front of right to the end of left
// until left's available space no longer exceeds right's. It threads
// right into the sibling chain, fixing up the old next leaf's prev link
// when one exists, and returns right's smallest key as the promoted
// separator.
func (t *Tree) rebalanceLeaf(left, right *page.LeafPage) (page.Key, error) {
	right.Keys = append(right.Keys, left.Keys...)
	right.Values = append(right.Values, left.Values...)
	left.Keys = nil
	left.Values = nil

	for left.AvailableSpace() > right.AvailableSpace() {
		left.Keys = append(left.Keys, right.Keys[0])
		left.Values = append(left.Values, right.Values[0])
		right.Keys = right.Keys[1:]
		right.Values = right.Values[1:]
	}

	oldNext := left.NextPage
	right.NextPage = oldNext
	right.PrevPage = left.PageID
	left.NextPage = right.PageID

	if oldNext != diskio.InvalidPageID {
		guard, sibling, err := t.writeLeaf(oldNext)
		if err != nil {
			return "", err
		}
		sibling.PrevPage = right.PageID
		err = saveLeaf(guard, sibling)
		guard.Drop()
		if err != nil {
			return "", err
		}
	}

	return right.Keys[0], nil
}

// rebalanceIndex implements §4.8: move every separator of left into
// right, move separators back until balanced, then pop right's first
// separator to become right's left_link. The key that anchors right is
// the promoted separator returned upward; it no longer appears as a
// separator inside right.
func rebalanceIndex(left, right *page.IndexPage) promotedEntry {
	right.Keys = append(right.Keys, left.Keys...)
	right.Children = append(right.Children, left.Children...)
	left.Keys = nil
	left.Children = nil

	for left.AvailableSpace() > right.AvailableSpace() {
		left.Keys = append(left.Keys, right.Keys[0])
		left.Children = append(left.Children, right.Children[0])
		right.Keys = right.Keys[1:]
		right.Children = right.Children[1:]
	}

	key, child := right.PopFirst()
	right.LeftLink = child

	return promotedEntry{key: key, child: right.PageID}
}
