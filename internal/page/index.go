package page

import (
	"slices"
	"sort"

	"bptreeidx/internal/diskio"
)

// IndexPage holds a sorted sequence of (key, child-page-id) separator
// entries plus a distinguished left-link child for keys below the first
// separator.
type IndexPage struct {
	PageID   diskio.PageID
	LeftLink diskio.PageID
	Keys     []Key
	Children []diskio.PageID

	// Capacity is the byte budget AvailableSpace counts against; see
	// LeafPage.Capacity.
	Capacity int
}

// NewIndexPage returns an index page with the given left link and no
// separators yet, sized to the full physical page.
func NewIndexPage(id, leftLink diskio.PageID) *IndexPage {
	return &IndexPage{PageID: id, LeftLink: leftLink, Capacity: diskio.PageSize}
}

// Size returns the number of separator entries (not counting LeftLink).
func (p *IndexPage) Size() int {
	return len(p.Keys)
}

// AvailableSpace returns the remaining byte budget on this page.
func (p *IndexPage) AvailableSpace() int {
	used := indexHeaderOverhead
	for _, k := range p.Keys {
		used += EntrySize(k, NodeIndex)
	}
	return p.Capacity - used
}

// ChildFor returns the child subtree responsible for key: the separator
// with the greatest key <= the target, or LeftLink if none qualifies.
// Ties are broken toward the right child, per the invariant that a
// separator key k means its child holds keys in [k, next).
func (p *IndexPage) ChildFor(key Key) diskio.PageID {
	child := p.LeftLink
	for i, sep := range p.Keys {
		if Compare(key, sep) >= 0 {
			child = p.Children[i]
		} else {
			break
		}
	}
	return child
}

// Insert places a new (key, child) separator in sorted position.
func (p *IndexPage) Insert(key Key, child diskio.PageID) error {
	if p.AvailableSpace() < EntrySize(key, NodeIndex) {
		return ErrNoSpace
	}

	idx := sort.Search(len(p.Keys), func(i int) bool {
		return Compare(p.Keys[i], key) > 0
	})

	p.Keys = slices.Insert(p.Keys, idx, key)
	p.Children = slices.Insert(p.Children, idx, child)
	return nil
}

// Delete removes the separator entry exactly matching key.
func (p *IndexPage) Delete(key Key) error {
	for i, k := range p.Keys {
		if k == key {
			p.Keys = slices.Delete(p.Keys, i, i+1)
			p.Children = slices.Delete(p.Children, i, i+1)
			return nil
		}
	}
	return ErrNotFound
}

// GetFirst returns the first separator slot, and false if there are none.
func (p *IndexPage) GetFirst() (slot int, ok bool) {
	return 0, len(p.Keys) > 0
}

// GetNext returns the slot after cursor, and false when cursor was the
// last occupied slot.
func (p *IndexPage) GetNext(cursor int) (slot int, ok bool) {
	next := cursor + 1
	return next, next < len(p.Keys)
}

func (p *IndexPage) KeyAt(slot int) Key              { return p.Keys[slot] }
func (p *IndexPage) ChildAt(slot int) diskio.PageID  { return p.Children[slot] }
func (p *IndexPage) GetLeftLink() diskio.PageID      { return p.LeftLink }
func (p *IndexPage) SetLeftLink(id diskio.PageID)    { p.LeftLink = id }

// PopFirst removes and returns the first separator. It is used by
// rebalance-index to anchor the new right sibling on its smallest key.
func (p *IndexPage) PopFirst() (Key, diskio.PageID) {
	key, child := p.Keys[0], p.Children[0]
	p.Keys = slices.Delete(p.Keys, 0, 1)
	p.Children = slices.Delete(p.Children, 0, 1)
	return key, child
}
