package page

import (
	"fmt"
	"slices"
	"sort"

	"bptreeidx/internal/diskio"
)

// ErrNoSpace is returned by Insert when the entry would not fit; the tree
// engine treats it as internal-only, converting it into a split.
var ErrNoSpace = fmt.Errorf("page: no space for entry")

// ErrNotFound is returned by DeleteKeyRID when no matching entry exists.
var ErrNotFound = fmt.Errorf("page: entry not found")

// LeafPage holds a sorted sequence of (key, data-RID) entries plus the
// sibling links that thread every leaf into one ascending chain.
type LeafPage struct {
	PageID   diskio.PageID
	NextPage diskio.PageID
	PrevPage diskio.PageID
	Keys     []Key
	Values   []RID

	// Capacity is the byte budget AvailableSpace counts against. It
	// defaults to diskio.PageSize (the whole physical page) but the tree
	// engine may configure a smaller logical capacity per Config, so a
	// page fills and splits well before the physical frame actually
	// would. It round-trips through Encode/Decode like any other field,
	// so a page always reports space against the capacity it was created
	// with.
	Capacity int
}

// NewLeafPage returns an empty leaf with no siblings, sized to the full
// physical page.
func NewLeafPage(id diskio.PageID) *LeafPage {
	return &LeafPage{
		PageID:   id,
		NextPage: diskio.InvalidPageID,
		PrevPage: diskio.InvalidPageID,
		Capacity: diskio.PageSize,
	}
}

// Size returns the number of entries currently stored.
func (p *LeafPage) Size() int {
	return len(p.Keys)
}

// AvailableSpace returns the remaining byte budget on this page.
func (p *LeafPage) AvailableSpace() int {
	used := leafHeaderOverhead
	for _, k := range p.Keys {
		used += EntrySize(k, NodeLeaf)
	}
	return p.Capacity - used
}

// Search returns the position of the first entry with key >= target, and
// whether that entry's key equals target exactly.
func (p *LeafPage) Search(key Key) (slot int, matched bool) {
	slot = sort.Search(len(p.Keys), func(i int) bool {
		return Compare(p.Keys[i], key) >= 0
	})
	matched = slot < len(p.Keys) && p.Keys[slot] == key
	return slot, matched
}

// Insert places (key, rid) in sorted position; on ties it is appended
// after existing entries with the same key, preserving arrival order.
func (p *LeafPage) Insert(key Key, rid RID) error {
	if p.AvailableSpace() < EntrySize(key, NodeLeaf) {
		return ErrNoSpace
	}

	idx := sort.Search(len(p.Keys), func(i int) bool {
		return Compare(p.Keys[i], key) > 0
	})

	p.Keys = slices.Insert(p.Keys, idx, key)
	p.Values = slices.Insert(p.Values, idx, rid)
	return nil
}

// DeleteKeyRID removes the first entry matching both key and rid.
func (p *LeafPage) DeleteKeyRID(key Key, rid RID) error {
	for i, k := range p.Keys {
		if k == key && p.Values[i] == rid {
			p.Keys = slices.Delete(p.Keys, i, i+1)
			p.Values = slices.Delete(p.Values, i, i+1)
			return nil
		}
	}
	return ErrNotFound
}

// GetFirst returns the first slot, and false if the page is empty.
func (p *LeafPage) GetFirst() (slot int, ok bool) {
	return 0, len(p.Keys) > 0
}

// GetNext returns the slot after cursor, and false when cursor was the
// last occupied slot.
func (p *LeafPage) GetNext(cursor int) (slot int, ok bool) {
	next := cursor + 1
	return next, next < len(p.Keys)
}

func (p *LeafPage) KeyAt(slot int) Key   { return p.Keys[slot] }
func (p *LeafPage) RIDAt(slot int) RID   { return p.Values[slot] }
func (p *LeafPage) GetNextPage() diskio.PageID { return p.NextPage }
func (p *LeafPage) GetPrevPage() diskio.PageID { return p.PrevPage }
func (p *LeafPage) SetNextPage(id diskio.PageID) { p.NextPage = id }
func (p *LeafPage) SetPrevPage(id diskio.PageID) { p.PrevPage = id }
