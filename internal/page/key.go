// Package page implements the sorted-page primitive the tree engine is
// built on: leaf and index node layouts, their (key, payload) entries,
// and the key comparator and entry-sizing rules shared by both.
package page

import (
	"bptreeidx/internal/diskio"
)

// Key is a variable-length byte string. Ordering is lexicographic byte
// comparison, which is exactly Go's native string ordering.
type Key string

// DefaultMaxKeySize is the default cap on a key's length, including the
// one byte charged for its null terminator in on-page accounting.
const DefaultMaxKeySize = 256

// Compare is a total order on keys: negative if a < b, zero if equal,
// positive if a > b.
func Compare(a, b Key) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// RID identifies a tuple in a heap file: the page holding it and its slot
// within that page. It is opaque to the tree — never dereferenced, only
// stored and returned.
type RID struct {
	PageID diskio.PageID
	Slot   int32
}

const (
	slotOverhead = 4 // slot-directory entry: 2-byte offset + 2-byte length
	ridSize      = 8 // RID{PageID int32, Slot int32}
	childIDSize  = 4 // diskio.PageID
)

// EntrySize returns the on-page footprint of an entry with the given key
// for the given node class, including the slot directory's overhead and
// the key's null terminator. Callers consult AvailableSpace() against
// this before inserting to avoid a mid-operation overflow.
func EntrySize(key Key, nodeType NodeType) int {
	base := len(key) + 1 + slotOverhead
	if nodeType == NodeLeaf {
		return base + ridSize
	}
	return base + childIDSize
}
