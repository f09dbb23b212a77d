package bptree

import (
	"sync"

	"bptreeidx/internal/buffer"
	"bptreeidx/internal/catalog"
	"bptreeidx/internal/diskio"
	"bptreeidx/internal/page"
)

// Tree is a handle on one open B+-tree file. Its header page is pinned
// for the lifetime of the handle, per §5's pin-accounting rule; every
// other page is pinned only for the duration of the operation that
// touches it.
type Tree struct {
	mu sync.Mutex

	name         string
	bpm          *buffer.Manager
	catalog      *catalog.Catalog
	headerID     diskio.PageID
	header       *buffer.WritePageGuard
	maxKeySize   int
	pageCapacity int
	closed       bool
}

// Open returns a handle on the tree file registered under name, creating
// a fresh empty one (a header page with no root) if the catalog has no
// entry for it yet. cfg.MaxKeySize caps every key Insert accepts, per
// §3's MAX_KEY_SIZE invariant, and cfg.PageCapacity is the logical byte
// budget every page it creates is checked against; either falls back to
// its package default (page.DefaultMaxKeySize, diskio.PageSize) when
// non-positive.
func Open(bpm *buffer.Manager, cat *catalog.Catalog, name string, cfg Config) (*Tree, error) {
	maxKeySize := cfg.MaxKeySize
	if maxKeySize <= 0 {
		maxKeySize = page.DefaultMaxKeySize
	}
	pageCapacity := cfg.PageCapacity
	if pageCapacity <= 0 {
		pageCapacity = diskio.PageSize
	}

	headerID, ok := cat.GetFileEntry(name)
	if ok {
		guard, err := bpm.WritePage(headerID)
		if err != nil {
			return nil, wrapPageIO("pin header page", err)
		}
		return &Tree{name: name, bpm: bpm, catalog: cat, headerID: headerID, header: guard, maxKeySize: maxKeySize, pageCapacity: pageCapacity}, nil
	}

	id, guard, err := bpm.NewPage()
	if err != nil {
		return nil, wrapPageAlloc("allocate header page", err)
	}

	data := guard.GetDataMut()
	writeRootPageID(*data, diskio.InvalidPageID)

	if err := cat.AddFileEntry(name, id); err != nil {
		guard.Drop()
		return nil, err
	}

	return &Tree{name: name, bpm: bpm, catalog: cat, headerID: id, header: guard, maxKeySize: maxKeySize, pageCapacity: pageCapacity}, nil
}

// Name returns the logical file name this tree was opened under.
func (t *Tree) Name() string { return t.name }

func (t *Tree) rootID() diskio.PageID {
	return readRootPageID(t.header.GetData())
}

func (t *Tree) setRootID(id diskio.PageID) {
	data := t.header.GetDataMut()
	writeRootPageID(*data, id)
}

// Close unpins the header page. Closing an already-closed tree returns
// ErrClosed rather than panicking, so a caller defer-closing a tree it
// may have already closed explicitly gets a clean error instead of a
// double unpin.
func (t *Tree) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}
	t.header.Drop()
	t.closed = true
	return nil
}

// Destroy frees every page reachable from the root via a post-order
// walk, then frees the header and removes the catalog entry. The handle
// is closed as part of destruction.
func (t *Tree) Destroy() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}

	root := t.rootID()
	if root != diskio.InvalidPageID {
		if err := t.destroyWalk(root); err != nil {
			return err
		}
	}

	t.header.Drop()
	t.closed = true

	if err := t.bpm.FreePage(t.headerID); err != nil {
		return wrapPageIO("free header page", err)
	}
	return t.catalog.DeleteFileEntry(t.name)
}

// destroyWalk recurses into an index node's left link and every
// separator's child before freeing the node itself, and simply frees a
// leaf. Each page is pinned only long enough to classify it and read its
// children.
func (t *Tree) destroyWalk(id diskio.PageID) error {
	guard, nt, err := t.classifyRead(id)
	if err != nil {
		return err
	}

	switch nt {
	case page.NodeLeaf:
		guard.Drop()

	case page.NodeIndex:
		var idx page.IndexPage
		err := page.Decode(guard.GetData(), &idx)
		guard.Drop()
		if err != nil {
			return err
		}

		if err := t.destroyWalk(idx.GetLeftLink()); err != nil {
			return err
		}
		for _, child := range idx.Children {
			if err := t.destroyWalk(child); err != nil {
				return err
			}
		}

	default:
		guard.Drop()
		return ErrInvalidState
	}

	if err := t.bpm.FreePage(id); err != nil {
		return wrapPageIO("free page", err)
	}
	return nil
}
