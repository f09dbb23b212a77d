package bptree

import (
	"bptreeidx/internal/buffer"
	"bptreeidx/internal/diskio"
	"bptreeidx/internal/page"
)

// classifyWrite pins id exclusively and classifies its node type without
// decoding it further. Callers own the returned guard and must Drop it on
// every exit path.
func (t *Tree) classifyWrite(id diskio.PageID) (*buffer.WritePageGuard, page.NodeType, error) {
	guard, err := t.bpm.WritePage(id)
	if err != nil {
		return nil, page.NodeInvalid, wrapPageIO("pin page", err)
	}
	nt, err := page.Classify(guard.GetData())
	if err != nil {
		guard.Drop()
		return nil, page.NodeInvalid, wrapInvalidState(err.Error())
	}
	return guard, nt, nil
}

// classifyRead pins id for shared reading and classifies it.
func (t *Tree) classifyRead(id diskio.PageID) (*buffer.ReadPageGuard, page.NodeType, error) {
	guard, err := t.bpm.ReadPage(id)
	if err != nil {
		return nil, page.NodeInvalid, wrapPageIO("pin page", err)
	}
	nt, err := page.Classify(guard.GetData())
	if err != nil {
		guard.Drop()
		return nil, page.NodeInvalid, wrapInvalidState(err.Error())
	}
	return guard, nt, nil
}

// readLeafGuard pins id for shared reading and decodes it as a leaf. Used
// by the scan cursor, which never mutates the pages it visits.
func (t *Tree) readLeafGuard(id diskio.PageID) (*buffer.ReadPageGuard, *page.LeafPage, error) {
	guard, nt, err := t.classifyRead(id)
	if err != nil {
		return nil, nil, err
	}
	if nt != page.NodeLeaf {
		guard.Drop()
		return nil, nil, wrapInvalidState("expected leaf page")
	}

	var leaf page.LeafPage
	if err := page.Decode(guard.GetData(), &leaf); err != nil {
		guard.Drop()
		return nil, nil, err
	}
	return guard, &leaf, nil
}

// writeLeaf pins id exclusively and decodes it as a leaf.
func (t *Tree) writeLeaf(id diskio.PageID) (*buffer.WritePageGuard, *page.LeafPage, error) {
	guard, nt, err := t.classifyWrite(id)
	if err != nil {
		return nil, nil, err
	}
	if nt != page.NodeLeaf {
		guard.Drop()
		return nil, nil, wrapInvalidState("expected leaf page")
	}

	var leaf page.LeafPage
	if err := page.Decode(guard.GetData(), &leaf); err != nil {
		guard.Drop()
		return nil, nil, err
	}
	return guard, &leaf, nil
}

// saveLeaf re-encodes leaf and copies it into guard's pinned frame.
func saveLeaf(guard *buffer.WritePageGuard, leaf *page.LeafPage) error {
	buf, err := page.Encode(page.NodeLeaf, leaf)
	if err != nil {
		return err
	}
	data := guard.GetDataMut()
	*data = buf
	return nil
}

// saveIndex re-encodes idx and copies it into guard's pinned frame.
func saveIndex(guard *buffer.WritePageGuard, idx *page.IndexPage) error {
	buf, err := page.Encode(page.NodeIndex, idx)
	if err != nil {
		return err
	}
	data := guard.GetDataMut()
	*data = buf
	return nil
}
