package page

import (
	"fmt"

	"github.com/vmihailenco/msgpack"

	"bptreeidx/internal/diskio"
)

// NodeType discriminates a page's physical layout. It is written as the
// first byte of every page so a page can be classified before it is
// unmarshaled into the right struct — the tagged-variant replacement for
// casting a raw page by a type byte.
type NodeType byte

const (
	NodeInvalid NodeType = iota
	NodeLeaf
	NodeIndex
)

// leafHeaderOverhead and indexHeaderOverhead approximate the fixed,
// per-page bookkeeping cost (page id, sibling/left links, entry count)
// that AvailableSpace reserves before any entries are counted.
const (
	leafHeaderOverhead  = 24
	indexHeaderOverhead = 20
)

// Classify reads buf's discriminator byte and reports which node type it
// holds. An unrecognized byte is a corruption signal, not a soft error.
func Classify(buf []byte) (NodeType, error) {
	if len(buf) == 0 {
		return NodeInvalid, fmt.Errorf("page: empty buffer")
	}

	switch t := NodeType(buf[0]); t {
	case NodeLeaf, NodeIndex:
		return t, nil
	default:
		return NodeInvalid, fmt.Errorf("page: unknown node type byte %d", buf[0])
	}
}

// Encode serializes v as a page of the given type: a one-byte
// discriminator followed by a msgpack encoding of v, padded to
// diskio.PageSize.
func Encode(nodeType NodeType, v any) ([]byte, error) {
	buf := make([]byte, diskio.PageSize)
	buf[0] = byte(nodeType)

	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("page: encode: %w", err)
	}
	if len(data) > len(buf)-1 {
		return nil, fmt.Errorf("page: encoded node overflows page size (%d > %d)", len(data), len(buf)-1)
	}
	copy(buf[1:], data)

	return buf, nil
}

// Decode deserializes a page buffer produced by Encode into *v.
func Decode(buf []byte, v any) error {
	if len(buf) < 1 {
		return fmt.Errorf("page: buffer too small to decode")
	}
	if err := msgpack.Unmarshal(buf[1:], v); err != nil {
		return fmt.Errorf("page: decode: %w", err)
	}
	return nil
}
