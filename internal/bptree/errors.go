// Package bptree is the tree engine: search, insert (with recursive
// split), delete, destroy, the range-scan cursor, and the statistics
// walker, all built on the internal/page sorted-page primitive and pinned
// through internal/buffer.
package bptree

import (
	"errors"

	"bptreeidx/internal/util"
)

// Sentinel errors for the not-found, invalid-state and bound-exhausted
// kinds of the design's error table (§7), plus the tree-handle errors.
// Callers compare with errors.Is. The buffer-pool-originated kinds have
// no sentinel here: they surface as typed util errors (PageAllocError,
// PageIOError) for errors.As, wrapping the buffer pool's cause.
var (
	ErrNotFound       = errors.New("bptree: not found")
	ErrInvalidState   = errors.New("bptree: page of unknown node type")
	ErrBoundExhausted = errors.New("bptree: scan bound exhausted")
	ErrEmptyTree      = errors.New("bptree: tree is empty")
	ErrClosed         = errors.New("bptree: tree already closed")
	ErrKeyTooLong     = errors.New("bptree: key exceeds MaxKeySize")
)

// wrapPageAlloc wraps a new_page failure in the teacher's PetroError-style
// struct so callers can errors.As against util.PageAllocError as well as
// errors.Is against the underlying cause. The buffer pool does not fail
// NewPage when every frame is pinned; it blocks until a frame is released,
// so the cause wrapped here is a failure to read the new page from disk.
func wrapPageAlloc(op string, err error) error {
	return &util.PageAllocError{TreeError: &util.TreeError{Message: "bptree: " + op, Err: err}}
}

// wrapPageIO wraps a pin/unpin/free failure from the buffer pool.
func wrapPageIO(op string, err error) error {
	return &util.PageIOError{TreeError: &util.TreeError{Message: "bptree: " + op, Err: err}}
}

// wrapInvalidState wraps a corrupt-page-type discovery. It always
// unwraps to ErrInvalidState.
func wrapInvalidState(detail string) error {
	return &util.InvalidStateError{TreeError: &util.TreeError{Message: "bptree: " + detail, Err: ErrInvalidState}}
}
