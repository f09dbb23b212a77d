package bptree

import (
	"bptreeidx/internal/diskio"
	"bptreeidx/internal/page"
)

// Config configures the storage stack a tree is opened against: buffer-
// pool frame count, the LRU-K lookback, the key-size cap, and the
// logical per-page byte budget. It is passed to OpenFile as a plain
// argument, following the teacher's constructor-argument pattern rather
// than a global config singleton.
type Config struct {
	BufferPoolFrames int
	LRUK             int
	MaxKeySize       int

	// PageCapacity is the byte budget every leaf/index page's
	// AvailableSpace is checked against — logically smaller than the
	// physical diskio.PageSize frame it is stored in if set below it, so
	// a small value forces splits well before a page is anywhere near
	// physically full. Tests that need a deterministic multi-level tree
	// set this instead of inserting enough entries to fill a full 4096-
	// byte page. Non-positive falls back to diskio.PageSize.
	PageCapacity int
}

// DefaultConfig returns the stack's out-of-the-box sizing: a full
// physical page is also the logical capacity.
func DefaultConfig() Config {
	return Config{
		BufferPoolFrames: diskio.DefaultPageCapacity,
		LRUK:             2,
		MaxKeySize:       page.DefaultMaxKeySize,
		PageCapacity:     diskio.PageSize,
	}
}
