package buffer

import "bptreeidx/internal/diskio"

// PageGuard is the shared state behind ReadPageGuard and WritePageGuard: it
// ties a pinned frame to the manager that must eventually be notified of
// its release.
type PageGuard struct {
	frame *frame
	bpm   *Manager
}

type ReadPageGuard struct {
	PageGuard
}

type WritePageGuard struct {
	PageGuard
}

func NewReadPageGuard(fr *frame, bpm *Manager) *ReadPageGuard {
	return &ReadPageGuard{PageGuard{frame: fr, bpm: bpm}}
}

func NewWritePageGuard(fr *frame, bpm *Manager) *WritePageGuard {
	return &WritePageGuard{PageGuard{frame: fr, bpm: bpm}}
}

// Drop unpins the guarded frame (never dirtying it, since a read guard
// never exposes mutable access) and wakes any waiter blocked on a free
// frame. Every ReadPage, WritePage or NewPage call must be matched by
// exactly one Drop.
func (pg *ReadPageGuard) Drop() {
	if pg == nil || pg.frame == nil {
		return
	}

	pg.frame.unpin()
	if pg.frame.pins.Load() == 0 {
		pg.bpm.replacer.setEvictable(pg.frame.id, true)
	}

	pg.frame.mu.RUnlock()
	pg.bpm.mu.Lock()
	pg.bpm.cond.Signal()
	pg.bpm.mu.Unlock()
}

// Drop unpins the guarded frame dirty (a write guard always dirties its
// frame, since the caller was given mutable access) and wakes any waiter
// blocked on a free frame.
func (pg *WritePageGuard) Drop() {
	if pg == nil || pg.frame == nil {
		return
	}

	pg.frame.unpin()
	if pg.frame.pins.Load() == 0 {
		pg.bpm.replacer.setEvictable(pg.frame.id, true)
	}

	pg.frame.mu.Unlock()
	pg.bpm.mu.Lock()
	pg.bpm.cond.Signal()
	pg.bpm.mu.Unlock()
}

func (pg *ReadPageGuard) GetData() []byte {
	return pg.frame.data
}

func (pg *WritePageGuard) GetData() []byte {
	return pg.frame.data
}

func (pg *WritePageGuard) GetDataMut() *[]byte {
	return &pg.frame.data
}

// PageID returns the page id this guard is holding pinned.
func (pg *PageGuard) PageID() diskio.PageID {
	return pg.frame.pageID
}
