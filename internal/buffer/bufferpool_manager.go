package buffer

import (
	"fmt"
	"sync"
	"sync/atomic"

	"bptreeidx/internal/diskio"
)

type mode = int

const (
	write mode = iota
	read
)

// Manager is the buffer pool: it owns a fixed set of frames, pins pages
// into them on demand, and evicts via LRU-K when none are free. It is the
// sole path through which tree pages are read or written; the tree engine
// never touches diskio directly.
type Manager struct {
	mu            sync.Mutex
	cond          sync.Cond
	frames        []*frame
	pageTable     map[diskio.PageID]int
	nextPageID    atomic.Int64
	diskScheduler *diskio.Scheduler
	replacer      *lrukReplacer
	freeFrames    []int
}

func NewBufferpoolManager(size int, replacer *lrukReplacer, diskScheduler *diskio.Scheduler) *Manager {
	frames := make([]*frame, size)
	freeFrames := make([]int, size)

	for i := range size {
		frames[i] = &frame{
			id:   i,
			data: make([]byte, diskio.PageSize),
		}
		freeFrames[i] = i
	}

	bpm := &Manager{
		frames:        frames,
		pageTable:     make(map[diskio.PageID]int),
		replacer:      replacer,
		diskScheduler: diskScheduler,
		freeFrames:    freeFrames,
	}
	bpm.cond = *sync.NewCond(&bpm.mu)
	return bpm
}

// NewPageID allocates a fresh page id; it does not pin or initialize a
// frame for it, callers pin it with WritePage. NewPage does both steps.
func (b *Manager) NewPageID() diskio.PageID {
	return diskio.PageID(b.nextPageID.Add(1))
}

// NewPage allocates a fresh page id and returns it pinned dirty, ready for
// the caller to initialize and unpin. This is the new_page collaborator
// contract from the external buffer-pool interface.
func (b *Manager) NewPage() (diskio.PageID, *WritePageGuard, error) {
	pageID := b.NewPageID()
	guard, err := b.WritePage(pageID)
	if err != nil {
		return diskio.InvalidPageID, nil, err
	}
	return pageID, guard, nil
}

// ReadPage pins pageId for shared reading, fetching it from disk if it is
// not already buffered.
func (b *Manager) ReadPage(pageID diskio.PageID) (*ReadPageGuard, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for {
		if id, ok := b.pageTable[pageID]; ok {
			fr := b.frames[id]

			b.replacer.recordAccess(fr.id)
			b.replacer.setEvictable(fr.id, false)
			fr.mu.RLock()
			fr.pin()

			return NewReadPageGuard(fr, b), nil
		}

		fr, err := b.acquireFrame(pageID)
		if err != nil {
			return nil, err
		}
		if fr == nil {
			b.cond.Wait()
			continue
		}

		fr.mu.RLock()
		fr.pin()

		return NewReadPageGuard(fr, b), nil
	}
}

// WritePage pins pageId exclusively, fetching it from disk if necessary,
// and marks it dirty since the caller intends to mutate it.
func (b *Manager) WritePage(pageID diskio.PageID) (*WritePageGuard, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for {
		if id, ok := b.pageTable[pageID]; ok {
			fr := b.frames[id]

			b.replacer.recordAccess(fr.id)
			b.replacer.setEvictable(fr.id, false)
			fr.mu.Lock()
			fr.pin()
			fr.dirty = true

			return NewWritePageGuard(fr, b), nil
		}

		fr, err := b.acquireFrame(pageID)
		if err != nil {
			return nil, err
		}
		if fr == nil {
			b.cond.Wait()
			continue
		}

		fr.mu.Lock()
		fr.pin()
		fr.dirty = true

		return NewWritePageGuard(fr, b), nil
	}
}

// acquireFrame finds a frame for pageId that is not yet in the page table,
// either a free frame or one reclaimed via eviction, loads pageId's bytes
// into it, and registers it in the page table. It returns (nil, nil) when
// no frame is currently available and the caller should wait.
func (b *Manager) acquireFrame(pageID diskio.PageID) (*frame, error) {
	var fr *frame

	if len(b.freeFrames) > 0 {
		id := b.freeFrames[0]
		b.freeFrames = b.freeFrames[1:]
		fr = b.frames[id]
	} else if id, ok := b.replacer.evict(); ok {
		fr = b.frames[id]
		b.flush(fr)
	}

	if fr == nil {
		return nil, nil
	}

	delete(b.pageTable, fr.pageID)
	b.pageTable[pageID] = fr.id

	b.replacer.recordAccess(fr.id)
	b.replacer.setEvictable(fr.id, false)

	fr.reset()
	fr.pageID = pageID

	diskReq := diskio.NewRequest(pageID, nil, false)
	respCh := b.diskScheduler.Schedule(diskReq)
	resp := <-respCh
	if !resp.Success {
		return nil, fmt.Errorf("failed to read page %d from disk", pageID)
	}
	copy(fr.data, resp.Data)

	return fr, nil
}

// FreePage evicts pageId from the buffer pool (if present), frees its
// on-disk slot, and removes it from the replacer. It is an error to free a
// page that is currently pinned.
func (b *Manager) FreePage(pageID diskio.PageID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if id, ok := b.pageTable[pageID]; ok {
		fr := b.frames[id]
		if fr.pins.Load() > 0 {
			return fmt.Errorf("cannot free pinned page %d", pageID)
		}

		delete(b.pageTable, pageID)
		_ = b.replacer.remove(id)
		b.freeFrames = append(b.freeFrames, id)
		fr.reset()
	}

	b.diskScheduler.FreePage(pageID)
	return nil
}

// PinnedPages returns the page ids currently held with a nonzero pin
// count, in no particular order. It exists for tests that need to assert
// pin leak-freedom from outside the package: every operation that
// crabs through the tree is expected to leave nothing pinned behind it
// except whatever the caller is still explicitly holding (a Tree's
// header page, for instance).
func (b *Manager) PinnedPages() []diskio.PageID {
	b.mu.Lock()
	defer b.mu.Unlock()

	var pinned []diskio.PageID
	for pageID, id := range b.pageTable {
		if b.frames[id].pins.Load() > 0 {
			pinned = append(pinned, pageID)
		}
	}
	return pinned
}

func (b *Manager) flush(fr *frame) {
	if fr.dirty {
		writeReq := diskio.NewRequest(fr.pageID, fr.data, true)
		respCh := b.diskScheduler.Schedule(writeReq)
		<-respCh
	}
}
