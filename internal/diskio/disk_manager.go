package diskio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// NewManager wraps an already-open file as a page store.
func NewManager(file *os.File) *Manager {
	return &Manager{
		dbFile:       file,
		pageCapacity: DefaultPageCapacity,
		freeSlots:    []int{},
		pages:        map[PageID]int{},
	}
}

// FreePage releases a page's on-disk slot for reuse. It is the disk-level
// half of the buffer pool's free_page collaborator contract.
func (dm *Manager) FreePage(pageID PageID) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.deletePage(pageID)
}

func (dm *Manager) writePage(pageID PageID, data []byte) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	offset, pageFound := dm.pages[pageID]

	if !pageFound {
		var err error
		offset, err = dm.allocatePage()
		if err != nil {
			return err
		}
		dm.pages[pageID] = offset
	}

	if _, err := dm.dbFile.WriteAt(data, int64(offset)); err != nil {
		return fmt.Errorf("error writing at offset %d: %v", offset, err)
	}

	return nil
}

func (dm *Manager) readPage(pageID PageID) ([]byte, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	offset, pageFound := dm.pages[pageID]

	if !pageFound {
		var err error
		offset, err = dm.allocatePage()
		if err != nil {
			return nil, err
		}
		dm.pages[pageID] = offset
	}

	// A slot past the file's current end has never been written; it
	// reads back as a zeroed page.
	buf := make([]byte, PageSize)
	if _, err := dm.dbFile.ReadAt(buf, int64(offset)); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error reading from offset %d: %v", offset, err)
	}

	return buf, nil
}

func (dm *Manager) deletePage(pageID PageID) {
	if offset, ok := dm.pages[pageID]; ok {
		dm.freeSlots = append(dm.freeSlots, offset)
		delete(dm.pages, pageID)
	}
}

func (dm *Manager) allocatePage() (int, error) {
	if len(dm.freeSlots) > 0 {
		offset := dm.freeSlots[0]
		dm.freeSlots = dm.freeSlots[1:]

		return offset, nil
	}

	if len(dm.pages)+1 > dm.pageCapacity {
		dm.pageCapacity *= 2
		if err := os.Truncate(dm.dbFile.Name(), int64(dm.pageCapacity)*PageSize); err != nil {
			return -1, fmt.Errorf("error resizing db file: %v", err)
		}
	}

	return dm.getNextOffset(), nil
}

func (dm *Manager) getNextOffset() int {
	return len(dm.pages) * PageSize
}

// Manager owns a single db file and maps page ids to byte offsets
// within it, growing the file on demand.
type Manager struct {
	mu           sync.Mutex
	dbFile       *os.File
	pages        map[PageID]int
	freeSlots    []int
	pageCapacity int
}
