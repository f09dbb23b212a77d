package bptree

import (
	"fmt"
	"os"

	"bptreeidx/internal/buffer"
	"bptreeidx/internal/catalog"
	"bptreeidx/internal/diskio"
)

// Stack bundles the storage components a tree needs underneath it: the
// disk manager and scheduler, the buffer pool, and the file catalog. It
// is the concrete assembly of §6.1's "external collaborators" — a
// runnable module needs real pages to pin, so cmd/bptreeutil builds one
// of these instead of mocking the buffer pool.
type Stack struct {
	Disk      *diskio.Manager
	Scheduler *diskio.Scheduler
	BPM       *buffer.Manager
	Catalog   *catalog.Catalog

	file *os.File
}

// Close releases the underlying data file descriptor. It does not flush
// dirty pages still held by the buffer pool; callers close every open
// Tree first.
func (s *Stack) Close() error {
	return s.file.Close()
}

// OpenStack assembles a Stack over dataPath (the page file) and
// catalogPath (the name -> header-page-id snapshot) using cfg's sizing.
func OpenStack(dataPath, catalogPath string, cfg Config) (*Stack, error) {
	file, err := os.OpenFile(dataPath, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("bptree: open data file %s: %w", dataPath, err)
	}
	if size, statErr := file.Stat(); statErr == nil && size.Size() == 0 {
		if err := file.Truncate(int64(diskio.DefaultPageCapacity) * diskio.PageSize); err != nil {
			return nil, fmt.Errorf("bptree: size data file %s: %w", dataPath, err)
		}
	}

	disk := diskio.NewManager(file)
	scheduler := diskio.NewScheduler(disk)
	replacer := buffer.NewLrukReplacer(cfg.BufferPoolFrames, cfg.LRUK)
	bpm := buffer.NewBufferpoolManager(cfg.BufferPoolFrames, replacer, scheduler)

	cat, err := catalog.Open(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("bptree: open catalog %s: %w", catalogPath, err)
	}

	return &Stack{Disk: disk, Scheduler: scheduler, BPM: bpm, Catalog: cat, file: file}, nil
}

// OpenFile assembles a Stack over dataPath/catalogPath and opens name
// through it in one call, the shape cmd/bptreeutil drives.
func OpenFile(dataPath, catalogPath, name string, cfg Config) (*Tree, *Stack, error) {
	stack, err := OpenStack(dataPath, catalogPath, cfg)
	if err != nil {
		return nil, nil, err
	}

	tree, err := Open(stack.BPM, stack.Catalog, name, cfg)
	if err != nil {
		return nil, nil, err
	}
	return tree, stack, nil
}
