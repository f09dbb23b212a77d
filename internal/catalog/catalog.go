// Package catalog maps logical tree-file names to their header page ids,
// the collaborator the tree engine consults so the same named file opens
// to the same root across process restarts.
package catalog

import (
	"fmt"
	"os"
	"sync"

	"bptreeidx/internal/diskio"
	"bptreeidx/internal/util"
)

// Catalog is a small persisted name -> header-page-id table. When path is
// empty it behaves as a purely in-memory catalog, useful for tests and
// scratch trees that never need to be reopened by name.
type Catalog struct {
	mu      sync.Mutex
	path    string
	entries map[string]diskio.PageID
}

// Open loads the catalog snapshot at path, or starts empty if it does not
// exist yet. An empty path yields an in-memory-only catalog.
func Open(path string) (*Catalog, error) {
	c := &Catalog{path: path, entries: map[string]diskio.PageID{}}
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}

	raw, err := util.ToStruct[map[string]int32](data)
	if err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", path, err)
	}
	for name, id := range raw {
		c.entries[name] = diskio.PageID(id)
	}

	return c, nil
}

// GetFileEntry returns the header page id registered for name.
func (c *Catalog) GetFileEntry(name string) (diskio.PageID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.entries[name]
	return id, ok
}

// AddFileEntry registers name's header page id, persisting the snapshot.
func (c *Catalog) AddFileEntry(name string, id diskio.PageID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[name] = id
	return c.persist()
}

// DeleteFileEntry removes name from the catalog, persisting the snapshot.
func (c *Catalog) DeleteFileEntry(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, name)
	return c.persist()
}

func (c *Catalog) persist() error {
	if c.path == "" {
		return nil
	}

	raw := make(map[string]int32, len(c.entries))
	for name, id := range c.entries {
		raw[name] = int32(id)
	}

	data, err := util.ToByteSlice(raw)
	if err != nil {
		return fmt.Errorf("catalog: encode: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("catalog: write %s: %w", c.path, err)
	}
	return nil
}
