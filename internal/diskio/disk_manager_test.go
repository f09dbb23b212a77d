package diskio

import (
	"fmt"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiskManager(t *testing.T) {
	t.Run("test page allocation", func(t *testing.T) {
		dbFile := createDbFile(t)

		dm := NewManager(dbFile)
		offset1, err := dm.allocatePage()
		dm.pages[0] = offset1
		assert.NoError(t, err)

		offset2, err := dm.allocatePage()
		dm.pages[1] = offset2
		assert.NoError(t, err)

		assert.Equal(t, 0, offset1)
		assert.Equal(t, 4096, offset2)
	})

	t.Run("allocate reuses free slots", func(t *testing.T) {
		dbFile := createDbFile(t)

		dm := NewManager(dbFile)
		dm.freeSlots = []int{8192}

		offset, err := dm.allocatePage()
		assert.NoError(t, err)

		assert.Equal(t, 8192, offset)
		assert.Empty(t, dm.freeSlots)
	})

	t.Run("test db file gets resized when full", func(t *testing.T) {
		dbFile := createDbFile(t)

		dm := NewManager(dbFile)
		dm.pageCapacity = 1
		dm.pages = map[PageID]int{
			0: 0,
		}

		offset, err := dm.allocatePage()
		assert.NoError(t, err)

		assert.Equal(t, 4096, offset)
		assert.Equal(t, 2, dm.pageCapacity)

		fileInfo, err := os.Stat(dbFile.Name())
		assert.NoError(t, err)
		assert.Equal(t, int64(PageSize)*2, fileInfo.Size())
	})

	t.Run("test reading and writing a page", func(t *testing.T) {
		dbFile := createDbFile(t)

		dm := NewManager(dbFile)
		dm.pageCapacity = 1

		buf := make([]byte, PageSize)
		copy(buf, []byte("hello world"))

		err := dm.writePage(1, buf)
		assert.NoError(t, err)

		res, err := dm.readPage(1)
		assert.NoError(t, err)

		assert.Equal(t, res, buf)
	})

	t.Run("test page deletion", func(t *testing.T) {
		dbFile := createDbFile(t)

		dm := NewManager(dbFile)
		dm.pageCapacity = 1
		dm.pages[1] = 0
		assert.Equal(t, 0, len(dm.freeSlots))

		dm.FreePage(1)
		assert.Equal(t, 1, len(dm.freeSlots))
	})
}

func createDbFile(t *testing.T) *os.File {
	t.Helper()
	dbFile := path.Join(t.TempDir(), "test.db")

	file, err := os.OpenFile(dbFile, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		panic(fmt.Sprintf("failed creating db file\n%v", err))
	}
	t.Cleanup(func() {
		_ = file.Close()
	})

	_ = os.Truncate(file.Name(), PageSize)
	fileInfo, err := os.Stat(file.Name())
	assert.NoError(t, err)
	assert.Equal(t, int64(PageSize), fileInfo.Size())
	return file
}
