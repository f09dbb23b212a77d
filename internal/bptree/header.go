package bptree

import (
	"encoding/binary"

	"bptreeidx/internal/diskio"
)

// Header page layout (§6.3): the first sizeof(page-id) bytes are the root
// page-id, little-endian; the remainder of the page is unused. Unlike
// leaf/index pages this carries no node-type discriminator — it is never
// fed through page.Classify.

func readRootPageID(buf []byte) diskio.PageID {
	return diskio.PageID(int32(binary.LittleEndian.Uint32(buf[:4])))
}

func writeRootPageID(buf []byte, id diskio.PageID) {
	binary.LittleEndian.PutUint32(buf[:4], uint32(int32(id)))
}
