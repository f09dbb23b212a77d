package diskio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDiskScheduler(t *testing.T) {
	t.Run("schedule is non blocking", func(t *testing.T) {
		file := createDbFile(t)

		diskMgr := NewManager(file)
		ds := NewScheduler(diskMgr)

		data := make([]byte, PageSize)
		copy(data, []byte("hello world"))

		writeReq := NewRequest(1, data, true)

		start := time.Now()
		ds.Schedule(writeReq)
		elapsed := time.Since(start)

		assert.Less(t, elapsed, time.Millisecond)
		<-writeReq.RespCh
	})

	t.Run("can schedule read and write requests", func(t *testing.T) {
		file := createDbFile(t)

		diskMgr := NewManager(file)
		ds := NewScheduler(diskMgr)

		data := make([]byte, PageSize)
		copy(data, []byte("hello world"))

		writeReq := NewRequest(1, data, true)
		readReq := NewRequest(1, nil, false)

		ds.Schedule(writeReq)
		ds.Schedule(readReq)

		writeResp := <-writeReq.RespCh
		assert.True(t, writeResp.Success)

		readResp := <-readReq.RespCh
		assert.True(t, readResp.Success)
		assert.Equal(t, data, readResp.Data)
	})
}
