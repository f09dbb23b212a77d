package diskio

import (
	"sync"
)

// Scheduler serializes reads and writes to the same page while letting
// requests for distinct pages proceed concurrently, one worker goroutine
// per page currently in flight.
type Scheduler struct {
	reqCh       chan Request
	diskManager *Manager

	pageQueue   map[PageID]chan Request
	pageQueueMu sync.Mutex
}

// Request is a single scheduled read or write.
type Request struct {
	PageID PageID
	Data   []byte
	Write  bool
	RespCh chan Response
}

// Response is the outcome of a scheduled Request.
type Response struct {
	Success bool
	Data    []byte
}

// NewScheduler starts the dispatch goroutine and returns the scheduler.
func NewScheduler(diskManager *Manager) *Scheduler {
	ds := &Scheduler{
		reqCh:       make(chan Request, 100),
		pageQueue:   make(map[PageID]chan Request),
		pageQueueMu: sync.Mutex{},
		diskManager: diskManager,
	}

	go ds.handleDiskReq()
	return ds
}

// NewRequest builds a read or write request and its response channel.
func NewRequest(pageID PageID, data []byte, isWrite bool) Request {
	return Request{
		PageID: pageID,
		Data:   data,
		Write:  isWrite,
		RespCh: make(chan Response),
	}
}

// Schedule enqueues req and returns the channel its response will arrive on.
func (ds *Scheduler) Schedule(req Request) <-chan Response {
	ds.reqCh <- req
	return req.RespCh
}

// FreePage releases pageId's on-disk slot. Unlike reads and writes this is
// not routed through the per-page worker queue: free_page only happens
// once the buffer pool has confirmed the page is unpinned, so there is no
// concurrent reader/writer left to race with.
func (ds *Scheduler) FreePage(pageID PageID) {
	ds.diskManager.FreePage(pageID)
}

func (ds *Scheduler) handleDiskReq() {
	for req := range ds.reqCh {
		ds.pageQueueMu.Lock()
		queue, ok := ds.pageQueue[req.PageID]
		if !ok {
			queue = make(chan Request, 10)
			ds.pageQueue[req.PageID] = queue
		}
		ds.pageQueueMu.Unlock()

		queue <- req

		// !ok means we created a new page queue, so a worker needs to be
		// started to drain it.
		if !ok {
			go ds.pageWorker(req.PageID, queue)
		}
	}
}

func (ds *Scheduler) pageWorker(pageID PageID, reqQueue chan Request) {
	for {
		select {
		case req := <-reqQueue:
			if req.Write {
				if err := ds.diskManager.writePage(req.PageID, req.Data); err != nil {
					req.RespCh <- Response{Success: false}
				} else {
					req.RespCh <- Response{Success: true}
				}
			} else {
				if data, err := ds.diskManager.readPage(req.PageID); err != nil {
					req.RespCh <- Response{Success: false}
				} else {
					req.RespCh <- Response{Success: true, Data: data}
				}
			}

		default:
			// done handling requests for this page, drop it from the queue
			ds.pageQueueMu.Lock()
			delete(ds.pageQueue, pageID)
			ds.pageQueueMu.Unlock()
			return
		}
	}
}
