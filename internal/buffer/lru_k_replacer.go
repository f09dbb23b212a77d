package buffer

import (
	"fmt"
	"sync"
)

// lrukReplacer picks the next frame to evict using the LRU-K policy: frames
// with fewer than k recorded accesses have infinite backward k-distance and
// are evicted first (oldest such frame first); among frames with k or more
// accesses, the one with the largest backward k-distance (current
// timestamp minus the timestamp of its k-th most recent access) is evicted.
type lrukReplacer struct {
	mu            sync.Mutex
	nodeStore     map[int]*lrukNode
	replacerSize  int
	currSize      int
	currTimestamp int
	k             int
}

func NewLrukReplacer(capacity, k int) *lrukReplacer {
	return &lrukReplacer{
		k:            k,
		nodeStore:    map[int]*lrukNode{},
		replacerSize: capacity,
	}
}

// recordAccess registers an access to frameId at the current logical time,
// creating tracking state for the frame on first access.
func (lru *lrukReplacer) recordAccess(frameID int) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	lru.currTimestamp++

	node, ok := lru.nodeStore[frameID]
	if !ok {
		node = &lrukNode{frameID: frameID, k: lru.k}
		lru.nodeStore[frameID] = node
	}
	node.addTimestamp(lru.currTimestamp)
}

// setEvictable marks a frame as eligible (or ineligible) for eviction. A
// frame pinned by a live page guard must never be evictable.
func (lru *lrukReplacer) setEvictable(frameID int, evictable bool) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	node, ok := lru.nodeStore[frameID]
	if !ok {
		return
	}

	if node.isEvictable && !evictable {
		lru.currSize--
	} else if !node.isEvictable && evictable {
		lru.currSize++
	}
	node.isEvictable = evictable
}

// evict removes and returns the frame selected by the LRU-K policy. It
// returns (invalidFrameID, false) when no evictable frame exists.
func (lru *lrukReplacer) evict() (int, bool) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	victim := -1
	victimHasK := false
	victimRank := -1

	for frameID, node := range lru.nodeStore {
		if !node.isEvictable {
			continue
		}

		hasK := node.hasKAccess()
		switch {
		case victim == -1:
			victim, victimHasK, victimRank = frameID, hasK, lru.rank(node, hasK)
		case !hasK && victimHasK:
			// infinite-distance frames always beat finite-distance ones
			victim, victimHasK, victimRank = frameID, hasK, lru.rank(node, hasK)
		case hasK == victimHasK && lru.rank(node, hasK) > victimRank:
			victim, victimHasK, victimRank = frameID, hasK, lru.rank(node, hasK)
		}
	}

	if victim == -1 {
		return invalidFrameID, false
	}

	delete(lru.nodeStore, victim)
	lru.currSize--
	return victim, true
}

// rank returns a value such that a larger rank is evicted preferentially:
// for frames without k accesses yet, the earliest access time (so the
// longest-waiting newcomer goes first); for frames with k accesses, the
// backward k-distance.
func (lru *lrukReplacer) rank(node *lrukNode, hasK bool) int {
	if !hasK {
		return -node.earliestAccess()
	}
	return lru.currTimestamp - node.kthAccess()
}

// remove drops tracking state for a frame entirely, e.g. when its page has
// been freed. The frame must currently be evictable.
func (lru *lrukReplacer) remove(frameID int) error {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	node, ok := lru.nodeStore[frameID]
	if !ok {
		return nil
	}

	if !node.isEvictable {
		return fmt.Errorf("removing a non-evictable frame")
	}

	delete(lru.nodeStore, frameID)
	lru.currSize--
	return nil
}

func (lru *lrukReplacer) size() int {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	return lru.currSize
}
