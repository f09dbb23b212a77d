package buffer

const invalidFrameID = -1

// lrukNode tracks the last k access timestamps for a single frame.
type lrukNode struct {
	frameID     int
	k           int
	history     []int
	isEvictable bool
}

// hasKAccess reports whether k accesses have been recorded yet; until then
// the node's backward k-distance is treated as infinite.
func (n *lrukNode) hasKAccess() bool {
	return len(n.history) >= n.k
}

// kthAccess returns the timestamp of the k-th most recent access, i.e. the
// oldest entry still retained.
func (n *lrukNode) kthAccess() int {
	if len(n.history) > 0 {
		return n.history[0]
	}

	return -1
}

func (n *lrukNode) earliestAccess() int {
	if len(n.history) > 0 {
		return n.history[0]
	}

	return -1
}

func (n *lrukNode) addTimestamp(timestamp int) {
	if len(n.history) < n.k {
		n.history = append(n.history, timestamp)
		return
	}

	n.history = n.history[1:]
	n.history = append(n.history, timestamp)
}
