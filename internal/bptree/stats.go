package bptree

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"bptreeidx/internal/diskio"
	"bptreeidx/internal/page"
)

// Stats summarizes a non-invasive tree walk (§4.11): page and entry
// counts, tree height, and per-page-class fill factor.
type Stats struct {
	LeafPages    int
	IndexPages   int
	DataEntries  int
	IndexEntries int
	Height       int

	MinLeafFill, MaxLeafFill, AvgLeafFill    float64
	MinIndexFill, MaxIndexFill, AvgIndexFill float64

	leafFillSum  float64
	indexFillSum float64
}

// DumpStats walks the tree and reports its statistics. Every page it
// visits is read-pinned only, never mutated.
func (t *Tree) DumpStats() (Stats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Stats{MinLeafFill: 1, MinIndexFill: 1}

	root := t.rootID()
	if root == diskio.InvalidPageID {
		return s, nil
	}

	height, err := t.statsWalk(root, &s)
	if err != nil {
		return Stats{}, err
	}
	s.Height = height

	if s.LeafPages > 0 {
		s.AvgLeafFill = s.leafFillSum / float64(s.LeafPages)
	} else {
		s.MinLeafFill = 0
	}
	if s.IndexPages > 0 {
		s.AvgIndexFill = s.indexFillSum / float64(s.IndexPages)
	} else {
		s.MinIndexFill = 0
	}

	return s, nil
}

// statsWalk returns the height of the subtree rooted at id: zero for a
// leaf, one plus the height of its children for an index node. By
// invariant 2 every child of an index node reports the same height.
func (t *Tree) statsWalk(id diskio.PageID, s *Stats) (int, error) {
	guard, nt, err := t.classifyRead(id)
	if err != nil {
		return 0, err
	}

	switch nt {
	case page.NodeLeaf:
		var leaf page.LeafPage
		err := page.Decode(guard.GetData(), &leaf)
		guard.Drop()
		if err != nil {
			return 0, err
		}

		fill := fillFactor(leaf.AvailableSpace(), leaf.Capacity)
		s.LeafPages++
		s.DataEntries += leaf.Size()
		s.leafFillSum += fill
		if fill < s.MinLeafFill {
			s.MinLeafFill = fill
		}
		if fill > s.MaxLeafFill {
			s.MaxLeafFill = fill
		}
		return 0, nil

	case page.NodeIndex:
		var idx page.IndexPage
		err := page.Decode(guard.GetData(), &idx)
		guard.Drop()
		if err != nil {
			return 0, err
		}

		fill := fillFactor(idx.AvailableSpace(), idx.Capacity)
		s.IndexPages++
		s.IndexEntries += idx.Size()
		s.indexFillSum += fill
		if fill < s.MinIndexFill {
			s.MinIndexFill = fill
		}
		if fill > s.MaxIndexFill {
			s.MaxIndexFill = fill
		}

		height, err := t.statsWalk(idx.GetLeftLink(), s)
		if err != nil {
			return 0, err
		}
		for _, child := range idx.Children {
			if _, err := t.statsWalk(child, s); err != nil {
				return 0, err
			}
		}
		return height + 1, nil

	default:
		guard.Drop()
		return 0, ErrInvalidState
	}
}

// fillFactor reports how full a page is relative to its own logical
// capacity, not the physical diskio.PageSize frame it happens to be
// stored in — a page opened with a reduced Config.PageCapacity still
// reports a meaningful fill percentage instead of one scaled against a
// denominator it was never sized against.
func fillFactor(available, capacity int) float64 {
	return 1 - float64(available)/float64(capacity)
}

// String renders the statistics the way cmd/bptreeutil prints them,
// formatting counts and fill-factor percentages with go-humanize.
func (s Stats) String() string {
	return fmt.Sprintf(
		"nodes: %s (%s leaf, %s index)\n"+
			"entries: %s data, %s index\n"+
			"height: %d\n"+
			"leaf fill: avg %s%%, min %s%%, max %s%%\n"+
			"index fill: avg %s%%, min %s%%, max %s%%\n",
		humanize.Comma(int64(s.LeafPages+s.IndexPages)),
		humanize.Comma(int64(s.LeafPages)),
		humanize.Comma(int64(s.IndexPages)),
		humanize.Comma(int64(s.DataEntries)),
		humanize.Comma(int64(s.IndexEntries)),
		s.Height,
		humanize.FtoaWithDigits(s.AvgLeafFill*100, 1),
		humanize.FtoaWithDigits(s.MinLeafFill*100, 1),
		humanize.FtoaWithDigits(s.MaxLeafFill*100, 1),
		humanize.FtoaWithDigits(s.AvgIndexFill*100, 1),
		humanize.FtoaWithDigits(s.MinIndexFill*100, 1),
		humanize.FtoaWithDigits(s.MaxIndexFill*100, 1),
	)
}
