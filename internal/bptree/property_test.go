package bptree

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bptreeidx/internal/diskio"
	"bptreeidx/internal/page"
)

// TestPropertyRandomWorkload drives a seeded random sequence of inserts
// and deletes through a single tree and checks the universal properties
// from spec §1/§5/§8: roundtrip (1), order (2), balance (3), separator
// order (4), and pin leak-freedom (6). Properties 5 (sibling-chain order,
// exercised by scanAll's full-range scans in tree_test.go) and 7 (destroy
// completeness, covered by TestDestroyFreesAllReachablePages) already
// have dedicated scenario coverage and are not repeated here.
func TestPropertyRandomWorkload(t *testing.T) {
	const seed = 20240917
	rng := rand.New(rand.NewSource(seed))

	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.BufferPoolFrames = 64

	tree, stack, err := OpenFile(filepath.Join(dir, "data.db"), filepath.Join(dir, "catalog.db"), "property", cfg)
	require.NoError(t, err)
	defer func() {
		_ = tree.Close()
		_ = stack.Close()
	}()

	const alphabet = "abcdefghijklmnopqrstuvwxyz"
	live := map[page.Key]map[page.RID]bool{}

	assertNoLeak := func() {
		for _, id := range stack.BPM.PinnedPages() {
			assert.Equal(t, tree.headerID, id, "page %d left pinned after an operation", id)
		}
	}

	const ops = 500
	for i := 0; i < ops; i++ {
		key := page.Key(alphabet[rng.Intn(len(alphabet))])
		rid := page.RID{PageID: diskio.PageID(rng.Intn(1000)), Slot: int32(rng.Intn(10))}

		if rng.Intn(3) == 0 && len(live[key]) > 0 {
			var victim page.RID
			for r := range live[key] {
				victim = r
				break
			}
			require.NoError(t, tree.Delete(key, victim))
			delete(live[key], victim)
			assertNoLeak()
			continue
		}

		require.NoError(t, tree.Insert(key, rid))
		if live[key] == nil {
			live[key] = map[page.RID]bool{}
		}
		live[key][rid] = true
		assertNoLeak()
	}

	// Property 1: roundtrip. An exact-key scan yields precisely the live
	// multiset of RIDs inserted and not since deleted for that key.
	for _, k := range alphabet {
		key := page.Key(k)
		want := live[key]

		cur, err := tree.OpenScan(&key, &key)
		require.NoError(t, err)

		got := map[page.RID]bool{}
		for {
			rid, gotKey, ok, err := cur.Next()
			if err != nil {
				require.ErrorIs(t, err, ErrBoundExhausted)
				break
			}
			if !ok {
				break
			}
			assert.Equal(t, key, gotKey)
			got[rid] = true
		}
		assertNoLeak()

		assert.Equal(t, len(want), len(got), "key %q", key)
		for r := range got {
			assert.True(t, want[r], "unexpected rid %+v for key %q", r, key)
		}
	}

	// Property 2: order. A full scan visits keys in non-decreasing order.
	cur, err := tree.OpenScan(nil, nil)
	require.NoError(t, err)
	var prev page.Key
	first := true
	count := 0
	for {
		_, key, ok, err := cur.Next()
		if err != nil {
			require.ErrorIs(t, err, ErrBoundExhausted)
			break
		}
		if !ok {
			break
		}
		if !first {
			assert.LessOrEqual(t, string(prev), string(key))
		}
		prev = key
		first = false
		count++
	}
	assertNoLeak()
	assert.Greater(t, count, 0)

	// Properties 3 & 4: balance and separator order, checked by an
	// independent structural walk of the live tree.
	assertBalanced(t, tree)
	assertSeparatorsOrdered(t, tree)
	assertNoLeak()
}

// assertBalanced checks property 3: every leaf sits at the same depth
// from the root.
func assertBalanced(t *testing.T, tree *Tree) {
	t.Helper()

	root := tree.rootID()
	if root == diskio.InvalidPageID {
		return
	}

	depths := map[int]bool{}

	var walk func(id diskio.PageID, depth int) error
	walk = func(id diskio.PageID, depth int) error {
		guard, nt, err := tree.classifyRead(id)
		if err != nil {
			return err
		}

		switch nt {
		case page.NodeLeaf:
			guard.Drop()
			depths[depth] = true
			return nil

		case page.NodeIndex:
			var idx page.IndexPage
			err := page.Decode(guard.GetData(), &idx)
			guard.Drop()
			if err != nil {
				return err
			}

			if err := walk(idx.GetLeftLink(), depth+1); err != nil {
				return err
			}
			for _, child := range idx.Children {
				if err := walk(child, depth+1); err != nil {
					return err
				}
			}
			return nil

		default:
			guard.Drop()
			return ErrInvalidState
		}
	}

	require.NoError(t, walk(root, 0))
	assert.Len(t, depths, 1, "leaves found at differing depths: %v", depths)
}

// assertSeparatorsOrdered checks property 4: within any index node,
// separator keys are strictly increasing, and every key reachable under a
// given child falls within [separator, nextSeparator).
func assertSeparatorsOrdered(t *testing.T, tree *Tree) {
	t.Helper()

	root := tree.rootID()
	if root == diskio.InvalidPageID {
		return
	}

	var walk func(id diskio.PageID, lo, hi *page.Key) error
	walk = func(id diskio.PageID, lo, hi *page.Key) error {
		guard, nt, err := tree.classifyRead(id)
		if err != nil {
			return err
		}

		switch nt {
		case page.NodeLeaf:
			var leaf page.LeafPage
			err := page.Decode(guard.GetData(), &leaf)
			guard.Drop()
			if err != nil {
				return err
			}
			for _, k := range leaf.Keys {
				if lo != nil {
					assert.True(t, page.Compare(k, *lo) >= 0, "key %q below lower bound %q", k, *lo)
				}
				if hi != nil {
					assert.True(t, page.Compare(k, *hi) < 0, "key %q at or above upper bound %q", k, *hi)
				}
			}
			return nil

		case page.NodeIndex:
			var idx page.IndexPage
			err := page.Decode(guard.GetData(), &idx)
			guard.Drop()
			if err != nil {
				return err
			}

			for i := 1; i < len(idx.Keys); i++ {
				assert.True(t, page.Compare(idx.Keys[i-1], idx.Keys[i]) < 0,
					"separators not strictly increasing: %q, %q", idx.Keys[i-1], idx.Keys[i])
			}

			leftHi := hi
			if len(idx.Keys) > 0 {
				leftHi = &idx.Keys[0]
			}
			if err := walk(idx.GetLeftLink(), lo, leftHi); err != nil {
				return err
			}

			for i, child := range idx.Children {
				childHi := hi
				if i+1 < len(idx.Keys) {
					childHi = &idx.Keys[i+1]
				}
				if err := walk(child, &idx.Keys[i], childHi); err != nil {
					return err
				}
			}
			return nil

		default:
			guard.Drop()
			return ErrInvalidState
		}
	}

	require.NoError(t, walk(root, nil, nil))
}
