// Package testkit provides testing utilities for the ix index engine.
package testkit

import (
	"encoding/binary"
	"testing"

	"github.com/wwu39/IX/storage"
)

// AssertInvariants runs all structural invariant checks against an open
// index file's on-disk tree, per SPEC_FULL.md §8 TESTABLE PROPERTIES.
func AssertInvariants(t *testing.T, h *storage.FileHandle, attr storage.Attribute) {
	t.Helper()

	AssertLeafChainOrdered(t, h, attr)
	AssertParentPointersConsistent(t, h, attr)
	AssertPageSpaceBounds(t, h)
}

// AssertInvariantsAfterRestart re-opens the file at path and re-runs
// AssertInvariants, the way the teacher's restart-and-recheck pattern
// verified state survives a process boundary.
func AssertInvariantsAfterRestart(t *testing.T, path string, attr storage.Attribute) {
	t.Helper()

	h, err := storage.OpenFile(path, nil)
	if err != nil {
		t.Fatalf("reopen %s: %v", path, err)
	}
	defer h.Close()

	AssertInvariants(t, h, attr)
}

// AssertLeafChainOrdered walks the leftmost-leaf-to-tail sibling chain and
// verifies every live key is non-decreasing across the whole chain, and
// that crossing a page boundary via Next never revisits a page. This
// implements the "leaf sibling chain stays sorted" property of §8.
func AssertLeafChainOrdered(t *testing.T, h *storage.FileHandle, attr storage.Attribute) {
	t.Helper()

	if h.NumberOfPages() == 0 {
		return
	}
	root := readRoot(t, h)

	pageNum, page := descendToLeftmostLeaf(t, h, root)
	visited := map[uint32]bool{}
	var prev *storage.Key

	for {
		if visited[pageNum] {
			t.Fatalf("leaf chain cycle detected at page %d", pageNum)
		}
		visited[pageNum] = true

		n := page.NumEntries()
		for i := 0; i < n; i++ {
			entry := page.Entry(i)
			key, consumed := storage.DecodeKey(attr.Type, entry)
			rid := storage.DecodeRID(entry[consumed:])
			if rid.IsTombstone() {
				continue
			}
			if prev != nil && storage.CompareKeys(*prev, key) > 0 {
				t.Errorf("leaf chain out of order at page %d entry %d", pageNum, i)
			}
			prev = &key
		}

		next := page.Header().Next
		if next == storage.NoPage {
			return
		}
		buf, err := h.ReadPage(uint32(next))
		if err != nil {
			t.Fatalf("read next leaf %d: %v", next, err)
		}
		pageNum = uint32(next)
		page = storage.WrapPage(buf)
	}
}

// AssertParentPointersConsistent verifies that every internal node's
// children report it as their Parent, per §4.5.3/§4.5.4's cascade
// bookkeeping.
func AssertParentPointersConsistent(t *testing.T, h *storage.FileHandle, attr storage.Attribute) {
	t.Helper()

	if h.NumberOfPages() == 0 {
		return
	}
	root := readRoot(t, h)
	checkParentPointers(t, h, root, 0, true)
}

func checkParentPointers(t *testing.T, h *storage.FileHandle, pageNum uint32, expectedParent uint32, isRoot bool) {
	t.Helper()

	buf, err := h.ReadPage(pageNum)
	if err != nil {
		t.Fatalf("read page %d: %v", pageNum, err)
	}
	page := storage.WrapPage(buf)
	hdr := page.Header()

	if !isRoot && uint32(hdr.Parent) != expectedParent {
		t.Errorf("page %d: parent=%d, want %d", pageNum, hdr.Parent, expectedParent)
	}
	if page.IsLeaf() {
		return
	}

	n := page.NumEntries()
	for i := 0; i < n; i++ {
		var childPtr uint32
		entry := page.Entry(i)
		if i == 0 {
			childPtr = binary.LittleEndian.Uint32(entry)
		} else {
			childPtr = binary.LittleEndian.Uint32(entry[len(entry)-4:])
		}
		checkParentPointers(t, h, childPtr, pageNum, false)
	}
}

// AssertPageSpaceBounds verifies every page satisfies the slotted-page
// invariant FS + N·SlotSize + HeaderSize <= PageSize from §4.3.
func AssertPageSpaceBounds(t *testing.T, h *storage.FileHandle) {
	t.Helper()

	total := h.NumberOfPages()
	for n := uint32(0); n < total; n++ {
		if n == 0 {
			continue // page 0 is the metadata page, not a slotted node
		}
		buf, err := h.ReadPage(n)
		if err != nil {
			t.Fatalf("read page %d: %v", n, err)
		}
		page := storage.WrapPage(buf)
		hdr := page.Header()
		used := int(hdr.FS) + int(hdr.N)*storage.SlotSize + storage.HeaderSize
		if used > storage.PageSize {
			t.Errorf("page %d: FS(%d)+N(%d)*SlotSize+HeaderSize = %d exceeds PageSize %d",
				n, hdr.FS, hdr.N, used, storage.PageSize)
		}
	}
}

// AssertScanYieldsOrdered drains it fully and verifies every returned key
// is non-decreasing, failing the test otherwise.
func AssertScanYieldsOrdered(t *testing.T, it *storage.ScanIterator) []storage.Key {
	t.Helper()

	var keys []storage.Key
	var prev *storage.Key
	for {
		key, _, err := it.NextEntry()
		if err != nil {
			break
		}
		if prev != nil && storage.CompareKeys(*prev, key) > 0 {
			t.Errorf("scan returned out-of-order keys: %v before %v", *prev, key)
		}
		keys = append(keys, key)
		prev = &key
	}
	return keys
}

func readRoot(t *testing.T, h *storage.FileHandle) uint32 {
	t.Helper()
	metaBuf, err := h.ReadPage(0)
	if err != nil {
		t.Fatalf("read meta page: %v", err)
	}
	return storage.DecodeMeta(metaBuf).Root
}

func descendToLeftmostLeaf(t *testing.T, h *storage.FileHandle, root uint32) (uint32, *storage.Page) {
	t.Helper()

	pageNum := root
	for {
		buf, err := h.ReadPage(pageNum)
		if err != nil {
			t.Fatalf("read page %d: %v", pageNum, err)
		}
		page := storage.WrapPage(buf)
		if page.IsLeaf() {
			return pageNum, page
		}
		pageNum = binary.LittleEndian.Uint32(page.Entry(0))
	}
}
