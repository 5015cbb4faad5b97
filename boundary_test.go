package ix

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/wwu39/IX/internal/testkit"
	"github.com/wwu39/IX/storage"
)

func openFresh(t *testing.T) *Index {
	t.Helper()
	path := filepath.Join(t.TempDir(), "boundary.ix")
	if err := Create(path); err != nil {
		t.Fatalf("Create: %v", err)
	}
	idx, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

var testAttr = storage.Attribute{Name: "a", Type: storage.AttrInt, Length: 4}

// Scenario 1: empty scan on a freshly created file yields EOF immediately.
func TestBoundaryEmptyScan(t *testing.T) {
	idx := openFresh(t)
	it, err := idx.Scan(testAttr, nil, nil, true, true)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	defer it.Close()
	if _, _, err := it.NextEntry(); err != io.EOF {
		t.Errorf("NextEntry = %v, want io.EOF", err)
	}
}

// Scenario 2: a single insert is exactly recovered by a point scan.
func TestBoundarySingleInsertPointLookup(t *testing.T) {
	idx := openFresh(t)
	rid := storage.RID{PageNum: 7, SlotNum: 3}
	if err := idx.InsertEntry(testAttr, storage.IntKey(42), rid); err != nil {
		t.Fatalf("InsertEntry: %v", err)
	}

	k42 := storage.IntKey(42)
	it, err := idx.Scan(testAttr, &k42, &k42, true, true)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	defer it.Close()

	key, gotRID, err := it.NextEntry()
	if err != nil {
		t.Fatalf("NextEntry: %v", err)
	}
	if key.IntVal != 42 || gotRID != rid {
		t.Errorf("got (%d, %+v), want (42, %+v)", key.IntVal, gotRID, rid)
	}
	if _, _, err := it.NextEntry(); err != io.EOF {
		t.Errorf("second NextEntry = %v, want io.EOF", err)
	}
}

// Scenario 3: inserting keys 1..300 forces at least one leaf split, and a
// full scan still returns them in order.
func TestBoundaryForcedLeafSplit(t *testing.T) {
	idx := openFresh(t)
	for i := int32(1); i <= 300; i++ {
		if err := idx.InsertEntry(testAttr, storage.IntKey(i), storage.RID{PageNum: uint32(i)}); err != nil {
			t.Fatalf("InsertEntry(%d): %v", i, err)
		}
	}
	if reads, writes, appends := idx.CollectCounterValues(); appends <= 2 {
		t.Fatalf("300 keys should force a leaf split (appends=%d reads=%d writes=%d)", appends, reads, writes)
	}

	it, err := idx.Scan(testAttr, nil, nil, true, true)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	defer it.Close()

	var want int32 = 1
	for {
		key, _, err := it.NextEntry()
		if err != nil {
			break
		}
		if key.IntVal != want {
			t.Fatalf("got %d, want %d", key.IntVal, want)
		}
		want++
	}
	if want != 301 {
		t.Errorf("scanned up to %d, want 301 entries total", want-1)
	}
}

// Scenario 4: enough keys to force an internal split; the root becomes an
// internal node with parent == 0.
func TestBoundaryRootGrowth(t *testing.T) {
	idx := openFresh(t)
	const n = 90000
	for i := int32(0); i < n; i++ {
		if err := idx.InsertEntry(testAttr, storage.IntKey(i), storage.RID{PageNum: uint32(i)}); err != nil {
			t.Fatalf("InsertEntry(%d): %v", i, err)
		}
	}

	metaBuf, err := idx.handle.ReadPage(0)
	if err != nil {
		t.Fatalf("ReadPage(0): %v", err)
	}
	rootNum := storage.DecodeMeta(metaBuf).Root
	rootBuf, err := idx.handle.ReadPage(rootNum)
	if err != nil {
		t.Fatalf("ReadPage(%d): %v", rootNum, err)
	}
	if hdr := storage.WrapPage(rootBuf).Header(); hdr.Leaf || hdr.Parent != 0 {
		t.Errorf("root page %d: leaf=%v parent=%d, want an internal node with parent 0", rootNum, hdr.Leaf, hdr.Parent)
	}

	testkit.AssertLeafChainOrdered(t, idx.handle, testAttr)
	testkit.AssertParentPointersConsistent(t, idx.handle, testAttr)
	testkit.AssertPageSpaceBounds(t, idx.handle)
}

// Scenario 5: an exclusive range scan over 1..5 with bounds (2,4) yields
// exactly 3.
func TestBoundaryExclusiveRange(t *testing.T) {
	idx := openFresh(t)
	for i := int32(1); i <= 5; i++ {
		if err := idx.InsertEntry(testAttr, storage.IntKey(i), storage.RID{PageNum: uint32(i)}); err != nil {
			t.Fatalf("InsertEntry(%d): %v", i, err)
		}
	}
	low, high := storage.IntKey(2), storage.IntKey(4)
	it, err := idx.Scan(testAttr, &low, &high, false, false)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	defer it.Close()

	key, _, err := it.NextEntry()
	if err != nil {
		t.Fatalf("NextEntry: %v", err)
	}
	if key.IntVal != 3 {
		t.Errorf("got %d, want 3", key.IntVal)
	}
	if _, _, err := it.NextEntry(); err != io.EOF {
		t.Errorf("second NextEntry = %v, want io.EOF", err)
	}
}

// Scenario 6: two entries share a key; deleting one leaves the other.
func TestBoundaryTombstoneSkip(t *testing.T) {
	idx := openFresh(t)
	ridA := storage.RID{PageNum: 1, SlotNum: 1}
	ridB := storage.RID{PageNum: 2, SlotNum: 2}
	if err := idx.InsertEntry(testAttr, storage.IntKey(10), ridA); err != nil {
		t.Fatalf("InsertEntry A: %v", err)
	}
	if err := idx.InsertEntry(testAttr, storage.IntKey(10), ridB); err != nil {
		t.Fatalf("InsertEntry B: %v", err)
	}
	if err := idx.DeleteEntry(testAttr, storage.IntKey(10), ridA); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}

	k10 := storage.IntKey(10)
	it, err := idx.Scan(testAttr, &k10, &k10, true, true)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	defer it.Close()

	_, rid, err := it.NextEntry()
	if err != nil {
		t.Fatalf("NextEntry: %v", err)
	}
	if rid != ridB {
		t.Errorf("got rid %+v, want %+v", rid, ridB)
	}
	if _, _, err := it.NextEntry(); err != io.EOF {
		t.Errorf("second NextEntry = %v, want io.EOF", err)
	}
}

// Scenario 7: VarChar keys compare and scan lexicographically.
func TestBoundaryVarCharOrdering(t *testing.T) {
	idx := openFresh(t)
	attr := storage.Attribute{Name: "name", Type: storage.AttrVarChar, Length: 64}
	for i, w := range []string{"apple", "banana", "cherry"} {
		if err := idx.InsertEntry(attr, storage.VarCharKey([]byte(w)), storage.RID{PageNum: uint32(i)}); err != nil {
			t.Fatalf("InsertEntry(%q): %v", w, err)
		}
	}

	low := storage.VarCharKey([]byte("b"))
	it, err := idx.Scan(attr, &low, nil, true, true)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	defer it.Close()

	var got []string
	for {
		key, _, err := it.NextEntry()
		if err != nil {
			break
		}
		got = append(got, string(key.StrVal))
	}
	want := []string{"banana", "cherry"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// Deleting the same (key, rid) twice: first ok, second ATTR_DN_EXIST.
func TestDeleteSameEntryTwice(t *testing.T) {
	idx := openFresh(t)
	rid := storage.RID{PageNum: 1, SlotNum: 0}
	if err := idx.InsertEntry(testAttr, storage.IntKey(5), rid); err != nil {
		t.Fatalf("InsertEntry: %v", err)
	}
	if err := idx.DeleteEntry(testAttr, storage.IntKey(5), rid); err != nil {
		t.Fatalf("first DeleteEntry: %v", err)
	}
	if err := idx.DeleteEntry(testAttr, storage.IntKey(5), rid); err != storage.ErrAttrNotExist {
		t.Errorf("second DeleteEntry = %v, want ErrAttrNotExist", err)
	}
}

// Round trip: create, close, reopen succeeds and the root data is intact.
func TestRoundTripCreateCloseReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roundtrip.ix")
	if err := Create(path); err != nil {
		t.Fatalf("Create: %v", err)
	}
	idx, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := idx.InsertEntry(testAttr, storage.IntKey(1), storage.RID{PageNum: 1}); err != nil {
		t.Fatalf("InsertEntry: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	idx2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer idx2.Close()

	it, err := idx2.Scan(testAttr, nil, nil, true, true)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	defer it.Close()
	key, _, err := it.NextEntry()
	if err != nil || key.IntVal != 1 {
		t.Errorf("after reopen, got key=%v err=%v, want 1/nil", key, err)
	}
}

// Opening a path already tracked by an open *Index in this process fails.
func TestOpenHandleInUse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inuse.ix")
	if err := Create(path); err != nil {
		t.Fatalf("Create: %v", err)
	}
	idx, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer idx.Close()

	if _, err := Open(path); err != storage.ErrHandleInUse {
		t.Errorf("second Open = %v, want ErrHandleInUse", err)
	}
}
