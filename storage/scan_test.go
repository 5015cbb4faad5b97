package storage

import (
	"io"
	"testing"
)

func TestScanEmptyFileYieldsEOF(t *testing.T) {
	h := newTestHandle(t)
	it, err := NewScanIterator(h, intAttr, nil, nil, true, true)
	if err != nil {
		t.Fatalf("NewScanIterator: %v", err)
	}
	if _, _, err := it.NextEntry(); err != io.EOF {
		t.Errorf("NextEntry on empty file = %v, want io.EOF", err)
	}
}

func TestScanExclusiveBounds(t *testing.T) {
	h := newTestHandle(t)
	for i := int32(0); i < 10; i++ {
		if err := InsertEntry(h, intAttr, IntKey(i), RID{PageNum: uint32(i)}, nil); err != nil {
			t.Fatalf("InsertEntry(%d): %v", i, err)
		}
	}
	low, high := IntKey(2), IntKey(7)
	it, err := NewScanIterator(h, intAttr, &low, &high, false, false)
	if err != nil {
		t.Fatalf("NewScanIterator: %v", err)
	}
	defer it.Close()

	var got []int32
	for {
		key, _, err := it.NextEntry()
		if err != nil {
			break
		}
		got = append(got, key.IntVal)
	}
	want := []int32{3, 4, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestScanSkipsTombstones(t *testing.T) {
	h := newTestHandle(t)
	for i := int32(0); i < 5; i++ {
		if err := InsertEntry(h, intAttr, IntKey(i), RID{PageNum: uint32(i)}, nil); err != nil {
			t.Fatalf("InsertEntry(%d): %v", i, err)
		}
	}
	if err := DeleteEntry(h, intAttr, IntKey(2), RID{PageNum: 2}); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}

	it, err := NewScanIterator(h, intAttr, nil, nil, true, true)
	if err != nil {
		t.Fatalf("NewScanIterator: %v", err)
	}
	defer it.Close()

	for {
		key, _, err := it.NextEntry()
		if err != nil {
			break
		}
		if key.IntVal == 2 {
			t.Error("scan returned a tombstoned key")
		}
	}
}

func TestScanAfterCloseReturnsErrFileNotOpen(t *testing.T) {
	h := newTestHandle(t)
	if err := InsertEntry(h, intAttr, IntKey(1), RID{PageNum: 1}, nil); err != nil {
		t.Fatalf("InsertEntry: %v", err)
	}
	it, err := NewScanIterator(h, intAttr, nil, nil, true, true)
	if err != nil {
		t.Fatalf("NewScanIterator: %v", err)
	}
	it.Close()
	if _, _, err := it.NextEntry(); err != ErrFileNotOpen {
		t.Errorf("NextEntry after Close = %v, want ErrFileNotOpen", err)
	}
}

func TestScanVarCharOrdering(t *testing.T) {
	h := newTestHandle(t)
	attr := Attribute{Name: "name", Type: AttrVarChar, Length: 64}
	words := []string{"banana", "apple", "cherry", "ab"}
	for i, w := range words {
		if err := InsertEntry(h, attr, VarCharKey([]byte(w)), RID{PageNum: uint32(i)}, nil); err != nil {
			t.Fatalf("InsertEntry(%q): %v", w, err)
		}
	}

	it, err := NewScanIterator(h, attr, nil, nil, true, true)
	if err != nil {
		t.Fatalf("NewScanIterator: %v", err)
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
	want := []string{"ab", "apple", "banana", "cherry"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
