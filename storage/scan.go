package storage

import "io"

// ScanIterator implements §4.7: a cursor positioned at lowKey, walking the
// leaf sibling chain, stopping at highKey. It borrows the FileHandle it was
// built from — see SPEC_FULL.md §9 "Iterator lifetime" — and the caller
// must call Close before the handle itself is closed.
type ScanIterator struct {
	h    *FileHandle
	attr Attribute

	high     *Key
	highIncl bool

	pageNum uint32
	page    *Page
	cursor  int

	empty  bool // true if the file had zero pages at scan time, or once the scan has returned io.EOF
	closed bool
}

// NewScanIterator positions a scan per §4.7 init: with low == nil, descend
// the left spine to the leftmost leaf; otherwise find the leaf for low and
// locate the first slot satisfying the low bound.
func NewScanIterator(h *FileHandle, attr Attribute, low, high *Key, lowIncl, highIncl bool) (*ScanIterator, error) {
	it := &ScanIterator{h: h, attr: attr, high: high, highIncl: highIncl}

	if h.NumberOfPages() == 0 {
		it.empty = true
		return it, nil
	}

	metaBuf, err := h.ReadPage(0)
	if err != nil {
		return nil, err
	}
	meta := DecodeMeta(metaBuf)
	if err := checkAttribute(meta.Attr, attr); err != nil {
		return nil, err
	}

	var leafNum uint32
	var leaf *Page
	if low == nil {
		leafNum, leaf, err = findLeftmostLeaf(h, meta.Root)
		if err != nil {
			return nil, err
		}
		it.pageNum, it.page, it.cursor = leafNum, leaf, 0
		return it, nil
	}

	leafNum, leaf, err = findLeafFor(h, attr, meta.Root, *low)
	if err != nil {
		return nil, err
	}
	cursor := 0
	n := leaf.NumEntries()
	for cursor < n {
		entry := leaf.Entry(cursor)
		key, _ := DecodeKey(attr.Type, entry)
		cmp := CompareKeys(key, *low)
		if (lowIncl && cmp >= 0) || (!lowIncl && cmp > 0) {
			break
		}
		cursor++
	}
	it.pageNum, it.page, it.cursor = leafNum, leaf, cursor
	return it, nil
}

// NextEntry advances the cursor and returns the next live (key, rid) pair,
// skipping tombstones, crossing leaf boundaries via the sibling chain, and
// returning io.EOF once the chain or the high bound is exhausted.
func (it *ScanIterator) NextEntry() (Key, RID, error) {
	if it.closed {
		return Key{}, RID{}, ErrFileNotOpen
	}
	if it.empty {
		return Key{}, RID{}, io.EOF
	}

	for {
		if it.cursor >= it.page.NumEntries() {
			next := it.page.Header().Next
			if next == NoPage {
				it.empty = true
				return Key{}, RID{}, io.EOF
			}
			buf, err := it.h.ReadPage(uint32(next))
			if err != nil {
				return Key{}, RID{}, err
			}
			it.pageNum = uint32(next)
			it.page = WrapPage(buf)
			it.cursor = 0
			continue
		}

		entry := it.page.Entry(it.cursor)
		key, consumed := DecodeKey(it.attr.Type, entry)
		rid := DecodeRID(entry[consumed:])
		it.cursor++

		if rid.IsTombstone() {
			continue
		}

		if it.high != nil {
			cmp := CompareKeys(key, *it.high)
			if (it.highIncl && cmp > 0) || (!it.highIncl && cmp >= 0) {
				it.empty = true
				return Key{}, RID{}, io.EOF
			}
		}

		return key, rid, nil
	}
}

// Close releases the iterator. Further NextEntry calls return ErrFileNotOpen.
func (it *ScanIterator) Close() error {
	it.closed = true
	it.page = nil
	return nil
}
