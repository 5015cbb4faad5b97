package storage

import (
	"encoding/binary"

	"github.com/sirupsen/logrus"
)

// scratchSize is the 2·PAGE_SIZE split scratch buffer of SPEC_FULL.md §4.5.2
// / §4.5.4: big enough to hold a full page plus one overflowing entry with
// no possibility of overflow itself, so the ordinary in-page insert logic
// can run against it unmodified.
const scratchSize = 2 * PageSize

func scratchHeaderTail() int { return scratchSize - HeaderSize }

// InsertEntry is the Insert & Split Engine's entry point.
func InsertEntry(h *FileHandle, attr Attribute, key Key, rid RID, log logrus.FieldLogger) error {
	if log == nil {
		log = logrus.StandardLogger()
	}

	if h.NumberOfPages() == 0 {
		// First insert into a freshly created file: materialize the
		// metadata page and an empty leaf root, per §4.5 step 1.
		if err := initFile(h, attr); err != nil {
			return err
		}
	}

	metaBuf, err := h.ReadPage(0)
	if err != nil {
		return err
	}
	meta := DecodeMeta(metaBuf)
	if err := checkAttribute(meta.Attr, attr); err != nil {
		return err
	}

	leafNum, leaf, err := findLeafFor(h, attr, meta.Root, key)
	if err != nil {
		return err
	}

	entry := make([]byte, SizeOfKey(key)+RIDSize)
	n := EncodeKey(key, entry)
	EncodeRID(rid, entry[n:])

	if leaf.FreeSpace() >= len(entry)+SlotSize {
		pos := findInsertPos(leaf.Buf, PageSize, attr, key, false)
		insertAt(leaf.Buf, PageSize, pos, entry)
		if err := h.WritePage(leafNum, leaf.Buf); err != nil {
			return err
		}
		return nil
	}

	log.WithFields(logrus.Fields{"leaf": leafNum}).Debug("ix: leaf split triggered")
	pivot, rightNum, err := splitLeaf(h, attr, leafNum, leaf, key, rid)
	if err != nil {
		return err
	}
	return cascade(h, &meta, attr, leafNum, pivot, rightNum, uint32(leaf.Header().Parent), log)
}

// initFile appends page 0 (metadata, root = 1) and page 1 (an empty leaf
// root) to a zero-page file.
func initFile(h *FileHandle, attr Attribute) error {
	meta := Meta{Root: 1, Attr: attr}
	if _, err := h.AppendPage(EncodeMeta(meta)); err != nil {
		return err
	}
	root := NewPage()
	rh := root.Header()
	rh.Leaf = true
	rh.Parent = 0
	rh.Next = NoPage
	root.SetHeader(rh)
	if _, err := h.AppendPage(root.Buf); err != nil {
		return err
	}
	return nil
}

// findInsertPos returns the smallest slot index whose key is strictly
// greater than key, or N if none — the position a new entry is inserted
// before, per §4.5.1. skipSlot0 is set for internal nodes, whose slot 0
// holds a bare child pointer with no key to compare.
func findInsertPos(buf []byte, cap int, attr Attribute, key Key, skipSlot0 bool) int {
	encKey := make([]byte, SizeOfKey(key))
	EncodeKey(key, encKey)

	tail := cap - HeaderSize
	h := decodeHeaderAt(buf, tail)
	n := int(h.N)
	start := 0
	if skipSlot0 {
		start = 1
	}
	for i := start; i < n; i++ {
		s := decodeSlotAt(buf, tail-(i+1)*SlotSize)
		entry := buf[s.Offset : s.Offset+s.Length]
		if compareEncoded(attr.Type, entry, encKey) > 0 {
			return i
		}
	}
	return n
}

// insertAt performs the in-page ordered insert of §4.5.1 against a buffer
// of the given capacity (PageSize for a real page, scratchSize for the
// split scratch buffer): shift payload and slot directory to open a gap at
// slot index i, write entryBytes there, and bump N/FS in the header.
func insertAt(buf []byte, cap int, i int, entryBytes []byte) {
	tail := cap - HeaderSize
	h := decodeHeaderAt(buf, tail)
	n := int(h.N)

	var offset int
	if i == n {
		offset = int(h.FS)
	} else {
		offset = int(decodeSlotAt(buf, tail-(i+1)*SlotSize).Offset)
	}

	elen := len(entryBytes)
	shiftLen := int(h.FS) - offset
	if shiftLen > 0 {
		copy(buf[offset+elen:offset+elen+shiftLen], buf[offset:offset+shiftLen])
	}
	copy(buf[offset:offset+elen], entryBytes)

	for j := n - 1; j >= i; j-- {
		s := decodeSlotAt(buf, tail-(j+1)*SlotSize)
		s.Offset += uint16(elen)
		encodeSlotAt(buf, tail-(j+2)*SlotSize, s)
	}
	encodeSlotAt(buf, tail-(i+1)*SlotSize, Slot{Offset: uint16(offset), Length: uint16(elen)})

	h.N = uint16(n + 1)
	h.FS = uint16(int(h.FS) + elen)
	encodeHeaderAt(buf, tail, h)
}

// buildScratch copies page's payload, slot directory, and header into a
// fresh 2·PAGE_SIZE scratch buffer at the same relative layout, just
// anchored to scratchSize instead of PageSize.
func buildScratch(page *Page) []byte {
	scratch := make([]byte, scratchSize)
	h := page.Header()
	copy(scratch[0:h.FS], page.Buf[0:h.FS])
	tail := scratchHeaderTail()
	for i := 0; i < int(h.N); i++ {
		encodeSlotAt(scratch, tail-(i+1)*SlotSize, page.Slot(i))
	}
	encodeHeaderAt(scratch, tail, h)
	return scratch
}

// splitLeaf implements §4.5.2: insert the overflowing entry into a scratch
// copy, find the offset-median pivot, and rewrite the original page as the
// left half while appending the right half as a new page. The pivot key is
// retained in the right half, per the leaf variant.
func splitLeaf(h *FileHandle, attr Attribute, leafNum uint32, leaf *Page, key Key, rid RID) (Key, uint32, error) {
	scratch := buildScratch(leaf)
	tail := scratchHeaderTail()

	entry := make([]byte, SizeOfKey(key)+RIDSize)
	n := EncodeKey(key, entry)
	EncodeRID(rid, entry[n:])
	pos := findInsertPos(scratch, scratchSize, attr, key, false)
	insertAt(scratch, scratchSize, pos, entry)

	scratchH := decodeHeaderAt(scratch, tail)
	pivotIdx := pivotIndex(scratch, tail, int(scratchH.N))
	pivotSlot := decodeSlotAt(scratch, tail-(pivotIdx+1)*SlotSize)
	// One decode per split, not per entry: the caller needs the pivot as a
	// Key to encode into the parent during cascade, so there's no encoded
	// form left to compare against here — this isn't the per-entry
	// comparison loop the allocation-discipline note targets.
	pivotKey, _ := DecodeKey(attr.Type, scratch[pivotSlot.Offset:pivotSlot.Offset+pivotSlot.Length])

	origH := leaf.Header()
	pivotOffset := int(pivotSlot.Offset)

	leftBuf := make([]byte, PageSize)
	copy(leftBuf[0:pivotOffset], scratch[0:pivotOffset])
	for i := 0; i < pivotIdx; i++ {
		encodeSlotAt(leftBuf, PageSize-HeaderSize-(i+1)*SlotSize, decodeSlotAt(scratch, tail-(i+1)*SlotSize))
	}

	rightFS := int(scratchH.FS) - pivotOffset
	rightN := int(scratchH.N) - pivotIdx
	rightBuf := make([]byte, PageSize)
	copy(rightBuf[0:rightFS], scratch[pivotOffset:pivotOffset+rightFS])
	for i := 0; i < rightN; i++ {
		s := decodeSlotAt(scratch, tail-(pivotIdx+i+1)*SlotSize)
		s.Offset -= uint16(pivotOffset)
		encodeSlotAt(rightBuf, PageSize-HeaderSize-(i+1)*SlotSize, s)
	}
	encodeHeaderAt(rightBuf, PageSize-HeaderSize, Header{
		FS: uint16(rightFS), N: uint16(rightN), Leaf: true, Next: origH.Next, Parent: origH.Parent,
	})

	rightNum, err := h.AppendPage(rightBuf)
	if err != nil {
		return Key{}, 0, err
	}

	encodeHeaderAt(leftBuf, PageSize-HeaderSize, Header{
		FS: uint16(pivotOffset), N: uint16(pivotIdx), Leaf: true, Next: int32(rightNum), Parent: origH.Parent,
	})
	if err := h.WritePage(leafNum, leftBuf); err != nil {
		return Key{}, 0, err
	}

	return pivotKey, rightNum, nil
}

// splitInternal implements §4.5.4: same scratch-and-pivot machinery as the
// leaf variant, except the right half's slot 0 becomes a bare child
// pointer taken from the pivot entry, and the pivot's key is not copied to
// the right half.
func splitInternal(h *FileHandle, attr Attribute, pageNum uint32, page *Page, pivot Key, rightChild uint32) (Key, uint32, error) {
	scratch := buildScratch(page)
	tail := scratchHeaderTail()

	entry := make([]byte, SizeOfKey(pivot)+4)
	n := EncodeKey(pivot, entry)
	binary.LittleEndian.PutUint32(entry[n:], rightChild)
	pos := findInsertPos(scratch, scratchSize, attr, pivot, true)
	insertAt(scratch, scratchSize, pos, entry)

	scratchH := decodeHeaderAt(scratch, tail)
	pivotIdx := pivotIndex(scratch, tail, int(scratchH.N))
	if pivotIdx == 0 {
		pivotIdx = 1 // slot 0 is a bare P0, never a valid split pivot
	}
	pivotSlot := decodeSlotAt(scratch, tail-(pivotIdx+1)*SlotSize)
	pivotEntry := scratch[pivotSlot.Offset : pivotSlot.Offset+pivotSlot.Length]
	pivotKeyLen := sizeOfEncoded(attr.Type, pivotEntry)
	pivotEncoded := pivotEntry[:pivotKeyLen]
	// One decode per split, not per entry: newPivotKey is returned to the
	// caller as a Key for re-encoding into the grandparent during cascade.
	newPivotKey, _ := DecodeKey(attr.Type, pivotEncoded)
	pivotChildPtr := binary.LittleEndian.Uint32(pivotEntry[pivotKeyLen:])

	origH := page.Header()

	leftBuf := make([]byte, PageSize)
	copy(leftBuf[0:pivotSlot.Offset], scratch[0:pivotSlot.Offset])
	for i := 0; i < pivotIdx; i++ {
		encodeSlotAt(leftBuf, PageSize-HeaderSize-(i+1)*SlotSize, decodeSlotAt(scratch, tail-(i+1)*SlotSize))
	}
	encodeHeaderAt(leftBuf, PageSize-HeaderSize, Header{
		FS: pivotSlot.Offset, N: uint16(pivotIdx), Leaf: false, Next: NoPage, Parent: origH.Parent,
	})

	afterPivot := int(pivotSlot.Offset) + int(pivotSlot.Length)
	tailLen := int(scratchH.FS) - afterPivot
	rightBuf := make([]byte, PageSize)
	binary.LittleEndian.PutUint32(rightBuf[0:4], pivotChildPtr)
	copy(rightBuf[4:4+tailLen], scratch[afterPivot:afterPivot+tailLen])
	encodeSlotAt(rightBuf, PageSize-HeaderSize-SlotSize, Slot{Offset: 0, Length: 4})
	rightN := int(scratchH.N) - pivotIdx
	for i := pivotIdx + 1; i < int(scratchH.N); i++ {
		s := decodeSlotAt(scratch, tail-(i+1)*SlotSize)
		idx := i - pivotIdx
		newOffset := int(s.Offset) - afterPivot + 4
		encodeSlotAt(rightBuf, PageSize-HeaderSize-(idx+1)*SlotSize, Slot{Offset: uint16(newOffset), Length: s.Length})
	}
	encodeHeaderAt(rightBuf, PageSize-HeaderSize, Header{
		FS: uint16(4 + tailLen), N: uint16(rightN), Leaf: false, Next: NoPage, Parent: origH.Parent,
	})

	rightNum, err := h.AppendPage(rightBuf)
	if err != nil {
		return Key{}, 0, err
	}
	if err := h.WritePage(pageNum, leftBuf); err != nil {
		return Key{}, 0, err
	}

	// The cascading child's parent may now live in either half. Entries are
	// ascending and newPivotKey is the split threshold, so the child belongs
	// to the right half when pivot >= newPivotKey — matching ix.cc's
	// keyCompare(newPivot, pivot) <= 0 check (same direction, operands
	// swapped), not the other way around. Compared on encoded bytes (entry
	// already holds pivot's encoding from above) rather than decoding twice.
	newParent := pageNum
	if compareEncoded(attr.Type, entry[:n], pivotEncoded) >= 0 {
		newParent = rightNum
	}
	if err := setParent(h, rightChild, newParent); err != nil {
		return Key{}, 0, err
	}

	// Every child now listed in the right half (its P0 and each entry's
	// trailing child pointer) moved out of pageNum and is re-parented.
	rightPage := WrapPage(rightBuf)
	for i := 0; i < rightN; i++ {
		e := rightPage.Entry(i)
		if err := setParent(h, binary.LittleEndian.Uint32(e[len(e)-4:]), rightNum); err != nil {
			return Key{}, 0, err
		}
	}

	return newPivotKey, rightNum, nil
}

// pivotIndex scans slots in order and returns the first whose payload
// offset is ≥ PAGE_SIZE/2 — the offset-median pivot selection of §4.5.2.
func pivotIndex(scratch []byte, tail int, n int) int {
	for i := 0; i < n; i++ {
		s := decodeSlotAt(scratch, tail-(i+1)*SlotSize)
		if int(s.Offset) >= PageSize/2 {
			return i
		}
	}
	return n - 1
}

// setParent updates a node's stored Parent field and writes it back.
func setParent(h *FileHandle, pageNum uint32, parent uint32) error {
	buf, err := h.ReadPage(pageNum)
	if err != nil {
		return err
	}
	p := WrapPage(buf)
	hdr := p.Header()
	hdr.Parent = int32(parent)
	p.SetHeader(hdr)
	return h.WritePage(pageNum, buf)
}

// cascade implements §4.5.3: insert (pivot, rightChild) into parent,
// splitting and recursing toward the root as needed, and growing a new
// root when the split reaches the top.
func cascade(h *FileHandle, meta *Meta, attr Attribute, leftChild uint32, pivot Key, rightChild uint32, parent uint32, log logrus.FieldLogger) error {
	if parent == 0 {
		log.Debug("ix: root growth")
		root := NewPage()
		p0 := make([]byte, 4)
		binary.LittleEndian.PutUint32(p0, leftChild)
		insertAt(root.Buf, PageSize, 0, p0)

		entry := make([]byte, SizeOfKey(pivot)+4)
		n := EncodeKey(pivot, entry)
		binary.LittleEndian.PutUint32(entry[n:], rightChild)
		insertAt(root.Buf, PageSize, 1, entry)

		rh := root.Header()
		rh.Leaf = false
		rh.Parent = 0
		rh.Next = NoPage
		root.SetHeader(rh)

		newRootNum, err := h.AppendPage(root.Buf)
		if err != nil {
			return err
		}
		meta.Root = newRootNum
		if err := h.WritePage(0, EncodeMeta(*meta)); err != nil {
			return err
		}
		if err := setParent(h, leftChild, newRootNum); err != nil {
			return err
		}
		return setParent(h, rightChild, newRootNum)
	}

	buf, err := h.ReadPage(parent)
	if err != nil {
		return err
	}
	page := WrapPage(buf)

	entry := make([]byte, SizeOfKey(pivot)+4)
	n := EncodeKey(pivot, entry)
	binary.LittleEndian.PutUint32(entry[n:], rightChild)

	if page.FreeSpace() >= len(entry)+SlotSize {
		pos := findInsertPos(page.Buf, PageSize, attr, pivot, true)
		insertAt(page.Buf, PageSize, pos, entry)
		if err := h.WritePage(parent, page.Buf); err != nil {
			return err
		}
		if err := setParent(h, leftChild, parent); err != nil {
			return err
		}
		return setParent(h, rightChild, parent)
	}

	log.WithFields(logrus.Fields{"node": parent}).Debug("ix: internal split triggered")
	newPivot, newSibling, err := splitInternal(h, attr, parent, page, pivot, rightChild)
	if err != nil {
		return err
	}
	grandparent := uint32(page.Header().Parent)
	return cascade(h, meta, attr, parent, newPivot, newSibling, grandparent, log)
}
