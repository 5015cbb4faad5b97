package storage

import "encoding/binary"

// findLeafFor descends from root to the leaf where key belongs, per
// SPEC_FULL.md §4.4. Internal-node slot 0 holds a bare child pointer P0;
// slots 1..N-1 hold (key, childPointer). The comparison is strictly ">":
// equal keys descend into the subtree of the matching slot, not the one
// before it.
func findLeafFor(h *FileHandle, attr Attribute, root uint32, key Key) (uint32, *Page, error) {
	encKey := make([]byte, SizeOfKey(key))
	EncodeKey(key, encKey)

	pageNum := root
	for {
		buf, err := h.ReadPage(pageNum)
		if err != nil {
			return 0, nil, err
		}
		page := WrapPage(buf)
		if page.IsLeaf() {
			return pageNum, page, nil
		}

		candidate := binary.LittleEndian.Uint32(page.Entry(0))
		n := page.NumEntries()
		for i := 1; i < n; i++ {
			entry := page.Entry(i)
			consumed := sizeOfEncoded(attr.Type, entry)
			if compareEncoded(attr.Type, entry, encKey) > 0 {
				break
			}
			candidate = binary.LittleEndian.Uint32(entry[consumed : consumed+4])
		}
		pageNum = candidate
	}
}

// findLeftmostLeaf descends always taking P0, the special case of
// findLeafFor used to position a scan with no lower bound.
func findLeftmostLeaf(h *FileHandle, root uint32) (uint32, *Page, error) {
	pageNum := root
	for {
		buf, err := h.ReadPage(pageNum)
		if err != nil {
			return 0, nil, err
		}
		page := WrapPage(buf)
		if page.IsLeaf() {
			return pageNum, page, nil
		}
		pageNum = binary.LittleEndian.Uint32(page.Entry(0))
	}
}
