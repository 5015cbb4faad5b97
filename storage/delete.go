package storage

// DeleteEntry implements the Delete Engine (§4.6): locate the leaf entry
// matching (key, rid) and overwrite its RID with the tombstone sentinel.
// No physical reclamation, no rebalancing — tombstones remain indexed and
// occupy space until (if ever) a future compaction pass reclaims them;
// this module does not attempt one, per SPEC_FULL.md §9.
func DeleteEntry(h *FileHandle, attr Attribute, key Key, rid RID) error {
	if h.NumberOfPages() == 0 {
		return ErrAttrNotExist
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

	n := leaf.NumEntries()
	for i := 0; i < n; i++ {
		entry := leaf.Entry(i)
		entryKey, consumed := DecodeKey(attr.Type, entry)
		if CompareKeys(entryKey, key) != 0 {
			continue
		}
		entryRID := DecodeRID(entry[consumed:])
		if entryRID.IsTombstone() || entryRID != rid {
			continue
		}
		EncodeRID(TombstoneRID, entry[consumed:])
		return h.WritePage(leafNum, leaf.Buf)
	}

	return ErrAttrNotExist
}
