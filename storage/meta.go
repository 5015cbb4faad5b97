package storage

import "encoding/binary"

// Meta is the decoded form of page 0: the root pointer and the attribute
// this index was created over.
type Meta struct {
	Root uint32
	Attr Attribute
}

// EncodeMeta renders m into a fresh PAGE_SIZE buffer per SPEC_FULL.md §3's
// metadata page layout: rootPageNum, nameLen+name, type, length.
func EncodeMeta(m Meta) []byte {
	buf := make([]byte, PageSize)
	binary.LittleEndian.PutUint32(buf[0:4], m.Root)
	nameLen := uint32(len(m.Attr.Name))
	binary.LittleEndian.PutUint32(buf[4:8], nameLen)
	off := 8
	copy(buf[off:off+int(nameLen)], m.Attr.Name)
	off += int(nameLen)
	binary.LittleEndian.PutUint32(buf[off:off+4], uint32(m.Attr.Type))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:off+4], m.Attr.Length)
	return buf
}

// DecodeMeta parses a metadata page previously written by EncodeMeta.
func DecodeMeta(buf []byte) Meta {
	root := binary.LittleEndian.Uint32(buf[0:4])
	nameLen := binary.LittleEndian.Uint32(buf[4:8])
	off := 8
	name := string(buf[off : off+int(nameLen)])
	off += int(nameLen)
	typ := AttrType(binary.LittleEndian.Uint32(buf[off : off+4]))
	off += 4
	length := binary.LittleEndian.Uint32(buf[off : off+4])
	return Meta{Root: root, Attr: Attribute{Name: name, Type: typ, Length: length}}
}

// checkAttribute enforces invariant 6 — "the attribute recorded in page 0
// matches any Attribute passed to subsequent operations; mismatch is a hard
// error" — consistently from every call site. This is the single place that
// resolves the Open Question in SPEC_FULL.md §9: unlike the original
// ix.cc's checkIXAttribute, whose insertEntry and deleteEntry callers
// disagree about the boolean's sense, every caller here treats a non-nil
// return the same way: reject the operation.
func checkAttribute(fileAttr, callerAttr Attribute) error {
	if !fileAttr.equal(callerAttr) {
		return ErrAttrMismatch
	}
	return nil
}
