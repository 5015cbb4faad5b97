package storage

import "encoding/binary"

// RIDSize is the on-disk size of a record identifier: two 32-bit integers.
const RIDSize = 8

// RID identifies a record by the page it lives on and its slot within that
// page. It is opaque to the engine beyond equality and the tombstone value.
type RID struct {
	PageNum uint32
	SlotNum uint32
}

// TombstoneRID is written over a leaf entry's RID on logical delete.
// Both fields are 0xFFFFFFFF, i.e. signed -1 per spec.
var TombstoneRID = RID{PageNum: 0xFFFFFFFF, SlotNum: 0xFFFFFFFF}

// IsTombstone reports whether r is the deleted-entry sentinel.
func (r RID) IsTombstone() bool {
	return r == TombstoneRID
}

// EncodeRID writes r's little-endian form into buf, which must have at
// least RIDSize bytes available.
func EncodeRID(r RID, buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], r.PageNum)
	binary.LittleEndian.PutUint32(buf[4:8], r.SlotNum)
}

// DecodeRID reads a RID from the first RIDSize bytes of buf.
func DecodeRID(buf []byte) RID {
	return RID{
		PageNum: binary.LittleEndian.Uint32(buf[0:4]),
		SlotNum: binary.LittleEndian.Uint32(buf[4:8]),
	}
}
