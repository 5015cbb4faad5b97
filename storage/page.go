package storage

import "encoding/binary"

// Page geometry constants. PAGE_SIZE is a deployment constant per
// SPEC_FULL.md §6; changing it is incompatible with existing files.
const (
	PageSize = 4096

	// HeaderSize is the node header's footprint at the tail of every page:
	// FS(2) + N(2) + leaf(1) + next(4) + parent(4).
	HeaderSize = 13

	// SlotSize is one slot-directory entry: offset(2) + length(2).
	SlotSize = 4
)

// NoPage is the sentinel stored in the Next header field meaning "no such
// page" — the rightmost leaf's Next (internal nodes also carry it there).
// The root's Parent is 0, not NoPage.
const NoPage int32 = -1

// Header is the node header occupying the last HeaderSize bytes of a page.
type Header struct {
	FS     uint16 // byte offset where free payload space begins
	N      uint16 // number of entries
	Leaf   bool
	Next   int32 // next leaf in key order, or NoPage
	Parent int32 // parent page number, or 0 ("root")
}

// Slot is one slot-directory entry, pointing into the payload region.
type Slot struct {
	Offset uint16
	Length uint16
}

// Page is one PAGE_SIZE-byte tree-node buffer: payload grows up from byte
// 0, the slot directory grows down from the header, and the header
// occupies the final HeaderSize bytes.
type Page struct {
	Buf []byte // always len(Buf) == PageSize
}

// NewPage allocates a zeroed page with an empty header (N=0, FS=0, Next
// and Parent set to NoPage/0 respectively). Callers set Leaf explicitly.
func NewPage() *Page {
	p := &Page{Buf: make([]byte, PageSize)}
	p.SetHeader(Header{FS: 0, N: 0, Leaf: false, Next: NoPage, Parent: 0})
	return p
}

// WrapPage adapts an existing PAGE_SIZE-byte buffer (e.g. freshly read
// from disk) as a Page without copying.
func WrapPage(buf []byte) *Page {
	return &Page{Buf: buf}
}

func headerOffset() int { return PageSize - HeaderSize }

// decodeHeaderAt reads a Header from b's tail HeaderSize bytes, starting at
// tailOffset. Factored out so the 2·PAGE_SIZE split scratch buffer (see
// insert.go) can reuse the exact same wire format at a different offset.
func decodeHeaderAt(b []byte, tailOffset int) Header {
	t := b[tailOffset:]
	return Header{
		FS:     binary.LittleEndian.Uint16(t[0:2]),
		N:      binary.LittleEndian.Uint16(t[2:4]),
		Leaf:   t[4] == 1,
		Next:   int32(binary.LittleEndian.Uint32(t[5:9])),
		Parent: int32(binary.LittleEndian.Uint32(t[9:13])),
	}
}

// encodeHeaderAt writes h into b's tail HeaderSize bytes, starting at
// tailOffset.
func encodeHeaderAt(b []byte, tailOffset int, h Header) {
	t := b[tailOffset:]
	binary.LittleEndian.PutUint16(t[0:2], h.FS)
	binary.LittleEndian.PutUint16(t[2:4], h.N)
	if h.Leaf {
		t[4] = 1
	} else {
		t[4] = 0
	}
	binary.LittleEndian.PutUint32(t[5:9], uint32(h.Next))
	binary.LittleEndian.PutUint32(t[9:13], uint32(h.Parent))
}

// decodeSlotAt reads a Slot at byte offset o.
func decodeSlotAt(b []byte, o int) Slot {
	return Slot{
		Offset: binary.LittleEndian.Uint16(b[o : o+2]),
		Length: binary.LittleEndian.Uint16(b[o+2 : o+4]),
	}
}

// encodeSlotAt writes a Slot at byte offset o.
func encodeSlotAt(b []byte, o int, s Slot) {
	binary.LittleEndian.PutUint16(b[o:o+2], s.Offset)
	binary.LittleEndian.PutUint16(b[o+2:o+4], s.Length)
}

// Header decodes the node header from the page's tail.
func (p *Page) Header() Header { return decodeHeaderAt(p.Buf, headerOffset()) }

// SetHeader encodes h into the page's tail.
func (p *Page) SetHeader(h Header) { encodeHeaderAt(p.Buf, headerOffset(), h) }

// slotOffset returns the byte offset of slot i's (offset,length) pair.
func slotOffset(i int) int {
	return headerOffset() - (i+1)*SlotSize
}

// Slot reads the i'th slot-directory entry.
func (p *Page) Slot(i int) Slot { return decodeSlotAt(p.Buf, slotOffset(i)) }

// SetSlot writes slot i's (offset,length) pair.
func (p *Page) SetSlot(i int, s Slot) { encodeSlotAt(p.Buf, slotOffset(i), s) }

// Entry returns the payload bytes for slot i.
func (p *Page) Entry(i int) []byte {
	s := p.Slot(i)
	return p.Buf[s.Offset : s.Offset+s.Length]
}

// FreeSpace returns the number of bytes available for a new entry plus
// its slot-directory entry, per invariant 1: FS + N·SlotSize + HeaderSize ≤ PageSize.
func (p *Page) FreeSpace() int {
	h := p.Header()
	return PageSize - int(h.FS) - int(h.N)*SlotSize - HeaderSize
}

// NumEntries is a convenience accessor for Header().N as an int.
func (p *Page) NumEntries() int { return int(p.Header().N) }

// IsLeaf is a convenience accessor for Header().Leaf.
func (p *Page) IsLeaf() bool { return p.Header().Leaf }
