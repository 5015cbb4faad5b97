package storage

import "testing"

func TestPageHeaderRoundTrip(t *testing.T) {
	p := NewPage()
	p.SetHeader(Header{FS: 100, N: 3, Leaf: true, Next: 7, Parent: 2})

	h := p.Header()
	if h.FS != 100 || h.N != 3 || !h.Leaf || h.Next != 7 || h.Parent != 2 {
		t.Errorf("Header() = %+v, want FS=100 N=3 Leaf=true Next=7 Parent=2", h)
	}
}

func TestPageSlotRoundTrip(t *testing.T) {
	p := NewPage()
	p.SetSlot(0, Slot{Offset: 10, Length: 20})
	p.SetSlot(1, Slot{Offset: 30, Length: 5})

	if s := p.Slot(0); s.Offset != 10 || s.Length != 20 {
		t.Errorf("Slot(0) = %+v", s)
	}
	if s := p.Slot(1); s.Offset != 30 || s.Length != 5 {
		t.Errorf("Slot(1) = %+v", s)
	}
}

func TestPageEntry(t *testing.T) {
	p := NewPage()
	copy(p.Buf[10:20], []byte("0123456789"))
	p.SetSlot(0, Slot{Offset: 10, Length: 10})

	if got := string(p.Entry(0)); got != "0123456789" {
		t.Errorf("Entry(0) = %q, want %q", got, "0123456789")
	}
}

func TestPageFreeSpace(t *testing.T) {
	p := NewPage()
	p.SetHeader(Header{FS: 0, N: 0, Leaf: true, Next: NoPage, Parent: 0})
	if got := p.FreeSpace(); got != PageSize-HeaderSize {
		t.Errorf("FreeSpace() on empty page = %d, want %d", got, PageSize-HeaderSize)
	}

	p.SetHeader(Header{FS: 50, N: 2, Leaf: true, Next: NoPage, Parent: 0})
	want := PageSize - 50 - 2*SlotSize - HeaderSize
	if got := p.FreeSpace(); got != want {
		t.Errorf("FreeSpace() = %d, want %d", got, want)
	}
}
