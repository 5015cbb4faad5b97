package storage

import (
	"encoding/binary"
	"math"
)

// Key is a tagged-variant key value: three on-disk encodings sharing one
// Go value, dispatched on Type. See SPEC_FULL.md §9 "Tagged-variant key".
type Key struct {
	Type    AttrType
	IntVal  int32
	RealVal float32
	StrVal  []byte
}

// IntKey builds an Int-typed key.
func IntKey(v int32) Key { return Key{Type: AttrInt, IntVal: v} }

// RealKey builds a Real-typed key.
func RealKey(v float32) Key { return Key{Type: AttrReal, RealVal: v} }

// VarCharKey builds a VarChar-typed key from raw bytes (no NUL terminator).
func VarCharKey(s []byte) Key { return Key{Type: AttrVarChar, StrVal: s} }

// SizeOfKey returns the number of bytes k occupies in its on-disk form.
func SizeOfKey(k Key) int {
	switch k.Type {
	case AttrInt, AttrReal:
		return 4
	case AttrVarChar:
		return 4 + len(k.StrVal)
	default:
		return 0
	}
}

// EncodeKey writes k's on-disk form into buf (which must be at least
// SizeOfKey(k) bytes) and returns the number of bytes written.
func EncodeKey(k Key, buf []byte) int {
	switch k.Type {
	case AttrInt:
		binary.LittleEndian.PutUint32(buf[0:4], uint32(k.IntVal))
		return 4
	case AttrReal:
		binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(k.RealVal))
		return 4
	case AttrVarChar:
		l := len(k.StrVal)
		binary.LittleEndian.PutUint32(buf[0:4], uint32(l))
		copy(buf[4:4+l], k.StrVal)
		return 4 + l
	default:
		return 0
	}
}

// DecodeKey reads a key of the given type starting at buf[0] and returns
// the key plus the number of bytes consumed.
func DecodeKey(t AttrType, buf []byte) (Key, int) {
	switch t {
	case AttrInt:
		return IntKey(int32(binary.LittleEndian.Uint32(buf[0:4]))), 4
	case AttrReal:
		return RealKey(math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4]))), 4
	case AttrVarChar:
		l := int(binary.LittleEndian.Uint32(buf[0:4]))
		s := make([]byte, l)
		copy(s, buf[4:4+l])
		return VarCharKey(s), 4 + l
	default:
		return Key{}, 0
	}
}

// CompareKeys returns -1/0/+1 comparing a and b, which must share a.Type.
// Int and Real use natural numeric order; VarChar uses lexicographic byte
// comparison up to the shorter length, then length.
func CompareKeys(a, b Key) int {
	switch a.Type {
	case AttrInt:
		switch {
		case a.IntVal < b.IntVal:
			return -1
		case a.IntVal > b.IntVal:
			return 1
		default:
			return 0
		}
	case AttrReal:
		switch {
		case a.RealVal < b.RealVal:
			return -1
		case a.RealVal > b.RealVal:
			return 1
		default:
			return 0
		}
	case AttrVarChar:
		n := len(a.StrVal)
		if len(b.StrVal) < n {
			n = len(b.StrVal)
		}
		for i := 0; i < n; i++ {
			if a.StrVal[i] != b.StrVal[i] {
				if a.StrVal[i] < b.StrVal[i] {
					return -1
				}
				return 1
			}
		}
		switch {
		case len(a.StrVal) < len(b.StrVal):
			return -1
		case len(a.StrVal) > len(b.StrVal):
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

// compareEncoded compares two keys of type t in their on-disk encodings
// directly, without decoding into a Key — the hot path used during search
// and insert so the tree descent does not allocate per comparison. a and b
// point at the start of an encoded key; only the key's own bytes are read,
// trailing page bytes are ignored.
func compareEncoded(t AttrType, a, b []byte) int {
	switch t {
	case AttrInt:
		av := int32(binary.LittleEndian.Uint32(a[0:4]))
		bv := int32(binary.LittleEndian.Uint32(b[0:4]))
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case AttrReal:
		av := math.Float32frombits(binary.LittleEndian.Uint32(a[0:4]))
		bv := math.Float32frombits(binary.LittleEndian.Uint32(b[0:4]))
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case AttrVarChar:
		al := int(binary.LittleEndian.Uint32(a[0:4]))
		bl := int(binary.LittleEndian.Uint32(b[0:4]))
		as := a[4 : 4+al]
		bs := b[4 : 4+bl]
		n := al
		if bl < n {
			n = bl
		}
		for i := 0; i < n; i++ {
			if as[i] != bs[i] {
				if as[i] < bs[i] {
					return -1
				}
				return 1
			}
		}
		switch {
		case al < bl:
			return -1
		case al > bl:
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

// sizeOfEncoded returns the number of bytes the key starting at buf[0]
// occupies on disk, without fully decoding it.
func sizeOfEncoded(t AttrType, buf []byte) int {
	switch t {
	case AttrInt, AttrReal:
		return 4
	case AttrVarChar:
		return 4 + int(binary.LittleEndian.Uint32(buf[0:4]))
	default:
		return 0
	}
}
