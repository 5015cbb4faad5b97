package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// treeNode is the pre-order JSON shape printBtree renders, per
// SPEC_FULL.md's SUPPLEMENTED FEATURES: {"keys":[...],"children":[...]}.
// original_source/codebase/ix/ix.cc's DFSPrint only comments this shape in;
// it is fully implemented here.
type treeNode struct {
	Keys     []interface{} `json:"keys"`
	Children []*treeNode   `json:"children,omitempty"`
}

func keyValue(k Key) interface{} {
	switch k.Type {
	case AttrInt:
		return k.IntVal
	case AttrReal:
		return k.RealVal
	case AttrVarChar:
		return string(k.StrVal)
	default:
		return nil
	}
}

func buildTree(h *FileHandle, attr Attribute, pageNum uint32) (*treeNode, error) {
	buf, err := h.ReadPage(pageNum)
	if err != nil {
		return nil, err
	}
	page := WrapPage(buf)
	n := page.NumEntries()

	if page.IsLeaf() {
		keys := make([]interface{}, 0, n)
		for i := 0; i < n; i++ {
			entry := page.Entry(i)
			key, consumed := DecodeKey(attr.Type, entry)
			if DecodeRID(entry[consumed:]).IsTombstone() {
				continue
			}
			keys = append(keys, keyValue(key))
		}
		return &treeNode{Keys: keys}, nil
	}

	p0 := binary.LittleEndian.Uint32(page.Entry(0))
	firstChild, err := buildTree(h, attr, p0)
	if err != nil {
		return nil, err
	}
	keys := make([]interface{}, 0, n-1)
	children := make([]*treeNode, 0, n)
	children = append(children, firstChild)
	for i := 1; i < n; i++ {
		entry := page.Entry(i)
		key, consumed := DecodeKey(attr.Type, entry)
		keys = append(keys, keyValue(key))
		childPtr := binary.LittleEndian.Uint32(entry[consumed:])
		child, err := buildTree(h, attr, childPtr)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return &treeNode{Keys: keys, Children: children}, nil
}

// PrintBtree renders the tree pre-order as JSON. Per §7, an attribute
// mismatch is downgraded to a printed error rather than propagated.
func PrintBtree(h *FileHandle, attr Attribute, w io.Writer) error {
	if h.NumberOfPages() == 0 {
		_, err := io.WriteString(w, `{"keys":[],"children":[]}`+"\n")
		return err
	}

	metaBuf, err := h.ReadPage(0)
	if err != nil {
		return err
	}
	meta := DecodeMeta(metaBuf)
	if err := checkAttribute(meta.Attr, attr); err != nil {
		_, werr := fmt.Fprintf(w, "{\"error\":%q}\n", err.Error())
		return werr
	}

	root, err := buildTree(h, attr, meta.Root)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	return enc.Encode(root)
}
