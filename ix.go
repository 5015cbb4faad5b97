// Package ix is the public facade over the disk-resident B+-tree index
// engine: file lifecycle (create/destroy/open/close) plus the point
// insert/delete and range-scan operations of SPEC_FULL.md §6. It wraps the
// component engine in package storage the way MonoLite's engine package
// wraps its storage package.
package ix

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/wwu39/IX/internal/failpoint"
	"github.com/wwu39/IX/storage"
)

var (
	openHandlesMu sync.Mutex
	openHandles   = map[string]bool{}
)

// Index is a single open index file. It is a plain value the caller
// constructs and passes explicitly — no process-wide singleton, per
// SPEC_FULL.md §9.
type Index struct {
	path   string
	handle *storage.FileHandle
	log    logrus.FieldLogger
}

// Create creates a new, empty index file at path. The attribute the index
// is keyed on is established by the first InsertEntry call, not here — a
// freshly created file has zero pages until then.
func Create(path string) error {
	return storage.CreateFile(path)
}

// Destroy unlinks an index file.
func Destroy(path string) error {
	return storage.DestroyFile(path)
}

// Open opens an existing index file. Opening a path already tracked by an
// open *Index in this process returns storage.ErrHandleInUse.
func Open(path string) (*Index, error) {
	openHandlesMu.Lock()
	if openHandles[path] {
		openHandlesMu.Unlock()
		return nil, storage.ErrHandleInUse
	}
	openHandles[path] = true
	openHandlesMu.Unlock()

	log := logrus.WithField("index", path)
	h, err := storage.OpenFile(path, log)
	if err != nil {
		openHandlesMu.Lock()
		delete(openHandles, path)
		openHandlesMu.Unlock()
		return nil, err
	}
	log.Debug("ix: file opened")
	return &Index{path: path, handle: h, log: log}, nil
}

// Close releases the index's file handle. The caller must close every
// ScanIterator obtained from this Index first.
func (ix *Index) Close() error {
	openHandlesMu.Lock()
	delete(openHandles, ix.path)
	openHandlesMu.Unlock()
	return ix.handle.Close()
}

// InsertEntry inserts (key, rid) under attr, initializing the file's
// metadata page on the very first call.
func (ix *Index) InsertEntry(attr storage.Attribute, key storage.Key, rid storage.RID) error {
	if err := failpoint.Hit("ix.insertEntry"); err != nil {
		return err
	}
	return storage.InsertEntry(ix.handle, attr, key, rid, ix.log)
}

// DeleteEntry tombstones the leaf entry matching (key, rid) under attr.
func (ix *Index) DeleteEntry(attr storage.Attribute, key storage.Key, rid storage.RID) error {
	if err := failpoint.Hit("ix.deleteEntry"); err != nil {
		return err
	}
	return storage.DeleteEntry(ix.handle, attr, key, rid)
}

// Scan returns an iterator over [low, high] (bounds nil-able, inclusivity
// per lowIncl/highIncl) under attr.
func (ix *Index) Scan(attr storage.Attribute, low, high *storage.Key, lowIncl, highIncl bool) (*storage.ScanIterator, error) {
	return storage.NewScanIterator(ix.handle, attr, low, high, lowIncl, highIncl)
}

// PrintBtree renders the tree pre-order as JSON to w, for debugging.
func (ix *Index) PrintBtree(attr storage.Attribute, w io.Writer) error {
	return storage.PrintBtree(ix.handle, attr, w)
}

// CollectCounterValues returns the handle's cumulative page read/write/append counts.
func (ix *Index) CollectCounterValues() (reads, writes, appends uint64) {
	return ix.handle.Counters()
}
