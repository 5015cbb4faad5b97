package storage

import "github.com/pkg/errors"

// Error taxonomy. Each value is a distinct sentinel so callers can
// errors.Is(err, storage.ErrXxx) through a pkg/errors-wrapped chain that
// carries page numbers and syscall detail in the message.
var (
	ErrFileExists   = errors.New("ix: file already exists")
	ErrFileNotExist = errors.New("ix: file does not exist")
	ErrOpenFailed   = errors.New("ix: open failed")
	ErrRemoveFailed = errors.New("ix: remove failed")
	ErrHandleInUse  = errors.New("ix: handle already in use")
	ErrFileNotOpen  = errors.New("ix: file not open")
	ErrAttrMismatch = errors.New("ix: attribute mismatch")
	ErrAttrNotExist = errors.New("ix: entry does not exist")
	ErrPageNotExist = errors.New("ix: page does not exist")
	ErrSeekFailed   = errors.New("ix: seek failed")
	ErrReadFailed   = errors.New("ix: read failed")
	ErrWriteFailed  = errors.New("ix: write failed")
)
