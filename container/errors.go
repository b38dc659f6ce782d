package container

import (
	"errors"
	"fmt"
)

// Scan errors.
var (
	ErrEmptyInput          = errors.New("container: empty input")
	ErrTruncatedHeader     = errors.New("container: truncated header")
	ErrNoValidPointerTable = errors.New("container: no valid pointer table")
	ErrRecordOutOfBounds   = errors.New("container: record out of bounds")
	ErrInvalidLayout       = errors.New("container: invalid layout")
)

// Edit errors.
var (
	ErrIndexOutOfRange   = errors.New("container: record index out of range")
	ErrProtectedRecord   = errors.New("container: record is protected")
	ErrLengthOverflow    = errors.New("container: content exceeds record length ceiling")
	ErrPointerOutOfRange = errors.New("container: pointer exceeds table width")
	ErrContentMismatch   = errors.New("container: content kind does not match record kind")
	ErrEncoding          = errors.New("container: text encoding failed")
)

// ScanError reports why Load rejected its input.
type ScanError struct {
	Err    error  // One of the scan sentinels above
	Offset int    // Byte offset implicated, -1 when none
	Entry  int    // Table entry or record number implicated, -1 when none
	Msg    string // Detail
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	msg := e.Err.Error()
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	switch {
	case e.Offset >= 0 && e.Entry >= 0:
		return fmt.Sprintf("%s (entry %d at offset 0x%X)", msg, e.Entry, e.Offset)
	case e.Offset >= 0:
		return fmt.Sprintf("%s (offset 0x%X)", msg, e.Offset)
	case e.Entry >= 0:
		return fmt.Sprintf("%s (entry %d)", msg, e.Entry)
	}
	return msg
}

// Unwrap returns the sentinel for errors.Is.
func (e *ScanError) Unwrap() error { return e.Err }

func scanErr(err error, offset, entry int, format string, args ...any) *ScanError {
	return &ScanError{Err: err, Offset: offset, Entry: entry, Msg: fmt.Sprintf(format, args...)}
}

// EditError reports a rejected or rolled back edit. The container is
// unchanged whenever an EditError is returned.
type EditError struct {
	Op     string // "get", "set", "repoint"
	Index  int    // Record index
	Offset int    // Byte offset implicated, -1 when none
	Msg    string
	Err    error
}

// Error implements the error interface.
func (e *EditError) Error() string {
	msg := fmt.Sprintf("%s record %d", e.Op, e.Index)
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" at offset 0x%X", e.Offset)
	}
	msg += ": " + e.Err.Error()
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is and errors.As.
func (e *EditError) Unwrap() error { return e.Err }
