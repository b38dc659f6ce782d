// Package journal records the bytes an edit is about to overwrite so a
// failed edit can put the buffer back exactly as it was.
package journal

import (
	"fmt"
	"strings"
)

// Log holds the original buffer length and the saved byte spans of one edit.
type Log struct {
	length  int
	entries []Entry
}

// Entry records a single saved span.
type Entry struct {
	Offset  int    // Offset of the span in the original buffer
	OldData []byte // Original bytes (for rollback)
	Label   string // What the span held, for diagnostics
}

// Begin starts a log for buf, remembering its current length.
func Begin(buf []byte) *Log {
	return &Log{
		length:  len(buf),
		entries: make([]Entry, 0, 8),
	}
}

// Save copies buf[off:off+n] into the log. It must be called before the
// span is modified.
func (l *Log) Save(buf []byte, off, n int, label string) error {
	if off < 0 || n < 0 || off > len(buf) || n > len(buf)-off {
		return &Error{
			Operation: "save",
			Message:   fmt.Sprintf("span 0x%X+%d outside buffer of %d bytes", off, n, len(buf)),
		}
	}
	if n == 0 {
		return nil
	}
	l.entries = append(l.entries, Entry{
		Offset:  off,
		OldData: append([]byte(nil), buf[off:off+n]...), // Deep copy
		Label:   label,
	})
	return nil
}

// Length returns the buffer length recorded by Begin.
func (l *Log) Length() int { return l.length }

// Len returns the number of saved spans.
func (l *Log) Len() int { return len(l.entries) }

// Rollback resizes buf back to the recorded length and restores every saved
// span, most recent first. The returned slice replaces buf.
func (l *Log) Rollback(buf []byte) ([]byte, error) {
	switch {
	case len(buf) > l.length:
		buf = buf[:l.length]
	case len(buf) < l.length:
		if cap(buf) >= l.length {
			buf = buf[:l.length]
		} else {
			buf = append(buf, make([]byte, l.length-len(buf))...)
		}
	}

	for i := len(l.entries) - 1; i >= 0; i-- {
		entry := l.entries[i]
		if entry.Offset+len(entry.OldData) > len(buf) {
			return buf, &Error{
				Operation: "rollback",
				Message: fmt.Sprintf("invalid span for entry %d: offset=0x%X size=%d buflen=%d",
					i, entry.Offset, len(entry.OldData), len(buf)),
			}
		}
		copy(buf[entry.Offset:], entry.OldData)
	}
	return buf, nil
}

// Export generates a human-readable summary of the saved spans.
func (l *Log) Export() string {
	if len(l.entries) == 0 {
		return "Journal: empty"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Journal: %d spans, original length %d\n", len(l.entries), l.length)
	for i, entry := range l.entries {
		show := entry.OldData
		if len(show) > 16 {
			show = show[:16]
		}
		fmt.Fprintf(&sb, "[%d] %-8s 0x%08X %6d bytes  % X", i+1, entry.Label, entry.Offset, len(entry.OldData), show)
		if len(entry.OldData) > 16 {
			sb.WriteString(" ...")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Error represents a failure while saving or restoring spans.
type Error struct {
	Operation string // "save" or "rollback"
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("journal %s failed: %s: %v", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("journal %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Cause
}
