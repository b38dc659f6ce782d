package container

import (
	"bytes"
	"fmt"
	"strings"
)

// Edit describes the outcome of SetContent.
type Edit struct {
	Index     int
	Offset    int // payload start before the edit
	OldLength int
	NewLength int
	Delta     int64 // change in container length
	Truncated bool  // content was cut to the record ceiling
}

// SetContent replaces the payload of record i and repoints everything after
// it. On error the container is unchanged.
func (c *Container) SetContent(i int, content Content) (Edit, error) {
	if i < 0 || i >= len(c.records) {
		return Edit{}, &EditError{Op: "set", Index: i, Offset: -1, Err: ErrIndexOutOfRange,
			Msg: fmt.Sprintf("container has %d records", len(c.records))}
	}
	rec := c.records[i]
	ed := Edit{Index: i, Offset: rec.Start, OldLength: rec.Length}

	if rec.Kind == KindProtected {
		return ed, &EditError{Op: "set", Index: i, Offset: rec.Start, Err: ErrProtectedRecord}
	}

	payload, truncated, err := c.encode(rec, content)
	if err != nil {
		return ed, err
	}
	ed.NewLength = len(payload)
	ed.Delta = int64(len(payload) - rec.Length)
	ed.Truncated = truncated

	if bytes.Equal(payload, c.raw[rec.Start:rec.End()]) {
		return ed, nil
	}

	if err := c.apply(i, payload); err != nil {
		return ed, err
	}
	if truncated {
		c.log.Warn("content truncated", "index", i, "offset", rec.Start, "length", len(payload))
	}
	return ed, nil
}

// SetText is SetContent with text content.
func (c *Container) SetText(i int, s string) (Edit, error) {
	return c.SetContent(i, Text(s))
}

// encode turns content into payload bytes and applies the overflow policy.
func (c *Container) encode(rec Record, content Content) ([]byte, bool, error) {
	fail := func(err error, format string, args ...any) ([]byte, bool, error) {
		return nil, false, &EditError{Op: "set", Index: rec.Index, Offset: rec.Start, Err: err,
			Msg: fmt.Sprintf(format, args...)}
	}

	var payload []byte
	if content.IsText() {
		if rec.Kind != KindText {
			return fail(ErrContentMismatch, "%s record takes byte content", rec.Kind)
		}
		b, err := c.codec.Encode(content.text)
		if err != nil {
			return fail(ErrEncoding, "%v", err)
		}
		payload = b
	} else {
		payload = content.Data()
	}

	limit := c.layout.ceiling(rec.PrefixWidth)
	if limit < 0 || len(payload) <= limit {
		return payload, false, nil
	}
	if c.layout.Overflow != OverflowTruncate {
		return fail(ErrLengthOverflow, "%d bytes, ceiling is %d", len(payload), limit)
	}
	if content.IsText() {
		return c.truncateText(payload, limit), true, nil
	}
	return payload[:limit], true, nil
}

// truncateText cuts encoded text to at most limit bytes without splitting a
// character: the cut moves back until the kept bytes decode to a prefix of
// the full text.
func (c *Container) truncateText(b []byte, limit int) []byte {
	full, err := c.codec.Decode(b)
	if err != nil {
		return b[:limit]
	}
	for cut := limit; cut > 0; cut-- {
		s, err := c.codec.Decode(b[:cut])
		if err == nil && strings.HasPrefix(full, s) {
			return b[:cut]
		}
	}
	return b[:0]
}
