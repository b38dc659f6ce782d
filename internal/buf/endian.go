// Package buf contains bounds helpers, width-parameterized integer codecs and
// the overlap-aware byte mover used when records shift inside a buffer.
package buf

import (
	"encoding/binary"
	"fmt"

	"github.com/joshuapare/reskit/internal/format"
)

// MaxUint returns the largest value representable in width bytes.
// Width must be 1, 2 or 4.
func MaxUint(width int) uint64 {
	switch width {
	case 1:
		return 0xFF
	case 2:
		return 0xFFFF
	case 4:
		return 0xFFFFFFFF
	default:
		return 0
	}
}

// Uint reads an unsigned integer of the given width at off. ok is false when
// the read would run past the end of b or the width is unsupported.
func Uint(b []byte, off, width int, order binary.ByteOrder) (uint64, bool) {
	s, ok := Slice(b, off, width)
	if !ok {
		return 0, false
	}
	switch width {
	case 1:
		return uint64(s[0]), true
	case 2:
		return uint64(order.Uint16(s)), true
	case 4:
		return uint64(order.Uint32(s)), true
	default:
		return 0, false
	}
}

// PutUint writes v as an unsigned integer of the given width at off.
// It fails when v does not fit the width or the write is out of bounds.
func PutUint(b []byte, off, width int, order binary.ByteOrder, v uint64) error {
	limit := MaxUint(width)
	if limit == 0 {
		return fmt.Errorf("%w: %d", format.ErrUnsupportedWidth, width)
	}
	if v > limit {
		return fmt.Errorf("value %d exceeds %d-byte width (max %d)", v, width, limit)
	}
	s, ok := Slice(b, off, width)
	if !ok {
		return fmt.Errorf("bounds: write of %d bytes at %d exceeds len=%d", width, off, len(b))
	}
	switch width {
	case 1:
		s[0] = byte(v)
	case 2:
		order.PutUint16(s, uint16(v))
	case 4:
		order.PutUint32(s, uint32(v))
	}
	return nil
}
