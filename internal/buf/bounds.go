package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// CheckTableBounds validates that count entries of width bytes fit in a buffer
// of bufLen bytes starting at offset. Returns the end offset of the table.
//
//	end, err := buf.CheckTableBounds(len(data), layout.PointerTableOffset, n, layout.PointerWidth)
//	if err != nil {
//	    return fmt.Errorf("pointer table: %w", err)
//	}
func CheckTableBounds(bufLen, offset, count, width int) (int, error) {
	if offset < 0 {
		return 0, fmt.Errorf("negative offset: %d", offset)
	}
	if count < 0 {
		return 0, fmt.Errorf("negative count: %d", count)
	}
	if width <= 0 {
		return 0, fmt.Errorf("invalid entry width: %d", width)
	}
	if count > math.MaxInt/width {
		return 0, fmt.Errorf("overflow: count=%d * width=%d", count, width)
	}
	end, ok := AddOverflowSafe(offset, count*width)
	if !ok {
		return 0, fmt.Errorf("overflow: offset=%d + size=%d", offset, count*width)
	}
	if end > bufLen {
		return 0, fmt.Errorf("bounds: end=%d > len=%d", end, bufLen)
	}
	return end, nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n int) bool {
	_, ok := Slice(b, off, n)
	return ok
}
