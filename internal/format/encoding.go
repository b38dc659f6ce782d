package format

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// ByteOrder resolves a byte order name as used in layout configuration.
// Accepted names are "big"/"be" and "little"/"le", case-insensitive.
// An empty name resolves to big-endian, the order most handset packs use.
func ByteOrder(name string) (binary.ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "big", "be", "big-endian", "bigendian":
		return binary.BigEndian, nil
	case "little", "le", "little-endian", "littleendian":
		return binary.LittleEndian, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownByteOrder, name)
	}
}

// ByteOrderName returns the canonical configuration name of order.
func ByteOrderName(order binary.ByteOrder) string {
	if order == binary.LittleEndian {
		return "little"
	}
	return "big"
}

// Sniff reports whether any signature occurs within the first window bytes of
// payload. A window of zero uses DefaultSniffWindow.
func Sniff(payload []byte, window int, signatures [][]byte) bool {
	if window <= 0 {
		window = DefaultSniffWindow
	}
	head := payload
	if len(head) > window {
		head = head[:window]
	}
	for _, sig := range signatures {
		if len(sig) > 0 && bytes.Contains(head, sig) {
			return true
		}
	}
	return false
}
