// Package format houses the low-level vocabulary shared by container layouts:
// supported integer widths, byte order names and the magic signatures used to
// recognize embedded binary resources. The package is independent from the
// public engine so layouts and profiles can be validated without a container.
package format

var (
	// PNGSignature marks an embedded PNG image.
	//   0x00  0x89 'P' 'N' 'G' '\r' '\n' 0x1A '\n'
	PNGSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

	// PNGTag is the short form used by packers that strip the leading byte.
	PNGTag = []byte{'P', 'N', 'G'}

	// QYP6Signature marks the compressed sprite blobs found in Asterix packs.
	QYP6Signature = []byte{'Q', 'Y', 'P', '6'}
)

const (
	// DefaultSniffWindow is how many leading payload bytes are searched for a
	// binary signature when a layout does not configure its own window.
	DefaultSniffWindow = 16

	// MaxTableEntries bounds terminator-driven pointer table scans.
	MaxTableEntries = 1 << 20
)

// PointerWidths lists the pointer table entry widths a layout may use.
var PointerWidths = []int{1, 2, 4}

// PrefixWidths lists the per-record length prefix widths a layout may use.
// Zero means the record is bounded by the next pointer instead.
var PrefixWidths = []int{0, 1, 2}

// ValidPointerWidth reports whether w is a supported pointer entry width.
func ValidPointerWidth(w int) bool {
	return w == 1 || w == 2 || w == 4
}

// ValidPrefixWidth reports whether w is a supported length prefix width.
func ValidPrefixWidth(w int) bool {
	return w == 0 || w == 1 || w == 2
}

// FieldWidth reports whether w is usable for a header field (count or size).
func FieldWidth(w int) bool {
	return ValidPointerWidth(w)
}

// ValidHeaderWidth reports whether w is usable for the length header of an
// opaque record. Image payloads carry 4-byte headers.
func ValidHeaderWidth(w int) bool {
	return ValidPrefixWidth(w) || w == 4
}
