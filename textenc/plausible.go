package textenc

// coverer is implemented by codecs that can tell whether every byte has a
// defined character, such as Table.
type coverer interface {
	Covers(b []byte) bool
}

// Plausible reports whether b looks like a text record under c.
//
// The span must be non-empty, decode without error, contain no C0 control
// characters other than '\n', '\r' and '\t', and, when maxCodePoint is
// positive, contain no code point above it. Table codecs additionally require
// every byte to be mapped.
func Plausible(c Codec, b []byte, maxCodePoint rune) bool {
	if len(b) == 0 || c == nil {
		return false
	}
	if cv, ok := c.(coverer); ok && !cv.Covers(b) {
		return false
	}
	s, err := c.Decode(b)
	if err != nil {
		return false
	}
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
		case r < 0x20:
			return false
		case maxCodePoint > 0 && r > maxCodePoint:
			return false
		}
	}
	return true
}
