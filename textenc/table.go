package textenc

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Run maps consecutive byte values, starting at Start, to the runes of Chars.
type Run struct {
	Start byte
	Chars string
}

// Table is a single-byte codec defined by an explicit character table.
//
// Bytes without a mapping decode to a bracketed hex escape such as "[5F]" and
// the encoder turns well-formed escapes back into the byte they name. When a
// byte's character would not encode back to the same byte (duplicate
// mappings, or a literal '[' that would read as an escape), Decode emits the
// escape instead so that Decode followed by Encode reproduces the input.
type Table struct {
	name   string
	decode [256]rune
	mapped [256]bool
	encode map[rune]byte
}

// NewTable builds a table codec from runs. The first run that maps a
// character defines the byte used when encoding it.
func NewTable(name string, runs ...Run) (*Table, error) {
	t := &Table{name: name, encode: make(map[rune]byte)}
	for _, run := range runs {
		b := int(run.Start)
		for _, r := range run.Chars {
			if b > 0xFF {
				return nil, fmt.Errorf("textenc: table %q: run at 0x%02X overflows byte range", name, run.Start)
			}
			if t.mapped[b] {
				return nil, fmt.Errorf("textenc: table %q: byte 0x%02X mapped twice", name, b)
			}
			t.decode[b] = r
			t.mapped[b] = true
			if _, ok := t.encode[r]; !ok {
				t.encode[r] = byte(b)
			}
			b++
		}
	}
	return t, nil
}

// NewTableFromMap builds a table codec from an explicit byte to rune map.
// Characters mapped by several bytes encode to the lowest byte.
func NewTableFromMap(name string, m map[byte]rune) (*Table, error) {
	keys := make([]int, 0, len(m))
	for b := range m {
		keys = append(keys, int(b))
	}
	sort.Ints(keys)
	runs := make([]Run, 0, len(keys))
	for _, b := range keys {
		runs = append(runs, Run{Start: byte(b), Chars: string(m[byte(b)])})
	}
	return NewTable(name, runs...)
}

// Name implements Codec.
func (t *Table) Name() string { return "table:" + t.name }

// Covers reports whether every byte of b has a mapping.
func (t *Table) Covers(b []byte) bool {
	for _, c := range b {
		if !t.mapped[c] {
			return false
		}
	}
	return true
}

// Decode implements Codec. It never fails.
func (t *Table) Decode(b []byte) (string, error) {
	var sb strings.Builder
	sb.Grow(len(b))
	for i, c := range b {
		if !t.mapped[c] || t.encode[t.decode[c]] != c || (t.decode[c] == '[' && t.escapeFollows(b[i+1:])) {
			fmt.Fprintf(&sb, "[%02X]", c)
			continue
		}
		sb.WriteRune(t.decode[c])
	}
	return sb.String(), nil
}

// escapeFollows reports whether the decoded form of rest starts with "HH]".
func (t *Table) escapeFollows(rest []byte) bool {
	if len(rest) < 3 {
		return false
	}
	var tail [3]rune
	for i := 0; i < 3; i++ {
		c := rest[i]
		if !t.mapped[c] {
			// An unmapped byte decodes to '[', which never matches.
			return false
		}
		tail[i] = t.decode[c]
	}
	return isHex(tail[0]) && isHex(tail[1]) && tail[2] == ']'
}

// Encode implements Codec.
func (t *Table) Encode(s string) ([]byte, error) {
	runes := []rune(s)
	out := make([]byte, 0, len(runes))
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '[' && i+3 < len(runes) && isHex(runes[i+1]) && isHex(runes[i+2]) && runes[i+3] == ']' {
			v, _ := strconv.ParseUint(string(runes[i+1:i+3]), 16, 8)
			out = append(out, byte(v))
			i += 3
			continue
		}
		b, ok := t.encode[r]
		if !ok {
			return nil, fmt.Errorf("%w: %q not in table %q", ErrUnencodable, r, t.name)
		}
		out = append(out, b)
	}
	return out, nil
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
