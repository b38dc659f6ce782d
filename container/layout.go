package container

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/joshuapare/reskit/internal/buf"
	"github.com/joshuapare/reskit/internal/format"
	"github.com/joshuapare/reskit/textenc"
)

// Strategy selects how Load discovers records.
type Strategy int

const (
	// StrategyTable reads a pointer table at a fixed offset.
	StrategyTable Strategy = iota
	// StrategyInline walks the buffer reading length-prefixed text.
	StrategyInline
	// StrategyBlocks reads an outer table of blocks, each holding
	// length-prefixed records after a fixed block header.
	StrategyBlocks
)

var strategyNames = map[Strategy]string{
	StrategyTable:  "table",
	StrategyInline: "inline",
	StrategyBlocks: "blocks",
}

func (s Strategy) String() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy parses "table", "inline" or "blocks". Empty means table.
func ParseStrategy(s string) (Strategy, error) {
	if s == "" {
		return StrategyTable, nil
	}
	for k, v := range strategyNames {
		if strings.EqualFold(s, v) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown strategy %q", ErrInvalidLayout, s)
}

// PointerBase is what a raw pointer value is relative to.
type PointerBase int

const (
	BaseAbsolute   PointerBase = iota // offset 0 of the buffer
	BaseTableStart                    // first byte of the pointer table
	BaseEntryEnd                      // first byte after the entry itself
)

var baseNames = map[PointerBase]string{
	BaseAbsolute:   "absolute",
	BaseTableStart: "table_start",
	BaseEntryEnd:   "entry_end",
}

func (b PointerBase) String() string {
	if n, ok := baseNames[b]; ok {
		return n
	}
	return fmt.Sprintf("PointerBase(%d)", int(b))
}

// ParsePointerBase parses a base name. Empty means absolute.
func ParsePointerBase(s string) (PointerBase, error) {
	if s == "" {
		return BaseAbsolute, nil
	}
	for k, v := range baseNames {
		if strings.EqualFold(s, v) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown pointer base %q", ErrInvalidLayout, s)
}

// ZeroLengthPolicy decides what a zero length prefix (or a zero-sized
// region) means. There is no default; a layout must choose.
type ZeroLengthPolicy int

const (
	ZeroLengthUnset     ZeroLengthPolicy = iota
	ZeroLengthTerminate                  // end of records
	ZeroLengthEmpty                      // a valid empty record
	ZeroLengthSkip                       // filler byte (inline only)
)

var zeroNames = map[ZeroLengthPolicy]string{
	ZeroLengthTerminate: "terminate",
	ZeroLengthEmpty:     "empty",
	ZeroLengthSkip:      "skip",
}

func (z ZeroLengthPolicy) String() string {
	if n, ok := zeroNames[z]; ok {
		return n
	}
	return "unset"
}

// ParseZeroLength parses "terminate", "empty" or "skip".
func ParseZeroLength(s string) (ZeroLengthPolicy, error) {
	for k, v := range zeroNames {
		if strings.EqualFold(s, v) {
			return k, nil
		}
	}
	return ZeroLengthUnset, fmt.Errorf("%w: unknown zero-length policy %q", ErrInvalidLayout, s)
}

// OverflowPolicy decides what SetContent does with content above the
// record's length ceiling.
type OverflowPolicy int

const (
	OverflowFail     OverflowPolicy = iota // reject with ErrLengthOverflow
	OverflowTruncate                       // keep the longest prefix that fits
)

func (o OverflowPolicy) String() string {
	if o == OverflowTruncate {
		return "truncate"
	}
	return "fail"
}

// ParseOverflow parses "fail" or "truncate". Empty means fail.
func ParseOverflow(s string) (OverflowPolicy, error) {
	switch strings.ToLower(s) {
	case "", "fail":
		return OverflowFail, nil
	case "truncate":
		return OverflowTruncate, nil
	}
	return 0, fmt.Errorf("%w: unknown overflow policy %q", ErrInvalidLayout, s)
}

// Range is a half-open byte range [Start, End) in load-time offsets.
type Range struct {
	Start int
	End   int
}

// Contains reports whether off lies inside the range.
func (r Range) Contains(off int) bool { return off >= r.Start && off < r.End }

// Overlaps reports whether [start, end) shares a byte with the range.
func (r Range) Overlaps(start, end int) bool { return start < r.End && end > r.Start }

// Field is an unsigned integer stored in the header. A zero Width means the
// field is absent.
type Field struct {
	Offset int
	Width  int
	Bias   int64 // stored value = logical value + Bias
}

// Enabled reports whether the field is configured.
func (f Field) Enabled() bool { return f.Width != 0 }

// OpaquePrefix sets the length header width of opaque table records whose
// sniff window holds Signature. The first matching entry wins; a zero Width
// keeps the whole region as payload.
type OpaquePrefix struct {
	Signature []byte
	Width     int
}

// BlockLayout describes the blocks of a StrategyBlocks container.
type BlockLayout struct {
	HeaderSize int // bytes at the start of every block before its first record
}

// Layout describes where a container keeps its pointer table and records.
// The zero value is not usable: ZeroLength and the widths must be set.
type Layout struct {
	Name     string
	Strategy Strategy

	PointerTableOffset int
	PointerWidth       int
	ByteOrder          binary.ByteOrder // nil means big-endian
	PointerBase        PointerBase
	PointerBias        int64

	// At most one of PointerCount and CountField may be set. With neither,
	// the table ends at the first terminator.
	PointerCount  int
	CountField    Field
	TableEnd      int  // exclusive bound of the table region, 0 for none
	SentinelEntry bool // one extra entry pointing at the end of data

	LengthPrefixWidth int
	PrefixTextOnly    bool // opaque and protected table records carry no prefix
	TextEncoding      string
	Codec             textenc.Codec // overrides TextEncoding when set

	ProtectedRanges  []Range
	BinarySignatures [][]byte
	SniffWindow      int
	BinaryOnly       bool           // non-protected records are opaque
	OpaquePrefixes   []OpaquePrefix // PrefixTextOnly: headers of opaque records

	ZeroLength      ZeroLengthPolicy
	MaxRecordLength int // 0 for no bound
	MaxCodePoint    rune
	Overflow        OverflowPolicy

	ScanStart int        // StrategyInline
	SizeField Field      // header field holding the container length
	Block     BlockLayout // StrategyBlocks
}

// resolved holds the values Validate derives from a Layout.
type resolved struct {
	order binary.ByteOrder
	codec textenc.Codec
}

// Validate reports whether the layout is usable. Errors wrap ErrInvalidLayout.
func (l Layout) Validate() error {
	_, err := l.resolve()
	return err
}

func (l Layout) resolve() (resolved, error) {
	var r resolved
	bad := func(format string, args ...any) (resolved, error) {
		return r, fmt.Errorf("%w: %s", ErrInvalidLayout, fmt.Sprintf(format, args...))
	}

	r.order = l.ByteOrder
	if r.order == nil {
		r.order = binary.BigEndian
	}

	switch l.Strategy {
	case StrategyTable, StrategyBlocks:
		if !format.ValidPointerWidth(l.PointerWidth) {
			return bad("pointer width %d (want one of %v)", l.PointerWidth, format.PointerWidths)
		}
		if l.PointerTableOffset < 0 {
			return bad("negative pointer table offset")
		}
		if l.PointerCount < 0 {
			return bad("negative pointer count")
		}
		if l.PointerCount > 0 && l.CountField.Enabled() {
			return bad("both pointer_count and count_field are set")
		}
		if l.TableEnd < 0 || (l.TableEnd > 0 && l.TableEnd < l.PointerTableOffset+l.PointerWidth) {
			return bad("table end 0x%X leaves no room for an entry", l.TableEnd)
		}
	case StrategyInline:
		if l.ScanStart < 0 {
			return bad("negative scan start")
		}
		if l.SentinelEntry || l.PointerCount > 0 || l.CountField.Enabled() {
			return bad("inline layouts have no pointer table")
		}
	default:
		return bad("unknown strategy %d", int(l.Strategy))
	}

	if !format.ValidPrefixWidth(l.LengthPrefixWidth) {
		return bad("length prefix width %d (want one of %v)", l.LengthPrefixWidth, format.PrefixWidths)
	}
	if l.Strategy != StrategyTable && l.LengthPrefixWidth == 0 {
		return bad("%s layouts need a length prefix", l.Strategy)
	}
	if l.PrefixTextOnly && (l.Strategy != StrategyTable || l.LengthPrefixWidth == 0) {
		return bad("prefix_text_only needs a table layout with a length prefix")
	}
	if len(l.OpaquePrefixes) > 0 && !l.PrefixTextOnly {
		return bad("opaque_prefixes needs prefix_text_only")
	}
	for i, op := range l.OpaquePrefixes {
		if len(op.Signature) == 0 {
			return bad("opaque prefix %d has an empty signature", i)
		}
		if !format.ValidHeaderWidth(op.Width) {
			return bad("opaque prefix %d width %d (want 0, 1, 2 or 4)", i, op.Width)
		}
	}
	if l.Strategy == StrategyBlocks && l.Block.HeaderSize < 0 {
		return bad("negative block header size")
	}

	switch l.ZeroLength {
	case ZeroLengthTerminate, ZeroLengthEmpty:
	case ZeroLengthSkip:
		if l.Strategy != StrategyInline {
			return bad("zero_length skip only applies to inline layouts")
		}
	default:
		return bad("zero_length policy must be set")
	}

	if l.Overflow != OverflowFail && l.Overflow != OverflowTruncate {
		return bad("unknown overflow policy %d", int(l.Overflow))
	}
	if l.MaxRecordLength < 0 {
		return bad("negative max record length")
	}

	for _, f := range []struct {
		name  string
		field Field
	}{{"count_field", l.CountField}, {"size_field", l.SizeField}} {
		if !f.field.Enabled() {
			continue
		}
		if !format.FieldWidth(f.field.Width) {
			return bad("%s width %d (want one of %v)", f.name, f.field.Width, format.PointerWidths)
		}
		if f.field.Offset < 0 {
			return bad("%s has a negative offset", f.name)
		}
	}

	for i, pr := range l.ProtectedRanges {
		if pr.Start < 0 || pr.End <= pr.Start {
			return bad("protected range %d [0x%X, 0x%X) is empty or negative", i, pr.Start, pr.End)
		}
	}

	r.codec = l.Codec
	if r.codec == nil {
		c, err := textenc.Lookup(l.TextEncoding)
		if err != nil {
			return bad("%v", err)
		}
		r.codec = c
	}
	return r, nil
}

// ceiling returns the largest payload a record with the given prefix width
// may hold, or -1 when nothing bounds it.
func (l Layout) ceiling(prefix int) int {
	limit := -1
	if prefix > 0 {
		limit = int(buf.MaxUint(prefix))
	}
	if l.MaxRecordLength > 0 && (limit < 0 || l.MaxRecordLength < limit) {
		limit = l.MaxRecordLength
	}
	return limit
}

func (l Layout) protectedAt(off int) (Range, bool) {
	for _, r := range l.ProtectedRanges {
		if r.Contains(off) {
			return r, true
		}
	}
	return Range{}, false
}

func (l Layout) overlapsProtected(start, end int) bool {
	for _, r := range l.ProtectedRanges {
		if r.Overlaps(start, end) {
			return true
		}
	}
	return false
}
