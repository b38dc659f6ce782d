// Package profile loads container layouts from YAML profile tables.
//
// A profile names a format and carries the layout the container engine needs
// to read it, plus optional custom character tables. The package embeds a set
// of built-in profiles; callers may load more from their own files and merge
// them over the built-ins.
package profile

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/reskit/container"
	"github.com/joshuapare/reskit/internal/format"
	"github.com/joshuapare/reskit/textenc"
)

//go:embed builtin.yaml
var builtinYAML []byte

var (
	// ErrUnknownProfile is returned when a profile id is not in the table.
	ErrUnknownProfile = errors.New("profile: unknown profile")

	// ErrInvalidProfile wraps schema and conversion failures.
	ErrInvalidProfile = errors.New("profile: invalid profile")
)

// Int is an integer that also accepts hex (0x), octal (0o) and binary (0b)
// literals, which is how offsets usually appear in format notes.
type Int int64

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *Int) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected an integer", node.Line)
	}
	v, err := strconv.ParseInt(strings.ReplaceAll(node.Value, "_", ""), 0, 64)
	if err != nil {
		return fmt.Errorf("line %d: %q is not an integer", node.Line, node.Value)
	}
	*n = Int(v)
	return nil
}

// Field is the YAML form of a header field.
type Field struct {
	Offset Int `yaml:"offset"`
	Width  int `yaml:"width"`
	Bias   Int `yaml:"bias,omitempty"`
}

// Range is the YAML form of a half-open protected range.
type Range struct {
	Start Int `yaml:"start"`
	End   Int `yaml:"end"`
}

// OpaquePrefix is the YAML form of an opaque record length header.
type OpaquePrefix struct {
	Signature string `yaml:"signature"`
	Width     int    `yaml:"width"`
}

// Run is the YAML form of a character table run.
type Run struct {
	Start Int    `yaml:"start"`
	Chars string `yaml:"chars"`
}

// Encoding is a custom single-byte character table.
type Encoding struct {
	Name string `yaml:"name"`
	Runs []Run  `yaml:"runs"`
}

// Profile describes one format.
type Profile struct {
	ID          string   `yaml:"id"`
	Description string   `yaml:"description,omitempty"`
	Extensions  []string `yaml:"extensions,omitempty"`

	Strategy           string         `yaml:"strategy"`
	PointerTableOffset Int            `yaml:"pointer_table_offset,omitempty"`
	PointerWidth       int            `yaml:"pointer_width,omitempty"`
	ByteOrder          string         `yaml:"byte_order,omitempty"`
	PointerBase        string         `yaml:"pointer_base,omitempty"`
	PointerBias        Int            `yaml:"pointer_bias,omitempty"`
	PointerCount       int            `yaml:"pointer_count,omitempty"`
	CountField         *Field         `yaml:"count_field,omitempty"`
	TableEnd           Int            `yaml:"table_end,omitempty"`
	SentinelEntry      bool           `yaml:"sentinel_entry,omitempty"`
	LengthPrefixWidth  int            `yaml:"length_prefix_width,omitempty"`
	PrefixTextOnly     bool           `yaml:"prefix_text_only,omitempty"`
	TextEncoding       string         `yaml:"text_encoding,omitempty"`
	ProtectedRanges    []Range        `yaml:"protected_ranges,omitempty"`
	BinarySignatures   []string       `yaml:"binary_signatures,omitempty"`
	SniffWindow        int            `yaml:"sniff_window,omitempty"`
	BinaryOnly         bool           `yaml:"binary_only,omitempty"`
	OpaquePrefixes     []OpaquePrefix `yaml:"opaque_prefixes,omitempty"`
	ZeroLength         string         `yaml:"zero_length"`
	MaxRecordLength    int            `yaml:"max_record_length,omitempty"`
	MaxCodePoint       Int            `yaml:"max_code_point,omitempty"`
	Overflow           string         `yaml:"overflow,omitempty"`
	ScanStart          Int            `yaml:"scan_start,omitempty"`
	SizeField          *Field         `yaml:"size_field,omitempty"`
	BlockHeaderSize    int            `yaml:"block_header_size,omitempty"`
}

type document struct {
	Encodings []Encoding `yaml:"encodings"`
	Profiles  []Profile  `yaml:"profiles"`
}

// Table is a set of profiles keyed by id together with the encodings they
// reference.
type Table struct {
	profiles map[string]Profile
	order    []string
	codecs   *textenc.Registry
}

// Builtin returns the embedded profile table.
func Builtin() (*Table, error) {
	t, err := Parse(builtinYAML)
	if err != nil {
		return nil, fmt.Errorf("builtin profiles: %w", err)
	}
	return t, nil
}

// Parse decodes a YAML profile document into a new table.
func Parse(data []byte) (*Table, error) {
	t := New()
	if err := t.Extend(data); err != nil {
		return nil, err
	}
	return t, nil
}

// New returns an empty table.
func New() *Table {
	return &Table{profiles: make(map[string]Profile), codecs: &textenc.Registry{}}
}

// Load parses the profile file at path into a new table.
func Load(path string) (*Table, error) {
	t := New()
	if err := t.LoadFile(path); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadFile extends t with the profile file at path.
func (t *Table) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := t.Extend(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Extend adds the encodings and profiles of a YAML document to t. Profiles
// replace those already in t with the same id and may reference encodings
// defined earlier. The table is left unchanged when the document is invalid.
func (t *Table) Extend(data []byte) error {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	codecs := make([]textenc.Codec, 0, len(doc.Encodings))
	staged := &textenc.Registry{}
	for _, name := range t.codecs.Tables() {
		c, _ := t.codecs.Lookup(name)
		_ = staged.Register(c)
	}
	for _, e := range doc.Encodings {
		c, err := buildEncoding(e)
		if err != nil {
			return err
		}
		if err := staged.Register(c); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
		}
		codecs = append(codecs, c)
	}

	next := &Table{codecs: staged}
	seen := make(map[string]bool, len(doc.Profiles))
	for _, p := range doc.Profiles {
		if p.ID == "" {
			return fmt.Errorf("%w: profile without an id", ErrInvalidProfile)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate profile %q", ErrInvalidProfile, p.ID)
		}
		seen[p.ID] = true
		if _, err := next.layout(p); err != nil {
			return err
		}
	}

	for _, c := range codecs {
		_ = t.codecs.Register(c)
	}
	for _, p := range doc.Profiles {
		if _, ok := t.profiles[p.ID]; !ok {
			t.order = append(t.order, p.ID)
		}
		t.profiles[p.ID] = p
	}
	return nil
}

func buildEncoding(e Encoding) (textenc.Codec, error) {
	if e.Name == "" {
		return nil, fmt.Errorf("%w: encoding without a name", ErrInvalidProfile)
	}
	runs := make([]textenc.Run, 0, len(e.Runs))
	for _, r := range e.Runs {
		if r.Start < 0 || r.Start > 0xFF {
			return nil, fmt.Errorf("%w: encoding %q: run start 0x%X outside byte range", ErrInvalidProfile, e.Name, int64(r.Start))
		}
		runs = append(runs, textenc.Run{Start: byte(r.Start), Chars: r.Chars})
	}
	tbl, err := textenc.NewTable(e.Name, runs...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return tbl, nil
}

// IDs lists the profile ids in definition order.
func (t *Table) IDs() []string {
	return append([]string(nil), t.order...)
}

// Get returns the profile with the given id.
func (t *Table) Get(id string) (Profile, error) {
	p, ok := t.profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, id)
	}
	return p, nil
}

// Layout converts the profile with the given id into a container layout.
func (t *Table) Layout(id string) (container.Layout, error) {
	p, err := t.Get(id)
	if err != nil {
		return container.Layout{}, err
	}
	return t.layout(p)
}

// Detect returns the ids of profiles whose extensions match path, sorted.
func (t *Table) Detect(path string) []string {
	lower := strings.ToLower(path)
	var ids []string
	for id, p := range t.profiles {
		for _, ext := range p.Extensions {
			if strings.HasSuffix(lower, strings.ToLower(ext)) {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids
}

func (t *Table) layout(p Profile) (container.Layout, error) {
	bad := func(err error) (container.Layout, error) {
		return container.Layout{}, fmt.Errorf("%w: %s: %w", ErrInvalidProfile, p.ID, err)
	}

	l := container.Layout{
		Name:               p.ID,
		PointerTableOffset: int(p.PointerTableOffset),
		PointerWidth:       p.PointerWidth,
		PointerBias:        int64(p.PointerBias),
		PointerCount:       p.PointerCount,
		TableEnd:           int(p.TableEnd),
		SentinelEntry:      p.SentinelEntry,
		LengthPrefixWidth:  p.LengthPrefixWidth,
		PrefixTextOnly:     p.PrefixTextOnly,
		TextEncoding:       p.TextEncoding,
		SniffWindow:        p.SniffWindow,
		BinaryOnly:         p.BinaryOnly,
		MaxRecordLength:    p.MaxRecordLength,
		MaxCodePoint:       rune(p.MaxCodePoint),
		ScanStart:          int(p.ScanStart),
		Block:              container.BlockLayout{HeaderSize: p.BlockHeaderSize},
	}

	var err error
	if l.Strategy, err = container.ParseStrategy(p.Strategy); err != nil {
		return bad(err)
	}
	if l.ByteOrder, err = format.ByteOrder(p.ByteOrder); err != nil {
		return bad(err)
	}
	if p.PointerBase != "" {
		if l.PointerBase, err = container.ParsePointerBase(p.PointerBase); err != nil {
			return bad(err)
		}
	}
	if l.ZeroLength, err = container.ParseZeroLength(p.ZeroLength); err != nil {
		return bad(err)
	}
	if p.Overflow != "" {
		if l.Overflow, err = container.ParseOverflow(p.Overflow); err != nil {
			return bad(err)
		}
	}
	if p.CountField != nil {
		l.CountField = container.Field{Offset: int(p.CountField.Offset), Width: p.CountField.Width, Bias: int64(p.CountField.Bias)}
	}
	if p.SizeField != nil {
		l.SizeField = container.Field{Offset: int(p.SizeField.Offset), Width: p.SizeField.Width, Bias: int64(p.SizeField.Bias)}
	}
	for _, r := range p.ProtectedRanges {
		l.ProtectedRanges = append(l.ProtectedRanges, container.Range{Start: int(r.Start), End: int(r.End)})
	}
	for _, s := range p.BinarySignatures {
		sig, err := parseSignature(s)
		if err != nil {
			return bad(err)
		}
		l.BinarySignatures = append(l.BinarySignatures, sig)
	}
	for _, op := range p.OpaquePrefixes {
		sig, err := parseSignature(op.Signature)
		if err != nil {
			return bad(err)
		}
		l.OpaquePrefixes = append(l.OpaquePrefixes, container.OpaquePrefix{Signature: sig, Width: op.Width})
	}

	if l.Codec, err = t.codecs.Lookup(p.TextEncoding); err != nil {
		return bad(err)
	}
	if err := l.Validate(); err != nil {
		return bad(err)
	}
	return l, nil
}

// Codec resolves an encoding name against the table's custom encodings and
// the built-in codecs.
func (t *Table) Codec(name string) (textenc.Codec, error) {
	return t.codecs.Lookup(name)
}

// Encodings lists the custom encodings defined by the table.
func (t *Table) Encodings() []string {
	return t.codecs.Tables()
}

// parseSignature accepts either "hex:89504E47" or a literal ASCII string.
func parseSignature(s string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(s, "hex:"); ok {
		rest = strings.ReplaceAll(rest, " ", "")
		if len(rest) == 0 || len(rest)%2 != 0 {
			return nil, fmt.Errorf("signature %q: odd or empty hex", s)
		}
		out := make([]byte, len(rest)/2)
		for i := range out {
			v, err := strconv.ParseUint(rest[2*i:2*i+2], 16, 8)
			if err != nil {
				return nil, fmt.Errorf("signature %q: %v", s, err)
			}
			out[i] = byte(v)
		}
		return out, nil
	}
	if s == "" {
		return nil, errors.New("empty signature")
	}
	return []byte(s), nil
}
