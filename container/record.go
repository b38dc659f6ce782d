package container

import "fmt"

// Kind classifies a record.
type Kind int

const (
	KindText      Kind = iota // decodable text
	KindOpaque                // binary payload, edited as bytes
	KindProtected             // reserved range, never edited
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindOpaque:
		return "opaque"
	case KindProtected:
		return "protected"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Record is one addressable unit of a container.
type Record struct {
	Index       int
	Kind        Kind
	Start       int // payload start, after the length prefix
	PrefixWidth int
	Length      int // payload length
	Block       int // owning block, -1 outside block layouts
	Dirty       bool
}

// RegionStart returns the offset of the record's length prefix, which is
// also where its table entry points.
func (r Record) RegionStart() int { return r.Start - r.PrefixWidth }

// End returns the exclusive end offset of the payload.
func (r Record) End() int { return r.Start + r.Length }

// Block is one block of a StrategyBlocks container.
type Block struct {
	Index      int
	Start      int // first byte of the block header
	HeaderSize int
	First      int // index of the first record in the block
	Count      int // number of records in the block
}

// Summary is one row of List.
type Summary struct {
	Index  int
	Kind   Kind
	Offset int // payload start
	Length int // payload length in bytes
	Dirty  bool
}

// Content is the value of a record: text or raw bytes.
type Content struct {
	text   string
	data   []byte
	isText bool
}

// Text returns text content, encoded with the layout's codec on write.
func Text(s string) Content { return Content{text: s, isText: true} }

// Bytes returns byte content written verbatim. The slice is copied.
func Bytes(b []byte) Content { return Content{data: append([]byte(nil), b...)} }

// IsText reports whether the content is text.
func (c Content) IsText() bool { return c.isText }

// String returns the text, or the bytes in hex for byte content.
func (c Content) String() string {
	if c.isText {
		return c.text
	}
	return fmt.Sprintf("% X", c.data)
}

// Data returns a copy of the bytes of byte content, nil for text.
func (c Content) Data() []byte {
	if c.isText {
		return nil
	}
	return append([]byte(nil), c.data...)
}
