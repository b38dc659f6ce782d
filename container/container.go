package container

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/cespare/xxhash/v2"

	"github.com/joshuapare/reskit/container/dirty"
	"github.com/joshuapare/reskit/internal/buf"
	"github.com/joshuapare/reskit/textenc"
)

type anchor int

const (
	anchorRecord anchor = iota // ref is a record index
	anchorBlock                // ref is a block index
	anchorEnd                  // ref is the end-of-data offset
	anchorOffset               // ref is a data offset past the last tracked record
)

// entry is one pointer table slot.
type entry struct {
	pos    int
	anchor anchor
	ref    int
}

// Container is a loaded resource container. It owns its buffer; every
// accessor returns copies.
type Container struct {
	layout Layout
	order  binary.ByteOrder
	codec  textenc.Codec
	log    *slog.Logger

	raw     []byte
	records []Record
	blocks  []Block
	entries []entry
	hashes  []uint64 // load-time payload hashes
	header  int      // offset of the first record region
	dirty   *dirty.Tracker

	sizeTracked bool // size field held the container length at load
}

// Layout returns the layout the container was loaded with.
func (c *Container) Layout() Layout { return c.layout }

// Codec returns the text codec used for text records.
func (c *Container) Codec() textenc.Codec { return c.codec }

// Len returns the number of records.
func (c *Container) Len() int { return len(c.records) }

// Size returns the current container length in bytes.
func (c *Container) Size() int { return len(c.raw) }

// HeaderLen returns the number of bytes before the first record region,
// including the pointer table.
func (c *Container) HeaderLen() int { return c.header }

// TableLen returns the number of pointer table entries, sentinel included.
func (c *Container) TableLen() int { return len(c.entries) }

// Bytes returns a copy of the current buffer.
func (c *Container) Bytes() []byte { return bytes.Clone(c.raw) }

// Record returns the metadata of record i.
func (c *Container) Record(i int) (Record, error) {
	if i < 0 || i >= len(c.records) {
		return Record{}, &EditError{Op: "get", Index: i, Offset: -1, Err: ErrIndexOutOfRange,
			Msg: fmt.Sprintf("container has %d records", len(c.records))}
	}
	return c.records[i], nil
}

// Records returns a copy of all record metadata.
func (c *Container) Records() []Record {
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Blocks returns a copy of the block metadata of a block layout.
func (c *Container) Blocks() []Block {
	out := make([]Block, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// List returns one summary per record, in index order.
func (c *Container) List() []Summary {
	out := make([]Summary, len(c.records))
	for i, r := range c.records {
		out[i] = Summary{Index: r.Index, Kind: r.Kind, Offset: r.Start, Length: r.Length, Dirty: r.Dirty}
	}
	return out
}

// Payload returns a copy of the payload bytes of record i, whatever its kind.
func (c *Container) Payload(i int) ([]byte, error) {
	r, err := c.Record(i)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(c.raw[r.Start:r.End()]), nil
}

// Content returns the value of record i: decoded text for text records,
// bytes otherwise.
func (c *Container) Content(i int) (Content, error) {
	r, err := c.Record(i)
	if err != nil {
		return Content{}, err
	}
	payload := c.raw[r.Start:r.End()]
	if r.Kind != KindText {
		return Bytes(payload), nil
	}
	s, err := c.codec.Decode(payload)
	if err != nil {
		return Content{}, &EditError{Op: "get", Index: i, Offset: r.Start, Err: ErrEncoding, Msg: err.Error()}
	}
	return Text(s), nil
}

// Modified reports whether any record differs from its load-time value.
func (c *Container) Modified() bool {
	if c.dirty.Empty() {
		return false
	}
	for _, r := range c.records {
		if r.Dirty {
			return true
		}
	}
	return false
}

// DirtyRanges returns the coalesced byte ranges written since load.
func (c *Container) DirtyRanges() []dirty.Range {
	return c.dirty.Ranges()
}

// target returns the offset entry e must resolve to.
func (c *Container) target(e entry) int {
	switch e.anchor {
	case anchorRecord:
		return c.records[e.ref].RegionStart()
	case anchorBlock:
		return c.blocks[e.ref].Start
	}
	return e.ref
}

func (c *Container) pointerBase(pos int) int64 {
	switch c.layout.PointerBase {
	case BaseTableStart:
		return int64(c.layout.PointerTableOffset)
	case BaseEntryEnd:
		return int64(pos + c.layout.PointerWidth)
	}
	return 0
}

// resolve turns a raw entry value at pos into a buffer offset.
func (c *Container) resolve(raw uint64, pos int) int64 {
	return int64(raw) + c.pointerBase(pos) + c.layout.PointerBias
}

// encodePointer is the inverse of resolve. ok is false when the value does
// not fit the entry width.
func (c *Container) encodePointer(target, pos int) (uint64, bool) {
	v := int64(target) - c.pointerBase(pos) - c.layout.PointerBias
	if v < 0 || uint64(v) > buf.MaxUint(c.layout.PointerWidth) {
		return 0, false
	}
	return uint64(v), true
}

func (c *Container) hashRecord(i int) uint64 {
	r := c.records[i]
	return xxhash.Sum64(c.raw[r.Start:r.End()])
}
