package container

import (
	"bytes"

	"github.com/joshuapare/reskit/container/dirty"
	"github.com/joshuapare/reskit/internal/buf"
	"github.com/joshuapare/reskit/internal/format"
	"github.com/joshuapare/reskit/textenc"
)

// Load scans raw with layout and returns a container owning a copy of raw.
// Errors are *ScanError values.
func Load(raw []byte, layout Layout, opts ...Option) (*Container, error) {
	if len(raw) == 0 {
		return nil, &ScanError{Err: ErrEmptyInput, Offset: -1, Entry: -1}
	}
	res, err := layout.resolve()
	if err != nil {
		return nil, &ScanError{Err: err, Offset: -1, Entry: -1}
	}
	cfg := newConfig(opts)

	c := &Container{
		layout: layout,
		order:  res.order,
		codec:  res.codec,
		log:    cfg.logger,
		raw:    bytes.Clone(raw),
		dirty:  dirty.NewTracker(),
	}

	switch layout.Strategy {
	case StrategyTable:
		err = c.scanTable()
	case StrategyInline:
		err = c.scanInline()
	case StrategyBlocks:
		err = c.scanBlocks()
	}
	if err != nil {
		return nil, err
	}
	if err := c.checkSizeField(); err != nil {
		return nil, err
	}

	c.hashes = make([]uint64, len(c.records))
	for i := range c.records {
		c.hashes[i] = c.hashRecord(i)
	}

	c.log.Debug("container loaded",
		"layout", layout.Name,
		"strategy", layout.Strategy.String(),
		"size", len(c.raw),
		"records", len(c.records),
		"blocks", len(c.blocks),
		"entries", len(c.entries),
	)
	return c, nil
}

// readTable reads the pointer table and returns the resolved targets. With
// SentinelEntry the last target is the end-of-data sentinel.
func (c *Container) readTable() ([]int, error) {
	l := c.layout
	w := l.PointerWidth
	off := l.PointerTableOffset
	size := len(c.raw)

	if !buf.Has(c.raw, off, w) {
		return nil, scanErr(ErrTruncatedHeader, off, -1, "pointer table needs %d bytes, input has %d", off+w, size)
	}

	count := -1
	if l.PointerCount > 0 {
		count = l.PointerCount
	}
	if f := l.CountField; f.Enabled() {
		v, ok := buf.Uint(c.raw, f.Offset, f.Width, c.order)
		if !ok {
			return nil, scanErr(ErrTruncatedHeader, f.Offset, -1, "count field outside input")
		}
		n := int64(v) - f.Bias
		if n <= 0 || n > format.MaxTableEntries {
			return nil, scanErr(ErrNoValidPointerTable, f.Offset, -1, "count field holds %d", n)
		}
		count = int(n)
	}
	if count > 0 && l.SentinelEntry {
		count++
	}
	if count > 0 {
		end, err := buf.CheckTableBounds(size, off, count, w)
		if err != nil {
			return nil, scanErr(ErrTruncatedHeader, off, -1, "%v", err)
		}
		if l.TableEnd > 0 && end > l.TableEnd {
			return nil, scanErr(ErrNoValidPointerTable, off, -1, "%d entries run past table end 0x%X", count, l.TableEnd)
		}
	}

	targets := make([]int, 0, 64)
	first := size // lowest target seen; the table cannot run into it
	for k := 0; count < 0 || k < count; k++ {
		pos := off + k*w
		if count < 0 {
			if l.TableEnd > 0 && pos+w > l.TableEnd {
				break
			}
			if pos+w > first {
				break
			}
			if k >= format.MaxTableEntries {
				return nil, scanErr(ErrNoValidPointerTable, pos, k, "no terminator within %d entries", k)
			}
		}

		v, ok := buf.Uint(c.raw, pos, w, c.order)
		if !ok {
			if l.TableEnd > 0 {
				return nil, scanErr(ErrTruncatedHeader, pos, k, "table end 0x%X is past end of input", l.TableEnd)
			}
			return nil, scanErr(ErrNoValidPointerTable, pos, k, "no terminator before end of input")
		}
		t := c.resolve(v, pos)

		if count < 0 {
			// A pointer at the end of input still counts: the last region
			// may be empty.
			if v == 0 || t > int64(size) || t < int64(pos+w) {
				break
			}
		} else if t < 0 || t > int64(size) {
			return nil, scanErr(ErrRecordOutOfBounds, pos, k, "entry resolves to 0x%X, input has %d bytes", t, size)
		}

		targets = append(targets, int(t))
		if int(t) < first {
			first = int(t)
		}
	}

	n := len(targets)
	if l.SentinelEntry {
		n--
	}
	if n <= 0 {
		return nil, scanErr(ErrNoValidPointerTable, off, -1, "table holds no entries")
	}

	tableEnd := off + len(targets)*w
	for k, t := range targets {
		if t < tableEnd {
			return nil, scanErr(ErrNoValidPointerTable, off+k*w, k, "entry resolves to 0x%X inside the table", t)
		}
		if k > 0 && t < targets[k-1] {
			return nil, scanErr(ErrNoValidPointerTable, off+k*w, k, "entry resolves to 0x%X, before entry %d", t, k-1)
		}
	}
	return targets, nil
}

// splitSentinel separates the sentinel from the record or block targets and
// returns the end of data they cover.
func (c *Container) splitSentinel(targets []int) ([]int, int) {
	if c.layout.SentinelEntry {
		return targets[:len(targets)-1], targets[len(targets)-1]
	}
	return targets, len(c.raw)
}

func (c *Container) entryPos(k int) int {
	return c.layout.PointerTableOffset + k*c.layout.PointerWidth
}

func (c *Container) addSentinel(k, end int) {
	if c.layout.SentinelEntry {
		c.entries = append(c.entries, entry{pos: c.entryPos(k), anchor: anchorEnd, ref: end})
	}
}

func (c *Container) scanTable() error {
	targets, err := c.readTable()
	if err != nil {
		return err
	}
	recs, end := c.splitSentinel(targets)
	w := c.layout.LengthPrefixWidth

	for k, t := range recs {
		bound := end
		if k+1 < len(recs) {
			bound = recs[k+1]
		}
		if w > 0 && t == bound && k == len(recs)-1 {
			// No room for a prefix: the entry marks the end of data.
			c.entries = append(c.entries, entry{pos: c.entryPos(k), anchor: anchorOffset, ref: t})
			break
		}
		if w > 0 && c.layout.PrefixTextOnly {
			if kind := c.classify(t, 0, bound-t); kind != KindText {
				hw, n := 0, bound-t
				if kind == KindOpaque {
					hw, n = c.opaqueHeader(t, bound)
				}
				c.addRecord(t+hw, hw, n, -1, kind)
				c.entries = append(c.entries, entry{pos: c.entryPos(k), anchor: anchorRecord, ref: len(c.records) - 1})
				continue
			}
		}
		start := t + w
		length := bound - t
		if w > 0 {
			v, ok := buf.Uint(c.raw, t, w, c.order)
			if !ok || start > bound {
				return scanErr(ErrRecordOutOfBounds, t, k, "length prefix crosses the next record")
			}
			if v > uint64(bound-start) {
				return scanErr(ErrRecordOutOfBounds, t, k, "record declares %d bytes, region holds %d", v, bound-start)
			}
			length = int(v)
		}
		if length == 0 && c.layout.ZeroLength == ZeroLengthTerminate {
			// The remaining entries are not records but still point into
			// data that later edits move.
			for j := k; j < len(recs); j++ {
				c.entries = append(c.entries, entry{pos: c.entryPos(j), anchor: anchorOffset, ref: recs[j]})
			}
			break
		}
		c.addRecord(start, w, length, -1, c.classify(start, w, length))
		c.entries = append(c.entries, entry{pos: c.entryPos(k), anchor: anchorRecord, ref: len(c.records) - 1})
	}
	if len(c.records) == 0 {
		return scanErr(ErrNoValidPointerTable, recs[0], 0, "first record is empty")
	}
	c.addSentinel(len(recs), end)
	c.header = c.records[0].RegionStart()
	return nil
}

func (c *Container) scanBlocks() error {
	targets, err := c.readTable()
	if err != nil {
		return err
	}
	starts, end := c.splitSentinel(targets)
	l := c.layout
	w := l.LengthPrefixWidth
	hs := l.Block.HeaderSize

	for b, t := range starts {
		bound := end
		if b+1 < len(starts) {
			bound = starts[b+1]
		}
		if t+hs > bound {
			return scanErr(ErrRecordOutOfBounds, t, b, "block header of %d bytes crosses the next block", hs)
		}
		blk := Block{Index: b, Start: t, HeaderSize: hs, First: len(c.records)}

		cursor := t + hs
		for cursor+w <= bound {
			v, _ := buf.Uint(c.raw, cursor, w, c.order)
			if v == 0 && l.ZeroLength == ZeroLengthTerminate {
				break
			}
			if l.MaxRecordLength > 0 && v > uint64(l.MaxRecordLength) {
				break
			}
			if v > uint64(bound-cursor-w) {
				break
			}
			start := cursor + w
			c.addRecord(start, w, int(v), b, c.classify(start, w, int(v)))
			cursor = start + int(v)
		}

		blk.Count = len(c.records) - blk.First
		c.blocks = append(c.blocks, blk)
		c.entries = append(c.entries, entry{pos: c.entryPos(b), anchor: anchorBlock, ref: b})
	}
	c.addSentinel(len(starts), end)
	c.header = starts[0]
	return nil
}

func (c *Container) scanInline() error {
	l := c.layout
	size := len(c.raw)
	if l.ScanStart >= size {
		return scanErr(ErrTruncatedHeader, l.ScanStart, -1, "scan start is past end of input (%d bytes)", size)
	}
	w := l.LengthPrefixWidth
	textDone := false

	filler := -1
	flush := func(end int) {
		if filler >= 0 && end > filler {
			c.addRecord(filler, 0, end-filler, -1, KindOpaque)
		}
		filler = -1
	}

	cursor := l.ScanStart
	for cursor < size {
		if r, ok := l.protectedAt(cursor); ok {
			flush(cursor)
			end := min(r.End, size)
			c.addRecord(cursor, 0, end-cursor, -1, KindProtected)
			cursor = end
			continue
		}

		if !textDone {
			if n, ok := c.inlineText(cursor, w); ok {
				flush(cursor)
				c.addRecord(cursor+w, w, n, -1, KindText)
				cursor += w + n
				continue
			}
			if v, ok := buf.Uint(c.raw, cursor, w, c.order); ok && v == 0 && l.ZeroLength == ZeroLengthTerminate {
				textDone = true
			}
		}

		if filler < 0 {
			filler = cursor
		}
		cursor++
	}
	flush(size)
	c.header = l.ScanStart
	return nil
}

// inlineText reports whether a plausible length-prefixed text starts at
// cursor and returns its payload length.
func (c *Container) inlineText(cursor, w int) (int, bool) {
	l := c.layout
	v, ok := buf.Uint(c.raw, cursor, w, c.order)
	if !ok {
		return 0, false
	}
	if v == 0 {
		return 0, l.ZeroLength == ZeroLengthEmpty
	}
	if l.MaxRecordLength > 0 && v > uint64(l.MaxRecordLength) {
		return 0, false
	}
	start := cursor + w
	if v > uint64(len(c.raw)-start) {
		return 0, false
	}
	end := start + int(v)
	if l.overlapsProtected(cursor, end) {
		return 0, false
	}
	if !textenc.Plausible(c.codec, c.raw[start:end], l.MaxCodePoint) {
		return 0, false
	}
	return int(v), true
}

// opaqueHeader returns the length header width and payload length of the
// opaque region [t, bound). A header that does not fit the region is treated
// as payload.
func (c *Container) opaqueHeader(t, bound int) (int, int) {
	l := c.layout
	for _, op := range l.OpaquePrefixes {
		if !format.Sniff(c.raw[t:bound], l.SniffWindow, [][]byte{op.Signature}) {
			continue
		}
		if op.Width == 0 {
			break
		}
		v, ok := buf.Uint(c.raw, t, op.Width, c.order)
		if !ok || t+op.Width > bound || v > uint64(bound-t-op.Width) {
			c.log.Warn("opaque length header does not fit its region",
				"offset", t, "width", op.Width, "stored", v, "region", bound-t)
			break
		}
		return op.Width, int(v)
	}
	return 0, bound - t
}

func (c *Container) addRecord(start, prefix, length, block int, kind Kind) {
	c.records = append(c.records, Record{
		Index:       len(c.records),
		Kind:        kind,
		Start:       start,
		PrefixWidth: prefix,
		Length:      length,
		Block:       block,
	})
}

func (c *Container) classify(start, prefix, length int) Kind {
	l := c.layout
	if _, ok := l.protectedAt(start); ok {
		return KindProtected
	}
	if _, ok := l.protectedAt(start - prefix); ok {
		return KindProtected
	}
	if l.BinaryOnly {
		return KindOpaque
	}
	if len(l.BinarySignatures) > 0 && format.Sniff(c.raw[start:start+length], l.SniffWindow, l.BinarySignatures) {
		return KindOpaque
	}
	return KindText
}

// checkSizeField confirms the size field lies in the header and notes
// whether it matched the input length at load.
func (c *Container) checkSizeField() error {
	f := c.layout.SizeField
	if !f.Enabled() {
		return nil
	}
	v, ok := buf.Uint(c.raw, f.Offset, f.Width, c.order)
	if !ok {
		return scanErr(ErrTruncatedHeader, f.Offset, -1, "size field outside input")
	}
	if f.Offset+f.Width > c.header {
		return scanErr(ErrInvalidLayout, f.Offset, -1, "size field overlaps record data at 0x%X", c.header)
	}
	for _, e := range c.entries {
		if f.Offset < e.pos+c.layout.PointerWidth && e.pos < f.Offset+f.Width {
			return scanErr(ErrInvalidLayout, f.Offset, -1, "size field overlaps table entry at 0x%X", e.pos)
		}
	}
	want := int64(len(c.raw)) + f.Bias
	c.sizeTracked = int64(v) == want
	if !c.sizeTracked {
		c.log.Warn("size field does not match input length",
			"offset", f.Offset, "stored", v, "expected", want)
	}
	return nil
}
