package container

import (
	"fmt"

	"github.com/joshuapare/reskit/container/dirty"
	"github.com/joshuapare/reskit/internal/buf"
	"github.com/joshuapare/reskit/internal/journal"
)

// snapshot is the metadata an edit may change.
type snapshot struct {
	records []Record
	blocks  []Block
	entries []entry
	ranges  []dirty.Range
}

func (c *Container) snapshot() snapshot {
	return snapshot{
		records: append([]Record(nil), c.records...),
		blocks:  append([]Block(nil), c.blocks...),
		entries: append([]entry(nil), c.entries...),
		ranges:  c.dirty.Snapshot(),
	}
}

// apply writes payload into record i, moving every later byte by the length
// delta and rewriting the table entries, length prefix and size field that
// depend on it. On error the container is restored from the journal.
func (c *Container) apply(i int, payload []byte) error {
	rec := c.records[i]
	oldEnd := len(c.raw)
	delta := len(payload) - rec.Length
	shiftStart := rec.End()
	newEnd := oldEnd + delta

	log, err := c.journal(rec.RegionStart(), oldEnd)
	if err != nil {
		return &EditError{Op: "set", Index: i, Offset: rec.Start, Err: err}
	}
	snap := c.snapshot()

	// Move [shiftStart, oldEnd) by delta. Growing makes room at the end
	// first; shrinking drops the end after the move.
	if delta > 0 {
		c.raw = append(c.raw, make([]byte, delta)...)
		buf.Move(c.raw, shiftStart+delta, shiftStart, oldEnd-shiftStart)
	} else if delta < 0 {
		buf.Move(c.raw, shiftStart+delta, shiftStart, oldEnd-shiftStart)
		c.raw = c.raw[:newEnd]
	}

	c.records[i].Length = len(payload)
	if delta != 0 {
		for k := i + 1; k < len(c.records); k++ {
			c.records[k].Start += delta
		}
		if rec.Block >= 0 {
			for b := rec.Block + 1; b < len(c.blocks); b++ {
				c.blocks[b].Start += delta
			}
		}
		for k := range c.entries {
			e := &c.entries[k]
			if (e.anchor == anchorEnd || e.anchor == anchorOffset) && e.ref >= shiftStart {
				e.ref += delta
			}
		}
	}

	copy(c.raw[rec.Start:], payload)
	if rec.PrefixWidth > 0 {
		if err := buf.PutUint(c.raw, rec.RegionStart(), rec.PrefixWidth, c.order, uint64(len(payload))); err != nil {
			c.rollback(log, snap)
			return &EditError{Op: "set", Index: i, Offset: rec.RegionStart(), Err: ErrLengthOverflow, Msg: err.Error()}
		}
	}

	if delta != 0 {
		if err := c.repoint(i, rec.Block); err != nil {
			c.rollback(log, snap)
			return err
		}
		if err := c.writeSizeField(i); err != nil {
			c.rollback(log, snap)
			return err
		}
	}

	c.markDirty(rec, len(payload), shiftStart, delta)
	c.records[i].Dirty = c.hashRecord(i) != c.hashes[i]

	c.log.Debug("record repointed",
		"index", i,
		"offset", rec.Start,
		"delta", delta,
		"size", len(c.raw),
	)
	return nil
}

// journal saves every byte span an edit touching [from, end) may change.
func (c *Container) journal(from, end int) (*journal.Log, error) {
	log := journal.Begin(c.raw)
	if err := log.Save(c.raw, from, end-from, "tail"); err != nil {
		return nil, err
	}
	if n := len(c.entries); n > 0 {
		first := c.entries[0].pos
		last := c.entries[n-1].pos + c.layout.PointerWidth
		if first < from {
			if err := log.Save(c.raw, first, min(last, from)-first, "table"); err != nil {
				return nil, err
			}
		}
	}
	if f := c.layout.SizeField; f.Enabled() {
		if err := log.Save(c.raw, f.Offset, f.Width, "size"); err != nil {
			return nil, err
		}
	}
	return log, nil
}

func (c *Container) rollback(log *journal.Log, snap snapshot) {
	raw, err := log.Rollback(c.raw)
	c.raw = raw
	c.records = snap.records
	c.blocks = snap.blocks
	c.entries = snap.entries
	c.dirty.Restore(snap.ranges)
	if err != nil {
		c.log.Error("rollback failed", "err", err)
		return
	}
	c.log.Debug("edit rolled back", "spans", log.Len(), "size", log.Length(), "journal", log.Export())
}

// moved reports whether the target of e moved after an edit of record i in
// block blk.
func (c *Container) moved(e entry, i, blk int) bool {
	switch e.anchor {
	case anchorRecord:
		return e.ref > i
	case anchorBlock:
		return blk >= 0 && e.ref > blk
	}
	return true
}

// repoint rewrites every table entry whose target moved.
func (c *Container) repoint(i, blk int) error {
	w := c.layout.PointerWidth
	for k, e := range c.entries {
		if !c.moved(e, i, blk) {
			continue
		}
		target := c.target(e)
		v, ok := c.encodePointer(target, e.pos)
		if !ok {
			return &EditError{Op: "repoint", Index: i, Offset: e.pos, Err: ErrPointerOutOfRange,
				Msg: fmt.Sprintf("table entry %d cannot address 0x%X in %d bytes", k, target, w)}
		}
		if err := buf.PutUint(c.raw, e.pos, w, c.order, v); err != nil {
			return &EditError{Op: "repoint", Index: i, Offset: e.pos, Err: ErrPointerOutOfRange, Msg: err.Error()}
		}
	}
	return nil
}

func (c *Container) writeSizeField(i int) error {
	f := c.layout.SizeField
	if !f.Enabled() || !c.sizeTracked {
		return nil
	}
	v := int64(len(c.raw)) + f.Bias
	if v < 0 || uint64(v) > buf.MaxUint(f.Width) {
		return &EditError{Op: "repoint", Index: i, Offset: f.Offset, Err: ErrPointerOutOfRange,
			Msg: fmt.Sprintf("size field cannot hold %d in %d bytes", v, f.Width)}
	}
	if err := buf.PutUint(c.raw, f.Offset, f.Width, c.order, uint64(v)); err != nil {
		return &EditError{Op: "repoint", Index: i, Offset: f.Offset, Err: ErrPointerOutOfRange, Msg: err.Error()}
	}
	return nil
}

func (c *Container) markDirty(rec Record, newLen, shiftStart, delta int) {
	c.dirty.Shift(shiftStart, int64(delta))
	c.dirty.Add(rec.RegionStart(), rec.PrefixWidth+newLen)
	if delta == 0 {
		return
	}
	tail := rec.Start + newLen
	c.dirty.Add(tail, len(c.raw)-tail)
	for _, e := range c.entries {
		if c.moved(e, rec.Index, rec.Block) {
			c.dirty.Add(e.pos, c.layout.PointerWidth)
		}
	}
	if f := c.layout.SizeField; f.Enabled() && c.sizeTracked {
		c.dirty.Add(f.Offset, f.Width)
	}
}
