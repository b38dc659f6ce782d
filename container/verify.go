package container

import (
	"errors"
	"fmt"

	"github.com/joshuapare/reskit/internal/buf"
)

// ErrInconsistent is wrapped by every Verify failure.
var ErrInconsistent = errors.New("container: inconsistent state")

// Verify checks the container invariants: records ordered and inside the
// buffer, every table entry resolving to its target, length prefixes
// matching, protected payloads unchanged and the size field holding the
// container length. All violations are joined into one error.
func (c *Container) Verify() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInconsistent, fmt.Sprintf(format, args...)))
	}

	prevEnd := c.header
	for i, r := range c.records {
		if r.Index != i {
			bad("record %d carries index %d", i, r.Index)
		}
		if r.RegionStart() < prevEnd {
			bad("record %d starts at 0x%X, before the end of the previous region 0x%X", i, r.RegionStart(), prevEnd)
		}
		if r.End() > len(c.raw) {
			bad("record %d ends at 0x%X, past the buffer (%d bytes)", i, r.End(), len(c.raw))
			continue
		}
		if r.PrefixWidth > 0 {
			v, ok := buf.Uint(c.raw, r.RegionStart(), r.PrefixWidth, c.order)
			if !ok || v != uint64(r.Length) {
				bad("record %d length prefix holds %d, payload is %d bytes", i, v, r.Length)
			}
		}
		if r.Kind == KindProtected && c.hashRecord(i) != c.hashes[i] {
			bad("protected record %d at 0x%X changed", i, r.Start)
		}
		prevEnd = r.End()
	}

	for b, blk := range c.blocks {
		if b > 0 && blk.Start < c.blocks[b-1].Start {
			bad("block %d starts at 0x%X, before block %d", b, blk.Start, b-1)
		}
		if blk.Count > 0 && c.records[blk.First].RegionStart() < blk.Start+blk.HeaderSize {
			bad("block %d header overlaps record %d", b, blk.First)
		}
	}

	for k, e := range c.entries {
		v, ok := buf.Uint(c.raw, e.pos, c.layout.PointerWidth, c.order)
		if !ok {
			bad("table entry %d at 0x%X is outside the buffer", k, e.pos)
			continue
		}
		if got, want := c.resolve(v, e.pos), int64(c.target(e)); got != want {
			bad("table entry %d resolves to 0x%X, target is 0x%X", k, got, want)
		}
	}

	if f := c.layout.SizeField; f.Enabled() && c.sizeTracked {
		v, _ := buf.Uint(c.raw, f.Offset, f.Width, c.order)
		if int64(v) != int64(len(c.raw))+f.Bias {
			bad("size field holds %d, container is %d bytes", v, len(c.raw))
		}
	}

	return errors.Join(errs...)
}
