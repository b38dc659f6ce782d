package container

import (
	"bytes"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"

	"github.com/joshuapare/reskit/internal/buf"
)

// Serialize returns the container bytes. Length prefixes, table entries and
// the size field are derived again from the record metadata; every other
// byte is copied as is. The container is not modified.
func (c *Container) Serialize() ([]byte, error) {
	out := bytes.Clone(c.raw)

	for _, r := range c.records {
		if r.PrefixWidth == 0 {
			continue
		}
		if err := buf.PutUint(out, r.RegionStart(), r.PrefixWidth, c.order, uint64(r.Length)); err != nil {
			return nil, fmt.Errorf("serialize record %d prefix: %w", r.Index, err)
		}
	}

	// Entries dropped by a zero-length terminator are not tracked and keep
	// their original bytes.
	for k, e := range c.entries {
		v, ok := c.encodePointer(c.target(e), e.pos)
		if !ok {
			return nil, fmt.Errorf("serialize table entry %d: %w", k, ErrPointerOutOfRange)
		}
		if err := buf.PutUint(out, e.pos, c.layout.PointerWidth, c.order, v); err != nil {
			return nil, fmt.Errorf("serialize table entry %d: %w", k, err)
		}
	}

	if f := c.layout.SizeField; f.Enabled() && c.sizeTracked {
		if err := buf.PutUint(out, f.Offset, f.Width, c.order, uint64(int64(len(out))+f.Bias)); err != nil {
			return nil, fmt.Errorf("serialize size field: %w", err)
		}
	}
	return out, nil
}

// WriteTo writes the serialized container to w.
func (c *Container) WriteTo(w io.Writer) (int64, error) {
	out, err := c.Serialize()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(out)
	return int64(n), err
}

// Fingerprint returns the xxhash64 of the serialized container.
func (c *Container) Fingerprint() (uint64, error) {
	out, err := c.Serialize()
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(out), nil
}
