// Package dirty tracks which byte ranges of an in-memory container buffer
// have been modified since load.
//
// Ranges are appended cheaply on every write and only sorted and merged when
// they are read back. Because edits in a container move every byte after the
// edited record, the tracker also knows how to shift and clamp the ranges it
// already holds so they keep describing the same logical bytes.
package dirty

import (
	"sort"
)

// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
const defaultRangeCapacity = 64

// Range represents a dirty byte range (absolute buffer offsets).
type Range struct {
	Off int64 // Absolute offset in the buffer
	Len int64 // Length in bytes
}

// End returns the exclusive end offset of the range.
func (r Range) End() int64 { return r.Off + r.Len }

// Tracker accumulates dirty ranges.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Tracker struct {
	ranges []Range
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		ranges: make([]Range, 0, defaultRangeCapacity),
	}
}

// Add records a dirty range. Empty and negative lengths are ignored.
func (t *Tracker) Add(off, length int) {
	if length <= 0 || off < 0 {
		return
	}
	t.ranges = append(t.ranges, Range{
		Off: int64(off),
		Len: int64(length),
	})
}

// Shift moves every range that starts at or after from by delta bytes.
//
// A range straddling from keeps its start and has its end moved, which is
// what happens to the bytes of a record when its tail is moved. Ranges that
// collapse to nothing are dropped.
func (t *Tracker) Shift(from int, delta int64) {
	if delta == 0 || len(t.ranges) == 0 {
		return
	}
	f := int64(from)
	kept := t.ranges[:0]
	for _, r := range t.ranges {
		switch {
		case r.Off >= f:
			r.Off += delta
		case r.End() > f:
			r.Len += delta
		}
		if r.Off < 0 {
			r.Len += r.Off
			r.Off = 0
		}
		if r.Len > 0 {
			kept = append(kept, r)
		}
	}
	t.ranges = kept
}

// Empty reports whether no ranges have been recorded.
func (t *Tracker) Empty() bool {
	return len(t.ranges) == 0
}

// Snapshot returns a copy of the raw ranges for a later Restore.
func (t *Tracker) Snapshot() []Range {
	result := make([]Range, len(t.ranges))
	copy(result, t.ranges)
	return result
}

// Restore replaces the tracked ranges with a previous Snapshot.
func (t *Tracker) Restore(ranges []Range) {
	t.ranges = append(t.ranges[:0], ranges...)
}

// Ranges returns the dirty ranges sorted and merged with byte granularity.
func (t *Tracker) Ranges() []Range {
	return t.Coalesced(1)
}

// Coalesced aligns all ranges to align-byte boundaries, sorts them, and
// merges overlapping or adjacent ranges. An align below 1 is treated as 1.
//
// Returns a new slice of non-overlapping, sorted ranges.
func (t *Tracker) Coalesced(align int64) []Range {
	if len(t.ranges) == 0 {
		return nil
	}
	if align < 1 {
		align = 1
	}

	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		// Round down start to the alignment boundary
		start := (r.Off / align) * align

		// Round up end
		end := r.End()
		if end%align != 0 {
			end = ((end / align) + 1) * align
		}

		aligned[i] = Range{
			Off: start,
			Len: end - start,
		}
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]

	for i := 1; i < len(aligned); i++ {
		next := aligned[i]

		if next.Off <= current.End() {
			end := current.End()
			if next.End() > end {
				end = next.End()
			}
			current.Len = end - current.Off
		} else {
			merged = append(merged, current)
			current = next
		}
	}

	merged = append(merged, current)

	return merged
}
