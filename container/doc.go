// Package container loads, edits and re-serializes game resource containers:
// a pointer table followed by variable-length records of text, binary blobs
// or protected system data.
//
// # Overview
//
// A Layout describes where the table lives, how wide its entries are, what
// they are relative to and how records are delimited. Load scans raw bytes
// with a Layout and returns a Container that owns a private copy of them:
//
//	c, err := container.Load(raw, layout)
//	if err != nil {
//	    return err
//	}
//	edit, err := c.SetContent(3, container.Text("Bonjour"))
//	// edit.Delta is the change in container length
//	out, err := c.Serialize()
//
// # Edits
//
// SetContent encodes the new value, then moves every byte after the edited
// record by the length delta and rewrites each table entry whose target
// moved, along with the length prefix and any header size field. If a moved
// pointer no longer fits its entry width the edit is rolled back and the
// container is exactly as it was before the call.
//
// Protected records (those starting inside a configured protected range)
// are never decoded as text and never edited.
//
// # Layouts
//
// Three discovery strategies are supported:
//
//   - StrategyTable: a table at a fixed offset, ended by a count, a count
//     field, a terminator value or a table end bound.
//   - StrategyInline: no table; a cursor walk accepting length-prefixed spans
//     that decode as plausible text, everything else kept as opaque filler.
//   - StrategyBlocks: an outer table of blocks, each a fixed header followed
//     by length-prefixed records.
//
// # Thread Safety
//
// A Container is not safe for concurrent use. Independent containers may be
// used from different goroutines.
package container
