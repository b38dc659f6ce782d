// Package translate moves the text records of a container in and out of
// JSON documents for translation work.
//
// Three document shapes are understood:
//
//	["first", "second"]                          list: one string per text record, in order
//	{"0": "first", "3": "second"}                keyed: record index to text
//	[{"index": 0, "offset": 6, "text": "first"}] entries: index, load offset and text
//
// Import applies every entry it can and reports the rest together.
package translate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/joshuapare/reskit/container"
)

// Format selects a document shape.
type Format int

const (
	FormatAuto Format = iota // detect on import, entries on export
	FormatList
	FormatKeyed
	FormatEntries
)

var formatNames = map[Format]string{
	FormatAuto:    "auto",
	FormatList:    "list",
	FormatKeyed:   "keyed",
	FormatEntries: "entries",
}

func (f Format) String() string {
	if n, ok := formatNames[f]; ok {
		return n
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat resolves a format name.
func ParseFormat(s string) (Format, error) {
	for f, n := range formatNames {
		if strings.EqualFold(s, n) {
			return f, nil
		}
	}
	return FormatAuto, fmt.Errorf("translate: unknown format %q", s)
}

var (
	// ErrUnknownShape is returned when a document is none of the known shapes.
	ErrUnknownShape = errors.New("translate: unrecognized document shape")

	// ErrCountMismatch reports a list document whose length differs from
	// the number of text records.
	ErrCountMismatch = errors.New("translate: entry count does not match text records")

	// ErrOffsetMismatch reports an entry whose offset no longer matches the
	// record it names.
	ErrOffsetMismatch = errors.New("translate: offset does not match record")

	// ErrNotText reports an entry naming a record that is not text.
	ErrNotText = errors.New("translate: record is not text")
)

// Entry is one text record in a document.
type Entry struct {
	Index  int    `json:"index"`
	Offset int    `json:"offset"`
	Text   string `json:"text"`
}

// EntryError ties an import failure to the entry that caused it.
type EntryError struct {
	Index int
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %d: %v", e.Index, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// Result summarizes an import.
type Result struct {
	Applied   int // records whose text changed
	Unchanged int // entries equal to the current text
	Failed    int
	Truncated []int // records cut to fit their length prefix
}

// Entries returns the decodable text records of c in index order, and the
// indices of text records that could not be decoded.
func Entries(c *container.Container) ([]Entry, []int) {
	var out []Entry
	var skipped []int
	for _, rec := range c.Records() {
		if rec.Kind != container.KindText {
			continue
		}
		content, err := c.Content(rec.Index)
		if err != nil {
			skipped = append(skipped, rec.Index)
			continue
		}
		out = append(out, Entry{Index: rec.Index, Offset: rec.Start, Text: content.String()})
	}
	return out, skipped
}

// Export writes the text records of c to w as an indented JSON document.
// It returns the number of records written; undecodable text records are
// left out.
func Export(w io.Writer, c *container.Container, f Format) (int, error) {
	entries, _ := Entries(c)

	var doc any
	switch f {
	case FormatList:
		list := make([]string, len(entries))
		for i, e := range entries {
			list[i] = e.Text
		}
		doc = list
	case FormatKeyed:
		keyed := make(map[string]string, len(entries))
		for _, e := range entries {
			keyed[strconv.Itoa(e.Index)] = e.Text
		}
		doc = keyed
	case FormatAuto, FormatEntries:
		if entries == nil {
			entries = []Entry{}
		}
		doc = entries
	default:
		return 0, fmt.Errorf("translate: unknown format %d", int(f))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Import reads a document from r and applies it to c. Entries that fail are
// skipped; their errors are joined into the returned error, each an
// *EntryError. A document that cannot be parsed changes nothing.
func Import(r io.Reader, c *container.Container, f Format) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, err
	}
	doc, err := decode(data, c, f)
	if err != nil {
		return Result{}, err
	}
	// Offsets in a document refer to the container as it was exported.
	starts := make(map[int]int, c.Len())
	for _, rec := range c.Records() {
		starts[rec.Index] = rec.Start
	}

	var res Result
	var errs []error
	if doc.mismatch != nil {
		errs = append(errs, doc.mismatch)
	}
	fail := func(idx int, err error) {
		res.Failed++
		errs = append(errs, &EntryError{Index: idx, Err: err})
	}

	for _, e := range doc.entries {
		rec, err := c.Record(e.Index)
		if err != nil {
			fail(e.Index, err)
			continue
		}
		if rec.Kind != container.KindText {
			fail(e.Index, ErrNotText)
			continue
		}
		if doc.offsets && e.Offset != starts[e.Index] {
			fail(e.Index, fmt.Errorf("%w: document has 0x%X, record starts at 0x%X", ErrOffsetMismatch, e.Offset, starts[e.Index]))
			continue
		}
		if cur, err := c.Content(e.Index); err == nil && cur.String() == e.Text {
			res.Unchanged++
			continue
		}
		edit, err := c.SetText(e.Index, e.Text)
		if err != nil {
			fail(e.Index, err)
			continue
		}
		res.Applied++
		if edit.Truncated {
			res.Truncated = append(res.Truncated, e.Index)
		}
	}
	return res, errors.Join(errs...)
}

type document struct {
	entries  []Entry
	offsets  bool  // entries carry offsets to check
	mismatch error // list length differs from the text record count
}

func decode(data []byte, c *container.Container, f Format) (document, error) {
	var doc document
	if f == FormatAuto {
		var err error
		if f, err = detect(data); err != nil {
			return doc, err
		}
	}

	switch f {
	case FormatList:
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return doc, fmt.Errorf("translate: list document: %w", err)
		}
		current, _ := Entries(c)
		if len(list) != len(current) {
			doc.mismatch = fmt.Errorf("%w: document has %d, container has %d", ErrCountMismatch, len(list), len(current))
		}
		for k, s := range list[:min(len(list), len(current))] {
			doc.entries = append(doc.entries, Entry{Index: current[k].Index, Text: s})
		}
		return doc, nil

	case FormatKeyed:
		var keyed map[string]string
		if err := json.Unmarshal(data, &keyed); err != nil {
			return doc, fmt.Errorf("translate: keyed document: %w", err)
		}
		for k, s := range keyed {
			idx, err := strconv.Atoi(k)
			if err != nil || idx < 0 {
				return document{}, fmt.Errorf("translate: keyed document: key %q is not a record index", k)
			}
			doc.entries = append(doc.entries, Entry{Index: idx, Text: s})
		}
		sort.Slice(doc.entries, func(i, j int) bool { return doc.entries[i].Index < doc.entries[j].Index })
		return doc, nil

	case FormatEntries:
		var raw []struct {
			Index  *int    `json:"index"`
			Offset *int    `json:"offset"`
			Text   *string `json:"text"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return doc, fmt.Errorf("translate: entries document: %w", err)
		}
		doc.offsets = true
		for k, r := range raw {
			if r.Index == nil || r.Text == nil {
				return document{}, fmt.Errorf("translate: entries document: element %d needs index and text", k)
			}
			e := Entry{Index: *r.Index, Text: *r.Text}
			if r.Offset == nil {
				doc.offsets = false
			} else {
				e.Offset = *r.Offset
			}
			doc.entries = append(doc.entries, e)
		}
		return doc, nil
	}
	return doc, fmt.Errorf("translate: unknown format %d", int(f))
}

func detect(data []byte) (Format, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return FormatAuto, ErrUnknownShape
	}
	switch trimmed[0] {
	case '{':
		return FormatKeyed, nil
	case '[':
		var probe []json.RawMessage
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return FormatAuto, fmt.Errorf("translate: %w", err)
		}
		if len(probe) == 0 {
			return FormatList, nil
		}
		first := bytes.TrimSpace(probe[0])
		if len(first) > 0 && first[0] == '{' {
			return FormatEntries, nil
		}
		return FormatList, nil
	}
	return FormatAuto, ErrUnknownShape
}
