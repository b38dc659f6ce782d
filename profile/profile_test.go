package profile

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/reskit/container"
	"github.com/joshuapare/reskit/internal/format"
)

func TestBuiltin(t *testing.T) {
	tbl, err := Builtin()
	require.NoError(t, err)

	ids := tbl.IDs()
	assert.Equal(t, []string{
		"asterix-vikings", "asterix-obelix", "lng", "vivendi-pack", "rushhour3",
		"lang2me-be", "lang2me-le", "stolen60", "stolen60-be16",
	}, ids)
	for _, id := range ids {
		l, err := tbl.Layout(id)
		require.NoError(t, err, id)
		assert.Equal(t, id, l.Name)
		assert.NoError(t, l.Validate(), id)
	}
	assert.Equal(t, []string{"stolen60"}, tbl.Encodings())
}

func TestBuiltin_Vivendi(t *testing.T) {
	tbl, err := Builtin()
	require.NoError(t, err)
	l, err := tbl.Layout("vivendi-pack")
	require.NoError(t, err)

	assert.Equal(t, container.StrategyBlocks, l.Strategy)
	assert.Equal(t, 0x1000, l.PointerTableOffset)
	assert.Equal(t, container.BaseEntryEnd, l.PointerBase)
	assert.Equal(t, int64(-0x1000), l.PointerBias)
	assert.Equal(t, 10, l.PointerCount)
	assert.Equal(t, 4, l.Block.HeaderSize)
	assert.Equal(t, container.ZeroLengthTerminate, l.ZeroLength)
	assert.Equal(t, binary.BigEndian, l.ByteOrder)
}

func TestBuiltin_Asterix(t *testing.T) {
	tbl, err := Builtin()
	require.NoError(t, err)
	l, err := tbl.Layout("asterix-vikings")
	require.NoError(t, err)

	assert.True(t, l.PrefixTextOnly)
	assert.Equal(t, 0x278, l.TableEnd)
	assert.Equal(t, []container.Range{{Start: 0x2520, End: 0x992D}}, l.ProtectedRanges)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, l.BinarySignatures[0])
	assert.Equal(t, []byte("QYP6"), l.BinarySignatures[2])
	assert.Equal(t, []container.OpaquePrefix{
		{Signature: []byte("QYP6"), Width: 0},
		{Signature: []byte("PNG"), Width: 4},
	}, l.OpaquePrefixes)
}

func TestBuiltin_AsterixImageHeader(t *testing.T) {
	tbl, err := Builtin()
	require.NoError(t, err)
	l, err := tbl.Layout("asterix-vikings")
	require.NoError(t, err)

	// header(4), table padded with zeros to 0x278, one text and one image.
	raw := make([]byte, 0x278)
	binary.BigEndian.PutUint32(raw[4:], 0x278)
	binary.BigEndian.PutUint32(raw[8:], 0x278+5)
	raw = append(raw, 0, 3, 'a', 'b', 'c')
	raw = append(raw, 0, 0, 0, 10)
	raw = append(raw, format.PNGSignature...)
	raw = append(raw, 1, 2)

	c, err := container.Load(raw, l)
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
	rec, err := c.Record(1)
	require.NoError(t, err)
	assert.Equal(t, container.KindOpaque, rec.Kind)
	assert.Equal(t, 4, rec.PrefixWidth)

	img := append(append([]byte(nil), format.PNGSignature...), 7, 7, 7, 7)
	_, err = c.SetContent(1, container.Bytes(img))
	require.NoError(t, err)
	require.NoError(t, c.Verify())
	out, err := c.Serialize()
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 12}, out[0x278+5:0x278+9])
	assert.Equal(t, img, out[0x278+9:])
}

func TestBuiltin_LngRoundTrip(t *testing.T) {
	tbl, err := Builtin()
	require.NoError(t, err)
	l, err := tbl.Layout("lng")
	require.NoError(t, err)

	// size, version, count, three offsets stored two below their targets.
	raw := []byte{16, 0, 1, 2, 0, 9, 0, 11, 0, 14, 0, 'a', 'b', 'c', 'd', 'e'}
	c, err := container.Load(raw, l)
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	content, err := c.Content(1)
	require.NoError(t, err)
	assert.Equal(t, "cde", content.String())

	_, err = c.SetText(0, "abcd")
	require.NoError(t, err)
	out, err := c.Serialize()
	require.NoError(t, err)
	assert.Equal(t, []byte{18, 0, 1, 2, 0, 9, 0, 13, 0, 16, 0, 'a', 'b', 'c', 'd', 'c', 'd', 'e'}, out)
	assert.NoError(t, c.Verify())
}

func TestBuiltin_Stolen60(t *testing.T) {
	tbl, err := Builtin()
	require.NoError(t, err)
	l, err := tbl.Layout("stolen60")
	require.NoError(t, err)
	require.NotNil(t, l.Codec)
	assert.Equal(t, "table:stolen60", l.Codec.Name())

	c, err := container.Load([]byte{0x02, 0x08, 0x23}, l)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	content, err := c.Content(0)
	require.NoError(t, err)
	assert.Equal(t, "Hi", content.String())

	_, err = c.SetText(0, "Hi!")
	require.NoError(t, err)
	out, err := c.Serialize()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03, 0x08, 0x23, 0x38}, out)
}

func TestInt_Literals(t *testing.T) {
	doc := `
profiles:
  - id: hexy
    strategy: table
    pointer_table_offset: 0x10
    pointer_width: 2
    pointer_bias: -0x4
    table_end: 0o40
    zero_length: empty
`
	tbl, err := Parse([]byte(doc))
	require.NoError(t, err)
	l, err := tbl.Layout("hexy")
	require.NoError(t, err)
	assert.Equal(t, 16, l.PointerTableOffset)
	assert.Equal(t, int64(-4), l.PointerBias)
	assert.Equal(t, 32, l.TableEnd)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "profiles:\n  - id: a\n    zero_length: empty\n    pointer_width: 2\n    colour: red\n"},
		{"missing zero length", "profiles:\n  - id: a\n    pointer_width: 2\n"},
		{"duplicate id", "profiles:\n  - id: a\n    pointer_width: 2\n    zero_length: empty\n  - id: a\n    pointer_width: 2\n    zero_length: empty\n"},
		{"no id", "profiles:\n  - pointer_width: 2\n    zero_length: empty\n"},
		{"bad strategy", "profiles:\n  - id: a\n    strategy: spiral\n    zero_length: empty\n"},
		{"bad byte order", "profiles:\n  - id: a\n    pointer_width: 2\n    byte_order: middle\n    zero_length: empty\n"},
		{"bad integer", "profiles:\n  - id: a\n    pointer_width: 2\n    pointer_table_offset: ten\n    zero_length: empty\n"},
		{"bad signature", "profiles:\n  - id: a\n    pointer_width: 2\n    binary_signatures: [\"hex:ABC\"]\n    zero_length: empty\n"},
		{"unknown encoding", "profiles:\n  - id: a\n    pointer_width: 2\n    text_encoding: klingon\n    zero_length: empty\n"},
		{"run out of range", "encodings:\n  - name: t\n    runs:\n      - start: 0x100\n        chars: a\n"},
		{"encoding shadows builtin", "encodings:\n  - name: ascii\n    runs:\n      - start: 0\n        chars: a\n"},
		{"not yaml", "profiles: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.ErrorIs(t, err, ErrInvalidProfile)
		})
	}
}

func TestExtend(t *testing.T) {
	tbl, err := Builtin()
	require.NoError(t, err)

	doc := `
profiles:
  - id: rushhour3
    strategy: table
    pointer_table_offset: 3
    pointer_width: 2
    length_prefix_width: 2
    text_encoding: latin-1
    zero_length: empty
  - id: my-stolen
    strategy: inline
    length_prefix_width: 1
    text_encoding: stolen60
    zero_length: skip
`
	require.NoError(t, tbl.Extend([]byte(doc)))

	l, err := tbl.Layout("rushhour3")
	require.NoError(t, err)
	assert.Equal(t, "latin-1", l.TextEncoding)
	assert.False(t, l.SizeField.Enabled())

	l, err = tbl.Layout("my-stolen")
	require.NoError(t, err)
	assert.Equal(t, "table:stolen60", l.Codec.Name())

	ids := tbl.IDs()
	assert.Equal(t, "my-stolen", ids[len(ids)-1])
	assert.Len(t, ids, 10)
}

func TestExtend_InvalidLeavesTable(t *testing.T) {
	tbl, err := Builtin()
	require.NoError(t, err)
	before := tbl.IDs()

	doc := "encodings:\n  - name: extra\n    runs:\n      - start: 0\n        chars: ab\nprofiles:\n  - id: fresh\n    pointer_width: 2\n    zero_length: empty\n  - id: broken\n    pointer_width: 3\n    zero_length: empty\n"
	require.ErrorIs(t, tbl.Extend([]byte(doc)), ErrInvalidProfile)
	assert.Equal(t, before, tbl.IDs())
	assert.Equal(t, []string{"stolen60"}, tbl.Encodings())
}

func TestGet_Unknown(t *testing.T) {
	tbl, err := Builtin()
	require.NoError(t, err)
	_, err = tbl.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownProfile)
	_, err = tbl.Layout("nope")
	assert.ErrorIs(t, err, ErrUnknownProfile)
}

func TestDetect(t *testing.T) {
	tbl, err := Builtin()
	require.NoError(t, err)
	assert.Equal(t, []string{"lng"}, tbl.Detect("/games/EN.LNG"))
	assert.Empty(t, tbl.Detect("readme.txt"))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles:\n  - id: mine\n    pointer_width: 1\n    zero_length: terminate\n"), 0o644))

	tbl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"mine"}, tbl.IDs())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
