package container

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutValidate(t *testing.T) {
	_, base := threeRecords()
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(l *Layout)
	}{
		{"zero length unset", func(l *Layout) { l.ZeroLength = ZeroLengthUnset }},
		{"pointer width 3", func(l *Layout) { l.PointerWidth = 3 }},
		{"prefix width 4", func(l *Layout) { l.LengthPrefixWidth = 4 }},
		{"count and count field", func(l *Layout) { l.CountField = Field{Offset: 0, Width: 1} }},
		{"negative table offset", func(l *Layout) { l.PointerTableOffset = -1 }},
		{"skip on table layout", func(l *Layout) { l.ZeroLength = ZeroLengthSkip }},
		{"unknown encoding", func(l *Layout) { l.TextEncoding = "klingon" }},
		{"empty protected range", func(l *Layout) { l.ProtectedRanges = []Range{{Start: 4, End: 4}} }},
		{"bad size field width", func(l *Layout) { l.SizeField = Field{Width: 3} }},
		{"table end too small", func(l *Layout) { l.TableEnd = 1 }},
		{"inline without prefix", func(l *Layout) {
			l.Strategy = StrategyInline
			l.PointerCount = 0
		}},
		{"blocks without prefix", func(l *Layout) { l.Strategy = StrategyBlocks }},
		{"unknown strategy", func(l *Layout) { l.Strategy = Strategy(9) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := base
			tt.mutate(&l)
			assert.ErrorIs(t, l.Validate(), ErrInvalidLayout)
		})
	}
}

func TestLayoutDefaults(t *testing.T) {
	_, l := threeRecords()
	r, err := l.resolve()
	require.NoError(t, err)
	assert.Equal(t, binary.BigEndian, r.order)
	assert.Equal(t, "ascii", r.codec.Name())

	l.TextEncoding = ""
	r, err = l.resolve()
	require.NoError(t, err)
	assert.Equal(t, "utf-8", r.codec.Name())
}

func TestParseNames(t *testing.T) {
	s, err := ParseStrategy("Blocks")
	require.NoError(t, err)
	assert.Equal(t, StrategyBlocks, s)
	s, err = ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyTable, s)
	_, err = ParseStrategy("tree")
	assert.ErrorIs(t, err, ErrInvalidLayout)

	b, err := ParsePointerBase("entry_end")
	require.NoError(t, err)
	assert.Equal(t, BaseEntryEnd, b)
	assert.Equal(t, "table_start", BaseTableStart.String())

	z, err := ParseZeroLength("terminate")
	require.NoError(t, err)
	assert.Equal(t, ZeroLengthTerminate, z)
	_, err = ParseZeroLength("")
	assert.ErrorIs(t, err, ErrInvalidLayout)
	assert.Equal(t, "unset", ZeroLengthUnset.String())

	o, err := ParseOverflow("truncate")
	require.NoError(t, err)
	assert.Equal(t, OverflowTruncate, o)
	assert.Equal(t, "fail", OverflowFail.String())
}

func TestLayoutCeiling(t *testing.T) {
	l := Layout{}
	assert.Equal(t, -1, l.ceiling(0))
	assert.Equal(t, 255, l.ceiling(1))
	assert.Equal(t, 65535, l.ceiling(2))

	l.MaxRecordLength = 100
	assert.Equal(t, 100, l.ceiling(0))
	assert.Equal(t, 100, l.ceiling(1))
	l.MaxRecordLength = 1000
	assert.Equal(t, 255, l.ceiling(1))
}

func TestRange(t *testing.T) {
	r := Range{Start: 10, End: 20}
	assert.True(t, r.Contains(10))
	assert.True(t, r.Contains(19))
	assert.False(t, r.Contains(20))
	assert.True(t, r.Overlaps(5, 11))
	assert.False(t, r.Overlaps(20, 30))
	assert.False(t, r.Overlaps(0, 10))
}
