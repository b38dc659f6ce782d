package container

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialize_RoundTrip(t *testing.T) {
	cases := map[string]func() ([]byte, Layout){
		"table":    threeRecords,
		"prefixed": prefixed255,
		"blocks":   blockContainer,
		"inline":   inlineContainer,
	}
	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			raw, l := build()
			c := mustLoad(t, raw, l)
			assert.Equal(t, raw, serialize(t, c))

			fp1, err := c.Fingerprint()
			require.NoError(t, err)
			c2 := mustLoad(t, raw, l)
			fp2, err := c2.Fingerprint()
			require.NoError(t, err)
			assert.Equal(t, fp1, fp2)
		})
	}
}

func TestSerialize_DoesNotMutate(t *testing.T) {
	raw, l := threeRecords()
	c := mustLoad(t, raw, l)

	out := serialize(t, c)
	out[0] = 0xFF
	assert.Equal(t, raw, c.Bytes())
	assert.Equal(t, raw, serialize(t, c))
}

func TestSerialize_RederivesPrefixes(t *testing.T) {
	raw, l := prefixed255()
	c := mustLoad(t, raw, l)

	// A stale prefix in the buffer is replaced by the record length.
	c.raw[260] = 9
	out := serialize(t, c)
	assert.Equal(t, byte(2), out[260])
	assert.Error(t, c.Verify())
}

func TestSerialize_Deterministic(t *testing.T) {
	raw, l := blockContainer()
	edits := []struct {
		i int
		s string
	}{{1, "long text"}, {0, ""}, {2, "y"}, {1, "d"}}

	run := func() []byte {
		c := mustLoad(t, raw, l)
		for _, e := range edits {
			_, err := c.SetText(e.i, e.s)
			require.NoError(t, err)
		}
		return serialize(t, c)
	}
	assert.Equal(t, run(), run())
}

func TestWriteTo(t *testing.T) {
	raw, l := threeRecords()
	c := mustLoad(t, raw, l)

	var b bytes.Buffer
	n, err := c.WriteTo(&b)
	require.NoError(t, err)
	assert.Equal(t, int64(len(raw)), n)
	assert.Equal(t, raw, b.Bytes())
}

func TestDirtyRanges_AfterGrow(t *testing.T) {
	raw, l := threeRecords()
	c := mustLoad(t, raw, l)

	_, err := c.SetText(1, "BBBB")
	require.NoError(t, err)

	ranges := c.DirtyRanges()
	require.NotEmpty(t, ranges)
	// The entry for record 2 (bytes 4-5) and everything from record 1 on.
	assert.Equal(t, int64(4), ranges[0].Off)
	assert.Equal(t, int64(2), ranges[0].Len)
	last := ranges[len(ranges)-1]
	assert.Equal(t, int64(11), last.Off)
	assert.Equal(t, int64(c.Size()), last.End())
}

func TestVerify_DetectsCorruption(t *testing.T) {
	raw, l := threeRecords()
	l.ProtectedRanges = []Range{{Start: 14, End: 21}}

	c := mustLoad(t, raw, l)
	c.raw[3] = 12
	err := c.Verify()
	require.ErrorIs(t, err, ErrInconsistent)
	assert.Contains(t, err.Error(), "table entry 1")

	c = mustLoad(t, raw, l)
	c.raw[15] = 'X'
	err = c.Verify()
	require.ErrorIs(t, err, ErrInconsistent)
	assert.Contains(t, err.Error(), "protected record 2")

	c = mustLoad(t, raw, l)
	c.raw = c.raw[:18]
	assert.ErrorIs(t, c.Verify(), ErrInconsistent)
}

func TestLoad_WithLogger(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	raw, l := threeRecords()
	c, err := Load(raw, l, WithLogger(logger))
	require.NoError(t, err)
	_, err = c.SetText(0, "A")
	require.NoError(t, err)

	out := logs.String()
	assert.Contains(t, out, "container loaded")
	assert.True(t, strings.Contains(out, "record repointed") && strings.Contains(out, "delta=-4"))
}
