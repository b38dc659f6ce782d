package container

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// be16 encodes values as consecutive big-endian uint16s.
func be16(vs ...int) []byte {
	out := make([]byte, 0, 2*len(vs))
	for _, v := range vs {
		out = binary.BigEndian.AppendUint16(out, uint16(v))
	}
	return out
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

// threeRecords is a 2-byte big-endian table at offset 0 pointing at
// records of 5, 3 and 7 bytes.
func threeRecords() ([]byte, Layout) {
	raw := concat(be16(6, 11, 14), []byte("AAAAA"), []byte("BBB"), []byte("CCCCCCC"))
	return raw, Layout{
		Name:         "three",
		Strategy:     StrategyTable,
		PointerWidth: 2,
		PointerCount: 3,
		ZeroLength:   ZeroLengthEmpty,
		TextEncoding: "ascii",
	}
}

func mustLoad(t *testing.T, raw []byte, l Layout) *Container {
	t.Helper()
	c, err := Load(raw, l)
	require.NoError(t, err)
	require.NoError(t, c.Verify())
	return c
}

func serialize(t *testing.T, c *Container) []byte {
	t.Helper()
	out, err := c.Serialize()
	require.NoError(t, err)
	return out
}

func text(t *testing.T, c *Container, i int) string {
	t.Helper()
	content, err := c.Content(i)
	require.NoError(t, err)
	require.True(t, content.IsText())
	return content.String()
}

var leOrder = binary.LittleEndian
