package mmfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFileOwnsBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.bin")
	want := []byte("resource pack")
	require.NoError(t, os.WriteFile(path, want, 0o644))

	data, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, data)

	// The buffer is writable and independent of the file.
	data[0] = 'R'
	again, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, again)
}

func TestReadFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	data, err := ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.bin"))
	assert.Error(t, err)
}
