package writer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWriter_Atomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pack.bin")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	w := &FileWriter{Path: path}
	require.NoError(t, w.WriteContainer([]byte("new contents")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new contents", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestFileWriter_MissingDir(t *testing.T) {
	w := &FileWriter{Path: filepath.Join(t.TempDir(), "nope", "pack.bin")}
	assert.Error(t, w.WriteContainer([]byte("x")))
}

func TestMemWriter(t *testing.T) {
	var w MemWriter
	src := []byte{1, 2, 3}
	require.NoError(t, w.WriteContainer(src))
	src[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, w.Buf)

	var _ Writer = &w
}

func TestBackupRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.bin")
	orig := bytes.Repeat([]byte("resource "), 500)
	require.NoError(t, os.WriteFile(path, orig, 0o644))

	bak, err := Backup(path)
	require.NoError(t, err)
	assert.Equal(t, path+BackupSuffix, bak)

	info, err := os.Stat(bak)
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(len(orig)))

	got, err := ReadBackup(bak)
	require.NoError(t, err)
	assert.Equal(t, orig, got)
}

func TestBackupMissingSource(t *testing.T) {
	bak, err := Backup(filepath.Join(t.TempDir(), "missing.bin"))
	require.NoError(t, err)
	assert.Empty(t, bak)
}

func TestReadBackupCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad"+BackupSuffix)
	require.NoError(t, os.WriteFile(path, []byte("not zstd at all"), 0o644))
	_, err := ReadBackup(path)
	assert.Error(t, err)
}

func TestBackupWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.bin")
	require.NoError(t, os.WriteFile(path, []byte("before"), 0o640))

	w := &BackupWriter{Path: path}
	require.NoError(t, w.WriteContainer([]byte("after")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "after", string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	old, err := ReadBackup(w.LastBackup)
	require.NoError(t, err)
	assert.Equal(t, "before", string(old))
}
