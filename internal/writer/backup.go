package writer

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// BackupSuffix is appended to a container path to name its backup.
const BackupSuffix = ".bak.zst"

// BackupPath returns the backup path for a container path.
func BackupPath(path string) string { return path + BackupSuffix }

// Backup compresses the current contents of path into BackupPath(path).
// A missing source file is not an error and produces no backup; the
// returned path is empty in that case.
func Backup(path string) (string, error) {
	src, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer src.Close()

	dst := BackupPath(path)
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}

	enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		_ = out.Close()
		return "", fmt.Errorf("zstd encoder: %w", err)
	}
	if _, err := io.Copy(enc, src); err != nil {
		_ = enc.Close()
		_ = out.Close()
		return "", fmt.Errorf("compress backup: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("flush backup: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close backup: %w", err)
	}
	return dst, nil
}

// ReadBackup decompresses a backup written by Backup.
func ReadBackup(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}
	return data, nil
}

// BackupWriter backs up the destination before delegating the write to an
// atomic FileWriter.
type BackupWriter struct {
	Path string

	// LastBackup is the backup written by the most recent WriteContainer,
	// empty if the destination did not exist.
	LastBackup string
}

// WriteContainer backs up the existing file and replaces it with buf.
func (w *BackupWriter) WriteContainer(buf []byte) error {
	bak, err := Backup(w.Path)
	if err != nil {
		return err
	}
	w.LastBackup = bak

	perm := os.FileMode(0o644)
	if info, err := os.Stat(w.Path); err == nil {
		perm = info.Mode().Perm()
	}
	fw := &FileWriter{Path: w.Path, Perm: perm}
	return fw.WriteContainer(buf)
}
