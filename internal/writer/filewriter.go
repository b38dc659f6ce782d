// Package writer exposes sinks for serialized containers.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
)

// Writer receives a serialized container.
type Writer interface {
	WriteContainer(buf []byte) error
}

// FileWriter writes container bytes to a filesystem path atomically.
type FileWriter struct {
	Path string
	Perm os.FileMode // 0 keeps the temp file default
}

// WriteContainer writes buf to the configured path atomically via temp file + rename.
func (w *FileWriter) WriteContainer(buf []byte) error {
	// Create temp file in same directory to ensure atomic rename
	dir := filepath.Dir(w.Path)
	tmpFile, err := os.CreateTemp(dir, ".reskit-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on error
	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, writeErr := tmpFile.Write(buf); writeErr != nil {
		return fmt.Errorf("write temp file: %w", writeErr)
	}

	if w.Perm != 0 {
		if chmodErr := tmpFile.Chmod(w.Perm); chmodErr != nil {
			return fmt.Errorf("chmod temp file: %w", chmodErr)
		}
	}

	if syncErr := tmpFile.Sync(); syncErr != nil {
		return fmt.Errorf("sync temp file: %w", syncErr)
	}

	// Close before rename
	if closeErr := tmpFile.Close(); closeErr != nil {
		return fmt.Errorf("close temp file: %w", closeErr)
	}
	tmpFile = nil // Don't clean up in defer

	if renameErr := os.Rename(tmpPath, w.Path); renameErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", renameErr)
	}

	return nil
}
