package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/reskit/internal/writer"
)

var restoreFrom string

func init() {
	cmd := newRestoreCmd()
	cmd.Flags().StringVar(&restoreFrom, "from", "", "Backup file (default: <container>"+writer.BackupSuffix+")")
	rootCmd.AddCommand(cmd)
}

func newRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <container>",
		Short: "Restore a container from its compressed backup",
		Long: `The restore command replaces a container with the backup written by the
last set or import.

Example:
  reskit restore EN.lng`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(args)
		},
	}
	return cmd
}

func runRestore(args []string) error {
	path := args[0]
	src := restoreFrom
	if src == "" {
		src = writer.BackupPath(path)
	}

	data, err := writer.ReadBackup(src)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("no backup found at %s", src)
	}
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}

	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	fw := &writer.FileWriter{Path: path, Perm: perm}
	if err := fw.WriteContainer(data); err != nil {
		return fmt.Errorf("failed to restore: %w", err)
	}

	if jsonOut {
		return printJSON(map[string]any{"file": path, "backup": src, "size": len(data), "success": true})
	}
	printInfo("✓ Restored %s from %s (%s)\n", path, src, formatSize(len(data)))
	return nil
}
