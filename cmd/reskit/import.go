package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/reskit/internal/writer"
	"github.com/joshuapare/reskit/translate"
)

var (
	importFormat string
	importBackup bool
	importOutput string
	importDryRun bool
	importStrict bool
)

func init() {
	cmd := newImportCmd()
	cmd.Flags().StringVar(&importFormat, "format", "auto", "Document shape (auto, list, keyed, entries)")
	cmd.Flags().BoolVar(&importBackup, "backup", true, "Create backup")
	cmd.Flags().StringVarP(&importOutput, "output", "o", "", "Write to this path instead of overwriting the container")
	cmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Report what would change without writing")
	cmd.Flags().BoolVar(&importStrict, "strict", false, "Write nothing if any entry fails")
	rootCmd.AddCommand(cmd)
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <container> <document.json>",
		Short: "Apply translated text from a JSON document",
		Long: `The import command applies a JSON document produced by export (or any of
its shapes) to a container. Entries that cannot be applied are reported and
the rest are still written, unless --strict is given.

Example:
  reskit import EN.lng fr.json --output FR.lng
  reskit import game.bin texts.json --profile rushhour3 --dry-run`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args)
		},
	}
	return cmd
}

func runImport(args []string) error {
	path, docPath := args[0], args[1]
	f, err := translate.ParseFormat(importFormat)
	if err != nil {
		return err
	}
	c, err := openContainer(path)
	if err != nil {
		return err
	}
	doc, err := os.Open(docPath)
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	defer doc.Close()

	res, importErr := translate.Import(doc, c, f)
	var entryErr *translate.EntryError
	partial := errors.As(importErr, &entryErr) || errors.Is(importErr, translate.ErrCountMismatch)
	if importErr != nil && !partial {
		return fmt.Errorf("failed to import: %w", importErr)
	}

	backup := ""
	size := c.Size()
	write := c.Modified() && !importDryRun && (importErr == nil || !importStrict)
	if write {
		if backup, err = saveContainer(c, path, importOutput, importBackup); err != nil {
			return err
		}
	} else if importDryRun && c.Modified() {
		mem := &writer.MemWriter{}
		if _, err := writeContainer(c, mem); err != nil {
			return err
		}
		size = len(mem.Buf)
	}

	if jsonOut {
		result := map[string]any{
			"applied":   res.Applied,
			"unchanged": res.Unchanged,
			"failed":    res.Failed,
			"truncated": res.Truncated,
			"written":   write,
			"size":      size,
			"backup":    backup,
		}
		if importErr != nil {
			result["errors"] = importErr.Error()
		}
		if err := printJSON(result); err != nil {
			return err
		}
	} else {
		printInfo("Applied %d, unchanged %d, failed %d\n", res.Applied, res.Unchanged, res.Failed)
		if len(res.Truncated) > 0 {
			printInfo("Truncated records: %v\n", res.Truncated)
		}
		if importErr != nil {
			printInfo("\nFailures:\n%v\n", importErr)
		}
		switch {
		case importDryRun:
			printInfo("Dry run: nothing written (result would be %s)\n", formatSize(size))
		case !write && importErr != nil && importStrict:
			printInfo("Strict mode: nothing written\n")
		case backup != "":
			printInfo("Backup created: %s\n", backup)
		}
	}

	if importErr != nil && importStrict {
		return fmt.Errorf("import incomplete: %w", importErr)
	}
	return nil
}
