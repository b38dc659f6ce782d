package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/reskit/translate"
)

var (
	exportFormat string
	exportOutput string
)

func init() {
	cmd := newExportCmd()
	cmd.Flags().StringVar(&exportFormat, "format", "entries", "Document shape (list, keyed, entries)")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
	rootCmd.AddCommand(cmd)
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <container>",
		Short: "Export text records to JSON for translation",
		Long: `The export command writes every decodable text record to a JSON document.

Formats:
  list     ["first", "second"]
  keyed    {"0": "first", "3": "second"}
  entries  [{"index": 0, "offset": 6, "text": "first"}]

Example:
  reskit export EN.lng -o en.json
  reskit export game.bin --profile lang2me-be --format list`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args)
		},
	}
	return cmd
}

func runExport(args []string) error {
	f, err := translate.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	c, err := openContainer(args[0])
	if err != nil {
		return err
	}
	if _, skipped := translate.Entries(c); len(skipped) > 0 {
		printVerbose("Skipping %d undecodable text record(s): %v\n", len(skipped), skipped)
	}

	if exportOutput == "" {
		_, err := translate.Export(stdout, c, f)
		return err
	}

	out, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	n, err := translate.Export(out, c, f)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	printInfo("Exported %d text record(s) to %s\n", n, exportOutput)
	return nil
}
