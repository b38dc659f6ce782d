package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/reskit/container"
)

var (
	setHex      bool
	setFromFile bool
	setBackup   bool
	setOutput   string
)

func init() {
	cmd := newSetCmd()
	cmd.Flags().BoolVar(&setHex, "hex", false, "Treat the value as hex bytes instead of text")
	cmd.Flags().BoolVar(&setFromFile, "from-file", false, "Treat the value as a file whose bytes become the payload")
	cmd.Flags().BoolVar(&setBackup, "backup", true, "Create backup")
	cmd.Flags().StringVarP(&setOutput, "output", "o", "", "Write to this path instead of overwriting the container")
	rootCmd.AddCommand(cmd)
}

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <container> <index> <value>",
		Short: "Replace the content of a record",
		Long: `The set command replaces a record and repoints everything after it.

Text is encoded with the profile's encoding. Protected records are refused.

Example:
  reskit set EN.lng 12 "New game"
  reskit set game.bin 40 splash.png --from-file --profile asterix-vikings
  reskit set game.bin 3 "0A0B0C" --hex --output patched.bin`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(args)
		},
	}
	return cmd
}

func parseValue(value string) (container.Content, error) {
	switch {
	case setHex && setFromFile:
		return container.Content{}, fmt.Errorf("--hex and --from-file are mutually exclusive")
	case setHex:
		b, err := hex.DecodeString(strings.ReplaceAll(value, " ", ""))
		if err != nil {
			return container.Content{}, fmt.Errorf("failed to parse hex value: %w", err)
		}
		return container.Bytes(b), nil
	case setFromFile:
		b, err := os.ReadFile(value)
		if err != nil {
			return container.Content{}, fmt.Errorf("failed to read value file: %w", err)
		}
		return container.Bytes(b), nil
	}
	return container.Text(value), nil
}

func runSet(args []string) error {
	path := args[0]
	idx, err := parseIndex(args[1])
	if err != nil {
		return err
	}
	content, err := parseValue(args[2])
	if err != nil {
		return err
	}

	c, err := openContainer(path)
	if err != nil {
		return err
	}
	edit, err := c.SetContent(idx, content)
	if err != nil {
		return err
	}
	backup, err := saveContainer(c, path, setOutput, setBackup)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"index":      edit.Index,
			"offset":     edit.Offset,
			"old_length": edit.OldLength,
			"new_length": edit.NewLength,
			"delta":      edit.Delta,
			"truncated":  edit.Truncated,
			"backup":     backup,
			"success":    true,
		})
	}

	printInfo("Record %d: %d -> %d bytes (delta %+d)\n", edit.Index, edit.OldLength, edit.NewLength, edit.Delta)
	if edit.Truncated {
		printInfo("Warning: value was truncated to fit the record\n")
	}
	if backup != "" {
		printInfo("Backup created: %s\n", backup)
	}
	printInfo("✓ Record set successfully\n")
	return nil
}
