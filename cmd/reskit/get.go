package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joshuapare/reskit/container"
)

var (
	getHex    bool
	getOutput string
)

func init() {
	cmd := newGetCmd()
	cmd.Flags().BoolVar(&getHex, "hex", false, "Print the payload as hex instead of decoded text")
	cmd.Flags().StringVarP(&getOutput, "output", "o", "", "Write the raw payload to a file")
	rootCmd.AddCommand(cmd)
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <container> <index>",
		Short: "Print one record",
		Long: `The get command prints the content of a record. Text records are decoded
with the profile's encoding; other records are printed as hex.

Example:
  reskit get EN.lng 12
  reskit get game.bin 40 --profile asterix-vikings --output splash.png`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(args)
		},
	}
	return cmd
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid record index %q", s)
	}
	return i, nil
}

func runGet(args []string) error {
	idx, err := parseIndex(args[1])
	if err != nil {
		return err
	}
	c, err := openContainer(args[0])
	if err != nil {
		return err
	}
	rec, err := c.Record(idx)
	if err != nil {
		return err
	}
	payload, err := c.Payload(idx)
	if err != nil {
		return err
	}

	if getOutput != "" {
		if err := os.WriteFile(getOutput, payload, 0o644); err != nil {
			return fmt.Errorf("failed to write payload: %w", err)
		}
		printInfo("Wrote %d bytes to %s\n", len(payload), getOutput)
		return nil
	}

	text := ""
	if rec.Kind == container.KindText && !getHex {
		content, err := c.Content(idx)
		if err != nil {
			return err
		}
		text = content.String()
	}

	if jsonOut {
		result := map[string]any{
			"index":  rec.Index,
			"kind":   rec.Kind.String(),
			"offset": rec.Start,
			"length": rec.Length,
		}
		if rec.Kind == container.KindText && !getHex {
			result["text"] = text
		} else {
			result["hex"] = hex.EncodeToString(payload)
		}
		return printJSON(result)
	}

	printVerbose("Record %d: %s, %d bytes at 0x%X\n", rec.Index, rec.Kind, rec.Length, rec.Start)
	if rec.Kind == container.KindText && !getHex {
		fmt.Fprintln(stdout, text)
		return nil
	}
	fmt.Fprintln(stdout, hex.EncodeToString(payload))
	return nil
}
