package main

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/reskit/internal/mmfile"
)

func init() {
	rootCmd.AddCommand(newVerifyCmd())
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <container>",
		Short: "Check a container against its profile",
		Long: `The verify command loads a container, checks that every pointer, length
prefix and size field agrees with the records, and confirms that writing the
unmodified container reproduces the file byte for byte.

Example:
  reskit verify EN.lng
  reskit verify patched.bin --profile rushhour3 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args)
		},
	}
	return cmd
}

var errRoundTrip = errors.New("serialized container differs from file")

func runVerify(args []string) error {
	path := args[0]
	c, err := openContainer(path)
	if err != nil {
		return err
	}
	orig, err := mmfile.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read container: %w", err)
	}

	var problems []error
	if err := c.Verify(); err != nil {
		problems = append(problems, err)
	}
	out, err := c.Serialize()
	if err != nil {
		problems = append(problems, err)
	} else if !bytes.Equal(out, orig) {
		problems = append(problems, fmt.Errorf("%w at offset 0x%X", errRoundTrip, firstDiff(out, orig)))
	}
	verr := errors.Join(problems...)

	if jsonOut {
		result := map[string]any{
			"file":    path,
			"records": c.Len(),
			"valid":   verr == nil,
		}
		if verr != nil {
			result["errors"] = verr.Error()
		}
		if err := printJSON(result); err != nil {
			return err
		}
		return verr
	}

	if verr != nil {
		printInfo("✗ %s failed verification:\n%v\n", path, verr)
		return verr
	}
	printInfo("✓ %s is consistent (%d records)\n", path, c.Len())
	return nil
}

func firstDiff(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
