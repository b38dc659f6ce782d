package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/reskit/container"
)

var (
	listKind  string
	listWidth int
)

func init() {
	cmd := newListCmd()
	cmd.Flags().StringVar(&listKind, "kind", "", "Only list records of this kind (text, opaque, protected)")
	cmd.Flags().IntVar(&listWidth, "width", 48, "Preview width in characters (0 hides previews)")
	rootCmd.AddCommand(cmd)
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <container>",
		Short: "List the records of a container",
		Long: `The list command prints every record with its index, kind, offset and
length, and a preview of text records.

Example:
  reskit list EN.lng
  reskit list game.bin --profile asterix-vikings --kind text
  reskit list game.bin --profile rushhour3 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(args)
		},
	}
	return cmd
}

type recordRow struct {
	Index  int    `json:"index"`
	Kind   string `json:"kind"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	Text   string `json:"text,omitempty"`
}

func runList(args []string) error {
	c, err := openContainer(args[0])
	if err != nil {
		return err
	}

	rows := make([]recordRow, 0, c.Len())
	for _, s := range c.List() {
		if listKind != "" && !strings.EqualFold(listKind, s.Kind.String()) {
			continue
		}
		row := recordRow{Index: s.Index, Kind: s.Kind.String(), Offset: s.Offset, Length: s.Length}
		if s.Kind == container.KindText {
			if content, err := c.Content(s.Index); err == nil {
				row.Text = content.String()
			}
		}
		rows = append(rows, row)
	}

	if jsonOut {
		return printJSON(rows)
	}

	printInfo("%6s  %-9s  %10s  %7s  %s\n", "INDEX", "KIND", "OFFSET", "LENGTH", "PREVIEW")
	for _, r := range rows {
		printInfo("%6d  %-9s  0x%08X  %7d  %s\n", r.Index, r.Kind, r.Offset, r.Length, preview(r.Text, listWidth))
	}
	printInfo("\n%d record(s)\n", len(rows))
	return nil
}

// preview flattens s to one line of at most width runes.
func preview(s string, width int) string {
	if width <= 0 || s == "" {
		return ""
	}
	s = strings.NewReplacer("\r", `\r`, "\n", `\n`, "\t", `\t`).Replace(s)
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return fmt.Sprintf("%s...", string(runes[:width-3]))
}
