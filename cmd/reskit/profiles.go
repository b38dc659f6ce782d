package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newProfilesCmd())
}

func newProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List the available layout profiles",
		Long: `The profiles command lists built-in profiles and any loaded with --profiles.

Example:
  reskit profiles
  reskit profiles --profiles mygames.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfiles()
		},
	}
	return cmd
}

type profileRow struct {
	ID          string   `json:"id"`
	Strategy    string   `json:"strategy"`
	Encoding    string   `json:"encoding"`
	Extensions  []string `json:"extensions,omitempty"`
	Description string   `json:"description,omitempty"`
}

func runProfiles() error {
	tbl, err := loadProfiles()
	if err != nil {
		return err
	}

	rows := make([]profileRow, 0, len(tbl.IDs()))
	for _, id := range tbl.IDs() {
		p, _ := tbl.Get(id)
		l, err := tbl.Layout(id)
		if err != nil {
			return err
		}
		rows = append(rows, profileRow{
			ID:          id,
			Strategy:    l.Strategy.String(),
			Encoding:    l.Codec.Name(),
			Extensions:  p.Extensions,
			Description: p.Description,
		})
	}

	if jsonOut {
		return printJSON(map[string]any{"profiles": rows, "encodings": tbl.Encodings()})
	}

	printInfo("%-18s %-8s %-16s %s\n", "ID", "STRATEGY", "ENCODING", "DESCRIPTION")
	for _, r := range rows {
		printInfo("%-18s %-8s %-16s %s\n", r.ID, r.Strategy, r.Encoding, r.Description)
	}
	if encs := tbl.Encodings(); len(encs) > 0 {
		printInfo("\nCustom encodings: %v\n", encs)
	}
	return nil
}
