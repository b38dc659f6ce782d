package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/reskit/container"
	"github.com/joshuapare/reskit/internal/format"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <container>",
		Short: "Report the layout and record counts of a container",
		Long: `The info command loads a container and displays its size, header and
table extents, record counts by kind, blocks and content fingerprint.

Example:
  reskit info EN.lng
  reskit info game.bin --profile vivendi-pack --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args)
		},
	}
	return cmd
}

type containerInfo struct {
	File        string         `json:"file"`
	Profile     string         `json:"profile"`
	Strategy    string         `json:"strategy"`
	Encoding    string         `json:"encoding"`
	ByteOrder   string         `json:"byte_order"`
	Size        int            `json:"size"`
	HeaderLen   int            `json:"header_length"`
	TableLen    int            `json:"table_entries"`
	Records     int            `json:"records"`
	ByKind      map[string]int `json:"by_kind"`
	Blocks      int            `json:"blocks,omitempty"`
	Fingerprint string         `json:"fingerprint"`
}

func runInfo(args []string) error {
	path := args[0]
	c, err := openContainer(path)
	if err != nil {
		return err
	}
	fp, err := c.Fingerprint()
	if err != nil {
		return err
	}

	info := containerInfo{
		File:        path,
		Profile:     c.Layout().Name,
		Strategy:    c.Layout().Strategy.String(),
		Encoding:    c.Codec().Name(),
		ByteOrder:   format.ByteOrderName(c.Layout().ByteOrder),
		Size:        c.Size(),
		HeaderLen:   c.HeaderLen(),
		TableLen:    c.TableLen(),
		Records:     c.Len(),
		ByKind:      map[string]int{},
		Blocks:      len(c.Blocks()),
		Fingerprint: fmt.Sprintf("%016x", fp),
	}
	for _, k := range []container.Kind{container.KindText, container.KindOpaque, container.KindProtected} {
		info.ByKind[k.String()] = 0
	}
	for _, r := range c.Records() {
		info.ByKind[r.Kind.String()]++
	}

	if jsonOut {
		return printJSON(info)
	}

	printInfo("\nContainer Information:\n")
	printInfo("  File: %s\n", info.File)
	printInfo("  Profile: %s (%s, %s, %s-endian)\n", info.Profile, info.Strategy, info.Encoding, info.ByteOrder)
	printInfo("  Size: %s\n", formatSize(info.Size))
	printInfo("  Header: %d bytes\n", info.HeaderLen)
	printInfo("  Table entries: %d\n", info.TableLen)
	if info.Blocks > 0 {
		printInfo("  Blocks: %d\n", info.Blocks)
	}
	printInfo("  Records: %d (text %d, opaque %d, protected %d)\n", info.Records,
		info.ByKind["text"], info.ByKind["opaque"], info.ByKind["protected"])
	printInfo("  Fingerprint: %s\n", info.Fingerprint)
	return nil
}

func formatSize(size int) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d bytes", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	}
}
