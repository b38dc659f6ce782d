package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joshuapare/reskit/container"
	"github.com/joshuapare/reskit/internal/logger"
	"github.com/joshuapare/reskit/internal/mmfile"
	"github.com/joshuapare/reskit/internal/writer"
	"github.com/joshuapare/reskit/profile"
)

var errNoProfile = errors.New("no profile selected; pass --profile (see 'reskit profiles')")

// loadProfiles returns the built-in profiles extended with --profiles.
func loadProfiles() (*profile.Table, error) {
	tbl, err := profile.Builtin()
	if err != nil {
		return nil, err
	}
	if profilesFile != "" {
		if err := tbl.LoadFile(profilesFile); err != nil {
			return nil, err
		}
		printVerbose("Loaded profiles from %s\n", profilesFile)
	}
	return tbl, nil
}

// resolveLayout picks the layout for path: --profile when given, otherwise
// the single profile whose extension matches.
func resolveLayout(path string) (container.Layout, error) {
	tbl, err := loadProfiles()
	if err != nil {
		return container.Layout{}, err
	}
	id := profileID
	if id == "" {
		switch ids := tbl.Detect(path); len(ids) {
		case 0:
			return container.Layout{}, errNoProfile
		case 1:
			id = ids[0]
			printVerbose("Detected profile %s\n", id)
		default:
			return container.Layout{}, fmt.Errorf("%s matches several profiles (%s); pass --profile", path, strings.Join(ids, ", "))
		}
	}
	return tbl.Layout(id)
}

// openContainer maps path, copies it and scans it with the selected layout.
func openContainer(path string) (*container.Container, error) {
	layout, err := resolveLayout(path)
	if err != nil {
		return nil, err
	}
	printVerbose("Opening container: %s (profile %s)\n", path, layout.Name)

	data, err := mmfile.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read container: %w", err)
	}
	c, err := container.Load(data, layout, container.WithLogger(logger.L))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return c, nil
}

// containerWriter picks how serialized bytes reach target.
func containerWriter(target string, backup bool) writer.Writer {
	if backup {
		return &writer.BackupWriter{Path: target}
	}
	return &writer.FileWriter{Path: target, Perm: 0o644}
}

// writeContainer serializes c into w and returns the serialized size.
func writeContainer(c *container.Container, w writer.Writer) (int, error) {
	data, err := c.Serialize()
	if err != nil {
		return 0, fmt.Errorf("failed to serialize: %w", err)
	}
	if err := w.WriteContainer(data); err != nil {
		return 0, err
	}
	return len(data), nil
}

// saveContainer writes c to out, or over the source path when out is empty.
// Overwriting an existing file keeps a compressed backup first when backup
// is set; the backup path is returned.
func saveContainer(c *container.Container, src, out string, backup bool) (string, error) {
	target := src
	if out != "" {
		target = out
	}
	w := containerWriter(target, backup)
	n, err := writeContainer(c, w)
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}

	var bak string
	if bw, ok := w.(*writer.BackupWriter); ok {
		bak = bw.LastBackup
	}
	logger.Info("container saved", "path", target, "size", n, "backup", bak)
	return bak, nil
}
