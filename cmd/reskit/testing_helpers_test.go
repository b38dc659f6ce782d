package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// sampleLng is a two record .lng file holding "ab" and "cde".
var sampleLng = []byte{16, 0, 1, 2, 0, 9, 0, 11, 0, 14, 0, 'a', 'b', 'c', 'd', 'e'}

// writeSample writes sampleLng to a temp dir under name and returns its path.
func writeSample(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, sampleLng, 0o644))
	return path
}

// resetFlags restores global flags to their defaults and captures output.
func resetFlags(t *testing.T) *bytes.Buffer {
	t.Helper()
	verbose, quiet, jsonOut = false, false, false
	profileID, profilesFile, logLevel, logJSON = "", "", "", false
	listKind, listWidth = "", 48
	getHex, getOutput = false, ""
	setHex, setFromFile, setBackup, setOutput = false, false, true, ""
	exportFormat, exportOutput = "entries", ""
	importFormat, importBackup, importOutput, importDryRun, importStrict = "auto", true, "", false, false
	restoreFrom = ""

	out := &bytes.Buffer{}
	stdout = out
	t.Cleanup(func() { stdout = os.Stdout })
	return out
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

// decodeJSON unmarshals command output into a generic map.
func decodeJSON(t *testing.T, out *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &m), out.String())
	return m
}
