package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/reskit/internal/writer"
)

func TestProfilesCommand(t *testing.T) {
	out := resetFlags(t)
	require.NoError(t, runProfiles())
	assert.Contains(t, out.String(), "vivendi-pack")
	assert.Contains(t, out.String(), "table:stolen60")

	out = resetFlags(t)
	jsonOut = true
	require.NoError(t, runProfiles())
	m := decodeJSON(t, out)
	assert.Len(t, m["profiles"], 9)
}

func TestProfilesCommand_ExtraFile(t *testing.T) {
	out := resetFlags(t)
	profilesFile = filepath.Join(t.TempDir(), "extra.yaml")
	require.NoError(t, os.WriteFile(profilesFile, []byte("profiles:\n  - id: custom-one\n    pointer_width: 2\n    zero_length: empty\n"), 0o644))
	require.NoError(t, runProfiles())
	assert.Contains(t, out.String(), "custom-one")
}

func TestListCommand(t *testing.T) {
	path := writeSample(t, "EN.lng")

	out := resetFlags(t)
	require.NoError(t, runList([]string{path}))
	assert.Contains(t, out.String(), "ab")
	assert.Contains(t, out.String(), "cde")
	assert.Contains(t, out.String(), "2 record(s)")

	out = resetFlags(t)
	jsonOut = true
	require.NoError(t, runList([]string{path}))
	var rows []recordRow
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	assert.Equal(t, []recordRow{
		{Index: 0, Kind: "text", Offset: 11, Length: 2, Text: "ab"},
		{Index: 1, Kind: "text", Offset: 13, Length: 3, Text: "cde"},
	}, rows)

	out = resetFlags(t)
	listKind = "opaque"
	require.NoError(t, runList([]string{path}))
	assert.Contains(t, out.String(), "0 record(s)")
}

func TestListCommand_NeedsProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, sampleLng, 0o644))
	resetFlags(t)
	assert.ErrorIs(t, runList([]string{path}), errNoProfile)

	resetFlags(t)
	profileID = "lng"
	assert.NoError(t, runList([]string{path}))
}

func TestGetCommand(t *testing.T) {
	path := writeSample(t, "EN.lng")

	tests := []struct {
		name    string
		index   string
		hex     bool
		json    bool
		want    string
		wantErr bool
	}{
		{name: "text", index: "1", want: "cde\n"},
		{name: "hex", index: "1", hex: true, want: "636465\n"},
		{name: "out of range", index: "7", wantErr: true},
		{name: "not a number", index: "x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := resetFlags(t)
			getHex = tt.hex
			err := runGet([]string{path, tt.index})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
		})
	}

	out := resetFlags(t)
	jsonOut = true
	require.NoError(t, runGet([]string{path, "0"}))
	m := decodeJSON(t, out)
	assert.Equal(t, "ab", m["text"])
	assert.Equal(t, float64(11), m["offset"])

	resetFlags(t)
	getOutput = filepath.Join(t.TempDir(), "payload.bin")
	require.NoError(t, runGet([]string{path, "1"}))
	assert.Equal(t, []byte("cde"), readFile(t, getOutput))
}

func TestSetAndRestore(t *testing.T) {
	path := writeSample(t, "EN.lng")

	out := resetFlags(t)
	require.NoError(t, runSet([]string{path, "0", "abcd"}))
	assert.Contains(t, out.String(), "delta +2")
	assert.Equal(t,
		[]byte{18, 0, 1, 2, 0, 9, 0, 13, 0, 16, 0, 'a', 'b', 'c', 'd', 'c', 'd', 'e'},
		readFile(t, path))

	backup, err := writer.ReadBackup(writer.BackupPath(path))
	require.NoError(t, err)
	assert.Equal(t, sampleLng, backup)

	resetFlags(t)
	require.NoError(t, runRestore([]string{path}))
	assert.Equal(t, sampleLng, readFile(t, path))
}

func TestSetCommand_OutputAndHex(t *testing.T) {
	path := writeSample(t, "EN.lng")
	resetFlags(t)
	setHex = true
	setBackup = false
	setOutput = filepath.Join(t.TempDir(), "FR.lng")
	require.NoError(t, runSet([]string{path, "1", "78 79"}))

	assert.Equal(t, sampleLng, readFile(t, path))
	assert.Equal(t, []byte{15, 0, 1, 2, 0, 9, 0, 11, 0, 13, 0, 'a', 'b', 'x', 'y'}, readFile(t, setOutput))
	_, err := os.Stat(writer.BackupPath(setOutput))
	assert.ErrorIs(t, err, os.ErrNotExist)

	resetFlags(t)
	setHex, setFromFile = true, true
	assert.Error(t, runSet([]string{path, "1", "00"}))
}

func TestRestoreCommand_NoBackup(t *testing.T) {
	path := writeSample(t, "EN.lng")
	resetFlags(t)
	assert.ErrorContains(t, runRestore([]string{path}), "no backup found")
}

func TestExportImport(t *testing.T) {
	path := writeSample(t, "EN.lng")
	doc := filepath.Join(t.TempDir(), "en.json")

	out := resetFlags(t)
	exportFormat = "keyed"
	exportOutput = doc
	require.NoError(t, runExport([]string{path}))
	assert.Contains(t, out.String(), "Exported 2 text record(s)")

	var keyed map[string]string
	require.NoError(t, json.Unmarshal(readFile(t, doc), &keyed))
	assert.Equal(t, map[string]string{"0": "ab", "1": "cde"}, keyed)

	keyed["1"] = "fghij"
	data, err := json.Marshal(keyed)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(doc, data, 0o644))

	out = resetFlags(t)
	require.NoError(t, runImport([]string{path, doc}))
	assert.Contains(t, out.String(), "Applied 1, unchanged 1, failed 0")

	out = resetFlags(t)
	require.NoError(t, runGet([]string{path, "1"}))
	assert.Equal(t, "fghij\n", out.String())

	resetFlags(t)
	require.NoError(t, runVerify([]string{path}))
}

func TestImportCommand_Failures(t *testing.T) {
	path := writeSample(t, "EN.lng")
	doc := filepath.Join(t.TempDir(), "fr.json")
	require.NoError(t, os.WriteFile(doc, []byte(`{"0": "xy", "5": "nope"}`), 0o644))

	out := resetFlags(t)
	importStrict = true
	require.Error(t, runImport([]string{path, doc}))
	assert.Contains(t, out.String(), "Strict mode")
	assert.Equal(t, sampleLng, readFile(t, path))

	out = resetFlags(t)
	importDryRun = true
	require.NoError(t, runImport([]string{path, doc}))
	assert.Contains(t, out.String(), "Dry run: nothing written (result would be 16 bytes)")
	assert.Equal(t, sampleLng, readFile(t, path))

	out = resetFlags(t)
	importBackup = false
	require.NoError(t, runImport([]string{path, doc}))
	assert.Contains(t, out.String(), "failed 1")
	assert.Equal(t, []byte{16, 0, 1, 2, 0, 9, 0, 11, 0, 14, 0, 'x', 'y', 'c', 'd', 'e'}, readFile(t, path))

	require.NoError(t, os.WriteFile(doc, []byte(`not json`), 0o644))
	resetFlags(t)
	assert.Error(t, runImport([]string{path, doc}))
}

func TestInfoCommand(t *testing.T) {
	path := writeSample(t, "EN.lng")
	out := resetFlags(t)
	jsonOut = true
	require.NoError(t, runInfo([]string{path}))

	var info containerInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, "lng", info.Profile)
	assert.Equal(t, "little", info.ByteOrder)
	assert.Equal(t, 16, info.Size)
	assert.Equal(t, 11, info.HeaderLen)
	assert.Equal(t, 3, info.TableLen)
	assert.Equal(t, 2, info.ByKind["text"])
	assert.Len(t, info.Fingerprint, 16)
}

func TestVerifyCommand(t *testing.T) {
	path := writeSample(t, "EN.lng")
	out := resetFlags(t)
	require.NoError(t, runVerify([]string{path}))
	assert.Contains(t, out.String(), "is consistent (2 records)")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "", preview("abc", 0))
	assert.Equal(t, `a\nb`, preview("a\nb", 10))
	assert.Equal(t, "abcd...", preview("abcdefghij", 7))
}
