package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lumos-Labs-HQ/unigen/internal/types"
)

func membershipTable() *types.Table {
	table := types.NewTable("LibraryMemberships", []types.Column{
		{Name: "membership_id", Kind: types.KindInt, PrimaryKey: true},
		{Name: "note", Kind: types.KindText},
		{Name: "start_date", Kind: types.KindDate},
		{Name: "end_date", Kind: types.KindDate, Nullable: true},
	}, 2)
	start := time.Date(2019, 3, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	table.Rows = append(table.Rows,
		types.Row{1, "plain", start, types.Some(end)},
		types.Row{2, "has, comma", start, types.None[time.Time]()},
	)
	return table
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportCSV(t *testing.T) {
	dir := t.TempDir()

	files, err := PerformExport(dir, "csv", []*types.Table{membershipTable()})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "LibraryMemberships.csv")}, files)

	records := readCSV(t, files[0])
	assert.Equal(t, [][]string{
		{"membership_id", "note", "start_date", "end_date"},
		{"1", "plain", "2019-03-04", "2024-05-06"},
		{"2", "has, comma", "2019-03-04", ""},
	}, records)
}

func TestExportCSVOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "LibraryMemberships.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale,data\nthat,is\nlonger,than\nthe,export\nx,y\n"), 0644))

	_, err := PerformExport(dir, "csv", []*types.Table{membershipTable()})
	require.NoError(t, err)
	assert.Len(t, readCSV(t, path), 3)
}

func TestExportCSVEmptyTableKeepsHeaders(t *testing.T) {
	dir := t.TempDir()
	empty := types.NewTable("Students", []types.Column{
		{Name: "student_id", Kind: types.KindInt, PrimaryKey: true},
		{Name: "email", Kind: types.KindText},
	}, 0)

	files, err := PerformExport(dir, "csv", []*types.Table{empty})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"student_id", "email"}}, readCSV(t, files[0]))
}

func TestExportJSON(t *testing.T) {
	dir := t.TempDir()

	files, err := PerformExport(dir, "json", []*types.Table{membershipTable()})
	require.NoError(t, err)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)
	assert.EqualValues(t, 1, records[0]["membership_id"])
	assert.Equal(t, "2024-05-06", records[0]["end_date"])
	assert.Nil(t, records[1]["end_date"])
	assert.Contains(t, records[1], "end_date")
}

func TestExportJSONKeepsColumnOrder(t *testing.T) {
	files, err := PerformExport(t.TempDir(), "json", []*types.Table{membershipTable()})
	require.NoError(t, err)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	require.NoError(t, err)
	require.Equal(t, json.Delim('['), tok)
	tok, err = dec.Token()
	require.NoError(t, err)
	require.Equal(t, json.Delim('{'), tok)

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		require.NoError(t, err)
		keys = append(keys, tok.(string))
		var skip json.RawMessage
		require.NoError(t, dec.Decode(&skip))
	}
	assert.Equal(t, []string{"membership_id", "note", "start_date", "end_date"}, keys)
	assert.Contains(t, string(data), "\n  {\n    \"membership_id\": 1,")
}

func TestExportUnsupportedFormat(t *testing.T) {
	_, err := PerformExport(t.TempDir(), "parquet", nil)
	assert.Error(t, err)
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := NewManifest(77, "1.0.0", []string{"library_memberships"}, []*types.Table{membershipTable()})
	_, err := uuid.Parse(manifest.RunID)
	require.NoError(t, err)

	path, err := WriteManifest(dir, manifest)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got types.Manifest
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, manifest.RunID, got.RunID)
	assert.EqualValues(t, 77, got.Seed)
	assert.Equal(t, map[string]int{"LibraryMemberships": 2}, got.Tables)
}
