package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testRow struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

func (testRow) CSVHeaders() []string { return []string{"address", "amount"} }
func (r testRow) ToCSV() []string { return []string{r.Address, r.Amount} }

func generateTestRows() []testRow {
	return []testRow{
		{Address: "7KATdGaecnKi4zDAMWQxpB2s59N2RE1JgLuugCjTsRZHgP24", Amount: "12.3456789"},
		{Address: "7L53bUTBbfuj14UpdCNPwmgzzHSsrsTWBHX5pys32mVWM3C1", Amount: "0"},
	}
}

func TestExportJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	exporter := NewExporter(dir, []string{"json"}, zap.NewNop())

	paths, err := Write(exporter, HoldersFile("dot"), generateTestRows())
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "dot-holders.json")}, paths)

	content, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), "\n  {\n    \"address\"", "two-space indentation")

	var decoded []testRow
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, generateTestRows(), decoded)
}

func TestExportEmptyRowsWritesEmptyArray(t *testing.T) {
	dir := t.TempDir()
	exporter := NewExporter(dir, nil, zap.NewNop())

	paths, err := Write[testRow](exporter, YieldSchedulesFile, nil)
	require.NoError(t, err)
	require.Len(t, paths, 1)

	content, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(content))
}

func TestExportCSV(t *testing.T) {
	dir := t.TempDir()
	exporter := NewExporter(dir, []string{"json", "CSV"}, zap.NewNop())

	paths, err := Write(exporter, PositionsFile("vdot"), generateTestRows())
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "vdot-positions.csv"), paths[1])

	file, err := os.Open(paths[1])
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"address", "amount"}, records[0])
	assert.Equal(t, "12.3456789", records[1][1])
}

func TestExportOverwritesAndIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	exporter := NewExporter(dir, []string{"json"}, zap.NewNop())

	_, err := Write(exporter, "dot-holders", generateTestRows())
	require.NoError(t, err)
	paths, err := Write(exporter, "dot-holders", generateTestRows()[:1])
	require.NoError(t, err)

	var decoded []testRow
	content, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Len(t, decoded, 1)
}

func TestExportUnsupportedFormat(t *testing.T) {
	exporter := NewExporter(t.TempDir(), []string{"xml"}, zap.NewNop())
	_, err := Write(exporter, "x", generateTestRows())
	assert.Error(t, err)
}

func TestExportDirIsAFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	exporter := NewExporter(file, []string{"json"}, zap.NewNop())
	_, err := Write(exporter, "x", generateTestRows())
	assert.Error(t, err)
}
