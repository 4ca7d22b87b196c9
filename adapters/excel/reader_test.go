package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glycostat/internal/errors"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestReadSemicolonLatin1CSV(t *testing.T) {
	// 0xE9 is "é" in ISO-8859-1 and not valid UTF-8 on its own
	path := writeFile(t, "psm.csv", []byte(" Prot Name ;PTM;Peptide\nP01;N\xe9uAc;AKT\n;;\nP02;;GGS\n"))

	table, err := NewDataReader(path).ReadData()
	require.NoError(t, err)

	assert.Equal(t, []string{"Prot Name", "PTM", "Peptide"}, table.Headers)
	require.Len(t, table.Rows, 2, "blank rows are skipped")
	assert.Equal(t, "NéuAc", table.Rows[0]["PTM"])
	assert.Equal(t, "", table.Rows[1]["PTM"])

	col, ok := table.Column("Peptide")
	require.True(t, ok)
	assert.Equal(t, []string{"AKT", "GGS"}, col)
	_, ok = table.Column("Missing")
	assert.False(t, ok)
}

func TestReadCommaCSVWithBOM(t *testing.T) {
	path := writeFile(t, "vcp.csv", []byte("\xef\xbb\xbfAccession,Gene\nP12345,CD9\n"))

	table, err := NewDataReader(path).ReadData()
	require.NoError(t, err)
	assert.Equal(t, []string{"Accession", "Gene"}, table.Headers)
	assert.Equal(t, "P12345", table.Rows[0]["Accession"])
}

func TestReadMissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.csv")).ReadData()
	assert.Equal(t, errors.CodeMissingInput, errors.GetCode(err))
}

func TestReadEmptyFileIsSchemaMismatch(t *testing.T) {
	path := writeFile(t, "empty.csv", nil)
	_, err := NewDataReader(path).ReadData()
	assert.Equal(t, errors.CodeSchemaMismatch, errors.GetCode(err))
}

func TestRequireColumns(t *testing.T) {
	table := &Table{Headers: []string{"Prot Name", "PTM"}}
	assert.NoError(t, RequireColumns(table, "x.csv", "PTM"))

	err := RequireColumns(table, "x.csv", "PTM", "Accession", "Peptide")
	require.Error(t, err)
	assert.Equal(t, errors.CodeSchemaMismatch, errors.GetCode(err))
	assert.Contains(t, err.Error(), "Accession, Peptide")
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		in   string
		want rune
	}{
		{"a;b;c\n1,2,3,4,5", ';'},
		{"a,b,c", ','},
		{"a\tb", '\t'},
		{"single", ';'},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SniffDelimiter([]byte(tt.in)), tt.in)
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	require.NoError(t, WriteCSV(path, []string{"Value", "Count"}, [][]string{{"Fucosylated", "3"}, {"a;b", "1"}}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Value;Count\nFucosylated;3\n\"a;b\";1\n", string(raw))

	table, err := NewDataReader(path).ReadData()
	require.NoError(t, err)
	assert.Equal(t, "a;b", table.Rows[1]["Value"])
}

func TestWriteAndReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.xlsx")
	err := WriteXLSX(path, []Sheet{
		{Name: "dunn", Headers: []string{"group_a", "group_b", "p_adj"}, Rows: [][]interface{}{{"UC", "SEC", 0.5}}},
		{Name: "omnibus", Headers: []string{"H"}, Rows: [][]interface{}{{13.6}}},
	})
	require.NoError(t, err)

	cfg := DefaultReaderConfig()
	cfg.Sheet = "dunn"
	table, err := NewDataReaderWithConfig(path, cfg).ReadData()
	require.NoError(t, err)
	assert.Equal(t, []string{"group_a", "group_b", "p_adj"}, table.Headers)
	assert.Equal(t, "SEC", table.Rows[0]["group_b"])
	assert.Equal(t, "0.5", table.Rows[0]["p_adj"])

	cfg.Sheet = "omnibus"
	table, err = NewDataReaderWithConfig(path, cfg).ReadData()
	require.NoError(t, err)
	assert.Equal(t, "13.6", table.Rows[0]["H"])

	assert.Error(t, WriteXLSX(path, nil))
}
