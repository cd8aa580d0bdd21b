package sample

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var defaultMapping = Mapping{
	IDColumns:  []string{"TIC_ID", "ticid", "TIC", "ID"},
	TeffColumn: "Teff",
	LoggColumn: "logg",
	TmagColumn: "Tmag",
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_CSV(t *testing.T) {
	path := writeFile(t, "sample.csv", "ticid,Teff,logg,Tmag\n123.0,5700,4.4,9.1\n456,,4.1,\n  ,5000,4.0,10\n789,abc,4.5,11.2\n")

	stars, err := Load(path, defaultMapping)
	require.NoError(t, err)
	require.Len(t, stars, 3)

	assert.Equal(t, "123", stars[0].ID)
	require.NotNil(t, stars[0].Teff)
	assert.Equal(t, 5700.0, *stars[0].Teff)
	assert.Equal(t, 4.4, *stars[0].Logg)
	assert.Equal(t, 9.1, *stars[0].Tmag)

	assert.Equal(t, "456", stars[1].ID)
	assert.Nil(t, stars[1].Teff)
	assert.Nil(t, stars[1].Tmag)

	assert.Equal(t, "789", stars[2].ID)
	assert.Nil(t, stars[2].Teff, "non-numeric cells are absent")
}

func TestLoad_AliasPriority(t *testing.T) {
	path := writeFile(t, "sample.csv", "ID,TIC_ID\nwrong,right\n")
	stars, err := Load(path, defaultMapping)
	require.NoError(t, err)
	require.Len(t, stars, 1)
	assert.Equal(t, "right", stars[0].ID)
}

func TestLoad_MissingIDColumn(t *testing.T) {
	path := writeFile(t, "sample.csv", "name,Teff\nfoo,5000\n")
	_, err := Load(path, defaultMapping)
	require.Error(t, err)
	assert.True(t, IsSchemaError(err))
	assert.Contains(t, err.Error(), "no identifier column")
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeFile(t, "sample.csv", "")
	_, err := Load(path, defaultMapping)
	assert.True(t, IsSchemaError(err))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), defaultMapping)
	require.Error(t, err)
	assert.False(t, IsSchemaError(err))
}

func TestLoad_HeaderOnly(t *testing.T) {
	path := writeFile(t, "sample.csv", "TIC\n")
	stars, err := Load(path, defaultMapping)
	require.NoError(t, err)
	assert.Empty(t, stars)
}

func TestLoad_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "TIC"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "Teff"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "1001"))
	require.NoError(t, f.SetCellValue(sheet, "B2", 6100))
	require.NoError(t, f.SetCellValue(sheet, "A3", "1002"))

	path := filepath.Join(t.TempDir(), "sample.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	stars, err := Load(path, defaultMapping)
	require.NoError(t, err)
	require.Len(t, stars, 2)
	assert.Equal(t, "1001", stars[0].ID)
	require.NotNil(t, stars[0].Teff)
	assert.Equal(t, 6100.0, *stars[0].Teff)
	assert.Equal(t, "1002", stars[1].ID)
	assert.Nil(t, stars[1].Teff)
}

func TestReadCSV(t *testing.T) {
	stars, err := ReadCSV("inline", strings.NewReader("TIC_ID\n5\n6\n"), defaultMapping)
	require.NoError(t, err)
	require.Len(t, stars, 2)
	assert.Equal(t, "6", stars[1].ID)
}

func TestNormalizeID(t *testing.T) {
	tests := map[string]string{
		"123.0":     "123",
		" 42 ":      "42",
		"1.5":       "1.5",
		"2.5e1":     "25",
		"TIC 99":    "TIC 99",
		"":          "",
		"abc.def":   "abc.def",
		"150428135": "150428135",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeID(in), in)
	}
}
