package ingest

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"covtrend/internal/calendar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// workbook builds an in-memory workbook with rows written from A1 down.
func workbook(t *testing.T, sheet string, rows [][]any) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	if sheet != "" {
		require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))
	} else {
		sheet = f.GetSheetName(0)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	return f
}

func TestLoadXLSX(t *testing.T) {
	f := workbook(t, "Counts", [][]any{
		{"sampleDate", "pangoLineage", "n"},
		{"2021-01-04", "B.1.1.7", 3},
		{"2021-01-05", "B.1.1.7", 5},
		{"2021-01-05", "", 12},
	})
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	cache := calendar.NewCache()
	opts := Options{DateColumn: "sampleDate", LineageColumn: "pangoLineage", CountColumn: "n"}
	obs, err := LoadXLSX(&buf, cache, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"2021-01-04|B.1.1.7|3", "2021-01-05|B.1.1.7|5", "2021-01-05||12"}, summarize(obs))
	d, _ := cache.Day("2021-01-05")
	assert.Same(t, d, obs[1].Date)
	assert.Same(t, d, obs[2].Date)
}

func TestLoadXLSX_SheetSelection(t *testing.T) {
	f := workbook(t, "", [][]any{{"note"}, {"ignored"}})
	_, err := f.NewSheet("Lineages")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Lineages", "A1", &[]any{"date", "lineage", "count"}))
	require.NoError(t, f.SetSheetRow("Lineages", "A2", &[]any{"2021-03-01", "P.1", 2}))

	path := filepath.Join(t.TempDir(), "counts.xlsx")
	require.NoError(t, f.SaveAs(path))

	obs, err := LoadFile(path, calendar.NewCache(), Options{Sheet: "Lineages"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2021-03-01|P.1|2"}, summarize(obs))

	_, err = LoadFile(path, calendar.NewCache(), Options{Sheet: "Missing"})
	assert.Error(t, err)
}

func TestLoadXLSX_BadDate(t *testing.T) {
	f := workbook(t, "", [][]any{
		{"date", "lineage", "count"},
		{"2021-01-04", "A", 1},
		{"04/01/2021", "A", 1},
	})
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	_, err = LoadXLSX(&buf, calendar.NewCache(), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, calendar.ErrInvalidDate), "error %v should wrap ErrInvalidDate", err)
	assert.Contains(t, err.Error(), "line 3")
}
