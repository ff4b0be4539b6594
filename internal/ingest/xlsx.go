package ingest

import (
	"fmt"
	"io"
	"strings"

	"covtrend/internal/calendar"
	"covtrend/internal/series"
	"covtrend/internal/surveillance"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads one worksheet of an Excel workbook whose first row is the header.
// Cells are read with their display formatting, so date cells must be formatted
// as YYYY-MM-DD or stored as text.
func LoadXLSX(r io.Reader, cache *calendar.Cache, opts Options) ([]surveillance.Observation, error) {
	opts = opts.withDefaults()

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil
		}
		sheet = sheets[0]
	}

	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	header := cells[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []series.Row
	var lines []int
	for i, record := range cells[1:] {
		if len(record) == 0 {
			// GetRows trims trailing empty rows but keeps blank ones in between
			continue
		}
		row := make(series.Row, len(header))
		for j, name := range header {
			if name == "" {
				continue
			}
			// GetRows drops trailing empty cells
			row[name] = ""
			if j < len(record) {
				row[name] = record[j]
			}
		}
		rows = append(rows, row)
		lines = append(lines, i+2)
	}

	log.Debug().Str("sheet", sheet).Int("rows", len(rows)).Msg("Read worksheet")
	return decode(series.From(rows), lines, cache, opts)
}
