// Package report flattens proportion series into rows and writes them out.
package report

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"text/tabwriter"

	"covtrend/internal/surveillance"

	"github.com/rs/zerolog/log"
)

// Row is one lineage bucket: a day or an ISO week.
type Row struct {
	Key            string
	Lineage        string
	Count          float64
	Total          float64
	Proportion     float64
	ConfidenceLow  float64
	ConfidenceHigh float64
}

type jsonRow struct {
	Key            string   `json:"key"`
	Lineage        string   `json:"lineage"`
	Count          *float64 `json:"count"`
	Total          *float64 `json:"total"`
	Proportion     *float64 `json:"proportion"`
	ConfidenceLow  *float64 `json:"confidenceLow"`
	ConfidenceHigh *float64 `json:"confidenceHigh"`
}

// MarshalJSON writes non-finite values as null.
func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonRow{
		Key:            r.Key,
		Lineage:        r.Lineage,
		Count:          finite(r.Count),
		Total:          finite(r.Total),
		Proportion:     finite(r.Proportion),
		ConfidenceLow:  finite(r.ConfidenceLow),
		ConfidenceHigh: finite(r.ConfidenceHigh),
	})
}

// FromDaily flattens daily proportions in lineage order, then date order.
func FromDaily(g surveillance.DailyProportions) []Row {
	var rows []Row
	for lineage, s := range g.All() {
		for _, p := range s.All() {
			rows = append(rows, Row{
				Key:            p.Record.Date.String(),
				Lineage:        lineage,
				Count:          p.Record.Count,
				Total:          p.Total,
				Proportion:     p.Proportion,
				ConfidenceLow:  p.ConfidenceLow,
				ConfidenceHigh: p.ConfidenceHigh,
			})
		}
	}
	return rows
}

// FromWeekly flattens weekly proportions in lineage order, then week order.
func FromWeekly(g surveillance.WeeklyProportions) []Row {
	var rows []Row
	for lineage, s := range g.All() {
		for _, p := range s.All() {
			rows = append(rows, Row{
				Key:            p.Record.Week.String(),
				Lineage:        lineage,
				Count:          p.Record.Count,
				Total:          p.Total,
				Proportion:     p.Proportion,
				ConfidenceLow:  p.ConfidenceLow,
				ConfidenceHigh: p.ConfidenceHigh,
			})
		}
	}
	return rows
}

// Write dispatches on format: "json", "csv" or "table".
func Write(w io.Writer, format string, rows []Row) error {
	switch format {
	case "json", "jsonl":
		return WriteJSONL(w, rows)
	case "csv":
		return WriteCSV(w, rows)
	case "table", "":
		return WriteTable(w, rows)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// WriteJSONL writes one JSON object per row.
func WriteJSONL(w io.Writer, rows []Row) error {
	encoder := json.NewEncoder(w)
	for _, r := range rows {
		if err := encoder.Encode(r); err != nil {
			return fmt.Errorf("failed to encode row: %w", err)
		}
	}
	return nil
}

var csvHeader = []string{"key", "lineage", "count", "total", "proportion", "confidenceLow", "confidenceHigh"}

// WriteCSV writes rows with a header. Non-finite values become empty cells.
func WriteCSV(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Key,
			r.Lineage,
			formatCSV(r.Count),
			formatCSV(r.Total),
			formatCSV(r.Proportion),
			formatCSV(r.ConfidenceLow),
			formatCSV(r.ConfidenceHigh),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTable writes an aligned, human-readable table.
func WriteTable(w io.Writer, rows []Row) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tLINEAGE\tCOUNT\tTOTAL\tPROPORTION\t95% CI")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t[%s, %s]\n",
			r.Key,
			r.Lineage,
			formatTable(r.Count, 1),
			formatTable(r.Total, 1),
			formatTable(r.Proportion, 4),
			formatTable(r.ConfidenceLow, 4),
			formatTable(r.ConfidenceHigh, 4),
		)
	}
	return tw.Flush()
}

// SaveJSONL writes rows to path through a temporary file and an atomic rename.
func SaveJSONL(path string, rows []Row) error {
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	writer := bufio.NewWriter(file)
	if err := WriteJSONL(writer, rows); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush writer: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename output file: %w", err)
	}

	log.Info().Str("path", path).Int("rows", len(rows)).Msg("Proportions saved")
	return nil
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func formatCSV(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatTable(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
