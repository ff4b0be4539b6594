// Package ingest reads raw per-day lineage counts from CSV, JSONL and Excel files.
package ingest

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"covtrend/internal/calendar"
	"covtrend/internal/series"
	"covtrend/internal/surveillance"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"
	"golang.org/x/sync/errgroup"
)

const (
	fieldDate    = "date"
	fieldLineage = "lineage"
	fieldCount   = "count"
)

// Options names the source columns. Empty names fall back to the defaults.
// Sheet selects the worksheet of an .xlsx workbook, the first one when empty.
// Totals marks whole-population files, whose lineage column is optional.
type Options struct {
	DateColumn    string
	LineageColumn string
	CountColumn   string
	Delimiter     rune
	Sheet         string
	Totals        bool
}

// DefaultOptions returns the column layout "date,lineage,count".
func DefaultOptions() Options {
	return Options{
		DateColumn:    fieldDate,
		LineageColumn: fieldLineage,
		CountColumn:   fieldCount,
		Delimiter:     ',',
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.DateColumn == "" {
		o.DateColumn = d.DateColumn
	}
	if o.LineageColumn == "" {
		o.LineageColumn = d.LineageColumn
	}
	if o.CountColumn == "" {
		o.CountColumn = d.CountColumn
	}
	if o.Delimiter == 0 {
		o.Delimiter = d.Delimiter
	}
	return o
}

// LoadCSV reads a CSV document with a header row.
func LoadCSV(r io.Reader, cache *calendar.Cache, opts Options) ([]surveillance.Observation, error) {
	opts = opts.withDefaults()

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []series.Row
	var lines []int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)

		row := make(series.Row, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		rows = append(rows, row)
		lines = append(lines, line)
	}

	return decode(series.From(rows), lines, cache, opts)
}

// LoadJSONL reads one JSON object per line. Lines that are not valid JSON are skipped.
func LoadJSONL(r io.Reader, cache *calendar.Cache, opts Options) ([]surveillance.Observation, error) {
	opts = opts.withDefaults()

	var rows []series.Row
	var lines []int
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var row series.Row
		if err := json.Unmarshal([]byte(text), &row); err != nil {
			log.Warn().Err(err).Int("line", line).Msg("Skipping invalid JSON line")
			continue
		}
		rows = append(rows, row)
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading jsonl: %w", err)
	}

	return decode(series.From(rows), lines, cache, opts)
}

// LoadFile picks a loader from the file extension (.csv, .tsv, .jsonl, .ndjson, .xlsx).
func LoadFile(path string, cache *calendar.Cache, opts Options) ([]surveillance.Observation, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	var obs []surveillance.Observation
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		obs, err = LoadCSV(file, cache, opts)
	case ".tsv":
		opts.Delimiter = '\t'
		obs, err = LoadCSV(file, cache, opts)
	case ".jsonl", ".ndjson":
		obs, err = LoadJSONL(file, cache, opts)
	case ".xlsx":
		obs, err = LoadXLSX(file, cache, opts)
	default:
		return nil, fmt.Errorf("unsupported input format: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	log.Debug().Str("path", path).Int("count", len(obs)).Msg("Loaded observations")
	return obs, nil
}

// LoadFiles loads every path concurrently into one shared cache and returns the
// observations in path order. The first failure cancels the remaining loads.
func LoadFiles(ctx context.Context, paths []string, cache *calendar.Cache, opts Options) ([]surveillance.Observation, error) {
	results := make([][]surveillance.Observation, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			obs, err := LoadFile(path, cache, opts)
			if err != nil {
				return err
			}
			results[i] = obs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []surveillance.Observation
	for _, obs := range results {
		all = append(all, obs...)
	}
	return all, nil
}

// decode normalizes column names and converts rows into observations.
// Calendar parse errors are returned wrapped with their line number.
func decode(rows series.Linear[series.Row], lines []int, cache *calendar.Cache, opts Options) ([]surveillance.Observation, error) {
	rows = series.RenameField(rows, opts.DateColumn, fieldDate)
	rows = series.RenameField(rows, opts.LineageColumn, fieldLineage)
	rows = series.RenameField(rows, opts.CountColumn, fieldCount)

	out := make([]surveillance.Observation, 0, rows.Len())
	for i, row := range rows.All() {
		raw, ok := row[fieldDate]
		if !ok {
			return nil, fmt.Errorf("line %d: missing %q", lines[i], opts.DateColumn)
		}
		day, err := cache.DayFromRaw(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lines[i], err)
		}

		rawCount, ok := row[fieldCount]
		if !ok {
			return nil, fmt.Errorf("line %d: missing %q", lines[i], opts.CountColumn)
		}
		rawLineage, ok := row[fieldLineage]
		if !ok && !opts.Totals {
			return nil, fmt.Errorf("line %d: missing %q", lines[i], opts.LineageColumn)
		}

		count, err := cast.ToFloat64E(rawCount)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid %q: %w", lines[i], opts.CountColumn, err)
		}
		if count < 0 {
			return nil, fmt.Errorf("line %d: negative %q %v", lines[i], opts.CountColumn, count)
		}

		out = append(out, surveillance.Observation{
			Date:    day,
			Lineage: strings.TrimSpace(cast.ToString(rawLineage)),
			Count:   count,
		})
	}
	return out, nil
}
