package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"covtrend/internal/ingest"
	"covtrend/internal/report"
	"covtrend/internal/surveillance"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type proportionsFlags struct {
	inputs        []string
	totals        []string
	lineages      []string
	smoothing     int
	weekly        bool
	format        string
	out           string
	dateColumn    string
	lineageColumn string
	countColumn   string
	sheet         string
}

func newProportionsCmd(a *app) *cobra.Command {
	f := &proportionsFlags{}

	cmd := &cobra.Command{
		Use:   "proportions",
		Short: "Compute per-lineage proportions of the sequenced population",
		Long: `Reads per-day lineage counts (CSV, TSV, JSONL or XLSX), fills missing days with zero counts,
optionally smooths them with a centered rolling mean and divides every lineage by the
whole-population count. Without --totals the population is the sum over all lineages.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(f.inputs) == 0 {
				return errors.New("at least one --input is required")
			}
			f.applyDefaults(cmd, a)
			return runProportions(cmd, a, f)
		},
	}

	cmd.Flags().StringSliceVarP(&f.inputs, "input", "i", nil, "lineage count files (repeatable)")
	cmd.Flags().StringSliceVar(&f.totals, "totals", nil, "whole-population count files (repeatable)")
	cmd.Flags().StringSliceVarP(&f.lineages, "lineage", "l", nil, "only report these lineages")
	cmd.Flags().IntVar(&f.smoothing, "smoothing", 7, "centered rolling mean width in days (0 or 1 disables)")
	cmd.Flags().BoolVar(&f.weekly, "weekly", false, "bucket by ISO week instead of day")
	cmd.Flags().StringVarP(&f.format, "format", "f", "table", "output format: table, csv, json")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "write to a file instead of stdout")
	cmd.Flags().StringVar(&f.dateColumn, "date-column", "", "name of the date column")
	cmd.Flags().StringVar(&f.lineageColumn, "lineage-column", "", "name of the lineage column")
	cmd.Flags().StringVar(&f.countColumn, "count-column", "", "name of the count column")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "worksheet to read from .xlsx inputs (default first sheet)")
	return cmd
}

// applyDefaults fills every flag the user did not set from the loaded configuration.
func (f *proportionsFlags) applyDefaults(cmd *cobra.Command, a *app) {
	if a.cfg == nil {
		return
	}
	flags := cmd.Flags()
	if !flags.Changed("smoothing") {
		f.smoothing = a.cfg.Smoothing
	}
	if !flags.Changed("weekly") {
		f.weekly = a.cfg.Weekly
	}
	if !flags.Changed("format") && a.cfg.OutputFormat != "" {
		f.format = a.cfg.OutputFormat
	}
	if f.dateColumn == "" {
		f.dateColumn = a.cfg.Columns.DateColumn
	}
	if f.lineageColumn == "" {
		f.lineageColumn = a.cfg.Columns.LineageColumn
	}
	if f.countColumn == "" {
		f.countColumn = a.cfg.Columns.CountColumn
	}
}

func runProportions(cmd *cobra.Command, a *app, f *proportionsFlags) error {
	opts := ingest.Options{
		DateColumn:    f.dateColumn,
		LineageColumn: f.lineageColumn,
		CountColumn:   f.countColumn,
		Sheet:         f.sheet,
	}
	totalsOpts := opts
	totalsOpts.Totals = true

	// 1. Load numerators and denominators concurrently into the shared cache
	var numerators, totals []surveillance.Observation
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		numerators, err = ingest.LoadFiles(ctx, f.inputs, a.cache, opts)
		return err
	})
	if len(f.totals) > 0 {
		g.Go(func() error {
			var err error
			totals, err = ingest.LoadFiles(ctx, f.totals, a.cache, totalsOpts)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if len(f.totals) == 0 {
		totals = surveillance.TotalsFromObservations(numerators)
	}

	days, weeks := a.cache.Len()
	log.Debug().
		Int("observations", len(numerators)).
		Int("totals", len(totals)).
		Int("cachedDays", days).
		Int("cachedWeeks", weeks).
		Msg("Inputs loaded")

	// 2. Run the pipeline
	pipeline := surveillance.NewPipeline(a.cache, surveillance.Options{
		Smoothing: f.smoothing,
		Lineages:  f.lineages,
	})
	var rows []report.Row
	if f.weekly {
		rows = report.FromWeekly(pipeline.Weekly(numerators, totals))
	} else {
		rows = report.FromDaily(pipeline.Daily(numerators, totals))
	}

	// 3. Emit
	if f.out == "" {
		return report.Write(cmd.OutOrStdout(), f.format, rows)
	}
	if f.format == "json" && filepath.Ext(f.out) == ".jsonl" {
		return report.SaveJSONL(f.out, rows)
	}
	return writeFile(f.out, func(w io.Writer) error { return report.Write(w, f.format, rows) })
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
