package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"covtrend/cmd/mockgen/engine"
	"covtrend/internal/calendar"
)

func main() {
	scenario := flag.String("scenario", "mild", "Scenario to generate: mild, sweep, drift")
	distribution := flag.String("distribution", "poisson", "Daily total distribution: uniform, poisson")
	outDir := flag.String("out", "./.cache", "Output directory for mock files")
	days := flag.Int("days", 120, "Number of days to generate")
	mean := flag.Float64("mean", 200, "Mean sequenced samples per day")
	lineages := flag.String("lineages", strings.Join(engine.DefaultLineages, ","), "Comma-separated lineage names")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario:     *scenario,
		Distribution: *distribution,
		Days:         *days,
		DailyMean:    *mean,
		Lineages:     strings.Split(*lineages, ","),
		Seed:         *seed,
		End:          time.Now(),
	}

	fmt.Printf("Generating scenario '%s' (Distribution: %s, Days: %d) to %s...\n", cfg.Scenario, cfg.Distribution, cfg.Days, *outDir)

	numerators, totals := engine.Generate(cfg, calendar.NewCache())

	sourceID := "COVTREND_MOCK"
	if err := engine.Save(*outDir, sourceID, numerators, totals); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}
