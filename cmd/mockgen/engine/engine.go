package engine

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"covtrend/internal/calendar"
	"covtrend/internal/surveillance"
)

type GeneratorConfig struct {
	Scenario     string // "mild", "sweep" or "drift"
	Distribution string // "uniform" or "poisson"
	Days         int
	DailyMean    float64
	Lineages     []string
	Seed         int64
	End          time.Time
}

// DefaultLineages is used when the config names none.
var DefaultLineages = []string{"B.1.177", "B.1.1.7", "B.1.351", "P.1"}

// Generate returns per-lineage counts and the matching whole-population totals
// for cfg.Days consecutive days ending on cfg.End. Zero counts are left out of
// the lineage series, the way sparse surveillance exports omit them.
func Generate(cfg GeneratorConfig, cache *calendar.Cache) (numerators, totals []surveillance.Observation) {
	if cfg.End.IsZero() {
		cfg.End = time.Now()
	}
	if len(cfg.Lineages) == 0 {
		cfg.Lineages = DefaultLineages
	}
	if cfg.DailyMean <= 0 {
		cfg.DailyMean = 200
	}
	if cfg.Days <= 0 {
		return nil, nil
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	last := cache.DayFromTime(cfg.End)
	days := cache.DaysBetween(cache.AddDays(last, 1-cfg.Days), last)

	for i, day := range days {
		// 1. Sample the sequenced population for the day
		var total int
		if cfg.Distribution == "poisson" {
			total = poissonSample(rng, cfg.DailyMean)
		} else {
			total = int(cfg.DailyMean*0.5 + rng.Float64()*cfg.DailyMean)
		}
		totals = append(totals, surveillance.Observation{Date: day, Count: float64(total)})

		// 2. Split it across lineages
		shares := lineageShares(cfg.Scenario, len(cfg.Lineages), float64(i)/float64(len(days)))
		remaining := total
		for j, lineage := range cfg.Lineages {
			n := remaining
			if j < len(cfg.Lineages)-1 {
				n = binomialSample(rng, remaining, conditionalShare(shares, j))
			}
			remaining -= n
			if n > 0 {
				numerators = append(numerators, surveillance.Observation{Date: day, Lineage: lineage, Count: float64(n)})
			}
		}
	}
	return numerators, totals
}

// lineageShares returns expected fractions summing to 1. progress runs from 0 at
// the first day to just under 1 at the last.
func lineageShares(scenario string, n int, progress float64) []float64 {
	shares := make([]float64, n)
	switch scenario {
	case "sweep":
		// The last lineage rises along a logistic curve centered on the middle day
		rising := 1 / (1 + math.Exp(-12*(progress-0.5)))
		if n == 1 {
			shares[0] = 1
			return shares
		}
		for j := range shares[:n-1] {
			shares[j] = (1 - rising) / float64(n-1)
		}
		shares[n-1] = rising
	case "drift":
		// Weight slides linearly from the first lineage to the last
		var sum float64
		for j := range shares {
			pos := float64(j) / math.Max(float64(n-1), 1)
			shares[j] = 1 + 4*(1-math.Abs(pos-progress))
			sum += shares[j]
		}
		for j := range shares {
			shares[j] /= sum
		}
	default:
		for j := range shares {
			shares[j] = 1 / float64(n)
		}
	}
	return shares
}

// conditionalShare is lineage j's share of what remains after lineages 0..j-1.
func conditionalShare(shares []float64, j int) float64 {
	rest := 0.0
	for _, s := range shares[j:] {
		rest += s
	}
	if rest <= 0 {
		return 0
	}
	return math.Min(shares[j]/rest, 1)
}

func poissonSample(rng *rand.Rand, mean float64) int {
	if mean > 500 {
		// Normal approximation
		return max(0, int(math.Round(mean+rng.NormFloat64()*math.Sqrt(mean))))
	}
	limit := math.Exp(-mean)
	k, p := 0, rng.Float64()
	for p > limit {
		k++
		p *= rng.Float64()
	}
	return k
}

func binomialSample(rng *rand.Rand, n int, p float64) int {
	k := 0
	for range n {
		if rng.Float64() < p {
			k++
		}
	}
	return k
}

// Save writes <sourceID>.csv with lineage counts and <sourceID>_totals.csv with
// the population counts, both readable by the ingest package.
func Save(outDir, sourceID string, numerators, totals []surveillance.Observation) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	countsPath := filepath.Join(outDir, sourceID+".csv")
	if err := writeCSV(countsPath, []string{"date", "lineage", "count"}, numerators, true); err != nil {
		return err
	}
	totalsPath := filepath.Join(outDir, sourceID+"_totals.csv")
	return writeCSV(totalsPath, []string{"date", "count"}, totals, false)
}

func writeCSV(path string, header []string, obs []surveillance.Observation, withLineage bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := bufio.NewWriter(f)
	w := csv.NewWriter(buf)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, o := range obs {
		record := []string{o.Date.String()}
		if withLineage {
			record = append(record, o.Lineage)
		}
		record = append(record, strconv.FormatFloat(o.Count, 'f', -1, 64))
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return buf.Flush()
}
