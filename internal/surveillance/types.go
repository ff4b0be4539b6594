package surveillance

import (
	"covtrend/internal/calendar"
	"covtrend/internal/series"
)

// Observation is a count of sequenced samples for one lineage on one day.
// An empty Lineage denotes the whole population.
type Observation struct {
	Date    *calendar.Day `json:"date"`
	Lineage string        `json:"lineage,omitempty"`
	Count   float64       `json:"count"`
}

// WeeklyObservation is an Observation bucketed into an ISO week.
type WeeklyObservation struct {
	Week    *calendar.IsoWeek `json:"week"`
	Lineage string            `json:"lineage,omitempty"`
	Count   float64           `json:"count"`
}

// DailyProportions maps each lineage to its per-day proportion of the population.
type DailyProportions = series.Grouped[string, series.Proportion[Observation]]

// WeeklyProportions maps each lineage to its per-week proportion of the population.
type WeeklyProportions = series.Grouped[string, series.Proportion[WeeklyObservation]]

// Options controls the proportion pipeline.
type Options struct {
	// Smoothing is the width of the centered rolling mean applied to daily counts.
	// Values below 2 disable smoothing. Weekly output is never smoothed.
	Smoothing int
	// Lineages restricts the output to these lineages. Empty keeps all of them.
	Lineages []string
}

func dateOf(o Observation) *calendar.Day { return o.Date }

func weekOf(o WeeklyObservation) *calendar.IsoWeek { return o.Week }

func lineageOf(o Observation) string { return o.Lineage }

func countOf(o Observation) float64 { return o.Count }

func weeklyCountOf(o WeeklyObservation) float64 { return o.Count }

func byDate(a, b Observation) int { return a.Date.Compare(b.Date) }

func byWeek(a, b WeeklyObservation) int { return a.Week.Compare(b.Week) }
