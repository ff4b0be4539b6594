// Package surveillance turns per-day lineage counts into proportion series with
// Wilson confidence intervals.
package surveillance

import (
	"math"
	"slices"

	"covtrend/internal/calendar"
	"covtrend/internal/series"
	"covtrend/internal/stats"

	"github.com/rs/zerolog/log"
)

// Pipeline computes lineage proportions against a whole-population denominator.
type Pipeline struct {
	cache *calendar.Cache
	opts  Options
}

// NewPipeline creates a pipeline that canonicalizes dates through cache.
func NewPipeline(cache *calendar.Cache, opts Options) *Pipeline {
	return &Pipeline{cache: cache, opts: opts}
}

type dayLineage struct {
	day     *calendar.Day
	lineage string
}

type weekLineage struct {
	week    *calendar.IsoWeek
	lineage string
}

// Daily computes per-day lineage proportions. Every lineage is filled with
// zero counts over the full date range of both inputs so the output is dense.
func (p *Pipeline) Daily(numerators, totals []Observation) DailyProportions {
	domain, ok := p.dayDomain(numerators, totals)
	if !ok {
		return series.FromGroups[string, series.Proportion[Observation]](nil, nil)
	}

	// 1. Collapse duplicate (day, lineage) rows and split by lineage
	counts := p.selectLineages(aggregateDaily(numerators))
	grouped := series.GroupBy(counts, lineageOf)

	// 2. Densify and order every lineage
	grouped = series.FillGrouped(grouped, dateOf, domain, func(lineage string, d *calendar.Day) Observation {
		return Observation{Date: d, Lineage: lineage}
	}).Sort(byDate)

	// 3. Same treatment for the denominator, keyed on the day alone
	population := series.Fill(series.From(TotalsFromObservations(totals)), dateOf, domain, func(d *calendar.Day) Observation {
		return Observation{Date: d}
	}).Sort(byDate)

	// 4. Optional centered smoothing
	if p.opts.Smoothing > 1 {
		grouped = series.MapGroups(grouped, func(lineage string, s series.Linear[Observation]) series.Linear[Observation] {
			return p.smooth(lineage, s)
		})
		population = p.smooth("", population)
	}

	// 5. Divide by the population and order lineages by name
	result := series.DivideGroupsBySingle(grouped, population, dateOf, countOf).SortGroups(nil)
	logUndefined(result)
	return result
}

// Weekly computes per-ISO-week lineage proportions.
func (p *Pipeline) Weekly(numerators, totals []Observation) WeeklyProportions {
	days, ok := p.dayDomain(numerators, totals)
	if !ok {
		return series.FromGroups[string, series.Proportion[WeeklyObservation]](nil, nil)
	}
	domain := p.cache.WeeksBetween(days[0].IsoWeek(), days[len(days)-1].IsoWeek())

	counts := aggregateWeekly(p.selectLineages(series.From(numerators)))
	grouped := series.GroupBy(counts, func(o WeeklyObservation) string { return o.Lineage })
	grouped = series.FillGrouped(grouped, weekOf, domain, func(lineage string, w *calendar.IsoWeek) WeeklyObservation {
		return WeeklyObservation{Week: w, Lineage: lineage}
	}).Sort(byWeek)

	population := series.Fill(aggregateWeekly(series.From(TotalsFromObservations(totals))), weekOf, domain, func(w *calendar.IsoWeek) WeeklyObservation {
		return WeeklyObservation{Week: w}
	}).Sort(byWeek)

	result := series.DivideGroupsBySingle(grouped, population, weekOf, weeklyCountOf).SortGroups(nil)
	logUndefined(result)
	return result
}

// TotalsFromObservations derives the whole-population count per day by summing all
// lineages. The result carries no lineage, so labelled totals collapse to one row per day.
func TotalsFromObservations(obs []Observation) []Observation {
	byDay := series.GroupBy(series.From(obs), dateOf)
	return series.Summarize(byDay, func(d *calendar.Day, s series.Linear[Observation]) Observation {
		return Observation{Date: d, Count: stats.Sum(series.Map(s, countOf).Data())}
	}).Sort(byDate).Data()
}

func (p *Pipeline) dayDomain(numerators, totals []Observation) ([]*calendar.Day, bool) {
	all := make([]*calendar.Day, 0, len(numerators)+len(totals))
	for _, o := range slices.Concat(numerators, totals) {
		all = append(all, o.Date)
	}
	lo, hi, ok := calendar.DayRange(all)
	if !ok {
		return nil, false
	}
	return p.cache.DaysBetween(lo, hi), true
}

func (p *Pipeline) selectLineages(s series.Linear[Observation]) series.Linear[Observation] {
	if len(p.opts.Lineages) == 0 {
		return s
	}
	return s.Filter(func(o Observation) bool { return slices.Contains(p.opts.Lineages, o.Lineage) })
}

// smooth replaces every count by the mean of the window centered on it. The
// first and last Smoothing/2 days have no full window and are dropped.
func (p *Pipeline) smooth(lineage string, s series.Linear[Observation]) series.Linear[Observation] {
	if !s.IsSorted(byDate) {
		log.Warn().Str("lineage", lineage).Msg("Rolling window applied to an unsorted series")
	}
	n := p.opts.Smoothing
	return series.Rolling(s, n, func(w []Observation) Observation {
		values := make([]float64, len(w))
		for i, o := range w {
			values[i] = o.Count
		}
		return Observation{Date: w[n/2].Date, Lineage: lineage, Count: stats.Mean(values)}
	})
}

func aggregateDaily(obs []Observation) series.Linear[Observation] {
	keyed := series.GroupBy(series.From(obs), func(o Observation) dayLineage { return dayLineage{o.Date, o.Lineage} })
	return series.Summarize(keyed, func(k dayLineage, s series.Linear[Observation]) Observation {
		return Observation{Date: k.day, Lineage: k.lineage, Count: stats.Sum(series.Map(s, countOf).Data())}
	})
}

func aggregateWeekly(s series.Linear[Observation]) series.Linear[WeeklyObservation] {
	keyed := series.GroupBy(s, func(o Observation) weekLineage { return weekLineage{o.Date.IsoWeek(), o.Lineage} })
	return series.Summarize(keyed, func(k weekLineage, s series.Linear[Observation]) WeeklyObservation {
		return WeeklyObservation{Week: k.week, Lineage: k.lineage, Count: stats.Sum(series.Map(s, countOf).Data())}
	})
}

func logUndefined[E any](g series.Grouped[string, series.Proportion[E]]) {
	undefined := 0
	for _, s := range g.All() {
		for _, p := range s.All() {
			if math.IsNaN(p.Proportion) || math.IsInf(p.Proportion, 0) {
				undefined++
			}
		}
	}
	if undefined > 0 {
		log.Debug().Int("buckets", undefined).Msg("Proportions with an empty denominator left undefined")
	}
}
