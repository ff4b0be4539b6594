// Package calendar canonicalizes calendar days and ISO weeks into singleton objects.
//
// Two lookups of the same date through one Cache return the same *Day, and every
// *Day links to its *IsoWeek, whose FirstDay links back into the same graph.
// This lets pointers stand in for values as map and group keys throughout the
// series pipeline.
package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/spf13/cast"
)

var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	weekRe = regexp.MustCompile(`^(\d{4})-(\d{1,2})$`)
)

// Cache is an append-only store of canonical days and weeks. It is safe for concurrent use.
// Entries are never evicted.
type Cache struct {
	mu    sync.Mutex
	days  map[string]*Day
	weeks map[string]*IsoWeek
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{
		days:  make(map[string]*Day),
		weeks: make(map[string]*IsoWeek),
	}
}

// Day returns the canonical day for a YYYY-MM-DD string.
func (c *Cache) Day(s string) (*Day, error) {
	c.mu.Lock()
	if d, ok := c.days[s]; ok {
		c.mu.Unlock()
		return d, nil
	}
	c.mu.Unlock()

	if !dateRe.MatchString(s) {
		return nil, dateError(s, "expected YYYY-MM-DD")
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return nil, dateError(s, err.Error())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dayLocked(t, nil), nil
}

// IsoWeek returns the canonical week for a "YYYY-W" or "YYYY-WW" string.
func (c *Cache) IsoWeek(s string) (*IsoWeek, error) {
	m := weekRe.FindStringSubmatch(s)
	if m == nil {
		return nil, weekError(s, "expected YYYY-WW")
	}
	year, _ := strconv.Atoi(m[1])
	week, _ := strconv.Atoi(m[2])
	if week < 1 || week > WeeksInYear(year) {
		return nil, weekError(s, fmt.Sprintf("week %d does not exist in ISO year %d", week, year))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.weekLocked(year, week), nil
}

// Week returns the canonical week for a numeric ISO year and week.
func (c *Cache) Week(year, week int) (*IsoWeek, error) {
	if week < 1 || week > WeeksInYear(year) {
		return nil, weekError(fmt.Sprintf("%04d-%d", year, week), fmt.Sprintf("week %d does not exist in ISO year %d", week, year))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.weekLocked(year, week), nil
}

// DayFromTime returns the canonical day for the calendar date of t in t's own location.
// The time of day is ignored.
func (c *Cache) DayFromTime(t time.Time) *Day {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dayLocked(midnight, nil)
}

// DayFromRaw accepts a time.Time, a date or timestamp string, or unix seconds.
// Numeric timestamps are interpreted in UTC.
func (c *Cache) DayFromRaw(v any) (*Day, error) {
	switch raw := v.(type) {
	case *Day:
		return raw, nil
	case time.Time:
		return c.DayFromTime(raw), nil
	case string:
		if dateRe.MatchString(raw) {
			return c.Day(raw)
		}
		t, err := cast.ToTimeE(raw)
		if err != nil {
			return nil, dateError(raw, "unrecognized timestamp")
		}
		return c.DayFromTime(t), nil
	case float64:
		// JSON numbers decode as float64.
		v = int64(raw)
	}

	t, err := cast.ToTimeE(v)
	if err != nil {
		return nil, dateError(fmt.Sprint(v), "unrecognized timestamp")
	}
	return c.DayFromTime(t.UTC()), nil
}

// Len returns the number of cached days and weeks.
func (c *Cache) Len() (days, weeks int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.days), len(c.weeks)
}

// dayLocked resolves a UTC midnight to its canonical day. When week is nil the
// owning week is resolved first, which may itself create the day (Mondays).
func (c *Cache) dayLocked(t time.Time, week *IsoWeek) *Day {
	key := t.Format(dateLayout)
	if d, ok := c.days[key]; ok {
		return d
	}

	if week == nil {
		year, num := t.ISOWeek()
		week = c.weekLocked(year, num)
		if d, ok := c.days[key]; ok {
			return d
		}
	}

	d := &Day{str: key, t: t, week: week}
	c.days[key] = d
	return d
}

// weekLocked reserves the week in the map before resolving its Monday, then
// patches FirstDay. The reservation is what stops the day path from recursing
// back into week construction.
func (c *Cache) weekLocked(year, num int) *IsoWeek {
	key := fmt.Sprintf("%04d-%02d", year, num)
	if w, ok := c.weeks[key]; ok {
		return w
	}

	w := &IsoWeek{year: year, week: num, str: key}
	c.weeks[key] = w
	w.firstDay = c.dayLocked(isoWeekStart(year, num), w)
	return w
}

// WeeksInYear returns 52 or 53, the number of ISO weeks in the ISO year.
func WeeksInYear(year int) int {
	// Dec 28 always falls in the last ISO week of its year.
	_, week := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return week
}

// isoWeekStart returns the Monday of the given ISO week at 00:00 UTC.
func isoWeekStart(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	return jan4.AddDate(0, 0, (week-1)*7-offset)
}
