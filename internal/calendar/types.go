package calendar

import (
	"encoding/json"
	"time"
)

const dateLayout = "2006-01-02"

// Day is the canonical representation of one calendar date.
// A Cache hands out at most one *Day per date, so the pointer itself can be used as a map key.
type Day struct {
	str  string
	t    time.Time
	week *IsoWeek
}

// String returns the YYYY-MM-DD form.
func (d *Day) String() string {
	return d.str
}

// Time returns the date at 00:00 UTC.
func (d *Day) Time() time.Time {
	return d.t
}

// IsoWeek returns the ISO week the day belongs to.
func (d *Day) IsoWeek() *IsoWeek {
	return d.week
}

// Weekday returns the day of the week.
func (d *Day) Weekday() time.Weekday {
	return d.t.Weekday()
}

// Compare orders days chronologically (-1, 0, +1).
func (d *Day) Compare(other *Day) int {
	return d.t.Compare(other.t)
}

// Before reports whether d is strictly earlier than other.
func (d *Day) Before(other *Day) bool {
	return d.t.Before(other.t)
}

// MarshalJSON encodes the day as its YYYY-MM-DD string.
func (d *Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.str)
}

// IsoWeek is the canonical representation of one ISO-8601 week.
type IsoWeek struct {
	year     int
	week     int
	str      string
	firstDay *Day
}

// Year returns the ISO year, which may differ from the Gregorian year of some of its days.
func (w *IsoWeek) Year() int {
	return w.year
}

// Week returns the ISO week number (1-53).
func (w *IsoWeek) Week() int {
	return w.week
}

// String returns the YYYY-WW form.
func (w *IsoWeek) String() string {
	return w.str
}

// FirstDay returns the Monday that starts the week.
func (w *IsoWeek) FirstDay() *Day {
	return w.firstDay
}

// Compare orders weeks chronologically (-1, 0, +1).
func (w *IsoWeek) Compare(other *IsoWeek) int {
	return w.firstDay.Compare(other.firstDay)
}

// MarshalJSON encodes the week as its YYYY-WW string.
func (w *IsoWeek) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.str)
}
