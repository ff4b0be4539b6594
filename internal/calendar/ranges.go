package calendar

// AddDays returns the canonical day n days after d (n may be negative).
func (c *Cache) AddDays(d *Day, n int) *Day {
	if n == 0 {
		return d
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dayLocked(d.t.AddDate(0, 0, n), nil)
}

// DaysBetween returns every day from `from` to `to`, both inclusive.
// The result is empty when from is after to.
func (c *Cache) DaysBetween(from, to *Day) []*Day {
	if to.Before(from) {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var days []*Day
	for t := from.t; !t.After(to.t); t = t.AddDate(0, 0, 1) {
		days = append(days, c.dayLocked(t, nil))
	}
	return days
}

// WeeksBetween returns every ISO week from `from` to `to`, both inclusive.
func (c *Cache) WeeksBetween(from, to *IsoWeek) []*IsoWeek {
	if to.Compare(from) < 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var weeks []*IsoWeek
	for t := from.firstDay.t; !t.After(to.firstDay.t); t = t.AddDate(0, 0, 7) {
		year, num := t.ISOWeek()
		weeks = append(weeks, c.weekLocked(year, num))
	}
	return weeks
}

// DayRange returns the earliest and latest day. ok is false for an empty slice.
func DayRange(days []*Day) (minDay, maxDay *Day, ok bool) {
	for _, d := range days {
		if minDay == nil || d.Before(minDay) {
			minDay = d
		}
		if maxDay == nil || maxDay.Before(d) {
			maxDay = d
		}
	}
	return minDay, maxDay, minDay != nil
}

// WeekRange returns the earliest and latest week. ok is false for an empty slice.
func WeekRange(weeks []*IsoWeek) (minWeek, maxWeek *IsoWeek, ok bool) {
	for _, w := range weeks {
		if minWeek == nil || w.Compare(minWeek) < 0 {
			minWeek = w
		}
		if maxWeek == nil || w.Compare(maxWeek) > 0 {
			maxWeek = w
		}
	}
	return minWeek, maxWeek, minWeek != nil
}
