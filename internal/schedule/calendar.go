package schedule

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Month is a calendar month independent of any budget.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month containing d.
func MonthOf(d civil.Date) Month {
	return Month{Year: d.Year, Month: d.Month}
}

// DaysIn returns the number of days in the given month, accounting for leap years.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the following month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DueDate resolves a day-of-month against a concrete month: min(day, last day).
// Days below 1 are clamped to the first.
func DueDate(year int, month time.Month, day int) civil.Date {
	if last := DaysIn(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return civil.Date{Year: year, Month: month, Day: day}
}

// FirstDay returns the first day of the month.
func (m Month) FirstDay() civil.Date {
	return civil.Date{Year: m.Year, Month: m.Month, Day: 1}
}

// LastDay returns the last day of the month.
func (m Month) LastDay() civil.Date {
	return civil.Date{Year: m.Year, Month: m.Month, Day: DaysIn(m.Year, m.Month)}
}

// Contains reports whether d falls inside the month.
func (m Month) Contains(d civil.Date) bool {
	return d.Year == m.Year && d.Month == m.Month
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Before reports whether m is strictly earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// After reports whether m is strictly later than o.
func (m Month) After(o Month) bool {
	return o.Before(m)
}

// MonthsUntil counts the months from m to o inclusive; zero when o precedes m.
func (m Month) MonthsUntil(o Month) int {
	n := (o.Year-m.Year)*12 + int(o.Month-m.Month) + 1
	if n < 0 {
		return 0
	}
	return n
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Date converts a time to its calendar date in UTC.
func Date(t time.Time) civil.Date {
	return civil.DateOf(t.UTC())
}

// Time converts a calendar date to midnight UTC, the storage form for date columns.
func Time(d civil.Date) time.Time {
	return d.In(time.UTC)
}
