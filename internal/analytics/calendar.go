package analytics

import (
	"time"

	"attentionos/internal/analytics/models"
)

// Clock abstracts time so derived metrics stay deterministic in tests
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns the current time
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant
type FixedClock struct {
	At time.Time
}

// Now returns the fixed instant
func (c FixedClock) Now() time.Time {
	return c.At
}

// Day is a calendar date with no time-of-day component
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// CalendarDay truncates t to its calendar date as observed in loc.
// Every day-granularity comparison in this package goes through here.
func CalendarDay(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return Day{Year: y, Month: m, Day: d}
}

// DaysAfter returns how many whole calendar days d lies after other.
// DST transitions do not affect the result.
func (d Day) DaysAfter(other Day) int {
	a := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	b := time.Date(other.Year, other.Month, other.Day, 0, 0, 0, 0, time.UTC)
	return int(a.Sub(b).Hours() / 24)
}

// Time returns local midnight of the day
func (d Day) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// String formats the day as YYYY-MM-DD
func (d Day) String() string {
	return d.Time(time.UTC).Format("2006-01-02")
}

// SessionsOn returns the sessions that started on day, preserving input order
func SessionsOn(sessions []models.Session, day Day, loc *time.Location) []models.Session {
	result := make([]models.Session, 0)
	for _, s := range sessions {
		if CalendarDay(s.StartTime, loc) == day {
			result = append(result, s)
		}
	}
	return result
}
