package mobility

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day without a time component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate reads a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// In returns midnight of the day in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Holidays is a set of calendar days.
type Holidays map[Date]struct{}

func NewHolidays(days ...Date) Holidays {
	h := make(Holidays, len(days))
	for _, d := range days {
		h[d] = struct{}{}
	}
	return h
}

// AddRange inserts every day from first to last inclusive.
func (h Holidays) AddRange(first, last Date) {
	for t := first.In(time.UTC); !t.After(last.In(time.UTC)); t = t.AddDate(0, 0, 1) {
		h[DateOf(t)] = struct{}{}
	}
}

// Contains reports whether d is a holiday.
func (h Holidays) Contains(d Date) bool {
	_, ok := h[d]
	return ok
}
