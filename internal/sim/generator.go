package sim

import (
	"fmt"
	"time"

	"trip-synth/internal/mobility"
)

// Observer receives progress callbacks during a run. Implementations must
// be cheap; they are called from inside the day loop.
type Observer interface {
	DayProcessed(weekday time.Weekday, skipped bool)
	BranchTaken(kind string)
	TripBuilt(t mobility.Trip)
}

// Options configures a Generator.
type Options struct {
	MonthlyTrip  bool
	SeasonalTrip bool
	Holidays     mobility.Holidays
	// Location is the zone wall-clock departures are interpreted in.
	// Nil means time.Local.
	Location *time.Location
	// Week overrides DefaultWeek.
	Week     Week
	Observer Observer
}

// Generator runs the schedule engine over a date range. The monthly-trip
// flag lives for one Generate call.
type Generator struct {
	builder *Builder
	src     Source
	opts    Options
}

func NewGenerator(builder *Builder, src Source, opts Options) *Generator {
	if opts.Week == nil {
		opts.Week = DefaultWeek()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Generator{builder: builder, src: src, opts: opts}
}

// Days returns the number of days in [start, end).
func Days(start, end mobility.Date) int {
	n := int(end.In(time.UTC).Sub(start.In(time.UTC)).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}

// Validate walks [start, end) without building trips and checks that every
// leg the days can request resolves against the reference tables. Monthly
// state and holidays follow Generate; coin-flip steps require both branches.
func (g *Generator) Validate(start, end mobility.Date) error {
	seen := make(map[[2]string]struct{})
	return g.walk(start, end, func(date time.Time, rule DayRule, d *Day) error {
		for _, l := range rule.possible(d) {
			key := [2]string{l.From, l.To}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			if err := g.check(l); err != nil {
				return fmt.Errorf("validate %s: %w", mobility.DateOf(date), err)
			}
		}
		return nil
	})
}

func (g *Generator) check(l Leg) error {
	if _, err := g.builder.locations.Lookup(l.From); err != nil {
		return err
	}
	if _, err := g.builder.locations.Lookup(l.To); err != nil {
		return err
	}
	_, err := g.builder.travelTimes.Lookup(l.From, l.To)
	return err
}

// Generate emits trips for every day in [start, end), day by day and in
// rule order within a day. The result is not sorted by timestamp.
func (g *Generator) Generate(start, end mobility.Date) ([]mobility.Trip, error) {
	trips := make([]mobility.Trip, 0, Days(start, end)*3)
	err := g.walk(start, end, func(date time.Time, rule DayRule, d *Day) error {
		if g.opts.Observer != nil {
			g.opts.Observer.DayProcessed(date.Weekday(), d.Holiday && rule.SkipOnHoliday)
		}
		for _, l := range rule.legs(d, g.opts.Observer) {
			t, err := g.builder.Build(l.From, l.On(date), l.To)
			if err != nil {
				return fmt.Errorf("generate %s: %w", mobility.DateOf(date), err)
			}
			if g.opts.Observer != nil {
				g.opts.Observer.TripBuilt(t)
			}
			trips = append(trips, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return trips, nil
}

// walk calls fn for each day in [start, end) with fresh monthly state per
// run, reset whenever the month changes.
func (g *Generator) walk(start, end mobility.Date, fn func(date time.Time, rule DayRule, d *Day) error) error {
	st := &state{}
	var prevMonth time.Month
	for i, n := 0, Days(start, end); i < n; i++ {
		date := g.day(start, i)
		if date.Month() != prevMonth {
			st.monthlyTripTaken = false
			prevMonth = date.Month()
		}
		d := &Day{
			Date:    date,
			Holiday: g.opts.Holidays.Contains(mobility.DateOf(date)),
			opts:    &g.opts,
			state:   st,
			src:     g.src,
		}
		if err := fn(date, g.opts.Week[date.Weekday()], d); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) day(start mobility.Date, offset int) time.Time {
	return time.Date(start.Year, start.Month, start.Day+offset, 0, 0, 0, 0, g.opts.Location)
}
