package sim

import (
	"time"
)

// Leg is one trip request: leave From at Hour:Minute local time, go to To.
type Leg struct {
	From   string
	Hour   int
	Minute int
	To     string
}

// On returns the leg's departure wall-clock time on day.
func (l Leg) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, l.Hour, l.Minute, 0, 0, day.Location())
}

// Day is what a step's condition can look at.
type Day struct {
	Date    time.Time
	Holiday bool

	opts  *Options
	state *state
	src   Source
}

type state struct {
	monthlyTripTaken bool
}

// Condition is evaluated at most once per step per day.
type Condition func(*Day) bool

// Step emits Then when When holds (or When is nil), otherwise Else.
// Kind names the branch for observers. Random marks a When that draws from
// the source, so either branch can run on any matching day.
type Step struct {
	Kind   string
	When   Condition
	Random bool
	Then   []Leg
	Else   []Leg
	Taken  func(*Day)
}

// DayRule is the ordered list of steps for one weekday.
type DayRule struct {
	SkipOnHoliday bool
	Steps         []Step
}

// Week maps a weekday to its rule. Missing weekdays emit nothing.
type Week map[time.Weekday]DayRule

const (
	KindMonthly  = "monthly"
	KindSeasonal = "seasonal"
	KindGrocery  = "grocery"
)

func always(legs ...Leg) Step { return Step{Then: legs} }

func monthlyDue(d *Day) bool { return d.opts.MonthlyTrip && !d.state.monthlyTripTaken }

func markMonthlyTaken(d *Day) { d.state.monthlyTripTaken = true }

// summerSeason covers May through September.
func summerSeason(d *Day) bool {
	m := d.Date.Month()
	return d.opts.SeasonalTrip && m >= time.May && m <= time.September
}

func coinFlip(d *Day) bool { return d.src.Intn(2) == 1 }

// DefaultWeek is the commuting pattern: office days Monday to Friday with a
// monthly back-office visit, summer swimming on Tuesday and Thursday, random
// grocery stops on Wednesday and Friday, errands and family on the weekend.
func DefaultWeek() Week {
	return Week{
		time.Monday: {
			SkipOnHoliday: true,
			Steps: []Step{{
				Kind:  KindMonthly,
				When:  monthlyDue,
				Taken: markMonthlyTaken,
				Then: []Leg{
					{From: "home", Hour: 8, Minute: 0, To: "back_office"},
					{From: "back_office", Hour: 15, Minute: 45, To: "home"},
				},
				Else: []Leg{
					{From: "home", Hour: 6, Minute: 0, To: "work"},
					{From: "work", Hour: 16, Minute: 30, To: "home"},
				},
			}},
		},
		time.Tuesday: {
			SkipOnHoliday: true,
			Steps: []Step{
				always(Leg{From: "home", Hour: 6, Minute: 0, To: "work"}),
				{
					Kind: KindSeasonal,
					When: summerSeason,
					Then: []Leg{
						{From: "work", Hour: 14, Minute: 45, To: "swimming"},
						{From: "swimming", Hour: 16, Minute: 20, To: "home"},
					},
					Else: []Leg{{From: "work", Hour: 16, Minute: 30, To: "home"}},
				},
			},
		},
		time.Wednesday: {
			SkipOnHoliday: true,
			Steps: []Step{
				always(Leg{From: "home", Hour: 6, Minute: 0, To: "work"}),
				{
					Kind:   KindGrocery,
					When:   coinFlip,
					Random: true,
					Then: []Leg{
						{From: "work", Hour: 16, Minute: 30, To: "grocery"},
						{From: "grocery", Hour: 17, Minute: 15, To: "home"},
					},
					Else: []Leg{{From: "work", Hour: 16, Minute: 30, To: "home"}},
				},
				always(
					Leg{From: "home", Hour: 18, Minute: 24, To: "workout"},
					Leg{From: "workout", Hour: 20, Minute: 49, To: "home"},
				),
			},
		},
		time.Thursday: {
			SkipOnHoliday: true,
			Steps: []Step{
				always(Leg{From: "home", Hour: 6, Minute: 15, To: "work"}),
				{
					Kind: KindSeasonal,
					When: summerSeason,
					Then: []Leg{
						{From: "work", Hour: 15, Minute: 20, To: "swimming"},
						{From: "swimming", Hour: 17, Minute: 0, To: "home"},
					},
					Else: []Leg{{From: "work", Hour: 16, Minute: 30, To: "home"}},
				},
			},
		},
		time.Friday: {
			SkipOnHoliday: true,
			Steps: []Step{
				always(Leg{From: "home", Hour: 6, Minute: 0, To: "work"}),
				{
					Kind:   KindGrocery,
					When:   coinFlip,
					Random: true,
					Then: []Leg{
						{From: "work", Hour: 15, Minute: 30, To: "grocery"},
						{From: "grocery", Hour: 16, Minute: 15, To: "home"},
					},
					Else: []Leg{{From: "work", Hour: 15, Minute: 30, To: "home"}},
				},
				always(
					Leg{From: "home", Hour: 19, Minute: 27, To: "orchestra"},
					Leg{From: "orchestra", Hour: 22, Minute: 15, To: "home"},
				),
			},
		},
		time.Saturday: {
			Steps: []Step{always(
				Leg{From: "home", Hour: 10, Minute: 0, To: "grocery"},
				Leg{From: "grocery", Hour: 11, Minute: 5, To: "home"},
			)},
		},
		time.Sunday: {
			Steps: []Step{always(
				Leg{From: "home", Hour: 11, Minute: 55, To: "parents"},
				Leg{From: "parents", Hour: 15, Minute: 0, To: "home"},
			)},
		},
	}
}

// legs evaluates the rule for one day and returns the legs to emit in order.
func (r DayRule) legs(d *Day, obs Observer) []Leg {
	if r.SkipOnHoliday && d.Holiday {
		return nil
	}
	var out []Leg
	for _, s := range r.Steps {
		if s.When == nil || s.When(d) {
			if s.Taken != nil {
				s.Taken(d)
			}
			if s.Kind != "" && obs != nil {
				obs.BranchTaken(s.Kind)
			}
			out = append(out, s.Then...)
			continue
		}
		out = append(out, s.Else...)
	}
	return out
}

// possible lists the legs the rule can emit on d without drawing from the
// source. Random steps contribute both branches; the rest are evaluated
// against the day and advance its state as legs would.
func (r DayRule) possible(d *Day) []Leg {
	if r.SkipOnHoliday && d.Holiday {
		return nil
	}
	var out []Leg
	for _, s := range r.Steps {
		switch {
		case s.Random:
			out = append(out, s.Then...)
			out = append(out, s.Else...)
		case s.When == nil || s.When(d):
			if s.Taken != nil {
				s.Taken(d)
			}
			out = append(out, s.Then...)
		default:
			out = append(out, s.Else...)
		}
	}
	return out
}
