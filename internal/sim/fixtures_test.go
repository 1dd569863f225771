package sim

import (
	"time"

	"trip-synth/internal/mobility"
)

// seqSource replays norms in order and repeats coin for every Intn call.
type seqSource struct {
	norms     []float64
	coin      int
	normCalls int
	intCalls  int
}

func (s *seqSource) NormFloat64() float64 {
	v := 0.0
	if s.normCalls < len(s.norms) {
		v = s.norms[s.normCalls]
	} else if len(s.norms) > 0 {
		v = s.norms[len(s.norms)-1]
	}
	s.normCalls++
	return v
}

func (s *seqSource) Intn(n int) int {
	s.intCalls++
	return s.coin % n
}

var testLocations = []mobility.Location{
	{Name: "home", Lat: 48.137, Lon: 11.575},
	{Name: "work", Lat: 48.150, Lon: 11.560},
	{Name: "back_office", Lat: 48.100, Lon: 11.500},
	{Name: "grocery", Lat: 48.140, Lon: 11.580},
	{Name: "workout", Lat: 48.130, Lon: 11.590},
	{Name: "orchestra", Lat: 48.160, Lon: 11.600},
	{Name: "parents", Lat: 47.900, Lon: 11.300},
	{Name: "swimming", Lat: 48.170, Lon: 11.550},
}

// testTravelTimes gives every ordered pair a distinct duration so tests can
// tell legs apart.
func testTravelTimes() mobility.TravelTimes {
	tt := mobility.TravelTimes{}
	for i, a := range testLocations {
		for j, b := range testLocations {
			if i == j {
				continue
			}
			tt.Set(a.Name, b.Name, float64(600+i*60+j))
		}
	}
	return tt
}

func testTables() (mobility.Locations, mobility.TravelTimes) {
	locs, err := mobility.NewLocations(testLocations)
	if err != nil {
		panic(err)
	}
	return locs, testTravelTimes()
}

func newTestGenerator(src Source, opts Options) *Generator {
	locs, tt := testTables()
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return NewGenerator(NewBuilder(locs, tt, NewScatter(src, false, false, false)), src, opts)
}

func cal(y int, m time.Month, day int) mobility.Date {
	return mobility.Date{Year: y, Month: m, Day: day}
}

func routes(trips []mobility.Trip) []string {
	out := make([]string, 0, len(trips))
	for _, t := range trips {
		out = append(out, t.From+"->"+t.To)
	}
	return out
}

func clock(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("15:04")
}

type countingObserver struct {
	days     int
	skipped  int
	branches map[string]int
	trips    int
}

func (o *countingObserver) DayProcessed(_ time.Weekday, skipped bool) {
	o.days++
	if skipped {
		o.skipped++
	}
}

func (o *countingObserver) BranchTaken(kind string) {
	if o.branches == nil {
		o.branches = map[string]int{}
	}
	o.branches[kind]++
}

func (o *countingObserver) TripBuilt(mobility.Trip) { o.trips++ }
