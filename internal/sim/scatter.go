package sim

// Source is the random stream shared by every draw in a run. *rand.Rand
// from math/rand satisfies it.
type Source interface {
	NormFloat64() float64
	Intn(n int) int
}

const (
	travelTimeSigma = 0.05 // relative
	locationSigma   = 5e-4 // degrees

	homeMorningSigma   = 5 * 60.0
	homeAfternoonSigma = 30 * 60.0
)

// departureSigmas maps a trip's start location to the standard deviation of
// its departure offset in seconds. Unlisted names get no scatter. "home"
// depends on the hour and is handled in departureSigma.
var departureSigmas = map[string]float64{
	"work":        45 * 60,
	"orchestra":   5 * 60,
	"workout":     10 * 60,
	"parents":     60 * 60,
	"grocery":     5 * 60,
	"swimming":    20 * 60,
	"back_office": 45 * 60,
}

func departureSigma(from string, hour int) float64 {
	if from == "home" {
		if hour < 12 {
			return homeMorningSigma
		}
		return homeAfternoonSigma
	}
	return departureSigmas[from]
}

// Scatter injects normally distributed noise into trips. Each flag switches
// one kind of noise; a disabled kind consumes no draws from the source.
type Scatter struct {
	src Source

	Location   bool
	Departure  bool
	TravelTime bool
}

func NewScatter(src Source, location, departure, travelTime bool) *Scatter {
	return &Scatter{src: src, Location: location, Departure: departure, TravelTime: travelTime}
}

// TravelTimeSeconds scales base seconds by (1 + N(0, 0.05)). The result is not
// clamped and can in principle approach zero or go negative.
func (s *Scatter) TravelTimeSeconds(base float64) float64 {
	if !s.TravelTime {
		return base
	}
	return base * (1 + s.src.NormFloat64()*travelTimeSigma)
}

// DepartureOffset returns seconds to shift a whole trip by.
func (s *Scatter) DepartureOffset(from string, hour int) float64 {
	if !s.Departure {
		return 0
	}
	sigma := departureSigma(from, hour)
	if sigma == 0 {
		return 0
	}
	return s.src.NormFloat64() * sigma
}

// LocationOffset returns one (lat, lon) bias in degrees, applied to both ends
// of a trip.
func (s *Scatter) LocationOffset() (lat, lon float64) {
	if !s.Location {
		return 0, 0
	}
	lat = s.src.NormFloat64() * locationSigma
	lon = s.src.NormFloat64() * locationSigma
	return lat, lon
}
