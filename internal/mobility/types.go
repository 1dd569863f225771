package mobility

import "fmt"

// Location is a named place a person travels between.
type Location struct {
	Name string  `json:"name"`
	Lat  float64 `json:"gps_lat"`
	Lon  float64 `json:"gps_lon"`
}

// Locations indexes known locations by name.
type Locations map[string]Location

// NewLocations builds the lookup table. Names must be non-empty and unique.
func NewLocations(list []Location) (Locations, error) {
	out := make(Locations, len(list))
	for i, l := range list {
		if l.Name == "" {
			return nil, fmt.Errorf("location at index %d has empty name", i)
		}
		if _, dup := out[l.Name]; dup {
			return nil, fmt.Errorf("duplicate location %q", l.Name)
		}
		out[l.Name] = l
	}
	return out, nil
}

// Lookup returns the named location or an *UnknownLocationError.
func (ls Locations) Lookup(name string) (Location, error) {
	l, ok := ls[name]
	if !ok {
		return Location{}, &UnknownLocationError{Name: name}
	}
	return l, nil
}

// TravelTimes holds base travel durations in seconds keyed by start then end
// location name. Entries need not be symmetric.
type TravelTimes map[string]map[string]float64

// Set stores the base duration for from->to.
func (tt TravelTimes) Set(from, to string, seconds float64) {
	row, ok := tt[from]
	if !ok {
		row = make(map[string]float64)
		tt[from] = row
	}
	row[to] = seconds
}

// Lookup returns the base duration for from->to or a *MissingTravelTimeError.
func (tt TravelTimes) Lookup(from, to string) (float64, error) {
	if row, ok := tt[from]; ok {
		if s, ok := row[to]; ok {
			return s, nil
		}
	}
	return 0, &MissingTravelTimeError{From: from, To: to}
}

// Trip is one generated trip record. Timestamps are epoch milliseconds.
// From and To carry the location names for sinks that want them; the
// tabular output only uses the six coordinate/time columns.
type Trip struct {
	From        string
	To          string
	StartLat    float64
	StartLon    float64
	StartMillis int64
	EndMillis   int64
	EndLat      float64
	EndLon      float64
}
