package sim

import (
	"fmt"
	"math"
	"time"

	"trip-synth/internal/mobility"
)

// Builder turns a (from, start time, to) request into a trip record using
// the reference tables and the run's scatter.
type Builder struct {
	locations   mobility.Locations
	travelTimes mobility.TravelTimes
	scatter     *Scatter
}

// NewBuilder returns a builder over the given reference tables.
func NewBuilder(locations mobility.Locations, travelTimes mobility.TravelTimes, scatter *Scatter) *Builder {
	return &Builder{locations: locations, travelTimes: travelTimes, scatter: scatter}
}

// Build resolves both locations and the base travel time, then applies
// departure, location and travel-time scatter in that order.
func (b *Builder) Build(from string, start time.Time, to string) (mobility.Trip, error) {
	origin, err := b.locations.Lookup(from)
	if err != nil {
		return mobility.Trip{}, fmt.Errorf("build trip %s -> %s: %w", from, to, err)
	}
	dest, err := b.locations.Lookup(to)
	if err != nil {
		return mobility.Trip{}, fmt.Errorf("build trip %s -> %s: %w", from, to, err)
	}
	base, err := b.travelTimes.Lookup(from, to)
	if err != nil {
		return mobility.Trip{}, fmt.Errorf("build trip %s -> %s: %w", from, to, err)
	}

	dt := b.scatter.DepartureOffset(from, start.Hour())
	dLat, dLon := b.scatter.LocationOffset()
	tt := b.scatter.TravelTimeSeconds(base)

	epoch := float64(start.Unix())
	return mobility.Trip{
		From:        from,
		To:          to,
		StartLat:    origin.Lat + dLat,
		StartLon:    origin.Lon + dLon,
		StartMillis: toMillis(epoch + dt),
		EndMillis:   toMillis(epoch + tt + dt),
		EndLat:      dest.Lat + dLat,
		EndLon:      dest.Lon + dLon,
	}, nil
}

func toMillis(seconds float64) int64 {
	return int64(math.Round(seconds * 1000))
}
