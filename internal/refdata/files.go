// Package refdata loads the static reference data a run needs from JSON
// files: the known-location list, the travel-time matrix and an optional
// holiday calendar.
package refdata

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"trip-synth/internal/mobility"
)

type locationsFile struct {
	Data []mobility.Location `json:"data"`
}

// LoadLocations reads {"data": [{"name", "gps_lat", "gps_lon"}, ...]}.
func LoadLocations(path string) (mobility.Locations, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load locations: %w", err)
	}
	defer f.Close()

	locs, err := DecodeLocations(f)
	if err != nil {
		return nil, fmt.Errorf("load locations %q: %w", path, err)
	}
	return locs, nil
}

func DecodeLocations(r io.Reader) (mobility.Locations, error) {
	var lf locationsFile
	if err := json.NewDecoder(r).Decode(&lf); err != nil {
		return nil, fmt.Errorf("decode locations: %w", err)
	}
	for i := range lf.Data {
		lf.Data[i].Name = strings.TrimSpace(lf.Data[i].Name)
	}
	return mobility.NewLocations(lf.Data)
}

// LoadTravelTimes reads a nested object {"from": {"to": seconds}}.
func LoadTravelTimes(path string) (mobility.TravelTimes, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load travel times: %w", err)
	}
	defer f.Close()

	tt, err := DecodeTravelTimes(f)
	if err != nil {
		return nil, fmt.Errorf("load travel times %q: %w", path, err)
	}
	return tt, nil
}

func DecodeTravelTimes(r io.Reader) (mobility.TravelTimes, error) {
	var tt mobility.TravelTimes
	if err := json.NewDecoder(r).Decode(&tt); err != nil {
		return nil, fmt.Errorf("decode travel times: %w", err)
	}
	if tt == nil {
		tt = mobility.TravelTimes{}
	}
	for from, row := range tt {
		for to, s := range row {
			if s < 0 {
				return nil, fmt.Errorf("negative travel time %q -> %q: %v", from, to, s)
			}
		}
	}
	return tt, nil
}

// LoadHolidays reads a JSON array of YYYY-MM-DD strings.
func LoadHolidays(path string) (mobility.Holidays, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load holidays: %w", err)
	}
	defer f.Close()

	h, err := DecodeHolidays(f)
	if err != nil {
		return nil, fmt.Errorf("load holidays %q: %w", path, err)
	}
	return h, nil
}

func DecodeHolidays(r io.Reader) (mobility.Holidays, error) {
	var raw []string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode holidays: %w", err)
	}
	h := make(mobility.Holidays, len(raw))
	for i, s := range raw {
		d, err := mobility.ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("holiday at index %d: %w", i, err)
		}
		h[d] = struct{}{}
	}
	return h, nil
}
