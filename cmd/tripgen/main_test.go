package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-synth/internal/config"
	"trip-synth/internal/mobility"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadReferenceFromFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		ReferenceSource: config.SourceFile,
		LocationsFile:   writeFile(t, dir, "known_locations.json", `{"data":[{"name":"home","gps_lat":1,"gps_lon":2},{"name":"back_office","gps_lat":3,"gps_lon":4}]}`),
		TravelTimesFile: writeFile(t, dir, "travel_times.json", `{"home":{"back_office":1800},"back_office":{"home":1700}}`),
		HolidaysFile:    writeFile(t, dir, "holidays.json", `["2018-12-25"]`),
		Holidays:        mobility.NewHolidays(mobility.Date{Year: 2018, Month: time.January, Day: 1}),
	}

	ref, err := loadReference(context.Background(), cfg)
	require.NoError(t, err)

	assert.Len(t, ref.locations, 2)
	tt, err := ref.travelTimes.Lookup("back_office", "home")
	require.NoError(t, err)
	assert.Equal(t, 1700.0, tt)
	assert.Len(t, ref.holidays, 2)
	assert.True(t, ref.holidays.Contains(mobility.Date{Year: 2018, Month: time.December, Day: 25}))
	assert.True(t, ref.holidays.Contains(mobility.Date{Year: 2018, Month: time.January, Day: 1}))
}

func TestLoadReferenceMissingFile(t *testing.T) {
	cfg := &config.Config{
		ReferenceSource: config.SourceFile,
		LocationsFile:   filepath.Join(t.TempDir(), "nope.json"),
	}
	_, err := loadReference(context.Background(), cfg)
	require.Error(t, err)
}
