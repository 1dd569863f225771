package db

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-synth/internal/mobility"
)

// seedSQLite creates a reference database and returns its path. A non-empty
// holidayType adds a holidays table with that declared column type.
func seedSQLite(t *testing.T, holidayType string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reference.db")
	raw, err := sql.Open(driverSQLite, path)
	require.NoError(t, err)
	defer raw.Close()

	stmts := []string{
		`CREATE TABLE known_locations (name TEXT PRIMARY KEY, gps_lat REAL, gps_lon REAL)`,
		`CREATE TABLE travel_times (start_location TEXT, end_location TEXT, seconds REAL)`,
		`INSERT INTO known_locations VALUES ('home', 48.137, 11.575), ('back_office', 48.1, 11.5)`,
		`INSERT INTO travel_times VALUES ('home', 'back_office', 1800), ('back_office', 'home', 1750.5)`,
	}
	if holidayType != "" {
		stmts = append(stmts,
			`CREATE TABLE holidays (day `+holidayType+`)`,
			`INSERT INTO holidays VALUES ('2018-12-25'), ('2018-12-26')`,
		)
	}
	for _, s := range stmts {
		_, err := raw.Exec(s)
		require.NoError(t, err, s)
	}
	return path
}

func openSeeded(t *testing.T, holidayType string) *Store {
	t.Helper()
	s, err := OpenSQLite(seedSQLite(t, holidayType))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Ping(context.Background()))
	return s
}

func TestFetchLocations(t *testing.T) {
	s := openSeeded(t, "")
	locs, err := s.FetchLocations(context.Background())
	require.NoError(t, err)

	require.Len(t, locs, 2)
	home, err := locs.Lookup("home")
	require.NoError(t, err)
	assert.Equal(t, 48.137, home.Lat)
	assert.Equal(t, 11.575, home.Lon)
}

func TestFetchTravelTimes(t *testing.T) {
	s := openSeeded(t, "")
	tt, err := s.FetchTravelTimes(context.Background())
	require.NoError(t, err)

	v, err := tt.Lookup("back_office", "home")
	require.NoError(t, err)
	assert.Equal(t, 1750.5, v)

	_, err = tt.Lookup("home", "home")
	var missing *mobility.MissingTravelTimeError
	assert.ErrorAs(t, err, &missing)
}

func TestFetchHolidays(t *testing.T) {
	for _, typ := range []string{"TEXT", "DATE", "DATETIME"} {
		t.Run(typ, func(t *testing.T) {
			s := openSeeded(t, typ)
			h, err := s.FetchHolidays(context.Background())
			require.NoError(t, err)
			assert.Len(t, h, 2)
			assert.True(t, h.Contains(mobility.Date{Year: 2018, Month: time.December, Day: 25}))
		})
	}
}

func TestFetchHolidaysWithoutTable(t *testing.T) {
	s := openSeeded(t, "")
	h, err := s.FetchHolidays(context.Background())
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestOpenSQLiteMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")
	_, err := OpenSQLite(path)
	require.ErrorIs(t, err, fs.ErrNotExist)

	_, statErr := os.Stat(path)
	assert.ErrorIs(t, statErr, fs.ErrNotExist)
}

func TestOpenSQLiteIsReadOnly(t *testing.T) {
	s := openSeeded(t, "")
	_, err := s.db.ExecContext(context.Background(), `DELETE FROM known_locations`)
	require.Error(t, err)
}

func TestDatePart(t *testing.T) {
	assert.Equal(t, "2018-12-25", datePart("2018-12-25"))
	assert.Equal(t, "2018-12-25", datePart("2018-12-25 00:00:00+00:00"))
	assert.Equal(t, "2018-12-25", datePart(" 2018-12-25T00:00:00Z "))
}
