package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"trip-synth/internal/mobility"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	driverPostgres = "pgx"
	driverSQLite   = "sqlite"
)

// Store reads reference tables from PostgreSQL or a SQLite file. Both
// hold known_locations(name, gps_lat, gps_lon),
// travel_times(start_location, end_location, seconds) and an optional
// holidays(day).
type Store struct {
	db     *sql.DB
	driver string
}

func Open(dsn string) (*Store, error) {
	db, err := sql.Open(driverPostgres, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Store{db: db, driver: driverPostgres}, nil
}

// OpenSQLite opens an existing database file read-only. A missing file is
// an error rather than a fresh empty database.
func OpenSQLite(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	db, err := sql.Open(driverSQLite, "file:"+path+"?mode=ro&_pragma=query_only(1)")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return &Store{db: db, driver: driverSQLite}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

// FetchLocations reads the known-location list.
func (s *Store) FetchLocations(ctx context.Context) (mobility.Locations, error) {
	q := `SELECT name, gps_lat, gps_lon FROM known_locations ORDER BY name`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query known_locations: %w", err)
	}
	defer rows.Close()

	var list []mobility.Location
	for rows.Next() {
		var l mobility.Location
		if err := rows.Scan(&l.Name, &l.Lat, &l.Lon); err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return mobility.NewLocations(list)
}

// FetchTravelTimes reads travel_times into the nested matrix.
func (s *Store) FetchTravelTimes(ctx context.Context) (mobility.TravelTimes, error) {
	q := `SELECT start_location, end_location, seconds FROM travel_times`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query travel_times: %w", err)
	}
	defer rows.Close()

	tt := mobility.TravelTimes{}
	for rows.Next() {
		var from, to string
		var seconds float64
		if err := rows.Scan(&from, &to, &seconds); err != nil {
			return nil, err
		}
		if seconds < 0 {
			return nil, fmt.Errorf("travel_times %q -> %q: negative seconds %v", from, to, seconds)
		}
		tt.Set(from, to, seconds)
	}
	return tt, rows.Err()
}

// FetchHolidays reads holidays(day). A database without the table
// yields an empty set.
func (s *Store) FetchHolidays(ctx context.Context) (mobility.Holidays, error) {
	cols, err := s.hasColumns(ctx, "holidays", "day")
	if err != nil {
		return nil, fmt.Errorf("introspect holidays columns: %w", err)
	}
	h := mobility.Holidays{}
	if !cols["day"] {
		return h, nil
	}

	// Text keeps the calendar date independent of the session time zone and
	// stops the sqlite driver from turning DATE columns into time.Time.
	q := `SELECT day::text FROM holidays`
	if s.driver == driverSQLite {
		q = `SELECT CAST(day AS TEXT) FROM holidays`
	}
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query holidays: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		d, err := mobility.ParseDate(datePart(v))
		if err != nil {
			return nil, err
		}
		h[d] = struct{}{}
	}
	return h, rows.Err()
}

// datePart drops any time-of-day suffix from a stored date value.
func datePart(v string) string {
	v = strings.TrimSpace(v)
	if len(v) > len("2006-01-02") {
		return v[:len("2006-01-02")]
	}
	return v
}

// hasColumns returns a map of requested column names to existence for the given table.
func (s *Store) hasColumns(ctx context.Context, table string, cols ...string) (map[string]bool, error) {
	res := make(map[string]bool, len(cols))
	if len(cols) == 0 {
		return res, nil
	}
	for _, c := range cols {
		res[c] = false
	}
	var (
		rows *sql.Rows
		err  error
	)
	if s.driver == driverSQLite {
		rows, err = s.db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	} else {
		q := `SELECT column_name FROM information_schema.columns
          WHERE table_schema = current_schema() AND table_name = $1 AND column_name = ANY($2)`
		rows, err = s.db.QueryContext(ctx, q, table, cols)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if _, ok := res[name]; ok {
			res[name] = true
		}
	}
	return res, rows.Err()
}
