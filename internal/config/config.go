package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"trip-synth/internal/mobility"
)

const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
)

type Config struct {
	Start mobility.Date
	End   mobility.Date

	LocationScatter   bool
	DepartureScatter  bool
	TravelTimeScatter bool
	MonthlyTrip       bool
	SeasonalTrip      bool

	Holidays     mobility.Holidays
	HolidaysFile string

	Seed int64
	// SeedSet is false when the seed was derived from the clock.
	SeedSet bool

	ReferenceSource string
	LocationsFile   string
	TravelTimesFile string
	DatabaseURL     string
	SQLitePath      string

	OutputPath      string
	NATSURL         string
	NATSSubject     string
	LogNATSSubjects bool

	MetricsAddr     string
	MetricsTextfile string

	Location *time.Location
}

func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{}

	var err error
	if cfg.Start, err = dateVar("START_DATE", "2018-01-01"); err != nil {
		return nil, err
	}
	if cfg.End, err = dateVar("END_DATE", "2019-12-31"); err != nil {
		return nil, err
	}
	if cfg.End.In(time.UTC).Before(cfg.Start.In(time.UTC)) {
		return nil, fmt.Errorf("invalid END_DATE: %q is before START_DATE %q", cfg.End, cfg.Start)
	}

	flags := []struct {
		key string
		dst *bool
	}{
		{"LOCATION_SCATTER", &cfg.LocationScatter},
		{"DEPARTURE_TIME_SCATTER", &cfg.DepartureScatter},
		{"TRAVEL_TIME_SCATTER", &cfg.TravelTimeScatter},
		{"MONTHLY_TRIP", &cfg.MonthlyTrip},
		{"SEASONAL_TRIP", &cfg.SeasonalTrip},
	}
	for _, f := range flags {
		if *f.dst, err = boolVar(f.key, true); err != nil {
			return nil, err
		}
	}

	if cfg.Holidays, err = parseHolidays(os.Getenv("HOLIDAYS")); err != nil {
		return nil, err
	}
	cfg.HolidaysFile = strings.TrimSpace(os.Getenv("HOLIDAYS_FILE"))

	if v := strings.TrimSpace(os.Getenv("SEED")); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SEED: %q", v)
		}
		cfg.Seed, cfg.SeedSet = seed, true
	} else {
		cfg.Seed = time.Now().UnixNano()
	}

	cfg.ReferenceSource = strings.ToLower(getenvDefault("REFERENCE_SOURCE", SourceFile))
	switch cfg.ReferenceSource {
	case SourceFile:
		cfg.LocationsFile = getenvDefault("LOCATIONS_FILE", "data/known_locations.json")
		cfg.TravelTimesFile = getenvDefault("TRAVEL_TIMES_FILE", "data/travel_times.json")
	case SourcePostgres:
		if cfg.DatabaseURL, err = databaseURL(); err != nil {
			return nil, err
		}
	case SourceSQLite:
		cfg.SQLitePath = getenvDefault("SQLITE_PATH", "data/reference.db")
	default:
		return nil, fmt.Errorf("invalid REFERENCE_SOURCE: %q", cfg.ReferenceSource)
	}

	// An explicitly empty OUTPUT_PATH disables the CSV sink.
	if v, ok := os.LookupEnv("OUTPUT_PATH"); ok {
		cfg.OutputPath = strings.TrimSpace(v)
	} else {
		cfg.OutputPath = "data/synthetic_trip_data.csv"
	}

	cfg.NATSURL = strings.TrimSpace(os.Getenv("NATS_URL"))
	cfg.NATSSubject = getenvDefault("NATS_SUBJECT", "trips.synthetic")
	if cfg.LogNATSSubjects, err = boolVar("LOG_NATS_SUBJECTS", false); err != nil {
		return nil, err
	}

	// Metrics listen address (e.g., ":9102"). Empty disables the metrics server.
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")
	cfg.MetricsTextfile = os.Getenv("METRICS_TEXTFILE")

	// Time zone
	tzName := getenvDefault("TZ", "")
	if tzName == "" {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(tzName)
		if err != nil {
			return nil, fmt.Errorf("invalid TZ: %v", err)
		}
		cfg.Location = loc
	}

	return cfg, nil
}

// databaseURL prefers DATABASE_URL / PG_DSN, else builds a DSN from PG* vars.
func databaseURL() (string, error) {
	if dsn := firstNonEmpty(os.Getenv("DATABASE_URL"), os.Getenv("PG_DSN")); dsn != "" {
		return dsn, nil
	}
	host := getenvDefault("PGHOST", "127.0.0.1")
	port := getenvDefault("PGPORT", "5432")
	user := getenvDefault("PGUSER", "postgres")
	pass := os.Getenv("PGPASSWORD")
	db := os.Getenv("PGDATABASE")
	if db == "" {
		return "", errors.New("PGDATABASE or DATABASE_URL must be set for REFERENCE_SOURCE=postgres")
	}
	sslmode := getenvDefault("PGSSLMODE", "disable")
	if pass != "" {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", urlEscape(user), urlEscape(pass), host, port, db, sslmode), nil
	}
	return fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=%s", urlEscape(user), host, port, db, sslmode), nil
}

// parseHolidays reads a comma list of dates and inclusive ranges (A..B).
func parseHolidays(v string) (mobility.Holidays, error) {
	h := mobility.NewHolidays()
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if first, last, ok := strings.Cut(item, ".."); ok {
			a, errA := mobility.ParseDate(first)
			b, errB := mobility.ParseDate(last)
			if errA != nil || errB != nil || b.In(time.UTC).Before(a.In(time.UTC)) {
				return nil, fmt.Errorf("invalid HOLIDAYS: %q", item)
			}
			h.AddRange(a, b)
			continue
		}
		d, err := mobility.ParseDate(item)
		if err != nil {
			return nil, fmt.Errorf("invalid HOLIDAYS: %q", item)
		}
		h[d] = struct{}{}
	}
	return h, nil
}

func dateVar(k, def string) (mobility.Date, error) {
	v := getenvDefault(k, def)
	d, err := mobility.ParseDate(v)
	if err != nil {
		return mobility.Date{}, fmt.Errorf("invalid %s: %q", k, v)
	}
	return d, nil
}

func boolVar(k string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	switch strings.ToLower(v) {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid %s: %q", k, v)
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func urlEscape(s string) string {
	// Minimal escape for DSN user/pass with special chars
	r := strings.NewReplacer("@", "%40", ":", "%3A", "/", "%2F", "?", "%3F", "#", "%23")
	return r.Replace(s)
}
