package main

import (
	"context"
	"log"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"trip-synth/internal/config"
	"trip-synth/internal/db"
	"trip-synth/internal/metrics"
	"trip-synth/internal/mobility"
	"trip-synth/internal/output"
	"trip-synth/internal/publisher"
	"trip-synth/internal/refdata"
	"trip-synth/internal/sim"
)

func main() {
	// Load configuration from .env and environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// Root context with cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := uuid.NewString()
	log.Printf("run=%s range=%s..%s seed=%d fixed_seed=%t scatter(loc=%t dep=%t tt=%t) monthly=%t seasonal=%t tz=%s",
		runID, cfg.Start, cfg.End, cfg.Seed, cfg.SeedSet,
		cfg.LocationScatter, cfg.DepartureScatter, cfg.TravelTimeScatter,
		cfg.MonthlyTrip, cfg.SeasonalTrip, cfg.Location)

	ref, err := loadReference(ctx, cfg)
	if err != nil {
		log.Fatalf("reference data error: %v", err)
	}
	log.Printf("run=%s locations=%d travel_time_origins=%d holidays=%d", runID, len(ref.locations), len(ref.travelTimes), len(ref.holidays))

	// Metrics setup
	var mcol *metrics.Collector
	if cfg.MetricsAddr != "" || cfg.MetricsTextfile != "" {
		mcol = metrics.NewCollector(metrics.Flags{
			LocationScatter:   cfg.LocationScatter,
			DepartureScatter:  cfg.DepartureScatter,
			TravelTimeScatter: cfg.TravelTimeScatter,
			MonthlyTrip:       cfg.MonthlyTrip,
			SeasonalTrip:      cfg.SeasonalTrip,
		})
	}
	if mcol != nil && cfg.MetricsAddr != "" {
		srv := mcol.Serve(cfg.MetricsAddr)
		defer func() {
			// Shutdown with timeout
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	src := rand.New(rand.NewSource(cfg.Seed))
	scatter := sim.NewScatter(src, cfg.LocationScatter, cfg.DepartureScatter, cfg.TravelTimeScatter)
	gen := sim.NewGenerator(sim.NewBuilder(ref.locations, ref.travelTimes, scatter), src, sim.Options{
		MonthlyTrip:  cfg.MonthlyTrip,
		SeasonalTrip: cfg.SeasonalTrip,
		Holidays:     ref.holidays,
		Location:     cfg.Location,
		Observer:     wrapRunMetrics(mcol),
	})

	if err := gen.Validate(cfg.Start, cfg.End); err != nil {
		log.Fatalf("reference data error: %v", err)
	}

	start := time.Now()
	trips, err := gen.Generate(cfg.Start, cfg.End)
	if err != nil {
		log.Fatalf("generate error: %v", err)
	}
	if mcol != nil {
		mcol.ObserveGenerate(time.Since(start))
	}
	log.Printf("run=%s days=%d trips=%d dur=%dms", runID, sim.Days(cfg.Start, cfg.End), len(trips), time.Since(start).Milliseconds())

	var sinks []output.Sink
	if cfg.OutputPath != "" {
		sinks = append(sinks, &output.CSVFile{Path: cfg.OutputPath})
	}
	if cfg.NATSURL != "" {
		pub, err := publisher.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubject, cfg.LogNATSSubjects, wrapPublisherMetrics(mcol))
		if err != nil {
			log.Fatalf("nats error: %v", err)
		}
		defer pub.Close()
		sinks = append(sinks, pub)
	}
	if len(sinks) == 0 {
		log.Printf("run=%s no sinks configured, trips discarded", runID)
	}
	if err := output.WriteAll(ctx, runID, trips, sinks...); err != nil {
		log.Fatalf("output error: %v", err)
	}

	if mcol != nil && cfg.MetricsTextfile != "" {
		if err := mcol.WriteTextfile(cfg.MetricsTextfile); err != nil {
			log.Fatalf("metrics textfile error: %v", err)
		}
	}
	log.Printf("run=%s done", runID)
}

type reference struct {
	locations   mobility.Locations
	travelTimes mobility.TravelTimes
	holidays    mobility.Holidays
}

// loadReference reads locations and travel times from the configured
// source and merges holidays from the database or file with HOLIDAYS.
func loadReference(ctx context.Context, cfg *config.Config) (*reference, error) {
	ref := &reference{holidays: mobility.NewHolidays()}
	var extra mobility.Holidays

	switch cfg.ReferenceSource {
	case config.SourcePostgres, config.SourceSQLite:
		var (
			store *db.Store
			err   error
		)
		if cfg.ReferenceSource == config.SourcePostgres {
			store, err = db.Open(cfg.DatabaseURL)
		} else {
			store, err = db.OpenSQLite(cfg.SQLitePath)
		}
		if err != nil {
			return nil, err
		}
		defer store.Close()
		if err := store.Ping(ctx); err != nil {
			return nil, err
		}
		if ref.locations, err = store.FetchLocations(ctx); err != nil {
			return nil, err
		}
		if ref.travelTimes, err = store.FetchTravelTimes(ctx); err != nil {
			return nil, err
		}
		if extra, err = store.FetchHolidays(ctx); err != nil {
			return nil, err
		}
	default:
		var err error
		if ref.locations, err = refdata.LoadLocations(cfg.LocationsFile); err != nil {
			return nil, err
		}
		if ref.travelTimes, err = refdata.LoadTravelTimes(cfg.TravelTimesFile); err != nil {
			return nil, err
		}
	}

	if cfg.HolidaysFile != "" {
		fromFile, err := refdata.LoadHolidays(cfg.HolidaysFile)
		if err != nil {
			return nil, err
		}
		for d := range fromFile {
			ref.holidays[d] = struct{}{}
		}
	}
	for _, set := range []mobility.Holidays{extra, cfg.Holidays} {
		for d := range set {
			ref.holidays[d] = struct{}{}
		}
	}
	return ref, nil
}
