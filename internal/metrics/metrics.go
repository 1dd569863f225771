package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Flags are the run toggles exported as 0/1 gauges.
type Flags struct {
	LocationScatter   bool
	DepartureScatter  bool
	TravelTimeScatter bool
	MonthlyTrip       bool
	SeasonalTrip      bool
}

type Collector struct {
	reg *prometheus.Registry

	Trips         *prometheus.CounterVec // route label: from->to
	Days          *prometheus.CounterVec // weekday label
	HolidayDays   prometheus.Counter
	MonthlyTrips  prometheus.Counter
	SeasonalTrips prometheus.Counter
	GroceryTrips  prometheus.Counter

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge

	GenerateDuration prometheus.Histogram
	PublishDuration  prometheus.Histogram

	Flag     *prometheus.GaugeVec // flag label
	RunStart prometheus.Gauge
}

func NewCollector(flags Flags) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Trips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tripgen_trips_total",
			Help: "Total trips generated.",
		}, []string{"route"}),
		Days: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tripgen_days_total",
			Help: "Total days processed.",
		}, []string{"weekday"}),
		HolidayDays: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripgen_holiday_days_total",
			Help: "Days whose weekday rule was suppressed by a holiday.",
		}),
		MonthlyTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripgen_monthly_trips_total",
			Help: "Monthly trips taken.",
		}),
		SeasonalTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripgen_seasonal_trips_total",
			Help: "Seasonal trips taken.",
		}),
		GroceryTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripgen_grocery_trips_total",
			Help: "Grocery detours taken.",
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripgen_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripgen_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tripgen_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		GenerateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tripgen_generate_duration_seconds",
			Help:    "Duration of trip generation over the whole date range.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tripgen_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		Flag: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tripgen_flag",
			Help: "Run toggles, 1 if enabled.",
		}, []string{"flag"}),
		RunStart: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tripgen_run_start_timestamp_seconds",
			Help: "Unix time the run started.",
		}),
	}

	reg.MustRegister(
		c.Trips, c.Days, c.HolidayDays,
		c.MonthlyTrips, c.SeasonalTrips, c.GroceryTrips,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected,
		c.GenerateDuration, c.PublishDuration,
		c.Flag, c.RunStart,
	)

	c.Flag.WithLabelValues("location_scatter").Set(b2f(flags.LocationScatter))
	c.Flag.WithLabelValues("departure_time_scatter").Set(b2f(flags.DepartureScatter))
	c.Flag.WithLabelValues("travel_time_scatter").Set(b2f(flags.TravelTimeScatter))
	c.Flag.WithLabelValues("monthly_trip").Set(b2f(flags.MonthlyTrip))
	c.Flag.WithLabelValues("seasonal_trip").Set(b2f(flags.SeasonalTrip))
	c.RunStart.SetToCurrentTime()

	return c
}

// ObserveGenerate records how long one generation pass took.
func (c *Collector) ObserveGenerate(d time.Duration) { c.GenerateDuration.Observe(d.Seconds()) }

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}

// WriteTextfile dumps the registry in text exposition format, for
// node_exporter's textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.reg)
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
