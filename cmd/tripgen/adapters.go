package main

import (
	"time"

	"trip-synth/internal/metrics"
	"trip-synth/internal/mobility"
	"trip-synth/internal/publisher"
	"trip-synth/internal/sim"
)

// wrapRunMetrics adapts our Collector to the generator's Observer.
func wrapRunMetrics(c *metrics.Collector) sim.Observer {
	if c == nil {
		return nil
	}
	return &runMetrics{c: c}
}

type runMetrics struct{ c *metrics.Collector }

func (r *runMetrics) DayProcessed(wd time.Weekday, skipped bool) {
	r.c.Days.WithLabelValues(wd.String()).Inc()
	if skipped {
		r.c.HolidayDays.Inc()
	}
}

func (r *runMetrics) BranchTaken(kind string) {
	switch kind {
	case sim.KindMonthly:
		r.c.MonthlyTrips.Inc()
	case sim.KindSeasonal:
		r.c.SeasonalTrips.Inc()
	case sim.KindGrocery:
		r.c.GroceryTrips.Inc()
	}
}

func (r *runMetrics) TripBuilt(t mobility.Trip) {
	r.c.Trips.WithLabelValues(t.From + "->" + t.To).Inc()
}

// wrapPublisherMetrics adapts our Collector to the PublisherMetrics interface.
func wrapPublisherMetrics(c *metrics.Collector) publisher.PublisherMetrics {
	if c == nil {
		return nil
	}
	return &pubMetrics{c: c}
}

type pubMetrics struct{ c *metrics.Collector }

func (p *pubMetrics) NATSPublishedInc()              { p.c.NATSPublished.Inc() }
func (p *pubMetrics) NATSPublishErrInc()             { p.c.NATSPublishErrs.Inc() }
func (p *pubMetrics) PublishObserve(d time.Duration) { p.c.PublishDuration.Observe(d.Seconds()) }
func (p *pubMetrics) NATSSetConnected(b bool) {
	if b {
		p.c.NATSConnected.Set(1)
	} else {
		p.c.NATSConnected.Set(0)
	}
}
