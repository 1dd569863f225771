package main

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"trip-synth/internal/metrics"
	"trip-synth/internal/mobility"
	"trip-synth/internal/sim"
)

func TestWrapRunMetricsNil(t *testing.T) {
	assert.Nil(t, wrapRunMetrics(nil))
	assert.Nil(t, wrapPublisherMetrics(nil))
}

func TestRunMetrics(t *testing.T) {
	c := metrics.NewCollector(metrics.Flags{})
	obs := wrapRunMetrics(c)

	obs.DayProcessed(time.Monday, true)
	obs.DayProcessed(time.Monday, false)
	obs.BranchTaken(sim.KindMonthly)
	obs.BranchTaken(sim.KindGrocery)
	obs.BranchTaken(sim.KindGrocery)
	obs.TripBuilt(mobility.Trip{From: "home", To: "back_office"})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Days.WithLabelValues("Monday")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HolidayDays))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.MonthlyTrips))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.SeasonalTrips))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.GroceryTrips))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Trips.WithLabelValues("home->back_office")))
}

func TestPublisherMetrics(t *testing.T) {
	c := metrics.NewCollector(metrics.Flags{})
	pm := wrapPublisherMetrics(c)

	pm.NATSSetConnected(true)
	pm.NATSPublishedInc()
	pm.NATSPublishErrInc()

	assert.Equal(t, 1.0, testutil.ToFloat64(c.NATSConnected))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.NATSPublished))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.NATSPublishErrs))
}
