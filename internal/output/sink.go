package output

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"trip-synth/internal/mobility"
)

// Sink receives the finished trip sequence of one run.
type Sink interface {
	Name() string
	Write(ctx context.Context, runID string, trips []mobility.Trip) error
}

// WriteAll hands the trips to every sink concurrently. The first failure
// cancels the context passed to the others and is returned.
func WriteAll(ctx context.Context, runID string, trips []mobility.Trip, sinks ...Sink) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range sinks {
		g.Go(func() error {
			start := time.Now()
			if err := s.Write(ctx, runID, trips); err != nil {
				return fmt.Errorf("sink %s: %w", s.Name(), err)
			}
			log.Printf("run=%s sink=%s trips=%d dur=%dms", runID, s.Name(), len(trips), time.Since(start).Milliseconds())
			return nil
		})
	}
	return g.Wait()
}
