package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-synth/internal/mobility"
)

type published struct {
	subject string
	data    []byte
}

type fakeConn struct {
	msgs    []published
	failAt  int
	flushed int
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	if f.failAt > 0 && len(f.msgs)+1 == f.failAt {
		return errors.New("nats: connection closed")
	}
	f.msgs = append(f.msgs, published{subj, data})
	return nil
}

func (f *fakeConn) FlushTimeout(time.Duration) error {
	f.flushed++
	return nil
}

type fakeMetrics struct {
	ok, errs, observed int
}

func (m *fakeMetrics) NATSPublishedInc()            { m.ok++ }
func (m *fakeMetrics) NATSPublishErrInc()           { m.errs++ }
func (m *fakeMetrics) PublishObserve(time.Duration) { m.observed++ }
func (m *fakeMetrics) NATSSetConnected(bool)        {}

var trips = []mobility.Trip{
	{From: "home", To: "back_office", StartLat: 1, StartLon: 2, StartMillis: 1000, EndMillis: 2000, EndLat: 3, EndLon: 4},
	{From: "back_office", To: "home", StartLat: 3, StartLon: 4, StartMillis: 3000, EndMillis: 4000, EndLat: 1, EndLon: 2},
}

func TestWritePublishesEachTrip(t *testing.T) {
	fc := &fakeConn{}
	m := &fakeMetrics{}
	p := newPublisher(fc, "trips.synthetic", false, m)

	require.NoError(t, p.Write(context.Background(), "run-1", trips))

	require.Len(t, fc.msgs, 2)
	assert.Equal(t, "trips.synthetic.home.back_office", fc.msgs[0].subject)
	assert.Equal(t, "trips.synthetic.back_office.home", fc.msgs[1].subject)
	assert.Equal(t, 1, fc.flushed)
	assert.Equal(t, 2, m.ok)
	assert.Equal(t, 2, m.observed)

	var msg TripMessage
	require.NoError(t, json.Unmarshal(fc.msgs[1].data, &msg))
	assert.Equal(t, "run-1", msg.RunID)
	assert.Equal(t, 1, msg.Seq)
	assert.Equal(t, int64(3000), msg.TStart)
	assert.Equal(t, 1.0, msg.GPSEndLat)
}

func TestWriteStopsOnPublishError(t *testing.T) {
	fc := &fakeConn{failAt: 2}
	m := &fakeMetrics{}
	p := newPublisher(fc, "trips", false, m)

	err := p.Write(context.Background(), "run-1", trips)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish trip 1")
	assert.Equal(t, 1, m.errs)
	assert.Zero(t, fc.flushed)
}

func TestWriteHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fc := &fakeConn{}
	err := newPublisher(fc, "trips", false, nil).Write(ctx, "run-1", trips)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fc.msgs)
}

func TestSubjectToken(t *testing.T) {
	assert.Equal(t, "back_office", subjectToken(" back office "))
	assert.Equal(t, "a_b_c", subjectToken("a.b>c"))
	assert.Equal(t, "_", subjectToken("  "))
}

func TestSubjectPrefix(t *testing.T) {
	assert.Equal(t, "trips.synthetic", subjectPrefix(" trips.synthetic. "))
	assert.Equal(t, "trips.a_b", subjectPrefix("trips.a b"))
}
