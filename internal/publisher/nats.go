package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"trip-synth/internal/mobility"
)

const flushTimeout = 5 * time.Second

// conn is the part of *nats.Conn the sink uses.
type conn interface {
	Publish(subj string, data []byte) error
	FlushTimeout(timeout time.Duration) error
}

// NATSPublisher publishes each generated trip as a JSON message on
// <prefix>.<from>.<to>.
type NATSPublisher struct {
	nc          *nats.Conn
	conn        conn
	prefix      string
	logSubjects bool
	metrics     PublisherMetrics
}

type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	PublishObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

func NewNATSPublisher(url, prefix string, logSubjects bool, m PublisherMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("tripgen"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			log.Printf("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	p := newPublisher(nc, prefix, logSubjects, m)
	p.nc = nc
	return p, nil
}

func newPublisher(c conn, prefix string, logSubjects bool, m PublisherMetrics) *NATSPublisher {
	return &NATSPublisher{conn: c, prefix: subjectPrefix(prefix), logSubjects: logSubjects, metrics: m}
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		p.nc.Close()
	}
}

type TripMessage struct {
	RunID       string  `json:"runId"`
	Seq         int     `json:"seq"`
	From        string  `json:"from"`
	To          string  `json:"to"`
	GPSStartLat float64 `json:"gpsStartLat"`
	GPSStartLon float64 `json:"gpsStartLon"`
	TStart      int64   `json:"tStart"`
	TEnd        int64   `json:"tEnd"`
	GPSEndLat   float64 `json:"gpsEndLat"`
	GPSEndLon   float64 `json:"gpsEndLon"`
}

func NewTripMessage(runID string, seq int, t mobility.Trip) TripMessage {
	return TripMessage{
		RunID:       runID,
		Seq:         seq,
		From:        t.From,
		To:          t.To,
		GPSStartLat: t.StartLat,
		GPSStartLon: t.StartLon,
		TStart:      t.StartMillis,
		TEnd:        t.EndMillis,
		GPSEndLat:   t.EndLat,
		GPSEndLon:   t.EndLon,
	}
}

func (p *NATSPublisher) Name() string { return "nats" }

// Write publishes the trips in order and flushes the connection. It stops
// at the first publish error or when ctx is cancelled.
func (p *NATSPublisher) Write(ctx context.Context, runID string, trips []mobility.Trip) error {
	for i, t := range trips {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.PublishTrip(NewTripMessage(runID, i, t)); err != nil {
			return fmt.Errorf("publish trip %d: %w", i, err)
		}
	}
	return p.conn.FlushTimeout(flushTimeout)
}

func (p *NATSPublisher) PublishTrip(msg TripMessage) error {
	subject := fmt.Sprintf("%s.%s.%s", p.prefix, subjectToken(msg.From), subjectToken(msg.To))
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if p.logSubjects {
		log.Printf("nats publish subject=%s", subject)
	}
	start := time.Now()
	err = p.conn.Publish(subject, b)
	if p.metrics != nil {
		p.metrics.PublishObserve(time.Since(start))
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	return err
}

// subjectPrefix keeps the dots of a configured prefix but cleans each token.
func subjectPrefix(s string) string {
	parts := strings.Split(strings.Trim(strings.TrimSpace(s), "."), ".")
	for i, part := range parts {
		parts[i] = subjectToken(part)
	}
	return strings.Join(parts, ".")
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
