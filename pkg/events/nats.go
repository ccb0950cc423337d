// Package events publishes region list changes to NATS so other processes
// can follow the list without reading the store.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/kass/geofencer/pkg/metrics"
	"github.com/kass/geofencer/pkg/regionlist"
	"github.com/nats-io/nats.go"
)

// DefaultSubject is used when no subject is configured
const DefaultSubject = "geofencer.regions.changed"

// Message is the body published for every change
type Message struct {
	Op      string          `json:"op"`
	Count   int             `json:"count"`
	Regions json.RawMessage `json:"regions"`
	At      time.Time       `json:"at"`
}

// Publisher is a region list subscriber that forwards changes to NATS
type Publisher struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

var _ regionlist.Subscriber = (*Publisher)(nil)

// NewPublisher connects to the NATS server at url
func NewPublisher(url, subject string, logger *slog.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("geofencer"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return newPublisher(conn, subject, logger), nil
}

func newPublisher(conn *nats.Conn, subject string, logger *slog.Logger) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{conn: conn, subject: subject, logger: logger}
}

// NewMessage builds the payload for a change event
func NewMessage(ev regionlist.ChangeEvent, at time.Time) (Message, error) {
	payload, err := regionlist.Export(ev.New)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Op:      ev.Op,
		Count:   len(ev.New),
		Regions: json.RawMessage(payload),
		At:      at.UTC(),
	}, nil
}

func (p *Publisher) HandleChange(_ context.Context, ev regionlist.ChangeEvent) {
	err := p.publish(ev)
	metrics.EventsPublished.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		p.logger.Warn("failed to publish region change", "op", ev.Op, "subject", p.subject, "error", err)
	}
}

func (p *Publisher) publish(ev regionlist.ChangeEvent) error {
	msg, err := NewMessage(ev, time.Now())
	if err != nil {
		return err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.conn.Publish(p.subject, data)
}

// Close drains and closes the connection
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
