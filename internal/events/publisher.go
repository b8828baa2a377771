// Package events publishes committed progress changes to NATS so other tools
// (dashboards, habit trackers) can follow the bot without reading its files.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/disciplinebot/internal/foundation/errors"
	"git.home.luguber.info/inful/disciplinebot/internal/logfields"
	"git.home.luguber.info/inful/disciplinebot/internal/progress"
)

// DefaultSubjectPrefix is used when no prefix is configured.
const DefaultSubjectPrefix = "disciplinebot.progress"

// ErrConnect indicates the NATS server could not be reached at startup.
var ErrConnect = errors.EventsError("failed to connect to NATS").Retryable().Build()

// Event is the JSON payload published for each change.
type Event struct {
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	Date      string    `json:"date,omitempty"`
	Day       int       `json:"day"`
	Status    string    `json:"status,omitempty"`
	Label     string    `json:"label,omitempty"`
	State     Snapshot  `json:"state"`
}

// Snapshot is the state record after the change.
type Snapshot struct {
	Day       int  `json:"day"`
	Confirmed bool `json:"confirmed"`
	Hellmode  bool `json:"hellmode"`
	Strikes   int  `json:"strike"`
	Streak    int  `json:"streak"`
}

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	Flush() error
	Close()
}

// Publisher implements progress.Observer by publishing to NATS.
type Publisher struct {
	conn   conn
	prefix string
}

// Connect dials url and returns a Publisher for prefix.
func Connect(url, prefix string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("disciplinebot"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("NATS disconnected", logfields.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("NATS reconnected", logfields.Addr(c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, ErrConnect.Wrap(err).WithContext("url", url)
	}
	slog.Info("NATS publisher connected", logfields.Addr(url), logfields.Subject(prefix))
	return newPublisher(nc, prefix), nil
}

func newPublisher(c conn, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Publisher{conn: c, prefix: prefix}
}

// Subject returns the subject a change kind is published on.
func (p *Publisher) Subject(kind progress.ChangeKind) string {
	return p.prefix + "." + string(kind)
}

// ObserveChange publishes c. Failures are logged; the change is already durable.
func (p *Publisher) ObserveChange(_ context.Context, c progress.Change) {
	subject := p.Subject(c.Kind)
	if err := p.publish(subject, eventFrom(c)); err != nil {
		slog.Warn("Failed to publish progress event", logfields.Subject(subject), logfields.Error(err))
		return
	}
	slog.Debug("Published progress event", logfields.Subject(subject), logfields.Day(c.Day))
}

func (p *Publisher) publish(subject string, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *Publisher) Close() error {
	if p == nil || p.conn == nil {
		return nil
	}
	err := p.conn.Flush()
	p.conn.Close()
	return err
}

func eventFrom(c progress.Change) Event {
	return Event{
		Kind:      string(c.Kind),
		Timestamp: c.At,
		Date:      c.Date,
		Day:       c.Day,
		Status:    c.Status,
		Label:     c.Label,
		State: Snapshot{
			Day:       c.State.Day,
			Confirmed: c.State.Confirmed,
			Hellmode:  c.State.Hellmode,
			Strikes:   c.State.Strikes,
			Streak:    c.State.Streak,
		},
	}
}
