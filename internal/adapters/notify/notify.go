// Package notify delivers activity records to subscribers outside the process.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/logger"
)

// ErrNotConnected is returned when publishing on a closed connection.
var ErrNotConnected = errors.New("nats connection is not open")

// conn is the part of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	IsConnected() bool
}

// NATSPublisher publishes activity records as JSON on
// "<prefix>.<program_id>.<kind>".
type NATSPublisher struct {
	nc     conn
	prefix string
	close  func()
}

// Connect dials NATS and returns a publisher that owns the connection.
func Connect(url, prefix string, opts ...nats.Option) (*NATSPublisher, error) {
	opts = append([]nats.Option{
		nats.Name("helm-recruiting"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
	}, opts...)
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	p := NewNATSPublisher(nc, prefix)
	p.close = nc.Close
	return p, nil
}

// NewNATSPublisher wraps an existing connection. The caller keeps ownership.
func NewNATSPublisher(nc conn, prefix string) *NATSPublisher {
	return &NATSPublisher{nc: nc, prefix: strings.TrimSuffix(prefix, ".")}
}

// Subject returns the subject a record is published on.
func (p *NATSPublisher) Subject(a model.Activity) string {
	program := sanitize(a.ProgramID)
	if program == "" {
		program = "_"
	}
	return p.prefix + "." + program + "." + string(a.Kind)
}

// Publish sends one record.
func (p *NATSPublisher) Publish(ctx context.Context, a model.Activity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.nc.IsConnected() {
		return ErrNotConnected
	}
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode activity %s: %w", a.ID, err)
	}
	if err := p.nc.Publish(p.Subject(a), data); err != nil {
		return fmt.Errorf("publish activity %s: %w", a.ID, err)
	}
	return nil
}

// Close drains nothing; it closes the connection when the publisher owns it.
func (p *NATSPublisher) Close() error {
	if p.close != nil {
		p.close()
	}
	return nil
}

// sanitize keeps subject tokens free of separators and wildcards.
func sanitize(token string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, token)
}

// LogPublisher writes records to the structured log. It is the fallback
// when no broker is configured.
type LogPublisher struct {
	log logger.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(l logger.Logger) *LogPublisher {
	if l == nil {
		l = logger.Get()
	}
	return &LogPublisher{log: l}
}

// Publish logs the record at debug level.
func (p *LogPublisher) Publish(ctx context.Context, a model.Activity) error {
	p.log.Debug(ctx, "activity",
		logger.String("id", a.ID),
		logger.String("kind", string(a.Kind)),
		logger.String("program_id", a.ProgramID),
		logger.Any("player_ids", a.PlayerIDs),
		logger.String("event_id", a.EventID),
		logger.String("status", string(a.Status)),
		logger.Time("at", a.At),
	)
	return nil
}

// Close is a no-op.
func (p *LogPublisher) Close() error { return nil }
