// Package notify publishes build events so running tools can react to a
// fresh library without polling the output directory.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/hotbuild/internal/config"
	"git.home.luguber.info/inful/hotbuild/internal/logfields"
)

// BuildEvent describes a successful build.
type BuildEvent struct {
	BuildID  string    `json:"build_id"`
	Mode     string    `json:"mode"`
	Counter  int       `json:"counter"`
	Library  string    `json:"library"`
	Symbols  string    `json:"symbols"`
	Revision string    `json:"revision,omitempty"`
	Time     time.Time `json:"time"`
}

// Notifier delivers build events.
type Notifier interface {
	Publish(ctx context.Context, event BuildEvent) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, BuildEvent) error { return nil }
func (Nop) Close() error                              { return nil }

// conn is the subset of *nats.Conn used by NATSNotifier.
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSNotifier publishes events as JSON on a core NATS subject.
type NATSNotifier struct {
	conn    conn
	subject string
}

// NewNATSNotifier connects to url. The connection is established eagerly so
// an unreachable server is reported once at startup.
func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	if url == "" {
		return nil, fmt.Errorf("nats url is required")
	}
	if subject == "" {
		return nil, fmt.Errorf("nats subject is required")
	}

	nc, err := nats.Connect(url,
		nats.Name("hotbuild"),
		nats.Timeout(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Debug("NATS notifier connected", logfields.URL(url), "subject", subject)
	return &NATSNotifier{conn: nc, subject: subject}, nil
}

// FromConfig returns a NATS notifier when a server URL is configured and Nop
// otherwise.
func FromConfig(cfg config.NotifyConfig) (Notifier, error) {
	if cfg.NATSURL == "" {
		return Nop{}, nil
	}
	return NewNATSNotifier(cfg.NATSURL, cfg.Subject)
}

// Publish sends event and waits for the server to acknowledge the flush.
func (n *NATSNotifier) Publish(ctx context.Context, event BuildEvent) error {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}

	slog.Debug("Published build event",
		logfields.BuildID(event.BuildID),
		logfields.Counter(event.Counter),
		"subject", n.subject)
	return nil
}

// Close closes the NATS connection.
func (n *NATSNotifier) Close() error {
	if n.conn != nil {
		n.conn.Close()
	}
	return nil
}
