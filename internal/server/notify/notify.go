// Package notify hands password reset tokens to an out-of-band delivery
// channel. Actual email delivery happens outside this service.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/letterdesk/internal/logging"
	"github.com/nats-io/nats.go"
)

// PasswordReset is the payload handed to the delivery channel.
type PasswordReset struct {
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Notifier interface {
	NotifyPasswordReset(ctx context.Context, msg PasswordReset) error
}

// LogNotifier only logs the hand-off. The token is never written to the log.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(l logging.Logger) *LogNotifier {
	return &LogNotifier{log: l.With("module", "notify")}
}

func (n *LogNotifier) NotifyPasswordReset(ctx context.Context, msg PasswordReset) error {
	n.log.Info(ctx, "password reset requested", "email", msg.Email, "expires_at", msg.ExpiresAt)
	return nil
}

// publisher is satisfied by *nats.Conn.
type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes PasswordReset messages as JSON on a subject.
type NATSNotifier struct {
	pub     publisher
	subject string
}

func NewNATSNotifier(pub publisher, subject string) *NATSNotifier {
	return &NATSNotifier{pub: pub, subject: subject}
}

// Connect dials NATS with reconnects enabled.
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("letterdesk-server"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

func (n *NATSNotifier) NotifyPasswordReset(ctx context.Context, msg PasswordReset) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := n.pub.Publish(n.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", n.subject, err)
	}
	return nil
}
