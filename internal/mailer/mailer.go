// Package mailer is the outbound-mail collaborator. The identity engine only
// needs "send a message to an address"; delivery details live behind the
// Mailer interface.
package mailer

import (
	"context"

	"github.com/shopcore/identity/internal/logging"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes messages to the log instead of delivering them. It is the
// default driver for development and tests.
type LogMailer struct {
	log logging.Logger
}

func NewLogMailer(log logging.Logger) *LogMailer {
	return &LogMailer{log: log.With("component", "mailer")}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.log.Info(ctx, "outbound mail", "to", to, "subject", subject, "body", body)
	return nil
}
