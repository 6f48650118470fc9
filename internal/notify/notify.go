// Package notify dispatches fire-and-forget notifications to staff.
// Delivery failures must never fail the operation that triggered them;
// callers log and move on.
package notify

import (
	"context"
	"log/slog"
)

// Notifier sends a message to a recipient address.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// LogNotifier writes notifications to the structured log. It stands in for
// an SMTP or push gateway in environments without one configured.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier creates a notifier that logs instead of delivering.
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	n.log.InfoContext(ctx, "notification dispatched",
		"recipient", recipient,
		"subject", subject,
		"body", body,
	)
	return nil
}

// Noop discards all notifications. Used in tests.
type Noop struct{}

func (Noop) Send(ctx context.Context, recipient, subject, body string) error {
	return nil
}
