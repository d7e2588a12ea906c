// Package mail delivers account emails: welcome, verification codes, and
// password-reset codes. Delivery is fire-and-forget; nothing here retries.
package mail

import (
	"context"

	"github.com/techasish/accountd/internal/logging"
)

// Notifier sends a single formatted message to a recipient.
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// LogNotifier writes outbound mail to the log instead of delivering it.
// Used in development when no SMTP relay is configured.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(l logging.Logger) *LogNotifier {
	return &LogNotifier{logger: l.With("module", "mail")}
}

func (n *LogNotifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	n.logger.Info(ctx, "outbound mail (not delivered, no SMTP relay configured)",
		"to", to, "subject", subject, "bytes", len(htmlBody))
	return nil
}
