package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"eventrsvp/internal/domain"
)

type notificationDispatcher struct {
	logger    *slog.Logger
	providers []domain.Provider
	draftsDir string
}

// NewNotificationDispatcher returns a Dispatcher that tries the given
// providers in order and writes a local draft when none of them delivers.
// The provider order is fixed at construction time.
func NewNotificationDispatcher(logger *slog.Logger, providers []domain.Provider, draftsDir string) domain.Dispatcher {
	return &notificationDispatcher{
		logger:    logger,
		providers: providers,
		draftsDir: draftsDir,
	}
}

// Dispatch attempts delivery through the provider chain, stopping at the
// first success. It never returns a fatal error: when every provider fails
// (or none is configured) the message is written as a local draft and the
// result explains why nothing was sent.
func (d *notificationDispatcher) Dispatch(ctx context.Context, msg *domain.Message) *domain.DeliveryResult {
	result := &domain.DeliveryResult{}

	for _, p := range d.providers {
		err := p.Send(ctx, msg)
		if err == nil {
			result.Attempts = append(result.Attempts, domain.DeliveryAttempt{Provider: p.Name(), Success: true})
			result.Sent = true
			result.Provider = p.Name()
			return result
		}
		d.logger.Warn("provider failed, trying next", "provider", p.Name(), "to", msg.To, "err", err)
		result.Attempts = append(result.Attempts, domain.DeliveryAttempt{
			Provider: p.Name(),
			Error:    err.Error(),
		})
	}

	if len(d.providers) == 0 {
		result.SendError = "Email provider not configured. Registration saved but no email sent."
	} else {
		last := result.Attempts[len(result.Attempts)-1]
		result.SendError = fmt.Sprintf("all %d providers failed, last (%s): %s", len(result.Attempts), last.Provider, last.Error)
	}

	path, err := d.writeDraft(msg, result)
	if err != nil {
		// The draft is best effort; the structured result is still returned.
		d.logger.Error("failed to write draft", "to", msg.To, "err", err)
	} else {
		result.DraftPath = path
		d.logger.Info("message not delivered, draft written", "to", msg.To, "draft", path)
	}
	return result
}

// writeDraft renders a human-readable copy of the undelivered message so no
// notification is silently lost.
func (d *notificationDispatcher) writeDraft(msg *domain.Message, result *domain.DeliveryResult) (string, error) {
	if err := os.MkdirAll(d.draftsDir, 0o755); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "To: %s <%s>\n", msg.ToName, msg.To)
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	fmt.Fprintf(&b, "Date: %s\n", time.Now().UTC().Format(time.RFC3339))
	if msg.InvitePath != "" {
		fmt.Fprintf(&b, "Calendar invite: %s\n", msg.InvitePath)
	}
	for _, a := range result.Attempts {
		fmt.Fprintf(&b, "Attempt (%s): %s\n", a.Provider, a.Error)
	}
	b.WriteString("\n")
	b.WriteString(msg.TextBody)
	b.WriteString("\n")

	name := fmt.Sprintf("%d-%s.txt", time.Now().UnixNano(), slugify(msg.To))
	path := filepath.Join(d.draftsDir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// slugify reduces a string to a safe file name fragment.
func slugify(s string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(s) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteRune(c)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
