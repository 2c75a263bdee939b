// Package email contains the delivery providers for registration invites.
package email

import (
	"io"

	"gopkg.in/gomail.v2"

	"eventrsvp/internal/domain"
)

// buildMIME assembles the outbound message, attaching the calendar invite
// when present. Both the SES and SMTP providers send the same MIME document.
func buildMIME(fromAddress, fromName string, msg *domain.Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(fromAddress, fromName))
	m.SetAddressHeader("To", msg.To, msg.ToName)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.TextBody)
	if msg.HTMLBody != "" {
		m.AddAlternative("text/html", msg.HTMLBody)
	}
	if msg.ICS != "" {
		name := msg.AttachmentName
		if name == "" {
			name = "invite.ics"
		}
		ics := msg.ICS
		m.Attach(name,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := io.WriteString(w, ics)
				return err
			}),
			gomail.SetHeader(map[string][]string{
				"Content-Type": {`text/calendar; method=REQUEST; charset="UTF-8"`},
			}),
		)
	}
	return m
}
