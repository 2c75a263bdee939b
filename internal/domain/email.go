package domain

import "context"

// Message is an outbound email with an optional calendar attachment.
type Message struct {
	To       string
	ToName   string
	Subject  string
	HTMLBody string
	TextBody string
	// ICS holds the calendar invite text attached as AttachmentName.
	ICS            string
	AttachmentName string
	// InvitePath is where the invite artifact was archived, if anywhere.
	// Included in drafts so an operator can find the file.
	InvitePath string
}

// Provider sends a Message through one delivery mechanism (hosted API, SMTP).
// Implementations return an error on failure; the dispatcher decides what to
// try next.
type Provider interface {
	Name() string
	Send(ctx context.Context, msg *Message) error
}

// DeliveryAttempt records the outcome of a single provider attempt.
type DeliveryAttempt struct {
	Provider string `json:"provider"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// DeliveryResult is the structured outcome of dispatching one Message.
// Dispatching never fails fatally: when no provider succeeds, Sent is false,
// SendError explains why, and DraftPath points at the locally written draft.
type DeliveryResult struct {
	Sent      bool              `json:"sent"`
	Provider  string            `json:"provider,omitempty"`
	SendError string            `json:"send_error,omitempty"`
	Attempts  []DeliveryAttempt `json:"attempts,omitempty"`
	DraftPath string            `json:"draft_path,omitempty"`
}

// InviteEmailData holds data for the registration invite email.
type InviteEmailData struct {
	Name     string
	Email    string
	Summary  string
	Location string
}

// EmailTemplateRenderer renders email content from a named template with the
// given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// Dispatcher attempts delivery through an ordered provider chain.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg *Message) *DeliveryResult
}
