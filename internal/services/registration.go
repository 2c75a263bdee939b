package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"eventrsvp/internal/domain"
	"eventrsvp/internal/ics"
)

// EventDetails describes the event every registration is invited to.
type EventDetails struct {
	Start       time.Time
	End         time.Time
	Summary     string
	Description string
	Location    string
}

type registrationService struct {
	logger     *slog.Logger
	store      domain.RegistrationStore
	dispatcher domain.Dispatcher
	renderer   domain.EmailTemplateRenderer
	event      EventDetails
	invitesDir string
	timeout    time.Duration
}

// NewRegistrationService creates a RegistrationService over the given store
// and dispatcher. timeout bounds each storage and delivery call.
func NewRegistrationService(
	logger *slog.Logger,
	store domain.RegistrationStore,
	dispatcher domain.Dispatcher,
	renderer domain.EmailTemplateRenderer,
	event EventDetails,
	invitesDir string,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		logger:     logger,
		store:      store,
		dispatcher: dispatcher,
		renderer:   renderer,
		event:      event,
		invitesDir: invitesDir,
		timeout:    timeout,
	}
}

func (s *registrationService) Register(ctx context.Context, input domain.RegisterInput) (*domain.RegisterResult, error) {
	name := strings.TrimSpace(input.Name)
	email := domain.NormalizeEmail(input.Email)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", domain.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// The duplicate check must not mistake an unreachable store for "no
	// duplicate"; any error other than not-found is fatal to the request.
	_, err := s.store.FindByEmail(ctx, email)
	if err == nil {
		return nil, domain.ErrDuplicateEmail
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("duplicate check: %w", err)
	}

	blob, err := ics.Generate(ics.Event{
		Start:       s.event.Start,
		End:         s.event.End,
		Summary:     s.event.Summary,
		Description: s.event.Description,
		Location:    s.event.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("generate invite: %w", err)
	}

	reg := domain.NewRegistration(name, email, input.Phone, time.Now())
	// Best effort: the base64 payload in the response is the authoritative
	// copy when the archive write fails.
	if path, err := s.archiveInvite(email, blob); err != nil {
		s.logger.Warn("failed to archive invite", "email", email, "err", err)
	} else {
		reg.InvitePath = path
	}

	if err := s.store.Insert(ctx, reg); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert registration: %w", err)
	}

	delivery := s.dispatcher.Dispatch(ctx, s.buildMessage(reg.Name, reg.Email, reg.InvitePath, blob))
	s.logger.Info("registration created",
		"email", reg.Email,
		"store", s.store.Source(),
		"email_sent", delivery.Sent,
	)

	return &domain.RegisterResult{
		Registration: reg,
		ICSBase64:    ics.EncodeBase64(blob),
		Delivery:     delivery,
	}, nil
}

func (s *registrationService) Resend(ctx context.Context, name, email string) (*domain.ResendResult, error) {
	name = strings.TrimSpace(name)
	email = domain.NormalizeEmail(email)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", domain.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Regenerated per request, never cached.
	blob, err := ics.Generate(ics.Event{
		Start:       s.event.Start,
		End:         s.event.End,
		Summary:     s.event.Summary,
		Description: s.event.Description,
		Location:    s.event.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("generate invite: %w", err)
	}

	delivery := s.dispatcher.Dispatch(ctx, s.buildMessage(name, email, "", blob))
	return &domain.ResendResult{
		ICSBase64: ics.EncodeBase64(blob),
		Delivery:  delivery,
	}, nil
}

func (s *registrationService) ListRegistrations(ctx context.Context) ([]*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	regs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

func (s *registrationService) StoreSource() string {
	return s.store.Source()
}

func (s *registrationService) buildMessage(name, email, invitePath, blob string) *domain.Message {
	subject, htmlBody, textBody, err := s.renderer.Render("invite", &domain.InviteEmailData{
		Name:     name,
		Email:    email,
		Summary:  s.event.Summary,
		Location: s.event.Location,
	})
	if err != nil {
		// A broken template must not fail the registration; fall back to a
		// minimal plain-text message.
		s.logger.Error("failed to render invite template", "err", err)
		subject = "RSVP: " + s.event.Summary
		textBody = fmt.Sprintf("Dear %s,\n\nThank you for registering for %s.\n", name, s.event.Summary)
		htmlBody = ""
	}
	return &domain.Message{
		To:             email,
		ToName:         name,
		Subject:        subject,
		HTMLBody:       htmlBody,
		TextBody:       textBody,
		ICS:            blob,
		AttachmentName: "invite.ics",
		InvitePath:     invitePath,
	}
}

func (s *registrationService) archiveInvite(email, blob string) (string, error) {
	if err := os.MkdirAll(s.invitesDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.invitesDir, slugify(email)+".ics")
	if err := os.WriteFile(path, []byte(blob), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
