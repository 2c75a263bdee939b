package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Sentinel errors for registration operations.
var (
	ErrNotFound           = errors.New("registration not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInvalidInput       = errors.New("invalid input")
)

// Registration represents an attendee's RSVP for the event.
// swagger:model Registration
type Registration struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	InvitePath string    `json:"invite_path,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewRegistration creates a Registration with a normalized email.
// ID is typically set by the store on insert.
func NewRegistration(name, email, phone string, createdAt time.Time) *Registration {
	return &Registration{
		Name:      strings.TrimSpace(name),
		Email:     NormalizeEmail(email),
		Phone:     strings.TrimSpace(phone),
		CreatedAt: createdAt,
	}
}

// NormalizeEmail lowercases and trims an email address so the uniqueness
// invariant holds regardless of how the caller typed it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterInput is the caller-supplied data for one registration request.
type RegisterInput struct {
	Name  string
	Email string
	Phone string
}

// RegisterResult reports the outcome of a successful registration, including
// the delivery outcome and the encoded invite so a client can self-serve a
// download when delivery failed.
type RegisterResult struct {
	Registration *Registration
	ICSBase64    string
	Delivery     *DeliveryResult
}

// ResendResult reports the outcome of re-sending an invite.
type ResendResult struct {
	ICSBase64 string
	Delivery  *DeliveryResult
}

// RegistrationService sequences validation, duplicate check, persistence,
// invite generation, and notification for registration requests.
//
// Register returns ErrInvalidInput for missing fields, ErrDuplicateEmail for
// an already registered address, and a storage error when persistence failed;
// a delivery failure is reported inside the result, never as an error.
type RegistrationService interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterResult, error)
	Resend(ctx context.Context, name, email string) (*ResendResult, error)
	ListRegistrations(ctx context.Context) ([]*Registration, error)
	StoreSource() string
}

// RegistrationStore defines storage operations for registrations. At most one
// registration may exist per email value.
//
// FindByEmail returns ErrNotFound when no registration exists for the email.
// Both operations wrap ErrStorageUnavailable when the backing store cannot be
// reached, so callers can tell "no duplicate" apart from "could not check".
type RegistrationStore interface {
	FindByEmail(ctx context.Context, email string) (*Registration, error)
	Insert(ctx context.Context, reg *Registration) error
	List(ctx context.Context) ([]*Registration, error)
	// Source identifies which backing strategy answered, e.g. "postgres" or "file".
	Source() string
}
