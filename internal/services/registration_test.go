package services

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"eventrsvp/internal/domain"

	"github.com/stretchr/testify/require"
)

// fakeStore implements domain.RegistrationStore for tests.
type fakeStore struct {
	byEmail   map[string]*domain.Registration
	findErr   error
	insertErr error
	inserts   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{byEmail: make(map[string]*domain.Registration)}
}

func (f *fakeStore) FindByEmail(ctx context.Context, email string) (*domain.Registration, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if reg, ok := f.byEmail[email]; ok {
		return reg, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) Insert(ctx context.Context, reg *domain.Registration) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserts++
	reg.ID = "reg-1"
	f.byEmail[reg.Email] = reg
	return nil
}

func (f *fakeStore) List(ctx context.Context) ([]*domain.Registration, error) {
	var out []*domain.Registration
	for _, reg := range f.byEmail {
		out = append(out, reg)
	}
	return out, nil
}

func (f *fakeStore) Source() string { return "fake" }

// fakeDispatcher implements domain.Dispatcher for tests.
type fakeDispatcher struct {
	result *domain.DeliveryResult
	last   *domain.Message
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, msg *domain.Message) *domain.DeliveryResult {
	f.last = msg
	if f.result != nil {
		return f.result
	}
	return &domain.DeliveryResult{Sent: true, Provider: "fake"}
}

// fakeRenderer implements domain.EmailTemplateRenderer for tests.
type fakeRenderer struct{ err error }

func (f *fakeRenderer) Render(name string, data any) (string, string, string, error) {
	if f.err != nil {
		return "", "", "", f.err
	}
	return "RSVP", "<p>hi</p>", "hi", nil
}

func testEvent() EventDetails {
	start := time.Date(2025, 12, 9, 11, 0, 0, 0, time.UTC)
	return EventDetails{
		Start:       start,
		End:         start,
		Summary:     "Public Presentation",
		Description: "desc",
		Location:    "Lagos",
	}
}

func newTestService(t *testing.T, store domain.RegistrationStore, dispatcher domain.Dispatcher) domain.RegistrationService {
	t.Helper()
	return NewRegistrationService(discardLogger(), store, dispatcher, &fakeRenderer{}, testEvent(), t.TempDir(), 5*time.Second)
}

func TestRegister_Success(t *testing.T) {
	store := newFakeStore()
	dispatcher := &fakeDispatcher{}
	svc := newTestService(t, store, dispatcher)

	result, err := svc.Register(context.Background(), domain.RegisterInput{Name: "Ada", Email: "Ada@X.com", Phone: "555"})
	require.NoError(t, err)
	require.Equal(t, "ada@x.com", result.Registration.Email)
	require.Equal(t, "reg-1", result.Registration.ID)
	require.True(t, result.Delivery.Sent)

	// The encoded invite decodes back to the blob handed to the dispatcher.
	decoded, err := base64.StdEncoding.DecodeString(result.ICSBase64)
	require.NoError(t, err)
	require.Equal(t, dispatcher.last.ICS, string(decoded))
	require.Contains(t, string(decoded), "SUMMARY:Public Presentation")
}

func TestRegister_MissingFields(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, &fakeDispatcher{})

	for _, input := range []domain.RegisterInput{
		{Email: "a@b.com"},
		{Name: "Ada"},
		{},
	} {
		_, err := svc.Register(context.Background(), input)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	}
	require.Zero(t, store.inserts, "no storage mutation on validation failure")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, &fakeDispatcher{})

	_, err := svc.Register(context.Background(), domain.RegisterInput{Name: "Ada", Email: "ada@x.com"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), domain.RegisterInput{Name: "Ada", Email: "ADA@x.com"})
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)
	require.Equal(t, 1, store.inserts)
}

func TestRegister_StorageUnavailableOnCheckIsFatal(t *testing.T) {
	store := newFakeStore()
	store.findErr = domain.ErrStorageUnavailable
	svc := newTestService(t, store, &fakeDispatcher{})

	_, err := svc.Register(context.Background(), domain.RegisterInput{Name: "Ada", Email: "ada@x.com"})
	require.ErrorIs(t, err, domain.ErrStorageUnavailable)
	require.Zero(t, store.inserts)
}

func TestRegister_InsertRaceLosesToAuthoritativeStore(t *testing.T) {
	store := newFakeStore()
	store.insertErr = domain.ErrDuplicateEmail
	svc := newTestService(t, store, &fakeDispatcher{})

	_, err := svc.Register(context.Background(), domain.RegisterInput{Name: "Ada", Email: "ada@x.com"})
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestRegister_DeliveryFailureDoesNotFailRegistration(t *testing.T) {
	store := newFakeStore()
	dispatcher := &fakeDispatcher{result: &domain.DeliveryResult{
		Sent:      false,
		SendError: "Email provider not configured. Registration saved but no email sent.",
	}}
	svc := newTestService(t, store, dispatcher)

	result, err := svc.Register(context.Background(), domain.RegisterInput{Name: "Ada", Email: "ada@x.com"})
	require.NoError(t, err)
	require.Equal(t, 1, store.inserts)
	require.False(t, result.Delivery.Sent)
	require.NotEmpty(t, result.Delivery.SendError)
	require.NotEmpty(t, result.ICSBase64, "client can self-serve a download")
}

func TestRegister_BrokenTemplateFallsBackToPlainText(t *testing.T) {
	store := newFakeStore()
	dispatcher := &fakeDispatcher{}
	svc := NewRegistrationService(discardLogger(), store, dispatcher, &fakeRenderer{err: errors.New("bad template")}, testEvent(), t.TempDir(), 5*time.Second)

	_, err := svc.Register(context.Background(), domain.RegisterInput{Name: "Ada", Email: "ada@x.com"})
	require.NoError(t, err)
	require.NotNil(t, dispatcher.last)
	require.True(t, strings.Contains(dispatcher.last.Subject, "Public Presentation"))
	require.NotEmpty(t, dispatcher.last.TextBody)
}

func TestResend_RegeneratesInviteWithoutTouchingStorage(t *testing.T) {
	store := newFakeStore()
	dispatcher := &fakeDispatcher{}
	svc := newTestService(t, store, dispatcher)

	result, err := svc.Resend(context.Background(), "Ada", "ada@x.com")
	require.NoError(t, err)
	require.True(t, result.Delivery.Sent)
	require.NotEmpty(t, result.ICSBase64)
	require.Zero(t, store.inserts)
}

func TestResend_MissingFields(t *testing.T) {
	svc := newTestService(t, newFakeStore(), &fakeDispatcher{})
	_, err := svc.Resend(context.Background(), "", "ada@x.com")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
