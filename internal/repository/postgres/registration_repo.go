package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eventrsvp/internal/domain"
)

// uniqueViolation is the postgres error code for a unique constraint breach.
// The unique index on email is the authoritative duplicate check.
const uniqueViolation = "23505"

type registrationStore struct {
	DB *sql.DB
}

// NewRegistrationStore returns a RegistrationStore backed by postgres.
// The *sql.DB is shared process-wide and pools its own connections.
func NewRegistrationStore(db *sql.DB) domain.RegistrationStore {
	return &registrationStore{DB: db}
}

func (r *registrationStore) Source() string { return "postgres" }

func (r *registrationStore) Insert(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO registrations (name, email, phone, invite_path, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, reg.Name, reg.Email, reg.Phone, reg.InvitePath, reg.CreatedAt).
		Scan(&reg.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *registrationStore) FindByEmail(ctx context.Context, email string) (*domain.Registration, error) {
	query := `
		SELECT id, name, email, phone, invite_path, created_at
		FROM registrations
		WHERE email = $1
	`
	reg := &domain.Registration{}
	err := r.DB.QueryRowContext(ctx, query, email).
		Scan(&reg.ID, &reg.Name, &reg.Email, &reg.Phone, &reg.InvitePath, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		// A transport failure must not read as "no duplicate".
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return reg, nil
}

func (r *registrationStore) List(ctx context.Context) ([]*domain.Registration, error) {
	query := `
		SELECT id, name, email, phone, invite_path, created_at
		FROM registrations
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var regs []*domain.Registration
	for rows.Next() {
		reg := &domain.Registration{}
		if err := rows.Scan(&reg.ID, &reg.Name, &reg.Email, &reg.Phone, &reg.InvitePath, &reg.CreatedAt); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if regs == nil {
		regs = []*domain.Registration{}
	}
	return regs, nil
}
