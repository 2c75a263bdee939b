// Package file implements the flat-file fallback registration store.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"eventrsvp/internal/domain"
)

const collectionFile = "registrations.json"

// registrationStore keeps the full registration set in a single JSON file.
// The duplicate check and the append are serialized behind mu, which closes
// the read-check-write race for a single process. Concurrent writers from
// other processes are not supported.
type registrationStore struct {
	mu   sync.Mutex
	path string
}

// NewRegistrationStore returns a RegistrationStore persisting to
// dir/registrations.json. The directory is created if missing.
func NewRegistrationStore(dir string) (domain.RegistrationStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &registrationStore{path: filepath.Join(dir, collectionFile)}, nil
}

func (s *registrationStore) Source() string { return "file" }

func (s *registrationStore) FindByEmail(ctx context.Context, email string) (*domain.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	regs, err := s.load()
	if err != nil {
		return nil, err
	}
	email = domain.NormalizeEmail(email)
	for _, reg := range regs {
		if domain.NormalizeEmail(reg.Email) == email {
			return reg, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *registrationStore) Insert(ctx context.Context, reg *domain.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	regs, err := s.load()
	if err != nil {
		return err
	}
	email := domain.NormalizeEmail(reg.Email)
	for _, existing := range regs {
		if domain.NormalizeEmail(existing.Email) == email {
			return domain.ErrDuplicateEmail
		}
	}
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	regs = append(regs, reg)
	return s.save(regs)
}

func (s *registrationStore) List(ctx context.Context) ([]*domain.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	regs, err := s.load()
	if err != nil {
		return nil, err
	}
	// Newest first, matching the admin view ordering of the postgres store.
	out := make([]*domain.Registration, 0, len(regs))
	for i := len(regs) - 1; i >= 0; i-- {
		out = append(out, regs[i])
	}
	return out, nil
}

func (s *registrationStore) load() ([]*domain.Registration, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	var regs []*domain.Registration
	if err := json.Unmarshal(data, &regs); err != nil {
		return nil, fmt.Errorf("%w: corrupt collection file: %v", domain.ErrStorageUnavailable, err)
	}
	return regs, nil
}

// save rewrites the collection through a temp file and rename so a crash
// mid-write leaves either the old or the new file, never a torn one.
func (s *registrationStore) save(regs []*domain.Registration) error {
	data, err := json.MarshalIndent(regs, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}
