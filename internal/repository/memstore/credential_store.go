// Package memstore holds in-process stores used by tests and local tooling.
// They enforce the same uniqueness rules as the Postgres schema.
package memstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"marketplace-api/internal/domain"
	apperrors "marketplace-api/pkg/errors"
)

// CredentialStore keeps identities in a map guarded by a mutex
type CredentialStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]domain.Identity

	// Err, when set, is returned by every call. Used to simulate outages.
	Err error
}

// NewCredentialStore returns an empty store whose first identity gets id 1
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{byID: make(map[int64]domain.Identity)}
}

func (s *CredentialStore) FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.Identity, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *domain.Identity
	for _, id := range s.byID {
		if (email != "" && strings.EqualFold(id.Email, email)) || (username != "" && id.Username == username) {
			if found == nil || id.ID < found.ID {
				copied := id
				found = &copied
			}
		}
	}
	return found, nil
}

func (s *CredentialStore) Create(ctx context.Context, fields domain.NewIdentity) (*domain.Identity, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUnique(0, fields.Email, fields.Username); err != nil {
		return nil, err
	}

	s.nextID++
	now := time.Now().UTC()
	identity := domain.Identity{
		ID:              s.nextID,
		Email:           fields.Email,
		Username:        fields.Username,
		PasswordHash:    fields.PasswordHash,
		ProfileImageRef: fields.ProfileImageRef,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.byID[identity.ID] = identity
	return &identity, nil
}

// Put stores identity under its own ID, replacing any existing entry
func (s *CredentialStore) Put(identity domain.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[identity.ID] = identity
	if identity.ID > s.nextID {
		s.nextID = identity.ID
	}
}

func (s *CredentialStore) FindByID(ctx context.Context, id int64) (*domain.Identity, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &identity, nil
}

func (s *CredentialStore) Update(ctx context.Context, id int64, patch domain.IdentityPatch) (*domain.Identity, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, ok := s.byID[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("User not found")
	}

	email, username := identity.Email, identity.Username
	if patch.Email != nil {
		email = *patch.Email
	}
	if patch.Username != nil {
		username = *patch.Username
	}
	if err := s.checkUnique(id, email, username); err != nil {
		return nil, err
	}

	identity.Email = email
	identity.Username = username
	if patch.PasswordHash != nil {
		identity.PasswordHash = *patch.PasswordHash
	}
	if patch.ProfileImageRef != nil {
		identity.ProfileImageRef = *patch.ProfileImageRef
	}
	identity.UpdatedAt = time.Now().UTC()
	s.byID[id] = identity
	return &identity, nil
}

func (s *CredentialStore) Delete(ctx context.Context, id int64) (*domain.Identity, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	delete(s.byID, id)
	return &identity, nil
}

// Len returns the number of stored identities
func (s *CredentialStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *CredentialStore) checkUnique(selfID int64, email, username string) error {
	for _, other := range s.byID {
		if other.ID == selfID {
			continue
		}
		if strings.EqualFold(other.Email, email) {
			return apperrors.NewConflictError("Email is already registered", nil)
		}
		if other.Username == username {
			return apperrors.NewConflictError("Username is already taken", nil)
		}
	}
	return nil
}
