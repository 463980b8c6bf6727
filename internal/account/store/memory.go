package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"paam/internal/account/models"
	id "paam/pkg/domain"
	"paam/pkg/platform/sentinel"
)

// Error Contract:
// - Return sentinel.ErrNotFound when the user or key does not exist
// - Return sentinel.ErrConflict when an email or key prefix is taken

// InMemory keeps users and API keys in memory.
type InMemory struct {
	mu       sync.RWMutex
	users    map[id.UserID]*models.User
	emails   map[string]id.UserID
	keys     map[id.APIKeyID]*models.APIKey
	prefixes map[string]id.APIKeyID
}

func NewInMemory() *InMemory {
	return &InMemory{
		users:    make(map[id.UserID]*models.User),
		emails:   make(map[string]id.UserID),
		keys:     make(map[id.APIKeyID]*models.APIKey),
		prefixes: make(map[string]id.APIKeyID),
	}
}

func (s *InMemory) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[u.ID]; exists {
		return fmt.Errorf("user %s: %w", u.ID, sentinel.ErrConflict)
	}
	if _, exists := s.emails[u.Email]; exists {
		return fmt.Errorf("user email %s: %w", u.Email, sentinel.ErrConflict)
	}
	stored := *u
	s.users[u.ID] = &stored
	s.emails[u.Email] = u.ID
	return nil
}

func (s *InMemory) FindUser(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *u
	return &out, nil
}

// ListUsers returns users newest first.
func (s *InMemory) ListUsers(_ context.Context, limit, offset int) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, u)
	}
	slices.SortFunc(all, func(a, b *models.User) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareUUID(uuid.UUID(a.ID), uuid.UUID(b.ID))
	})
	return page(all, limit, offset), nil
}

func (s *InMemory) CountUsers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

func (s *InMemory) CreateAPIKey(_ context.Context, k *models.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[k.UserID]; !ok {
		return fmt.Errorf("api key owner %s: %w", k.UserID, sentinel.ErrNotFound)
	}
	if _, exists := s.prefixes[k.Prefix]; exists {
		return fmt.Errorf("api key prefix %s: %w", k.Prefix, sentinel.ErrConflict)
	}
	stored := *k
	s.keys[k.ID] = &stored
	s.prefixes[k.Prefix] = k.ID
	return nil
}

func (s *InMemory) FindAPIKey(_ context.Context, keyID id.APIKeyID) (*models.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.keys[keyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyKey(k), nil
}

func (s *InMemory) FindAPIKeyByPrefix(_ context.Context, prefix string) (*models.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keyID, ok := s.prefixes[prefix]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyKey(s.keys[keyID]), nil
}

// ListAPIKeys returns keys of every user, newest first.
func (s *InMemory) ListAPIKeys(_ context.Context, limit, offset int) ([]*models.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*models.APIKey, 0, len(s.keys))
	for _, k := range s.keys {
		all = append(all, k)
	}
	slices.SortFunc(all, func(a, b *models.APIKey) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareUUID(uuid.UUID(a.ID), uuid.UUID(b.ID))
	})
	paged := page(all, limit, offset)
	for i, k := range paged {
		paged[i] = copyKey(k)
	}
	return paged, nil
}

func (s *InMemory) CountAPIKeys(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys), nil
}

// RevokeAPIKey stamps RevokedAt once. Revoking an already revoked key is a no-op.
func (s *InMemory) RevokeAPIKey(_ context.Context, keyID id.APIKeyID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[keyID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if k.RevokedAt == nil {
		revoked := at
		k.RevokedAt = &revoked
	}
	return nil
}

func (s *InMemory) TouchAPIKey(_ context.Context, keyID id.APIKeyID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[keyID]
	if !ok {
		return sentinel.ErrNotFound
	}
	used := at
	k.LastUsedAt = &used
	return nil
}

func copyKey(k *models.APIKey) *models.APIKey {
	out := *k
	if k.LastUsedAt != nil {
		t := *k.LastUsedAt
		out.LastUsedAt = &t
	}
	if k.RevokedAt != nil {
		t := *k.RevokedAt
		out.RevokedAt = &t
	}
	return &out
}

func page[T any](all []*T, limit, offset int) []*T {
	if offset >= len(all) {
		return []*T{}
	}
	end := min(offset+limit, len(all))
	out := make([]*T, 0, end-offset)
	for _, item := range all[offset:end] {
		cp := *item
		out = append(out, &cp)
	}
	return out
}

func compareUUID(a, b uuid.UUID) int {
	return slices.Compare(a[:], b[:])
}
