package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"paam/internal/customer/models"
	id "paam/pkg/domain"
	"paam/pkg/platform/sentinel"
)

// Error Contract:
// - Return sentinel.ErrNotFound when the customer does not exist
// - Return sentinel.ErrConflict when the id or email is already registered

// InMemory stores customers in memory for the demo environment.
type InMemory struct {
	mu       sync.RWMutex
	byID     map[id.CustomerID]*models.Customer
	emailIdx map[string]id.CustomerID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:     make(map[id.CustomerID]*models.Customer),
		emailIdx: make(map[string]id.CustomerID),
	}
}

// Create registers c unless its id or email is taken.
func (s *InMemory) Create(_ context.Context, c *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[c.ID]; exists {
		return fmt.Errorf("customer %s: %w", c.ID, sentinel.ErrConflict)
	}
	email := strings.ToLower(c.Email)
	if _, exists := s.emailIdx[email]; exists {
		return fmt.Errorf("customer email %s: %w", email, sentinel.ErrConflict)
	}
	stored := *c
	s.byID[c.ID] = &stored
	s.emailIdx[email] = c.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, customerID id.CustomerID) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[customerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *c
	return &out, nil
}

// FindByIDs returns the customers that exist among ids; missing ids are skipped.
func (s *InMemory) FindByIDs(_ context.Context, ids []id.CustomerID) ([]*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Customer, 0, len(ids))
	for _, customerID := range ids {
		if c, ok := s.byID[customerID]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

// List returns customers newest first.
func (s *InMemory) List(_ context.Context, filter models.Filter, limit, offset int) ([]*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := s.matching(filter)
	slices.SortFunc(matched, func(a, b *models.Customer) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})
	if offset >= len(matched) {
		return []*models.Customer{}, nil
	}
	end := min(offset+limit, len(matched))
	out := make([]*models.Customer, 0, end-offset)
	for _, c := range matched[offset:end] {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemory) Count(_ context.Context, filter models.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matching(filter)), nil
}

func (s *InMemory) UpdateRiskLevel(_ context.Context, customerID id.CustomerID, level models.RiskLevel, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[customerID]
	if !ok {
		return sentinel.ErrNotFound
	}
	c.RiskLevel = level
	c.UpdatedAt = updatedAt
	return nil
}

func (s *InMemory) matching(filter models.Filter) []*models.Customer {
	out := make([]*models.Customer, 0, len(s.byID))
	for _, c := range s.byID {
		if filter.RiskLevel != nil && c.RiskLevel != *filter.RiskLevel {
			continue
		}
		out = append(out, c)
	}
	return out
}
