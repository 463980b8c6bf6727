package store

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"paam/internal/kyc/models"
	id "paam/pkg/domain"
	dErrors "paam/pkg/domain-errors"
	"paam/pkg/platform/sentinel"
	txcontext "paam/pkg/platform/tx"
)

// Error Contract:
// - Return sentinel.ErrNotFound when the requested profile does not exist
// - Return nil for successful operations

type memTxKey struct{}

type profileRow struct {
	profile *models.Profile
	seq     int64
}

type memState struct {
	profiles  map[id.ProfileID]profileRow
	documents map[id.ProfileID][]*models.Document
	checks    map[id.ProfileID][]*models.Check
	audit     map[id.ProfileID][]*models.AuditEntry
	seq       int64
}

func (st memState) clone() memState {
	return memState{
		profiles:  maps.Clone(st.profiles),
		documents: maps.Clone(st.documents),
		checks:    maps.Clone(st.checks),
		audit:     maps.Clone(st.audit),
		seq:       st.seq,
	}
}

// InMemoryStore keeps profiles in process memory. RunInTx restores the
// previous state when fn fails, so creation stays all-or-nothing.
type InMemoryStore struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	st   memState
}

// NewInMemory constructs an empty in-memory KYC store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{st: memState{
		profiles:  make(map[id.ProfileID]profileRow),
		documents: make(map[id.ProfileID][]*models.Document),
		checks:    make(map[id.ProfileID][]*models.Check),
		audit:     make(map[id.ProfileID][]*models.AuditEntry),
	}}
}

// RunInTx serializes fn against other transactions and rolls the store back
// if fn returns an error. Nested calls join the outer transaction.
func (s *InMemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	ctx, cancel := txcontext.WithDefaultTimeout(ctx, txcontext.DefaultTimeout)
	defer cancel()

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.st.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *InMemoryStore) nextSeq() int64 {
	s.st.seq++
	return s.st.seq
}

func (s *InMemoryStore) InsertProfile(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.profiles[p.ID]; ok {
		return sentinel.ErrConflict
	}

	bare := *p
	bare.Documents, bare.Checks, bare.AuditTrail, bare.Customer = nil, nil, nil, nil
	s.st.profiles[p.ID] = profileRow{profile: &bare, seq: s.nextSeq()}

	docs := make([]*models.Document, 0, len(p.Documents))
	for _, d := range p.Documents {
		d.Seq = s.nextSeq()
		cp := *d
		docs = append(docs, &cp)
	}
	s.st.documents[p.ID] = docs

	checks := make([]*models.Check, 0, len(p.Checks))
	for _, c := range p.Checks {
		c.Seq = s.nextSeq()
		cp := *c
		checks = append(checks, &cp)
	}
	s.st.checks[p.ID] = checks
	return nil
}

func (s *InMemoryStore) AppendAudit(_ context.Context, e *models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.profiles[e.ProfileID]; !ok {
		return sentinel.ErrNotFound
	}
	e.Seq = s.nextSeq()
	cp := *e
	s.st.audit[e.ProfileID] = append(slices.Clip(s.st.audit[e.ProfileID]), &cp)
	return nil
}

func (s *InMemoryStore) FindProfile(_ context.Context, profileID id.ProfileID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.st.profiles[profileID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.hydrate(row.profile), nil
}

// FindProfileForUpdate returns the bare profile row. Callers inside RunInTx
// already hold the transaction lock.
func (s *InMemoryStore) FindProfileForUpdate(_ context.Context, profileID id.ProfileID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.st.profiles[profileID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *row.profile
	return &cp, nil
}

func (s *InMemoryStore) ListAudit(_ context.Context, profileID id.ProfileID) ([]*models.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.st.profiles[profileID]; !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyAudit(s.st.audit[profileID]), nil
}

func (s *InMemoryStore) ListProfiles(_ context.Context, filter models.Filter, page models.Page) ([]*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.matching(filter)
	slices.SortFunc(rows, func(a, b profileRow) int {
		if c := b.profile.CreatedAt.Compare(a.profile.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})

	start := min(page.Offset(), len(rows))
	end := min(start+page.Limit, len(rows))
	out := make([]*models.Profile, 0, end-start)
	for _, row := range rows[start:end] {
		out = append(out, s.hydrate(row.profile))
	}
	return out, nil
}

func (s *InMemoryStore) CountProfiles(_ context.Context, filter models.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matching(filter)), nil
}

func (s *InMemoryStore) CountByStatus(_ context.Context, filter models.Filter) (map[models.Status]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.Status]int)
	for _, row := range s.matching(filter) {
		counts[row.profile.Status]++
	}
	return counts, nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, profileID id.ProfileID, status models.Status, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.st.profiles[profileID]
	if !ok {
		return sentinel.ErrNotFound
	}
	updated := *row.profile
	updated.Status = status
	updated.UpdatedAt = updatedAt
	s.st.profiles[profileID] = profileRow{profile: &updated, seq: row.seq}
	return nil
}

// DeleteProfile removes the profile with its documents, checks and audit trail.
func (s *InMemoryStore) DeleteProfile(_ context.Context, profileID id.ProfileID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.profiles[profileID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.st.profiles, profileID)
	delete(s.st.documents, profileID)
	delete(s.st.checks, profileID)
	delete(s.st.audit, profileID)
	return nil
}

func (s *InMemoryStore) matching(filter models.Filter) []profileRow {
	var out []profileRow
	for _, row := range s.st.profiles {
		if filter.Status != nil && row.profile.Status != *filter.Status {
			continue
		}
		if filter.CustomerID != nil && row.profile.CustomerID != *filter.CustomerID {
			continue
		}
		out = append(out, row)
	}
	return out
}

// hydrate copies a profile with its documents (submission order) and checks
// (newest first). Callers must hold s.mu.
func (s *InMemoryStore) hydrate(p *models.Profile) *models.Profile {
	out := *p

	docs := s.st.documents[p.ID]
	out.Documents = make([]*models.Document, 0, len(docs))
	for _, d := range docs {
		cp := *d
		out.Documents = append(out.Documents, &cp)
	}

	checks := s.st.checks[p.ID]
	out.Checks = make([]*models.Check, 0, len(checks))
	for _, c := range checks {
		cp := *c
		out.Checks = append(out.Checks, &cp)
	}
	slices.SortFunc(out.Checks, func(a, b *models.Check) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.Seq, a.Seq)
	})
	return &out
}

func copyAudit(entries []*models.AuditEntry) []*models.AuditEntry {
	out := make([]*models.AuditEntry, 0, len(entries))
	for _, e := range entries {
		cp := *e
		out = append(out, &cp)
	}
	return out
}
