package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"paam/internal/project/models"
	id "paam/pkg/domain"
	"paam/pkg/platform/sentinel"
)

// Error Contract:
// - Return sentinel.ErrNotFound when the project, build, or parent row does not exist
// - Return sentinel.ErrConflict when an id is reused

// InMemory keeps projects, builds and deployments in memory. Deleting a
// project removes its builds and their deployments.
type InMemory struct {
	mu          sync.RWMutex
	projects    map[id.ProjectID]*models.Project
	builds      map[id.BuildID]*models.Build
	deployments map[id.DeploymentID]*models.Deployment
}

func NewInMemory() *InMemory {
	return &InMemory{
		projects:    make(map[id.ProjectID]*models.Project),
		builds:      make(map[id.BuildID]*models.Build),
		deployments: make(map[id.DeploymentID]*models.Deployment),
	}
}

func (s *InMemory) CreateProject(_ context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.projects[p.ID]; exists {
		return fmt.Errorf("project %s: %w", p.ID, sentinel.ErrConflict)
	}
	stored := *p
	s.projects[p.ID] = &stored
	return nil
}

func (s *InMemory) FindProject(_ context.Context, projectID id.ProjectID) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[projectID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *p
	return &out, nil
}

// ListProjects returns owner's projects newest first.
func (s *InMemory) ListProjects(_ context.Context, owner id.UserID, limit, offset int) ([]*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owned := s.ownedBy(owner)
	slices.SortFunc(owned, func(a, b *models.Project) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareUUID(uuid.UUID(a.ID), uuid.UUID(b.ID))
	})
	if offset >= len(owned) {
		return []*models.Project{}, nil
	}
	end := min(offset+limit, len(owned))
	out := make([]*models.Project, 0, end-offset)
	for _, p := range owned[offset:end] {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemory) CountProjects(_ context.Context, owner id.UserID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ownedBy(owner)), nil
}

func (s *InMemory) UpdateProject(_ context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	stored := *p
	s.projects[p.ID] = &stored
	return nil
}

func (s *InMemory) DeleteProject(_ context.Context, projectID id.ProjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[projectID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.projects, projectID)
	for buildID, b := range s.builds {
		if b.ProjectID != projectID {
			continue
		}
		for deploymentID, d := range s.deployments {
			if d.BuildID == buildID {
				delete(s.deployments, deploymentID)
			}
		}
		delete(s.builds, buildID)
	}
	return nil
}

func (s *InMemory) CreateBuild(_ context.Context, b *models.Build) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[b.ProjectID]; !ok {
		return fmt.Errorf("project %s: %w", b.ProjectID, sentinel.ErrNotFound)
	}
	if _, exists := s.builds[b.ID]; exists {
		return fmt.Errorf("build %s: %w", b.ID, sentinel.ErrConflict)
	}
	stored := *b
	s.builds[b.ID] = &stored
	return nil
}

func (s *InMemory) FindBuild(_ context.Context, buildID id.BuildID) (*models.Build, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.builds[buildID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *b
	return &out, nil
}

// ListBuilds returns the project's builds newest first.
func (s *InMemory) ListBuilds(_ context.Context, projectID id.ProjectID) ([]*models.Build, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Build{}
	for _, b := range s.builds {
		if b.ProjectID == projectID {
			cp := *b
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *models.Build) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareUUID(uuid.UUID(a.ID), uuid.UUID(b.ID))
	})
	return out, nil
}

// UpdateBuildStatus moves the build from one status to another. It returns
// sentinel.ErrConflict when the stored status is no longer from.
func (s *InMemory) UpdateBuildStatus(_ context.Context, buildID id.BuildID, from, to models.BuildStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.builds[buildID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if b.Status != from {
		return fmt.Errorf("build %s is %s: %w", buildID, b.Status, sentinel.ErrConflict)
	}
	b.Status = to
	return nil
}

func (s *InMemory) CreateDeployment(_ context.Context, d *models.Deployment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.builds[d.BuildID]; !ok {
		return fmt.Errorf("build %s: %w", d.BuildID, sentinel.ErrNotFound)
	}
	if _, exists := s.deployments[d.ID]; exists {
		return fmt.Errorf("deployment %s: %w", d.ID, sentinel.ErrConflict)
	}
	stored := *d
	s.deployments[d.ID] = &stored
	return nil
}

// ListDeployments returns the build's deployments newest first.
func (s *InMemory) ListDeployments(_ context.Context, buildID id.BuildID) ([]*models.Deployment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Deployment{}
	for _, d := range s.deployments {
		if d.BuildID == buildID {
			cp := *d
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *models.Deployment) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareUUID(uuid.UUID(a.ID), uuid.UUID(b.ID))
	})
	return out, nil
}

func (s *InMemory) ownedBy(owner id.UserID) []*models.Project {
	out := make([]*models.Project, 0)
	for _, p := range s.projects {
		if p.OwnerID == owner {
			out = append(out, p)
		}
	}
	return out
}

func compareUUID(a, b uuid.UUID) int {
	return slices.Compare(a[:], b[:])
}
