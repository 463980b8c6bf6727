package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"paam/internal/project/metrics"
	"paam/internal/project/models"
	id "paam/pkg/domain"
	dErrors "paam/pkg/domain-errors"
	"paam/pkg/platform/sentinel"
	"paam/pkg/requestcontext"
)

// Store persists projects, builds and deployments.
// Error Contract:
// - Find*, Update* and Delete* return sentinel.ErrNotFound for unknown rows
// - CreateBuild and CreateDeployment return sentinel.ErrNotFound when the parent is missing
// - UpdateBuildStatus returns sentinel.ErrConflict when the build left the expected status
// - DeleteProject removes the project's builds and deployments
type Store interface {
	CreateProject(ctx context.Context, p *models.Project) error
	FindProject(ctx context.Context, projectID id.ProjectID) (*models.Project, error)
	ListProjects(ctx context.Context, owner id.UserID, limit, offset int) ([]*models.Project, error)
	CountProjects(ctx context.Context, owner id.UserID) (int, error)
	UpdateProject(ctx context.Context, p *models.Project) error
	DeleteProject(ctx context.Context, projectID id.ProjectID) error
	CreateBuild(ctx context.Context, b *models.Build) error
	FindBuild(ctx context.Context, buildID id.BuildID) (*models.Build, error)
	ListBuilds(ctx context.Context, projectID id.ProjectID) ([]*models.Build, error)
	UpdateBuildStatus(ctx context.Context, buildID id.BuildID, from, to models.BuildStatus) error
	CreateDeployment(ctx context.Context, d *models.Deployment) error
	ListDeployments(ctx context.Context, buildID id.BuildID) ([]*models.Deployment, error)
}

// VersionLookup confirms an SDK version is published. It returns a domain
// not-found error otherwise.
type VersionLookup interface {
	RequirePublished(ctx context.Context, versionID id.VersionID) error
}

const maxPageLimit = 100

// ProjectPage is one page of a user's projects.
type ProjectPage struct {
	Projects []*models.Project
	Total    int
	Pages    int
}

// DeploymentInput requests a release of a build.
type DeploymentInput struct {
	Environment models.Environment
	URL         string
}

// Service manages projects on behalf of their owners. Rows owned by
// another user are reported as not found.
type Service struct {
	store    Store
	versions VersionLookup
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

type Option func(*Service)

func WithVersionLookup(versions VersionLookup) Option {
	return func(s *Service) {
		s.versions = versions
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, opts ...Option) *Service {
	svc := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *Service) CreateProject(ctx context.Context, owner id.UserID, in models.ProjectInput) (*models.Project, error) {
	p, err := models.NewProject(id.ProjectID(uuid.New()), owner, in, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to create project")
	}
	s.logger.InfoContext(ctx, "project created",
		"project_id", p.ID.String(),
		"owner_id", owner.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return p, nil
}

func (s *Service) ListProjects(ctx context.Context, owner id.UserID, page, limit int) (*ProjectPage, error) {
	if page < 1 {
		return nil, dErrors.New(dErrors.CodeValidation, "page must be at least 1")
	}
	if limit < 1 || limit > maxPageLimit {
		return nil, dErrors.New(dErrors.CodeValidation, "limit must be between 1 and 100")
	}

	var (
		projects []*models.Project
		total    int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projects, err = s.store.ListProjects(gctx, owner, limit, (page-1)*limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.CountProjects(gctx, owner)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to list projects")
	}
	return &ProjectPage{Projects: projects, Total: total, Pages: (total + limit - 1) / limit}, nil
}

func (s *Service) GetProject(ctx context.Context, owner id.UserID, projectID id.ProjectID) (*models.Project, error) {
	return s.ownedProject(ctx, owner, projectID)
}

func (s *Service) UpdateProject(ctx context.Context, owner id.UserID, projectID id.ProjectID, patch models.ProjectPatch) (*models.Project, error) {
	p, err := s.ownedProject(ctx, owner, projectID)
	if err != nil {
		return nil, err
	}
	if err := p.Apply(patch, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.store.UpdateProject(ctx, p); err != nil {
		return nil, translate(err, "project not found", "failed to update project")
	}
	return p, nil
}

// DeleteProject removes the project together with its builds and deployments.
func (s *Service) DeleteProject(ctx context.Context, owner id.UserID, projectID id.ProjectID) error {
	if _, err := s.ownedProject(ctx, owner, projectID); err != nil {
		return err
	}
	if err := s.store.DeleteProject(ctx, projectID); err != nil {
		return translate(err, "project not found", "failed to delete project")
	}
	s.logger.InfoContext(ctx, "project deleted",
		"project_id", projectID.String(),
		"owner_id", owner.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// CreateBuild queues a build, optionally pinned to a published SDK version.
func (s *Service) CreateBuild(ctx context.Context, owner id.UserID, projectID id.ProjectID, versionID *id.VersionID) (*models.Build, error) {
	if _, err := s.ownedProject(ctx, owner, projectID); err != nil {
		return nil, err
	}
	if versionID != nil && s.versions != nil {
		if err := s.versions.RequirePublished(ctx, *versionID); err != nil {
			return nil, err
		}
	}
	b := &models.Build{
		ID:        id.BuildID(uuid.New()),
		ProjectID: projectID,
		VersionID: versionID,
		Status:    models.BuildQueued,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.CreateBuild(ctx, b); err != nil {
		return nil, translate(err, "project or sdk version not found", "failed to create build")
	}
	return b, nil
}

func (s *Service) ListBuilds(ctx context.Context, owner id.UserID, projectID id.ProjectID) ([]*models.Build, error) {
	if _, err := s.ownedProject(ctx, owner, projectID); err != nil {
		return nil, err
	}
	builds, err := s.store.ListBuilds(ctx, projectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to list builds")
	}
	return builds, nil
}

// UpdateBuildStatus advances a build along QUEUED -> RUNNING -> SUCCEEDED|FAILED.
func (s *Service) UpdateBuildStatus(ctx context.Context, owner id.UserID, buildID id.BuildID, status models.BuildStatus) (*models.Build, error) {
	b, err := s.ownedBuild(ctx, owner, buildID)
	if err != nil {
		return nil, err
	}
	if !b.Status.CanTransitionTo(status) {
		return nil, dErrors.New(dErrors.CodeConflict, "build cannot move from "+string(b.Status)+" to "+string(status))
	}
	if err := s.store.UpdateBuildStatus(ctx, buildID, b.Status, status); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "build status changed concurrently")
		}
		return nil, translate(err, "build not found", "failed to update build status")
	}
	if s.metrics != nil {
		s.metrics.IncrementBuildTransition(string(status))
	}
	b.Status = status
	return b, nil
}

// CreateDeployment releases a succeeded build. The deployment starts PENDING.
func (s *Service) CreateDeployment(ctx context.Context, owner id.UserID, buildID id.BuildID, in DeploymentInput) (*models.Deployment, error) {
	b, err := s.ownedBuild(ctx, owner, buildID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BuildSucceeded {
		return nil, dErrors.New(dErrors.CodeConflict, "only succeeded builds can be deployed")
	}
	d := &models.Deployment{
		ID:          id.DeploymentID(uuid.New()),
		BuildID:     buildID,
		Environment: in.Environment,
		URL:         in.URL,
		Status:      models.DeploymentPending,
		CreatedAt:   requestcontext.Now(ctx),
	}
	if err := s.store.CreateDeployment(ctx, d); err != nil {
		return nil, translate(err, "build not found", "failed to create deployment")
	}
	if s.metrics != nil {
		s.metrics.IncrementDeployments(string(in.Environment))
	}
	return d, nil
}

func (s *Service) ListDeployments(ctx context.Context, owner id.UserID, buildID id.BuildID) ([]*models.Deployment, error) {
	if _, err := s.ownedBuild(ctx, owner, buildID); err != nil {
		return nil, err
	}
	deployments, err := s.store.ListDeployments(ctx, buildID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to list deployments")
	}
	return deployments, nil
}

func (s *Service) ownedProject(ctx context.Context, owner id.UserID, projectID id.ProjectID) (*models.Project, error) {
	p, err := s.store.FindProject(ctx, projectID)
	if err != nil {
		return nil, translate(err, "project not found", "failed to load project")
	}
	if p.OwnerID != owner {
		return nil, dErrors.New(dErrors.CodeNotFound, "project not found")
	}
	return p, nil
}

func (s *Service) ownedBuild(ctx context.Context, owner id.UserID, buildID id.BuildID) (*models.Build, error) {
	b, err := s.store.FindBuild(ctx, buildID)
	if err != nil {
		return nil, translate(err, "build not found", "failed to load build")
	}
	if _, err := s.ownedProject(ctx, owner, b.ProjectID); err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "build not found")
		}
		return nil, err
	}
	return b, nil
}

func translate(err error, notFound, persistence string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFound)
	}
	return dErrors.Wrap(err, dErrors.CodePersistence, persistence)
}
