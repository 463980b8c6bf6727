package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"paam/internal/sdk/cache"
	"paam/internal/sdk/metrics"
	"paam/internal/sdk/models"
	"paam/internal/sdk/store"
	id "paam/pkg/domain"
	dErrors "paam/pkg/domain-errors"
	"paam/pkg/platform/sentinel"
	"paam/pkg/requestcontext"
)

// Store persists SDK versions and downloads.
// Error Contract:
// - FindVersion returns sentinel.ErrNotFound for unknown versions
// - CreateVersion returns sentinel.ErrConflict for a duplicate version+platform
// - RecordDownload returns sentinel.ErrNotFound when the version row is gone
type Store interface {
	CreateVersion(ctx context.Context, v *models.Version) error
	FindVersion(ctx context.Context, versionID id.VersionID) (*models.Version, error)
	ListVersions(ctx context.Context, filter store.VersionFilter) ([]*models.Version, error)
	RecordDownload(ctx context.Context, d *models.Download) error
	ListDownloads(ctx context.Context, rng models.DateRange, limit, offset int) ([]*models.DownloadView, error)
	CountDownloads(ctx context.Context, rng models.DateRange) (int, error)
	CountUniqueDownloaders(ctx context.Context, rng models.DateRange) (int, error)
	DownloadsByVersion(ctx context.Context, rng models.DateRange) ([]models.VersionCount, error)
	DownloadsByDay(ctx context.Context, rng models.DateRange) ([]models.DayCount, error)
}

// AnalyticsCache stores computed analytics per window. Get returns
// cache.ErrMiss when nothing fresh is stored.
type AnalyticsCache interface {
	Get(ctx context.Context, rng models.DateRange) (*models.Analytics, error)
	Set(ctx context.Context, rng models.DateRange, a *models.Analytics) error
}

// DownloadInput identifies who fetched a version.
type DownloadInput struct {
	UserID    *id.UserID
	IPAddress string
	UserAgent string
}

// DownloadPage is one page of downloads and the window total.
type DownloadPage struct {
	Downloads []*models.DownloadView
	Total     int
	Pages     int
}

const maxPageLimit = 100

// Service publishes SDK versions and tracks their downloads.
type Service struct {
	store   Store
	cache   AnalyticsCache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Service)

// WithCache enables analytics caching; without it every call recomputes.
func WithCache(c AnalyticsCache) Option {
	return func(s *Service) {
		s.cache = c
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

// PublishVersion releases a new SDK build.
func (s *Service) PublishVersion(ctx context.Context, in models.PublishInput) (*models.Version, error) {
	version, err := models.NormalizeVersion(in.Version)
	if err != nil {
		return nil, err
	}
	if !in.Platform.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "platform must be one of ANDROID, IOS, FLUTTER, REACT_NATIVE")
	}
	if in.FileURL == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "fileUrl is required")
	}

	v := &models.Version{
		ID:           id.VersionID(uuid.New()),
		Version:      version,
		Platform:     in.Platform,
		FileURL:      in.FileURL,
		Checksum:     in.Checksum,
		ReleaseNotes: in.ReleaseNotes,
		Published:    true,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.store.CreateVersion(ctx, v); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "version "+version+" already exists for "+string(in.Platform))
		}
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to publish sdk version")
	}

	if s.metrics != nil {
		s.metrics.IncrementVersionsPublished(string(v.Platform))
	}
	s.logger.InfoContext(ctx, "sdk version published",
		"version_id", v.ID.String(),
		"version", v.Version,
		"platform", string(v.Platform),
		"request_id", requestcontext.RequestID(ctx),
	)
	return v, nil
}

// ListPublished returns published versions newest first, optionally for one platform.
func (s *Service) ListPublished(ctx context.Context, platform *models.Platform) ([]*models.Version, error) {
	versions, err := s.store.ListVersions(ctx, store.VersionFilter{Platform: platform, PublishedOnly: true})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to list sdk versions")
	}
	return versions, nil
}

// GetVersion returns a published version. Unknown and unpublished versions
// are both reported as not found.
func (s *Service) GetVersion(ctx context.Context, versionID id.VersionID) (*models.Version, error) {
	v, err := s.store.FindVersion(ctx, versionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "sdk version not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to load sdk version")
	}
	if !v.Published {
		return nil, dErrors.New(dErrors.CodeNotFound, "sdk version not found")
	}
	return v, nil
}

// RecordDownload logs a fetch of a published version.
func (s *Service) RecordDownload(ctx context.Context, versionID id.VersionID, in DownloadInput) (*models.Download, error) {
	v, err := s.GetVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}

	d := &models.Download{
		ID:        id.DownloadID(uuid.New()),
		VersionID: versionID,
		UserID:    in.UserID,
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.RecordDownload(ctx, d); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "sdk version not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to record download")
	}
	if s.metrics != nil {
		s.metrics.IncrementDownloads(string(v.Platform))
	}
	return d, nil
}

// ListDownloads pages through downloads in rng, newest first.
func (s *Service) ListDownloads(ctx context.Context, rng models.DateRange, page, limit int) (*DownloadPage, error) {
	if page < 1 {
		return nil, dErrors.New(dErrors.CodeValidation, "page must be at least 1")
	}
	if limit < 1 || limit > maxPageLimit {
		return nil, dErrors.New(dErrors.CodeValidation, "limit must be between 1 and 100")
	}
	if err := validateRange(rng); err != nil {
		return nil, err
	}

	result := &DownloadPage{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		result.Downloads, err = s.store.ListDownloads(gctx, rng, limit, (page-1)*limit)
		return err
	})
	g.Go(func() error {
		var err error
		result.Total, err = s.store.CountDownloads(gctx, rng)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to list downloads")
	}
	if result.Total > 0 {
		result.Pages = (result.Total + limit - 1) / limit
	}
	return result, nil
}

// Analytics aggregates downloads in rng. Results are served from the cache
// when one is configured; cache failures fall back to the store.
func (s *Service) Analytics(ctx context.Context, rng models.DateRange) (*models.Analytics, error) {
	if err := validateRange(rng); err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, rng)
		switch {
		case err == nil:
			s.recordCache("hit")
			return cached, nil
		case errors.Is(err, cache.ErrMiss):
			s.recordCache("miss")
		default:
			s.recordCache("error")
			s.logger.WarnContext(ctx, "analytics cache read failed", "error", err)
		}
	}

	start := time.Now()
	a := &models.Analytics{From: rng.From, To: rng.To}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a.TotalDownloads, err = s.store.CountDownloads(gctx, rng)
		return err
	})
	g.Go(func() error {
		var err error
		a.UniqueUsers, err = s.store.CountUniqueDownloaders(gctx, rng)
		return err
	})
	g.Go(func() error {
		var err error
		a.ByVersion, err = s.store.DownloadsByVersion(gctx, rng)
		return err
	})
	g.Go(func() error {
		var err error
		a.ByDay, err = s.store.DownloadsByDay(gctx, rng)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to compute download analytics")
	}
	if s.metrics != nil {
		s.metrics.ObserveAnalyticsLatency(time.Since(start).Seconds())
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, rng, a); err != nil {
			s.logger.WarnContext(ctx, "analytics cache write failed", "error", err)
		}
	}
	return a, nil
}

func (s *Service) recordCache(result string) {
	if s.metrics != nil {
		s.metrics.RecordCacheResult(result)
	}
}

func validateRange(rng models.DateRange) error {
	if rng.From.After(rng.To) {
		return dErrors.New(dErrors.CodeValidation, "from must not be after to")
	}
	return nil
}
