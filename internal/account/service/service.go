package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"paam/internal/account/metrics"
	"paam/internal/account/models"
	id "paam/pkg/domain"
	dErrors "paam/pkg/domain-errors"
	"paam/pkg/platform/sentinel"
	"paam/pkg/requestcontext"
	"paam/pkg/secrets"
)

// Store persists users and API keys.
// Error Contract:
// - Find* and Revoke/Touch return sentinel.ErrNotFound for unknown rows
// - CreateUser returns sentinel.ErrConflict for a taken email and sentinel.ErrNotFound for an unknown organization
// - CreateAPIKey returns sentinel.ErrNotFound for an unknown user and sentinel.ErrConflict for a taken prefix
type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUser(ctx context.Context, userID id.UserID) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	CountUsers(ctx context.Context) (int, error)
	CreateAPIKey(ctx context.Context, k *models.APIKey) error
	FindAPIKey(ctx context.Context, keyID id.APIKeyID) (*models.APIKey, error)
	FindAPIKeyByPrefix(ctx context.Context, prefix string) (*models.APIKey, error)
	ListAPIKeys(ctx context.Context, limit, offset int) ([]*models.APIKey, error)
	CountAPIKeys(ctx context.Context) (int, error)
	RevokeAPIKey(ctx context.Context, keyID id.APIKeyID, at time.Time) error
	TouchAPIKey(ctx context.Context, keyID id.APIKeyID, at time.Time) error
}

const (
	maxPageLimit     = 100
	maxKeyNameLength = 100
	prefixAttempts   = 3
)

var errInvalidKey = dErrors.New(dErrors.CodeUnauthorized, "invalid api key")

type UserPage struct {
	Users []*models.User
	Total int
	Pages int
}

type KeyPage struct {
	Keys  []*models.APIKey
	Total int
	Pages int
}

// Service manages dashboard users and their API keys.
type Service struct {
	store   Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Service)

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

func (s *Service) CreateUser(ctx context.Context, in models.UserInput) (*models.User, error) {
	u, err := models.NewUser(id.UserID(uuid.New()), in, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrConflict):
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "organization not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to create user")
	}
	s.logger.InfoContext(ctx, "user created",
		"user_id", u.ID.String(),
		"role", string(u.Role),
		"request_id", requestcontext.RequestID(ctx),
	)
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	u, err := s.store.FindUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to load user")
	}
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context, page, limit int) (*UserPage, error) {
	if err := validatePage(page, limit); err != nil {
		return nil, err
	}
	var (
		users []*models.User
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.store.ListUsers(gctx, limit, (page-1)*limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.CountUsers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to list users")
	}
	return &UserPage{Users: users, Total: total, Pages: pages(total, limit)}, nil
}

// ListAPIKeys pages through the keys of every user. Hashes stay on the model;
// callers must not render them.
func (s *Service) ListAPIKeys(ctx context.Context, page, limit int) (*KeyPage, error) {
	if err := validatePage(page, limit); err != nil {
		return nil, err
	}
	var (
		keys  []*models.APIKey
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		keys, err = s.store.ListAPIKeys(gctx, limit, (page-1)*limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.CountAPIKeys(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to list api keys")
	}
	return &KeyPage{Keys: keys, Total: total, Pages: pages(total, limit)}, nil
}

// IssueAPIKey creates a key for userID. The plaintext is returned once and
// only its bcrypt hash is stored.
func (s *Service) IssueAPIKey(ctx context.Context, userID id.UserID, name string) (*models.IssuedKey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(name) > maxKeyNameLength {
		return nil, dErrors.New(dErrors.CodeValidation, "name must be at most 100 characters")
	}

	secret, err := secrets.Generate()
	if err != nil {
		return nil, err
	}
	hash, err := secrets.Hash(secret)
	if err != nil {
		return nil, err
	}

	for range prefixAttempts {
		prefix, err := secrets.GeneratePrefix()
		if err != nil {
			return nil, err
		}
		k := &models.APIKey{
			ID:        id.APIKeyID(uuid.New()),
			UserID:    userID,
			Name:      name,
			Prefix:    prefix,
			Hash:      hash,
			CreatedAt: requestcontext.Now(ctx),
		}
		err = s.store.CreateAPIKey(ctx, k)
		switch {
		case err == nil:
			if s.metrics != nil {
				s.metrics.IncrementKeysIssued()
			}
			s.logger.InfoContext(ctx, "api key issued",
				"user_id", userID.String(),
				"key_id", k.ID.String(),
				"prefix", prefix,
				"request_id", requestcontext.RequestID(ctx),
			)
			return &models.IssuedKey{APIKey: *k, Plaintext: models.FormatKey(prefix, secret)}, nil
		case errors.Is(err, sentinel.ErrConflict):
			continue
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to store api key")
		}
	}
	return nil, dErrors.New(dErrors.CodeInternal, "could not allocate a unique api key prefix")
}

// RevokeAPIKey revokes one of userID's keys. Keys of other users are
// reported as not found. Revoking twice keeps the first timestamp.
func (s *Service) RevokeAPIKey(ctx context.Context, userID id.UserID, keyID id.APIKeyID) (*models.APIKey, error) {
	k, err := s.store.FindAPIKey(ctx, keyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "api key not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to load api key")
	}
	if k.UserID != userID {
		return nil, dErrors.New(dErrors.CodeNotFound, "api key not found")
	}
	if k.IsRevoked() {
		return k, nil
	}

	now := requestcontext.Now(ctx)
	if err := s.store.RevokeAPIKey(ctx, keyID, now); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "api key not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to revoke api key")
	}
	k.RevokedAt = &now
	if s.metrics != nil {
		s.metrics.IncrementKeysRevoked()
	}
	s.logger.InfoContext(ctx, "api key revoked",
		"user_id", userID.String(),
		"key_id", keyID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return k, nil
}

// Authenticate resolves a plaintext key to its owner. Every failure yields
// the same unauthorized error.
func (s *Service) Authenticate(ctx context.Context, raw string) (*models.User, error) {
	prefix, secret, err := models.ParseKey(raw)
	if err != nil {
		s.recordAuth("malformed")
		return nil, errInvalidKey
	}
	k, err := s.store.FindAPIKeyByPrefix(ctx, prefix)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.recordAuth("unknown")
			return nil, errInvalidKey
		}
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to load api key")
	}
	if k.IsRevoked() {
		s.recordAuth("revoked")
		return nil, errInvalidKey
	}
	if err := secrets.Verify(secret, k.Hash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			s.recordAuth("mismatch")
			return nil, errInvalidKey
		}
		return nil, err
	}

	u, err := s.store.FindUser(ctx, k.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.recordAuth("unknown")
			return nil, errInvalidKey
		}
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to load api key owner")
	}
	if err := s.store.TouchAPIKey(ctx, k.ID, requestcontext.Now(ctx)); err != nil {
		s.logger.WarnContext(ctx, "failed to record api key use",
			"key_id", k.ID.String(),
			"error", err,
		)
	}
	s.recordAuth("success")
	return u, nil
}

func (s *Service) recordAuth(result string) {
	if s.metrics != nil {
		s.metrics.IncrementAuthentication(result)
	}
}

func validatePage(page, limit int) error {
	if page < 1 {
		return dErrors.New(dErrors.CodeValidation, "page must be at least 1")
	}
	if limit < 1 || limit > maxPageLimit {
		return dErrors.New(dErrors.CodeValidation, "limit must be between 1 and 100")
	}
	return nil
}

func pages(total, limit int) int {
	return (total + limit - 1) / limit
}
