package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"paam/internal/customer/metrics"
	"paam/internal/customer/models"
	id "paam/pkg/domain"
	dErrors "paam/pkg/domain-errors"
	"paam/pkg/platform/sentinel"
	"paam/pkg/requestcontext"
)

// Store persists customers.
// Error Contract:
// - FindByID and UpdateRiskLevel return sentinel.ErrNotFound for unknown customers
// - Create returns sentinel.ErrConflict when the id or email is taken
// - FindByIDs omits unknown ids without error
type Store interface {
	Create(ctx context.Context, c *models.Customer) error
	FindByID(ctx context.Context, customerID id.CustomerID) (*models.Customer, error)
	FindByIDs(ctx context.Context, ids []id.CustomerID) ([]*models.Customer, error)
	List(ctx context.Context, filter models.Filter, limit, offset int) ([]*models.Customer, error)
	Count(ctx context.Context, filter models.Filter) (int, error)
	UpdateRiskLevel(ctx context.Context, customerID id.CustomerID, level models.RiskLevel, updatedAt time.Time) error
}

const maxPageLimit = 100

// ListResult is one page of customers and the filtered total.
type ListResult struct {
	Customers []*models.Customer
	Total     int
	Pages     int
}

// Service manages the customer registry.
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

func (s *Service) Create(ctx context.Context, in models.CreateInput) (*models.Customer, error) {
	c, err := models.NewCustomer(in, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "customer id or email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to create customer")
	}

	if s.metrics != nil {
		s.metrics.IncrementCustomersCreated(string(c.RiskLevel))
	}
	s.logger.InfoContext(ctx, "customer created",
		"customer_id", c.ID.String(),
		"risk_level", string(c.RiskLevel),
		"request_id", requestcontext.RequestID(ctx),
	)
	return c, nil
}

func (s *Service) Get(ctx context.Context, customerID id.CustomerID) (*models.Customer, error) {
	c, err := s.store.FindByID(ctx, customerID)
	if err != nil {
		return nil, translate(err, customerID)
	}
	return c, nil
}

// Lookup returns the customers that exist among ids.
func (s *Service) Lookup(ctx context.Context, ids []id.CustomerID) ([]*models.Customer, error) {
	if len(ids) == 0 {
		return []*models.Customer{}, nil
	}
	out, err := s.store.FindByIDs(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to look up customers")
	}
	return out, nil
}

// List returns one page of customers, newest first, plus the filtered total.
func (s *Service) List(ctx context.Context, filter models.Filter, page, limit int) (*ListResult, error) {
	if page < 1 {
		return nil, dErrors.New(dErrors.CodeValidation, "page must be at least 1")
	}
	if limit < 1 || limit > maxPageLimit {
		return nil, dErrors.New(dErrors.CodeValidation, "limit must be between 1 and 100")
	}

	var (
		customers []*models.Customer
		total     int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customers, err = s.store.List(gctx, filter, limit, (page-1)*limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to list customers")
	}

	pages := 0
	if total > 0 {
		pages = (total + limit - 1) / limit
	}
	return &ListResult{Customers: customers, Total: total, Pages: pages}, nil
}

func (s *Service) UpdateRiskLevel(ctx context.Context, customerID id.CustomerID, level models.RiskLevel) (*models.Customer, error) {
	if !level.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "riskLevel must be one of LOW, MEDIUM, HIGH")
	}
	current, err := s.store.FindByID(ctx, customerID)
	if err != nil {
		return nil, translate(err, customerID)
	}
	if current.RiskLevel == level {
		return current, nil
	}

	now := requestcontext.Now(ctx)
	if err := s.store.UpdateRiskLevel(ctx, customerID, level, now); err != nil {
		return nil, translate(err, customerID)
	}
	if s.metrics != nil {
		s.metrics.IncrementRiskLevelChange(string(current.RiskLevel), string(level))
	}
	s.logger.InfoContext(ctx, "customer risk level changed",
		"customer_id", customerID.String(),
		"from", string(current.RiskLevel),
		"to", string(level),
		"request_id", requestcontext.RequestID(ctx),
	)

	current.RiskLevel = level
	current.UpdatedAt = now
	return current, nil
}

func translate(err error, customerID id.CustomerID) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "customer "+customerID.String()+" not found")
	}
	return dErrors.Wrap(err, dErrors.CodePersistence, "customer store failure")
}
