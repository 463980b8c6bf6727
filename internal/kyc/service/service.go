package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"paam/internal/kyc/metrics"
	"paam/internal/kyc/models"
	id "paam/pkg/domain"
	dErrors "paam/pkg/domain-errors"
	"paam/pkg/platform/device"
	"paam/pkg/platform/outbox"
	"paam/pkg/platform/sentinel"
	"paam/pkg/platform/tracer"
	txcontext "paam/pkg/platform/tx"
	"paam/pkg/requestcontext"
)

// Store persists KYC profiles and their children.
// Error Contract:
// - Find*, ListAudit, UpdateStatus, DeleteProfile return sentinel.ErrNotFound for unknown profiles
// - InsertProfile returns sentinel.ErrNotFound when the customer row is missing (FK)
// - Other failures are wrapped infrastructure errors
type Store interface {
	InsertProfile(ctx context.Context, p *models.Profile) error
	AppendAudit(ctx context.Context, e *models.AuditEntry) error
	FindProfile(ctx context.Context, profileID id.ProfileID) (*models.Profile, error)
	FindProfileForUpdate(ctx context.Context, profileID id.ProfileID) (*models.Profile, error)
	ListAudit(ctx context.Context, profileID id.ProfileID) ([]*models.AuditEntry, error)
	ListProfiles(ctx context.Context, filter models.Filter, page models.Page) ([]*models.Profile, error)
	CountProfiles(ctx context.Context, filter models.Filter) (int, error)
	CountByStatus(ctx context.Context, filter models.Filter) (map[models.Status]int, error)
	UpdateStatus(ctx context.Context, profileID id.ProfileID, status models.Status, updatedAt time.Time) error
	DeleteProfile(ctx context.Context, profileID id.ProfileID) error
}

// CustomerDirectory resolves customer summaries. Unknown ids are absent from
// the returned map.
type CustomerDirectory interface {
	Summaries(ctx context.Context, ids []id.CustomerID) (map[id.CustomerID]models.CustomerSummary, error)
}

const reasonProfileCreated = "profile created"

// Service runs the KYC profile lifecycle.
type Service struct {
	store     Store
	tx        txcontext.Runner
	customers CustomerDirectory
	outbox    outbox.Appender
	policy    models.TransitionPolicy
	tracer    tracer.Tracer
	metrics   *metrics.Metrics
	logger    *slog.Logger
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

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithOutbox records profile events in the same transaction as the change.
func WithOutbox(a outbox.Appender) Option {
	return func(s *Service) {
		s.outbox = a
	}
}

// WithTransitionPolicy replaces the default PermissiveTransitions.
func WithTransitionPolicy(p models.TransitionPolicy) Option {
	return func(s *Service) {
		if p != nil {
			s.policy = p
		}
	}
}

func New(store Store, tx txcontext.Runner, customers CustomerDirectory, opts ...Option) *Service {
	svc := &Service{
		store:     store,
		tx:        tx,
		customers: customers,
		policy:    models.PermissiveTransitions,
		tracer:    tracer.NewNoop(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// CreateProfile opens a profile with its documents and checks in one
// transaction. The initial status is derived from the check outcomes.
func (s *Service) CreateProfile(ctx context.Context, in models.CreateProfileInput) (profile *models.Profile, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanKYCCreate, tracer.String(tracer.AttrCustomerID, in.CustomerID.String()))
	defer func() { span.End(err) }()
	defer s.observeFailure("create", &err)

	if err := in.Validate(); err != nil {
		return nil, err
	}

	summaries, err := s.customers.Summaries(ctx, []id.CustomerID{in.CustomerID})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to resolve customer")
	}
	summary, ok := summaries[in.CustomerID]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "customer %s not found", in.CustomerID)
	}

	now := requestcontext.Now(ctx)
	profile = buildProfile(in, now)
	actor := s.resolveActor(ctx, in.Actor)

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.InsertProfile(ctx, profile); err != nil {
			return err
		}
		entry := newAuditEntry(profile.ID, nil, profile.Status, reasonProfileCreated, actor, now)
		if err := s.store.AppendAudit(ctx, entry); err != nil {
			return err
		}
		profile.AuditTrail = []*models.AuditEntry{entry}
		return s.appendEvent(ctx, models.EventProfileCreated, profile, nil, reasonProfileCreated, actor, now)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "customer %s not found", in.CustomerID)
		}
		return nil, s.persistenceError(err, "failed to create profile")
	}

	profile.Customer = &summary
	span.SetAttributes(tracer.String(tracer.AttrProfileID, profile.ID.String()), tracer.String(tracer.AttrStatus, profile.Status.String()))
	if s.metrics != nil {
		s.metrics.IncrementProfilesCreated(profile.Status.String())
	}
	s.logger.InfoContext(ctx, "kyc profile created",
		"profile_id", profile.ID,
		"customer_id", profile.CustomerID,
		"status", profile.Status,
		"actor", actor.UserID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return profile, nil
}

// GetProfile returns the profile with its customer summary, documents,
// checks (newest first) and audit trail.
func (s *Service) GetProfile(ctx context.Context, profileID id.ProfileID) (profile *models.Profile, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanKYCGet, tracer.String(tracer.AttrProfileID, profileID.String()))
	defer func() { span.End(err) }()
	defer s.observeFailure("get", &err)

	return s.loadProfile(ctx, profileID)
}

// ListProfiles returns one page plus the total and per-status counts of the
// filtered set. The three queries run concurrently.
func (s *Service) ListProfiles(ctx context.Context, filter models.Filter, page models.Page) (result *models.ListResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanKYCList, tracer.Int(tracer.AttrPage, page.Page), tracer.Int(tracer.AttrLimit, page.Limit))
	defer func() { span.End(err) }()
	defer s.observeFailure("list", &err)

	if page.Page < 1 {
		return nil, dErrors.New(dErrors.CodeValidation, "page must be at least 1")
	}
	if page.Limit < 1 || page.Limit > models.MaxPageLimit {
		return nil, dErrors.Newf(dErrors.CodeValidation, "limit must be between 1 and %d", models.MaxPageLimit)
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "invalid status: %s", *filter.Status)
	}

	start := time.Now()
	var (
		profiles []*models.Profile
		total    int
		counts   map[models.Status]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profiles, err = s.store.ListProfiles(gctx, filter, page)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.CountProfiles(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = s.store.CountByStatus(gctx, filter.WithoutStatus())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.persistenceError(err, "failed to list profiles")
	}

	if err := s.attachCustomers(ctx, profiles); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveListLatency(time.Since(start).Seconds())
	}
	span.SetAttributes(tracer.Int(tracer.AttrResultCount, len(profiles)))

	return &models.ListResult{
		Profiles:     profiles,
		Total:        total,
		Pages:        models.PageCount(total, page.Limit),
		StatusCounts: counts,
	}, nil
}

// UpdateStatus moves a profile to a new status and appends an audit entry.
// The read, policy check, write and audit append share one transaction with
// the profile row locked, so the trail order matches the final state.
func (s *Service) UpdateStatus(ctx context.Context, in models.UpdateStatusInput) (profile *models.Profile, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanKYCUpdateStatus,
		tracer.String(tracer.AttrProfileID, in.ProfileID.String()),
		tracer.String(tracer.AttrStatus, in.Status.String()),
	)
	defer func() { span.End(err) }()
	defer s.observeFailure("update_status", &err)

	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	actor := s.resolveActor(ctx, in.Actor)
	var previous models.Status

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.store.FindProfileForUpdate(ctx, in.ProfileID)
		if err != nil {
			return err
		}
		previous = current.Status
		if err := s.policy(previous, in.Status); err != nil {
			return err
		}
		if err := s.store.UpdateStatus(ctx, in.ProfileID, in.Status, now); err != nil {
			return err
		}
		if err := s.store.AppendAudit(ctx, newAuditEntry(in.ProfileID, &previous, in.Status, in.Reason, actor, now)); err != nil {
			return err
		}
		current.Status = in.Status
		return s.appendEvent(ctx, models.EventStatusChanged, current, &previous, in.Reason, actor, now)
	})
	if err != nil {
		return nil, s.translate(err, in.ProfileID, "failed to update profile status")
	}

	span.SetAttributes(tracer.String(tracer.AttrFromStatus, previous.String()))
	if s.metrics != nil {
		s.metrics.IncrementStatusTransition(previous.String(), in.Status.String())
	}
	s.logger.InfoContext(ctx, "kyc status changed",
		"profile_id", in.ProfileID,
		"from", previous,
		"to", in.Status,
		"actor", actor.UserID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return s.loadProfile(ctx, in.ProfileID)
}

// DeleteProfile removes the profile with its documents, checks and audit
// trail. The outbox deletion event is the only record that remains.
func (s *Service) DeleteProfile(ctx context.Context, profileID id.ProfileID, actor models.Actor) (err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanKYCDelete, tracer.String(tracer.AttrProfileID, profileID.String()))
	defer func() { span.End(err) }()
	defer s.observeFailure("delete", &err)

	now := requestcontext.Now(ctx)
	actor = s.resolveActor(ctx, actor)

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.store.FindProfileForUpdate(ctx, profileID)
		if err != nil {
			return err
		}
		if err := s.store.DeleteProfile(ctx, profileID); err != nil {
			return err
		}
		previous := current.Status
		return s.appendEvent(ctx, models.EventProfileDeleted, current, &previous, "", actor, now)
	})
	if err != nil {
		return s.translate(err, profileID, "failed to delete profile")
	}

	if s.metrics != nil {
		s.metrics.IncrementProfilesDeleted()
	}
	s.logger.InfoContext(ctx, "kyc profile deleted",
		"profile_id", profileID,
		"actor", actor.UserID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// GetAuditTrail returns the status history of a profile, oldest first.
func (s *Service) GetAuditTrail(ctx context.Context, profileID id.ProfileID) (entries []*models.AuditEntry, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanKYCAuditTrail, tracer.String(tracer.AttrProfileID, profileID.String()))
	defer func() { span.End(err) }()
	defer s.observeFailure("audit_trail", &err)

	entries, err = s.store.ListAudit(ctx, profileID)
	if err != nil {
		return nil, s.translate(err, profileID, "failed to load audit trail")
	}
	return entries, nil
}

func (s *Service) loadProfile(ctx context.Context, profileID id.ProfileID) (*models.Profile, error) {
	profile, err := s.store.FindProfile(ctx, profileID)
	if err != nil {
		return nil, s.translate(err, profileID, "failed to load profile")
	}
	trail, err := s.store.ListAudit(ctx, profileID)
	if err != nil {
		return nil, s.translate(err, profileID, "failed to load audit trail")
	}
	profile.AuditTrail = trail
	if err := s.attachCustomers(ctx, []*models.Profile{profile}); err != nil {
		return nil, err
	}
	return profile, nil
}

// attachCustomers resolves customer summaries for a batch of profiles in one call.
func (s *Service) attachCustomers(ctx context.Context, profiles []*models.Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	seen := make(map[id.CustomerID]struct{}, len(profiles))
	ids := make([]id.CustomerID, 0, len(profiles))
	for _, p := range profiles {
		if _, ok := seen[p.CustomerID]; !ok {
			seen[p.CustomerID] = struct{}{}
			ids = append(ids, p.CustomerID)
		}
	}
	summaries, err := s.customers.Summaries(ctx, ids)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodePersistence, "failed to resolve customers")
	}
	for _, p := range profiles {
		if summary, ok := summaries[p.CustomerID]; ok {
			p.Customer = &summary
		}
	}
	return nil
}

func (s *Service) appendEvent(ctx context.Context, eventType string, p *models.Profile, previous *models.Status, reason string, actor models.Actor, now time.Time) error {
	if s.outbox == nil {
		return nil
	}
	event := models.Event{
		Type:           eventType,
		ProfileID:      p.ID.String(),
		CustomerID:     p.CustomerID.String(),
		PreviousStatus: previous,
		NewStatus:      p.Status,
		Reason:         reason,
		ActorID:        actor.UserID,
		RequestID:      requestcontext.RequestID(ctx),
		OccurredAt:     now,
	}
	if eventType == models.EventProfileDeleted {
		event.NewStatus = ""
	}
	entry, err := outbox.NewEntry(models.AggregateProfile, p.ID.String(), eventType, event, now)
	if err != nil {
		return err
	}
	return s.outbox.Append(ctx, entry)
}

// resolveActor fills fields the caller left empty from the session and
// request metadata.
func (s *Service) resolveActor(ctx context.Context, actor models.Actor) models.Actor {
	if actor.UserID == "" {
		if userID := requestcontext.UserID(ctx); !userID.IsNil() {
			actor.UserID = userID.String()
		}
	}
	if actor.IPAddress == "" {
		actor.IPAddress = requestcontext.ClientIP(ctx)
	}
	if actor.UserAgent == "" {
		actor.UserAgent = requestcontext.UserAgent(ctx)
	}
	return actor
}

func (s *Service) translate(err error, profileID id.ProfileID, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Newf(dErrors.CodeNotFound, "profile %s not found", profileID)
	}
	return s.persistenceError(err, msg)
}

// persistenceError keeps domain errors raised inside a transaction and wraps
// everything else as a persistence failure.
func (s *Service) persistenceError(err error, msg string) error {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodePersistence, msg)
}

func (s *Service) observeFailure(operation string, errp *error) {
	if *errp == nil || s.metrics == nil {
		return
	}
	s.metrics.IncrementFailure(operation, string(dErrors.CodeOf(*errp)))
}

func buildProfile(in models.CreateProfileInput, now time.Time) *models.Profile {
	profileID := id.ProfileID(uuid.New())
	profile := &models.Profile{
		ID:          profileID,
		CustomerID:  in.CustomerID,
		ProfileType: in.ProfileType,
		Status:      models.DeriveInitialStatus(in.CheckStatuses()),
		Documents:   make([]*models.Document, 0, len(in.Documents)),
		Checks:      make([]*models.Check, 0, len(in.Checks)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, d := range in.Documents {
		profile.Documents = append(profile.Documents, &models.Document{
			ID:        id.DocumentID(uuid.New()),
			ProfileID: profileID,
			Type:      d.Type,
			Status:    d.Status,
			FileURL:   d.FileURL,
			CreatedAt: now,
		})
	}
	// Stored in submission order; returned newest first, so the last supplied
	// check leads.
	for _, c := range in.Checks {
		score := decimal.Zero
		if c.RiskScore != nil {
			score = *c.RiskScore
		}
		profile.Checks = append(profile.Checks, &models.Check{
			ID:        id.CheckID(uuid.New()),
			ProfileID: profileID,
			Type:      c.Type,
			Status:    c.Status,
			RiskScore: score,
			CreatedAt: now,
		})
	}
	return profile
}

func newAuditEntry(profileID id.ProfileID, previous *models.Status, next models.Status, reason string, actor models.Actor, now time.Time) *models.AuditEntry {
	return &models.AuditEntry{
		ID:             id.AuditEntryID(uuid.New()),
		ProfileID:      profileID,
		PreviousStatus: previous,
		NewStatus:      next,
		Reason:         reason,
		ActorID:        actor.UserID,
		IPAddress:      actor.IPAddress,
		UserAgent:      actor.UserAgent,
		Device:         device.Label(actor.UserAgent),
		CreatedAt:      now,
	}
}
