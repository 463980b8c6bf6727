package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"paam/internal/kyc/models"
	"paam/internal/kyc/store"
	id "paam/pkg/domain"
	dErrors "paam/pkg/domain-errors"
	"paam/pkg/platform/outbox"
	outboxstore "paam/pkg/platform/outbox/store"
	"paam/pkg/requestcontext"
)

type staticCustomers map[id.CustomerID]models.CustomerSummary

func (c staticCustomers) Summaries(_ context.Context, ids []id.CustomerID) (map[id.CustomerID]models.CustomerSummary, error) {
	out := make(map[id.CustomerID]models.CustomerSummary, len(ids))
	for _, customerID := range ids {
		if summary, ok := c[customerID]; ok {
			out[customerID] = summary
		}
	}
	return out, nil
}

type failingOutbox struct{}

func (failingOutbox) Append(context.Context, *outbox.Entry) error {
	return errors.New("outbox unavailable")
}

// ServiceSuite runs the service against the in-memory store.
type ServiceSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	outbox  *outboxstore.InMemory
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.outbox = outboxstore.NewInMemory()
	s.service = s.newService()
	s.ctx = context.Background()
}

func (s *ServiceSuite) newService(opts ...Option) *Service {
	customers := staticCustomers{
		"CUST-001": {ID: "CUST-001", Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace", RiskLevel: "LOW", Status: "ACTIVE"},
		"CUST-002": {ID: "CUST-002", Email: "alan@example.com", FirstName: "Alan", LastName: "Turing", RiskLevel: "MEDIUM", Status: "ACTIVE"},
	}
	base := []Option{
		WithOutbox(s.outbox),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return New(s.store, s.store, customers, append(base, opts...)...)
}

func (s *ServiceSuite) create(customer string, checks ...models.CheckStatus) *models.Profile {
	in := models.CreateProfileInput{
		CustomerID:  id.CustomerID(customer),
		ProfileType: models.ProfileIndividual,
		Documents:   []models.DocumentInput{{Type: models.DocumentPassport, Status: models.CheckPassed}},
		Actor:       models.Actor{UserID: "user-1", IPAddress: "203.0.113.7", UserAgent: "curl/8.0"},
	}
	for i, st := range checks {
		in.Checks = append(in.Checks, models.CheckInput{Type: "check_" + string(rune('a'+i)), Status: st})
	}
	p, err := s.service.CreateProfile(s.ctx, in)
	s.Require().NoError(err)
	return p
}

func (s *ServiceSuite) TestInitialStatusDerivation() {
	tests := []struct {
		name   string
		checks []models.CheckStatus
		want   models.Status
	}{
		{"all passed", []models.CheckStatus{models.CheckPassed, models.CheckPassed}, models.StatusApproved},
		{"one failed", []models.CheckStatus{models.CheckPassed, models.CheckFailed}, models.StatusRejected},
		{"failed wins over pending", []models.CheckStatus{models.CheckPending, models.CheckFailed}, models.StatusRejected},
		{"mixed pending", []models.CheckStatus{models.CheckPassed, models.CheckPending}, models.StatusPending},
		{"defaulted pending", []models.CheckStatus{""}, models.StatusPending},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			p := s.create("CUST-001", tt.checks...)
			assert.Equal(s.T(), tt.want, p.Status)
		})
	}
}

func (s *ServiceSuite) TestSanctionsAndDocumentScenario() {
	approved, err := s.service.CreateProfile(s.ctx, models.CreateProfileInput{
		CustomerID:  "CUST-001",
		ProfileType: models.ProfileIndividual,
		Documents:   []models.DocumentInput{{Type: models.DocumentPassport}},
		Checks:      []models.CheckInput{{Type: "sanctions_screening", Status: models.CheckPassed}},
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StatusApproved, approved.Status)

	rejected, err := s.service.CreateProfile(s.ctx, models.CreateProfileInput{
		CustomerID:  "CUST-001",
		ProfileType: models.ProfileIndividual,
		Documents:   []models.DocumentInput{{Type: models.DocumentIDCard}},
		Checks:      []models.CheckInput{{Type: "document_verification", Status: models.CheckFailed}},
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StatusRejected, rejected.Status)

	updated, err := s.service.UpdateStatus(s.ctx, models.UpdateStatusInput{
		ProfileID: approved.ID,
		Status:    models.StatusUnderReview,
		Reason:    "manual review requested",
		Actor:     models.Actor{UserID: "user-1"},
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StatusUnderReview, updated.Status)
	require.Len(s.T(), updated.AuditTrail, 2)
	require.NotNil(s.T(), updated.AuditTrail[1].PreviousStatus)
	assert.Equal(s.T(), models.StatusApproved, *updated.AuditTrail[1].PreviousStatus)
	assert.Equal(s.T(), "manual review requested", updated.AuditTrail[1].Reason)
	assert.Equal(s.T(), "user-1", updated.AuditTrail[1].ActorID)
}

func (s *ServiceSuite) TestCreateRecordsAuditEntryAndEvent() {
	p := s.create("CUST-001", models.CheckPassed)

	require.Len(s.T(), p.AuditTrail, 1)
	entry := p.AuditTrail[0]
	assert.Nil(s.T(), entry.PreviousStatus)
	assert.Equal(s.T(), models.StatusApproved, entry.NewStatus)
	assert.Equal(s.T(), "profile created", entry.Reason)
	assert.Equal(s.T(), "user-1", entry.ActorID)
	assert.Equal(s.T(), "203.0.113.7", entry.IPAddress)
	assert.Equal(s.T(), "curl/8.0", entry.UserAgent)
	assert.NotEmpty(s.T(), entry.Device)

	require.NotNil(s.T(), p.Customer)
	assert.Equal(s.T(), "ada@example.com", p.Customer.Email)

	entries := s.outbox.Entries()
	require.Len(s.T(), entries, 1)
	assert.Equal(s.T(), models.EventProfileCreated, entries[0].EventType)
	assert.Equal(s.T(), p.ID.String(), entries[0].AggregateID)
	var event models.Event
	require.NoError(s.T(), json.Unmarshal(entries[0].Payload, &event))
	assert.Equal(s.T(), "CUST-001", event.CustomerID)
	assert.Equal(s.T(), models.StatusApproved, event.NewStatus)
}

func (s *ServiceSuite) TestActorFallsBackToRequestContext() {
	userID := id.UserID(uuid.New())
	ctx := requestcontext.WithUserID(s.ctx, userID)
	ctx = requestcontext.WithClientMetadata(ctx, "198.51.100.4", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")

	p, err := s.service.CreateProfile(ctx, models.CreateProfileInput{
		CustomerID:  "CUST-002",
		ProfileType: models.ProfileBusiness,
		Documents:   []models.DocumentInput{{Type: models.DocumentBusinessRegistration}},
		Checks:      []models.CheckInput{{Type: "pep_screening"}},
	})
	require.NoError(s.T(), err)

	entry := p.AuditTrail[0]
	assert.Equal(s.T(), userID.String(), entry.ActorID)
	assert.Equal(s.T(), "198.51.100.4", entry.IPAddress)
	assert.Contains(s.T(), entry.Device, "Chrome")
}

func (s *ServiceSuite) TestRoundTripDocumentsAndChecks() {
	score := decimal.RequireFromString("0.35")
	p, err := s.service.CreateProfile(s.ctx, models.CreateProfileInput{
		CustomerID:  "CUST-001",
		ProfileType: models.ProfileIndividual,
		Documents: []models.DocumentInput{
			{Type: models.DocumentPassport, Status: models.CheckPassed, FileURL: "https://files.example.com/1"},
			{Type: models.DocumentUtilityBill},
			{Type: models.DocumentSelfie, Status: models.CheckFailed},
		},
		Checks: []models.CheckInput{
			{Type: "document_verification", Status: models.CheckPassed, RiskScore: &score},
			{Type: "facial_recognition", Status: models.CheckPending},
		},
	})
	require.NoError(s.T(), err)

	fetched, err := s.service.GetProfile(s.ctx, p.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), fetched.Documents, 3)
	assert.Equal(s.T(), models.DocumentPassport, fetched.Documents[0].Type)
	assert.Equal(s.T(), models.CheckPending, fetched.Documents[1].Status)
	assert.Equal(s.T(), models.DocumentSelfie, fetched.Documents[2].Type)
	require.Len(s.T(), fetched.Checks, 2)
	assert.Equal(s.T(), "facial_recognition", fetched.Checks[0].Type)
	assert.True(s.T(), score.Equal(fetched.Checks[1].RiskScore))
	assert.True(s.T(), fetched.Checks[0].RiskScore.IsZero())
}

func (s *ServiceSuite) TestGetIsIdempotent() {
	p := s.create("CUST-001", models.CheckPending)

	first, err := s.service.GetProfile(s.ctx, p.ID)
	require.NoError(s.T(), err)
	second, err := s.service.GetProfile(s.ctx, p.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), first, second)
}

func (s *ServiceSuite) TestCreateValidationFailures() {
	base := models.CreateProfileInput{
		CustomerID:  "CUST-001",
		ProfileType: models.ProfileIndividual,
		Documents:   []models.DocumentInput{{Type: models.DocumentPassport}},
		Checks:      []models.CheckInput{{Type: "sanctions_screening"}},
	}
	tooRisky := decimal.RequireFromString("1.5")
	tests := []struct {
		name   string
		mutate func(*models.CreateProfileInput)
	}{
		{"empty documents", func(in *models.CreateProfileInput) { in.Documents = []models.DocumentInput{} }},
		{"empty checks", func(in *models.CreateProfileInput) { in.Checks = nil }},
		{"missing customer", func(in *models.CreateProfileInput) { in.CustomerID = "" }},
		{"missing profile type", func(in *models.CreateProfileInput) { in.ProfileType = "" }},
		{"unknown document type", func(in *models.CreateProfileInput) { in.Documents[0].Type = "TAX_RETURN" }},
		{"risk score above one", func(in *models.CreateProfileInput) { in.Checks[0].RiskScore = &tooRisky }},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			in := base
			in.Documents = append([]models.DocumentInput(nil), base.Documents...)
			in.Checks = append([]models.CheckInput(nil), base.Checks...)
			tt.mutate(&in)
			_, err := s.service.CreateProfile(s.ctx, in)
			assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeValidation), "got %v", err)
		})
	}

	total, err := s.store.CountProfiles(s.ctx, models.Filter{})
	require.NoError(s.T(), err)
	assert.Zero(s.T(), total)
}

func (s *ServiceSuite) TestCreateUnknownCustomer() {
	_, err := s.service.CreateProfile(s.ctx, models.CreateProfileInput{
		CustomerID:  "CUST-404",
		ProfileType: models.ProfileIndividual,
		Documents:   []models.DocumentInput{{Type: models.DocumentPassport}},
		Checks:      []models.CheckInput{{Type: "sanctions_screening"}},
	})
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestCreateIsAtomicWhenOutboxFails() {
	svc := New(s.store, s.store, staticCustomers{"CUST-001": {ID: "CUST-001"}},
		WithOutbox(failingOutbox{}),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	_, err := svc.CreateProfile(s.ctx, models.CreateProfileInput{
		CustomerID:  "CUST-001",
		ProfileType: models.ProfileIndividual,
		Documents:   []models.DocumentInput{{Type: models.DocumentPassport}},
		Checks:      []models.CheckInput{{Type: "sanctions_screening"}},
	})
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodePersistence))

	total, err := s.store.CountProfiles(s.ctx, models.Filter{})
	require.NoError(s.T(), err)
	assert.Zero(s.T(), total, "no orphaned profile")
}

func (s *ServiceSuite) TestListStatusCountsIndependentOfPaging() {
	s.create("CUST-001", models.CheckPassed)
	s.create("CUST-001", models.CheckFailed)
	s.create("CUST-001", models.CheckPending)
	s.create("CUST-002", models.CheckPassed)
	s.create("CUST-002", models.CheckPassed)

	full, err := s.service.ListProfiles(s.ctx, models.Filter{}, models.Page{Page: 1, Limit: 100})
	require.NoError(s.T(), err)
	small, err := s.service.ListProfiles(s.ctx, models.Filter{}, models.Page{Page: 2, Limit: 2})
	require.NoError(s.T(), err)

	assert.Equal(s.T(), full.StatusCounts, small.StatusCounts)
	sum := 0
	for _, n := range full.StatusCounts {
		sum += n
	}
	assert.Equal(s.T(), full.Total, sum)
	assert.Equal(s.T(), 5, small.Total)
	assert.Equal(s.T(), 3, small.Pages)
	assert.Len(s.T(), small.Profiles, 2)
	for _, p := range small.Profiles {
		assert.NotNil(s.T(), p.Customer)
	}
}

func (s *ServiceSuite) TestListFiltersCombine() {
	s.create("CUST-001", models.CheckPassed)
	s.create("CUST-001", models.CheckFailed)
	s.create("CUST-002", models.CheckPassed)

	approved := models.StatusApproved
	customer := id.CustomerID("CUST-001")
	res, err := s.service.ListProfiles(s.ctx, models.Filter{Status: &approved, CustomerID: &customer}, models.Page{Page: 1, Limit: 10})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, res.Total)
	require.Len(s.T(), res.Profiles, 1)
	assert.Equal(s.T(), customer, res.Profiles[0].CustomerID)
	assert.Equal(s.T(), map[models.Status]int{models.StatusApproved: 1, models.StatusRejected: 1}, res.StatusCounts)
}

func (s *ServiceSuite) TestListEmpty() {
	res, err := s.service.ListProfiles(s.ctx, models.Filter{}, models.Page{Page: 1, Limit: 10})
	require.NoError(s.T(), err)
	assert.NotNil(s.T(), res.Profiles)
	assert.Empty(s.T(), res.Profiles)
	assert.Zero(s.T(), res.Total)
	assert.Zero(s.T(), res.Pages)
}

func (s *ServiceSuite) TestEveryUpdateAppendsExactlyOneEntry() {
	p := s.create("CUST-001", models.CheckPending)
	sequence := []models.Status{
		models.StatusUnderReview, models.StatusApproved, models.StatusRevoked,
		models.StatusPending, models.StatusRejected, models.StatusRejected,
	}

	for i, next := range sequence {
		before, err := s.service.GetProfile(s.ctx, p.ID)
		require.NoError(s.T(), err)

		after, err := s.service.UpdateStatus(s.ctx, models.UpdateStatusInput{ProfileID: p.ID, Status: next})
		require.NoError(s.T(), err)

		require.Len(s.T(), after.AuditTrail, len(before.AuditTrail)+1, "step %d", i)
		last := after.AuditTrail[len(after.AuditTrail)-1]
		require.NotNil(s.T(), last.PreviousStatus)
		assert.Equal(s.T(), before.Status, *last.PreviousStatus)
		assert.Equal(s.T(), next, after.Status)
	}
}

func (s *ServiceSuite) TestUpdateStatusTouchesUpdatedAt() {
	created := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	p, err := s.service.CreateProfile(requestcontext.WithTime(s.ctx, created), models.CreateProfileInput{
		CustomerID:  "CUST-001",
		ProfileType: models.ProfileIndividual,
		Documents:   []models.DocumentInput{{Type: models.DocumentPassport}},
		Checks:      []models.CheckInput{{Type: "sanctions_screening"}},
	})
	require.NoError(s.T(), err)

	later := created.Add(time.Hour)
	updated, err := s.service.UpdateStatus(requestcontext.WithTime(s.ctx, later), models.UpdateStatusInput{ProfileID: p.ID, Status: models.StatusApproved})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), later, updated.UpdatedAt)
	assert.Equal(s.T(), created, updated.CreatedAt)
}

func (s *ServiceSuite) TestReviewGraphPolicyRejectsShortcut() {
	svc := s.newService(WithTransitionPolicy(models.ReviewGraphTransitions))
	p := s.create("CUST-001", models.CheckFailed)

	_, err := svc.UpdateStatus(s.ctx, models.UpdateStatusInput{ProfileID: p.ID, Status: models.StatusApproved})
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeValidation))

	trail, err := svc.GetAuditTrail(s.ctx, p.ID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), trail, 1, "refused transition leaves no audit entry")

	_, err = svc.UpdateStatus(s.ctx, models.UpdateStatusInput{ProfileID: p.ID, Status: models.StatusUnderReview})
	require.NoError(s.T(), err)
}

func (s *ServiceSuite) TestDeleteRemovesEverythingButTheEvent() {
	p := s.create("CUST-001", models.CheckPassed)

	require.NoError(s.T(), s.service.DeleteProfile(s.ctx, p.ID, models.Actor{UserID: "admin-1"}))

	_, err := s.service.GetProfile(s.ctx, p.ID)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
	_, err = s.service.GetAuditTrail(s.ctx, p.ID)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))

	err = s.service.DeleteProfile(s.ctx, p.ID, models.Actor{})
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))

	entries := s.outbox.Entries()
	require.Len(s.T(), entries, 2)
	assert.Equal(s.T(), models.EventProfileDeleted, entries[1].EventType)
	var event models.Event
	require.NoError(s.T(), json.Unmarshal(entries[1].Payload, &event))
	assert.Equal(s.T(), "admin-1", event.ActorID)
	require.NotNil(s.T(), event.PreviousStatus)
	assert.Equal(s.T(), models.StatusApproved, *event.PreviousStatus)
}
