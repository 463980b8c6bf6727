//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"paam/internal/kyc/models"
	"paam/internal/kyc/store"
	id "paam/pkg/domain"
	"paam/pkg/platform/sentinel"
	txcontext "paam/pkg/platform/tx"
	"paam/pkg/testutil"
	"paam/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	tx       *txcontext.Postgres
	customer id.CustomerID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.tx = txcontext.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateModuleTables(ctx))
	s.customer = s.postgres.CreateTestCustomer(ctx, s.T(), "CUST-001")
}

func (s *PostgresStoreSuite) newProfile(createdAt time.Time) *models.Profile {
	profileID := id.ProfileID(uuid.New())
	return &models.Profile{
		ID:          profileID,
		CustomerID:  s.customer,
		ProfileType: models.ProfileIndividual,
		Status:      models.StatusPending,
		Documents: []*models.Document{
			{ID: id.DocumentID(uuid.New()), ProfileID: profileID, Type: models.DocumentPassport,
				Status: models.CheckPassed, FileURL: "https://files.example.com/p.pdf", CreatedAt: createdAt},
			{ID: id.DocumentID(uuid.New()), ProfileID: profileID, Type: models.DocumentUtilityBill,
				Status: models.CheckPending, CreatedAt: createdAt},
		},
		Checks: []*models.Check{
			{ID: id.CheckID(uuid.New()), ProfileID: profileID, Type: "document_verification",
				Status: models.CheckPassed, RiskScore: decimal.RequireFromString("0.25"), CreatedAt: createdAt},
			{ID: id.CheckID(uuid.New()), ProfileID: profileID, Type: "pep_screening",
				Status: models.CheckPending, CreatedAt: createdAt},
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func (s *PostgresStoreSuite) TestInsertAndFindRoundTrip() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	p := s.newProfile(now)

	s.Require().NoError(s.store.InsertProfile(ctx, p))

	found, err := s.store.FindProfile(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.CustomerID, found.CustomerID)
	s.Equal(models.StatusPending, found.Status)
	s.Require().Len(found.Documents, 2)
	s.Equal(models.DocumentPassport, found.Documents[0].Type)
	s.Equal("https://files.example.com/p.pdf", found.Documents[0].FileURL)
	s.Require().Len(found.Checks, 2)
	s.Equal("pep_screening", found.Checks[0].Type, "checks are newest first")
	s.True(decimal.RequireFromString("0.25").Equal(found.Checks[1].RiskScore))
}

func (s *PostgresStoreSuite) TestInsertUnknownCustomer() {
	p := s.newProfile(time.Now())
	p.CustomerID = "CUST-404"
	err := s.store.InsertProfile(context.Background(), p)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestInsertRollsBackInsideTx() {
	ctx := context.Background()
	p := s.newProfile(time.Now())
	p.Checks[1].ID = p.Checks[0].ID // duplicate primary key on the second check

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.store.InsertProfile(ctx, p)
	})
	s.Require().Error(err)

	_, err = s.store.FindProfile(ctx, p.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	var docs int
	s.Require().NoError(s.postgres.QueryRow(ctx, `SELECT COUNT(*) FROM kyc_documents`).Scan(&docs))
	s.Zero(docs)
}

func (s *PostgresStoreSuite) TestListCountAndStatusCounts() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)
	var ids []id.ProfileID
	for i := range 4 {
		p := s.newProfile(base.Add(time.Duration(i) * time.Second))
		if i%2 == 1 {
			p.Status = models.StatusApproved
		}
		s.Require().NoError(s.store.InsertProfile(ctx, p))
		ids = append(ids, p.ID)
	}

	page, err := s.store.ListProfiles(ctx, models.Filter{}, models.Page{Page: 1, Limit: 3})
	s.Require().NoError(err)
	s.Require().Len(page, 3)
	s.Equal(ids[3], page[0].ID)
	s.Len(page[0].Documents, 2)

	approved := models.StatusApproved
	total, err := s.store.CountProfiles(ctx, models.Filter{Status: &approved, CustomerID: &s.customer})
	s.Require().NoError(err)
	s.Equal(2, total)

	counts, err := s.store.CountByStatus(ctx, models.Filter{})
	s.Require().NoError(err)
	s.Equal(map[models.Status]int{models.StatusApproved: 2, models.StatusPending: 2}, counts)
}

func (s *PostgresStoreSuite) TestStatusUpdateAndAudit() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	p := s.newProfile(now)
	s.Require().NoError(s.store.InsertProfile(ctx, p))

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		locked, err := s.store.FindProfileForUpdate(ctx, p.ID)
		if err != nil {
			return err
		}
		if err := s.store.UpdateStatus(ctx, p.ID, models.StatusUnderReview, now.Add(time.Minute)); err != nil {
			return err
		}
		previous := locked.Status
		return s.store.AppendAudit(ctx, &models.AuditEntry{
			ID: id.AuditEntryID(uuid.New()), ProfileID: p.ID, PreviousStatus: &previous,
			NewStatus: models.StatusUnderReview, Reason: "manual review", ActorID: "admin",
			Device: "Chrome on macOS", CreatedAt: now.Add(time.Minute),
		})
	})
	s.Require().NoError(err)

	entries, err := s.store.ListAudit(ctx, p.ID)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Require().NotNil(entries[0].PreviousStatus)
	s.Equal(models.StatusPending, *entries[0].PreviousStatus)
	s.Equal("manual review", entries[0].Reason)

	found, err := s.store.FindProfile(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusUnderReview, found.Status)
}

func (s *PostgresStoreSuite) TestConcurrentUpdatesSerialize() {
	ctx := context.Background()
	now := time.Now().UTC()
	p := s.newProfile(now)
	s.Require().NoError(s.store.InsertProfile(ctx, p))

	targets := []models.Status{models.StatusUnderReview, models.StatusApproved, models.StatusRejected, models.StatusRevoked}
	result := testutil.RunConcurrent(len(targets), func(i int) error {
		return s.tx.RunInTx(ctx, func(ctx context.Context) error {
			locked, err := s.store.FindProfileForUpdate(ctx, p.ID)
			if err != nil {
				return err
			}
			previous := locked.Status
			if err := s.store.UpdateStatus(ctx, p.ID, targets[i], time.Now()); err != nil {
				return err
			}
			return s.store.AppendAudit(ctx, &models.AuditEntry{
				ID: id.AuditEntryID(uuid.New()), ProfileID: p.ID, PreviousStatus: &previous,
				NewStatus: targets[i], CreatedAt: time.Now(),
			})
		})
	})
	s.Equal(int32(len(targets)), result.Successes)

	entries, err := s.store.ListAudit(ctx, p.ID)
	s.Require().NoError(err)
	s.Require().Len(entries, len(targets))
	for i := 1; i < len(entries); i++ {
		s.Equal(entries[i-1].NewStatus, *entries[i].PreviousStatus, "audit chain is linear")
	}
	found, err := s.store.FindProfile(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(entries[len(entries)-1].NewStatus, found.Status)
}

func (s *PostgresStoreSuite) TestDeleteCascades() {
	ctx := context.Background()
	p := s.newProfile(time.Now())
	s.Require().NoError(s.store.InsertProfile(ctx, p))
	s.Require().NoError(s.store.AppendAudit(ctx, &models.AuditEntry{
		ID: id.AuditEntryID(uuid.New()), ProfileID: p.ID, NewStatus: models.StatusPending, CreatedAt: time.Now(),
	}))

	s.Require().NoError(s.store.DeleteProfile(ctx, p.ID))

	for _, table := range []string{"kyc_documents", "kyc_checks", "kyc_audit_entries"} {
		var n int
		s.Require().NoError(s.postgres.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n))
		s.Zero(n, table)
	}
	err := s.store.DeleteProfile(ctx, p.ID)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}
