//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"paam/internal/account/models"
	"paam/internal/account/store"
	id "paam/pkg/domain"
	"paam/pkg/platform/sentinel"
	"paam/pkg/testutil/containers"
)

type PostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateModuleTables(context.Background()))
}

func (s *PostgresSuite) TestUserAndKeyLifecycle() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	orgID := s.postgres.CreateTestOrganization(ctx, s.T())

	u := &models.User{ID: id.UserID(uuid.New()), OrganizationID: &orgID, Email: "ops@example.com", Name: "Ops", Role: models.RoleAdmin, CreatedAt: now}
	s.Require().NoError(s.store.CreateUser(ctx, u))
	s.ErrorIs(s.store.CreateUser(ctx, &models.User{ID: id.UserID(uuid.New()), Email: "ops@example.com", Name: "x", Role: models.RoleMember, CreatedAt: now}), sentinel.ErrConflict)

	got, err := s.store.FindUser(ctx, u.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.OrganizationID)
	s.Equal(orgID, *got.OrganizationID)
	s.Equal(models.RoleAdmin, got.Role)

	k := &models.APIKey{ID: id.APIKeyID(uuid.New()), UserID: u.ID, Name: "ci", Prefix: "0123456789ab", Hash: "$2a$10$x", CreatedAt: now}
	s.Require().NoError(s.store.CreateAPIKey(ctx, k))

	byPrefix, err := s.store.FindAPIKeyByPrefix(ctx, "0123456789ab")
	s.Require().NoError(err)
	s.Equal(k.ID, byPrefix.ID)
	s.Nil(byPrefix.RevokedAt)

	s.Require().NoError(s.store.TouchAPIKey(ctx, k.ID, now.Add(time.Minute)))
	s.Require().NoError(s.store.RevokeAPIKey(ctx, k.ID, now.Add(2*time.Minute)))
	s.Require().NoError(s.store.RevokeAPIKey(ctx, k.ID, now.Add(3*time.Minute)))

	got2, err := s.store.FindAPIKey(ctx, k.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got2.LastUsedAt)
	s.Require().NotNil(got2.RevokedAt)
	s.True(now.Add(2 * time.Minute).Equal(*got2.RevokedAt))

	keys, err := s.store.ListAPIKeys(ctx, 10, 0)
	s.Require().NoError(err)
	s.Len(keys, 1)

	err = s.store.CreateAPIKey(ctx, &models.APIKey{ID: id.APIKeyID(uuid.New()), UserID: id.UserID(uuid.New()), Name: "x", Prefix: "ffffffffffff", Hash: "h", CreatedAt: now})
	s.ErrorIs(err, sentinel.ErrNotFound)
}
