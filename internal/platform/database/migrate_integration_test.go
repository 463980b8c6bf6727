//go:build integration

package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"paam/internal/platform/database"
	"paam/migrations"
	"paam/pkg/testutil/containers"
)

type MigrateSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
}

func TestMigrateSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(MigrateSuite))
}

func (s *MigrateSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
}

func (s *MigrateSuite) TestRecordedVersionsAreSkipped() {
	ctx := context.Background()

	applied, err := database.Migrate(ctx, s.postgres.DB, migrations.FS)
	s.Require().NoError(err)
	s.Empty(applied, "the container already ran every migration")

	var version string
	s.Require().NoError(s.postgres.QueryRow(ctx,
		`SELECT version FROM schema_migrations ORDER BY version LIMIT 1`).Scan(&version))
	s.Equal("000001_init", version)
}

func (s *MigrateSuite) TestPoolReportsHealthy() {
	s.NoError(s.postgres.Pool.Health(context.Background()))

	var app string
	s.Require().NoError(s.postgres.QueryRow(context.Background(), `SHOW application_name`).Scan(&app))
	s.Equal("paam", app)
}
