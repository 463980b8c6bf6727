//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"paam/internal/platform/database"
	"paam/migrations"
	id "paam/pkg/domain"
)

// PostgresContainer is a migrated Postgres 18 instance shared by store suites.
type PostgresContainer struct {
	Container *postgres.PostgresContainer
	DSN       string
	Pool      *database.Pool
	DB        *sql.DB
}

// NewPostgresContainer starts Postgres, opens a pool through the production
// code path and applies the embedded migrations.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:18-alpine",
		postgres.WithDatabase("paam_test"),
		postgres.WithUsername("paam"),
		postgres.WithPassword("paam_test_password"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	fail := func(format string, args ...any) {
		_ = testcontainers.TerminateContainer(container)
		t.Fatalf(format, args...)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fail("postgres connection string: %v", err)
	}
	pool, err := database.New(ctx, database.Config{URL: dsn, MaxOpenConns: 20, MaxIdleConns: 5, ConnMaxLifetime: time.Minute})
	if err != nil {
		fail("open postgres pool: %v", err)
	}
	if _, err := database.Migrate(ctx, pool.DB(), migrations.FS); err != nil {
		_ = pool.Close()
		fail("migrate postgres: %v", err)
	}
	return &PostgresContainer{Container: container, DSN: dsn, Pool: pool, DB: pool.DB()}
}

// TruncateTables clears all data from the specified tables.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		_, err := p.DB.ExecContext(ctx, "TRUNCATE TABLE "+table+" CASCADE")
		if err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}

// TruncateModuleTables truncates every application table. CASCADE takes care
// of child rows.
func (p *PostgresContainer) TruncateModuleTables(ctx context.Context) error {
	return p.TruncateTables(ctx,
		"outbox",
		"kyc_profiles",
		"customers",
		"downloads",
		"sdk_versions",
		"projects",
		"api_keys",
		"users",
		"organizations",
	)
}

// Exec runs a SQL statement and returns the result.
func (p *PostgresContainer) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return p.DB.ExecContext(ctx, query, args...)
}

// QueryRow runs a SQL query expected to return a single row.
func (p *PostgresContainer) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return p.DB.QueryRowContext(ctx, query, args...)
}

// CreateTestCustomer inserts an ACTIVE, LOW risk customer with the given id.
func (p *PostgresContainer) CreateTestCustomer(ctx context.Context, t testing.TB, customerID string) id.CustomerID {
	t.Helper()
	_, err := p.Exec(ctx, `
		INSERT INTO customers (id, email, first_name, last_name, risk_level, status, created_at, updated_at)
		VALUES ($1, $2, 'Test', 'Customer', 'LOW', 'ACTIVE', NOW(), NOW())
	`, customerID, "customer-"+uuid.NewString()+"@example.com")
	if err != nil {
		t.Fatalf("CreateTestCustomer: %v", err)
	}
	return id.CustomerID(customerID)
}

// CreateTestOrganization inserts an organization and returns its id.
func (p *PostgresContainer) CreateTestOrganization(ctx context.Context, t testing.TB) id.OrganizationID {
	t.Helper()
	orgID := id.OrganizationID(uuid.New())
	_, err := p.Exec(ctx, `INSERT INTO organizations (id, name) VALUES ($1, $2)`,
		uuid.UUID(orgID), "Test Org "+uuid.NewString())
	if err != nil {
		t.Fatalf("CreateTestOrganization: %v", err)
	}
	return orgID
}
