package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"paam/internal/customer/models"
	"paam/internal/platform/database"
	id "paam/pkg/domain"
	"paam/pkg/platform/sentinel"
	txcontext "paam/pkg/platform/tx"
)

// PostgresStore persists customers in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed customer store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const customerColumns = `id, organization_id, email, first_name, last_name, date_of_birth,
	nationality, country_of_residence, risk_level, status, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, c *models.Customer) error {
	var orgID *uuid.UUID
	if c.OrganizationID != nil {
		u := uuid.UUID(*c.OrganizationID)
		orgID = &u
	}
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO customers (`+customerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		string(c.ID), orgID, c.Email, c.FirstName, c.LastName, c.DateOfBirth,
		c.Nationality, c.CountryOfResidence, string(c.RiskLevel), string(c.Status),
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("customer %s: %w", c.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, customerID id.CustomerID) (*models.Customer, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+customerColumns+` FROM customers WHERE id = $1
	`, string(customerID))
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find customer: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) FindByIDs(ctx context.Context, ids []id.CustomerID) ([]*models.Customer, error) {
	if len(ids) == 0 {
		return []*models.Customer{}, nil
	}
	keys := make([]string, len(ids))
	for i, customerID := range ids {
		keys[i] = string(customerID)
	}
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT `+customerColumns+` FROM customers WHERE id = ANY($1::text[])
	`, keys)
	if err != nil {
		return nil, fmt.Errorf("find customers: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

func (s *PostgresStore) List(ctx context.Context, filter models.Filter, limit, offset int) ([]*models.Customer, error) {
	where, args := filterClause(filter)
	args = append(args, limit, offset)
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, fmt.Sprintf(`
		SELECT `+customerColumns+` FROM customers %s
		ORDER BY created_at DESC, id ASC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

func (s *PostgresStore) Count(ctx context.Context, filter models.Filter) (int, error) {
	where, args := filterClause(filter)
	var n int
	err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM customers `+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) UpdateRiskLevel(ctx context.Context, customerID id.CustomerID, level models.RiskLevel, updatedAt time.Time) error {
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		UPDATE customers SET risk_level = $2, updated_at = $3 WHERE id = $1
	`, string(customerID), string(level), updatedAt)
	if err != nil {
		return fmt.Errorf("update customer risk level: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update customer risk level rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func filterClause(filter models.Filter) (string, []any) {
	if filter.RiskLevel == nil {
		return "", nil
	}
	return "WHERE risk_level = $1", []any{string(*filter.RiskLevel)}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*models.Customer, error) {
	var (
		c      models.Customer
		cid    string
		orgID  uuid.NullUUID
		dob    sql.NullTime
		risk   string
		status string
	)
	if err := row.Scan(&cid, &orgID, &c.Email, &c.FirstName, &c.LastName, &dob,
		&c.Nationality, &c.CountryOfResidence, &risk, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.ID = id.CustomerID(cid)
	if orgID.Valid {
		o := id.OrganizationID(orgID.UUID)
		c.OrganizationID = &o
	}
	if dob.Valid {
		d := dob.Time
		c.DateOfBirth = &d
	}
	c.RiskLevel = models.RiskLevel(risk)
	c.Status = models.Status(status)
	return &c, nil
}

func collect(rows *sql.Rows) ([]*models.Customer, error) {
	out := []*models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return out, nil
}
