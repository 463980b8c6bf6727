package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"paam/internal/account/models"
	"paam/internal/platform/database"
	id "paam/pkg/domain"
	"paam/pkg/platform/sentinel"
	txcontext "paam/pkg/platform/tx"
)

// PostgresStore persists users and API keys in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `id, organization_id, email, name, role, created_at`

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	var orgID uuid.NullUUID
	if u.OrganizationID != nil {
		orgID = uuid.NullUUID{UUID: uuid.UUID(*u.OrganizationID), Valid: true}
	}
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(u.ID), orgID, u.Email, u.Name, string(u.Role), u.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", u.Email, sentinel.ErrConflict)
		}
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("user organization: %w", sentinel.ErrNotFound)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, uuid.UUID(userID))
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		ORDER BY created_at DESC, id ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

const keyColumns = `id, user_id, name, prefix, hash, created_at, last_used_at, revoked_at`

func (s *PostgresStore) CreateAPIKey(ctx context.Context, k *models.APIKey) error {
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO api_keys (`+keyColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.UUID(k.ID), uuid.UUID(k.UserID), k.Name, k.Prefix, k.Hash, k.CreatedAt, k.LastUsedAt, k.RevokedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("api key owner %s: %w", k.UserID, sentinel.ErrNotFound)
		}
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("api key prefix %s: %w", k.Prefix, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindAPIKey(ctx context.Context, keyID id.APIKeyID) (*models.APIKey, error) {
	return s.findKey(ctx, `WHERE id = $1`, uuid.UUID(keyID))
}

func (s *PostgresStore) FindAPIKeyByPrefix(ctx context.Context, prefix string) (*models.APIKey, error) {
	return s.findKey(ctx, `WHERE prefix = $1`, prefix)
}

func (s *PostgresStore) findKey(ctx context.Context, where string, arg any) (*models.APIKey, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `SELECT `+keyColumns+` FROM api_keys `+where, arg)
	k, err := scanKey(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find api key: %w", err)
	}
	return k, nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context, limit, offset int) ([]*models.APIKey, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT `+keyColumns+` FROM api_keys
		ORDER BY created_at DESC, id ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	out := []*models.APIKey{}
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate api keys: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CountAPIKeys(ctx context.Context) (int, error) {
	var n int
	if err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM api_keys`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count api keys: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) RevokeAPIKey(ctx context.Context, keyID id.APIKeyID, at time.Time) error {
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		UPDATE api_keys SET revoked_at = COALESCE(revoked_at, $2) WHERE id = $1
	`, uuid.UUID(keyID), at)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	return requireRow(res, "revoke api key")
}

func (s *PostgresStore) TouchAPIKey(ctx context.Context, keyID id.APIKeyID, at time.Time) error {
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		UPDATE api_keys SET last_used_at = $2 WHERE id = $1
	`, uuid.UUID(keyID), at)
	if err != nil {
		return fmt.Errorf("touch api key: %w", err)
	}
	return requireRow(res, "touch api key")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u      models.User
		userID uuid.UUID
		orgID  uuid.NullUUID
		role   string
	)
	if err := row.Scan(&userID, &orgID, &u.Email, &u.Name, &role, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.ID = id.UserID(userID)
	if orgID.Valid {
		o := id.OrganizationID(orgID.UUID)
		u.OrganizationID = &o
	}
	u.Role = models.Role(role)
	return &u, nil
}

func scanKey(row rowScanner) (*models.APIKey, error) {
	var (
		k        models.APIKey
		keyID    uuid.UUID
		userID   uuid.UUID
		lastUsed sql.NullTime
		revoked  sql.NullTime
	)
	if err := row.Scan(&keyID, &userID, &k.Name, &k.Prefix, &k.Hash, &k.CreatedAt, &lastUsed, &revoked); err != nil {
		return nil, err
	}
	k.ID = id.APIKeyID(keyID)
	k.UserID = id.UserID(userID)
	if lastUsed.Valid {
		t := lastUsed.Time
		k.LastUsedAt = &t
	}
	if revoked.Valid {
		t := revoked.Time
		k.RevokedAt = &t
	}
	return &k, nil
}

func requireRow(res sql.Result, op string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
