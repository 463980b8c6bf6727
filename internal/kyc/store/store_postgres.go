package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"paam/internal/kyc/models"
	"paam/internal/platform/database"
	id "paam/pkg/domain"
	"paam/pkg/platform/sentinel"
	txcontext "paam/pkg/platform/tx"
)

// PostgresStore persists KYC profiles in PostgreSQL. Methods join the
// transaction carried by ctx when there is one.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed KYC store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const profileColumns = `id, customer_id, profile_type, status, created_at, updated_at`

// InsertProfile writes the profile row followed by its documents and checks.
// Callers wrap it in a transaction so a failing child insert leaves nothing behind.
func (s *PostgresStore) InsertProfile(ctx context.Context, p *models.Profile) error {
	exec := txcontext.Executor(ctx, s.db)

	_, err := exec.ExecContext(ctx, `
		INSERT INTO kyc_profiles (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(p.ID), string(p.CustomerID), string(p.ProfileType), string(p.Status), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		switch {
		case database.IsForeignKeyViolation(err):
			return fmt.Errorf("customer %s: %w", p.CustomerID, sentinel.ErrNotFound)
		case database.IsUniqueViolation(err):
			return fmt.Errorf("profile %s: %w", p.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert kyc profile: %w", err)
	}

	for _, d := range p.Documents {
		err := exec.QueryRowContext(ctx, `
			INSERT INTO kyc_documents (id, profile_id, document_type, status, file_url, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING seq
		`, uuid.UUID(d.ID), uuid.UUID(p.ID), string(d.Type), string(d.Status), nullString(d.FileURL), d.CreatedAt).Scan(&d.Seq)
		if err != nil {
			return fmt.Errorf("insert kyc document: %w", err)
		}
	}

	for _, c := range p.Checks {
		err := exec.QueryRowContext(ctx, `
			INSERT INTO kyc_checks (id, profile_id, check_type, status, risk_score, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING seq
		`, uuid.UUID(c.ID), uuid.UUID(p.ID), c.Type, string(c.Status), c.RiskScore, c.CreatedAt).Scan(&c.Seq)
		if err != nil {
			return fmt.Errorf("insert kyc check: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) AppendAudit(ctx context.Context, e *models.AuditEntry) error {
	var previous sql.NullString
	if e.PreviousStatus != nil {
		previous = sql.NullString{String: string(*e.PreviousStatus), Valid: true}
	}
	err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO kyc_audit_entries
			(id, profile_id, previous_status, new_status, reason, actor_id, ip_address, user_agent, device, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq
	`, uuid.UUID(e.ID), uuid.UUID(e.ProfileID), previous, string(e.NewStatus), e.Reason,
		e.ActorID, e.IPAddress, e.UserAgent, e.Device, e.CreatedAt).Scan(&e.Seq)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("insert kyc audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindProfile(ctx context.Context, profileID id.ProfileID) (*models.Profile, error) {
	p, err := scanProfile(txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM kyc_profiles WHERE id = $1`, uuid.UUID(profileID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find kyc profile: %w", err)
	}
	if err := s.loadChildren(ctx, []*models.Profile{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// FindProfileForUpdate locks the profile row until the surrounding
// transaction ends. Children are not loaded.
func (s *PostgresStore) FindProfileForUpdate(ctx context.Context, profileID id.ProfileID) (*models.Profile, error) {
	p, err := scanProfile(txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM kyc_profiles WHERE id = $1 FOR UPDATE`, uuid.UUID(profileID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock kyc profile: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ListAudit(ctx context.Context, profileID id.ProfileID) ([]*models.AuditEntry, error) {
	exec := txcontext.Executor(ctx, s.db)

	var exists bool
	if err := exec.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM kyc_profiles WHERE id = $1)`, uuid.UUID(profileID)).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check kyc profile: %w", err)
	}
	if !exists {
		return nil, sentinel.ErrNotFound
	}

	rows, err := exec.QueryContext(ctx, `
		SELECT id, profile_id, previous_status, new_status, reason, actor_id, ip_address, user_agent, device, created_at, seq
		FROM kyc_audit_entries
		WHERE profile_id = $1
		ORDER BY created_at ASC, seq ASC
	`, uuid.UUID(profileID))
	if err != nil {
		return nil, fmt.Errorf("list kyc audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		var (
			e          models.AuditEntry
			entryID    uuid.UUID
			profileRef uuid.UUID
			previous   sql.NullString
			newStatus  string
		)
		if err := rows.Scan(&entryID, &profileRef, &previous, &newStatus, &e.Reason, &e.ActorID,
			&e.IPAddress, &e.UserAgent, &e.Device, &e.CreatedAt, &e.Seq); err != nil {
			return nil, fmt.Errorf("scan kyc audit entry: %w", err)
		}
		e.ID = id.AuditEntryID(entryID)
		e.ProfileID = id.ProfileID(profileRef)
		e.NewStatus = models.Status(newStatus)
		if previous.Valid {
			st := models.Status(previous.String)
			e.PreviousStatus = &st
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kyc audit entries: %w", err)
	}
	return entries, nil
}

func (s *PostgresStore) ListProfiles(ctx context.Context, filter models.Filter, page models.Page) ([]*models.Profile, error) {
	where, args := filterClause(filter)
	args = append(args, page.Limit, page.Offset())
	query := fmt.Sprintf(`
		SELECT %s FROM kyc_profiles
		%s
		ORDER BY created_at DESC, seq DESC
		LIMIT $%d OFFSET $%d
	`, profileColumns, where, len(args)-1, len(args))

	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list kyc profiles: %w", err)
	}
	defer rows.Close()

	profiles := []*models.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan kyc profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kyc profiles: %w", err)
	}

	if err := s.loadChildren(ctx, profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (s *PostgresStore) CountProfiles(ctx context.Context, filter models.Filter) (int, error) {
	where, args := filterClause(filter)
	var total int
	if err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM kyc_profiles `+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count kyc profiles: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) CountByStatus(ctx context.Context, filter models.Filter) (map[models.Status]int, error) {
	where, args := filterClause(filter)
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT status, COUNT(*) FROM kyc_profiles `+where+` GROUP BY status`, args...)
	if err != nil {
		return nil, fmt.Errorf("count kyc profiles by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Status]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[models.Status(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}
	return counts, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, profileID id.ProfileID, status models.Status, updatedAt time.Time) error {
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx,
		`UPDATE kyc_profiles SET status = $2, updated_at = $3 WHERE id = $1`,
		uuid.UUID(profileID), string(status), updatedAt)
	if err != nil {
		return fmt.Errorf("update kyc profile status: %w", err)
	}
	return requireRow(res)
}

// DeleteProfile removes the profile; documents, checks and audit entries
// follow through ON DELETE CASCADE.
func (s *PostgresStore) DeleteProfile(ctx context.Context, profileID id.ProfileID) error {
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM kyc_profiles WHERE id = $1`, uuid.UUID(profileID))
	if err != nil {
		return fmt.Errorf("delete kyc profile: %w", err)
	}
	return requireRow(res)
}

// loadChildren fills documents and checks for the given profiles with one
// query per child table.
func (s *PostgresStore) loadChildren(ctx context.Context, profiles []*models.Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*models.Profile, len(profiles))
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		p.Documents = []*models.Document{}
		p.Checks = []*models.Check{}
		byID[uuid.UUID(p.ID)] = p
		ids = append(ids, p.ID.String())
	}
	exec := txcontext.Executor(ctx, s.db)

	docRows, err := exec.QueryContext(ctx, `
		SELECT id, profile_id, document_type, status, file_url, created_at, seq
		FROM kyc_documents
		WHERE profile_id = ANY($1::uuid[])
		ORDER BY created_at ASC, seq ASC
	`, ids)
	if err != nil {
		return fmt.Errorf("load kyc documents: %w", err)
	}
	defer docRows.Close()
	for docRows.Next() {
		var (
			d                 models.Document
			docID, profileRef uuid.UUID
			docType, status   string
			fileURL           sql.NullString
		)
		if err := docRows.Scan(&docID, &profileRef, &docType, &status, &fileURL, &d.CreatedAt, &d.Seq); err != nil {
			return fmt.Errorf("scan kyc document: %w", err)
		}
		d.ID = id.DocumentID(docID)
		d.ProfileID = id.ProfileID(profileRef)
		d.Type = models.DocumentType(docType)
		d.Status = models.CheckStatus(status)
		d.FileURL = fileURL.String
		if p, ok := byID[profileRef]; ok {
			p.Documents = append(p.Documents, &d)
		}
	}
	if err := docRows.Err(); err != nil {
		return fmt.Errorf("iterate kyc documents: %w", err)
	}

	checkRows, err := exec.QueryContext(ctx, `
		SELECT id, profile_id, check_type, status, risk_score, created_at, seq
		FROM kyc_checks
		WHERE profile_id = ANY($1::uuid[])
		ORDER BY created_at DESC, seq DESC
	`, ids)
	if err != nil {
		return fmt.Errorf("load kyc checks: %w", err)
	}
	defer checkRows.Close()
	for checkRows.Next() {
		var (
			c                   models.Check
			checkID, profileRef uuid.UUID
			status              string
			score               decimal.Decimal
		)
		if err := checkRows.Scan(&checkID, &profileRef, &c.Type, &status, &score, &c.CreatedAt, &c.Seq); err != nil {
			return fmt.Errorf("scan kyc check: %w", err)
		}
		c.ID = id.CheckID(checkID)
		c.ProfileID = id.ProfileID(profileRef)
		c.Status = models.CheckStatus(status)
		c.RiskScore = score
		if p, ok := byID[profileRef]; ok {
			p.Checks = append(p.Checks, &c)
		}
	}
	if err := checkRows.Err(); err != nil {
		return fmt.Errorf("iterate kyc checks: %w", err)
	}
	return nil
}

// filterClause renders the WHERE clause for a Filter with positional args.
func filterClause(filter models.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.CustomerID != nil {
		args = append(args, string(*filter.CustomerID))
		conds = append(conds, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	var (
		p                         models.Profile
		profileID                 uuid.UUID
		customerID, ptype, status string
	)
	if err := row.Scan(&profileID, &customerID, &ptype, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.ID = id.ProfileID(profileID)
	p.CustomerID = id.CustomerID(customerID)
	p.ProfileType = models.ProfileType(ptype)
	p.Status = models.Status(status)
	return &p, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
