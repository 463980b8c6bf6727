package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"paam/internal/platform/database"
	"paam/internal/sdk/models"
	id "paam/pkg/domain"
	"paam/pkg/platform/sentinel"
	txcontext "paam/pkg/platform/tx"
)

// PostgresStore persists SDK versions and downloads in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const versionColumns = `id, version, platform, file_url, checksum, release_notes, published, created_at`

func (s *PostgresStore) CreateVersion(ctx context.Context, v *models.Version) error {
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO sdk_versions (`+versionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.UUID(v.ID), v.Version, string(v.Platform), v.FileURL, v.Checksum, v.ReleaseNotes, v.Published, v.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("sdk %s %s: %w", v.Platform, v.Version, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert sdk version: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindVersion(ctx context.Context, versionID id.VersionID) (*models.Version, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM sdk_versions WHERE id = $1`, uuid.UUID(versionID))
	v, err := scanVersion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find sdk version: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) ListVersions(ctx context.Context, filter VersionFilter) ([]*models.Version, error) {
	var (
		conds []string
		args  []any
	)
	if filter.PublishedOnly {
		conds = append(conds, "published")
	}
	if filter.Platform != nil {
		args = append(args, string(*filter.Platform))
		conds = append(conds, fmt.Sprintf("platform = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT `+versionColumns+` FROM sdk_versions `+where+`
		ORDER BY created_at DESC, version DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list sdk versions: %w", err)
	}
	defer rows.Close()

	out := []*models.Version{}
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sdk version: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *PostgresStore) RecordDownload(ctx context.Context, d *models.Download) error {
	var userID uuid.NullUUID
	if d.UserID != nil {
		userID = uuid.NullUUID{UUID: uuid.UUID(*d.UserID), Valid: true}
	}
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO downloads (id, version_id, user_id, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(d.ID), uuid.UUID(d.VersionID), userID, d.IPAddress, d.UserAgent, d.CreatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("sdk version %s: %w", d.VersionID, sentinel.ErrNotFound)
		}
		return fmt.Errorf("insert download: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListDownloads(ctx context.Context, rng models.DateRange, limit, offset int) ([]*models.DownloadView, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT d.id, d.version_id, d.user_id, d.ip_address, d.user_agent, d.created_at, v.version, v.platform
		FROM downloads d
		JOIN sdk_versions v ON v.id = d.version_id
		WHERE d.created_at >= $1 AND d.created_at < $2
		ORDER BY d.created_at DESC, d.id
		LIMIT $3 OFFSET $4
	`, rng.From, rng.To, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list downloads: %w", err)
	}
	defer rows.Close()

	out := []*models.DownloadView{}
	for rows.Next() {
		var (
			view      models.DownloadView
			downID    uuid.UUID
			versionID uuid.UUID
			userID    uuid.NullUUID
			platform  string
		)
		if err := rows.Scan(&downID, &versionID, &userID, &view.IPAddress, &view.UserAgent, &view.CreatedAt,
			&view.Version, &platform); err != nil {
			return nil, fmt.Errorf("scan download: %w", err)
		}
		view.ID = id.DownloadID(downID)
		view.VersionID = id.VersionID(versionID)
		if userID.Valid {
			u := id.UserID(userID.UUID)
			view.UserID = &u
		}
		view.Platform = models.Platform(platform)
		out = append(out, &view)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountDownloads(ctx context.Context, rng models.DateRange) (int, error) {
	var n int
	err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM downloads WHERE created_at >= $1 AND created_at < $2
	`, rng.From, rng.To).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count downloads: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) CountUniqueDownloaders(ctx context.Context, rng models.DateRange) (int, error) {
	var n int
	err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT COALESCE('user:' || user_id::text, 'ip:' || ip_address))
		FROM downloads WHERE created_at >= $1 AND created_at < $2
	`, rng.From, rng.To).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unique downloaders: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) DownloadsByVersion(ctx context.Context, rng models.DateRange) ([]models.VersionCount, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT v.version, v.platform, COUNT(*) AS n
		FROM downloads d
		JOIN sdk_versions v ON v.id = d.version_id
		WHERE d.created_at >= $1 AND d.created_at < $2
		GROUP BY v.version, v.platform
		ORDER BY n DESC, v.version, v.platform
	`, rng.From, rng.To)
	if err != nil {
		return nil, fmt.Errorf("downloads by version: %w", err)
	}
	defer rows.Close()

	out := []models.VersionCount{}
	for rows.Next() {
		var (
			vc       models.VersionCount
			platform string
		)
		if err := rows.Scan(&vc.Version, &platform, &vc.Count); err != nil {
			return nil, fmt.Errorf("scan version count: %w", err)
		}
		vc.Platform = models.Platform(platform)
		out = append(out, vc)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DownloadsByDay(ctx context.Context, rng models.DateRange) ([]models.DayCount, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM downloads
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY day
		ORDER BY day
	`, rng.From, rng.To)
	if err != nil {
		return nil, fmt.Errorf("downloads by day: %w", err)
	}
	defer rows.Close()

	out := []models.DayCount{}
	for rows.Next() {
		var dc models.DayCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, fmt.Errorf("scan day count: %w", err)
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVersion(row rowScanner) (*models.Version, error) {
	var (
		v         models.Version
		versionID uuid.UUID
		platform  string
	)
	if err := row.Scan(&versionID, &v.Version, &platform, &v.FileURL, &v.Checksum, &v.ReleaseNotes, &v.Published, &v.CreatedAt); err != nil {
		return nil, err
	}
	v.ID = id.VersionID(versionID)
	v.Platform = models.Platform(platform)
	return &v, nil
}
