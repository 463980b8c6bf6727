package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"paam/internal/platform/database"
	"paam/internal/project/models"
	id "paam/pkg/domain"
	"paam/pkg/platform/sentinel"
	txcontext "paam/pkg/platform/tx"
)

// PostgresStore persists projects, builds and deployments in PostgreSQL.
// Cascading deletes are enforced by foreign keys.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const projectColumns = `id, owner_id, name, description, created_at, updated_at`

func (s *PostgresStore) CreateProject(ctx context.Context, p *models.Project) error {
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`) VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(p.ID), uuid.UUID(p.OwnerID), p.Name, p.Description, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("project %s: %w", p.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindProject(ctx context.Context, projectID id.ProjectID) (*models.Project, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+projectColumns+` FROM projects WHERE id = $1
	`, uuid.UUID(projectID))
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ListProjects(ctx context.Context, owner id.UserID, limit, offset int) ([]*models.Project, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE owner_id = $1
		ORDER BY created_at DESC, id ASC
		LIMIT $2 OFFSET $3
	`, uuid.UUID(owner), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := []*models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CountProjects(ctx context.Context, owner id.UserID) (int, error) {
	var n int
	err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM projects WHERE owner_id = $1
	`, uuid.UUID(owner)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) UpdateProject(ctx context.Context, p *models.Project) error {
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		UPDATE projects SET name = $2, description = $3, updated_at = $4 WHERE id = $1
	`, uuid.UUID(p.ID), p.Name, p.Description, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return requireRow(res, "update project")
}

func (s *PostgresStore) DeleteProject(ctx context.Context, projectID id.ProjectID) error {
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		DELETE FROM projects WHERE id = $1
	`, uuid.UUID(projectID))
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return requireRow(res, "delete project")
}

const buildColumns = `id, project_id, version_id, status, created_at`

func (s *PostgresStore) CreateBuild(ctx context.Context, b *models.Build) error {
	var versionID uuid.NullUUID
	if b.VersionID != nil {
		versionID = uuid.NullUUID{UUID: uuid.UUID(*b.VersionID), Valid: true}
	}
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO builds (`+buildColumns+`) VALUES ($1, $2, $3, $4, $5)
	`, uuid.UUID(b.ID), uuid.UUID(b.ProjectID), versionID, string(b.Status), b.CreatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("build %s parent: %w", b.ID, sentinel.ErrNotFound)
		}
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("build %s: %w", b.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert build: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindBuild(ctx context.Context, buildID id.BuildID) (*models.Build, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+buildColumns+` FROM builds WHERE id = $1
	`, uuid.UUID(buildID))
	b, err := scanBuild(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find build: %w", err)
	}
	return b, nil
}

func (s *PostgresStore) ListBuilds(ctx context.Context, projectID id.ProjectID) ([]*models.Build, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT `+buildColumns+` FROM builds
		WHERE project_id = $1
		ORDER BY created_at DESC, id ASC
	`, uuid.UUID(projectID))
	if err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}
	defer rows.Close()

	out := []*models.Build{}
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateBuildStatus(ctx context.Context, buildID id.BuildID, from, to models.BuildStatus) error {
	exec := txcontext.Executor(ctx, s.db)
	res, err := exec.ExecContext(ctx, `
		UPDATE builds SET status = $3 WHERE id = $1 AND status = $2
	`, uuid.UUID(buildID), string(from), string(to))
	if err != nil {
		return fmt.Errorf("update build status: %w", err)
	}
	if err := requireRow(res, "update build status"); !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	var exists bool
	if err := exec.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM builds WHERE id = $1)`, uuid.UUID(buildID)).Scan(&exists); err != nil {
		return fmt.Errorf("check build: %w", err)
	}
	if exists {
		return fmt.Errorf("build %s left %s: %w", buildID, from, sentinel.ErrConflict)
	}
	return sentinel.ErrNotFound
}

const deploymentColumns = `id, build_id, environment, url, status, created_at`

func (s *PostgresStore) CreateDeployment(ctx context.Context, d *models.Deployment) error {
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO deployments (`+deploymentColumns+`) VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(d.ID), uuid.UUID(d.BuildID), string(d.Environment), d.URL, string(d.Status), d.CreatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("deployment build %s: %w", d.BuildID, sentinel.ErrNotFound)
		}
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("deployment %s: %w", d.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert deployment: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListDeployments(ctx context.Context, buildID id.BuildID) ([]*models.Deployment, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT `+deploymentColumns+` FROM deployments
		WHERE build_id = $1
		ORDER BY created_at DESC, id ASC
	`, uuid.UUID(buildID))
	if err != nil {
		return nil, fmt.Errorf("list deployments: %w", err)
	}
	defer rows.Close()

	out := []*models.Deployment{}
	for rows.Next() {
		var (
			d           models.Deployment
			deployID    uuid.UUID
			build       uuid.UUID
			environment string
			status      string
		)
		if err := rows.Scan(&deployID, &build, &environment, &d.URL, &status, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan deployment: %w", err)
		}
		d.ID = id.DeploymentID(deployID)
		d.BuildID = id.BuildID(build)
		d.Environment = models.Environment(environment)
		d.Status = models.DeploymentStatus(status)
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deployments: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var (
		p         models.Project
		projectID uuid.UUID
		owner     uuid.UUID
	)
	if err := row.Scan(&projectID, &owner, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.ID = id.ProjectID(projectID)
	p.OwnerID = id.UserID(owner)
	return &p, nil
}

func scanBuild(row rowScanner) (*models.Build, error) {
	var (
		b         models.Build
		buildID   uuid.UUID
		projectID uuid.UUID
		versionID uuid.NullUUID
		status    string
	)
	if err := row.Scan(&buildID, &projectID, &versionID, &status, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.ID = id.BuildID(buildID)
	b.ProjectID = id.ProjectID(projectID)
	if versionID.Valid {
		v := id.VersionID(versionID.UUID)
		b.VersionID = &v
	}
	b.Status = models.BuildStatus(status)
	return &b, nil
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
