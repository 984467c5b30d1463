package repository

import (
	"context"
	"errors"

	"github.com/attica-health/carebot/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProjectRepository struct {
	db dbtx
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: pool}
}

const projectColumns = `id, name, public_key, allowed_origins, locale_default, disclaimer_template, system_prompt, created_at, updated_at`

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID, &p.Name, &p.PublicKey, &p.AllowedOrigins,
		&p.LocaleDefault, &p.DisclaimerTemplate, &p.SystemPrompt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO projects (id, name, public_key, allowed_origins, locale_default, disclaimer_template, system_prompt, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Name, p.PublicKey, p.AllowedOrigins, p.LocaleDefault, p.DisclaimerTemplate, p.SystemPrompt, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *ProjectRepository) GetByKey(ctx context.Context, publicKey string) (*domain.Project, error) {
	return scanProject(r.db.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE public_key = $1`,
		publicKey,
	))
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return scanProject(r.db.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`,
		id,
	))
}

func (r *ProjectRepository) List(ctx context.Context) ([]*domain.Project, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]*domain.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// AddOrigin appends an origin to the project's allowlist if not present.
func (r *ProjectRepository) AddOrigin(ctx context.Context, projectID, origin string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE projects
		 SET allowed_origins = array_append(allowed_origins, $2), updated_at = now()
		 WHERE id = $1 AND NOT ($2 = ANY(allowed_origins))`,
		projectID, origin,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either the project is missing or the origin is already listed;
		// distinguish so callers get a useful error.
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, projectID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrProjectNotFound
		}
	}
	return nil
}
