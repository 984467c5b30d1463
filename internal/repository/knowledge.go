package repository

import (
	"context"

	"github.com/attica-health/carebot/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// KnowledgeSourceRepository persists knowledge sources. Chunk rows live in
// KnowledgeChunkRepository; the two are written together through TxRunner so
// retrieval never observes a source without its chunks.
type KnowledgeSourceRepository struct {
	db dbtx
}

func NewKnowledgeSourceRepository(pool *pgxpool.Pool) *KnowledgeSourceRepository {
	return &KnowledgeSourceRepository{db: pool}
}

func NewKnowledgeSourceRepositoryWithTx(tx dbtx) *KnowledgeSourceRepository {
	return &KnowledgeSourceRepository{db: tx}
}

func (r *KnowledgeSourceRepository) Create(ctx context.Context, s *domain.KnowledgeSource) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO knowledge_sources (id, project_id, title, url, raw_text, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.ProjectID, s.Title, nullableString(s.URL), s.RawText, s.CreatedAt, s.UpdatedAt,
	)
	return err
}

// Delete removes a source and, via cascade, its chunks. It is an idempotent
// no-op when the source does not exist or belongs to another project.
func (r *KnowledgeSourceRepository) Delete(ctx context.Context, projectID, sourceID string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM knowledge_sources WHERE id = $1 AND project_id = $2`,
		sourceID, projectID,
	)
	return err
}

// ListByProject returns the project's sources, most recently updated first,
// each annotated with its chunk count.
func (r *KnowledgeSourceRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.KnowledgeSource, error) {
	rows, err := r.db.Query(ctx,
		`SELECT s.id, s.project_id, s.title, s.url, s.created_at, s.updated_at,
		        (SELECT COUNT(*) FROM knowledge_chunks c WHERE c.source_id = s.id) AS chunk_count
		 FROM knowledge_sources s
		 WHERE s.project_id = $1
		 ORDER BY s.updated_at DESC`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sources := make([]*domain.KnowledgeSource, 0)
	for rows.Next() {
		var s domain.KnowledgeSource
		var url *string
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.Title, &url, &s.CreatedAt, &s.UpdatedAt, &s.ChunkCount); err != nil {
			return nil, err
		}
		if url != nil {
			s.URL = *url
		}
		sources = append(sources, &s)
	}
	return sources, rows.Err()
}
