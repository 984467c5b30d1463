package repository

import (
	"context"

	"github.com/attica-health/carebot/internal/domain"
	"github.com/attica-health/carebot/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// KnowledgeChunkRepository handles chunk persistence, the lexical chunk scan
// and the pgvector similarity query.
type KnowledgeChunkRepository struct {
	db dbtx
}

func NewKnowledgeChunkRepository(pool *pgxpool.Pool) *KnowledgeChunkRepository {
	return &KnowledgeChunkRepository{db: pool}
}

func NewKnowledgeChunkRepositoryWithTx(tx dbtx) *KnowledgeChunkRepository {
	return &KnowledgeChunkRepository{db: tx}
}

func (r *KnowledgeChunkRepository) InsertChunks(ctx context.Context, chunks []domain.KnowledgeChunk) error {
	for _, c := range chunks {
		var embedding any
		if len(c.Embedding) > 0 {
			embedding = pgvector.NewVector(c.Embedding)
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO knowledge_chunks (id, project_id, source_id, ordinal, content, embedding, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			c.ID, c.ProjectID, c.SourceID, c.Ordinal, c.Content, embedding, c.CreatedAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// ListChunks scans the project's chunks joined with their source metadata
// for in-memory lexical scoring. The cap keeps the scan bounded on
// unexpectedly large tenants.
func (r *KnowledgeChunkRepository) ListChunks(ctx context.Context, projectID string, limit int) ([]*service.ChunkMatch, error) {
	if limit <= 0 {
		limit = 600
	}
	rows, err := r.db.Query(ctx,
		`SELECT c.content, s.id, s.title, s.url
		 FROM knowledge_chunks c
		 JOIN knowledge_sources s ON s.id = c.source_id
		 WHERE c.project_id = $1
		 ORDER BY c.source_id, c.ordinal
		 LIMIT $2`,
		projectID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChunkMatches(rows, false)
}

// SearchByEmbedding returns the chunks nearest to the query embedding by
// cosine distance, ascending.
func (r *KnowledgeChunkRepository) SearchByEmbedding(ctx context.Context, projectID string, embedding []float32, limit int) ([]*service.ChunkMatch, error) {
	rows, err := r.db.Query(ctx,
		`SELECT c.content, s.id, s.title, s.url, (c.embedding <=> $1) AS distance
		 FROM knowledge_chunks c
		 JOIN knowledge_sources s ON s.id = c.source_id
		 WHERE c.project_id = $2 AND c.embedding IS NOT NULL
		 ORDER BY distance ASC
		 LIMIT $3`,
		pgvector.NewVector(embedding), projectID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChunkMatches(rows, true)
}

// ListMissingEmbeddings returns chunks that still need an embedding.
func (r *KnowledgeChunkRepository) ListMissingEmbeddings(ctx context.Context, limit int) ([]*domain.KnowledgeChunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, project_id, source_id, ordinal, content, created_at
		 FROM knowledge_chunks
		 WHERE embedding IS NULL
		 ORDER BY created_at ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chunks := make([]*domain.KnowledgeChunk, 0)
	for rows.Next() {
		var c domain.KnowledgeChunk
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.SourceID, &c.Ordinal, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		chunks = append(chunks, &c)
	}
	return chunks, rows.Err()
}

func (r *KnowledgeChunkRepository) UpdateEmbedding(ctx context.Context, chunkID string, embedding []float32) error {
	_, err := r.db.Exec(ctx,
		`UPDATE knowledge_chunks SET embedding = $2 WHERE id = $1`,
		chunkID, pgvector.NewVector(embedding),
	)
	return err
}

func scanChunkMatches(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}, withDistance bool) ([]*service.ChunkMatch, error) {
	matches := make([]*service.ChunkMatch, 0)
	for rows.Next() {
		var m service.ChunkMatch
		var url *string
		var err error
		if withDistance {
			err = rows.Scan(&m.Content, &m.SourceID, &m.Title, &url, &m.Distance)
		} else {
			err = rows.Scan(&m.Content, &m.SourceID, &m.Title, &url)
		}
		if err != nil {
			return nil, err
		}
		if url != nil {
			m.URL = *url
		}
		matches = append(matches, &m)
	}
	return matches, rows.Err()
}
