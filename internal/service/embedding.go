package service

import (
	"context"
	"log"

	"github.com/attica-health/carebot/internal/domain"
	"github.com/attica-health/carebot/internal/telemetry"
)

const defaultBackfillBatchSize = 32

// EmbeddingWriter is the chunk persistence surface the backfill needs.
type EmbeddingWriter interface {
	ListMissingEmbeddings(ctx context.Context, limit int) ([]*domain.KnowledgeChunk, error)
	UpdateEmbedding(ctx context.Context, chunkID string, embedding []float32) error
}

// EmbeddingProvider computes embedding vectors for a batch of texts.
type EmbeddingProvider interface {
	Configured() bool
	Embeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingService backfills embeddings for chunks ingested while the
// provider was unavailable or text-only.
type EmbeddingService struct {
	chunks    EmbeddingWriter
	provider  EmbeddingProvider
	batchSize int
}

func NewEmbeddingService(chunks EmbeddingWriter, provider EmbeddingProvider) *EmbeddingService {
	return &EmbeddingService{
		chunks:    chunks,
		provider:  provider,
		batchSize: defaultBackfillBatchSize,
	}
}

// BackfillBatch embeds one batch of chunks missing a vector. Returns the
// number of chunks updated; zero means nothing is pending.
func (s *EmbeddingService) BackfillBatch(ctx context.Context) (int, error) {
	if !s.provider.Configured() {
		return 0, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "embedding.backfill", telemetry.SpanAttributes{
		Operation: "backfill",
	})
	defer span.End()

	pending, err := s.chunks.ListMissingEmbeddings(ctx, s.batchSize)
	if err != nil {
		span.SetError(err)
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	texts := make([]string, len(pending))
	for i, chunk := range pending {
		texts[i] = chunk.Content
	}

	vectors, err := s.provider.Embeddings(ctx, texts)
	if err != nil {
		span.SetError(err)
		return 0, err
	}
	if len(vectors) != len(pending) {
		log.Printf("embedding: provider returned %d vectors for %d chunks, skipping batch", len(vectors), len(pending))
		return 0, nil
	}

	updated := 0
	for i, chunk := range pending {
		if err := s.chunks.UpdateEmbedding(ctx, chunk.ID, vectors[i]); err != nil {
			log.Printf("embedding: failed to store vector for chunk %s: %v", chunk.ID, err)
			continue
		}
		updated++
	}
	return updated, nil
}
