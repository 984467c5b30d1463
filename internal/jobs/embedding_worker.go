package jobs

import (
	"context"
)

// Backfiller embeds knowledge chunks that are still missing a vector.
type Backfiller interface {
	BackfillBatch(ctx context.Context) (int, error)
}

// EmbeddingWorker adapts the embedding backfill service to the Processor
// interface so chunks ingested without a provider catch up once one is
// available.
type EmbeddingWorker struct {
	backfiller Backfiller
}

// NewEmbeddingWorker creates a new EmbeddingWorker instance
func NewEmbeddingWorker(backfiller Backfiller) *EmbeddingWorker {
	return &EmbeddingWorker{backfiller: backfiller}
}

// ProcessBatch implements the Processor interface
func (w *EmbeddingWorker) ProcessBatch(ctx context.Context) (int, error) {
	return w.backfiller.BackfillBatch(ctx)
}
