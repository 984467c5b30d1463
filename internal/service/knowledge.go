package service

import (
	"context"
	"strings"
	"time"

	"github.com/attica-health/carebot/internal/domain"
	"github.com/attica-health/carebot/internal/telemetry"
	"github.com/google/uuid"
)

// SourceRepositoryInterface defines the repository interface for knowledge
// source persistence
type SourceRepositoryInterface interface {
	Create(ctx context.Context, s *domain.KnowledgeSource) error
	Delete(ctx context.Context, projectID, sourceID string) error
	ListByProject(ctx context.Context, projectID string) ([]*domain.KnowledgeSource, error)
}

// ChunkWriterInterface defines the repository interface for chunk inserts
type ChunkWriterInterface interface {
	InsertChunks(ctx context.Context, chunks []domain.KnowledgeChunk) error
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// KnowledgeService handles the knowledge base lifecycle: chunked ingestion,
// idempotent deletion and per-project listings.
type KnowledgeService struct {
	sourceRepo SourceRepositoryInterface
	txRunner   TxRunner
	chunkCfg   ChunkConfig
	uuidGen    UUIDGenerator
}

// NewKnowledgeService creates a new KnowledgeService instance
func NewKnowledgeService(sourceRepo SourceRepositoryInterface, txRunner TxRunner) *KnowledgeService {
	return &KnowledgeService{
		sourceRepo: sourceRepo,
		txRunner:   txRunner,
		chunkCfg:   DefaultChunkConfig(),
		uuidGen:    &DefaultUUIDGenerator{},
	}
}

// NewKnowledgeServiceWithUUIDGen creates a KnowledgeService with a custom
// UUID generator (for testing)
func NewKnowledgeServiceWithUUIDGen(sourceRepo SourceRepositoryInterface, txRunner TxRunner, uuidGen UUIDGenerator) *KnowledgeService {
	svc := NewKnowledgeService(sourceRepo, txRunner)
	svc.uuidGen = uuidGen
	return svc
}

// CreateSourceInput represents the input for ingesting a knowledge source
type CreateSourceInput struct {
	ProjectID string
	Title     string
	URL       string
	Text      string
}

// CreateSource splits the text into ordered chunks and persists the source
// with all of its chunks atomically; retrieval never sees one without the
// other. Fails with a validation error when the text yields no chunks.
func (s *KnowledgeService) CreateSource(ctx context.Context, input CreateSourceInput) (*domain.KnowledgeSource, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.CreateSource", telemetry.SpanAttributes{
		ProjectID: input.ProjectID,
		Operation: "create",
	})
	defer span.End()

	contents := SplitText(input.Text, s.chunkCfg)
	if len(contents) == 0 {
		return nil, domain.ErrKBTextEmpty
	}

	now := time.Now().UTC()
	source := &domain.KnowledgeSource{
		ID:         s.uuidGen.NewString(),
		ProjectID:  input.ProjectID,
		Title:      strings.TrimSpace(input.Title),
		URL:        strings.TrimSpace(input.URL),
		RawText:    input.Text,
		CreatedAt:  now,
		UpdatedAt:  now,
		ChunkCount: len(contents),
	}

	if err := domain.ValidateKnowledgeSource(source); err != nil {
		return nil, err
	}

	chunks := make([]domain.KnowledgeChunk, 0, len(contents))
	for i, content := range contents {
		chunks = append(chunks, domain.KnowledgeChunk{
			ID:        s.uuidGen.NewString(),
			ProjectID: input.ProjectID,
			SourceID:  source.ID,
			Ordinal:   i,
			Content:   content,
			CreatedAt: now,
		})
	}

	err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Sources().Create(ctx, source); err != nil {
			return err
		}
		return repos.Chunks().InsertChunks(ctx, chunks)
	})
	if err != nil {
		return nil, err
	}

	return source, nil
}

// DeleteSource removes a source and its chunks. Silently returns when the
// source does not exist or belongs to another project.
func (s *KnowledgeService) DeleteSource(ctx context.Context, projectID, sourceID string) error {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.DeleteSource", telemetry.SpanAttributes{
		ProjectID: projectID,
		SourceID:  sourceID,
		Operation: "delete",
	})
	defer span.End()

	return s.sourceRepo.Delete(ctx, projectID, sourceID)
}

// ListSources returns the project's sources, most recently updated first.
func (s *KnowledgeService) ListSources(ctx context.Context, projectID string) ([]*domain.KnowledgeSource, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.ListSources", telemetry.SpanAttributes{
		ProjectID: projectID,
		Operation: "list",
	})
	defer span.End()

	return s.sourceRepo.ListByProject(ctx, projectID)
}
