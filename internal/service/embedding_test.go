package service

import (
	"context"
	"errors"
	"testing"

	"github.com/attica-health/carebot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEmbeddingWriter is a mock implementation of EmbeddingWriter
type MockEmbeddingWriter struct {
	mock.Mock
}

func (m *MockEmbeddingWriter) ListMissingEmbeddings(ctx context.Context, limit int) ([]*domain.KnowledgeChunk, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.KnowledgeChunk), args.Error(1)
}

func (m *MockEmbeddingWriter) UpdateEmbedding(ctx context.Context, chunkID string, embedding []float32) error {
	args := m.Called(ctx, chunkID, embedding)
	return args.Error(0)
}

type stubEmbeddingProvider struct {
	configured bool
	vectors    [][]float32
	err        error
	gotTexts   []string
}

func (p *stubEmbeddingProvider) Configured() bool { return p.configured }

func (p *stubEmbeddingProvider) Embeddings(ctx context.Context, texts []string) ([][]float32, error) {
	p.gotTexts = texts
	if p.err != nil {
		return nil, p.err
	}
	return p.vectors, nil
}

func TestBackfillBatchNotConfigured(t *testing.T) {
	writer := new(MockEmbeddingWriter)
	svc := NewEmbeddingService(writer, &stubEmbeddingProvider{configured: false})

	updated, err := svc.BackfillBatch(context.Background())

	require.NoError(t, err)
	assert.Zero(t, updated)
	writer.AssertNotCalled(t, "ListMissingEmbeddings", mock.Anything, mock.Anything)
}

func TestBackfillBatchNothingPending(t *testing.T) {
	writer := new(MockEmbeddingWriter)
	writer.On("ListMissingEmbeddings", mock.Anything, defaultBackfillBatchSize).Return([]*domain.KnowledgeChunk{}, nil)
	svc := NewEmbeddingService(writer, &stubEmbeddingProvider{configured: true})

	updated, err := svc.BackfillBatch(context.Background())

	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestBackfillBatchUpdatesVectors(t *testing.T) {
	writer := new(MockEmbeddingWriter)
	pending := []*domain.KnowledgeChunk{
		{ID: "c1", Content: "первый фрагмент"},
		{ID: "c2", Content: "второй фрагмент"},
	}
	writer.On("ListMissingEmbeddings", mock.Anything, defaultBackfillBatchSize).Return(pending, nil)
	writer.On("UpdateEmbedding", mock.Anything, "c1", []float32{0.1}).Return(nil)
	writer.On("UpdateEmbedding", mock.Anything, "c2", []float32{0.2}).Return(nil)

	provider := &stubEmbeddingProvider{configured: true, vectors: [][]float32{{0.1}, {0.2}}}
	svc := NewEmbeddingService(writer, provider)

	updated, err := svc.BackfillBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, updated)
	assert.Equal(t, []string{"первый фрагмент", "второй фрагмент"}, provider.gotTexts)
	writer.AssertExpectations(t)
}

func TestBackfillBatchProviderErrorSurfaces(t *testing.T) {
	writer := new(MockEmbeddingWriter)
	writer.On("ListMissingEmbeddings", mock.Anything, defaultBackfillBatchSize).
		Return([]*domain.KnowledgeChunk{{ID: "c1", Content: "текст"}}, nil)

	svc := NewEmbeddingService(writer, &stubEmbeddingProvider{configured: true, err: errors.New("embeddings down")})

	_, err := svc.BackfillBatch(context.Background())

	assert.Error(t, err)
	writer.AssertNotCalled(t, "UpdateEmbedding", mock.Anything, mock.Anything, mock.Anything)
}

func TestBackfillBatchPartialUpdateFailureContinues(t *testing.T) {
	writer := new(MockEmbeddingWriter)
	pending := []*domain.KnowledgeChunk{
		{ID: "c1", Content: "первый"},
		{ID: "c2", Content: "второй"},
	}
	writer.On("ListMissingEmbeddings", mock.Anything, defaultBackfillBatchSize).Return(pending, nil)
	writer.On("UpdateEmbedding", mock.Anything, "c1", mock.Anything).Return(errors.New("write failed"))
	writer.On("UpdateEmbedding", mock.Anything, "c2", mock.Anything).Return(nil)

	provider := &stubEmbeddingProvider{configured: true, vectors: [][]float32{{0.1}, {0.2}}}
	svc := NewEmbeddingService(writer, provider)

	updated, err := svc.BackfillBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, updated)
}
