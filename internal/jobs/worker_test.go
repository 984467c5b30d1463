package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProcessor is a mock implementation of Processor
type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) ProcessBatch(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// TestWorker_StartStop tests the worker start and stop functionality
func TestWorker_StartStop(t *testing.T) {
	mockProcessor := new(MockProcessor)
	mockProcessor.On("ProcessBatch", mock.Anything).Return(0, nil)

	worker := NewWorker("test", mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(250 * time.Millisecond)

	worker.Stop()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessBatch", mock.Anything)
}

// TestWorker_ContextCancellation tests worker stops on context cancellation
func TestWorker_ContextCancellation(t *testing.T) {
	mockProcessor := new(MockProcessor)
	mockProcessor.On("ProcessBatch", mock.Anything).Return(0, nil)

	worker := NewWorker("test", mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(150 * time.Millisecond)

	cancel()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessBatch", mock.Anything)
}

// TestWorker_DrainsPendingBatches tests that a productive batch triggers an
// immediate follow-up instead of waiting for the next tick
func TestWorker_DrainsPendingBatches(t *testing.T) {
	mockProcessor := new(MockProcessor)
	mockProcessor.On("ProcessBatch", mock.Anything).Return(5, nil).Twice()
	mockProcessor.On("ProcessBatch", mock.Anything).Return(0, nil)

	worker := NewWorker("test", mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	// One tick is enough to run all three batches back to back.
	time.Sleep(150 * time.Millisecond)

	worker.Stop()
	wg.Wait()

	assert.GreaterOrEqual(t, len(mockProcessor.Calls), 3)
}

// TestWorker_BatchErrorDoesNotStopWorker tests the loop survives batch errors
func TestWorker_BatchErrorDoesNotStopWorker(t *testing.T) {
	mockProcessor := new(MockProcessor)
	mockProcessor.On("ProcessBatch", mock.Anything).Return(0, errors.New("boom"))

	worker := NewWorker("test", mockProcessor, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(180 * time.Millisecond)

	worker.Stop()
	wg.Wait()

	assert.GreaterOrEqual(t, len(mockProcessor.Calls), 2)
}

type stubBackfiller struct {
	updated int
	err     error
}

func (s *stubBackfiller) BackfillBatch(ctx context.Context) (int, error) {
	return s.updated, s.err
}

func TestEmbeddingWorkerDelegatesToBackfiller(t *testing.T) {
	worker := NewEmbeddingWorker(&stubBackfiller{updated: 3})

	n, err := worker.ProcessBatch(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestEmbeddingWorkerPropagatesErrors(t *testing.T) {
	worker := NewEmbeddingWorker(&stubBackfiller{err: errors.New("provider down")})

	_, err := worker.ProcessBatch(context.Background())

	assert.Error(t, err)
}
