// Package jobs runs background maintenance loops next to the HTTP server.
package jobs

import (
	"context"
	"log"
	"time"
)

// Processor performs one unit of background work. The returned count tells
// the worker whether more work is immediately pending.
type Processor interface {
	ProcessBatch(ctx context.Context) (int, error)
}

// Worker polls a Processor on a fixed interval. When a batch reports
// progress the worker drains immediately instead of waiting for the next
// tick.
type Worker struct {
	name         string
	processor    Processor
	pollInterval time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
}

// NewWorker creates a new Worker instance
func NewWorker(name string, processor Processor, pollInterval time.Duration) *Worker {
	return &Worker{
		name:         name,
		processor:    processor,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start begins the worker's polling loop
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("worker %s: started with poll interval %v", w.name, w.pollInterval)

	for {
		select {
		case <-ctx.Done():
			log.Printf("worker %s: stopped, context cancelled", w.name)
			return
		case <-w.stopChan:
			log.Printf("worker %s: stopped, stop signal received", w.name)
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		default:
		}

		n, err := w.processor.ProcessBatch(ctx)
		if err != nil {
			log.Printf("worker %s: batch failed: %v", w.name, err)
			return
		}
		if n == 0 {
			return
		}
		log.Printf("worker %s: processed %d items", w.name, n)
	}
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	log.Printf("worker %s: shutdown complete", w.name)
}
