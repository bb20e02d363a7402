// Package worker runs background re-indexing without overlapping runs.
package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// ReindexQueue serializes re-index requests. Requests arriving while a run is
// in flight coalesce into at most one pending run, so a burst of uploads
// triggers a single rebuild after the current one finishes.
type ReindexQueue struct {
	run     func(ctx context.Context) error
	pending chan struct{}
	logger  *zap.Logger

	wg   sync.WaitGroup
	stop context.CancelFunc
}

// NewReindexQueue creates a queue that invokes run for each coalesced request.
func NewReindexQueue(run func(ctx context.Context) error, logger *zap.Logger) *ReindexQueue {
	return &ReindexQueue{
		run:     run,
		pending: make(chan struct{}, 1),
		logger:  logger,
	}
}

// Start launches the worker goroutine. It exits when ctx is cancelled or Stop
// is called.
func (q *ReindexQueue) Start(ctx context.Context) {
	ctx, q.stop = context.WithCancel(ctx)
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-q.pending:
				q.logger.Info("re-index started")
				if err := q.run(ctx); err != nil {
					q.logger.Error("re-index failed", zap.Error(err))
				} else {
					q.logger.Info("re-index finished")
				}
			}
		}
	}()
}

// Enqueue requests a re-index. It never blocks: if a request is already
// pending, this one folds into it.
func (q *ReindexQueue) Enqueue() {
	select {
	case q.pending <- struct{}{}:
	default:
	}
}

// Stop cancels the worker and waits for any in-flight run to return.
func (q *ReindexQueue) Stop() {
	if q.stop != nil {
		q.stop()
	}
	q.wg.Wait()
}
