// internal/buildqueue/queue.go

// Package buildqueue provides the FIFO of pending build requirements and the
// periodic worker that drains it through the orchestrator.
package buildqueue

import (
	"context"
	"sync"

	"autobuild/internal/common/metrics"
	"autobuild/internal/pipeline"
)

// Status is a point-in-time snapshot of the queue.
type Status struct {
	PendingCount int      `json:"pendingCount"`
	PendingNames []string `json:"pendingNames"`
}

// Queue is a FIFO of build requirements guarded by one lock. The drain
// worker holds that same lock for an entire drain cycle, so an Enqueue call
// issued mid-drain blocks until the cycle finishes. That trade-off keeps
// ordering strict and drains non-interleaved.
type Queue struct {
	mu      sync.Mutex
	pending []*pipeline.BuildRequirement
}

func New() *Queue {
	return &Queue{}
}

// Enqueue appends req to the back of the queue.
func (q *Queue) Enqueue(req *pipeline.BuildRequirement) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, req)
	metrics.QueuePending.Set(float64(len(q.pending)))
}

// Status reports the pending count and the ordered pending service names.
func (q *Queue) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()

	names := make([]string, 0, len(q.pending))
	for _, req := range q.pending {
		names = append(names, req.ServiceName)
	}
	return Status{
		PendingCount: len(q.pending),
		PendingNames: names,
	}
}

// drainAll dequeues and runs every pending requirement in order, holding the
// queue lock for the whole cycle. Each entry is removed before it runs, so a
// fault mid-cycle loses that entry rather than replaying it. Cancellation is
// honored between entries only.
func (q *Queue) drainAll(ctx context.Context, run func(ctx context.Context, req *pipeline.BuildRequirement)) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.pending) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		req := q.pending[0]
		q.pending = q.pending[1:]
		metrics.QueuePending.Set(float64(len(q.pending)))
		run(ctx, req)
	}
	return nil
}
