// internal/buildqueue/worker.go
package buildqueue

import (
	"context"
	"fmt"
	"time"

	"autobuild/internal/common/logger"
	"autobuild/internal/common/metrics"
	"autobuild/internal/pipeline"
)

// BuildRunner executes one requirement to completion.
type BuildRunner interface {
	Execute(ctx context.Context, req *pipeline.BuildRequirement) *pipeline.BuildExecution
}

// Worker periodically drains the queue through a BuildRunner. One worker per
// queue; it never terminates because of a single build's fault — a drain
// fault is logged and followed by a longer backoff before the next cycle.
type Worker struct {
	queue    *Queue
	runner   BuildRunner
	interval time.Duration
	backoff  time.Duration
	logger   logger.Logger
	done     chan struct{}
}

func NewWorker(queue *Queue, runner BuildRunner, interval, backoff time.Duration, log logger.Logger) *Worker {
	return &Worker{
		queue:    queue,
		runner:   runner,
		interval: interval,
		backoff:  backoff,
		logger:   log.WithFields(map[string]interface{}{"component": "queue_worker"}),
		done:     make(chan struct{}),
	}
}

// Start runs the drain loop until ctx is canceled. Blocking; callers launch
// it in a goroutine and wait on Done for shutdown.
func (w *Worker) Start(ctx context.Context) {
	defer close(w.done)

	w.logger.Info("queue worker started", map[string]interface{}{
		"interval": w.interval.String(),
		"backoff":  w.backoff.String(),
	})

	wait := w.interval
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("queue worker stopping", nil)
			return
		case <-time.After(wait):
		}

		wait = w.interval
		if err := w.safeDrain(ctx); err != nil {
			if ctx.Err() != nil {
				w.logger.Info("queue worker stopping", nil)
				return
			}
			w.logger.Error("drain cycle failed, backing off", map[string]interface{}{
				"error":   err.Error(),
				"backoff": w.backoff.String(),
			})
			wait = w.backoff
		}
	}
}

// Done is closed once the worker has fully stopped.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// safeDrain runs one drain cycle, converting any panic into an error so the
// loop survives it.
func (w *Worker) safeDrain(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("drain fault: %v", r)
		}
	}()

	metrics.DrainCycles.Inc()
	return w.queue.drainAll(ctx, func(ctx context.Context, req *pipeline.BuildRequirement) {
		exec := w.runner.Execute(ctx, req)
		w.logger.Info("queued build processed", map[string]interface{}{
			"service_name": req.ServiceName,
			"status":       string(exec.Status),
		})
	})
}
