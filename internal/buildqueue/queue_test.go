// internal/buildqueue/queue_test.go
package buildqueue

import (
	"context"
	"sync"
	"testing"
	"time"

	"autobuild/internal/common/logger"
	"autobuild/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type recordingRunner struct {
	mu       sync.Mutex
	order    []string
	panicFor string
}

func (r *recordingRunner) Execute(_ context.Context, req *pipeline.BuildRequirement) *pipeline.BuildExecution {
	if req.ServiceName == r.panicFor {
		panic("runner fault")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, req.ServiceName)

	exec := pipeline.NewBuildExecution(req.ServiceName)
	exec.Status = pipeline.StatusCompleted
	return exec
}

func (r *recordingRunner) processed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

func requirement(name string) *pipeline.BuildRequirement {
	return &pipeline.BuildRequirement{ServiceName: name, Description: "a service"}
}

// ==========================
// Queue Tests
// ==========================

func TestQueue_StatusReportsFIFOOrder(t *testing.T) {
	q := New()
	q.Enqueue(requirement("alpha"))
	q.Enqueue(requirement("beta"))
	q.Enqueue(requirement("gamma"))

	status := q.Status()

	assert.Equal(t, 3, status.PendingCount)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, status.PendingNames)
}

func TestQueue_DrainAllRunsInOrderAndEmpties(t *testing.T) {
	q := New()
	runner := &recordingRunner{}
	q.Enqueue(requirement("alpha"))
	q.Enqueue(requirement("beta"))
	q.Enqueue(requirement("gamma"))

	err := q.drainAll(context.Background(), func(ctx context.Context, req *pipeline.BuildRequirement) {
		runner.Execute(ctx, req)
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, runner.processed())
	assert.Equal(t, 0, q.Status().PendingCount)
}

func TestQueue_DrainAllHonorsCancellation(t *testing.T) {
	q := New()
	q.Enqueue(requirement("alpha"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := q.drainAll(ctx, func(context.Context, *pipeline.BuildRequirement) {
		t.Fatal("must not run after cancellation")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, q.Status().PendingCount)
}

func TestQueue_EmptyDrainIsANoOp(t *testing.T) {
	q := New()

	err := q.drainAll(context.Background(), func(context.Context, *pipeline.BuildRequirement) {
		t.Fatal("nothing to run")
	})

	require.NoError(t, err)
}

// ==========================
// Worker Tests
// ==========================

func TestWorker_DrainsPeriodically(t *testing.T) {
	q := New()
	runner := &recordingRunner{}
	worker := NewWorker(q, runner, 10*time.Millisecond, 50*time.Millisecond, logger.NewTestLogger(t))

	q.Enqueue(requirement("alpha"))
	q.Enqueue(requirement("beta"))

	ctx, cancel := context.WithCancel(context.Background())
	go worker.Start(ctx)

	require.Eventually(t, func() bool {
		return q.Status().PendingCount == 0 && len(runner.processed()) == 2
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"alpha", "beta"}, runner.processed())

	cancel()
	select {
	case <-worker.Done():
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_SurvivesRunnerFault(t *testing.T) {
	q := New()
	runner := &recordingRunner{panicFor: "bad"}
	worker := NewWorker(q, runner, 5*time.Millisecond, 10*time.Millisecond, logger.NewTestLogger(t))

	// The faulting entry is dequeued before it runs, so it is lost; the
	// worker backs off and the next cycle still drains later entries.
	q.Enqueue(requirement("bad"))
	q.Enqueue(requirement("good"))

	ctx, cancel := context.WithCancel(context.Background())
	go worker.Start(ctx)

	require.Eventually(t, func() bool {
		return len(runner.processed()) == 1 && q.Status().PendingCount == 0
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"good"}, runner.processed())

	cancel()
	<-worker.Done()
}
