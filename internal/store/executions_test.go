// internal/store/executions_test.go
package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"autobuild/internal/common/database"
	stderrors "autobuild/internal/common/errors"
	"autobuild/internal/common/logger"
	"autobuild/internal/pipeline"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestStore(t *testing.T) (*ExecutionStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	client := &database.PostgresClient{DB: db}
	return NewExecutionStore(client, logger.NewTestLogger(t)), mock
}

func createFinishedExecution() *pipeline.BuildExecution {
	exec := pipeline.NewBuildExecution("order-tracker")
	exec.Status = pipeline.StatusCompleted
	exec.ServiceEndpoint = "https://services.internal/order-tracker/v1"
	exec.Steps = []pipeline.BuildStep{
		{Name: "analyze", Success: true, Output: "score=60 quality=acceptable"},
		{Name: "architect", Success: true, Output: "kind=api"},
	}
	exec.FinishedAt = exec.StartedAt.Add(2 * time.Second)
	return exec
}

// ==========================
// Save Tests
// ==========================

func TestExecutionStore_Save(t *testing.T) {
	store, mock := createTestStore(t)
	exec := createFinishedExecution()
	steps, err := json.Marshal(exec.Steps)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO build_executions").
		WithArgs(exec.ID, exec.ServiceName, "COMPLETED", steps,
			exec.ServiceEndpoint, exec.Error, exec.StartedAt, exec.FinishedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Save(context.Background(), exec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutionStore_Save_DatabaseError(t *testing.T) {
	store, mock := createTestStore(t)
	exec := createFinishedExecution()

	mock.ExpectExec("INSERT INTO build_executions").
		WillReturnError(assert.AnError)

	err := store.Save(context.Background(), exec)

	require.Error(t, err)
	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeExecutionStoreFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

// ==========================
// Get Tests
// ==========================

func TestExecutionStore_Get(t *testing.T) {
	store, mock := createTestStore(t)
	want := createFinishedExecution()
	steps, err := json.Marshal(want.Steps)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{
		"id", "service_name", "status", "steps",
		"service_endpoint", "error", "started_at", "finished_at",
	}).AddRow(want.ID, want.ServiceName, "COMPLETED", steps,
		want.ServiceEndpoint, "", want.StartedAt, want.FinishedAt)

	mock.ExpectQuery("SELECT .+ FROM build_executions WHERE id").
		WithArgs(want.ID).
		WillReturnRows(rows)

	got, err := store.Get(context.Background(), want.ID)

	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, pipeline.StatusCompleted, got.Status)
	assert.Equal(t, want.Steps, got.Steps)
	assert.Equal(t, want.ServiceEndpoint, got.ServiceEndpoint)
}

func TestExecutionStore_Get_NotFound(t *testing.T) {
	store, mock := createTestStore(t)

	mock.ExpectQuery("SELECT .+ FROM build_executions WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.Get(context.Background(), "missing")

	require.Error(t, err)
	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeResourceNotFound, stdErr.Code)
}
