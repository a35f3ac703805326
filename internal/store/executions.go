// internal/store/executions.go

// Package store persists finished build executions: relational records in
// PostgreSQL and full execution traces in Elasticsearch.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"autobuild/internal/common/database"
	stderrors "autobuild/internal/common/errors"
	"autobuild/internal/common/logger"
	"autobuild/internal/pipeline"
)

const insertExecutionQuery = `
	INSERT INTO build_executions
		(id, service_name, status, steps, service_endpoint, error, started_at, finished_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const selectExecutionQuery = `
	SELECT id, service_name, status, steps, service_endpoint, error, started_at, finished_at
	FROM build_executions WHERE id = $1`

// ExecutionStore writes finished build executions to PostgreSQL.
type ExecutionStore struct {
	db     *database.PostgresClient
	logger logger.Logger
}

func NewExecutionStore(db *database.PostgresClient, log logger.Logger) *ExecutionStore {
	return &ExecutionStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "execution_store"}),
	}
}

// Save inserts one finalized execution record. Steps are stored as a JSON
// column.
func (s *ExecutionStore) Save(ctx context.Context, exec *pipeline.BuildExecution) error {
	steps, err := json.Marshal(exec.Steps)
	if err != nil {
		return stderrors.NewExecutionStoreFailedError(fmt.Errorf("marshal steps: %w", err))
	}

	_, err = s.db.Exec(ctx, insertExecutionQuery,
		exec.ID,
		exec.ServiceName,
		string(exec.Status),
		steps,
		exec.ServiceEndpoint,
		exec.Error,
		exec.StartedAt,
		exec.FinishedAt,
	)
	if err != nil {
		return stderrors.NewExecutionStoreFailedError(err)
	}

	s.logger.Debug("execution persisted", map[string]interface{}{
		"execution_id": exec.ID,
		"status":       string(exec.Status),
	})
	return nil
}

// Get loads one execution record by id.
func (s *ExecutionStore) Get(ctx context.Context, id string) (*pipeline.BuildExecution, error) {
	var (
		exec     pipeline.BuildExecution
		status   string
		steps    []byte
		endpoint sql.NullString
		execErr  sql.NullString
	)

	row := s.db.QueryRow(ctx, selectExecutionQuery, id)
	err := row.Scan(&exec.ID, &exec.ServiceName, &status, &steps,
		&endpoint, &execErr, &exec.StartedAt, &exec.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, stderrors.NewResourceNotFoundError("build_executions", id)
	}
	if err != nil {
		return nil, stderrors.NewExecutionStoreFailedError(err)
	}

	exec.Status = pipeline.BuildStatus(status)
	exec.ServiceEndpoint = endpoint.String
	exec.Error = execErr.String
	if err := json.Unmarshal(steps, &exec.Steps); err != nil {
		return nil, stderrors.NewExecutionStoreFailedError(fmt.Errorf("unmarshal steps: %w", err))
	}
	return &exec, nil
}
