// internal/store/traces.go
package store

import (
	"bytes"
	"context"
	"encoding/json"

	"autobuild/internal/common/database"
	stderrors "autobuild/internal/common/errors"
	"autobuild/internal/common/logger"
	"autobuild/internal/pipeline"
)

// TraceIndexer ships full execution traces to Elasticsearch for search and
// dashboarding. Best-effort: callers treat indexing failures as soft.
type TraceIndexer struct {
	client *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewTraceIndexer(client *database.ElasticsearchClient, index string, log logger.Logger) *TraceIndexer {
	return &TraceIndexer{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "trace_indexer"}),
	}
}

// Index writes the execution document under its execution id.
func (t *TraceIndexer) Index(ctx context.Context, exec *pipeline.BuildExecution) error {
	doc, err := json.Marshal(exec)
	if err != nil {
		return stderrors.NewTraceIndexFailedError(err)
	}

	if err := t.client.Index(ctx, t.index, exec.ID, bytes.NewReader(doc)); err != nil {
		return stderrors.NewTraceIndexFailedError(err)
	}

	t.logger.Debug("execution trace indexed", map[string]interface{}{
		"execution_id": exec.ID,
		"index":        t.index,
	})
	return nil
}
