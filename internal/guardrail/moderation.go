// internal/guardrail/moderation.go
package guardrail

import (
	"context"
	"time"

	stderrors "autobuild/internal/common/errors"
	"autobuild/internal/common/httpclient"
	"autobuild/internal/common/logger"
)

// HTTPModerator calls an external content-moderation HTTP API. Errors from
// the transport surface as a retryable StandardError; the engine treats them
// as soft failures.
type HTTPModerator struct {
	client  *httpclient.Client
	baseURL string
	apiKey  string
	logger  logger.Logger
}

// NewHTTPModerator builds a moderation client against baseURL. The timeout
// bounds each individual moderation call.
func NewHTTPModerator(baseURL, apiKey string, timeout time.Duration, log logger.Logger) *HTTPModerator {
	return &HTTPModerator{
		client:  httpclient.NewClient(timeout),
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  log.WithFields(map[string]interface{}{"component": "moderation_client"}),
	}
}

type moderationRequest struct {
	Input string `json:"input"`
}

type moderationResponse struct {
	Flagged    bool     `json:"flagged"`
	Categories []string `json:"categories"`
}

// Moderate submits text for external review. A flagged response maps to an
// unapproved verdict carrying the flagged categories.
func (m *HTTPModerator) Moderate(ctx context.Context, text string) (*ModerationVerdict, error) {
	headers := map[string]string{}
	if m.apiKey != "" {
		headers["Authorization"] = "Bearer " + m.apiKey
	}

	var resp moderationResponse
	if err := m.client.PostJSON(ctx, m.baseURL+"/v1/moderations", headers, moderationRequest{Input: text}, &resp); err != nil {
		m.logger.Warn("moderation request failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, stderrors.NewModerationUnavailableError(err)
	}

	return &ModerationVerdict{
		Approved:   !resp.Flagged,
		Categories: resp.Categories,
	}, nil
}
