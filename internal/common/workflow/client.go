// internal/common/workflow/client.go

// Package workflow wraps the Zeebe gRPC client used to hand automation
// workflows to the engine after a build completes.
package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"autobuild/internal/common/errors"
	"autobuild/internal/common/logger"
	"autobuild/internal/pipeline"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client wraps the Zeebe gRPC client with error mapping and retry logic.
type Client struct {
	client      zbc.Client
	config      *ClientConfig
	messageName string
	logger      logger.Logger
}

// ClientConfig holds the Zeebe connection settings.
type ClientConfig struct {
	GatewayAddress         string
	MessageName            string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RequestTimeout         time.Duration
	RetryConfig            *RetryConfig
}

// RetryConfig defines retry behavior for transient failures.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var defaultRetryConfig = &RetryConfig{
	MaxRetries: 3,
	BaseDelay:  1 * time.Second,
	MaxDelay:   10 * time.Second,
}

// NewClient connects to the Zeebe gateway at address with defaults suitable
// for local setups.
func NewClient(address, messageName string, log logger.Logger) (*Client, error) {
	return NewClientWithConfig(&ClientConfig{
		GatewayAddress:         address,
		MessageName:            messageName,
		UsePlaintextConnection: true,
		ConnectionTimeout:      10 * time.Second,
		RequestTimeout:         30 * time.Second,
		RetryConfig:            defaultRetryConfig,
	}, log)
}

// NewClientWithConfig connects using explicit configuration and verifies the
// broker topology before returning.
func NewClientWithConfig(config *ClientConfig, log logger.Logger) (*Client, error) {
	if config.RetryConfig == nil {
		config.RetryConfig = defaultRetryConfig
	}

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         config.GatewayAddress,
		UsePlaintextConnection: config.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.ConnectionTimeout)
	defer cancel()

	if _, err := zeebeClient.NewTopologyCommand().Send(ctx); err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", config.GatewayAddress, err)
	}

	return &Client{
		client:      zeebeClient,
		config:      config,
		messageName: config.MessageName,
		logger:      log.WithFields(map[string]interface{}{"component": "workflow_client"}),
	}, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck verifies the broker still answers topology requests.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// Submit publishes the workflow definition to the engine as a message,
// correlated on the workflow name. Fire-and-forget: the caller never waits
// for workflow completion.
func (c *Client) Submit(ctx context.Context, def *pipeline.WorkflowDefinition) error {
	variables := map[string]interface{}{
		"workflowName": def.Name,
		"nodes":        def.Nodes,
	}

	_, err := c.executeWithRetry(ctx, "publish-automation", func(ctx context.Context) (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
		defer cancel()

		cmd, err := c.client.NewPublishMessageCommand().
			MessageName(c.messageName).
			CorrelationKey(def.Name).
			VariablesFromMap(variables)
		if err != nil {
			return nil, err
		}
		return cmd.Send(ctx)
	})
	if err != nil {
		return errors.NewWorkflowSubmitFailedError(def.Name, err)
	}

	c.logger.Info("automation workflow submitted", map[string]interface{}{
		"workflow": def.Name,
		"nodes":    len(def.Nodes),
	})
	return nil
}

// executeWithRetry runs a Zeebe command with exponential backoff. Only
// transient errors are retried.
func (c *Client) executeWithRetry(
	ctx context.Context,
	operationName string,
	commandFunc func(context.Context) (interface{}, error),
) (interface{}, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.RetryConfig.MaxRetries; attempt++ {
		result, err := commandFunc(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !isRetryableZeebeError(err) || attempt == c.config.RetryConfig.MaxRetries {
			return nil, c.mapZeebeError(err, operationName, attempt)
		}

		delay := c.config.RetryConfig.BaseDelay * time.Duration(1<<attempt)
		if delay > c.config.RetryConfig.MaxDelay {
			delay = c.config.RetryConfig.MaxDelay
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("operation %s cancelled after %d attempts: %w", operationName, attempt, ctx.Err())
		}
	}

	return nil, fmt.Errorf("operation %s failed after %d retries: %w", operationName, c.config.RetryConfig.MaxRetries, lastErr)
}

// isRetryableZeebeError checks if the error is transient and worth retrying.
func isRetryableZeebeError(err error) bool {
	msg := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// mapZeebeError converts Zeebe errors into standardized application errors.
func (c *Client) mapZeebeError(err error, operation string, attempt int) error {
	msg := err.Error()
	lowerMsg := strings.ToLower(msg)

	enhancedMsg := fmt.Sprintf("Zeebe operation '%s' failed", operation)
	if attempt > 0 {
		enhancedMsg += fmt.Sprintf(" after %d attempts", attempt)
	}

	switch {
	case strings.Contains(lowerMsg, "timeout") ||
		strings.Contains(lowerMsg, "deadline exceeded"):
		return errors.NewTimeoutError("zeebe", fmt.Errorf("%s: %s", enhancedMsg, msg))

	case strings.Contains(lowerMsg, "not found"):
		return errors.NewResourceNotFoundError("zeebe", fmt.Sprintf("%s: %s", enhancedMsg, msg))

	case strings.Contains(lowerMsg, "already exists"):
		return errors.NewBusinessRuleError(
			fmt.Sprintf("%s: %s", enhancedMsg, msg),
			"Resource already exists",
		)

	default:
		return errors.NewExternalServiceError("zeebe", fmt.Errorf("%s: %s", enhancedMsg, msg))
	}
}
