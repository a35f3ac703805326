// internal/common/errors/errors.go

// Package errors provides standardized error handling for the build pipeline
// and its external collaborators.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeGuardrailViolation   ErrorCode = "GUARDRAIL_VIOLATION"
	ErrCodeGuardrailHardBlock   ErrorCode = "GUARDRAIL_HARD_BLOCK"
	ErrCodePrivacyViolation     ErrorCode = "PRIVACY_VIOLATION"
	ErrCodeModerationRejected   ErrorCode = "MODERATION_REJECTED"
	ErrCodeModerationUnavailable ErrorCode = "MODERATION_UNAVAILABLE"

	ErrCodeRequirementInvalid ErrorCode = "REQUIREMENT_INVALID"

	ErrCodeArtifactWriteFailed ErrorCode = "ARTIFACT_WRITE_FAILED"
	ErrCodeDeploymentFailed    ErrorCode = "DEPLOYMENT_FAILED"

	ErrCodeWorkflowEngineUnavailable ErrorCode = "WORKFLOW_ENGINE_UNAVAILABLE"
	ErrCodeWorkflowSubmitFailed      ErrorCode = "WORKFLOW_SUBMIT_FAILED"
	ErrCodeWorkflowTimeout           ErrorCode = "WORKFLOW_TIMEOUT"

	ErrCodeExecutionStoreFailed ErrorCode = "EXECUTION_STORE_FAILED"
	ErrCodeTraceIndexFailed     ErrorCode = "TRACE_INDEX_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeBusinessRuleViolation ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeExternalService       ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout               ErrorCode = "TIMEOUT_ERROR"
	ErrCodeResourceNotFound      ErrorCode = "RESOURCE_NOT_FOUND"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewGuardrailViolationError creates a non-retryable content rule error.
func NewGuardrailViolationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGuardrailViolation,
		Message:   "Content violates guardrail rules",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewModerationRejectedError creates a non-retryable moderation rejection.
func NewModerationRejectedError(categories []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeModerationRejected,
		Message:   "Content rejected by external moderation",
		Details:   fmt.Sprintf("categories: %s", strings.Join(categories, ", ")),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewModerationUnavailableError creates a retryable moderation transport error.
// Callers treat this as a soft failure and downgrade it to a warning.
func NewModerationUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeModerationUnavailable,
		Message:   "External moderation service unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRequirementInvalidError creates a non-retryable payload validation error.
func NewRequirementInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequirementInvalid,
		Message:   "Build requirement payload is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewArtifactWriteFailedError creates a retryable artifact store error.
func NewArtifactWriteFailedError(name string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeArtifactWriteFailed,
		Message:   "Artifact store write failed",
		Details:   fmt.Sprintf("artifact: %s, error: %s", name, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDeploymentFailedError creates a retryable deployment error.
func NewDeploymentFailedError(serviceName string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDeploymentFailed,
		Message:   "Service deployment failed",
		Details:   fmt.Sprintf("service: %s, error: %s", serviceName, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWorkflowSubmitFailedError creates a retryable workflow submission error.
func NewWorkflowSubmitFailedError(workflow string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWorkflowSubmitFailed,
		Message:   "Workflow automation submission failed",
		Details:   fmt.Sprintf("workflow: %s, error: %s", workflow, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewExecutionStoreFailedError creates a retryable record store error.
func NewExecutionStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExecutionStoreFailed,
		Message:   "Build execution record insert failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTraceIndexFailedError creates a retryable trace indexing error.
func NewTraceIndexFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTraceIndexFailed,
		Message:   "Build trace indexing failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBusinessRuleViolation,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalService,
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResourceNotFound,
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeModerationUnavailable,
		ErrCodeArtifactWriteFailed,
		ErrCodeDeploymentFailed,
		ErrCodeWorkflowSubmitFailed,
		ErrCodeExecutionStoreFailed,
		ErrCodeTraceIndexFailed,
		ErrCodeNotificationSendFailed:
		return 3 // Retryable technical errors

	case ErrCodeWorkflowTimeout:
		return 2

	default:
		return 0 // Content/business errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "GUARDRAIL") || strings.Contains(codeStr, "PRIVACY") || strings.Contains(codeStr, "MODERATION"):
		return "GUARDRAIL"
	case strings.Contains(codeStr, "WORKFLOW"):
		return "WORKFLOW"
	case strings.Contains(codeStr, "ARTIFACT") || strings.Contains(codeStr, "DEPLOYMENT"):
		return "PIPELINE"
	case strings.Contains(codeStr, "STORE") || strings.Contains(codeStr, "INDEX"):
		return "STORAGE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
