// internal/pipeline/models.go

// Package pipeline implements the build pipeline: requirement analysis,
// architecture classification, artifact generation, validation, simulated
// deployment and workflow automation, orchestrated as a fixed stage sequence.
package pipeline

import (
	"time"

	"github.com/google/uuid"
)

// BuildStatus is the lifecycle state of a build execution.
type BuildStatus string

const (
	StatusInProgress BuildStatus = "IN_PROGRESS"
	StatusCompleted  BuildStatus = "COMPLETED"
	StatusFailed     BuildStatus = "FAILED"
)

// BuildRequirement describes the service a caller wants built.
type BuildRequirement struct {
	ServiceName   string            `json:"serviceName"`
	Description   string            `json:"description"`
	Features      []string          `json:"features"`
	Configuration map[string]string `json:"configuration,omitempty"`
}

// BuildStep records one stage attempt. Immutable once constructed.
type BuildStep struct {
	Name     string        `json:"name"`
	Success  bool          `json:"success"`
	Output   string        `json:"output"`
	Duration time.Duration `json:"duration"`
	Details  string        `json:"details,omitempty"`
}

// BuildExecution is the full record of one pipeline run. Steps are appended
// in execution order and never reordered or truncated; the record is
// finalized exactly once when the pipeline ends.
type BuildExecution struct {
	ID              string      `json:"id"`
	ServiceName     string      `json:"serviceName"`
	Status          BuildStatus `json:"status"`
	Steps           []BuildStep `json:"steps"`
	ServiceEndpoint string      `json:"serviceEndpoint,omitempty"`
	Error           string      `json:"error,omitempty"`
	StartedAt       time.Time   `json:"startedAt"`
	FinishedAt      time.Time   `json:"finishedAt,omitempty"`
}

// NewBuildExecution starts an execution record for requirement.
func NewBuildExecution(serviceName string) *BuildExecution {
	return &BuildExecution{
		ID:          uuid.New().String(),
		ServiceName: serviceName,
		Status:      StatusInProgress,
		Steps:       []BuildStep{},
		StartedAt:   time.Now().UTC(),
	}
}

// ServiceKind classifies what shape of service a requirement describes.
type ServiceKind string

const (
	KindAPI                 ServiceKind = "api"
	KindBackgroundService   ServiceKind = "background_service"
	KindNotificationService ServiceKind = "notification_service"
	KindGeneral             ServiceKind = "general"
)

// SecurityLevel is the classified data-sensitivity tier.
type SecurityLevel string

const (
	SecurityHigh   SecurityLevel = "high"
	SecurityMedium SecurityLevel = "medium"
	SecurityLow    SecurityLevel = "low"
)

// ScalingStrategy is the classified scaling approach.
type ScalingStrategy string

const (
	ScalingHorizontal ScalingStrategy = "horizontal"
	ScalingVertical   ScalingStrategy = "vertical"
)

// ServiceArchitecture is the classifier's verdict for a requirement.
type ServiceArchitecture struct {
	ServiceKind          ServiceKind     `json:"serviceKind"`
	DatabaseRequired     bool            `json:"databaseRequired"`
	ExternalDependencies []string        `json:"externalDependencies"`
	SecurityLevel        SecurityLevel   `json:"securityLevel"`
	ScalingStrategy      ScalingStrategy `json:"scalingStrategy"`
}

// GeneratedArtifacts holds the three generated source texts.
type GeneratedArtifacts struct {
	Controller string `json:"controller"`
	Model      string `json:"model"`
	Service    string `json:"service"`
}

// Combined returns the artifact texts as one body for validation.
func (g *GeneratedArtifacts) Combined() string {
	return g.Controller + "\n" + g.Model + "\n" + g.Service
}

// DeploymentResult is the outcome of a simulated service registration.
type DeploymentResult struct {
	Success  bool   `json:"success"`
	Endpoint string `json:"endpoint,omitempty"`
	Message  string `json:"message,omitempty"`
}
