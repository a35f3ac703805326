// internal/pipeline/architecture_test.go
package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func createRequirement(name, description string, features ...string) *BuildRequirement {
	return &BuildRequirement{
		ServiceName: name,
		Description: description,
		Features:    features,
	}
}

func TestClassifyArchitecture_ServiceKind(t *testing.T) {
	tests := []struct {
		name     string
		features []string
		expected ServiceKind
	}{
		{"api wins", []string{"rest api", "background jobs"}, KindAPI},
		{"endpoint counts as api", []string{"public endpoint"}, KindAPI},
		{"background service", []string{"scheduled cleanup"}, KindBackgroundService},
		{"notification service", []string{"push notification"}, KindNotificationService},
		{"message counts as notification", []string{"message relay"}, KindNotificationService},
		{"general fallback", []string{"reporting"}, KindGeneral},
		{"no features", nil, KindGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arch := ClassifyArchitecture(createRequirement("svc", "a service", tt.features...))
			assert.Equal(t, tt.expected, arch.ServiceKind)
		})
	}
}

func TestClassifyArchitecture_SecurityLevel(t *testing.T) {
	tests := []struct {
		name     string
		features []string
		expected SecurityLevel
	}{
		{"sensitive wins over public", []string{"public api", "sensitive records"}, SecurityHigh},
		{"personal data is high", []string{"personal profile store"}, SecurityHigh},
		{"public is low", []string{"public catalog"}, SecurityLow},
		{"default is medium", []string{"internal tooling"}, SecurityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arch := ClassifyArchitecture(createRequirement("svc", "a service", tt.features...))
			assert.Equal(t, tt.expected, arch.SecurityLevel)
		})
	}
}

func TestClassifyArchitecture_ScalingAndDatabase(t *testing.T) {
	arch := ClassifyArchitecture(createRequirement("svc", "a service",
		"high-volume ingestion", "data retention"))
	assert.Equal(t, ScalingHorizontal, arch.ScalingStrategy)
	assert.True(t, arch.DatabaseRequired)

	arch = ClassifyArchitecture(createRequirement("svc", "a service", "reporting"))
	assert.Equal(t, ScalingVertical, arch.ScalingStrategy)
	assert.False(t, arch.DatabaseRequired)

	arch = ClassifyArchitecture(createRequirement("svc", "a service", "object store sync"))
	assert.True(t, arch.DatabaseRequired)
}

func TestClassifyArchitecture_ExternalDependencies(t *testing.T) {
	tests := []struct {
		name        string
		description string
		expected    []string
	}{
		{"email provider", "sends a welcome email to new users", []string{"aws-ses", "genai-api"}},
		{"sms provider", "sends sms reminders", []string{"aws-sns"}},
		{"ai provider", "an ai chat assistant", []string{"genai-api"}},
		{"none", "keeps ledger records in order", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arch := ClassifyArchitecture(createRequirement("svc", tt.description))
			assert.Equal(t, tt.expected, arch.ExternalDependencies)
		})
	}
}
