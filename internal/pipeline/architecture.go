// internal/pipeline/architecture.go
package pipeline

import "strings"

// ClassifyArchitecture derives a ServiceArchitecture from a requirement
// using keyword-priority rules. Deterministic: the first matching rule in
// each category wins.
func ClassifyArchitecture(req *BuildRequirement) *ServiceArchitecture {
	features := strings.ToLower(strings.Join(req.Features, " "))
	description := strings.ToLower(req.Description)

	arch := &ServiceArchitecture{
		ServiceKind:          classifyKind(features),
		DatabaseRequired:     strings.Contains(features, "data") || strings.Contains(features, "store"),
		ExternalDependencies: classifyDependencies(description),
		SecurityLevel:        classifySecurity(features),
		ScalingStrategy:      classifyScaling(features),
	}
	return arch
}

func classifyKind(features string) ServiceKind {
	switch {
	case strings.Contains(features, "api") || strings.Contains(features, "endpoint"):
		return KindAPI
	case strings.Contains(features, "background") || strings.Contains(features, "scheduled"):
		return KindBackgroundService
	case strings.Contains(features, "notification") || strings.Contains(features, "message"):
		return KindNotificationService
	default:
		return KindGeneral
	}
}

func classifyDependencies(description string) []string {
	deps := []string{}
	if strings.Contains(description, "email") {
		deps = append(deps, "aws-ses")
	}
	if strings.Contains(description, "sms") {
		deps = append(deps, "aws-sns")
	}
	if strings.Contains(description, "ai") || strings.Contains(description, "chat") {
		deps = append(deps, "genai-api")
	}
	return deps
}

func classifySecurity(features string) SecurityLevel {
	// Sensitivity wins over an explicit "public" tag.
	switch {
	case strings.Contains(features, "sensitive") || strings.Contains(features, "personal"):
		return SecurityHigh
	case strings.Contains(features, "public"):
		return SecurityLow
	default:
		return SecurityMedium
	}
}

func classifyScaling(features string) ScalingStrategy {
	if strings.Contains(features, "high-volume") || strings.Contains(features, "scalable") {
		return ScalingHorizontal
	}
	return ScalingVertical
}
