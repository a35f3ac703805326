// internal/pipeline/workflow.go
package pipeline

import (
	"context"
	"fmt"
)

// WorkflowNode is one node of an automation workflow definition.
type WorkflowNode struct {
	Type   string            `json:"type"`
	Name   string            `json:"name"`
	Config map[string]string `json:"config,omitempty"`
}

// WorkflowDefinition is the automation workflow handed to the external
// workflow engine after a service is built.
type WorkflowDefinition struct {
	Name  string         `json:"name"`
	Nodes []WorkflowNode `json:"nodes"`
}

// WorkflowSubmitter hands a workflow definition to the automation engine.
// Fire-and-forget: the pipeline never waits for workflow completion.
type WorkflowSubmitter interface {
	Submit(ctx context.Context, def *WorkflowDefinition) error
}

// BuildAutomationWorkflow derives the trigger/process/call/notify node chain
// for a freshly built service.
func BuildAutomationWorkflow(req *BuildRequirement, arch *ServiceArchitecture) *WorkflowDefinition {
	slug := Slugify(req.ServiceName)

	nodes := []WorkflowNode{
		{
			Type: "trigger",
			Name: slug + "-trigger",
			Config: map[string]string{
				"event": "service.deployed",
			},
		},
		{
			Type: "process",
			Name: slug + "-process",
			Config: map[string]string{
				"serviceKind": string(arch.ServiceKind),
			},
		},
		{
			Type: "call",
			Name: slug + "-call",
			Config: map[string]string{
				"endpoint": EndpointFor(req.ServiceName),
			},
		},
		{
			Type: "notify",
			Name: slug + "-notify",
			Config: map[string]string{
				"message": fmt.Sprintf("service %s is live", req.ServiceName),
			},
		},
	}

	return &WorkflowDefinition{
		Name:  slug + "-automation",
		Nodes: nodes,
	}
}
