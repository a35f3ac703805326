// internal/pipeline/orchestrator.go
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"autobuild/internal/common/logger"
	"autobuild/internal/common/metrics"
	"autobuild/internal/common/observability"
	"autobuild/internal/guardrail"
)

// Stage names, in execution order.
const (
	StageAnalyze   = "analyze"
	StageArchitect = "architect"
	StageGenerate  = "generate"
	StageValidate  = "validate"
	StageDeploy    = "deploy"
	StageAutomate  = "automate"
)

// validateScoreMinimum is the score the generated artifacts must reach at
// the validate stage.
const validateScoreMinimum = 70

// PostBuildHook runs after an execution is finalized. Hook failures are
// logged and never affect the execution result.
type PostBuildHook func(ctx context.Context, exec *BuildExecution)

// Orchestrator drives one build requirement through the fixed stage
// sequence. Stateless between runs; safe for concurrent Execute calls.
type Orchestrator struct {
	engine    *guardrail.Engine
	generator *ArtifactGenerator
	deployer  Deployer
	submitter WorkflowSubmitter
	obs       *observability.Observability
	logger    logger.Logger
	hooks     []PostBuildHook
}

func NewOrchestrator(
	engine *guardrail.Engine,
	generator *ArtifactGenerator,
	deployer Deployer,
	submitter WorkflowSubmitter,
	obs *observability.Observability,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		engine:    engine,
		generator: generator,
		deployer:  deployer,
		submitter: submitter,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "orchestrator"}),
	}
}

// AddHook registers a post-build hook. Not safe to call concurrently with
// Execute; register hooks during composition.
func (o *Orchestrator) AddHook(hook PostBuildHook) {
	o.hooks = append(o.hooks, hook)
}

// Execute runs the full pipeline for req and always returns a finalized
// BuildExecution. Unhandled faults are converted into a failed execution;
// Execute never panics through to the caller.
func (o *Orchestrator) Execute(ctx context.Context, req *BuildRequirement) (exec *BuildExecution) {
	exec = NewBuildExecution(req.ServiceName)
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			exec.Status = StatusFailed
			exec.Error = fmt.Sprintf("unhandled fault: %v", r)
			o.logger.Error("pipeline fault", map[string]interface{}{
				"execution_id": exec.ID,
				"service_name": exec.ServiceName,
				"fault":        fmt.Sprintf("%v", r),
			})
		}
		exec.FinishedAt = time.Now().UTC()
		o.recordOutcome(ctx, exec, time.Since(started))
		o.runHooks(ctx, exec)
	}()

	o.logger.Info("build started", map[string]interface{}{
		"execution_id": exec.ID,
		"service_name": req.ServiceName,
	})

	// Analyze is the only stage allowed to halt the pipeline.
	analyzeResult := o.runAnalyze(ctx, req, exec)
	if !analyzeResult.IsValid {
		exec.Status = StatusFailed
		exec.Error = strings.Join(analyzeResult.Errors, "; ")
		return exec
	}

	arch := o.runArchitect(ctx, req, exec)
	artifacts := o.runGenerate(ctx, req, exec)
	o.runValidate(ctx, artifacts, exec)
	o.runDeploy(ctx, req, exec)
	o.runAutomate(ctx, req, arch, exec)

	exec.Status = StatusCompleted
	exec.ServiceEndpoint = EndpointFor(req.ServiceName)
	return exec
}

func (o *Orchestrator) runAnalyze(ctx context.Context, req *BuildRequirement, exec *BuildExecution) *guardrail.Result {
	started := time.Now()
	text := req.ServiceName + " " + req.Description + " " + strings.Join(req.Features, " ")
	result := o.engine.Validate(ctx, text, guardrail.Options{})
	metrics.GuardrailScore.Observe(float64(result.Score))

	o.appendStep(exec, BuildStep{
		Name:     StageAnalyze,
		Success:  result.IsValid,
		Output:   fmt.Sprintf("score=%d quality=%s", result.Score, result.QualityLevel),
		Duration: time.Since(started),
		Details:  strings.Join(append(result.Errors, result.Warnings...), "; "),
	})
	return result
}

func (o *Orchestrator) runArchitect(ctx context.Context, req *BuildRequirement, exec *BuildExecution) *ServiceArchitecture {
	started := time.Now()
	arch := ClassifyArchitecture(req)

	o.appendStep(exec, BuildStep{
		Name:    StageArchitect,
		Success: true,
		Output: fmt.Sprintf("kind=%s security=%s scaling=%s database=%t",
			arch.ServiceKind, arch.SecurityLevel, arch.ScalingStrategy, arch.DatabaseRequired),
		Duration: time.Since(started),
		Details:  strings.Join(arch.ExternalDependencies, ", "),
	})
	return arch
}

func (o *Orchestrator) runGenerate(ctx context.Context, req *BuildRequirement, exec *BuildExecution) *GeneratedArtifacts {
	started := time.Now()
	artifacts, err := o.generator.Generate(ctx, req)

	step := BuildStep{
		Name:     StageGenerate,
		Success:  err == nil,
		Duration: time.Since(started),
	}
	if err != nil {
		step.Output = "artifact generation failed"
		step.Details = err.Error()
		artifacts = &GeneratedArtifacts{}
	} else {
		step.Output = fmt.Sprintf("generated 3 artifacts (%d bytes)", len(artifacts.Combined()))
	}
	o.appendStep(exec, step)
	return artifacts
}

func (o *Orchestrator) runValidate(ctx context.Context, artifacts *GeneratedArtifacts, exec *BuildExecution) {
	started := time.Now()
	// Generated code is dense text; judge it at the most permissive level.
	result := o.engine.Validate(ctx, artifacts.Combined(), guardrail.Options{
		ExperienceLevel: guardrail.LevelPrincipal,
	})
	metrics.GuardrailScore.Observe(float64(result.Score))

	o.appendStep(exec, BuildStep{
		Name:     StageValidate,
		Success:  result.IsValid && result.Score >= validateScoreMinimum,
		Output:   fmt.Sprintf("score=%d quality=%s", result.Score, result.QualityLevel),
		Duration: time.Since(started),
		Details:  strings.Join(append(result.Errors, result.Warnings...), "; "),
	})
}

func (o *Orchestrator) runDeploy(ctx context.Context, req *BuildRequirement, exec *BuildExecution) {
	started := time.Now()
	result, err := o.deployer.Register(ctx, req.ServiceName)

	step := BuildStep{
		Name:     StageDeploy,
		Success:  err == nil && result != nil && result.Success,
		Duration: time.Since(started),
	}
	switch {
	case err != nil:
		step.Output = "deployment failed"
		step.Details = err.Error()
		if result != nil && result.Message != "" {
			step.Details = result.Message
		}
	case result != nil:
		step.Output = result.Message
		step.Details = result.Endpoint
	}
	o.appendStep(exec, step)
}

func (o *Orchestrator) runAutomate(ctx context.Context, req *BuildRequirement, arch *ServiceArchitecture, exec *BuildExecution) {
	started := time.Now()
	def := BuildAutomationWorkflow(req, arch)
	err := o.submitter.Submit(ctx, def)

	step := BuildStep{
		Name:     StageAutomate,
		Success:  err == nil,
		Output:   fmt.Sprintf("workflow %s with %d nodes", def.Name, len(def.Nodes)),
		Duration: time.Since(started),
	}
	if err != nil {
		step.Details = err.Error()
	}
	o.appendStep(exec, step)
}

func (o *Orchestrator) appendStep(exec *BuildExecution, step BuildStep) {
	exec.Steps = append(exec.Steps, step)
	metrics.StageDuration.WithLabelValues(step.Name).Observe(step.Duration.Seconds())
	if !step.Success {
		metrics.StageFailures.WithLabelValues(step.Name).Inc()
		o.logger.Warn("stage failed", map[string]interface{}{
			"execution_id": exec.ID,
			"stage":        step.Name,
			"details":      step.Details,
		})
	}
}

func (o *Orchestrator) recordOutcome(ctx context.Context, exec *BuildExecution, elapsed time.Duration) {
	status := strings.ToLower(string(exec.Status))
	metrics.BuildsTotal.WithLabelValues(status).Inc()
	if o.obs != nil {
		o.obs.RecordBuildProcessed(ctx, status)
		o.obs.RecordBuildDuration(ctx, elapsed, status)
	}
	o.logger.Info("build finished", map[string]interface{}{
		"execution_id": exec.ID,
		"service_name": exec.ServiceName,
		"status":       string(exec.Status),
		"steps":        len(exec.Steps),
		"duration_ms":  elapsed.Milliseconds(),
	})
}

func (o *Orchestrator) runHooks(ctx context.Context, exec *BuildExecution) {
	for _, hook := range o.hooks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					o.logger.Warn("post-build hook fault", map[string]interface{}{
						"execution_id": exec.ID,
						"fault":        fmt.Sprintf("%v", r),
					})
				}
			}()
			hook(ctx, exec)
		}()
	}
}
