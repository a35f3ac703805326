// internal/pipeline/deploy.go
package pipeline

import (
	"context"
	"fmt"
	"time"

	stderrors "autobuild/internal/common/errors"
	"autobuild/internal/common/logger"
)

// Deployer registers a built service and reports its endpoint.
type Deployer interface {
	Register(ctx context.Context, serviceName string) (*DeploymentResult, error)
}

// Simulator is a Deployer that mimics a registration round-trip with a fixed
// processing delay. It always succeeds unless a failure is injected.
type Simulator struct {
	delay   time.Duration
	failure error
	logger  logger.Logger
}

func NewSimulator(delay time.Duration, log logger.Logger) *Simulator {
	return &Simulator{
		delay:  delay,
		logger: log.WithFields(map[string]interface{}{"component": "deploy_simulator"}),
	}
}

// InjectFailure makes every subsequent Register call fail with err. Passing
// nil restores normal behavior. Test hook.
func (s *Simulator) InjectFailure(err error) {
	s.failure = err
}

func (s *Simulator) Register(ctx context.Context, serviceName string) (*DeploymentResult, error) {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if s.failure != nil {
		s.logger.Warn("simulated deployment failed", map[string]interface{}{
			"service_name": serviceName,
		})
		return &DeploymentResult{
			Success: false,
			Message: s.failure.Error(),
		}, stderrors.NewDeploymentFailedError(serviceName, s.failure)
	}

	endpoint := EndpointFor(serviceName)
	s.logger.Info("service registered", map[string]interface{}{
		"service_name": serviceName,
		"endpoint":     endpoint,
	})
	return &DeploymentResult{
		Success:  true,
		Endpoint: endpoint,
		Message:  fmt.Sprintf("service %s registered", serviceName),
	}, nil
}

// EndpointFor synthesizes the service endpoint from its name.
func EndpointFor(serviceName string) string {
	return fmt.Sprintf("https://services.internal/%s/v1", Slugify(serviceName))
}
