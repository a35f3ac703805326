// internal/notify/notifier.go

// Package notify relays build completion notices over email and SMS.
// Best-effort: a failed notification never affects the build result.
package notify

import (
	"context"
	"fmt"

	"autobuild/internal/common/config"
	stderrors "autobuild/internal/common/errors"
	"autobuild/internal/common/logger"
	"autobuild/internal/pipeline"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Interfaces over the AWS clients for mocking.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Notifier sends build completion notices through the channels enabled in
// config.
type Notifier struct {
	config    config.NotificationConfig
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger
}

// NewNotifier builds a notifier from the shared AWS configuration.
func NewNotifier(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (*Notifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return NewNotifierWithClients(cfg, ses.NewFromConfig(awsCfg), sns.NewFromConfig(awsCfg), log), nil
}

// NewNotifierWithClients injects the AWS clients directly. Used by tests.
func NewNotifierWithClients(cfg config.NotificationConfig, sesClient SESService, snsClient SNSService, log logger.Logger) *Notifier {
	return &Notifier{
		config:    cfg,
		sesClient: sesClient,
		snsClient: snsClient,
		logger:    log.WithFields(map[string]interface{}{"component": "notifier"}),
	}
}

// NotifyBuildFinished relays the outcome of exec through every enabled
// channel. Send failures are logged and returned, but callers treat them as
// soft.
func (n *Notifier) NotifyBuildFinished(ctx context.Context, exec *pipeline.BuildExecution) error {
	subject := fmt.Sprintf("Build %s: %s", exec.Status, exec.ServiceName)
	body := buildSummary(exec)

	var firstErr error

	if n.config.Email.Enabled {
		if err := n.sendEmail(ctx, subject, body); err != nil {
			n.logger.Error("completion email failed", map[string]interface{}{
				"execution_id": exec.ID,
				"error":        err.Error(),
			})
			firstErr = stderrors.NewNotificationSendFailedError("email", err)
		}
	}

	if n.config.SMS.Enabled {
		if err := n.sendSMS(ctx, subject); err != nil {
			n.logger.Error("completion SMS failed", map[string]interface{}{
				"execution_id": exec.ID,
				"error":        err.Error(),
			})
			if firstErr == nil {
				firstErr = stderrors.NewNotificationSendFailedError("sms", err)
			}
		}
	}

	return firstErr
}

func (n *Notifier) sendEmail(ctx context.Context, subject, body string) error {
	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{n.config.Email.ToEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.config.Email.FromEmail),
	})
	return err
}

func (n *Notifier) sendSMS(ctx context.Context, message string) error {
	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.config.SMS.TopicARN),
		Message:  aws.String(message),
	})
	return err
}

func buildSummary(exec *pipeline.BuildExecution) string {
	summary := fmt.Sprintf("Service %s finished with status %s in %d steps.",
		exec.ServiceName, exec.Status, len(exec.Steps))
	if exec.ServiceEndpoint != "" {
		summary += fmt.Sprintf(" Endpoint: %s", exec.ServiceEndpoint)
	}
	if exec.Error != "" {
		summary += fmt.Sprintf(" Error: %s", exec.Error)
	}
	return summary
}
