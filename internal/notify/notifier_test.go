// internal/notify/notifier_test.go
package notify

import (
	"context"
	"errors"
	"testing"

	"autobuild/internal/common/config"
	stderrors "autobuild/internal/common/errors"
	"autobuild/internal/common/logger"
	"autobuild/internal/pipeline"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type mockSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (m *mockSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{}, nil
}

type mockSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (m *mockSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &sns.PublishOutput{}, nil
}

func createTestConfig(emailEnabled, smsEnabled bool) config.NotificationConfig {
	var cfg config.NotificationConfig
	cfg.Email.Enabled = emailEnabled
	cfg.Email.FromEmail = "builds@example.com"
	cfg.Email.ToEmail = "platform@example.com"
	cfg.SMS.Enabled = smsEnabled
	cfg.SMS.TopicARN = "arn:aws:sns:eu-west-1:000000000000:builds"
	cfg.AWS.Region = "eu-west-1"
	return cfg
}

func completedExecution() *pipeline.BuildExecution {
	exec := pipeline.NewBuildExecution("order-tracker")
	exec.Status = pipeline.StatusCompleted
	exec.ServiceEndpoint = "https://services.internal/order-tracker/v1"
	return exec
}

// ==========================
// Notifier Tests
// ==========================

func TestNotifier_NotifyBuildFinished_AllChannels(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	n := NewNotifierWithClients(createTestConfig(true, true), sesMock, snsMock, logger.NewTestLogger(t))

	err := n.NotifyBuildFinished(context.Background(), completedExecution())

	require.NoError(t, err)
	require.Len(t, sesMock.inputs, 1)
	assert.Equal(t, []string{"platform@example.com"}, sesMock.inputs[0].Destination.ToAddresses)
	assert.Equal(t, "Build COMPLETED: order-tracker", *sesMock.inputs[0].Message.Subject.Data)
	assert.Contains(t, *sesMock.inputs[0].Message.Body.Text.Data, "order-tracker")

	require.Len(t, snsMock.inputs, 1)
	assert.Equal(t, "arn:aws:sns:eu-west-1:000000000000:builds", *snsMock.inputs[0].TopicArn)
}

func TestNotifier_NotifyBuildFinished_DisabledChannelsSkipped(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	n := NewNotifierWithClients(createTestConfig(false, false), sesMock, snsMock, logger.NewTestLogger(t))

	err := n.NotifyBuildFinished(context.Background(), completedExecution())

	require.NoError(t, err)
	assert.Empty(t, sesMock.inputs)
	assert.Empty(t, snsMock.inputs)
}

func TestNotifier_NotifyBuildFinished_EmailFailureStillSendsSMS(t *testing.T) {
	sesMock := &mockSES{err: errors.New("ses throttled")}
	snsMock := &mockSNS{}
	n := NewNotifierWithClients(createTestConfig(true, true), sesMock, snsMock, logger.NewTestLogger(t))

	err := n.NotifyBuildFinished(context.Background(), completedExecution())

	require.Error(t, err)
	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeNotificationSendFailed, stdErr.Code)
	// SMS still went out.
	assert.Len(t, snsMock.inputs, 1)
}
