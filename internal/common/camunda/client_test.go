package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mock-data-forge/internal/common/config"
	apperrors "mock-data-forge/internal/common/errors"
	"mock-data-forge/internal/common/logger"
)

func newTestClient(t *testing.T, maxRetries int) *Client {
	return &Client{
		config: &ClientConfig{
			ConnectionTimeout: time.Second,
			RetryConfig: &RetryConfig{
				MaxRetries: maxRetries,
				BaseDelay:  time.Millisecond,
				MaxDelay:   4 * time.Millisecond,
			},
		},
		logger: logger.NewTestLogger(t),
	}
}

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		err  string
		want bool
	}{
		{err: "rpc error: code = Unavailable desc = connection error", want: true},
		{err: "dial tcp 127.0.0.1:26500: connect: connection refused", want: true},
		{err: "context deadline exceeded", want: true},
		{err: "rpc error: code = NotFound desc = no such job", want: false},
		{err: "rpc error: code = PermissionDenied", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.err, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableZeebeError(errors.New(tt.err)))
		})
	}
}

func TestExecuteWithRetry_RecoversFromTransientErrors(t *testing.T) {
	c := newTestClient(t, 5)

	calls := 0
	err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}, "topology")

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_GivesUp(t *testing.T) {
	c := newTestClient(t, 2)

	calls := 0
	err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("rpc error: code = Unavailable")
	}, "topology")

	require.Error(t, err)
	assert.Equal(t, 3, calls)

	stdErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeSinkConnectionFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Contains(t, stdErr.Details, "after 3 attempts")
}

func TestExecuteWithRetry_PermanentErrorNotRetried(t *testing.T) {
	c := newTestClient(t, 5)

	calls := 0
	err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("permission denied")
	}, "topology")

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	stdErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInternal, stdErr.Code)
}

func TestExecuteWithRetry_Cancelled(t *testing.T) {
	c := newTestClient(t, 5)
	c.config.RetryConfig.BaseDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	err := c.ExecuteWithRetry(ctx, func(ctx context.Context) error {
		cancel()
		return errors.New("timeout")
	}, "topology")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigFrom(t *testing.T) {
	c := ConfigFrom(config.CamundaConfig{BrokerAddress: "zeebe:26500", RequestTimeout: 2500})
	assert.Equal(t, "zeebe:26500", c.GatewayAddress)
	assert.True(t, c.UsePlaintextConnection)
	assert.Equal(t, 2500*time.Millisecond, c.ConnectionTimeout)

	c = ConfigFrom(config.CamundaConfig{BrokerAddress: "zeebe:26500"})
	assert.Equal(t, 10*time.Second, c.ConnectionTimeout)
}

func TestStartWorker_Disabled(t *testing.T) {
	w := StartWorker(nil, "generate-mock-data", config.WorkerConfig{Enabled: false}, nil, logger.NewTestLogger(t))
	assert.Nil(t, w)
	w.Stop()
}
