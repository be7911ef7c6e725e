package telemetry

import (
	"context"
	"runtime/pprof"
	"testing"

	"github.com/arahumroh/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(config.TelemetryConfig{ProfilingEnabled: false}, nil)
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_RequiresServerAddress(t *testing.T) {
	_, err := NewProfiler(config.TelemetryConfig{ProfilingEnabled: true, ServiceName: "arah-umroh"}, nil)
	assert.ErrorContains(t, err, "server address is required")
}

func TestWithProfilingLabels(t *testing.T) {
	t.Run("labels are visible inside fn", func(t *testing.T) {
		var operation string
		var found bool
		WithProfilingLabels(context.Background(), func(ctx context.Context) {
			operation, found = pprof.Label(ctx, "operation")
		}, "operation", "reconcile")

		assert.True(t, found)
		assert.Equal(t, "reconcile", operation)
	})

	t.Run("odd pairs run fn unlabeled", func(t *testing.T) {
		called := false
		WithProfilingLabels(context.Background(), func(ctx context.Context) {
			called = true
			_, found := pprof.Label(ctx, "operation")
			assert.False(t, found)
		}, "operation")
		assert.True(t, called)
	})
}
