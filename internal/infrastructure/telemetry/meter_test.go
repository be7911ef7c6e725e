package telemetry

import (
	"context"
	"testing"

	"github.com/arahumroh/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), config.TelemetryConfig{}, nil)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("payment"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestNewMeterProvider_Enabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), config.TelemetryConfig{
		OTLPMetricsEnabled: true,
		CollectorEndpoint:  "127.0.0.1:4317",
		Insecure:           true,
		ServiceName:        "arah-umroh-test",
	}, nil)
	require.NoError(t, err)
	assert.True(t, mp.IsEnabled())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = mp.Shutdown(ctx)
}

func TestRegisterDBPoolMetrics(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(3)
	require.NoError(t, sqlDB.Ping())

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	reg, err := RegisterDBPoolMetrics(provider.Meter("test"), sqlDB)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	gauges := map[string]metricdata.Gauge[int64]{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if g, ok := m.Data.(metricdata.Gauge[int64]); ok {
				gauges[m.Name] = g
			}
		}
	}

	require.Contains(t, gauges, "db_pool_connections_max")
	assert.Equal(t, int64(3), gauges["db_pool_connections_max"].DataPoints[0].Value)

	require.Contains(t, gauges, "db_pool_connections")
	states := map[string]int64{}
	for _, dp := range gauges["db_pool_connections"].DataPoints {
		state, _ := dp.Attributes.Value(attrDBState)
		states[state.AsString()] = dp.Value
	}
	assert.Equal(t, int64(1), states["open"])
	assert.Equal(t, states["open"], states["idle"]+states["in_use"])

	require.NoError(t, reg.Unregister())
}
