package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/arahumroh/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type exportedRecord struct {
	body     string
	severity log.Severity
	attrs    map[string]string
}

// memoryExporter keeps exported records for assertions
type memoryExporter struct {
	mu      sync.Mutex
	records []exportedRecord
}

func (e *memoryExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		rec := exportedRecord{
			body:     r.Body().AsString(),
			severity: r.Severity(),
			attrs:    map[string]string{},
		}
		r.WalkAttributes(func(kv log.KeyValue) bool {
			rec.attrs[kv.Key] = kv.Value.String()
			return true
		})
		e.records = append(e.records, rec)
	}
	return nil
}

func (e *memoryExporter) Shutdown(context.Context) error   { return nil }
func (e *memoryExporter) ForceFlush(context.Context) error { return nil }

func (e *memoryExporter) Records() []exportedRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]exportedRecord(nil), e.records...)
}

func newTestLoggerProvider(exp sdklog.Exporter) *LoggerProvider {
	return &LoggerProvider{
		provider:    sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exp))),
		logger:      zap.NewNop(),
		serviceName: "arah-umroh-test",
	}
}

func TestNewLoggerProvider_Disabled(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), config.TelemetryConfig{LogsEnabled: false}, nil)
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.Shutdown(context.Background()))

	base := zap.NewNop()
	assert.Same(t, base, lp.Bridge(base, zapcore.InfoLevel))
}

func TestNewLoggerProvider_Enabled(t *testing.T) {
	// The exporter dials lazily, so construction needs no collector.
	lp, err := NewLoggerProvider(context.Background(), config.TelemetryConfig{
		LogsEnabled:       true,
		CollectorEndpoint: "127.0.0.1:4317",
		Insecure:          true,
		ServiceName:       "arah-umroh-test",
	}, nil)
	require.NoError(t, err)
	assert.True(t, lp.IsEnabled())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = lp.Shutdown(ctx)
}

func TestLoggerProvider_Bridge(t *testing.T) {
	exp := &memoryExporter{}
	lp := newTestLoggerProvider(exp)
	t.Cleanup(func() { _ = lp.Shutdown(context.Background()) })

	core, observed := observer.New(zapcore.DebugLevel)
	bridged := lp.Bridge(zap.New(core), zapcore.InfoLevel)

	bridged.Debug("reconcile tick")
	bridged.Info("Payment notification applied", zap.String("order_id", "ORD-1"))
	bridged.With(zap.String("component", "webhook")).Warn("Failed to archive payment notification")

	// The local core still sees everything.
	assert.Equal(t, 3, observed.Len())

	records := exp.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "Payment notification applied", records[0].body)
	assert.Equal(t, log.SeverityInfo, records[0].severity)
	assert.Equal(t, "ORD-1", records[0].attrs["order_id"])
	assert.Equal(t, "Failed to archive payment notification", records[1].body)
	assert.Equal(t, log.SeverityWarn, records[1].severity)
	assert.Equal(t, "webhook", records[1].attrs["component"])
}

func TestLevelFilterCore(t *testing.T) {
	inner, observed := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}

	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))

	logger := zap.New(core.With([]zapcore.Field{zap.String("k", "v")}))
	logger.Info("dropped")
	logger.Error("kept")

	require.Equal(t, 1, observed.Len())
	entry := observed.All()[0]
	assert.Equal(t, "kept", entry.Message)
	assert.Equal(t, "v", entry.ContextMap()["k"])
}
