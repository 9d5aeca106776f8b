package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/telemetry/trace"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "console", cfg.Mode)
	assert.Equal(t, uint32(5), cfg.BreakerThreshold)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Zero(t, cfg.RequestsPerSecond)
	assert.Equal(t, "https://cloud.langfuse.com", cfg.Host)
	assert.Empty(t, cfg.PublicKey)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("TELEMETRY_ENABLED", "false")
	t.Setenv("TELEMETRY_MODE", "remote")
	t.Setenv("TELEMETRY_PUBLIC_KEY", "pk-env")
	t.Setenv("TELEMETRY_TIMEOUT", "3s")
	t.Setenv("TELEMETRY_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "remote", cfg.Mode)
	assert.Equal(t, "pk-env", cfg.PublicKey)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 2.5, cfg.RequestsPerSecond)
}

func TestNewWithNilConfigUsesDefaults(t *testing.T) {
	mgr, err := New(nil)
	require.NoError(t, err)
	require.NotNil(t, mgr)
	defer mgr.Shutdown(context.Background())

	tr, _ := mgr.StartTrace(context.Background(), "boot")
	tr.Finish()
	assert.Equal(t, 0, mgr.ActiveTraces())
}

func TestNewDisabledProducesInertManager(t *testing.T) {
	cfg := Default()
	cfg.Enabled = false

	mgr, err := New(cfg)
	require.NoError(t, err)
	defer mgr.Shutdown(context.Background())

	var seen *trace.Trace
	err = mgr.WithTrace(context.Background(), "ignored", func(ctx context.Context, tr *trace.Trace) error {
		seen = tr
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, 0, mgr.ActiveTraces())
}

func TestNewRejectsBadLogLevel(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "shouting"

	_, err := New(cfg)
	require.Error(t, err)
}
