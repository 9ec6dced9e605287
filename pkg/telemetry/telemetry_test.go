package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobalConfig() {
	globalConfig = nil
	configOnce = sync.Once{}
}

func TestInit_Disabled(t *testing.T) {
	resetGlobalConfig()
	t.Setenv("OTEL_ENABLED", "false")

	shutdown, err := Init(context.Background())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.False(t, Enabled())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SERVICE_NAME", "twiggy-test")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "http/protobuf")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "Authorization=Bearer abc, X-Team=tools")

	cfg := LoadFromEnv()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "twiggy-test", cfg.ServiceName)
	assert.Equal(t, "http/protobuf", cfg.Protocol)
	assert.Equal(t, "Bearer abc", cfg.Headers["Authorization"])
	assert.Equal(t, "tools", cfg.Headers["X-Team"])
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("OTEL_SERVICE_NAME", "")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "")

	cfg := LoadFromEnv()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "twiggy", cfg.ServiceName)
	assert.Equal(t, "grpc", cfg.Protocol)
}

func TestParseKeyValuePairs(t *testing.T) {
	assert.Empty(t, parseKeyValuePairs(""))
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, parseKeyValuePairs("a=1,b=2"))
	assert.Equal(t, map[string]string{"a": "x=y"}, parseKeyValuePairs("a=x=y"))
}

func TestCreateSampler(t *testing.T) {
	assert.Equal(t, "AlwaysOnSampler", createSampler(&Config{Sampler: "always_on"}).Description())
	assert.Equal(t, "AlwaysOffSampler", createSampler(&Config{Sampler: "always_off"}).Description())
	assert.Contains(t,
		createSampler(&Config{Sampler: "traceidratio", SamplerArg: "0.5"}).Description(),
		"0.5")
}
