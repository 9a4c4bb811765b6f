package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leakscan/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"authorization", "x-client-info", "apikey", "content-type"}, cfg.CORS.AllowedHeaders)
	assert.False(t, cfg.Auth.Enabled())
	assert.False(t, cfg.S3.Enabled())
	assert.Equal(t, int64(20), cfg.Adapter.MaxFileSizeMB)
	assert.Equal(t, 15000, cfg.Extraction.MaxTextChars)
	assert.Equal(t, 0.6, cfg.Analysis.ReviewThreshold)
	assert.Equal(t, 4, cfg.Pipeline.Concurrency)

	assert.Equal(t, "gemini", cfg.Inference.Extraction.Primary.Provider)
	assert.Equal(t, "gemini", cfg.Inference.Patterns.Primary.Provider)
	assert.Equal(t, "openai", cfg.Inference.Reasoning.Primary.Provider)
	assert.Equal(t, "gpt-5", cfg.Inference.Reasoning.Primary.DefaultModel)
	assert.Len(t, cfg.Inference.Reasoning.Providers(), 1)

	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "leakscan", cfg.Tracing.ServiceName)
	assert.Equal(t, "grpc", cfg.Tracing.ExporterProtocol)
	assert.Equal(t, 0.1, cfg.Tracing.SamplingRatio)
}

func TestLoad_Tracing(t *testing.T) {
	t.Setenv("LEAKSCAN_TRACING_ENABLED", "true")
	t.Setenv("LEAKSCAN_TRACING_EXPORTER_ENDPOINT", "collector:4318")
	t.Setenv("LEAKSCAN_TRACING_EXPORTER_PROTOCOL", "http")
	t.Setenv("LEAKSCAN_TRACING_SAMPLING_RATIO", "0.5")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "collector:4318", cfg.Tracing.ExporterEndpoint)
	assert.Equal(t, "http", cfg.Tracing.ExporterProtocol)
	assert.Equal(t, 0.5, cfg.Tracing.SamplingRatio)
}

func TestLoad_SharedCredentials(t *testing.T) {
	t.Setenv("LEAKSCAN_INFERENCE_API_KEY", "shared-key")
	t.Setenv("LEAKSCAN_INFERENCE_BASE_URL", "https://gateway.example.com/v1")
	t.Setenv("LEAKSCAN_INFERENCE_REASONING_PRIMARY_API_KEY", "own-key")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "shared-key", cfg.Inference.Extraction.Primary.APIKey)
	assert.Equal(t, "https://gateway.example.com/v1", cfg.Inference.Patterns.Primary.BaseURL)
	assert.Equal(t, "own-key", cfg.Inference.Reasoning.Primary.APIKey)
}

func TestLoad_SecondaryProvider(t *testing.T) {
	t.Setenv("LEAKSCAN_INFERENCE_PATTERNS_SECONDARY_PROVIDER", "claude")
	t.Setenv("LEAKSCAN_INFERENCE_PATTERNS_SECONDARY_DEFAULT_MODEL", "claude-sonnet-4-20250514")

	cfg, err := config.Load()
	require.NoError(t, err)

	providers := cfg.Inference.Patterns.Providers()
	require.Len(t, providers, 2)
	assert.Equal(t, "gemini", providers[0].Provider)
	assert.Equal(t, "claude", providers[1].Provider)
	assert.Equal(t, 120, providers[1].TimeoutSecs)
}

func TestLoad_PortOverride(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)
}

func TestLoad_AuthAndStorage(t *testing.T) {
	t.Setenv("LEAKSCAN_AUTH_JWT_SECRET", "secret")
	t.Setenv("LEAKSCAN_S3_BUCKET", "documents")
	t.Setenv("LEAKSCAN_CORS_ALLOWED_HEADERS", "authorization, content-type")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.True(t, cfg.Auth.Enabled())
	assert.True(t, cfg.S3.Enabled())
	assert.Equal(t, []string{"authorization", "content-type"}, cfg.CORS.AllowedHeaders)
}
