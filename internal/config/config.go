package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	CORS       CORSConfig
	Auth       AuthConfig
	S3         S3Config
	Adapter    AdapterConfig
	Extraction ExtractionConfig
	Analysis   AnalysisConfig
	Pipeline   PipelineConfig
	Inference  InferenceConfig
	Tracing    TracingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings. Every origin is allowed; only the header
// allow-list is configurable.
type CORSConfig struct {
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// AuthConfig holds bearer-token verification settings. Verification is
// disabled when JWTSecret is empty.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// Enabled reports whether bearer tokens must be verified.
func (a *AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

// S3Config holds settings for reading stored documents.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Enabled reports whether a bucket is configured.
func (s *S3Config) Enabled() bool {
	return s.Bucket != ""
}

// TracingConfig holds OpenTelemetry exporter settings. Spans are only
// exported when Enabled is set.
type TracingConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	ServiceName      string  `mapstructure:"service_name"`
	ServiceVersion   string  `mapstructure:"service_version"`
	ExporterEndpoint string  `mapstructure:"exporter_endpoint"`
	ExporterProtocol string  `mapstructure:"exporter_protocol"`
	SamplingRatio    float64 `mapstructure:"sampling_ratio"`
}

// AdapterConfig holds format adapter limits.
type AdapterConfig struct {
	MaxFileSizeMB     int64 `mapstructure:"max_file_size_mb"`
	MaxImageDimension int   `mapstructure:"max_image_dimension"`
}

// ExtractionConfig holds extraction normalizer settings.
type ExtractionConfig struct {
	MaxTextChars int `mapstructure:"max_text_chars"`
}

// AnalysisConfig holds leak analysis settings.
type AnalysisConfig struct {
	MaxContentChars int     `mapstructure:"max_content_chars"`
	ReviewThreshold float64 `mapstructure:"review_threshold"`
}

// PipelineConfig holds pipeline fan-out settings.
type PipelineConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// ProviderConfig holds settings for a single LLM provider.
type ProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	BaseURL      string `mapstructure:"base_url"`
	MaxTokens    int    `mapstructure:"max_tokens"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// StageConfig holds the provider chain for one pipeline stage.
type StageConfig struct {
	Primary   ProviderConfig `mapstructure:"primary"`
	Secondary ProviderConfig `mapstructure:"secondary"`
}

// Providers returns the configured providers in fallback order.
func (s *StageConfig) Providers() []*ProviderConfig {
	var out []*ProviderConfig
	if s.Primary.Provider != "" {
		out = append(out, &s.Primary)
	}
	if s.Secondary.Provider != "" {
		out = append(out, &s.Secondary)
	}
	return out
}

// InferenceConfig holds per-stage provider settings plus shared gateway
// credentials that apply to any provider without its own.
type InferenceConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`

	Extraction StageConfig `mapstructure:"extraction"`
	Patterns   StageConfig `mapstructure:"patterns"`
	Reasoning  StageConfig `mapstructure:"reasoning"`
}

// ApplySharedCredentials copies the shared API key and base URL into every
// stage provider that does not set its own.
func (c *InferenceConfig) ApplySharedCredentials() {
	for _, stage := range []*StageConfig{&c.Extraction, &c.Patterns, &c.Reasoning} {
		for _, p := range stage.Providers() {
			if p.APIKey == "" {
				p.APIKey = c.APIKey
			}
			if p.BaseURL == "" {
				p.BaseURL = c.BaseURL
			}
		}
	}
}

var stageDefaults = map[string][2]string{
	"extraction": {"gemini", "gemini-2.5-flash"},
	"patterns":   {"gemini", "gemini-2.5-flash"},
	"reasoning":  {"openai", "gpt-5"},
}

// Load reads configuration from environment variables with the LEAKSCAN_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LEAKSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "300s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_headers", "authorization,x-client-info,apikey,content-type")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")

	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")

	v.SetDefault("adapter.max_file_size_mb", 20)
	v.SetDefault("adapter.max_image_dimension", 0)
	v.SetDefault("extraction.max_text_chars", 15000)
	v.SetDefault("analysis.max_content_chars", 100000)
	v.SetDefault("analysis.review_threshold", 0.6)
	v.SetDefault("pipeline.concurrency", 4)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "leakscan")
	v.SetDefault("tracing.service_version", "dev")
	v.SetDefault("tracing.exporter_endpoint", "")
	v.SetDefault("tracing.exporter_protocol", "grpc")
	v.SetDefault("tracing.sampling_ratio", 0.1)

	v.SetDefault("inference.api_key", "")
	v.SetDefault("inference.base_url", "")
	for stage, def := range stageDefaults {
		v.SetDefault("inference."+stage+".primary.provider", def[0])
		v.SetDefault("inference."+stage+".primary.default_model", def[1])
		v.SetDefault("inference."+stage+".primary.timeout_secs", 120)
		v.SetDefault("inference."+stage+".secondary.provider", "")
		v.SetDefault("inference."+stage+".secondary.timeout_secs", 120)
	}

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                 "LEAKSCAN_SERVER_PORT",
		"server.read_timeout":         "LEAKSCAN_SERVER_READ_TIMEOUT",
		"server.write_timeout":        "LEAKSCAN_SERVER_WRITE_TIMEOUT",
		"server.environment":          "LEAKSCAN_SERVER_ENVIRONMENT",
		"log.level":                   "LEAKSCAN_LOG_LEVEL",
		"log.format":                  "LEAKSCAN_LOG_FORMAT",
		"cors.allowed_headers":        "LEAKSCAN_CORS_ALLOWED_HEADERS",
		"auth.jwt_secret":             "LEAKSCAN_AUTH_JWT_SECRET",
		"auth.issuer":                 "LEAKSCAN_AUTH_ISSUER",
		"s3.region":                   "LEAKSCAN_S3_REGION",
		"s3.bucket":                   "LEAKSCAN_S3_BUCKET",
		"s3.endpoint":                 "LEAKSCAN_S3_ENDPOINT",
		"s3.access_key":               "LEAKSCAN_S3_ACCESS_KEY",
		"s3.secret_key":               "LEAKSCAN_S3_SECRET_KEY",
		"adapter.max_file_size_mb":    "LEAKSCAN_ADAPTER_MAX_FILE_SIZE_MB",
		"adapter.max_image_dimension": "LEAKSCAN_ADAPTER_MAX_IMAGE_DIMENSION",
		"extraction.max_text_chars":   "LEAKSCAN_EXTRACTION_MAX_TEXT_CHARS",
		"analysis.max_content_chars":  "LEAKSCAN_ANALYSIS_MAX_CONTENT_CHARS",
		"analysis.review_threshold":   "LEAKSCAN_ANALYSIS_REVIEW_THRESHOLD",
		"pipeline.concurrency":        "LEAKSCAN_PIPELINE_CONCURRENCY",
		"inference.api_key":           "LEAKSCAN_INFERENCE_API_KEY",
		"inference.base_url":          "LEAKSCAN_INFERENCE_BASE_URL",
		"tracing.enabled":             "LEAKSCAN_TRACING_ENABLED",
		"tracing.service_name":        "LEAKSCAN_TRACING_SERVICE_NAME",
		"tracing.service_version":     "LEAKSCAN_TRACING_SERVICE_VERSION",
		"tracing.exporter_endpoint":   "LEAKSCAN_TRACING_EXPORTER_ENDPOINT",
		"tracing.exporter_protocol":   "LEAKSCAN_TRACING_EXPORTER_PROTOCOL",
		"tracing.sampling_ratio":      "LEAKSCAN_TRACING_SAMPLING_RATIO",
	}
	for stage := range stageDefaults {
		for _, slot := range []string{"primary", "secondary"} {
			for _, field := range []string{"provider", "api_key", "default_model", "base_url", "max_tokens", "timeout_secs"} {
				key := "inference." + stage + "." + slot + "." + field
				envBindings[key] = "LEAKSCAN_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
			}
		}
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Hosting platforms set a PORT env var. Use it if LEAKSCAN_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("LEAKSCAN_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedHeaders: splitList(v.GetString("cors.allowed_headers")),
	}
	cfg.Auth = AuthConfig{
		JWTSecret: v.GetString("auth.jwt_secret"),
		Issuer:    v.GetString("auth.issuer"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Adapter = AdapterConfig{
		MaxFileSizeMB:     v.GetInt64("adapter.max_file_size_mb"),
		MaxImageDimension: v.GetInt("adapter.max_image_dimension"),
	}
	cfg.Extraction = ExtractionConfig{
		MaxTextChars: v.GetInt("extraction.max_text_chars"),
	}
	cfg.Analysis = AnalysisConfig{
		MaxContentChars: v.GetInt("analysis.max_content_chars"),
		ReviewThreshold: v.GetFloat64("analysis.review_threshold"),
	}
	cfg.Pipeline = PipelineConfig{
		Concurrency: v.GetInt("pipeline.concurrency"),
	}

	cfg.Inference = InferenceConfig{
		APIKey:     v.GetString("inference.api_key"),
		BaseURL:    v.GetString("inference.base_url"),
		Extraction: loadStage(v, "extraction"),
		Patterns:   loadStage(v, "patterns"),
		Reasoning:  loadStage(v, "reasoning"),
	}
	cfg.Inference.ApplySharedCredentials()
	cfg.Tracing = TracingConfig{
		Enabled:          v.GetBool("tracing.enabled"),
		ServiceName:      v.GetString("tracing.service_name"),
		ServiceVersion:   v.GetString("tracing.service_version"),
		ExporterEndpoint: v.GetString("tracing.exporter_endpoint"),
		ExporterProtocol: v.GetString("tracing.exporter_protocol"),
		SamplingRatio:    v.GetFloat64("tracing.sampling_ratio"),
	}

	return cfg, nil
}

func loadStage(v *viper.Viper, stage string) StageConfig {
	return StageConfig{
		Primary:   loadProvider(v, "inference."+stage+".primary"),
		Secondary: loadProvider(v, "inference."+stage+".secondary"),
	}
}

func loadProvider(v *viper.Viper, prefix string) ProviderConfig {
	return ProviderConfig{
		Provider:     v.GetString(prefix + ".provider"),
		APIKey:       v.GetString(prefix + ".api_key"),
		DefaultModel: v.GetString(prefix + ".default_model"),
		BaseURL:      v.GetString(prefix + ".base_url"),
		MaxTokens:    v.GetInt(prefix + ".max_tokens"),
		TimeoutSecs:  v.GetInt(prefix + ".timeout_secs"),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
