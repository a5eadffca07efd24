// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/jmylchreest/refyne-catalog/internal/brand"
	"github.com/jmylchreest/refyne-catalog/internal/constants"
	"github.com/jmylchreest/refyne-catalog/internal/images"
	"github.com/jmylchreest/refyne-catalog/internal/llm"
	"github.com/jmylchreest/refyne-catalog/internal/pipeline"
	"github.com/jmylchreest/refyne-catalog/internal/schema"
)

// Config holds all configuration for the service and the convert CLI.
type Config struct {
	// Server
	Port           int
	BaseURL        string
	CORSOrigins    []string
	MaxUploadBytes int64
	RequestTimeout time.Duration
	ConvertTimeout time.Duration

	// IdleTimeout stops the server after this long without requests. 0 disables.
	IdleTimeout time.Duration

	// UploadsPerMinute limits inspect/convert uploads per client IP. 0 is unlimited.
	UploadsPerMinute int

	// Copy generation
	LLMProvider    string
	LLMModel       string
	LLMAPIKey      string
	LLMBaseURL     string
	LLMMaxTokens   int
	LLMTemperature float64
	CopyLanguage   string
	CopyStyle      string

	// Images
	ImagePolicy    images.Policy
	PlaceholderURL string
	ImageSearchURL string // Empty disables identifier search
	FetchTimeout   time.Duration
	UserAgent      string

	// Pipeline
	BrandMode   brand.Mode
	Concurrency int
	RowFailure  pipeline.FailureMode
	Overrides   schema.Overrides // CATALOG_MAP_<ROLE>

	// Storage configuration (S3-compatible) for archiving converted files
	StorageEnabled   bool
	StorageEndpoint  string // AWS_ENDPOINT_URL_S3
	StorageAccessKey string // AWS_ACCESS_KEY_ID
	StorageSecretKey string // AWS_SECRET_ACCESS_KEY
	StorageBucket    string
	StorageRegion    string

	// ArchiveOutputs stores every converted CSV when storage is enabled.
	ArchiveOutputs bool
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present; variables already set in
// the environment win over it.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:           getEnvInt("PORT", 8080),
		BaseURL:        getEnv("BASE_URL", "http://localhost:8080"),
		CORSOrigins:    getEnvSlice("CORS_ORIGINS", []string{"*"}),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", int(constants.DefaultMaxUploadBytes))),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		ConvertTimeout: getEnvDuration("CONVERT_TIMEOUT", constants.DefaultConvertTimeout),

		UploadsPerMinute: getEnvInt("UPLOADS_PER_MINUTE", constants.DefaultUploadsPerMinute),
		IdleTimeout:      getEnvDuration("IDLE_TIMEOUT", 0),

		LLMProvider:    strings.ToLower(getEnv("CATALOG_LLM_PROVIDER", llm.ProviderOpenAI)),
		LLMModel:       getEnv("CATALOG_LLM_MODEL", ""),
		LLMBaseURL:     getEnv("CATALOG_LLM_BASE_URL", ""),
		LLMMaxTokens:   getEnvInt("CATALOG_LLM_MAX_TOKENS", llm.DefaultMaxTokens),
		LLMTemperature: getEnvFloat("CATALOG_LLM_TEMPERATURE", llm.DefaultTemperature),
		CopyLanguage:   getEnv("CATALOG_COPY_LANGUAGE", "English"),
		CopyStyle:      getEnv("CATALOG_COPY_STYLE", ""),

		PlaceholderURL: getEnv("CATALOG_PLACEHOLDER_URL", images.PlaceholderURL),
		ImageSearchURL: os.Getenv("CATALOG_IMAGE_SEARCH_URL"),
		FetchTimeout:   getEnvDuration("CATALOG_FETCH_TIMEOUT", constants.DefaultFetchTimeout),
		UserAgent:      getEnv("CATALOG_USER_AGENT", images.DefaultUserAgent),

		Concurrency: constants.ClampConcurrency(getEnvInt("CATALOG_CONCURRENCY", constants.DefaultConcurrency)),

		StorageEndpoint:  getEnv("AWS_ENDPOINT_URL_S3", ""),
		StorageAccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		StorageSecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		StorageBucket:    getEnvWithFallback("BUCKET_NAME", "STORAGE_BUCKET", ""),
		StorageRegion:    getEnv("AWS_REGION", "auto"),
	}

	// Search is on by default; setting the variable to "" turns it off.
	if _, set := os.LookupEnv("CATALOG_IMAGE_SEARCH_URL"); !set {
		cfg.ImageSearchURL = images.DefaultSearchURL
	}

	cfg.StorageEnabled = cfg.StorageBucket != "" && cfg.StorageEndpoint != ""
	cfg.ArchiveOutputs = cfg.StorageEnabled && getEnvBool("CATALOG_ARCHIVE_OUTPUTS", true)

	if !llm.IsValidProvider(cfg.LLMProvider) {
		return nil, fmt.Errorf("CATALOG_LLM_PROVIDER: unknown provider %q (valid: %s)",
			cfg.LLMProvider, strings.Join(llm.ValidProviders(), ", "))
	}
	cfg.LLMAPIKey = getEnvWithFallback("CATALOG_LLM_API_KEY", providerKeyEnv(cfg.LLMProvider), "")

	var err error
	if cfg.ImagePolicy, err = images.ParsePolicy(os.Getenv("CATALOG_IMAGE_POLICY")); err != nil {
		return nil, fmt.Errorf("CATALOG_IMAGE_POLICY: %w", err)
	}
	if cfg.BrandMode, err = brand.ParseMode(os.Getenv("CATALOG_BRAND_MODE")); err != nil {
		return nil, fmt.Errorf("CATALOG_BRAND_MODE: %w", err)
	}
	if cfg.RowFailure, err = pipeline.ParseFailureMode(os.Getenv("CATALOG_ROW_FAILURE")); err != nil {
		return nil, fmt.Errorf("CATALOG_ROW_FAILURE: %w", err)
	}

	cfg.Overrides = make(schema.Overrides)
	for _, role := range schema.Roles {
		if col := strings.TrimSpace(os.Getenv(OverrideEnv(role))); col != "" {
			cfg.Overrides[role] = col
		}
	}

	return cfg, nil
}

// OverrideEnv names the variable that pins role to a column.
func OverrideEnv(role schema.Role) string {
	return "CATALOG_MAP_" + strings.ToUpper(string(role))
}

// LLM returns the generator configuration.
func (c *Config) LLM() llm.Config {
	return llm.Config{
		Provider:    c.LLMProvider,
		Model:       c.LLMModel,
		APIKey:      c.LLMAPIKey,
		BaseURL:     c.LLMBaseURL,
		MaxTokens:   c.LLMMaxTokens,
		Temperature: c.LLMTemperature,
	}
}

// PipelineDefaults returns the options every conversion starts from.
func (c *Config) PipelineDefaults() pipeline.Options {
	return pipeline.Options{
		Overrides:      c.Overrides,
		BrandMode:      c.BrandMode,
		ImagePolicy:    c.ImagePolicy,
		PlaceholderURL: c.PlaceholderURL,
		Concurrency:    c.Concurrency,
		FailureMode:    c.RowFailure,
	}
}

// providerKeyEnv is the provider's conventional API key variable.
func providerKeyEnv(provider string) string {
	switch provider {
	case llm.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case llm.ProviderOpenRouter:
		return "OPENROUTER_API_KEY"
	case llm.ProviderOllama:
		return "OLLAMA_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// loadDotEnv loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat returns the environment variable as float64 or a default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvBool returns the environment variable as bool or a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "true" || lower == "1" || lower == "yes"
	}
	return defaultValue
}

// getEnvDuration returns the environment variable as duration or a default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvSlice returns the environment variable as a trimmed, comma-separated
// slice or a default.
func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := parts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}

// getEnvWithFallback returns the primary env var, or fallback env var, or default.
func getEnvWithFallback(primary, fallback, defaultValue string) string {
	if value := os.Getenv(primary); value != "" {
		return value
	}
	if value := os.Getenv(fallback); value != "" {
		return value
	}
	return defaultValue
}
