// Package config provides application configuration management.
// It loads settings from environment variables (optionally via a .env file)
// and validates them before the server starts.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default portal locations.
const (
	DefaultPortalBaseURL = "https://portal.myschoolct.com"
	DefaultPortalAPIPath = "/api/rest/search/global"
)

// Supported LLM provider names.
const (
	ProviderGemini   = "gemini"
	ProviderGroq     = "groq"
	ProviderCerebras = "cerebras"
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration
	ServerName      string

	// Data Configuration
	DataDir             string
	ChatRetention       time.Duration // Rows older than this are deleted (0 = keep forever)
	DataCleanupInterval time.Duration

	Portal PortalConfig

	// LLM Configuration (translation + greeting responder)
	LLMEnabled          bool
	LLMProviders        []string // Ordered provider chain, e.g. ["gemini", "groq"]
	GeminiAPIKey        string
	GroqAPIKey          string
	CerebrasAPIKey      string
	GeminiModels        []string // Empty = genai package defaults
	GroqModels          []string
	CerebrasModels      []string
	LLMRateBurst        float64 // Per-session burst for LLM calls
	LLMRateRefillPerMin float64

	// LINE channel (optional front-end)
	LineEnabled       bool
	LineChannelToken  string
	LineChannelSecret string

	// R2 backup (optional)
	R2Enabled         bool
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2SnapshotKey     string
	R2LockKey         string
	R2LockTTL         time.Duration
	R2BackupInterval  time.Duration

	// Sentry (Better Stack Errors)
	SentryEnabled     bool
	SentryToken       string
	SentryHost        string
	SentryEnvironment string
	SentrySampleRate  float64

	// Better Stack Logs
	BetterStackEnabled  bool
	BetterStackToken    string
	BetterStackEndpoint string

	// Metrics Authentication
	MetricsAuthEnabled bool
	MetricsUsername    string
	MetricsPassword    string
}

// PortalConfig configures access to the content portal's search index.
type PortalConfig struct {
	BaseURL        string // Used for deep links
	APIURL         string // Global search endpoint
	ResultSize     int
	RequestTimeout time.Duration
	FallbackTopics []string
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	baseURL := strings.TrimRight(getEnv(EnvPortalBaseURL, DefaultPortalBaseURL), "/")

	cfg := &Config{
		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),
		ServerName:      getEnv(EnvServerName, ""),

		DataDir:             getEnv(EnvDataDir, getDefaultDataDir()),
		ChatRetention:       getDurationEnv(EnvChatRetention, 90*24*time.Hour),
		DataCleanupInterval: getDurationEnv(EnvDataCleanupInterval, 24*time.Hour),

		Portal: PortalConfig{
			BaseURL:        baseURL,
			APIURL:         getEnv(EnvPortalAPIURL, baseURL+DefaultPortalAPIPath),
			ResultSize:     getIntEnv(EnvPortalResultSize, 6),
			RequestTimeout: getDurationEnv(EnvPortalTimeout, PortalRequest),
			FallbackTopics: getListEnv(EnvPortalFallbackTopics, []string{"animals", "flowers", "shapes", "numbers"}),
		},

		LLMEnabled:          getBoolEnv(EnvLLMEnabled, false),
		LLMProviders:        getListEnv(EnvLLMProviders, []string{ProviderGemini, ProviderGroq}),
		GeminiAPIKey:        getEnv(EnvGeminiAPIKey, ""),
		GroqAPIKey:          getEnv(EnvGroqAPIKey, ""),
		CerebrasAPIKey:      getEnv(EnvCerebrasAPIKey, ""),
		GeminiModels:        getListEnv(EnvGeminiModels, nil),
		GroqModels:          getListEnv(EnvGroqModels, nil),
		CerebrasModels:      getListEnv(EnvCerebrasModels, nil),
		LLMRateBurst:        getFloatEnv(EnvLLMRateBurst, 10),
		LLMRateRefillPerMin: getFloatEnv(EnvLLMRateRefillPerMin, 5),

		LineEnabled:       getBoolEnv(EnvLineEnabled, false),
		LineChannelToken:  getEnv(EnvLineChannelAccessToken, ""),
		LineChannelSecret: getEnv(EnvLineChannelSecret, ""),

		R2Enabled:         getBoolEnv(EnvR2Enabled, false),
		R2AccountID:       getEnv(EnvR2AccountID, ""),
		R2AccessKeyID:     getEnv(EnvR2AccessKeyID, ""),
		R2SecretAccessKey: getEnv(EnvR2SecretAccessKey, ""),
		R2BucketName:      getEnv(EnvR2BucketName, ""),
		R2SnapshotKey:     getEnv(EnvR2SnapshotKey, "snapshots/chat.db.zst"),
		R2LockKey:         getEnv(EnvR2LockKey, "locks/backup.lock"),
		R2LockTTL:         getDurationEnv(EnvR2LockTTL, 10*time.Minute),
		R2BackupInterval:  getDurationEnv(EnvR2BackupInterval, 6*time.Hour),

		SentryEnabled:     getBoolEnv(EnvSentryEnabled, false),
		SentryToken:       getEnv(EnvSentryToken, ""),
		SentryHost:        getEnv(EnvSentryHost, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),

		BetterStackEnabled:  getBoolEnv(EnvBetterStackEnabled, false),
		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),

		MetricsAuthEnabled: getBoolEnv(EnvMetricsAuthEnabled, false),
		MetricsUsername:    getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword:    getEnv(EnvMetricsPassword, ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration consistency. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvPort))
	}
	if c.DataDir == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvDataDir))
	}
	if c.ChatRetention < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative, got %v", EnvChatRetention, c.ChatRetention))
	}
	if err := c.Portal.Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.LLMEnabled {
		for _, p := range c.LLMProviders {
			if !slices.Contains([]string{ProviderGemini, ProviderGroq, ProviderCerebras}, p) {
				errs = append(errs, fmt.Errorf("%s: unknown provider %q", EnvLLMProviders, p))
			}
		}
		if !c.HasLLMProvider() {
			errs = append(errs, fmt.Errorf("%s requires at least one provider API key", EnvLLMEnabled))
		}
		if c.LLMRateBurst <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvLLMRateBurst, c.LLMRateBurst))
		}
	}

	if c.LineEnabled {
		if c.LineChannelToken == "" {
			errs = append(errs, fmt.Errorf("%s is required when %s=true", EnvLineChannelAccessToken, EnvLineEnabled))
		}
		if c.LineChannelSecret == "" {
			errs = append(errs, fmt.Errorf("%s is required when %s=true", EnvLineChannelSecret, EnvLineEnabled))
		}
	}

	if c.R2Enabled {
		for key, v := range map[string]string{
			EnvR2AccountID:       c.R2AccountID,
			EnvR2AccessKeyID:     c.R2AccessKeyID,
			EnvR2SecretAccessKey: c.R2SecretAccessKey,
			EnvR2BucketName:      c.R2BucketName,
		} {
			if v == "" {
				errs = append(errs, fmt.Errorf("%s is required when %s=true", key, EnvR2Enabled))
			}
		}
		if c.R2BackupInterval <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvR2BackupInterval, c.R2BackupInterval))
		}
	}

	if c.SentryEnabled && (c.SentryToken == "" || c.SentryHost == "") {
		errs = append(errs, fmt.Errorf("%s and %s are required when %s=true", EnvSentryToken, EnvSentryHost, EnvSentryEnabled))
	}
	if c.BetterStackEnabled && c.BetterStackToken == "" {
		errs = append(errs, fmt.Errorf("%s is required when %s=true", EnvBetterStackToken, EnvBetterStackEnabled))
	}
	if c.MetricsAuthEnabled && c.MetricsPassword == "" {
		errs = append(errs, fmt.Errorf("%s is required when %s=true", EnvMetricsPassword, EnvMetricsAuthEnabled))
	}

	return errors.Join(errs...)
}

// Validate checks the portal settings.
func (p PortalConfig) Validate() error {
	var errs []error
	for key, raw := range map[string]string{EnvPortalBaseURL: p.BaseURL, EnvPortalAPIURL: p.APIURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an absolute URL, got %q", key, raw))
		}
	}
	if p.ResultSize <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", EnvPortalResultSize, p.ResultSize))
	}
	if p.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvPortalTimeout, p.RequestTimeout))
	}
	return errors.Join(errs...)
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getListEnv reads a comma-separated list, trimming blanks and lowercasing.
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for item := range strings.SplitSeq(value, ",") {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "assistant.db")
}

// HasLLMProvider returns true if any provider in the chain has a key.
func (c *Config) HasLLMProvider() bool {
	for _, p := range c.LLMProviders {
		if c.APIKeyFor(p) != "" {
			return true
		}
	}
	return false
}

// APIKeyFor returns the API key configured for provider.
func (c *Config) APIKeyFor(provider string) string {
	switch provider {
	case ProviderGemini:
		return c.GeminiAPIKey
	case ProviderGroq:
		return c.GroqAPIKey
	case ProviderCerebras:
		return c.CerebrasAPIKey
	}
	return ""
}

// ModelsFor returns the configured model chain for provider.
func (c *Config) ModelsFor(provider string) []string {
	switch provider {
	case ProviderGemini:
		return c.GeminiModels
	case ProviderGroq:
		return c.GroqModels
	case ProviderCerebras:
		return c.CerebrasModels
	}
	return nil
}

// R2Endpoint returns the Cloudflare R2 S3 endpoint for the configured account.
func (c *Config) R2Endpoint() string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.R2AccountID)
}
