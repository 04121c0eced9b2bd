package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort            = "PORTAL_PORT"
	EnvLogLevel        = "PORTAL_LOG_LEVEL"
	EnvShutdownTimeout = "PORTAL_SHUTDOWN_TIMEOUT"
	EnvServerName      = "PORTAL_SERVER_NAME"

	// Data
	EnvDataDir             = "PORTAL_DATA_DIR"
	EnvChatRetention       = "PORTAL_CHAT_RETENTION"
	EnvDataCleanupInterval = "PORTAL_DATA_CLEANUP_INTERVAL"

	// Portal search index
	EnvPortalBaseURL        = "PORTAL_BASE_URL"
	EnvPortalAPIURL         = "PORTAL_API_URL"
	EnvPortalResultSize     = "PORTAL_RESULT_SIZE"
	EnvPortalTimeout        = "PORTAL_REQUEST_TIMEOUT"
	EnvPortalFallbackTopics = "PORTAL_FALLBACK_TOPICS"

	// LLM Feature
	EnvLLMEnabled          = "PORTAL_LLM_ENABLED"
	EnvLLMProviders        = "PORTAL_LLM_PROVIDERS"
	EnvGeminiAPIKey        = "PORTAL_GEMINI_API_KEY"
	EnvGroqAPIKey          = "PORTAL_GROQ_API_KEY"
	EnvCerebrasAPIKey      = "PORTAL_CEREBRAS_API_KEY"
	EnvGeminiModels        = "PORTAL_GEMINI_MODELS"
	EnvGroqModels          = "PORTAL_GROQ_MODELS"
	EnvCerebrasModels      = "PORTAL_CEREBRAS_MODELS"
	EnvLLMRateBurst        = "PORTAL_LLM_RATE_BURST"
	EnvLLMRateRefillPerMin = "PORTAL_LLM_RATE_REFILL_PER_MIN"

	// LINE Feature
	EnvLineEnabled            = "PORTAL_LINE_ENABLED"
	EnvLineChannelAccessToken = "PORTAL_LINE_CHANNEL_ACCESS_TOKEN"
	EnvLineChannelSecret      = "PORTAL_LINE_CHANNEL_SECRET"

	// R2 Backup Feature
	EnvR2Enabled         = "PORTAL_R2_ENABLED"
	EnvR2AccountID       = "PORTAL_R2_ACCOUNT_ID"
	EnvR2AccessKeyID     = "PORTAL_R2_ACCESS_KEY_ID"
	EnvR2SecretAccessKey = "PORTAL_R2_SECRET_ACCESS_KEY"
	EnvR2BucketName      = "PORTAL_R2_BUCKET_NAME"
	EnvR2SnapshotKey     = "PORTAL_R2_SNAPSHOT_KEY"
	EnvR2LockKey         = "PORTAL_R2_LOCK_KEY"
	EnvR2LockTTL         = "PORTAL_R2_LOCK_TTL"
	EnvR2BackupInterval  = "PORTAL_R2_BACKUP_INTERVAL"

	// Sentry Feature
	EnvSentryEnabled     = "PORTAL_SENTRY_ENABLED"
	EnvSentryToken       = "PORTAL_SENTRY_TOKEN"
	EnvSentryHost        = "PORTAL_SENTRY_HOST"
	EnvSentryEnvironment = "PORTAL_SENTRY_ENVIRONMENT"
	EnvSentrySampleRate  = "PORTAL_SENTRY_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackEnabled  = "PORTAL_BETTERSTACK_ENABLED"
	EnvBetterStackToken    = "PORTAL_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "PORTAL_BETTERSTACK_ENDPOINT"

	// Metrics Auth Feature
	EnvMetricsAuthEnabled = "PORTAL_METRICS_AUTH_ENABLED"
	EnvMetricsUsername    = "PORTAL_METRICS_USERNAME"
	EnvMetricsPassword    = "PORTAL_METRICS_PASSWORD"
)
