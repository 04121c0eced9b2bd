package config

import "time"

// HTTP server timeouts
const (
	// HTTPRead is the server read timeout. Chat payloads are small JSON bodies.
	HTTPRead = 10 * time.Second

	// HTTPWrite must cover ChatProcessing plus serialization.
	HTTPWrite = 35 * time.Second

	// HTTPIdle is the keep-alive idle timeout.
	HTTPIdle = 120 * time.Second

	// HTTPReadHeader bounds header reads.
	HTTPReadHeader = 5 * time.Second
)

// Chat pipeline timeouts
const (
	// ChatProcessing bounds one chat request end to end: translation, every
	// portal candidate and the greeting responder.
	ChatProcessing = 30 * time.Second

	// PortalRequest is the timeout for a single portal index call.
	// Each fallback candidate gets its own request.
	PortalRequest = 8 * time.Second

	// LLMRequest bounds one translation or greeting call, retries included.
	LLMRequest = 12 * time.Second

	// PersistenceWrite bounds the detached save/log writes after a reply.
	PersistenceWrite = 5 * time.Second

	// LineWebhookProcessing bounds async processing of a LINE event.
	LineWebhookProcessing = 45 * time.Second
)

// Database timeouts
const (
	// DatabaseBusyTimeout is the SQLite busy_timeout pragma value.
	DatabaseBusyTimeout = 30 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of database connections.
	DatabaseConnMaxLifetime = time.Hour
)

// Background job intervals
const (
	// DataCleanupInitialDelay lets the server settle before the first retention sweep.
	DataCleanupInitialDelay = 5 * time.Minute

	// MetricsUpdateInterval is how often row-count gauges are refreshed.
	MetricsUpdateInterval = 5 * time.Minute

	// RateLimiterCleanupInterval is how often idle per-session limiters are dropped.
	RateLimiterCleanupInterval = 5 * time.Minute

	// R2SnapshotUpload bounds one backup upload.
	R2SnapshotUpload = 2 * time.Minute
)

// GracefulShutdown is the default timeout for graceful server shutdown.
const GracefulShutdown = 30 * time.Second
