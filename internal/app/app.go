// Package app wires the assistant together and manages its lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/myschoolct/portal-assistant/internal/assistant"
	"github.com/myschoolct/portal-assistant/internal/config"
	"github.com/myschoolct/portal-assistant/internal/enhancer"
	"github.com/myschoolct/portal-assistant/internal/genai"
	"github.com/myschoolct/portal-assistant/internal/lexicon"
	"github.com/myschoolct/portal-assistant/internal/logger"
	"github.com/myschoolct/portal-assistant/internal/metrics"
	"github.com/myschoolct/portal-assistant/internal/portal"
	"github.com/myschoolct/portal-assistant/internal/r2client"
	"github.com/myschoolct/portal-assistant/internal/ratelimit"
	"github.com/myschoolct/portal-assistant/internal/resolver"
	"github.com/myschoolct/portal-assistant/internal/sentry"
	"github.com/myschoolct/portal-assistant/internal/snapshot"
	"github.com/myschoolct/portal-assistant/internal/storage"
	"github.com/myschoolct/portal-assistant/internal/webhook"
)

// lineChatsPerHour caps messages answered per LINE chat.
const lineChatsPerHour = 60

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg         *config.Config
	logger      *logger.Logger
	db          *storage.DB
	metrics     *metrics.Metrics
	registry    *prometheus.Registry
	assistant   *assistant.Service
	chain       *genai.Chain
	llmLimiter  *ratelimit.KeyedLimiter
	chatLimiter *ratelimit.KeyedLimiter
	webhook     *webhook.Handler // nil unless LINE is enabled
	backup      *snapshot.Manager
	server      *http.Server
	wg          sync.WaitGroup
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	opts := logger.Options{}
	if cfg.BetterStackEnabled {
		opts.BetterStackToken = cfg.BetterStackToken
		opts.BetterStackEndpoint = cfg.BetterStackEndpoint
		opts.Remote.OnDrop = m.RecordLogDrop
	}
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, opts).WithField("service", "portal-assistant")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}
	// Package-level slog calls pick up session and request IDs too.
	slog.SetDefault(log.Logger)

	log.Info("Initializing application...")

	a := &Application{
		cfg:      cfg,
		logger:   log,
		metrics:  m,
		registry: registry,
	}

	if cfg.R2Enabled {
		client, err := r2client.New(ctx, r2client.Config{
			Endpoint:    cfg.R2Endpoint(),
			AccessKeyID: cfg.R2AccessKeyID,
			SecretKey:   cfg.R2SecretAccessKey,
			Bucket:      cfg.R2BucketName,
		})
		if err != nil {
			return nil, fmt.Errorf("r2: %w", err)
		}
		a.backup = snapshot.New(client, r2client.NewLock(client, cfg.R2LockKey, cfg.R2LockTTL),
			snapshot.Config{Key: cfg.R2SnapshotKey, TempDir: cfg.DataDir}, log, m)

		restoreCtx, cancel := context.WithTimeout(ctx, config.R2SnapshotUpload)
		if _, err := a.backup.Restore(restoreCtx, cfg.SQLitePath()); err != nil {
			log.WithError(err).Warn("Backup restore failed; starting with a fresh database")
		}
		cancel()
	}

	db, err := storage.New(ctx, cfg.SQLitePath())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	a.db = db
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	a.llmLimiter = ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "llm",
		Burst:         cfg.LLMRateBurst,
		RefillRate:    cfg.LLMRateRefillPerMin / 60,
		CleanupPeriod: config.RateLimiterCleanupInterval,
		Metrics:       m,
	})

	svcOpts := assistant.Options{
		Fetcher:        portal.NewFetcher(portal.NewClient(cfg.Portal.APIURL, cfg.Portal.RequestTimeout), log, m),
		Store:          db,
		LLMLimiter:     a.llmLimiter,
		Logger:         log,
		Metrics:        m,
		ResultSize:     cfg.Portal.ResultSize,
		FallbackTopics: cfg.Portal.FallbackTopics,
	}
	lex := lexicon.Default()
	svcOpts.Enhancer = enhancer.New(lex, log)
	svcOpts.Resolver = resolver.New(cfg.Portal.BaseURL, lex)

	if cfg.LLMEnabled && cfg.HasLLMProvider() {
		a.chain = genai.CreateChain(ctx, genai.NewLLMConfig(cfg), log, m)
		if a.chain != nil {
			svcOpts.Translator = genai.NewTranslator(a.chain)
			svcOpts.Responder = genai.NewResponder(a.chain)
			log.WithField("provider", a.chain.Provider().String()).
				WithField("generators", a.chain.Len()).
				Info("LLM translation and greetings enabled")
		}
	}
	a.assistant = assistant.New(svcOpts)

	if cfg.LineEnabled {
		chatCfg := ratelimit.PerHour("line_chat", lineChatsPerHour)
		chatCfg.CleanupPeriod = config.RateLimiterCleanupInterval
		chatCfg.Metrics = m
		a.chatLimiter = ratelimit.NewKeyedLimiter(chatCfg)

		a.webhook, err = webhook.NewHandler(webhook.Config{
			ChannelSecret: cfg.LineChannelSecret,
			ChannelToken:  cfg.LineChannelToken,
			Chat:          a.assistant,
			ChatLimiter:   a.chatLimiter,
			Logger:        log,
			Metrics:       m,
		})
		if err != nil {
			a.closeResources()
			return nil, fmt.Errorf("webhook: %w", err)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	a.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.newRouter(),
		ReadHeaderTimeout: config.HTTPReadHeader,
		ReadTimeout:       config.HTTPRead,
		WriteTimeout:      config.HTTPWrite,
		IdleTimeout:       config.HTTPIdle,
	}

	log.WithField("features", a.features()).Info("Initialization complete")
	return a, nil
}

func (a *Application) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(requestIDMiddleware())
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(a.logger))

	router.GET("/livez", a.livenessCheck)
	router.HEAD("/livez", a.livenessCheck)
	router.GET("/readyz", a.readinessCheck)
	router.HEAD("/readyz", a.readinessCheck)

	operator := basicAuthMiddleware(a.cfg.MetricsAuthEnabled, "metrics", a.cfg.MetricsUsername, a.cfg.MetricsPassword)
	router.GET("/metrics", operator, gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	api.POST("/chat", a.handleChat)
	api.POST("/autocomplete", a.handleAutocomplete)
	api.GET("/autocomplete", a.handleAutocomplete)
	api.GET("/analytics/top", operator, a.handleTopQueries)

	if a.webhook != nil {
		router.POST("/webhook", a.webhook.Handle)
	}
	return router
}

// Run starts the HTTP server and background jobs, then blocks until
// SIGINT or SIGTERM.
//
// Background jobs are stopped and awaited before resources close so a
// cleanup or backup never runs against a closed database.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.startBackgroundJobs(ctx)
	a.startHTTPServer()

	sig := a.waitForShutdownSignal()
	a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")

	cancel()
	start := time.Now()
	a.wg.Wait()
	a.logger.WithField("duration_ms", time.Since(start).Milliseconds()).Info("All background jobs completed")

	return a.shutdown()
}

func (a *Application) startHTTPServer() {
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.WithError(err).Error("HTTP server error")
		}
	}()
}

func (a *Application) waitForShutdownSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}

// shutdown drains HTTP and webhook traffic, takes a last backup, then
// closes resources.
func (a *Application) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	if a.webhook != nil {
		if err := a.webhook.Shutdown(ctx); err != nil {
			a.logger.WithError(err).Warn("Webhook handler shutdown timeout")
		}
	}

	if a.backup != nil {
		a.runBackup(ctx)
	}

	a.closeResources()

	sentry.Flush(2 * time.Second)
	if err := a.logger.Shutdown(ctx); err != nil {
		a.logger.WithError(err).Warn("Logger shutdown timed out")
	}
	a.logger.Info("Shutdown complete")
	return nil
}

func (a *Application) closeResources() {
	if a.chain != nil {
		if err := a.chain.Close(); err != nil {
			a.logger.WithError(err).WithField("component", "llm").Error("Component close error")
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "database").Error("Component close error")
	}
	a.llmLimiter.Stop()
	a.chatLimiter.Stop()
}
