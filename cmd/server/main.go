// Command server runs the MySchool portal assistant HTTP service.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/myschoolct/portal-assistant/internal/app"
	"github.com/myschoolct/portal-assistant/internal/buildinfo"
	"github.com/myschoolct/portal-assistant/internal/config"
	"github.com/myschoolct/portal-assistant/internal/sentry"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "portal-assistant: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.SentryEnabled {
		if err := sentry.Initialize(sentry.Config{
			Token:       cfg.SentryToken,
			Host:        cfg.SentryHost,
			Environment: cfg.SentryEnvironment,
			Release:     buildinfo.Release(),
			SampleRate:  cfg.SentrySampleRate,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
	}

	application, err := app.Initialize(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	return application.Run()
}
