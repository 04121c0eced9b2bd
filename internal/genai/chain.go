package genai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/myschoolct/portal-assistant/internal/logger"
	"github.com/myschoolct/portal-assistant/internal/metrics"
)

// ErrNoGenerators is returned by a Chain with nothing to call.
var ErrNoGenerators = errors.New("genai: no generators configured")

// Chain tries its generators in order. Each one is retried on transient
// errors; rejected requests move on to the next generator; a canceled
// context stops the chain.
type Chain struct {
	generators []Generator
	retry      RetryConfig
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

// NewChain creates a chain over generators, tried in the given order.
func NewChain(retry RetryConfig, log *logger.Logger, m *metrics.Metrics, generators ...Generator) *Chain {
	if log == nil {
		log = logger.Discard()
	}
	return &Chain{
		generators: generators,
		retry:      retry,
		logger:     log.WithModule("genai"),
		metrics:    m,
	}
}

// Generate returns the first successful generation.
func (c *Chain) Generate(ctx context.Context, req Request) (string, error) {
	if c == nil || len(c.generators) == 0 {
		return "", ErrNoGenerators
	}

	var errs []error
	for i, g := range c.generators {
		start := time.Now()
		var text string
		err := WithRetry(ctx, c.retry, func(attempt int, err error) {
			c.logger.WithError(err).WithFields(map[string]any{
				"provider":  g.Provider(),
				"model":     g.Model(),
				"operation": req.Operation,
				"attempt":   attempt,
			}).Debug("Retrying LLM call")
		}, func() error {
			var err error
			text, err = g.Generate(ctx, req)
			return err
		})

		if err == nil {
			c.metrics.RecordLLM(req.Operation, g.Provider().String(), "success", time.Since(start).Seconds())
			if i > 0 {
				c.logger.WithFields(map[string]any{
					"provider":  g.Provider(),
					"model":     g.Model(),
					"operation": req.Operation,
					"position":  i,
				}).Info("LLM fallback succeeded")
			}
			return text, nil
		}

		c.metrics.RecordLLM(req.Operation, g.Provider().String(), errorStatus(err), time.Since(start).Seconds())
		errs = append(errs, fmt.Errorf("%s/%s: %w", g.Provider(), g.Model(), err))

		if ClassifyError(err) == ActionFail || ctx.Err() != nil {
			break
		}
		c.logger.WithError(err).WithFields(map[string]any{
			"provider":  g.Provider(),
			"model":     g.Model(),
			"operation": req.Operation,
		}).Warn("LLM call failed, trying next model")
	}

	return "", fmt.Errorf("all LLM generators failed: %w", errors.Join(errs...))
}

// Provider returns the primary provider.
func (c *Chain) Provider() Provider {
	if c == nil || len(c.generators) == 0 {
		return ""
	}
	return c.generators[0].Provider()
}

// Model returns the primary model.
func (c *Chain) Model() string {
	if c == nil || len(c.generators) == 0 {
		return ""
	}
	return c.generators[0].Model()
}

// Len returns the number of generators in the chain.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.generators)
}

// Close closes every generator.
func (c *Chain) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	for _, g := range c.generators {
		if err := g.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
