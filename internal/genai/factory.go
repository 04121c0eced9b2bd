package genai

import (
	"context"

	"github.com/myschoolct/portal-assistant/internal/logger"
	"github.com/myschoolct/portal-assistant/internal/metrics"
)

// CreateChain builds a Chain over every configured provider's models, in
// provider order then model order. Generators that fail to construct are
// logged and skipped. Returns nil when nothing is configured.
func CreateChain(ctx context.Context, cfg LLMConfig, log *logger.Logger, m *metrics.Metrics) *Chain {
	if log == nil {
		log = logger.Discard()
	}

	var generators []Generator
	for _, p := range cfg.ConfiguredProviders() {
		pc := cfg.GetProviderConfig(p)
		for _, model := range pc.Models {
			var (
				g   Generator
				err error
			)
			if p == ProviderGemini {
				g, err = newGeminiGenerator(ctx, pc.APIKey, model)
			} else {
				g, err = newOpenAIGenerator(p, pc.APIKey, model)
			}
			if err != nil {
				log.WithError(err).
					WithField("provider", p).
					WithField("model", model).
					Warn("Failed to create LLM generator")
				continue
			}
			generators = append(generators, g)
		}
	}

	if len(generators) == 0 {
		log.Info("No LLM provider configured")
		return nil
	}

	log.WithField("primary", generators[0].Provider()).
		WithField("chain_size", len(generators)).
		Info("LLM chain configured")
	return NewChain(cfg.Retry, log, m, generators...)
}
