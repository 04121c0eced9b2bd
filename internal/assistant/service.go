// Package assistant answers chat and autocomplete requests by searching the
// content portal.
//
// A chat message runs through a fixed pipeline: greeting detection,
// translation, spelling correction, deep-link resolution, the candidate
// fallback chain, the topic fallback, and finally persistence. No stage
// surfaces an error to the caller; each one degrades to a usable answer.
package assistant

import (
	"context"
	"slices"

	"github.com/myschoolct/portal-assistant/internal/enhancer"
	"github.com/myschoolct/portal-assistant/internal/genai"
	"github.com/myschoolct/portal-assistant/internal/logger"
	"github.com/myschoolct/portal-assistant/internal/metrics"
	"github.com/myschoolct/portal-assistant/internal/portal"
	"github.com/myschoolct/portal-assistant/internal/ratelimit"
	"github.com/myschoolct/portal-assistant/internal/resolver"
	"github.com/myschoolct/portal-assistant/internal/storage"
)

// DefaultResultSize caps how many portal results one search returns.
const DefaultResultSize = 6

// Translator converts a message in sourceLang into an English search phrase.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang string) (string, error)
}

// Responder writes a conversational reply given the prior turns.
type Responder interface {
	Respond(ctx context.Context, message string, history []genai.Message) (string, error)
}

// Options wires a Service. Enhancer, Resolver and Fetcher are required;
// everything else may be left nil.
type Options struct {
	Enhancer *enhancer.Enhancer
	Resolver *resolver.Resolver
	Fetcher  *portal.Fetcher

	Store      storage.Store
	Translator Translator
	Responder  Responder
	// LLMLimiter bounds translator and responder calls per session.
	LLMLimiter *ratelimit.KeyedLimiter

	Logger  *logger.Logger
	Metrics *metrics.Metrics

	ResultSize     int      // 0 uses DefaultResultSize
	FallbackTopics []string // nil uses portal.DefaultFallbackTopics
}

// Service is safe for concurrent use.
type Service struct {
	enhancer   *enhancer.Enhancer
	resolver   *resolver.Resolver
	fetcher    *portal.Fetcher
	store      storage.Store
	translator Translator
	responder  Responder
	limiter    *ratelimit.KeyedLimiter
	logger     *logger.Logger
	metrics    *metrics.Metrics
	resultSize int
	topics     []string
}

// New creates a Service from opts.
func New(opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	size := opts.ResultSize
	if size <= 0 {
		size = DefaultResultSize
	}
	topics := opts.FallbackTopics
	if len(topics) == 0 {
		topics = portal.DefaultFallbackTopics
	}

	return &Service{
		enhancer:   opts.Enhancer,
		resolver:   opts.Resolver,
		fetcher:    opts.Fetcher,
		store:      opts.Store,
		translator: opts.Translator,
		responder:  opts.Responder,
		limiter:    opts.LLMLimiter,
		logger:     log.WithModule("assistant"),
		metrics:    opts.Metrics,
		resultSize: size,
		topics:     slices.Clone(topics),
	}
}

// search runs the candidate chain and, when it comes back empty, the topic
// fallback. The returned term is the candidate or topic that produced the
// results.
func (s *Service) search(ctx context.Context, eq enhancer.EnhancedQuery) portal.Outcome {
	out := s.fetcher.SearchWithFallbackChain(ctx, eq, s.resultSize)
	if len(out.Results) > 0 {
		return out
	}

	topic := s.fetcher.SearchWithTopicFallback(ctx, s.topics, s.resultSize)
	topic.Attempts += out.Attempts
	return topic
}
