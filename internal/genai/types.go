// Package genai provides integration with LLM APIs (Gemini, Groq, and Cerebras)
// for the two language tasks the assistant delegates: translating a
// non-English message into an English search phrase, and answering greetings.
//
// Architecture:
//   - Gemini: google.golang.org/genai (official SDK)
//   - Groq/Cerebras: github.com/openai/openai-go/v3 (OpenAI-compatible API)
//
// Fallback strategy:
//  1. Model retry: same model retried with exponential backoff
//  2. Model chain: next model in the provider's model list
//  3. Provider chain: next provider in the configured order
package genai

import (
	"context"
	"time"

	"github.com/myschoolct/portal-assistant/internal/config"
)

// Provider represents an LLM provider.
type Provider string

const (
	// ProviderGemini represents Google's Gemini API (non-OpenAI-compatible).
	ProviderGemini Provider = config.ProviderGemini
	// ProviderGroq represents Groq's API (OpenAI-compatible).
	ProviderGroq Provider = config.ProviderGroq
	// ProviderCerebras represents Cerebras's API (OpenAI-compatible).
	ProviderCerebras Provider = config.ProviderCerebras
)

// ProviderEndpoint defines the base URL for OpenAI-compatible providers.
var ProviderEndpoint = map[Provider]string{
	ProviderGroq:     "https://api.groq.com/openai/v1/",
	ProviderCerebras: "https://api.cerebras.ai/v1/",
}

// IsOpenAICompatible returns true if the provider uses OpenAI-compatible API.
func (p Provider) IsOpenAICompatible() bool {
	_, ok := ProviderEndpoint[p]
	return ok
}

func (p Provider) String() string {
	return string(p)
}

// Role of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one prior turn of a conversation.
type Message struct {
	Role    Role
	Content string
}

// Request is a single text generation call.
type Request struct {
	// Operation labels metrics and logs (translate, greeting).
	Operation   string
	System      string
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// Generator produces text for a Request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Provider() Provider
	Model() string
	Close() error
}

// RetryConfig defines retry behavior for LLM API calls.
type RetryConfig struct {
	// MaxAttempts includes the initial attempt.
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// ProviderConfig holds configuration for a single LLM provider.
type ProviderConfig struct {
	APIKey string
	// Models are tried in order; the first is primary.
	Models []string
}

// LLMConfig holds configuration for all LLM providers.
type LLMConfig struct {
	Providers []Provider
	Gemini    ProviderConfig
	Groq      ProviderConfig
	Cerebras  ProviderConfig
	Retry     RetryConfig
}

// Default model chains. The first element is primary.
var (
	DefaultGeminiModels   = []string{"gemini-2.5-flash", "gemini-2.5-flash-lite"}
	DefaultGroqModels     = []string{"llama-3.3-70b-versatile", "llama-3.1-8b-instant"}
	DefaultCerebrasModels = []string{"llama-3.3-70b", "llama-3.1-8b"}
	DefaultProviders      = []Provider{ProviderGemini, ProviderGroq, ProviderCerebras}
)

// Retry configuration defaults
const (
	DefaultMaxRetryAttempts  = 2
	DefaultInitialRetryDelay = 500 * time.Millisecond
	DefaultMaxRetryDelay     = 3 * time.Second
)

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  DefaultMaxRetryAttempts,
		InitialDelay: DefaultInitialRetryDelay,
		MaxDelay:     DefaultMaxRetryDelay,
	}
}

// NewLLMConfig builds an LLMConfig from application config, filling in
// default model chains where none are configured.
func NewLLMConfig(c *config.Config) LLMConfig {
	pick := func(p string, defaults []string) ProviderConfig {
		models := c.ModelsFor(p)
		if len(models) == 0 {
			models = defaults
		}
		return ProviderConfig{APIKey: c.APIKeyFor(p), Models: models}
	}

	providers := make([]Provider, 0, len(c.LLMProviders))
	for _, p := range c.LLMProviders {
		providers = append(providers, Provider(p))
	}

	return LLMConfig{
		Providers: providers,
		Gemini:    pick(config.ProviderGemini, DefaultGeminiModels),
		Groq:      pick(config.ProviderGroq, DefaultGroqModels),
		Cerebras:  pick(config.ProviderCerebras, DefaultCerebrasModels),
		Retry:     DefaultRetryConfig(),
	}
}

// HasProvider returns true if the specified provider is configured with an API key.
func (c *LLMConfig) HasProvider(p Provider) bool {
	pc := c.GetProviderConfig(p)
	return pc != nil && pc.APIKey != ""
}

// GetProviderConfig returns the configuration for a specific provider.
func (c *LLMConfig) GetProviderConfig(p Provider) *ProviderConfig {
	switch p {
	case ProviderGemini:
		return &c.Gemini
	case ProviderGroq:
		return &c.Groq
	case ProviderCerebras:
		return &c.Cerebras
	default:
		return nil
	}
}

// ConfiguredProviders returns the providers with API keys, in configured order.
func (c *LLMConfig) ConfiguredProviders() []Provider {
	result := make([]Provider, 0, len(c.Providers))
	for _, p := range c.Providers {
		if c.HasProvider(p) {
			result = append(result, p)
		}
	}
	return result
}
