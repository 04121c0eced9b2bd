package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// openaiGenerator implements Generator for any OpenAI-compatible provider
// (Groq, Cerebras) via a custom base URL.
type openaiGenerator struct {
	client   openai.Client
	model    string
	provider Provider
}

func newOpenAIGenerator(provider Provider, apiKey, model string, opts ...option.RequestOption) (*openaiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s: missing API key", provider)
	}
	baseURL, ok := ProviderEndpoint[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported OpenAI-compatible provider: %s", provider)
	}
	if model == "" {
		switch provider {
		case ProviderGroq:
			model = DefaultGroqModels[0]
		case ProviderCerebras:
			model = DefaultCerebrasModels[0]
		}
	}

	// Retries are handled by the chain.
	base := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	return &openaiGenerator{
		client:   openai.NewClient(append(base, opts...)...),
		model:    model,
		provider: provider,
	}, nil
}

func (o *openaiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		if m.Role == RoleAssistant {
			messages = append(messages, openai.AssistantMessage(m.Content))
		} else {
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       o.model,
		Messages:    messages,
		Temperature: openai.Float(float64(req.Temperature)),
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
	}

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", WrapError(err, o.provider, apiErr.StatusCode)
		}
		return "", WrapError(err, o.provider, 0)
	}
	if len(resp.Choices) == 0 {
		return "", WrapError(errors.New("empty response"), o.provider, 0)
	}

	if resp.Usage.TotalTokens > 0 {
		slog.DebugContext(ctx, "chat completion completed",
			"provider", o.provider,
			"operation", req.Operation,
			"model", o.model,
			"input_tokens", resp.Usage.PromptTokens,
			"output_tokens", resp.Usage.CompletionTokens,
			"duration_ms", time.Since(start).Milliseconds())
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *openaiGenerator) Provider() Provider { return o.provider }

func (o *openaiGenerator) Model() string { return o.model }

// Close is a no-op; the openai-go client holds no resources needing release.
func (o *openaiGenerator) Close() error { return nil }
