package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIGenerator(t *testing.T) {
	t.Parallel()

	g, err := newOpenAIGenerator(ProviderCerebras, "key", "")
	require.NoError(t, err)
	assert.Equal(t, ProviderCerebras, g.Provider())
	assert.Equal(t, DefaultCerebrasModels[0], g.Model())

	_, err = newOpenAIGenerator(ProviderGroq, "", "m")
	require.Error(t, err)

	_, err = newOpenAIGenerator(ProviderGemini, "key", "m")
	require.Error(t, err, "gemini is not OpenAI-compatible")
}

func TestOpenAIGenerator_Generate(t *testing.T) {
	t.Parallel()

	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Hello there!"}}],
			"usage":{"prompt_tokens":5,"completion_tokens":3,"total_tokens":8}}`))
	}))
	defer srv.Close()

	g, err := newOpenAIGenerator(ProviderGroq, "key", "m", option.WithBaseURL(srv.URL+"/v1/"))
	require.NoError(t, err)

	text, err := g.Generate(context.Background(), Request{
		Operation: "greeting",
		System:    "be nice",
		Messages: []Message{
			{Role: RoleUser, Content: "hi"},
			{Role: RoleAssistant, Content: "hello"},
			{Role: RoleUser, Content: "hey again"},
		},
		MaxTokens: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello there!", text)

	assert.Equal(t, "m", got.Model)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, "hey again", got.Messages[3].Content)
}

func TestOpenAIGenerator_StatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	g, err := newOpenAIGenerator(ProviderGroq, "key", "m", option.WithBaseURL(srv.URL+"/v1/"))
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	require.Error(t, err)

	var llmErr *LLMError
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, http.StatusUnauthorized, llmErr.StatusCode)
	assert.Equal(t, ActionFallback, ClassifyError(err))
}
