package genai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myschoolct/portal-assistant/internal/config"
)

func TestTranslator_Translate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		output  string
		want    string
		wantErr bool
	}{
		{"plain", "monkey pictures", "monkey pictures", false},
		{"quoted", "\"class 5 maths\"", "class 5 maths", false},
		{"multi line", "\n  age 8 rhymes\nThese are keywords.", "age 8 rhymes", false},
		{"empty", "  \n ", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gen := &stubGenerator{provider: ProviderGroq, results: []stubResult{{text: tt.output}}}
			got, err := NewTranslator(gen).Translate(context.Background(), "बंदर", "hi")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "translate", gen.lastReq.Operation)
			assert.Contains(t, gen.lastReq.Messages[0].Content, "Hindi")
		})
	}
}

func TestTranslator_Error(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{provider: ProviderGroq, results: []stubResult{{err: errors.New("down")}}}
	_, err := NewTranslator(gen).Translate(context.Background(), "x", "te")
	assert.Error(t, err)
}

func TestResponder_Respond(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{provider: ProviderGemini, results: []stubResult{{text: "  Hello! Try searching animals.  "}}}

	var history []Message
	for i := range 15 {
		history = append(history, Message{Role: RoleUser, Content: fmt.Sprintf("m%d", i)})
	}
	history = append(history, Message{Role: RoleAssistant, Content: " "})

	got, err := NewResponder(gen).Respond(context.Background(), "hello", history)
	require.NoError(t, err)
	assert.Equal(t, "Hello! Try searching animals.", got)

	msgs := gen.lastReq.Messages
	// last 10 turns kept, the blank one dropped, then the new message
	require.Len(t, msgs, 10)
	assert.Equal(t, "m6", msgs[0].Content)
	assert.Equal(t, "hello", msgs[len(msgs)-1].Content)
	assert.Equal(t, "greeting", gen.lastReq.Operation)
}

func TestLanguageName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Telugu", LanguageName("te"))
	assert.Equal(t, "xx", LanguageName("xx"))
}

func TestNewLLMConfig(t *testing.T) {
	t.Parallel()

	cfg := NewLLMConfig(&config.Config{
		LLMProviders: []string{"groq", "gemini", "cerebras"},
		GroqAPIKey:   "g",
		GroqModels:   []string{"custom"},
		GeminiAPIKey: "k",
	})

	assert.Equal(t, []Provider{ProviderGroq, ProviderGemini}, cfg.ConfiguredProviders())
	assert.Equal(t, []string{"custom"}, cfg.Groq.Models)
	assert.Equal(t, DefaultGeminiModels, cfg.Gemini.Models)
	assert.False(t, cfg.HasProvider(ProviderCerebras))
	assert.Nil(t, cfg.GetProviderConfig("other"))
	assert.Equal(t, DefaultMaxRetryAttempts, cfg.Retry.MaxAttempts)
}
