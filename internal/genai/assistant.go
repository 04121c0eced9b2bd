package genai

import (
	"context"
	"errors"
	"strings"
)

// maxHistoryTurns bounds how much prior conversation is sent with a greeting.
const maxHistoryTurns = 10

// Translator turns a non-English message into an English search phrase.
type Translator struct {
	gen Generator
}

// NewTranslator creates a translator backed by gen.
func NewTranslator(gen Generator) *Translator {
	return &Translator{gen: gen}
}

// Translate returns the English keywords for text written in sourceLang.
func (t *Translator) Translate(ctx context.Context, text, sourceLang string) (string, error) {
	out, err := t.gen.Generate(ctx, Request{
		Operation:   "translate",
		System:      translationSystemPrompt,
		Messages:    []Message{{Role: RoleUser, Content: TranslationPrompt(text, sourceLang)}},
		Temperature: 0.1,
		MaxTokens:   64,
	})
	if err != nil {
		return "", err
	}
	out = cleanLine(out)
	if out == "" {
		return "", errors.New("translation: empty output")
	}
	return out, nil
}

// Responder writes conversational replies to greetings.
type Responder struct {
	gen Generator
}

// NewResponder creates a responder backed by gen.
func NewResponder(gen Generator) *Responder {
	return &Responder{gen: gen}
}

// Respond answers message, given the conversation so far (oldest first).
func (r *Responder) Respond(ctx context.Context, message string, history []Message) (string, error) {
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	msgs := make([]Message, 0, len(history)+1)
	for _, h := range history {
		if strings.TrimSpace(h.Content) != "" {
			msgs = append(msgs, h)
		}
	}
	msgs = append(msgs, Message{Role: RoleUser, Content: message})

	out, err := r.gen.Generate(ctx, Request{
		Operation:   "greeting",
		System:      greetingSystemPrompt,
		Messages:    msgs,
		Temperature: 0.7,
		MaxTokens:   160,
	})
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errors.New("greeting: empty output")
	}
	return out, nil
}

// cleanLine keeps the first non-empty line and strips wrapping quotes.
func cleanLine(s string) string {
	for line := range strings.SplitSeq(s, "\n") {
		line = strings.TrimSpace(line)
		line = strings.Trim(line, "\"'`“”")
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}
