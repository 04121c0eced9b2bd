package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorAction
	}{
		{"nil", nil, ActionFail},
		{"canceled", context.Canceled, ActionFail},
		{"wrapped canceled", fmt.Errorf("call: %w", context.Canceled), ActionFail},
		{"deadline", context.DeadlineExceeded, ActionRetry},
		{"status 429", WrapError(errors.New("slow down"), ProviderGroq, http.StatusTooManyRequests), ActionRetry},
		{"status 503", WrapError(errors.New("x"), ProviderGemini, http.StatusServiceUnavailable), ActionRetry},
		{"status 401", WrapError(errors.New("x"), ProviderGroq, http.StatusUnauthorized), ActionFallback},
		{"status 404", WrapError(errors.New("x"), ProviderCerebras, http.StatusNotFound), ActionFallback},
		{"quota text", errors.New("Quota exceeded for project"), ActionFallback},
		{"rate limit text", errors.New("rate limit reached"), ActionRetry},
		{"overloaded text", errors.New("model is overloaded"), ActionRetry},
		{"connection text", errors.New("connection reset by peer"), ActionRetry},
		{"invalid key text", errors.New("invalid api key"), ActionFallback},
		{"unknown", errors.New("something odd"), ActionRetry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestLLMError(t *testing.T) {
	t.Parallel()

	base := errors.New("boom")
	err := WrapError(base, ProviderGroq, 500)
	if !errors.Is(err, base) {
		t.Error("WrapError should unwrap to the cause")
	}
	if got, want := err.Error(), "groq: boom (status: 500)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if WrapError(nil, ProviderGroq, 500) != nil {
		t.Error("WrapError(nil) should be nil")
	}
}

func TestParseRetryAfter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers http.Header
		want    time.Duration
	}{
		{"empty", http.Header{}, 0},
		{"ms", http.Header{"Retry-After-Ms": []string{"250"}}, 250 * time.Millisecond},
		{"seconds", http.Header{"Retry-After": []string{"3"}}, 3 * time.Second},
		{"groq reset", http.Header{"X-Ratelimit-Reset-Tokens": []string{"1.5s"}}, 1500 * time.Millisecond},
		{"garbage", http.Header{"Retry-After": []string{"soon"}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ParseRetryAfter(tt.headers); got != tt.want {
				t.Errorf("ParseRetryAfter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorActionString(t *testing.T) {
	t.Parallel()

	for action, want := range map[ErrorAction]string{
		ActionRetry:     "retry",
		ActionFallback:  "fallback",
		ActionFail:      "fail",
		ErrorAction(42): "unknown",
	} {
		if got := action.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", action, got, want)
		}
	}
}
