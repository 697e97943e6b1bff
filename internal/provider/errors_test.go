package provider

import (
	"errors"
	"fmt"
	"testing"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
	genai "google.golang.org/genai"
)

func TestClassifySDKErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"anthropic rate limit", &anthropic.APIError{Type: "rate_limit_error"}, KindRateLimited},
		{"anthropic overloaded", &anthropic.APIError{Type: "overloaded_error"}, KindRateLimited},
		{"anthropic auth", &anthropic.APIError{Type: "authentication_error"}, KindAuth},
		{"anthropic permission", &anthropic.APIError{Type: "permission_error"}, KindAuth},
		{"anthropic api", &anthropic.APIError{Type: "api_error"}, KindNetwork},
		{"openai 429", &openai.APIError{HTTPStatusCode: 429}, KindRateLimited},
		{"openai 401", &openai.APIError{HTTPStatusCode: 401}, KindAuth},
		{"openai request 503", &openai.RequestError{HTTPStatusCode: 503, Err: errors.New("bad gateway")}, KindNetwork},
		{"gemini 429", genai.APIError{Code: 429, Message: "quota exhausted"}, KindRateLimited},
		{"gemini 401", genai.APIError{Code: 401}, KindAuth},
		{"gemini 403", genai.APIError{Code: 403}, KindAuth},
		{"gemini 503", genai.APIError{Code: 503}, KindNetwork},
		{"gemini 400", genai.APIError{Code: 400}, KindUnknown},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			// Adapters wrap SDK errors before they reach classification.
			wrapped := fmt.Errorf("backend API error: %w", c.err)
			got := classify("backend", wrapped)
			if got.Kind != c.want {
				t.Errorf("kind = %s, want %s", got.Kind, c.want)
			}
		})
	}
}

func TestClassifiedGeminiRateLimitIsRetryable(t *testing.T) {
	err := fmt.Errorf("gemini API error: %w", genai.APIError{Code: 429})
	got := classify("gemini", err)
	if !got.Retryable() {
		t.Errorf("429 should be retryable, classified as %s", got.Kind)
	}

	err = fmt.Errorf("gemini API error: %w", genai.APIError{Code: 401})
	if got := classify("gemini", err); got.Retryable() {
		t.Errorf("401 must not be retried, classified as %s", got.Kind)
	}
}
