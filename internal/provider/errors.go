package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
	genai "google.golang.org/genai"
)

// ErrorKind classifies a provider failure
type ErrorKind string

const (
	KindAuth        ErrorKind = "auth"
	KindRateLimited ErrorKind = "rate_limited"
	KindNetwork     ErrorKind = "network"
	KindUnknown     ErrorKind = "unknown"
)

// Error is a classified provider failure
type Error struct {
	Kind     ErrorKind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("provider: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is transient. Auth failures are
// never retried.
func (e *Error) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindNetwork
}

// classify maps an SDK error to the provider error taxonomy. Already
// classified errors pass through unchanged.
func classify(providerName string, err error) *Error {
	var perr *Error
	if errors.As(err, &perr) {
		return perr
	}

	wrap := func(kind ErrorKind) *Error {
		return &Error{Kind: kind, Provider: providerName, Err: err}
	}

	// Caller cancellation is not a backend condition; never retry it.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return wrap(KindUnknown)
	}

	var anthErr *anthropic.APIError
	if errors.As(err, &anthErr) {
		switch {
		case anthErr.IsRateLimitErr(), anthErr.IsOverloadedErr():
			return wrap(KindRateLimited)
		case anthErr.IsAuthenticationErr(), anthErr.IsPermissionErr():
			return wrap(KindAuth)
		case anthErr.IsApiErr():
			return wrap(KindNetwork)
		default:
			return wrap(KindUnknown)
		}
	}

	var oaErr *openai.APIError
	if errors.As(err, &oaErr) {
		return wrap(kindFromHTTPStatus(oaErr.HTTPStatusCode))
	}
	var oaReqErr *openai.RequestError
	if errors.As(err, &oaReqErr) {
		return wrap(kindFromHTTPStatus(oaReqErr.HTTPStatusCode))
	}

	// genai returns APIError by value, so the errors.As target must be the
	// value type; a pointer target never matches.
	var gErr genai.APIError
	if errors.As(err, &gErr) {
		return wrap(kindFromHTTPStatus(gErr.Code))
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return wrap(KindNetwork)
	}

	return wrap(KindUnknown)
}

func kindFromHTTPStatus(code int) ErrorKind {
	switch {
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuth
	case code >= 500:
		return KindNetwork
	default:
		return KindUnknown
	}
}
