package provider

import (
	"context"
	"time"

	"github.com/kayz/skillforge/internal/config"
	"github.com/kayz/skillforge/internal/conversation"
	"github.com/kayz/skillforge/internal/logger"
)

const defaultBaseDelay = 500 * time.Millisecond

// Client wraps a Provider with retry, backoff and usage accounting. It
// never mutates the transcript it is handed; appending the assistant
// response is the caller's job.
type Client struct {
	provider    Provider
	session     *Session
	maxAttempts int
	baseDelay   time.Duration

	// sleep is swapped out in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient builds a retrying client around the given adapter. session may
// be shared across concurrent authoring sessions.
func NewClient(p Provider, session *Session, retry config.RetryConfig) *Client {
	maxAttempts := retry.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	baseDelay := defaultBaseDelay
	if retry.BaseDelay != "" {
		if d, err := time.ParseDuration(retry.BaseDelay); err == nil && d > 0 {
			baseDelay = d
		}
	}

	if session == nil {
		session = NewSession()
	}

	return &Client{
		provider:    p,
		session:     session,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		sleep:       waitContext,
	}
}

// waitContext blocks for the backoff delay but returns early if the caller
// aborts, so cancellation between turns is not stalled by a pending retry.
func waitContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Provider returns the wrapped adapter's name
func (c *Client) Provider() string {
	return c.provider.Name()
}

// Session returns the shared usage counters
func (c *Client) Session() *Session {
	return c.session
}

// Send submits the transcript plus the newest turn and returns the
// assistant's reply. Transient failures (rate limiting, transient network
// errors) are retried with exponential backoff up to the configured attempt
// ceiling; authentication failures fail immediately.
func (c *Client) Send(ctx context.Context, systemPrompt string, transcript *conversation.Transcript, newTurn conversation.Turn) (string, error) {
	req := ChatRequest{
		SystemPrompt: systemPrompt,
		Messages:     buildMessages(transcript, newTurn),
	}

	var lastErr *Error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay << (attempt - 1)
			logger.Debug("[PROVIDER] retrying %s in %s (attempt %d/%d)",
				c.provider.Name(), delay, attempt+1, c.maxAttempts)
			if err := c.sleep(ctx, delay); err != nil {
				return "", classify(c.provider.Name(), err)
			}
			c.session.RecordRetry()
		}

		resp, err := c.provider.Chat(ctx, req)
		c.session.RecordRequest(resp.Usage)
		if err == nil {
			return resp.Content, nil
		}

		lastErr = classify(c.provider.Name(), err)
		if !lastErr.Retryable() {
			logger.Warn("[PROVIDER] %s failed (%s), not retrying: %v",
				c.provider.Name(), lastErr.Kind, err)
			return "", lastErr
		}
		logger.Warn("[PROVIDER] %s failed (%s): %v", c.provider.Name(), lastErr.Kind, err)
	}

	return "", lastErr
}

// buildMessages flattens the transcript into provider messages without
// mutating it. System turns fold into the first user message so every
// backend sees the same context regardless of its system prompt support.
func buildMessages(transcript *conversation.Transcript, newTurn conversation.Turn) []Message {
	turns := transcript.Turns()
	turns = append(turns, newTurn)

	messages := make([]Message, 0, len(turns))
	for _, turn := range turns {
		content := turn.Content
		if turn.Skipped {
			content = "[SKIPPED - use best practices for this]"
		}

		role := "user"
		if turn.Role == conversation.RoleAssistant {
			role = "assistant"
		}

		// Merge consecutive same-role turns; some backends reject them.
		if n := len(messages); n > 0 && messages[n-1].Role == role {
			messages[n-1].Content += "\n\n" + content
			continue
		}
		messages = append(messages, Message{Role: role, Content: content})
	}
	return messages
}
