package provider

import (
	"context"
	"fmt"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/kayz/skillforge/internal/config"
)

const anthropicDefaultModel = "claude-sonnet-4-20250514"

// AnthropicProvider implements the Provider interface for the Anthropic
// Messages API.
type AnthropicProvider struct {
	client      *anthropic.Client
	model       string
	maxTokens   int
	temperature float32
}

func newAnthropicProvider(apiKey string, cfg config.AIConfig) (*AnthropicProvider, error) {
	var opts []anthropic.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = anthropicDefaultModel
	}

	return &AnthropicProvider{
		client:      anthropic.NewClient(apiKey, opts...),
		model:       model,
		maxTokens:   cfg.MaxOutputTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Chat sends messages and returns a response
func (p *AnthropicProvider) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	messages := make([]anthropic.Message, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case "assistant":
			messages = append(messages, anthropic.NewAssistantTextMessage(msg.Content))
		default:
			messages = append(messages, anthropic.NewUserTextMessage(msg.Content))
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = p.temperature
	}

	resp, err := p.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(p.model),
		System:      req.SystemPrompt,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return ChatResponse{}, fmt.Errorf("anthropic API error: %w", err)
	}

	return ChatResponse{
		Content: resp.GetFirstContentText(),
		Usage: Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
	}, nil
}
