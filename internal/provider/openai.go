package provider

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kayz/skillforge/internal/config"
)

// OpenAIProvider implements the Provider interface for OpenAI and any
// backend speaking the OpenAI chat completion protocol (DeepSeek, Kimi,
// Qwen, ...).
type OpenAIProvider struct {
	client       *openai.Client
	model        string
	maxTokens    int
	temperature  float32
	providerName string
}

func newOpenAIProvider(name, apiKey string, cfg config.AIConfig, defaultURL, defaultModel string) (*OpenAIProvider, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = baseURL

	return &OpenAIProvider{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        model,
		maxTokens:    cfg.MaxOutputTokens,
		temperature:  cfg.Temperature,
		providerName: name,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.providerName
}

// Chat sends messages and returns a response
func (p *OpenAIProvider) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)

	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}

	for _, msg := range req.Messages {
		role := openai.ChatMessageRoleUser
		if msg.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
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

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return ChatResponse{}, fmt.Errorf("%s API error: %w", p.providerName, err)
	}

	if len(resp.Choices) == 0 {
		return ChatResponse{}, fmt.Errorf("%s API returned no choices", p.providerName)
	}

	return ChatResponse{
		Content: resp.Choices[0].Message.Content,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}
