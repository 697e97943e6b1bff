// Package provider implements the conversation client: a provider-agnostic
// chat abstraction over interchangeable generative backends with retry,
// backoff and shared usage accounting.
package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/kayz/skillforge/internal/config"
)

// Message is a provider-neutral chat message
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// ChatRequest is a provider-neutral completion request
type ChatRequest struct {
	SystemPrompt string
	Messages     []Message
	MaxTokens    int
	Temperature  float32
}

// Usage reports token consumption for a single call. Zero values mean the
// backend did not report usage.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// ChatResponse is a provider-neutral completion response
type ChatResponse struct {
	Content string
	Usage   Usage
}

// Provider is one concrete generative backend adapter
type Provider interface {
	Name() string
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// openAICompatDefaults mirrors the provider aliases we accept for any
// backend that speaks the OpenAI chat completion protocol.
var openAICompatDefaults = map[string]struct {
	baseURL string
	model   string
}{
	"openai":      {"https://api.openai.com/v1", "gpt-4o"},
	"deepseek":    {"https://api.deepseek.com/v1", "deepseek-chat"},
	"kimi":        {"https://api.moonshot.cn/v1", "moonshot-v1-8k"},
	"qwen":        {"https://dashscope.aliyuncs.com/compatible-mode/v1", "qwen-plus"},
	"zhipu":       {"https://open.bigmodel.cn/api/paas/v4", "glm-4-flash"},
	"grok":        {"https://api.x.ai/v1", "grok-2-latest"},
	"siliconflow": {"https://api.siliconflow.cn/v1", "Qwen/Qwen2.5-72B-Instruct"},
}

var openAICompatAliases = map[string]string{
	"gpt":      "openai",
	"chatgpt":  "openai",
	"moonshot": "kimi",
	"tongyi":   "qwen",
	"qianwen":  "qwen",
	"glm":      "zhipu",
	"chatglm":  "zhipu",
	"xai":      "grok",
}

// New builds the adapter selected by configuration. A missing credential for
// the selected provider fails immediately with an Auth error, before any
// conversation turn is attempted.
func New(cfg config.AIConfig) (Provider, error) {
	apiKey := cfg.ResolveAPIKey()
	if apiKey == "" {
		return nil, &Error{
			Kind:     KindAuth,
			Provider: cfg.Provider,
			Err:      fmt.Errorf("no API key configured for provider %q", cfg.Provider),
		}
	}

	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch name {
	case "anthropic", "claude", "":
		return newAnthropicProvider(apiKey, cfg)
	case "gemini", "google":
		return newGeminiProvider(apiKey, cfg)
	default:
		if canonical, ok := openAICompatAliases[name]; ok {
			name = canonical
		}
		d, ok := openAICompatDefaults[name]
		if !ok {
			return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
		}
		return newOpenAIProvider(name, apiKey, cfg, d.baseURL, d.model)
	}
}
