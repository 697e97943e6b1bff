package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	exeDirCache string
	envOnce     sync.Once
)

// getExecutableDir returns the directory where the executable is located
func getExecutableDir() string {
	if exeDirCache != "" {
		return exeDirCache
	}
	execPath, err := os.Executable()
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	exeDirCache = filepath.Dir(execPath)
	return exeDirCache
}

type Config struct {
	AI         AIConfig         `yaml:"ai,omitempty"`
	Questions  QuestionsConfig  `yaml:"questions,omitempty"`
	Validation ValidationConfig `yaml:"validation,omitempty"`
	Retry      RetryConfig      `yaml:"retry,omitempty"`
	Output     OutputConfig     `yaml:"output,omitempty"`
	History    HistoryConfig    `yaml:"history,omitempty"`
	Logging    LoggingConfig    `yaml:"logging,omitempty"`
}

// AIConfig selects the generative backend and its generation parameters.
// APIKey may be left empty; the provider-specific environment variable
// always takes precedence.
type AIConfig struct {
	Provider        string  `yaml:"provider,omitempty"` // "anthropic", "openai", "gemini", or an openai-compatible alias
	APIKey          string  `yaml:"api_key,omitempty"`
	BaseURL         string  `yaml:"base_url,omitempty"`
	Model           string  `yaml:"model,omitempty"`
	Temperature     float32 `yaml:"temperature,omitempty"`
	MaxOutputTokens int     `yaml:"max_output_tokens,omitempty"`
}

type QuestionsConfig struct {
	MaxQuestions int `yaml:"max_questions,omitempty"`
}

// ValidationConfig holds the structural bounds the validator enforces on
// generated skill documents.
type ValidationConfig struct {
	NamePattern          string   `yaml:"name_pattern,omitempty"`
	MaxNameLength        int      `yaml:"max_name_length,omitempty"`
	MinDescriptionLength int      `yaml:"min_description_length,omitempty"`
	MaxDescriptionLength int      `yaml:"max_description_length,omitempty"`
	MinBodyLength        int      `yaml:"min_body_length,omitempty"`
	AllowedCapabilities  []string `yaml:"allowed_capabilities,omitempty"`
}

type RetryConfig struct {
	MaxAttempts    int    `yaml:"max_attempts,omitempty"`    // provider call ceiling
	BaseDelay      string `yaml:"base_delay,omitempty"`      // backoff base, e.g. "500ms"
	MaxGenerations int    `yaml:"max_generations,omitempty"` // generate/validate cycles
}

type OutputConfig struct {
	PersonalPath    string `yaml:"personal_path,omitempty"`
	ProjectPath     string `yaml:"project_path,omitempty"`
	DefaultLocation string `yaml:"default_location,omitempty"` // "personal" or "project"
}

type HistoryConfig struct {
	Disabled bool   `yaml:"disabled,omitempty"`
	Path     string `yaml:"path,omitempty"`
}

type LoggingConfig struct {
	Level string `yaml:"level,omitempty"`
	File  string `yaml:"file,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		AI: AIConfig{
			Provider:        "anthropic",
			Temperature:     0.7,
			MaxOutputTokens: 4096,
		},
		Questions: QuestionsConfig{
			MaxQuestions: 5,
		},
		Validation: ValidationConfig{
			NamePattern:          `^[a-z0-9-]+$`,
			MaxNameLength:        64,
			MinDescriptionLength: 20,
			MaxDescriptionLength: 1024,
			MinBodyLength:        50,
			AllowedCapabilities: []string{
				"Bash", "Read", "Write", "Edit", "Grep", "Glob", "WebFetch", "WebSearch",
			},
		},
		Retry: RetryConfig{
			MaxAttempts:    3,
			BaseDelay:      "500ms",
			MaxGenerations: 2,
		},
		Output: OutputConfig{
			PersonalPath:    "~/.claude/skills",
			ProjectPath:     ".claude/skills",
			DefaultLocation: "project",
		},
		History: HistoryConfig{
			Path: filepath.Join(getExecutableDir(), ".skillforge", "history.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func ConfigDir() string {
	return filepath.Join(getExecutableDir(), ".skillforge")
}

func ConfigPath() string {
	return filepath.Join(getExecutableDir(), ".skillforge.yaml")
}

func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads config from an explicit path, falling back to defaults if
// the file does not exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(ConfigPath(), data, 0600)
}

// LoadEnv loads a .env file once per process, if present. Missing files are
// not an error; explicit environment always wins.
func LoadEnv() {
	envOnce.Do(func() {
		_ = godotenv.Load()
	})
}

// credentialEnvVars maps a provider name to the environment variables
// consulted for its API key, in priority order.
func credentialEnvVars(provider string) []string {
	switch strings.ToLower(provider) {
	case "anthropic", "claude":
		return []string{"ANTHROPIC_API_KEY"}
	case "gemini", "google":
		return []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	case "openai", "gpt", "chatgpt":
		return []string{"OPENAI_API_KEY"}
	default:
		// Openai-compatible providers: PROVIDER_API_KEY, then the generic key.
		name := strings.ToUpper(strings.ReplaceAll(provider, "-", "_"))
		return []string{name + "_API_KEY", "OPENAI_API_KEY"}
	}
}

// ResolveAPIKey returns the credential for the configured provider.
// Environment variables take precedence over the config file value.
func (a AIConfig) ResolveAPIKey() string {
	LoadEnv()
	for _, name := range credentialEnvVars(a.Provider) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return strings.TrimSpace(a.APIKey)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
