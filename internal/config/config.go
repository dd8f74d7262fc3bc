// Package config loads service configuration from an optional YAML file
// overlaid with INTERVIEWD_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Backend identifies one of the supported LLM backends.
type Backend string

const (
	BackendOpenAI     Backend = "openai"
	BackendAnthropic  Backend = "anthropic"
	BackendOpenRouter Backend = "openrouter"
	BackendOllama     Backend = "ollama"
	BackendNone       Backend = "none"
)

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Storage StorageConfig `koanf:"storage"`
	LLM     LLMConfig     `koanf:"llm"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type StorageConfig struct {
	Path string `koanf:"path"`
}

type LLMConfig struct {
	// Provider selects the active backend. When empty, the backend is
	// inferred from the configured credentials (ollama wins if a host is
	// set, otherwise none).
	Provider   string           `koanf:"provider"`
	OpenAI     OpenAIConfig     `koanf:"openai"`
	Anthropic  AnthropicConfig  `koanf:"anthropic"`
	OpenRouter OpenRouterConfig `koanf:"openrouter"`
	Ollama     OllamaConfig     `koanf:"ollama"`
}

type OpenAIConfig struct {
	APIKey string `koanf:"api_key"`
	Model  string `koanf:"model"`
}

type AnthropicConfig struct {
	APIKey string `koanf:"api_key"`
	Model  string `koanf:"model"`
}

type OpenRouterConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
}

type OllamaConfig struct {
	Host  string `koanf:"host"`
	Model string `koanf:"model"`
}

// Load reads configuration from path (ignored when missing) and the
// environment. INTERVIEWD_LLM_OPENAI_API_KEY maps to llm.openai.api_key.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	// Double underscore separates path segments so keys like api_key
	// survive: INTERVIEWD_LLM__OPENAI__API_KEY -> llm.openai.api_key.
	if err := k.Load(env.Provider("INTERVIEWD_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "INTERVIEWD_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	// Defaults
	if !k.Exists("server.port") {
		k.Set("server.port", 8080)
	}
	if !k.Exists("storage.path") {
		k.Set("storage.path", "./data/interviewd.db")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ResolveBackend applies the selector and credential rules once, at startup.
// A selected backend without a usable credential set degrades to none, as
// does the absence of any selector: fallback-only mode is silent and
// non-fatal by design.
func (c LLMConfig) ResolveBackend() Backend {
	selector := strings.ToLower(strings.TrimSpace(c.Provider))
	if selector == "" {
		if c.Ollama.Host != "" {
			return BackendOllama
		}
		return BackendNone
	}

	switch Backend(selector) {
	case BackendOpenAI:
		if c.OpenAI.APIKey != "" {
			return BackendOpenAI
		}
	case BackendAnthropic:
		if c.Anthropic.APIKey != "" {
			return BackendAnthropic
		}
	case BackendOpenRouter:
		if c.OpenRouter.APIKey != "" {
			return BackendOpenRouter
		}
	case BackendOllama:
		// The ollama host has a default; a bare selector is enough.
		return BackendOllama
	}
	return BackendNone
}
