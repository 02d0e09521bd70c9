package factory

import (
	"fmt"
	"strings"

	"rd-assistant/pkg/llm"
	"rd-assistant/pkg/llm/anthropic"
	"rd-assistant/pkg/llm/ollama"
	"rd-assistant/pkg/llm/openai"
)

func NewLLMProvider(cfg llm.Config) (llm.LLMProvider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return openai.NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case "azure":
		return openai.NewAzureProvider(cfg.APIKey, cfg.BaseURL, cfg.APIVersion, cfg.DeploymentName), nil
	case "anthropic":
		return anthropic.NewAnthropicProvider(cfg.APIKey, cfg.Model, ""), nil
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
