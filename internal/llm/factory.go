package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/puppyjudge/internal/model"
)

// NewProvider creates a new LLM provider based on configuration
func NewProvider(config Config) (Provider, error) {
	var (
		p   Provider
		err error
	)

	switch strings.ToLower(config.Provider) {
	case "gemini", "google":
		var g *GeminiProvider
		g, err = NewGeminiProvider(config)
		p = g
	case "openai":
		var o *OpenAIProvider
		o, err = NewOpenAIProvider(config)
		p = o
	case "anthropic", "claude":
		var a *AnthropicProvider
		a, err = NewAnthropicProvider(config)
		p = a
	case "ollama":
		var o *OllamaProvider
		o, err = NewOllamaProvider(config)
		p = o
	case "":
		// No provider configured - return nil (generation disabled)
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: gemini, openai, anthropic, ollama)", config.Provider)
	}

	// never hand back an interface wrapping a nil pointer
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ConfigFromModel converts model.LLMConfig to llm.Config.
// An empty API key falls back to the provider's conventional environment variable.
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	apiKey := modelConfig.APIKey
	if apiKey == "" {
		apiKey = APIKeyFromEnv(modelConfig.Provider)
	}
	return Config{
		Provider:    modelConfig.Provider,
		Model:       modelConfig.Model,
		APIKey:      apiKey,
		BaseURL:     modelConfig.BaseURL,
		Timeout:     modelConfig.Timeout,
		MaxTokens:   modelConfig.MaxTokens,
		Temperature: modelConfig.Temperature,
		HTTPProxy:   modelConfig.HTTPProxy,
		HTTPSProxy:  modelConfig.HTTPSProxy,
	}
}
