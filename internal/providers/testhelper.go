package providers

import (
	"os"
)

// TestConfig holds provider credentials loaded from environment variables,
// so integration tests use the same configuration pattern as production.
type TestConfig struct {
	OpenRouterAPIKey string
	OpenAIAPIKey     string
}

// LoadTestConfig loads provider API keys from environment variables.
func LoadTestConfig() TestConfig {
	return TestConfig{
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
	}
}

// HasOpenRouter returns true if an OpenRouter API key is configured.
func (c TestConfig) HasOpenRouter() bool {
	return c.OpenRouterAPIKey != ""
}

// HasOpenAI returns true if an OpenAI API key is configured.
func (c TestConfig) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

// HasAnyLLM returns true if any LLM provider is configured.
func (c TestConfig) HasAnyLLM() bool {
	return c.HasOpenRouter() || c.HasOpenAI()
}

// ToRegistryConfig converts test config to a RegistryConfig.
// Only providers with API keys are included.
func (c TestConfig) ToRegistryConfig() RegistryConfig {
	cfg := RegistryConfig{
		LLMProviders: make(map[string]LLMProviderConfig),
	}
	if c.HasOpenRouter() {
		cfg.LLMProviders[OpenRouterName] = LLMProviderConfig{
			Type:      OpenRouterName,
			APIKey:    c.OpenRouterAPIKey,
			RateLimit: 5,
			Enabled:   true,
		}
	}
	if c.HasOpenAI() {
		cfg.LLMProviders[OpenAIName] = LLMProviderConfig{
			Type:      OpenAIName,
			APIKey:    c.OpenAIAPIKey,
			RateLimit: 5,
			Enabled:   true,
		}
	}
	return cfg
}
