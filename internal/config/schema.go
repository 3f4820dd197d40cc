package config

import (
	"fmt"
	"time"
)

// Config holds medlens configuration.
// Stored at: ~/.medlens/config.yaml
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Normalizer   NormalizerCfg             `mapstructure:"normalizer" yaml:"normalizer"`
	Server       ServerCfg                 `mapstructure:"server" yaml:"server"`
	Formulary    FormularyCfg              `mapstructure:"formulary" yaml:"formulary"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type           string  `mapstructure:"type" yaml:"type"`                       // "openrouter", "openai"
	Model          string  `mapstructure:"model" yaml:"model"`                     // Must accept image input
	APIKey         string  `mapstructure:"api_key" yaml:"api_key"`                 // Supports ${ENV_VAR} syntax
	BaseURL        string  `mapstructure:"base_url" yaml:"base_url,omitempty"`     // Optional endpoint override
	RateLimit      float64 `mapstructure:"rate_limit" yaml:"rate_limit"`           // Requests per second, 0 = unlimited
	MaxRetries     int     `mapstructure:"max_retries" yaml:"max_retries"`         // Attempts per request
	TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"` // Per-attempt HTTP timeout
	Enabled        bool    `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default provider selections.
type DefaultsCfg struct {
	LLMProvider string  `mapstructure:"llm_provider" yaml:"llm_provider"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// NormalizerCfg configures PDF rasterization.
type NormalizerCfg struct {
	Rasterizer   string `mapstructure:"rasterizer" yaml:"rasterizer"` // "exec" or "docker"
	PdftoppmPath string `mapstructure:"pdftoppm_path" yaml:"pdftoppm_path"`
	DPI          int    `mapstructure:"dpi" yaml:"dpi"`
	DockerImage  string `mapstructure:"docker_image" yaml:"docker_image"`
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host                   string `mapstructure:"host" yaml:"host"`
	Port                   string `mapstructure:"port" yaml:"port"`
	MaxUploadMB            int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	AnalysisTimeoutSeconds int    `mapstructure:"analysis_timeout_seconds" yaml:"analysis_timeout_seconds"`
}

// FormularyCfg configures the OpenFDA lookup.
type FormularyCfg struct {
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxAttempts    int    `mapstructure:"max_attempts" yaml:"max_attempts"`
}

// Rasterizer backends.
const (
	RasterizerExec   = "exec"
	RasterizerDocker = "docker"
)

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openrouter": {
				Type:           "openrouter",
				Model:          "google/gemini-2.5-flash",
				APIKey:         "${OPENROUTER_API_KEY}",
				MaxRetries:     3,
				TimeoutSeconds: 120,
				Enabled:        true,
			},
			"openai": {
				Type:           "openai",
				Model:          "gpt-4o-mini",
				APIKey:         "${OPENAI_API_KEY}",
				MaxRetries:     3,
				TimeoutSeconds: 120,
				Enabled:        true,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider: "openrouter",
			Temperature: 0.1,
			MaxTokens:   4096,
		},
		Normalizer: NormalizerCfg{
			Rasterizer:   RasterizerExec,
			PdftoppmPath: "pdftoppm",
			DPI:          300,
			DockerImage:  "minidocks/poppler:latest",
		},
		Server: ServerCfg{
			Host:                   "127.0.0.1",
			Port:                   "8080",
			MaxUploadMB:            16,
			AnalysisTimeoutSeconds: 120,
		},
		Formulary: FormularyCfg{
			BaseURL:        "https://api.fda.gov",
			TimeoutSeconds: 15,
			MaxAttempts:    3,
		},
	}
}

// Validate checks values that would otherwise fail later at request time.
func (c *Config) Validate() error {
	switch c.Normalizer.Rasterizer {
	case RasterizerExec, RasterizerDocker:
	default:
		return fmt.Errorf("normalizer.rasterizer must be %q or %q, got %q", RasterizerExec, RasterizerDocker, c.Normalizer.Rasterizer)
	}
	for name, p := range c.LLMProviders {
		switch p.Type {
		case "openrouter", "openai":
		default:
			return fmt.Errorf("llm_providers.%s: unknown type %q", name, p.Type)
		}
	}
	if c.Defaults.LLMProvider != "" {
		if _, ok := c.LLMProviders[c.Defaults.LLMProvider]; !ok {
			return fmt.Errorf("defaults.llm_provider %q is not configured", c.Defaults.LLMProvider)
		}
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive")
	}
	return nil
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}

// MaxUploadBytes is the upload limit in bytes.
func (s ServerCfg) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

// AnalysisTimeout is the per-request analysis deadline; zero disables it.
func (s ServerCfg) AnalysisTimeout() time.Duration {
	return time.Duration(s.AnalysisTimeoutSeconds) * time.Second
}

// Addr is the listen address.
func (s ServerCfg) Addr() string {
	return s.Host + ":" + s.Port
}

// Timeout is the per-request OpenFDA timeout.
func (f FormularyCfg) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}
