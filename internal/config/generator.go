// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	pkgconfig "trendscribe/pkg/config"
)

// Generator backend types accepted in GENERATOR_TYPE.
const (
	GeneratorDeepSeek = "deepseek"
	GeneratorOpenAI   = "openai"
	GeneratorGemini   = "gemini"
	GeneratorClaude   = "claude"
	GeneratorNoop     = "noop"
)

// GeneratorConfig holds settings for the text generation backend.
type GeneratorConfig struct {
	// Type selects the backend. Default: "deepseek".
	Type string

	// APIKey authenticates with the backend. Read from the provider's own
	// variable (DEEPSEEK_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY,
	// ANTHROPIC_API_KEY). Not required for "noop".
	APIKey string

	// BaseURL overrides the API endpoint. DeepSeek and Gemini are reached
	// through their OpenAI-compatible endpoints.
	BaseURL string

	// Model is the provider model identifier.
	Model string

	// MaxTokens caps the response length. Default: 3000.
	MaxTokens int

	// Temperature controls sampling. Default: 0.7. Ignored by "noop".
	Temperature float32

	// Timeout bounds a single generation call. Default: 2m.
	Timeout time.Duration
}

type generatorDefaults struct {
	keyEnv  string
	baseURL string
	model   string
}

var generatorProviders = map[string]generatorDefaults{
	GeneratorDeepSeek: {keyEnv: "DEEPSEEK_API_KEY", baseURL: "https://api.deepseek.com/v1", model: "deepseek-chat"},
	GeneratorOpenAI:   {keyEnv: "OPENAI_API_KEY", model: "gpt-4o-mini"},
	GeneratorGemini:   {keyEnv: "GEMINI_API_KEY", baseURL: "https://generativelanguage.googleapis.com/v1beta/openai/", model: "gemini-1.5-pro"},
	GeneratorClaude:   {keyEnv: "ANTHROPIC_API_KEY", model: "claude-sonnet-4-5-20250929"},
	GeneratorNoop:     {model: "noop"},
}

// LoadGeneratorConfig loads generator configuration from environment
// variables and validates it. A missing API key for the selected backend is
// an error.
//
// Environment variables:
//   - GENERATOR_TYPE: deepseek, openai, gemini, claude or noop (default: deepseek)
//   - GENERATOR_BASE_URL, GENERATOR_MODEL: override the provider defaults
//   - GENERATOR_MAX_TOKENS (default: 3000), GENERATOR_TEMPERATURE (default: 0.7)
//   - GENERATION_TIMEOUT (default: 2m)
func LoadGeneratorConfig() (*GeneratorConfig, error) {
	genType := strings.ToLower(strings.TrimSpace(pkgconfig.GetEnvString("GENERATOR_TYPE", GeneratorDeepSeek)))

	defaults, ok := generatorProviders[genType]
	if !ok {
		return nil, fmt.Errorf("GENERATOR_TYPE %q is not supported", genType)
	}

	config := &GeneratorConfig{
		Type:        genType,
		BaseURL:     pkgconfig.GetEnvString("GENERATOR_BASE_URL", defaults.baseURL),
		Model:       pkgconfig.GetEnvString("GENERATOR_MODEL", defaults.model),
		MaxTokens:   pkgconfig.GetEnvInt("GENERATOR_MAX_TOKENS", 3000),
		Temperature: float32(pkgconfig.GetEnvFloat("GENERATOR_TEMPERATURE", 0.7)),
		Timeout:     pkgconfig.GetEnvDuration("GENERATION_TIMEOUT", 2*time.Minute),
	}
	if defaults.keyEnv != "" {
		config.APIKey = pkgconfig.GetEnvString(defaults.keyEnv, "")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator configuration: %w", err)
	}

	return config, nil
}

// Validate checks configuration correctness.
func (c *GeneratorConfig) Validate() error {
	defaults, ok := generatorProviders[c.Type]
	if !ok {
		return fmt.Errorf("GENERATOR_TYPE %q is not supported", c.Type)
	}

	if defaults.keyEnv != "" && c.APIKey == "" {
		return fmt.Errorf("%s is required for generator %q", defaults.keyEnv, c.Type)
	}

	if c.Model == "" {
		return fmt.Errorf("GENERATOR_MODEL cannot be empty")
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("GENERATOR_MAX_TOKENS must be positive, got %d", c.MaxTokens)
	}

	if err := pkgconfig.ValidateFloatRange(float64(c.Temperature), 0, 2); err != nil {
		return fmt.Errorf("GENERATOR_TEMPERATURE: %w", err)
	}

	if err := pkgconfig.ValidatePositiveDuration(c.Timeout); err != nil {
		return fmt.Errorf("GENERATION_TIMEOUT: %w", err)
	}

	return nil
}
