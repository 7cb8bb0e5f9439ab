package generator

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"trendscribe/internal/config"
)

// OpenAICompatible generates posts through an OpenAI chat completions API.
// DeepSeek and Gemini expose the same API and differ only in base URL and
// model.
type OpenAICompatible struct {
	caller
	client      *openai.Client
	maxTokens   int
	temperature float32
}

// NewOpenAICompatible creates a backend named name from cfg. An empty
// cfg.BaseURL uses the OpenAI default.
func NewOpenAICompatible(name string, cfg *config.GeneratorConfig, metrics MetricsRecorder) *OpenAICompatible {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAICompatible{
		caller:      newCaller(name, cfg.Model, metrics),
		client:      openai.NewClientWithConfig(clientConfig),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// Generate implements generate.Backend.
func (o *OpenAICompatible) Generate(ctx context.Context) (string, error) {
	return o.generate(ctx, o.complete)
}

func (o *OpenAICompatible) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%s api error: %w", o.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s api returned empty response", o.name)
	}

	return requireText(o.name, resp.Choices[0].Message.Content)
}
