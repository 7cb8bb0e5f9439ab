package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"trendscribe/internal/config"
)

// Claude generates posts through the Anthropic Messages API.
type Claude struct {
	caller
	client      anthropic.Client
	maxTokens   int64
	temperature float64
}

// NewClaude creates the Claude backend. The SDK's own retries are disabled.
func NewClaude(cfg *config.GeneratorConfig, metrics MetricsRecorder) *Claude {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Claude{
		caller:      newCaller(config.GeneratorClaude, cfg.Model, metrics),
		client:      anthropic.NewClient(opts...),
		maxTokens:   int64(cfg.MaxTokens),
		temperature: float64(cfg.Temperature),
	}
}

// Generate implements generate.Backend.
func (c *Claude) Generate(ctx context.Context) (string, error) {
	return c.generate(ctx, c.complete)
}

func (c *Claude) complete(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		return "", fmt.Errorf("claude api returned empty response")
	}

	// Long posts may come back as several text blocks.
	var sb strings.Builder
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}
	return requireText(c.name, sb.String())
}
