package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendscribe/internal/config"
	"trendscribe/internal/utils/text"
)

func TestNew(t *testing.T) {
	tests := []struct {
		genType  string
		wantName string
		wantType any
	}{
		{config.GeneratorDeepSeek, "deepseek", &OpenAICompatible{}},
		{config.GeneratorOpenAI, "openai", &OpenAICompatible{}},
		{config.GeneratorGemini, "gemini", &OpenAICompatible{}},
		{config.GeneratorClaude, "claude", &Claude{}},
		{config.GeneratorNoop, "noop", &Noop{}},
	}
	for _, tt := range tests {
		t.Run(tt.genType, func(t *testing.T) {
			backend, err := New(testGeneratorConfig(tt.genType, ""), nil)
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, backend)
			assert.Equal(t, tt.wantName, backend.Name())
		})
	}

	_, err := New(testGeneratorConfig("llama", ""), nil)
	assert.Error(t, err)
}

func TestNoop_Generate(t *testing.T) {
	out, err := NewNoop().Generate(context.Background())
	require.NoError(t, err)

	extracted := text.Extract(out)
	assert.Contains(t, extracted.Title, "Trend Report for")
	assert.NotEmpty(t, extracted.Body)
	assert.Equal(t, "trendscribe noop generator", extracted.Sources)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewNoop().Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewPrometheusMetrics_ReusesRegisteredCollectors(t *testing.T) {
	first := NewPrometheusMetrics(nil)
	second := NewPrometheusMetrics(nil)
	assert.Same(t, first.requestsTotal, second.requestsTotal)
}
