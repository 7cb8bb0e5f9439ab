package generator

import (
	"fmt"

	"trendscribe/internal/config"
	"trendscribe/internal/usecase/generate"
)

// New returns the backend selected by cfg.Type.
func New(cfg *config.GeneratorConfig, metrics MetricsRecorder) (generate.Backend, error) {
	switch cfg.Type {
	case config.GeneratorDeepSeek, config.GeneratorOpenAI, config.GeneratorGemini:
		return NewOpenAICompatible(cfg.Type, cfg, metrics), nil
	case config.GeneratorClaude:
		return NewClaude(cfg, metrics), nil
	case config.GeneratorNoop:
		return NewNoop(), nil
	default:
		return nil, fmt.Errorf("unsupported generator type %q", cfg.Type)
	}
}
