package intent

import (
	"context"
	"fmt"

	"github.com/WilliamZhang9/Call2Map/config"
)

// New builds the configured extractor.
func New(ctx context.Context, cfg *config.Config) (Extractor, error) {
	switch cfg.LLMProvider {
	case "gemini":
		return NewGeminiExtractor(ctx, cfg.GeminiAPIKey)
	case "openai":
		return NewOpenAIExtractor(cfg.OpenAIAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.LLMProvider)
	}
}
