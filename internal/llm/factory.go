package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/hscode/internal/common"
)

// Providers lists the supported provider names.
var Providers = []string{"gemini", "anthropic", "openai"}

// NewProvider creates a raw provider based on the provided configuration.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "gemini", "":
		return newGeminiClient(ctx, cfg)
	case "anthropic":
		return newAnthropicClient(cfg)
	case "openai":
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", common.ErrInvalidConfig, cfg.Provider)
	}
}
