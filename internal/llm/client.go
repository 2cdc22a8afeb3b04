package llm

import (
	"context"
	"time"

	"github.com/Veraticus/hscode/internal/model"
)

// Provider sends a single generation request to a model API and returns the
// raw response text. Providers report overload with common.NewOverloadedError.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Request is one provider call.
type Request struct {
	Image       *model.Image
	Temperature *float64 // nil uses the provider default
	ID          string
	System      string
	Prompt      string
	MaxTokens   int
}

// Config holds configuration for the inference service and its provider.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxRetries  int
	RetryDelay  time.Duration
	CacheTTL    time.Duration
	RateLimit   int
	MaxTokens   int
	HTTPTimeout time.Duration
}

// Default model per provider.
const (
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultAnthropicModel = "claude-sonnet-4-5"
	DefaultOpenAIModel    = "gpt-4o"
)

const (
	defaultMaxTokens   = 2048
	defaultHTTPTimeout = 90 * time.Second
)

func temperature(v float64) *float64 {
	return &v
}
