package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Veraticus/hscode/internal/common"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// statusOverloaded is Anthropic's overloaded_error status.
const statusOverloaded = 529

// anthropicClient implements Provider with the Anthropic Messages API.
type anthropicClient struct {
	client anthropic.Client
	model  string
}

// newAnthropicClient creates a new Anthropic API client.
func newAnthropicClient(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key is required", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultAnthropicModel
	}

	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = defaultHTTPTimeout
	}

	// Retries are handled by Service so overload backoff is uniform across providers
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &anthropicClient{
		client: anthropic.NewClient(opts...),
		model:  model,
	}, nil
}

func (c *anthropicClient) Name() string { return "anthropic" }

// Generate sends a Messages request with the image as a base64 block.
func (c *anthropicClient) Generate(ctx context.Context, req Request) (string, error) {
	var blocks []anthropic.ContentBlockParamUnion
	if req.Image != nil {
		blocks = append(blocks, anthropic.NewImageBlockBase64(req.Image.MediaType, req.Image.Base64()))
	}
	blocks = append(blocks, anthropic.NewTextBlock(req.Prompt))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", classifyAnthropicError(err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("%w: no text content in Anthropic response", common.ErrInferenceFailed)
	}
	return text.String(), nil
}

func classifyAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case statusOverloaded, http.StatusServiceUnavailable, http.StatusTooManyRequests:
			return common.NewOverloadedError(fmt.Errorf("anthropic API error (status %d)", apiErr.StatusCode))
		default:
			return fmt.Errorf("%w: anthropic API error (status %d): %v", common.ErrInferenceFailed, apiErr.StatusCode, err)
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: anthropic request failed: %v", common.ErrInferenceFailed, err)
}
