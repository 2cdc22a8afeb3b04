package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Veraticus/hscode/internal/common"
	"google.golang.org/genai"
)

// geminiClient implements Provider with the Gemini API.
type geminiClient struct {
	client *genai.Client
	model  string
}

// newGeminiClient creates a new Gemini API client.
func newGeminiClient(ctx context.Context, cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key is required", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = strings.TrimRight(cfg.BaseURL, "/") + "/"
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &geminiClient{
		client: client,
		model:  model,
	}, nil
}

func (c *geminiClient) Name() string { return "gemini" }

// Generate sends a generateContent request with the image inline.
func (c *geminiClient) Generate(ctx context.Context, req Request) (string, error) {
	var parts []*genai.Part
	if req.Image != nil {
		parts = append(parts, genai.NewPartFromBytes(req.Image.Data, req.Image.MediaType))
	}
	parts = append(parts, genai.NewPartFromText(req.Prompt))
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		MaxOutputTokens:  int32(req.MaxTokens),
	}
	if req.Temperature != nil {
		genConfig.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	if req.System != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, genConfig)
	if err != nil {
		return "", classifyGeminiError(err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked: %s", common.ErrInferenceFailed, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: Gemini returned no candidates", common.ErrInferenceFailed)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("%w: Gemini returned an empty response", common.ErrInferenceFailed)
	}
	return text.String(), nil
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		detail := fmt.Errorf("gemini API error (status %d): %s", apiErr.Code, apiErr.Message)
		if isGeminiOverload(apiErr) {
			return common.NewOverloadedError(detail)
		}
		return fmt.Errorf("%w: %w", common.ErrInferenceFailed, detail)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: gemini request failed: %v", common.ErrInferenceFailed, err)
}

func isGeminiOverload(apiErr genai.APIError) bool {
	switch apiErr.Code {
	case http.StatusServiceUnavailable, http.StatusTooManyRequests, statusOverloaded:
		return true
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "overloaded")
}
