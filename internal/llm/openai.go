package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/hscode/internal/common"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// openAIClient implements Provider for the OpenAI chat completions API.
type openAIClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

// newOpenAIClient creates a new OpenAI API client.
func newOpenAIClient(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = defaultHTTPTimeout
	}

	return &openAIClient{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

func (c *openAIClient) Name() string { return "openai" }

type openAIContentPart struct {
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
}

type openAIImageURL struct {
	URL string `json:"url"`
}

type openAIMessage struct {
	Content any    `json:"content"`
	Role    string `json:"role"`
}

type openAIRequest struct {
	Temperature    *float64        `json:"temperature,omitempty"`
	ResponseFormat *openAIRespFmt  `json:"response_format,omitempty"`
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
}

type openAIRespFmt struct {
	Type string `json:"type"`
}

// openAIResponse represents the OpenAI API response structure.
type openAIResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Generate sends a chat completion with the image as a data URI.
func (c *openAIClient) Generate(ctx context.Context, req Request) (string, error) {
	parts := []openAIContentPart{{Type: "text", Text: req.Prompt}}
	if req.Image != nil {
		parts = append(parts, openAIContentPart{
			Type:     "image_url",
			ImageURL: &openAIImageURL{URL: req.Image.DataURI()},
		})
	}

	var messages []openAIMessage
	if req.System != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: parts})

	body := openAIRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	// Predictions are arrays, which json_object mode does not allow
	if req.Image == nil {
		body.ResponseFormat = &openAIRespFmt{Type: "json_object"}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", fmt.Errorf("%w: request failed: %v", common.ErrInferenceFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", common.ErrInferenceFailed, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
		return "", common.NewOverloadedError(fmt.Errorf("OpenAI API error (status %d)", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: OpenAI API error (status %d): %s", common.ErrInferenceFailed, resp.StatusCode, truncate(string(respBody), 200))
	}

	var response openAIResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %v", common.ErrInferenceFailed, err)
	}
	if len(response.Choices) == 0 || strings.TrimSpace(response.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: no completion choices returned", common.ErrInferenceFailed)
	}
	return response.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
