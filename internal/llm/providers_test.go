package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Veraticus/hscode/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

const recordJSON = `[{"hs_code":"0410.00","description":"Edible insects","reasoning":"Dried crickets"}]`

func testRequest() Request {
	img := testImage()
	return Request{
		System:      systemPrompt,
		Prompt:      "classify this",
		Image:       &img,
		Temperature: temperature(0.2),
		MaxTokens:   512,
	}
}

func TestOpenAIClient(t *testing.T) {
	tests := []struct {
		name         string
		response     string
		wantContent  string
		statusCode   int
		wantErr      bool
		wantOverload bool
	}{
		{
			name:        "successful completion",
			statusCode:  http.StatusOK,
			response:    `{"choices":[{"message":{"role":"assistant","content":` + mustQuote(recordJSON) + `},"finish_reason":"stop"}]}`,
			wantContent: recordJSON,
		},
		{
			name:         "rate limited",
			statusCode:   http.StatusTooManyRequests,
			response:     `{"error":{"message":"Rate limit exceeded"}}`,
			wantErr:      true,
			wantOverload: true,
		},
		{
			name:       "bad request",
			statusCode: http.StatusBadRequest,
			response:   `{"error":{"message":"Invalid image"}}`,
			wantErr:    true,
		},
		{
			name:       "empty choices",
			statusCode: http.StatusOK,
			response:   `{"choices":[]}`,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured map[string]any
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/chat/completions", r.URL.Path)
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
				body, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(body, &captured)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.response))
			}))
			defer server.Close()

			client, err := newOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL})
			require.NoError(t, err)

			content, err := client.Generate(context.Background(), testRequest())
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrInferenceFailed)
				assert.Equal(t, tt.wantOverload, errorsIsOverloaded(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantContent, content)

			assert.Equal(t, DefaultOpenAIModel, captured["model"])
			_, hasFormat := captured["response_format"]
			assert.False(t, hasFormat, "image requests return arrays")
			assert.Contains(t, mustMarshal(t, captured["messages"]), "data:image/png;base64,")
		})
	}
}

func TestAnthropicClient(t *testing.T) {
	tests := []struct {
		name         string
		response     string
		wantContent  string
		statusCode   int
		wantErr      bool
		wantOverload bool
	}{
		{
			name:       "successful message",
			statusCode: http.StatusOK,
			response: `{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-5",` +
				`"content":[{"type":"text","text":` + mustQuote(recordJSON) + `}],` +
				`"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":20}}`,
			wantContent: recordJSON,
		},
		{
			name:         "overloaded",
			statusCode:   statusOverloaded,
			response:     `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`,
			wantErr:      true,
			wantOverload: true,
		},
		{
			name:       "invalid request",
			statusCode: http.StatusBadRequest,
			response:   `{"type":"error","error":{"type":"invalid_request_error","message":"bad image"}}`,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured map[string]any
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"), r.URL.Path)
				assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
				body, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(body, &captured)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.response))
			}))
			defer server.Close()

			client, err := newAnthropicClient(Config{APIKey: "test-key", BaseURL: server.URL})
			require.NoError(t, err)

			content, err := client.Generate(context.Background(), testRequest())
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrInferenceFailed)
				assert.Equal(t, tt.wantOverload, errorsIsOverloaded(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantContent, content)

			assert.Equal(t, DefaultAnthropicModel, captured["model"])
			assert.Contains(t, mustMarshal(t, captured["messages"]), `"media_type":"image/png"`)
		})
	}
}

func TestGeminiClient(t *testing.T) {
	tests := []struct {
		name         string
		response     string
		wantContent  string
		statusCode   int
		wantErr      bool
		wantOverload bool
	}{
		{
			name:        "successful generation",
			statusCode:  http.StatusOK,
			response:    `{"candidates":[{"content":{"role":"model","parts":[{"text":` + mustQuote(recordJSON) + `}]}}]}`,
			wantContent: recordJSON,
		},
		{
			name:         "model overloaded",
			statusCode:   http.StatusServiceUnavailable,
			response:     `{"error":{"code":503,"message":"The model is overloaded.","status":"UNAVAILABLE"}}`,
			wantErr:      true,
			wantOverload: true,
		},
		{
			name:         "gateway overloaded status",
			statusCode:   529,
			response:     `{"error":{"code":529,"message":"busy","status":"UNAVAILABLE"}}`,
			wantErr:      true,
			wantOverload: true,
		},
		{
			name:         "overloaded message",
			statusCode:   http.StatusInternalServerError,
			response:     `{"error":{"code":500,"message":"Model is Overloaded, try later","status":"INTERNAL"}}`,
			wantErr:      true,
			wantOverload: true,
		},
		{
			name:       "bad request",
			statusCode: http.StatusBadRequest,
			response:   `{"error":{"code":400,"message":"invalid image","status":"INVALID_ARGUMENT"}}`,
			wantErr:    true,
		},
		{
			name:       "blocked prompt",
			statusCode: http.StatusOK,
			response:   `{"promptFeedback":{"blockReason":"SAFETY"}}`,
			wantErr:    true,
		},
		{
			name:       "no candidates",
			statusCode: http.StatusOK,
			response:   `{"candidates":[]}`,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured map[string]any
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.True(t, strings.HasSuffix(r.URL.Path, "models/"+DefaultGeminiModel+":generateContent"), r.URL.Path)
				assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
				body, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(body, &captured)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.response))
			}))
			defer server.Close()

			client, err := newGeminiClient(context.Background(), Config{APIKey: "test-key", BaseURL: server.URL})
			require.NoError(t, err)

			content, err := client.Generate(context.Background(), testRequest())
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrInferenceFailed)
				assert.Equal(t, tt.wantOverload, errorsIsOverloaded(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantContent, content)

			contents := mustMarshal(t, captured["contents"])
			assert.Contains(t, contents, `"mimeType":"image/png"`)
			assert.Contains(t, contents, `"inlineData"`)
			assert.Contains(t, mustMarshal(t, captured["generationConfig"]), `"responseMimeType":"application/json"`)
		})
	}
}

func TestClassifyGeminiError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantOverload bool
		wantCause    error
	}{
		{name: "unavailable", err: genai.APIError{Code: http.StatusServiceUnavailable, Message: "unavailable"}, wantOverload: true},
		{name: "rate limited", err: genai.APIError{Code: http.StatusTooManyRequests, Message: "quota"}, wantOverload: true},
		{name: "529", err: genai.APIError{Code: 529, Message: "busy"}, wantOverload: true},
		{name: "overloaded text", err: genai.APIError{Code: http.StatusInternalServerError, Message: "The model is overloaded."}, wantOverload: true},
		{name: "wrapped api error", err: fmt.Errorf("send: %w", genai.APIError{Code: 503}), wantOverload: true},
		{name: "bad request", err: genai.APIError{Code: http.StatusBadRequest, Message: "bad"}, wantCause: common.ErrInferenceFailed},
		{name: "transport failure", err: errors.New("connection reset"), wantCause: common.ErrInferenceFailed},
		{name: "canceled", err: context.Canceled, wantCause: context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyGeminiError(tt.err)
			assert.Equal(t, tt.wantOverload, errorsIsOverloaded(got))
			if tt.wantCause != nil {
				assert.ErrorIs(t, got, tt.wantCause)
			}
		})
	}
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	_, err := NewProvider(ctx, Config{Provider: "unknown", APIKey: "k"})
	assert.ErrorIs(t, err, common.ErrInvalidConfig)

	for _, name := range Providers {
		_, err := NewProvider(ctx, Config{Provider: name})
		assert.ErrorIs(t, err, common.ErrMissingConfig, name)
	}

	provider, err := NewProvider(ctx, Config{Provider: "openai", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "openai", provider.Name())
}

func errorsIsOverloaded(err error) bool {
	return common.KindOf(err) == common.KindServiceOverloaded
}

func mustQuote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func mustMarshal(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
