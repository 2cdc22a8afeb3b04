// Package llm talks to vision language models to predict and refine HS codes.
// It supports Gemini, Anthropic, and OpenAI providers, with schema-validated
// decoding, retry on overload, rate limiting, and prediction caching.
package llm
