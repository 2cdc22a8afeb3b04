package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Veraticus/hscode/internal/common"
	"github.com/Veraticus/hscode/internal/llm"
	"github.com/spf13/viper"
)

// providerKeyEnv lists the environment variables consulted for each
// provider's API key, in order.
var providerKeyEnv = map[string][]string{
	"gemini":    {"GEMINI_API_KEY", "API_KEY"},
	"anthropic": {"ANTHROPIC_API_KEY"},
	"openai":    {"OPENAI_API_KEY"},
}

// LoadLLMConfig loads inference configuration from Viper and environment variables.
// It follows this precedence:
// 1. Viper configuration (from config file or HSCODE_ env vars)
// 2. Direct environment variables (GEMINI_API_KEY, ANTHROPIC_API_KEY, ...)
// 3. Default values
func LoadLLMConfig() (llm.Config, error) {
	cfg := llm.Config{
		Provider:    strings.ToLower(viper.GetString("llm.provider")),
		APIKey:      viper.GetString("llm.api_key"),
		Model:       viper.GetString("llm.model"),
		BaseURL:     viper.GetString("llm.base_url"),
		MaxRetries:  viper.GetInt("llm.max_retries"),
		RetryDelay:  viper.GetDuration("llm.retry_delay"),
		CacheTTL:    viper.GetDuration("llm.cache_ttl"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
		HTTPTimeout: viper.GetDuration("llm.timeout"),
	}

	if cfg.Provider == "" {
		cfg.Provider = "gemini"
	}

	envs, ok := providerKeyEnv[cfg.Provider]
	if !ok {
		return llm.Config{}, fmt.Errorf("%w: unsupported LLM provider: %s", common.ErrInvalidConfig, cfg.Provider)
	}

	if cfg.APIKey == "" {
		for _, name := range envs {
			if v := os.Getenv(name); v != "" {
				cfg.APIKey = v
				break
			}
		}
	}
	if cfg.APIKey == "" {
		return llm.Config{}, fmt.Errorf("%w: no API key for %s; set llm.api_key or %s",
			common.ErrMissingConfig, cfg.Provider, strings.Join(envs, " / "))
	}

	if cfg.MaxRetries < 0 || cfg.RateLimit < 0 || cfg.MaxTokens < 0 {
		return llm.Config{}, fmt.Errorf("%w: llm.max_retries, llm.rate_limit and llm.max_tokens must not be negative", common.ErrInvalidConfig)
	}

	return cfg, nil
}
