package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/hscode/internal/common"
	"github.com/Veraticus/hscode/internal/model"
	"github.com/google/uuid"
)

// Sampling temperatures per call.
const (
	predictTemperature = 0.2
	refineTemperature  = 0.1
)

// Service predicts and refines HS codes using a Provider, with retry on
// overload, rate limiting, and a prediction cache.
type Service struct {
	provider    Provider
	cache       *predictionCache
	logger      *slog.Logger
	rateLimiter *rateLimiter
	retryOpts   common.RetryOptions
	maxTokens   int
}

// New creates a Service for the provider named in cfg.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Service, error) {
	provider, err := NewProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}
	return NewService(provider, cfg, logger), nil
}

// NewService wraps an existing provider.
func NewService(provider Provider, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	retryOpts := common.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		ShouldRetry:  common.IsRetryable,
		Logger:       logger,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	return &Service{
		provider:    provider,
		cache:       newPredictionCache(cfg.CacheTTL),
		logger:      logger.With("provider", provider.Name()),
		retryOpts:   retryOpts,
		rateLimiter: newRateLimiter(cfg.RateLimit),
		maxTokens:   maxTokens,
	}
}

// Predict returns the most likely HS codes for img. When more than one
// candidate comes back a clarification question is requested as a second
// call; a failed clarification leaves the prediction without one.
func (s *Service) Predict(ctx context.Context, img model.Image, lang model.Language) (model.Prediction, error) {
	if img.Empty() {
		return model.Prediction{}, fmt.Errorf("%w: no image", common.ErrInputInvalid)
	}

	key := cacheKey(img, lang)
	if prediction, found := s.cache.get(key); found {
		s.logger.Debug("cache hit for image", "digest", img.Digest()[:12], "language", lang)
		return prediction, nil
	}

	content, err := s.generate(ctx, "predict", Request{
		System:      systemPrompt,
		Prompt:      predictPrompt(lang),
		Image:       &img,
		Temperature: temperature(predictTemperature),
	})
	if err != nil {
		return model.Prediction{}, err
	}

	candidates, err := parseCandidates(content)
	if err != nil {
		s.logger.Warn("rejected prediction response", "error", err)
		return model.Prediction{}, err
	}

	prediction := model.Prediction{Candidates: candidates}
	if len(candidates) > 1 {
		clar, clarErr := s.Clarify(ctx, candidates, lang)
		if clarErr != nil {
			if errors.Is(clarErr, context.Canceled) {
				return model.Prediction{}, clarErr
			}
			s.logger.Warn("could not get clarification", "error", clarErr)
		} else {
			prediction.Clarification = &clar
		}
	}

	s.cache.set(key, prediction)
	return prediction, nil
}

// Clarify asks for a single question that distinguishes among candidates.
func (s *Service) Clarify(ctx context.Context, candidates []model.ClassificationRecord, lang model.Language) (model.ClarificationRequest, error) {
	content, err := s.generate(ctx, "clarify", Request{
		System: systemPrompt,
		Prompt: clarificationPrompt(candidates, lang),
	})
	if err != nil {
		return model.ClarificationRequest{}, err
	}
	return parseClarification(content)
}

// Refine returns the single best HS code given the user's answer to clar.
func (s *Service) Refine(ctx context.Context, img model.Image, candidates []model.ClassificationRecord, clar model.ClarificationRequest, answer string, lang model.Language) (model.ClassificationRecord, error) {
	if len(candidates) == 0 {
		return model.ClassificationRecord{}, fmt.Errorf("%w: no candidates to refine", common.ErrInferenceFailed)
	}

	content, err := s.generate(ctx, "refine", Request{
		System:      systemPrompt,
		Prompt:      refinePrompt(candidates, clar, answer, lang),
		Image:       &img,
		Temperature: temperature(refineTemperature),
	})
	if err != nil {
		return model.ClassificationRecord{}, err
	}

	record, err := parseRecord(content)
	if err != nil {
		s.logger.Warn("rejected refinement response", "error", err)
		return model.ClassificationRecord{}, err
	}
	return record, nil
}

// generate runs one provider call behind the rate limiter with retry.
// Every returned error wraps common.ErrInferenceFailed.
func (s *Service) generate(ctx context.Context, op string, req Request) (string, error) {
	req.ID = uuid.NewString()
	if req.MaxTokens == 0 {
		req.MaxTokens = s.maxTokens
	}
	logger := s.logger.With("op", op, "request_id", req.ID)

	var content string
	start := time.Now()
	err := common.WithRetry(ctx, func() error {
		if err := s.rateLimiter.wait(ctx); err != nil {
			return err
		}
		var genErr error
		content, genErr = s.provider.Generate(ctx, req)
		return genErr
	}, s.retryOpts)

	if err != nil {
		logger.Error("inference call failed", "error", err, "duration", time.Since(start))
		if errors.Is(err, common.ErrInferenceFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", common.ErrInferenceFailed, err)
	}

	logger.Debug("inference call completed", "duration", time.Since(start), "bytes", len(content))
	return content, nil
}
