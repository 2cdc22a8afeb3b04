package session

import (
	"context"

	"github.com/Veraticus/hscode/internal/model"
)

// Inferencer predicts and refines HS codes for an image.
type Inferencer interface {
	Predict(ctx context.Context, img model.Image, lang model.Language) (model.Prediction, error)
	Refine(ctx context.Context, img model.Image, candidates []model.ClassificationRecord, clar model.ClarificationRequest, answer string, lang model.Language) (model.ClassificationRecord, error)
}

// QuotaGuard gates predictions on the daily quota of an identity class.
type QuotaGuard interface {
	CheckAndReserve(ctx context.Context, class model.IdentityClass) error
	Commit(ctx context.Context, class model.IdentityClass) error
}
