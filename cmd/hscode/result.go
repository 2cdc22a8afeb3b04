package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/hscode/internal/common"
	"github.com/Veraticus/hscode/internal/model"
	"github.com/Veraticus/hscode/internal/report"
)

// savedResult is the on-disk form written by classify --save and read by export.
type savedResult struct {
	GeneratedAt time.Time                    `json:"generated_at"`
	SessionID   string                       `json:"session_id,omitempty"`
	Language    model.Language               `json:"language"`
	Answer      string                       `json:"answer,omitempty"`
	Records     []model.ClassificationRecord `json:"records"`
	Confirmed   bool                         `json:"confirmed"`
}

func newSavedResult(id string, in report.Input) savedResult {
	return savedResult{
		GeneratedAt: in.GeneratedAt,
		SessionID:   id,
		Language:    in.Language,
		Answer:      in.Answer,
		Records:     in.Records,
		Confirmed:   in.Confirmed,
	}
}

func (r savedResult) input() report.Input {
	return report.Input{
		GeneratedAt: r.GeneratedAt,
		Answer:      r.Answer,
		Language:    r.Language,
		Records:     r.Records,
		Confirmed:   r.Confirmed,
	}
}

func saveResult(path string, result savedResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func loadResult(path string) (savedResult, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied result file
	if err != nil {
		return savedResult{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var result savedResult
	if err := json.Unmarshal(data, &result); err != nil {
		return savedResult{}, fmt.Errorf("%w: %s is not a saved result: %v", common.ErrExportFailed, path, err)
	}
	if len(result.Records) == 0 {
		return savedResult{}, fmt.Errorf("%w: %s has no records", common.ErrExportFailed, path)
	}
	for i, r := range result.Records {
		if strings.TrimSpace(r.Code) == "" {
			return savedResult{}, fmt.Errorf("%w: record %d has no HS code", common.ErrExportFailed, i+1)
		}
	}
	if result.Confirmed && len(result.Records) != 1 {
		return savedResult{}, fmt.Errorf("%w: a confirmed result must hold exactly one record", common.ErrExportFailed)
	}
	if result.Language, err = model.ParseLanguage(string(result.Language)); err != nil {
		return savedResult{}, fmt.Errorf("%w: %v", common.ErrExportFailed, err)
	}
	if result.GeneratedAt.IsZero() {
		result.GeneratedAt = time.Now()
	}
	return result, nil
}
