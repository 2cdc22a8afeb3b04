package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Veraticus/hscode/internal/common"
	"github.com/Veraticus/hscode/internal/model"
)

// cleanMarkdownWrapper strips code fences and any prose surrounding the
// outermost JSON value.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```JSON")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
		content = strings.TrimSpace(content)
	}

	start := strings.IndexAny(content, "[{")
	if start < 0 {
		return content
	}
	closing := byte('}')
	if content[start] == '[' {
		closing = ']'
	}
	end := strings.LastIndexByte(content, closing)
	if end < start {
		return content[start:]
	}
	return content[start : end+1]
}

func inferenceError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrInferenceFailed, fmt.Sprintf(format, args...))
}

// parseCandidates decodes a non-empty array of records. A single object is
// accepted as a one-element list.
func parseCandidates(content string) ([]model.ClassificationRecord, error) {
	data := []byte(cleanMarkdownWrapper(content))
	if len(data) == 0 {
		return nil, inferenceError("empty response")
	}

	if data[0] == '{' {
		record, err := parseRecord(content)
		if err != nil {
			return nil, err
		}
		return []model.ClassificationRecord{record}, nil
	}

	if _, err := validateAgainst(recordListSchema, data); err != nil {
		return nil, inferenceError("%v", err)
	}

	var records []model.ClassificationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, inferenceError("failed to decode predictions: %v", err)
	}
	for i := range records {
		records[i] = tidyRecord(records[i])
	}
	return records, nil
}

// parseRecord decodes a single record. A one-element or longer array yields
// its first element.
func parseRecord(content string) (model.ClassificationRecord, error) {
	data := []byte(cleanMarkdownWrapper(content))
	if len(data) == 0 {
		return model.ClassificationRecord{}, inferenceError("empty response")
	}

	if data[0] == '[' {
		records, err := parseCandidates(content)
		if err != nil {
			return model.ClassificationRecord{}, err
		}
		return records[0], nil
	}

	if _, err := validateAgainst(recordSchema, data); err != nil {
		return model.ClassificationRecord{}, inferenceError("%v", err)
	}

	var record model.ClassificationRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.ClassificationRecord{}, inferenceError("failed to decode prediction: %v", err)
	}
	return tidyRecord(record), nil
}

func parseClarification(content string) (model.ClarificationRequest, error) {
	data := []byte(cleanMarkdownWrapper(content))
	if len(data) == 0 {
		return model.ClarificationRequest{}, inferenceError("empty clarification response")
	}

	if _, err := validateAgainst(clarificationSchema, data); err != nil {
		return model.ClarificationRequest{}, inferenceError("%v", err)
	}

	var clar model.ClarificationRequest
	if err := json.Unmarshal(data, &clar); err != nil {
		return model.ClarificationRequest{}, inferenceError("failed to decode clarification: %v", err)
	}

	clar.Question = strings.TrimSpace(clar.Question)
	for i, opt := range clar.Options {
		clar.Options[i] = strings.TrimSpace(opt)
	}
	if !clar.Valid() {
		return model.ClarificationRequest{}, inferenceError("clarification has blank or duplicate options")
	}
	seen := make(map[string]bool, len(clar.Options))
	for _, opt := range clar.Options {
		if seen[opt] {
			return model.ClarificationRequest{}, inferenceError("clarification has blank or duplicate options")
		}
		seen[opt] = true
	}
	return clar, nil
}

func tidyRecord(r model.ClassificationRecord) model.ClassificationRecord {
	return model.ClassificationRecord{
		Code:        strings.TrimSpace(r.Code),
		Description: strings.TrimSpace(r.Description),
		Reasoning:   strings.TrimSpace(r.Reasoning),
		Tariff:      strings.TrimSpace(r.Tariff),
		Steps:       strings.TrimSpace(r.Steps),
	}
}
