// Package model defines the value types shared by the classification workflow.
package model

import "strings"

// ClassificationRecord is one HS code candidate or final answer produced by
// the inference service. Records are treated as immutable values.
type ClassificationRecord struct {
	Code        string `json:"hs_code"`
	Description string `json:"description"`
	Reasoning   string `json:"reasoning"`
	Tariff      string `json:"tariff,omitempty"`
	Steps       string `json:"classification_steps,omitempty"` // Loosely formatted numbered list
}

// HasTariff reports whether the record carries a tariff annotation.
func (r ClassificationRecord) HasTariff() bool {
	return strings.TrimSpace(r.Tariff) != ""
}

// HasSteps reports whether the record carries a step-by-step rationale.
func (r ClassificationRecord) HasSteps() bool {
	return strings.TrimSpace(r.Steps) != ""
}

// ClarificationRequest is a single disambiguating question with the answer
// choices offered by the inference service.
type ClarificationRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Clarification bounds on the number of offered options.
const (
	MinClarificationOptions = 2
	MaxClarificationOptions = 4
)

// Valid reports whether the request has a question and 2-4 non-empty options.
func (c ClarificationRequest) Valid() bool {
	if strings.TrimSpace(c.Question) == "" {
		return false
	}
	if len(c.Options) < MinClarificationOptions || len(c.Options) > MaxClarificationOptions {
		return false
	}
	for _, opt := range c.Options {
		if strings.TrimSpace(opt) == "" {
			return false
		}
	}
	return true
}

// HasOption reports whether option is exactly one of the offered choices.
func (c ClarificationRequest) HasOption(option string) bool {
	for _, opt := range c.Options {
		if opt == option {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot mutate the options slice.
func (c ClarificationRequest) Clone() ClarificationRequest {
	opts := make([]string, len(c.Options))
	copy(opts, c.Options)
	return ClarificationRequest{Question: c.Question, Options: opts}
}

// Prediction is the result of a first-stage prediction: ranked candidates
// and, when the service judged them ambiguous, a clarification question.
type Prediction struct {
	Clarification *ClarificationRequest
	Candidates    []ClassificationRecord
}

// CloneRecords returns a copy of records.
func CloneRecords(records []ClassificationRecord) []ClassificationRecord {
	if records == nil {
		return nil
	}
	out := make([]ClassificationRecord, len(records))
	copy(out, records)
	return out
}
