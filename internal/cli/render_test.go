package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/Veraticus/hscode/internal/common"
	"github.com/Veraticus/hscode/internal/model"
	"github.com/Veraticus/hscode/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []model.ClassificationRecord {
	return []model.ClassificationRecord{
		{
			Code:        "8415.10",
			Description: "Window or wall air conditioning machines",
			Reasoning:   "Self-contained unit for room cooling.",
			Tariff:      "10%",
			Steps:       "1. Section XVI 2. Chapter 84 3. Heading 84\n15",
		},
		{
			Code:        "8418.69",
			Description: "Other refrigerating equipment",
			Reasoning:   "Alternative if the unit only chills.",
		},
	}
}

func TestRenderCandidates(t *testing.T) {
	out := RenderCandidates(sampleRecords(), report.LabelsFor(model.LanguageEnglish))

	assert.Contains(t, out, "Initial Suggestions")
	assert.Contains(t, out, "Top Suggestion")
	assert.Contains(t, out, "Suggestion 2")
	assert.Contains(t, out, "8415.10")
	assert.Contains(t, out, "8418.69")
	assert.Contains(t, out, "Tariff:")
	assert.Contains(t, out, "Heading 8415")
	assert.Equal(t, 1, strings.Count(out, "Tariff:"))
}

func TestRenderCandidates_Empty(t *testing.T) {
	assert.Empty(t, RenderCandidates(nil, report.LabelsFor(model.LanguageEnglish)))
}

func TestRenderFinal(t *testing.T) {
	record := sampleRecords()[0]
	out := RenderFinal(record, "Wall mounted", report.LabelsFor(model.LanguageEnglish))

	assert.Contains(t, out, "Final Prediction")
	assert.Contains(t, out, `Based on your selection: "Wall mounted"`)
	assert.Contains(t, out, "Confirmed")
	assert.Contains(t, out, "8415.10")
	assert.Contains(t, out, "Classification Steps:")
}

func TestRenderQuota(t *testing.T) {
	assert.Contains(t, RenderQuota(model.IdentityGuest, 3, 7), "3 of 7 predictions left today (guest)")
	assert.Contains(t, RenderQuota(model.IdentityAuthenticated, 0, 50), WarningIcon)
}

func TestCopyToClipboard(t *testing.T) {
	original := writeClipboard
	t.Cleanup(func() { writeClipboard = original })

	var copied string
	writeClipboard = func(text string) error {
		copied = text
		return nil
	}
	require.NoError(t, CopyToClipboard("## HSCode: 8415.10"))
	assert.Equal(t, "## HSCode: 8415.10", copied)

	writeClipboard = func(string) error { return errors.New("xclip missing") }
	err := CopyToClipboard("text")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExportFailed)
	assert.Contains(t, err.Error(), "xclip missing")
}
