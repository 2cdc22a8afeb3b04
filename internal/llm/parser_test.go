package llm

import (
	"testing"

	"github.com/Veraticus/hscode/internal/common"
	"github.com/Veraticus/hscode/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanMarkdownWrapper(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading prose", "Here you go:\n{\"a\":1}\nThanks", `{"a":1}`},
		{"no json", "nothing here", "nothing here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanMarkdownWrapper(tt.input))
		})
	}
}

func TestParseCandidates(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []model.ClassificationRecord
		wantErr bool
	}{
		{
			name: "three candidates",
			content: `[
				{"hs_code":"8415.10","description":"Wall air conditioner","reasoning":"Split unit"},
				{"hs_code":"8415.81","description":"Heat pump","reasoning":"Reversible cycle","tariff":null},
				{"hs_code":"8418.69","description":"Other refrigerating","reasoning":"Fallback","tariff":"BM 10%"}
			]`,
			want: []model.ClassificationRecord{
				{Code: "8415.10", Description: "Wall air conditioner", Reasoning: "Split unit"},
				{Code: "8415.81", Description: "Heat pump", Reasoning: "Reversible cycle"},
				{Code: "8418.69", Description: "Other refrigerating", Reasoning: "Fallback", Tariff: "BM 10%"},
			},
		},
		{
			name:    "single object becomes one candidate",
			content: "```json\n{\"hs_code\":\" 0410.00 \",\"description\":\"Edible insects\",\"reasoning\":\"Dried crickets\",\"classification_steps\":\"1. Chapter 4\"}\n```",
			want: []model.ClassificationRecord{
				{Code: "0410.00", Description: "Edible insects", Reasoning: "Dried crickets", Steps: "1. Chapter 4"},
			},
		},
		{name: "empty array", content: `[]`, wantErr: true},
		{name: "missing reasoning", content: `[{"hs_code":"8415.10","description":"AC"}]`, wantErr: true},
		{name: "blank code", content: `[{"hs_code":"  ","description":"AC","reasoning":"r"}]`, wantErr: true},
		{name: "wrong type", content: `[{"hs_code":841510,"description":"AC","reasoning":"r"}]`, wantErr: true},
		{name: "not json", content: `I cannot classify this image.`, wantErr: true},
		{name: "empty", content: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCandidates(tt.content)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrInferenceFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRecord(t *testing.T) {
	record, err := parseRecord(`{"hs_code":"3926.90","description":"Plastic clip","reasoning":"User said plastic"}`)
	require.NoError(t, err)
	assert.Equal(t, "3926.90", record.Code)

	record, err = parseRecord(`[{"hs_code":"3926.90","description":"Plastic clip","reasoning":"User said plastic"}]`)
	require.NoError(t, err)
	assert.Equal(t, "Plastic clip", record.Description)

	_, err = parseRecord(`{"hs_code":"3926.90"}`)
	assert.ErrorIs(t, err, common.ErrInferenceFailed)
}

func TestParseClarification(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    model.ClarificationRequest
		wantErr bool
	}{
		{
			name:    "valid",
			content: `{"question":"What is the primary material?","options":["Metal"," Plastic "]}`,
			want:    model.ClarificationRequest{Question: "What is the primary material?", Options: []string{"Metal", "Plastic"}},
		},
		{name: "one option", content: `{"question":"Q?","options":["Metal"]}`, wantErr: true},
		{name: "five options", content: `{"question":"Q?","options":["a","b","c","d","e"]}`, wantErr: true},
		{name: "blank question", content: `{"question":" ","options":["a","b"]}`, wantErr: true},
		{name: "duplicate options", content: `{"question":"Q?","options":["Metal","Metal"]}`, wantErr: true},
		{name: "missing options", content: `{"question":"Q?"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseClarification(tt.content)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrInferenceFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
