package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/hscode/internal/common"
	"github.com/Veraticus/hscode/internal/model"
	"github.com/Veraticus/hscode/internal/report"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmedInput() report.Input {
	return report.Input{
		GeneratedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Language:    model.LanguageEnglish,
		Answer:      "Wall mounted",
		Confirmed:   true,
		Records: []model.ClassificationRecord{
			{Code: "8415.10", Description: "Wall air conditioners", Reasoning: "Mounted unit.", Steps: "1. Chapter 84 2. Heading 8415"},
		},
	}
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	in := confirmedInput()

	assert.Equal(t, filepath.Join(dir, "hs-code-8415-10.pdf"), outputPath(dir, in, "pdf"))
	assert.Equal(t, filepath.Join(dir, "out", "hs-code-8415-10.md"), outputPath(filepath.Join(dir, "out")+string(os.PathSeparator), in, "md"))
	assert.Equal(t, filepath.Join(dir, "report.pdf"), outputPath(filepath.Join(dir, "report.pdf"), in, "pdf"))
}

func TestWriteExports(t *testing.T) {
	dir := t.TempDir()
	viper.Reset()
	t.Cleanup(viper.Reset)

	var out bytes.Buffer
	opts := exportOptions{markdownPath: dir, pdfDir: dir}
	require.NoError(t, writeExports(&out, confirmedInput(), opts, common.DiscardLogger()))

	md, err := os.ReadFile(filepath.Join(dir, "hs-code-8415-10.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "## HS Code: 8415.10")

	pdf, err := os.ReadFile(filepath.Join(dir, "hs-code-8415-10.pdf"))
	require.NoError(t, err)
	pages, err := report.PageCount(pdf)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
	assert.Contains(t, out.String(), "Saved PDF (1 pages)")
}

func TestLoadResult(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, v any) string {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, data, 0o600))
		return path
	}

	good := write("good.json", newSavedResult("abc", confirmedInput()))
	result, err := loadResult(good)
	require.NoError(t, err)
	assert.Equal(t, confirmedInput(), result.input())
	assert.Equal(t, "abc", result.SessionID)

	tests := []struct {
		value any
		name  string
	}{
		{name: "no records", value: savedResult{Language: model.LanguageEnglish}},
		{name: "missing code", value: savedResult{Records: []model.ClassificationRecord{{Description: "x"}}}},
		{name: "confirmed list", value: savedResult{Confirmed: true, Records: candidates()}},
		{name: "bad language", value: savedResult{Language: "fr", Records: candidates()}},
		{name: "not a result", value: []int{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadResult(write(tt.name+".json", tt.value))
			assert.ErrorIs(t, err, common.ErrExportFailed)
		})
	}

	_, err = loadResult(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestExportCmd_PrintsMarkdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "result.json")
	require.NoError(t, saveResult(path, newSavedResult("", confirmedInput())))

	var out bytes.Buffer
	cmd := exportCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "## HS Code: 8415.10")
	assert.Contains(t, out.String(), "**Classification Steps:**")
}
