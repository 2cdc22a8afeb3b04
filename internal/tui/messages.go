// Package tui provides the terminal loader shown while inference runs.
package tui

import (
	"time"

	"github.com/Veraticus/hscode/internal/model"
)

// MessageInterval is how long each analysis message stays on screen.
const MessageInterval = 1500 * time.Millisecond

// Text is the loader copy for one language.
type Text struct {
	Analyzing string
	Refining  string
	Moment    string
	Steps     []string
}

var texts = map[model.Language]Text{
	model.LanguageEnglish: {
		Analyzing: "Analyzing image...",
		Refining:  "Refining prediction...",
		Moment:    "This may take a moment.",
		Steps: []string{
			"Processing image data...",
			"Identifying primary subject...",
			"Extracting visual features...",
			"Cross-referencing customs database...",
			"Evaluating potential categories...",
			"Narrowing down HS codes...",
			"Finalizing top suggestions...",
		},
	},
	model.LanguageIndonesian: {
		Analyzing: "Menganalisis gambar...",
		Refining:  "Menyempurnakan prediksi...",
		Moment:    "Ini mungkin memakan waktu sejenak.",
		Steps: []string{
			"Memproses data gambar...",
			"Mengidentifikasi subjek utama...",
			"Mengekstrak fitur visual...",
			"Memeriksa silang database bea cukai...",
			"Mengevaluasi kategori potensial...",
			"Mempersempit kode HS...",
			"Menyelesaikan saran teratas...",
		},
	},
	model.LanguageJapanese: {
		Analyzing: "画像を分析中...",
		Refining:  "予測を絞り込み中...",
		Moment:    "少々お待ちください。",
		Steps: []string{
			"画像データを処理中...",
			"主要な被写体を特定中...",
			"視覚的特徴を抽出中...",
			"税関データベースを相互参照中...",
			"可能性のあるカテゴリを評価中...",
			"HSコードを絞り込み中...",
			"トップ提案を最終決定中...",
		},
	},
}

// TextFor returns the loader copy for lang, falling back to English.
func TextFor(lang model.Language) Text {
	if t, ok := texts[lang]; ok {
		return t
	}
	return texts[model.LanguageEnglish]
}

// MessageAt returns the message to show after elapsed time, cycling through
// messages once per interval. It returns "" when there are no messages.
func MessageAt(elapsed, interval time.Duration, messages []string) string {
	if len(messages) == 0 {
		return ""
	}
	if interval <= 0 || elapsed < 0 {
		return messages[0]
	}
	idx := int(elapsed/interval) % len(messages)
	return messages[idx]
}
