package report

import "github.com/Veraticus/hscode/internal/model"

// Labels holds the fixed text of an exported report in one language.
type Labels struct {
	Title           string
	ResultsTitle    string
	RefinedTitle    string
	RefinedSubtitle string // %s is the selected answer
	TopSuggestion   string
	Suggestion      string // %d is the rank
	Confirmed       string
	HSCode          string
	Description     string
	Tariff          string
	Reasoning       string
	Steps           string
	Clarify         string
	Choose          string
	Generated       string
	Page            string // %d of %d
	Attribution     string
}

var labels = map[model.Language]Labels{
	model.LanguageEnglish: {
		Title:           "AI HS Code Predictor",
		ResultsTitle:    "Initial Suggestions",
		RefinedTitle:    "Final Prediction",
		RefinedSubtitle: "Based on your selection: \"%s\"",
		TopSuggestion:   "Top Suggestion",
		Suggestion:      "Suggestion %d",
		Confirmed:       "Confirmed",
		HSCode:          "HS Code",
		Description:     "Description",
		Tariff:          "Tariff",
		Reasoning:       "Reasoning",
		Steps:           "Classification Steps",
		Clarify:         "Refine Your Prediction",
		Choose:          "Choose an option",
		Generated:       "Generated",
		Page:            "Page %d of %d",
		Attribution:     "Generated by hscode. For informational purposes only.",
	},
	model.LanguageIndonesian: {
		Title:           "Prediktor Kode HS AI",
		ResultsTitle:    "Saran Awal",
		RefinedTitle:    "Prediksi Akhir",
		RefinedSubtitle: "Berdasarkan pilihan Anda: \"%s\"",
		TopSuggestion:   "Saran Teratas",
		Suggestion:      "Saran %d",
		Confirmed:       "Terkonfirmasi",
		HSCode:          "Kode HS",
		Description:     "Deskripsi",
		Tariff:          "Tarif Bea Masuk",
		Reasoning:       "Alasan",
		Steps:           "Langkah Klasifikasi",
		Clarify:         "Sempurnakan Prediksi Anda",
		Choose:          "Pilih salah satu opsi",
		Generated:       "Dibuat",
		Page:            "Halaman %d dari %d",
		Attribution:     "Dibuat oleh hscode. Hanya untuk tujuan informasi.",
	},
	model.LanguageJapanese: {
		Title:           "AI HSコード予測",
		ResultsTitle:    "最初の提案",
		RefinedTitle:    "最終予測",
		RefinedSubtitle: "あなたの選択に基づく: \"%s\"",
		TopSuggestion:   "最有力候補",
		Suggestion:      "候補 %d",
		Confirmed:       "確定済み",
		HSCode:          "HSコード",
		Description:     "説明",
		Tariff:          "関税率",
		Reasoning:       "理由",
		Steps:           "分類手順",
		Clarify:         "予測を絞り込む",
		Choose:          "選択肢を選んでください",
		Generated:       "作成日時",
		Page:            "%d / %d ページ",
		Attribution:     "hscode により作成。情報提供のみを目的としています。",
	},
}

// LabelsFor returns the labels for lang, falling back to English.
func LabelsFor(lang model.Language) Labels {
	if l, ok := labels[lang]; ok {
		return l
	}
	return labels[model.LanguageEnglish]
}
