package llm

import (
	"fmt"
	"strings"

	"github.com/Veraticus/hscode/internal/model"
)

const systemPrompt = `You are an expert in international trade and customs classification. You MUST respond with ONLY valid JSON matching the requested structure. Do not include explanatory text or markdown formatting before or after the JSON.`

const recordShape = `{"hs_code": "6-digit HS code", "description": "concise product description", "reasoning": "brief explanation", "tariff": "import duty, optional", "classification_steps": "numbered Markdown list, optional"}`

const clarificationShape = `{"question": "single concise question", "options": ["2 to 4 short distinct answers"]}`

func predictPrompt(lang model.Language) string {
	var b strings.Builder
	switch lang {
	case model.LanguageIndonesian:
		b.WriteString("Analyze the item in this image. As an expert in Indonesian customs classification, identify the product and provide the three most likely 6-digit Harmonized System (HS) codes based on Buku Tarif Kepabeanan Indonesia (BTKI) and KUMHS rules. ")
		b.WriteString("For each code, provide a description, a brief reasoning, the applicable import duty tariff (Bea Masuk), and a step-by-step breakdown of the classification process according to Ketentuan Umum untuk Menginterpretasi Harmonized System (KUMHS), formatted as a single Markdown string using a numbered list. ")
		b.WriteString("The primary and most likely suggestion should be first. ")
		b.WriteString("The 'description', 'reasoning', and 'tariff' fields must be in Indonesian. The 'classification_steps' must also be in Indonesian. Include import duty tariff information (Bea Masuk) if available.")
	case model.LanguageJapanese:
		b.WriteString(englishPredict)
		b.WriteString(" The 'description' and 'reasoning' fields must be in Japanese.")
	default:
		b.WriteString(englishPredict)
	}
	fmt.Fprintf(&b, "\n\nRespond with a JSON array of objects shaped like:\n%s", recordShape)
	return b.String()
}

const englishPredict = "Analyze the item in this image. As an expert in international trade and customs classification, identify the product and provide the three most likely 6-digit Harmonized System (HS) codes. For each code, provide a description and a brief reasoning. The primary and most likely suggestion should be first."

func clarificationPrompt(candidates []model.ClassificationRecord, lang model.Language) string {
	var b strings.Builder
	b.WriteString("Based on the following HS code suggestions for a product")
	if lang == model.LanguageIndonesian {
		b.WriteString(", which are based on Indonesian BTKI rules")
	}
	b.WriteString(", generate a single, concise question to ask the user that will help them determine the correct code. ")
	b.WriteString(`The question should be simple and highlight the most important distinguishing feature (e.g., "What is the primary material?", "What is its main use?"). `)
	b.WriteString("Also provide 2-4 short, distinct options for the user to choose from as answers.")
	switch lang {
	case model.LanguageIndonesian:
		b.WriteString(" The 'question' and 'options' must be in Indonesian.")
	case model.LanguageJapanese:
		b.WriteString(" The 'question' and 'options' must be in Japanese.")
	}

	b.WriteString("\n\nSuggestions:\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- HS Code %s (%s): %s\n", c.Code, c.Description, c.Reasoning)
	}
	fmt.Fprintf(&b, "\nRespond with a JSON object shaped like:\n%s", clarificationShape)
	return b.String()
}

func refinePrompt(candidates []model.ClassificationRecord, clar model.ClarificationRequest, answer string, lang model.Language) string {
	var b strings.Builder
	b.WriteString("An image of a product was analyzed, resulting in these initial HS Code suggestions")
	if lang == model.LanguageIndonesian {
		b.WriteString(" based on Indonesian BTKI rules")
	}
	b.WriteString(":\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- %s: %s\n", c.Code, c.Description)
	}
	fmt.Fprintf(&b, "\nTo clarify, this question was asked: %q\nThe user provided this answer: %q\n\n", clar.Question, answer)

	switch lang {
	case model.LanguageIndonesian:
		b.WriteString("Based on the user's answer, please provide the single, most accurate 6-digit HS code according to Buku Tarif Kepabeanan Indonesia (BTKI). ")
		b.WriteString("Your response must include the final HS code, a clear description of the product, the applicable import duty tariff (Bea Masuk), detailed reasoning explaining why this code is correct given the user's clarification, and the step-by-step classification process according to KUMHS, formatted as a single Markdown string using a numbered list. ")
		b.WriteString("The reasoning should explicitly reference the user's answer. ")
		b.WriteString("The 'description', 'reasoning', 'tariff', and 'classification_steps' fields must be in Indonesian.")
	default:
		b.WriteString("Based on the user's answer, please provide the single, most accurate 6-digit HS code. ")
		b.WriteString("Your response should include the final HS code, a clear description of the product, and detailed reasoning explaining why this code is correct given the user's clarification. ")
		b.WriteString("The reasoning should explicitly reference the user's answer.")
		if lang == model.LanguageJapanese {
			b.WriteString(" The 'description' and 'reasoning' fields must be in Japanese.")
		}
	}
	fmt.Fprintf(&b, "\n\nRespond with a single JSON object shaped like:\n%s", recordShape)
	return b.String()
}
