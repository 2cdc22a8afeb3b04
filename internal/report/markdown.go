// Package report renders classification records as markdown and as a
// paginated PDF document.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/hscode/internal/model"
	"github.com/Veraticus/hscode/internal/textlist"
)

// Input is the record set to export, in display order.
type Input struct {
	GeneratedAt time.Time
	Answer      string // clarification answer behind a confirmed record
	Language    model.Language
	Records     []model.ClassificationRecord
	Confirmed   bool // a single confirmed record rather than ranked candidates
}

// Markdown renders in as markdown, one section per record separated by a
// horizontal rule.
func Markdown(in Input) string {
	l := LabelsFor(in.Language)
	sections := make([]string, 0, len(in.Records))
	for _, record := range in.Records {
		sections = append(sections, recordMarkdown(record, l))
	}
	return strings.Join(sections, "\n\n---\n\n")
}

func recordMarkdown(r model.ClassificationRecord, l Labels) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s: %s\n\n", l.HSCode, r.Code)
	fmt.Fprintf(&b, "**%s:** %s\n\n", l.Description, r.Description)
	if r.HasTariff() {
		fmt.Fprintf(&b, "**%s:** %s\n\n", l.Tariff, r.Tariff)
	}
	fmt.Fprintf(&b, "**%s:**\n%s\n\n", l.Reasoning, r.Reasoning)
	if r.HasSteps() {
		steps := textlist.Normalize(r.Steps)
		if steps.Len() > 0 {
			fmt.Fprintf(&b, "**%s:**\n", l.Steps)
			for i, item := range steps.Items {
				fmt.Fprintf(&b, "%d. %s\n", i+1, item)
			}
		}
	}
	return strings.TrimSpace(b.String())
}
