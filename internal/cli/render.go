package cli

import (
	"fmt"
	"strings"

	"github.com/Veraticus/hscode/internal/model"
	"github.com/Veraticus/hscode/internal/report"
	"github.com/Veraticus/hscode/internal/textlist"
	"github.com/charmbracelet/lipgloss"
)

// RenderCandidates renders ranked candidates, marking the first as the top suggestion.
func RenderCandidates(records []model.ClassificationRecord, labels report.Labels) string {
	if len(records) == 0 {
		return ""
	}

	sections := make([]string, 0, len(records)+1)
	sections = append(sections, FormatTitle(labels.ResultsTitle))
	for i, record := range records {
		badge := SubtleStyle.Render(fmt.Sprintf(labels.Suggestion, i+1))
		if i == 0 {
			badge = BadgeStyle.Render(labels.TopSuggestion)
		}
		sections = append(sections, BoxStyle.Render(renderRecord(record, badge, labels)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// RenderFinal renders the refined record together with the answer it was based on.
func RenderFinal(record model.ClassificationRecord, answer string, labels report.Labels) string {
	var b strings.Builder
	b.WriteString(FormatTitle(labels.RefinedTitle))
	if answer != "" {
		b.WriteString("\n")
		b.WriteString(SubtleStyle.Render(fmt.Sprintf(labels.RefinedSubtitle, answer)))
	}
	badge := ConfirmedBadgeStyle.Render(SuccessIcon + " " + labels.Confirmed)
	return lipgloss.JoinVertical(lipgloss.Left,
		b.String(),
		ConfirmedBoxStyle.Render(renderRecord(record, badge, labels)),
	)
}

// RenderQuota renders the remaining daily quota for an identity class.
func RenderQuota(class model.IdentityClass, remaining, ceiling int) string {
	msg := fmt.Sprintf("%d of %d predictions left today (%s)", remaining, ceiling, class)
	if remaining <= 0 {
		return FormatWarning(msg)
	}
	return FormatInfo(msg)
}

func renderRecord(record model.ClassificationRecord, badge string, labels report.Labels) string {
	var b strings.Builder
	b.WriteString(badge)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s\n", SubtleStyle.Render(labels.HSCode+":"), CodeStyle.Render(record.Code))
	fmt.Fprintf(&b, "%s %s", BoldStyle.Render(labels.Description+":"), record.Description)
	if record.HasTariff() {
		fmt.Fprintf(&b, "\n%s %s", BoldStyle.Render(labels.Tariff+":"), record.Tariff)
	}
	if reasoning := strings.TrimSpace(record.Reasoning); reasoning != "" {
		fmt.Fprintf(&b, "\n\n%s\n%s", BoldStyle.Render(labels.Reasoning+":"), reasoning)
	}
	if record.HasSteps() {
		steps := textlist.Normalize(record.Steps)
		if steps.Len() > 0 {
			fmt.Fprintf(&b, "\n\n%s", BoldStyle.Render(labels.Steps+":"))
			for i, item := range steps.Items {
				fmt.Fprintf(&b, "\n  %s %s", SubtleStyle.Render(steps.Marker(i)), item)
			}
		}
	}
	return b.String()
}
