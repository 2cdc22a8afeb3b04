package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Veraticus/hscode/internal/common"
	"github.com/Veraticus/hscode/internal/model"
	"github.com/Veraticus/hscode/internal/report"
)

const maxChoiceAttempts = 3

// Prompter asks the user to answer a clarification question.
type Prompter struct {
	reader *LineReader
	writer io.Writer
	labels report.Labels
}

// NewPrompter creates a prompter. Nil reader and writer default to stdin and stdout.
func NewPrompter(reader io.Reader, writer io.Writer, labels report.Labels) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{
		reader: NewLineReader(reader),
		writer: writer,
		labels: labels,
	}
}

// Choose shows the question with numbered options and returns the chosen
// option exactly as offered.
func (p *Prompter) Choose(ctx context.Context, clar model.ClarificationRequest) (string, error) {
	var b strings.Builder
	b.WriteString(BoldStyle.Render(clar.Question))
	b.WriteString("\n")
	for i, opt := range clar.Options {
		fmt.Fprintf(&b, "\n  [%d] %s", i+1, opt)
	}
	if _, err := fmt.Fprintln(p.writer, RenderBox(BoxStyle, p.labels.Clarify, b.String())); err != nil {
		return "", fmt.Errorf("failed to write question: %w", err)
	}

	for attempt := 1; attempt <= maxChoiceAttempts; attempt++ {
		if _, err := fmt.Fprint(p.writer, FormatPrompt(p.labels.Choose)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		line, err := p.reader.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("no answer given: %w", err)
			}
			return "", err
		}

		if option, ok := MatchOption(clar, line); ok {
			return option, nil
		}

		msg := fmt.Sprintf("Enter a number between 1 and %d", len(clar.Options))
		if _, err := fmt.Fprintln(p.writer, FormatWarning(msg)); err != nil {
			return "", fmt.Errorf("failed to write warning: %w", err)
		}
	}

	return "", fmt.Errorf("%w: no valid choice after %d attempts", common.ErrInvalidOption, maxChoiceAttempts)
}

// MatchOption resolves input to one of the offered options, either by its
// 1-based number or by case-insensitive text.
func MatchOption(clar model.ClarificationRequest, input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}

	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(clar.Options) {
			return clar.Options[n-1], true
		}
		return "", false
	}

	for _, opt := range clar.Options {
		if strings.EqualFold(strings.TrimSpace(opt), input) {
			return opt, true
		}
	}
	return "", false
}
