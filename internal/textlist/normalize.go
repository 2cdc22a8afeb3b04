// Package textlist turns loosely formatted numbered or bulleted text into a
// clean sequence of list items.
package textlist

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	leadingMarker = regexp.MustCompile(`^(?:\d{1,3}\.|[-*•])(?:\s+|$)`)
	digitGap      = regexp.MustCompile(`(\d)[ \t]+(\d)`)
	boldMarker    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	ordinalLine   = regexp.MustCompile(`^\d{1,3}\.(?:\s|$)`)
)

// maxOrdinalDigits bounds ordinal markers so codes like "0410." never count.
const maxOrdinalDigits = 3

// List is the normalized form of a step list.
type List struct {
	Items   []string
	Ordered bool
}

// Len returns the number of items.
func (l List) Len() int { return len(l.Items) }

// Marker returns the display marker for item i.
func (l List) Marker(i int) string {
	if l.Ordered {
		return strconv.Itoa(i+1) + "."
	}
	return "•"
}

// String renders the list as "1. item" lines when ordered and "- item" lines otherwise.
func (l List) String() string {
	var b strings.Builder
	for i, item := range l.Items {
		if i > 0 {
			b.WriteByte('\n')
		}
		if l.Ordered {
			b.WriteString(strconv.Itoa(i + 1))
			b.WriteString(". ")
		} else {
			b.WriteString("- ")
		}
		b.WriteString(item)
	}
	return b.String()
}

// Normalize repairs digit runs broken by line breaks, splits the text into
// items, and strips markers and formatting noise from each item.
func Normalize(text string) List {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	repaired := repairBreaks(text)

	var raw []string
	if strings.Contains(repaired, "\n") {
		raw = strings.Split(repaired, "\n")
	} else {
		raw = splitInline(repaired)
	}

	items := make([]string, 0, len(raw))
	for _, item := range raw {
		if cleaned := cleanItem(item); cleaned != "" {
			items = append(items, cleaned)
		}
	}

	return List{
		Items:   items,
		Ordered: len(ordinalMarkers(text)) > 0,
	}
}

// repairBreaks joins a line onto the previous one when the break sits between
// a digit or letter and a following digit that does not start a new step.
func repairBreaks(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) == 1 {
		return text
	}

	out := make([]string, 0, len(lines))
	out = append(out, lines[0])
	for _, line := range lines[1:] {
		last := len(out) - 1
		prev := strings.TrimRightFunc(out[last], unicode.IsSpace)
		next := strings.TrimLeftFunc(line, unicode.IsSpace)

		tail, _ := utf8.DecodeLastRuneInString(prev)
		head, _ := utf8.DecodeRuneInString(next)

		switch {
		case prev == "" || next == "" || !isDigit(head) || ordinalLine.MatchString(next):
			out = append(out, line)
		case isDigit(tail):
			out[last] = prev + next
		case unicode.IsLetter(tail):
			out[last] = prev + " " + next
		default:
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

type marker struct {
	pos    int
	number int
}

// ordinalMarkers finds "N." tokens preceded by start-of-text or whitespace and
// followed by whitespace or end-of-text.
func ordinalMarkers(text string) []marker {
	var markers []marker
	for i := 0; i < len(text); i++ {
		if !isDigit(rune(text[i])) {
			continue
		}
		if i > 0 {
			r, _ := utf8.DecodeLastRuneInString(text[:i])
			if !unicode.IsSpace(r) {
				// Skip the rest of this digit run
				for i+1 < len(text) && isDigit(rune(text[i+1])) {
					i++
				}
				continue
			}
		}

		j := i
		for j < len(text) && isDigit(rune(text[j])) {
			j++
		}
		run := j - i
		if run <= maxOrdinalDigits && j < len(text) && text[j] == '.' {
			after := j + 1
			if after == len(text) {
				n, _ := strconv.Atoi(text[i:j])
				markers = append(markers, marker{pos: i, number: n})
			} else if r, _ := utf8.DecodeRuneInString(text[after:]); unicode.IsSpace(r) {
				n, _ := strconv.Atoi(text[i:j])
				markers = append(markers, marker{pos: i, number: n})
			}
		}
		i = j - 1
	}
	return markers
}

// splitInline splits single-line text immediately before each ordinal marker
// that continues the running sequence. An unnumbered leading chunk counts as
// the first item.
func splitInline(text string) []string {
	var cuts []int
	expected := 0
	for _, m := range ordinalMarkers(text) {
		if len(cuts) == 0 {
			leading := strings.TrimSpace(text[:m.pos]) != ""
			if m.number != 1 && (m.number != 2 || !leading) {
				continue
			}
		} else if m.number != expected {
			continue
		}
		cuts = append(cuts, m.pos)
		expected = m.number + 1
	}

	if len(cuts) == 0 {
		return []string{text}
	}

	parts := make([]string, 0, len(cuts)+1)
	start := 0
	for _, cut := range cuts {
		parts = append(parts, text[start:cut])
		start = cut
	}
	return append(parts, text[start:])
}

func cleanItem(item string) string {
	item = strings.TrimSpace(item)
	if item == "" {
		return ""
	}
	item = strings.TrimSpace(leadingMarker.ReplaceAllString(item, ""))
	item = boldMarker.ReplaceAllString(item, "$1")
	for {
		collapsed := digitGap.ReplaceAllString(item, "$1$2")
		if collapsed == item {
			break
		}
		item = collapsed
	}
	return strings.TrimSpace(item)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
