package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/hscode/internal/common"
	"github.com/Veraticus/hscode/internal/model"
	"github.com/Veraticus/hscode/internal/textlist"
	"github.com/jung-kurt/gofpdf"
)

// Page geometry in millimetres.
const (
	pageMargin   = 18.0
	footerHeight = 16.0
	lineHeight   = 5.2
	titleLine    = 8.5
	headingLine  = 7.5
	codeLine     = 8.0
	boxPadding   = 3.5
	markerColumn = 9.0
	blockGap     = 3.0
	sectionGap   = 6.0
)

const (
	coreFamily = "Helvetica"
	utf8Family = "hscode"
)

type rgb struct{ r, g, b int }

var (
	colorPrimary   = rgb{79, 70, 229}
	colorSuccess   = rgb{22, 163, 74}
	colorText      = rgb{31, 41, 55}
	colorMuted     = rgb{107, 114, 128}
	colorBoxFill   = rgb{238, 242, 255}
	colorSeparator = rgb{190, 190, 190}
	colorWhite     = rgb{255, 255, 255}
)

// Options configures an Exporter.
type Options struct {
	// FontPath is a UTF-8 TrueType font used for all text. Without it the
	// core Helvetica font is used and text is translated to cp1252.
	FontPath string
	// PageSize is a gofpdf page size name. Empty means A4.
	PageSize string
}

// Exporter renders paginated PDF reports.
type Exporter struct {
	logger *slog.Logger
	opts   Options
}

// NewExporter creates an Exporter.
func NewExporter(opts Options, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{opts: opts, logger: logger}
}

// Document is a rendered PDF.
type Document struct {
	Data    []byte
	Footers []string // page footer text, one entry per page
	Pages   int
}

// PDF lays out in as a paginated document. The body is drawn first; the
// footer of every page is drawn afterwards once the page total is known.
func (e *Exporter) PDF(in Input) (*Document, error) {
	if len(in.Records) == 0 {
		return nil, fmt.Errorf("%w: no records to export", common.ErrExportFailed)
	}

	l, err := e.newLayout(in.Language)
	if err != nil {
		return nil, err
	}

	l.title(in)
	for i, record := range in.Records {
		if i > 0 {
			l.separator()
		}
		l.record(i, record, in.Confirmed)
	}
	footers := l.footers()

	var buf bytes.Buffer
	if err := l.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: failed to render PDF: %v", common.ErrExportFailed, err)
	}

	e.logger.Debug("rendered PDF report",
		"records", len(in.Records),
		"pages", len(footers),
		"bytes", buf.Len())

	return &Document{
		Data:    buf.Bytes(),
		Pages:   len(footers),
		Footers: footers,
	}, nil
}

// layout tracks the vertical cursor while drawing.
type layout struct {
	pdf    *gofpdf.Fpdf
	encode func(string) string
	labels Labels
	family string
	utf8   bool
	y      float64
	left   float64
	width  float64
	top    float64
	limit  float64
	pageH  float64
}

func (e *Exporter) newLayout(lang model.Language) (*layout, error) {
	size := e.opts.PageSize
	if size == "" {
		size = "A4"
	}

	pdf := gofpdf.New("P", "mm", size, "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, 0)

	l := &layout{
		pdf:    pdf,
		family: coreFamily,
		encode: pdf.UnicodeTranslatorFromDescriptor(""),
		labels: LabelsFor(lang),
	}

	if e.opts.FontPath != "" {
		pdf.AddUTF8Font(utf8Family, "", e.opts.FontPath)
		pdf.AddUTF8Font(utf8Family, "B", e.opts.FontPath)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("%w: failed to load font %s: %v", common.ErrExportFailed, e.opts.FontPath, err)
		}
		l.family = utf8Family
		l.utf8 = true
		l.encode = func(s string) string { return s }
	} else if lang == model.LanguageJapanese {
		// cp1252 cannot carry Japanese labels
		l.labels = LabelsFor(model.LanguageEnglish)
	}

	pageW, pageH := pdf.GetPageSize()
	l.left = pageMargin
	l.top = pageMargin
	l.width = pageW - 2*pageMargin
	l.pageH = pageH
	l.limit = pageH - pageMargin - footerHeight

	pdf.AddPage()
	l.y = l.top
	return l, nil
}

func (l *layout) setFont(style string, size float64, c rgb) {
	l.pdf.SetFont(l.family, style, size)
	l.pdf.SetTextColor(c.r, c.g, c.b)
}

// wrap splits text into encoded lines that fit width in the current font.
func (l *layout) wrap(text string, width float64) []string {
	var lines []string
	for _, para := range strings.Split(strings.TrimSpace(text), "\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if l.utf8 {
			lines = append(lines, l.pdf.SplitText(para, width)...)
			continue
		}
		for _, line := range l.pdf.SplitLines([]byte(l.encode(para)), width) {
			lines = append(lines, string(line))
		}
	}
	return lines
}

// ensure starts a new page when h does not fit below the cursor. A block
// taller than a page is drawn from the top of the current page if the
// cursor is already there.
func (l *layout) ensure(h float64) {
	if l.y+h > l.limit && l.y > l.top {
		l.pdf.AddPage()
		l.y = l.top
	}
}

// flow draws lines one per row, breaking pages between lines.
func (l *layout) flow(lines []string, x, width, lh float64) {
	for _, line := range lines {
		l.ensure(lh)
		l.pdf.SetXY(x, l.y)
		l.pdf.CellFormat(width, lh, line, "", 0, "L", false, 0, "")
		l.y += lh
	}
}

func (l *layout) title(in Input) {
	l.setFont("B", 18, colorPrimary)
	l.flow(l.wrap(l.labels.Title, l.width), l.left, l.width, titleLine)

	subtitle := l.labels.ResultsTitle
	if in.Confirmed {
		subtitle = l.labels.RefinedTitle
	}
	l.setFont("B", 12, colorText)
	l.flow(l.wrap(subtitle, l.width), l.left, l.width, headingLine)

	if in.Confirmed && in.Answer != "" {
		l.setFont("", 10, colorText)
		l.flow(l.wrap(fmt.Sprintf(l.labels.RefinedSubtitle, in.Answer), l.width), l.left, l.width, lineHeight)
	}

	generated := in.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	l.setFont("", 9, colorMuted)
	l.flow(l.wrap(l.labels.Generated+": "+generated.Format("2006-01-02 15:04 MST"), l.width), l.left, l.width, lineHeight)

	l.y += sectionGap
}

func (l *layout) record(index int, r model.ClassificationRecord, confirmed bool) {
	heading := fmt.Sprintf(l.labels.Suggestion, index+1)
	badge := ""
	badgeColor := colorPrimary
	switch {
	case confirmed:
		heading = l.labels.RefinedTitle
		badge = l.labels.Confirmed
		badgeColor = colorSuccess
	case index == 0:
		badge = l.labels.TopSuggestion
	}

	box := l.measureKeyBox(r)
	// The heading always shares a page with its key box
	l.ensure(headingLine + blockGap + box.height)

	l.setFont("B", 13, colorText)
	l.pdf.SetXY(l.left, l.y)
	l.pdf.CellFormat(l.width, headingLine, l.encode(heading), "", 0, "L", false, 0, "")
	if badge != "" {
		l.badge(badge, badgeColor)
	}
	l.y += headingLine + blockGap

	l.keyBox(box)
	l.paragraph(l.labels.Description, r.Description)
	l.paragraph(l.labels.Reasoning, r.Reasoning)
	if r.HasSteps() {
		l.steps(l.labels.Steps, textlist.Normalize(r.Steps))
	}
}

func (l *layout) badge(text string, c rgb) {
	const height = 5.0
	l.setFont("B", 8, colorWhite)
	encoded := l.encode(text)
	width := l.pdf.GetStringWidth(encoded) + 4
	l.pdf.SetFillColor(c.r, c.g, c.b)
	l.pdf.SetXY(l.left+l.width-width, l.y+(headingLine-height)/2)
	l.pdf.CellFormat(width, height, encoded, "", 0, "C", true, 0, "")
}

type keyBox struct {
	code   []string
	tariff []string
	height float64
}

// measureKeyBox wraps the key fields and sizes the shaded box around them.
func (l *layout) measureKeyBox(r model.ClassificationRecord) keyBox {
	inner := l.width - 2*boxPadding

	l.setFont("B", 16, colorPrimary)
	box := keyBox{code: l.wrap(l.labels.HSCode+": "+r.Code, inner)}
	box.height = 2*boxPadding + float64(len(box.code))*codeLine

	if r.HasTariff() {
		l.setFont("", 10, colorText)
		box.tariff = l.wrap(l.labels.Tariff+": "+r.Tariff, inner)
		box.height += 1 + float64(len(box.tariff))*lineHeight
	}
	return box
}

func (l *layout) keyBox(box keyBox) {
	l.ensure(box.height)
	l.pdf.SetFillColor(colorBoxFill.r, colorBoxFill.g, colorBoxFill.b)
	l.pdf.Rect(l.left, l.y, l.width, box.height, "F")

	x := l.left + boxPadding
	inner := l.width - 2*boxPadding
	y := l.y + boxPadding

	l.setFont("B", 16, colorPrimary)
	for _, line := range box.code {
		l.pdf.SetXY(x, y)
		l.pdf.CellFormat(inner, codeLine, line, "", 0, "L", false, 0, "")
		y += codeLine
	}

	if len(box.tariff) > 0 {
		y++
		l.setFont("", 10, colorText)
		for _, line := range box.tariff {
			l.pdf.SetXY(x, y)
			l.pdf.CellFormat(inner, lineHeight, line, "", 0, "L", false, 0, "")
			y += lineHeight
		}
	}

	l.y += box.height + blockGap
}

func (l *layout) paragraph(label, text string) {
	l.setFont("B", 10, colorText)
	head := l.wrap(label, l.width)
	l.setFont("", 10, colorText)
	body := l.wrap(text, l.width)

	l.ensure(float64(len(head)+min(1, len(body))) * lineHeight)

	l.setFont("B", 10, colorText)
	l.flow(head, l.left, l.width, lineHeight)
	l.setFont("", 10, colorText)
	l.flow(body, l.left, l.width, lineHeight)
	l.y += blockGap
}

// steps draws each item with its marker in the left column and the wrapped
// text in the right column.
func (l *layout) steps(label string, list textlist.List) {
	if list.Len() == 0 {
		return
	}

	l.setFont("B", 10, colorText)
	head := l.wrap(label, l.width)
	l.ensure(float64(len(head)+1) * lineHeight)
	l.flow(head, l.left, l.width, lineHeight)

	textX := l.left + markerColumn
	textW := l.width - markerColumn
	for i, item := range list.Items {
		l.setFont("", 10, colorText)
		lines := l.wrap(item, textW)
		if len(lines) == 0 {
			continue
		}

		l.ensure(float64(len(lines)) * lineHeight)
		l.ensure(lineHeight)
		l.pdf.SetXY(l.left, l.y)
		l.pdf.CellFormat(markerColumn, lineHeight, l.encode(list.Marker(i)), "", 0, "L", false, 0, "")
		l.flow(lines, textX, textW, lineHeight)
		l.y += 1
	}
	l.y += blockGap
}

func (l *layout) separator() {
	l.ensure(2 * sectionGap)
	l.y += sectionGap
	l.pdf.SetDrawColor(colorSeparator.r, colorSeparator.g, colorSeparator.b)
	l.pdf.SetLineWidth(0.3)
	l.pdf.SetDashPattern([]float64{2, 1.5}, 0)
	l.pdf.Line(l.left, l.y, l.left+l.width, l.y)
	l.pdf.SetDashPattern([]float64{}, 0)
	l.y += sectionGap
}

// footers stamps every page with its number, the page total and the
// attribution line, returning the page text written on each page.
func (l *layout) footers() []string {
	total := l.pdf.PageCount()
	out := make([]string, 0, total)
	ruleY := l.limit + 4

	for page := 1; page <= total; page++ {
		l.pdf.SetPage(page)

		l.pdf.SetDrawColor(colorSeparator.r, colorSeparator.g, colorSeparator.b)
		l.pdf.SetLineWidth(0.2)
		l.pdf.Line(l.left, ruleY, l.left+l.width, ruleY)

		text := fmt.Sprintf(l.labels.Page, page, total)
		l.setFont("", 8, colorMuted)
		l.pdf.SetXY(l.left, ruleY+1.5)
		l.pdf.CellFormat(l.width, 4, l.encode(text), "", 0, "C", false, 0, "")
		l.pdf.SetXY(l.left, ruleY+5.5)
		l.pdf.CellFormat(l.width, 4, l.encode(l.labels.Attribution), "", 0, "C", false, 0, "")

		out = append(out, text)
	}
	return out
}
