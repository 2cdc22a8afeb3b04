package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Veraticus/hscode/internal/common"
	"github.com/gosimple/slug"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Filename names an exported file: keyed by the HS code for a single
// confirmed record, generic for a candidate list.
func Filename(in Input, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if in.Confirmed && len(in.Records) == 1 {
		if code := slug.Make(in.Records[0].Code); code != "" {
			return fmt.Sprintf("hs-code-%s.%s", code, ext)
		}
	}
	return "hs-code-suggestions." + ext
}

// PageCount reads the number of pages in a PDF.
func PageCount(data []byte) (int, error) {
	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to read PDF page count: %v", common.ErrExportFailed, err)
	}
	return count, nil
}
