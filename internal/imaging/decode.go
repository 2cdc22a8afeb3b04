// Package imaging validates submitted images before they enter a session.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"net/http"
	"os"
	"strings"

	"github.com/Veraticus/hscode/internal/common"
	"github.com/Veraticus/hscode/internal/model"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp" // WEBP decoder
)

// MaxImageBytes bounds accepted image size.
const MaxImageBytes = 20 << 20

var allowed = map[string]bool{
	model.MediaTypePNG:  true,
	model.MediaTypeJPEG: true,
	model.MediaTypeWEBP: true,
}

// formatMediaTypes maps image.DecodeConfig format names to media types.
var formatMediaTypes = map[string]string{
	"png":  model.MediaTypePNG,
	"jpeg": model.MediaTypeJPEG,
	"webp": model.MediaTypeWEBP,
}

// Allowed reports whether mediaType is accepted.
func Allowed(mediaType string) bool {
	return allowed[normalizeMediaType(mediaType)]
}

// DetectMediaType sniffs data, falling back to mimetype when the standard
// library is inconclusive.
func DetectMediaType(data []byte) string {
	if len(data) == 0 {
		return "application/octet-stream"
	}
	mt := http.DetectContentType(data)
	if mt != "application/octet-stream" && mt != "text/plain; charset=utf-8" {
		return normalizeMediaType(mt)
	}
	return normalizeMediaType(mimetype.Detect(data).String())
}

// Decode validates data as a PNG, JPEG, or WEBP image. declared may be empty,
// in which case the type is detected from the bytes. Every failure wraps
// common.ErrInputInvalid.
func Decode(data []byte, declared string) (model.Image, error) {
	if len(data) == 0 {
		return model.Image{}, fmt.Errorf("%w: empty image", common.ErrInputInvalid)
	}
	if len(data) > MaxImageBytes {
		return model.Image{}, fmt.Errorf("%w: image larger than %d bytes", common.ErrInputInvalid, MaxImageBytes)
	}

	mediaType := normalizeMediaType(declared)
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = DetectMediaType(data)
	}
	if !allowed[mediaType] {
		return model.Image{}, fmt.Errorf("%w: unsupported media type %q (PNG, JPG, or WEBP)", common.ErrInputInvalid, mediaType)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return model.Image{}, fmt.Errorf("%w: %v", common.ErrInputInvalid, err)
	}
	if actual := formatMediaTypes[format]; actual != mediaType {
		return model.Image{}, fmt.Errorf("%w: declared %s but content is %s", common.ErrInputInvalid, mediaType, format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return model.Image{}, fmt.Errorf("%w: image has no pixels", common.ErrInputInvalid)
	}

	return model.Image{
		MediaType: mediaType,
		Data:      data,
		Width:     cfg.Width,
		Height:    cfg.Height,
	}, nil
}

// Load reads and validates an image file.
func Load(path string) (model.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.Image{}, fmt.Errorf("%w: %v", common.ErrInputInvalid, err)
	}
	if info.Size() > MaxImageBytes {
		return model.Image{}, fmt.Errorf("%w: image larger than %d bytes", common.ErrInputInvalid, MaxImageBytes)
	}

	data, err := os.ReadFile(path) //nolint:gosec // user-supplied input file
	if err != nil {
		return model.Image{}, fmt.Errorf("%w: %v", common.ErrInputInvalid, err)
	}
	return Decode(data, "")
}

func normalizeMediaType(mt string) string {
	mt = strings.ToLower(strings.TrimSpace(mt))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if mt == "image/jpg" || mt == "image/pjpeg" {
		return model.MediaTypeJPEG
	}
	return mt
}
