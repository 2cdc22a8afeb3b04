package model

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Supported image media types.
const (
	MediaTypePNG  = "image/png"
	MediaTypeJPEG = "image/jpeg"
	MediaTypeWEBP = "image/webp"
)

// Image is a decoded, validated source image.
type Image struct {
	MediaType string
	Data      []byte
	Width     int
	Height    int
}

// Base64 returns the standard base64 encoding of the image bytes.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURI returns the image as a data: URI.
func (i Image) DataURI() string {
	return "data:" + i.MediaType + ";base64," + i.Base64()
}

// Digest creates a stable hash of the media type and bytes for caching.
func (i Image) Digest() string {
	h := sha256.New()
	h.Write([]byte(i.MediaType))
	h.Write([]byte{0})
	h.Write(i.Data)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Empty reports whether no image data is present.
func (i Image) Empty() bool {
	return len(i.Data) == 0
}
