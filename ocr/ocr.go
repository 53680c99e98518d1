//go:build ocr

// Package ocr reads text out of image regions, used to report what a
// suspected signature layer actually says.
//
// This package wraps the Tesseract OCR engine via gosseract. It requires
// Tesseract to be installed on the system. On macOS, install via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Reader wraps Tesseract for reading text out of image regions.
type Reader struct {
	client *gosseract.Client
}

// New creates a new Reader.
// The reader should be closed when no longer needed to release resources.
func New() (*Reader, error) {
	client := gosseract.NewClient()
	return &Reader{client: client}, nil
}

// Close releases OCR resources.
func (r *Reader) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// ReadRegion recognizes text in an image region, typically the cropped
// bounds of a candidate signature layer. Signature text is usually a
// single line, so the page segmentation mode is set accordingly.
// Returns the recognized text with leading/trailing whitespace trimmed.
func (r *Reader) ReadRegion(region image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, region); err != nil {
		return "", fmt.Errorf("failed to encode region: %w", err)
	}

	if err := r.client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return "", fmt.Errorf("failed to set segmentation mode: %w", err)
	}
	if err := r.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := r.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// SetLanguage sets the language(s) for recognition.
// Multiple languages can be specified as a "+" separated string (e.g., "eng+fra").
// Default is "eng" (English).
func (r *Reader) SetLanguage(lang string) error {
	return r.client.SetLanguage(lang)
}
