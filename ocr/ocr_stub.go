//go:build !ocr

// Package ocr reads text out of image regions, used to report what a
// suspected signature layer actually says.
//
// This is the stub implementation used when the "ocr" build tag is not set.
// All functions return ErrOCRNotEnabled.
//
// To enable OCR, rebuild with the "ocr" build tag:
//
//	go build -tags ocr
//
// This requires Tesseract to be installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"errors"
	"image"
)

// ErrOCRNotEnabled is returned when OCR functions are called but OCR support
// was not compiled in. Rebuild with -tags ocr to enable OCR support.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Reader is a stub that returns errors for all operations.
type Reader struct{}

// New returns an error indicating OCR support is not enabled.
// To enable OCR, rebuild with: go build -tags ocr
func New() (*Reader, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op for the stub reader.
// It is safe to call on a nil reader.
func (r *Reader) Close() error {
	return nil
}

// ReadRegion returns an error indicating OCR support is not enabled.
func (r *Reader) ReadRegion(region image.Image) (string, error) {
	return "", ErrOCRNotEnabled
}

// SetLanguage returns an error indicating OCR support is not enabled.
func (r *Reader) SetLanguage(lang string) error {
	return ErrOCRNotEnabled
}
