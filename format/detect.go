// Package format provides file format detection and output format
// normalization for the autosig tool.
package format

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format represents a supported image file format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PSD indicates an Adobe Photoshop layered document.
	PSD
	// PNG indicates a PNG raster image.
	PNG
	// JPEG indicates a JPEG raster image.
	JPEG
	// GIF indicates a GIF raster image.
	GIF
	// TIFF indicates a TIFF raster image.
	TIFF
	// WEBP indicates a WebP raster image.
	WEBP
	// BMP indicates a Windows bitmap image.
	BMP
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case PSD:
		return "PSD"
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	case GIF:
		return "GIF"
	case TIFF:
		return "TIFF"
	case WEBP:
		return "WEBP"
	case BMP:
		return "BMP"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case PSD:
		return ".psd"
	case PNG:
		return ".png"
	case JPEG:
		return ".jpg"
	case GIF:
		return ".gif"
	case TIFF:
		return ".tiff"
	case WEBP:
		return ".webp"
	case BMP:
		return ".bmp"
	default:
		return ""
	}
}

// Layered reports whether the format carries individually-addressable layers.
func (f Format) Layered() bool {
	return f == PSD
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".psd":
		return PSD
	case ".png":
		return PNG
	case ".jpg", ".jpeg":
		return JPEG
	case ".gif":
		return GIF
	case ".tif", ".tiff":
		return TIFF
	case ".webp":
		return WEBP
	case ".bmp":
		return BMP
	default:
		return Unknown
	}
}

// DetectFromMagic checks file magic bytes to determine format.
// This provides more reliable detection than extension-based detection.
// Returns Unknown if the format cannot be determined from magic bytes alone.
func DetectFromMagic(data []byte) Format {
	if len(data) < 4 {
		return Unknown
	}

	// PSD magic: 8BPS
	if bytes.HasPrefix(data, []byte("8BPS")) {
		return PSD
	}

	// PNG magic: \x89PNG
	if bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G'}) {
		return PNG
	}

	// JPEG magic: \xFF\xD8\xFF
	if bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}) {
		return JPEG
	}

	// GIF magic: GIF87a or GIF89a
	if bytes.HasPrefix(data, []byte("GIF8")) {
		return GIF
	}

	// TIFF magic: II*\x00 (little-endian) or MM\x00* (big-endian)
	if bytes.HasPrefix(data, []byte{'I', 'I', 0x2A, 0x00}) ||
		bytes.HasPrefix(data, []byte{'M', 'M', 0x00, 0x2A}) {
		return TIFF
	}

	// WEBP magic: RIFF....WEBP
	if len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) &&
		bytes.Equal(data[8:12], []byte("WEBP")) {
		return WEBP
	}

	// BMP magic: BM
	if bytes.HasPrefix(data, []byte("BM")) {
		return BMP
	}

	return Unknown
}

// ParseOutput normalizes a user-supplied output format name.
// Aliases are folded ("jpeg" -> JPEG, "tif" -> TIFF) and matching is
// case-insensitive. Returns Unknown for unsupported names.
func ParseOutput(name string) Format {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "png":
		return PNG
	case "jpg", "jpeg":
		return JPEG
	case "gif":
		return GIF
	case "tif", "tiff":
		return TIFF
	case "webp":
		return WEBP
	case "bmp":
		return BMP
	default:
		return Unknown
	}
}
