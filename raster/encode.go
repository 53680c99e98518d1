package raster

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/jmorrow/autosig/format"
)

// ErrUnsupportedFormat is returned when asked to encode a format the tool
// can only decode (currently WEBP) or does not know at all.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Encode writes an image to w in the given format. Quality applies to JPEG
// only (1-100). Formats without an alpha channel (JPEG, BMP) are flattened
// onto a white background first.
func Encode(w io.Writer, img image.Image, f format.Format, quality int) error {
	switch f {
	case format.PNG:
		return png.Encode(w, img)
	case format.JPEG:
		return jpeg.Encode(w, FlattenOnWhite(img), &jpeg.Options{Quality: quality})
	case format.GIF:
		return gif.Encode(w, img, nil)
	case format.TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case format.BMP:
		return bmp.Encode(w, FlattenOnWhite(img))
	case format.WEBP:
		return fmt.Errorf("%w: WEBP is decode-only", ErrUnsupportedFormat)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}

// Save encodes an image to a file in the given format. The file is created
// or truncated. On encoding failure the partial file is removed.
func Save(img image.Image, path string, f format.Format, quality int) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := Encode(file, img, f, quality); err != nil {
		file.Close()
		os.Remove(path)
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
