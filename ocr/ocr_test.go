//go:build ocr

package ocr

import (
	"image"
	"image/color"
	"testing"
)

// textLikePattern builds a white image with a black block, a stand-in for
// a signature region. Recognition output is not asserted; these tests only
// verify the Tesseract plumbing.
func textLikePattern(width, height int) image.Image {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	for x := 10; x < 50 && x < width; x++ {
		for y := 10; y < 30 && y < height; y++ {
			img.Set(x, y, color.Black)
		}
	}
	return img
}

func TestNew(t *testing.T) {
	reader, err := New()
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	defer reader.Close()

	if reader == nil {
		t.Error("Expected non-nil reader")
	}
}

func TestReadRegion(t *testing.T) {
	reader, err := New()
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	defer reader.Close()

	if _, err := reader.ReadRegion(textLikePattern(100, 50)); err != nil {
		t.Errorf("ReadRegion failed: %v", err)
	}
}

func TestSetLanguage(t *testing.T) {
	reader, err := New()
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	defer reader.Close()

	if err := reader.SetLanguage("eng"); err != nil {
		t.Errorf("SetLanguage failed: %v", err)
	}
}
