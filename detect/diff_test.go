package detect

import (
	"image"
	"image/color"
	"math"
	"testing"
)

// solidImage creates a w x h image filled with a single color.
func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestDifferenceScoreIdentical(t *testing.T) {
	a := solidImage(10, 10, color.NRGBA{R: 40, G: 80, B: 120, A: 255})
	b := solidImage(10, 10, color.NRGBA{R: 40, G: 80, B: 120, A: 255})

	score, err := DifferenceScore(a, b)
	if err != nil {
		t.Fatalf("DifferenceScore failed: %v", err)
	}
	if score != 0.0 {
		t.Errorf("Expected score 0.0 for identical regions, got %f", score)
	}
}

func TestDifferenceScoreBlackWhite(t *testing.T) {
	black := solidImage(8, 8, color.NRGBA{A: 255})
	white := solidImage(8, 8, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	score, err := DifferenceScore(black, white)
	if err != nil {
		t.Fatalf("DifferenceScore failed: %v", err)
	}
	if score != 100.0 {
		t.Errorf("Expected score exactly 100.0 for black vs white, got %f", score)
	}
}

func TestDifferenceScoreSingleChannel(t *testing.T) {
	// A full-scale change on one of three channels scores 100/3.
	a := solidImage(4, 4, color.NRGBA{A: 255})
	b := solidImage(4, 4, color.NRGBA{R: 255, A: 255})

	score, err := DifferenceScore(a, b)
	if err != nil {
		t.Fatalf("DifferenceScore failed: %v", err)
	}
	if math.Abs(score-100.0/3.0) > 1e-9 {
		t.Errorf("Expected score %f, got %f", 100.0/3.0, score)
	}
}

func TestDifferenceScoreUniformDelta(t *testing.T) {
	// Delta d on every channel of every pixel scores d*d/650.25.
	a := solidImage(5, 5, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
	b := solidImage(5, 5, color.NRGBA{R: 110, G: 110, B: 110, A: 255})

	score, err := DifferenceScore(a, b)
	if err != nil {
		t.Fatalf("DifferenceScore failed: %v", err)
	}
	want := 100.0 / 650.25
	if math.Abs(score-want) > 1e-9 {
		t.Errorf("Expected score %f, got %f", want, score)
	}
}

func TestDifferenceScoreSizeMismatch(t *testing.T) {
	a := solidImage(10, 10, color.NRGBA{A: 255})
	b := solidImage(10, 9, color.NRGBA{A: 255})

	if _, err := DifferenceScore(a, b); err == nil {
		t.Error("Expected error for mismatched region sizes")
	}
}

func TestDifferenceScoreEmptyRegion(t *testing.T) {
	a := image.NewNRGBA(image.Rect(0, 0, 0, 0))
	b := image.NewNRGBA(image.Rect(0, 0, 0, 0))

	if _, err := DifferenceScore(a, b); err == nil {
		t.Error("Expected error for empty regions")
	}
}

func TestDifferenceScoreOffsetBounds(t *testing.T) {
	// Regions with different origins but equal dimensions compare fine.
	a := solidImage(6, 6, color.NRGBA{R: 50, G: 50, B: 50, A: 255})
	sub := a.SubImage(image.Rect(1, 1, 5, 5))
	b := solidImage(4, 4, color.NRGBA{R: 50, G: 50, B: 50, A: 255})

	score, err := DifferenceScore(sub, b)
	if err != nil {
		t.Fatalf("DifferenceScore failed: %v", err)
	}
	if score != 0.0 {
		t.Errorf("Expected score 0.0, got %f", score)
	}
}
