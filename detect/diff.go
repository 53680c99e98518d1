package detect

import (
	"fmt"
	"image"
)

// maxChannelSquare is the largest possible per-channel squared difference
// (255*255), used to normalize the mean-squared error to a 0-100 scale.
const maxChannelSquare = 65025.0

// DifferenceScore computes a normalized visual difference between two
// same-sized image regions on a 0-100 scale.
//
// Both regions are reduced to 8-bit RGB and compared per pixel, per channel.
// The mean of the squared channel differences (range 0-65025) is divided by
// 65025 and scaled by 100, so identical regions score 0.0 and an all-black
// region compared to an all-white region scores exactly 100.0.
//
// An error is returned when the regions differ in pixel dimensions or have
// no pixels.
func DifferenceScore(a, b image.Image) (float64, error) {
	ab := a.Bounds()
	bb := b.Bounds()

	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return 0, fmt.Errorf("region size mismatch: %dx%d vs %dx%d",
			ab.Dx(), ab.Dy(), bb.Dx(), bb.Dy())
	}
	if ab.Dx() <= 0 || ab.Dy() <= 0 {
		return 0, fmt.Errorf("empty region: %dx%d", ab.Dx(), ab.Dy())
	}

	var sum float64
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			ar, ag, abl := rgb8At(a, ab.Min.X+x, ab.Min.Y+y)
			br, bg, bbl := rgb8At(b, bb.Min.X+x, bb.Min.Y+y)

			dr := float64(ar) - float64(br)
			dg := float64(ag) - float64(bg)
			db := float64(abl) - float64(bbl)
			sum += dr*dr + dg*dg + db*db
		}
	}

	mse := sum / float64(ab.Dx()*ab.Dy()*3)
	return mse / maxChannelSquare * 100.0, nil
}

// rgb8At returns the 8-bit RGB channels of the pixel at (x, y).
func rgb8At(img image.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}
