package raster

import (
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/jmorrow/autosig/model"
)

// ResizeToFit shrinks an image so that neither dimension exceeds
// maxDimension, preserving aspect ratio. Images already within the limit
// (and any image when maxDimension is zero or negative) are returned
// unchanged; this operation never enlarges.
func ResizeToFit(img image.Image, maxDimension int) image.Image {
	if maxDimension <= 0 {
		return img
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDimension && h <= maxDimension {
		return img
	}

	var newW, newH int
	if w >= h {
		newW = maxDimension
		newH = h * maxDimension / w
	} else {
		newH = maxDimension
		newW = w * maxDimension / h
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	out := image.NewNRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(out, out.Bounds(), img, b, xdraw.Src, nil)
	return out
}

// CropToAspect center-crops an image to the given width/height ratio.
// A ratio of zero or less returns the image unchanged, as does an image
// already at the requested ratio.
func CropToAspect(img image.Image, ratio float64) image.Image {
	if ratio <= 0 {
		return img
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return img
	}

	current := float64(w) / float64(h)
	switch {
	case current > ratio:
		// Too wide: trim the sides.
		cropW := int(float64(h)*ratio + 0.5)
		if cropW < 1 {
			cropW = 1
		}
		if cropW >= w {
			return img
		}
		left := (w - cropW) / 2
		return Crop(img, model.NewRect(left, 0, left+cropW, h))
	case current < ratio:
		// Too tall: trim top and bottom.
		cropH := int(float64(w)/ratio + 0.5)
		if cropH < 1 {
			cropH = 1
		}
		if cropH >= h {
			return img
		}
		top := (h - cropH) / 2
		return Crop(img, model.NewRect(0, top, w, top+cropH))
	default:
		return img
	}
}
