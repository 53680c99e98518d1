package psd

import (
	"fmt"
	"image"

	"github.com/jmorrow/autosig/model"
)

// Bounds returns the canvas dimensions in pixels.
func (f *File) Bounds() (int, int) {
	return f.header.width, f.header.height
}

// Layers returns the document's layers, bottom first. The returned slice
// shares layer pointers with the document; toggling a layer's Visible flag
// changes what the next Composite call renders.
func (f *File) Layers() []*model.Layer {
	return f.layers
}

// Composite renders a flattened image of the currently-visible layers over
// a transparent canvas. Documents without layer records fall back to the
// merged image stored in the file.
func (f *File) Composite() (image.Image, error) {
	if len(f.layers) == 0 {
		if f.merged == nil {
			return nil, fmt.Errorf("document has no layers and no merged image data")
		}
		return f.merged, nil
	}

	out := image.NewNRGBA(image.Rect(0, 0, f.header.width, f.header.height))
	for i, layer := range f.layers {
		if !layer.Visible || f.pixels[i] == nil {
			continue
		}
		blendOver(out, f.pixels[i], f.rects[i].Min, f.opacities[i])
	}
	return out, nil
}

// blendOver composites src onto dst at the given offset using straight
// (non-premultiplied) alpha, scaling the source alpha by the layer opacity.
// Source pixels falling outside dst are clipped.
func blendOver(dst *image.NRGBA, src *image.NRGBA, at image.Point, opacity uint8) {
	sb := src.Bounds()
	target := image.Rect(at.X, at.Y, at.X+sb.Dx(), at.Y+sb.Dy()).Intersect(dst.Bounds())
	if target.Empty() {
		return
	}

	for y := target.Min.Y; y < target.Max.Y; y++ {
		for x := target.Min.X; x < target.Max.X; x++ {
			si := src.PixOffset(sb.Min.X+x-at.X, sb.Min.Y+y-at.Y)
			sa := int(src.Pix[si+3]) * int(opacity) / 255
			if sa == 0 {
				continue
			}

			di := dst.PixOffset(x, y)
			da := int(dst.Pix[di+3])
			outA := sa + da*(255-sa)/255
			if outA == 0 {
				continue
			}

			for ch := 0; ch < 3; ch++ {
				sc := int(src.Pix[si+ch])
				dc := int(dst.Pix[di+ch])
				dst.Pix[di+ch] = uint8((sc*sa*255 + dc*da*(255-sa)) / (outA * 255))
			}
			dst.Pix[di+3] = uint8(outA)
		}
	}
}
