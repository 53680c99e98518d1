package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	// Raster decoders beyond PNG/JPEG register themselves with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/jmorrow/autosig/format"
	"github.com/jmorrow/autosig/model"
	"github.com/jmorrow/autosig/psd"
)

// Load reads and decodes an image file. PSD files are decoded through the
// psd package and returned as the flattened composite of their visible
// layers; raster formats go through the registered image decoders. The
// format is sniffed from magic bytes, falling back to the file extension.
func Load(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	f := format.DetectFromMagic(data)
	if f == format.Unknown {
		f = format.Detect(path)
	}

	if f == format.PSD {
		doc, err := psd.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode PSD %s: %w", path, err)
		}
		img, err := doc.Composite()
		if err != nil {
			return nil, fmt.Errorf("failed to composite PSD %s: %w", path, err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// LoadDocument reads a file as a layered document. PSD files expose their
// real layers; any other decodable raster image is wrapped as a single-layer
// document so callers can treat all inputs uniformly.
func LoadDocument(path string) (model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	f := format.DetectFromMagic(data)
	if f == format.Unknown {
		f = format.Detect(path)
	}

	if f == format.PSD {
		doc, err := psd.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode PSD %s: %w", path, err)
		}
		return doc, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return NewFlatDocument(img), nil
}

// FlatDocument adapts a plain raster image to the model.Document interface
// as a document with a single full-canvas layer.
type FlatDocument struct {
	img    image.Image
	layers []*model.Layer
}

// NewFlatDocument wraps a raster image as a single-layer document.
func NewFlatDocument(img image.Image) *FlatDocument {
	return &FlatDocument{
		img:    img,
		layers: []*model.Layer{{Name: "Image", Visible: true}},
	}
}

// Bounds returns the image dimensions.
func (d *FlatDocument) Bounds() (int, int) {
	b := d.img.Bounds()
	return b.Dx(), b.Dy()
}

// Layers returns the single wrapper layer.
func (d *FlatDocument) Layers() []*model.Layer {
	return d.layers
}

// Composite returns the wrapped image, or a transparent canvas when the
// wrapper layer has been hidden.
func (d *FlatDocument) Composite() (image.Image, error) {
	if !d.layers[0].Visible {
		return image.NewNRGBA(image.Rect(0, 0, d.img.Bounds().Dx(), d.img.Bounds().Dy())), nil
	}
	return d.img, nil
}

// Crop returns a copy of the given region of the image. The returned image
// has a zero-based bounds rectangle regardless of the source origin.
func Crop(img image.Image, r model.Rect) image.Image {
	src := r.ImageRect().Add(img.Bounds().Min)
	out := image.NewNRGBA(image.Rect(0, 0, r.Width(), r.Height()))
	draw.Draw(out, out.Bounds(), img, src.Min, draw.Src)
	return out
}

// Grayscale converts an image to its single-channel grayscale form.
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Overlay alpha-composites the overlay image onto a copy of the base image
// with its top-left corner at the given offset. The base is never modified.
func Overlay(base, overlay image.Image, at image.Point) *image.NRGBA {
	bb := base.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bb.Dx(), bb.Dy()))
	draw.Draw(out, out.Bounds(), base, bb.Min, draw.Src)

	ob := overlay.Bounds()
	target := image.Rect(at.X, at.Y, at.X+ob.Dx(), at.Y+ob.Dy())
	draw.Draw(out, target, overlay, ob.Min, draw.Over)
	return out
}

// FlattenOnWhite composites an image over an opaque white background,
// discarding transparency. Used for formats without an alpha channel.
func FlattenOnWhite(img image.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Over)
	return out
}
