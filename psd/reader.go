package psd

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/jmorrow/autosig/model"
)

// Color modes from the PSD header. Only grayscale and RGB are supported.
const (
	colorModeBitmap    = 0
	colorModeGrayscale = 1
	colorModeIndexed   = 2
	colorModeRGB       = 3
	colorModeCMYK      = 4
)

// Channel compression methods.
const (
	compressionRaw = 0
	compressionRLE = 1
)

// Layer flags byte: bit 1 set means the layer is hidden.
const flagHidden = 0x02

type header struct {
	channels  int
	width     int
	height    int
	depth     int
	colorMode uint16
}

// File is a decoded PSD document. It implements model.Document.
type File struct {
	header header

	layers    []*model.Layer
	rects     []image.Rectangle
	opacities []uint8
	pixels    []*image.NRGBA // positioned by rects; nil for empty layers

	// merged is the pre-flattened image data section, used when the file
	// carries no layer records.
	merged image.Image
}

// Open reads and decodes a PSD file from disk.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Decode(bytes.NewReader(data))
}

// Decode reads a PSD document from r.
func Decode(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read PSD data: %w", err)
	}

	c := &cursor{data: data}
	h, err := parseHeader(c)
	if err != nil {
		return nil, err
	}

	// Color mode data (palette for indexed/duotone; unused here).
	if err := skipLengthPrefixed(c, "color mode data"); err != nil {
		return nil, err
	}

	// Image resources (thumbnails, ICC profiles, and similar; unused).
	if err := skipLengthPrefixed(c, "image resources"); err != nil {
		return nil, err
	}

	f := &File{header: h}

	// Layer and mask information section.
	sectionLen, err := c.uint32()
	if err != nil {
		return nil, fmt.Errorf("layer section length: %w", err)
	}
	section, err := c.bytes(int(sectionLen))
	if err != nil {
		return nil, fmt.Errorf("layer section: %w", err)
	}
	if sectionLen > 0 {
		if err := f.parseLayerSection(&cursor{data: section}); err != nil {
			return nil, err
		}
	}

	// Merged image data. Some writers omit it when layers are present, so
	// a decode failure here is only fatal when there are no layers to
	// composite from.
	if c.remaining() >= 2 {
		merged, err := f.parseMergedImage(c)
		if err == nil {
			f.merged = merged
		} else if len(f.layers) == 0 {
			return nil, fmt.Errorf("merged image data: %w", err)
		}
	}

	if len(f.layers) == 0 && f.merged == nil {
		return nil, fmt.Errorf("document has no layers and no merged image data")
	}

	return f, nil
}

func parseHeader(c *cursor) (header, error) {
	var h header

	sig, err := c.bytes(4)
	if err != nil {
		return h, fmt.Errorf("header: %w", err)
	}
	if !bytes.Equal(sig, []byte("8BPS")) {
		return h, fmt.Errorf("not a PSD file: bad signature %q", sig)
	}

	version, err := c.uint16()
	if err != nil {
		return h, fmt.Errorf("header version: %w", err)
	}
	if version != 1 {
		return h, fmt.Errorf("unsupported PSD version %d (only version 1 is supported)", version)
	}

	if err := c.skip(6); err != nil {
		return h, fmt.Errorf("header reserved bytes: %w", err)
	}

	channels, err := c.uint16()
	if err != nil {
		return h, fmt.Errorf("header channels: %w", err)
	}
	height, err := c.uint32()
	if err != nil {
		return h, fmt.Errorf("header height: %w", err)
	}
	width, err := c.uint32()
	if err != nil {
		return h, fmt.Errorf("header width: %w", err)
	}
	depth, err := c.uint16()
	if err != nil {
		return h, fmt.Errorf("header depth: %w", err)
	}
	colorMode, err := c.uint16()
	if err != nil {
		return h, fmt.Errorf("header color mode: %w", err)
	}

	if width == 0 || height == 0 {
		return h, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	if depth != 8 {
		return h, fmt.Errorf("unsupported bit depth %d (only 8-bit documents are supported)", depth)
	}
	if colorMode != colorModeRGB && colorMode != colorModeGrayscale {
		return h, fmt.Errorf("unsupported color mode %d (only RGB and grayscale are supported)", colorMode)
	}

	h.channels = int(channels)
	h.width = int(width)
	h.height = int(height)
	h.depth = int(depth)
	h.colorMode = colorMode
	return h, nil
}

func skipLengthPrefixed(c *cursor, what string) error {
	n, err := c.uint32()
	if err != nil {
		return fmt.Errorf("%s length: %w", what, err)
	}
	if err := c.skip(int(n)); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

// parseMergedImage decodes the flattened image data section at the end of
// the file. Channel planes are stored planar: all of channel 0, then all of
// channel 1, and so on.
func (f *File) parseMergedImage(c *cursor) (image.Image, error) {
	compression, err := c.uint16()
	if err != nil {
		return nil, err
	}

	w, h := f.header.width, f.header.height
	planeSize := w * h
	planes := make([][]byte, f.header.channels)

	switch compression {
	case compressionRaw:
		for i := range planes {
			p, err := c.bytes(planeSize)
			if err != nil {
				return nil, fmt.Errorf("channel %d: %w", i, err)
			}
			planes[i] = p
		}

	case compressionRLE:
		// Row byte counts for every channel come first, then the packed
		// rows channel by channel.
		counts := make([]int, f.header.channels*h)
		for i := range counts {
			n, err := c.uint16()
			if err != nil {
				return nil, fmt.Errorf("RLE row counts: %w", err)
			}
			counts[i] = int(n)
		}
		for i := range planes {
			plane := make([]byte, 0, planeSize)
			for row := 0; row < h; row++ {
				packed, err := c.bytes(counts[i*h+row])
				if err != nil {
					return nil, fmt.Errorf("channel %d row %d: %w", i, row, err)
				}
				unpacked, err := unpackBits(packed, w)
				if err != nil {
					return nil, fmt.Errorf("channel %d row %d: %w", i, row, err)
				}
				plane = append(plane, unpacked...)
			}
			planes[i] = plane
		}

	default:
		return nil, fmt.Errorf("unsupported compression %d", compression)
	}

	return f.planesToImage(planes, w, h), nil
}

// planesToImage assembles channel planes into an NRGBA image according to
// the document color mode. An extra plane beyond the color channels is
// treated as alpha.
func (f *File) planesToImage(planes [][]byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	colorChannels := 3
	if f.header.colorMode == colorModeGrayscale {
		colorChannels = 1
	}

	var alpha []byte
	if len(planes) > colorChannels {
		alpha = planes[colorChannels]
	}

	for i := 0; i < w*h; i++ {
		var r, g, b uint8
		if f.header.colorMode == colorModeGrayscale {
			v := planeAt(planes, 0, i)
			r, g, b = v, v, v
		} else {
			r = planeAt(planes, 0, i)
			g = planeAt(planes, 1, i)
			b = planeAt(planes, 2, i)
		}
		a := uint8(255)
		if alpha != nil && i < len(alpha) {
			a = alpha[i]
		}
		img.Pix[i*4+0] = r
		img.Pix[i*4+1] = g
		img.Pix[i*4+2] = b
		img.Pix[i*4+3] = a
	}

	return img
}

func planeAt(planes [][]byte, idx, i int) uint8 {
	if idx >= len(planes) || i >= len(planes[idx]) {
		return 0
	}
	return planes[idx][i]
}
