package psd

import (
	"bytes"
	"fmt"
	"image"

	"github.com/jmorrow/autosig/model"
)

// Channel identifiers in layer records. Non-negative ids are color
// channels; negative ids are alpha and mask channels.
const (
	channelAlpha    = -1
	channelUserMask = -2
	channelRealMask = -3
)

type channelInfo struct {
	id     int16
	length int
}

type layerRecord struct {
	rect     image.Rectangle
	channels []channelInfo
	blendKey string
	opacity  uint8
	flags    uint8
	name     string
}

// parseLayerSection reads the layer-info block of the layer and mask
// information section: the layer count, one record per layer, then the
// channel image data for every layer in record order. Trailing global mask
// and additional-info blocks are ignored.
func (f *File) parseLayerSection(c *cursor) error {
	infoLen, err := c.uint32()
	if err != nil {
		return fmt.Errorf("layer info length: %w", err)
	}
	if infoLen == 0 {
		return nil
	}
	info, err := c.bytes(int(infoLen))
	if err != nil {
		return fmt.Errorf("layer info: %w", err)
	}

	li := &cursor{data: info}
	count, err := li.int16()
	if err != nil {
		return fmt.Errorf("layer count: %w", err)
	}
	// A negative count means the first alpha channel of the merged image
	// holds transparency; the layer count is its absolute value.
	if count < 0 {
		count = -count
	}
	if count == 0 {
		return nil
	}

	records := make([]layerRecord, 0, int(count))
	for i := 0; i < int(count); i++ {
		rec, err := parseLayerRecord(li)
		if err != nil {
			return fmt.Errorf("layer record %d: %w", i, err)
		}
		records = append(records, rec)
	}

	for i := range records {
		pix, err := f.parseChannelData(li, &records[i])
		if err != nil {
			return fmt.Errorf("layer %d (%q) channel data: %w", i, records[i].name, err)
		}
		f.appendLayer(records[i], pix)
	}

	return nil
}

func parseLayerRecord(c *cursor) (layerRecord, error) {
	var rec layerRecord

	top, err := c.int32()
	if err != nil {
		return rec, err
	}
	left, err := c.int32()
	if err != nil {
		return rec, err
	}
	bottom, err := c.int32()
	if err != nil {
		return rec, err
	}
	right, err := c.int32()
	if err != nil {
		return rec, err
	}
	rec.rect = image.Rect(int(left), int(top), int(right), int(bottom))

	numChannels, err := c.uint16()
	if err != nil {
		return rec, err
	}
	rec.channels = make([]channelInfo, 0, int(numChannels))
	for i := 0; i < int(numChannels); i++ {
		id, err := c.int16()
		if err != nil {
			return rec, err
		}
		length, err := c.uint32()
		if err != nil {
			return rec, err
		}
		rec.channels = append(rec.channels, channelInfo{id: id, length: int(length)})
	}

	sig, err := c.bytes(4)
	if err != nil {
		return rec, err
	}
	if !bytes.Equal(sig, []byte("8BIM")) {
		return rec, fmt.Errorf("bad blend mode signature %q", sig)
	}
	blendKey, err := c.bytes(4)
	if err != nil {
		return rec, err
	}
	rec.blendKey = string(blendKey)

	rec.opacity, err = c.uint8()
	if err != nil {
		return rec, err
	}
	if err := c.skip(1); err != nil { // clipping
		return rec, err
	}
	rec.flags, err = c.uint8()
	if err != nil {
		return rec, err
	}
	if err := c.skip(1); err != nil { // filler
		return rec, err
	}

	extraLen, err := c.uint32()
	if err != nil {
		return rec, err
	}
	extra, err := c.bytes(int(extraLen))
	if err != nil {
		return rec, err
	}

	ec := &cursor{data: extra}
	if err := skipLengthPrefixed(ec, "layer mask data"); err != nil {
		return rec, err
	}
	if err := skipLengthPrefixed(ec, "blending ranges"); err != nil {
		return rec, err
	}
	rec.name, err = ec.pascalString(4)
	if err != nil {
		return rec, err
	}
	// The rest of the extra block is additional layer information
	// (Unicode names, effects, sections); not needed here.

	return rec, nil
}

// parseChannelData decodes a layer's channel planes and assembles them into
// a positioned NRGBA image. Mask channels are consumed but discarded.
// Layers with an empty rectangle produce no pixels.
func (f *File) parseChannelData(c *cursor, rec *layerRecord) (*image.NRGBA, error) {
	w := rec.rect.Dx()
	h := rec.rect.Dy()

	planes := make(map[int16][]byte, len(rec.channels))
	for _, ch := range rec.channels {
		data, err := c.bytes(ch.length)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch.id, err)
		}
		if ch.id == channelUserMask || ch.id == channelRealMask {
			continue // mask planes use the mask rectangle; not needed
		}
		if w <= 0 || h <= 0 {
			continue
		}
		plane, err := decodePlane(data, w, h)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch.id, err)
		}
		planes[ch.id] = plane
	}

	if w <= 0 || h <= 0 || len(planes) == 0 {
		return nil, nil
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	gray := f.header.colorMode == colorModeGrayscale

	for i := 0; i < w*h; i++ {
		var r, g, b uint8
		if gray {
			v := planeValue(planes, 0, i)
			r, g, b = v, v, v
		} else {
			r = planeValue(planes, 0, i)
			g = planeValue(planes, 1, i)
			b = planeValue(planes, 2, i)
		}
		a := uint8(255)
		if alpha, ok := planes[channelAlpha]; ok && i < len(alpha) {
			a = alpha[i]
		}
		img.Pix[i*4+0] = r
		img.Pix[i*4+1] = g
		img.Pix[i*4+2] = b
		img.Pix[i*4+3] = a
	}

	return img, nil
}

// decodePlane decodes one channel plane: a compression marker followed by
// either raw bytes or per-row PackBits runs with a leading row-count table.
func decodePlane(data []byte, w, h int) ([]byte, error) {
	c := &cursor{data: data}
	compression, err := c.uint16()
	if err != nil {
		return nil, err
	}

	switch compression {
	case compressionRaw:
		return c.bytes(w * h)

	case compressionRLE:
		counts := make([]int, h)
		for i := range counts {
			n, err := c.uint16()
			if err != nil {
				return nil, fmt.Errorf("row counts: %w", err)
			}
			counts[i] = int(n)
		}
		plane := make([]byte, 0, w*h)
		for row := 0; row < h; row++ {
			packed, err := c.bytes(counts[row])
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", row, err)
			}
			unpacked, err := unpackBits(packed, w)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", row, err)
			}
			plane = append(plane, unpacked...)
		}
		return plane, nil

	default:
		return nil, fmt.Errorf("unsupported compression %d", compression)
	}
}

func planeValue(planes map[int16][]byte, id int16, i int) uint8 {
	p, ok := planes[id]
	if !ok || i >= len(p) {
		return 0
	}
	return p[i]
}

// appendLayer records a parsed layer in document order (bottom first, as
// stored in the file).
func (f *File) appendLayer(rec layerRecord, pix *image.NRGBA) {
	layer := &model.Layer{
		Name:    rec.name,
		Visible: rec.flags&flagHidden == 0,
	}
	if !rec.rect.Empty() {
		r := model.FromImageRect(rec.rect)
		layer.Bounds = &r
	}

	f.layers = append(f.layers, layer)
	f.rects = append(f.rects, rec.rect)
	f.opacities = append(f.opacities, rec.opacity)
	f.pixels = append(f.pixels, pix)
}
