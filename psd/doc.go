// Package psd reads Adobe Photoshop documents well enough to serve the
// autosig pipeline: the header, the layer records (bounds, visibility,
// opacity, name), per-layer channel data in RAW or RLE (PackBits)
// compression, and the pre-flattened merged image stored at the end of the
// file. It supports 8-bit RGB and grayscale documents, version 1 of the
// format.
//
// A decoded File implements model.Document: its layers can be toggled and
// the visible set re-composited, which is what signature-layer detection
// needs. Compositing applies layer opacity and normal alpha blending;
// non-normal blend modes are approximated as normal.
package psd
