// Package raster provides the pixel-level operations the autosig pipeline
// is built from: decoding source files (including flattened PSD documents),
// alpha-compositing a signature onto a base image, shrink-only resizing,
// aspect-ratio cropping, and encoding to the supported output formats.
package raster
