package model

import "image"

// Layer is a single layer of a layered document.
//
// Visible is mutable scratch state: callers (notably the signature-layer
// detector) toggle it to control what appears in the next composite render.
// Bounds is nil when the layer spans the whole canvas.
type Layer struct {
	// Name is the layer name as stored in the source file. Names are not
	// required to be unique and may be empty.
	Name string

	// Visible controls whether the layer contributes to Composite output.
	Visible bool

	// Bounds is the layer's bounding box in canvas coordinates, or nil
	// when the layer spans the whole canvas.
	Bounds *Rect
}

// Document is a layered image source that can render a flattened composite
// of its currently-visible layers. Format readers implement it; the detect
// package consumes it.
//
// Layers returns the layers in stacking order, bottom first. The returned
// slice shares layer pointers with the document: mutating a layer's Visible
// flag changes what the next Composite call renders.
type Document interface {
	// Bounds returns the canvas dimensions in pixels.
	Bounds() (width, height int)

	// Layers returns the document's layers, bottom first.
	Layers() []*Layer

	// Composite renders a flattened image of the currently-visible layers.
	Composite() (image.Image, error)
}
