// Package detect implements signature-layer detection for layered documents.
//
// Given a document whose layers can be toggled and re-rendered, the detector
// decides which layers look like a previously applied signature or watermark
// so they can be suppressed before a new signature is composited. The
// decision is heuristic: each candidate layer is hidden in turn, the document
// is re-rendered, and the visual difference inside the layer's bounding box
// is scored. Small layers that change anything detectable, and medium layers
// that change a bounded amount, are classified as signatures.
package detect
