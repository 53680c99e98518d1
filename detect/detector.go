package detect

import (
	"errors"
	"fmt"
	"image"

	"github.com/jmorrow/autosig/model"
	"github.com/jmorrow/autosig/raster"
)

// Config holds detector thresholds. Areas are percentages of the canvas
// area; scores are on the 0-100 scale produced by DifferenceScore.
type Config struct {
	// MaxAreaPercent is the largest layer area still considered a
	// signature candidate. Larger layers are never probed.
	MaxAreaPercent float64

	// SmallAreaPercent divides small layers from medium layers. Small
	// layers are classified as signatures on any detectable change.
	SmallAreaPercent float64

	// SmallMinScore is the minimum difference score for a small layer
	// to count as a signature.
	SmallMinScore float64

	// MediumMinScore and MediumMaxScore bound the difference scores a
	// medium layer must produce to count as a signature. Below the band
	// the layer is near-invisible; above it, it is substantial content.
	MediumMinScore float64
	MediumMaxScore float64
}

// DefaultConfig returns the default detector thresholds.
func DefaultConfig() Config {
	return Config{
		MaxAreaPercent:   50.0,
		SmallAreaPercent: 15.0,
		SmallMinScore:    0.01,
		MediumMinScore:   5.0,
		MediumMaxScore:   25.0,
	}
}

// Result reports the outcome of a detection pass.
type Result struct {
	// Detected lists the indices of layers classified as signature
	// content, ascending. These layers are left hidden.
	Detected []int

	// AlreadyHidden lists the indices of layers that were hidden before
	// the pass started, ascending. They are never probed or reported as
	// detected.
	AlreadyHidden []int

	// NotHideable is reserved for a region-based detection mode that
	// reports signatures it cannot suppress. It is always false.
	NotHideable bool
}

// Detector classifies signature layers in layered documents.
type Detector struct {
	config Config
}

// NewDetector creates a Detector with default thresholds.
func NewDetector() *Detector {
	return &Detector{config: DefaultConfig()}
}

// Configure sets detector thresholds.
func (d *Detector) Configure(config Config) error {
	if config.MaxAreaPercent <= 0 || config.SmallAreaPercent <= 0 {
		return errors.New("area thresholds must be positive")
	}
	if config.SmallAreaPercent >= config.MaxAreaPercent {
		return fmt.Errorf("small area threshold %.1f must be below max area threshold %.1f",
			config.SmallAreaPercent, config.MaxAreaPercent)
	}
	if config.MediumMinScore >= config.MediumMaxScore {
		return fmt.Errorf("medium score band [%.2f, %.2f] is empty",
			config.MediumMinScore, config.MediumMaxScore)
	}
	d.config = config
	return nil
}

// Signatures runs a detection pass with default thresholds.
func Signatures(doc model.Document) (Result, error) {
	return NewDetector().Detect(doc)
}

// Detect classifies the document's signature layers.
//
// Layers classified as signatures are left hidden; every other layer is
// restored to the visibility it had when Detect was called. Layers that
// were already hidden are never touched. A render or measurement failure
// for one layer downgrades that layer to "not a signature" and the pass
// continues; Detect itself only fails when the document is unusable (nil,
// empty canvas, or the reference composite cannot be rendered).
func (d *Detector) Detect(doc model.Document) (Result, error) {
	if doc == nil {
		return Result{}, errors.New("nil document")
	}

	var result Result
	layers := doc.Layers()
	if len(layers) == 0 {
		return result, nil
	}

	reference, err := doc.Composite()
	if err != nil {
		return Result{}, fmt.Errorf("reference composite: %w", err)
	}

	width := reference.Bounds().Dx()
	height := reference.Bounds().Dy()
	if width <= 0 || height <= 0 {
		return Result{}, fmt.Errorf("empty canvas: %dx%d", width, height)
	}
	imageArea := float64(width * height)
	canvas := model.NewRect(0, 0, width, height)

	for i, layer := range layers {
		if !layer.Visible {
			result.AlreadyHidden = append(result.AlreadyHidden, i)
			continue
		}

		sizePercent := 0.0
		if layer.Bounds != nil {
			sizePercent = 100.0 * float64(layer.Bounds.Area()) / imageArea
			// Too large to plausibly be a signature; skip without
			// spending a render on it.
			if sizePercent > d.config.MaxAreaPercent {
				continue
			}
		}

		if d.probeLayer(doc, layer, reference, canvas, sizePercent) {
			result.Detected = append(result.Detected, i)
		}
	}

	return result, nil
}

// probeLayer hides the layer, re-renders, and decides whether the change
// looks like a removed signature. The layer stays hidden only on a positive
// classification; every other path, including render or measurement
// failure, restores the visibility observed at entry.
func (d *Detector) probeLayer(doc model.Document, layer *model.Layer, reference image.Image, canvas model.Rect, sizePercent float64) (isSignature bool) {
	wasVisible := layer.Visible
	layer.Visible = false
	defer func() {
		if !isSignature {
			layer.Visible = wasVisible
		}
	}()

	score, err := d.scoreLayer(doc, layer, reference, canvas)
	if err != nil {
		return false
	}

	// Both rules require a bounding box: a layer spanning the whole
	// canvas has no localized region in which a signature could live.
	if layer.Bounds == nil {
		return false
	}
	if sizePercent < d.config.SmallAreaPercent {
		return score > d.config.SmallMinScore
	}
	return score > d.config.MediumMinScore && score < d.config.MediumMaxScore
}

// scoreLayer renders the test composite with the layer hidden and measures
// the difference against the reference, restricted to the layer's bounding
// region when it has one.
func (d *Detector) scoreLayer(doc model.Document, layer *model.Layer, reference image.Image, canvas model.Rect) (float64, error) {
	test, err := doc.Composite()
	if err != nil {
		return 0, fmt.Errorf("test composite: %w", err)
	}

	if layer.Bounds == nil {
		return DifferenceScore(reference, test)
	}

	region := layer.Bounds.Intersection(canvas)
	if region.IsEmpty() {
		return 0, fmt.Errorf("layer bounds %+v outside canvas", *layer.Bounds)
	}
	return DifferenceScore(raster.Crop(reference, region), raster.Crop(test, region))
}
