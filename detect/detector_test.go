package detect

import (
	"errors"
	"image"
	"testing"

	"github.com/jmorrow/autosig/model"
)

// fakeDoc is a layered document with solid-gray layers painted over a
// mid-gray base. Because test layers never overlap, hiding a layer changes
// every pixel of its bounding region by exactly (value - baseValue), which
// makes the resulting difference score value*value adjustable per layer:
// score = delta^2 / 650.25 on the 0-100 scale.
type fakeDoc struct {
	w, h   int
	layers []*model.Layer
	values []uint8

	// failWhenHidden makes Composite fail whenever the layer at this
	// index is hidden; -1 disables the failure.
	failWhenHidden int

	renders int
}

const baseValue = 100

func newFakeDoc(w, h int) *fakeDoc {
	return &fakeDoc{w: w, h: h, failWhenHidden: -1}
}

// addLayer appends a layer painted with the given gray value. A nil rect
// means the layer has no bounds and spans the whole canvas.
func (d *fakeDoc) addLayer(name string, bounds *model.Rect, value uint8, visible bool) *model.Layer {
	layer := &model.Layer{Name: name, Visible: visible, Bounds: bounds}
	d.layers = append(d.layers, layer)
	d.values = append(d.values, value)
	return layer
}

func (d *fakeDoc) Bounds() (int, int) {
	return d.w, d.h
}

func (d *fakeDoc) Layers() []*model.Layer {
	return d.layers
}

func (d *fakeDoc) Composite() (image.Image, error) {
	d.renders++
	for i, l := range d.layers {
		if !l.Visible && i == d.failWhenHidden {
			return nil, errors.New("render failure")
		}
	}

	img := image.NewNRGBA(image.Rect(0, 0, d.w, d.h))
	paint(img, model.NewRect(0, 0, d.w, d.h), baseValue)
	for i, l := range d.layers {
		if !l.Visible {
			continue
		}
		region := model.NewRect(0, 0, d.w, d.h)
		if l.Bounds != nil {
			region = l.Bounds.Intersection(region)
		}
		paint(img, region, d.values[i])
	}
	return img, nil
}

func paint(img *image.NRGBA, r model.Rect, v uint8) {
	for y := r.Top; y < r.Bottom; y++ {
		for x := r.Left; x < r.Right; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i+0] = v
			img.Pix[i+1] = v
			img.Pix[i+2] = v
			img.Pix[i+3] = 255
		}
	}
}

func rect(left, top, right, bottom int) *model.Rect {
	r := model.NewRect(left, top, right, bottom)
	return &r
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDetectNilDocument(t *testing.T) {
	if _, err := NewDetector().Detect(nil); err == nil {
		t.Error("Expected error for nil document")
	}
}

func TestDetectEmptyDocument(t *testing.T) {
	doc := newFakeDoc(100, 100)

	result, err := Signatures(doc)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(result.Detected) != 0 || len(result.AlreadyHidden) != 0 {
		t.Errorf("Expected empty result, got %+v", result)
	}
	if result.NotHideable {
		t.Error("NotHideable must always be false")
	}
}

func TestDetectReferenceRenderFailure(t *testing.T) {
	doc := newFakeDoc(100, 100)
	// A pre-hidden failing layer breaks even the reference render.
	doc.addLayer("Broken", rect(0, 0, 10, 10), 200, false)
	doc.failWhenHidden = 0

	if _, err := Signatures(doc); err == nil {
		t.Error("Expected error when the reference composite cannot be rendered")
	}
}

// Small layers (under 15% of canvas area) are signatures on any detectable
// change; a sub-threshold score is not detectable.
func TestDetectSmallLayerSensitivity(t *testing.T) {
	tests := []struct {
		name  string
		value uint8
		want  bool
	}{
		{"no change", baseValue, false},               // score 0
		{"faint below threshold", baseValue + 2, false}, // score ~0.006
		{"detectable change", baseValue + 10, true},   // score ~0.154
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newFakeDoc(100, 100)
			// 25x20 = 5% of the canvas.
			layer := doc.addLayer("Sig", rect(0, 0, 25, 20), tt.value, true)

			result, err := Signatures(doc)
			if err != nil {
				t.Fatalf("Detect failed: %v", err)
			}

			detected := intsEqual(result.Detected, []int{0})
			if detected != tt.want {
				t.Errorf("Detected = %v, want detection %v", result.Detected, tt.want)
			}
			if layer.Visible == tt.want {
				t.Errorf("Layer visibility %v inconsistent with detection %v", layer.Visible, tt.want)
			}
		})
	}
}

// Medium layers (15-50% of canvas area) must score strictly inside the
// (5, 25) band.
func TestDetectMediumLayerBand(t *testing.T) {
	tests := []struct {
		name  string
		value uint8
		want  bool
	}{
		{"below band", baseValue + 40, false}, // score ~2.46
		{"inside band", baseValue + 80, true}, // score ~9.84
		{"above band", baseValue + 150, false}, // score ~34.6
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newFakeDoc(100, 100)
			// 60x50 = 30% of the canvas.
			layer := doc.addLayer("Panel", rect(0, 0, 60, 50), tt.value, true)

			result, err := Signatures(doc)
			if err != nil {
				t.Fatalf("Detect failed: %v", err)
			}

			detected := intsEqual(result.Detected, []int{0})
			if detected != tt.want {
				t.Errorf("Detected = %v, want detection %v", result.Detected, tt.want)
			}
			if layer.Visible == tt.want {
				t.Errorf("Layer visibility %v inconsistent with detection %v", layer.Visible, tt.want)
			}
		})
	}
}

// Layers over half the canvas are never probed, whatever their content.
func TestDetectLargeLayerExcluded(t *testing.T) {
	doc := newFakeDoc(100, 100)
	// 100x60 = 60% of the canvas, with a massive visual contribution.
	layer := doc.addLayer("Artwork", rect(0, 0, 100, 60), 255, true)

	result, err := Signatures(doc)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if len(result.Detected) != 0 {
		t.Errorf("Large layer must never be detected, got %v", result.Detected)
	}
	if !layer.Visible {
		t.Error("Large layer must never be toggled")
	}
	// One reference render, no probe render.
	if doc.renders != 1 {
		t.Errorf("Expected 1 render for a skipped layer, got %d", doc.renders)
	}
}

// Layers without bounds are probed over the full canvas but never
// classified: both rules require a bounding box.
func TestDetectBoundlessLayerNeverDetected(t *testing.T) {
	doc := newFakeDoc(100, 100)
	layer := doc.addLayer("Fill", nil, baseValue+120, true)

	result, err := Signatures(doc)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if len(result.Detected) != 0 {
		t.Errorf("Boundless layer must not be detected, got %v", result.Detected)
	}
	if !layer.Visible {
		t.Error("Boundless layer must be restored")
	}
	// Reference render plus one probe render.
	if doc.renders != 2 {
		t.Errorf("Expected 2 renders, got %d", doc.renders)
	}
}

func TestDetectAlreadyHiddenUntouched(t *testing.T) {
	doc := newFakeDoc(100, 100)
	hidden := doc.addLayer("Old sig", rect(0, 0, 25, 20), baseValue+50, false)
	doc.addLayer("New sig", rect(50, 50, 75, 70), baseValue+50, true)

	result, err := Signatures(doc)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if !intsEqual(result.AlreadyHidden, []int{0}) {
		t.Errorf("AlreadyHidden = %v, want [0]", result.AlreadyHidden)
	}
	if !intsEqual(result.Detected, []int{1}) {
		t.Errorf("Detected = %v, want [1]", result.Detected)
	}
	if hidden.Visible {
		t.Error("Pre-hidden layer must stay hidden")
	}

	// Disjointness of the two sets.
	for _, d := range result.Detected {
		for _, h := range result.AlreadyHidden {
			if d == h {
				t.Errorf("Index %d in both Detected and AlreadyHidden", d)
			}
		}
	}
}

func TestDetectRenderFailureRestoresLayer(t *testing.T) {
	doc := newFakeDoc(100, 100)
	broken := doc.addLayer("Broken", rect(0, 0, 25, 20), baseValue+50, true)
	good := doc.addLayer("Sig", rect(50, 50, 75, 70), baseValue+50, true)
	doc.failWhenHidden = 0

	result, err := Signatures(doc)
	if err != nil {
		t.Fatalf("Detect must not fail for a per-layer render error: %v", err)
	}

	if !intsEqual(result.Detected, []int{1}) {
		t.Errorf("Detected = %v, want [1]", result.Detected)
	}
	if !broken.Visible {
		t.Error("Layer must be restored after a render failure")
	}
	if good.Visible {
		t.Error("Detected layer must end hidden")
	}
}

func TestDetectBoundsOutsideCanvasRestored(t *testing.T) {
	doc := newFakeDoc(100, 100)
	// Bounds entirely off-canvas: measurement is impossible, so the layer
	// is treated as the error case and restored.
	layer := doc.addLayer("Offstage", rect(200, 200, 210, 210), baseValue+50, true)

	result, err := Signatures(doc)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(result.Detected) != 0 {
		t.Errorf("Expected no detection, got %v", result.Detected)
	}
	if !layer.Visible {
		t.Error("Layer must be restored")
	}
}

// Mirrors the end-to-end scenario from the design discussion: background
// skipped at the area gate, content caught by the medium rule, signature
// caught by the small rule.
func TestDetectThreeLayerDocument(t *testing.T) {
	doc := newFakeDoc(100, 100)
	background := doc.addLayer("Background", rect(0, 0, 100, 100), baseValue+30, true)
	// Deltas are relative to the background underneath: 85 for the
	// content layer (score ~11.1, inside the medium band) and 20 for the
	// signature layer (score ~0.6, above the small threshold).
	content := doc.addLayer("Content", rect(0, 0, 80, 50), baseValue+115, true) // 40% of canvas
	signature := doc.addLayer("Signature", rect(60, 80, 100, 100), baseValue+50, true) // 8% of canvas

	result, err := Signatures(doc)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if !intsEqual(result.Detected, []int{1, 2}) {
		t.Errorf("Detected = %v, want [1 2]", result.Detected)
	}
	if !background.Visible {
		t.Error("Background must be untouched")
	}
	if content.Visible || signature.Visible {
		t.Error("Detected layers must end hidden")
	}
	if result.NotHideable {
		t.Error("NotHideable must always be false")
	}
}

func TestConfigure(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"zero max area", Config{SmallAreaPercent: 15, MediumMinScore: 5, MediumMaxScore: 25}, true},
		{"inverted areas", Config{MaxAreaPercent: 10, SmallAreaPercent: 15, MediumMinScore: 5, MediumMaxScore: 25}, true},
		{"empty score band", Config{MaxAreaPercent: 50, SmallAreaPercent: 15, MediumMinScore: 25, MediumMaxScore: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDetector().Configure(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("Configure() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDetectRestorationIdempotence(t *testing.T) {
	doc := newFakeDoc(100, 100)
	doc.addLayer("Big", rect(0, 0, 100, 70), 255, true)
	doc.addLayer("Quiet", rect(0, 80, 25, 100), baseValue, true) // score 0
	doc.addLayer("Hidden", rect(50, 0, 60, 10), 255, false)
	doc.addLayer("Loud", nil, 255, true)

	before := make([]bool, len(doc.layers))
	for i, l := range doc.layers {
		before[i] = l.Visible
	}

	result, err := Signatures(doc)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(result.Detected) != 0 {
		t.Fatalf("Expected no detections, got %v", result.Detected)
	}

	for i, l := range doc.layers {
		if l.Visible != before[i] {
			t.Errorf("Layer %d visibility changed from %v to %v", i, before[i], l.Visible)
		}
	}
}
