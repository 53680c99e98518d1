package autosig

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"

	"github.com/jmorrow/autosig/detect"
	"github.com/jmorrow/autosig/format"
	"github.com/jmorrow/autosig/internal/progress"
	"github.com/jmorrow/autosig/model"
	"github.com/jmorrow/autosig/raster"
)

// Status describes the outcome for a single input file.
type Status int

const (
	// StatusProcessed means the output file was written.
	StatusProcessed Status = iota
	// StatusSkipped means the file was intentionally not processed
	// (existing output, signature too large, user declined overwrite).
	StatusSkipped
	// StatusFailed means processing was attempted but failed.
	StatusFailed
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusProcessed:
		return "processed"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FileResult records the outcome for one input file.
type FileResult struct {
	Input  string
	Output string
	Status Status

	// HiddenLayers names the PSD layers suppressed before compositing,
	// whether detected automatically or named explicitly.
	HiddenLayers []string

	// Reason explains a skip; Err explains a failure.
	Reason string
	Err    error
}

// Summary aggregates the results of a processing run.
type Summary struct {
	Processed int
	Skipped   int
	Failed    int
	Results   []FileResult
}

// Run processes every supported image file in dir, compositing the
// configured signature onto each and writing the result next to the input
// under the derived output name.
//
// Run fails up front for an unusable configuration (missing directory,
// unloadable signature, out-of-range values). Per-file failures never abort
// the batch; they are logged and reported in the Summary.
func (p *Processor) Run(dir string) (*Summary, error) {
	opts := p.options.clone()
	log := opts.logger
	if log == nil {
		log = logrus.New()
	}

	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("directory %q does not exist", dir)
	}

	sig, err := raster.Load(p.signaturePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load signature: %w", err)
	}
	log.WithFields(logrus.Fields{
		"signature": p.signaturePath,
		"size":      fmt.Sprintf("%dx%d", sig.Bounds().Dx(), sig.Bounds().Dy()),
	}).Info("Loaded signature")

	files, err := scanDir(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		log.WithField("dir", dir).Warn("No image files found")
		return &Summary{}, nil
	}
	log.WithField("count", len(files)).Info("Found image files to process")

	var tracker *progress.Tracker
	if opts.progress != nil {
		tracker = progress.New(opts.progress, len(files))
	}

	summary := &Summary{}
	for _, file := range files {
		if tracker != nil {
			tracker.Step(filepath.Base(file))
		}

		result := p.processFile(file, sig, opts, log)
		summary.Results = append(summary.Results, result)
		switch result.Status {
		case StatusProcessed:
			summary.Processed++
		case StatusSkipped:
			summary.Skipped++
			log.WithField("file", filepath.Base(file)).Warn(result.Reason)
		case StatusFailed:
			summary.Failed++
			log.WithField("file", filepath.Base(file)).WithError(result.Err).Error("Processing failed")
		}
	}

	if tracker != nil {
		tracker.Finish()
	}
	log.WithFields(logrus.Fields{
		"processed": summary.Processed,
		"skipped":   summary.Skipped,
		"failed":    summary.Failed,
	}).Info("Processing complete")

	return summary, nil
}

func validateOptions(opts options) error {
	if opts.offsetPercent != nil && (*opts.offsetPercent < 0 || *opts.offsetPercent > 50) {
		return fmt.Errorf("offset percentage %.1f out of range [0, 50]", *opts.offsetPercent)
	}
	if opts.quality < 1 || opts.quality > 100 {
		return fmt.Errorf("quality %d out of range [1, 100]", opts.quality)
	}
	if opts.maxDimension < 0 {
		return fmt.Errorf("max dimension must not be negative")
	}
	if opts.aspectRatio < 0 {
		return fmt.Errorf("aspect ratio must not be negative")
	}
	switch opts.outputFormat {
	case format.PNG, format.JPEG, format.GIF, format.TIFF, format.BMP:
		return nil
	default:
		return fmt.Errorf("unsupported output format")
	}
}

// scanDir lists the supported image files directly inside dir, sorted by
// name. Files already carrying an output of this run are not filtered;
// output naming keeps reruns from clobbering inputs unless the suffix is
// empty and the format matches.
func scanDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %q: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if format.Detect(entry.Name()) != format.Unknown {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// OutputPath derives the output filename for an input path given a suffix
// and output format: the input stem plus suffix plus the format extension.
func OutputPath(input, suffix string, f format.Format) string {
	stem := strings.TrimSuffix(input, filepath.Ext(input))
	return stem + suffix + f.Extension()
}

func (p *Processor) processFile(path string, sig image.Image, opts options, log *logrus.Logger) FileResult {
	result := FileResult{Input: path, Output: OutputPath(path, opts.suffix, opts.outputFormat)}

	proceed, reason, err := resolveConflict(result.Output, opts)
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		return result
	}
	if !proceed {
		result.Status = StatusSkipped
		result.Reason = reason
		return result
	}

	img, hidden, err := p.loadSource(path, opts, log)
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		return result
	}
	result.HiddenLayers = hidden

	img = raster.CropToAspect(img, opts.aspectRatio)
	img = raster.ResizeToFit(img, opts.maxDimension)

	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	offsetX, offsetY := opts.offsetPixels, opts.offsetPixels
	if opts.offsetPercent != nil {
		offsetX = int(float64(w) * *opts.offsetPercent / 100)
		offsetY = int(float64(h) * *opts.offsetPercent / 100)
	}

	sigX := w - sig.Bounds().Dx() - offsetX
	sigY := h - sig.Bounds().Dy() - offsetY
	if sigX < 0 || sigY < 0 {
		result.Status = StatusSkipped
		result.Reason = "signature too large for image"
		return result
	}

	out := raster.Overlay(img, sig, image.Pt(sigX, sigY))
	if err := raster.Save(out, result.Output, opts.outputFormat, opts.quality); err != nil {
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	result.Status = StatusProcessed
	return result
}

// resolveConflict decides whether an existing output file may be written
// over: Force always proceeds, SkipExisting always skips, a configured
// callback is asked, and the default is to skip with a warning.
func resolveConflict(output string, opts options) (proceed bool, reason string, err error) {
	if _, statErr := os.Stat(output); os.IsNotExist(statErr) {
		return true, "", nil
	}
	if opts.force {
		return true, "", nil
	}
	if opts.skipExisting {
		return false, "output already exists", nil
	}
	if opts.onConflict != nil {
		overwrite, err := opts.onConflict(output)
		if err != nil {
			return false, "", err
		}
		if !overwrite {
			return false, "overwrite declined", nil
		}
		return true, "", nil
	}
	return false, "output already exists (use Force to overwrite)", nil
}

// loadSource loads an input file for signing. PSD sources go through the
// layered-document path when layer suppression is requested; everything
// else is decoded flat.
func (p *Processor) loadSource(path string, opts options, log *logrus.Logger) (image.Image, []string, error) {
	wantLayers := opts.hideSignatureLayers || len(opts.hideLayers) > 0
	if !wantLayers || !format.Detect(path).Layered() {
		img, err := raster.Load(path)
		return img, nil, err
	}

	doc, err := raster.LoadDocument(path)
	if err != nil {
		return nil, nil, err
	}

	var hidden []string
	for _, name := range opts.hideLayers {
		hidden = append(hidden, hideNamedLayers(doc, name)...)
	}

	if opts.hideSignatureLayers {
		detection, err := detect.Signatures(doc)
		if err != nil {
			return nil, nil, fmt.Errorf("signature layer detection: %w", err)
		}
		layers := doc.Layers()
		for _, idx := range detection.Detected {
			log.WithFields(logrus.Fields{
				"file":  filepath.Base(path),
				"layer": layers[idx].Name,
				"index": idx,
			}).Info("Hiding detected signature layer")
			hidden = append(hidden, layers[idx].Name)
		}
		if len(detection.Detected) == 0 {
			log.WithField("file", filepath.Base(path)).Debug("No signature layer detected")
		}
	}

	img, err := doc.Composite()
	if err != nil {
		return nil, nil, err
	}
	return img, hidden, nil
}

// hideNamedLayers hides every layer whose name matches, returning the names
// of the layers actually hidden. Matching is case-insensitive on NFC
// normalized forms, so names survive the round trip through design tools
// that store decomposed Unicode.
func hideNamedLayers(doc model.Document, name string) []string {
	target := norm.NFC.String(name)
	var hidden []string
	for _, layer := range doc.Layers() {
		if strings.EqualFold(norm.NFC.String(layer.Name), target) && layer.Visible {
			layer.Visible = false
			hidden = append(hidden, layer.Name)
		}
	}
	return hidden
}
