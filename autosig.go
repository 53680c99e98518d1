// Package autosig batch-applies a signature or watermark image onto a
// directory of source images, with optional aspect-ratio cropping, resizing,
// format conversion, and automatic suppression of previously-applied
// signature layers in PSD sources.
//
// Basic usage:
//
//	summary, err := autosig.New("signature.png").Run("./artwork")
//	if err != nil {
//	    // handle error
//	}
//	fmt.Printf("processed %d files\n", summary.Processed)
//
// With options:
//
//	summary, err := autosig.New("signature.png").
//	    OffsetPercent(5).
//	    Format("jpg").
//	    Quality(90).
//	    HideSignatureLayers().
//	    Force().
//	    Run("./artwork")
//
// For lower-level access, the detect, psd, and raster packages are also
// available.
package autosig

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/jmorrow/autosig/format"
)

// New creates a Processor that will composite the given signature file onto
// every image it processes. The signature may be any supported raster format
// or a PSD (which is flattened on load).
//
// Example:
//
//	summary, err := autosig.New("signature.png").Run("./artwork")
func New(signaturePath string) *Processor {
	return &Processor{
		signaturePath: signaturePath,
		options:       defaultOptions(),
	}
}

// Processor applies a signature to a directory of images. Configure it with
// the fluent methods, then call Run. A Processor is not safe for concurrent
// use.
type Processor struct {
	signaturePath string
	options       options
}

// OffsetPixels sets the signature offset from the right and bottom edges in
// pixels. The default is 20.
func (p *Processor) OffsetPixels(px int) *Processor {
	p.options.offsetPixels = px
	p.options.offsetPercent = nil
	return p
}

// OffsetPercent sets the signature offset as a percentage (0-50) of each
// image dimension, overriding OffsetPixels.
func (p *Processor) OffsetPercent(pct float64) *Processor {
	p.options.offsetPercent = &pct
	return p
}

// Suffix sets the suffix appended to the output file stem. The default is
// "_with_sig"; an empty suffix keeps the original stem.
func (p *Processor) Suffix(suffix string) *Processor {
	p.options.suffix = suffix
	return p
}

// Format sets the output format by name ("png", "jpg", "tiff", ...).
// Unknown names are rejected by Run.
func (p *Processor) Format(name string) *Processor {
	p.options.outputFormat = format.ParseOutput(name)
	return p
}

// Quality sets the JPEG quality (1-100). The default is 85.
func (p *Processor) Quality(q int) *Processor {
	p.options.quality = q
	return p
}

// MaxDimension shrinks images whose width or height exceeds the given limit
// before signing, preserving aspect ratio. Zero disables resizing.
func (p *Processor) MaxDimension(px int) *Processor {
	p.options.maxDimension = px
	return p
}

// AspectRatio center-crops images to the given width/height ratio before
// signing. Zero disables cropping.
func (p *Processor) AspectRatio(ratio float64) *Processor {
	p.options.aspectRatio = ratio
	return p
}

// HideSignatureLayers enables automatic detection and suppression of
// existing signature layers in PSD sources. Non-PSD sources are unaffected.
func (p *Processor) HideSignatureLayers() *Processor {
	p.options.hideSignatureLayers = true
	return p
}

// HideLayers hides the named layers in PSD sources before compositing.
// Matching is case-insensitive and Unicode-normalized.
func (p *Processor) HideLayers(names ...string) *Processor {
	p.options.hideLayers = append(p.options.hideLayers, names...)
	return p
}

// Force overwrites existing output files without asking.
func (p *Processor) Force() *Processor {
	p.options.force = true
	return p
}

// SkipExisting silently skips files whose output already exists.
func (p *Processor) SkipExisting() *Processor {
	p.options.skipExisting = true
	return p
}

// OnConflict installs a callback consulted when an output file already
// exists and neither Force nor SkipExisting is set.
func (p *Processor) OnConflict(fn ConflictFunc) *Processor {
	p.options.onConflict = fn
	return p
}

// WithLogger sets the logger used for per-file reporting. A default logger
// is created when none is set.
func (p *Processor) WithLogger(logger *logrus.Logger) *Processor {
	p.options.logger = logger
	return p
}

// WithProgress sets a writer that receives one progress line per file.
func (p *Processor) WithProgress(w io.Writer) *Processor {
	p.options.progress = w
	return p
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	summary := autosig.Must(autosig.New("sig.png").Run("./artwork"))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
