package autosig

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/jmorrow/autosig/format"
)

// ConflictFunc decides whether an existing output file may be overwritten.
// Returning false skips the file. The CLI wires an interactive prompt here.
type ConflictFunc func(path string) (overwrite bool, err error)

// options holds configuration for a processing run.
type options struct {
	// Signature placement
	offsetPixels  int
	offsetPercent *float64 // overrides offsetPixels when set, 0-50

	// Output
	suffix       string
	outputFormat format.Format
	quality      int // JPEG quality, 1-100

	// Optional geometry adjustments applied before signing
	maxDimension int
	aspectRatio  float64 // width/height; 0 disables cropping

	// PSD layer handling
	hideSignatureLayers bool
	hideLayers          []string

	// Conflict handling
	force        bool
	skipExisting bool
	onConflict   ConflictFunc

	// Reporting
	logger   *logrus.Logger
	progress io.Writer
}

// defaultOptions returns the default processing options.
func defaultOptions() options {
	return options{
		offsetPixels: 20,
		suffix:       "_with_sig",
		outputFormat: format.PNG,
		quality:      85,
	}
}

// clone creates a deep copy of options.
func (o options) clone() options {
	newOpts := o

	if o.offsetPercent != nil {
		pct := *o.offsetPercent
		newOpts.offsetPercent = &pct
	}
	if o.hideLayers != nil {
		newOpts.hideLayers = make([]string, len(o.hideLayers))
		copy(newOpts.hideLayers, o.hideLayers)
	}

	return newOpts
}
