package main

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jmorrow/autosig"
	"github.com/jmorrow/autosig/config"
	"github.com/jmorrow/autosig/detect"
	"github.com/jmorrow/autosig/format"
	"github.com/jmorrow/autosig/model"
	"github.com/jmorrow/autosig/ocr"
	"github.com/jmorrow/autosig/raster"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		offsetPixels  int
		offsetPercent float64
		suffix        string
		outputFormat  string
		quality       int
		maxDimension  int
		aspectRatio   float64
		hideSignature bool
		hideLayers    []string
		force         bool
		skipExisting  bool
		configPath    string
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:   "autosig DIRECTORY SIGNATURE",
		Short: "Batch-apply a signature image onto a directory of images",
		Long: `Autosig composites a signature or watermark image onto every supported
image in a directory (PNG, JPEG, GIF, TIFF, WEBP, BMP, and PSD), placing it
near the bottom-right corner. PSD files can have previously applied
signature layers detected and hidden before the new signature goes on.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logrus.New()
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			p := autosig.New(args[1]).
				WithLogger(log).
				WithProgress(os.Stdout)

			applyConfig(p, cfg)

			if cmd.Flags().Changed("pixels") {
				p.OffsetPixels(offsetPixels)
			}
			if cmd.Flags().Changed("percent") {
				p.OffsetPercent(offsetPercent)
			}
			if cmd.Flags().Changed("suffix") {
				p.Suffix(suffix)
			}
			if cmd.Flags().Changed("format") {
				p.Format(outputFormat)
			}
			if cmd.Flags().Changed("quality") {
				p.Quality(quality)
			}
			if cmd.Flags().Changed("max-dimension") {
				p.MaxDimension(maxDimension)
			}
			if cmd.Flags().Changed("aspect") {
				p.AspectRatio(aspectRatio)
			}
			if hideSignature {
				p.HideSignatureLayers()
			}
			if len(hideLayers) > 0 {
				p.HideLayers(hideLayers...)
			}
			if force {
				p.Force()
			}
			if skipExisting {
				p.SkipExisting()
			}
			if !force && !skipExisting {
				p.OnConflict(promptOverwrite(cmd))
			}

			summary, err := p.Run(args[0])
			if err != nil {
				return err
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d files failed", summary.Failed, len(summary.Results))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&offsetPixels, "pixels", "p", 20, "signature offset from the right and bottom edges in pixels")
	flags.Float64Var(&offsetPercent, "percent", 0, "signature offset as a percentage (0-50) of each dimension, overrides --pixels")
	flags.StringVar(&suffix, "suffix", "_with_sig", "suffix appended to output file names")
	flags.StringVarP(&outputFormat, "format", "f", "png", "output format (png, jpg, gif, tiff, bmp)")
	flags.IntVarP(&quality, "quality", "q", 85, "JPEG quality (1-100)")
	flags.IntVar(&maxDimension, "max-dimension", 0, "shrink images so neither dimension exceeds this, 0 disables")
	flags.Float64Var(&aspectRatio, "aspect", 0, "center-crop images to this width/height ratio, 0 disables")
	flags.BoolVar(&hideSignature, "hide-signature-layer", false, "detect and hide existing signature layers in PSD files")
	flags.StringArrayVar(&hideLayers, "hide-layer", nil, "hide the named PSD layer before compositing (repeatable)")
	flags.BoolVar(&force, "force", false, "overwrite existing output files without asking")
	flags.BoolVar(&skipExisting, "skip-existing", false, "skip files whose output already exists")
	flags.StringVarP(&configPath, "config", "c", "", "config file (default: .autosig.yaml in cwd or home)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newAnalyzeCommand())

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadDefault()
}

// applyConfig seeds the processor with config-file defaults. Flags set on
// the command line are applied afterwards and win.
func applyConfig(p *autosig.Processor, cfg *config.Config) {
	if cfg.OffsetPixels != nil {
		p.OffsetPixels(*cfg.OffsetPixels)
	}
	if cfg.OffsetPercent != nil {
		p.OffsetPercent(*cfg.OffsetPercent)
	}
	if cfg.Suffix != nil {
		p.Suffix(*cfg.Suffix)
	}
	if cfg.Format != nil {
		p.Format(*cfg.Format)
	}
	if cfg.Quality != nil {
		p.Quality(*cfg.Quality)
	}
	if cfg.MaxDimension != nil {
		p.MaxDimension(*cfg.MaxDimension)
	}
	if cfg.AspectRatio != nil {
		p.AspectRatio(*cfg.AspectRatio)
	}
	if len(cfg.HideLayers) > 0 {
		p.HideLayers(cfg.HideLayers...)
	}
}

// promptOverwrite asks on stdin whether an existing output file may be
// replaced.
func promptOverwrite(cmd *cobra.Command) autosig.ConflictFunc {
	reader := bufio.NewReader(cmd.InOrStdin())
	return func(path string) (bool, error) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s exists, overwrite? [y/N] ", path)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false, nil
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	}
}

func newAnalyzeCommand() *cobra.Command {
	var readText bool

	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Report per-layer signature detection details for a PSD file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !format.Detect(args[0]).Layered() {
				return fmt.Errorf("%s is not a layered file", args[0])
			}
			doc, err := raster.LoadDocument(args[0])
			if err != nil {
				return err
			}
			return analyze(cmd, doc, readText)
		},
	}

	cmd.Flags().BoolVar(&readText, "read-text", false, "OCR the bounds of each detected layer (requires a build with -tags ocr)")

	return cmd
}

func analyze(cmd *cobra.Command, doc model.Document, readText bool) error {
	out := cmd.OutOrStdout()
	width, height := doc.Bounds()
	layers := doc.Layers()
	fmt.Fprintf(out, "Canvas: %dx%d, %d layers\n", width, height, len(layers))

	// Reference composite before anything is toggled; detected signature
	// text is read out of this one.
	reference, err := doc.Composite()
	if err != nil {
		return err
	}

	result, err := detect.Signatures(doc)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}
	// Detection leaves classified layers hidden; this is a report, so put
	// them back.
	detected := make(map[int]bool, len(result.Detected))
	for _, idx := range result.Detected {
		detected[idx] = true
		layers[idx].Visible = true
	}
	hidden := make(map[int]bool, len(result.AlreadyHidden))
	for _, idx := range result.AlreadyHidden {
		hidden[idx] = true
	}

	var reader *ocr.Reader
	if readText {
		reader, err = ocr.New()
		if err != nil {
			if errors.Is(err, ocr.ErrOCRNotEnabled) {
				fmt.Fprintln(out, "Note: text reading unavailable in this build")
			} else {
				return err
			}
		} else {
			defer reader.Close()
		}
	}

	canvas := model.NewRect(0, 0, width, height)
	for i, layer := range layers {
		fmt.Fprintf(out, "\nLayer %d: %q\n", i, layer.Name)
		switch {
		case hidden[i]:
			fmt.Fprintln(out, "  status: already hidden")
			continue
		case detected[i]:
			fmt.Fprintln(out, "  status: signature detected")
		default:
			fmt.Fprintln(out, "  status: kept")
		}

		region := canvas
		if layer.Bounds == nil {
			fmt.Fprintln(out, "  bounds: full canvas")
		} else {
			area := float64(layer.Bounds.Area()) / float64(width*height) * 100
			fmt.Fprintf(out, "  bounds: (%d,%d)-(%d,%d), %.1f%% of canvas\n",
				layer.Bounds.Left, layer.Bounds.Top, layer.Bounds.Right, layer.Bounds.Bottom, area)
			region = layer.Bounds.Intersection(canvas)
		}

		if score, err := removalScore(doc, layer, reference, region); err == nil {
			fmt.Fprintf(out, "  removal difference: %.2f\n", score)
		}

		if detected[i] && layer.Bounds != nil && reader != nil {
			text, err := reader.ReadRegion(raster.Crop(reference, region))
			if err == nil && text != "" {
				fmt.Fprintf(out, "  text: %q\n", text)
			}
		}
	}
	return nil
}

// removalScore measures how much the composite changes inside region when
// the layer is hidden. The layer's visibility is always restored.
func removalScore(doc model.Document, layer *model.Layer, reference image.Image, region model.Rect) (float64, error) {
	if region.IsEmpty() {
		return 0, fmt.Errorf("layer lies outside the canvas")
	}

	wasVisible := layer.Visible
	layer.Visible = false
	defer func() { layer.Visible = wasVisible }()

	test, err := doc.Composite()
	if err != nil {
		return 0, err
	}
	return detect.DifferenceScore(raster.Crop(reference, region), raster.Crop(test, region))
}
