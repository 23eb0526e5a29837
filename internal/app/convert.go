package app

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"github.com/vk/pixel/internal/ctxlog"
	"github.com/vk/pixel/internal/fsutil"
	"github.com/vk/pixel/internal/imageio"
	"github.com/vk/pixel/internal/notify"
	"github.com/vk/pixel/internal/palette"
	"github.com/vk/pixel/internal/pixelate"
)

// defaultAdaptiveColors is the adaptive palette size when --colors is unset.
const defaultAdaptiveColors = 16

// BatchResult summarizes a batch run.
type BatchResult struct {
	Processed int
	Skipped   int
}

// plan is a fully resolved set of options, shared by every file of a run.
type plan struct {
	palette   *palette.Palette
	adaptive  bool
	colors    int
	pixelSize int
	dither    bool
	format    string
}

// resolve merges opts with the settings-file defaults and looks up the
// palette. An unknown palette is an error here, before any file is touched.
func (a *App) resolve(opts Options) (*plan, error) {
	merged := opts
	if !opts.given(OptPalette, opts.Palette != "") {
		merged.Palette = a.defaults.Palette
	}
	if !opts.given(OptColors, opts.Colors != 0) {
		merged.Colors = a.defaults.Colors
	}
	if !opts.given(OptPixelSize, opts.PixelSize != 0) {
		merged.PixelSize = a.defaults.PixelSize
	}
	if !opts.given(OptFormat, opts.Format != "") {
		merged.Format = a.defaults.Format
	}
	if !opts.given(OptDither, opts.Dither) {
		merged.Dither = a.defaults.Dither
	}

	if merged.Colors < 0 {
		return nil, fmt.Errorf("colors must not be negative, got %d", merged.Colors)
	}
	if merged.PixelSize < 0 {
		return nil, fmt.Errorf("px must not be negative, got %d", merged.PixelSize)
	}
	if merged.PixelSize == 0 {
		merged.PixelSize = 1
	}
	if merged.Format != "" && !imageio.SupportsOutput(merged.Format) {
		return nil, fmt.Errorf("%w: %q", imageio.ErrUnsupportedFormat, merged.Format)
	}

	p := &plan{
		colors:    merged.Colors,
		pixelSize: merged.PixelSize,
		dither:    merged.Dither,
		format:    merged.Format,
	}
	if merged.Palette == palette.Adaptive {
		p.adaptive = true
		if p.colors == 0 {
			p.colors = defaultAdaptiveColors
		}
		if p.colors > pixelate.MaxColors {
			return nil, fmt.Errorf("adaptive palette supports at most %d colors, got %d", pixelate.MaxColors, p.colors)
		}
		return p, nil
	}

	pal, err := a.palettes.Resolve(merged.Palette, merged.Colors)
	if err != nil {
		return nil, err
	}
	p.palette = pal
	return p, nil
}

// outputPath applies the --format override to path.
func (p *plan) outputPath(path string) string {
	if p.format == "" {
		return path
	}
	return imageio.ReplaceExt(path, p.format)
}

// Run converts a single image and writes it to output.
func (a *App) Run(ctx context.Context, input, output string, opts Options) error {
	ctx = a.withLogger(ctx)

	if _, err := os.Stat(input); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input not found: %s", input)
		}
		return err
	}
	p, err := a.resolve(opts)
	if err != nil {
		return err
	}

	output = p.outputPath(output)
	if err := a.convert(ctx, input, output, p); err != nil {
		return err
	}
	fmt.Fprintf(a.outW, "Wrote %s\n", output)
	return nil
}

// Batch converts every regular file directly inside inDir into outDir,
// keeping file names. Files that fail are reported and skipped; the batch
// itself only fails on setup errors or cancellation.
func (a *App) Batch(ctx context.Context, inDir, outDir string, opts Options) (BatchResult, error) {
	ctx = a.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)
	var res BatchResult

	if !fsutil.IsDir(inDir) {
		return res, fmt.Errorf("input dir not found: %s", inDir)
	}
	p, err := a.resolve(opts)
	if err != nil {
		return res, err
	}

	files, err := fsutil.ListFiles(inDir)
	if err != nil {
		return res, fmt.Errorf("cannot read input directory: %w", err)
	}
	logger.Info("Batch started.", "input_dir", inDir, "output_dir", outDir, "files", len(files))

	notifier := a.openNotifier(ctx)
	defer notifier.Close()

	for _, in := range files {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("batch interrupted: %w", err)
		}

		name := filepath.Base(in)
		out := p.outputPath(filepath.Join(outDir, name))
		start := time.Now()

		if err := a.convert(ctx, in, out, p); err != nil {
			fmt.Fprintf(a.outW, "Skip %s: %v\n", name, err)
			logger.Debug("File skipped.", "file", name, "error", err)
			notifier.Notify(ctx, notify.EventFile, notify.FileEvent{Name: name, Status: "skipped", Error: err.Error()})
			res.Skipped++
			continue
		}

		fmt.Fprintf(a.outW, "Wrote %s\n", out)
		logger.Debug("File done.", "file", name, "duration", time.Since(start))
		notifier.Notify(ctx, notify.EventFile, notify.FileEvent{Name: name, Status: "processed", Output: out})
		res.Processed++
	}

	fmt.Fprintf(a.outW, "Batch complete: %d processed, %d skipped\n", res.Processed, res.Skipped)
	notifier.Notify(ctx, notify.EventComplete, notify.CompleteEvent{Processed: res.Processed, Skipped: res.Skipped})
	return res, nil
}

// openNotifier dials the configured endpoint. Failure only costs the
// progress events.
func (a *App) openNotifier(ctx context.Context) notify.Notifier {
	if a.notifyURL == "" || a.dial == nil {
		return notify.Nop{}
	}
	n, err := a.dial(ctx, a.notifyURL)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Notifier unavailable, continuing without progress events.", "url", a.notifyURL, "error", err)
		return notify.Nop{}
	}
	return n
}

// convert runs the decode, snap, quantize, encode pipeline for one file.
func (a *App) convert(ctx context.Context, input, output string, p *plan) error {
	logger := ctxlog.FromContext(ctxlog.With(ctx, "input", input))

	img, format, err := imageio.Read(input)
	if err != nil {
		return err
	}
	logger.Debug("Image decoded.", "format", format, "bounds", img.Bounds().String())

	var result image.Image = pixelate.SnapToGrid(pixelate.ToNRGBA(img), p.pixelSize)

	var pal color.Palette
	switch {
	case p.adaptive:
		pal = pixelate.Adaptive(result, p.colors)
	case p.palette != nil:
		pal, err = p.palette.RGBA()
		if err != nil {
			return err
		}
	}
	if len(pal) > 0 {
		q, err := pixelate.Quantize(result, pal, p.dither)
		if err != nil {
			return err
		}
		result = q
		logger.Debug("Image quantized.", "colors", len(pal), "dither", p.dither)
	}

	if err := imageio.Write(output, result); err != nil {
		return fmt.Errorf("cannot write %s: %w", output, err)
	}
	return nil
}
