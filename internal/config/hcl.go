package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/pixel/internal/ctxlog"
	"github.com/vk/pixel/internal/palette"
)

// HCLLoader is the HCL implementation of Loader.
type HCLLoader struct{}

// NewHCLLoader creates a new HCL settings loader.
func NewHCLLoader() *HCLLoader {
	return &HCLLoader{}
}

// fileRoot is the top-level layout of a settings file. Unknown attributes
// and blocks are decode errors.
type fileRoot struct {
	PalettesDir string              `hcl:"palettes_dir,optional"`
	LogLevel    string              `hcl:"log_level,optional"`
	LogFormat   string              `hcl:"log_format,optional"`
	NotifyURL   string              `hcl:"notify_url,optional"`
	Notify      *notifyBlock        `hcl:"notify,block"`
	Defaults    *defaultsBlock      `hcl:"defaults,block"`
	Palettes    []*palette.HCLBlock `hcl:"palette,block"`
}

type notifyBlock struct {
	Namespace          string `hcl:"namespace,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
	Timeout            string `hcl:"timeout,optional"`
}

type defaultsBlock struct {
	Palette   string `hcl:"palette,optional"`
	Colors    int    `hcl:"colors,optional"`
	PixelSize int    `hcl:"px,optional"`
	Dither    bool   `hcl:"dither,optional"`
	Format    string `hcl:"format,optional"`
}

// Load parses and decodes the settings file at path.
func (l *HCLLoader) Load(ctx context.Context, path string) (*File, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL settings loader started.", "path", path)

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	out := &File{
		LogLevel:  root.LogLevel,
		LogFormat: root.LogFormat,
		NotifyURL: root.NotifyURL,
	}
	if root.PalettesDir != "" {
		out.PalettesDir = root.PalettesDir
		if !filepath.IsAbs(out.PalettesDir) {
			out.PalettesDir = filepath.Join(filepath.Dir(path), out.PalettesDir)
		}
	}
	if n := root.Notify; n != nil {
		out.Notify = Notify{Namespace: n.Namespace, InsecureSkipVerify: n.InsecureSkipVerify}
		if n.Timeout != "" {
			timeout, err := time.ParseDuration(n.Timeout)
			if err != nil {
				return nil, fmt.Errorf("%s: failed to parse notify.timeout: %w", path, err)
			}
			if timeout < 0 {
				return nil, fmt.Errorf("%s: notify.timeout must not be negative", path)
			}
			out.Notify.Timeout = timeout
		}
	}
	if d := root.Defaults; d != nil {
		if d.Colors < 0 {
			return nil, fmt.Errorf("%s: defaults.colors must not be negative", path)
		}
		if d.PixelSize < 0 {
			return nil, fmt.Errorf("%s: defaults.px must not be negative", path)
		}
		out.Defaults = Defaults{
			Palette:   d.Palette,
			Colors:    d.Colors,
			PixelSize: d.PixelSize,
			Dither:    d.Dither,
			Format:    d.Format,
		}
	}
	for _, block := range root.Palettes {
		p, err := palette.FromHCLBlock(block, path)
		if err != nil {
			return nil, err
		}
		out.Palettes = append(out.Palettes, p)
	}

	logger.Debug("HCL settings loading complete.", "palettes", len(out.Palettes), "palettes_dir", out.PalettesDir)
	return out, nil
}
