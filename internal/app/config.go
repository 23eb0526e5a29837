package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Version is reported by the version command.
const Version = "0.3.0"

// Config holds process-wide settings. Empty strings mean "not given on the
// command line" so that the settings file can fill them in.
type Config struct {
	PalettesDir string
	ConfigPath  string
	LogFormat   string
	LogLevel    string
	NotifyURL   string
	// Color enables terminal swatches in palette listings.
	Color bool
}

// Option names, as spelled on the command line.
const (
	OptPalette   = "palette"
	OptColors    = "colors"
	OptPixelSize = "px"
	OptDither    = "dither"
	OptFormat    = "format"
)

// Options are the per-image conversion options.
type Options struct {
	Palette   string
	Colors    int
	PixelSize int
	Dither    bool
	Format    string
	// Set holds the names of options given explicitly. An explicit zero
	// value still overrides the settings-file defaults.
	Set map[string]bool
}

// given reports whether the named option should override the defaults.
func (o Options) given(name string, nonZero bool) bool {
	return nonZero || o.Set[name]
}

var (
	validLogLevels  = map[string]bool{"": true, "debug": true, "info": true, "warn": true, "error": true}
	validLogFormats = map[string]bool{"": true, "text": true, "json": true}
)

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if !validLogLevels[cfg.LogLevel] {
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	if !validLogFormats[cfg.LogFormat] {
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	return &cfg, nil
}

// DefaultPalettesDir is the "palettes" directory next to the executable,
// or relative to the working directory when the executable path is unknown.
func DefaultPalettesDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "palettes"
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), "palettes")
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
