// Package palette loads named colour palettes from JSON and HCL files and
// resolves them for quantization.
//
// A palette is nothing more than an ordered list of hex colour strings. The
// order matters: `--colors n` keeps the first n entries, and ties during
// nearest-colour matching go to the earlier entry.
package palette

import (
	"fmt"
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	// Auto disables quantization; it is also what an empty name means.
	Auto = "auto"
	// Adaptive asks for a palette extracted from the image being processed.
	Adaptive = "adaptive"

	// MaxColors is the most colours an indexed image can hold.
	MaxColors = 256
)

// Palette is a named, ordered list of hex colours.
type Palette struct {
	Name   string
	Colors []string
	// Source is the file the palette was read from, empty for built-ins.
	Source string
}

// Truncate returns a copy limited to the first max colours. A max of zero or
// less, or one not smaller than the palette, returns the palette unchanged.
func (p *Palette) Truncate(max int) *Palette {
	if max <= 0 || max >= len(p.Colors) {
		return p
	}
	colors := make([]string, max)
	copy(colors, p.Colors[:max])
	return &Palette{Name: p.Name, Colors: colors, Source: p.Source}
}

// RGBA converts the palette into opaque colours usable by image.Paletted.
func (p *Palette) RGBA() (color.Palette, error) {
	out := make(color.Palette, 0, len(p.Colors))
	for _, h := range p.Colors {
		c, err := ParseHex(h)
		if err != nil {
			return nil, fmt.Errorf("palette %q: %w", p.Name, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// ParseHex parses "#rrggbb", "rrggbb", "#rgb" or "rgb".
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimSpace(s)
	if !strings.HasPrefix(h, "#") {
		h = "#" + h
	}
	if len(h) != 7 && len(h) != 4 {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}
	c, err := colorful.Hex(h)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// ToHex formats a colour as "#RRGGBB".
func ToHex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02X%02X%02X", uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// validate makes sure every colour parses; a palette with a bad entry is
// rejected as a whole.
func (p *Palette) validate() error {
	if len(p.Colors) == 0 {
		return fmt.Errorf("palette %q has no colors", p.Name)
	}
	if len(p.Colors) > MaxColors {
		return fmt.Errorf("palette %q has %d colors, at most %d are supported", p.Name, len(p.Colors), MaxColors)
	}
	_, err := p.RGBA()
	return err
}
