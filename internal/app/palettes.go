package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/gookit/color"
	"github.com/vk/pixel/internal/ctxlog"
	"github.com/vk/pixel/internal/palette"
)

// maxStripColors caps the swatch strip printed next to each listed palette.
const maxStripColors = 16

// ListPalettes prints every loaded palette with its colour count.
func (a *App) ListPalettes(ctx context.Context) error {
	names := a.palettes.Names()
	ctxlog.FromContext(a.withLogger(ctx)).Debug("Listing palettes.", "count", len(names))
	if len(names) == 0 {
		fmt.Fprintln(a.outW, "No palettes found.")
		return nil
	}

	for _, name := range names {
		p, _ := a.palettes.Lookup(name)
		line := fmt.Sprintf("%-20s %d colors", name, len(p.Colors))
		if a.config.Color {
			line += " " + a.strip(p.Colors)
		}
		fmt.Fprintln(a.outW, line)
	}
	return nil
}

// CheckPalette prints the colours of one palette in file order.
func (a *App) CheckPalette(ctx context.Context, name string) error {
	p, ok := a.palettes.Lookup(name)
	if !ok {
		return &palette.UnknownError{Name: name}
	}

	fmt.Fprintf(a.outW, "Palette: %s\n", p.Name)
	for _, hex := range p.Colors {
		line := "  " + hex
		if a.config.Color {
			line += " " + a.swatch(hex)
		}
		fmt.Fprintln(a.outW, line)
	}
	a.logger.Debug("Palette checked.", "palette", p.Name, "source", p.Source)
	return nil
}

// swatch renders a two-cell block in the given colour.
func (a *App) swatch(hex string) string {
	c, err := palette.ParseHex(hex)
	if err != nil {
		return ""
	}
	return color.RGB(c.R, c.G, c.B, true).Sprint("  ")
}

func (a *App) strip(colors []string) string {
	var b strings.Builder
	for i, hex := range colors {
		if i == maxStripColors {
			b.WriteString("…")
			break
		}
		c, err := palette.ParseHex(hex)
		if err != nil {
			continue
		}
		b.WriteString(color.RGB(c.R, c.G, c.B, true).Sprint(" "))
	}
	return b.String()
}
