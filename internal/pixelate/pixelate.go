// Package pixelate implements the two image transforms behind the tool:
// snapping an image to a coarse grid and remapping its colours onto a
// palette.
package pixelate

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// MaxColors is the largest palette an *image.Paletted can index.
const MaxColors = 256

var (
	// ErrEmptyPalette is returned when quantizing against a palette without colours.
	ErrEmptyPalette = errors.New("palette has no colors")
	// ErrTooManyColors is returned for palettes larger than MaxColors.
	ErrTooManyColors = errors.New("palette has more than 256 colors")
)

// ToNRGBA copies img into a zero-origin *image.NRGBA. NRGBA sources are
// copied row by row so that colour hidden under zero alpha survives.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if src, ok := img.(*image.NRGBA); ok {
		rowLen := b.Dx() * 4
		for y := 0; y < b.Dy(); y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+rowLen], src.Pix[off:off+rowLen])
		}
		return dst
	}

	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// SnapToGrid makes every px-by-px block of the output a single colour by
// shrinking the image with nearest-neighbour sampling and scaling it back
// up by the same integer factor. Dimensions that are not a multiple of px
// lose their remainder. A px of 1 or less returns img as is.
//
// Pixels are copied as stored NRGBA values, so colour under zero or partial
// alpha is kept exactly.
func SnapToGrid(img image.Image, px int) image.Image {
	if px <= 1 {
		return img
	}

	src, ok := img.(*image.NRGBA)
	if !ok || src.Rect.Min != (image.Point{}) {
		src = ToNRGBA(img)
	}
	w, h := src.Rect.Dx(), src.Rect.Dy()
	w2 := max(1, w/px)
	h2 := max(1, h/px)

	out := image.NewNRGBA(image.Rect(0, 0, w2*px, h2*px))
	for cy := 0; cy < h2; cy++ {
		// Same centre sampling as draw.NearestNeighbor.
		sy := (2*cy + 1) * h / (2 * h2)
		for cx := 0; cx < w2; cx++ {
			sx := (2*cx + 1) * w / (2 * w2)
			off := src.PixOffset(sx, sy)
			cell := src.Pix[off : off+4 : off+4]
			for y := cy * px; y < (cy+1)*px; y++ {
				row := out.PixOffset(cx*px, y)
				for x := 0; x < px; x++ {
					copy(out.Pix[row+x*4:row+x*4+4], cell)
				}
			}
		}
	}
	return out
}

// Quantize maps every pixel of img to the nearest colour of pal. Alpha is
// discarded first, so the result is fully opaque. With dither set the
// rounding error is diffused Floyd-Steinberg style instead of dropped.
func Quantize(img image.Image, pal color.Palette, dither bool) (*image.Paletted, error) {
	if len(pal) == 0 {
		return nil, ErrEmptyPalette
	}
	if len(pal) > MaxColors {
		return nil, fmt.Errorf("%w: got %d", ErrTooManyColors, len(pal))
	}

	src := opaque(img)
	r := src.Bounds()
	dst := image.NewPaletted(r, pal)

	if dither {
		draw.FloydSteinberg.Draw(dst, r, src, r.Min)
	} else {
		draw.Draw(dst, r, src, r.Min, draw.Src)
	}
	return dst, nil
}

// opaque returns a copy of img whose alpha channel is forced to 0xff while
// the stored colour channels are kept as they are.
func opaque(img image.Image) *image.NRGBA {
	dst := ToNRGBA(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}
