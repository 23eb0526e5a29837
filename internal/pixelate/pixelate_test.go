package pixelate

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red   = color.NRGBA{255, 0, 0, 255}
	green = color.NRGBA{0, 255, 0, 255}
	blue  = color.NRGBA{0, 0, 255, 255}
	white = color.NRGBA{255, 255, 255, 255}
)

// blocks builds an image made of size-by-size squares, one per entry of grid.
func blocks(grid [][]color.NRGBA, size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, len(grid[0])*size, len(grid)*size))
	for gy, row := range grid {
		for gx, c := range row {
			for y := 0; y < size; y++ {
				for x := 0; x < size; x++ {
					img.SetNRGBA(gx*size+x, gy*size+y, c)
				}
			}
		}
	}
	return img
}

func TestSnapToGrid_NoOpForSmallPixelSize(t *testing.T) {
	t.Parallel()

	img := blocks([][]color.NRGBA{{red}}, 3)

	assert.Same(t, img, SnapToGrid(img, 1))
	assert.Same(t, img, SnapToGrid(img, 0))
	assert.Same(t, img, SnapToGrid(img, -4))
}

func TestSnapToGrid_PreservesAlignedBlocks(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	img := blocks([][]color.NRGBA{{red, green}, {blue, white}}, 4)

	// --- Act ---
	out := SnapToGrid(img, 4)

	// --- Assert ---
	require.Equal(t, image.Rect(0, 0, 8, 8), out.Bounds())
	got := ToNRGBA(out)
	assert.Equal(t, img.Pix, got.Pix)
}

func TestSnapToGrid_ProducesUniformBlocks(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A 1px checkerboard collapses to flat 2x2 cells.
	img := image.NewNRGBA(image.Rect(0, 0, 6, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			c := red
			if (x+y)%2 == 1 {
				c = blue
			}
			img.SetNRGBA(x, y, c)
		}
	}

	// --- Act ---
	out := ToNRGBA(SnapToGrid(img, 2))

	// --- Assert ---
	require.Equal(t, image.Rect(0, 0, 6, 4), out.Bounds())
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			cell := out.NRGBAAt(x-x%2, y-y%2)
			assert.Equal(t, cell, out.NRGBAAt(x, y), "pixel (%d,%d) differs from its cell", x, y)
		}
	}
}

func TestSnapToGrid_CropsRemainder(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 10, 7))

	out := SnapToGrid(img, 3)

	assert.Equal(t, image.Rect(0, 0, 9, 6), out.Bounds())
}

func TestSnapToGrid_TinyImageKeepsOneCell(t *testing.T) {
	t.Parallel()

	img := blocks([][]color.NRGBA{{green}}, 2)

	out := ToNRGBA(SnapToGrid(img, 5))

	require.Equal(t, image.Rect(0, 0, 5, 5), out.Bounds())
	assert.Equal(t, green, out.NRGBAAt(4, 4))
}

func TestQuantize_NearestColour(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	img.SetNRGBA(0, 0, color.NRGBA{250, 10, 10, 255})
	img.SetNRGBA(1, 0, color.NRGBA{20, 20, 240, 255})
	img.SetNRGBA(2, 0, color.NRGBA{10, 10, 10, 255})
	pal := color.Palette{
		color.RGBA{0, 0, 0, 255},
		color.RGBA{255, 0, 0, 255},
		color.RGBA{0, 0, 255, 255},
	}

	// --- Act ---
	out, err := Quantize(img, pal, false)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 2, 0}, out.Pix)
	assert.Equal(t, pal, out.Palette)
}

func TestQuantize_DropsAlpha(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{255, 255, 255, 0})
	pal := color.Palette{color.RGBA{0, 0, 0, 255}, color.RGBA{255, 255, 255, 255}}

	out, err := Quantize(img, pal, false)

	require.NoError(t, err)
	assert.Equal(t, uint8(1), out.ColorIndexAt(0, 0), "transparent white keeps its colour")
	_, _, _, a := out.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestQuantize_Dither(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Mid grey against black/white: plain mapping gives one flat colour,
	// dithering mixes both.
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 128, 128, 128, 255
	}
	pal := color.Palette{color.RGBA{0, 0, 0, 255}, color.RGBA{255, 255, 255, 255}}

	// --- Act ---
	flat, err := Quantize(img, pal, false)
	require.NoError(t, err)
	dithered, err := Quantize(img, pal, true)
	require.NoError(t, err)

	// --- Assert ---
	seen := func(p *image.Paletted) map[uint8]bool {
		m := map[uint8]bool{}
		for _, idx := range p.Pix {
			m[idx] = true
		}
		return m
	}
	assert.Len(t, seen(flat), 1)
	assert.Len(t, seen(dithered), 2)
}

func TestQuantize_EmptyPalette(t *testing.T) {
	t.Parallel()

	_, err := Quantize(image.NewNRGBA(image.Rect(0, 0, 1, 1)), nil, false)

	require.ErrorIs(t, err, ErrEmptyPalette)
}

func TestToNRGBA_KeepsHiddenColour(t *testing.T) {
	t.Parallel()

	src := image.NewNRGBA(image.Rect(2, 3, 4, 4))
	src.SetNRGBA(3, 3, color.NRGBA{10, 20, 30, 0})

	out := ToNRGBA(src)

	require.Equal(t, image.Rect(0, 0, 2, 1), out.Bounds())
	assert.Equal(t, color.NRGBA{10, 20, 30, 0}, out.NRGBAAt(1, 0))
}

func TestSnapToGrid_KeepsColourUnderAlpha(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 0})
			img.SetNRGBA(x+2, y, color.NRGBA{201, 77, 13, 3})
		}
	}

	// --- Act ---
	out := ToNRGBA(SnapToGrid(img, 2))

	// --- Assert ---
	assert.Equal(t, img.Pix, out.Pix)
}

func TestSnapThenQuantize_TransparentBlockKeepsColour(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 255, 255, 255, 0
	}
	pal := color.Palette{color.RGBA{0, 0, 0, 255}, color.RGBA{255, 255, 255, 255}}

	for _, px := range []int{1, 2} {
		// --- Act ---
		out, err := Quantize(SnapToGrid(img, px), pal, false)

		// --- Assert ---
		require.NoError(t, err)
		for _, idx := range out.Pix {
			assert.Equal(t, uint8(1), idx, "px=%d: transparent white maps to white", px)
		}
	}
}

func TestQuantize_TooManyColors(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	pal := make(color.Palette, 300)
	for i := range pal {
		pal[i] = color.RGBA{uint8(i), uint8(i / 3), 7, 255}
	}
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{24, 100, 7, 255})

	// --- Act ---
	_, err := Quantize(img, pal, false)
	_, errMax := Quantize(img, pal[:MaxColors], false)

	// --- Assert ---
	require.ErrorIs(t, err, ErrTooManyColors)
	require.NoError(t, errMax)
}
