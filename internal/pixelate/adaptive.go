package pixelate

import (
	"image"
	"image/color"
	"sort"
)

type rgb [3]uint8

// box is a bucket of pixels in the median-cut split tree.
type box []rgb

// widest returns the channel with the largest value range and that range.
func (b box) widest() (channel int, spread int) {
	lo := [3]uint8{255, 255, 255}
	var hi [3]uint8
	for _, p := range b {
		for ch := 0; ch < 3; ch++ {
			lo[ch] = min(lo[ch], p[ch])
			hi[ch] = max(hi[ch], p[ch])
		}
	}
	channel, spread = 0, -1
	for ch := 0; ch < 3; ch++ {
		if r := int(hi[ch]) - int(lo[ch]); r > spread {
			channel, spread = ch, r
		}
	}
	return channel, spread
}

// split sorts the box along its widest channel and cuts it in half.
func (b box) split() (box, box) {
	ch, _ := b.widest()
	sort.Slice(b, func(i, j int) bool { return b[i][ch] < b[j][ch] })
	mid := len(b) / 2
	return b[:mid], b[mid:]
}

// median returns the per-channel median of the box.
func (b box) median() color.RGBA {
	var out [3]uint8
	vals := make([]int, len(b))
	for ch := 0; ch < 3; ch++ {
		for i, p := range b {
			vals[i] = int(p[ch])
		}
		sort.Ints(vals)
		n := len(vals)
		if n%2 == 1 {
			out[ch] = uint8(vals[n/2])
		} else {
			out[ch] = uint8((vals[n/2-1] + vals[n/2] + 1) / 2)
		}
	}
	return color.RGBA{R: out[0], G: out[1], B: out[2], A: 0xff}
}

// Adaptive extracts a palette of at most n colours from img with median
// cut: the box with the widest channel range is split at its median until
// there are n boxes or nothing left to split. Each box contributes its
// median colour. Alpha is ignored.
func Adaptive(img image.Image, n int) color.Palette {
	if n <= 0 {
		return nil
	}

	src := ToNRGBA(img)
	pixels := make(box, 0, len(src.Pix)/4)
	for i := 0; i+3 < len(src.Pix); i += 4 {
		pixels = append(pixels, rgb{src.Pix[i], src.Pix[i+1], src.Pix[i+2]})
	}
	if len(pixels) == 0 {
		return nil
	}

	boxes := []box{pixels}
	for len(boxes) < n {
		idx, best := -1, 0
		for i, b := range boxes {
			if len(b) < 2 {
				continue
			}
			if _, spread := b.widest(); spread > best {
				idx, best = i, spread
			}
		}
		// Every remaining box is a single colour.
		if idx < 0 {
			break
		}

		left, right := boxes[idx].split()
		boxes = append(boxes[:idx], append([]box{left, right}, boxes[idx+1:]...)...)
	}

	pal := make(color.Palette, 0, len(boxes))
	for _, b := range boxes {
		pal = append(pal, b.median())
	}
	return pal
}
