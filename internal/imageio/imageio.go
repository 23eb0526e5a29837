// Package imageio reads and writes image files, choosing the encoder from
// the output file extension.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned when no encoder handles an extension.
var ErrUnsupportedFormat = errors.New("unsupported output format")

type encodeFunc func(w io.Writer, img image.Image) error

var encoders = map[string]encodeFunc{
	".png":  png.Encode,
	".jpg":  encodeJPEG,
	".jpeg": encodeJPEG,
	".gif":  encodeGIF,
	".bmp":  bmp.Encode,
	".tif":  encodeTIFF,
	".tiff": encodeTIFF,
}

func encodeJPEG(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
}

// encodeGIF keeps paletted input as is; anything else is reduced by the
// encoder's default quantizer.
func encodeGIF(w io.Writer, img image.Image) error {
	return gif.Encode(w, img, nil)
}

func encodeTIFF(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}

// Read decodes the image stored at path and reports its format name.
func Read(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("cannot decode image: %w", err)
	}
	return img, format, nil
}

// Write encodes img to path using the encoder registered for its
// extension, creating parent directories as needed.
func Write(path string, img image.Image) (err error) {
	enc, ok := encoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return enc(f, img)
}

// SupportsOutput reports whether ext (with or without the dot) can be written.
func SupportsOutput(ext string) bool {
	_, ok := encoders[normalizeExt(ext)]
	return ok
}

// OutputFormats lists the writable extensions in sorted order.
func OutputFormats() []string {
	out := make([]string, 0, len(encoders))
	for ext := range encoders {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// ReplaceExt swaps the extension of name for newExt.
func ReplaceExt(name, newExt string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return base + normalizeExt(newExt)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
