// Package export turns decoded records into image files.
package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// Format is an output image format.
type Format string

const (
	FormatPNG Format = "png"
	FormatBMP Format = "bmp"
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatPNG, FormatBMP:
		return f, nil
	default:
		return "", fmt.Errorf("export: unknown format %q", s)
	}
}

// Extension returns the file extension for the format, with the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatBMP {
		return "image/bmp"
	}
	return "image/png"
}

// Encode writes img to w in format f. BMP output drops transparency.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("export: unknown format %q", f)
	}
}

// Scale enlarges img by an integer factor with nearest-neighbour sampling.
// A factor of 1 or less returns img unchanged.
func Scale(img image.Image, factor int) image.Image {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
