package codec

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
)

const (
	// TileSize is the width and height of a land tile.
	TileSize = 44
	// TilePixels is the number of pixels stored in a tile record.
	TilePixels = 1022
	// TileRecordSize is the byte size of a tile record: a 4-byte header
	// followed by TilePixels 16-bit pixels.
	TileRecordSize = 4 + TilePixels*2
	// TileDrawnPixels is the number of stored pixels that fall inside the
	// diamond. The remaining stored pixels are carried but never drawn.
	TileDrawnPixels = 1012
)

// TileRowLength returns the number of drawn pixels in row y of the diamond:
// 2, 4, ..., 44 for the top half and 44, ..., 4, 2 for the bottom half.
func TileRowLength(y int) int {
	if y < TileSize/2 {
		return (y + 1) * 2
	}
	return (TileSize - y) * 2
}

// TileRowIndent returns the first drawn column of row y.
func TileRowIndent(y int) int {
	return TileSize/2 - TileRowLength(y)/2
}

// Tile is a diamond shaped land tile.
type Tile struct {
	Header uint32
	Pixels [TilePixels]Color16
}

// DecodeTile decodes a tile record. The record must be exactly
// TileRecordSize bytes.
func DecodeTile(data []byte) (*Tile, error) {
	if len(data) != TileRecordSize {
		return nil, fmt.Errorf("%w: got %d bytes, expected %d", ErrInvalidTileSize, len(data), TileRecordSize)
	}

	t := &Tile{Header: binary.LittleEndian.Uint32(data)}
	for i := range t.Pixels {
		t.Pixels[i] = Color16(binary.LittleEndian.Uint16(data[4+i*2:]))
	}
	return t, nil
}

// Encode serializes the tile back to its record layout.
func (t *Tile) Encode() []byte {
	out := make([]byte, 0, TileRecordSize)
	out = binary.LittleEndian.AppendUint32(out, t.Header)
	return appendColors(out, t.Pixels[:])
}

// Image draws the tile on a TileSize x TileSize canvas. Pixels outside the
// diamond stay fully transparent.
func (t *Tile) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, TileSize, TileSize))

	idx := 0
	for y := 0; y < TileSize; y++ {
		indent := TileRowIndent(y)
		for i := 0; i < TileRowLength(y); i++ {
			img.SetNRGBA(indent+i, y, t.Pixels[idx].NRGBA())
			idx++
		}
	}
	return img
}

// NewTileFromImage collects the diamond pixels of img, starting at its
// bounds origin, in the order Image draws them. Fully transparent pixels
// become 0. The stored pixels past the diamond are left 0.
func NewTileFromImage(img image.Image, header uint32) *Tile {
	t := &Tile{Header: header}
	origin := img.Bounds().Min

	idx := 0
	for y := 0; y < TileSize; y++ {
		indent := TileRowIndent(y)
		for i := 0; i < TileRowLength(y); i++ {
			t.Pixels[idx] = pixelFromColor(img.At(origin.X+indent+i, origin.Y+y))
			idx++
		}
	}
	return t
}

func pixelFromColor(c color.Color) Color16 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0 {
		return 0
	}
	return Color16FromRGB(n.R, n.G, n.B)
}
