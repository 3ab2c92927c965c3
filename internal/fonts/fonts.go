// Package fonts reads the bitmap fonts in fonts.mul.
//
// The file is a sequence of fonts, each |header:u8|character x 224|, with
// character = |width:u8|height:u8|unknown:u8|pixel:u16 x width*height|.
// A zero header or the end of the file ends the list.
package fonts

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/rcarmo/uomul/internal/codec"
)

// Characters is the number of glyphs in a font.
const Characters = 224

// Character is a single glyph.
type Character struct {
	Width   uint8
	Height  uint8
	Unknown uint8
	Pixels  []codec.Color16
}

// Image draws the glyph. Black pixels are transparent.
func (c *Character) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, int(c.Width), int(c.Height)))
	for i, p := range c.Pixels {
		if p.IsBlack() {
			continue
		}
		img.SetNRGBA(i%int(c.Width), i/int(c.Width), p.NRGBA())
	}
	return img
}

// Font is a header byte and its glyphs.
type Font struct {
	Header     uint8
	Characters [Characters]Character
}

// Encode returns the encoded font.
func (f *Font) Encode() []byte {
	out := []byte{f.Header}
	for _, c := range f.Characters {
		out = append(out, c.Width, c.Height, c.Unknown)
		for _, p := range c.Pixels {
			out = binary.LittleEndian.AppendUint16(out, uint16(p))
		}
	}
	return out
}

// Read decodes every font in r.
func Read(r io.Reader) ([]*Font, error) {
	br := bufio.NewReader(r)

	var out []*Font
	for {
		header, err := br.ReadByte()
		if errors.Is(err, io.EOF) || (err == nil && header == 0) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		f := &Font{Header: header}
		for i := range f.Characters {
			if err := readCharacter(br, &f.Characters[i]); err != nil {
				return nil, fmt.Errorf("font %d character %d: %w", len(out), i, err)
			}
		}
		out = append(out, f)
	}
}

func readCharacter(r io.Reader, c *Character) error {
	var hdr [3]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return unexpected(err)
	}
	c.Width, c.Height, c.Unknown = hdr[0], hdr[1], hdr[2]

	buf := make([]byte, int(c.Width)*int(c.Height)*2)
	if _, err := io.ReadFull(r, buf); err != nil {
		return unexpected(err)
	}
	c.Pixels = make([]codec.Color16, len(buf)/2)
	for i := range c.Pixels {
		c.Pixels[i] = codec.Color16(binary.LittleEndian.Uint16(buf[i*2:]))
	}
	return nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// Open reads every font in the file at path.
func Open(path string) ([]*Font, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
