package codec

import (
	"encoding/binary"
	"image/color"
)

// Color16 is a packed 16-bit pixel: 1 unused bit followed by 5 bits each of
// red, green and blue. Alpha is always opaque.
type Color16 uint16

// Color16Model converts any color to a Color16.
var Color16Model = color.ModelFunc(func(c color.Color) color.Color {
	if c16, ok := c.(Color16); ok {
		return c16
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color16FromRGB(n.R, n.G, n.B)
})

func expand5(v uint16) uint8 {
	return uint8(v * 0xFF / 0x1F)
}

// Channels returns the 8-bit red, green, blue and alpha channels.
func (c Color16) Channels() (r, g, b, a uint8) {
	return expand5((uint16(c) >> 10) & 0x1F), expand5((uint16(c) >> 5) & 0x1F), expand5(uint16(c) & 0x1F), 0xFF
}

// NRGBA returns c as an 8-bit per channel color.
func (c Color16) NRGBA() color.NRGBA {
	r, g, b, a := c.Channels()
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

// RGBA implements color.Color.
func (c Color16) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// IsBlack reports whether all color channels are zero. The unused high bit
// is ignored.
func (c Color16) IsBlack() bool {
	return c&0x7FFF == 0
}

// Color16FromRGB packs 8-bit channels, dropping the low 3 bits of each.
func Color16FromRGB(r, g, b uint8) Color16 {
	return Color16(uint16(r>>3)<<10 | uint16(g>>3)<<5 | uint16(b>>3))
}

// Color32 is a packed RGBA value with red in the most significant byte.
type Color32 uint32

// NRGBA returns c as an 8-bit per channel color.
func (c Color32) NRGBA() color.NRGBA {
	return color.NRGBA{R: uint8(c >> 24), G: uint8(c >> 16), B: uint8(c >> 8), A: uint8(c)}
}

// RGBA implements color.Color.
func (c Color32) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// Color32FromRGBA packs 8-bit channels.
func Color32FromRGBA(r, g, b, a uint8) Color32 {
	return Color32(uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a))
}

// RGB555ToRGBA converts little-endian 16-bit pixels to 32-bit RGBA.
func RGB555ToRGBA(src []byte, dst []byte) {
	srcIdx := 0
	dstIdx := 0

	for srcIdx+1 < len(src) && dstIdx+3 < len(dst) {
		pel := Color16(binary.LittleEndian.Uint16(src[srcIdx:]))
		dst[dstIdx], dst[dstIdx+1], dst[dstIdx+2], dst[dstIdx+3] = pel.Channels()

		srcIdx += 2
		dstIdx += 4
	}
}

// readColors decodes n little-endian pixels from data.
func readColors(data []byte, n int) []Color16 {
	out := make([]Color16, n)
	for i := range out {
		out[i] = Color16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return out
}

func appendColors(dst []byte, colors []Color16) []byte {
	for _, c := range colors {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(c))
	}
	return dst
}
