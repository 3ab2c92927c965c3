package codec

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColor16_Channels(t *testing.T) {
	tests := []struct {
		name     string
		c        Color16
		expected color.NRGBA
	}{
		{"white", 0x7FFF, color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}},
		{"white with high bit", 0xFFFF, color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}},
		{"red", 0x7C00, color.NRGBA{0xFF, 0x00, 0x00, 0xFF}},
		{"green", 0x03E0, color.NRGBA{0x00, 0xFF, 0x00, 0xFF}},
		{"blue", 0x001F, color.NRGBA{0x00, 0x00, 0xFF, 0xFF}},
		{"black is opaque", 0x0000, color.NRGBA{0x00, 0x00, 0x00, 0xFF}},
		{"low red", 0x0400, color.NRGBA{0x08, 0x00, 0x00, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.c.NRGBA())
		})
	}
}

func TestColor16FromRGB_RoundTrip(t *testing.T) {
	for v := 0; v <= 0x7FFF; v++ {
		c := Color16(v)
		r, g, b, _ := c.Channels()
		require.Equal(t, c, Color16FromRGB(r, g, b), "0x%04X", v)
	}
}

func TestColor16_IsBlack(t *testing.T) {
	assert.True(t, Color16(0x0000).IsBlack())
	assert.True(t, Color16(0x8000).IsBlack())
	assert.False(t, Color16(0x0001).IsBlack())
	assert.False(t, Color16(0x7FFF).IsBlack())
}

func TestColor16Model(t *testing.T) {
	got := Color16Model.Convert(color.NRGBA{R: 0xFF, G: 0x00, B: 0xFF, A: 0xFF})
	assert.Equal(t, Color16(0x7C1F), got)

	assert.Equal(t, Color16(0x1234), Color16Model.Convert(Color16(0x1234)))
}

func TestColor32(t *testing.T) {
	tests := []struct {
		c          Color32
		r, g, b, a uint8
	}{
		{0xFFFFFFFF, 0xFF, 0xFF, 0xFF, 0xFF},
		{0xFF0000FF, 0xFF, 0x00, 0x00, 0xFF},
		{0x00FF00FF, 0x00, 0xFF, 0x00, 0xFF},
		{0xF6FF44FF, 0xF6, 0xFF, 0x44, 0xFF},
	}

	for _, tt := range tests {
		assert.Equal(t, color.NRGBA{tt.r, tt.g, tt.b, tt.a}, tt.c.NRGBA())
		assert.Equal(t, tt.c, Color32FromRGBA(tt.r, tt.g, tt.b, tt.a))
	}
}

func TestRGB555ToRGBA(t *testing.T) {
	src := []byte{0x00, 0x7C, 0xE0, 0x03, 0x1F, 0x00}
	dst := make([]byte, 12)

	RGB555ToRGBA(src, dst)

	assert.Equal(t, []byte{
		0xFF, 0x00, 0x00, 0xFF,
		0x00, 0xFF, 0x00, 0xFF,
		0x00, 0x00, 0xFF, 0xFF,
	}, dst)
}

func TestRGB555ToRGBA_ShortBuffers(t *testing.T) {
	// Odd source length and a short destination must not panic.
	dst := make([]byte, 4)
	RGB555ToRGBA([]byte{0xFF, 0x7F, 0x01}, dst)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, dst)

	RGB555ToRGBA([]byte{0xFF, 0x7F}, make([]byte, 3))
}
