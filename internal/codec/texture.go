package codec

import (
	"fmt"
	"image"
)

const (
	// SmallTextureSize and LargeTextureSize are the two texture edge lengths.
	SmallTextureSize = 64
	LargeTextureSize = 128

	largeTextureThreshold = 0x8000
)

// Texture is a dense square image of 16-bit pixels used for stretched
// terrain.
type Texture struct {
	Size   int
	Pixels []Color16
}

// DecodeTexture decodes a texture record. Records of at least 0x8000 bytes
// are 128x128, smaller ones 64x64; the payload must hold exactly that many
// pixels.
func DecodeTexture(data []byte) (*Texture, error) {
	size := SmallTextureSize
	if len(data) >= largeTextureThreshold {
		size = LargeTextureSize
	}

	if len(data) != size*size*2 {
		return nil, fmt.Errorf("%w: %d bytes for a %dx%d texture", ErrInvalidTextureSize, len(data), size, size)
	}

	return &Texture{Size: size, Pixels: readColors(data, size*size)}, nil
}

// Encode serializes the texture pixels.
func (t *Texture) Encode() []byte {
	return appendColors(make([]byte, 0, len(t.Pixels)*2), t.Pixels)
}

// Image draws the texture.
func (t *Texture) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, t.Size, t.Size))
	RGB555ToRGBA(t.Encode(), img.Pix)
	return img
}
