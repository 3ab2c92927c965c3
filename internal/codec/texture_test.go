package codec

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTexture(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"small", SmallTextureSize},
		{"large", LargeTextureSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]byte, tt.size*tt.size*2)
			binary.LittleEndian.PutUint16(data, 0x7C00)
			binary.LittleEndian.PutUint16(data[len(data)-2:], 0x001F)

			tex, err := DecodeTexture(data)
			require.NoError(t, err)
			assert.Equal(t, tt.size, tex.Size)
			assert.Equal(t, data, tex.Encode())

			img := tex.Image()
			assert.Equal(t, tt.size, img.Bounds().Dx())
			assert.Equal(t, Color16(0x7C00).NRGBA(), img.NRGBAAt(0, 0))
			assert.Equal(t, Color16(0x001F).NRGBA(), img.NRGBAAt(tt.size-1, tt.size-1))
		})
	}
}

func TestDecodeTexture_InvalidSize(t *testing.T) {
	for _, n := range []int{0, 2, 64*64*2 - 2, 64*64*2 + 2, 0x8000 + 2} {
		_, err := DecodeTexture(make([]byte, n))
		require.ErrorIs(t, err, ErrInvalidTextureSize, "size %d", n)
	}
}
