package fonts

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcarmo/uomul/internal/codec"
)

func sampleFont(header uint8) *Font {
	f := &Font{Header: header}
	for i := range f.Characters {
		f.Characters[i] = Character{Pixels: []codec.Color16{}}
	}
	f.Characters[1] = Character{
		Width:  2,
		Height: 2,
		Pixels: []codec.Color16{0, 0x7FFF, 0x7C00, 0x8000},
	}
	return f
}

func TestRead(t *testing.T) {
	var file bytes.Buffer
	file.Write(sampleFont(1).Encode())
	file.Write(sampleFont(2).Encode())
	file.WriteByte(0)
	file.WriteString("trailing")

	fonts, err := Read(&file)
	require.NoError(t, err)
	require.Len(t, fonts, 2)
	assert.Equal(t, sampleFont(1), fonts[0])
	assert.Equal(t, uint8(2), fonts[1].Header)
}

func TestRead_EndOfFile(t *testing.T) {
	fonts, err := Read(bytes.NewReader(sampleFont(1).Encode()))
	require.NoError(t, err)
	assert.Len(t, fonts, 1)

	fonts, err = Read(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Empty(t, fonts)
}

func TestRead_Truncated(t *testing.T) {
	data := sampleFont(1).Encode()
	_, err := Read(bytes.NewReader(data[:len(data)-1]))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestCharacter_Image(t *testing.T) {
	img := sampleFont(1).Characters[1].Image()

	assert.Zero(t, img.NRGBAAt(0, 0).A)
	assert.Equal(t, codec.Color16(0x7FFF).NRGBA(), img.NRGBAAt(1, 0))
	assert.Equal(t, codec.Color16(0x7C00).NRGBA(), img.NRGBAAt(0, 1))
	// The unused high bit alone is still black.
	assert.Zero(t, img.NRGBAAt(1, 1).A)
}
