package codec

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gumpPayload(offsets []uint32, runs ...GumpRun) []byte {
	var out []byte
	for _, off := range offsets {
		out = binary.LittleEndian.AppendUint32(out, off)
	}
	for _, r := range runs {
		out = binary.LittleEndian.AppendUint16(out, uint16(r.Color))
		out = binary.LittleEndian.AppendUint16(out, r.Count)
	}
	return out
}

func TestDecodeGump(t *testing.T) {
	data := gumpPayload([]uint32{2, 4},
		GumpRun{Color: 0x0000, Count: 1}, GumpRun{Color: 0x7FFF, Count: 3},
		GumpRun{Color: 0x7C00, Count: 2}, GumpRun{Color: 0x0000, Count: 2},
	)

	g, err := DecodeGump(data, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]GumpRun{
		{{0x0000, 1}, {0x7FFF, 3}},
		{{0x7C00, 2}, {0x0000, 2}},
	}, g.Rows)

	img, err := g.Image()
	require.NoError(t, err)

	assert.Zero(t, img.NRGBAAt(0, 0).A)
	for x := 1; x < 4; x++ {
		assert.Equal(t, Color16(0x7FFF).NRGBA(), img.NRGBAAt(x, 0))
	}
	assert.Equal(t, Color16(0x7C00).NRGBA(), img.NRGBAAt(0, 1))
	assert.Equal(t, Color16(0x7C00).NRGBA(), img.NRGBAAt(1, 1))
	assert.Zero(t, img.NRGBAAt(2, 1).A)
	assert.Zero(t, img.NRGBAAt(3, 1).A)
}

func TestGump_BlackNeverPainted(t *testing.T) {
	for _, black := range []Color16{0x0000, 0x8000} {
		g := &Gump{
			Width:  6,
			Height: 1,
			Rows:   [][]GumpRun{{{Color: black, Count: 4}, {Color: 0x001F, Count: 2}}},
		}

		img, err := g.Image()
		require.NoError(t, err)
		for x := 0; x < 4; x++ {
			assert.Zero(t, img.NRGBAAt(x, 0), "black run painted column %d", x)
		}
		// The cursor still advanced past the black run.
		assert.Equal(t, Color16(0x001F).NRGBA(), img.NRGBAAt(4, 0))
		assert.Equal(t, Color16(0x001F).NRGBA(), img.NRGBAAt(5, 0))
	}
}

func TestGump_EncodeRoundTrip(t *testing.T) {
	g := &Gump{
		Width:  3,
		Height: 3,
		Rows: [][]GumpRun{
			{{0, 1}, {0x7FFF, 1}, {0, 1}},
			{{0x7FFF, 3}},
			{},
		},
	}

	data, err := g.Encode()
	require.NoError(t, err)
	assert.Len(t, data, (3+4)*4)

	decoded, err := DecodeGump(data, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, g.Rows[:2], decoded.Rows[:2])
	assert.Empty(t, decoded.Rows[2])
}

func TestDecodeGump_LastRowRunsToEnd(t *testing.T) {
	data := gumpPayload([]uint32{1}, GumpRun{0x7FFF, 1}, GumpRun{0x7C00, 1}, GumpRun{0x03E0, 1})

	g, err := DecodeGump(data, 3, 1)
	require.NoError(t, err)
	assert.Len(t, g.Rows[0], 3)
}

func TestDecodeGump_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		height uint16
		err    error
	}{
		{"unaligned", []byte{1, 0, 0, 0, 1}, 1, ErrMalformedGump},
		{"missing table", gumpPayload([]uint32{2}), 2, ErrTruncated},
		{"offset into table", gumpPayload([]uint32{0, 2}, GumpRun{1, 1}), 2, ErrMalformedGump},
		{"decreasing offsets", gumpPayload([]uint32{3, 2}, GumpRun{1, 1}, GumpRun{1, 1}), 2, ErrMalformedGump},
		{"offset past end", gumpPayload([]uint32{2, 9}, GumpRun{1, 1}), 2, ErrMalformedGump},
		{"last offset past end", gumpPayload([]uint32{5}), 1, ErrMalformedGump},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeGump(tt.data, 8, tt.height)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestGump_ImageRowTooWide(t *testing.T) {
	tests := []struct {
		name string
		row  []GumpRun
	}{
		{"colored overflow", []GumpRun{{0x7FFF, 3}}},
		{"black overflow", []GumpRun{{0x7FFF, 1}, {0, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Gump{Width: 2, Height: 1, Rows: [][]GumpRun{tt.row}}
			_, err := g.Image()
			require.ErrorIs(t, err, ErrInvariantViolation)
		})
	}
}

func TestGump_EmptyImage(t *testing.T) {
	g, err := DecodeGump(nil, 0, 0)
	require.NoError(t, err)

	img, err := g.Image()
	require.NoError(t, err)
	assert.True(t, img.Bounds().Empty())
}
