package world

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcarmo/uomul/internal/codec"
	"github.com/rcarmo/uomul/internal/mul"
)

func testBlock(seed uint16) *Block {
	b := &Block{Checksum: uint32(seed) << 8}
	for i := range b.Cells {
		b.Cells[i] = Cell{Graphic: seed + uint16(i), Altitude: int8(i - 32)}
	}
	return b
}

func TestBlock_Layout(t *testing.T) {
	b := testBlock(3)
	data := b.Encode()
	require.Len(t, data, BlockSize)

	assert.Equal(t, uint32(3<<8), binary.LittleEndian.Uint32(data))
	assert.Equal(t, uint16(3), binary.LittleEndian.Uint16(data[4:]))
	assert.Equal(t, byte(0xE0), data[6])
	assert.Equal(t, uint16(4), binary.LittleEndian.Uint16(data[7:]))

	decoded, err := DecodeBlock(data)
	require.NoError(t, err)
	assert.Equal(t, b, decoded)
	assert.Equal(t, Cell{Graphic: 3 + 9, Altitude: 9 - 32}, decoded.Cell(1, 1))

	_, err = DecodeBlock(data[:BlockSize-1])
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestSize(t *testing.T) {
	blocks := Felucca.Blocks()
	assert.Equal(t, Size{Width: 896, Height: 512}, blocks)

	id, err := blocks.BlockID(2, 5)
	require.NoError(t, err)
	assert.Equal(t, uint32(2*512+5), id)

	_, err = blocks.BlockID(896, 0)
	require.ErrorIs(t, err, ErrOutOfBounds)
	_, err = blocks.BlockID(0, 512)
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func TestMapReader(t *testing.T) {
	size := Size{Width: 16, Height: 24} // 2x3 blocks
	var file bytes.Buffer
	for i := 0; i < 6; i++ {
		file.Write(testBlock(uint16(i * 100)).Encode())
	}

	m := NewMapReader(bytes.NewReader(file.Bytes()), size)

	b, err := m.ReadBlockAt(1, 2)
	require.NoError(t, err)
	assert.Equal(t, testBlock(500), b)

	_, err = m.ReadBlockAt(2, 0)
	require.ErrorIs(t, err, ErrOutOfBounds)

	_, err = m.ReadBlock(6)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestOpenMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map0.mul")
	require.NoError(t, os.WriteFile(path, testBlock(1).Encode(), 0o644))

	m, err := OpenMap(path, Felucca)
	require.NoError(t, err)
	defer m.Close()

	b, err := m.ReadBlock(0)
	require.NoError(t, err)
	assert.Equal(t, testBlock(1), b)
}

func TestStatics(t *testing.T) {
	statics := []StaticLocation{
		{ObjectID: 0x0E75, X: 1, Y: 7, Altitude: -5, Checksum: 0xBEEF},
		{ObjectID: 0x0001, X: 0, Y: 0, Altitude: 127},
	}
	data := EncodeStatics(statics)
	require.Len(t, data, 14)
	assert.Equal(t, []byte{0x75, 0x0E, 1, 7, 0xFB, 0xEF, 0xBE}, data[:7])

	m := mul.NewMemory(0, 0, data)
	require.NoError(t, m.Writer().AppendAbsent())
	require.NoError(t, m.Writer().Append([]byte{1, 2, 3}))

	r := NewStaticReader(m.Reader(), Size{Width: 8, Height: 24})

	got, err := r.ReadBlockAt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, statics, got)

	got, err = r.ReadBlock(1)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = r.ReadBlock(2)
	require.ErrorIs(t, err, ErrMalformedStatics)

	_, err = r.ReadBlockAt(1, 0)
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func TestRadarColors(t *testing.T) {
	data := make([]byte, (RadarStaticOffset+2)*2+1)
	binary.LittleEndian.PutUint16(data[2*5:], 0x7C00)
	binary.LittleEndian.PutUint16(data[2*(RadarStaticOffset+1):], 0x001F)

	rc, err := ReadRadarColors(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, rc, RadarStaticOffset+2)

	c, err := rc.Land(5)
	require.NoError(t, err)
	assert.Equal(t, codec.Color16(0x7C00), c)

	c, err = rc.Static(StaticLocation{ObjectID: 1})
	require.NoError(t, err)
	assert.Equal(t, codec.Color16(0x001F), c)

	_, err = rc.Color(RadarStaticOffset + 2)
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func u32s(values ...uint32) []byte {
	var out []byte
	for _, v := range values {
		out = binary.LittleEndian.AppendUint32(out, v)
	}
	return out
}

func TestReadDiffLookup(t *testing.T) {
	lookup, err := ReadDiffLookup(bytes.NewReader(append(u32s(40, 7), 1)))
	require.NoError(t, err)
	assert.Equal(t, map[uint32]uint32{40: 0, 7: 1}, lookup)
}

func TestFacet_AppliesPatches(t *testing.T) {
	var base bytes.Buffer
	for i := 0; i < 4; i++ {
		base.Write(testBlock(uint16(i)).Encode())
	}
	var patch bytes.Buffer
	patch.Write(testBlock(900).Encode())
	patch.Write(testBlock(901).Encode())

	lookup, err := ReadDiffLookup(bytes.NewReader(u32s(3, 1)))
	require.NoError(t, err)

	baseStatics := mul.NewMemory(0, 0,
		EncodeStatics([]StaticLocation{{ObjectID: 10}}),
		EncodeStatics([]StaticLocation{{ObjectID: 11}}),
	)
	patchStatics := mul.NewMemory(0, 0, EncodeStatics([]StaticLocation{{ObjectID: 99}}))
	staticLookup := map[uint32]uint32{1: 0}

	size := Size{Width: 16, Height: 16}
	f := &Facet{
		Map:         NewMapReader(bytes.NewReader(base.Bytes()), size),
		Statics:     NewStaticReader(baseStatics.Reader(), size),
		MapDiff:     NewMapDiffReader(lookup, bytes.NewReader(patch.Bytes())),
		StaticsDiff: NewStaticDiffReader(staticLookup, patchStatics.Reader()),
	}

	b, err := f.Block(0)
	require.NoError(t, err)
	assert.Equal(t, testBlock(0), b)

	b, err = f.Block(3)
	require.NoError(t, err)
	assert.Equal(t, testBlock(900), b)

	b, err = f.Block(1)
	require.NoError(t, err)
	assert.Equal(t, testBlock(901), b)

	s, err := f.StaticsBlock(0)
	require.NoError(t, err)
	assert.Equal(t, uint16(10), s[0].ObjectID)

	s, err = f.StaticsBlock(1)
	require.NoError(t, err)
	assert.Equal(t, uint16(99), s[0].ObjectID)

	_, ok, err := f.MapDiff.Read(2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, f.MapDiff.Len())
	assert.Equal(t, 1, f.StaticsDiff.Len())
}

func TestMapDiff_Truncated(t *testing.T) {
	d := NewMapDiffReader(map[uint32]uint32{5: 3}, bytes.NewReader(testBlock(0).Encode()))
	_, ok, err := d.Read(5)
	assert.True(t, ok)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestFacetSize(t *testing.T) {
	s, ok := FacetSize("TerMur")
	require.True(t, ok)
	assert.Equal(t, TerMur, s)

	_, ok = FacetSize("sosaria")
	assert.False(t, ok)
}
