package export

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/rcarmo/uomul/internal/art"
	"github.com/rcarmo/uomul/internal/codec"
	"github.com/rcarmo/uomul/internal/mul"
	"github.com/rcarmo/uomul/internal/world"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("PNG")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)
	assert.Equal(t, ".png", f.Extension())
	assert.Equal(t, "image/bmp", FormatBMP.ContentType())

	_, err = ParseFormat("gif")
	require.Error(t, err)
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("sound")
	require.Error(t, err)
}

func TestEncode(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(1, 0, color.NRGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, FormatPNG))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	r, _, _, a := decoded.At(1, 0).RGBA()
	assert.Equal(t, uint32(0xFFFF), r)
	assert.Equal(t, uint32(0xFFFF), a)

	buf.Reset()
	require.NoError(t, Encode(&buf, img, FormatBMP))
	assert.Equal(t, "BM", buf.String()[:2])
	decoded, err = bmp.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, decoded.Bounds().Dx())

	require.Error(t, Encode(&buf, img, Format("tga")))
}

func TestScale(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	red := color.NRGBA{R: 255, A: 255}
	img.SetNRGBA(1, 1, red)

	assert.Same(t, image.Image(img), Scale(img, 1))

	scaled := Scale(img, 3).(*image.NRGBA)
	assert.Equal(t, 6, scaled.Bounds().Dx())
	assert.Equal(t, red, scaled.NRGBAAt(3, 3))
	assert.Equal(t, red, scaled.NRGBAAt(5, 5))
	assert.Zero(t, scaled.NRGBAAt(2, 2).A)
}

func TestRange(t *testing.T) {
	assert.Equal(t, []uint32{3, 4, 5}, Range(3, 5))
	assert.Equal(t, []uint32{7}, Range(7, 7))
	assert.Nil(t, Range(5, 3))
	assert.Len(t, Range(0xFFFFFFFE, 0xFFFFFFFF), 2)
}

// cloneOpener returns a Source factory where every call gets private copies
// of the container buffers.
func cloneOpener(k Kind, m *mul.Memory) func() (Source, error) {
	return func() (Source, error) {
		idx := mul.NewBuffer(append([]byte(nil), m.Index.Bytes()...))
		data := mul.NewBuffer(append([]byte(nil), m.Data.Bytes()...))
		return NewSource(k, mul.NewReader(idx, data))
	}
}

func gumpContainer(t *testing.T) *mul.Memory {
	t.Helper()
	g := &codec.Gump{Width: 2, Height: 1, Rows: [][]codec.GumpRun{{{Color: 0x7C00, Count: 2}}}}
	data, err := g.Encode()
	require.NoError(t, err)

	m := mul.NewMemory(1, 2, data, data)
	require.NoError(t, m.Writer().AppendAbsent())
	require.NoError(t, m.Writer().Append([]byte{1, 2, 3}, mul.WithOpt1(1), mul.WithOpt2(2)))
	require.NoError(t, m.Writer().Append(data, mul.WithOpt1(1), mul.WithOpt2(2)))
	return m
}

func TestNewSource(t *testing.T) {
	tile := (&codec.Tile{}).Encode()
	static, err := (&codec.Static{Width: 1, Height: 1, Rows: [][]codec.Run{{{Pixels: []codec.Color16{1}}}}}).Encode()
	require.NoError(t, err)

	artMem := mul.NewMemory(0, 0, tile)
	w := artMem.Writer()
	for i := 1; i < art.StaticOffset; i++ {
		require.NoError(t, w.AppendAbsent())
	}
	require.NoError(t, w.Append(static))

	animGroup := &codec.AnimationGroup{Frames: []codec.AnimationFrame{{Width: 1, Height: 1}, {Width: 2, Height: 2}}}

	tests := []struct {
		kind   Kind
		mem    *mul.Memory
		count  int
		images int
		width  int
	}{
		{KindTile, artMem, art.StaticOffset, 1, codec.TileSize},
		{KindStatic, artMem, 1, 1, 1},
		{KindGump, gumpContainer(t), 5, 1, 2},
		{KindAnim, mul.NewMemory(0, 0, animGroup.Encode()), 1, 2, 1},
		{KindTexture, mul.NewMemory(0, 0, make([]byte, 64*64*2)), 1, 1, 64},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			src, err := cloneOpener(tt.kind, tt.mem)()
			require.NoError(t, err)
			defer src.Close()

			n, err := src.Len()
			require.NoError(t, err)
			assert.Equal(t, tt.count, n)

			imgs, err := src.Images(0)
			require.NoError(t, err)
			require.Len(t, imgs, tt.images)
			assert.Equal(t, tt.width, imgs[0].Bounds().Dx())
		})
	}

	_, err = NewSource(Kind("sound"), artMem.Reader())
	require.Error(t, err)
}

func TestBatch_Run(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	b := &Batch{
		Kind:      KindGump,
		OutputDir: dir,
		Format:    FormatPNG,
		Scale:     2,
		Workers:   3,
		Open:      cloneOpener(KindGump, gumpContainer(t)),
	}

	summary, err := b.Run(context.Background(), Range(0, 4))
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Written)
	assert.Equal(t, 1, summary.Missing)
	assert.Equal(t, 1, summary.Skipped)
	assert.Positive(t, summary.Bytes)
	assert.Contains(t, summary.String(), "3 files")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	assert.Equal(t, []string{"gump_00000.png", "gump_00001.png", "gump_00004.png"}, names)

	f, err := os.Open(filepath.Join(dir, "gump_00000.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())
}

func TestBatch_AnimFrames(t *testing.T) {
	group := &codec.AnimationGroup{Frames: []codec.AnimationFrame{{Width: 1, Height: 1}, {Width: 1, Height: 1}}}
	dir := t.TempDir()
	b := &Batch{
		Kind:      KindAnim,
		OutputDir: dir,
		Format:    FormatBMP,
		Open:      cloneOpener(KindAnim, mul.NewMemory(0, 0, group.Encode())),
	}

	summary, err := b.Run(context.Background(), []uint32{0})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Written)
	assert.FileExists(t, filepath.Join(dir, "anim_00000_00.bmp"))
	assert.FileExists(t, filepath.Join(dir, "anim_00000_01.bmp"))
}

func TestBatch_AnimSkipsEmptyFrame(t *testing.T) {
	group := &codec.AnimationGroup{Frames: []codec.AnimationFrame{{Width: 1, Height: 1}, {}, {Width: 2, Height: 2}}}
	dir := t.TempDir()
	b := &Batch{
		Kind:      KindAnim,
		OutputDir: dir,
		Format:    FormatPNG,
		Open:      cloneOpener(KindAnim, mul.NewMemory(0, 0, group.Encode())),
	}
	summary, err := b.Run(context.Background(), Range(0, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Written)
	assert.Zero(t, summary.Skipped)
	assert.FileExists(t, filepath.Join(dir, "anim_00000_00.png"))
	assert.NoFileExists(t, filepath.Join(dir, "anim_00000_01.png"))
	assert.FileExists(t, filepath.Join(dir, "anim_00000_02.png"))
}

func TestNewSource_AnimWithoutDrawableFrames(t *testing.T) {
	group := &codec.AnimationGroup{Frames: []codec.AnimationFrame{{}, {Width: 3}}}
	src, err := NewSource(KindAnim, mul.NewMemory(0, 0, group.Encode()).Reader())
	require.NoError(t, err)

	_, err = src.Images(0)
	require.ErrorIs(t, err, codec.ErrUnsupportedFrame)
}

func TestBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := &Batch{
		Kind:      KindGump,
		OutputDir: t.TempDir(),
		Format:    FormatPNG,
		Open:      cloneOpener(KindGump, gumpContainer(t)),
	}
	summary, err := b.Run(ctx, Range(0, 4))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Written)
}

func TestBatch_OpenFails(t *testing.T) {
	b := &Batch{
		Kind:      KindGump,
		OutputDir: t.TempDir(),
		Open: func() (Source, error) {
			return nil, os.ErrNotExist
		},
	}
	_, err := b.Run(context.Background(), Range(0, 1))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRadar(t *testing.T) {
	land := &world.Block{}
	for i := range land.Cells {
		land.Cells[i].Graphic = 1
	}
	blocks := world.Size{Width: 1, Height: 2}

	var mapFile bytes.Buffer
	mapFile.Write(land.Encode())
	mapFile.Write(land.Encode())

	statics := mul.NewMemory(0, 0,
		world.EncodeStatics([]world.StaticLocation{
			{ObjectID: 0, X: 2, Y: 3, Altitude: 0},
			{ObjectID: 1, X: 2, Y: 3, Altitude: 5},
		}),
	)
	require.NoError(t, statics.Writer().AppendAbsent())

	colors := make(world.RadarColors, world.RadarStaticOffset+2)
	colors[1] = 0x03E0
	colors[world.RadarStaticOffset] = 0x7C00
	colors[world.RadarStaticOffset+1] = 0x001F

	cells := world.Size{Width: blocks.Width * world.BlockEdge, Height: blocks.Height * world.BlockEdge}
	f := &world.Facet{
		Map:     world.NewMapReader(bytes.NewReader(mapFile.Bytes()), cells),
		Statics: world.NewStaticReader(statics.Reader(), cells),
	}

	img, err := Radar(f, blocks, colors, image.Rect(0, 0, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 16), img.Bounds())
	assert.Equal(t, codec.Color16(0x03E0).NRGBA(), img.NRGBAAt(0, 0))
	assert.Equal(t, codec.Color16(0x001F).NRGBA(), img.NRGBAAt(2, 3))
	assert.Equal(t, codec.Color16(0x03E0).NRGBA(), img.NRGBAAt(2, 11))

	_, err = Radar(f, blocks, colors, image.Rect(0, 0, 2, 1))
	require.ErrorIs(t, err, world.ErrOutOfBounds)
}
