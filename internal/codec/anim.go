package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
)

const (
	// PaletteSize is the number of entries in an animation palette.
	PaletteSize = 256
	// FrameComplete terminates the rows of an animation frame.
	FrameComplete = 0x7FFF7FFF

	paletteBytes     = PaletteSize * 2
	frameHeaderSize  = 8
	rowLengthMask    = 0xFFF
	rowOffsetMask    = uint32(0x200<<22 | 0x200<<12)
	rowOffsetBias    = 0x200
	rowOffsetBitMask = 0x3FF
)

// AnimationRow is one horizontal run of palette indices.
type AnimationRow struct {
	Header uint32
	Pixels []uint8
}

// Offset returns the canvas position of the row's first pixel.
func (r AnimationRow) Offset(centreX, centreY int16, height uint16) (x, y int) {
	return RowOffset(r.Header, centreX, centreY, height)
}

// RowOffset decodes the packed position of an animation row. Bits 22-31 hold
// x and bits 12-21 hold y, each biased by 0x200 with the top bit flipped.
// The header is treated as signed before shifting.
func RowOffset(header uint32, centreX, centreY int16, height uint16) (x, y int) {
	h := int32(header ^ rowOffsetMask)
	x = int((h>>22)&rowOffsetBitMask) + int(centreX) - rowOffsetBias
	y = int((h>>12)&rowOffsetBitMask) + int(centreY) + int(height) - rowOffsetBias
	return x, y
}

// AnimationFrame is a single frame of an animation group.
type AnimationFrame struct {
	CentreX int16
	CentreY int16
	Width   uint16
	Height  uint16
	Rows    []AnimationRow
}

// AnimationGroup holds the shared palette and the frames of one animation.
type AnimationGroup struct {
	Palette [PaletteSize]Color16
	Frames  []AnimationFrame
}

// DecodeAnimation decodes an animation group record:
//
//	palette:u16 x 256 | frame_count:u32 | frame_offset:u32 x frame_count | frames
//
// Frame offsets are relative to the end of the palette.
func DecodeAnimation(data []byte) (*AnimationGroup, error) {
	if len(data) < paletteBytes+4 {
		return nil, fmt.Errorf("%w: animation header needs %d bytes, got %d", ErrTruncated, paletteBytes+4, len(data))
	}

	g := &AnimationGroup{}
	for i := range g.Palette {
		g.Palette[i] = Color16(binary.LittleEndian.Uint16(data[i*2:]))
	}

	count := int(binary.LittleEndian.Uint32(data[paletteBytes:]))
	tableEnd := paletteBytes + 4 + count*4
	if count < 0 || tableEnd > len(data) {
		return nil, fmt.Errorf("%w: %d frame offsets in %d bytes", ErrTruncated, count, len(data))
	}

	g.Frames = make([]AnimationFrame, count)
	for i := range g.Frames {
		offset := int(binary.LittleEndian.Uint32(data[paletteBytes+4+i*4:]))
		frame, err := decodeFrame(data, paletteBytes+offset)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		g.Frames[i] = *frame
	}

	return g, nil
}

func decodeFrame(data []byte, pos int) (*AnimationFrame, error) {
	if pos < 0 || pos+frameHeaderSize > len(data) {
		return nil, fmt.Errorf("%w: frame header at %d", ErrTruncated, pos)
	}

	f := &AnimationFrame{
		CentreX: int16(binary.LittleEndian.Uint16(data[pos:])),
		CentreY: int16(binary.LittleEndian.Uint16(data[pos+2:])),
		Width:   binary.LittleEndian.Uint16(data[pos+4:]),
		Height:  binary.LittleEndian.Uint16(data[pos+6:]),
	}
	pos += frameHeaderSize

	for {
		if pos+4 > len(data) {
			return nil, fmt.Errorf("%w: row header at %d", ErrTruncated, pos)
		}
		header := binary.LittleEndian.Uint32(data[pos:])
		pos += 4

		if header == FrameComplete {
			return f, nil
		}

		n := int(header & rowLengthMask)
		if pos+n > len(data) {
			return nil, fmt.Errorf("%w: row of %d pixels at %d", ErrTruncated, n, pos)
		}
		f.Rows = append(f.Rows, AnimationRow{
			Header: header,
			Pixels: append([]uint8(nil), data[pos:pos+n]...),
		})
		pos += n
	}
}

// Image draws the frame using palette. Frames with no area cannot be drawn
// and return ErrUnsupportedFrame. Pixels that land outside the canvas are
// clipped.
func (f *AnimationFrame) Image(palette *[PaletteSize]Color16) (*image.NRGBA, error) {
	if f.Width == 0 || f.Height == 0 {
		return nil, fmt.Errorf("%w: frame is %dx%d", ErrUnsupportedFrame, f.Width, f.Height)
	}

	img := image.NewNRGBA(image.Rect(0, 0, int(f.Width), int(f.Height)))
	bounds := img.Bounds()
	for _, row := range f.Rows {
		x, y := row.Offset(f.CentreX, f.CentreY, f.Height)
		for i, idx := range row.Pixels {
			p := image.Pt(x+i, y)
			if !p.In(bounds) {
				continue
			}
			img.SetNRGBA(p.X, p.Y, palette[idx].NRGBA())
		}
	}
	return img, nil
}

// Images draws every frame of the group. The result always has one entry per
// frame; frames that cannot be drawn are left nil and their errors are joined
// into the returned error, so the other frames stay usable.
func (g *AnimationGroup) Images() ([]*image.NRGBA, error) {
	out := make([]*image.NRGBA, len(g.Frames))
	var errs []error
	for i := range g.Frames {
		img, err := g.Frames[i].Image(&g.Palette)
		if err != nil {
			errs = append(errs, fmt.Errorf("frame %d: %w", i, err))
			continue
		}
		out[i] = img
	}
	return out, errors.Join(errs...)
}

// Encode serializes the group. Frames are stored back to back after the
// offset table. It is used to build fixtures and to rewrite groups.
func (g *AnimationGroup) Encode() []byte {
	out := make([]byte, 0, paletteBytes+4+len(g.Frames)*4)
	out = appendColors(out, g.Palette[:])
	out = binary.LittleEndian.AppendUint32(out, uint32(len(g.Frames)))

	var frames []byte
	offsets := make([]uint32, len(g.Frames))
	base := 4 + len(g.Frames)*4
	for i, f := range g.Frames {
		offsets[i] = uint32(base + len(frames))
		frames = binary.LittleEndian.AppendUint16(frames, uint16(f.CentreX))
		frames = binary.LittleEndian.AppendUint16(frames, uint16(f.CentreY))
		frames = binary.LittleEndian.AppendUint16(frames, f.Width)
		frames = binary.LittleEndian.AppendUint16(frames, f.Height)
		for _, row := range f.Rows {
			header := row.Header&^rowLengthMask | uint32(len(row.Pixels))&rowLengthMask
			frames = binary.LittleEndian.AppendUint32(frames, header)
			frames = append(frames, row.Pixels...)
		}
		frames = binary.LittleEndian.AppendUint32(frames, FrameComplete)
	}

	for _, off := range offsets {
		out = binary.LittleEndian.AppendUint32(out, off)
	}
	return append(out, frames...)
}

// RowHeader packs a canvas position and run length into a row header. It is
// the inverse of RowOffset for positions within the 10-bit range.
func RowHeader(x, y int, centreX, centreY int16, height uint16, length int) uint32 {
	rx := uint32(x-int(centreX)+rowOffsetBias) & rowOffsetBitMask
	ry := uint32(y-int(centreY)-int(height)+rowOffsetBias) & rowOffsetBitMask
	return (rx<<22 | ry<<12 | uint32(length)&rowLengthMask) ^ rowOffsetMask
}
