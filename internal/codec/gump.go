package codec

import (
	"encoding/binary"
	"fmt"
	"image"
)

// GumpRun repeats Color Count times. Black runs are transparent.
type GumpRun struct {
	Color Color16
	Count uint16
}

// Gump is a UI image. Its dimensions live in the container metadata, not in
// the payload.
type Gump struct {
	Width  uint16
	Height uint16
	Rows   [][]GumpRun
}

// DecodeGump decodes a gump payload: height u32 row offsets followed by
// (color:u16, count:u16) runs. Offsets count 4-byte words from the start of
// the payload. A row ends where the next row begins; the last row ends with
// the payload.
func DecodeGump(data []byte, width, height uint16) (*Gump, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: payload length %d is not a multiple of 4", ErrMalformedGump, len(data))
	}

	words := len(data) / 4
	if words < int(height) {
		return nil, fmt.Errorf("%w: %d rows need a %d word table, payload has %d words", ErrTruncated, height, height, words)
	}

	offsets := make([]int, height)
	for i := range offsets {
		offsets[i] = int(binary.LittleEndian.Uint32(data[i*4:]))
	}

	g := &Gump{Width: width, Height: height, Rows: make([][]GumpRun, height)}
	for i, start := range offsets {
		end := words
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}

		if start < int(height) || start > end || end > words {
			return nil, fmt.Errorf("%w: row %d spans words [%d, %d) of %d", ErrMalformedGump, i, start, end, words)
		}

		row := make([]GumpRun, 0, end-start)
		for w := start; w < end; w++ {
			row = append(row, GumpRun{
				Color: Color16(binary.LittleEndian.Uint16(data[w*4:])),
				Count: binary.LittleEndian.Uint16(data[w*4+2:]),
			})
		}
		g.Rows[i] = row
	}

	return g, nil
}

// Encode serializes the gump payload. Width and Height are not part of it.
func (g *Gump) Encode() ([]byte, error) {
	if len(g.Rows) != int(g.Height) {
		return nil, fmt.Errorf("%w: %d rows for height %d", ErrInvariantViolation, len(g.Rows), g.Height)
	}

	out := make([]byte, 0, len(g.Rows)*4)
	offset := uint32(len(g.Rows))
	for _, row := range g.Rows {
		out = binary.LittleEndian.AppendUint32(out, offset)
		offset += uint32(len(row))
	}
	for _, row := range g.Rows {
		for _, run := range row {
			out = binary.LittleEndian.AppendUint16(out, uint16(run.Color))
			out = binary.LittleEndian.AppendUint16(out, run.Count)
		}
	}
	return out, nil
}

// Image draws the gump. Black runs leave their pixels transparent but still
// advance the cursor.
func (g *Gump) Image() (*image.NRGBA, error) {
	img := image.NewNRGBA(image.Rect(0, 0, int(g.Width), int(g.Height)))

	for y, row := range g.Rows {
		if y >= int(g.Height) {
			return nil, fmt.Errorf("%w: row %d beyond height %d", ErrInvariantViolation, y, g.Height)
		}
		x := 0
		for _, run := range row {
			if x+int(run.Count) > int(g.Width) {
				return nil, fmt.Errorf("%w: row %d extends to %d, width is %d", ErrInvariantViolation, y, x+int(run.Count), g.Width)
			}
			if !run.Color.IsBlack() {
				c := run.Color.NRGBA()
				for i := 0; i < int(run.Count); i++ {
					img.SetNRGBA(x+i, y, c)
				}
			}
			x += int(run.Count)
		}
	}
	return img, nil
}
