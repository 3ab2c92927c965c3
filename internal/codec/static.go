package codec

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"
)

const (
	staticHeaderSize = 8
	// MaxStaticDimension is the exclusive upper bound for static widths
	// and heights.
	MaxStaticDimension = 1024
)

// Run is a horizontal span of pixels preceded by Skip transparent pixels.
type Run struct {
	Skip   uint16
	Pixels []Color16
}

// Static is an item image stored as sparse scanline runs.
type Static struct {
	Size    uint16
	Trigger uint16
	Width   uint16
	Height  uint16
	Rows    [][]Run
}

func validStaticDimension(v uint16) bool {
	return v > 0 && v < MaxStaticDimension
}

// DecodeStatic decodes a static record:
//
//	size:u16 | trigger:u16 | width:u16 | height:u16 | row_offset:u16 x height |
//	per row: (skip:u16 | run:u16 | pixel:u16 x run)* | 0 | 0
//
// Row offsets count 16-bit words from the end of the offset table.
func DecodeStatic(data []byte) (*Static, error) {
	if len(data) < staticHeaderSize {
		return nil, fmt.Errorf("%w: static header needs %d bytes, got %d", ErrTruncated, staticHeaderSize, len(data))
	}

	s := &Static{
		Size:    binary.LittleEndian.Uint16(data[0:]),
		Trigger: binary.LittleEndian.Uint16(data[2:]),
		Width:   binary.LittleEndian.Uint16(data[4:]),
		Height:  binary.LittleEndian.Uint16(data[6:]),
	}

	if !validStaticDimension(s.Width) || !validStaticDimension(s.Height) {
		return nil, fmt.Errorf("%w: static is %dx%d", ErrMalformedDimensions, s.Width, s.Height)
	}

	dataStart := staticHeaderSize + int(s.Height)*2
	if len(data) < dataStart {
		return nil, fmt.Errorf("%w: row table needs %d bytes, got %d", ErrTruncated, dataStart, len(data))
	}

	s.Rows = make([][]Run, s.Height)
	for y := range s.Rows {
		offset := int(binary.LittleEndian.Uint16(data[staticHeaderSize+y*2:]))
		row, err := decodeStaticRow(data, dataStart+offset*2, int(s.Width))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", y, err)
		}
		s.Rows[y] = row
	}

	return s, nil
}

func decodeStaticRow(data []byte, pos, width int) ([]Run, error) {
	var (
		row []Run
		x   int
	)

	for {
		if pos+4 > len(data) {
			return nil, fmt.Errorf("%w: run header at %d", ErrTruncated, pos)
		}
		skip := binary.LittleEndian.Uint16(data[pos:])
		n := int(binary.LittleEndian.Uint16(data[pos+2:]))
		pos += 4

		if skip == 0 && n == 0 {
			return row, nil
		}

		x += int(skip) + n
		if x > width {
			return nil, fmt.Errorf("%w: row extends to %d, width is %d", ErrInvariantViolation, x, width)
		}

		if pos+n*2 > len(data) {
			return nil, fmt.Errorf("%w: run of %d pixels at %d", ErrTruncated, n, pos)
		}
		row = append(row, Run{Skip: skip, Pixels: readColors(data[pos:], n)})
		pos += n * 2
	}
}

// Validate checks the dimension bounds and that no row extends past Width.
func (s *Static) Validate() error {
	if !validStaticDimension(s.Width) || !validStaticDimension(s.Height) {
		return fmt.Errorf("%w: static is %dx%d", ErrMalformedDimensions, s.Width, s.Height)
	}
	if len(s.Rows) != int(s.Height) {
		return fmt.Errorf("%w: %d rows for height %d", ErrInvariantViolation, len(s.Rows), s.Height)
	}
	for y, row := range s.Rows {
		x := 0
		for _, run := range row {
			if run.Skip == 0 && len(run.Pixels) == 0 {
				return fmt.Errorf("%w: row %d holds an empty run that would end the row", ErrInvariantViolation, y)
			}
			x += int(run.Skip) + len(run.Pixels)
		}
		if x > int(s.Width) {
			return fmt.Errorf("%w: row %d extends to %d, width is %d", ErrInvariantViolation, y, x, s.Width)
		}
	}
	return nil
}

// Encode serializes the static in canonical layout: rows are stored in
// order, back to back, and the offset table holds running word totals.
func (s *Static) Encode() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	rows := make([][]byte, len(s.Rows))
	for y, row := range s.Rows {
		var body []byte
		for _, run := range row {
			body = binary.LittleEndian.AppendUint16(body, run.Skip)
			body = binary.LittleEndian.AppendUint16(body, uint16(len(run.Pixels)))
			body = appendColors(body, run.Pixels)
		}
		body = append(body, 0, 0, 0, 0)
		rows[y] = body
	}

	out := make([]byte, 0, staticHeaderSize+len(rows)*2)
	out = binary.LittleEndian.AppendUint16(out, s.Size)
	out = binary.LittleEndian.AppendUint16(out, s.Trigger)
	out = binary.LittleEndian.AppendUint16(out, s.Width)
	out = binary.LittleEndian.AppendUint16(out, s.Height)

	words := 0
	for y, row := range rows {
		if words > math.MaxUint16 {
			return nil, fmt.Errorf("%w: row %d starts at word %d", ErrInvariantViolation, y, words)
		}
		out = binary.LittleEndian.AppendUint16(out, uint16(words))
		words += len(row) / 2
	}
	for _, row := range rows {
		out = append(out, row...)
	}

	return out, nil
}

// Image draws the static on a Width x Height canvas.
func (s *Static) Image() (*image.NRGBA, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	img := image.NewNRGBA(image.Rect(0, 0, int(s.Width), int(s.Height)))
	for y, row := range s.Rows {
		x := 0
		for _, run := range row {
			x += int(run.Skip)
			for _, p := range run.Pixels {
				img.SetNRGBA(x, y, p.NRGBA())
				x++
			}
		}
	}
	return img, nil
}
