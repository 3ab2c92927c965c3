package world

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/lunixbochs/struc"

	"github.com/rcarmo/uomul/internal/mul"
)

// StaticLocationSize is the encoded size of a placed static.
const StaticLocationSize = 7

// ErrMalformedStatics is returned when a statics record is not a whole number
// of entries.
var ErrMalformedStatics = errors.New("world: malformed statics block")

// StaticLocation is a static placed within a block.
type StaticLocation struct {
	ObjectID uint16
	X        uint8
	Y        uint8
	Altitude int8
	Checksum uint16
}

// ColorIndex returns the radarcol index of the static's graphic.
func (s StaticLocation) ColorIndex() uint32 {
	return uint32(s.ObjectID) + RadarStaticOffset
}

// EncodeStatics returns the record bytes for a block's statics.
func EncodeStatics(statics []StaticLocation) []byte {
	var buf bytes.Buffer
	for i := range statics {
		_ = struc.PackWithOptions(&buf, &statics[i], structOptions)
	}
	return buf.Bytes()
}

// DecodeStatics parses a statics record.
func DecodeStatics(data []byte) ([]StaticLocation, error) {
	if len(data)%StaticLocationSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrMalformedStatics, len(data))
	}

	r := bytes.NewReader(data)
	out := make([]StaticLocation, len(data)/StaticLocationSize)
	for i := range out {
		if err := struc.UnpackWithOptions(r, &out[i], structOptions); err != nil {
			return nil, fmt.Errorf("static %d: %w", i, err)
		}
	}
	return out, nil
}

func readStatics(r *mul.Reader, id uint32) ([]StaticLocation, error) {
	rec, err := r.Read(id)
	if errors.Is(err, mul.ErrNotFound) {
		return []StaticLocation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("world: statics: %w", err)
	}
	statics, err := DecodeStatics(rec.Data)
	if err != nil {
		return nil, fmt.Errorf("world: statics block %d: %w", id, err)
	}
	return statics, nil
}

// StaticReader reads the statics placed in each block.
type StaticReader struct {
	mul    *mul.Reader
	blocks Size
}

// NewStaticReader wraps an open staidx/statics container for a facet of the
// given cell size.
func NewStaticReader(r *mul.Reader, size Size) *StaticReader {
	return &StaticReader{mul: r, blocks: size.Blocks()}
}

// OpenStatics opens staidx*.mul and statics*.mul.
func OpenStatics(idxPath, mulPath string, size Size) (*StaticReader, error) {
	r, err := mul.Open(idxPath, mulPath)
	if err != nil {
		return nil, err
	}
	return NewStaticReader(r, size), nil
}

// Close closes the underlying container.
func (s *StaticReader) Close() error {
	return s.mul.Close()
}

// ReadBlock returns the statics of block id. Blocks without an index entry
// hold no statics.
func (s *StaticReader) ReadBlock(id uint32) ([]StaticLocation, error) {
	return readStatics(s.mul, id)
}

// ReadBlockAt returns the statics of the block at block coordinates (x, y).
func (s *StaticReader) ReadBlockAt(x, y uint32) ([]StaticLocation, error) {
	id, err := s.blocks.BlockID(x, y)
	if err != nil {
		return nil, err
	}
	return s.ReadBlock(id)
}
