// Package world reads the terrain and placed statics of a facet: map*.mul,
// statics*.mul/staidx*.mul, radarcol.mul and the patch (diff) files.
//
// Both maps and statics are addressed by 8x8 blocks, numbered column-major:
// block(x, y) = x*heightBlocks + y.
package world

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lunixbochs/struc"
)

const (
	// BlockSize is the encoded size of a map block.
	BlockSize = 4 + BlockCells*3
	// BlockCells is the number of cells in a block.
	BlockCells = 64
	// BlockEdge is the width and height of a block in cells.
	BlockEdge = 8
)

// ErrOutOfBounds is returned for block coordinates outside the facet.
var ErrOutOfBounds = errors.New("world: coordinates out of bounds")

// Facet sizes in cells.
var (
	Felucca  = Size{Width: 7168, Height: 4096}
	Trammel  = Size{Width: 7168, Height: 4096}
	Ilshenar = Size{Width: 2304, Height: 1600}
	Malas    = Size{Width: 2560, Height: 2048}
	Tokuno   = Size{Width: 1448, Height: 1448}
	TerMur   = Size{Width: 1280, Height: 4096}
)

// FacetSize returns the cell size of a facet by name.
func FacetSize(name string) (Size, bool) {
	switch strings.ToLower(name) {
	case "felucca":
		return Felucca, true
	case "trammel":
		return Trammel, true
	case "ilshenar":
		return Ilshenar, true
	case "malas":
		return Malas, true
	case "tokuno":
		return Tokuno, true
	case "termur":
		return TerMur, true
	}
	return Size{}, false
}

// Size is a facet size in cells.
type Size struct {
	Width  uint32
	Height uint32
}

// Blocks returns the size in blocks.
func (s Size) Blocks() Size {
	return Size{Width: s.Width / BlockEdge, Height: s.Height / BlockEdge}
}

// BlockID returns the id of block (x, y) in a facet sized in blocks.
func (s Size) BlockID(x, y uint32) (uint32, error) {
	if x >= s.Width || y >= s.Height {
		return 0, fmt.Errorf("%w: block %d,%d in %dx%d", ErrOutOfBounds, x, y, s.Width, s.Height)
	}
	return x*s.Height + y, nil
}

var structOptions = &struc.Options{Order: binary.LittleEndian}

// Cell is one terrain cell.
type Cell struct {
	Graphic  uint16
	Altitude int8
}

// Block is 8x8 terrain cells stored row by row.
type Block struct {
	Checksum uint32
	Cells    [BlockCells]Cell
}

// Cell returns the cell at (x, y) within the block.
func (b *Block) Cell(x, y int) Cell {
	return b.Cells[y*BlockEdge+x]
}

type blockHeader struct {
	Checksum uint32
}

type cellRecord struct {
	Graphic  uint16
	Altitude int8
}

// Encode returns the 196 byte block.
func (b *Block) Encode() []byte {
	var buf bytes.Buffer
	_ = struc.PackWithOptions(&buf, &blockHeader{Checksum: b.Checksum}, structOptions)
	for _, c := range b.Cells {
		_ = struc.PackWithOptions(&buf, &cellRecord{Graphic: c.Graphic, Altitude: c.Altitude}, structOptions)
	}
	return buf.Bytes()
}

// DecodeBlock parses a 196 byte block.
func DecodeBlock(data []byte) (*Block, error) {
	if len(data) < BlockSize {
		return nil, fmt.Errorf("world: block needs %d bytes, got %d: %w", BlockSize, len(data), io.ErrUnexpectedEOF)
	}
	r := bytes.NewReader(data[:BlockSize])
	var hdr blockHeader
	if err := struc.UnpackWithOptions(r, &hdr, structOptions); err != nil {
		return nil, err
	}

	b := &Block{Checksum: hdr.Checksum}
	for i := range b.Cells {
		var rec cellRecord
		if err := struc.UnpackWithOptions(r, &rec, structOptions); err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		b.Cells[i] = Cell(rec)
	}
	return b, nil
}

func readBlock(r io.ReaderAt, id uint32) (*Block, error) {
	buf := make([]byte, BlockSize)
	n, err := r.ReadAt(buf, int64(id)*BlockSize)
	if n == BlockSize {
		err = nil
	}
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("world: block %d: %w", id, err)
	}
	return DecodeBlock(buf)
}

// MapReader reads terrain blocks from a map*.mul file.
type MapReader struct {
	r      io.ReaderAt
	c      io.Closer
	blocks Size
}

// NewMapReader reads blocks from r for a facet of the given cell size.
func NewMapReader(r io.ReaderAt, size Size) *MapReader {
	return &MapReader{r: r, blocks: size.Blocks()}
}

// OpenMap opens a map*.mul file.
func OpenMap(path string, size Size) (*MapReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	m := NewMapReader(f, size)
	m.c = f
	return m, nil
}

// Close closes the file opened by OpenMap.
func (m *MapReader) Close() error {
	if m.c == nil {
		return nil
	}
	return m.c.Close()
}

// ReadBlock reads block id.
func (m *MapReader) ReadBlock(id uint32) (*Block, error) {
	return readBlock(m.r, id)
}

// ReadBlockAt reads the block at block coordinates (x, y).
func (m *MapReader) ReadBlockAt(x, y uint32) (*Block, error) {
	id, err := m.blocks.BlockID(x, y)
	if err != nil {
		return nil, err
	}
	return m.ReadBlock(id)
}
