package world

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/rcarmo/uomul/internal/mul"
)

// ReadDiffLookup reads a mapdifl/stadifl file: a list of u32 block ids. The
// position of a block id in the list is its index in the diff data.
func ReadDiffLookup(r io.Reader) (map[uint32]uint32, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	lookup := make(map[uint32]uint32, len(data)/4)
	for i := 0; i+4 <= len(data); i += 4 {
		lookup[binary.LittleEndian.Uint32(data[i:])] = uint32(i / 4)
	}
	return lookup, nil
}

func openDiffLookup(path string) (map[uint32]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadDiffLookup(f)
}

// MapDiffReader reads patched terrain blocks from mapdif*.mul.
type MapDiffReader struct {
	lookup map[uint32]uint32
	diff   io.ReaderAt
	c      io.Closer
}

// NewMapDiffReader reads patched blocks from diff using lookup.
func NewMapDiffReader(lookup map[uint32]uint32, diff io.ReaderAt) *MapDiffReader {
	return &MapDiffReader{lookup: lookup, diff: diff}
}

// OpenMapDiff opens mapdifl*.mul and mapdif*.mul.
func OpenMapDiff(lookupPath, diffPath string) (*MapDiffReader, error) {
	lookup, err := openDiffLookup(lookupPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(diffPath)
	if err != nil {
		return nil, err
	}
	d := NewMapDiffReader(lookup, f)
	d.c = f
	return d, nil
}

// Close closes the file opened by OpenMapDiff.
func (d *MapDiffReader) Close() error {
	if d.c == nil {
		return nil
	}
	return d.c.Close()
}

// Len returns the number of patched blocks.
func (d *MapDiffReader) Len() int { return len(d.lookup) }

// Read returns the patched version of block id. ok is false when the block
// is not patched and the base block applies.
func (d *MapDiffReader) Read(id uint32) (block *Block, ok bool, err error) {
	idx, ok := d.lookup[id]
	if !ok {
		return nil, false, nil
	}
	block, err = readBlock(d.diff, idx)
	if err != nil {
		return nil, true, fmt.Errorf("map diff for block %d: %w", id, err)
	}
	return block, true, nil
}

// StaticDiffReader reads patched statics from stadif*.mul/stadifi*.mul.
type StaticDiffReader struct {
	lookup map[uint32]uint32
	mul    *mul.Reader
}

// NewStaticDiffReader reads patched statics from r using lookup.
func NewStaticDiffReader(lookup map[uint32]uint32, r *mul.Reader) *StaticDiffReader {
	return &StaticDiffReader{lookup: lookup, mul: r}
}

// OpenStaticDiff opens stadifl*.mul, stadifi*.mul and stadif*.mul.
func OpenStaticDiff(lookupPath, idxPath, mulPath string) (*StaticDiffReader, error) {
	lookup, err := openDiffLookup(lookupPath)
	if err != nil {
		return nil, err
	}
	r, err := mul.Open(idxPath, mulPath)
	if err != nil {
		return nil, err
	}
	return NewStaticDiffReader(lookup, r), nil
}

// Close closes the underlying container.
func (d *StaticDiffReader) Close() error {
	return d.mul.Close()
}

// Len returns the number of patched blocks.
func (d *StaticDiffReader) Len() int { return len(d.lookup) }

// Read returns the patched statics of block id. ok is false when the block
// is not patched and the base statics apply.
func (d *StaticDiffReader) Read(id uint32) (statics []StaticLocation, ok bool, err error) {
	idx, ok := d.lookup[id]
	if !ok {
		return nil, false, nil
	}
	statics, err = readStatics(d.mul, idx)
	if err != nil {
		return nil, true, fmt.Errorf("static diff for block %d: %w", id, err)
	}
	return statics, true, nil
}

// Facet reads blocks with patches applied over the base files. Statics and
// the diff readers may be nil; a facet without statics has none anywhere.
type Facet struct {
	Map         *MapReader
	Statics     *StaticReader
	MapDiff     *MapDiffReader
	StaticsDiff *StaticDiffReader
}

// Block returns terrain block id, patched if a patch exists.
func (f *Facet) Block(id uint32) (*Block, error) {
	if f.MapDiff != nil {
		b, ok, err := f.MapDiff.Read(id)
		if ok {
			return b, err
		}
	}
	return f.Map.ReadBlock(id)
}

// StaticsBlock returns the statics of block id, patched if a patch exists.
func (f *Facet) StaticsBlock(id uint32) ([]StaticLocation, error) {
	if f.StaticsDiff != nil {
		s, ok, err := f.StaticsDiff.Read(id)
		if ok {
			return s, err
		}
	}
	if f.Statics == nil {
		return nil, nil
	}
	return f.Statics.ReadBlock(id)
}
