// Package hues reads the colour ramps in hues.mul.
//
// The file is an unindexed sequence of 708-byte groups:
//
//	header:u32 | hue x 8
//	hue: colors:u16 x 32 | start:u16 | end:u16 | name:[20]byte
package hues

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/lunixbochs/struc"

	"github.com/rcarmo/uomul/internal/codec"
	"github.com/rcarmo/uomul/internal/cstring"
)

const (
	// HueSize is the encoded size of a single hue.
	HueSize = 32*2 + 2 + 2 + nameSize
	// GroupSize is the encoded size of a group of GroupHues hues.
	GroupSize = 4 + GroupHues*HueSize
	// GroupHues is the number of hues in a group.
	GroupHues = 8

	nameSize = 20
)

var structOptions = &struc.Options{Order: binary.LittleEndian}

type hueRecord struct {
	Colors [32]uint16
	Start  uint16
	End    uint16
	Name   [nameSize]byte
}

type groupHeader struct {
	Header uint32
}

// Hue is a 32 step colour ramp.
type Hue struct {
	Colors [32]codec.Color16
	Start  codec.Color16
	End    codec.Color16
	Name   string
}

func (h *Hue) record() *hueRecord {
	rec := &hueRecord{Start: uint16(h.Start), End: uint16(h.End)}
	for i, c := range h.Colors {
		rec.Colors[i] = uint16(c)
	}
	copy(rec.Name[:], cstring.Padded(h.Name, nameSize))
	return rec
}

// Encode returns the 88 byte form of the hue. Names longer than 20 bytes are
// truncated.
func (h *Hue) Encode() []byte {
	var buf bytes.Buffer
	// Packing fixed-size fields into a bytes.Buffer does not fail.
	_ = struc.PackWithOptions(&buf, h.record(), structOptions)
	return buf.Bytes()
}

// Group is eight hues sharing an opaque header.
type Group struct {
	Header uint32
	Hues   [GroupHues]Hue
}

// Encode returns the 708 byte form of the group.
func (g *Group) Encode() []byte {
	var buf bytes.Buffer
	_ = struc.PackWithOptions(&buf, &groupHeader{Header: g.Header}, structOptions)
	for i := range g.Hues {
		buf.Write(g.Hues[i].Encode())
	}
	return buf.Bytes()
}

// DecodeGroup parses one 708 byte group.
func DecodeGroup(data []byte) (*Group, error) {
	if len(data) < GroupSize {
		return nil, fmt.Errorf("%w: hue group needs %d bytes, got %d", codec.ErrTruncated, GroupSize, len(data))
	}

	r := bytes.NewReader(data[:GroupSize])
	var hdr groupHeader
	if err := struc.UnpackWithOptions(r, &hdr, structOptions); err != nil {
		return nil, err
	}

	g := &Group{Header: hdr.Header}
	for i := range g.Hues {
		var rec hueRecord
		if err := struc.UnpackWithOptions(r, &rec, structOptions); err != nil {
			return nil, fmt.Errorf("hue %d: %w", i, err)
		}
		h := &g.Hues[i]
		for j, c := range rec.Colors {
			h.Colors[j] = codec.Color16(c)
		}
		h.Start = codec.Color16(rec.Start)
		h.End = codec.Color16(rec.End)
		h.Name = cstring.CString(rec.Name[:]).String()
	}
	return g, nil
}

// Reader reads hue groups from hues.mul.
type Reader struct {
	r    io.ReaderAt
	size int64
	c    io.Closer
}

// NewReader reads groups from r, which holds size bytes.
func NewReader(r io.ReaderAt, size int64) *Reader {
	return &Reader{r: r, size: size}
}

// Open opens hues.mul.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r := NewReader(f, fi.Size())
	r.c = f
	return r, nil
}

// Close closes the file opened by Open.
func (r *Reader) Close() error {
	if r.c == nil {
		return nil
	}
	return r.c.Close()
}

// Len returns the number of complete groups.
func (r *Reader) Len() int {
	return int(r.size / GroupSize)
}

// ReadGroup reads the group with the given id.
func (r *Reader) ReadGroup(id uint32) (*Group, error) {
	buf := make([]byte, GroupSize)
	n, err := r.r.ReadAt(buf, int64(id)*GroupSize)
	if n == len(buf) {
		err = nil
	}
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("hue group %d: %w", id, err)
	}
	return DecodeGroup(buf)
}

// ReadHue reads a hue by its flat index, group*8 + entry.
func (r *Reader) ReadHue(index uint32) (*Hue, error) {
	g, err := r.ReadGroup(index / GroupHues)
	if err != nil {
		return nil, err
	}
	return &g.Hues[index%GroupHues], nil
}
