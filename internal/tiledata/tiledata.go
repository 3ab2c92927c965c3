// Package tiledata reads tile properties from tiledata.mul.
//
// The file holds 512 groups of land entries followed by the static groups.
// Every group is a 4-byte header and 32 entries.
package tiledata

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/lunixbochs/struc"

	"github.com/rcarmo/uomul/internal/cstring"
)

// Flags describe tile behaviour.
type Flags uint32

const (
	FlagBackground Flags = 1 << iota
	FlagWeapon
	FlagTransparent
	FlagTranslucent
	FlagWall
	FlagDamaging
	FlagImpassable
	FlagWet
	FlagUnknown
	FlagSurface
	FlagBridge
	FlagStackable
	FlagWindow
	FlagNoShoot
	FlagPrefixA
	FlagPrefixAn
	FlagInternal
	FlagFoliage
	FlagPartialHue
	FlagUnknown1
	FlagMap
	FlagContainer
	FlagWearable
	FlagLightSource
	FlagAnimated
	FlagNoDiagonal
	FlagUnknown2
	FlagArmor
	FlagRoof
	FlagDoor
	FlagStairBack
	FlagStairRight
)

// Has reports whether every bit of f2 is set.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

const (
	// LandEntrySize and StaticEntrySize are the encoded entry sizes.
	LandEntrySize   = 26
	StaticEntrySize = 37
	// GroupEntries is the number of entries after each group header.
	GroupEntries = 32
	// LandTiles is the number of land entries.
	LandTiles = 0x4000
	// StaticsStart is the file offset of the first static group.
	StaticsStart = LandTiles / GroupEntries * (groupHeaderSize + GroupEntries*LandEntrySize)

	groupHeaderSize = 4
	nameSize        = 20
)

var structOptions = &struc.Options{Order: binary.LittleEndian}

// LandOffset returns the file offset of land entry id.
func LandOffset(id uint32) int64 {
	return int64(id)*LandEntrySize + int64(id/GroupEntries+1)*groupHeaderSize
}

// StaticOffset returns the file offset of static entry id.
func StaticOffset(id uint32) int64 {
	return StaticsStart + int64(id)*StaticEntrySize + int64(id/GroupEntries+1)*groupHeaderSize
}

type landRecord struct {
	Flags   uint32
	Texture uint16
	Name    [nameSize]byte
}

type staticRecord struct {
	Flags    uint32
	Weight   uint8
	Quality  uint8
	Unknown  uint16
	Unknown1 uint8
	Quantity uint8
	Anim     uint16
	Unknown2 uint8
	Hue      uint8
	Unknown3 uint16
	Height   uint8
	Name     [nameSize]byte
}

// LandTile describes a land tile.
type LandTile struct {
	Flags   Flags
	Texture uint16
	Name    string
}

// Encode returns the 26 byte entry.
func (t *LandTile) Encode() []byte {
	rec := &landRecord{Flags: uint32(t.Flags), Texture: t.Texture}
	copy(rec.Name[:], cstring.Padded(t.Name, nameSize))
	return pack(rec)
}

// StaticTile describes an item graphic. Quality doubles as layer or light
// id, Quantity as weapon or armor class and Height as container capacity,
// depending on the flags.
type StaticTile struct {
	Flags    Flags
	Weight   uint8
	Quality  uint8
	Quantity uint8
	Anim     uint16
	Hue      uint8
	Height   uint8
	Name     string
}

// Encode returns the 37 byte entry. The unknown fields are written as zero.
func (t *StaticTile) Encode() []byte {
	rec := &staticRecord{
		Flags:    uint32(t.Flags),
		Weight:   t.Weight,
		Quality:  t.Quality,
		Quantity: t.Quantity,
		Anim:     t.Anim,
		Hue:      t.Hue,
		Height:   t.Height,
	}
	copy(rec.Name[:], cstring.Padded(t.Name, nameSize))
	return pack(rec)
}

func pack(v any) []byte {
	var buf bytes.Buffer
	_ = struc.PackWithOptions(&buf, v, structOptions)
	return buf.Bytes()
}

// Reader reads entries from tiledata.mul.
type Reader struct {
	r io.ReaderAt
	c io.Closer
}

// NewReader reads entries from r.
func NewReader(r io.ReaderAt) *Reader {
	return &Reader{r: r}
}

// Open opens tiledata.mul.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{r: f, c: f}, nil
}

// Close closes the file opened by Open.
func (r *Reader) Close() error {
	if r.c == nil {
		return nil
	}
	return r.c.Close()
}

func (r *Reader) unpack(off int64, size int, v any) error {
	buf := make([]byte, size)
	n, err := r.r.ReadAt(buf, off)
	if n == size {
		err = nil
	}
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	return struc.UnpackWithOptions(bytes.NewReader(buf), v, structOptions)
}

// LandTile reads land entry id.
func (r *Reader) LandTile(id uint32) (*LandTile, error) {
	if id >= LandTiles {
		return nil, fmt.Errorf("tiledata: land id 0x%X out of range", id)
	}

	var rec landRecord
	if err := r.unpack(LandOffset(id), LandEntrySize, &rec); err != nil {
		return nil, fmt.Errorf("tiledata: land %d: %w", id, err)
	}
	return &LandTile{
		Flags:   Flags(rec.Flags),
		Texture: rec.Texture,
		Name:    cstring.CString(rec.Name[:]).String(),
	}, nil
}

// StaticTile reads static entry id.
func (r *Reader) StaticTile(id uint32) (*StaticTile, error) {
	var rec staticRecord
	if err := r.unpack(StaticOffset(id), StaticEntrySize, &rec); err != nil {
		return nil, fmt.Errorf("tiledata: static %d: %w", id, err)
	}
	return &StaticTile{
		Flags:    Flags(rec.Flags),
		Weight:   rec.Weight,
		Quality:  rec.Quality,
		Quantity: rec.Quantity,
		Anim:     rec.Anim,
		Hue:      rec.Hue,
		Height:   rec.Height,
		Name:     cstring.CString(rec.Name[:]).String(),
	}, nil
}
