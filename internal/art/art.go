// Package art reads land tiles and static graphics out of art.mul/artidx.mul.
//
// Land tiles occupy ids below StaticOffset. Statics are addressed by their own
// id and stored at StaticOffset+id in the same container.
package art

import (
	"fmt"

	"github.com/rcarmo/uomul/internal/codec"
	"github.com/rcarmo/uomul/internal/logging"
	"github.com/rcarmo/uomul/internal/mul"
)

// StaticOffset is the container index of static 0.
const StaticOffset = 0x4000

// Art is either a land tile or a static graphic.
type Art struct {
	Tile   *codec.Tile
	Static *codec.Static
}

// IsStatic reports whether the art is a static graphic.
func (a *Art) IsStatic() bool { return a.Static != nil }

// Encode returns the record bytes for the art.
func (a *Art) Encode() ([]byte, error) {
	if a.Static != nil {
		return a.Static.Encode()
	}
	return a.Tile.Encode(), nil
}

// Reader decodes art records from a container.
type Reader struct {
	mul *mul.Reader
}

// NewReader wraps an open container.
func NewReader(r *mul.Reader) *Reader {
	return &Reader{mul: r}
}

// Open opens artidx.mul and art.mul.
func Open(idxPath, mulPath string) (*Reader, error) {
	r, err := mul.Open(idxPath, mulPath)
	if err != nil {
		return nil, err
	}
	return NewReader(r), nil
}

// Close closes the underlying container.
func (r *Reader) Close() error {
	return r.mul.Close()
}

// ReadTile reads the land tile with the given id.
func (r *Reader) ReadTile(id uint32) (*codec.Tile, error) {
	rec, err := r.mul.Read(id)
	if err != nil {
		return nil, fmt.Errorf("art tile: %w", err)
	}
	logging.Debug("art: tile %d, %d bytes at 0x%X", id, rec.Length, rec.Start)

	tile, err := codec.DecodeTile(rec.Data)
	if err != nil {
		return nil, fmt.Errorf("art tile %d: %w", id, err)
	}
	return tile, nil
}

// ReadStatic reads the static graphic with the given static id.
func (r *Reader) ReadStatic(id uint32) (*codec.Static, error) {
	rec, err := r.mul.Read(id + StaticOffset)
	if err != nil {
		return nil, fmt.Errorf("art static: %w", err)
	}
	logging.Debug("art: static %d, %d bytes at 0x%X", id, rec.Length, rec.Start)

	static, err := codec.DecodeStatic(rec.Data)
	if err != nil {
		return nil, fmt.Errorf("art static %d: %w", id, err)
	}
	return static, nil
}

// Read reads a raw container id: ids below StaticOffset are decoded as land
// tiles, the rest as statics.
func (r *Reader) Read(id uint32) (*Art, error) {
	if id < StaticOffset {
		tile, err := r.ReadTile(id)
		if err != nil {
			return nil, err
		}
		return &Art{Tile: tile}, nil
	}

	static, err := r.ReadStatic(id - StaticOffset)
	if err != nil {
		return nil, err
	}
	return &Art{Static: static}, nil
}
