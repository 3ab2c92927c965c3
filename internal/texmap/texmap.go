// Package texmap reads the stretched terrain textures out of
// texmaps.mul/texidx.mul.
package texmap

import (
	"fmt"

	"github.com/rcarmo/uomul/internal/codec"
	"github.com/rcarmo/uomul/internal/mul"
)

// Reader decodes textures from a container.
type Reader struct {
	mul *mul.Reader
}

// NewReader wraps an open container.
func NewReader(r *mul.Reader) *Reader {
	return &Reader{mul: r}
}

// Open opens texidx.mul and texmaps.mul.
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

// ReadTexture reads the texture with the given id.
func (r *Reader) ReadTexture(id uint32) (*codec.Texture, error) {
	rec, err := r.mul.Read(id)
	if err != nil {
		return nil, fmt.Errorf("texmap: %w", err)
	}

	tex, err := codec.DecodeTexture(rec.Data)
	if err != nil {
		return nil, fmt.Errorf("texmap %d: %w", id, err)
	}
	return tex, nil
}
