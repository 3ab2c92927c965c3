// Package anim reads animation groups out of anim.mul/anim.idx.
package anim

import (
	"fmt"

	"github.com/rcarmo/uomul/internal/codec"
	"github.com/rcarmo/uomul/internal/logging"
	"github.com/rcarmo/uomul/internal/mul"
)

// Reader decodes animation groups from a container.
type Reader struct {
	mul *mul.Reader
}

// NewReader wraps an open container.
func NewReader(r *mul.Reader) *Reader {
	return &Reader{mul: r}
}

// Open opens anim.idx and anim.mul.
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

// ReadGroup reads and decodes the animation group with the given id.
func (r *Reader) ReadGroup(id uint32) (*codec.AnimationGroup, error) {
	rec, err := r.mul.Read(id)
	if err != nil {
		return nil, fmt.Errorf("anim: %w", err)
	}

	g, err := codec.DecodeAnimation(rec.Data)
	if err != nil {
		return nil, fmt.Errorf("anim %d: %w", id, err)
	}
	logging.Debug("anim: group %d has %d frames", id, len(g.Frames))
	return g, nil
}
