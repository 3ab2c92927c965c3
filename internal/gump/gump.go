// Package gump reads UI images out of gumpart.mul/gumpidx.mul. The index
// entry carries the image size: opt1 is the height and opt2 the width.
package gump

import (
	"fmt"

	"github.com/rcarmo/uomul/internal/codec"
	"github.com/rcarmo/uomul/internal/logging"
	"github.com/rcarmo/uomul/internal/mul"
)

// Reader decodes gumps from a container.
type Reader struct {
	mul *mul.Reader
}

// NewReader wraps an open container.
func NewReader(r *mul.Reader) *Reader {
	return &Reader{mul: r}
}

// Open opens gumpidx.mul and gumpart.mul.
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

// ReadGump reads and decodes the gump with the given id.
func (r *Reader) ReadGump(id uint32) (*codec.Gump, error) {
	rec, err := r.mul.Read(id)
	if err != nil {
		return nil, fmt.Errorf("gump: %w", err)
	}
	logging.Debug("gump: %d is %dx%d, %d bytes", id, rec.Opt2, rec.Opt1, rec.Length)

	g, err := codec.DecodeGump(rec.Data, rec.Opt2, rec.Opt1)
	if err != nil {
		return nil, fmt.Errorf("gump %d: %w", id, err)
	}
	return g, nil
}

// Append encodes g and appends it to w with its size in the index entry.
func Append(w *mul.Writer, g *codec.Gump) error {
	data, err := g.Encode()
	if err != nil {
		return err
	}
	return w.Append(data, mul.WithOpt1(g.Height), mul.WithOpt2(g.Width))
}
