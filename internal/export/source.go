package export

import (
	"fmt"
	"image"

	"github.com/rcarmo/uomul/internal/anim"
	"github.com/rcarmo/uomul/internal/art"
	"github.com/rcarmo/uomul/internal/config"
	"github.com/rcarmo/uomul/internal/gump"
	"github.com/rcarmo/uomul/internal/logging"
	"github.com/rcarmo/uomul/internal/mul"
	"github.com/rcarmo/uomul/internal/texmap"
)

// Kind names a family of indexed image records.
type Kind string

const (
	KindTile    Kind = "tile"
	KindStatic  Kind = "static"
	KindGump    Kind = "gump"
	KindAnim    Kind = "anim"
	KindTexture Kind = "texmap"
)

// Kinds lists every exportable kind.
var Kinds = []Kind{KindTile, KindStatic, KindGump, KindAnim, KindTexture}

// ParseKind parses a kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("export: unknown kind %q", s)
}

// Files returns the index and data file names for the kind.
func (k Kind) Files(files config.FileNames) (idx, data string, err error) {
	switch k {
	case KindTile, KindStatic:
		return files.ArtIndex, files.Art, nil
	case KindGump:
		return files.GumpIndex, files.Gump, nil
	case KindAnim:
		return files.AnimIndex, files.Anim, nil
	case KindTexture:
		return files.TextureIndex, files.Textures, nil
	default:
		return "", "", fmt.Errorf("export: unknown kind %q", k)
	}
}

// Source decodes the images stored under a record id. Animations yield one
// image per frame, everything else a single image. An animation frame that
// cannot be drawn is a nil entry, so frame numbers stay stable; a record
// whose frames all fail returns the error instead.
type Source interface {
	Images(id uint32) ([]image.Image, error)
	Len() (int, error)
	Close() error
}

type containerSource struct {
	mul    *mul.Reader
	images func(id uint32) ([]image.Image, error)
	// first and limit bound the container entries the kind owns; limit 0
	// means the end of the index.
	first, limit int
}

func (s *containerSource) Images(id uint32) ([]image.Image, error) { return s.images(id) }

func (s *containerSource) Close() error { return s.mul.Close() }

// Len returns the number of ids addressable for the kind.
func (s *containerSource) Len() (int, error) {
	n, err := s.mul.Len()
	if err != nil {
		return 0, err
	}
	if s.limit > 0 && n > s.limit {
		n = s.limit
	}
	return max(n-s.first, 0), nil
}

func one(img image.Image, err error) ([]image.Image, error) {
	if err != nil {
		return nil, err
	}
	return []image.Image{img}, nil
}

// NewSource decodes records of kind k from r.
func NewSource(k Kind, r *mul.Reader) (Source, error) {
	s := &containerSource{mul: r}
	switch k {
	case KindTile:
		a := art.NewReader(r)
		s.limit = art.StaticOffset
		s.images = func(id uint32) ([]image.Image, error) {
			t, err := a.ReadTile(id)
			if err != nil {
				return nil, err
			}
			return []image.Image{t.Image()}, nil
		}
	case KindStatic:
		a := art.NewReader(r)
		s.first = art.StaticOffset
		s.images = func(id uint32) ([]image.Image, error) {
			st, err := a.ReadStatic(id)
			if err != nil {
				return nil, err
			}
			return one(st.Image())
		}
	case KindGump:
		g := gump.NewReader(r)
		s.images = func(id uint32) ([]image.Image, error) {
			gp, err := g.ReadGump(id)
			if err != nil {
				return nil, err
			}
			return one(gp.Image())
		}
	case KindAnim:
		a := anim.NewReader(r)
		s.images = func(id uint32) ([]image.Image, error) {
			group, err := a.ReadGroup(id)
			if err != nil {
				return nil, err
			}
			frames, err := group.Images()
			out := make([]image.Image, len(frames))
			drawn := 0
			for i, f := range frames {
				if f != nil {
					out[i] = f
					drawn++
				}
			}
			if err != nil {
				if drawn == 0 {
					return nil, err
				}
				logging.Warn("anim %d: %d of %d frames skipped: %v", id, len(frames)-drawn, len(frames), err)
			}
			return out, nil
		}
	case KindTexture:
		t := texmap.NewReader(r)
		s.images = func(id uint32) ([]image.Image, error) {
			tex, err := t.ReadTexture(id)
			if err != nil {
				return nil, err
			}
			return []image.Image{tex.Image()}, nil
		}
	default:
		return nil, fmt.Errorf("export: unknown kind %q", k)
	}
	return s, nil
}

// OpenSource opens the container holding kind k under the data directory.
func OpenSource(k Kind, data config.DataConfig) (Source, error) {
	idx, mulName, err := k.Files(data.Files)
	if err != nil {
		return nil, err
	}
	r, err := mul.Open(data.Path(idx), data.Path(mulName))
	if err != nil {
		return nil, err
	}
	return NewSource(k, r)
}
