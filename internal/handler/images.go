// Package handler serves decoded client art over HTTP.
package handler

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/rcarmo/uomul/internal/codec"
	"github.com/rcarmo/uomul/internal/config"
	"github.com/rcarmo/uomul/internal/export"
	"github.com/rcarmo/uomul/internal/fonts"
	"github.com/rcarmo/uomul/internal/hues"
	"github.com/rcarmo/uomul/internal/logging"
	"github.com/rcarmo/uomul/internal/mul"
)

// Viewer serves record images. Every request opens its own readers.
type Viewer struct {
	Data           config.DataConfig
	Scale          int
	AllowedOrigins []string

	// OpenSource, OpenHues and OpenFonts default to reading from Data.
	OpenSource func(kind export.Kind) (export.Source, error)
	OpenHues   func() (*hues.Reader, error)
	OpenFonts  func() ([]*fonts.Font, error)
}

// NewViewer returns a viewer over the files in data.
func NewViewer(data config.DataConfig) *Viewer {
	v := &Viewer{Data: data, Scale: 1}
	v.OpenSource = func(kind export.Kind) (export.Source, error) {
		return export.OpenSource(kind, v.Data)
	}
	v.OpenHues = func() (*hues.Reader, error) {
		return hues.Open(v.Data.Path(v.Data.Files.Hues))
	}
	v.OpenFonts = func() ([]*fonts.Font, error) {
		return fonts.Open(v.Data.Path(v.Data.Files.Fonts))
	}
	return v
}

// Register adds the viewer routes to mux.
func (v *Viewer) Register(mux *http.ServeMux) {
	for _, kind := range []export.Kind{export.KindTile, export.KindStatic, export.KindGump, export.KindTexture} {
		mux.HandleFunc("GET /"+string(kind)+"/{file}", v.record(kind))
	}
	mux.HandleFunc("GET /anim/{id}/ws", v.AnimStream)
	mux.HandleFunc("GET /anim/{id}/{file}", v.animFrame)
	mux.HandleFunc("GET /hues/{file}", v.hueGroup)
	mux.HandleFunc("GET /fonts/{font}/{file}", v.glyph)
}

// parseFile splits "12.png" into an id and an output format.
func parseFile(file string) (uint32, export.Format, error) {
	ext := path.Ext(file)
	format, err := export.ParseFormat(strings.TrimPrefix(ext, "."))
	if err != nil {
		return 0, "", err
	}
	id, err := strconv.ParseUint(strings.TrimSuffix(file, ext), 10, 32)
	if err != nil {
		return 0, "", fmt.Errorf("invalid id %q", file)
	}
	return uint32(id), format, nil
}

func parseID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint32(id), nil
}

// status maps a read error onto an HTTP status.
func status(err error) int {
	switch {
	case errors.Is(err, mul.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, codec.ErrTruncated),
		errors.Is(err, codec.ErrInvalidTileSize),
		errors.Is(err, codec.ErrMalformedDimensions),
		errors.Is(err, codec.ErrInvariantViolation),
		errors.Is(err, codec.ErrMalformedGump),
		errors.Is(err, codec.ErrUnsupportedFrame),
		errors.Is(err, codec.ErrInvalidTextureSize):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (v *Viewer) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := status(err)
	if code == http.StatusInternalServerError {
		logging.Error("%s %s: %v", r.Method, r.URL.Path, err)
	} else {
		logging.Debug("%s %s: %v", r.Method, r.URL.Path, err)
	}
	http.Error(w, http.StatusText(code), code)
}

func (v *Viewer) write(w http.ResponseWriter, r *http.Request, img image.Image, format export.Format) {
	var buf bytes.Buffer
	if err := export.Encode(&buf, export.Scale(img, v.Scale), format); err != nil {
		v.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

func (v *Viewer) images(kind export.Kind, id uint32) ([]image.Image, error) {
	src, err := v.OpenSource(kind)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return src.Images(id)
}

func (v *Viewer) record(kind export.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, format, err := parseFile(r.PathValue("file"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		imgs, err := v.images(kind, id)
		if err != nil {
			v.fail(w, r, err)
			return
		}
		v.write(w, r, imgs[0], format)
	}
}

func (v *Viewer) animFrame(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	frame, format, err := parseFile(r.PathValue("file"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	frames, err := v.images(export.KindAnim, id)
	if err != nil {
		v.fail(w, r, err)
		return
	}
	if int(frame) >= len(frames) {
		http.NotFound(w, r)
		return
	}
	if frames[frame] == nil {
		v.fail(w, r, fmt.Errorf("anim %d frame %d: %w", id, frame, codec.ErrUnsupportedFrame))
		return
	}
	v.write(w, r, frames[frame], format)
}

// hueSwatch draws the 32 colours of each hue in a group as 8x8 squares, one
// hue per row.
func hueSwatch(g *hues.Group) *image.NRGBA {
	const cell = 8
	img := image.NewNRGBA(image.Rect(0, 0, 32*cell, hues.GroupHues*cell))
	for row, h := range g.Hues {
		for col, c := range h.Colors {
			nc := c.NRGBA()
			for y := 0; y < cell; y++ {
				for x := 0; x < cell; x++ {
					img.SetNRGBA(col*cell+x, row*cell+y, nc)
				}
			}
		}
	}
	return img
}

func (v *Viewer) hueGroup(w http.ResponseWriter, r *http.Request) {
	id, format, err := parseFile(r.PathValue("file"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	hr, err := v.OpenHues()
	if err != nil {
		v.fail(w, r, err)
		return
	}
	defer hr.Close()

	if int(id) >= hr.Len() {
		http.NotFound(w, r)
		return
	}
	g, err := hr.ReadGroup(id)
	if err != nil {
		v.fail(w, r, err)
		return
	}
	v.write(w, r, hueSwatch(g), format)
}

func (v *Viewer) glyph(w http.ResponseWriter, r *http.Request) {
	fontID, err := parseID(r.PathValue("font"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	char, format, err := parseFile(r.PathValue("file"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	all, err := v.OpenFonts()
	if err != nil {
		v.fail(w, r, err)
		return
	}
	if int(fontID) >= len(all) || char >= fonts.Characters {
		http.NotFound(w, r)
		return
	}

	c := &all[fontID].Characters[char]
	if c.Width == 0 || c.Height == 0 {
		http.NotFound(w, r)
		return
	}
	v.write(w, r, c.Image(), format)
}
