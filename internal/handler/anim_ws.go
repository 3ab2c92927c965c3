package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rcarmo/uomul/internal/export"
	"github.com/rcarmo/uomul/internal/logging"
)

const (
	writeWait       = 10 * time.Second
	maxFrameDelay   = 5 * time.Second
	defaultFrameGap = 100 * time.Millisecond
)

func (v *Viewer) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 64 * 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || OriginAllowed(origin, v.AllowedOrigins, r.Host)
		},
	}
}

// AnimStream streams the frames of an animation group over a websocket, one
// PNG per binary message, then closes normally. The optional "delay" query
// parameter spaces the frames out.
func (v *Viewer) AnimStream(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	delay := defaultFrameGap
	if s := r.URL.Query().Get("delay"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d < 0 || d > maxFrameDelay {
			http.Error(w, "invalid delay", http.StatusBadRequest)
			return
		}
		delay = d
	}

	// Decode before upgrading so a bad id is still a plain HTTP error.
	frames, err := v.images(export.KindAnim, id)
	if err != nil {
		v.fail(w, r, err)
		return
	}

	conn, err := v.upgrader().Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		logging.Warn("anim %d: websocket upgrade: %v", id, err)
		return
	}
	defer conn.Close()

	logging.Debug("anim %d: streaming %d frames to %s", id, len(frames), r.RemoteAddr)

	ctx := r.Context()
	sent := 0
	for i, frame := range frames {
		if frame == nil {
			continue
		}
		if sent > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}

		var buf bytes.Buffer
		if err := export.Encode(&buf, export.Scale(frame, v.Scale), export.FormatPNG); err != nil {
			logging.Error("anim %d frame %d: %v", id, i, err)
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.BinaryMessage, buf.Bytes()); err != nil {
			logging.Debug("anim %d: client went away: %v", id, err)
			return
		}
		sent++
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
