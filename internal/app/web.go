// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/leveler/internal/dial"
	"github.com/relabs-tech/leveler/internal/layout"
	"github.com/relabs-tech/leveler/internal/logger"
)

//go:embed web
var webAssets embed.FS

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

const (
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 25 * time.Second
)

// clientMessage is sent by the page whenever its size or label changes.
type clientMessage struct {
	Type   string      `json:"type"` // layout
	Bounds layout.Rect `json:"bounds"`
	Label  layout.Rect `json:"label"`
	Needle layout.Size `json:"needle"`
}

// layoutMessage answers a layout request.
type layoutMessage struct {
	Type     string      `json:"type"` // layout
	Dial     layout.Rect `json:"dial"`
	Needle   layout.Rect `json:"needle"`
	FontSize float64     `json:"font_size"`
}

type frameMessage struct {
	Type string `json:"type"` // frame
	Frame
}

// WebServer serves the dial page and one animated dial per websocket.
type WebServer struct {
	sampler *Sampler
	params  dial.Params
	fps     int
	mux     *http.ServeMux
}

// NewWebServer wires the HTTP routes.
func NewWebServer(sampler *Sampler, params dial.Params, fps int) *WebServer {
	w := &WebServer{
		sampler: sampler,
		params:  params,
		fps:     fps,
		mux:     http.NewServeMux(),
	}

	static, err := fs.Sub(webAssets, "web")
	if err != nil {
		panic(err) // embedded path is fixed at build time
	}
	w.mux.Handle("/", http.FileServer(http.FS(static)))
	w.mux.HandleFunc("/api/tilt", w.handleTilt)
	w.mux.HandleFunc("/ws", w.handleWS)
	return w
}

// Handler returns the root handler.
func (w *WebServer) Handler() http.Handler { return w.mux }

func (w *WebServer) handleTilt(rw http.ResponseWriter, r *http.Request) {
	reading, ok := w.sampler.Last()
	if !ok {
		http.Error(rw, "no data yet", http.StatusServiceUnavailable)
		return
	}

	rw.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(rw).Encode(reading); err != nil {
		log.Warn().Str("component", "web").Err(err).Msg("json encode error")
	}
}

// handleWS runs one screen for the lifetime of the connection. The read
// loop handles layout requests; a single writer goroutine sends layout
// replies, frames and pings.
func (w *WebServer) handleWS(rw http.ResponseWriter, r *http.Request) {
	lg := logger.Component("web").With().Str("remote", r.RemoteAddr).Logger()

	conn, err := upgrader.Upgrade(rw, r, nil)
	if err != nil {
		lg.Warn().Err(err).Msg("websocket upgrade error")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	screen := newDialScreen(w.params, w.fps)
	w.sampler.Add(screen)
	defer w.sampler.Remove(screen)
	lg.Info().Msg("screen connected")

	// Show the label immediately if a tilt is already known.
	if reading, ok := w.sampler.Last(); ok {
		screen.Rotate(reading.Angle)
	}

	replies := make(chan layoutMessage, 4)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer conn.Close() // unblocks the read loop
		defer cancel()
		w.writeLoop(ctx, conn, screen, replies)
	}()

	conn.SetReadLimit(1 << 16)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				lg.Warn().Err(err).Msg("websocket read error")
			}
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		switch msg.Type {
		case "layout":
			g, ok := screen.Layout(ctx, msg.Bounds, msg.Label, msg.Needle)
			if !ok {
				lg.Debug().Msg("layout skipped: no needle size or no room")
				continue
			}
			reply := layoutMessage{
				Type:     "layout",
				Dial:     g.Dial,
				Needle:   g.Needle,
				FontSize: layout.LabelFontSize(layout.SizeClassFor(msg.Bounds.W)),
			}
			select {
			case replies <- reply:
			case <-ctx.Done():
			}
		default:
			lg.Debug().Msgf("ignoring message type %q", msg.Type)
		}
		if ctx.Err() != nil {
			break
		}
	}

	cancel()
	<-writerDone
	lg.Info().Msg("screen disconnected")
}

func (w *WebServer) writeLoop(ctx context.Context, conn *websocket.Conn, screen *dialScreen, replies <-chan layoutMessage) {
	frames := time.NewTicker(time.Second / time.Duration(w.fps))
	defer frames.Stop()
	pings := time.NewTicker(wsPingInterval)
	defer pings.Stop()

	write := func(v any) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(v); err != nil {
			log.Debug().Str("component", "web").Err(err).Msg("websocket write error")
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return
		case reply := <-replies:
			if !write(reply) {
				return
			}
		case <-frames.C:
			if !write(frameMessage{Type: "frame", Frame: screen.Frame()}) {
				return
			}
		case <-pings.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
