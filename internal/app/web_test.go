// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/leveler/internal/config"
	"github.com/relabs-tech/leveler/internal/dial"
	"github.com/relabs-tech/leveler/internal/imu"
	"github.com/relabs-tech/leveler/internal/layout"
)

func newTestServer(t *testing.T) (*httptest.Server, *Sampler, *fakeAccel) {
	t.Helper()
	accel := &fakeAccel{}
	sampler := NewSampler(accel, time.Second)
	srv := httptest.NewServer(NewWebServer(sampler, dial.DefaultParams, 60).Handler())
	t.Cleanup(srv.Close)
	return srv, sampler, accel
}

func TestIndexPage(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "<title>Leveler</title>") {
		t.Fatalf("GET / = %d %q", resp.StatusCode, body)
	}

	resp, err = http.Get(srv.URL + "/needle.svg")
	if err != nil {
		t.Fatalf("GET /needle.svg: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /needle.svg = %d", resp.StatusCode)
	}
}

func TestTiltEndpoint(t *testing.T) {
	srv, sampler, accel := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/tilt")
	if err != nil {
		t.Fatalf("GET /api/tilt: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status before data = %d, want 503", resp.StatusCode)
	}

	accel.set(imu.Acceleration{X: 1, Y: 0})
	sampler.Tick()

	resp, err = http.Get(srv.URL + "/api/tilt")
	if err != nil {
		t.Fatalf("GET /api/tilt: %v", err)
	}
	defer resp.Body.Close()
	var got TiltReading
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Degrees != 90 || got.Label != "90°" {
		t.Fatalf("reading = %+v", got)
	}
}

func TestWebSocketScreen(t *testing.T) {
	srv, sampler, accel := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	req := clientMessage{
		Type:   "layout",
		Bounds: layout.Rect{W: 400, H: 700},
		Label:  layout.Rect{X: 100, Y: 40, W: 200, H: 60},
		Needle: layout.Size{W: 29, H: 58},
	}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("write layout: %v", err)
	}

	type message struct {
		Type     string      `json:"type"`
		Needle   layout.Rect `json:"needle"`
		FontSize float64     `json:"font_size"`
		Label    string      `json:"label"`
	}
	next := func() message {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var m message
		if err := conn.ReadJSON(&m); err != nil {
			t.Fatalf("read: %v", err)
		}
		return m
	}

	var reply message
	for reply.Type != "layout" {
		reply = next()
	}
	if reply.FontSize != 60 {
		t.Fatalf("font size = %v, want 60 for a compact screen", reply.FontSize)
	}
	if want := (layout.Rect{X: 55, Y: 120, W: 290, H: 580}); reply.Needle != want {
		t.Fatalf("needle = %+v, want %+v", reply.Needle, want)
	}
	if sampler.Screens() != 1 {
		t.Fatalf("screens = %d, want 1", sampler.Screens())
	}

	accel.set(imu.Acceleration{X: 1, Y: 0})
	sampler.Tick()

	deadline := time.Now().Add(2 * time.Second)
	for {
		m := next()
		if m.Type == "frame" && m.Label == "90°" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("no frame with the new label")
		}
	}

	conn.Close()
	deadline = time.Now().Add(2 * time.Second)
	for sampler.Screens() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("screen not removed after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDialParams(t *testing.T) {
	cfg := config.Default()
	cfg.SpringDamping = 0.9
	p := DialParams(cfg)
	want := dial.Params{AnchorDistance: 4, Damping: 0.9, Frequency: 0.5, AngularResistance: 2}
	if p != want {
		t.Fatalf("DialParams = %+v, want %+v", p, want)
	}
}
