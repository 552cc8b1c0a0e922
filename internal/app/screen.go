// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/leveler/internal/dial"
	"github.com/relabs-tech/leveler/internal/layout"
	"github.com/relabs-tech/leveler/internal/orientation"
)

// Frame is what a screen draws on each animation frame.
type Frame struct {
	Rotation float64 `json:"rotation"`
	Degrees  int     `json:"degrees"`
	Label    string  `json:"label"`
}

// dialScreen is one visible dial: its own rotator and animator plus the
// label text.
type dialScreen struct {
	rotator *dial.Rotator

	mu       sync.Mutex
	geom     layout.Geometry
	haveGeom bool
	label    string
	degrees  int
	running  bool
}

func newDialScreen(params dial.Params, fps int) *dialScreen {
	return &dialScreen{rotator: dial.NewRotator(params, fps)}
}

// Layout positions the dial for the given screen and attaches the spring.
// Nothing changes when the geometry is the same as last time. It reports
// false, leaving the screen as it was, when the needle size is missing.
// The animator's frame loop runs until ctx is done.
func (s *dialScreen) Layout(ctx context.Context, bounds, label layout.Rect, needle layout.Size) (layout.Geometry, bool) {
	g, ok := layout.PositionDial(bounds, label, needle)
	if !ok {
		return layout.Geometry{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.haveGeom && s.geom == g {
		return g, true
	}
	s.geom = g
	s.haveGeom = true

	s.rotator.Place(g)
	s.rotator.Attach()

	if !s.running {
		s.running = true
		animator := s.rotator.Animator()
		go func() {
			if err := animator.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn().Str("component", "screen").Err(err).Msg("animator stopped")
			}
		}()
	}
	return g, true
}

// Rotate points the dial at angle and updates the label. The label changes
// even before the dial is attached.
func (s *dialScreen) Rotate(angle float64) {
	s.rotator.Rotate(angle)

	s.mu.Lock()
	s.label = orientation.Label(angle)
	s.degrees = orientation.Degrees(angle)
	s.mu.Unlock()
}

// Frame snapshots the current rotation and label.
func (s *dialScreen) Frame() Frame {
	rot := s.rotator.Rotation()
	s.mu.Lock()
	defer s.mu.Unlock()
	return Frame{Rotation: rot, Degrees: s.degrees, Label: s.label}
}

// Geometry returns the current layout, if any.
func (s *dialScreen) Geometry() (layout.Geometry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.geom, s.haveGeom
}
