// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/leveler/internal/imu"
	"github.com/relabs-tech/leveler/internal/orientation"
	"github.com/relabs-tech/leveler/internal/sensors"
)

// Screen is anything that shows the dial for a tilt angle.
type Screen interface {
	Rotate(angle float64)
}

// TiltReading is one sampled tilt, as served by /api/tilt.
type TiltReading struct {
	Angle   float64          `json:"angle"`
	Degrees int              `json:"degrees"`
	Label   string           `json:"label"`
	Gravity imu.Acceleration `json:"gravity"`
	Time    time.Time        `json:"time"`
}

// Sampler polls the accelerometer and fans the tilt out to every screen.
type Sampler struct {
	accel    sensors.Accelerometer
	interval time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	screens  map[Screen]struct{}
	last     TiltReading
	haveLast bool
}

// NewSampler polls accel every interval once Run is called.
func NewSampler(accel sensors.Accelerometer, interval time.Duration) *Sampler {
	return &Sampler{
		accel:    accel,
		interval: interval,
		now:      time.Now,
		screens:  make(map[Screen]struct{}),
	}
}

// Add registers a screen for tilt updates.
func (s *Sampler) Add(sc Screen) {
	s.mu.Lock()
	s.screens[sc] = struct{}{}
	s.mu.Unlock()
}

// Remove unregisters a screen.
func (s *Sampler) Remove(sc Screen) {
	s.mu.Lock()
	delete(s.screens, sc)
	s.mu.Unlock()
}

// Screens returns the number of registered screens.
func (s *Sampler) Screens() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.screens)
}

// Last returns the most recent reading.
func (s *Sampler) Last() (TiltReading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.haveLast
}

// Tick runs one poll. With no sample available it does nothing and
// reports false.
func (s *Sampler) Tick() bool {
	g, ok := s.accel.Latest()
	if !ok {
		return false
	}

	angle := orientation.TiltFromGravity(g)
	reading := TiltReading{
		Angle:   angle,
		Degrees: orientation.Degrees(angle),
		Label:   orientation.Label(angle),
		Gravity: g,
		Time:    s.now(),
	}

	s.mu.Lock()
	s.last = reading
	s.haveLast = true
	screens := make([]Screen, 0, len(s.screens))
	for sc := range s.screens {
		screens = append(screens, sc)
	}
	s.mu.Unlock()

	for _, sc := range screens {
		sc.Rotate(angle)
	}
	return true
}

// Run starts the accelerometer and polls it until ctx is done.
func (s *Sampler) Run(ctx context.Context) error {
	if err := s.accel.Start(s.interval); err != nil {
		return fmt.Errorf("sampler: start accelerometer: %w", err)
	}
	defer func() {
		if err := s.accel.Stop(); err != nil {
			log.Warn().Str("component", "sampler").Err(err).Msg("stop accelerometer")
		}
	}()
	log.Info().Str("component", "sampler").Msgf("polling accelerometer every %v", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if s.Tick() {
				r, _ := s.Last()
				log.Debug().Str("component", "sampler").
					Float64("angle", r.Angle).Int("degrees", r.Degrees).Msg("tick")
			}
		}
	}
}
