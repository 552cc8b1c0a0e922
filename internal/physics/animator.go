// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package physics is a small dynamic animator for the dial: rigid items in
// screen coordinates, moved by behaviors on a fixed frame clock.
package physics

import (
	"context"
	"sync"
	"time"
)

// Behavior advances part of the simulation by dt seconds.
// Behaviors run in the order they were added.
type Behavior interface {
	Apply(dt float64)
}

// Animator owns a set of behaviors and steps them on its own frame loop.
// All item and behavior state it drives must be touched only from inside
// Do, Step, or the frame loop.
type Animator struct {
	mu        sync.Mutex
	behaviors []Behavior
	fps       int
	frames    uint64
}

// NewAnimator returns an animator that runs at fps frames per second.
func NewAnimator(fps int) *Animator {
	if fps <= 0 {
		fps = 60
	}
	return &Animator{fps: fps}
}

// FPS returns the frame rate.
func (a *Animator) FPS() int { return a.fps }

// FrameTime is the simulated time per frame in seconds.
func (a *Animator) FrameTime() float64 { return 1.0 / float64(a.fps) }

// AddBehavior appends b to the simulation.
func (a *Animator) AddBehavior(b Behavior) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.behaviors = append(a.behaviors, b)
}

// RemoveAllBehaviors detaches every behavior. Items keep their current
// position and angle.
func (a *Animator) RemoveAllBehaviors() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.behaviors = nil
}

// Behaviors returns the number of attached behaviors.
func (a *Animator) Behaviors() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.behaviors)
}

// Frames returns the number of steps taken so far.
func (a *Animator) Frames() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frames
}

// Do runs fn with the simulation locked. fn must not call back into the
// animator.
func (a *Animator) Do(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn()
}

// Step advances every behavior by dt seconds.
func (a *Animator) Step(dt float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, b := range a.behaviors {
		b.Apply(dt)
	}
	a.frames++
}

// Run steps the simulation once per frame until ctx is done.
func (a *Animator) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(a.fps))
	defer ticker.Stop()

	dt := a.FrameTime()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			a.Step(dt)
		}
	}
}
