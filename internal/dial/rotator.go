// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package dial turns tilt angles into spring anchor positions for a dial
// driven by the physics animator.
package dial

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/relabs-tech/leveler/internal/layout"
	"github.com/relabs-tech/leveler/internal/physics"
)

// Params tune how the dial chases the anchor.
type Params struct {
	AnchorDistance    float64 // anchor sits this far outside the dial rim
	Damping           float64
	Frequency         float64 // Hz
	AngularResistance float64
}

// DefaultParams gives the dial a soft, slightly underdamped settle.
var DefaultParams = Params{
	AnchorDistance:    4.0,
	Damping:           0.7,
	Frequency:         0.5,
	AngularResistance: 2.0,
}

// TiltState is the dial's target: the last tilt angle and where the spring
// anchor was put for it.
type TiltState struct {
	Angle  float64 `json:"angle"`
	Anchor r2.Vec  `json:"-"`
}

// Rotator owns the dial item and its behaviors. It starts uninitialized;
// Attach moves it to attached and may be called again whenever the layout
// changes.
type Rotator struct {
	params Params

	mu       sync.Mutex
	animator *physics.Animator
	fps      int
	dial     *physics.Item
	spring   *physics.AttachmentBehavior
	state    TiltState
}

// NewRotator returns an uninitialized rotator. The animator is created on
// the first Attach.
func NewRotator(params Params, fps int) *Rotator {
	return &Rotator{
		params: params,
		fps:    fps,
		dial:   &physics.Item{},
	}
}

// Animator returns the rotator's animator, or nil before the first Attach.
func (r *Rotator) Animator() *physics.Animator {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.animator
}

// Attached reports whether the spring is in place.
func (r *Rotator) Attached() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.spring != nil
}

// Place moves and resizes the dial to the given geometry without touching
// its rotation.
func (r *Rotator) Place(g layout.Geometry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.do(func() {
		r.dial.Center = g.Center
		r.dial.Width = g.Dial.W
		r.dial.Height = g.Dial.H
	})
}

// Attach tears down any existing behaviors and pins the dial at its current
// center, hangs a spring from its top-center to the top-center point, and
// adds angular drag.
func (r *Rotator) Attach() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.animator != nil {
		r.animator.RemoveAllBehaviors()
	} else {
		r.animator = physics.NewAnimator(r.fps)
	}

	var center, topCenter r2.Vec
	r.animator.Do(func() {
		center = r.dial.Center
		topCenter = r2.Vec{X: center.X, Y: center.Y - r.dial.Height/2}
	})

	r.animator.AddBehavior(physics.NewPin(r.dial, center))

	spring := physics.NewAttachment(r.dial, r2.Sub(topCenter, center), topCenter)
	spring.Damping = r.params.Damping
	spring.Frequency = r.params.Frequency
	r.animator.AddBehavior(spring)
	r.spring = spring

	drag := physics.NewItemBehavior(r.dial)
	drag.AngularResistance = r.params.AngularResistance
	r.animator.AddBehavior(drag)
}

// AnchorRadius is the anchor's distance from the dial center.
func (r *Rotator) AnchorRadius() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var h float64
	r.do(func() { h = r.dial.Height })
	return h/2 + r.params.AnchorDistance
}

// Rotate moves the spring anchor to the point above the dial center for
// angle. The animator settles the dial toward it over the next frames.
// It reports false, and does nothing, while unattached.
func (r *Rotator) Rotate(angle float64) (TiltState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.spring == nil {
		return TiltState{}, false
	}

	var anchor r2.Vec
	r.animator.Do(func() {
		radius := r.dial.Height/2 + r.params.AnchorDistance
		anchor = AnchorPoint(r.dial.Center, radius, angle)
		r.spring.SetAnchor(anchor)
	})
	r.state = TiltState{Angle: angle, Anchor: anchor}
	return r.state, true
}

// State returns the last target pushed by Rotate.
func (r *Rotator) State() TiltState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Rotation returns the dial's current on-screen rotation in radians.
func (r *Rotator) Rotation() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var a float64
	r.do(func() { a = r.dial.Angle })
	return a
}

// do runs fn under the animator lock when there is one. Callers hold r.mu.
func (r *Rotator) do(fn func()) {
	if r.animator == nil {
		fn()
		return
	}
	r.animator.Do(fn)
}

// AnchorPoint is the point radius away from center in the direction of
// angle, measured clockwise from straight up.
func AnchorPoint(center r2.Vec, radius, angle float64) r2.Vec {
	return r2.Vec{
		X: center.X + math.Sin(angle)*radius,
		Y: center.Y - math.Cos(angle)*radius,
	}
}
