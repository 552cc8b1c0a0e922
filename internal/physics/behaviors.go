// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package physics

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"gonum.org/v1/gonum/spatial/r2"
)

// Item is a rigid rectangle that can turn about its center.
// Angle is in radians, clockwise on screen (y grows downward).
type Item struct {
	Center          r2.Vec
	Width, Height   float64
	Angle           float64
	AngularVelocity float64 // rad/s
}

// Rotate turns an item-local offset by the item's angle.
func (it *Item) Rotate(offset r2.Vec) r2.Vec {
	sin, cos := math.Sincos(it.Angle)
	return r2.Vec{
		X: offset.X*cos - offset.Y*sin,
		Y: offset.X*sin + offset.Y*cos,
	}
}

// PointAt returns the screen position of an item-local offset.
func (it *Item) PointAt(offset r2.Vec) r2.Vec {
	return r2.Add(it.Center, it.Rotate(offset))
}

// PinBehavior holds an item's center at a fixed anchor, leaving it free
// to rotate.
type PinBehavior struct {
	item   *Item
	anchor r2.Vec
}

// NewPin pins item at anchor.
func NewPin(item *Item, anchor r2.Vec) *PinBehavior {
	return &PinBehavior{item: item, anchor: anchor}
}

func (b *PinBehavior) Apply(float64) {
	b.item.Center = b.anchor
}

// AttachmentBehavior is a damped spring between a point on an item and an
// anchor in screen space. Frequency is in Hz; Damping is the damping
// ratio (1 is critical). The item is treated as pinned at its center, so
// the spring only turns it.
type AttachmentBehavior struct {
	Damping   float64
	Frequency float64

	item   *Item
	offset r2.Vec
	anchor r2.Vec

	spring   harmonica.Spring
	springDT float64
	springF  float64
	springD  float64
}

// NewAttachment connects the item-local offset to anchor.
func NewAttachment(item *Item, offset, anchor r2.Vec) *AttachmentBehavior {
	return &AttachmentBehavior{
		Damping:   1,
		Frequency: 1,
		item:      item,
		offset:    offset,
		anchor:    anchor,
	}
}

// Anchor returns the spring's anchor point.
func (b *AttachmentBehavior) Anchor() r2.Vec { return b.anchor }

// SetAnchor moves the spring's anchor point.
func (b *AttachmentBehavior) SetAnchor(p r2.Vec) { b.anchor = p }

// Offset returns the attachment point in item coordinates.
func (b *AttachmentBehavior) Offset() r2.Vec { return b.offset }

func (b *AttachmentBehavior) springFor(dt float64) harmonica.Spring {
	if dt != b.springDT || b.Frequency != b.springF || b.Damping != b.springD {
		b.spring = harmonica.NewSpring(dt, 2*math.Pi*b.Frequency, b.Damping)
		b.springDT, b.springF, b.springD = dt, b.Frequency, b.Damping
	}
	return b.spring
}

// Apply pulls the attachment point toward the anchor for one step, then
// projects the result back onto the item's rigid radius and keeps only the
// rotational part of the motion.
func (b *AttachmentBehavior) Apply(dt float64) {
	r := b.item.Rotate(b.offset)
	rr := r2.Dot(r, r)
	if rr == 0 || dt <= 0 {
		return
	}
	p := r2.Add(b.item.Center, r)
	v := r2.Scale(b.item.AngularVelocity, r2.Vec{X: -r.Y, Y: r.X})

	// An anchor straight through the pin pulls along r and never turns the
	// item; aim a little clockwise of it until the item leaves that line.
	target := b.anchor
	a := r2.Sub(b.anchor, b.item.Center)
	if math.Abs(cross(r, a)) <= antipodeTolerance*math.Sqrt(rr*r2.Dot(a, a)) && r2.Dot(r, a) < 0 {
		target = r2.Add(target, r2.Scale(antipodeNudge, r2.Vec{X: -r.Y, Y: r.X}))
	}

	s := b.springFor(dt)
	px, vx := s.Update(p.X, v.X, target.X)
	py, vy := s.Update(p.Y, v.Y, target.Y)

	next := r2.Sub(r2.Vec{X: px, Y: py}, b.item.Center)
	nn := r2.Dot(next, next)
	if nn == 0 {
		return
	}

	b.item.Angle += math.Atan2(cross(r, next), r2.Dot(r, next))
	b.item.AngularVelocity = cross(next, r2.Vec{X: vx, Y: vy}) / nn
}

const (
	antipodeTolerance = 1e-9
	antipodeNudge     = 0.01 // fraction of the attachment radius
)

// ItemBehavior carries per-item material properties.
type ItemBehavior struct {
	// AngularResistance damps spin: ω ← ω / (1 + AngularResistance·dt).
	AngularResistance float64

	items []*Item
}

// NewItemBehavior applies the behavior to items.
func NewItemBehavior(items ...*Item) *ItemBehavior {
	return &ItemBehavior{items: items}
}

func (b *ItemBehavior) Apply(dt float64) {
	if b.AngularResistance <= 0 {
		return
	}
	k := 1 / (1 + b.AngularResistance*dt)
	for _, it := range b.items {
		it.AngularVelocity *= k
	}
}

func cross(a, b r2.Vec) float64 {
	return a.X*b.Y - a.Y*b.X
}
