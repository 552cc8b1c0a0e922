// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package layout positions the dial, needle and label on a screen.
//
// Coordinates are screen points with y growing downward. The dial is a
// circle whose center sits on the bottom edge of the screen, so only its
// upper half is visible; the needle stands on the same point.
package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Rect is an axis-aligned rectangle.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r Rect) MinX() float64 { return r.X }
func (r Rect) MinY() float64 { return r.Y }
func (r Rect) MaxX() float64 { return r.X + r.W }
func (r Rect) MaxY() float64 { return r.Y + r.H }
func (r Rect) MidX() float64 { return r.X + r.W/2 }
func (r Rect) MidY() float64 { return r.Y + r.H/2 }

// Center returns the rectangle's midpoint.
func (r Rect) Center() r2.Vec { return r2.Vec{X: r.MidX(), Y: r.MidY()} }

// Integral returns the smallest rectangle with integer edges that
// contains r.
func (r Rect) Integral() Rect {
	x0, y0 := math.Floor(r.MinX()), math.Floor(r.MinY())
	x1, y1 := math.Ceil(r.MaxX()), math.Ceil(r.MaxY())
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// CenteredAt returns a w×h rectangle centered on c.
func CenteredAt(c r2.Vec, w, h float64) Rect {
	return Rect{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
}

// Size is a width/height pair, e.g. the needle image's natural size.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Empty reports whether s has no area.
func (s Size) Empty() bool { return s.W <= 0 || s.H <= 0 }

// Geometry is the result of positioning the dial views.
type Geometry struct {
	Bounds Rect    `json:"bounds"`
	Dial   Rect    `json:"dial"`
	Needle Rect    `json:"needle"`
	Center r2.Vec  `json:"-"`
	Radius float64 `json:"radius"`
}

// PositionDial lays the dial out below the label. The dial's top edge sits
// a third of the label height under the label; its center is the middle of
// the bottom edge of bounds. The needle is scaled to the dial radius and
// stands on the same point.
//
// It reports false when the needle size is unknown or the label leaves no
// room for a dial.
func PositionDial(bounds, label Rect, needle Size) (Geometry, bool) {
	if needle.Empty() {
		return Geometry{}, false
	}

	topEdge := math.Ceil(label.MaxY() + label.H/3.0)
	radius := bounds.MaxY() - topEdge
	if radius <= 0 {
		return Geometry{}, false
	}

	center := r2.Vec{X: bounds.MidX(), Y: bounds.MaxY()}
	dial := CenteredAt(center, radius*2, radius*2)

	scale := radius / needle.H
	nw, nh := needle.W*scale, needle.H*scale
	needleFrame := Rect{
		X: bounds.MidX() - nw/2,
		Y: bounds.MaxY() - nh,
		W: nw,
		H: nh,
	}

	return Geometry{
		Bounds: bounds,
		Dial:   dial,
		Needle: needleFrame.Integral(),
		Center: center,
		Radius: radius,
	}, true
}

// SizeClass is the coarse horizontal size of a screen.
type SizeClass int

const (
	Regular SizeClass = iota
	Compact
)

// CompactWidth is the width below which a screen counts as Compact.
const CompactWidth = 600.0

// SizeClassFor classifies a screen width.
func SizeClassFor(width float64) SizeClass {
	if width < CompactWidth {
		return Compact
	}
	return Regular
}

// LabelFontSize returns the angle label's font size in points.
func LabelFontSize(c SizeClass) float64 {
	if c == Compact {
		return 60.0
	}
	return 90.0
}
