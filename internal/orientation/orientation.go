// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"
	"math"

	"github.com/relabs-tech/leveler/internal/imu"
)

// Pose is roll/pitch in degrees from an accelerometer-only estimate.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
}

// TiltFromGravity returns the angle of "up" relative to the screen's
// vertical axis, in radians:
//
//	tilt = atan2(-gx, -gy)
//
// A device held upright (gravity along -y) reads 0. Only x and y matter;
// z is ignored.
func TiltFromGravity(g imu.Acceleration) float64 {
	return math.Atan2(-g.X, -g.Y)
}

// Degrees converts a tilt in radians to whole display degrees in [0,360).
// The sign flips so that a clockwise device roll counts upward.
func Degrees(rad float64) int {
	deg := int(math.Round(-rad * 180.0 / math.Pi))
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Label formats a tilt for the dial's text label.
func Label(rad float64) string {
	return fmt.Sprintf("%d°", Degrees(rad))
}

// AccelToPose computes roll and pitch from raw accelerometer values (in any unit):
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func AccelToPose(g imu.Acceleration) Pose {
	rollRad := math.Atan2(g.Y, g.Z)
	pitchRad := math.Atan2(-g.X, math.Sqrt(g.Y*g.Y+g.Z*g.Z))

	return Pose{
		Roll:  rollRad * 180.0 / math.Pi,
		Pitch: pitchRad * 180.0 / math.Pi,
	}
}
