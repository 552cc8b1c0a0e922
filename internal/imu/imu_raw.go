// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import "encoding/json"

// IMURaw represents a single raw IMU+mag sample as published on MQTT.
type IMURaw struct {
	Source string `json:"source"` // "left" or "right"

	Ax int16 `json:"ax"` // accel
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`

	Gx int16 `json:"gx"` // gyro
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`

	Mx int16 `json:"mx"` // magnetometer
	My int16 `json:"my"`
	Mz int16 `json:"mz"`
}

// Acceleration is a 3-axis accelerometer reading in g.
// At rest it is the gravity vector in device coordinates.
type Acceleration struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FullScaleG maps an MPU9250 accel range setting (0-3) to ±g.
var FullScaleG = [4]float64{2, 4, 8, 16}

// CountsToG converts a raw 16-bit count to g for the given range setting.
func CountsToG(raw int16, accelRange byte) float64 {
	return float64(raw) * FullScaleG[accelRange&3] / 32768.0
}

// Acceleration converts the raw accelerometer counts to g.
func (r IMURaw) Acceleration(accelRange byte) Acceleration {
	return Acceleration{
		X: CountsToG(r.Ax, accelRange),
		Y: CountsToG(r.Ay, accelRange),
		Z: CountsToG(r.Az, accelRange),
	}
}

// Decode parses an IMURaw JSON payload as published on the IMU topic.
func Decode(payload []byte) (IMURaw, error) {
	var raw IMURaw
	if err := json.Unmarshal(payload, &raw); err != nil {
		return IMURaw{}, err
	}
	return raw, nil
}
