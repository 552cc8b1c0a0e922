// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import "testing"

func TestCountsToG(t *testing.T) {
	if got := CountsToG(16384, 0); got != 1 {
		t.Fatalf("16384 counts at ±2g = %v, want 1", got)
	}
	if got := CountsToG(-8192, 1); got != -1 {
		t.Fatalf("-8192 counts at ±4g = %v, want -1", got)
	}
}

func TestIMURawAcceleration(t *testing.T) {
	raw := IMURaw{Ax: 0, Ay: -16384, Az: 8192}
	a := raw.Acceleration(0)
	if a.X != 0 || a.Y != -1 || a.Z != 0.5 {
		t.Fatalf("acceleration = %+v, want {0 -1 0.5}", a)
	}
}

func TestDecode(t *testing.T) {
	raw, err := Decode([]byte(`{"source":"left","ax":-16384,"ay":0,"az":100,"gx":3}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := IMURaw{Source: "left", Ax: -16384, Az: 100, Gx: 3}
	if raw != want {
		t.Fatalf("raw = %+v, want %+v", raw, want)
	}

	if _, err := Decode([]byte(`{"ax":`)); err == nil {
		t.Fatalf("expected error for truncated payload")
	}
}
