// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader("# empty\n\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.AccelSource != SourceMPU9250 {
		t.Fatalf("AccelSource = %q, want %q", cfg.AccelSource, SourceMPU9250)
	}
	if cfg.PollInterval() != 667*time.Millisecond {
		t.Fatalf("PollInterval = %v, want 667ms", cfg.PollInterval())
	}
	if cfg.SpringDamping != 0.7 || cfg.SpringFrequency != 0.5 || cfg.SpringAnchorDistance != 4.0 {
		t.Fatalf("spring defaults = %v/%v/%v", cfg.SpringDamping, cfg.SpringFrequency, cfg.SpringAnchorDistance)
	}
}

func TestParseOverrides(t *testing.T) {
	in := `
ACCEL_SOURCE = MQTT
ACCEL_POLL_INTERVAL=250
SPRING_DAMPING=0.9
DISPLAY_ENABLED=true
DISPLAY_I2C_BUS=1
IMU_ACCEL_RANGE=2
`
	cfg, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.AccelSource != SourceMQTT {
		t.Fatalf("AccelSource = %q, want %q", cfg.AccelSource, SourceMQTT)
	}
	if cfg.AccelPollInterval != 250 {
		t.Fatalf("AccelPollInterval = %d, want 250", cfg.AccelPollInterval)
	}
	if cfg.SpringDamping != 0.9 {
		t.Fatalf("SpringDamping = %v, want 0.9", cfg.SpringDamping)
	}
	if !cfg.DisplayEnabled || cfg.DisplayI2CBus != "1" {
		t.Fatalf("display = %v/%q", cfg.DisplayEnabled, cfg.DisplayI2CBus)
	}
	if cfg.IMUAccelRange != 2 {
		t.Fatalf("IMUAccelRange = %d, want 2", cfg.IMUAccelRange)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "NOPE=1",
		"missing equals": "ACCEL_SOURCE",
		"accel range":    "IMU_ACCEL_RANGE=4",
		"bad source":     "ACCEL_SOURCE=gyro",
		"negative float": "SPRING_DAMPING=-1",
		"zero frequency": "SPRING_FREQUENCY=0",
		"port range":     "WEB_SERVER_PORT=70000",
		"bad bool":       "DISPLAY_ENABLED=maybe",
	}
	for name, in := range cases {
		if _, err := Parse(strings.NewReader(in)); err == nil {
			t.Fatalf("%s: expected error for %q", name, in)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leveler_config.txt")
	if err := os.WriteFile(path, []byte("ACCEL_SOURCE=mock\nANIMATOR_FPS=30\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AccelSource != SourceMock || cfg.AnimatorFPS != 30 {
		t.Fatalf("cfg = %+v", cfg)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
