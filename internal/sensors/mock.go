// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"sync"
	"time"

	"github.com/relabs-tech/leveler/internal/imu"
)

// mockAccelerometer rocks a unit gravity vector back and forth in the
// screen plane so the dial has something to chase without hardware.
type mockAccelerometer struct {
	mu      sync.Mutex
	now     func() time.Time
	start   time.Time
	running bool
}

// NewMock creates a mock accelerometer that
// generates a smooth swing of about ±35°.
func NewMock() Accelerometer {
	return &mockAccelerometer{now: time.Now}
}

func (m *mockAccelerometer) Start(time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.start = m.now()
	m.running = true
	return nil
}

func (m *mockAccelerometer) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	return nil
}

func (m *mockAccelerometer) Latest() (imu.Acceleration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return imu.Acceleration{}, false
	}

	elapsed := m.now().Sub(m.start).Seconds()
	tilt := 0.6*math.Sin(elapsed*0.5) + 0.1*math.Sin(elapsed*1.7)
	sin, cos := math.Sincos(tilt)
	return imu.Acceleration{X: -sin, Y: -cos, Z: 0}, true
}
