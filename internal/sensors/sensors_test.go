// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/relabs-tech/leveler/internal/config"
	"github.com/relabs-tech/leveler/internal/imu"
	"github.com/relabs-tech/leveler/internal/orientation"
)

type fakeReader struct {
	reads atomic.Int32
	fail  bool
}

func (f *fakeReader) ReadRaw() (imu.IMURaw, error) {
	f.reads.Add(1)
	if f.fail {
		return imu.IMURaw{}, errors.New("bus error")
	}
	return imu.IMURaw{Source: "fake", Ax: -16384, Ay: 0, Az: 0}, nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPolledAccelerometer(t *testing.T) {
	r := &fakeReader{}
	p := newPolled("fake", r, 0)

	if _, ok := p.Latest(); ok {
		t.Fatalf("sample available before Start")
	}
	if err := p.Start(5 * time.Millisecond); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := p.Start(5 * time.Millisecond); err == nil {
		t.Fatalf("second Start succeeded")
	}

	waitFor(t, func() bool { _, ok := p.Latest(); return ok })
	a, _ := p.Latest()
	if a.X != -1 || a.Y != 0 {
		t.Fatalf("latest = %+v, want {-1 0 0}", a)
	}

	if err := p.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, ok := p.Latest(); ok {
		t.Fatalf("sample still available after Stop")
	}
}

func TestPolledAccelerometerKeepsGoingOnErrors(t *testing.T) {
	r := &fakeReader{fail: true}
	p := newPolled("fake", r, 0)
	if err := p.Start(2 * time.Millisecond); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	waitFor(t, func() bool { return r.reads.Load() >= 3 })
	if _, ok := p.Latest(); ok {
		t.Fatalf("failed reads produced a sample")
	}
}

func TestPolledAccelerometerRejectsBadInterval(t *testing.T) {
	p := newPolled("fake", &fakeReader{}, 0)
	if err := p.Start(0); err == nil {
		t.Fatalf("Start(0) succeeded")
	}
}

func TestMPU9250StartFailsWithoutDevice(t *testing.T) {
	a := NewMPU9250("/dev/spidev-missing", "NO_SUCH_PIN", 0)
	err := a.Start(10 * time.Millisecond)
	if err == nil {
		a.Stop()
		t.Fatalf("Start succeeded without an IMU")
	}
	if _, ok := a.Latest(); ok {
		t.Fatalf("Latest reported a sample after a failed Start")
	}
}

func TestParseAccelLine(t *testing.T) {
	a, err := ParseAccelLine("0.12, -0.98 0.05")
	if err != nil {
		t.Fatalf("ParseAccelLine: %v", err)
	}
	if a.X != 0.12 || a.Y != -0.98 || a.Z != 0.05 {
		t.Fatalf("parsed = %+v", a)
	}

	for _, bad := range []string{"1,2", "1,2,3,4", "a,b,c"} {
		if _, err := ParseAccelLine(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestSerialReadFrom(t *testing.T) {
	s := &serialAccelerometer{}
	in := "# boot\n0,0,1\ngarbage\n\n-0.5,-0.5,0\n"
	if err := s.readFrom(strings.NewReader(in)); err != nil {
		t.Fatalf("readFrom: %v", err)
	}
	a, ok := s.Latest()
	if !ok || a.X != -0.5 || a.Y != -0.5 {
		t.Fatalf("latest = %+v, %v", a, ok)
	}
}

func TestMQTTHandle(t *testing.T) {
	m := NewMQTT("tcp://localhost:1883", "test", "inertial/imu/left", 1).(*mqttAccelerometer)

	m.handle([]byte("not json"))
	if _, ok := m.Latest(); ok {
		t.Fatalf("bad payload produced a sample")
	}

	m.handle([]byte(`{"source":"left","ax":0,"ay":-8192,"az":0}`))
	a, ok := m.Latest()
	if !ok || a.Y != -1 {
		t.Fatalf("latest = %+v, %v; want y=-1 at ±4g", a, ok)
	}
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop before Start: %v", err)
	}
}

func TestMockAccelerometer(t *testing.T) {
	now := time.Unix(0, 0)
	m := &mockAccelerometer{now: func() time.Time { return now }}

	if _, ok := m.Latest(); ok {
		t.Fatalf("mock returned a sample before Start")
	}
	m.Start(time.Second)

	a, ok := m.Latest()
	if !ok {
		t.Fatalf("no sample after Start")
	}
	if got := orientation.TiltFromGravity(a); got != 0 {
		t.Fatalf("tilt at t=0 = %v, want 0", got)
	}

	now = now.Add(3 * time.Second)
	a, _ = m.Latest()
	want := 0.6*math.Sin(1.5) + 0.1*math.Sin(5.1)
	if got := orientation.TiltFromGravity(a); math.Abs(got-want) > 1e-9 {
		t.Fatalf("tilt at t=3s = %v, want %v", got, want)
	}
	if n := math.Hypot(a.X, a.Y); math.Abs(n-1) > 1e-9 {
		t.Fatalf("|g| = %v, want 1", n)
	}

	m.Stop()
	if _, ok := m.Latest(); ok {
		t.Fatalf("mock returned a sample after Stop")
	}
}

func TestNewSelectsSource(t *testing.T) {
	cfg := config.Default()
	cfg.AccelSource = config.SourceMock
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New(mock): %v", err)
	}
	if _, ok := a.(*mockAccelerometer); !ok {
		t.Fatalf("New(mock) = %T", a)
	}

	cfg.AccelSource = config.SourceSerial
	if a, _ := New(cfg); a == nil {
		t.Fatalf("New(serial) returned nil")
	}

	cfg.AccelSource = "gyro"
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected error for unknown source")
	}
}
