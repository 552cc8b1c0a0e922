// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/leveler/internal/imu"
)

// IMURawReader defines the interface for reading raw IMU data.
type IMURawReader interface {
	ReadRaw() (imu.IMURaw, error)
}

type imuSource struct {
	name string
	imu  *mpu9250.MPU9250
}

// NewIMUSource initializes an MPU9250 over SPI with the given chip-select
// pin and accelerometer range (0=±2g … 3=±16g).
func NewIMUSource(name, spiDev, csPin string, accelRange byte) (IMURawReader, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%s IMU: periph host init: %w", name, err)
	}

	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("%s IMU: CS pin %q not found", name, csPin)
	}

	tr, err := mpu9250.NewSpiTransport(spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("%s IMU: SPI transport (%s): %w", name, spiDev, err)
	}

	dev, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("%s IMU: device creation: %w", name, err)
	}

	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("%s IMU: initialization: %w", name, err)
	}

	if err := dev.SetAccelRange(accelRange); err != nil {
		return nil, fmt.Errorf("%s IMU: set accel range: %w", name, err)
	}
	log.Info().Str("component", "sensors").
		Msgf("%s IMU: accelerometer range set to %d (±%.0fg)", name, accelRange, imu.FullScaleG[accelRange&3])

	// Self-test and calibration failures leave a usable, if less accurate, sensor.
	if res, err := dev.SelfTest(); err != nil {
		log.Warn().Str("component", "sensors").Err(err).Msgf("%s IMU: self-test failed", name)
	} else {
		log.Info().Str("component", "sensors").
			Msgf("%s IMU: self-test passed, accel deviation X: %.2f%%, Y: %.2f%%, Z: %.2f%%",
				name, res.AccelDeviation.X, res.AccelDeviation.Y, res.AccelDeviation.Z)
	}
	if err := dev.Calibrate(); err != nil {
		log.Warn().Str("component", "sensors").Err(err).Msgf("%s IMU: calibration failed", name)
	}

	return &imuSource{name: name, imu: dev}, nil
}

// ReadRaw reads accelerometer and gyroscope data from this IMU.
func (s *imuSource) ReadRaw() (imu.IMURaw, error) {
	ax, err := s.imu.GetAccelerationX()
	if err != nil {
		return imu.IMURaw{}, fmt.Errorf("%s IMU accel X: %w", s.name, err)
	}
	ay, err := s.imu.GetAccelerationY()
	if err != nil {
		return imu.IMURaw{}, fmt.Errorf("%s IMU accel Y: %w", s.name, err)
	}
	az, err := s.imu.GetAccelerationZ()
	if err != nil {
		return imu.IMURaw{}, fmt.Errorf("%s IMU accel Z: %w", s.name, err)
	}

	gx, err := s.imu.GetRotationX()
	if err != nil {
		return imu.IMURaw{}, fmt.Errorf("%s IMU gyro X: %w", s.name, err)
	}
	gy, err := s.imu.GetRotationY()
	if err != nil {
		return imu.IMURaw{}, fmt.Errorf("%s IMU gyro Y: %w", s.name, err)
	}
	gz, err := s.imu.GetRotationZ()
	if err != nil {
		return imu.IMURaw{}, fmt.Errorf("%s IMU gyro Z: %w", s.name, err)
	}

	return imu.IMURaw{
		Source: s.name,
		Ax:     ax,
		Ay:     ay,
		Az:     az,
		Gx:     gx,
		Gy:     gy,
		Gz:     gz,
	}, nil
}

// polledAccelerometer samples an IMURawReader on its own ticker.
type polledAccelerometer struct {
	name       string
	accelRange byte
	open       func() (IMURawReader, error)

	reader IMURawReader
	latest latestSample
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMPU9250 returns an accelerometer backed by an MPU9250 on SPI. The
// device is opened on Start.
func NewMPU9250(spiDev, csPin string, accelRange byte) Accelerometer {
	return &polledAccelerometer{
		name:       "mpu9250",
		accelRange: accelRange,
		open: func() (IMURawReader, error) {
			return NewIMUSource("leveler", spiDev, csPin, accelRange)
		},
	}
}

func newPolled(name string, r IMURawReader, accelRange byte) *polledAccelerometer {
	return &polledAccelerometer{
		name:       name,
		accelRange: accelRange,
		open:       func() (IMURawReader, error) { return r, nil },
	}
}

func (p *polledAccelerometer) Start(interval time.Duration) error {
	if p.cancel != nil {
		return errors.New(p.name + ": already started")
	}
	if interval <= 0 {
		return fmt.Errorf("%s: invalid interval %v", p.name, interval)
	}
	if p.reader == nil {
		r, err := p.open()
		if err != nil {
			return err
		}
		p.reader = r
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(ctx, interval)
	return nil
}

func (p *polledAccelerometer) loop(ctx context.Context, interval time.Duration) {
	defer close(p.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			raw, err := p.reader.ReadRaw()
			if err != nil {
				log.Warn().Str("component", "sensors").Err(err).Msgf("%s: read error", p.name)
				continue
			}
			p.latest.set(raw.Acceleration(p.accelRange))
		}
	}
}

func (p *polledAccelerometer) Stop() error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	<-p.done
	p.cancel = nil
	p.latest.reset()
	return nil
}

func (p *polledAccelerometer) Latest() (imu.Acceleration, bool) {
	return p.latest.get()
}
