// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"sync"
	"time"

	"github.com/relabs-tech/leveler/internal/config"
	"github.com/relabs-tech/leveler/internal/imu"
)

// Accelerometer delivers gravity samples in g. Start begins collecting at
// roughly the given interval; Latest returns the newest sample, or false
// if none has arrived yet.
type Accelerometer interface {
	Start(interval time.Duration) error
	Stop() error
	Latest() (imu.Acceleration, bool)
}

// New builds the accelerometer selected by cfg.AccelSource.
func New(cfg *config.Config) (Accelerometer, error) {
	switch cfg.AccelSource {
	case config.SourceMPU9250:
		return NewMPU9250(cfg.IMUSPIDevice, cfg.IMUCSPin, cfg.IMUAccelRange), nil
	case config.SourceSerial:
		return NewSerial(cfg.SerialPort, cfg.SerialBaudRate), nil
	case config.SourceMQTT:
		return NewMQTT(cfg.MQTTBroker, cfg.MQTTClientIDLeveler, cfg.TopicIMU, cfg.IMUAccelRange), nil
	case config.SourceMock:
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("unknown accelerometer source %q", cfg.AccelSource)
	}
}

// latestSample is the one-slot mailbox every source writes into.
type latestSample struct {
	mu   sync.RWMutex
	acc  imu.Acceleration
	have bool
}

func (l *latestSample) set(a imu.Acceleration) {
	l.mu.Lock()
	l.acc = a
	l.have = true
	l.mu.Unlock()
}

func (l *latestSample) get() (imu.Acceleration, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.acc, l.have
}

func (l *latestSample) reset() {
	l.mu.Lock()
	l.acc = imu.Acceleration{}
	l.have = false
	l.mu.Unlock()
}
