// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	serial "github.com/jacobsa/go-serial/serial"
	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/leveler/internal/imu"
)

// serialAccelerometer reads "ax,ay,az" lines in g from a serial port, as
// printed by a microcontroller with an attached accelerometer. The device
// sets the pace; the interval passed to Start is not used.
type serialAccelerometer struct {
	opts serial.OpenOptions

	port   io.ReadWriteCloser
	latest latestSample
	done   chan struct{}
}

// NewSerial returns an accelerometer that reads from portName at baud.
func NewSerial(portName string, baud int) Accelerometer {
	return &serialAccelerometer{
		opts: serial.OpenOptions{
			PortName:              portName,
			BaudRate:              uint(baud),
			DataBits:              8,
			StopBits:              1,
			MinimumReadSize:       1,
			ParityMode:            serial.PARITY_NONE,
			InterCharacterTimeout: 0,
		},
	}
}

func (s *serialAccelerometer) Start(time.Duration) error {
	if s.port != nil {
		return errors.New("serial accelerometer: already started")
	}
	port, err := serial.Open(s.opts)
	if err != nil {
		return fmt.Errorf("serial accelerometer: open %s: %w", s.opts.PortName, err)
	}
	log.Info().Str("component", "sensors").
		Msgf("serial accelerometer opened on %s at %d baud", s.opts.PortName, s.opts.BaudRate)

	s.port = port
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		if err := s.readFrom(port); err != nil {
			log.Warn().Str("component", "sensors").Err(err).Msg("serial accelerometer: read loop ended")
		}
	}()
	return nil
}

// readFrom consumes lines until r fails or is closed. Malformed lines are
// skipped.
func (s *serialAccelerometer) readFrom(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		a, err := ParseAccelLine(line)
		if err != nil {
			log.Debug().Str("component", "sensors").Err(err).Msg("serial accelerometer: skipping line")
			continue
		}
		s.latest.set(a)
	}
	return scanner.Err()
}

func (s *serialAccelerometer) Stop() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	<-s.done
	s.port = nil
	s.latest.reset()
	return err
}

func (s *serialAccelerometer) Latest() (imu.Acceleration, bool) {
	return s.latest.get()
}

// ParseAccelLine parses "x,y,z" (comma or whitespace separated) into an
// acceleration in g.
func ParseAccelLine(line string) (imu.Acceleration, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 3 {
		return imu.Acceleration{}, fmt.Errorf("want 3 fields, got %d in %q", len(fields), line)
	}

	var v [3]float64
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return imu.Acceleration{}, fmt.Errorf("field %d of %q: %w", i, line, err)
		}
		v[i] = x
	}
	return imu.Acceleration{X: v[0], Y: v[1], Z: v[2]}, nil
}
