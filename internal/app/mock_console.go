// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"os"
	"time"

	"github.com/relabs-tech/leveler/internal/sensors"
)

// RunMockConsole prints the mock accelerometer's tilt at the poll interval.
func RunMockConsole(ctx context.Context, interval time.Duration) error {
	src := sensors.NewMock()
	if err := src.Start(interval); err != nil {
		return err
	}
	defer src.Stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if g, ok := src.Latest(); ok {
				printTilt(os.Stdout, g)
			}
		}
	}
}
