// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/leveler/internal/app"
	"github.com/relabs-tech/leveler/internal/logger"
)

func main() {
	logger.Init("info")
	if err := run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}

func run(parent context.Context) error {
	log.Info().Msg("starting leveler (mock console)")

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.RunMockConsole(ctx, 667*time.Millisecond)
}
