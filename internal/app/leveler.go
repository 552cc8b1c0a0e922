// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/leveler/internal/config"
	"github.com/relabs-tech/leveler/internal/dial"
	"github.com/relabs-tech/leveler/internal/sensors"
)

// DialParams maps config onto rotator tuning.
func DialParams(cfg *config.Config) dial.Params {
	return dial.Params{
		AnchorDistance:    cfg.SpringAnchorDistance,
		Damping:           cfg.SpringDamping,
		Frequency:         cfg.SpringFrequency,
		AngularResistance: cfg.DialAngularResistance,
	}
}

// RunLeveler samples the configured accelerometer and shows the dial in
// browsers and, if enabled, on the OLED panel. It returns when ctx is done
// or a component fails.
func RunLeveler(ctx context.Context, cfg *config.Config) error {
	accel, err := sensors.New(cfg)
	if err != nil {
		return err
	}
	log.Info().Str("component", "leveler").Msgf("using %s accelerometer", cfg.AccelSource)

	sampler := NewSampler(accel, cfg.PollInterval())
	params := DialParams(cfg)
	web := NewWebServer(sampler, params, cfg.AnimatorFPS)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler:           web.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sampler.Run(ctx)
	})

	g.Go(func() error {
		log.Info().Str("component", "web").Msgf("web server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("web: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.DisplayEnabled {
		g.Go(func() error {
			return RunDisplay(ctx, cfg, sampler, params)
		})
	}

	return g.Wait()
}
