// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/leveler/internal/config"
	"github.com/relabs-tech/leveler/internal/dial"
	"github.com/relabs-tech/leveler/internal/layout"
)

// Fixed layout of the 128x64 OLED: one 7x13 text row on top, the dial
// below it.
var (
	oledBounds = layout.Rect{W: 128, H: 64}
	oledLabel  = layout.Rect{W: 128, H: 13}
	oledNeedle = layout.Size{W: 1, H: 8}
)

// RunDisplay drives an SSD1306 panel as a dial screen until ctx is done.
func RunDisplay(ctx context.Context, cfg *config.Config, sampler *Sampler, params dial.Params) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("display: failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("display: failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("display: failed to initialize display: %w", err)
	}
	defer dev.Halt()
	log.Info().Str("component", "display").Msg("display initialized")

	if err := dev.Draw(dev.Bounds(), renderSplash(), image.Point{}); err != nil {
		log.Warn().Str("component", "display").Err(err).Msg("error showing splash")
	}

	screen := newDialScreen(params, cfg.AnimatorFPS)
	geom, ok := screen.Layout(ctx, oledBounds, oledLabel, oledNeedle)
	if !ok {
		return fmt.Errorf("display: no room for a dial on %vx%v", oledBounds.W, oledBounds.H)
	}
	sampler.Add(screen)
	defer sampler.Remove(screen)

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Info().Str("component", "display").Msg("starting update loop")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			img := renderDial(screen.Frame(), geom)
			if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
				log.Warn().Str("component", "display").Err(err).Msg("error updating display")
			}
		}
	}
}

func newOLEDImage() *image1bit.VerticalLSB {
	return image1bit.NewVerticalLSB(image.Rect(0, 0, int(oledBounds.W), int(oledBounds.H)))
}

// renderDial draws the label, the rotated dial ticks and the fixed needle.
func renderDial(f Frame, g layout.Geometry) *image1bit.VerticalLSB {
	img := newOLEDImage()

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	// basicfont has no "°"; a small circle stands in for it.
	text := trimDegree(f.Label)
	if text == "" {
		text = "--"
	}
	width := drawer.MeasureString(text).Ceil()
	drawer.Dot = fixed.P((int(oledBounds.W)-width-4)/2, 11)
	drawer.DrawString(text)
	if f.Label != "" {
		end := drawer.Dot.X.Ceil()
		drawCircle(img, float64(end+2), 3, 1.5)
	}

	cx, cy, r := g.Center.X, g.Center.Y, g.Radius

	// Ticks every 15°, long ones every 45°, rotating with the dial.
	for d := 0; d < 360; d += 15 {
		a := f.Rotation + float64(d)*math.Pi/180
		inner := r - 4
		if d%45 == 0 {
			inner = r - 8
		}
		drawLine(img, polar(cx, cy, inner, a), polar(cx, cy, r, a))
	}
	// The dial's zero mark.
	zero := polar(cx, cy, r-12, f.Rotation)
	drawCircle(img, float64(zero.X), float64(zero.Y), 2)

	// Needle stands still, pointing up from the center.
	drawLine(img, image.Pt(int(cx), int(cy)), image.Pt(int(cx), int(cy-r+14)))

	return img
}

func renderSplash() *image1bit.VerticalLSB {
	img := newOLEDImage()
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	drawer.Dot = fixed.P(36, 30)
	drawer.DrawString("Leveler")
	drawer.Dot = fixed.P(22, 47)
	drawer.DrawString("waiting...")
	return img
}

func trimDegree(s string) string {
	if n := len(s); n >= 2 && s[n-2:] == "°" {
		return s[:n-2]
	}
	return s
}

func polar(cx, cy, r, a float64) image.Point {
	return image.Pt(
		int(math.Round(cx+math.Sin(a)*r)),
		int(math.Round(cy-math.Cos(a)*r)),
	)
}

// drawLine sets every pixel on the segment p0-p1 that falls inside img.
func drawLine(img *image1bit.VerticalLSB, p0, p1 image.Point) {
	dx, dy := p1.X-p0.X, p1.Y-p0.Y
	n := max(abs(dx), abs(dy))
	if n == 0 {
		setPixel(img, p0.X, p0.Y)
		return
	}
	for i := 0; i <= n; i++ {
		x := p0.X + int(math.Round(float64(dx*i)/float64(n)))
		y := p0.Y + int(math.Round(float64(dy*i)/float64(n)))
		setPixel(img, x, y)
	}
}

func drawCircle(img *image1bit.VerticalLSB, cx, cy, r float64) {
	for y := int(cy - r - 1); y <= int(cy+r+1); y++ {
		for x := int(cx - r - 1); x <= int(cx+r+1); x++ {
			if math.Hypot(float64(x)-cx, float64(y)-cy) <= r {
				setPixel(img, x, y)
			}
		}
	}
}

func setPixel(img *image1bit.VerticalLSB, x, y int) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetBit(x, y, image1bit.On)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
