// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	sensehat "github.com/relabs-tech/sensehat_computer"
	"github.com/relabs-tech/sensehat_computer/internal/config"
	"github.com/relabs-tech/sensehat_computer/screen"
)

// needlePixels maps a 30° heading sector to the two LEDs lit on the
// ring. Sector 0 is "needle pointing right" (heading within ±15°),
// sectors increase counterclockwise.
var needlePixels = [12][2]int{
	{31, 39}, // right
	{14, 23}, // right-up
	{5, 14},  // up-right
	{3, 4},   // up
	{2, 9},   // up-left
	{9, 16},  // left-up
	{24, 32}, // left
	{40, 49}, // left-down
	{49, 58}, // down-left
	{59, 60}, // down
	{54, 61}, // down-right
	{47, 54}, // right-down
}

// compassBackground draws the blue ring with dark corners the needle
// moves over.
func compassBackground() *screen.Frame {
	f := screen.NewFrame(screen.Blue)
	dark := []int{
		2, 3, 4, 5,
		9, 14,
		16, 23,
		24, 31,
		32, 39,
		40, 47,
		49, 54,
		58, 59, 60, 61,
	}
	for _, i := range dark {
		f.SetXY(i%screen.Width, i/screen.Width, screen.Black)
	}
	return f
}

// HeadingSector maps a heading in degrees to a needle sector index.
func HeadingSector(deg float64) int {
	s := int(math.Round(deg/30.0)) % 12
	if s < 0 {
		s += 12
	}
	return s
}

// RunCompassScreen shows a compass needle on the LED matrix, driven by
// the magnetometer-only heading.
func RunCompassScreen() error {
	cfg := config.Get()

	hat, err := newHatFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("sense hat init: %w", err)
	}

	scr, err := screen.Open(cfg.FBDevice)
	if err != nil {
		return err
	}
	defer scr.Close()
	defer scr.Clear()

	log.Println("compass: starting needle loop")

	ticker := time.NewTicker(time.Duration(cfg.IMUSampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		heading, err := hat.Compass()
		if err != nil {
			if errors.Is(err, sensehat.ErrNotReady) {
				continue
			}
			return err
		}

		f := compassBackground()
		needle := needlePixels[HeadingSector(heading.Degrees())]
		for _, i := range needle {
			f.SetXY(i%screen.Width, i/screen.Width, screen.Red)
		}
		if err := scr.WriteFrame(f); err != nil {
			return err
		}
	}
	return nil
}
