// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package screen drives the Sense HAT 8x8 LED matrix. The matrix shows
// up as a Linux framebuffer (normally /dev/fb1) taking 64 RGB565
// pixels in row-major order.
package screen

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Width and Height of the LED matrix in pixels.
const (
	Width  = 8
	Height = 8
)

const frameBytes = Width * Height * 2

// DefaultDevice is where the Raspbian sense-hat overlay maps the
// matrix.
const DefaultDevice = "/dev/fb1"

// Pixel is one LED color. The panel only honors the top 5-6-5 bits of
// each component.
type Pixel struct {
	R, G, B uint8
}

// Common colors used by the demos.
var (
	Black = Pixel{}
	White = Pixel{R: 0xff, G: 0xff, B: 0xff}
	Red   = Pixel{R: 0xff}
	Green = Pixel{G: 0xff}
	Blue  = Pixel{B: 0xff}
)

// rgb565 packs the pixel into the framebuffer's native format.
func (p Pixel) rgb565() uint16 {
	return uint16(p.R>>3)<<11 | uint16(p.G>>2)<<5 | uint16(p.B>>3)
}

// Frame is a full 8x8 picture, row-major from the top-left.
type Frame [Width * Height]Pixel

// NewFrame returns a frame filled with the given color.
func NewFrame(fill Pixel) *Frame {
	var f Frame
	for i := range f {
		f[i] = fill
	}
	return &f
}

// SetXY sets the pixel at column x, row y. Out-of-range coordinates
// are ignored.
func (f *Frame) SetXY(x, y int, p Pixel) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	f[y*Width+x] = p
}

// Encode returns the raw framebuffer bytes (little-endian RGB565).
func (f *Frame) Encode() [frameBytes]byte {
	var buf [frameBytes]byte
	for i, p := range f {
		v := p.rgb565()
		buf[2*i] = byte(v)
		buf[2*i+1] = byte(v >> 8)
	}
	return buf
}

// Screen is an open LED matrix framebuffer.
type Screen struct {
	w      io.WriterAt
	closer io.Closer
}

// Open opens the framebuffer device.
func Open(device string) (*Screen, error) {
	f, err := os.OpenFile(device, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("screen: open %s: %w", device, err)
	}
	return &Screen{w: f, closer: f}, nil
}

// NewWriter wraps an arbitrary WriterAt as a Screen. Used by the
// tests.
func NewWriter(w io.WriterAt) *Screen {
	return &Screen{w: w}
}

// WriteFrame pushes a full frame to the matrix.
func (s *Screen) WriteFrame(f *Frame) error {
	buf := f.Encode()
	if _, err := s.w.WriteAt(buf[:], 0); err != nil {
		return fmt.Errorf("screen: write frame: %w", err)
	}
	return nil
}

// Clear blanks the matrix.
func (s *Screen) Clear() error {
	return s.WriteFrame(NewFrame(Black))
}

// ScrollMessage scrolls text across the matrix right to left, one
// column per step.
func (s *Screen) ScrollMessage(msg string, fg, bg Pixel, step time.Duration) error {
	strip := RenderMessage(msg)
	for offset := -Width; offset <= strip.width; offset++ {
		f := NewFrame(bg)
		for y := 0; y < Height; y++ {
			for x := 0; x < Width; x++ {
				if strip.at(offset+x, y) {
					f.SetXY(x, y, fg)
				}
			}
		}
		if err := s.WriteFrame(f); err != nil {
			return err
		}
		time.Sleep(step)
	}
	return s.Clear()
}

// Close releases the framebuffer.
func (s *Screen) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
