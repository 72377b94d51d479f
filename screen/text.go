package screen

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Strip is a 1-bit horizontal band of rendered text, Height pixels
// tall, scrolled across the matrix one column at a time.
type Strip struct {
	img   *image.Gray
	width int
}

// at reports whether the pixel at (x, y) is lit. Coordinates outside
// the strip are dark, which gives the scroll its leading and trailing
// blank columns.
func (s *Strip) at(x, y int) bool {
	if x < 0 || x >= s.width || y < 0 || y >= Height {
		return false
	}
	return s.img.GrayAt(x, y).Y > 0x7f
}

// Width returns the strip width in columns.
func (s *Strip) Width() int { return s.width }

// At reports whether the pixel at (x, y) is lit.
func (s *Strip) At(x, y int) bool { return s.at(x, y) }

// RenderMessage rasterizes msg into a strip using the same 7x13 face
// the OLED display uses. The face is taller than the matrix, so the
// baseline sits on the bottom row: descenders and the very top of the
// tallest glyphs are clipped, which reads fine on 8 LEDs.
func RenderMessage(msg string) *Strip {
	face := basicfont.Face7x13
	width := font.MeasureString(face, msg).Ceil() + 2

	img := image.NewGray(image.Rect(0, 0, width, Height))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(1, Height),
	}
	drawer.DrawString(msg)

	return &Strip{img: img, width: width}
}
