// Package colorutil provides the overlay palette and small pixel blending
// helpers shared by the canvas.
package colorutil

import (
	"image"
	"image/color"
)

// Common overlay colors used throughout the application.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Yellow  = color.RGBA{R: 255, G: 255, B: 0, A: 255}

	// Background is what the canvas shows around the image.
	Background = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 255}
)

// WithAlpha returns c with its alpha replaced, premultiplying the channels.
func WithAlpha(c color.RGBA, a uint8) color.RGBA {
	scale := func(v uint8) uint8 { return uint8(uint16(v) * uint16(a) / 255) }
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: a}
}

// BlendPixel composites the premultiplied color c over the pixel at (x, y).
// Points outside the image are ignored.
func BlendPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if !(image.Point{X: x, Y: y}.In(img.Rect)) {
		return
	}
	i := img.PixOffset(x, y)
	inv := 255 - uint16(c.A)
	p := img.Pix[i : i+4 : i+4]
	p[0] = c.R + uint8(uint16(p[0])*inv/255)
	p[1] = c.G + uint8(uint16(p[1])*inv/255)
	p[2] = c.B + uint8(uint16(p[2])*inv/255)
	p[3] = c.A + uint8(uint16(p[3])*inv/255)
}
