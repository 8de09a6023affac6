// Package canvas provides drawing primitives for the image canvas.
package canvas

import (
	"image"
	"image/color"
	"math"

	"elysian-scribe/pkg/colorutil"
)

// digitPatterns contains 3x5 pixel patterns for digits 0-9.
// Each digit is represented as 5 rows of 3 bits.
var digitPatterns = [10][5]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111}, // 0
	{0b010, 0b110, 0b010, 0b010, 0b111}, // 1
	{0b111, 0b001, 0b111, 0b100, 0b111}, // 2
	{0b111, 0b001, 0b111, 0b001, 0b111}, // 3
	{0b101, 0b101, 0b111, 0b001, 0b001}, // 4
	{0b111, 0b100, 0b111, 0b001, 0b111}, // 5
	{0b111, 0b100, 0b111, 0b101, 0b111}, // 6
	{0b111, 0b001, 0b001, 0b001, 0b001}, // 7
	{0b111, 0b101, 0b111, 0b101, 0b111}, // 8
	{0b111, 0b101, 0b111, 0b001, 0b111}, // 9
}

// letterPatterns contains 3x5 pixel patterns for letters A-Z and common symbols.
// Each letter is represented as 5 rows of 3 bits.
var letterPatterns = map[rune][5]uint8{
	'A': {0b010, 0b101, 0b111, 0b101, 0b101},
	'B': {0b110, 0b101, 0b110, 0b101, 0b110},
	'C': {0b011, 0b100, 0b100, 0b100, 0b011},
	'D': {0b110, 0b101, 0b101, 0b101, 0b110},
	'E': {0b111, 0b100, 0b110, 0b100, 0b111},
	'F': {0b111, 0b100, 0b110, 0b100, 0b100},
	'G': {0b011, 0b100, 0b101, 0b101, 0b011},
	'H': {0b101, 0b101, 0b111, 0b101, 0b101},
	'I': {0b111, 0b010, 0b010, 0b010, 0b111},
	'J': {0b001, 0b001, 0b001, 0b101, 0b010},
	'K': {0b101, 0b101, 0b110, 0b101, 0b101},
	'L': {0b100, 0b100, 0b100, 0b100, 0b111},
	'M': {0b101, 0b111, 0b101, 0b101, 0b101},
	'N': {0b101, 0b111, 0b111, 0b101, 0b101},
	'O': {0b010, 0b101, 0b101, 0b101, 0b010},
	'P': {0b110, 0b101, 0b110, 0b100, 0b100},
	'Q': {0b010, 0b101, 0b101, 0b111, 0b011},
	'R': {0b110, 0b101, 0b110, 0b101, 0b101},
	'S': {0b011, 0b100, 0b010, 0b001, 0b110},
	'T': {0b111, 0b010, 0b010, 0b010, 0b010},
	'U': {0b101, 0b101, 0b101, 0b101, 0b111},
	'V': {0b101, 0b101, 0b101, 0b101, 0b010},
	'W': {0b101, 0b101, 0b101, 0b111, 0b101},
	'X': {0b101, 0b101, 0b010, 0b101, 0b101},
	'Y': {0b101, 0b101, 0b010, 0b010, 0b010},
	'Z': {0b111, 0b001, 0b010, 0b100, 0b111},
	'+': {0b000, 0b010, 0b111, 0b010, 0b000},
	'-': {0b000, 0b000, 0b111, 0b000, 0b000},
	'*': {0b000, 0b101, 0b010, 0b101, 0b000},
	'.': {0b000, 0b000, 0b000, 0b000, 0b010},
	' ': {0b000, 0b000, 0b000, 0b000, 0b000},
}

// getCharPattern returns the 3x5 pixel pattern for a character.
// Returns a zero pattern for unsupported characters.
func getCharPattern(ch rune) [5]uint8 {
	if ch >= '0' && ch <= '9' {
		return digitPatterns[ch-'0']
	}
	// Convert lowercase to uppercase
	if ch >= 'a' && ch <= 'z' {
		ch = ch - 'a' + 'A'
	}
	if pattern, ok := letterPatterns[ch]; ok {
		return pattern
	}
	return [5]uint8{} // Empty pattern for unsupported characters
}

// drawOverlay draws an overlay on the output image. scale converts canvas
// units to output pixels.
func drawOverlay(output *image.RGBA, overlay Overlay, scale float64) {
	for _, r := range overlay.Rectangles {
		x1, y1 := toPixel(math.Min(r.X1, r.X2), scale), toPixel(math.Min(r.Y1, r.Y2), scale)
		x2, y2 := toPixel(math.Max(r.X1, r.X2), scale), toPixel(math.Max(r.Y1, r.Y2), scale)
		switch r.Fill {
		case FillDashed:
			drawSelectionRect(output, x1, y1, x2, y2, r.Color)
		case FillTinted:
			fillRect(output, x1, y1, x2, y2, colorutil.WithAlpha(r.Color, 0x30))
			drawRect(output, x1, y1, x2, y2, r.Color, thickness(scale))
		default:
			drawRect(output, x1, y1, x2, y2, r.Color, thickness(scale))
		}
	}

	if g := overlay.Guide; g != nil {
		drawLine(output, toPixel(g[0].X, scale), toPixel(g[0].Y, scale), toPixel(g[1].X, scale), toPixel(g[1].Y, scale), colorutil.Magenta, thickness(scale))
	}

	for _, m := range overlay.Markers {
		cx, cy := toPixel(m.At.X, scale), toPixel(m.At.Y, scale)
		radius := int(math.Round(5 * scale))
		drawCircle(output, cx, cy, radius+1, colorutil.Black)
		drawCircle(output, cx, cy, radius, colorutil.Magenta)
		drawLabel(output, m.Label, cx+radius+2, cy-radius-2, colorutil.White, max(1, int(scale*2)))
	}
}

func toPixel(v, scale float64) int {
	return int(math.Round(v * scale))
}

func thickness(scale float64) int {
	return max(1, int(math.Round(scale)))
}

// drawSelectionRect draws a selection rectangle with a distinctive pattern.
func drawSelectionRect(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	bounds := output.Bounds()
	set := func(x, y int) {
		if (x+y)%4 < 2 && image.Pt(x, y).In(bounds) {
			output.SetRGBA(x, y, col)
		}
	}

	// Draw dashed rectangle outline (alternate pixels)
	for x := x1; x <= x2; x++ {
		set(x, y1)
		set(x, y2)
	}
	for y := y1; y <= y2; y++ {
		set(x1, y)
		set(x2, y)
	}
}

// drawRect draws a solid rectangle outline.
func drawRect(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	drawLine(output, x1, y1, x2, y1, col, thickness)
	drawLine(output, x2, y1, x2, y2, col, thickness)
	drawLine(output, x2, y2, x1, y2, col, thickness)
	drawLine(output, x1, y2, x1, y1, col, thickness)
}

// fillRect blends a translucent color over a rectangle.
func fillRect(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	r := image.Rect(x1, y1, x2+1, y2+1).Intersect(output.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			colorutil.BlendPixel(output, x, y, col)
		}
	}
}

// drawCircle draws a filled circle.
func drawCircle(output *image.RGBA, cx, cy, radius int, col color.RGBA) {
	bounds := output.Bounds()
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > r2 {
				continue
			}
			if p := image.Pt(cx+dx, cy+dy); p.In(bounds) {
				output.SetRGBA(p.X, p.Y, col)
			}
		}
	}
}

// drawLine draws a line between two points using Bresenham's algorithm.
func drawLine(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	bounds := output.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		// Draw thick point
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				px, py := x1+s, y1+t
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					output.SetRGBA(px, py, col)
				}
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// drawLabel draws a label with its top-left corner at (x, y), scale output
// pixels per font pixel.
func drawLabel(output *image.RGBA, label string, x, y int, col color.RGBA, scale int) {
	charWidth := 3 * scale
	spacing := scale
	bounds := output.Bounds()

	for i, ch := range label {
		pattern := getCharPattern(ch)
		charX := x + i*(charWidth+spacing)

		for row := 0; row < 5; row++ {
			for c := 0; c < 3; c++ {
				if (pattern[row] & (1 << (2 - c))) == 0 {
					continue
				}
				// Draw a scaled pixel block
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						p := image.Pt(charX+c*scale+dx, y+row*scale+dy)
						if p.In(bounds) {
							output.SetRGBA(p.X, p.Y, col)
						}
					}
				}
			}
		}
	}
}
