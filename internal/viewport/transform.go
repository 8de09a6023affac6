package viewport

import (
	"math"

	"elysian-scribe/pkg/geometry"
)

// RotatedBounds returns the exact axis-aligned bounding box of a w x h
// rectangle rotated by degrees.
func RotatedBounds(w, h, degrees float64) (rw, rh float64) {
	sin, cos := sinCosDeg(degrees)
	rw = math.Abs(w*cos) + math.Abs(h*sin)
	rh = math.Abs(w*sin) + math.Abs(h*cos)
	return rw, rh
}

// RotatedSize is RotatedBounds rounded to the nearest pixel. Every rotated
// pixel buffer in the application is allocated with this size, so geometry
// and pixels agree exactly.
func RotatedSize(w, h int, degrees float64) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	rw, rh := RotatedBounds(float64(w), float64(h), degrees)
	return max(1, int(math.Round(rw))), max(1, int(math.Round(rh)))
}

// sinCosDeg returns sin and cos of an angle in degrees, exact at multiples of 90.
func sinCosDeg(degrees float64) (sin, cos float64) {
	d := math.Mod(degrees, 360)
	if d < 0 {
		d += 360
	}
	switch d {
	case 0:
		return 0, 1
	case 90:
		return 1, 0
	case 180:
		return 0, -1
	case 270:
		return -1, 0
	}
	return math.Sincos(d * math.Pi / 180)
}

// Layout is the placement of the rotated, zoomed working image inside the
// canvas for one State. Three frames are involved:
//
//	source  - pixel coordinates of the unrotated working image
//	rotated - coordinates in the rotated, bounding-box-expanded image, origin top-left
//	screen  - canvas coordinates
//
// Forward/Inverse map between rotated and screen; FromSource/ToSource map
// between source and rotated.
type Layout struct {
	Image    geometry.Size
	Canvas   geometry.Size
	Rotated  geometry.Size
	Zoomed   geometry.Size
	Origin   geometry.Point2D
	Zoom     float64
	Rotation float64

	sin, cos float64
}

// NewLayout computes the layout of an image of logical size img on a canvas.
func NewLayout(s State, img, canvas geometry.Size) Layout {
	zoom := clampZoom(s.Zoom)
	rw, rh := RotatedSize(int(math.Round(img.Width)), int(math.Round(img.Height)), s.Rotation)
	sin, cos := sinCosDeg(s.Rotation)

	zw := float64(rw) * zoom
	zh := float64(rh) * zoom
	return Layout{
		Image:    img,
		Canvas:   canvas,
		Rotated:  geometry.Size{Width: float64(rw), Height: float64(rh)},
		Zoomed:   geometry.Size{Width: zw, Height: zh},
		Origin:   geometry.Point2D{X: s.Pan.X + (canvas.Width-zw)/2, Y: s.Pan.Y + (canvas.Height-zh)/2},
		Zoom:     zoom,
		Rotation: s.Rotation,
		sin:      sin,
		cos:      cos,
	}
}

// Forward maps a point in the rotated frame to the screen.
func (l Layout) Forward(p geometry.Point2D) geometry.Point2D {
	return p.Scale(l.Zoom).Add(l.Origin)
}

// Inverse maps a screen point to the rotated frame.
func (l Layout) Inverse(p geometry.Point2D) geometry.Point2D {
	return p.Sub(l.Origin).Scale(1 / l.Zoom)
}

// FromSource maps a point of the unrotated working image into the rotated frame.
func (l Layout) FromSource(p geometry.Point2D) geometry.Point2D {
	return l.sourceToRotated().Apply(p)
}

// ToSource maps a point of the rotated frame back to the unrotated working image.
func (l Layout) ToSource(p geometry.Point2D) geometry.Point2D {
	inv, _ := l.sourceToRotated().Inverse() // rotations are never singular
	return inv.Apply(p)
}

// ScreenToSource maps a canvas point to working image pixels. It is false
// only for a degenerate zoom.
func (l Layout) ScreenToSource(p geometry.Point2D) (geometry.Point2D, bool) {
	inv, ok := l.SourceToScreen().Inverse()
	if !ok {
		return geometry.Point2D{}, false
	}
	return inv.Apply(p), true
}

// SourceToScreen returns the full source -> screen transform.
func (l Layout) SourceToScreen() geometry.AffineTransform {
	toScreen := geometry.Translation(l.Origin.X, l.Origin.Y).Compose(geometry.Scale(l.Zoom, l.Zoom))
	return toScreen.Compose(l.sourceToRotated())
}

func (l Layout) sourceToRotated() geometry.AffineTransform {
	toCenter := geometry.Translation(-l.Image.Width/2, -l.Image.Height/2)
	fromCenter := geometry.Translation(l.Rotated.Width/2, l.Rotated.Height/2)
	return fromCenter.Compose(geometry.RotationSinCos(l.sin, l.cos)).Compose(toCenter)
}

// ScreenBounds is the rectangle the image occupies on the canvas.
func (l Layout) ScreenBounds() geometry.Rect {
	return geometry.Rect{X: l.Origin.X, Y: l.Origin.Y, Width: l.Zoomed.Width, Height: l.Zoomed.Height}
}

// RotatedBounds is the rotated frame's extent, [0,rw] x [0,rh].
func (l Layout) RotatedBounds() geometry.Rect {
	return geometry.Rect{Width: l.Rotated.Width, Height: l.Rotated.Height}
}
