// Package selection captures screen-space rectangles and straightening
// points, and tracks which interaction mode is active.
package selection

import (
	"errors"
	"math"

	"elysian-scribe/pkg/geometry"
)

// ErrInvalidSelection is returned for zero-area or out-of-bounds rectangles.
var ErrInvalidSelection = errors.New("invalid selection")

// Selection is a drag from Start to End in screen coordinates.
type Selection struct {
	Start geometry.Point2D
	End   geometry.Point2D
}

// Rect is a normalized selection: X1 < X2 and Y1 < Y2.
type Rect struct {
	X1, Y1, X2, Y2 float64
}

// Normalize orders the corners. A selection with zero width or height is invalid.
func (s Selection) Normalize() (Rect, error) {
	r := Rect{
		X1: math.Min(s.Start.X, s.End.X),
		Y1: math.Min(s.Start.Y, s.End.Y),
		X2: math.Max(s.Start.X, s.End.X),
		Y2: math.Max(s.Start.Y, s.End.Y),
	}
	if !r.Valid() {
		return Rect{}, ErrInvalidSelection
	}
	return r, nil
}

// Valid reports whether the rectangle has positive area.
func (r Rect) Valid() bool {
	return r.X2 > r.X1 && r.Y2 > r.Y1
}

// Min returns the top-left corner.
func (r Rect) Min() geometry.Point2D {
	return geometry.Point2D{X: r.X1, Y: r.Y1}
}

// Max returns the bottom-right corner.
func (r Rect) Max() geometry.Point2D {
	return geometry.Point2D{X: r.X2, Y: r.Y2}
}

// Width returns X2-X1.
func (r Rect) Width() float64 { return r.X2 - r.X1 }

// Height returns Y2-Y1.
func (r Rect) Height() float64 { return r.Y2 - r.Y1 }

// StraightenAngle returns the angle in degrees of the line from p1 to p2,
// measured in screen coordinates (y down), so a line falling to the right
// has a positive angle.
func StraightenAngle(p1, p2 geometry.Point2D) float64 {
	return math.Atan2(p2.Y-p1.Y, p2.X-p1.X) * 180 / math.Pi
}
