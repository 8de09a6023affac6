// Package viewport holds the zoom/pan/rotation state of the image view and
// the geometry that maps between the screen and the displayed image.
package viewport

import (
	"math"

	"elysian-scribe/pkg/geometry"
)

const (
	MinZoom = 0.1
	MaxZoom = 10.0
)

// State describes how the working image is currently displayed.
// Rotation is in degrees, positive = clockwise, and is accumulated without
// wraparound; see DisplayRotation for the normalized value.
type State struct {
	Zoom     float64
	Pan      geometry.Point2D
	Rotation float64
}

// New returns a state at zoom 1 with no pan or rotation.
func New() State {
	return State{Zoom: 1}
}

// SetZoom multiplies the current zoom by factor and clamps the result.
func (s *State) SetZoom(factor float64) {
	s.Zoom = clampZoom(s.Zoom * factor)
}

// PanBy accumulates a pan offset in canvas pixels. Panning off-canvas is allowed.
func (s *State) PanBy(dx, dy float64) {
	s.Pan.X += dx
	s.Pan.Y += dy
}

// Rotate accumulates a rotation in degrees.
func (s *State) Rotate(delta float64) {
	s.Rotation += delta
}

// SetRotation replaces the rotation angle.
func (s *State) SetRotation(degrees float64) {
	s.Rotation = degrees
}

// DisplayRotation returns the rotation normalized to [-180, 180).
func (s State) DisplayRotation() float64 {
	r := math.Mod(s.Rotation+180, 360)
	if r < 0 {
		r += 360
	}
	return r - 180
}

// FitToScreen resets the state so the unrotated image fits the canvas,
// centred, with no pan. It reports false and leaves the state untouched when
// either size is not yet valid; callers retry once a real canvas size is known.
func (s *State) FitToScreen(canvas, img geometry.Size) bool {
	if !canvas.Valid() || !img.Valid() {
		return false
	}
	s.Zoom = clampZoom(math.Min(canvas.Width/img.Width, canvas.Height/img.Height))
	s.Pan = geometry.Point2D{}
	s.Rotation = 0
	return true
}

func clampZoom(z float64) float64 {
	if math.IsNaN(z) || z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}
