// Package deskew estimates how far a photographed inscription is tilted from
// the line segments found in it.
package deskew

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrNoLines is returned when too few near-horizontal segments are found.
var ErrNoLines = errors.New("no usable lines found")

// Segment is a detected line segment in image coordinates (y down).
type Segment struct {
	X1, Y1, X2, Y2 float64
}

// Length returns the segment length.
func (s Segment) Length() float64 {
	return math.Hypot(s.X2-s.X1, s.Y2-s.Y1)
}

// Angle returns the segment direction in degrees, normalized to (-90, 90].
// Positive angles slope down to the right, i.e. clockwise on screen.
func (s Segment) Angle() float64 {
	a := math.Atan2(s.Y2-s.Y1, s.X2-s.X1) * 180 / math.Pi
	if a > 90 {
		a -= 180
	} else if a <= -90 {
		a += 180
	}
	return a
}

// Options tunes Estimate.
type Options struct {
	// MaxTilt discards segments steeper than this many degrees.
	MaxTilt float64
	// MinSegments is the fewest segments that give an estimate.
	MinSegments int
}

// DefaultOptions returns the settings used by the viewer.
func DefaultOptions() Options {
	return Options{MaxTilt: 30, MinSegments: 3}
}

// Estimate returns the dominant tilt of segments: the length-weighted median
// angle of the segments within MaxTilt of horizontal. Rotating the image by
// the negated result levels it.
func Estimate(segments []Segment, opts Options) (float64, error) {
	if opts.MaxTilt <= 0 {
		opts.MaxTilt = DefaultOptions().MaxTilt
	}
	if opts.MinSegments <= 0 {
		opts.MinSegments = 1
	}

	var angles, weights []float64
	for _, s := range segments {
		l := s.Length()
		if l == 0 {
			continue
		}
		a := s.Angle()
		if math.Abs(a) > opts.MaxTilt {
			continue
		}
		angles = append(angles, a)
		weights = append(weights, l)
	}
	if len(angles) < opts.MinSegments || len(angles) == 0 {
		return 0, ErrNoLines
	}
	return WeightedMedian(angles, weights), nil
}

// WeightedMedian returns the weighted median of x. x and w must have the same
// non-zero length; x is not modified.
func WeightedMedian(x, w []float64) float64 {
	xs := append([]float64(nil), x...)
	inds := make([]int, len(xs))
	floats.Argsort(xs, inds)
	ws := make([]float64, len(xs))
	for i, j := range inds {
		ws[i] = w[j]
	}
	return stat.Quantile(0.5, stat.Empirical, xs, ws)
}
