// Package region maps a screen selection back to the original photograph and
// extracts the selected pixels for recognition or a permanent crop.
package region

import (
	"errors"
	"fmt"
	"image"

	scribeimage "elysian-scribe/internal/image"
	"elysian-scribe/internal/selection"
	"elysian-scribe/internal/viewport"
	"elysian-scribe/pkg/geometry"
)

var (
	// ErrInvalidSelection is a zero-area or fully out-of-bounds selection.
	ErrInvalidSelection = selection.ErrInvalidSelection
	// ErrDestructiveWrite means the crop could not be written; the original is untouched.
	ErrDestructiveWrite = scribeimage.ErrDestructiveWrite
	// ErrRecognitionFailed means the recognizer errored or returned nothing.
	ErrRecognitionFailed = errors.New("recognition failed")
)

// CropBox is a rectangle in the frame of the original image rotated by the
// current angle with bounding-box expansion.
type CropBox struct {
	Min geometry.Point2D
	Max geometry.Point2D
}

// Width returns the box width.
func (b CropBox) Width() float64 { return b.Max.X - b.Min.X }

// Height returns the box height.
func (b CropBox) Height() float64 { return b.Max.Y - b.Min.Y }

// Pixels snaps the box to whole pixels.
func (b CropBox) Pixels() image.Rectangle {
	return geometry.RectFromCorners(b.Min, b.Max).Round().Image()
}

func (b CropBox) String() string {
	return fmt.Sprintf("(%.1f,%.1f)-(%.1f,%.1f)", b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
}

// ComputeCropBox maps a normalized screen selection through the inverse view
// transform, clamps it to the rotated working image and scales it to the
// original. The scaling is valid because rotating the original with the same
// expansion rule gives a box exactly scaleToOriginal times larger.
func ComputeCropBox(sel selection.Rect, layout viewport.Layout, scaleToOriginal float64) (CropBox, error) {
	if !sel.Valid() {
		return CropBox{}, ErrInvalidSelection
	}
	if scaleToOriginal <= 0 {
		return CropBox{}, fmt.Errorf("invalid scale %v", scaleToOriginal)
	}

	bounds := layout.RotatedBounds()
	p1 := layout.Inverse(sel.Min()).Clamp(0, 0, bounds.Width, bounds.Height)
	p2 := layout.Inverse(sel.Max()).Clamp(0, 0, bounds.Width, bounds.Height)
	if p2.X <= p1.X || p2.Y <= p1.Y {
		return CropBox{}, fmt.Errorf("%w: selection lies outside the image", ErrInvalidSelection)
	}

	return CropBox{
		Min: p1.Scale(scaleToOriginal),
		Max: p2.Scale(scaleToOriginal),
	}, nil
}
