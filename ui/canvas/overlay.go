// Package canvas provides overlay types for the image canvas.
package canvas

import (
	"image/color"

	"elysian-scribe/internal/app"
	"elysian-scribe/internal/selection"
	"elysian-scribe/pkg/colorutil"
	"elysian-scribe/pkg/geometry"
)

// FillPattern indicates how to draw a rectangle.
type FillPattern int

const (
	FillNone   FillPattern = iota // Just outline
	FillTinted                    // Outline plus a translucent fill
	FillDashed                    // Dashed outline, used while dragging
)

// OverlayRect represents a rectangle to draw on the overlay, in canvas units.
type OverlayRect struct {
	X1, Y1, X2, Y2 float64
	Fill           FillPattern
	Color          color.RGBA
}

// OverlayMarker is a numbered point, used for straightening clicks.
type OverlayMarker struct {
	At    geometry.Point2D
	Label string
}

// Overlay is everything drawn on top of the image for one frame.
type Overlay struct {
	Rectangles []OverlayRect
	Markers    []OverlayMarker
	// Guide is drawn from the first marker to the pointer while straightening.
	Guide *[2]geometry.Point2D
}

// overlayFor collects the session's selection state into an overlay.
func overlayFor(s *app.Session, pointer *geometry.Point2D) Overlay {
	var o Overlay
	if r, ok := s.Selection(); ok {
		o.Rectangles = append(o.Rectangles, OverlayRect{
			X1: r.X1, Y1: r.Y1, X2: r.X2, Y2: r.Y2,
			Fill:  FillTinted,
			Color: colorutil.Cyan,
		})
	}
	if sel, ok := s.InProgress(); ok {
		o.Rectangles = append(o.Rectangles, OverlayRect{
			X1: sel.Start.X, Y1: sel.Start.Y, X2: sel.End.X, Y2: sel.End.Y,
			Fill:  FillDashed,
			Color: colorutil.Yellow,
		})
	}
	if s.Mode() == selection.ModeStraightening {
		points := s.StraightenPoints()
		for i, p := range points {
			o.Markers = append(o.Markers, OverlayMarker{At: p, Label: string(rune('1' + i))})
		}
		if len(points) == 1 && pointer != nil {
			o.Guide = &[2]geometry.Point2D{points[0], *pointer}
		}
	}
	return o
}
