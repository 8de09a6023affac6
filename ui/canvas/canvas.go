// Package canvas provides the image canvas: the working copy drawn through
// the session's viewport, with selection and straightening overlays.
package canvas

import (
	"image"

	"elysian-scribe/internal/app"
	"elysian-scribe/internal/selection"
	"elysian-scribe/pkg/colorutil"
	"elysian-scribe/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Above this zoom the image is drawn with nearest-neighbour sampling so
// individual pixels stay visible.
const pixelZoom = 3.0

// ImageCanvas displays the current image of a session and turns pointer
// input into session gestures.
type ImageCanvas struct {
	widget.BaseWidget

	session *app.Session

	// Display state
	raster  *fynecanvas.Raster
	content *draggableContent

	// Interaction state
	dragging bool
	lastDrag geometry.Point2D
	pointer  *geometry.Point2D

	// Callbacks
	onSelect  func(r selection.Rect)
	onError   func(err error)
	onPointer func(source geometry.Point2D, inside bool)
}

// draggableContent wraps the raster to handle mouse events.
type draggableContent struct {
	widget.BaseWidget
	canvas *ImageCanvas
	raster *fynecanvas.Raster
}

var (
	_ fyne.Draggable         = (*draggableContent)(nil)
	_ fyne.Scrollable        = (*draggableContent)(nil)
	_ fyne.Tappable          = (*draggableContent)(nil)
	_ fyne.SecondaryTappable = (*draggableContent)(nil)
	_ desktop.Hoverable      = (*draggableContent)(nil)
)

func newDraggableContent(ic *ImageCanvas, raster *fynecanvas.Raster) *draggableContent {
	dc := &draggableContent{
		canvas: ic,
		raster: raster,
	}
	dc.ExtendBaseWidget(dc)
	return dc
}

func (dc *draggableContent) CreateRenderer() fyne.WidgetRenderer {
	return &draggableContentRenderer{content: dc}
}

func (dc *draggableContent) MinSize() fyne.Size {
	return dc.raster.MinSize()
}

// Dragged starts a gesture at the drag origin on the first event, then
// follows the pointer.
func (dc *draggableContent) Dragged(ev *fyne.DragEvent) {
	s := dc.canvas.session
	if s.Mode() == selection.ModeStraightening {
		return
	}
	pos := toPoint(ev.Position)
	if !dc.canvas.dragging {
		dc.canvas.dragging = true
		s.Press(toPoint(fyne.NewPos(ev.Position.X-ev.Dragged.DX, ev.Position.Y-ev.Dragged.DY)))
	}
	dc.canvas.lastDrag = pos
	s.Drag(pos)
}

func (dc *draggableContent) DragEnd() {
	if !dc.canvas.dragging {
		return
	}
	dc.canvas.dragging = false
	dc.canvas.finishGesture(dc.canvas.lastDrag)
}

func (dc *draggableContent) Scrolled(ev *fyne.ScrollEvent) {
	// Use mouse wheel for zooming
	if ev.Scrolled.DY > 0 {
		dc.canvas.session.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		dc.canvas.session.ZoomOut()
	}
}

// Tapped records a straightening point, or clears the selection.
func (dc *draggableContent) Tapped(ev *fyne.PointEvent) {
	// Workaround for Fyne bug: reject clicks outside widget bounds
	size := dc.Size()
	if ev.Position.X < 0 || ev.Position.Y < 0 ||
		ev.Position.X > size.Width || ev.Position.Y > size.Height {
		return
	}

	s := dc.canvas.session
	p := toPoint(ev.Position)
	s.Press(p)
	if s.Mode() != selection.ModeStraightening {
		// a click is an empty drag; it only drops the old selection
		_, _ = s.Release(p)
	}
}

// TappedSecondary leaves straightening mode.
func (dc *draggableContent) TappedSecondary(*fyne.PointEvent) {
	if dc.canvas.session.Mode() == selection.ModeStraightening {
		dc.canvas.session.ToggleStraighten()
	}
}

func (dc *draggableContent) MouseIn(ev *desktop.MouseEvent) {
	dc.MouseMoved(ev)
}

func (dc *draggableContent) MouseMoved(ev *desktop.MouseEvent) {
	ic := dc.canvas
	p := toPoint(ev.Position)
	ic.pointer = &p
	if ic.onPointer != nil {
		if layout, ok := ic.session.Layout(); ok {
			if src, ok := layout.ScreenToSource(p); ok {
				ic.onPointer(src, layout.ScreenBounds().Contains(p))
			}
		}
	}
	if len(ic.session.StraightenPoints()) == 1 {
		ic.raster.Refresh()
	}
}

func (dc *draggableContent) MouseOut() {
	dc.canvas.pointer = nil
	if len(dc.canvas.session.StraightenPoints()) == 1 {
		dc.canvas.raster.Refresh()
	}
}

type draggableContentRenderer struct {
	content *draggableContent
}

func (r *draggableContentRenderer) Layout(size fyne.Size) {
	r.content.raster.Resize(size)
}

func (r *draggableContentRenderer) MinSize() fyne.Size {
	return r.content.raster.MinSize()
}

func (r *draggableContentRenderer) Refresh() {
	r.content.raster.Refresh()
}

func (r *draggableContentRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.content.raster}
}

func (r *draggableContentRenderer) Destroy() {}

// NewImageCanvas creates a canvas bound to session. It redraws itself on
// the session events that change what is shown.
func NewImageCanvas(session *app.Session) *ImageCanvas {
	ic := &ImageCanvas{session: session}

	// Create the raster for drawing
	ic.raster = fynecanvas.NewRaster(ic.draw)
	ic.raster.ScaleMode = fynecanvas.ImageScalePixels
	ic.raster.SetMinSize(fyne.NewSize(200, 150))

	// Wrap raster in draggable content for mouse events
	ic.content = newDraggableContent(ic, ic.raster)

	refresh := func(interface{}) { ic.Refresh() }
	for _, ev := range []app.EventType{
		app.EventFolderOpened,
		app.EventImageLoaded,
		app.EventViewportChanged,
		app.EventSelectionChanged,
		app.EventModeChanged,
		app.EventImageOverwritten,
	} {
		session.On(ev, refresh)
	}

	ic.ExtendBaseWidget(ic)
	return ic
}

// OnSelect sets the callback for a completed rectangle selection.
func (ic *ImageCanvas) OnSelect(callback func(r selection.Rect)) {
	ic.onSelect = callback
}

// OnError sets the callback for rejected gestures.
func (ic *ImageCanvas) OnError(callback func(err error)) {
	ic.onError = callback
}

// OnPointer sets the callback reporting the pointer position in working
// image pixels, and whether it is over the image.
func (ic *ImageCanvas) OnPointer(callback func(source geometry.Point2D, inside bool)) {
	ic.onPointer = callback
}

// Refresh redraws the canvas.
func (ic *ImageCanvas) Refresh() {
	ic.raster.Refresh()
}

func (ic *ImageCanvas) finishGesture(p geometry.Point2D) {
	r, err := ic.session.Release(p)
	switch {
	case err != nil:
		if ic.onError != nil {
			ic.onError(err)
		}
	case r.Valid() && ic.onSelect != nil:
		ic.onSelect(r)
	}
}

// draw is the raster drawing function. w and h are in output pixels, which
// differ from canvas units by the window scale.
func (ic *ImageCanvas) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(output, output.Bounds(), &image.Uniform{C: colorutil.Background}, image.Point{}, xdraw.Src)

	scale := 1.0
	if size := ic.content.Size(); size.Width > 0 {
		scale = float64(w) / float64(size.Width)
	}

	pair := ic.session.Store().Current()
	layout, ok := ic.session.Layout()
	if ok && pair != nil && pair.Working != nil {
		m := geometry.Scale(scale, scale).Compose(layout.SourceToScreen())
		var interp xdraw.Interpolator = xdraw.ApproxBiLinear
		if layout.Zoom*scale >= pixelZoom {
			interp = xdraw.NearestNeighbor
		}
		interp.Transform(output, f64.Aff3{m.A, m.B, m.TX, m.C, m.D, m.TY}, pair.Working, pair.Working.Bounds(), xdraw.Over, nil)
	}

	drawOverlay(output, overlayFor(ic.session, ic.pointer), scale)

	return output
}

func toPoint(p fyne.Position) geometry.Point2D {
	return geometry.Point2D{X: float64(p.X), Y: float64(p.Y)}
}

// CreateRenderer implements fyne.Widget.
func (ic *ImageCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &imageCanvasRenderer{canvas: ic}
}

type imageCanvasRenderer struct {
	canvas *ImageCanvas
}

func (r *imageCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.content.Resize(size)
	r.canvas.session.Resize(geometry.Size{Width: float64(size.Width), Height: float64(size.Height)})
}

func (r *imageCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *imageCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *imageCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.content}
}

func (r *imageCanvasRenderer) Destroy() {}
