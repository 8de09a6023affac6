// Package app ties the viewport, selection, image store and catalog together
// into the session the window drives, and provides application events.
package app

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"elysian-scribe/internal/batch"
	scribeimage "elysian-scribe/internal/image"
	"elysian-scribe/internal/logging"
	"elysian-scribe/internal/records"
	"elysian-scribe/internal/region"
	"elysian-scribe/internal/selection"
	"elysian-scribe/internal/viewport"
	"elysian-scribe/pkg/geometry"

	"github.com/sirupsen/logrus"
)

// ErrNotConfirmed is returned when a permanent crop is requested without the
// user's confirmation.
var ErrNotConfirmed = errors.New("permanent crop not confirmed")

// EventType identifies different application events.
type EventType int

const (
	EventFolderOpened EventType = iota
	EventImageLoaded
	EventViewportChanged
	EventSelectionChanged
	EventModeChanged
	EventTextRecognized
	EventImageOverwritten
	EventRecordsSaved
	EventDraftChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Tool is what a drag on the canvas does outside straightening mode.
type Tool int

const (
	ToolSelect Tool = iota
	ToolPan
)

func (t Tool) String() string {
	if t == ToolPan {
		return "Pan"
	}
	return "Select"
}

// SkewEstimator measures the tilt of an image in degrees, positive clockwise.
type SkewEstimator interface {
	EstimateSkew(img image.Image) (float64, error)
}

// Config configures a Session.
type Config struct {
	MaxDimension int
	JPEGQuality  int
	Language     string
	ZoomStep     float64
	RotateStep   float64

	Recognizer region.Recognizer
	Skew       SkewEstimator

	Catalog     *records.Book
	CatalogPath string

	Logger *logrus.Logger
}

// Session is the controller behind the main window. All methods run on the
// UI goroutine; only the listener table is locked.
type Session struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventListener

	store     *scribeimage.Store
	view      viewport.State
	canvas    geometry.Size
	fitFailed bool

	machine *selection.Machine
	tool    Tool
	panning bool
	panLast geometry.Point2D

	extractor *region.Extractor
	skew      SkewEstimator

	book        *records.Book
	catalogPath string
	draft       records.Draft

	zoomStep   float64
	rotateStep float64
	logger     *logrus.Logger
}

// NewSession creates a session with no folder open.
func NewSession(cfg Config) *Session {
	if cfg.ZoomStep <= 1 {
		cfg.ZoomStep = 1.1
	}
	if cfg.RotateStep <= 0 {
		cfg.RotateStep = 1
	}
	if cfg.Catalog == nil {
		cfg.Catalog = records.NewBook()
	}
	if cfg.CatalogPath == "" {
		cfg.CatalogPath = records.DefaultPath
	}
	logger := logging.OrDiscard(cfg.Logger)

	s := &Session{
		listeners: make(map[EventType][]EventListener),
		store: scribeimage.NewStore(scribeimage.StoreOptions{
			MaxDimension: cfg.MaxDimension,
			JPEGQuality:  cfg.JPEGQuality,
			Logger:       logger,
		}),
		view:        viewport.New(),
		machine:     selection.NewMachine(),
		extractor:   region.NewExtractor(cfg.Recognizer, region.Options{Language: cfg.Language, Logger: logger}),
		skew:        cfg.Skew,
		book:        cfg.Catalog,
		catalogPath: cfg.CatalogPath,
		zoomStep:    cfg.ZoomStep,
		rotateStep:  cfg.RotateStep,
		logger:      logger,
	}
	s.store.BeforeNavigate = func(string) { s.SaveDraft() }
	return s
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Store returns the image store.
func (s *Session) Store() *scribeimage.Store { return s.store }

// Catalog returns the record book.
func (s *Session) Catalog() *records.Book { return s.book }

// CatalogPath returns where the catalog is saved.
func (s *Session) CatalogPath() string { return s.catalogPath }

// View returns the viewport state.
func (s *Session) View() viewport.State { return s.view }

// Tool returns the active drag tool.
func (s *Session) Tool() Tool { return s.tool }

// Mode returns the interaction mode.
func (s *Session) Mode() selection.Mode { return s.machine.Mode() }

// ZoomStep returns the zoom factor of one zoom step.
func (s *Session) ZoomStep() float64 { return s.zoomStep }

// RotateStep returns the rotation of one rotate step in degrees.
func (s *Session) RotateStep() float64 { return s.rotateStep }

// Language returns the recognition language.
func (s *Session) Language() string { return s.extractor.Language() }

// SetLanguage changes the recognition language.
func (s *Session) SetLanguage(lang string) { s.extractor.SetLanguage(lang) }

// Selection returns the current completed selection.
func (s *Session) Selection() (selection.Rect, bool) { return s.machine.Current() }

// InProgress returns the rectangle being dragged.
func (s *Session) InProgress() (selection.Selection, bool) { return s.machine.InProgress() }

// StraightenPoints returns the straightening points recorded so far.
func (s *Session) StraightenPoints() []geometry.Point2D { return s.machine.Points() }

// Layout returns the placement of the working image on the canvas.
func (s *Session) Layout() (viewport.Layout, bool) {
	pair := s.store.Current()
	if pair == nil {
		return viewport.Layout{}, false
	}
	return viewport.NewLayout(s.view, pair.WorkingSize(), s.canvas), true
}

// OpenFolder replaces the navigation sequence with the images in dir.
func (s *Session) OpenFolder(dir string) error {
	if err := s.store.OpenFolder(dir); err != nil {
		return err
	}
	s.Emit(EventFolderOpened, dir)
	s.afterLoad()
	return nil
}

// Rescan refreshes the folder listing, keeping the current image when it
// still exists.
func (s *Session) Rescan() error {
	changed, err := s.store.Rescan()
	s.Emit(EventFolderOpened, s.store.Dir())
	if changed {
		s.afterLoad()
	}
	return err
}

// Next moves to the next image. At the last image it is a no-op.
func (s *Session) Next() (bool, error) {
	return s.navigated(s.store.Next())
}

// Previous moves to the previous image. At the first image it is a no-op.
func (s *Session) Previous() (bool, error) {
	return s.navigated(s.store.Previous())
}

// GoTo jumps to image i of the folder.
func (s *Session) GoTo(i int) (bool, error) {
	return s.navigated(s.store.GoTo(i))
}

func (s *Session) navigated(ok bool, err error) (bool, error) {
	if ok {
		s.afterLoad()
	}
	if err != nil {
		s.logger.WithError(err).Warn("Navigation skipped entries")
	}
	return ok, err
}

func (s *Session) afterLoad() {
	s.machine.Reset()
	s.panning = false
	s.draft = s.book.DraftFor(s.store.CurrentName())
	s.fit()
	if s.store.State() == scribeimage.StateLoaded {
		s.Emit(EventImageLoaded, s.store.CurrentName())
	} else {
		s.Emit(EventImageLoaded, "")
	}
	s.Emit(EventDraftChanged, s.draft)
	s.Emit(EventModeChanged, s.machine.Mode())
	s.Emit(EventViewportChanged, s.view)
}

// fit resets the view to fit the canvas. On a canvas that has no size yet
// the fit is retried on the next Resize.
func (s *Session) fit() {
	pair := s.store.Current()
	if pair == nil {
		s.view = viewport.New()
		s.fitFailed = false
		return
	}
	if !s.view.FitToScreen(s.canvas, pair.WorkingSize()) {
		s.view.Pan = geometry.Point2D{}
		s.view.Rotation = 0
		s.fitFailed = true
		return
	}
	s.fitFailed = false
}

// PendingFit reports whether a fit is waiting for a usable canvas size.
func (s *Session) PendingFit() bool { return s.fitFailed }

// Resize records the canvas size.
func (s *Session) Resize(canvas geometry.Size) {
	if canvas == s.canvas {
		return
	}
	s.canvas = canvas
	if s.fitFailed {
		s.fit()
	}
	s.viewChanged()
}

// Canvas returns the last canvas size.
func (s *Session) Canvas() geometry.Size { return s.canvas }

// viewChanged drops the selection, whose screen rectangle no longer covers
// the same pixels, and notifies listeners.
func (s *Session) viewChanged() {
	if _, ok := s.machine.Current(); ok {
		s.machine.ClearSelection()
		s.Emit(EventSelectionChanged, nil)
	}
	s.Emit(EventViewportChanged, s.view)
}

// Zoom multiplies the zoom by factor, clamped to [0.1, 10].
func (s *Session) Zoom(factor float64) {
	if factor <= 0 || s.store.Current() == nil {
		return
	}
	s.view.SetZoom(factor)
	s.viewChanged()
}

// ZoomIn zooms in by one step.
func (s *Session) ZoomIn() { s.Zoom(s.zoomStep) }

// ZoomOut zooms out by one step.
func (s *Session) ZoomOut() { s.Zoom(1 / s.zoomStep) }

// Pan moves the image by dx, dy canvas pixels.
func (s *Session) Pan(dx, dy float64) {
	if s.store.Current() == nil || (dx == 0 && dy == 0) {
		return
	}
	s.view.PanBy(dx, dy)
	s.viewChanged()
}

// Rotate adds delta degrees (positive = clockwise).
func (s *Session) Rotate(delta float64) {
	if s.store.Current() == nil || delta == 0 {
		return
	}
	s.view.Rotate(delta)
	s.viewChanged()
}

// RotateLeft rotates counter-clockwise by one step.
func (s *Session) RotateLeft() { s.Rotate(-s.rotateStep) }

// RotateRight rotates clockwise by one step.
func (s *Session) RotateRight() { s.Rotate(s.rotateStep) }

// SetRotation sets the absolute rotation in degrees.
func (s *Session) SetRotation(degrees float64) {
	if s.store.Current() == nil || degrees == s.view.Rotation {
		return
	}
	s.view.SetRotation(degrees)
	s.viewChanged()
}

// FitToScreen scales the image to fit the canvas and resets pan and rotation.
func (s *Session) FitToScreen() {
	if s.store.Current() == nil {
		return
	}
	s.fit()
	s.viewChanged()
}

// Revert discards zoom, pan and rotation and any gesture in progress.
func (s *Session) Revert() {
	if s.store.Current() == nil {
		return
	}
	mode := s.machine.Mode()
	s.machine.Reset()
	s.panning = false
	s.fit()
	s.Emit(EventSelectionChanged, nil)
	if mode != s.machine.Mode() {
		s.Emit(EventModeChanged, s.machine.Mode())
	}
	s.Emit(EventViewportChanged, s.view)
}

// SetTool selects what a drag does.
func (s *Session) SetTool(tool Tool) {
	if tool == s.tool {
		return
	}
	s.tool = tool
	s.panning = false
	s.Emit(EventModeChanged, s.machine.Mode())
}

// ToggleStraighten enters or leaves two-point straightening mode.
func (s *Session) ToggleStraighten() {
	if s.store.Current() == nil && s.machine.Mode() != selection.ModeStraightening {
		return
	}
	s.panning = false
	s.machine.ToggleStraighten()
	s.Emit(EventModeChanged, s.machine.Mode())
	s.Emit(EventSelectionChanged, nil)
}

// Press handles a pointer press at canvas point p.
func (s *Session) Press(p geometry.Point2D) {
	if s.store.Current() == nil {
		return
	}
	if s.machine.Mode() == selection.ModeStraightening {
		angle, done := s.machine.Press(p)
		s.Emit(EventSelectionChanged, nil)
		if done {
			s.logger.WithFields(logrus.Fields{"angle": angle, "rotation": s.view.Rotation - angle}).Info("Straightened image")
			s.view.Rotate(-angle)
			s.Emit(EventModeChanged, s.machine.Mode())
			s.Emit(EventViewportChanged, s.view)
		}
		return
	}
	if s.tool == ToolPan {
		s.panning = true
		s.panLast = p
		return
	}
	s.machine.Press(p)
	s.Emit(EventSelectionChanged, nil)
}

// Drag handles pointer movement to p while pressed.
func (s *Session) Drag(p geometry.Point2D) {
	if s.panning {
		d := p.Sub(s.panLast)
		s.panLast = p
		s.Pan(d.X, d.Y)
		return
	}
	if _, ok := s.machine.InProgress(); ok {
		s.machine.Drag(p)
		s.Emit(EventSelectionChanged, nil)
	}
}

// Release handles the pointer release at p. It returns the finished
// selection, or ErrInvalidSelection for a degenerate drag.
func (s *Session) Release(p geometry.Point2D) (selection.Rect, error) {
	if s.panning {
		s.Drag(p)
		s.panning = false
		return selection.Rect{}, nil
	}
	if _, ok := s.machine.InProgress(); !ok {
		return selection.Rect{}, nil
	}
	r, err := s.machine.Release(p)
	s.Emit(EventSelectionChanged, nil)
	if err != nil {
		s.logger.Debug("Ignoring empty selection")
		return selection.Rect{}, err
	}
	return r, nil
}

// AutoStraighten estimates the tilt of the working image and sets the
// rotation that levels it. It returns the applied rotation.
func (s *Session) AutoStraighten() (float64, error) {
	pair := s.store.Current()
	if pair == nil {
		return 0, scribeimage.ErrNoImage
	}
	if s.skew == nil {
		return 0, fmt.Errorf("no skew estimator configured")
	}
	angle, err := s.skew.EstimateSkew(pair.Working)
	if err != nil {
		s.logger.WithError(err).Warn("Automatic straightening failed")
		return 0, err
	}
	s.view.SetRotation(-angle)
	s.logger.WithFields(logrus.Fields{"file": s.store.CurrentName(), "rotation": -angle}).Info("Auto-straightened image")
	s.viewChanged()
	return -angle, nil
}

// CropBox maps the current selection to the rotated original.
func (s *Session) CropBox() (region.CropBox, error) {
	pair := s.store.Current()
	if pair == nil {
		return region.CropBox{}, scribeimage.ErrNoImage
	}
	sel, ok := s.machine.Current()
	if !ok {
		return region.CropBox{}, fmt.Errorf("%w: nothing selected", region.ErrInvalidSelection)
	}
	layout, _ := s.Layout()
	return region.ComputeCropBox(sel, layout, pair.ScaleToOriginal())
}

// RecognizeSelection runs text recognition on the selected region of the
// original. Recognition failures are logged and give empty text; only a
// missing image or an invalid selection is returned as an error.
func (s *Session) RecognizeSelection() (string, error) {
	box, err := s.CropBox()
	if err != nil {
		return "", err
	}
	text, err := s.extractor.Recognize(s.store.Current(), box, s.view.Rotation)
	if err != nil {
		if errors.Is(err, region.ErrInvalidSelection) {
			return "", err
		}
		s.logger.WithFields(logrus.Fields{"file": s.store.CurrentName(), "box": box.String(), "error": err}).Warn("Recognition gave no text")
		text = ""
	}
	s.draft.OCRText = text
	s.Emit(EventTextRecognized, text)
	s.Emit(EventDraftChanged, s.draft)
	return text, nil
}

// CropSelection permanently replaces the current file with the selected
// region of the rotated original. confirmed must carry the user's answer to
// a confirmation prompt.
func (s *Session) CropSelection(confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	box, err := s.CropBox()
	if err != nil {
		return err
	}
	if err := s.extractor.Overwrite(s.store, box, s.view.Rotation); err != nil {
		s.logger.WithFields(logrus.Fields{"file": s.store.CurrentName(), "error": err}).Error("Permanent crop failed")
		return err
	}
	s.machine.Reset()
	s.fit()
	s.Emit(EventImageOverwritten, s.store.CurrentName())
	s.Emit(EventSelectionChanged, nil)
	s.Emit(EventViewportChanged, s.view)
	return nil
}

// Draft returns the data entered for the current image.
func (s *Session) Draft() records.Draft { return s.draft }

// SetDraft replaces the data entered for the current image.
func (s *Session) SetDraft(d records.Draft) {
	d.Image = s.store.CurrentName()
	s.draft = d
}

// SaveDraft stores the current draft in the catalog, replacing the image's
// earlier records. It returns the number of records saved.
func (s *Session) SaveDraft() int {
	if s.store.State() != scribeimage.StateLoaded {
		return 0
	}
	s.draft.Image = s.store.CurrentName()
	n := s.book.Replace(s.draft)
	if n > 0 {
		s.logger.WithFields(logrus.Fields{"file": s.draft.Image, "records": n}).Info("Saved records")
	}
	s.Emit(EventRecordsSaved, n)
	return n
}

// BatchPaths returns a snapshot of the folder for a background run.
func (s *Session) BatchPaths() []string {
	return s.store.Snapshot()
}

// ApplyBatchResult adds a background recognition result to the catalog
// unless the image already has records. It must run on the UI goroutine.
func (s *Session) ApplyBatchResult(r batch.Result) bool {
	draft, ok := r.Draft()
	if !ok || len(s.book.ForImage(draft.Image)) > 0 {
		return false
	}
	if draft.Image == s.store.CurrentName() {
		if len(s.draft.Named()) > 0 {
			return false
		}
		s.draft = draft
		s.Emit(EventDraftChanged, s.draft)
	}
	s.book.Replace(draft)
	s.Emit(EventRecordsSaved, 1)
	return true
}

// Flush writes the catalog to disk if it changed.
func (s *Session) Flush() error {
	if !s.book.Dirty() {
		return nil
	}
	if err := s.book.Save(s.catalogPath); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{"path": s.catalogPath, "records": s.book.Len()}).Info("Catalog saved")
	return nil
}

// Close saves the current draft and flushes the catalog.
func (s *Session) Close() error {
	s.SaveDraft()
	return s.Flush()
}
