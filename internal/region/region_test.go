package region

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	scribeimage "elysian-scribe/internal/image"
	"elysian-scribe/internal/selection"
	"elysian-scribe/internal/viewport"
	"elysian-scribe/pkg/geometry"
)

var _ Target = (*scribeimage.Store)(nil)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 7, A: 255})
		}
	}
	return img
}

func near(a, b geometry.Point2D) bool {
	return math.Abs(a.X-b.X) < 1e-6 && math.Abs(a.Y-b.Y) < 1e-6
}

func TestIdentityCrop(t *testing.T) {
	size := geometry.Size{Width: 800, Height: 600}
	layout := viewport.NewLayout(viewport.New(), size, size)
	box, err := ComputeCropBox(selection.Rect{X1: 0, Y1: 0, X2: 800, Y2: 600}, layout, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !near(box.Min, geometry.Point2D{}) || !near(box.Max, geometry.Point2D{X: 800, Y: 600}) {
		t.Fatalf("expected full image, got %v", box)
	}
	if box.Pixels() != image.Rect(0, 0, 800, 600) {
		t.Fatalf("unexpected pixel box %v", box.Pixels())
	}
}

func TestScaleCorrectedCrop(t *testing.T) {
	working := geometry.Size{Width: 800, Height: 600}
	layout := viewport.NewLayout(viewport.New(), working, working)
	box, err := ComputeCropBox(selection.Rect{X1: 100, Y1: 100, X2: 200, Y2: 150}, layout, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !near(box.Min, geometry.Point2D{X: 500, Y: 500}) || !near(box.Max, geometry.Point2D{X: 1000, Y: 750}) {
		t.Fatalf("expected (500,500)-(1000,750), got %v", box)
	}
}

func TestCropBoxFollowsZoomAndPan(t *testing.T) {
	working := geometry.Size{Width: 100, Height: 50}
	canvas := geometry.Size{Width: 400, Height: 300}
	state := viewport.New()
	state.SetZoom(2)
	state.PanBy(10, -20)
	layout := viewport.NewLayout(state, working, canvas)

	// working pixel (20,10)-(60,30) on screen
	a := layout.Forward(geometry.Point2D{X: 20, Y: 10})
	b := layout.Forward(geometry.Point2D{X: 60, Y: 30})
	box, err := ComputeCropBox(selection.Rect{X1: a.X, Y1: a.Y, X2: b.X, Y2: b.Y}, layout, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !near(box.Min, geometry.Point2D{X: 60, Y: 30}) || !near(box.Max, geometry.Point2D{X: 180, Y: 90}) {
		t.Fatalf("unexpected box %v", box)
	}
}

func TestCropBoxClampsToImage(t *testing.T) {
	size := geometry.Size{Width: 200, Height: 100}
	layout := viewport.NewLayout(viewport.New(), size, size)
	box, err := ComputeCropBox(selection.Rect{X1: -50, Y1: 50, X2: 150, Y2: 300}, layout, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !near(box.Min, geometry.Point2D{X: 0, Y: 100}) || !near(box.Max, geometry.Point2D{X: 300, Y: 200}) {
		t.Fatalf("unexpected clamped box %v", box)
	}
}

func TestCropBoxRejectsInvalid(t *testing.T) {
	size := geometry.Size{Width: 200, Height: 100}
	layout := viewport.NewLayout(viewport.New(), size, size)

	cases := map[string]selection.Rect{
		"zero width":     {X1: 10, Y1: 10, X2: 10, Y2: 40},
		"outside right":  {X1: 250, Y1: 10, X2: 300, Y2: 40},
		"outside above":  {X1: 10, Y1: -80, X2: 40, Y2: -5},
		"corner outside": {X1: 210, Y1: 110, X2: 260, Y2: 160},
	}
	for name, sel := range cases {
		if _, err := ComputeCropBox(sel, layout, 1); !errors.Is(err, ErrInvalidSelection) {
			t.Fatalf("%s: expected ErrInvalidSelection, got %v", name, err)
		}
	}
}

func TestExtractMapsWorkingSelectionToOriginalPixels(t *testing.T) {
	pair, err := scribeimage.NewPair("stone.png", gradient(400, 300), 80)
	if err != nil {
		t.Fatal(err)
	}
	working := pair.WorkingSize()
	layout := viewport.NewLayout(viewport.New(), working, working)
	box, err := ComputeCropBox(selection.Rect{X1: 10, Y1: 10, X2: 20, Y2: 16}, layout, pair.ScaleToOriginal())
	if err != nil {
		t.Fatal(err)
	}

	e := NewExtractor(nil, Options{})
	roi, err := e.Extract(pair, box, 0)
	if err != nil {
		t.Fatal(err)
	}
	if roi.Bounds().Dx() != 50 || roi.Bounds().Dy() != 30 {
		t.Fatalf("expected 50x30 region, got %v", roi.Bounds())
	}
	if c := roi.NRGBAAt(0, 0); c.R != 50 || c.G != 50 {
		t.Fatalf("region starts at the wrong original pixel: %v", c)
	}
}

func TestExtractRotatedHalfTurn(t *testing.T) {
	pair, err := scribeimage.NewPair("stone.png", gradient(400, 300), 80)
	if err != nil {
		t.Fatal(err)
	}
	state := viewport.New()
	state.SetRotation(180)
	working := pair.WorkingSize()
	layout := viewport.NewLayout(state, working, working)
	box, err := ComputeCropBox(selection.Rect{X1: 0, Y1: 0, X2: 80, Y2: 60}, layout, pair.ScaleToOriginal())
	if err != nil {
		t.Fatal(err)
	}

	roi, err := NewExtractor(nil, Options{}).Extract(pair, box, state.Rotation)
	if err != nil {
		t.Fatal(err)
	}
	if roi.Bounds().Dx() != 400 || roi.Bounds().Dy() != 300 {
		t.Fatalf("unexpected region %v", roi.Bounds())
	}
	if c := roi.NRGBAAt(0, 0); c.R != uint8(399%256) || c.G != uint8(299%256) {
		t.Fatalf("top-left should be the original bottom-right, got %v", c)
	}
}

func TestExtractQuarterTurnSize(t *testing.T) {
	pair, err := scribeimage.NewPair("stone.png", gradient(400, 300), 80)
	if err != nil {
		t.Fatal(err)
	}
	state := viewport.New()
	state.SetRotation(90)
	layout := viewport.NewLayout(state, pair.WorkingSize(), geometry.Size{Width: 60, Height: 80})
	if layout.Rotated.Width != 60 || layout.Rotated.Height != 80 {
		t.Fatalf("unexpected rotated working size %v", layout.Rotated)
	}
	box, err := ComputeCropBox(selection.Rect{X1: 0, Y1: 0, X2: 60, Y2: 80}, layout, pair.ScaleToOriginal())
	if err != nil {
		t.Fatal(err)
	}
	roi, err := NewExtractor(nil, Options{}).Extract(pair, box, 90)
	if err != nil {
		t.Fatal(err)
	}
	if roi.Bounds().Dx() != 300 || roi.Bounds().Dy() != 400 {
		t.Fatalf("expected the rotated original 300x400, got %v", roi.Bounds())
	}
}

type fakeRecognizer struct {
	text     string
	err      error
	language string
	size     image.Rectangle
}

func (f *fakeRecognizer) Recognize(img image.Image, language string) (string, error) {
	f.language = language
	f.size = img.Bounds()
	return f.text, f.err
}

func smallPair(t *testing.T) *scribeimage.Pair {
	t.Helper()
	pair, err := scribeimage.NewPair("stone.png", gradient(120, 90), 0)
	if err != nil {
		t.Fatal(err)
	}
	return pair
}

func TestRecognize(t *testing.T) {
	rec := &fakeRecognizer{text: "  JOHN SMITH\n1850 - 1920\n"}
	e := NewExtractor(rec, Options{Language: "deu"})
	box := CropBox{Min: geometry.Point2D{X: 10, Y: 10}, Max: geometry.Point2D{X: 50, Y: 30}}

	text, err := e.Recognize(smallPair(t), box, 0)
	if err != nil {
		t.Fatal(err)
	}
	if text != "JOHN SMITH\n1850 - 1920" {
		t.Fatalf("unexpected text %q", text)
	}
	if rec.language != "deu" || rec.size.Dx() != 40 || rec.size.Dy() != 20 {
		t.Fatalf("recognizer got %q %v", rec.language, rec.size)
	}
}

func TestRecognizeFailuresDegradeToEmptyText(t *testing.T) {
	box := CropBox{Min: geometry.Point2D{X: 10, Y: 10}, Max: geometry.Point2D{X: 50, Y: 30}}
	recognizers := map[string]Recognizer{
		"engine error": &fakeRecognizer{err: errors.New("tesseract exploded")},
		"blank":        &fakeRecognizer{text: " \n\t"},
		"no engine":    nil,
	}
	for name, rec := range recognizers {
		text, err := NewExtractor(rec, Options{}).Recognize(smallPair(t), box, 0)
		if text != "" || !errors.Is(err, ErrRecognitionFailed) {
			t.Fatalf("%s: expected empty text and ErrRecognitionFailed, got %q %v", name, text, err)
		}
	}
}

func TestRecognizeDoesNotTouchPair(t *testing.T) {
	pair := smallPair(t)
	before := pair.Original
	box := CropBox{Min: geometry.Point2D{X: 0, Y: 0}, Max: geometry.Point2D{X: 30, Y: 30}}
	if _, err := NewExtractor(&fakeRecognizer{text: "x"}, Options{}).Recognize(pair, box, 12); err != nil {
		t.Fatal(err)
	}
	if pair.Original != before {
		t.Fatal("recognition must be non-destructive")
	}
}

type fakeTarget struct {
	pair    *scribeimage.Pair
	written image.Image
	err     error
}

func (f *fakeTarget) Current() *scribeimage.Pair { return f.pair }

func (f *fakeTarget) OverwriteCurrent(img image.Image) error {
	if f.err != nil {
		return f.err
	}
	f.written = img
	return nil
}

func TestOverwrite(t *testing.T) {
	target := &fakeTarget{pair: smallPair(t)}
	box := CropBox{Min: geometry.Point2D{X: 20, Y: 10}, Max: geometry.Point2D{X: 80, Y: 70}}
	if err := NewExtractor(nil, Options{}).Overwrite(target, box, 0); err != nil {
		t.Fatal(err)
	}
	if target.written == nil || target.written.Bounds().Dx() != 60 || target.written.Bounds().Dy() != 60 {
		t.Fatalf("unexpected written region %v", target.written)
	}
}

func TestOverwriteFailure(t *testing.T) {
	target := &fakeTarget{pair: smallPair(t), err: scribeimage.ErrDestructiveWrite}
	box := CropBox{Min: geometry.Point2D{X: 20, Y: 10}, Max: geometry.Point2D{X: 80, Y: 70}}
	if err := NewExtractor(nil, Options{}).Overwrite(target, box, 0); !errors.Is(err, ErrDestructiveWrite) {
		t.Fatalf("expected ErrDestructiveWrite, got %v", err)
	}
}

func TestOverwriteWithoutImage(t *testing.T) {
	box := CropBox{Min: geometry.Point2D{X: 0, Y: 0}, Max: geometry.Point2D{X: 5, Y: 5}}
	err := NewExtractor(nil, Options{}).Overwrite(&fakeTarget{}, box, 0)
	if !errors.Is(err, scribeimage.ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
}
