package viewport

import (
	"fmt"
	"math"
	"testing"

	"elysian-scribe/pkg/geometry"
)

const tolerance = 1e-6

func closeTo(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestSetZoomClamps(t *testing.T) {
	s := New()
	s.SetZoom(100)
	if s.Zoom != MaxZoom {
		t.Fatalf("expected %v, got %v", MaxZoom, s.Zoom)
	}
	s.SetZoom(1e-6)
	if s.Zoom != MinZoom {
		t.Fatalf("expected %v, got %v", MinZoom, s.Zoom)
	}
	s.SetZoom(2)
	if !closeTo(s.Zoom, 0.2, 1e-12) {
		t.Fatalf("expected 0.2, got %v", s.Zoom)
	}
}

func TestPanAndRotateAccumulate(t *testing.T) {
	s := New()
	s.PanBy(10, -5)
	s.PanBy(-4000, 3)
	if s.Pan.X != -3990 || s.Pan.Y != -2 {
		t.Fatalf("unexpected pan %v", s.Pan)
	}
	for i := 0; i < 5; i++ {
		s.Rotate(100)
	}
	if s.Rotation != 500 {
		t.Fatalf("rotation should accumulate unbounded, got %v", s.Rotation)
	}
	if got := s.DisplayRotation(); got != 140 {
		t.Fatalf("expected display rotation 140, got %v", got)
	}
	s.SetRotation(-190)
	if got := s.DisplayRotation(); got != 170 {
		t.Fatalf("expected display rotation 170, got %v", got)
	}
}

func TestFitToScreenBound(t *testing.T) {
	cases := []struct {
		canvas, img geometry.Size
	}{
		{geometry.NewSize(1200, 800), geometry.NewSize(2560, 1920)},
		{geometry.NewSize(1200, 800), geometry.NewSize(600, 2560)},
		{geometry.NewSize(640, 480), geometry.NewSize(640, 480)},
		{geometry.NewSize(1000, 1000), geometry.NewSize(333, 77)},
	}
	for _, tc := range cases {
		s := State{Zoom: 3, Pan: geometry.Point2D{X: 40, Y: 9}, Rotation: 33}
		if !s.FitToScreen(tc.canvas, tc.img) {
			t.Fatalf("fit rejected valid sizes %v %v", tc.canvas, tc.img)
		}
		if s.Pan != (geometry.Point2D{}) || s.Rotation != 0 {
			t.Fatalf("fit should reset pan and rotation, got %+v", s)
		}
		l := NewLayout(s, tc.img, tc.canvas)
		if l.Zoomed.Width > tc.canvas.Width+tolerance || l.Zoomed.Height > tc.canvas.Height+tolerance {
			t.Fatalf("zoomed %v exceeds canvas %v", l.Zoomed, tc.canvas)
		}
	}
}

func TestFitToScreenDefersOnZeroCanvas(t *testing.T) {
	s := State{Zoom: 2, Rotation: 10}
	if s.FitToScreen(geometry.Size{}, geometry.NewSize(100, 100)) {
		t.Fatal("fit should be deferred on a zero canvas")
	}
	if s.Zoom != 2 || s.Rotation != 10 {
		t.Fatalf("deferred fit must not modify state, got %+v", s)
	}
}

func TestInverseLaw(t *testing.T) {
	img := geometry.NewSize(800, 600)
	canvas := geometry.NewSize(1024, 768)
	points := []geometry.Point2D{{X: 0, Y: 0}, {X: 400, Y: 300}, {X: 799.5, Y: 0.25}, {X: -50, Y: 1200}, {X: 123.456, Y: 654.321}}

	for _, zoom := range []float64{0.1, 0.5, 1, 2, 5, 10} {
		for _, rot := range []float64{0, 37, 90, 180, -45} {
			for _, pan := range []geometry.Point2D{{X: 0, Y: 0}, {X: 50, Y: -30}} {
				s := State{Zoom: zoom, Pan: pan, Rotation: rot}
				l := NewLayout(s, img, canvas)
				for _, p := range points {
					name := fmt.Sprintf("z=%v/r=%v/pan=%v/p=%v", zoom, rot, pan, p)
					got := l.Inverse(l.Forward(p))
					if !closeTo(got.X, p.X, tolerance) || !closeTo(got.Y, p.Y, tolerance) {
						t.Fatalf("%s: screen round trip gave %v", name, got)
					}
					src := l.ToSource(l.FromSource(p))
					if !closeTo(src.X, p.X, tolerance) || !closeTo(src.Y, p.Y, tolerance) {
						t.Fatalf("%s: rotation round trip gave %v", name, src)
					}
				}
			}
		}
	}
}

func TestPlacementCentresImage(t *testing.T) {
	l := NewLayout(State{Zoom: 1}, geometry.NewSize(800, 600), geometry.NewSize(1000, 700))
	if l.Origin.X != 100 || l.Origin.Y != 50 {
		t.Fatalf("unexpected origin %v", l.Origin)
	}
	l = NewLayout(State{Zoom: 2, Pan: geometry.Point2D{X: 50, Y: -30}}, geometry.NewSize(100, 50), geometry.NewSize(400, 300))
	// zoomed 200x100: (400-200)/2+50, (300-100)/2-30
	if l.Origin.X != 150 || l.Origin.Y != 70 {
		t.Fatalf("unexpected origin %v", l.Origin)
	}
}

func TestRotatedBoundsAt45(t *testing.T) {
	rw, rh := RotatedBounds(200, 100, 45)
	want := 300 / math.Sqrt2
	if !closeTo(rw, want, 1e-9) || !closeTo(rh, want, 1e-9) {
		t.Fatalf("expected %.3f x %.3f, got %.3f x %.3f", want, want, rw, rh)
	}
	if !closeTo(rw, 212.1, 0.05) {
		t.Fatalf("expected about 212.1, got %v", rw)
	}
	w, h := RotatedSize(200, 100, 45)
	if w != 212 || h != 212 {
		t.Fatalf("expected 212x212, got %dx%d", w, h)
	}
}

func TestRotationRoundTripRestoresSize(t *testing.T) {
	for _, theta := range []float64{37, -45, 12.5, 90, 180} {
		s := New()
		s.Rotate(theta)
		s.Rotate(-theta)
		w, h := RotatedSize(640, 480, s.Rotation)
		if w != 640 || h != 480 {
			t.Fatalf("theta=%v: expected 640x480, got %dx%d", theta, w, h)
		}
	}

	s := New()
	for i := 0; i < 4; i++ {
		s.Rotate(90)
		w, h := RotatedSize(640, 480, s.Rotation)
		if i%2 == 0 && (w != 480 || h != 640) {
			t.Fatalf("after %d quarter turns expected 480x640, got %dx%d", i+1, w, h)
		}
	}
	w, h := RotatedSize(640, 480, s.Rotation)
	if w != 640 || h != 480 {
		t.Fatalf("four quarter turns should restore 640x480, got %dx%d", w, h)
	}
	rw, rh := RotatedBounds(640, 480, s.Rotation)
	if rw != 640 || rh != 480 {
		t.Fatalf("exact bounds should be restored, got %vx%v", rw, rh)
	}
}

func TestSourceToScreenMatchesComposition(t *testing.T) {
	l := NewLayout(State{Zoom: 1.7, Pan: geometry.Point2D{X: -12, Y: 33}, Rotation: 23}, geometry.NewSize(300, 200), geometry.NewSize(900, 700))
	tr := l.SourceToScreen()
	for _, p := range []geometry.Point2D{{X: 0, Y: 0}, {X: 300, Y: 200}, {X: 150, Y: 20}} {
		want := l.Forward(l.FromSource(p))
		got := tr.Apply(p)
		if !closeTo(got.X, want.X, tolerance) || !closeTo(got.Y, want.Y, tolerance) {
			t.Fatalf("p=%v: want %v got %v", p, want, got)
		}
	}
}

func TestRotatedCornersStayInsideBounds(t *testing.T) {
	img := geometry.NewSize(200, 100)
	for _, rot := range []float64{0, 15, 45, 90, 135, 200, -30} {
		l := NewLayout(State{Zoom: 1, Rotation: rot}, img, geometry.NewSize(500, 500))
		box := l.RotatedBounds()
		for _, c := range []geometry.Point2D{{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 200, Y: 100}, {X: 0, Y: 100}} {
			q := l.FromSource(c)
			// corners land on the rounded box up to half a pixel
			if q.X < -0.5 || q.Y < -0.5 || q.X > box.Width+0.5 || q.Y > box.Height+0.5 {
				t.Fatalf("rot=%v: corner %v mapped outside %v: %v", rot, c, box, q)
			}
		}
	}
}

func TestScreenToSourceInvertsSourceToScreen(t *testing.T) {
	l := NewLayout(State{Zoom: 0.8, Pan: geometry.Point2D{X: 25, Y: -40}, Rotation: -37}, geometry.NewSize(640, 480), geometry.NewSize(1024, 768))
	tr := l.SourceToScreen()
	for _, p := range []geometry.Point2D{{X: 0, Y: 0}, {X: 640, Y: 480}, {X: 123.5, Y: 400}} {
		got, ok := l.ScreenToSource(tr.Apply(p))
		if !ok {
			t.Fatal("layout transform should be invertible")
		}
		if !closeTo(got.X, p.X, tolerance) || !closeTo(got.Y, p.Y, tolerance) {
			t.Fatalf("p=%v: got %v", p, got)
		}
	}
}

func TestScreenBoundsMatchesRotatedFrame(t *testing.T) {
	l := NewLayout(State{Zoom: 1.5, Pan: geometry.Point2D{X: 10, Y: 20}, Rotation: 30}, geometry.NewSize(300, 200), geometry.NewSize(800, 600))
	screen := l.ScreenBounds()
	rotated := l.RotatedBounds()
	for _, p := range []geometry.Point2D{
		{X: screen.X + 1, Y: screen.Y + 1},
		{X: screen.X + screen.Width - 1, Y: screen.Y + screen.Height/2},
		{X: screen.X - 1, Y: screen.Y + 5},
		{X: screen.X + 5, Y: screen.Y + screen.Height + 1},
	} {
		if got, want := screen.Contains(p), rotated.Contains(l.Inverse(p)); got != want {
			t.Fatalf("p=%v: screen says %v, rotated frame says %v", p, got, want)
		}
	}
}
