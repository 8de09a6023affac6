package geometry

import (
	"math"
	"testing"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAffineInverseRoundTrip(t *testing.T) {
	tr := Translation(40, -12).Compose(RotationSinCos(math.Sincos(0.7))).Compose(Scale(2.5, 2.5))
	inv, ok := tr.Inverse()
	if !ok {
		t.Fatal("expected invertible transform")
	}
	for _, p := range []Point2D{{0, 0}, {10, 5}, {-300, 77.5}} {
		got := inv.Apply(tr.Apply(p))
		if !near(got.X, p.X) || !near(got.Y, p.Y) {
			t.Fatalf("round trip of %v gave %v", p, got)
		}
	}
}

func TestSingularInverse(t *testing.T) {
	if _, ok := Scale(0, 1).Inverse(); ok {
		t.Fatal("zero scale should not be invertible")
	}
}

func TestRotationIsClockwiseInImageCoordinates(t *testing.T) {
	p := RotationSinCos(1, 0).Apply(Point2D{X: 1, Y: 0})
	// y grows downward, so a quarter turn clockwise moves +x to +y.
	if !near(p.X, 0) || !near(p.Y, 1) {
		t.Fatalf("got %v", p)
	}
}

func TestRectFromCornersAnyOrder(t *testing.T) {
	a := RectFromCorners(Point2D{30, 40}, Point2D{10, 5})
	b := RectFromCorners(Point2D{10, 5}, Point2D{30, 40})
	if a != b {
		t.Fatalf("%v != %v", a, b)
	}
	if a.X != 10 || a.Y != 5 || a.Width != 20 || a.Height != 35 {
		t.Fatalf("unexpected rect %v", a)
	}
}

func TestRectRound(t *testing.T) {
	r := Rect{X: 499.6, Y: 500.2, Width: 500.1, Height: 249.9}.Round()
	if r.X != 500 || r.Y != 500 || r.Width != 500 || r.Height != 250 {
		t.Fatalf("unexpected %v", r)
	}
	if got := r.Image(); got.Min.X != 500 || got.Max.Y != 750 {
		t.Fatalf("unexpected image rect %v", got)
	}
}
