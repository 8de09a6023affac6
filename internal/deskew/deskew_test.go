package deskew

import (
	"errors"
	"math"
	"testing"
)

func TestSegmentAngle(t *testing.T) {
	cases := []struct {
		s    Segment
		want float64
	}{
		{Segment{0, 0, 10, 0}, 0},
		{Segment{0, 0, 10, 10}, 45},
		{Segment{10, 10, 0, 0}, 45},
		{Segment{0, 10, 10, 0}, -45},
		{Segment{0, 0, 0, 10}, 90},
		{Segment{0, 10, 0, 0}, 90},
	}
	for _, tc := range cases {
		if got := tc.s.Angle(); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("%v: got %v want %v", tc.s, got, tc.want)
		}
	}
}

func TestWeightedMedian(t *testing.T) {
	if got := WeightedMedian([]float64{3, 1, 2}, []float64{1, 1, 1}); got != 2 {
		t.Fatalf("unweighted median: got %v", got)
	}
	x := []float64{5, 0}
	if got := WeightedMedian(x, []float64{10, 1}); got != 5 {
		t.Fatalf("heavy sample should win, got %v", got)
	}
	if x[0] != 5 || x[1] != 0 {
		t.Fatal("input must not be reordered")
	}
}

func TestEstimateIgnoresSteepAndShortLines(t *testing.T) {
	segments := []Segment{
		{0, 0, 100, 3.5},  // ~2 degrees, long
		{0, 0, 200, 7},    // ~2 degrees, longer
		{0, 0, 10, -1.8},  // ~-10 degrees, short
		{0, 0, 5, 100},    // near vertical, discarded
		{50, 50, 50, 50},  // zero length
		{0, 0, 150, 5.25}, // ~2 degrees
	}
	got, err := Estimate(segments, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-2) > 0.05 {
		t.Fatalf("expected ~2 degrees, got %v", got)
	}
}

func TestEstimateNeedsEnoughLines(t *testing.T) {
	_, err := Estimate([]Segment{{0, 0, 10, 0}}, DefaultOptions())
	if !errors.Is(err, ErrNoLines) {
		t.Fatalf("expected ErrNoLines, got %v", err)
	}
	if _, err := Estimate(nil, Options{}); !errors.Is(err, ErrNoLines) {
		t.Fatalf("expected ErrNoLines for no segments, got %v", err)
	}
}
