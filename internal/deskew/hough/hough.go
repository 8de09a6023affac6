// Package hough finds line segments with OpenCV and feeds them to the deskew
// estimator.
package hough

import (
	"fmt"
	"image"
	"math"

	"elysian-scribe/internal/deskew"
	"elysian-scribe/internal/ocr"

	"gocv.io/x/gocv"
)

// Detector implements skew estimation with Canny edges and a probabilistic
// Hough transform.
type Detector struct {
	Options deskew.Options

	// MaxSide downsamples large images before edge detection.
	MaxSide int
	// MinLineFraction is the shortest segment kept, as a fraction of the width.
	MinLineFraction float64
}

// NewDetector returns a detector with default settings.
func NewDetector() *Detector {
	return &Detector{
		Options:         deskew.DefaultOptions(),
		MaxSide:         1024,
		MinLineFraction: 0.15,
	}
}

// EstimateSkew returns the tilt of img in degrees (positive = clockwise).
func (d *Detector) EstimateSkew(img image.Image) (float64, error) {
	segments, err := d.Segments(img)
	if err != nil {
		return 0, err
	}
	return deskew.Estimate(segments, d.Options)
}

// Segments returns the line segments found in img, in img's pixel coordinates.
func (d *Detector) Segments(img image.Image) ([]deskew.Segment, error) {
	src, err := ocr.ImageToMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	scale := 1.0
	work := src
	if side := max(src.Cols(), src.Rows()); d.MaxSide > 0 && side > d.MaxSide {
		scale = float64(d.MaxSide) / float64(side)
		work = gocv.NewMat()
		defer work.Close()
		gocv.Resize(src, &work, image.Point{}, scale, scale, gocv.InterpolationArea)
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(work, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{5, 5}, 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, 50, 150)

	lines := gocv.NewMat()
	defer lines.Close()
	minLen := float32(d.MinLineFraction * float64(edges.Cols()))
	gocv.HoughLinesPWithParams(edges, &lines, 1, float32(math.Pi/180), 80, minLen, 10)
	if lines.Empty() {
		return nil, fmt.Errorf("%w: no segments detected", deskew.ErrNoLines)
	}

	segments := make([]deskew.Segment, 0, lines.Rows())
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		if len(v) < 4 {
			continue
		}
		segments = append(segments, deskew.Segment{
			X1: float64(v[0]) / scale,
			Y1: float64(v[1]) / scale,
			X2: float64(v[2]) / scale,
			Y2: float64(v[3]) / scale,
		})
	}
	return segments, nil
}
