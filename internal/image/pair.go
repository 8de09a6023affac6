package image

import (
	"fmt"
	"image"
	"math"

	"elysian-scribe/pkg/geometry"
)

// Pair is the full-resolution original of a photograph and its downsampled
// working copy.
//
// Invariant: the working copy preserves the original's aspect ratio, so one
// factor, ScaleToOriginal, converts working coordinates to original
// coordinates on both axes (up to the sub-pixel error of integer sizes).
// Rotating both images by the same angle keeps that factor, which is what
// lets a selection on the working view address the original.
type Pair struct {
	Path     string
	Original image.Image
	Working  image.Image

	maxDim int
}

// NewPair builds the working copy for original.
func NewPair(path string, original image.Image, maxDim int) (*Pair, error) {
	p := &Pair{Path: path, maxDim: maxDim}
	if err := p.Replace(original); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadPair decodes path and builds its pair.
func LoadPair(path string, maxDim int) (*Pair, error) {
	img, err := Decode(path)
	if err != nil {
		return nil, err
	}
	return NewPair(path, img, maxDim)
}

// Replace swaps in a new original and regenerates the working copy.
func (p *Pair) Replace(original image.Image) error {
	if original == nil {
		return ErrNoImage
	}
	b := original.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("%w: empty image", ErrUnsupportedFormat)
	}
	working := MakeWorking(original, p.maxDim)
	if err := checkAspect(b, working.Bounds()); err != nil {
		return err
	}
	p.Original = original
	p.Working = working
	return nil
}

// ScaleToOriginal is original.width / working.width.
func (p *Pair) ScaleToOriginal() float64 {
	return float64(p.Original.Bounds().Dx()) / float64(p.Working.Bounds().Dx())
}

// WorkingSize returns the working copy's size.
func (p *Pair) WorkingSize() geometry.Size {
	return geometry.SizeOf(p.Working.Bounds())
}

// OriginalSize returns the original's size.
func (p *Pair) OriginalSize() geometry.Size {
	return geometry.SizeOf(p.Original.Bounds())
}

// checkAspect verifies the two per-axis scale factors differ by no more than
// the rounding of one working pixel.
func checkAspect(orig, work image.Rectangle) error {
	sx := float64(orig.Dx()) / float64(work.Dx())
	sy := float64(orig.Dy()) / float64(work.Dy())
	limit := 1/float64(min(work.Dx(), work.Dy())) + 1e-9
	if math.Abs(sx-sy)/math.Max(sx, sy) > limit {
		return fmt.Errorf("working copy %dx%d does not preserve aspect of %dx%d", work.Dx(), work.Dy(), orig.Dx(), orig.Dy())
	}
	return nil
}
