package image

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"elysian-scribe/internal/viewport"

	"github.com/disintegration/imaging"
)

// DefaultMaxDimension caps the long side of the working copy.
const DefaultMaxDimension = 2560

// DefaultJPEGQuality is used when a crop overwrites the original.
const DefaultJPEGQuality = 95

// FillColor paints the corners uncovered by a rotation.
var FillColor color.Color = color.White

// WorkingSize returns the working-copy size for an original of w x h:
// unchanged when it fits in maxDim, otherwise scaled uniformly so the long
// side equals maxDim.
func WorkingSize(w, h, maxDim int) (int, int) {
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return w, h
	}
	s := float64(maxDim) / float64(max(w, h))
	return max(1, int(math.Round(float64(w)*s))), max(1, int(math.Round(float64(h)*s)))
}

// MakeWorking returns the downsampled working copy of original.
func MakeWorking(original image.Image, maxDim int) image.Image {
	b := original.Bounds()
	ww, wh := WorkingSize(b.Dx(), b.Dy(), maxDim)
	if ww == b.Dx() && wh == b.Dy() {
		return original
	}
	return imaging.Resize(original, ww, wh, imaging.Lanczos)
}

// RotateExpand rotates img clockwise by degrees into a buffer exactly
// viewport.RotatedSize large, so the pixels agree with the view geometry.
func RotateExpand(img image.Image, degrees float64, fill color.Color) image.Image {
	if math.Mod(degrees, 360) == 0 {
		return img
	}
	b := img.Bounds()
	rw, rh := viewport.RotatedSize(b.Dx(), b.Dy(), degrees)

	// imaging turns counter-clockwise.
	rotated := imaging.Rotate(img, -degrees, fill)
	if rb := rotated.Bounds(); rb.Dx() == rw && rb.Dy() == rh {
		return rotated
	}
	return imaging.PasteCenter(imaging.New(rw, rh, fill), rotated)
}

// Crop cuts r out of img. r is clipped to the image; an empty result is an error.
func Crop(img image.Image, r image.Rectangle) (*image.NRGBA, error) {
	b := img.Bounds()
	clipped := r.Add(b.Min).Intersect(b)
	if clipped.Empty() {
		return nil, fmt.Errorf("crop rectangle %v is outside image bounds %v", r, b)
	}
	return imaging.Crop(img, clipped), nil
}

// EncodeJPEG writes img as JPEG at the given quality.
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
}
