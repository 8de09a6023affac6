// Command cropcheck prints how a screen selection maps to original pixels
// for given viewport parameters, and optionally writes the region.
//
// Usage: cropcheck -image <path> -sel x1,y1,x2,y2 [options]
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"elysian-scribe/internal/deskew/hough"
	scribeimage "elysian-scribe/internal/image"
	"elysian-scribe/internal/region"
	"elysian-scribe/internal/selection"
	"elysian-scribe/internal/viewport"
	"elysian-scribe/pkg/geometry"
)

func main() {
	imagePath := flag.String("image", "", "Path to the photo")
	canvasSpec := flag.String("canvas", "1200x800", "Canvas size WxH")
	zoom := flag.Float64("zoom", 0, "Zoom factor; 0 fits the image to the canvas")
	panSpec := flag.String("pan", "0,0", "Pan offset dx,dy in canvas pixels")
	rotation := flag.Float64("rot", 0, "Rotation in degrees, clockwise")
	auto := flag.Bool("auto", false, "Use the estimated skew correction as the rotation")
	selSpec := flag.String("sel", "", "Selection x1,y1,x2,y2 in canvas pixels")
	maxDim := flag.Int("max", scribeimage.DefaultMaxDimension, "Working copy maximum dimension")
	output := flag.String("o", "", "Write the region of the original as JPEG to this path")
	flag.Parse()

	if *imagePath == "" || *selSpec == "" {
		fmt.Println("Usage: cropcheck -image <path> -sel x1,y1,x2,y2 [-canvas 1200x800] [-zoom 2] [-pan 10,-5] [-rot 3.5] [-o roi.jpg]")
		os.Exit(1)
	}

	canvasWH, err := parseFloats(*canvasSpec, "x", 2)
	if err != nil {
		fatalf("Bad -canvas: %v", err)
	}
	pan, err := parseFloats(*panSpec, ",", 2)
	if err != nil {
		fatalf("Bad -pan: %v", err)
	}
	sel, err := parseFloats(*selSpec, ",", 4)
	if err != nil {
		fatalf("Bad -sel: %v", err)
	}

	pair, err := scribeimage.LoadPair(*imagePath, *maxDim)
	if err != nil {
		fatalf("Failed to load image: %v", err)
	}
	orig, work := pair.OriginalSize(), pair.WorkingSize()
	fmt.Printf("Original: %.0fx%.0f  working: %.0fx%.0f  scale: %.4f\n",
		orig.Width, orig.Height, work.Width, work.Height, pair.ScaleToOriginal())

	canvas := geometry.Size{Width: canvasWH[0], Height: canvasWH[1]}
	state := viewport.New()
	if !state.FitToScreen(canvas, work) {
		fatalf("Canvas %v cannot show the image", canvas)
	}
	if *zoom > 0 {
		state.Zoom = 1
		state.SetZoom(*zoom)
	}
	state.PanBy(pan[0], pan[1])
	if *auto {
		skew, err := hough.NewDetector().EstimateSkew(pair.Working)
		if err != nil {
			fatalf("Skew estimate failed: %v", err)
		}
		fmt.Printf("Estimated skew: %.2f deg\n", skew)
		state.SetRotation(-skew)
	} else {
		state.SetRotation(*rotation)
	}

	layout := viewport.NewLayout(state, work, canvas)
	fmt.Printf("\nViewport: zoom %.4f  pan (%.1f, %.1f)  rotation %.2f\n", state.Zoom, state.Pan.X, state.Pan.Y, state.Rotation)
	fmt.Printf("  Rotated working: %.0fx%.0f\n", layout.Rotated.Width, layout.Rotated.Height)
	fmt.Printf("  On screen:       %.1fx%.1f at (%.1f, %.1f)\n", layout.Zoomed.Width, layout.Zoomed.Height, layout.Origin.X, layout.Origin.Y)

	rect, err := selection.Selection{
		Start: geometry.Point2D{X: sel[0], Y: sel[1]},
		End:   geometry.Point2D{X: sel[2], Y: sel[3]},
	}.Normalize()
	if err != nil {
		fatalf("Selection: %v", err)
	}
	box, err := region.ComputeCropBox(rect, layout, pair.ScaleToOriginal())
	if err != nil {
		fatalf("Crop box: %v", err)
	}
	px := box.Pixels()
	fmt.Printf("\nSelection %.1f,%.1f - %.1f,%.1f\n", rect.X1, rect.Y1, rect.X2, rect.Y2)
	fmt.Printf("  Crop box (rotated original): %s\n", box)
	fmt.Printf("  Pixels: %v (%dx%d)\n", px, px.Dx(), px.Dy())

	if *output == "" {
		return
	}
	roi, err := region.NewExtractor(nil, region.Options{}).Extract(pair, box, state.Rotation)
	if err != nil {
		fatalf("Extract failed: %v", err)
	}
	f, err := os.Create(*output)
	if err != nil {
		fatalf("Failed to create %s: %v", *output, err)
	}
	defer f.Close()
	if err := scribeimage.EncodeJPEG(f, roi, scribeimage.DefaultJPEGQuality); err != nil {
		fatalf("Failed to write %s: %v", *output, err)
	}
	fmt.Printf("\nWrote %s\n", *output)
}

func parseFloats(s, sep string, n int) ([]float64, error) {
	parts := strings.Split(s, sep)
	if len(parts) != n {
		return nil, fmt.Errorf("want %d values separated by %q, got %q", n, sep, s)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
