// Package ocr recognizes inscription text using Tesseract, with OpenCV
// preprocessing for weathered stone photographs.
package ocr

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// DefaultLanguage is used when no language is configured.
const DefaultLanguage = "eng"

// Engine provides OCR functionality using Tesseract. A single Tesseract client
// is not safe for concurrent use, so calls are serialized.
type Engine struct {
	mu         sync.Mutex
	client     *gosseract.Client
	language   string
	preprocess bool
}

// NewEngine creates a new OCR engine for language (e.g. "eng" or "eng+fra").
func NewEngine(language string) (*Engine, error) {
	if language == "" {
		language = DefaultLanguage
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(splitLanguages(language)...); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}
	// PSM 3 = fully automatic page segmentation; inscriptions span several lines
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set PSM: %w", err)
	}

	return &Engine{
		client:     client,
		language:   language,
		preprocess: true,
	}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		err := e.client.Close()
		e.client = nil
		return err
	}
	return nil
}

// SetPreprocess enables/disables the contrast and threshold pass.
func (e *Engine) SetPreprocess(enabled bool) {
	e.mu.Lock()
	e.preprocess = enabled
	e.mu.Unlock()
}

// Recognize performs OCR on img. Lines are kept; whitespace inside a line is
// collapsed and blank lines are dropped.
func (e *Engine) Recognize(img image.Image, language string) (string, error) {
	if img == nil || img.Bounds().Empty() {
		return "", fmt.Errorf("empty image")
	}

	mat, err := ImageToMat(img)
	if err != nil {
		return "", err
	}
	defer mat.Close()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return "", fmt.Errorf("OCR engine closed")
	}

	if language != "" && language != e.language {
		if err := e.client.SetLanguage(splitLanguages(language)...); err != nil {
			return "", fmt.Errorf("failed to set OCR language: %w", err)
		}
		e.language = language
	}

	processed := preprocessForOCR(mat, e.preprocess)
	defer processed.Close()

	// Convert to image bytes (PNG format)
	buf, err := gocv.IMEncode(gocv.PNGFileExt, processed)
	if err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return cleanText(text), nil
}

func cleanText(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func splitLanguages(language string) []string {
	return strings.Split(language, "+")
}

// preprocessForOCR prepares a BGR region for OCR.
func preprocessForOCR(region gocv.Mat, enhance bool) gocv.Mat {
	h, w := region.Rows(), region.Cols()

	// Upscale small regions for better OCR (target ~300px minimum side)
	var scaled gocv.Mat
	minDim := min(h, w)
	if minDim < 300 {
		scale := 300.0 / float64(minDim)
		scaled = gocv.NewMat()
		gocv.Resize(region, &scaled, image.Point{}, scale, scale, gocv.InterpolationCubic)
	} else {
		scaled = region.Clone()
	}

	if !enhance {
		result := gocv.NewMat()
		gocv.CvtColor(scaled, &result, gocv.ColorBGRToRGB)
		scaled.Close()
		return result
	}

	gray := gocv.NewMat()
	gocv.CvtColor(scaled, &gray, gocv.ColorBGRToGray)
	scaled.Close()

	clahe := gocv.NewCLAHEWithParams(2.0, image.Point{8, 8})
	defer clahe.Close()

	enhanced := gocv.NewMat()
	clahe.Apply(gray, &enhanced)
	gray.Close()

	// Smooth lichen speckle before thresholding
	blurred := gocv.NewMat()
	gocv.GaussianBlur(enhanced, &blurred, image.Point{3, 3}, 0, 0, gocv.BorderDefault)
	enhanced.Close()

	binary := gocv.NewMat()
	gocv.Threshold(blurred, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	blurred.Close()

	// Tesseract expects dark text on a light background
	whiteCount := gocv.CountNonZero(binary)
	totalPixels := binary.Rows() * binary.Cols()
	if float64(whiteCount)/float64(totalPixels) < 0.5 {
		gocv.BitwiseNot(binary, &binary)
	}

	result := gocv.NewMat()
	gocv.CvtColor(binary, &result, gocv.ColorGrayToBGR)
	binary.Close()

	return result
}
