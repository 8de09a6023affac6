package region

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	scribeimage "elysian-scribe/internal/image"
	"elysian-scribe/internal/logging"

	"github.com/sirupsen/logrus"
)

// Recognizer turns a pixel region into text.
type Recognizer interface {
	Recognize(img image.Image, language string) (string, error)
}

// Target is the store entry a destructive crop replaces.
type Target interface {
	Current() *scribeimage.Pair
	OverwriteCurrent(img image.Image) error
}

// Options configures an Extractor.
type Options struct {
	Language string
	Fill     color.Color
	Logger   *logrus.Logger
}

// Extractor cuts crop boxes out of rotated originals.
type Extractor struct {
	recognizer Recognizer
	language   string
	fill       color.Color
	logger     *logrus.Logger
}

// NewExtractor creates an extractor. recognizer may be nil, in which case
// every recognition request fails softly.
func NewExtractor(recognizer Recognizer, opts Options) *Extractor {
	if opts.Language == "" {
		opts.Language = "eng"
	}
	if opts.Fill == nil {
		opts.Fill = scribeimage.FillColor
	}
	return &Extractor{
		recognizer: recognizer,
		language:   opts.Language,
		fill:       opts.Fill,
		logger:     logging.OrDiscard(opts.Logger),
	}
}

// Language returns the recognition language.
func (e *Extractor) Language() string {
	return e.language
}

// SetLanguage changes the recognition language.
func (e *Extractor) SetLanguage(lang string) {
	if lang != "" {
		e.language = lang
	}
}

// Extract rotates the pair's original by rotation degrees with bounding-box
// expansion and crops box out of it. The box is clipped to the rotated image.
func (e *Extractor) Extract(pair *scribeimage.Pair, box CropBox, rotation float64) (*image.NRGBA, error) {
	if pair == nil || pair.Original == nil {
		return nil, scribeimage.ErrNoImage
	}
	if box.Width() <= 0 || box.Height() <= 0 {
		return nil, ErrInvalidSelection
	}
	rotated := scribeimage.RotateExpand(pair.Original, rotation, e.fill)
	out, err := scribeimage.Crop(rotated, box.Pixels())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}
	return out, nil
}

// Recognize extracts box and passes it to the recognizer. It never mutates
// the pair or the file on disk. On any failure the text is empty and the
// error wraps ErrRecognitionFailed, except for an invalid box.
func (e *Extractor) Recognize(pair *scribeimage.Pair, box CropBox, rotation float64) (string, error) {
	roi, err := e.Extract(pair, box, rotation)
	if err != nil {
		if errors.Is(err, ErrInvalidSelection) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrRecognitionFailed, err)
	}
	if e.recognizer == nil {
		return "", fmt.Errorf("%w: no recognition engine", ErrRecognitionFailed)
	}

	text, err := e.recognizer.Recognize(roi, e.language)
	if err != nil {
		e.logger.WithFields(logrus.Fields{"box": box.String(), "error": err}).Warn("Recognition failed")
		return "", fmt.Errorf("%w: %v", ErrRecognitionFailed, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		e.logger.WithField("box", box.String()).Info("Recognition returned no text")
		return "", fmt.Errorf("%w: no text found", ErrRecognitionFailed)
	}
	e.logger.WithFields(logrus.Fields{
		"box":   box.String(),
		"chars": len(text),
	}).Debug("Recognized region")
	return text, nil
}

// Overwrite extracts box from the target's current original and replaces the
// file with it. Callers must have confirmed the operation with the user.
func (e *Extractor) Overwrite(target Target, box CropBox, rotation float64) error {
	roi, err := e.Extract(target.Current(), box, rotation)
	if err != nil {
		return err
	}
	if err := target.OverwriteCurrent(roi); err != nil {
		return err
	}
	e.logger.WithFields(logrus.Fields{
		"box":      box.String(),
		"rotation": rotation,
	}).Info("Applied permanent crop")
	return nil
}
