// Package batch runs text recognition over a folder in the background.
package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	scribeimage "elysian-scribe/internal/image"
	"elysian-scribe/internal/inscription"
	"elysian-scribe/internal/logging"
	"elysian-scribe/internal/records"

	"github.com/sirupsen/logrus"
)

// ErrNoText marks an image on which nothing was recognized.
var ErrNoText = errors.New("no text recognized")

// Recognizer turns an image into text.
type Recognizer interface {
	Recognize(img image.Image, language string) (string, error)
}

// Engine is a recognizer owned by a single run and closed when it ends.
type Engine interface {
	Recognizer
	Close() error
}

// Options configures a run. Open, if set, gives the run its own engine in
// place of Recognizer, so a foreground recognition never waits behind the
// worker. Load decodes one file; nil uses the image package decoder.
type Options struct {
	Recognizer Recognizer
	Open       func() (Engine, error)
	Language   string
	Load       func(path string) (image.Image, error)
	Logger     *logrus.Logger
}

// Result is the outcome for one image. Index counts from 1 up to Total.
type Result struct {
	Index  int
	Total  int
	Path   string
	Text   string
	Fields inscription.Fields
	Err    error
}

// Name returns the file name of the image.
func (r Result) Name() string {
	return filepath.Base(r.Path)
}

// Draft converts a successful result into a catalog draft.
func (r Result) Draft() (records.Draft, bool) {
	if r.Err != nil || r.Text == "" {
		return records.Draft{}, false
	}
	return records.Draft{
		Image:   r.Name(),
		People:  []records.Person{{Name: r.Fields.Name, Born: r.Fields.Born, Died: r.Fields.Died}},
		Epitaph: r.Fields.Epitaph,
		OCRText: r.Text,
	}, true
}

// Start recognizes every path in order on a separate goroutine and delivers
// one Result per image on the returned channel, which is closed when the run
// ends. paths is copied, so the caller may keep navigating. Cancelling ctx
// stops the run before the next image; a recognition already in progress
// completes first.
func Start(ctx context.Context, paths []string, opts Options) <-chan Result {
	snapshot := append([]string(nil), paths...)
	if opts.Load == nil {
		opts.Load = scribeimage.Decode
	}
	logger := logging.OrDiscard(opts.Logger)

	out := make(chan Result, 1)
	go func() {
		defer close(out)
		total := len(snapshot)
		if opts.Open != nil {
			engine, err := opts.Open()
			if err != nil {
				logger.WithError(err).Warn("Failed to open a recognition engine for the batch")
				opts.Recognizer = nil
			} else {
				defer engine.Close()
				opts.Recognizer = engine
			}
		}
		logger.WithField("images", total).Info("Batch recognition started")

		done := 0
		for i, path := range snapshot {
			if ctx.Err() != nil {
				logger.WithFields(logrus.Fields{"processed": done, "images": total}).Info("Batch recognition cancelled")
				return
			}
			res := process(path, opts)
			res.Index = i + 1
			res.Total = total
			if res.Err != nil {
				logger.WithFields(logrus.Fields{"file": res.Name(), "error": res.Err}).Warn("Batch recognition failed for image")
			}

			select {
			case out <- res:
				done++
			case <-ctx.Done():
				logger.WithFields(logrus.Fields{"processed": done, "images": total}).Info("Batch recognition cancelled")
				return
			}
		}
		logger.WithField("images", total).Info("Batch recognition finished")
	}()
	return out
}

func process(path string, opts Options) Result {
	res := Result{Path: path}
	if opts.Recognizer == nil {
		res.Err = fmt.Errorf("no recognition engine")
		return res
	}
	img, err := opts.Load(path)
	if err != nil {
		res.Err = err
		return res
	}
	text, err := opts.Recognizer.Recognize(img, opts.Language)
	if err != nil {
		res.Err = fmt.Errorf("recognition failed: %w", err)
		return res
	}
	text = strings.TrimSpace(text)
	if text == "" {
		res.Err = ErrNoText
		return res
	}
	res.Text = text
	res.Fields = inscription.Parse(text)
	return res
}
