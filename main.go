// Package main provides the entry point for the Elysian Scribe application.
package main

import (
	"flag"
	"fmt"

	"elysian-scribe/internal/app"
	"elysian-scribe/internal/batch"
	"elysian-scribe/internal/deskew/hough"
	"elysian-scribe/internal/logging"
	"elysian-scribe/internal/ocr"
	"elysian-scribe/internal/records"
	"elysian-scribe/internal/region"
	"elysian-scribe/internal/version"
	"elysian-scribe/ui/mainwindow"
	"elysian-scribe/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/sirupsen/logrus"
)

const (
	appID    = "org.elysian.scribe"
	appTitle = "Elysian Scribe"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	lang := flag.String("lang", "", "OCR language, e.g. eng or eng+fra (default from preferences)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String(appTitle))
		return
	}

	appPrefs := prefs.Load()
	settings := appPrefs.Settings()
	if *lang != "" {
		settings.Language = *lang
	}

	logger := logging.New(*debug || settings.Debug)
	logger.WithFields(logrus.Fields{"version": version.Version, "prefs": appPrefs.Path()}).Infof("Starting %s", appTitle)

	catalog, err := records.Load(settings.CatalogPath)
	if err != nil {
		logger.WithFields(logrus.Fields{"path": settings.CatalogPath, "error": err}).Fatal("Failed to read catalog")
	}
	logger.WithFields(logrus.Fields{"path": settings.CatalogPath, "records": catalog.Len()}).Info("Catalog loaded")

	// Recognition is optional: without Tesseract the viewer and catalog still work
	var recognizer region.Recognizer
	engine, err := ocr.NewEngine(settings.Language)
	if err != nil {
		logger.WithError(err).Warn("OCR unavailable")
	} else {
		defer engine.Close()
		recognizer = engine
	}

	session := app.NewSession(app.Config{
		MaxDimension: settings.MaxWorkingDimension,
		JPEGQuality:  settings.JPEGQuality,
		Language:     settings.Language,
		ZoomStep:     settings.ZoomStep,
		RotateStep:   settings.RotateStep,
		Recognizer:   recognizer,
		Skew:         hough.NewDetector(),
		Catalog:      catalog,
		CatalogPath:  settings.CatalogPath,
		Logger:       logger,
	})

	a := fyneapp.NewWithID(appID)
	a.Settings().SetTheme(&app.ScribeTheme{})

	// Batch runs get their own Tesseract client so the OCR button stays responsive
	var openEngine func() (batch.Engine, error)
	if recognizer != nil {
		openEngine = func() (batch.Engine, error) {
			e, err := ocr.NewEngine(settings.Language)
			if err != nil {
				return nil, err
			}
			return e, nil
		}
	}
	win := mainwindow.New(a, mainwindow.Options{
		Session:    session,
		Prefs:      appPrefs,
		OpenEngine: openEngine,
		Logger:     logger,
	})

	// A folder on the command line wins over the last one used
	if dir := flag.Arg(0); dir != "" {
		if err := win.OpenFolder(dir); err != nil {
			logger.WithFields(logrus.Fields{"folder": dir, "error": err}).Error("Failed to open folder")
		}
	} else {
		win.RestoreLastFolder()
	}

	win.ShowAndRun()
}
