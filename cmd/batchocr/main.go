// Command batchocr recognizes every headstone photo in a folder and appends
// the parsed inscriptions to the catalog CSV.
//
// Usage: batchocr [options] <folder>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"elysian-scribe/internal/batch"
	scribeimage "elysian-scribe/internal/image"
	"elysian-scribe/internal/logging"
	"elysian-scribe/internal/ocr"
	"elysian-scribe/internal/records"

	"github.com/sirupsen/logrus"
)

var (
	flagLang      = flag.String("lang", ocr.DefaultLanguage, "OCR language, e.g. eng or eng+fra")
	flagOutput    = flag.String("o", records.DefaultPath, "Catalog CSV to update")
	flagDebug     = flag.Bool("debug", false, "Debug logging")
	flagOverwrite = flag.Bool("overwrite", false, "Replace records of images already in the catalog")
	flagRaw       = flag.Bool("raw", false, "Skip OpenCV preprocessing before recognition")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <folder>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	dir := flag.Arg(0)
	logger := logging.New(*flagDebug)

	book, err := records.Load(*flagOutput)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading catalog: %v\n", err)
		os.Exit(1)
	}

	store := scribeimage.NewStore(scribeimage.StoreOptions{Logger: logger})
	if err := store.OpenFolder(dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error opening folder: %v\n", err)
		os.Exit(1)
	}
	paths := store.Snapshot()
	if len(paths) == 0 {
		fmt.Println("No images found.")
		return
	}

	engine, err := ocr.NewEngine(*flagLang)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting OCR: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()
	engine.SetPreprocess(!*flagRaw)

	// Ctrl-C stops after the image in progress; what was read is still saved
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Recognizing %d images in %s\n", len(paths), dir)
	var added, skipped, failed int
	for r := range batch.Start(ctx, paths, batch.Options{
		Recognizer: engine,
		Language:   *flagLang,
		Logger:     logger,
	}) {
		draft, ok := r.Draft()
		switch {
		case !ok:
			failed++
			fmt.Printf("[%d/%d] %-40s  -- %v\n", r.Index, r.Total, r.Name(), r.Err)
		case !*flagOverwrite && len(book.ForImage(draft.Image)) > 0:
			skipped++
			fmt.Printf("[%d/%d] %-40s  already catalogued\n", r.Index, r.Total, r.Name())
		default:
			book.Replace(draft)
			added++
			fmt.Printf("[%d/%d] %-40s  %s (%s - %s)\n", r.Index, r.Total, r.Name(), r.Fields.Name, r.Fields.Born, r.Fields.Died)
		}
	}

	if book.Dirty() {
		if err := book.Save(*flagOutput); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing catalog: %v\n", err)
			os.Exit(1)
		}
	}
	logger.WithFields(logrus.Fields{
		"added":   added,
		"skipped": skipped,
		"failed":  failed,
		"catalog": *flagOutput,
	}).Info("Batch finished")
	fmt.Printf("\n%d added, %d already catalogued, %d without text. Catalog: %s (%d records)\n",
		added, skipped, failed, *flagOutput, book.Len())
}
