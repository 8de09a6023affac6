// Package records keeps the catalog of people read from headstone photos and
// stores it as a CSV file.
package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPath is the catalog file name used when none is configured.
const DefaultPath = "database_final.csv"

// Columns is the CSV header, in order.
var Columns = []string{"image_filename", "plot_location", "name", "born", "died", "epitaph", "ocr_text"}

// Record is one person on one photographed plot.
type Record struct {
	ImageFilename string
	PlotLocation  string
	Name          string
	Born          string
	Died          string
	Epitaph       string
	OCRText       string
}

func (r Record) row() []string {
	return []string{r.ImageFilename, r.PlotLocation, r.Name, r.Born, r.Died, r.Epitaph, r.OCRText}
}

// Person is one individual named on a plot.
type Person struct {
	Name string
	Born string
	Died string
}

// Draft is the data entered for the current image before it is saved.
type Draft struct {
	Image        string
	PlotLocation string
	People       []Person
	Epitaph      string
	OCRText      string
}

// Named returns the people with a non-blank name.
func (d Draft) Named() []Person {
	var out []Person
	for _, p := range d.People {
		if strings.TrimSpace(p.Name) != "" {
			out = append(out, p)
		}
	}
	return out
}

// Book is the in-memory catalog.
type Book struct {
	records []Record
	dirty   bool
}

// NewBook returns an empty catalog.
func NewBook() *Book {
	return &Book{}
}

// Replace drops every record of d.Image and adds one record per named person.
// It returns the number of records saved.
func (b *Book) Replace(d Draft) int {
	if d.Image == "" {
		return 0
	}
	kept := b.records[:0]
	removed := 0
	for _, r := range b.records {
		if r.ImageFilename == d.Image {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	b.records = kept

	people := d.Named()
	for _, p := range people {
		b.records = append(b.records, Record{
			ImageFilename: d.Image,
			PlotLocation:  d.PlotLocation,
			Name:          strings.TrimSpace(p.Name),
			Born:          p.Born,
			Died:          p.Died,
			Epitaph:       d.Epitaph,
			OCRText:       d.OCRText,
		})
	}
	if removed > 0 || len(people) > 0 {
		b.dirty = true
	}
	return len(people)
}

// ForImage returns the records of one image.
func (b *Book) ForImage(image string) []Record {
	var out []Record
	for _, r := range b.records {
		if r.ImageFilename == image {
			out = append(out, r)
		}
	}
	return out
}

// DraftFor rebuilds the draft of an already catalogued image, or an empty
// draft for a new one.
func (b *Book) DraftFor(image string) Draft {
	d := Draft{Image: image}
	for i, r := range b.ForImage(image) {
		if i == 0 {
			d.PlotLocation = r.PlotLocation
			d.Epitaph = r.Epitaph
			d.OCRText = r.OCRText
		}
		d.People = append(d.People, Person{Name: r.Name, Born: r.Born, Died: r.Died})
	}
	return d
}

// Records returns a copy of all records.
func (b *Book) Records() []Record {
	return append([]Record(nil), b.records...)
}

// Len returns the number of records.
func (b *Book) Len() int {
	return len(b.records)
}

// Dirty reports whether the book changed since it was loaded or saved.
func (b *Book) Dirty() bool {
	return b.dirty
}

// Write encodes the book as CSV with a header row.
func (b *Book) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range b.records {
		if err := cw.Write(r.row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save writes the book to path through a temporary file.
func (b *Book) Save(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".catalog-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := b.Write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	b.dirty = false
	return nil
}

// Read decodes a CSV catalog. Columns are matched by header name, so files
// without the ocr_text column still load.
func Read(r io.Reader) (*Book, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return NewBook(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	if _, ok := index["image_filename"]; !ok {
		return nil, fmt.Errorf("catalog has no image_filename column")
	}

	field := func(row []string, name string) string {
		if i, ok := index[name]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}

	b := NewBook()
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog: %w", err)
		}
		b.records = append(b.records, Record{
			ImageFilename: field(row, "image_filename"),
			PlotLocation:  field(row, "plot_location"),
			Name:          field(row, "name"),
			Born:          field(row, "born"),
			Died:          field(row, "died"),
			Epitaph:       field(row, "epitaph"),
			OCRText:       field(row, "ocr_text"),
		})
	}
	return b, nil
}

// Load reads the catalog at path. A missing file gives an empty book.
func Load(path string) (*Book, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewBook(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return Read(f)
}
