package records

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReplaceDropsUnnamedAndReplacesPerImage(t *testing.T) {
	b := NewBook()
	n := b.Replace(Draft{
		Image:        "a.jpg",
		PlotLocation: "Section G, Plot 7",
		People:       []Person{{Name: "John Smith", Born: "1850", Died: "1920"}, {Name: "  "}, {Name: "Mary Smith"}},
		Epitaph:      "At rest",
	})
	if n != 2 || b.Len() != 2 {
		t.Fatalf("expected 2 records, got %d/%d", n, b.Len())
	}
	b.Replace(Draft{Image: "b.jpg", People: []Person{{Name: "Anna"}}})

	n = b.Replace(Draft{Image: "a.jpg", People: []Person{{Name: "John Smyth"}}})
	if n != 1 || b.Len() != 2 {
		t.Fatalf("replace should drop old records of the image, got %d records", b.Len())
	}
	recs := b.ForImage("a.jpg")
	if len(recs) != 1 || recs[0].Name != "John Smyth" {
		t.Fatalf("unexpected records %+v", recs)
	}
	if len(b.ForImage("b.jpg")) != 1 {
		t.Fatal("other images must be untouched")
	}
}

func TestReplaceWithNobodyClearsImage(t *testing.T) {
	b := NewBook()
	b.Replace(Draft{Image: "a.jpg", People: []Person{{Name: "X"}}})
	b.Save(filepath.Join(t.TempDir(), "c.csv"))
	if b.Dirty() {
		t.Fatal("save should clear dirty")
	}
	if n := b.Replace(Draft{Image: "a.jpg"}); n != 0 || b.Len() != 0 || !b.Dirty() {
		t.Fatalf("expected image cleared, got %d records dirty=%v", b.Len(), b.Dirty())
	}
}

func TestEmptyDraftDoesNotDirty(t *testing.T) {
	b := NewBook()
	b.Replace(Draft{Image: "a.jpg", People: []Person{{}}})
	if b.Dirty() {
		t.Fatal("a draft with no names on an uncatalogued image changes nothing")
	}
}

func TestDraftFor(t *testing.T) {
	b := NewBook()
	b.Replace(Draft{
		Image:        "a.jpg",
		PlotLocation: "G7",
		People:       []Person{{Name: "A", Born: "1"}, {Name: "B", Died: "2"}},
		Epitaph:      "rest",
		OCRText:      "A\nB",
	})
	d := b.DraftFor("a.jpg")
	if d.PlotLocation != "G7" || d.Epitaph != "rest" || d.OCRText != "A\nB" || len(d.People) != 2 || d.People[1].Died != "2" {
		t.Fatalf("unexpected draft %+v", d)
	}
	if d := b.DraftFor("new.jpg"); d.Image != "new.jpg" || len(d.People) != 0 {
		t.Fatalf("unexpected draft for new image %+v", d)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultPath)
	b := NewBook()
	b.Replace(Draft{
		Image:   "stone, one.jpg",
		People:  []Person{{Name: `John "Jack" Smith`, Born: "3/4/1881"}},
		Epitaph: "line one\nline two",
	})
	if err := b.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	got := loaded.Records()
	want := b.Records()
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, want)
	}
	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".catalog-*"))
	if len(leftovers) != 0 {
		t.Fatalf("temporary files left behind: %v", leftovers)
	}
}

func TestLoadMissingFile(t *testing.T) {
	b, err := Load(filepath.Join(t.TempDir(), "none.csv"))
	if err != nil || b.Len() != 0 {
		t.Fatalf("missing catalog should load empty, got %v %v", b, err)
	}
}

func TestReadOlderCatalog(t *testing.T) {
	data := "\ufeffimage_filename,plot_location,name,born,died,epitaph\na.jpg,G7,Ann,1900,1980,\n"
	b, err := Read(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	recs := b.Records()
	if len(recs) != 1 || recs[0].Name != "Ann" || recs[0].Died != "1980" || recs[0].OCRText != "" {
		t.Fatalf("unexpected records %+v", recs)
	}
}

func TestReadRejectsForeignCSV(t *testing.T) {
	if _, err := Read(strings.NewReader("a,b\n1,2\n")); err == nil {
		t.Fatal("expected an error for a file without image_filename")
	}
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := NewBook().Write(&buf); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != strings.Join(Columns, ",") {
		t.Fatalf("unexpected header %q", got)
	}
}

func TestSaveFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.csv")
	os.Mkdir(path, 0o755)
	os.WriteFile(filepath.Join(path, "x"), nil, 0o644)

	b := NewBook()
	b.Replace(Draft{Image: "a.jpg", People: []Person{{Name: "A"}}})
	if err := b.Save(path); err == nil {
		t.Fatal("expected save over a directory to fail")
	}
	if !b.Dirty() {
		t.Fatal("failed save must keep the book dirty")
	}
}
