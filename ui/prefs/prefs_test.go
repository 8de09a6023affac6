package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSettingsDefaults(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	if got := p.Settings(); got != DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", prefsFile)
	p := LoadFrom(path)
	want := Settings{
		MaxWorkingDimension: 1600,
		JPEGQuality:         90,
		Language:            "eng+fra",
		ZoomStep:            1.25,
		RotateStep:          0.5,
		CatalogPath:         "/data/catalog.csv",
		LastFolder:          "/photos/north",
		Debug:               true,
	}
	p.SetSettings(want)
	if err := p.Save(); err != nil {
		t.Fatal(err)
	}
	if got := LoadFrom(path).Settings(); got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestSettingsRejectOutOfRange(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), prefsFile))
	p.SetInt(KeyJPEGQuality, 250)
	p.SetFloat(KeyZoomStep, 0.5)
	p.SetFloat(KeyRotateStep, -1)
	p.SetFloat(KeyMaxWorkingDimension, 1000.5)
	s := p.Settings()
	d := DefaultSettings()
	if s.JPEGQuality != d.JPEGQuality || s.ZoomStep != d.ZoomStep || s.RotateStep != d.RotateStep || s.MaxWorkingDimension != d.MaxWorkingDimension {
		t.Fatalf("out-of-range values should fall back, got %+v", s)
	}
}

func TestMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), prefsFile)
	os.WriteFile(path, []byte("{not json"), 0o644)
	p := LoadFrom(path)
	if p.String(KeyLanguage) != "" || p.Settings().Language != "eng" {
		t.Fatal("malformed preferences should load empty")
	}
	p.SetBool(KeyDebug, true)
	if !p.Bool(KeyDebug, false) {
		t.Fatal("setting after a malformed load must work")
	}
}
