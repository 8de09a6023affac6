package prefs

// Preference keys.
const (
	KeyMaxWorkingDimension = "maxWorkingDimension"
	KeyJPEGQuality         = "jpegQuality"
	KeyLanguage            = "language"
	KeyZoomStep            = "zoomStep"
	KeyRotateStep          = "rotateStep"
	KeyCatalogPath         = "catalogPath"
	KeyLastFolder          = "lastFolder"
	KeyDebug               = "debug"
)

// Settings is the typed view of the preferences the application uses.
type Settings struct {
	MaxWorkingDimension int
	JPEGQuality         int
	Language            string
	ZoomStep            float64
	RotateStep          float64
	CatalogPath         string
	LastFolder          string
	Debug               bool
}

// DefaultSettings returns the settings used when nothing is stored.
func DefaultSettings() Settings {
	return Settings{
		MaxWorkingDimension: 2560,
		JPEGQuality:         95,
		Language:            "eng",
		ZoomStep:            1.1,
		RotateStep:          1.0,
		CatalogPath:         "database_final.csv",
	}
}

// Settings reads the typed settings, falling back to defaults for missing or
// out-of-range values.
func (p *Prefs) Settings() Settings {
	d := DefaultSettings()
	s := Settings{
		MaxWorkingDimension: p.IntWithFallback(KeyMaxWorkingDimension, d.MaxWorkingDimension),
		JPEGQuality:         p.IntWithFallback(KeyJPEGQuality, d.JPEGQuality),
		Language:            p.String(KeyLanguage),
		ZoomStep:            p.FloatWithFallback(KeyZoomStep, d.ZoomStep),
		RotateStep:          p.FloatWithFallback(KeyRotateStep, d.RotateStep),
		CatalogPath:         p.String(KeyCatalogPath),
		LastFolder:          p.String(KeyLastFolder),
		Debug:               p.Bool(KeyDebug, false),
	}
	if s.MaxWorkingDimension < 64 || s.MaxWorkingDimension > 16384 {
		s.MaxWorkingDimension = d.MaxWorkingDimension
	}
	if s.JPEGQuality < 1 || s.JPEGQuality > 100 {
		s.JPEGQuality = d.JPEGQuality
	}
	if s.Language == "" {
		s.Language = d.Language
	}
	if s.ZoomStep <= 1 || s.ZoomStep > 4 {
		s.ZoomStep = d.ZoomStep
	}
	if s.RotateStep <= 0 || s.RotateStep > 90 {
		s.RotateStep = d.RotateStep
	}
	if s.CatalogPath == "" {
		s.CatalogPath = d.CatalogPath
	}
	return s
}

// SetSettings stores s.
func (p *Prefs) SetSettings(s Settings) {
	p.SetInt(KeyMaxWorkingDimension, s.MaxWorkingDimension)
	p.SetInt(KeyJPEGQuality, s.JPEGQuality)
	p.SetString(KeyLanguage, s.Language)
	p.SetFloat(KeyZoomStep, s.ZoomStep)
	p.SetFloat(KeyRotateStep, s.RotateStep)
	p.SetString(KeyCatalogPath, s.CatalogPath)
	p.SetString(KeyLastFolder, s.LastFolder)
	p.SetBool(KeyDebug, s.Debug)
}
