// Package dialogs provides application dialogs.
package dialogs

import (
	"fmt"
	"strconv"
	"strings"

	"elysian-scribe/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// SettingsDialog edits the application settings.
type SettingsDialog struct {
	settings prefs.Settings
	window   fyne.Window

	languageEntry *widget.Entry
	maxDimEntry   *widget.Entry
	qualityEntry  *widget.Entry
	zoomEntry     *widget.Entry
	rotateEntry   *widget.Entry
	catalogEntry  *widget.Entry
	debugCheck    *widget.Check

	// Callback
	onSave func(prefs.Settings)
}

// NewSettingsDialog creates a new settings dialog.
func NewSettingsDialog(settings prefs.Settings, window fyne.Window, onSave func(prefs.Settings)) *SettingsDialog {
	return &SettingsDialog{
		settings: settings,
		window:   window,
		onSave:   onSave,
	}
}

// Show displays the dialog.
func (d *SettingsDialog) Show() {
	dlg := dialog.NewCustomConfirm(
		"Preferences",
		"Save",
		"Cancel",
		d.createContent(),
		func(save bool) {
			if save {
				d.applyChanges()
				if d.onSave != nil {
					d.onSave(d.settings)
				}
			}
		},
		d.window,
	)
	dlg.Resize(fyne.NewSize(460, 420))
	dlg.Show()
}

func (d *SettingsDialog) createContent() fyne.CanvasObject {
	s := d.settings

	d.languageEntry = widget.NewEntry()
	d.languageEntry.SetText(s.Language)
	d.languageEntry.SetPlaceHolder("eng or eng+fra")

	d.maxDimEntry = widget.NewEntry()
	d.maxDimEntry.SetText(strconv.Itoa(s.MaxWorkingDimension))

	d.qualityEntry = widget.NewEntry()
	d.qualityEntry.SetText(strconv.Itoa(s.JPEGQuality))

	d.zoomEntry = widget.NewEntry()
	d.zoomEntry.SetText(fmt.Sprintf("%.2f", s.ZoomStep))

	d.rotateEntry = widget.NewEntry()
	d.rotateEntry.SetText(fmt.Sprintf("%.1f", s.RotateStep))

	d.catalogEntry = widget.NewEntry()
	d.catalogEntry.SetText(s.CatalogPath)

	d.debugCheck = widget.NewCheck("Debug logging (restart to apply)", nil)
	d.debugCheck.SetChecked(s.Debug)

	return widget.NewForm(
		widget.NewFormItem("OCR language", d.languageEntry),
		widget.NewFormItem("Working size (px)", d.maxDimEntry),
		widget.NewFormItem("JPEG quality", d.qualityEntry),
		widget.NewFormItem("Zoom step", d.zoomEntry),
		widget.NewFormItem("Rotate step (deg)", d.rotateEntry),
		widget.NewFormItem("Catalog file", d.catalogEntry),
		widget.NewFormItem("", d.debugCheck),
	)
}

// applyChanges copies parseable entries into the settings; the rest keep
// their previous values.
func (d *SettingsDialog) applyChanges() {
	if v := strings.TrimSpace(d.languageEntry.Text); v != "" {
		d.settings.Language = v
	}
	if v, err := strconv.Atoi(d.maxDimEntry.Text); err == nil && v > 0 {
		d.settings.MaxWorkingDimension = v
	}
	if v, err := strconv.Atoi(d.qualityEntry.Text); err == nil && v > 0 && v <= 100 {
		d.settings.JPEGQuality = v
	}
	if v, err := strconv.ParseFloat(d.zoomEntry.Text, 64); err == nil && v > 1 {
		d.settings.ZoomStep = v
	}
	if v, err := strconv.ParseFloat(d.rotateEntry.Text, 64); err == nil && v > 0 {
		d.settings.RotateStep = v
	}
	if v := strings.TrimSpace(d.catalogEntry.Text); v != "" {
		d.settings.CatalogPath = v
	}
	d.settings.Debug = d.debugCheck.Checked
}
