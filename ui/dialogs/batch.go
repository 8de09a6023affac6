package dialogs

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// BatchDialog shows the progress of a background recognition run.
type BatchDialog struct {
	dlg      *dialog.CustomDialog
	progress *widget.ProgressBar
	current  *widget.Label
	counts   *widget.Label
	cancel   *widget.Button

	added, skipped, failed int
}

// NewBatchDialog creates the dialog. onCancel is called once when the user
// stops the run.
func NewBatchDialog(total int, window fyne.Window, onCancel func()) *BatchDialog {
	d := &BatchDialog{
		progress: widget.NewProgressBar(),
		current:  widget.NewLabel("Starting..."),
		counts:   widget.NewLabel(""),
	}
	d.progress.Max = float64(max(total, 1))

	d.cancel = widget.NewButton("Cancel", func() {
		d.cancel.Disable()
		d.current.SetText("Cancelling after the current image...")
		if onCancel != nil {
			onCancel()
		}
	})

	content := container.NewVBox(d.current, d.progress, d.counts, d.cancel)
	d.dlg = dialog.NewCustomWithoutButtons(fmt.Sprintf("Recognizing %d images", total), content, window)
	d.dlg.Resize(fyne.NewSize(420, 180))
	return d
}

// Show displays the dialog.
func (d *BatchDialog) Show() {
	d.dlg.Show()
}

// Hide closes the dialog.
func (d *BatchDialog) Hide() {
	d.dlg.Hide()
}

// Update records one finished image. It must run on the UI goroutine.
func (d *BatchDialog) Update(index int, name string, added bool, err error) {
	switch {
	case err != nil:
		d.failed++
	case added:
		d.added++
	default:
		d.skipped++
	}
	d.progress.SetValue(float64(index))
	d.current.SetText(name)
	d.counts.SetText(d.Summary())
}

// Summary describes the run so far.
func (d *BatchDialog) Summary() string {
	return fmt.Sprintf("%d added, %d already catalogued, %d without text", d.added, d.skipped, d.failed)
}
