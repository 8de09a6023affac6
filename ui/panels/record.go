package panels

import (
	"strings"

	"elysian-scribe/internal/app"
	"elysian-scribe/internal/inscription"
	"elysian-scribe/internal/records"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// personRow holds the entries for one person on the plot.
type personRow struct {
	name, born, died *widget.Entry
	box              *fyne.Container
}

func (r *personRow) person() records.Person {
	return records.Person{
		Name: strings.TrimSpace(r.name.Text),
		Born: strings.TrimSpace(r.born.Text),
		Died: strings.TrimSpace(r.died.Text),
	}
}

// RecordPanel is the data entry form for the current image.
type RecordPanel struct {
	session   *app.Session
	container fyne.CanvasObject

	imageLabel *widget.Label
	plotEntry  *widget.Entry
	peopleBox  *fyne.Container
	rows       []*personRow
	epitaph    *widget.Entry
	ocrText    *widget.Entry
	savedLabel *widget.Label

	loading bool
}

// NewRecordPanel creates a new record panel.
func NewRecordPanel(session *app.Session) *RecordPanel {
	rp := &RecordPanel{session: session}

	rp.imageLabel = widget.NewLabel("")
	rp.imageLabel.TextStyle = fyne.TextStyle{Bold: true}

	rp.plotEntry = widget.NewEntry()
	rp.plotEntry.SetPlaceHolder("Plot location (e.g., Section B, Row 4)")
	rp.plotEntry.OnChanged = func(string) { rp.changed() }

	rp.peopleBox = container.NewVBox()

	rp.epitaph = widget.NewMultiLineEntry()
	rp.epitaph.SetPlaceHolder("Epitaph")
	rp.epitaph.Wrapping = fyne.TextWrapWord
	rp.epitaph.SetMinRowsVisible(2)
	rp.epitaph.OnChanged = func(string) { rp.changed() }

	rp.ocrText = widget.NewMultiLineEntry()
	rp.ocrText.SetPlaceHolder("Recognized text appears here")
	rp.ocrText.Wrapping = fyne.TextWrapWord
	rp.ocrText.SetMinRowsVisible(5)
	rp.ocrText.OnChanged = func(string) { rp.changed() }

	rp.savedLabel = widget.NewLabel("")

	addBtn := widget.NewButtonWithIcon("Add person", theme.ContentAddIcon(), func() {
		rp.addRow(records.Person{})
		rp.changed()
	})
	fillBtn := widget.NewButton("Fill from text", rp.fillFromText)
	saveBtn := widget.NewButtonWithIcon("Save record", theme.DocumentSaveIcon(), func() {
		rp.changed()
		session.SaveDraft()
	})
	saveBtn.Importance = widget.HighImportance

	form := container.NewVBox(
		rp.imageLabel,
		widget.NewLabel("Plot"),
		rp.plotEntry,
		widget.NewSeparator(),
		widget.NewLabel("People"),
		rp.peopleBox,
		addBtn,
		widget.NewSeparator(),
		rp.epitaph,
		widget.NewLabel("Recognized text"),
		rp.ocrText,
		container.NewGridWithColumns(2, fillBtn, saveBtn),
		rp.savedLabel,
	)
	rp.container = container.NewVScroll(form)

	reload := func(interface{}) { rp.load(session.Draft()) }
	session.On(app.EventImageLoaded, reload)
	session.On(app.EventFolderOpened, reload)
	session.On(app.EventDraftChanged, reload)
	session.On(app.EventRecordsSaved, func(interface{}) {
		rp.setSaved(len(session.Catalog().ForImage(session.Store().CurrentName())))
	})

	rp.load(session.Draft())
	return rp
}

// Container returns the panel container.
func (rp *RecordPanel) Container() fyne.CanvasObject {
	return rp.container
}

// Draft collects the form into a draft.
func (rp *RecordPanel) Draft() records.Draft {
	d := records.Draft{
		PlotLocation: strings.TrimSpace(rp.plotEntry.Text),
		Epitaph:      strings.TrimSpace(rp.epitaph.Text),
		OCRText:      rp.ocrText.Text,
	}
	for _, r := range rp.rows {
		d.People = append(d.People, r.person())
	}
	return d
}

// changed pushes the form into the session so navigation persists it.
func (rp *RecordPanel) changed() {
	if rp.loading {
		return
	}
	rp.session.SetDraft(rp.Draft())
}

func (rp *RecordPanel) load(d records.Draft) {
	rp.loading = true
	defer func() { rp.loading = false }()

	rp.imageLabel.SetText(d.Image)
	rp.plotEntry.SetText(d.PlotLocation)
	rp.epitaph.SetText(d.Epitaph)
	rp.ocrText.SetText(d.OCRText)

	rp.rows = nil
	rp.peopleBox.RemoveAll()
	for _, p := range d.People {
		rp.addRow(p)
	}
	if len(rp.rows) == 0 {
		rp.addRow(records.Person{})
	}
	rp.setSaved(len(rp.session.Catalog().ForImage(d.Image)))
}

func (rp *RecordPanel) addRow(p records.Person) {
	row := &personRow{
		name: widget.NewEntry(),
		born: widget.NewEntry(),
		died: widget.NewEntry(),
	}
	row.name.SetPlaceHolder("Name")
	row.born.SetPlaceHolder("Born")
	row.died.SetPlaceHolder("Died")
	row.name.SetText(p.Name)
	row.born.SetText(p.Born)
	row.died.SetText(p.Died)
	for _, e := range []*widget.Entry{row.name, row.born, row.died} {
		e.OnChanged = func(string) { rp.changed() }
	}

	remove := widget.NewButtonWithIcon("", theme.ContentRemoveIcon(), func() {
		rp.removeRow(row)
		rp.changed()
	})
	row.box = container.NewBorder(nil, nil, nil, remove,
		container.NewVBox(row.name, container.NewGridWithColumns(2, row.born, row.died)))

	rp.rows = append(rp.rows, row)
	rp.peopleBox.Add(row.box)
}

func (rp *RecordPanel) removeRow(row *personRow) {
	for i, r := range rp.rows {
		if r == row {
			rp.rows = append(rp.rows[:i], rp.rows[i+1:]...)
			break
		}
	}
	rp.peopleBox.Remove(row.box)
	if len(rp.rows) == 0 {
		rp.addRow(records.Person{})
	}
}

// fillFromText parses the recognized text into the first person and the
// epitaph, leaving fields the user already typed alone.
func (rp *RecordPanel) fillFromText() {
	if strings.TrimSpace(rp.ocrText.Text) == "" {
		return
	}
	f := inscription.Parse(rp.ocrText.Text)

	rp.loading = true
	row := rp.rows[0]
	setIfEmpty(row.name, f.Name)
	setIfEmpty(row.born, f.Born)
	setIfEmpty(row.died, f.Died)
	setIfEmpty(rp.epitaph, f.Epitaph)
	rp.loading = false

	rp.changed()
}

func (rp *RecordPanel) setSaved(n int) {
	switch n {
	case 0:
		rp.savedLabel.SetText("Not in catalog")
	case 1:
		rp.savedLabel.SetText("1 record in catalog")
	default:
		rp.savedLabel.SetText(pluralRecords(n))
	}
}
