// Package panels provides UI panels for the application.
package panels

import (
	"fmt"

	"elysian-scribe/internal/app"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	session   *app.Session
	container *container.AppTabs

	// Tab content
	navigator *NavigatorPanel
	record    *RecordPanel
}

// NewSidePanel creates a new side panel.
func NewSidePanel(session *app.Session) *SidePanel {
	sp := &SidePanel{session: session}

	sp.navigator = NewNavigatorPanel(session)
	sp.record = NewRecordPanel(session)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Images", sp.navigator.Container()),
		container.NewTabItem("Record", sp.record.Container()),
	)

	// Recognized text is only useful next to the form
	session.On(app.EventTextRecognized, func(interface{}) {
		sp.container.SelectIndex(1)
	})

	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// Navigator returns the image list panel.
func (sp *SidePanel) Navigator() *NavigatorPanel {
	return sp.navigator
}

// Record returns the record form panel.
func (sp *SidePanel) Record() *RecordPanel {
	return sp.record
}

// NavigatorPanel lists the images of the open folder and jumps between them.
type NavigatorPanel struct {
	session   *app.Session
	container fyne.CanvasObject

	list     *widget.List
	position *widget.Label
	files    []string
	syncing  bool

	onError func(err error)
}

// NewNavigatorPanel creates a new navigator panel.
func NewNavigatorPanel(session *app.Session) *NavigatorPanel {
	np := &NavigatorPanel{session: session}

	np.position = widget.NewLabel("No folder open")

	np.list = widget.NewList(
		func() int {
			return len(np.files)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("headstone_0000.jpg")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			if id < len(np.files) {
				label.SetText(np.entryLabel(np.files[id]))
			}
		},
	)

	np.list.OnSelected = func(id widget.ListItemID) {
		if np.syncing {
			return
		}
		if _, err := session.GoTo(int(id)); err != nil && np.onError != nil {
			np.onError(err)
		}
		// The store may have skipped undecodable entries
		np.sync()
	}

	prev := widget.NewButton("< Prev", func() { np.step(session.Previous) })
	next := widget.NewButton("Next >", func() { np.step(session.Next) })

	np.container = container.NewBorder(
		container.NewVBox(np.position, container.NewGridWithColumns(2, prev, next)),
		nil, nil, nil,
		np.list,
	)

	for _, ev := range []app.EventType{app.EventFolderOpened, app.EventImageLoaded} {
		session.On(ev, func(interface{}) { np.sync() })
	}
	session.On(app.EventRecordsSaved, func(interface{}) { np.list.Refresh() })

	return np
}

// Container returns the panel container.
func (np *NavigatorPanel) Container() fyne.CanvasObject {
	return np.container
}

// OnError sets the callback for navigation failures.
func (np *NavigatorPanel) OnError(callback func(err error)) {
	np.onError = callback
}

func (np *NavigatorPanel) step(move func() (bool, error)) {
	if _, err := move(); err != nil && np.onError != nil {
		np.onError(err)
	}
}

// sync reloads the file list and highlights the current entry.
func (np *NavigatorPanel) sync() {
	store := np.session.Store()
	np.files = store.Files()

	np.syncing = true
	defer func() { np.syncing = false }()

	np.list.Refresh()
	idx := store.Index()
	if idx < 0 {
		np.list.UnselectAll()
		if store.Dir() == "" {
			np.position.SetText("No folder open")
		} else {
			np.position.SetText("No images in folder")
		}
		return
	}
	np.list.Select(widget.ListItemID(idx))
	np.list.ScrollTo(widget.ListItemID(idx))
	np.position.SetText(fmt.Sprintf("%d / %d  %s", idx+1, store.Len(), store.CurrentName()))
}

// entryLabel marks images that already have catalog records.
func (np *NavigatorPanel) entryLabel(name string) string {
	if n := len(np.session.Catalog().ForImage(name)); n > 0 {
		return fmt.Sprintf("%s  (%d)", name, n)
	}
	return name
}
