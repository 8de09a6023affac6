// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"elysian-scribe/internal/app"
	"elysian-scribe/internal/batch"
	"elysian-scribe/internal/logging"
	"elysian-scribe/internal/selection"
	"elysian-scribe/internal/version"
	"elysian-scribe/internal/viewport"
	"elysian-scribe/pkg/geometry"
	"elysian-scribe/ui/canvas"
	"elysian-scribe/ui/dialogs"
	"elysian-scribe/ui/panels"
	"elysian-scribe/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
)

const watchInterval = 2 * time.Second

// Options configures the main window. OpenEngine opens the recognizer a
// batch run owns; nil disables batch runs.
type Options struct {
	Session    *app.Session
	Prefs      *prefs.Prefs
	OpenEngine func() (batch.Engine, error)
	Logger     *logrus.Logger
}

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app        fyne.App
	session    *app.Session
	prefs      *prefs.Prefs
	openEngine func() (batch.Engine, error)
	logger     *logrus.Logger
	canvas     *canvas.ImageCanvas
	sidePanel  *panels.SidePanel
	statusBar  *widget.Label
	viewLabel  *widget.Label

	// Toolbar widgets that follow session state
	rotation      *widget.Slider
	rotationLabel *widget.Label
	toolRadio     *widget.RadioGroup
	straightenBtn *widget.Button
	syncing       bool

	watcher     *app.FolderWatcher
	batchCancel context.CancelFunc
}

// New creates a new main window.
func New(fyneApp fyne.App, opts Options) *MainWindow {
	win := fyneApp.NewWindow("Elysian Scribe")

	mw := &MainWindow{
		Window:     win,
		app:        fyneApp,
		session:    opts.Session,
		prefs:      opts.Prefs,
		openEngine: opts.OpenEngine,
		logger:     logging.OrDiscard(opts.Logger),
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupShortcuts()
	mw.setupEventHandlers()
	mw.SetCloseIntercept(mw.onClose)

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewImageCanvas(mw.session)
	mw.canvas.OnError(func(err error) {
		if errors.Is(err, selection.ErrInvalidSelection) {
			mw.updateStatus("Empty selection ignored")
			return
		}
		mw.showError(err)
	})
	mw.canvas.OnSelect(func(r selection.Rect) {
		mw.updateStatus(fmt.Sprintf("Selected %.0f x %.0f", r.Width(), r.Height()))
	})
	mw.canvas.OnPointer(func(p geometry.Point2D, inside bool) {
		if inside {
			mw.viewLabel.SetText(fmt.Sprintf("%s  (%.0f, %.0f)", mw.describeView(), p.X, p.Y))
		} else {
			mw.viewLabel.SetText(mw.describeView())
		}
	})

	mw.sidePanel = panels.NewSidePanel(mw.session)
	mw.sidePanel.Navigator().OnError(mw.showError)

	mw.statusBar = widget.NewLabel("Open a folder of headstone photos to begin")
	mw.viewLabel = widget.NewLabel("")

	canvasArea := container.NewBorder(
		mw.createToolbar(), // top
		nil,                // bottom
		nil,                // left
		nil,                // right
		mw.canvas,          // center
	)

	split := container.NewHSplit(canvasArea, mw.sidePanel.Container())
	split.SetOffset(0.72)

	content := container.NewBorder(
		nil, // top
		container.NewPadded(container.NewBorder(nil, nil, nil, mw.viewLabel, mw.statusBar)), // bottom
		nil,   // left
		nil,   // right
		split, // center
	)

	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1280, 860))
}

// createToolbar creates the toolbar with view and region controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	s := mw.session

	openBtn := widget.NewButtonWithIcon("", theme.FolderOpenIcon(), mw.onOpenFolder)
	prevBtn := widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() { mw.navigate(s.Previous) })
	nextBtn := widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() { mw.navigate(s.Next) })

	zoomOutBtn := widget.NewButtonWithIcon("", theme.ZoomOutIcon(), s.ZoomOut)
	zoomInBtn := widget.NewButtonWithIcon("", theme.ZoomInIcon(), s.ZoomIn)
	fitBtn := widget.NewButtonWithIcon("Fit", theme.ZoomFitIcon(), s.FitToScreen)
	revertBtn := widget.NewButtonWithIcon("Revert", theme.ViewRefreshIcon(), s.Revert)

	rotLeftBtn := widget.NewButton("⟲", s.RotateLeft)
	rotRightBtn := widget.NewButton("⟳", s.RotateRight)
	mw.rotation = widget.NewSlider(-180, 180)
	mw.rotation.Step = 0.5
	mw.rotation.OnChanged = func(v float64) {
		if !mw.syncing {
			s.SetRotation(v)
		}
	}
	mw.rotationLabel = widget.NewLabel("0.0°")

	mw.toolRadio = widget.NewRadioGroup([]string{app.ToolSelect.String(), app.ToolPan.String()}, func(v string) {
		if mw.syncing {
			return
		}
		if v == app.ToolPan.String() {
			s.SetTool(app.ToolPan)
		} else {
			s.SetTool(app.ToolSelect)
		}
	})
	mw.toolRadio.Horizontal = true
	mw.toolRadio.SetSelected(app.ToolSelect.String())

	mw.straightenBtn = widget.NewButton("Straighten", s.ToggleStraighten)
	autoBtn := widget.NewButton("Auto", mw.onAutoStraighten)

	ocrBtn := widget.NewButtonWithIcon("OCR", theme.DocumentIcon(), mw.onRecognize)
	ocrBtn.Importance = widget.HighImportance
	cropBtn := widget.NewButtonWithIcon("Crop", theme.ContentCutIcon(), mw.onCrop)
	cropBtn.Importance = widget.DangerImportance

	left := container.NewHBox(
		openBtn, prevBtn, nextBtn,
		widget.NewSeparator(),
		zoomOutBtn, zoomInBtn, fitBtn, revertBtn,
		widget.NewSeparator(),
		rotLeftBtn, rotRightBtn,
	)
	right := container.NewHBox(
		mw.rotationLabel,
		widget.NewSeparator(),
		mw.toolRadio, mw.straightenBtn, autoBtn,
		widget.NewSeparator(),
		ocrBtn, cropBtn,
	)
	return container.NewBorder(nil, nil, left, right, mw.rotation)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	s := mw.session

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Folder...", mw.onOpenFolder),
		fyne.NewMenuItem("Rescan Folder", mw.onRescan),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Record", func() { s.SaveDraft() }),
		fyne.NewMenuItem("Write Catalog", mw.onFlush),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Preferences...", mw.onPreferences),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", s.ZoomIn),
		fyne.NewMenuItem("Zoom Out", s.ZoomOut),
		fyne.NewMenuItem("Fit to Window", s.FitToScreen),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Rotate Left", s.RotateLeft),
		fyne.NewMenuItem("Rotate Right", s.RotateRight),
		fyne.NewMenuItem("Revert", s.Revert),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Previous Image", func() { mw.navigate(s.Previous) }),
		fyne.NewMenuItem("Next Image", func() { mw.navigate(s.Next) }),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Two-Point Straighten", s.ToggleStraighten),
		fyne.NewMenuItem("Auto Straighten", mw.onAutoStraighten),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Recognize Selection", mw.onRecognize),
		fyne.NewMenuItem("Crop Original to Selection...", mw.onCrop),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Recognize Whole Folder...", mw.onBatch),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, toolsMenu, helpMenu))
}

// setupShortcuts binds keys that act on the image. Keys typed into a form
// entry never reach the window canvas.
func (mw *MainWindow) setupShortcuts() {
	s := mw.session
	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyRight, fyne.KeyPageDown:
			mw.navigate(s.Next)
		case fyne.KeyLeft, fyne.KeyPageUp:
			mw.navigate(s.Previous)
		case fyne.KeyPlus, fyne.KeyEqual:
			s.ZoomIn()
		case fyne.KeyMinus:
			s.ZoomOut()
		case fyne.KeyF:
			s.FitToScreen()
		case fyne.KeyQ:
			s.RotateLeft()
		case fyne.KeyE:
			s.RotateRight()
		case fyne.KeyS:
			s.ToggleStraighten()
		case fyne.KeyEscape:
			if s.Mode() == selection.ModeStraightening {
				s.ToggleStraighten()
			}
		}
	})
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	s := mw.session

	s.On(app.EventFolderOpened, func(data interface{}) {
		if dir, ok := data.(string); ok {
			mw.SetTitle("Elysian Scribe - " + filepath.Base(dir))
			mw.updateStatus(fmt.Sprintf("Opened %s: %d images", dir, s.Store().Len()))
		}
	})

	s.On(app.EventImageLoaded, func(interface{}) {
		mw.syncView()
		mw.updateStatus(s.Store().CurrentName())
	})

	s.On(app.EventViewportChanged, func(interface{}) {
		mw.syncView()
	})

	s.On(app.EventModeChanged, func(data interface{}) {
		if mode, ok := data.(selection.Mode); ok && mode == selection.ModeStraightening {
			mw.straightenBtn.Importance = widget.WarningImportance
			mw.updateStatus("Click two points along a line that should be level (right-click to cancel)")
		} else {
			mw.straightenBtn.Importance = widget.MediumImportance
		}
		mw.straightenBtn.Refresh()
	})

	s.On(app.EventTextRecognized, func(data interface{}) {
		if text, _ := data.(string); text == "" {
			mw.updateStatus("No text recognized in the selection")
		} else {
			mw.updateStatus("Text recognized")
		}
	})

	s.On(app.EventImageOverwritten, func(data interface{}) {
		if name, ok := data.(string); ok {
			mw.updateStatus("Cropped and saved " + name)
		}
	})

	s.On(app.EventRecordsSaved, func(data interface{}) {
		if n, ok := data.(int); ok && n > 0 && mw.batchCancel == nil {
			mw.updateStatus(fmt.Sprintf("Saved %d record(s) for %s", n, s.Store().CurrentName()))
		}
	})
}

// syncView mirrors the viewport on the toolbar without feeding back.
func (mw *MainWindow) syncView() {
	v := mw.session.View()
	mw.syncing = true
	mw.rotation.SetValue(v.DisplayRotation())
	mw.toolRadio.SetSelected(mw.session.Tool().String())
	mw.syncing = false
	mw.rotationLabel.SetText(fmt.Sprintf("%.1f°", v.DisplayRotation()))
	mw.viewLabel.SetText(mw.describeView())
}

func (mw *MainWindow) describeView() string {
	return describeView(mw.session.View())
}

func describeView(v viewport.State) string {
	return fmt.Sprintf("zoom %.0f%%  rotation %.1f°", v.Zoom*100, v.DisplayRotation())
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) showError(err error) {
	mw.logger.WithError(err).Warn("Operation failed")
	dialog.ShowError(err, mw.Window)
}

// RestoreLastFolder reopens the folder of the previous session, if any.
func (mw *MainWindow) RestoreLastFolder() {
	dir := mw.prefs.Settings().LastFolder
	if dir == "" {
		return
	}
	if err := mw.OpenFolder(dir); err != nil {
		mw.logger.WithFields(logrus.Fields{"folder": dir, "error": err}).Warn("Could not reopen last folder")
	}
}

// OpenFolder opens dir in the session, remembers it and watches it for changes.
func (mw *MainWindow) OpenFolder(dir string) error {
	if err := mw.session.OpenFolder(dir); err != nil {
		return err
	}
	mw.prefs.SetString(prefs.KeyLastFolder, dir)
	if err := mw.prefs.Save(); err != nil {
		mw.logger.WithError(err).Warn("Failed to save preferences")
	}
	mw.watch(dir)
	return nil
}

// watch follows dir for files added or removed behind the session's back.
func (mw *MainWindow) watch(dir string) {
	if mw.watcher != nil {
		mw.watcher.Stop()
	}
	mw.watcher = app.NewFolderWatcher(dir, watchInterval)
	if mw.watcher == nil {
		return
	}
	mw.watcher.OnChange(func() {
		fyne.Do(mw.onRescan)
	})
	mw.watcher.Start()
}

func (mw *MainWindow) navigate(move func() (bool, error)) {
	if _, err := move(); err != nil {
		mw.showError(err)
	}
}

// Menu action handlers

func (mw *MainWindow) onOpenFolder() {
	fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		if err := mw.OpenFolder(uri.Path()); err != nil {
			mw.showError(err)
		}
	}, mw.Window)
	if loc := mw.lastFolderURI(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// lastFolderURI returns the last used folder as a ListableURI, or nil.
func (mw *MainWindow) lastFolderURI() fyne.ListableURI {
	path := mw.prefs.Settings().LastFolder
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

func (mw *MainWindow) onRescan() {
	if err := mw.session.Rescan(); err != nil {
		mw.showError(err)
	}
}

func (mw *MainWindow) onFlush() {
	if err := mw.session.Flush(); err != nil {
		mw.showError(err)
		return
	}
	mw.updateStatus(fmt.Sprintf("Catalog written to %s", mw.session.CatalogPath()))
}

func (mw *MainWindow) onAutoStraighten() {
	rotation, err := mw.session.AutoStraighten()
	if err != nil {
		mw.updateStatus("Could not find a level edge: " + err.Error())
		return
	}
	mw.updateStatus(fmt.Sprintf("Rotated to %.1f°", rotation))
}

func (mw *MainWindow) onRecognize() {
	mw.updateStatus("Recognizing...")
	if _, err := mw.session.RecognizeSelection(); err != nil {
		mw.showError(err)
	}
}

func (mw *MainWindow) onCrop() {
	box, err := mw.session.CropBox()
	if err != nil {
		mw.showError(err)
		return
	}
	msg := fmt.Sprintf("Permanently replace %s with the selected %d x %d region?\nThis cannot be undone.",
		mw.session.Store().CurrentName(), box.Pixels().Dx(), box.Pixels().Dy())
	dialog.ShowConfirm("Crop original", msg, func(ok bool) {
		if err := mw.session.CropSelection(ok); err != nil && !errors.Is(err, app.ErrNotConfirmed) {
			mw.showError(err)
		}
	}, mw.Window)
}

// onBatch recognizes every image of the folder on a worker goroutine and
// adds the results to the catalog as they arrive.
func (mw *MainWindow) onBatch() {
	if mw.batchCancel != nil {
		mw.updateStatus("A batch run is already in progress")
		return
	}
	if mw.openEngine == nil {
		mw.updateStatus("Text recognition is not available")
		return
	}
	paths := mw.session.BatchPaths()
	if len(paths) == 0 {
		mw.updateStatus("No images to recognize")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	mw.batchCancel = cancel
	progress := dialogs.NewBatchDialog(len(paths), mw.Window, cancel)
	progress.Show()

	results := batch.Start(ctx, paths, batch.Options{
		Open:     mw.openEngine,
		Language: mw.session.Language(),
		Logger:   mw.logger,
	})

	go func() {
		for r := range results {
			fyne.Do(func() {
				added := mw.session.ApplyBatchResult(r)
				progress.Update(r.Index, r.Name(), added, r.Err)
			})
		}
		fyne.Do(func() {
			cancel()
			mw.batchCancel = nil
			progress.Hide()
			if err := mw.session.Flush(); err != nil {
				mw.showError(err)
			}
			mw.updateStatus("Batch recognition: " + progress.Summary())
		})
	}()
}

func (mw *MainWindow) onPreferences() {
	dialogs.NewSettingsDialog(mw.prefs.Settings(), mw.Window, func(s prefs.Settings) {
		mw.prefs.SetSettings(s)
		if err := mw.prefs.Save(); err != nil {
			mw.showError(err)
			return
		}
		mw.session.SetLanguage(s.Language)
		mw.updateStatus("Preferences saved; working size and steps apply after restart")
	}).Show()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About Elysian Scribe",
		fmt.Sprintf("Elysian Scribe v%s\n\n"+
			"Transcribes headstone photographs into a cemetery catalog.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}

// onClose saves pending work before the window goes away.
func (mw *MainWindow) onClose() {
	if mw.batchCancel != nil {
		mw.batchCancel()
	}
	if mw.watcher != nil {
		mw.watcher.Stop()
	}
	if err := mw.session.Close(); err != nil {
		mw.logger.WithError(err).Error("Failed to write catalog on exit")
		dialog.ShowConfirm("Catalog not saved",
			fmt.Sprintf("%v\n\nQuit anyway?", err),
			func(quit bool) {
				if quit {
					mw.Window.Close()
				}
			}, mw.Window)
		return
	}
	if err := mw.prefs.Save(); err != nil {
		mw.logger.WithError(err).Warn("Failed to save preferences")
	}
	mw.Window.Close()
}
