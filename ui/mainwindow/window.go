// Package mainwindow provides the main application window: toolbar, layer
// controls, the annotation canvas, and the pin thread panel.
package mainwindow

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"proofmark/internal/editor"
	"proofmark/internal/measure"
	"proofmark/internal/persist"
	"proofmark/internal/render"
	"proofmark/internal/scene"
	"proofmark/ui/canvas"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app     fyne.App
	store   *scene.Store
	editor  *editor.Editor
	scale   *measure.Scale
	adapter persist.Adapter
	log     zerolog.Logger

	canvas    *canvas.AnnotationCanvas
	pinList   *widget.List
	statusBar *widget.Label

	toolButtons map[editor.Tool]*widget.Button
	stop        chan struct{}
}

// New creates the main window and wires the sync relay.
func New(fyneApp fyne.App, store *scene.Store, ed *editor.Editor, pipeline *render.Pipeline, scale *measure.Scale, adapter persist.Adapter, log zerolog.Logger) *MainWindow {
	win := fyneApp.NewWindow("Proofmark")

	mw := &MainWindow{
		Window:      win,
		app:         fyneApp,
		store:       store,
		editor:      ed,
		scale:       scale,
		adapter:     adapter,
		log:         log,
		toolButtons: make(map[editor.Tool]*widget.Button),
		stop:        make(chan struct{}),
	}

	mw.canvas = canvas.New(ed, pipeline)
	mw.canvas.OnError = mw.showError
	mw.canvas.OnTap = func() {
		mw.PromptPinComment()
		mw.PromptText()
	}

	mw.setupUI()
	mw.setupShortcuts()
	mw.startRelay()

	win.SetOnClosed(func() { close(mw.stop) })
	win.Resize(fyne.NewSize(1280, 800))
	return mw
}

// setupUI builds the window layout: toolbar on top, pin panel on the left,
// canvas in the center, status bar at the bottom.
func (mw *MainWindow) setupUI() {
	mw.statusBar = widget.NewLabel("Ready")
	toolbar := container.NewVBox(mw.createToolRow(), mw.createLayerRow())

	mw.pinList = mw.createPinList()
	mw.store.On(scene.EventPinsChanged, func(interface{}) {
		mw.pinList.Refresh()
	})
	mw.store.On(scene.EventMarkupsChanged, func(interface{}) {
		mw.canvas.Refresh()
	})
	mw.store.On(scene.EventLayersChanged, func(interface{}) {
		mw.canvas.Refresh()
	})

	split := container.NewHSplit(
		container.NewBorder(widget.NewLabel("Comments"), nil, nil, nil, mw.pinList),
		mw.canvas,
	)
	split.SetOffset(0.22)

	content := container.NewBorder(
		toolbar,
		container.NewPadded(mw.statusBar),
		nil,
		nil,
		split,
	)
	mw.SetContent(content)
}

// createToolRow builds the tool buttons plus undo/redo and clear.
func (mw *MainWindow) createToolRow() fyne.CanvasObject {
	tools := []struct {
		label string
		tool  editor.Tool
	}{
		{"Select", editor.ToolNone},
		{"Pin", editor.ToolPin},
		{"Draw", editor.ToolDraw},
		{"Arrow", editor.ToolArrow},
		{"Rect", editor.ToolRect},
		{"Text", editor.ToolText},
		{"Erase", editor.ToolErase},
		{"Trace", editor.ToolTrace},
	}

	row := container.NewHBox()
	for _, t := range tools {
		tool := t.tool
		btn := widget.NewButton(t.label, func() {
			mw.selectTool(tool)
		})
		mw.toolButtons[tool] = btn
		row.Add(btn)
	}
	mw.toolButtons[editor.ToolNone].Importance = widget.HighImportance

	row.Add(widget.NewSeparator())
	row.Add(widget.NewButton("Undo", func() {
		mw.showError(mw.editor.Undo())
		mw.canvas.Refresh()
	}))
	row.Add(widget.NewButton("Redo", func() {
		mw.showError(mw.editor.Redo())
		mw.canvas.Refresh()
	}))
	row.Add(widget.NewButton("Clear Layer", mw.confirmClearLayer))

	scaleEntry := widget.NewEntry()
	scaleEntry.SetText(fmt.Sprintf("%g", mw.scale.Factor()))
	scaleEntry.OnSubmitted = func(s string) {
		var f float64
		if _, err := fmt.Sscanf(s, "%g", &f); err != nil || f <= 0 {
			mw.statusBar.SetText("Scale must be a positive number")
			return
		}
		mw.scale.Set(f)
		mw.scale.Recompute(mw.store, mw.canvas.ContainerSize())
		mw.canvas.Refresh()
		mw.statusBar.SetText(fmt.Sprintf("Scale set to %g px/in", f))
	}
	row.Add(widget.NewSeparator())
	row.Add(widget.NewLabel("px/in:"))
	row.Add(scaleEntry)

	return row
}

// createLayerRow builds the active-layer selector plus per-layer
// visibility toggles and the opacity slider for the active layer.
func (mw *MainWindow) createLayerRow() fyne.CanvasObject {
	row := container.NewHBox(widget.NewLabel("Layer:"))

	labels := make([]string, len(scene.Layers))
	for i, l := range scene.Layers {
		labels[i] = l.Label
	}
	active := widget.NewSelect(labels, func(label string) {
		for _, l := range scene.Layers {
			if l.Label == label {
				mw.store.SetActiveLayer(l.Key)
				return
			}
		}
	})
	active.SetSelected(scene.Layers[0].Label)
	row.Add(active)

	row.Add(widget.NewSeparator())
	for _, l := range scene.Layers {
		key := l.Key
		check := widget.NewCheck(l.Label, func(visible bool) {
			mw.store.SetLayerVisible(key, visible)
		})
		check.SetChecked(true)
		row.Add(check)
	}

	row.Add(widget.NewSeparator())
	row.Add(widget.NewLabel("Opacity:"))
	opacity := widget.NewSlider(0, 100)
	opacity.Value = 100
	opacity.OnChanged = func(v float64) {
		mw.store.SetLayerOpacity(mw.store.ActiveLayer(), int(v))
	}
	row.Add(opacity)

	return row
}

// selectTool switches tools and opens the input dialogs that pin and text
// placement need.
func (mw *MainWindow) selectTool(tool editor.Tool) {
	for t, btn := range mw.toolButtons {
		if t == tool {
			btn.Importance = widget.HighImportance
		} else {
			btn.Importance = widget.MediumImportance
		}
		btn.Refresh()
	}
	mw.editor.SetTool(tool)
	mw.canvas.Refresh()
	mw.statusBar.SetText(fmt.Sprintf("Tool: %s", tool))
}

// createPinList builds the comment thread panel.
func (mw *MainWindow) createPinList() *widget.List {
	list := widget.NewList(
		func() int { return len(mw.store.VisiblePins()) },
		func() fyne.CanvasObject {
			return container.NewVBox(
				widget.NewLabel(""),
				container.NewHBox(
					widget.NewButton("Resolve", nil),
					widget.NewButton("Reply", nil),
					widget.NewButton("Delete", nil),
				),
			)
		},
		func(i widget.ListItemID, obj fyne.CanvasObject) {
			pins := mw.store.VisiblePins()
			if i >= len(pins) {
				return
			}
			pin := pins[i]

			box := obj.(*fyne.Container)
			label := box.Objects[0].(*widget.Label)
			status := ""
			if pin.Resolved {
				status = " (resolved)"
			}
			label.SetText(fmt.Sprintf("#%d %s%s: %s", pin.PinNumber, pin.AuthorName, status, pin.Content))

			buttons := box.Objects[1].(*fyne.Container)
			resolve := buttons.Objects[0].(*widget.Button)
			reply := buttons.Objects[1].(*widget.Button)
			del := buttons.Objects[2].(*widget.Button)

			if pin.Resolved {
				resolve.SetText("Reopen")
			} else {
				resolve.SetText("Resolve")
			}
			resolve.OnTapped = func() {
				mw.showError(mw.editor.ResolvePin(pin.ID, !pin.Resolved))
			}
			reply.OnTapped = func() { mw.promptReply(pin.ID) }
			del.OnTapped = func() {
				mw.showError(mw.editor.DeletePin(pin.ID))
			}
		},
	)
	return list
}

// setupShortcuts binds Escape to cancel and Enter to close a trace.
func (mw *MainWindow) setupShortcuts() {
	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyEscape:
			mw.editor.Cancel()
			mw.canvas.Refresh()
		case fyne.KeyReturn, fyne.KeyEnter:
			mw.showError(mw.editor.CloseTrace(mw.canvas.ContainerSize()))
			mw.canvas.Refresh()
		}
	})
}

// startRelay listens for backend change ticks and refetches the scene. The
// canvas observes the store, so a successful refresh repaints on its own.
func (mw *MainWindow) startRelay() {
	ch := mw.adapter.Subscribe()
	go func() {
		for {
			select {
			case <-mw.stop:
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				if err := mw.editor.Refresh(); err != nil {
					mw.log.Error().Err(err).Msg("scene refresh failed")
				}
			}
		}
	}()
}

// PromptPinComment opens the comment entry for an open pin draft. The
// canvas tap handler cannot open dialogs itself, so the host polls after
// taps with the pin tool active.
func (mw *MainWindow) PromptPinComment() {
	if _, open := mw.editor.PendingPin(); !open {
		return
	}
	entry := widget.NewMultiLineEntry()
	entry.SetPlaceHolder("Leave a comment...")
	d := dialog.NewCustomConfirm("New Comment", "Post", "Cancel", entry, func(post bool) {
		if !post {
			mw.editor.CancelPin()
			return
		}
		mw.showError(mw.editor.SubmitPin(entry.Text))
	}, mw.Window)
	d.Resize(fyne.NewSize(400, 200))
	d.Show()
}

// PromptText opens the text entry for an anchored text markup.
func (mw *MainWindow) PromptText() {
	if _, open := mw.editor.PendingText(); !open {
		return
	}
	entry := widget.NewEntry()
	entry.SetPlaceHolder("Label text")
	d := dialog.NewCustomConfirm("Add Text", "Place", "Cancel", entry, func(place bool) {
		text := entry.Text
		if !place {
			text = ""
		}
		mw.showError(mw.editor.SubmitText(text))
		mw.canvas.Refresh()
	}, mw.Window)
	d.Resize(fyne.NewSize(400, 120))
	d.Show()
}

// promptReply opens the reply entry for a pin thread.
func (mw *MainWindow) promptReply(pinID string) {
	entry := widget.NewMultiLineEntry()
	entry.SetPlaceHolder("Reply...")
	d := dialog.NewCustomConfirm("Reply", "Post", "Cancel", entry, func(post bool) {
		if !post {
			return
		}
		mw.showError(mw.editor.ReplyToPin(pinID, entry.Text))
	}, mw.Window)
	d.Resize(fyne.NewSize(400, 160))
	d.Show()
}

// confirmClearLayer asks before wiping the active layer's markups.
func (mw *MainWindow) confirmClearLayer() {
	layer := mw.store.ActiveLayer()
	cfg, _ := scene.LayerByKey(layer)
	dialog.ShowConfirm(
		"Clear Layer",
		fmt.Sprintf("Delete all markups on the %s layer?", cfg.Label),
		func(confirmed bool) {
			if !confirmed {
				return
			}
			mw.showError(mw.editor.ClearActiveLayer())
			mw.canvas.Refresh()
		},
		mw.Window,
	)
}

// showError displays a transient error notification. Nil errors are
// ignored so call sites can pass results through directly.
func (mw *MainWindow) showError(err error) {
	if err == nil {
		return
	}
	mw.log.Error().Err(err).Msg("operation failed")
	mw.statusBar.SetText(err.Error())
	mw.app.SendNotification(&fyne.Notification{
		Title:   "Proofmark",
		Content: err.Error(),
	})
}
