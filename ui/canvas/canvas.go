// Package canvas provides the annotation canvas widget: a raster surface
// that renders the committed scene plus the live editing overlay, and feeds
// pointer input to the editor.
package canvas

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"proofmark/internal/editor"
	"proofmark/internal/render"
	"proofmark/pkg/geometry"
)

// AnnotationCanvas displays the scene and routes input to the editor.
type AnnotationCanvas struct {
	widget.BaseWidget

	editor   *editor.Editor
	pipeline *render.Pipeline
	raster   *fynecanvas.Raster

	mu       sync.Mutex
	frame    *image.RGBA
	size     geometry.Size
	dragging bool

	// OnError surfaces persistence failures to the host for a transient
	// notification.
	OnError func(error)

	// OnTap fires after a click was routed to the editor, letting the
	// host open the pin or text entry when a draft just opened.
	OnTap func()
}

// New creates the canvas widget over the editor and pipeline.
func New(ed *editor.Editor, pipeline *render.Pipeline) *AnnotationCanvas {
	ac := &AnnotationCanvas{
		editor:   ed,
		pipeline: pipeline,
	}
	ac.raster = fynecanvas.NewRaster(ac.draw)
	ac.raster.ScaleMode = fynecanvas.ImageScalePixels
	ac.raster.SetMinSize(fyne.NewSize(640, 480))
	ac.ExtendBaseWidget(ac)
	return ac
}

// CreateRenderer returns the widget renderer.
func (ac *AnnotationCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ac.raster)
}

// draw is the raster callback: the committed pass followed by the overlay
// pass onto the same frame.
func (ac *AnnotationCanvas) draw(w, h int) image.Image {
	ac.mu.Lock()
	if ac.frame == nil || ac.frame.Bounds().Dx() != w || ac.frame.Bounds().Dy() != h {
		ac.frame = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	frame := ac.frame
	ac.size = geometry.NewSize(float64(w), float64(h))
	size := ac.size
	ac.mu.Unlock()

	if size.IsZero() {
		return frame
	}

	ac.pipeline.Render(frame)
	render.DrawOverlay(frame, ac.editor.Overlay(size))
	return frame
}

// ContainerSize returns the current drawing surface size in pixels.
func (ac *AnnotationCanvas) ContainerSize() geometry.Size {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	return ac.size
}

func (ac *AnnotationCanvas) report(err error) {
	if err != nil && ac.OnError != nil {
		ac.OnError(err)
	}
}

func eventPoint(pos fyne.Position) geometry.Point2D {
	return geometry.NewPoint2D(float64(pos.X), float64(pos.Y))
}

// Dragged extends the active drawing session.
func (ac *AnnotationCanvas) Dragged(ev *fyne.DragEvent) {
	pos := eventPoint(ev.Position)
	size := ac.ContainerSize()

	ac.mu.Lock()
	starting := !ac.dragging
	ac.dragging = true
	ac.mu.Unlock()

	if starting {
		ac.editor.DragStart(pos, size)
	} else {
		ac.editor.DragMove(pos, size)
	}
	ac.Refresh()
}

// DragEnd commits the drag session.
func (ac *AnnotationCanvas) DragEnd() {
	ac.mu.Lock()
	ac.dragging = false
	ac.mu.Unlock()

	ac.report(ac.editor.DragEnd(ac.ContainerSize()))
	ac.Refresh()
}

// Tapped routes clicks to the editor.
func (ac *AnnotationCanvas) Tapped(ev *fyne.PointEvent) {
	ac.report(ac.editor.Tap(eventPoint(ev.Position), ac.ContainerSize()))
	ac.Refresh()
	if ac.OnTap != nil {
		ac.OnTap()
	}
}

// DoubleTapped closes an in-progress polygon trace.
func (ac *AnnotationCanvas) DoubleTapped(ev *fyne.PointEvent) {
	ac.report(ac.editor.CloseTrace(ac.ContainerSize()))
	ac.Refresh()
}

// MouseIn implements desktop.Hoverable.
func (ac *AnnotationCanvas) MouseIn(ev *desktop.MouseEvent) {}

// MouseMoved tracks the pointer for the trace outline preview.
func (ac *AnnotationCanvas) MouseMoved(ev *desktop.MouseEvent) {
	if ac.editor.Tool() != editor.ToolTrace {
		return
	}
	ac.editor.TraceHover(eventPoint(ev.Position), ac.ContainerSize())
	ac.Refresh()
}

// MouseOut implements desktop.Hoverable.
func (ac *AnnotationCanvas) MouseOut() {}
