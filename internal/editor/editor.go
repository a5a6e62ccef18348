// Package editor drives annotation input: the active tool, in-progress
// drawing sessions, and the commit path through the persistence adapter.
// Handlers take pixel positions plus the current container size; geometry
// is converted to percentage space before anything touches the store.
package editor

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"proofmark/internal/history"
	"proofmark/internal/measure"
	"proofmark/internal/persist"
	"proofmark/internal/render"
	"proofmark/internal/scene"
	"proofmark/pkg/geometry"
)

// Tool selects what pointer input means.
type Tool string

const (
	ToolNone  Tool = "none"
	ToolPin   Tool = "pin"
	ToolDraw  Tool = "draw"
	ToolArrow Tool = "arrow"
	ToolRect  Tool = "rect"
	ToolText  Tool = "text"
	ToolErase Tool = "erase"
	ToolTrace Tool = "trace"
)

// Author identifies the local participant on committed annotations.
type Author struct {
	ID   string
	Name string
}

// Editor owns all ephemeral session state. Nothing here reaches the store
// until a commit goes through the adapter and comes back canonical.
type Editor struct {
	mu sync.Mutex

	store   *scene.Store
	hist    *history.History
	scale   *measure.Scale
	adapter persist.Adapter
	log     zerolog.Logger

	author      Author
	tool        Tool
	strokeWidth float64

	// Freehand session
	drawPts []geometry.Point2D

	// Two-point drag session (arrow, rect)
	dragStart *geometry.Point2D
	dragCur   *geometry.Point2D

	// Pin draft, not in the store until submitted
	pinDraft *geometry.Point2D

	// Text anchor
	textAnchor *geometry.Point2D

	// Trace session
	tracePts    []geometry.Point2D
	traceCursor *geometry.Point2D
}

// New creates an editor over the store and adapter.
func New(store *scene.Store, hist *history.History, scale *measure.Scale, adapter persist.Adapter, author Author, strokeWidth float64, log zerolog.Logger) *Editor {
	if strokeWidth <= 0 {
		strokeWidth = 3
	}
	return &Editor{
		store:       store,
		hist:        hist,
		scale:       scale,
		adapter:     adapter,
		author:      author,
		tool:        ToolNone,
		strokeWidth: strokeWidth,
		log:         log,
	}
}

// SetTool switches the active tool and discards every in-progress session.
func (e *Editor) SetTool(t Tool) {
	e.mu.Lock()
	e.tool = t
	e.resetSessionsLocked()
	e.mu.Unlock()
	e.log.Debug().Str("tool", string(t)).Msg("tool selected")
}

// Tool returns the active tool.
func (e *Editor) Tool() Tool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tool
}

// SetStrokeWidth adjusts the stroke width for new markups.
func (e *Editor) SetStrokeWidth(w float64) {
	if w <= 0 {
		return
	}
	e.mu.Lock()
	e.strokeWidth = w
	e.mu.Unlock()
}

// Cancel discards every in-progress session. Bound to Escape.
func (e *Editor) Cancel() {
	e.mu.Lock()
	e.resetSessionsLocked()
	e.mu.Unlock()
}

func (e *Editor) resetSessionsLocked() {
	e.drawPts = nil
	e.dragStart = nil
	e.dragCur = nil
	e.pinDraft = nil
	e.textAnchor = nil
	e.tracePts = nil
	e.traceCursor = nil
}

// DragStart begins a freehand stroke or a two-point preview at the pixel
// position.
func (e *Editor) DragStart(pos geometry.Point2D, size geometry.Size) {
	if size.IsZero() {
		return
	}
	pct := geometry.ToPercent(pos, size)

	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.tool {
	case ToolDraw:
		e.drawPts = []geometry.Point2D{pct}
	case ToolArrow, ToolRect:
		e.dragStart = &pct
		e.dragCur = &pct
	}
}

// DragMove extends the active session. For freehand strokes it returns the
// last pixel-space segment so the host can paint incrementally instead of
// re-rendering the whole stroke.
func (e *Editor) DragMove(pos geometry.Point2D, size geometry.Size) (from, to geometry.Point2D, seg bool) {
	if size.IsZero() {
		return geometry.Point2D{}, geometry.Point2D{}, false
	}
	pct := geometry.ToPercent(pos, size)

	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.tool {
	case ToolDraw:
		if len(e.drawPts) == 0 {
			return geometry.Point2D{}, geometry.Point2D{}, false
		}
		prev := e.drawPts[len(e.drawPts)-1]
		e.drawPts = append(e.drawPts, pct)
		return geometry.ToPixels(prev, size), pos, true
	case ToolArrow, ToolRect:
		if e.dragStart != nil {
			e.dragCur = &pct
		}
	}
	return geometry.Point2D{}, geometry.Point2D{}, false
}

// DragEnd commits the active drag session. Freehand strokes need at least
// two points; shorter strokes are discarded.
func (e *Editor) DragEnd(size geometry.Size) error {
	if size.IsZero() {
		return nil
	}

	e.mu.Lock()
	tool := e.tool
	pts := e.drawPts
	start := e.dragStart
	cur := e.dragCur
	e.drawPts = nil
	e.dragStart = nil
	e.dragCur = nil
	width := e.strokeWidth
	e.mu.Unlock()

	switch tool {
	case ToolDraw:
		if len(pts) < 2 {
			return nil
		}
		return e.commitMarkup(scene.Markup{
			Layer:       e.store.ActiveLayer(),
			Kind:        scene.KindDraw,
			Path:        &scene.PathData{Points: pts},
			StrokeWidth: width,
			CreatedBy:   e.author.ID,
		})

	case ToolArrow:
		if start == nil || cur == nil || *start == *cur {
			return nil
		}
		return e.commitMarkup(scene.Markup{
			Layer:       e.store.ActiveLayer(),
			Kind:        scene.KindArrow,
			Arrow:       &scene.ArrowData{X1: start.X, Y1: start.Y, X2: cur.X, Y2: cur.Y},
			StrokeWidth: width,
			CreatedBy:   e.author.ID,
		})

	case ToolRect:
		if start == nil || cur == nil || *start == *cur {
			return nil
		}
		r := geometry.NewRect(start.X, start.Y, cur.X-start.X, cur.Y-start.Y).Normalized()
		return e.commitMarkup(scene.Markup{
			Layer:       e.store.ActiveLayer(),
			Kind:        scene.KindRect,
			Rect:        &scene.RectData{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height},
			StrokeWidth: width,
			CreatedBy:   e.author.ID,
		})
	}
	return nil
}

// Tap handles a click: open a pin draft, set a text anchor, place a trace
// vertex, or erase the first markup under the pointer.
func (e *Editor) Tap(pos geometry.Point2D, size geometry.Size) error {
	if size.IsZero() {
		return nil
	}
	pct := geometry.ToPercent(pos, size)

	e.mu.Lock()
	tool := e.tool
	switch tool {
	case ToolPin:
		e.pinDraft = &pct
	case ToolText:
		e.textAnchor = &pct
	case ToolTrace:
		e.tracePts = append(e.tracePts, pct)
	}
	e.mu.Unlock()

	if tool == ToolErase {
		return e.eraseAt(pos, size)
	}
	return nil
}

// TraceHover tracks the pointer so the overlay can extend the dashed
// outline to the cursor.
func (e *Editor) TraceHover(pos geometry.Point2D, size geometry.Size) {
	if size.IsZero() {
		return
	}
	pct := geometry.ToPercent(pos, size)
	e.mu.Lock()
	if e.tool == ToolTrace && len(e.tracePts) > 0 {
		e.traceCursor = &pct
	}
	e.mu.Unlock()
}

// CloseTrace finishes the polygon session. Fewer than three vertices
// cancels silently; otherwise one polygon markup is committed with its
// computed area. Bound to double-click and Enter.
func (e *Editor) CloseTrace(size geometry.Size) error {
	e.mu.Lock()
	pts := e.tracePts
	width := e.strokeWidth
	e.tracePts = nil
	e.traceCursor = nil
	e.mu.Unlock()

	if len(pts) < 3 || size.IsZero() {
		return nil
	}

	area := e.scale.PolygonAreaSqIn(pts, size)
	return e.commitMarkup(scene.Markup{
		Layer:       e.store.ActiveLayer(),
		Kind:        scene.KindPolygon,
		Polygon:     &scene.PolygonData{Points: pts, AreaSqIn: area},
		StrokeWidth: width,
		CreatedBy:   e.author.ID,
	})
}

// PendingPin reports the open pin draft position in percentage space.
func (e *Editor) PendingPin() (geometry.Point2D, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pinDraft == nil {
		return geometry.Point2D{}, false
	}
	return *e.pinDraft, true
}

// SubmitPin persists the drafted pin with the given comment. Empty content
// keeps the draft open.
func (e *Editor) SubmitPin(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("pin comment must not be empty")
	}

	e.mu.Lock()
	draft := e.pinDraft
	e.mu.Unlock()
	if draft == nil {
		return fmt.Errorf("no pin draft open")
	}

	pin, err := e.adapter.CreatePin(scene.Pin{
		Layer:      e.store.ActiveLayer(),
		X:          draft.X,
		Y:          draft.Y,
		AuthorID:   e.author.ID,
		AuthorName: e.author.Name,
		Content:    content,
	})
	if err != nil {
		return fmt.Errorf("create pin: %w", err)
	}

	e.pushUndo()
	e.store.AddPin(pin)

	e.mu.Lock()
	e.pinDraft = nil
	e.mu.Unlock()

	e.log.Info().Int("pin", pin.PinNumber).Str("layer", string(pin.Layer)).Msg("pin created")
	return nil
}

// CancelPin discards the open pin draft.
func (e *Editor) CancelPin() {
	e.mu.Lock()
	e.pinDraft = nil
	e.mu.Unlock()
}

// PendingText reports the open text anchor in percentage space.
func (e *Editor) PendingText() (geometry.Point2D, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.textAnchor == nil {
		return geometry.Point2D{}, false
	}
	return *e.textAnchor, true
}

// SubmitText commits a text markup at the anchored position. Empty text
// discards the anchor without committing.
func (e *Editor) SubmitText(text string) error {
	e.mu.Lock()
	anchor := e.textAnchor
	width := e.strokeWidth
	e.textAnchor = nil
	e.mu.Unlock()

	if anchor == nil {
		return nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	return e.commitMarkup(scene.Markup{
		Layer:       e.store.ActiveLayer(),
		Kind:        scene.KindText,
		Text:        &scene.TextData{X: anchor.X, Y: anchor.Y, Text: text},
		StrokeWidth: width,
		CreatedBy:   e.author.ID,
	})
}

// commitMarkup runs the adapter-first commit path: persist, then insert
// the canonical record with an undo snapshot taken beforehand. Adapter
// failure leaves the store untouched.
func (e *Editor) commitMarkup(m scene.Markup) error {
	created, err := e.adapter.CreateMarkup(m)
	if err != nil {
		return fmt.Errorf("create markup: %w", err)
	}

	e.pushUndo()
	e.store.AddMarkup(created)
	e.log.Debug().Str("kind", string(created.Kind)).Str("layer", string(created.Layer)).Msg("markup committed")
	return nil
}

// pushUndo records the current scene before a mutation.
func (e *Editor) pushUndo() {
	snap, err := e.store.Snapshot()
	if err != nil {
		e.log.Error().Err(err).Msg("snapshot failed, undo step skipped")
		return
	}
	e.hist.Push(snap)
}

// Undo restores the previous scene snapshot. The restored scene is pushed
// to the backend first, so the relay's next wholesale refetch returns the
// reverted state instead of resurrecting what was undone.
func (e *Editor) Undo() error {
	current, err := e.store.Snapshot()
	if err != nil {
		return err
	}
	snap, ok := e.hist.Undo(current)
	if !ok {
		return nil
	}
	if err := e.applySnapshot(snap); err != nil {
		e.hist.Redo(snap)
		return err
	}
	return nil
}

// Redo reapplies the most recently undone snapshot, reconciling the
// backend the same way Undo does.
func (e *Editor) Redo() error {
	current, err := e.store.Snapshot()
	if err != nil {
		return err
	}
	snap, ok := e.hist.Redo(current)
	if !ok {
		return nil
	}
	if err := e.applySnapshot(snap); err != nil {
		e.hist.Undo(snap)
		return err
	}
	return nil
}

// applySnapshot pushes a history snapshot through the adapter and then
// into the store. Adapter failure leaves the store untouched.
func (e *Editor) applySnapshot(snap []byte) error {
	pins, markups, err := scene.DecodeSnapshot(snap)
	if err != nil {
		return err
	}
	if err := e.adapter.ReplaceScene(pins, markups); err != nil {
		return fmt.Errorf("reconcile history: %w", err)
	}
	return e.store.Restore(snap)
}

// ResolvePin toggles a pin thread's resolved flag through the adapter.
func (e *Editor) ResolvePin(id string, resolved bool) error {
	if err := e.adapter.SetPinResolved(id, resolved); err != nil {
		return err
	}
	e.pushUndo()
	e.store.SetPinResolved(id, resolved)
	return nil
}

// ReplyToPin appends a reply to a pin thread.
func (e *Editor) ReplyToPin(id, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("reply must not be empty")
	}
	reply, err := e.adapter.AddReply(id, scene.Reply{
		AuthorID:   e.author.ID,
		AuthorName: e.author.Name,
		Content:    content,
	})
	if err != nil {
		return err
	}
	e.pushUndo()
	e.store.AppendReply(id, reply)
	return nil
}

// DeletePin removes a pin and its thread.
func (e *Editor) DeletePin(id string) error {
	if err := e.adapter.DeletePin(id); err != nil {
		return err
	}
	e.pushUndo()
	e.store.RemovePin(id)
	return nil
}

// ClearActiveLayer deletes every markup on the active layer.
func (e *Editor) ClearActiveLayer() error {
	layer := e.store.ActiveLayer()
	if err := e.adapter.ClearLayerMarkups(layer); err != nil {
		return err
	}
	e.pushUndo()
	e.store.ClearLayer(layer)
	e.log.Info().Str("layer", string(layer)).Msg("layer cleared")
	return nil
}

// Refresh refetches both collections wholesale and swaps them into the
// store. The sync relay calls this after every change tick.
func (e *Editor) Refresh() error {
	pins, err := e.adapter.ListPins()
	if err != nil {
		return fmt.Errorf("refetch pins: %w", err)
	}
	markups, err := e.adapter.ListMarkups()
	if err != nil {
		return fmt.Errorf("refetch markups: %w", err)
	}
	e.store.ReplacePins(pins)
	e.store.ReplaceMarkups(markups)
	return nil
}

// Overlay builds the ephemeral render pass for the current session state.
// Returns nil when nothing is in progress.
func (e *Editor) Overlay(size geometry.Size) *render.Overlay {
	if size.IsZero() {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cfg, _ := scene.LayerByKey(e.store.ActiveLayer())
	width := int(e.strokeWidth)

	switch e.tool {
	case ToolDraw:
		if len(e.drawPts) < 2 {
			return nil
		}
		return &render.Overlay{
			Path:        toPixels(e.drawPts, size),
			PathLenIn:   e.scale.PolylineLengthIn(e.drawPts, size),
			Color:       cfg.Color,
			StrokeWidth: width,
		}

	case ToolArrow:
		if e.dragStart == nil || e.dragCur == nil {
			return nil
		}
		return render.NewArrowOverlay(
			geometry.ToPixels(*e.dragStart, size),
			geometry.ToPixels(*e.dragCur, size),
			cfg.Color, width,
		)

	case ToolRect:
		if e.dragStart == nil || e.dragCur == nil {
			return nil
		}
		start := geometry.ToPixels(*e.dragStart, size)
		cur := geometry.ToPixels(*e.dragCur, size)
		r := geometry.NewRect(start.X, start.Y, cur.X-start.X, cur.Y-start.Y)
		return &render.Overlay{Rect: &r, Color: cfg.Color, StrokeWidth: width}

	case ToolTrace:
		if len(e.tracePts) == 0 {
			return nil
		}
		ov := &render.Overlay{
			Trace:       toPixels(e.tracePts, size),
			TraceSqIn:   e.scale.PolygonAreaSqIn(e.tracePts, size),
			Color:       cfg.Color,
			StrokeWidth: width,
		}
		if e.traceCursor != nil {
			cursor := geometry.ToPixels(*e.traceCursor, size)
			ov.Cursor = &cursor
		}
		return ov
	}
	return nil
}

func toPixels(points []geometry.Point2D, size geometry.Size) []geometry.Point2D {
	out := make([]geometry.Point2D, len(points))
	for i, p := range points {
		out[i] = geometry.ToPixels(p, size)
	}
	return out
}
