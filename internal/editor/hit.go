package editor

import (
	"proofmark/internal/scene"
	"proofmark/pkg/geometry"
)

// Hit test radii in pixels. Text anchors get a wider radius since the
// anchor point sits at one end of the rendered label.
const (
	hitRadius     = 20.0
	textHitRadius = 40.0
)

// eraseAt deletes the first markup under the pointer on the active layer.
// Insertion order decides ties, so overlapping markups erase oldest first.
// Exactly one markup is removed per click; a miss is a no-op.
func (e *Editor) eraseAt(pos geometry.Point2D, size geometry.Size) error {
	layer := e.store.ActiveLayer()

	for _, m := range e.store.MarkupsOnLayer(layer) {
		if !hitMarkup(m, pos, size) {
			continue
		}
		if err := e.adapter.DeleteMarkup(m.ID); err != nil {
			return err
		}
		e.pushUndo()
		e.store.RemoveMarkup(m.ID)
		e.log.Debug().Str("kind", string(m.Kind)).Msg("markup erased")
		return nil
	}
	return nil
}

// hitMarkup tests the pointer against a markup's pixel-space geometry.
func hitMarkup(m scene.Markup, pos geometry.Point2D, size geometry.Size) bool {
	switch m.Kind {
	case scene.KindDraw:
		if m.Path == nil {
			return false
		}
		return hitPoints(toPixels(m.Path.Points, size), pos, hitRadius)

	case scene.KindArrow:
		if m.Arrow == nil {
			return false
		}
		a := geometry.ToPixels(geometry.NewPoint2D(m.Arrow.X1, m.Arrow.Y1), size)
		b := geometry.ToPixels(geometry.NewPoint2D(m.Arrow.X2, m.Arrow.Y2), size)
		return geometry.DistanceToSegment(pos, a, b) <= hitRadius

	case scene.KindRect:
		if m.Rect == nil {
			return false
		}
		origin := geometry.ToPixels(geometry.NewPoint2D(m.Rect.X, m.Rect.Y), size)
		extent := geometry.ToPixels(geometry.NewPoint2D(m.Rect.X+m.Rect.Width, m.Rect.Y+m.Rect.Height), size)
		r := geometry.NewRect(origin.X, origin.Y, extent.X-origin.X, extent.Y-origin.Y).Normalized()
		return r.ContainsWithMargin(pos, hitRadius)

	case scene.KindText:
		if m.Text == nil {
			return false
		}
		anchor := geometry.ToPixels(geometry.NewPoint2D(m.Text.X, m.Text.Y), size)
		return pos.Distance(anchor) <= textHitRadius

	case scene.KindPolygon:
		if m.Polygon == nil {
			return false
		}
		px := toPixels(m.Polygon.Points, size)
		if geometry.PointInPolygon(pos, px) {
			return true
		}
		return hitPoints(px, pos, hitRadius)
	}
	return false
}

// hitPoints tests proximity to the captured points of a pixel-space path.
// Freehand strokes and traced outlines hit on their recorded points only; a
// click between two sparse points is a miss. Segment distance applies to
// arrows alone.
func hitPoints(px []geometry.Point2D, pos geometry.Point2D, radius float64) bool {
	for _, p := range px {
		if pos.Distance(p) <= radius {
			return true
		}
	}
	return false
}
