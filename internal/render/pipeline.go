package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"

	"proofmark/internal/measure"
	"proofmark/internal/scene"
	"proofmark/pkg/geometry"
)

// pinRadius is the marker disc radius in pixels.
const pinRadius = 12

// resolvedPinAlpha dims markers whose thread is resolved.
const resolvedPinAlpha = 0.4

// Pipeline renders the committed scene into a frame. It reads the store on
// every pass and holds no cached geometry.
type Pipeline struct {
	store *scene.Store
	scale *measure.Scale
}

// New creates a render pipeline over the store.
func New(store *scene.Store, scale *measure.Scale) *Pipeline {
	return &Pipeline{store: store, scale: scale}
}

// Render clears dst and draws all visible markups in insertion order, then
// the pin markers on top. A zero-sized frame is a no-op.
func (p *Pipeline) Render(dst *image.RGBA) {
	bounds := dst.Bounds()
	size := geometry.NewSize(float64(bounds.Dx()), float64(bounds.Dy()))
	if size.IsZero() {
		return
	}

	draw.Draw(dst, bounds, image.Transparent, image.Point{}, draw.Src)

	for _, m := range p.store.VisibleMarkups() {
		alpha := float64(p.store.LayerOpacity(m.Layer)) / 100
		pt := newPainter(dst, alpha)
		p.drawMarkup(pt, m, size)
	}

	for _, pin := range p.store.VisiblePins() {
		alpha := float64(p.store.LayerOpacity(pin.Layer)) / 100
		if pin.Resolved {
			alpha *= resolvedPinAlpha
		}
		p.drawPin(newPainter(dst, alpha), pin, size)
	}
}

// drawMarkup dispatches on the markup kind. Unknown kinds and markups with
// a missing payload are skipped.
func (p *Pipeline) drawMarkup(pt painter, m scene.Markup, size geometry.Size) {
	col := markupColor(m)
	thickness := int(m.StrokeWidth)
	if thickness < 1 {
		thickness = 3
	}

	switch m.Kind {
	case scene.KindDraw:
		if m.Path == nil {
			return
		}
		pt.polyline(toPixelPath(m.Path.Points, size), col, thickness)

	case scene.KindArrow:
		if m.Arrow == nil {
			return
		}
		from := geometry.ToPixels(geometry.NewPoint2D(m.Arrow.X1, m.Arrow.Y1), size)
		to := geometry.ToPixels(geometry.NewPoint2D(m.Arrow.X2, m.Arrow.Y2), size)
		drawArrow(pt, from, to, col, thickness)

	case scene.KindRect:
		if m.Rect == nil {
			return
		}
		origin := geometry.ToPixels(geometry.NewPoint2D(m.Rect.X, m.Rect.Y), size)
		extent := geometry.ToPixels(geometry.NewPoint2D(m.Rect.X+m.Rect.Width, m.Rect.Y+m.Rect.Height), size)
		pt.rectOutline(geometry.NewRect(origin.X, origin.Y, extent.X-origin.X, extent.Y-origin.Y), col, thickness)

	case scene.KindText:
		if m.Text == nil || m.Text.Text == "" {
			return
		}
		anchor := geometry.ToPixels(geometry.NewPoint2D(m.Text.X, m.Text.Y), size)
		pt.textPill(int(anchor.X), int(anchor.Y), m.Text.Text, col)

	case scene.KindPolygon:
		if m.Polygon == nil || len(m.Polygon.Points) < 3 {
			return
		}
		px := toPixelPath(m.Polygon.Points, size)
		closed := append(px, px[0])
		pt.polyline(closed, col, thickness)

		// Bounding box center keeps the caption stable even when the
		// vertices cluster along one edge.
		center := geometry.BoundingBox(px).Center()
		pt.textPill(int(center.X), int(center.Y), FormatArea(m.Polygon.AreaSqIn), col)
	}
}

// drawPin paints the numbered marker disc.
func (p *Pipeline) drawPin(pt painter, pin scene.Pin, size geometry.Size) {
	cfg, ok := scene.LayerByKey(pin.Layer)
	if !ok {
		return
	}
	pos := geometry.ToPixels(geometry.NewPoint2D(pin.X, pin.Y), size)

	pt.circle(pos.X, pos.Y, pinRadius, cfg.Color, true)
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	pt.circle(pos.X, pos.Y, pinRadius, white, false)
	pt.centeredText(int(pos.X), int(pos.Y)+4, strconv.Itoa(pin.PinNumber), white)
}

// drawArrow strokes the shaft and fills the triangular head. The head
// scales with the stroke width but never drops below 12px.
func drawArrow(pt painter, from, to geometry.Point2D, col color.NRGBA, thickness int) {
	pt.line(int(from.X), int(from.Y), int(to.X), int(to.Y), col, thickness)

	headLen := math.Max(12, 4*float64(thickness))
	angle := math.Atan2(to.Y-from.Y, to.X-from.X)
	const spread = math.Pi / 7

	left := geometry.Point2D{
		X: to.X - headLen*math.Cos(angle-spread),
		Y: to.Y - headLen*math.Sin(angle-spread),
	}
	right := geometry.Point2D{
		X: to.X - headLen*math.Cos(angle+spread),
		Y: to.Y - headLen*math.Sin(angle+spread),
	}
	pt.fillPolygon([]geometry.Point2D{to, left, right}, col)
}

// FormatArea renders a physical area caption in both reported units.
func FormatArea(sqIn float64) string {
	return fmt.Sprintf("%.1f sq in / %.2f sq ft", sqIn, measure.SquareFeet(sqIn))
}

// FormatLength renders a physical length caption.
func FormatLength(lengthIn float64) string {
	return fmt.Sprintf("%.1f in", lengthIn)
}

// markupColor resolves the stroke color: the markup's own color when set,
// otherwise the layer accent.
func markupColor(m scene.Markup) color.NRGBA {
	if c, ok := parseHexColor(m.Color); ok {
		return c
	}
	if cfg, ok := scene.LayerByKey(m.Layer); ok {
		return cfg.Color
	}
	return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
}

// parseHexColor decodes a #rrggbb string.
func parseHexColor(s string) (color.NRGBA, bool) {
	if len(s) != 7 || s[0] != '#' {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, true
}

// toPixelPath converts a percentage-space path to pixels.
func toPixelPath(points []geometry.Point2D, size geometry.Size) []geometry.Point2D {
	out := make([]geometry.Point2D, len(points))
	for i, p := range points {
		out[i] = geometry.ToPixels(p, size)
	}
	return out
}
