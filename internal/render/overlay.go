package render

import (
	"image"
	"image/color"

	"proofmark/pkg/geometry"
)

// Overlay describes the ephemeral geometry of an in-progress editing
// session in pixel space. It is rebuilt every frame and drawn strictly
// after the committed pass.
type Overlay struct {
	// Path is the freehand stroke being drawn; PathLenIn carries its live
	// length readout, zero while the proof is uncalibrated.
	Path      []geometry.Point2D
	PathLenIn float64

	// Arrow previews the shaft and head between the anchor and cursor.
	Arrow *struct{ From, To geometry.Point2D }

	// Rect previews the drag rectangle.
	Rect *geometry.Rect

	// Trace holds the polygon vertices placed so far; Cursor extends the
	// dashed outline to the pointer when set.
	Trace     []geometry.Point2D
	Cursor    *geometry.Point2D
	TraceSqIn float64

	Color       color.NRGBA
	StrokeWidth int
}

// NewArrowOverlay builds an arrow preview overlay.
func NewArrowOverlay(from, to geometry.Point2D, col color.NRGBA, width int) *Overlay {
	return &Overlay{
		Arrow:       &struct{ From, To geometry.Point2D }{From: from, To: to},
		Color:       col,
		StrokeWidth: width,
	}
}

// traceMarkerHalf is the half-size of the square vertex markers.
const traceMarkerHalf = 3

// DrawOverlay paints the overlay onto the frame at full opacity. A nil
// overlay is a no-op.
func DrawOverlay(dst *image.RGBA, ov *Overlay) {
	if ov == nil {
		return
	}
	pt := newPainter(dst, 1)
	thickness := ov.StrokeWidth
	if thickness < 1 {
		thickness = 3
	}

	if len(ov.Path) > 1 {
		pt.polyline(ov.Path, ov.Color, thickness)
		if ov.PathLenIn > 0 {
			end := ov.Path[len(ov.Path)-1]
			pt.textPill(int(end.X), int(end.Y), FormatLength(ov.PathLenIn), ov.Color)
		}
	}

	if ov.Arrow != nil {
		drawArrow(pt, ov.Arrow.From, ov.Arrow.To, ov.Color, thickness)
	}

	if ov.Rect != nil {
		pt.rectOutline(ov.Rect.Normalized(), ov.Color, thickness)
	}

	if len(ov.Trace) > 0 {
		drawTrace(pt, ov, thickness)
	}
}

// drawTrace paints the dashed in-progress polygon: edges between placed
// vertices, a dashed tail to the cursor, the closing edge once three or
// more vertices exist, square vertex markers, and the live area readout.
func drawTrace(pt painter, ov *Overlay, thickness int) {
	for i := 1; i < len(ov.Trace); i++ {
		pt.dashedLine(ov.Trace[i-1], ov.Trace[i], ov.Color, thickness)
	}
	if ov.Cursor != nil {
		pt.dashedLine(ov.Trace[len(ov.Trace)-1], *ov.Cursor, ov.Color, thickness)
	}
	if len(ov.Trace) >= 3 {
		pt.dashedLine(ov.Trace[len(ov.Trace)-1], ov.Trace[0], ov.Color, thickness)
	}

	for _, v := range ov.Trace {
		pt.squareMarker(v, traceMarkerHalf, ov.Color)
	}

	if len(ov.Trace) >= 3 {
		center := geometry.Centroid(ov.Trace)
		pt.textPill(int(center.X), int(center.Y), FormatArea(ov.TraceSqIn), ov.Color)
	}
}
